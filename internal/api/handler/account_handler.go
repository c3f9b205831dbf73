package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

// AccountHandler handles account creation, listing and lifecycle changes.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create handles POST /api/accounts.
func (h *AccountHandler) Create(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		opening, err = decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "opening_balance must be a decimal number")
		}
	}

	account, err := h.accounts.Create(c.Request().Context(), ports.CreateAccountInput{
		ActorID:        userID,
		ActorRole:      role,
		TargetUserID:   req.TargetUserID,
		Type:           domain.AccountType(req.Type),
		OpeningBalance: opening,
		IP:             clientIP(c),
		UserAgent:      userAgent(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// List handles GET /api/accounts. Customers see their own accounts, staff
// roles see all.
func (h *AccountHandler) List(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	accounts, err := h.accounts.List(c.Request().Context(), userID, role)
	if err != nil {
		return err
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus handles PATCH /api/accounts/:id/status.
func (h *AccountHandler) UpdateStatus(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateAccountStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.UpdateStatus(c.Request().Context(), ports.UpdateAccountStatusInput{
		ActorID:   userID,
		AccountID: c.Param("id"),
		Status:    domain.AccountStatus(req.Status),
		Reason:    req.Reason,
		IP:        clientIP(c),
		UserAgent: userAgent(c),
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		UserID:        a.UserID,
		Type:          string(a.Type),
		Balance:       a.Balance.StringFixed(2),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
}
