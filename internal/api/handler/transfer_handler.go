package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

// idempotencyHeader carries the client-chosen retry key. Optional; without
// it a retried request executes twice.
const idempotencyHeader = "Idempotency-Key"

// TransferHandler handles fund movements and transaction listings.
type TransferHandler struct {
	transfers ports.TransferService
}

func NewTransferHandler(transfers ports.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Internal handles POST /api/transfers/internal, between two accounts owned
// by the caller.
func (h *TransferHandler) Internal(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req internalTransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	result, err := h.transfers.InternalTransfer(c.Request().Context(), ports.InternalTransferInput{
		ActorID:           userID,
		SenderAccountID:   req.SenderAccountID,
		ReceiverAccountID: req.ReceiverAccountID,
		Amount:            amount,
		Description:       req.Description,
		IdempotencyKey:    c.Request().Header.Get(idempotencyHeader),
		IP:                clientIP(c),
		UserAgent:         userAgent(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(transferStatus(result), toTransferResponse(result))
}

// External handles POST /api/transfers/external, from the caller's account
// to any account addressed by its 12-digit number.
func (h *TransferHandler) External(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req externalTransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	result, err := h.transfers.ExternalTransfer(c.Request().Context(), ports.ExternalTransferInput{
		ActorID:               userID,
		SenderAccountID:       req.SenderAccountID,
		ReceiverAccountNumber: req.ReceiverAccountNumber,
		Amount:                amount,
		Description:           req.Description,
		IdempotencyKey:        c.Request().Header.Get(idempotencyHeader),
		IP:                    clientIP(c),
		UserAgent:             userAgent(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(transferStatus(result), toTransferResponse(result))
}

// ListTransactions handles GET /api/transactions with optional type, date
// range, amount range and limit filters.
func (h *TransferHandler) ListTransactions(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	input := ports.ListTransactionsInput{
		ActorID:   userID,
		ActorRole: role,
		Type:      domain.TransactionType(c.QueryParam("type")),
		DateFrom:  c.QueryParam("date_from"),
		DateTo:    c.QueryParam("date_to"),
	}
	if v := c.QueryParam("min_amount"); v != "" {
		input.MinAmount, err = decimal.NewFromString(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "min_amount must be a decimal number")
		}
	}
	if v := c.QueryParam("max_amount"); v != "" {
		input.MaxAmount, err = decimal.NewFromString(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "max_amount must be a decimal number")
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		input.Limit = limit
	}

	txns, err := h.transfers.ListTransactions(c.Request().Context(), input)
	if err != nil {
		return err
	}

	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, transactionResponse{
			TransactionID:     t.TransactionID,
			SenderAccountID:   t.SenderAccountID,
			ReceiverAccountID: t.ReceiverAccountID,
			Amount:            t.Amount.StringFixed(2),
			Type:              string(t.Type),
			Description:       t.Description,
			Status:            string(t.Status),
			CreatedAt:         t.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, echo.NewHTTPError(http.StatusBadRequest, "amount must be a decimal number")
	}
	return amount, nil
}

// transferStatus distinguishes a fresh execution from an idempotent replay.
func transferStatus(r *ports.TransferResult) int {
	if r.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

func toTransferResponse(r *ports.TransferResult) transferResponse {
	return transferResponse{
		TransactionID: r.TransactionID,
		Amount:        r.Amount.StringFixed(2),
		Type:          string(r.Type),
		Status:        string(r.Status),
		Replayed:      r.Replayed,
		Suspicious:    r.Suspicious,
	}
}
