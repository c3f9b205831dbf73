package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

// AuthHandler handles registration, login, token validation and password
// changes.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register. Self-registration always yields
// the customer role; staff accounts are provisioned by admins.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		IP:        clientIP(c),
		UserAgent: userAgent(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user)})
}

// Login handles POST /api/auth/login. Rate-limited per (ip, email); the
// central error handler turns an exhausted window into a 429 with Retry-After.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password, clientIP(c), userAgent(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: result.Token, User: toUserResponse(result.User)})
}

// Validate handles POST /api/auth/validate. It answers for the token in the
// Authorization header; the Auth middleware has already vetted it, so this
// just echoes the resolved identity.
func (h *AuthHandler) Validate(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	email, _ := c.Get("email").(string)

	return c.JSON(http.StatusOK, validateResponse{
		UserID: userID,
		Email:  email,
		Role:   role,
	})
}

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword, clientIP(c), userAgent(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "password changed"})
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		FirstLogin: u.FirstLogin,
		CreatedAt:  u.CreatedAt,
	}
}
