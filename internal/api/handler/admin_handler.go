package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meridianbank/core-banking/internal/core/ports"
)

// AdminHandler handles user administration endpoints.
type AdminHandler struct {
	users ports.UserService
}

func NewAdminHandler(users ports.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateUser handles POST /api/admin/users. Admin-created users carry any
// role and must change the assigned password on first login.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		ActorID:   userID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		Password:  req.Password,
		IP:        clientIP(c),
		UserAgent: userAgent(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// UpdateUserRole handles PATCH /api/admin/users/:id/role.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.UpdateRole(c.Request().Context(), userID, c.Param("id"), req.Role, clientIP(c), userAgent(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"role": req.Role})
}
