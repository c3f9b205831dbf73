package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meridianbank/core-banking/internal/core/rbac"
)

// RBACHandler exposes the permission matrix for inspection: a point check
// and a per-role permission dump. Both are read-only views over the static
// matrix; nothing here can widen access.
type RBACHandler struct{}

func NewRBACHandler() *RBACHandler {
	return &RBACHandler{}
}

// Check handles POST /api/rbac/check.
func (h *RBACHandler) Check(c echo.Context) error {
	var req permissionCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	decision := rbac.Check(req.Role, req.Action)
	return c.JSON(http.StatusOK, permissionCheckResponse{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	})
}

// Permissions handles GET /api/rbac/permissions/:role.
func (h *RBACHandler) Permissions(c echo.Context) error {
	role := c.Param("role")
	perms := rbac.Permissions(role)
	if perms == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown role")
	}
	return c.JSON(http.StatusOK, rolePermissionsResponse{
		Role:        role,
		Permissions: perms,
	})
}
