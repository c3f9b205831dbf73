package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meridianbank/core-banking/internal/core/ports"
)

// Require enforces that the caller's role is permitted to perform action.
// Must run after Auth. The guard is fail-closed, so an unknown role or
// action denies the request.
func Require(guard ports.Guard, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if err := guard.Authorize(c.Request().Context(), role, action); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireAny passes when the role is permitted for at least one of the
// actions. Used on endpoints whose scope widens with the caller's role, such
// as listings that show own data to customers and all data to staff.
func RequireAny(guard ports.Guard, actions ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			var lastErr error
			for _, action := range actions {
				err := guard.Authorize(c.Request().Context(), role, action)
				if err == nil {
					return next(c)
				}
				lastErr = err
			}
			return lastErr
		}
	}
}
