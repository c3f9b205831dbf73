package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the identity injected by the Auth middleware and
// fast-fails before any service call: both user_id and role must be present,
// since their absence means the middleware did not run or the token carried
// no usable identity.
func ctxClaims(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get("user_id").(string)
	role, _ = c.Get("role").(string)
	if userID == "" || role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, role, nil
}

// clientIP prefers echo's resolved real IP.
func clientIP(c echo.Context) string {
	return c.RealIP()
}

func userAgent(c echo.Context) string {
	return c.Request().UserAgent()
}
