package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminOnly must run after RequireLogin. A valid token without the admin
// flag yields 403, not 401.
func (g *Guard) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		if !claims.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	}
}
