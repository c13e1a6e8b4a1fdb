package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tiendaf1/shop/internal/tokens"
)

const claimsKey = "claims"

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

func setClaims(c echo.Context, claims *tokens.Claims) {
	c.Set(claimsKey, claims)
}

// ClaimsFrom returns the verified claims placed by RequireLogin, or nil.
func ClaimsFrom(c echo.Context) *tokens.Claims {
	if v, ok := c.Get(claimsKey).(*tokens.Claims); ok {
		return v
	}
	return nil
}
