package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiendaf1/shop/internal/tokens"
)

type Guard struct {
	Issuer *tokens.Issuer
}

func NewGuard(issuer *tokens.Issuer) *Guard {
	return &Guard{Issuer: issuer}
}

// RequireLogin rejects requests without a valid, unexpired bearer token and
// stores the verified claims on the echo context for downstream handlers.
func (g *Guard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := BearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		claims, err := g.Issuer.Verify(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		setClaims(c, claims)
		return next(c)
	}
}
