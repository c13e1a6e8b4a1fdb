package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiendaf1/shop/internal/logging"
	authmw "github.com/tiendaf1/shop/internal/middleware/auth"
	"github.com/tiendaf1/shop/internal/service"
)

type CheckoutHandler struct {
	Svc *service.CheckoutService
}

type checkoutRequest struct {
	Items      []service.CartLine `json:"items"`
	CardNumber string             `json:"cardNumber"`
	Phone      string             `json:"phone"`
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	claims := authmw.ClaimsFrom(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Checkout(ctx, claims.UserID, claims.Email, req.Items, req.CardNumber, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			l.Warn("checkout_failed", "status", 400, "reason", "empty cart")
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrInvalidCard):
			l.Warn("checkout_failed", "status", 400, "reason", "invalid card")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid card number")
		case errors.Is(err, service.ErrInvalidPhone):
			l.Warn("checkout_failed", "status", 400, "reason", "invalid phone")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid phone number")
		case errors.Is(err, service.ErrNoValidItems):
			l.Warn("checkout_failed", "status", 400, "reason", "no valid items")
			return echo.NewHTTPError(http.StatusBadRequest, "no valid items")
		default:
			l.Error("checkout_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("checkout_success", "order_id", res.OrderID, "total", res.Total)
	return c.JSON(http.StatusOK, echo.Map{
		"ok":      true,
		"orderId": res.OrderID,
		"total":   res.Total,
	})
}
