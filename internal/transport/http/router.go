package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tiendaf1/shop/internal/handlers"
	authmw "github.com/tiendaf1/shop/internal/middleware/auth"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Checkout *handlers.CheckoutHandler
	Search   *handlers.SearchHandler
	Guard    *authmw.Guard
	Metrics  http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "Backend up") })
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	e.GET("/api/health", func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"ok": true}) })
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	api := e.Group("/api")

	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)
	api.GET("/me", d.Auth.Me, d.Guard.RequireLogin)

	api.GET("/products", d.Products.GetProducts)
	api.GET("/search", d.Search.Search)

	admin := api.Group("/products", d.Guard.RequireLogin, d.Guard.AdminOnly)
	admin.POST("", d.Products.CreateProduct)
	admin.PUT("/:id", d.Products.UpdateProduct)
	admin.DELETE("/:id", d.Products.DeleteProduct)

	api.POST("/checkout", d.Checkout.Checkout, d.Guard.RequireLogin)
}
