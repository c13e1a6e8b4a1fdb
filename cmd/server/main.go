package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tiendaf1/shop/internal/config"
	"github.com/tiendaf1/shop/internal/es"
	"github.com/tiendaf1/shop/internal/events"
	"github.com/tiendaf1/shop/internal/handlers"
	"github.com/tiendaf1/shop/internal/logging"
	"github.com/tiendaf1/shop/internal/mailer"
	"github.com/tiendaf1/shop/internal/metrics"
	authmw "github.com/tiendaf1/shop/internal/middleware/auth"
	"github.com/tiendaf1/shop/internal/middleware/loggingmw"
	"github.com/tiendaf1/shop/internal/notify"
	"github.com/tiendaf1/shop/internal/seed"
	"github.com/tiendaf1/shop/internal/service"
	"github.com/tiendaf1/shop/internal/tokens"
	httpserver "github.com/tiendaf1/shop/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := seed.Apply(db, cfg.AdminSeedPath, logger); err != nil {
		logger.Error("seed failed", "error", err)
	}

	m := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.FromEmail,
		FromName: cfg.FromName,
	})
	if cfg.MailerEnabled {
		if err := m.Verify(); err != nil {
			logger.Error("mailer verify failed", "error", err)
		}
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	dispatcher := notify.New(m, cfg.MailerEnabled, cfg.AdminNotify, logger)
	dispatcher.Start(workerCtx, 2)

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer(cfg.KafkaAddress)
	}

	issuer := tokens.NewIssuer([]byte(cfg.JWTSecret))
	guard := authmw.NewGuard(issuer)
	collector := metrics.NewCollector()

	deps := &httpserver.Deps{
		Auth: &handlers.AuthHandler{
			DB:     db,
			Issuer: issuer,
			Notify: dispatcher,
			Events: producer,
		},
		Products: &handlers.ProductHandler{
			DB:      db,
			Events:  producer,
			ESIndex: es.ProductIndex,
		},
		Checkout: &handlers.CheckoutHandler{
			Svc: &service.CheckoutService{
				DB:     db,
				Notify: dispatcher,
				Events: producer,
			},
		},
		Search:  &handlers.SearchHandler{Index: es.ProductIndex},
		Guard:   guard,
		Metrics: collector.Handler(),
	}

	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			logger.Error("elasticsearch unavailable, search disabled", "error", err)
		} else {
			deps.Products.ES = client
			deps.Search.ES = client
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(corsMiddleware(cfg.ClientOrigins))
	e.Use(collector.Middleware())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("listening", "port", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// corsMiddleware restricts cross-origin access to the configured allow-list,
// or allows everything when none is configured.
func corsMiddleware(origins []string) echo.MiddlewareFunc {
	cfg := middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	} else {
		cfg.AllowOrigins = []string{"*"}
	}
	return middleware.CORSWithConfig(cfg)
}
