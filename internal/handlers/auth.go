package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tiendaf1/shop/internal/events"
	"github.com/tiendaf1/shop/internal/hash"
	"github.com/tiendaf1/shop/internal/logging"
	authmw "github.com/tiendaf1/shop/internal/middleware/auth"
	"github.com/tiendaf1/shop/internal/models"
	"github.com/tiendaf1/shop/internal/notify"
	"github.com/tiendaf1/shop/internal/tokens"
)

type AuthHandler struct {
	DB     *gorm.DB
	Issuer *tokens.Issuer
	Notify *notify.Dispatcher
	Events *events.Producer
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Events.Publish(ctx, events.TopicUserEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("user event publish failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		l.Warn("register_failed", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{Email: email, PasswordHash: pwHash}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			l.Warn("register_failed", "status", 409, "reason", "email taken")
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	token, err := h.Issuer.Issue(&user)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Notify.Welcome(email)
	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": user, "token": token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		l.Warn("login_failed", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Unknown email and wrong password answer identically so the endpoint
	// cannot be used for account enumeration.
	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := h.Issuer.Issue(&user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": user, "token": token})
}

// Me echoes the verified token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := authmw.ClaimsFrom(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": echo.Map{
		"id":       claims.UserID,
		"email":    claims.Email,
		"is_admin": claims.IsAdmin,
	}})
}
