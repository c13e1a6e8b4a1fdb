package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tiendaf1/shop/internal/handlers"
	"github.com/tiendaf1/shop/internal/hash"
	authmw "github.com/tiendaf1/shop/internal/middleware/auth"
	"github.com/tiendaf1/shop/internal/models"
	"github.com/tiendaf1/shop/internal/notify"
	"github.com/tiendaf1/shop/internal/service"
	"github.com/tiendaf1/shop/internal/tokens"
	httpserver "github.com/tiendaf1/shop/internal/transport/http"
)

type testEnv struct {
	e      *echo.Echo
	db     *gorm.DB
	issuer *tokens.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := tokens.NewIssuer([]byte("test-secret"))
	dispatcher := notify.New(nil, false, "", logger)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Auth:     &handlers.AuthHandler{DB: db, Issuer: issuer, Notify: dispatcher},
		Products: &handlers.ProductHandler{DB: db},
		Checkout: &handlers.CheckoutHandler{Svc: &service.CheckoutService{DB: db, Notify: dispatcher}},
		Search:   &handlers.SearchHandler{},
		Guard:    authmw.NewGuard(issuer),
	})

	return &testEnv{e: e, db: db, issuer: issuer}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (env *testEnv) createUser(t *testing.T, email, password string, admin bool) (models.User, string) {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Email: email, PasswordHash: pwHash, IsAdmin: admin}
	require.NoError(t, env.db.Create(&user).Error)
	token, err := env.issuer.Issue(&user)
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) createProduct(t *testing.T, name, section string, price float64) models.Product {
	t.Helper()
	p := models.Product{Name: name, Section: section, Price: price}
	require.NoError(t, env.db.Create(&p).Error)
	return p
}

func floatField(t *testing.T, m map[string]any, key string) float64 {
	t.Helper()
	v, ok := m[key].(float64)
	require.True(t, ok, "field %q missing or not a number: %v", key, m[key])
	return v
}
