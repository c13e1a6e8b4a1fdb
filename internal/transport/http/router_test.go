package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tiendaf1/shop/internal/handlers"
	"github.com/tiendaf1/shop/internal/metrics"
	authmw "github.com/tiendaf1/shop/internal/middleware/auth"
	"github.com/tiendaf1/shop/internal/models"
	"github.com/tiendaf1/shop/internal/notify"
	"github.com/tiendaf1/shop/internal/service"
	"github.com/tiendaf1/shop/internal/tokens"
	httpserver "github.com/tiendaf1/shop/internal/transport/http"
)

func newServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := tokens.NewIssuer([]byte("test-secret"))
	dispatcher := notify.New(nil, false, "", logger)
	collector := metrics.NewCollector()

	e := echo.New()
	e.Use(collector.Middleware())
	httpserver.Register(e, &httpserver.Deps{
		Auth:     &handlers.AuthHandler{DB: db, Issuer: issuer, Notify: dispatcher},
		Products: &handlers.ProductHandler{DB: db},
		Checkout: &handlers.CheckoutHandler{Svc: &service.CheckoutService{DB: db, Notify: dispatcher}},
		Search:   &handlers.SearchHandler{},
		Guard:    authmw.NewGuard(issuer),
		Metrics:  collector.Handler(),
	})
	return e, db
}

func request(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
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
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	e, _ := newServer(t)

	rec := request(t, e, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend up", rec.Body.String())

	rec = request(t, e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var hz map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hz))
	assert.Equal(t, "ok", hz["status"])
	assert.NotEmpty(t, hz["time"])

	rec = request(t, e, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e, _ := newServer(t)

	// Generate one observation first.
	request(t, e, http.MethodGet, "/api/products", "", nil)

	rec := request(t, e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop_http_requests_total")
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	e, db := newServer(t)

	issuer := tokens.NewIssuer([]byte("test-secret"))
	user := models.User{Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	token, err := issuer.Issue(&user)
	require.NoError(t, err)

	routes := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
	}
	for _, r := range routes {
		rec := request(t, e, r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s anonymous", r.method, r.path)

		rec = request(t, e, r.method, r.path, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s non-admin", r.method, r.path)
	}
}

func TestPurchaseFlow(t *testing.T) {
	e, db := newServer(t)

	p := models.Product{Name: "Team Cap", Section: models.SectionCatalog, Price: 29.99}
	require.NoError(t, db.Create(&p).Error)

	rec := request(t, e, http.MethodPost, "/api/register", "", map[string]any{
		"email":    "buyer@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = request(t, e, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "buyer@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	rec = request(t, e, http.MethodGet, "/api/products?section=catalog", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)

	rec = request(t, e, http.MethodPost, "/api/checkout", token, map[string]any{
		"items":      []map[string]any{{"productId": items[0].ID, "quantity": 2}},
		"cardNumber": "4111111111111111",
		"phone":      "+1 (555) 123-4567",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, true, out["ok"])
	assert.InDelta(t, 59.98, out["total"].(float64), 1e-9)

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	assert.InDelta(t, 59.98, order.Total, 1e-9)
}
