package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/catalog/internal/config"
	"anoa.com/catalog/internal/testutil"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(origins ...string) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            "test-secret-with-at-least-32-characters",
			Issuer:            "catalog-api",
			Audience:          "catalog-clients",
			ExpirationMinutes: 60,
		},
		CORS: config.CORSConfig{Enabled: true, Origins: origins},
		Auth: config.AuthConfig{LoginLockWindow: time.Second, LoginMaxAttempts: 5},
	}
}

func newTestServer(t *testing.T, origins ...string) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Register())
	return NewServer(testConfig(origins...), testutil.NewSeededDB(t), nil, zap.NewNop()).Handler()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	body := `{"username":"admin","password":"` + testutil.SeedPassword + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(h, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.Token
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, "*")

	w := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPanicIsAccessLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Register())
	core, logs := observer.New(zapcore.InfoLevel)

	srv := NewServer(testConfig("*"), testutil.NewSeededDB(t), nil, zap.New(core))
	srv.engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusInternalServerError, entries[0].ContextMap()["status"])
	assert.Equal(t, "/boom", entries[0].ContextMap()["path"])
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestServer(t, "*")

	for _, path := range []string{"/api/categories", "/api/products", "/api/products/grouped"} {
		w := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAuthenticatedFlow(t *testing.T) {
	h := newTestServer(t, "*")
	tok := login(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/products?page=1&page_size=5&sort_by=price&sort_desc=true", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := serve(h, req)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items      []map[string]any `json:"items"`
		TotalCount int              `json:"total_count"`
		TotalPages int              `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 15, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)

	req = httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = serve(h, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		h := newTestServer(t, "*")
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		req.Header.Set("Origin", "http://example.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := serve(h, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("listed origins", func(t *testing.T) {
		h := newTestServer(t, "http://shop.test")
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		req.Header.Set("Origin", "http://shop.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := serve(h, req)

		assert.Equal(t, "http://shop.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"http://a.test", "*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"http://a.test"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"http://a.test"}, cfg.AllowOrigins)
}
