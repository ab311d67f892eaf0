package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/api/v1/patients", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	router := newCORSRouter([]string{"https://reception.drplati.gr"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Origin", "https://reception.drplati.gr")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://reception.drplati.gr" {
		t.Fatalf("expected the origin echoed back, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("cookie sessions need credentials allowed, got %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin for caches, got %q", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	router := newCORSRouter([]string{"https://reception.drplati.gr"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origins must get no allow header, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("the request itself still runs, got %d", rec.Code)
	}
}

func TestCORSNeverEmitsWildcard(t *testing.T) {
	// "*" cannot be combined with Allow-Credentials, so it is treated as a
	// configuration mistake rather than honored.
	router := newCORSRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("wildcard configuration must not open the API, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newCORSRouter([]string{"https://reception.drplati.gr"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/patients", nil)
	req.Header.Set("Origin", "https://reception.drplati.gr")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatal("preflight must announce the allowed methods")
	}
}
