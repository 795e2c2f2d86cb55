package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS())
	router.POST("/api/items", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestCORS_SetsAllowOrigin(t *testing.T) {
	router := newCORSRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin header should be set")
	}
}

func TestCORS_PreflightSubmit(t *testing.T) {
	// Embedded feedback widgets submit cross-origin, so the preflight for
	// POST with Authorization and Content-Type must pass.
	router := newCORSRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/items", nil)
	req.Header.Set("Origin", "http://widget.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, expected 200 or 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("Access-Control-Allow-Headers should be set")
	}
}

func TestCORS_AllowsCredentials(t *testing.T) {
	router := newCORSRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, expected true", got)
	}
}
