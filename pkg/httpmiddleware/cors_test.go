package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(handler http.Handler, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORS_WildcardOrigin(t *testing.T) {
	handler := CORS(CORSConfig{AllowOrigins: []string{"*"}})(okHandler())

	w := corsRequest(handler, http.MethodGet, "https://shop.example.com", false)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	handler := CORS(CORSConfig{AllowOrigins: []string{"*"}})(okHandler())

	w := corsRequest(handler, http.MethodGet, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SpecificOriginCaseInsensitive(t *testing.T) {
	handler := CORS(CORSConfig{AllowOrigins: []string{"https://Shop.Example.com"}})(okHandler())

	w := corsRequest(handler, http.MethodGet, "https://shop.example.com", false)
	assert.Equal(t, "https://Shop.Example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := CORS(CORSConfig{AllowOrigins: []string{"https://shop.example.com"}})(okHandler())

	w := corsRequest(handler, http.MethodGet, "https://evil.example.com", false)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{"Content-Type", "X-Session-ID"},
		ExposeHeaders: []string{"X-Session-ID"},
		MaxAge:        86400,
	})(okHandler())

	w := corsRequest(handler, http.MethodOptions, "https://shop.example.com", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "Content-Type, X-Session-ID", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_ExposeHeadersOnActualRequest(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowOrigins:  []string{"*"},
		ExposeHeaders: []string{"X-Session-ID"},
	})(okHandler())

	w := corsRequest(handler, http.MethodGet, "https://shop.example.com", false)
	assert.Equal(t, "X-Session-ID", w.Header().Get("Access-Control-Expose-Headers"))
}
