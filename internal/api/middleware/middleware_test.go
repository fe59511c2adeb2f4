package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		h := CORSMiddleware([]string{"*"})(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req.Header.Set("Origin", "https://farm.example")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("listed origin", func(t *testing.T) {
		h := CORSMiddleware([]string{"https://farm.example"})(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req.Header.Set("Origin", "https://farm.example")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, "https://farm.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		h := CORSMiddleware([]string{"https://farm.example"})(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req.Header.Set("Origin", "https://other.example")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		h := CORSMiddleware([]string{"*"})(okHandler())
		req := httptest.NewRequest(http.MethodOptions, "/api/datasets", nil)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	rw := &loggingResponseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	okHandler().ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rw.statusCode)
	assert.Equal(t, 2, rw.bytes)
}

func TestObservabilityMiddleware_PassesThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /api/plants/{name}", okHandler())
	h := ObservabilityMiddleware(nil)(mux)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plants/Tomatoes", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
