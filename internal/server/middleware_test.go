package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, log logger.Logger) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.Use(server.RecoveryMiddleware(log))
	router.Use(server.RequestIDLoggerMiddleware(log))
	router.Use(server.LoggerMiddleware(log))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/panic", func(*gin.Context) { panic("kaboom") })
	return router
}

func TestRequestIDLoggerMiddleware_GeneratesID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newTestRouter(t, logger.NewNop()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	id := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(id)
	require.NoError(t, err, "generated request ID %q should be a UUID", id)
}

func TestRequestIDLoggerMiddleware_PreservesAndBoundsInboundID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, logger.NewNop())

	tests := []struct {
		name    string
		inbound string
		kept    bool
	}{
		{name: "upstream id", inbound: "trace-abc123", kept: true},
		{name: "oversized id", inbound: strings.Repeat("x", 200), kept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set("X-Request-ID", tt.inbound)
			router.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			assert.NotEmpty(t, got)
			assert.Equal(t, tt.kept, got == tt.inbound)
		})
	}
}

func TestRequestIDLoggerMiddleware_StoresContextLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	log := logger.NewFromZap(zap.New(core))

	router := gin.New()
	router.Use(server.RequestIDLoggerMiddleware(log))
	router.GET("/ctx", func(c *gin.Context) {
		logger.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ctx", http.NoBody)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("inside handler").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
}

func TestLoggerMiddleware_LogsRequest(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	router := newTestRouter(t, logger.NewFromZap(zap.New(core)))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test?q=1", http.NoBody))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Equal(t, "q=1", fields["query"])
}

func TestRecoveryMiddleware_Returns500(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	router := newTestRouter(t, logger.NewFromZap(zap.New(core)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(server.CORSMiddleware(server.CORSConfig{AllowedOrigins: []string{"https://app.example"}}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Origin", "https://app.example")
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Origin", "https://evil.example")
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/test", http.NoBody)
		req.Header.Set("Origin", "https://app.example")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
