package server_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/headlines/internal/server"
)

func TestHealth_AggregatesChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     map[string]server.HealthChecker
		wantStatus server.HealthStatus
		wantCode   int
	}{
		{
			name:       "no checks",
			wantStatus: server.HealthStatusHealthy,
			wantCode:   http.StatusOK,
		},
		{
			name: "degraded ping",
			checks: map[string]server.HealthChecker{
				"redis": server.PingHealthChecker("redis", func() error { return errors.New("refused") }),
				"ok":    server.PingHealthChecker("ok", func() error { return nil }),
			},
			wantStatus: server.HealthStatusDegraded,
			wantCode:   http.StatusOK,
		},
		{
			name: "unhealthy wins",
			checks: map[string]server.HealthChecker{
				"a": func() server.CheckResult { return server.CheckResult{Status: server.HealthStatusDegraded} },
				"b": func() server.CheckResult { return server.CheckResult{Status: server.HealthStatusUnhealthy} },
			},
			wantStatus: server.HealthStatusUnhealthy,
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := server.NewBuilder("headlines", 0).WithVersion("1.2.3")
			for name, check := range tt.checks {
				b.WithHealthCheck(name, check)
			}
			router := b.Build().Router()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
			require.Equal(t, tt.wantCode, w.Code)

			var resp server.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "headlines", resp.Service)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestHealth_HeadAndMemory(t *testing.T) {
	t.Parallel()

	router := server.NewBuilder("headlines", 0).WithRoutes(func(r *gin.Engine) {
		r.GET("/extra", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	}).Build().Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/memory", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	var mem server.MemoryStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mem))
	assert.Positive(t, mem.Goroutines)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/extra", http.NoBody))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
