package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/headlines/internal/server"
)

// RouteOptions configures SetupRoutes.
type RouteOptions struct {
	// JWTSecret protects /admin when set.
	JWTSecret string
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
}

// SetupRoutes registers the public and admin routes.
func SetupRoutes(router *gin.Engine, h *Handler, opts RouteOptions) {
	router.GET("/sources", h.ListSources)
	router.GET("/news", h.GetAllNews)
	router.GET("/news/:source", h.GetSourceNews)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	admin := router.Group("/admin", server.JWTMiddleware(opts.JWTSecret))
	admin.GET("/cache", h.CacheStatus)
	admin.POST("/cache/clear", h.ClearAll)
	admin.POST("/cache/:source/clear", h.ClearSource)
}

// CacheHealthChecker reports degraded while any source has no cached links.
func CacheHealthChecker(links LinkSource) server.HealthChecker {
	return func() server.CheckResult {
		status := links.Status()
		cached := 0
		for _, s := range status {
			if s.Cached {
				cached++
			}
		}

		msg := fmt.Sprintf("%d/%d sources cached", cached, len(status))
		if cached < len(status) {
			return server.CheckResult{Status: server.HealthStatusDegraded, Message: msg}
		}
		return server.CheckResult{Status: server.HealthStatusHealthy, Message: msg}
	}
}
