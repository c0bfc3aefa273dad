package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
)

// Builder assembles a Server step by step.
type Builder struct {
	config       Config
	logger       logger.Logger
	setupRoutes  func(*gin.Engine)
	healthChecks map[string]HealthChecker
}

// NewBuilder starts a builder for serviceName listening on port.
func NewBuilder(serviceName string, port int) *Builder {
	return &Builder{
		config:       Config{ServiceName: serviceName, Port: port},
		healthChecks: make(map[string]HealthChecker),
	}
}

func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.logger = log
	return b
}

func (b *Builder) WithHost(host string) *Builder {
	b.config.Host = host
	return b
}

func (b *Builder) WithDebug(debug bool) *Builder {
	b.config.Debug = debug
	return b
}

func (b *Builder) WithVersion(version string) *Builder {
	b.config.ServiceVersion = version
	return b
}

func (b *Builder) WithCORSOrigins(origins []string) *Builder {
	b.config.CORS.AllowedOrigins = origins
	return b
}

func (b *Builder) WithTimeouts(read, write time.Duration) *Builder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	return b
}

// WithHealthCheck adds a named check to GET /health.
func (b *Builder) WithHealthCheck(name string, checker HealthChecker) *Builder {
	b.healthChecks[name] = checker
	return b
}

// WithRoutes registers the service routes after the health endpoints.
func (b *Builder) WithRoutes(setupRoutes func(*gin.Engine)) *Builder {
	b.setupRoutes = setupRoutes
	return b
}

// Build creates the server. A missing logger becomes a no-op logger.
func (b *Builder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.NewNop()
	}

	cfg := b.config
	cfg.SetDefaults()
	started := time.Now()

	return NewServer(&cfg, b.logger, func(router *gin.Engine) {
		registerHealthRoutes(router, cfg.ServiceName, cfg.ServiceVersion, started, b.healthChecks)
		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	})
}
