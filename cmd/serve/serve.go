// Package serve runs the headlines HTTP service.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/headlines/cmd/common"
	"github.com/jonesrussell/north-cloud/headlines/internal/api"
	"github.com/jonesrussell/north-cloud/headlines/internal/events"
	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/metrics"
	"github.com/jonesrussell/north-cloud/headlines/internal/registry"
	"github.com/jonesrussell/north-cloud/headlines/internal/scheduler"
	"github.com/jonesrussell/north-cloud/headlines/internal/server"
)

const redisPingTimeout = 2 * time.Second

// Command returns the "serve" command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve cached headline links over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps(false)
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			return Run(cmd.Context(), deps)
		},
	}
}

// Run wires metrics, events, the registry, the warmer and the HTTP server,
// then blocks until shutdown.
func Run(ctx context.Context, deps common.CommandDeps) error {
	cfg, log := deps.Config, deps.Logger

	m := metrics.New()
	opts := []registry.Option{registry.WithObserver(m)}

	redisClient := setupRedis(ctx, deps)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		pub := events.NewPublisher(redisClient, cfg.Redis.Stream, log)
		opts = append(opts, registry.WithRefreshHook(pub.OnRefresh))
	}

	reg, err := common.NewRegistry(deps, opts...)
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	log.Info("Registry ready",
		logger.Strings("sources", reg.Sources()),
		logger.Strings("keywords", cfg.Keywords),
	)

	if !cfg.Cache.DisableWarm {
		warmer, warmErr := scheduler.New(reg, cfg.Cache.WarmSchedule, log)
		if warmErr != nil {
			return warmErr
		}
		if warmErr = warmer.Start(ctx); warmErr != nil {
			return warmErr
		}
		defer warmer.Stop()
	}

	builder := server.NewBuilder(common.ServiceName, cfg.Server.Port).
		WithHost(cfg.Server.Host).
		WithLogger(log).
		WithDebug(cfg.Debug).
		WithVersion(common.Version).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout).
		WithCORSOrigins(cfg.Server.CORSOrigins).
		WithHealthCheck("cache", api.CacheHealthChecker(reg))
	if redisClient != nil {
		builder.WithHealthCheck("redis", server.PingHealthChecker("redis", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
			defer cancel()
			return redisClient.Ping(pingCtx).Err()
		}))
	}

	handler := api.NewHandler(reg, log)
	srv := builder.WithRoutes(func(router *gin.Engine) {
		api.SetupRoutes(router, handler, api.RouteOptions{
			JWTSecret: cfg.Auth.JWTSecret,
			Metrics:   m.Handler(),
		})
	}).Build()

	if cfg.Auth.JWTSecret == "" {
		log.Warn("Admin routes are unauthenticated; set AUTH_JWT_SECRET to protect them")
	}

	return srv.Run(ctx)
}

// setupRedis returns nil when events are disabled or Redis is unreachable;
// the service runs without refresh events in that case.
func setupRedis(ctx context.Context, deps common.CommandDeps) *redis.Client {
	rc := deps.Config.Redis
	if !rc.Enabled {
		return nil
	}

	client, err := events.NewRedisClient(ctx, events.RedisConfig{
		Address:  rc.Address,
		Password: rc.Password,
		DB:       rc.DB,
	})
	if err != nil {
		deps.Logger.Warn("Redis unavailable, refresh events disabled",
			logger.String("address", rc.Address),
			logger.Error(err),
		)
		return nil
	}

	deps.Logger.Info("Publishing refresh events", logger.String("stream", rc.Stream))
	return client
}
