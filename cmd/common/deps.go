// Package common holds dependency construction shared by the subcommands.
package common

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/headlines/internal/config"
	"github.com/jonesrussell/north-cloud/headlines/internal/fetcher"
	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/registry"
)

const (
	// ServiceName identifies the process in logs and health responses.
	ServiceName = "headlines"

	defaultConfigPath = "config.yml"
)

// Version is overridden at build time with -ldflags "-X ...common.Version=...".
var Version = "dev"

var (
	ErrLoggerRequired = errors.New("logger is required")
	ErrConfigRequired = errors.New("config is required")
)

// CommandDeps holds the dependencies every subcommand starts from.
type CommandDeps struct {
	Logger logger.Logger
	Config *config.Config
}

// Validate ensures all required dependencies are present.
func (d CommandDeps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	return nil
}

// NewCommandDeps loads the configuration named by --config (or CONFIG_PATH)
// and builds a logger. Interactive commands pass interactive=true so logs go
// to stderr and stay out of table output.
func NewCommandDeps(interactive bool) (CommandDeps, error) {
	path := viper.GetString("config")
	if path == "" {
		path = config.GetConfigPath(defaultConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return CommandDeps{}, err
	}
	if viper.GetBool("app.debug") {
		cfg.Debug = true
	}

	logCfg := cfg.Logging
	if cfg.Debug {
		logCfg.Level = "debug"
		logCfg.Format = logger.FormatConsole
	}
	if interactive {
		logCfg.OutputPaths = []string{"stderr"}
		if !cfg.Debug {
			logCfg.Level = "warn"
		}
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{
		Logger: log.With(logger.String("service", ServiceName), logger.String("version", Version)),
		Config: cfg,
	}
	return deps, deps.Validate()
}

// NewRegistry builds the source registry from the loaded configuration.
func NewRegistry(deps CommandDeps, opts ...registry.Option) (*registry.Registry, error) {
	f := fetcher.NewHTTPFetcher(fetcher.Config{
		Timeout:      deps.Config.Fetch.Timeout,
		UserAgent:    deps.Config.Fetch.UserAgent,
		MaxBodyBytes: deps.Config.Fetch.MaxBodyBytes,
	}, deps.Logger)

	base := []registry.Option{
		registry.WithLogger(deps.Logger),
		registry.WithTTL(deps.Config.Cache.TTL),
	}
	return registry.New(deps.Config.Sources, deps.Config.Keywords, f, append(base, opts...)...)
}
