// Package config loads the headlines service configuration from YAML with
// .env files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
)

const (
	defaultServerHost   = "0.0.0.0"
	defaultServerPort   = 8060
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultFetchTimeout = 30 * time.Second
	defaultMaxBodyBytes = 10 << 20
	defaultWarmSchedule = "@every 30m"
	defaultRedisAddress = "localhost:6379"
	defaultRedisStream  = "headlines:refreshed"
	maxPort             = 65535
)

// DefaultKeywords is used when neither the file nor KEYWORDS provide any.
var DefaultKeywords = []string{"climate"}

// Config is the root configuration document.
type Config struct {
	Debug    bool           `env:"APP_DEBUG" yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Logging  logger.Config  `yaml:"logging"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Keywords []string       `env:"KEYWORDS"  yaml:"keywords"`
	Sources  []SourceConfig `yaml:"sources"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST"  yaml:"host"`
	Port         int           `env:"SERVER_PORT"  yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// FetchConfig bounds each page download.
type FetchConfig struct {
	Timeout      time.Duration `env:"FETCH_TIMEOUT"    yaml:"timeout"`
	UserAgent    string        `env:"FETCH_USER_AGENT" yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// CacheConfig controls per-source caching and background warming.
// A zero TTL selects the jittered one-hour default.
type CacheConfig struct {
	TTL          time.Duration `env:"CACHE_TTL"           yaml:"ttl"`
	WarmSchedule string        `env:"CACHE_WARM_SCHEDULE" yaml:"warm_schedule"`
	DisableWarm  bool          `env:"CACHE_DISABLE_WARM"  yaml:"disable_warm"`
}

// AuthConfig protects the admin routes when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// RedisConfig configures the optional refresh event stream.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Stream   string `env:"REDIS_STREAM"         yaml:"stream"`
}

// SourceConfig describes one monitored page.
type SourceConfig struct {
	Name     string   `yaml:"name"`
	Address  string   `yaml:"address"`
	Base     string   `yaml:"base"`
	Keywords []string `yaml:"keywords"`
}

// EffectiveKeywords returns the source's own keywords, or global when it has none.
func (s SourceConfig) EffectiveKeywords(global []string) []string {
	if len(s.Keywords) > 0 {
		return s.Keywords
	}
	return global
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	cfg, err := LoadFileWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	cfg.Logging.SetDefaults()
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = defaultFetchTimeout
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Cache.WarmSchedule == "" {
		cfg.Cache.WarmSchedule = defaultWarmSchedule
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = defaultRedisStream
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = slices.Clone(DefaultKeywords)
	}
}

// Validate checks the whole document and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return &ValidationError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return &ValidationError{Field: "cache.ttl", Message: "must not be negative"}
	}
	if !c.Cache.DisableWarm {
		if _, err := cron.ParseStandard(c.Cache.WarmSchedule); err != nil {
			return &ValidationError{Field: "cache.warm_schedule", Message: err.Error()}
		}
	}
	return ValidateSources(c.Sources, c.Keywords)
}

// ValidateSources checks names, addresses and keyword coverage.
func ValidateSources(sources []SourceConfig, global []string) error {
	if len(sources) == 0 {
		return &ValidationError{Field: "sources", Message: "at least one source is required"}
	}

	seen := make(map[string]struct{}, len(sources))
	for i, src := range sources {
		field := fmt.Sprintf("sources[%d]", i)
		if src.Name == "" {
			return &ValidationError{Field: field + ".name", Message: "is required"}
		}
		if _, dup := seen[src.Name]; dup {
			return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate source %q", src.Name)}
		}
		seen[src.Name] = struct{}{}

		if err := validateHTTPURL(field+".address", src.Address, true); err != nil {
			return err
		}
		if err := validateHTTPURL(field+".base", src.Base, false); err != nil {
			return err
		}
		if !hasKeyword(src.EffectiveKeywords(global)) {
			return &ValidationError{Field: field + ".keywords", Message: "no non-empty keyword configured"}
		}
	}
	return nil
}

func validateHTTPURL(field, raw string, required bool) error {
	if raw == "" {
		if required {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: field, Message: "must be an absolute http(s) URL"}
	}
	return nil
}

func hasKeyword(keywords []string) bool {
	return slices.ContainsFunc(keywords, func(k string) bool { return k != "" })
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrInvalidLevel is wrapped by ValidateLogLevel failures.
var ErrInvalidLevel = errors.New("invalid log level")

// ValidateLogLevel accepts the levels the logger understands.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return fmt.Errorf("logging.level %q: %w", level, ErrInvalidLevel)
	}
}
