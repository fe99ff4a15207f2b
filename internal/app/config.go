package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	MetricCacheTTL time.Duration `envconfig:"METRIC_CACHE_TTL" default:"0"`

	GeneratorWorkers     int `envconfig:"GENERATOR_WORKERS" default:"0"`
	GeneratorMetricCost  int `envconfig:"GENERATOR_METRIC_COST" default:"8000000"`
	GeneratorMaxRows     int `envconfig:"GENERATOR_MAX_ROWS" default:"500"`
	GeneratorDefaultRows int `envconfig:"GENERATOR_DEFAULT_ROWS" default:"50"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.GeneratorMetricCost <= 0 {
		return nil, errors.New("generator metric cost must be positive")
	}
	if cfg.GeneratorMaxRows <= 0 {
		return nil, errors.New("generator max rows must be positive")
	}
	if cfg.GeneratorDefaultRows < 0 {
		return nil, errors.New("generator default rows must not be negative")
	}
	if cfg.GeneratorDefaultRows > cfg.GeneratorMaxRows {
		return nil, errors.New("generator default rows must not exceed max rows")
	}
	if cfg.GeneratorWorkers < 0 {
		return nil, errors.New("generator workers must not be negative")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// CacheEnabled reports whether computed metrics should be cached in
// Redis. A zero TTL turns caching off entirely.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.MetricCacheTTL > 0 && c.RedisAddr != ""
}
