// Package config loads runtime configuration from the environment, with an
// optional .env file and an optional YAML overlay.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	HTTP struct {
		Addr            string        `env:"HTTP_ADDR,default=:8080" yaml:"addr"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=10s" yaml:"read_timeout"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=30s" yaml:"write_timeout"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s" yaml:"shutdown_timeout"`
		CORSOrigins     string        `env:"CORS_ORIGINS,default=*" yaml:"cors_origins"`
		RateLimitRPS    int           `env:"RATE_LIMIT_RPS,default=50" yaml:"rate_limit_rps"`
		RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=100" yaml:"rate_limit_burst"`
		RequestLogPath  string        `env:"HTTP_REQUEST_LOG" yaml:"request_log_path"`
	} `yaml:"http"`

	Database struct {
		// URL is the Postgres connection string. Empty runs on the
		// in-memory store.
		URL string `env:"DATABASE_URL" yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `env:"REDIS_ADDR" yaml:"addr"`
		Password string `env:"REDIS_PASSWORD" yaml:"password"`
		DB       int    `env:"REDIS_DB,default=0" yaml:"db"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret string        `env:"JWT_SECRET" yaml:"jwt_secret"`
		TokenTTL  time.Duration `env:"JWT_TTL,default=24h" yaml:"token_ttl"`
		APITokens string        `env:"API_TOKENS" yaml:"api_tokens"`
	} `yaml:"auth"`

	Geocode struct {
		Endpoint string        `env:"ALS_ENDPOINT" yaml:"endpoint"`
		CacheTTL time.Duration `env:"ALS_CACHE_TTL,default=24h" yaml:"cache_ttl"`
	} `yaml:"geocode"`

	Reservations struct {
		SweepSchedule string `env:"RESERVATION_SWEEP_SCHEDULE,default=@every 1h" yaml:"sweep_schedule"`
	} `yaml:"reservations"`

	Log struct {
		Level  string `env:"LOG_LEVEL,default=info" yaml:"level"`
		Format string `env:"LOG_FORMAT,default=json" yaml:"format"`
	} `yaml:"log"`
}

// Load reads configuration: .env (if present), then environment variables,
// then an optional YAML file overriding both. yamlPath may be empty.
func Load(yamlPath string) (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	return &cfg, nil
}

// CORSOriginList splits the configured origins.
func (c *Config) CORSOriginList() []string {
	return splitList(c.HTTP.CORSOrigins)
}

// APITokenList splits the configured static API tokens.
func (c *Config) APITokenList() []string {
	return splitList(c.Auth.APITokens)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
