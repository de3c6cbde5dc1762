package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "AUTHORSITE"

// Database holds Turso database configuration.
type Database struct {
	URL       string `envconfig:"DATABASE_URL" required:"true"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// Server holds HTTP server configuration. TrustedProxies lists the CIDR
// prefixes or addresses allowed to set X-Forwarded-For.
type Server struct {
	Port           int      `envconfig:"PORT" default:"8080"`
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// RateLimit holds public API rate limiting configuration.
// Rate limiting is disabled when RedisAddr is empty.
type RateLimit struct {
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	Requests      int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	Window        time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Billing holds payment provider webhook configuration.
type Billing struct {
	WebhookSecret    string        `envconfig:"STRIPE_WEBHOOK_SECRET"`
	WebhookTolerance time.Duration `envconfig:"STRIPE_WEBHOOK_TOLERANCE" default:"5m"`
}

// Telemetry holds OTEL exporter configuration.
type Telemetry struct {
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"false"`
}

// App is the full service configuration. The sections are embedded so their
// variables share the AUTHORSITE_ prefix without a section infix.
type App struct {
	Database
	Server
	RateLimit
	Billing
	Telemetry
	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"1m"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads the service configuration from AUTHORSITE_* environment variables.
func Load() (*App, error) {
	var cfg App
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase loads only the database settings, for commands that need nothing else.
func LoadDatabase() (*Database, error) {
	var cfg Database
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("%s_DATABASE_URL is required", envPrefix)
	}
	return &cfg, nil
}

func (c *App) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("%s_DATABASE_URL is required", envPrefix)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.RateLimit.RedisAddr != "" && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requires positive requests and window, got %d per %s", c.RateLimit.Requests, c.RateLimit.Window)
	}
	if c.StatsCacheTTL < 0 {
		return fmt.Errorf("stats cache TTL cannot be negative")
	}
	return nil
}
