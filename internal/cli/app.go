package cli

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/emiliopalmerini/authorsite/internal/adapters/logging"
	"github.com/emiliopalmerini/authorsite/internal/adapters/otel"
	"github.com/emiliopalmerini/authorsite/internal/adapters/redis"
	"github.com/emiliopalmerini/authorsite/internal/adapters/turso"
	"github.com/emiliopalmerini/authorsite/internal/billing"
	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/experiments"
	"github.com/emiliopalmerini/authorsite/internal/infrastructure/config"
	"github.com/emiliopalmerini/authorsite/internal/leads"
	"github.com/emiliopalmerini/authorsite/internal/ports"
	"github.com/emiliopalmerini/authorsite/internal/stats"
	"github.com/emiliopalmerini/authorsite/internal/web"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config  *config.App
	DB      *turso.DB
	Repos   *turso.Repositories
	Logger  *logging.ZapLogger
	Metrics ports.MetricsExporter
	// Limiter is nil when no Redis address is configured.
	Limiter ports.RateLimiter

	Experiments *experiments.Service
	Admin       *experiments.Admin
	Leads       *leads.Service
	Billing     *billing.Service
	Stats       *stats.Service

	redis *goredis.Client
}

// NewAppContext loads the configuration and creates all dependencies.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := turso.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &AppContext{
		Config:  cfg,
		DB:      db,
		Repos:   turso.NewRepositories(db.DB),
		Logger:  logger,
		Metrics: newMetricsExporter(ctx, cfg.Telemetry, logger),
	}

	if cfg.RateLimit.RedisAddr != "" {
		a.redis = redis.NewClient(cfg.RateLimit)
		a.Limiter = redis.NewRateLimiter(a.redis, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	a.wireServices()
	return a, nil
}

func newMetricsExporter(ctx context.Context, cfg config.Telemetry, logger ports.Logger) ports.MetricsExporter {
	if !cfg.Enabled {
		return otel.NewNoOpExporter()
	}
	exp, err := otel.NewExporter(ctx, cfg)
	if err != nil {
		logger.Warn("metrics export disabled", "error", err)
		return otel.NewNoOpExporter()
	}
	return exp
}

func (a *AppContext) wireServices() {
	a.Experiments = experiments.NewService(a.Repos.Experiments, a.Metrics, a.Logger)
	a.Admin = experiments.NewAdmin(a.Repos.Experiments, a.Logger)
	a.Leads = leads.NewService(a.Repos.Leads, a.Metrics, a.Logger)
	a.Billing = billing.NewService(a.Repos.BillingEvents, a.Metrics, a.Logger,
		a.Config.Billing.WebhookSecret, a.Config.Billing.WebhookTolerance)
	a.Stats = stats.NewService(a.Repos.Stats, stats.NewCache[*domain.PlatformStats](a.Config.StatsCacheTTL), a.Logger)
}

// Services returns the services exposed over HTTP.
func (a *AppContext) Services() web.Services {
	return web.Services{
		Experiments: a.Experiments,
		Admin:       a.Admin,
		Leads:       a.Leads,
		Billing:     a.Billing,
		Stats:       a.Stats,
	}
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	var firstErr error
	if a.Metrics != nil {
		if err := a.Metrics.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return firstErr
}

// withApp runs fn with a fresh AppContext and closes it afterwards.
func withApp(ctx context.Context, fn func(a *AppContext) error) error {
	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())
	return fn(app)
}
