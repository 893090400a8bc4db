package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/pkg/database"
	"github.com/clinicpulse/clinicpulse_backend/pkg/email"
	"github.com/clinicpulse/clinicpulse_backend/pkg/logs"
	"github.com/clinicpulse/clinicpulse_backend/pkg/observability"
	redispkg "github.com/clinicpulse/clinicpulse_backend/pkg/redis"
	s3pkg "github.com/clinicpulse/clinicpulse_backend/pkg/s3"
	"github.com/clinicpulse/clinicpulse_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideGorm),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvideNatsClient),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := logs.New(cfg)
	slog.SetDefault(logger)
	return logger
}

func ProvideGorm(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGorm(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrations.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			return nil, err
		}
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return database.Close(db)
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	if cfg.S3.Bucket == "" {
		// Object storage is optional; uploads fail cleanly without it.
		return nil, nil
	}
	return s3pkg.New(cfg.S3)
}

// ProvideNatsClient connects to the event bus. An empty URL disables it;
// services skip publishing on a nil connection.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
