// Package app assembles medmission from its configuration: the storage
// backend and its wrappers, the identifier allocator, the record store and
// the mission service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/medmission/medmission/internal/config"
	"github.com/medmission/medmission/internal/domain/catalog"
	"github.com/medmission/medmission/internal/domain/mission"
	"github.com/medmission/medmission/internal/domain/patientid"
	"github.com/medmission/medmission/internal/domain/registry"
	"github.com/medmission/medmission/internal/platform/db"
	"github.com/medmission/medmission/internal/platform/hipaa"
	"github.com/medmission/medmission/internal/platform/kv"
	"github.com/medmission/medmission/internal/platform/telemetry"
)

type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *telemetry.Metrics
	Catalog *catalog.Catalog

	// Store is the backend wrapped with encryption (when configured) and
	// write counting. Every domain component writes through it.
	Store kv.Store

	IDs     *patientid.Allocator
	Records *registry.Store
	Mission *mission.Service

	backend kv.Store
	pool    *pgxpool.Pool
}

// NewLogger builds the process logger: JSON lines on w, or a console
// writer in development, at cfg.LogLevel.
func NewLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// New opens the configured backend and builds every component on top of it.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: telemetry.NewMetrics(),
		Catalog: catalog.Default(),
	}

	backend, pool, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	a.pool = pool

	var store kv.Store = backend
	if cfg.StoreEncryptionKey != "" {
		sealer, err := hipaa.NewSealerFromHex(cfg.StoreEncryptionKey)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("store encryption: %w", err)
		}
		store = kv.NewSealed(store, sealer)
	}
	a.Store = kv.NewInstrumented(store, a.Metrics)

	a.IDs = patientid.NewAllocator(a.Store, logger, patientid.WithMetrics(a.Metrics))

	policy := registry.PolicyRemint
	if cfg.IDPolicy == config.PolicyReuse {
		policy = registry.PolicyReuse
	}
	a.Records, err = registry.Open(ctx, a.Store, a.IDs, logger,
		registry.WithPolicy(policy),
		registry.WithCatalog(a.Catalog),
		registry.WithMetrics(a.Metrics),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Mission = mission.NewService(a.Store, logger)

	logger.Debug().
		Str("driver", cfg.StoreDriver).
		Bool("encrypted", cfg.StoreEncryptionKey != "").
		Msg("medmission ready")
	return a, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (kv.Store, *pgxpool.Pool, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return kv.NewMemory(), nil, nil
	case config.DriverFile:
		s, err := kv.NewFile(cfg.StorePath)
		return s, nil, err
	case config.DriverSQLite:
		s, err := kv.NewSQLite(ctx, cfg.StorePath)
		return s, nil, err
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		s, err := kv.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// WriteMetrics writes the metrics textfile when METRICS_FILE is set.
func (a *App) WriteMetrics() error {
	return a.Metrics.WriteTextfile(a.Config.MetricsFile)
}

// Close releases the backend and, for postgres, the connection pool.
func (a *App) Close() error {
	var errs []error
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
