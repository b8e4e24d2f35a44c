package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/samber/oops"

	"musify/internal/adapter/memory"
	"musify/internal/adapter/postgres"
	"musify/internal/config"
	"musify/internal/domain"
	"musify/internal/observability"
)

// store is the full set of repositories the services need.
type store interface {
	domain.AccountRepository
	domain.PlaylistRepository
	domain.TrackRepository
	domain.PlaylistTrackRepository
}

type openedStore struct {
	store
	ready observability.ReadinessChecker
	close func() error
}

// openStore connects the configured storage backend. PostgreSQL is migrated
// once reachable when database.auto_migrate is set.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *log.Logger) (*openedStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return &openedStore{
			store: memory.New(),
			ready: func(context.Context) error { return nil },
			close: func() error { return nil },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.URL, postgres.Options{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnectAttempts: cfg.ConnectAttempts,
		})
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
		}
		if cfg.AutoMigrate {
			if err := migrateUp(cfg.URL, logger); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &openedStore{store: db, ready: db.Ping, close: db.Close}, nil

	default:
		return nil, oops.Code("CONFIG_INVALID").With("driver", cfg.Driver).Errorf("unknown database driver")
	}
}

func migrateUp(databaseURL string, logger *log.Logger) (err error) {
	m, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = oops.Code("MIGRATION_FAILED").With("operation", "close migrator").Wrap(cerr)
		}
	}()

	if err := m.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "read version").Wrap(err)
	}
	logger.Info("database migrated", "version", version, "dirty", dirty)
	return nil
}
