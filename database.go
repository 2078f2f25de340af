package main

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub-backend/internal/kv"
	"eventhub-backend/internal/store"
)

var (
	Backend kv.Backend
	Store   *store.Store
)

// OpenBackend connects the key-value backend named by cfg.StoreBackend.
func OpenBackend(cfg Config) (kv.Backend, error) {
	switch cfg.StoreBackend {
	case "memory":
		return kv.NewMemory(), nil
	case "sqlite":
		return kv.OpenSQLite(cfg.SQLitePath)
	case "postgres":
		return kv.OpenPostgres(cfg.Postgres.DSN())
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// InitStore opens the backend, builds the domain store and seeds the demo
// catalog when asked to.
func InitStore(ctx context.Context, cfg Config, logger *slog.Logger) error {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.StoreBackend, err)
	}

	s := store.New(backend,
		store.WithLogger(logger),
		store.WithCapacityEnforcement(cfg.EnforceCapacity),
	)
	if cfg.SeedDemoData {
		if err := s.Seed(ctx); err != nil {
			backend.Close()
			return err
		}
	}

	Backend = backend
	Store = s
	logger.Info("store ready",
		slog.String("backend", cfg.StoreBackend),
		slog.Bool("enforce_capacity", cfg.EnforceCapacity),
	)
	return nil
}
