package store

import (
	"context"
	"fmt"
	"log"

	"budget-server/src/config"
)

// New builds the backend selected by cfg.DBDriver and wraps it with the
// snapshot cache.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	var (
		inner Store
		err   error
	)
	switch cfg.DBDriver {
	case "postgres":
		inner, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	case "sqlite":
		inner, err = NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Initialized %s store", cfg.DBDriver)
	return NewCachedStore(inner)
}
