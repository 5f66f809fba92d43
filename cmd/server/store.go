package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/config"
	"github.com/iliyamo/villa-booking/internal/database"
	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/repository"
	"github.com/iliyamo/villa-booking/internal/service"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore returns the store selected by DB_DRIVER.  SQL stores are
// migrated before use.  The memory store starts with the sample villa.
func openStore(ctx context.Context, cfg config.Config) (service.Store, io.Closer, error) {
	if cfg.DB.Driver == config.DriverMemory {
		logger.Warn("DB_DRIVER=memory: bookings are kept in process and lost on restart")
		return repository.NewMemoryStore(model.SampleVilla()), nopCloser{}, nil
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", cfg.DB.Driver, err)
	}
	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready", zap.String("driver", cfg.DB.Driver))
	return repository.NewSQLStore(db, cfg.DB.Driver, logger), db, nil
}

// seedVillas inserts villas unless the catalogue already has entries.
// It reports how many were inserted.
func seedVillas(ctx context.Context, store service.Store, villas []model.Villa) (int, error) {
	n, err := store.CountVillas(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i := range villas {
		if err := store.CreateVilla(ctx, &villas[i]); err != nil {
			return i, fmt.Errorf("insert villa %q: %w", villas[i].Name, err)
		}
	}
	return len(villas), nil
}
