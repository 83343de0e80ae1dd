package main

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/nbaedge/config"
	"github.com/alejandrodnm/nbaedge/internal/adapters/notify"
	"github.com/alejandrodnm/nbaedge/internal/adapters/storage"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/alejandrodnm/nbaedge/internal/ports"
)

// openStore elige el backend según storage.driver.
func openStore(cfg config.StorageConfig) (ports.StateStore, error) {
	switch cfg.Driver {
	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "file":
		s, err := storage.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func printReport(ctx context.Context, store ports.StateStore, console *notify.Console, bankroll float64) error {
	positions, err := store.LoadPositions(ctx)
	if err != nil {
		return err
	}
	console.PrintPositionsReport(positions, domain.ComputeStats(positions, bankroll))
	return nil
}
