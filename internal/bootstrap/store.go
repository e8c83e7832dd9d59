// Package bootstrap wires the storage backend selected by configuration.
package bootstrap

import (
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/config"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/database/memstore"
)

// OpenStores connects to Postgres, or builds the in-memory store for memory://
func OpenStores(cfg config.DatabaseConfig, logger *logrus.Logger) (database.Stores, database.DB, error) {
	if cfg.IsMemory() {
		logger.Warn("Using in-memory store; data is lost on restart")
		store := memstore.New()
		return store.Stores(), store, nil
	}

	logger.WithField("driver", cfg.Driver).Info("Connecting to database...")
	db, err := database.NewConnection(cfg)
	if err != nil {
		return database.Stores{}, nil, err
	}
	logger.Info("Database connection established")
	return db.Stores(), db, nil
}
