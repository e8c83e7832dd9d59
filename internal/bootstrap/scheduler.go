package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/config"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/services"
)

// NewScheduler builds the reconciliation scheduler, locking each tick through
// Redis when REDIS_URL is configured. The returned cleanup closes the Redis client.
func NewScheduler(cfg config.SchedulerConfig, stores database.Stores, logger *logrus.Logger) (*services.SchedulerService, func(), error) {
	recon := services.NewReconciliationService(stores.Bookings, stores.RoomTypes, logger)
	cleanup := func() {}

	var locker services.SweepLocker
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, cleanup, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, cleanup, fmt.Errorf("failed to reach redis: %w", err)
		}

		locker = services.NewRedisSweepLocker(client)
		cleanup = func() { client.Close() }
		logger.Info("Sweep ticks are locked through Redis")
	}

	scheduler, err := services.NewReconciliationScheduler(recon, logger, locker, cfg.LockTTL)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return scheduler, cleanup, nil
}
