package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/bootstrap"
	"github.com/stayease/hotel-booking-backend/internal/config"
	"github.com/stayease/hotel-booking-backend/internal/services"
)

func main() {
	only := flag.String("only", "", "run a single sweep: "+services.SweepExpireStaleBookings+" or "+services.SweepReleaseCheckedOutRooms)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	stores, db, err := bootstrap.OpenStores(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	scheduler, cleanup, err := bootstrap.NewScheduler(cfg.Scheduler, stores, logger)
	if err != nil {
		logger.Fatalf("Failed to build scheduler: %v", err)
	}
	defer cleanup()

	names := []string{services.SweepExpireStaleBookings, services.SweepReleaseCheckedOutRooms}
	if *only != "" {
		names = []string{*only}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	failed := false
	for _, name := range names {
		result, err := scheduler.RunNow(ctx, name)
		if err != nil {
			logger.WithError(err).WithField("task", name).Error("Sweep failed")
			failed = true
			continue
		}
		logger.WithFields(logrus.Fields{
			"task":      name,
			"matched":   result.Matched,
			"processed": result.Processed,
			"failed":    result.Failed,
			"skipped":   result.Skipped,
		}).Info("Sweep finished")
		failed = failed || result.Failed > 0
	}

	if failed {
		os.Exit(1)
	}
}
