package bootstrap

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStores_Memory(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	stores, db, err := OpenStores(config.DatabaseConfig{URL: config.MemoryDatabaseURL}, logger)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.PingContext(context.Background()))
	assert.NotNil(t, stores.RoomTypes)
	assert.NotNil(t, stores.Bookings)
	assert.NotNil(t, stores.Slips)
	assert.NotNil(t, stores.Users)
	assert.NotNil(t, stores.Packages)
}

func TestOpenStores_MissingURL(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, _, err := OpenStores(config.DatabaseConfig{Driver: "pgx"}, logger)
	assert.Error(t, err)
}

func TestNewScheduler_WithoutRedis(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	stores, db, err := OpenStores(config.DatabaseConfig{URL: config.MemoryDatabaseURL}, logger)
	require.NoError(t, err)
	defer db.Close()

	scheduler, cleanup, err := NewScheduler(config.SchedulerConfig{Enabled: true}, stores, logger)
	require.NoError(t, err)
	defer cleanup()

	statuses := scheduler.Status()
	require.Len(t, statuses, 2)
	assert.Equal(t, "expire-stale-bookings", statuses[0].Name)
	assert.Equal(t, "release-checked-out-rooms", statuses[1].Name)
}

func TestNewScheduler_BadRedisURL(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	stores, db, err := OpenStores(config.DatabaseConfig{URL: config.MemoryDatabaseURL}, logger)
	require.NoError(t, err)
	defer db.Close()

	_, cleanup, err := NewScheduler(config.SchedulerConfig{RedisURL: "not a url"}, stores, logger)
	defer cleanup()
	assert.Error(t, err)
}
