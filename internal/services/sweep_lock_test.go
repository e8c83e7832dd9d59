package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockLocker(t *testing.T) (*RedisSweepLocker, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	locker := NewRedisSweepLocker(client)
	locker.newToken = func() string { return "token-1" }
	return locker, mock
}

func TestRedisSweepLocker_AcquireAndRelease(t *testing.T) {
	locker, mock := newMockLocker(t)
	key := sweepLockPrefix + SweepExpireStaleBookings

	mock.ExpectSetNX(key, "token-1", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

	release, acquired, err := locker.TryLock(context.Background(), SweepExpireStaleBookings, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NotNil(t, release)

	release()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSweepLocker_HeldElsewhere(t *testing.T) {
	locker, mock := newMockLocker(t)
	key := sweepLockPrefix + SweepReleaseCheckedOutRooms

	mock.ExpectSetNX(key, "token-1", 5*time.Minute).SetVal(false)

	release, acquired, err := locker.TryLock(context.Background(), SweepReleaseCheckedOutRooms, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Nil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSweepLocker_Error(t *testing.T) {
	locker, mock := newMockLocker(t)
	key := sweepLockPrefix + SweepExpireStaleBookings

	mock.ExpectSetNX(key, "token-1", time.Minute).SetErr(errors.New("connection refused"))

	_, acquired, err := locker.TryLock(context.Background(), SweepExpireStaleBookings, time.Minute)
	require.Error(t, err)
	assert.False(t, acquired)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()

	_, err = NewRedisClient("not a url")
	assert.Error(t, err)
}
