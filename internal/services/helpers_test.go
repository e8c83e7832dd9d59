package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/database/memstore"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the services under test
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	store     *memstore.Store
	clock     *testClock
	logger    *logrus.Logger
	inventory *RoomInventoryService
	bookings  *BookingService
	recon     *ReconciliationService
	guest     *models.Principal
	admin     *models.Principal
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &testClock{t: baseTime}
	store := memstore.New().WithClock(clock.Now)
	logger := newTestLogger()

	return &testEnv{
		store:     store,
		clock:     clock,
		logger:    logger,
		inventory: NewRoomInventoryService(store, logger),
		bookings:  NewBookingService(store, store, store, logger).WithClock(clock.Now),
		recon:     NewReconciliationService(store, store, logger).WithClock(clock.Now),
		guest:     &models.Principal{ID: uuid.New(), Role: models.RoleUser},
		admin:     &models.Principal{ID: uuid.New(), Role: models.RoleAdmin},
	}
}

// roomType creates a room type with count generated units coded prefix+NNN
func (e *testEnv) roomType(t *testing.T, name, prefix string, price float64, count int) *models.RoomType {
	t.Helper()
	ctx := context.Background()

	rt, err := e.inventory.CreateRoomType(ctx, &models.CreateRoomTypeRequest{
		Type:          name,
		Capacity:      2,
		BedType:       "King",
		PricePerNight: price,
		Amenities:     []string{"wifi"},
	})
	require.NoError(t, err)

	if count > 0 {
		rt, err = e.inventory.AddRoomUnits(ctx, rt.ID, prefix, count)
		require.NoError(t, err)
	}
	return rt
}

// book creates a booking for the guest starting at checkIn for nights nights
func (e *testEnv) book(t *testing.T, rt *models.RoomType, checkIn time.Time, nights int) *models.Booking {
	t.Helper()

	b, err := e.bookings.CreateBooking(context.Background(), e.guest, &models.CreateBookingRequest{
		RoomTypeID: rt.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkIn.Add(time.Duration(nights) * 24 * time.Hour).Format(time.RFC3339),
		Guests:     float64(2),
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) unitStatus(t *testing.T, roomTypeID uuid.UUID, code string) models.RoomUnitStatus {
	t.Helper()

	rt, err := e.inventory.GetRoomType(context.Background(), roomTypeID)
	require.NoError(t, err)
	unit := rt.FindUnit(code)
	require.NotNil(t, unit, code)
	return unit.Status
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *models.Booking {
	t.Helper()

	b, err := e.store.GetBookingByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), err.Error())
}
