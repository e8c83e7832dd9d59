package services

import (
	"context"
	"testing"
	"time"

	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpireStaleBookings_GraceWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	stale := env.book(t, rt, baseTime.Add(72*time.Hour), 1)
	env.submitSlip(t, stale, nil)

	env.clock.Advance(2 * time.Minute)
	fresh := env.book(t, rt, baseTime.Add(72*time.Hour), 1)

	env.clock.Advance(29 * time.Minute) // stale is 31m old, fresh 29m
	result, err := env.recon.ExpireStaleBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepExpireStaleBookings, result.Sweep)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Failed)

	assert.Nil(t, env.reload(t, stale.ID))
	slips, err := env.store.ListSlipsByBooking(ctx, stale.ID)
	require.NoError(t, err)
	assert.Empty(t, slips)

	assert.NotNil(t, env.reload(t, fresh.ID))
}

func TestExpireStaleBookings_PaidBookingsSurvive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	b := env.book(t, rt, baseTime.Add(72*time.Hour), 1)
	env.review(t, env.submitSlip(t, b, nil), "APPROVED", nil)

	env.clock.Advance(2 * time.Hour)
	result, err := env.recon.ExpireStaleBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
	assert.NotNil(t, env.reload(t, b.ID))
}

func TestExpireStaleBookings_ReleasesHeldRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	b := env.book(t, rt, baseTime.Add(72*time.Hour), 1)
	_, err := env.bookings.AssignRoomUnit(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomUnitStatusOccupied, env.unitStatus(t, rt.ID, "D001"))

	env.clock.Advance(31 * time.Minute)
	result, err := env.recon.ExpireStaleBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Nil(t, env.reload(t, b.ID))
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D001"))
}

func TestSweeps_NothingToDoStillTimed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Each clock read moves time forward by a second
	calls := 0
	env.recon.WithClock(func() time.Time {
		calls++
		return baseTime.Add(time.Duration(calls-1) * time.Second)
	})

	result, err := env.recon.ExpireStaleBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
	assert.Equal(t, baseTime, result.StartedAt)
	assert.Equal(t, time.Second, result.Duration)

	result, err = env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
	assert.Equal(t, time.Second, result.Duration)
}

// paidAndAssigned books, pays for and assigns a room for nights starting at checkIn
func (e *testEnv) paidAndAssigned(t *testing.T, rt *models.RoomType, checkIn time.Time, nights int) *models.Booking {
	t.Helper()

	b := e.book(t, rt, checkIn, nights)
	e.review(t, e.submitSlip(t, b, nil), "APPROVED", nil)
	assigned, err := e.bookings.AssignRoomUnit(context.Background(), b.ID)
	require.NoError(t, err)
	return assigned
}

func TestReleaseCheckedOutRooms_Boundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 2)

	// Check-out one second ago
	past := env.paidAndAssigned(t, rt, baseTime.Add(-24*time.Hour-time.Second), 1)
	// Check-out in one second
	future := env.paidAndAssigned(t, rt, baseTime.Add(-24*time.Hour+time.Second), 1)

	result, err := env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepReleaseCheckedOutRooms, result.Sweep)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Processed)

	assert.Equal(t, models.BookingStatusCompleted, env.reload(t, past.ID).Status)
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, *past.RoomCode))

	assert.Equal(t, models.BookingStatusConfirmed, env.reload(t, future.ID).Status)
	assert.Equal(t, models.RoomUnitStatusOccupied, env.unitStatus(t, rt.ID, *future.RoomCode))

	// Completed bookings are not picked up again
	result, err = env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
}

func TestReleaseCheckedOutRooms_SkipsCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	b := env.paidAndAssigned(t, rt, baseTime.Add(-48*time.Hour), 1)
	cancelled := "CANCELLED"
	_, err := env.bookings.UpdateBookingStatus(ctx, b.ID, &models.UpdateBookingStatusRequest{Status: &cancelled})
	require.NoError(t, err)

	result, err := env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
	assert.Equal(t, models.BookingStatusCancelled, env.reload(t, b.ID).Status)
}

func TestReleaseCheckedOutRooms_FreesAnyNonAvailableUnit(t *testing.T) {
	for _, status := range []models.RoomUnitStatus{models.RoomUnitStatusMaintenance, models.RoomUnitStatusInactive} {
		t.Run(string(status), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			rt := env.roomType(t, "Deluxe", "D", 1000, 1)

			b := env.paidAndAssigned(t, rt, baseTime.Add(-48*time.Hour), 1)
			_, err := env.inventory.SetRoomUnitStatus(ctx, rt.ID, *b.RoomCode, status)
			require.NoError(t, err)

			result, err := env.recon.ReleaseCheckedOutRooms(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Processed)
			assert.Equal(t, models.BookingStatusCompleted, env.reload(t, b.ID).Status)
			assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, *b.RoomCode))

			// Staff may take the unit out of service again; the completed booking
			// no longer touches it
			_, err = env.inventory.SetRoomUnitStatus(ctx, rt.ID, *b.RoomCode, status)
			require.NoError(t, err)
			result, err = env.recon.ReleaseCheckedOutRooms(ctx)
			require.NoError(t, err)
			assert.Zero(t, result.Matched)
			assert.Equal(t, status, env.unitStatus(t, rt.ID, *b.RoomCode))
		})
	}
}

func TestReleaseCheckedOutRooms_CompletedBookingStillOccupied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	b := env.paidAndAssigned(t, rt, baseTime.Add(24*time.Hour), 1)

	// Closed at the store level without giving the room back
	completed := models.BookingStatusCompleted
	_, err := env.store.UpdateBookingStatus(ctx, b.ID, &completed, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoomUnitStatusOccupied, env.unitStatus(t, rt.ID, "D001"))

	// Before checkout nothing happens
	result, err := env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Matched)

	env.clock.Advance(48 * time.Hour)
	result, err = env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D001"))
	assert.Equal(t, models.BookingStatusCompleted, env.reload(t, b.ID).Status)
}

func TestReleaseCheckedOutRooms_CompletedByOverride(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	b := env.paidAndAssigned(t, rt, baseTime.Add(24*time.Hour), 1)
	completed := "COMPLETED"
	_, err := env.bookings.UpdateBookingStatus(ctx, b.ID, &models.UpdateBookingStatusRequest{Status: &completed})
	require.NoError(t, err)

	env.clock.Advance(48 * time.Hour)
	_, err = env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D001"))
}

func TestReleaseCheckedOutRooms_UnitHeldByAnotherBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	old := env.paidAndAssigned(t, rt, baseTime.Add(-48*time.Hour), 1)

	// Staff freed the unit by hand and it was handed to a new guest
	_, err := env.inventory.SetRoomUnitStatus(ctx, rt.ID, "D001", models.RoomUnitStatusAvailable)
	require.NoError(t, err)
	current := env.paidAndAssigned(t, rt, baseTime.Add(24*time.Hour), 2)
	require.Equal(t, "D001", *current.RoomCode)

	result, err := env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, models.BookingStatusCompleted, env.reload(t, old.ID).Status)
	assert.Equal(t, models.RoomUnitStatusOccupied, env.unitStatus(t, rt.ID, "D001"))
}

func TestBookingLifecycle_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rt := env.roomType(t, "Deluxe", "D", 1000, 2)
	require.Len(t, rt.Rooms, 2)
	assert.Equal(t, "D001", rt.Rooms[0].Code)
	assert.Equal(t, "D002", rt.Rooms[1].Code)

	checkIn := baseTime.Add(24 * time.Hour)
	b := env.book(t, rt, checkIn, 1)
	assert.Equal(t, 1000.0, b.TotalAmount)

	assigned, err := env.bookings.AssignRoomUnit(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "D001", *assigned.RoomCode)

	env.review(t, env.submitSlip(t, b, amount(1000)), "APPROVED", nil)

	mine, err := env.bookings.ListMyBookings(ctx, env.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UIStatusConfirmed, mine[0].UIStatus)

	// The paid booking outlives the unpaid grace window
	env.clock.Advance(time.Hour)
	_, err = env.recon.ExpireStaleBookings(ctx)
	require.NoError(t, err)
	require.NotNil(t, env.reload(t, b.ID))

	env.clock.t = checkIn.Add(24*time.Hour + time.Minute)
	result, err := env.recon.ReleaseCheckedOutRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	final := env.reload(t, b.ID)
	assert.Equal(t, models.BookingStatusCompleted, final.Status)
	assert.Equal(t, models.PaymentStatusPaid, final.PaymentStatus)
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D001"))
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D002"))
}
