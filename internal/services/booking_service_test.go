package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	checkIn := baseTime.Add(48 * time.Hour)
	b := env.book(t, rt, checkIn, 3)

	assert.Equal(t, env.guest.ID, b.UserID)
	assert.Equal(t, rt.ID, b.RoomTypeID)
	assert.Nil(t, b.RoomCode)
	assert.Equal(t, 2, b.Guests)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, models.PaymentStatusPending, b.PaymentStatus)
	assert.Equal(t, 3000.0, b.TotalAmount)
	assert.Equal(t, baseTime, b.CreatedAt)

	// Creating a booking never claims a unit
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D001"))
}

func TestCreateBooking_DateBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	checkIn := baseTime.Add(24 * time.Hour)

	_, err := env.bookings.CreateBooking(ctx, env.guest, &models.CreateBookingRequest{
		RoomTypeID: rt.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkIn.Format(time.RFC3339),
	})
	requireKind(t, err, KindValidation)

	b, err := env.bookings.CreateBooking(ctx, env.guest, &models.CreateBookingRequest{
		RoomTypeID: rt.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkIn.Add(time.Minute).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Nights())
}

func TestCreateBooking_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	in := baseTime.Format(time.RFC3339)
	out := baseTime.Add(24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name      string
		principal *models.Principal
		req       models.CreateBookingRequest
		kind      ErrorKind
	}{
		{"no principal", nil, models.CreateBookingRequest{RoomTypeID: rt.ID.String(), CheckIn: in, CheckOut: out}, KindUnauthorized},
		{"missing room type", env.guest, models.CreateBookingRequest{CheckIn: in, CheckOut: out}, KindValidation},
		{"malformed room type", env.guest, models.CreateBookingRequest{RoomTypeID: "abc", CheckIn: in, CheckOut: out}, KindValidation},
		{"unparseable date", env.guest, models.CreateBookingRequest{RoomTypeID: rt.ID.String(), CheckIn: "tomorrow", CheckOut: out}, KindValidation},
		{"checkout before checkin", env.guest, models.CreateBookingRequest{RoomTypeID: rt.ID.String(), CheckIn: out, CheckOut: in}, KindValidation},
		{"unknown room type", env.guest, models.CreateBookingRequest{RoomTypeID: uuid.NewString(), CheckIn: in, CheckOut: out}, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bookings.CreateBooking(ctx, tt.principal, &tt.req)
			requireKind(t, err, tt.kind)
		})
	}
}

func TestCreateBooking_GuestsDefaultToOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	for _, guests := range []interface{}{nil, "many", float64(0), float64(-2), 1.5} {
		b, err := env.bookings.CreateBooking(ctx, env.guest, &models.CreateBookingRequest{
			RoomTypeID: rt.ID.String(),
			CheckIn:    "2026-04-01",
			CheckOut:   "2026-04-02",
			Guests:     guests,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, b.Guests, "%v", guests)
	}
}

func TestCreateThenListMyBookings_PendingPayment(t *testing.T) {
	env := newTestEnv(t)
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	b := env.book(t, rt, baseTime.Add(24*time.Hour), 2)

	mine, err := env.bookings.ListMyBookings(context.Background(), env.guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	view := mine[0]
	assert.Equal(t, b.ID, view.ID)
	assert.Equal(t, models.UIStatusPendingPayment, view.UIStatus)
	assert.Equal(t, 2, view.Nights)
	assert.Equal(t, 2000.0, view.ComputedAmount)
	assert.Equal(t, 2000.0, view.DisplayedAmount)
	require.NotNil(t, view.RoomType)
	assert.Equal(t, "Deluxe", view.RoomType.TypeName)
	assert.Nil(t, view.LatestSlip)
}

func TestListMyBookings_DeletedRoomTypeFallsBackToStoredTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	env.book(t, rt, baseTime.Add(24*time.Hour), 2)

	require.NoError(t, env.inventory.DeleteRoomType(ctx, rt.ID))

	mine, err := env.bookings.ListMyBookings(ctx, env.guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].RoomType)
	assert.Equal(t, 2000.0, mine[0].ComputedAmount)
}

func TestGetBooking_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	b := env.book(t, rt, baseTime.Add(24*time.Hour), 1)

	_, err := env.bookings.GetBooking(ctx, env.guest, b.ID)
	require.NoError(t, err)
	_, err = env.bookings.GetBooking(ctx, env.admin, b.ID)
	require.NoError(t, err)

	stranger := &models.Principal{ID: uuid.New(), Role: models.RoleUser}
	_, err = env.bookings.GetBooking(ctx, stranger, b.ID)
	requireKind(t, err, KindForbidden)

	_, err = env.bookings.GetBooking(ctx, env.admin, uuid.New())
	requireKind(t, err, KindNotFound)
}

func TestAssignRoomUnit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 2)
	b := env.book(t, rt, baseTime.Add(24*time.Hour), 1)

	assigned, err := env.bookings.AssignRoomUnit(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.RoomCode)
	assert.Equal(t, "D001", *assigned.RoomCode)
	assert.Equal(t, models.BookingStatusConfirmed, assigned.Status)
	assert.Equal(t, models.RoomUnitStatusOccupied, env.unitStatus(t, rt.ID, "D001"))
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D002"))

	// A second assignment of the same booking is refused
	_, err = env.bookings.AssignRoomUnit(ctx, b.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D002"))
}

func TestAssignRoomUnit_SkipsNonAvailableUnits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 3)
	_, err := env.inventory.SetRoomUnitStatus(ctx, rt.ID, "D001", models.RoomUnitStatusMaintenance)
	require.NoError(t, err)

	b := env.book(t, rt, baseTime.Add(24*time.Hour), 1)
	assigned, err := env.bookings.AssignRoomUnit(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "D002", *assigned.RoomCode)
}

func TestAssignRoomUnit_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)

	_, err := env.bookings.AssignRoomUnit(ctx, uuid.New())
	requireKind(t, err, KindNotFound)

	first := env.book(t, rt, baseTime.Add(24*time.Hour), 1)
	second := env.book(t, rt, baseTime.Add(24*time.Hour), 1)
	_, err = env.bookings.AssignRoomUnit(ctx, first.ID)
	require.NoError(t, err)

	_, err = env.bookings.AssignRoomUnit(ctx, second.ID)
	requireKind(t, err, KindConflict)
	assert.Nil(t, env.reload(t, second.ID).RoomCode)

	cancelled := "CANCELLED"
	third := env.book(t, rt, baseTime.Add(24*time.Hour), 1)
	_, err = env.bookings.UpdateBookingStatus(ctx, third.ID, &models.UpdateBookingStatusRequest{Status: &cancelled})
	require.NoError(t, err)
	_, err = env.bookings.AssignRoomUnit(ctx, third.ID)
	requireKind(t, err, KindConflict)

	orphan := env.book(t, rt, baseTime.Add(24*time.Hour), 1)
	require.NoError(t, env.inventory.DeleteRoomType(ctx, rt.ID))
	_, err = env.bookings.AssignRoomUnit(ctx, orphan.ID)
	requireKind(t, err, KindNotFound)
}

func TestAssignRoomUnit_ConcurrentNeverSharesAUnit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 2)

	const bookings = 12
	ids := make([]uuid.UUID, bookings)
	for i := range ids {
		ids[i] = env.book(t, rt, baseTime.Add(24*time.Hour), 1).ID
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	codes := map[string]int{}
	conflicts := 0

	start := make(chan struct{})
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			<-start
			b, err := env.bookings.AssignRoomUnit(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if KindOf(err) == KindConflict {
					conflicts++
				}
				return
			}
			codes[*b.RoomCode]++
		}(id)
	}
	close(start)
	wg.Wait()

	assert.Len(t, codes, 2)
	for code, n := range codes {
		assert.Equal(t, 1, n, "unit %s assigned more than once", code)
	}
	assert.Equal(t, bookings-2, conflicts)
}

func TestUpdateBookingStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	b := env.book(t, rt, baseTime.Add(24*time.Hour), 1)

	paid := "paid"
	updated, err := env.bookings.UpdateBookingStatus(ctx, b.ID, &models.UpdateBookingStatusRequest{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, models.BookingStatusPending, updated.Status)

	bogus := "LOST"
	_, err = env.bookings.UpdateBookingStatus(ctx, b.ID, &models.UpdateBookingStatusRequest{Status: &bogus})
	requireKind(t, err, KindValidation)

	_, err = env.bookings.UpdateBookingStatus(ctx, b.ID, &models.UpdateBookingStatusRequest{})
	requireKind(t, err, KindValidation)

	confirmed := "CONFIRMED"
	_, err = env.bookings.UpdateBookingStatus(ctx, uuid.New(), &models.UpdateBookingStatusRequest{Status: &confirmed})
	requireKind(t, err, KindNotFound)
}

func TestUpdateBookingStatus_CancelReleasesRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	b := env.book(t, rt, baseTime.Add(24*time.Hour), 1)

	_, err := env.bookings.AssignRoomUnit(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomUnitStatusOccupied, env.unitStatus(t, rt.ID, "D001"))

	cancelled := "CANCELLED"
	updated, err := env.bookings.UpdateBookingStatus(ctx, b.ID, &models.UpdateBookingStatusRequest{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, updated.Status)
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D001"))

	mine, err := env.bookings.ListMyBookings(ctx, env.guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.UIStatusCancelled, mine[0].UIStatus)
}

func TestUpdateBookingStatus_CompleteReleasesRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 1)
	b := env.book(t, rt, baseTime.Add(24*time.Hour), 1)

	_, err := env.bookings.AssignRoomUnit(ctx, b.ID)
	require.NoError(t, err)

	completed := "completed"
	updated, err := env.bookings.UpdateBookingStatus(ctx, b.ID, &models.UpdateBookingStatusRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, updated.Status)
	assert.Equal(t, models.RoomUnitStatusAvailable, env.unitStatus(t, rt.ID, "D001"))
}

func TestListBookings_Filter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rt := env.roomType(t, "Deluxe", "D", 1000, 2)
	a := env.book(t, rt, baseTime.Add(24*time.Hour), 1)
	env.book(t, rt, baseTime.Add(24*time.Hour), 1)

	_, err := env.bookings.AssignRoomUnit(ctx, a.ID)
	require.NoError(t, err)

	all, err := env.bookings.ListBookings(ctx, models.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed := models.BookingStatusConfirmed
	only, err := env.bookings.ListBookings(ctx, models.BookingFilter{Status: &confirmed})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, a.ID, only[0].ID)
}
