package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pickUnitSQL      = `(?s)SELECT code FROM room_units.+FOR UPDATE SKIP LOCKED`
	occupyUnitSQL    = `UPDATE room_units SET status = 'occupied'`
	assignBookingSQL = `UPDATE bookings SET room_code = \$2, status = 'CONFIRMED'`
)

func TestAssignRoom(t *testing.T) {
	bookingID := uuid.New()
	roomTypeID := uuid.New()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(pickUnitSQL).
			WithArgs(roomTypeID).
			WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("D001"))
		mock.ExpectExec(occupyUnitSQL).
			WithArgs(roomTypeID, "D001").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(assignBookingSQL).
			WithArgs(bookingID, "D001").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		code, err := repo.AssignRoom(ctx, bookingID, roomTypeID)
		require.NoError(t, err)
		assert.Equal(t, "D001", code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No available unit", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(pickUnitSQL).
			WithArgs(roomTypeID).
			WillReturnRows(sqlmock.NewRows([]string{"code"}))
		mock.ExpectRollback()

		_, err := repo.AssignRoom(ctx, bookingID, roomTypeID)
		assert.ErrorIs(t, err, ErrNoAvailableUnit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booking already assigned rolls back the unit", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(pickUnitSQL).
			WithArgs(roomTypeID).
			WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("D002"))
		mock.ExpectExec(occupyUnitSQL).
			WithArgs(roomTypeID, "D002").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(assignBookingSQL).
			WithArgs(bookingID, "D002").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.AssignRoom(ctx, bookingID, roomTypeID)
		assert.ErrorIs(t, err, ErrNotAssignable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(pickUnitSQL).
			WithArgs(roomTypeID).
			WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		_, err := repo.AssignRoom(ctx, bookingID, roomTypeID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to pick room unit")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateBookingStatus_OnlySuppliedFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	id := uuid.New()
	paid := models.PaymentStatusPaid

	mock.ExpectExec(`UPDATE bookings\s+SET status = COALESCE\(\$2::text, status\)`).
		WithArgs(id, nil, "PAID").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.UpdateBookingStatus(context.Background(), id, nil, &paid)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBookings_Filter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	confirmed := models.BookingStatusConfirmed
	pending := models.PaymentStatusPending

	mock.ExpectQuery(`FROM bookings WHERE status = \$1 AND payment_status = \$2 ORDER BY created_at DESC`).
		WithArgs("CONFIRMED", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	bookings, err := repo.ListBookings(context.Background(), models.BookingFilter{Status: &confirmed, PaymentStatus: &pending})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCheckedOut_SkipsCancelledAndReleasedBookings(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)b\.check_out <= \$1\s+AND b\.status <> 'CANCELLED'\s+AND \(b\.status <> 'COMPLETED' OR EXISTS \(.+u\.status = 'occupied'`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ListCheckedOut(context.Background(), now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookingWithSlips(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM payment_slips WHERE booking_id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM bookings WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slips, err := repo.DeleteBookingWithSlips(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, slips)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookingWithSlips_RowsAffectedError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM payment_slips WHERE booking_id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver lost count")))
	mock.ExpectRollback()

	_, err := repo.DeleteBookingWithSlips(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read deleted payment slips")
	assert.NoError(t, mock.ExpectationsWereMet())
}
