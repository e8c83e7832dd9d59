package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

const bookingColumns = `id, user_id, room_type_id, room_code, check_in, check_out, guests,
	contact_name, contact_email, contact_phone, special_request, total_amount,
	status, payment_status, created_at, updated_at`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking inserts a new booking
func (r *BookingRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.UpdatedAt = b.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		b.ID, b.UserID, b.RoomTypeID, b.RoomCode, b.CheckIn, b.CheckOut, b.Guests,
		b.Name, b.Email, b.Phone, b.SpecialRequest, b.TotalAmount,
		b.Status, b.PaymentStatus, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetBookingByID returns the booking or nil when it does not exist
func (r *BookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// ListBookingsByUser returns a user's bookings, newest first
func (r *BookingRepository) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error) {
	bookings := []*models.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return bookings, nil
}

// ListBookings returns all bookings matching the filter, newest first
func (r *BookingRepository) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	conditions := []string{}
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PaymentStatus != nil {
		args = append(args, *filter.PaymentStatus)
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	bookings := []*models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBookingStatus applies whichever of status and payment status were supplied
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status *models.BookingStatus, payment *models.PaymentStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = COALESCE($2::text, status),
			payment_status = COALESCE($3::text, payment_status),
			updated_at = NOW()
		WHERE id = $1`,
		id, nullableString((*string)(status)), nullableString((*string)(payment)),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	return affected(result)
}

// AssignRoom claims a unit and confirms the booking in a single transaction.
// SKIP LOCKED lets concurrent assignments against the same type each take a different unit.
func (r *BookingRepository) AssignRoom(ctx context.Context, bookingID, roomTypeID uuid.UUID) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var code string
	err = tx.GetContext(ctx, &code, `
		SELECT code FROM room_units
		WHERE room_type_id = $1 AND status = 'available'
		ORDER BY position
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, roomTypeID)
	if err == sql.ErrNoRows {
		return "", ErrNoAvailableUnit
	}
	if err != nil {
		return "", fmt.Errorf("failed to pick room unit: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE room_units SET status = 'occupied', updated_at = NOW()
		WHERE room_type_id = $1 AND code = $2 AND status = 'available'`, roomTypeID, code)
	if err != nil {
		return "", fmt.Errorf("failed to occupy room unit: %w", err)
	}
	if ok, err := affected(result); err != nil {
		return "", err
	} else if !ok {
		return "", ErrNoAvailableUnit
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE bookings SET room_code = $2, status = 'CONFIRMED', updated_at = NOW()
		WHERE id = $1 AND room_code IS NULL AND status IN ('PENDING', 'CONFIRMED')`, bookingID, code)
	if err != nil {
		return "", fmt.Errorf("failed to assign room to booking: %w", err)
	}
	if ok, err := affected(result); err != nil {
		return "", err
	} else if !ok {
		return "", ErrNotAssignable
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit room assignment: %w", err)
	}
	return code, nil
}

// ListExpiredUnpaid returns PENDING-payment bookings created at or before the threshold
func (r *BookingRepository) ListExpiredUnpaid(ctx context.Context, createdBefore time.Time) ([]*models.Booking, error) {
	bookings := []*models.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE payment_status = 'PENDING' AND created_at <= $1
		ORDER BY created_at`, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired bookings: %w", err)
	}
	return bookings, nil
}

// ListCheckedOut returns bookings holding a room whose checkout has passed.
// Cancelled bookings are never returned; completed ones only while their unit
// is still occupied.
func (r *BookingRepository) ListCheckedOut(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	bookings := []*models.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+prefixColumns("b", bookingColumns)+` FROM bookings b
		WHERE b.room_code IS NOT NULL AND b.room_code <> ''
		  AND b.check_out <= $1
		  AND b.status <> 'CANCELLED'
		  AND (b.status <> 'COMPLETED' OR EXISTS (
			SELECT 1 FROM room_units u
			WHERE u.room_type_id = b.room_type_id AND u.code = b.room_code AND u.status = 'occupied'
		  ))
		ORDER BY b.check_out`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list checked-out bookings: %w", err)
	}
	return bookings, nil
}

// DeleteBookingWithSlips removes the booking's slips and then the booking.
// Returns the number of slips removed.
func (r *BookingRepository) DeleteBookingWithSlips(ctx context.Context, id uuid.UUID) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM payment_slips WHERE booking_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payment slips: %w", err)
	}
	slips, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted payment slips: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to delete booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit booking deletion: %w", err)
	}
	return int(slips), nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
