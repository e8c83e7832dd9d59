package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

const slipColumns = `id, booking_id, slip_image, amount, status, rejection_reason,
	reviewed_by, reviewed_at, created_at, updated_at`

// PaymentSlipRepository handles payment slip database operations
type PaymentSlipRepository struct {
	db *sqlx.DB
}

// NewPaymentSlipRepository creates a new PaymentSlipRepository
func NewPaymentSlipRepository(db *sqlx.DB) *PaymentSlipRepository {
	return &PaymentSlipRepository{db: db}
}

// CreateSlip inserts a new slip
func (r *PaymentSlipRepository) CreateSlip(ctx context.Context, slip *models.PaymentSlip) error {
	if slip.ID == uuid.Nil {
		slip.ID = uuid.New()
	}
	if slip.CreatedAt.IsZero() {
		slip.CreatedAt = time.Now()
	}
	slip.UpdatedAt = slip.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_slips (`+slipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		slip.ID, slip.BookingID, slip.SlipImage, slip.Amount, slip.Status, slip.RejectionReason,
		slip.ReviewedBy, slip.ReviewedAt, slip.CreatedAt, slip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment slip: %w", err)
	}
	return nil
}

// GetSlipByID returns the slip or nil when it does not exist
func (r *PaymentSlipRepository) GetSlipByID(ctx context.Context, id uuid.UUID) (*models.PaymentSlip, error) {
	var slip models.PaymentSlip
	err := r.db.GetContext(ctx, &slip, `SELECT `+slipColumns+` FROM payment_slips WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment slip: %w", err)
	}
	return &slip, nil
}

// UpdateSlipReview persists the review outcome of a slip
func (r *PaymentSlipRepository) UpdateSlipReview(ctx context.Context, slip *models.PaymentSlip) error {
	slip.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_slips
		SET status = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1`,
		slip.ID, slip.Status, slip.RejectionReason, slip.ReviewedBy, slip.ReviewedAt, slip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment slip: %w", err)
	}
	return nil
}

// LatestSlipForBooking returns the most recently created slip of a booking, or nil
func (r *PaymentSlipRepository) LatestSlipForBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentSlip, error) {
	var slip models.PaymentSlip
	err := r.db.GetContext(ctx, &slip, `
		SELECT `+slipColumns+` FROM payment_slips
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest payment slip: %w", err)
	}
	return &slip, nil
}

// ListSlipsByBooking returns a booking's slips, newest first
func (r *PaymentSlipRepository) ListSlipsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.PaymentSlip, error) {
	slips := []*models.PaymentSlip{}
	err := r.db.SelectContext(ctx, &slips, `
		SELECT `+slipColumns+` FROM payment_slips
		WHERE booking_id = $1
		ORDER BY created_at DESC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment slips: %w", err)
	}
	return slips, nil
}

// ListSlips returns slips (optionally by status), newest first, each with its booking
func (r *PaymentSlipRepository) ListSlips(ctx context.Context, status *models.SlipStatus) ([]*models.SlipWithBooking, error) {
	query := `SELECT ` + slipColumns + ` FROM payment_slips`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	slips := []*models.PaymentSlip{}
	if err := r.db.SelectContext(ctx, &slips, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list payment slips: %w", err)
	}

	result := make([]*models.SlipWithBooking, len(slips))
	if len(slips) == 0 {
		return result, nil
	}

	seen := make(map[uuid.UUID]bool)
	ids := []string{}
	for _, s := range slips {
		if !seen[s.BookingID] {
			seen[s.BookingID] = true
			ids = append(ids, s.BookingID.String())
		}
	}

	bookings := []*models.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = ANY($1::uuid[])`, pq.StringArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load slip bookings: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	for i, s := range slips {
		result[i] = &models.SlipWithBooking{PaymentSlip: *s, Booking: byID[s.BookingID]}
	}
	return result, nil
}
