package models

import (
	"time"

	"github.com/google/uuid"
)

// SlipStatus represents the review state of a payment slip
type SlipStatus string

const (
	SlipStatusSubmitted SlipStatus = "SUBMITTED"
	SlipStatusApproved  SlipStatus = "APPROVED"
	SlipStatusRejected  SlipStatus = "REJECTED"
)

// IsValid checks if the slip status is a known value
func (s SlipStatus) IsValid() bool {
	switch s {
	case SlipStatusSubmitted, SlipStatusApproved, SlipStatusRejected:
		return true
	}
	return false
}

// PaymentSlip is one uploaded proof of bank transfer for a booking
type PaymentSlip struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	BookingID       uuid.UUID  `json:"booking_id" db:"booking_id"`
	SlipImage       string     `json:"slip_image" db:"slip_image"`
	Amount          *float64   `json:"amount,omitempty" db:"amount"`
	Status          SlipStatus `json:"status" db:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// SlipWithBooking joins a slip with its booking for the staff review list
type SlipWithBooking struct {
	PaymentSlip
	Booking *Booking `json:"booking"`
}

// SubmitSlipRequest represents a guest's proof-of-payment upload
type SubmitSlipRequest struct {
	BookingID string   `json:"booking_id"`
	SlipImage string   `json:"slip_image"`
	Amount    *float64 `json:"amount,omitempty"`
}

// ReviewSlipRequest represents a staff decision on a slip
type ReviewSlipRequest struct {
	Status          string  `json:"status" binding:"required"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}
