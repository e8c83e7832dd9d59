package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// IsValid checks if the booking status is a known value
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// IsClosed reports whether the booking no longer holds a stay
func (s BookingStatus) IsClosed() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsValid checks if the payment status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// UIStatus is the single guest-facing label derived for a booking
type UIStatus string

const (
	UIStatusCancelled      UIStatus = "CANCELLED"
	UIStatusRejected       UIStatus = "REJECTED"
	UIStatusAwaitingReview UIStatus = "AWAITING_REVIEW"
	UIStatusConfirmed      UIStatus = "CONFIRMED"
	UIStatusPendingPayment UIStatus = "PENDING_PAYMENT"
)

// DeriveUIStatus computes the guest-facing label. Precedence: cancellation,
// then a rejected latest slip, then a slip awaiting review, then paid.
func DeriveUIStatus(status BookingStatus, payment PaymentStatus, latestSlip *SlipStatus) UIStatus {
	if status == BookingStatusCancelled {
		return UIStatusCancelled
	}
	if latestSlip != nil {
		switch *latestSlip {
		case SlipStatusRejected:
			return UIStatusRejected
		case SlipStatusSubmitted:
			return UIStatusAwaitingReview
		}
	}
	if payment == PaymentStatusPaid {
		return UIStatusConfirmed
	}
	return UIStatusPendingPayment
}

// ContactDetails holds the guest's contact information for a booking
type ContactDetails struct {
	Name           string `json:"name" db:"contact_name"`
	Email          string `json:"email" db:"contact_email" binding:"omitempty,email"`
	Phone          string `json:"phone" db:"contact_phone" binding:"omitempty,thaiphone"`
	SpecialRequest string `json:"special_request" db:"special_request"`
}

// Booking is one guest's reservation against a room type
type Booking struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	UserID         uuid.UUID     `json:"user_id" db:"user_id"`
	RoomTypeID     uuid.UUID     `json:"room_type_id" db:"room_type_id"`
	RoomCode       *string       `json:"room_code,omitempty" db:"room_code"`
	CheckIn        time.Time     `json:"check_in" db:"check_in"`
	CheckOut       time.Time     `json:"check_out" db:"check_out"`
	Guests         int           `json:"guests" db:"guests"`
	ContactDetails `json:"contact"`
	TotalAmount    float64       `json:"total_amount" db:"total_amount"`
	Status         BookingStatus `json:"status" db:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status" db:"payment_status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// HasRoom reports whether a room unit has been assigned
func (b *Booking) HasRoom() bool {
	return b.RoomCode != nil && *b.RoomCode != ""
}

// Nights returns the stay length in nights, never less than one
func (b *Booking) Nights() int {
	return CountNights(b.CheckIn, b.CheckOut)
}

// CountNights is max(1, ceil((checkOut - checkIn) / 24h))
func CountNights(checkIn, checkOut time.Time) int {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		return 1
	}
	return nights
}

// CreateBookingRequest represents the request to create a booking.
// Guests is loosely typed: anything that is not a positive number becomes 1.
type CreateBookingRequest struct {
	RoomTypeID string         `json:"room_type_id"`
	CheckIn    string         `json:"check_in"`
	CheckOut   string         `json:"check_out"`
	Guests     interface{}    `json:"guests"`
	Contact    ContactDetails `json:"contact"`
}

// ParseGuests normalises a loosely typed guest count, defaulting to 1
func ParseGuests(v interface{}) int {
	switch g := v.(type) {
	case float64:
		if g >= 1 && g == math.Trunc(g) && g <= math.MaxInt32 {
			return int(g)
		}
	case int:
		if g >= 1 {
			return g
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(g)); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}

var bookingDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBookingDate accepts RFC3339 timestamps and plain dates (UTC)
func ParseBookingDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range bookingDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UpdateBookingStatusRequest is a staff override; only supplied fields apply
type UpdateBookingStatusRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
}

// BookingFilter narrows the admin booking listing
type BookingFilter struct {
	Status        *BookingStatus
	PaymentStatus *PaymentStatus
}

// MyBooking is the guest-facing projection of a booking
type MyBooking struct {
	Booking
	RoomType        *RoomTypeSummary `json:"room_type"`
	LatestSlip      *PaymentSlip     `json:"latest_slip"`
	Nights          int              `json:"nights"`
	ComputedAmount  float64          `json:"computed_amount"`
	DisplayedAmount float64          `json:"displayed_amount"`
	UIStatus        UIStatus         `json:"ui_status"`
}
