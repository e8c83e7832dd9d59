package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

// BookingService owns every transition of booking status, payment status
// and room unit occupancy triggered by guests or staff
type BookingService struct {
	bookings  database.BookingStore
	slips     database.PaymentSlipStore
	roomTypes database.RoomTypeStore
	logger    *logrus.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings database.BookingStore,
	slips database.PaymentSlipStore,
	roomTypes database.RoomTypeStore,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		slips:     slips,
		roomTypes: roomTypes,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the service clock
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// ============================================================================
// BOOKINGS
// ============================================================================

// CreateBooking records a PENDING/PENDING booking against a room type.
// No room unit is claimed; only assignment is exclusive.
func (s *BookingService) CreateBooking(ctx context.Context, principal *models.Principal, req *models.CreateBookingRequest) (*models.Booking, error) {
	if principal == nil || principal.ID == uuid.Nil {
		return nil, NewAuthError("Not authorized")
	}
	if strings.TrimSpace(req.RoomTypeID) == "" {
		return nil, NewValidationError("room_type_id is required")
	}
	roomTypeID, err := uuid.Parse(strings.TrimSpace(req.RoomTypeID))
	if err != nil {
		return nil, NewValidationError("Invalid room_type_id")
	}

	checkIn, okIn := models.ParseBookingDate(req.CheckIn)
	checkOut, okOut := models.ParseBookingDate(req.CheckOut)
	if !okIn || !okOut || !checkOut.After(checkIn) {
		return nil, NewValidationError("Invalid dates")
	}

	rt, err := s.roomTypes.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, NewNotFoundError("Room type not found")
	}

	booking := &models.Booking{
		UserID:         principal.ID,
		RoomTypeID:     rt.ID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Guests:         models.ParseGuests(req.Guests),
		ContactDetails: req.Contact,
		TotalAmount:    rt.PricePerNight * float64(models.CountNights(checkIn, checkOut)),
		Status:         models.BookingStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		CreatedAt:      s.now(),
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"user_id":      booking.UserID,
		"room_type_id": booking.RoomTypeID,
	}).Info("Booking created")
	return booking, nil
}

// GetBooking returns a booking visible to the principal
func (s *BookingService) GetBooking(ctx context.Context, principal *models.Principal, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(booking.UserID) {
		return nil, NewForbiddenError("You don't have access to this booking")
	}
	return booking, nil
}

// ListBookings returns every booking for staff
func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	return s.bookings.ListBookings(ctx, filter)
}

// AssignRoomUnit binds the first available unit of the booking's room type to it
// and confirms the booking. The unit flip and the booking write commit together.
func (s *BookingService) AssignRoomUnit(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	rt, err := s.roomTypes.GetRoomTypeByID(ctx, booking.RoomTypeID)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, NewNotFoundError("Room type not found")
	}

	if booking.HasRoom() {
		return nil, NewConflictError("Booking already has room "+*booking.RoomCode, nil)
	}
	if booking.Status.IsClosed() {
		return nil, NewConflictError("Booking is "+string(booking.Status), nil)
	}

	code, err := s.bookings.AssignRoom(ctx, booking.ID, rt.ID)
	switch {
	case errors.Is(err, database.ErrNoAvailableUnit):
		return nil, NewConflictError("No available rooms", err)
	case errors.Is(err, database.ErrNotAssignable):
		return nil, NewConflictError("Booking can no longer be assigned a room", err)
	case err != nil:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id":   booking.ID,
			"room_type_id": rt.ID,
		}).Error("Room assignment failed, unit and booking rolled back")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"room_type_id": rt.ID,
		"room_code":    code,
	}).Info("Room unit assigned")

	return s.loadBooking(ctx, booking.ID)
}

// UpdateBookingStatus is a staff override of status and/or payment status.
// Cancelling a booking that holds a room frees the room.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id uuid.UUID, req *models.UpdateBookingStatusRequest) (*models.Booking, error) {
	var status *models.BookingStatus
	var payment *models.PaymentStatus

	if req.Status != nil {
		st := models.BookingStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !st.IsValid() {
			return nil, NewValidationError("invalid status: " + *req.Status)
		}
		status = &st
	}
	if req.PaymentStatus != nil {
		ps := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(*req.PaymentStatus)))
		if !ps.IsValid() {
			return nil, NewValidationError("invalid payment_status: " + *req.PaymentStatus)
		}
		payment = &ps
	}
	if status == nil && payment == nil {
		return nil, NewValidationError("status or payment_status is required")
	}

	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	found, err := s.bookings.UpdateBookingStatus(ctx, id, status, payment)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, NewNotFoundError("Booking not found")
	}

	// Closing a booking gives its room back
	if status != nil && status.IsClosed() && booking.HasRoom() {
		released, err := s.roomTypes.ReleaseRoomUnit(ctx, booking.RoomTypeID, *booking.RoomCode, booking.ID)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"room_code":  *booking.RoomCode,
				"status":     *status,
			}).Error("Failed to release room of closed booking")
		} else if released {
			s.logger.WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"room_code":  *booking.RoomCode,
				"status":     *status,
			}).Info("Room released after status override")
		}
	}

	return s.loadBooking(ctx, id)
}

// ListMyBookings returns the guest's bookings, newest first, with the derived
// amount and guest-facing status of each
func (s *BookingService) ListMyBookings(ctx context.Context, userID uuid.UUID) ([]*models.MyBooking, error) {
	bookings, err := s.bookings.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roomTypes := make(map[uuid.UUID]*models.RoomType)
	result := make([]*models.MyBooking, 0, len(bookings))
	for _, b := range bookings {
		rt, seen := roomTypes[b.RoomTypeID]
		if !seen {
			rt, err = s.roomTypes.GetRoomTypeByID(ctx, b.RoomTypeID)
			if err != nil {
				return nil, err
			}
			roomTypes[b.RoomTypeID] = rt
		}

		latest, err := s.slips.LatestSlipForBooking(ctx, b.ID)
		if err != nil {
			return nil, err
		}

		result = append(result, project(b, rt, latest))
	}
	return result, nil
}

// project builds the guest-facing view of one booking
func project(b *models.Booking, rt *models.RoomType, latest *models.PaymentSlip) *models.MyBooking {
	nights := b.Nights()
	view := &models.MyBooking{
		Booking:    *b,
		LatestSlip: latest,
		Nights:     nights,
	}

	if rt != nil {
		view.RoomType = rt.Summary()
		view.ComputedAmount = rt.PricePerNight * float64(nights)
	} else {
		// The room type was deleted after booking; fall back to the stored total
		view.ComputedAmount = b.TotalAmount
	}

	view.DisplayedAmount = view.ComputedAmount
	var latestStatus *models.SlipStatus
	if latest != nil {
		latestStatus = &latest.Status
		if latest.Amount != nil && !math.IsNaN(*latest.Amount) && !math.IsInf(*latest.Amount, 0) {
			view.DisplayedAmount = *latest.Amount
		}
	}

	view.UIStatus = models.DeriveUIStatus(b.Status, b.PaymentStatus, latestStatus)
	return view
}

func (s *BookingService) loadBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, NewNotFoundError("Booking not found")
	}
	return booking, nil
}
