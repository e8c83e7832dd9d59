package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

// Reconciliation policy
const (
	UnpaidBookingGrace    = 30 * time.Minute
	ExpireSweepInterval   = 1 * time.Minute
	CheckoutSweepInterval = 5 * time.Minute
)

// releasableAfterCheckout lists the unit statuses the checkout sweep returns to available
var releasableAfterCheckout = []models.RoomUnitStatus{
	models.RoomUnitStatusOccupied,
	models.RoomUnitStatusMaintenance,
	models.RoomUnitStatusInactive,
}

// SweepResult summarises one sweep run
type SweepResult struct {
	Sweep     string        `json:"sweep"`
	Matched   int           `json:"matched"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Skipped   bool          `json:"skipped,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// ReconciliationService expires unpaid bookings and frees rooms after checkout.
// Each booking is handled on its own; one failure never aborts the batch.
type ReconciliationService struct {
	bookings  database.BookingStore
	roomTypes database.RoomTypeStore
	logger    *logrus.Logger
	now       func() time.Time
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	bookings database.BookingStore,
	roomTypes database.RoomTypeStore,
	logger *logrus.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		bookings:  bookings,
		roomTypes: roomTypes,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the service clock
func (s *ReconciliationService) WithClock(now func() time.Time) *ReconciliationService {
	s.now = now
	return s
}

// ExpireStaleBookings deletes bookings still unpaid after the grace window,
// together with their slips, freeing any room they held
func (s *ReconciliationService) ExpireStaleBookings(ctx context.Context) (*SweepResult, error) {
	started := s.now()
	result := &SweepResult{Sweep: SweepExpireStaleBookings, StartedAt: started}

	expired, err := s.bookings.ListExpiredUnpaid(ctx, started.Add(-UnpaidBookingGrace))
	if err != nil {
		return result, err
	}
	result.Matched = len(expired)
	if len(expired) == 0 {
		result.Duration = s.now().Sub(started)
		return result, nil
	}

	for _, b := range expired {
		if err := s.expire(ctx, b); err != nil {
			result.Failed++
			s.logger.WithError(err).WithField("booking_id", b.ID).Error("Failed to expire booking")
			continue
		}
		result.Processed++
	}

	result.Duration = s.now().Sub(started)
	s.logger.WithFields(logrus.Fields{
		"matched": result.Matched,
		"removed": result.Processed,
		"failed":  result.Failed,
	}).Info("Expired unpaid bookings")
	return result, nil
}

func (s *ReconciliationService) expire(ctx context.Context, b *models.Booking) error {
	// The room goes back first: a failure here leaves the booking for the next tick
	// instead of stranding an occupied unit with no booking pointing at it
	if b.HasRoom() {
		released, err := s.roomTypes.ReleaseRoomUnit(ctx, b.RoomTypeID, *b.RoomCode, b.ID)
		if err != nil {
			return err
		}
		if released {
			s.logger.WithFields(logrus.Fields{
				"booking_id": b.ID,
				"room_code":  *b.RoomCode,
			}).Info("Room released from expired booking")
		}
	}

	slips, err := s.bookings.DeleteBookingWithSlips(ctx, b.ID)
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"slips":      slips,
	}).Debug("Expired booking deleted")
	return nil
}

// ReleaseCheckedOutRooms frees the room of every booking whose checkout has
// passed, whatever non-available status the unit is in, and marks the booking
// COMPLETED. Cancelled bookings are skipped.
func (s *ReconciliationService) ReleaseCheckedOutRooms(ctx context.Context) (*SweepResult, error) {
	started := s.now()
	result := &SweepResult{Sweep: SweepReleaseCheckedOutRooms, StartedAt: started}

	bookings, err := s.bookings.ListCheckedOut(ctx, started)
	if err != nil {
		return result, err
	}
	result.Matched = len(bookings)
	if len(bookings) == 0 {
		result.Duration = s.now().Sub(started)
		return result, nil
	}

	for _, b := range bookings {
		if err := s.complete(ctx, b); err != nil {
			result.Failed++
			s.logger.WithError(err).WithField("booking_id", b.ID).Error("Failed to release checked-out room")
			continue
		}
		result.Processed++
	}

	result.Duration = s.now().Sub(started)
	s.logger.WithFields(logrus.Fields{
		"matched":   result.Matched,
		"completed": result.Processed,
		"failed":    result.Failed,
	}).Info("Released rooms after checkout")
	return result, nil
}

func (s *ReconciliationService) complete(ctx context.Context, b *models.Booking) error {
	released, err := s.roomTypes.ReleaseRoomUnit(ctx, b.RoomTypeID, *b.RoomCode, b.ID, releasableAfterCheckout...)
	if err != nil {
		return err
	}
	if released {
		s.logger.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"room_code":  *b.RoomCode,
		}).Debug("Room released after checkout")
	}
	if b.Status == models.BookingStatusCompleted {
		return nil
	}
	completed := models.BookingStatusCompleted
	_, err = s.bookings.UpdateBookingStatus(ctx, b.ID, &completed, nil)
	return err
}
