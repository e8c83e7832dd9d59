package services

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

// SubmitPaymentSlip records a proof of payment and marks the booking as
// awaiting review (payment status PENDING)
func (s *BookingService) SubmitPaymentSlip(ctx context.Context, principal *models.Principal, req *models.SubmitSlipRequest) (*models.PaymentSlip, error) {
	if principal == nil || principal.ID == uuid.Nil {
		return nil, NewAuthError("Not authorized")
	}
	if strings.TrimSpace(req.BookingID) == "" {
		return nil, NewValidationError("booking_id is required")
	}
	if strings.TrimSpace(req.SlipImage) == "" {
		return nil, NewValidationError("slip_image is required")
	}
	bookingID, err := uuid.Parse(strings.TrimSpace(req.BookingID))
	if err != nil {
		return nil, NewValidationError("Invalid booking_id")
	}
	if req.Amount != nil && (math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0) || *req.Amount < 0) {
		return nil, NewValidationError("amount must be a non-negative number")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(booking.UserID) {
		return nil, NewForbiddenError("You don't have access to this booking")
	}

	slip := &models.PaymentSlip{
		BookingID: booking.ID,
		SlipImage: req.SlipImage,
		Amount:    req.Amount,
		Status:    models.SlipStatusSubmitted,
		CreatedAt: s.now(),
	}
	if err := s.slips.CreateSlip(ctx, slip); err != nil {
		return nil, err
	}

	pending := models.PaymentStatusPending
	if _, err := s.bookings.UpdateBookingStatus(ctx, booking.ID, nil, &pending); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"slip_id":    slip.ID,
		"booking_id": booking.ID,
	}).Info("Payment slip submitted")
	return slip, nil
}

// ReviewPaymentSlip approves or rejects a slip. Approval marks the booking PAID
// and CONFIRMED without claiming a room unit; rejection returns payment to PENDING
// so the guest can resubmit.
func (s *BookingService) ReviewPaymentSlip(ctx context.Context, reviewer *models.Principal, slipID uuid.UUID, req *models.ReviewSlipRequest) (*models.PaymentSlip, error) {
	newStatus := models.SlipStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if newStatus != models.SlipStatusApproved && newStatus != models.SlipStatusRejected {
		return nil, NewValidationError("status must be APPROVED or REJECTED")
	}

	slip, err := s.slips.GetSlipByID(ctx, slipID)
	if err != nil {
		return nil, err
	}
	if slip == nil {
		return nil, NewNotFoundError("Payment slip not found")
	}

	now := s.now()
	slip.Status = newStatus
	slip.ReviewedAt = &now
	if reviewer != nil {
		slip.ReviewedBy = &reviewer.ID
	}
	slip.RejectionReason = nil
	if newStatus == models.SlipStatusRejected && req.RejectionReason != nil {
		if reason := strings.TrimSpace(*req.RejectionReason); reason != "" {
			slip.RejectionReason = &reason
		}
	}

	if err := s.slips.UpdateSlipReview(ctx, slip); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBookingByID(ctx, slip.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		s.logger.WithFields(logrus.Fields{
			"slip_id":    slip.ID,
			"booking_id": slip.BookingID,
		}).Warn("Reviewed slip references a missing booking")
		return slip, nil
	}

	var status *models.BookingStatus
	var payment models.PaymentStatus
	if newStatus == models.SlipStatusApproved {
		payment = models.PaymentStatusPaid
		if booking.Status != models.BookingStatusConfirmed {
			confirmed := models.BookingStatusConfirmed
			status = &confirmed
		}
	} else {
		payment = models.PaymentStatusPending
	}

	if _, err := s.bookings.UpdateBookingStatus(ctx, booking.ID, status, &payment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"slip_id":        slip.ID,
		"booking_id":     booking.ID,
		"slip_status":    slip.Status,
		"payment_status": payment,
	}).Info("Payment slip reviewed")
	return slip, nil
}

// ListSlips returns slips for staff review, newest first
func (s *BookingService) ListSlips(ctx context.Context, status *models.SlipStatus) ([]*models.SlipWithBooking, error) {
	if status != nil && !status.IsValid() {
		return nil, NewValidationError("invalid slip status: " + string(*status))
	}
	return s.slips.ListSlips(ctx, status)
}

// ListSlipsForBooking returns a booking's slips to its owner or staff
func (s *BookingService) ListSlipsForBooking(ctx context.Context, principal *models.Principal, bookingID uuid.UUID) ([]*models.PaymentSlip, error) {
	if _, err := s.GetBooking(ctx, principal, bookingID); err != nil {
		return nil, err
	}
	return s.slips.ListSlipsByBooking(ctx, bookingID)
}
