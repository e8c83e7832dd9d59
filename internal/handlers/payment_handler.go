package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/internal/services"
	"github.com/stayease/hotel-booking-backend/pkg/promptpay"
)

// PaymentHandler handles payment slip and transfer QR requests
type PaymentHandler struct {
	bookings    *services.BookingService
	promptPayID string
	logger      *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(bookings *services.BookingService, promptPayID string, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{bookings: bookings, promptPayID: promptPayID, logger: logger}
}

// SubmitSlip handles POST /api/v1/payments
func (h *PaymentHandler) SubmitSlip(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.SubmitSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	slip, err := h.bookings.SubmitPaymentSlip(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, slip)
}

// ListSlips handles GET /api/v1/payments (staff)
func (h *PaymentHandler) ListSlips(c *gin.Context) {
	var status *models.SlipStatus
	if v := strings.ToUpper(c.Query("status")); v != "" {
		s := models.SlipStatus(v)
		if !s.IsValid() {
			badRequest(c, "Invalid status filter")
			return
		}
		status = &s
	}

	slips, err := h.bookings.ListSlips(c.Request.Context(), status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, slips)
}

// ListBookingSlips handles GET /api/v1/payments/booking/:bookingId
func (h *PaymentHandler) ListBookingSlips(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "bookingId")
	if !ok {
		return
	}

	slips, err := h.bookings.ListSlipsForBooking(c.Request.Context(), p, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, slips)
}

// ReviewSlip handles PATCH /api/v1/payments/:id (staff)
func (h *PaymentHandler) ReviewSlip(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.ReviewSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	slip, err := h.bookings.ReviewPaymentSlip(c.Request.Context(), p, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, slip)
}

// TransferQR handles GET /api/v1/payments/qr?pp=&amount=
func (h *PaymentHandler) TransferQR(c *gin.Context) {
	target := strings.TrimSpace(c.Query("pp"))
	if target == "" {
		target = h.promptPayID
	}
	if target == "" {
		badRequest(c, "pp is required")
		return
	}

	var amount *float64
	if v := strings.TrimSpace(c.Query("amount")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "amount must be a number")
			return
		}
		amount = &f
	}

	payload, err := promptpay.Payload(target, amount)
	if err != nil {
		if errors.Is(err, promptpay.ErrInvalidTarget) || errors.Is(err, promptpay.ErrInvalidAmount) {
			badRequest(c, err.Error())
			return
		}
		respondError(c, h.logger, err)
		return
	}

	image, err := promptpay.DataURI(payload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payload": payload,
		"image":   image,
	})
}
