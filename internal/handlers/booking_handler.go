package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/internal/services"
)

// BookingHandler handles booking lifecycle requests
type BookingHandler struct {
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GetMyBookings handles GET /api/v1/bookings/me
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListMyBookings(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ListBookings handles GET /api/v1/bookings (staff)
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var filter models.BookingFilter
	if v := strings.ToUpper(c.Query("status")); v != "" {
		status := models.BookingStatus(v)
		if !status.IsValid() {
			badRequest(c, "Invalid status filter")
			return
		}
		filter.Status = &status
	}
	if v := strings.ToUpper(c.Query("paymentStatus")); v != "" {
		payment := models.PaymentStatus(v)
		if !payment.IsValid() {
			badRequest(c, "Invalid paymentStatus filter")
			return
		}
		filter.PaymentStatus = &payment
	}

	bookings, err := h.bookings.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// UpdateBookingStatus handles PATCH /api/v1/bookings/:id (staff override)
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.UpdateBookingStatus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// AssignRoom handles POST /api/v1/bookings/:id/assign
func (h *BookingHandler) AssignRoom(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.AssignRoomUnit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
