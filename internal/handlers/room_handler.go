package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/internal/services"
)

const maxPageLimit = 100

// RoomHandler handles room type and room unit requests
type RoomHandler struct {
	inventory *services.RoomInventoryService
	logger    *logrus.Logger
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(inventory *services.RoomInventoryService, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{inventory: inventory, logger: logger}
}

// ListRoomTypes handles GET /api/v1/rooms
func (h *RoomHandler) ListRoomTypes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	roomTypes, total, err := h.inventory.ListRoomTypes(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_types": roomTypes,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// ListAvailable handles GET /api/v1/rooms/available
func (h *RoomHandler) ListAvailable(c *gin.Context) {
	filter, ok := availabilityFilter(c)
	if !ok {
		return
	}

	roomTypes, err := h.inventory.ListAvailableRoomTypes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, roomTypes)
}

func availabilityFilter(c *gin.Context) (models.AvailabilityFilter, bool) {
	var filter models.AvailabilityFilter

	if v := c.Query("capacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "capacity must be a non-negative integer")
			return filter, false
		}
		filter.MinCapacity = &n
	}
	for key, dst := range map[string]**float64{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		if v := c.Query(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				badRequest(c, key+" must be a non-negative number")
				return filter, false
			}
			*dst = &f
		}
	}

	filter.TypeName = strings.TrimSpace(c.Query("type"))
	for _, raw := range c.QueryArray("amenities") {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				filter.Amenities = append(filter.Amenities, a)
			}
		}
	}
	return filter, true
}

// GetRoomType handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoomType(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	rt, err := h.inventory.GetRoomType(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// CreateRoomType handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoomType(c *gin.Context) {
	var req models.CreateRoomTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	rt, err := h.inventory.CreateRoomType(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rt)
}

// UpdateRoomType handles PATCH /api/v1/rooms/:id
func (h *RoomHandler) UpdateRoomType(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateRoomTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	rt, err := h.inventory.UpdateRoomType(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// DeleteRoomType handles DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoomType(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventory.DeleteRoomType(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room type deleted"})
}

// AddRoomUnits handles POST /api/v1/rooms/:id/rooms
func (h *RoomHandler) AddRoomUnits(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.AddRoomUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	count := 1
	if req.Count != nil {
		count = *req.Count
	}

	rt, err := h.inventory.AddRoomUnits(c.Request.Context(), id, req.Prefix, count)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// UpdateRoomUnit handles PUT /api/v1/rooms/:id/rooms/:code
func (h *RoomHandler) UpdateRoomUnit(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateRoomUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	unit, err := h.inventory.UpdateRoomUnit(c.Request.Context(), id, c.Param("code"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

// RemoveRoomUnit handles DELETE /api/v1/rooms/:id/rooms/:code
func (h *RoomHandler) RemoveRoomUnit(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventory.RemoveRoomUnit(c.Request.Context(), id, c.Param("code")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room removed"})
}
