package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/middleware"
	"github.com/stayease/hotel-booking-backend/internal/services"
)

// AdminHandler exposes the reconciliation scheduler to staff
type AdminHandler struct {
	scheduler *services.SchedulerService
	logger    *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(scheduler *services.SchedulerService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{scheduler: scheduler, logger: logger}
}

// RunExpireSweep handles POST /api/v1/admin/sweeps/expire
func (h *AdminHandler) RunExpireSweep(c *gin.Context) {
	h.runSweep(c, services.SweepExpireStaleBookings)
}

// RunReleaseSweep handles POST /api/v1/admin/sweeps/release
func (h *AdminHandler) RunReleaseSweep(c *gin.Context) {
	h.runSweep(c, services.SweepReleaseCheckedOutRooms)
}

func (h *AdminHandler) runSweep(c *gin.Context, name string) {
	result, err := h.scheduler.RunNow(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entry := h.logger.WithField("task", name)
	if p, ok := middleware.GetUserContext(c); ok {
		entry = entry.WithField("user_id", p.ID)
	}
	entry.Info("Sweep triggered manually")

	c.JSON(http.StatusOK, result)
}

// SweepStatus handles GET /api/v1/admin/sweeps/status
func (h *AdminHandler) SweepStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.scheduler.Status()})
}
