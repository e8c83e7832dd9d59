package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/middleware"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/internal/services"
)

// PackageHandler handles promotional package requests
type PackageHandler struct {
	packages *services.PackageService
	logger   *logrus.Logger
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(packages *services.PackageService, logger *logrus.Logger) *PackageHandler {
	return &PackageHandler{packages: packages, logger: logger}
}

// List handles GET /api/v1/packages. Inactive packages are listed only for
// staff asking with ?all=true.
func (h *PackageHandler) List(c *gin.Context) {
	includeInactive := false
	if c.Query("all") == "true" {
		p, ok := middleware.GetUserContext(c)
		includeInactive = ok && p.IsAdmin()
	}

	packages, err := h.packages.List(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

// Create handles POST /api/v1/packages
func (h *PackageHandler) Create(c *gin.Context) {
	var req models.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.packages.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update handles PATCH /api/v1/packages/:id
func (h *PackageHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.packages.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/v1/packages/:id
func (h *PackageHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.packages.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted"})
}
