package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/middleware"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondError maps a service error kind to its HTTP status
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{}
	}
	message := se.Message

	switch se.Kind {
	case services.KindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message, Code: "VALIDATION_ERROR"})
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: message, Code: "NOT_FOUND"})
	case services.KindConflict:
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: message, Code: "CONFLICT"})
	case services.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: message, Code: "UNAUTHORIZED"})
	case services.KindForbidden:
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: message, Code: "FORBIDDEN"})
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
			Code:    "INTERNAL_ERROR",
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message, Code: "VALIDATION_ERROR"})
}

// uuidParam parses a path parameter, answering 400 when it is not a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the caller set by the auth middleware
func principal(c *gin.Context) (*models.Principal, bool) {
	p, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
			Code:    "MISSING_USER_CONTEXT",
		})
		return nil, false
	}
	return p, true
}
