package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

// MaxUnitsPerBatch caps a single addRoomUnits call
const MaxUnitsPerBatch = 500

// RoomInventoryService manages room types and the status of their units
type RoomInventoryService struct {
	roomTypes database.RoomTypeStore
	logger    *logrus.Logger
}

// NewRoomInventoryService creates a new RoomInventoryService
func NewRoomInventoryService(roomTypes database.RoomTypeStore, logger *logrus.Logger) *RoomInventoryService {
	return &RoomInventoryService{
		roomTypes: roomTypes,
		logger:    logger,
	}
}

// CreateRoomType stores a new room type with either no units or the supplied initial ones
func (s *RoomInventoryService) CreateRoomType(ctx context.Context, req *models.CreateRoomTypeRequest) (*models.RoomType, error) {
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}

	name := strings.TrimSpace(req.Type)
	existing, err := s.roomTypes.GetRoomTypeByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewValidationError(fmt.Sprintf("room type %q already exists", name))
	}

	status := models.RoomTypeStatusActive
	if req.Status != "" {
		status = models.RoomTypeStatus(req.Status)
	}

	rt := &models.RoomType{
		TypeName:      name,
		Slug:          slug.Make(name),
		Description:   req.Description,
		Capacity:      req.Capacity,
		BedType:       req.BedType,
		PricePerNight: req.PricePerNight,
		Amenities:     models.StringArray(req.Amenities),
		Images:        models.StringArray(req.Images),
		Status:        status,
		Rooms:         make([]models.RoomUnit, 0, len(req.Rooms)),
	}
	for _, room := range req.Rooms {
		unitStatus := models.RoomUnitStatusAvailable
		if room.Status != "" {
			unitStatus = models.RoomUnitStatus(room.Status)
		}
		rt.Rooms = append(rt.Rooms, models.RoomUnit{
			Code:   strings.TrimSpace(room.Code),
			Status: unitStatus,
			Images: models.StringArray(room.Images),
		})
	}

	if err := s.roomTypes.CreateRoomType(ctx, rt); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, NewValidationError(fmt.Sprintf("room type %q already exists", name))
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"room_type_id": rt.ID,
		"type":         rt.TypeName,
		"units":        len(rt.Rooms),
	}).Info("Room type created")
	return rt, nil
}

// GetRoomType returns one room type with its units
func (s *RoomInventoryService) GetRoomType(ctx context.Context, id uuid.UUID) (*models.RoomType, error) {
	rt, err := s.roomTypes.GetRoomTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, NewNotFoundError("Room type not found")
	}
	return rt, nil
}

// ListRoomTypes returns a page of room types. page starts at 1; limit <= 0 lists everything.
func (s *RoomInventoryService) ListRoomTypes(ctx context.Context, page, limit int) ([]*models.RoomType, int, error) {
	if limit <= 0 {
		return s.roomTypes.ListRoomTypes(ctx, 0, 0)
	}
	if page < 1 {
		page = 1
	}
	return s.roomTypes.ListRoomTypes(ctx, limit, (page-1)*limit)
}

// ListAvailableRoomTypes returns active types with at least one available unit
func (s *RoomInventoryService) ListAvailableRoomTypes(ctx context.Context, filter models.AvailabilityFilter) ([]*models.RoomType, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, NewValidationError("minPrice cannot exceed maxPrice")
	}
	return s.roomTypes.ListAvailableRoomTypes(ctx, filter)
}

// UpdateRoomType applies a partial update to the room type's own fields
func (s *RoomInventoryService) UpdateRoomType(ctx context.Context, id uuid.UUID, req *models.UpdateRoomTypeRequest) (*models.RoomType, error) {
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}

	rt, err := s.GetRoomType(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		name := strings.TrimSpace(*req.Type)
		if name != rt.TypeName {
			other, err := s.roomTypes.GetRoomTypeByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != rt.ID {
				return nil, NewValidationError(fmt.Sprintf("room type %q already exists", name))
			}
			rt.TypeName = name
			rt.Slug = slug.Make(name)
		}
	}
	if req.Description != nil {
		rt.Description = *req.Description
	}
	if req.Capacity != nil {
		rt.Capacity = *req.Capacity
	}
	if req.BedType != nil {
		rt.BedType = *req.BedType
	}
	if req.PricePerNight != nil {
		rt.PricePerNight = *req.PricePerNight
	}
	if req.Amenities != nil {
		rt.Amenities = models.StringArray(req.Amenities)
	}
	if req.Images != nil {
		rt.Images = models.StringArray(req.Images)
	}
	if req.Status != nil {
		rt.Status = models.RoomTypeStatus(*req.Status)
	}

	if err := s.roomTypes.UpdateRoomType(ctx, rt); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, NewValidationError(fmt.Sprintf("room type %q already exists", rt.TypeName))
		}
		return nil, err
	}
	return rt, nil
}

// DeleteRoomType removes a room type. Bookings that reference it are left as they are.
func (s *RoomInventoryService) DeleteRoomType(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.roomTypes.DeleteRoomType(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFoundError("Room type not found")
	}
	s.logger.WithField("room_type_id", id).Info("Room type deleted")
	return nil
}

// AddRoomUnits appends count available units coded prefix + 3-digit sequence,
// the sequence continuing from the current unit count
func (s *RoomInventoryService) AddRoomUnits(ctx context.Context, roomTypeID uuid.UUID, prefix string, count int) (*models.RoomType, error) {
	if count < 1 || count > MaxUnitsPerBatch {
		return nil, NewValidationError(fmt.Sprintf("count must be between 1 and %d", MaxUnitsPerBatch))
	}
	prefix = strings.TrimSpace(prefix)

	rt, err := s.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}

	start := len(rt.Rooms) + 1
	units := make([]models.RoomUnit, count)
	for i := range units {
		units[i] = models.RoomUnit{
			Code:   models.UnitCode(prefix, start+i),
			Status: models.RoomUnitStatusAvailable,
			Images: models.StringArray{},
		}
	}

	if err := s.roomTypes.AppendRoomUnits(ctx, roomTypeID, units); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, NewConflictError("Generated room code already exists in this room type", err)
		case errors.Is(err, database.ErrNotFound):
			return nil, NewNotFoundError("Room type not found")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"room_type_id": roomTypeID,
		"prefix":       prefix,
		"count":        count,
		"first_code":   units[0].Code,
	}).Info("Room units added")

	return s.GetRoomType(ctx, roomTypeID)
}

// SetRoomUnitStatus overwrites one unit's status. Setting the same status twice is a no-op.
func (s *RoomInventoryService) SetRoomUnitStatus(ctx context.Context, roomTypeID uuid.UUID, code string, status models.RoomUnitStatus) (*models.RoomUnit, error) {
	if !status.IsValid() {
		return nil, NewValidationError("invalid room status: " + string(status))
	}
	if _, err := s.GetRoomType(ctx, roomTypeID); err != nil {
		return nil, err
	}

	updated, err := s.roomTypes.SetRoomUnitStatus(ctx, roomTypeID, code, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, NewNotFoundError("Room not found")
	}
	return s.getUnit(ctx, roomTypeID, code)
}

// UpdateRoomUnit changes a unit's status and/or images
func (s *RoomInventoryService) UpdateRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string, req *models.UpdateRoomUnitRequest) (*models.RoomUnit, error) {
	if req.Status == nil && req.Images == nil {
		return nil, NewValidationError("status or images is required")
	}
	if req.Status != nil {
		if _, err := s.SetRoomUnitStatus(ctx, roomTypeID, code, models.RoomUnitStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		if _, err := s.GetRoomType(ctx, roomTypeID); err != nil {
			return nil, err
		}
		updated, err := s.roomTypes.UpdateRoomUnitImages(ctx, roomTypeID, code, req.Images)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, NewNotFoundError("Room not found")
		}
	}
	return s.getUnit(ctx, roomTypeID, code)
}

// RemoveRoomUnit deletes one unit from its room type
func (s *RoomInventoryService) RemoveRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string) error {
	if _, err := s.GetRoomType(ctx, roomTypeID); err != nil {
		return err
	}
	removed, err := s.roomTypes.RemoveRoomUnit(ctx, roomTypeID, code)
	if err != nil {
		return err
	}
	if !removed {
		return NewNotFoundError("Room not found")
	}
	s.logger.WithFields(logrus.Fields{"room_type_id": roomTypeID, "code": code}).Info("Room unit removed")
	return nil
}

func (s *RoomInventoryService) getUnit(ctx context.Context, roomTypeID uuid.UUID, code string) (*models.RoomUnit, error) {
	rt, err := s.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	unit := rt.FindUnit(code)
	if unit == nil {
		return nil, NewNotFoundError("Room not found")
	}
	return unit, nil
}
