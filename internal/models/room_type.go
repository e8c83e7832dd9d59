package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoomTypeStatus represents whether a room type is offered to guests
type RoomTypeStatus string

const (
	RoomTypeStatusActive   RoomTypeStatus = "active"
	RoomTypeStatusInactive RoomTypeStatus = "inactive"
)

// IsValid checks if the room type status is a known value
func (s RoomTypeStatus) IsValid() bool {
	return s == RoomTypeStatusActive || s == RoomTypeStatusInactive
}

// RoomUnitStatus represents the availability of one physical room
type RoomUnitStatus string

const (
	RoomUnitStatusAvailable   RoomUnitStatus = "available"
	RoomUnitStatusOccupied    RoomUnitStatus = "occupied"
	RoomUnitStatusMaintenance RoomUnitStatus = "maintenance"
	RoomUnitStatusInactive    RoomUnitStatus = "inactive"
)

// IsValid checks if the room unit status is a known value
func (s RoomUnitStatus) IsValid() bool {
	switch s {
	case RoomUnitStatusAvailable, RoomUnitStatusOccupied, RoomUnitStatusMaintenance, RoomUnitStatusInactive:
		return true
	}
	return false
}

// RoomUnit is one bookable room owned by a room type
type RoomUnit struct {
	RoomTypeID uuid.UUID      `json:"-" db:"room_type_id"`
	Code       string         `json:"code" db:"code"`
	Status     RoomUnitStatus `json:"status" db:"status"`
	Images     StringArray    `json:"images" db:"images"`
	Position   int            `json:"-" db:"position"`
	CreatedAt  time.Time      `json:"-" db:"created_at"`
	UpdatedAt  time.Time      `json:"-" db:"updated_at"`
}

// RoomType is a category of room with shared pricing and a pool of units
type RoomType struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	TypeName      string         `json:"type" db:"type_name"`
	Slug          string         `json:"slug" db:"slug"`
	Description   string         `json:"description" db:"description"`
	Capacity      int            `json:"capacity" db:"capacity"`
	BedType       string         `json:"bed_type" db:"bed_type"`
	PricePerNight float64        `json:"price_per_night" db:"price_per_night"`
	Amenities     StringArray    `json:"amenities" db:"amenities"`
	Images        StringArray    `json:"images" db:"images"`
	Status        RoomTypeStatus `json:"status" db:"status"`
	Rooms         []RoomUnit     `json:"rooms" db:"-"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// FindUnit returns the unit with the given code, or nil
func (rt *RoomType) FindUnit(code string) *RoomUnit {
	for i := range rt.Rooms {
		if rt.Rooms[i].Code == code {
			return &rt.Rooms[i]
		}
	}
	return nil
}

// AvailableCount counts units currently marked available
func (rt *RoomType) AvailableCount() int {
	n := 0
	for _, u := range rt.Rooms {
		if u.Status == RoomUnitStatusAvailable {
			n++
		}
	}
	return n
}

// RoomTypeSummary is the display projection joined onto guest bookings
type RoomTypeSummary struct {
	ID            uuid.UUID   `json:"id"`
	TypeName      string      `json:"type"`
	Slug          string      `json:"slug"`
	BedType       string      `json:"bed_type"`
	PricePerNight float64     `json:"price_per_night"`
	Images        StringArray `json:"images"`
}

// Summary builds the display projection of the room type
func (rt *RoomType) Summary() *RoomTypeSummary {
	return &RoomTypeSummary{
		ID:            rt.ID,
		TypeName:      rt.TypeName,
		Slug:          rt.Slug,
		BedType:       rt.BedType,
		PricePerNight: rt.PricePerNight,
		Images:        rt.Images,
	}
}

// CreateRoomUnitRequest is one caller-supplied initial unit
type CreateRoomUnitRequest struct {
	Code   string   `json:"code" binding:"required"`
	Status string   `json:"status,omitempty" binding:"roomstatus"`
	Images []string `json:"images,omitempty"`
}

// CreateRoomTypeRequest represents the request to create a room type
type CreateRoomTypeRequest struct {
	Type          string                  `json:"type" binding:"required"`
	Description   string                  `json:"description"`
	Capacity      int                     `json:"capacity" binding:"gte=0"`
	BedType       string                  `json:"bed_type"`
	PricePerNight float64                 `json:"price_per_night" binding:"gte=0"`
	Amenities     []string                `json:"amenities"`
	Images        []string                `json:"images"`
	Status        string                  `json:"status,omitempty"`
	Rooms         []CreateRoomUnitRequest `json:"rooms,omitempty" binding:"omitempty,dive"`
}

// Validate validates the CreateRoomTypeRequest
func (req *CreateRoomTypeRequest) Validate() error {
	if strings.TrimSpace(req.Type) == "" {
		return errors.New("type is required")
	}
	if req.Status != "" && !RoomTypeStatus(req.Status).IsValid() {
		return errors.New("invalid status: must be active or inactive")
	}
	if req.Capacity < 0 {
		return errors.New("capacity cannot be negative")
	}
	if req.PricePerNight < 0 {
		return errors.New("price_per_night cannot be negative")
	}
	seen := make(map[string]bool, len(req.Rooms))
	for _, room := range req.Rooms {
		code := strings.TrimSpace(room.Code)
		if code == "" {
			return errors.New("room code is required")
		}
		if seen[code] {
			return errors.New("duplicate room code: " + code)
		}
		seen[code] = true
		if room.Status != "" && !RoomUnitStatus(room.Status).IsValid() {
			return errors.New("invalid room status: " + room.Status)
		}
	}
	return nil
}

// UpdateRoomTypeRequest represents a partial update of room type fields
type UpdateRoomTypeRequest struct {
	Type          *string  `json:"type,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Capacity      *int     `json:"capacity,omitempty"`
	BedType       *string  `json:"bed_type,omitempty"`
	PricePerNight *float64 `json:"price_per_night,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Images        []string `json:"images,omitempty"`
	Status        *string  `json:"status,omitempty"`
}

// Validate validates the UpdateRoomTypeRequest
func (req *UpdateRoomTypeRequest) Validate() error {
	if req.Type != nil && strings.TrimSpace(*req.Type) == "" {
		return errors.New("type cannot be empty")
	}
	if req.Status != nil && !RoomTypeStatus(*req.Status).IsValid() {
		return errors.New("invalid status: must be active or inactive")
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		return errors.New("capacity cannot be negative")
	}
	if req.PricePerNight != nil && *req.PricePerNight < 0 {
		return errors.New("price_per_night cannot be negative")
	}
	return nil
}

// AddRoomUnitsRequest appends count units named prefix+sequence
type AddRoomUnitsRequest struct {
	Prefix string `json:"prefix"`
	Count  *int   `json:"count,omitempty"` // defaults to 1
}

// UpdateRoomUnitRequest updates one unit's status and/or images
type UpdateRoomUnitRequest struct {
	Status *string  `json:"status,omitempty" binding:"omitempty,roomstatus"`
	Images []string `json:"images,omitempty"`
}

// AvailabilityFilter narrows the availability listing
type AvailabilityFilter struct {
	MinCapacity *int
	MinPrice    *float64
	MaxPrice    *float64
	TypeName    string
	Amenities   []string // every listed amenity must be present
}

// UnitCode builds a generated room unit code: prefix plus a 3-digit sequence
func UnitCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}
