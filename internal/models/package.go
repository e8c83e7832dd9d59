package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Package is a promotional offer shown on the guest site
type Package struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description" db:"description"`
	Price           float64    `json:"price" db:"price"`
	DiscountPercent float64    `json:"discount_percent" db:"discount_percent"`
	ValidFrom       *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidTo         *time.Time `json:"valid_to,omitempty" db:"valid_to"`
	Active          bool       `json:"active" db:"active"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// PackageRequest is used for both create and partial update
type PackageRequest struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Price           *float64   `json:"price,omitempty"`
	DiscountPercent *float64   `json:"discount_percent,omitempty"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
	Active          *bool      `json:"active,omitempty"`
}

// ValidateCreate validates a request used to create a package
func (req *PackageRequest) ValidateCreate() error {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return errors.New("name is required")
	}
	return req.Validate()
}

// Validate validates the fields that were supplied
func (req *PackageRequest) Validate() error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if req.Price != nil && *req.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if req.DiscountPercent != nil && (*req.DiscountPercent < 0 || *req.DiscountPercent > 100) {
		return errors.New("discount_percent must be between 0 and 100")
	}
	if req.ValidFrom != nil && req.ValidTo != nil && !req.ValidTo.After(*req.ValidFrom) {
		return errors.New("valid_to must be after valid_from")
	}
	return nil
}

// Apply copies the supplied fields onto p
func (req *PackageRequest) Apply(p *Package) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.DiscountPercent != nil {
		p.DiscountPercent = *req.DiscountPercent
	}
	if req.ValidFrom != nil {
		p.ValidFrom = req.ValidFrom
	}
	if req.ValidTo != nil {
		p.ValidTo = req.ValidTo
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
}
