package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

// PackageService manages promotional packages
type PackageService struct {
	packages database.PackageStore
}

// NewPackageService creates a new PackageService
func NewPackageService(packages database.PackageStore) *PackageService {
	return &PackageService{packages: packages}
}

// Create validates and stores a new package; packages start active unless told otherwise
func (s *PackageService) Create(ctx context.Context, req *models.PackageRequest) (*models.Package, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, NewValidationError(err.Error())
	}
	p := &models.Package{Active: true}
	req.Apply(p)
	if err := s.packages.CreatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one package
func (s *PackageService) Get(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	p, err := s.packages.GetPackageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("Package not found")
	}
	return p, nil
}

// List returns packages, only active ones unless includeInactive is set
func (s *PackageService) List(ctx context.Context, includeInactive bool) ([]*models.Package, error) {
	return s.packages.ListPackages(ctx, !includeInactive)
}

// Update applies a partial update
func (s *PackageService) Update(ctx context.Context, id uuid.UUID, req *models.PackageRequest) (*models.Package, error) {
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(p)
	if p.ValidFrom != nil && p.ValidTo != nil && !p.ValidTo.After(*p.ValidFrom) {
		return nil, NewValidationError("valid_to must be after valid_from")
	}
	if err := s.packages.UpdatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a package
func (s *PackageService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.packages.DeletePackage(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFoundError("Package not found")
	}
	return nil
}
