package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

const packageColumns = `id, name, description, price, discount_percent, valid_from, valid_to,
	active, created_at, updated_at`

// PackageRepository handles promotional package database operations
type PackageRepository struct {
	db *sqlx.DB
}

// NewPackageRepository creates a new PackageRepository
func NewPackageRepository(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// CreatePackage inserts a new package
func (r *PackageRepository) CreatePackage(ctx context.Context, p *models.Package) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO packages (`+packageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Description, p.Price, p.DiscountPercent, p.ValidFrom, p.ValidTo,
		p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	return nil
}

// GetPackageByID returns the package or nil when it does not exist
func (r *PackageRepository) GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	var p models.Package
	err := r.db.GetContext(ctx, &p, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &p, nil
}

// ListPackages returns packages, newest first
func (r *PackageRepository) ListPackages(ctx context.Context, activeOnly bool) ([]*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	packages := []*models.Package{}
	if err := r.db.SelectContext(ctx, &packages, query); err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packages, nil
}

// UpdatePackage persists every field of the package
func (r *PackageRepository) UpdatePackage(ctx context.Context, p *models.Package) error {
	p.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE packages
		SET name = $2, description = $3, price = $4, discount_percent = $5,
			valid_from = $6, valid_to = $7, active = $8, updated_at = $9
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.DiscountPercent, p.ValidFrom, p.ValidTo, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}
	return nil
}

// DeletePackage removes a package
func (r *PackageRepository) DeletePackage(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete package: %w", err)
	}
	return affected(result)
}
