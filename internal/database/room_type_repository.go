package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

const roomTypeColumns = `id, type_name, slug, description, capacity, bed_type, price_per_night,
	amenities, images, status, created_at, updated_at`

const roomUnitColumns = `room_type_id, code, status, images, position, created_at, updated_at`

// RoomTypeRepository handles room type and room unit database operations
type RoomTypeRepository struct {
	db *sqlx.DB
}

// NewRoomTypeRepository creates a new RoomTypeRepository
func NewRoomTypeRepository(db *sqlx.DB) *RoomTypeRepository {
	return &RoomTypeRepository{db: db}
}

// ============================================================================
// ROOM TYPES
// ============================================================================

// CreateRoomType inserts the room type and any initial units in one transaction
func (r *RoomTypeRepository) CreateRoomType(ctx context.Context, rt *models.RoomType) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	now := time.Now()
	rt.CreatedAt = now
	rt.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_types (
			id, type_name, slug, description, capacity, bed_type, price_per_night,
			amenities, images, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rt.ID, rt.TypeName, rt.Slug, rt.Description, rt.Capacity, rt.BedType, rt.PricePerNight,
		rt.Amenities, rt.Images, rt.Status, rt.CreatedAt, rt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create room type: %w", err)
	}

	for i := range rt.Rooms {
		unit := &rt.Rooms[i]
		unit.RoomTypeID = rt.ID
		unit.Position = i + 1
		unit.CreatedAt = now
		unit.UpdatedAt = now
		if err := insertUnit(ctx, tx, unit); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room type: %w", err)
	}
	return nil
}

// GetRoomTypeByID returns the room type with its units in stored order
func (r *RoomTypeRepository) GetRoomTypeByID(ctx context.Context, id uuid.UUID) (*models.RoomType, error) {
	return r.getOne(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE id = $1`, id)
}

// GetRoomTypeByName returns the room type with the given type name
func (r *RoomTypeRepository) GetRoomTypeByName(ctx context.Context, name string) (*models.RoomType, error) {
	return r.getOne(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE type_name = $1`, name)
}

func (r *RoomTypeRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.RoomType, error) {
	var rt models.RoomType
	err := r.db.GetContext(ctx, &rt, query, arg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room type: %w", err)
	}

	if err := r.attachUnits(ctx, []*models.RoomType{&rt}); err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListRoomTypes returns a page of room types (all of them when limit <= 0) and the total count
func (r *RoomTypeRepository) ListRoomTypes(ctx context.Context, limit, offset int) ([]*models.RoomType, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM room_types`); err != nil {
		return nil, 0, fmt.Errorf("failed to count room types: %w", err)
	}

	query := `SELECT ` + roomTypeColumns + ` FROM room_types ORDER BY created_at DESC, type_name`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	types := []*models.RoomType{}
	if err := r.db.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list room types: %w", err)
	}
	if err := r.attachUnits(ctx, types); err != nil {
		return nil, 0, err
	}
	return types, total, nil
}

// ListAvailableRoomTypes returns active room types holding at least one available unit
func (r *RoomTypeRepository) ListAvailableRoomTypes(ctx context.Context, filter models.AvailabilityFilter) ([]*models.RoomType, error) {
	conditions := []string{
		`rt.status = 'active'`,
		`EXISTS (SELECT 1 FROM room_units u WHERE u.room_type_id = rt.id AND u.status = 'available')`,
	}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.MinCapacity != nil {
		conditions = append(conditions, "rt.capacity >= "+arg(*filter.MinCapacity))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "rt.price_per_night >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "rt.price_per_night <= "+arg(*filter.MaxPrice))
	}
	if filter.TypeName != "" {
		conditions = append(conditions, "rt.type_name = "+arg(filter.TypeName))
	}
	if len(filter.Amenities) > 0 {
		conditions = append(conditions, "rt.amenities @> "+arg(pq.StringArray(filter.Amenities))+"::text[]")
	}

	query := `SELECT ` + prefixColumns("rt", roomTypeColumns) + ` FROM room_types rt WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY rt.price_per_night, rt.type_name`

	types := []*models.RoomType{}
	if err := r.db.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list available room types: %w", err)
	}
	if err := r.attachUnits(ctx, types); err != nil {
		return nil, err
	}
	return types, nil
}

// UpdateRoomType persists the room type's own fields (units are untouched)
func (r *RoomTypeRepository) UpdateRoomType(ctx context.Context, rt *models.RoomType) error {
	rt.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE room_types
		SET type_name = $2, slug = $3, description = $4, capacity = $5, bed_type = $6,
			price_per_night = $7, amenities = $8, images = $9, status = $10, updated_at = $11
		WHERE id = $1`,
		rt.ID, rt.TypeName, rt.Slug, rt.Description, rt.Capacity, rt.BedType,
		rt.PricePerNight, rt.Amenities, rt.Images, rt.Status, rt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update room type: %w", err)
	}
	return nil
}

// DeleteRoomType removes the room type; its units go with it, bookings are left alone
func (r *RoomTypeRepository) DeleteRoomType(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM room_types WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete room type: %w", err)
	}
	return affected(result)
}

// ============================================================================
// ROOM UNITS
// ============================================================================

// AppendRoomUnits inserts units after the current last position
func (r *RoomTypeRepository) AppendRoomUnits(ctx context.Context, roomTypeID uuid.UUID, units []models.RoomUnit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Serialise appends per room type so positions stay contiguous
	var locked uuid.UUID
	err = tx.GetContext(ctx, &locked, `SELECT id FROM room_types WHERE id = $1 FOR UPDATE`, roomTypeID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock room type: %w", err)
	}

	var position int
	if err := tx.GetContext(ctx, &position,
		`SELECT COALESCE(MAX(position), 0) FROM room_units WHERE room_type_id = $1`, roomTypeID); err != nil {
		return fmt.Errorf("failed to read unit position: %w", err)
	}

	now := time.Now()
	for i := range units {
		position++
		units[i].RoomTypeID = roomTypeID
		units[i].Position = position
		units[i].CreatedAt = now
		units[i].UpdatedAt = now
		if err := insertUnit(ctx, tx, &units[i]); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE room_types SET updated_at = $2 WHERE id = $1`, roomTypeID, now); err != nil {
		return fmt.Errorf("failed to touch room type: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room units: %w", err)
	}
	return nil
}

// SetRoomUnitStatus is a conditional single-row update, never a read-modify-write
func (r *RoomTypeRepository) SetRoomUnitStatus(ctx context.Context, roomTypeID uuid.UUID, code string, status models.RoomUnitStatus, from ...models.RoomUnitStatus) (bool, error) {
	query := `UPDATE room_units SET status = $3, updated_at = NOW() WHERE room_type_id = $1 AND code = $2`
	args := []interface{}{roomTypeID, code, status}
	if len(from) > 0 {
		query += ` AND status = ANY($4::text[])`
		args = append(args, pq.StringArray(unitStatusStrings(from)))
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to set room unit status: %w", err)
	}
	return affected(result)
}

// UpdateRoomUnitImages replaces a unit's images
func (r *RoomTypeRepository) UpdateRoomUnitImages(ctx context.Context, roomTypeID uuid.UUID, code string, images []string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE room_units SET images = $3, updated_at = NOW()
		WHERE room_type_id = $1 AND code = $2`,
		roomTypeID, code, models.StringArray(images),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update room unit images: %w", err)
	}
	return affected(result)
}

// RemoveRoomUnit deletes one unit from its type
func (r *RoomTypeRepository) RemoveRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM room_units WHERE room_type_id = $1 AND code = $2`, roomTypeID, code)
	if err != nil {
		return false, fmt.Errorf("failed to remove room unit: %w", err)
	}
	return affected(result)
}

// ReleaseRoomUnit frees a unit in one of the from statuses (occupied when none
// are given) unless another live booking still points at it
func (r *RoomTypeRepository) ReleaseRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string, exceptBookingID uuid.UUID, from ...models.RoomUnitStatus) (bool, error) {
	if len(from) == 0 {
		from = []models.RoomUnitStatus{models.RoomUnitStatusOccupied}
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE room_units SET status = 'available', updated_at = NOW()
		WHERE room_type_id = $1 AND code = $2 AND status = ANY($4::text[])
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_type_id = $1 AND b.room_code = $2 AND b.id <> $3
			  AND b.status IN ('PENDING', 'CONFIRMED')
		  )`,
		roomTypeID, code, exceptBookingID, pq.StringArray(unitStatusStrings(from)),
	)
	if err != nil {
		return false, fmt.Errorf("failed to release room unit: %w", err)
	}
	return affected(result)
}

// ============================================================================
// HELPERS
// ============================================================================

func insertUnit(ctx context.Context, tx *sqlx.Tx, unit *models.RoomUnit) error {
	if unit.Status == "" {
		unit.Status = models.RoomUnitStatusAvailable
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO room_units (`+roomUnitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		unit.RoomTypeID, unit.Code, unit.Status, unit.Images, unit.Position, unit.CreatedAt, unit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert room unit %s: %w", unit.Code, err)
	}
	return nil
}

// attachUnits loads the units of every given type with one query
func (r *RoomTypeRepository) attachUnits(ctx context.Context, types []*models.RoomType) error {
	if len(types) == 0 {
		return nil
	}

	ids := make([]string, len(types))
	byID := make(map[uuid.UUID]*models.RoomType, len(types))
	for i, rt := range types {
		ids[i] = rt.ID.String()
		rt.Rooms = []models.RoomUnit{}
		byID[rt.ID] = rt
	}

	units := []models.RoomUnit{}
	err := r.db.SelectContext(ctx, &units, `
		SELECT `+roomUnitColumns+` FROM room_units
		WHERE room_type_id = ANY($1::uuid[])
		ORDER BY room_type_id, position`,
		pq.StringArray(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to load room units: %w", err)
	}

	for _, u := range units {
		if rt, ok := byID[u.RoomTypeID]; ok {
			rt.Rooms = append(rt.Rooms, u)
		}
	}
	return nil
}

func unitStatusStrings(statuses []models.RoomUnitStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}
