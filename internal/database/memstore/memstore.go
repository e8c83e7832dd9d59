// Package memstore is an in-process implementation of the database store
// contracts. Every operation runs under one mutex, so each call is atomic the
// same way a single Postgres statement or transaction is.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

// Store keeps room types, bookings, slips, users and packages in memory
type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq int64

	roomTypes []*models.RoomType
	bookings  map[uuid.UUID]*bookingRow
	slips     map[uuid.UUID]*slipRow
	users     map[uuid.UUID]*models.User
	packages  map[uuid.UUID]*packageRow
}

type bookingRow struct {
	seq int64
	b   models.Booking
}

type slipRow struct {
	seq int64
	s   models.PaymentSlip
}

type packageRow struct {
	seq int64
	p   models.Package
}

// New creates an empty store
func New() *Store {
	return &Store{
		now:      time.Now,
		bookings: make(map[uuid.UUID]*bookingRow),
		slips:    make(map[uuid.UUID]*slipRow),
		users:    make(map[uuid.UUID]*models.User),
		packages: make(map[uuid.UUID]*packageRow),
	}
}

// WithClock replaces the clock used for default timestamps
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Stores exposes the store through every repository contract
func (s *Store) Stores() database.Stores {
	return database.Stores{
		RoomTypes: s,
		Bookings:  s,
		Slips:     s,
		Users:     s,
		Packages:  s,
	}
}

// PingContext always succeeds
func (s *Store) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// ============================================================================
// ROOM TYPES
// ============================================================================

func (s *Store) CreateRoomType(ctx context.Context, rt *models.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findTypeByName(rt.TypeName) != nil {
		return database.ErrDuplicate
	}
	seen := make(map[string]bool, len(rt.Rooms))
	for _, u := range rt.Rooms {
		if seen[u.Code] {
			return database.ErrDuplicate
		}
		seen[u.Code] = true
	}

	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	now := s.now()
	rt.CreatedAt = now
	rt.UpdatedAt = now
	if rt.Rooms == nil {
		rt.Rooms = []models.RoomUnit{}
	}
	for i := range rt.Rooms {
		u := &rt.Rooms[i]
		u.RoomTypeID = rt.ID
		u.Position = i + 1
		u.CreatedAt = now
		u.UpdatedAt = now
		if u.Status == "" {
			u.Status = models.RoomUnitStatusAvailable
		}
	}

	s.roomTypes = append(s.roomTypes, copyRoomType(rt))
	return nil
}

func (s *Store) GetRoomTypeByID(ctx context.Context, id uuid.UUID) (*models.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt := s.findType(id); rt != nil {
		return copyRoomType(rt), nil
	}
	return nil, nil
}

func (s *Store) GetRoomTypeByName(ctx context.Context, name string) (*models.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt := s.findTypeByName(name); rt != nil {
		return copyRoomType(rt), nil
	}
	return nil, nil
}

func (s *Store) ListRoomTypes(ctx context.Context, limit, offset int) ([]*models.RoomType, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := make([]*models.RoomType, len(s.roomTypes))
	for i, rt := range s.roomTypes {
		ordered[len(s.roomTypes)-1-i] = rt
	}

	total := len(ordered)
	if limit > 0 {
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}
		ordered = ordered[offset:end]
	}

	out := make([]*models.RoomType, len(ordered))
	for i, rt := range ordered {
		out[i] = copyRoomType(rt)
	}
	return out, total, nil
}

func (s *Store) ListAvailableRoomTypes(ctx context.Context, filter models.AvailabilityFilter) ([]*models.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.RoomType{}
	for _, rt := range s.roomTypes {
		if rt.Status != models.RoomTypeStatusActive || rt.AvailableCount() == 0 {
			continue
		}
		if filter.MinCapacity != nil && rt.Capacity < *filter.MinCapacity {
			continue
		}
		if filter.MinPrice != nil && rt.PricePerNight < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && rt.PricePerNight > *filter.MaxPrice {
			continue
		}
		if filter.TypeName != "" && rt.TypeName != filter.TypeName {
			continue
		}
		if !hasAll(rt.Amenities, filter.Amenities) {
			continue
		}
		out = append(out, copyRoomType(rt))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PricePerNight != out[j].PricePerNight {
			return out[i].PricePerNight < out[j].PricePerNight
		}
		return out[i].TypeName < out[j].TypeName
	})
	return out, nil
}

func (s *Store) UpdateRoomType(ctx context.Context, rt *models.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.findType(rt.ID)
	if stored == nil {
		return nil
	}
	if other := s.findTypeByName(rt.TypeName); other != nil && other.ID != rt.ID {
		return database.ErrDuplicate
	}

	rt.UpdatedAt = s.now()
	units := stored.Rooms
	*stored = *copyRoomType(rt)
	stored.Rooms = units
	return nil
}

func (s *Store) DeleteRoomType(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rt := range s.roomTypes {
		if rt.ID == id {
			s.roomTypes = append(s.roomTypes[:i], s.roomTypes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ============================================================================
// ROOM UNITS
// ============================================================================

func (s *Store) AppendRoomUnits(ctx context.Context, roomTypeID uuid.UUID, units []models.RoomUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt := s.findType(roomTypeID)
	if rt == nil {
		return database.ErrNotFound
	}

	seen := make(map[string]bool, len(rt.Rooms)+len(units))
	for _, u := range rt.Rooms {
		seen[u.Code] = true
	}
	for _, u := range units {
		if seen[u.Code] {
			return database.ErrDuplicate
		}
		seen[u.Code] = true
	}

	now := s.now()
	position := 0
	for _, u := range rt.Rooms {
		if u.Position > position {
			position = u.Position
		}
	}
	for i := range units {
		position++
		units[i].RoomTypeID = roomTypeID
		units[i].Position = position
		units[i].CreatedAt = now
		units[i].UpdatedAt = now
		if units[i].Status == "" {
			units[i].Status = models.RoomUnitStatusAvailable
		}
		u := units[i]
		u.Images = append(models.StringArray{}, units[i].Images...)
		rt.Rooms = append(rt.Rooms, u)
	}
	rt.UpdatedAt = now
	return nil
}

func (s *Store) SetRoomUnitStatus(ctx context.Context, roomTypeID uuid.UUID, code string, status models.RoomUnitStatus, from ...models.RoomUnitStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit := s.findUnit(roomTypeID, code)
	if unit == nil {
		return false, nil
	}
	if len(from) > 0 && !containsStatus(from, unit.Status) {
		return false, nil
	}
	unit.Status = status
	unit.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) UpdateRoomUnitImages(ctx context.Context, roomTypeID uuid.UUID, code string, images []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit := s.findUnit(roomTypeID, code)
	if unit == nil {
		return false, nil
	}
	unit.Images = append(models.StringArray{}, images...)
	unit.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) RemoveRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt := s.findType(roomTypeID)
	if rt == nil {
		return false, nil
	}
	for i, u := range rt.Rooms {
		if u.Code == code {
			rt.Rooms = append(rt.Rooms[:i], rt.Rooms[i+1:]...)
			rt.UpdatedAt = s.now()
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ReleaseRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string, exceptBookingID uuid.UUID, from ...models.RoomUnitStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(from) == 0 {
		from = []models.RoomUnitStatus{models.RoomUnitStatusOccupied}
	}
	unit := s.findUnit(roomTypeID, code)
	if unit == nil || !containsStatus(from, unit.Status) {
		return false, nil
	}
	for id, row := range s.bookings {
		b := row.b
		if id == exceptBookingID || b.RoomTypeID != roomTypeID || !b.HasRoom() || *b.RoomCode != code {
			continue
		}
		if b.Status == models.BookingStatusPending || b.Status == models.BookingStatusConfirmed {
			return false, nil
		}
	}
	unit.Status = models.RoomUnitStatusAvailable
	unit.UpdatedAt = s.now()
	return true, nil
}

// ============================================================================
// BOOKINGS
// ============================================================================

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	b.UpdatedAt = b.CreatedAt

	s.bookings[b.ID] = &bookingRow{seq: s.nextSeq(), b: copyBooking(b)}
	return nil
}

func (s *Store) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	b := copyBooking(&row.b)
	return &b, nil
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error) {
	return s.selectBookings(func(b *models.Booking) bool { return b.UserID == userID }, true), nil
}

func (s *Store) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	return s.selectBookings(func(b *models.Booking) bool {
		if filter.Status != nil && b.Status != *filter.Status {
			return false
		}
		if filter.PaymentStatus != nil && b.PaymentStatus != *filter.PaymentStatus {
			return false
		}
		return true
	}, true), nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status *models.BookingStatus, payment *models.PaymentStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.bookings[id]
	if !ok {
		return false, nil
	}
	if status != nil {
		row.b.Status = *status
	}
	if payment != nil {
		row.b.PaymentStatus = *payment
	}
	row.b.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) AssignRoom(ctx context.Context, bookingID, roomTypeID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unit *models.RoomUnit
	if rt := s.findType(roomTypeID); rt != nil {
		for i := range rt.Rooms {
			if rt.Rooms[i].Status == models.RoomUnitStatusAvailable {
				unit = &rt.Rooms[i]
				break
			}
		}
	}
	if unit == nil {
		return "", database.ErrNoAvailableUnit
	}

	row, ok := s.bookings[bookingID]
	if !ok || row.b.HasRoom() ||
		(row.b.Status != models.BookingStatusPending && row.b.Status != models.BookingStatusConfirmed) {
		return "", database.ErrNotAssignable
	}

	now := s.now()
	unit.Status = models.RoomUnitStatusOccupied
	unit.UpdatedAt = now

	code := unit.Code
	row.b.RoomCode = &code
	row.b.Status = models.BookingStatusConfirmed
	row.b.UpdatedAt = now
	return code, nil
}

func (s *Store) ListExpiredUnpaid(ctx context.Context, createdBefore time.Time) ([]*models.Booking, error) {
	return s.selectBookings(func(b *models.Booking) bool {
		return b.PaymentStatus == models.PaymentStatusPending && !b.CreatedAt.After(createdBefore)
	}, false), nil
}

func (s *Store) ListCheckedOut(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	return s.selectBookings(func(b *models.Booking) bool {
		if !b.HasRoom() || b.CheckOut.After(now) || b.Status == models.BookingStatusCancelled {
			return false
		}
		if b.Status != models.BookingStatusCompleted {
			return true
		}
		unit := s.findUnit(b.RoomTypeID, *b.RoomCode)
		return unit != nil && unit.Status == models.RoomUnitStatusOccupied
	}, false), nil
}

func (s *Store) DeleteBookingWithSlips(ctx context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for slipID, row := range s.slips {
		if row.s.BookingID == id {
			delete(s.slips, slipID)
			removed++
		}
	}
	delete(s.bookings, id)
	return removed, nil
}

// selectBookings returns copies of matching bookings ordered by creation time
func (s *Store) selectBookings(match func(*models.Booking) bool, newestFirst bool) []*models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []*bookingRow{}
	for _, row := range s.bookings {
		if match(&row.b) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.b.CreatedAt.Equal(b.b.CreatedAt) {
			if newestFirst {
				return a.b.CreatedAt.After(b.b.CreatedAt)
			}
			return a.b.CreatedAt.Before(b.b.CreatedAt)
		}
		if newestFirst {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	out := make([]*models.Booking, len(rows))
	for i, row := range rows {
		b := copyBooking(&row.b)
		out[i] = &b
	}
	return out
}

// ============================================================================
// PAYMENT SLIPS
// ============================================================================

func (s *Store) CreateSlip(ctx context.Context, slip *models.PaymentSlip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slip.ID == uuid.Nil {
		slip.ID = uuid.New()
	}
	if slip.CreatedAt.IsZero() {
		slip.CreatedAt = s.now()
	}
	slip.UpdatedAt = slip.CreatedAt

	s.slips[slip.ID] = &slipRow{seq: s.nextSeq(), s: *slip}
	return nil
}

func (s *Store) GetSlipByID(ctx context.Context, id uuid.UUID) (*models.PaymentSlip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.slips[id]
	if !ok {
		return nil, nil
	}
	slip := row.s
	return &slip, nil
}

func (s *Store) UpdateSlipReview(ctx context.Context, slip *models.PaymentSlip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.slips[slip.ID]
	if !ok {
		return nil
	}
	slip.UpdatedAt = s.now()
	row.s.Status = slip.Status
	row.s.RejectionReason = slip.RejectionReason
	row.s.ReviewedBy = slip.ReviewedBy
	row.s.ReviewedAt = slip.ReviewedAt
	row.s.UpdatedAt = slip.UpdatedAt
	return nil
}

func (s *Store) LatestSlipForBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentSlip, error) {
	slips := s.slipsFor(func(slip *models.PaymentSlip) bool { return slip.BookingID == bookingID })
	if len(slips) == 0 {
		return nil, nil
	}
	return slips[0], nil
}

func (s *Store) ListSlipsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.PaymentSlip, error) {
	return s.slipsFor(func(slip *models.PaymentSlip) bool { return slip.BookingID == bookingID }), nil
}

func (s *Store) ListSlips(ctx context.Context, status *models.SlipStatus) ([]*models.SlipWithBooking, error) {
	slips := s.slipsFor(func(slip *models.PaymentSlip) bool {
		return status == nil || slip.Status == *status
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.SlipWithBooking, len(slips))
	for i, slip := range slips {
		entry := &models.SlipWithBooking{PaymentSlip: *slip}
		if row, ok := s.bookings[slip.BookingID]; ok {
			b := copyBooking(&row.b)
			entry.Booking = &b
		}
		out[i] = entry
	}
	return out, nil
}

// slipsFor returns copies of matching slips, newest first
func (s *Store) slipsFor(match func(*models.PaymentSlip) bool) []*models.PaymentSlip {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []*slipRow{}
	for _, row := range s.slips {
		if match(&row.s) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].s.CreatedAt.Equal(rows[j].s.CreatedAt) {
			return rows[i].s.CreatedAt.After(rows[j].s.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]*models.PaymentSlip, len(rows))
	for i, row := range rows {
		slip := row.s
		out[i] = &slip
	}
	return out
}

// ============================================================================
// USERS
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt

	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	u.Role = role
	u.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

// ============================================================================
// PACKAGES
// ============================================================================

func (s *Store) CreatePackage(ctx context.Context, p *models.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.packages[p.ID] = &packageRow{seq: s.nextSeq(), p: *p}
	return nil
}

func (s *Store) GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.packages[id]; ok {
		p := row.p
		return &p, nil
	}
	return nil, nil
}

func (s *Store) ListPackages(ctx context.Context, activeOnly bool) ([]*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []*packageRow{}
	for _, row := range s.packages {
		if !activeOnly || row.p.Active {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]*models.Package, len(rows))
	for i, row := range rows {
		p := row.p
		out[i] = &p
	}
	return out, nil
}

func (s *Store) UpdatePackage(ctx context.Context, p *models.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.packages[p.ID]
	if !ok {
		return nil
	}
	p.UpdatedAt = s.now()
	row.p = *p
	return nil
}

func (s *Store) DeletePackage(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packages[id]; !ok {
		return false, nil
	}
	delete(s.packages, id)
	return true, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Store) findType(id uuid.UUID) *models.RoomType {
	for _, rt := range s.roomTypes {
		if rt.ID == id {
			return rt
		}
	}
	return nil
}

func (s *Store) findTypeByName(name string) *models.RoomType {
	for _, rt := range s.roomTypes {
		if rt.TypeName == name {
			return rt
		}
	}
	return nil
}

func (s *Store) findUnit(roomTypeID uuid.UUID, code string) *models.RoomUnit {
	rt := s.findType(roomTypeID)
	if rt == nil {
		return nil
	}
	return rt.FindUnit(code)
}

func copyRoomType(rt *models.RoomType) *models.RoomType {
	out := *rt
	out.Amenities = append(models.StringArray{}, rt.Amenities...)
	out.Images = append(models.StringArray{}, rt.Images...)
	out.Rooms = make([]models.RoomUnit, len(rt.Rooms))
	for i, u := range rt.Rooms {
		u.Images = append(models.StringArray{}, u.Images...)
		out.Rooms[i] = u
	}
	return &out
}

func copyBooking(b *models.Booking) models.Booking {
	out := *b
	if b.RoomCode != nil {
		code := *b.RoomCode
		out.RoomCode = &code
	}
	return out
}

func hasAll(have models.StringArray, want []string) bool {
	for _, w := range want {
		if !have.Contains(w) {
			return false
		}
	}
	return true
}

func containsStatus(statuses []models.RoomUnitStatus, s models.RoomUnitStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
