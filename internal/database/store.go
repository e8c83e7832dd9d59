package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stayease/hotel-booking-backend/internal/models"
)

var (
	// ErrNotFound is returned by writes whose parent row vanished
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique key (type name, unit code, email) already exists
	ErrDuplicate = errors.New("duplicate record")

	// ErrNoAvailableUnit is returned by AssignRoom when the type has no available unit
	ErrNoAvailableUnit = errors.New("no available room unit")

	// ErrNotAssignable is returned by AssignRoom when the booking already holds a room
	// or is no longer PENDING/CONFIRMED
	ErrNotAssignable = errors.New("booking cannot be assigned a room")
)

// RoomTypeStore persists room types and their owned units.
// Lookups return (nil, nil) when the row does not exist.
type RoomTypeStore interface {
	CreateRoomType(ctx context.Context, rt *models.RoomType) error
	GetRoomTypeByID(ctx context.Context, id uuid.UUID) (*models.RoomType, error)
	GetRoomTypeByName(ctx context.Context, name string) (*models.RoomType, error)
	ListRoomTypes(ctx context.Context, limit, offset int) ([]*models.RoomType, int, error)
	ListAvailableRoomTypes(ctx context.Context, filter models.AvailabilityFilter) ([]*models.RoomType, error)
	UpdateRoomType(ctx context.Context, rt *models.RoomType) error
	DeleteRoomType(ctx context.Context, id uuid.UUID) (bool, error)

	// AppendRoomUnits adds units after the existing ones; nothing is written if any code exists
	AppendRoomUnits(ctx context.Context, roomTypeID uuid.UUID, units []models.RoomUnit) error
	// SetRoomUnitStatus overwrites a unit's status when its current status is one of from
	// (any status when from is empty). It reports whether a row matched.
	SetRoomUnitStatus(ctx context.Context, roomTypeID uuid.UUID, code string, status models.RoomUnitStatus, from ...models.RoomUnitStatus) (bool, error)
	UpdateRoomUnitImages(ctx context.Context, roomTypeID uuid.UUID, code string, images []string) (bool, error)
	RemoveRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string) (bool, error)
	// ReleaseRoomUnit flips a unit in one of the from statuses (occupied by default)
	// back to available unless a live booking other than exceptBookingID still holds it
	ReleaseRoomUnit(ctx context.Context, roomTypeID uuid.UUID, code string, exceptBookingID uuid.UUID, from ...models.RoomUnitStatus) (bool, error)
}

// BookingStore persists bookings
type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	// UpdateBookingStatus applies only the non-nil fields and reports whether the booking exists
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status *models.BookingStatus, payment *models.PaymentStatus) (bool, error)

	// AssignRoom claims the first available unit of roomTypeID (in stored order) for the
	// booking and confirms it, all-or-nothing. Returns the claimed code.
	AssignRoom(ctx context.Context, bookingID, roomTypeID uuid.UUID) (string, error)

	ListExpiredUnpaid(ctx context.Context, createdBefore time.Time) ([]*models.Booking, error)
	// ListCheckedOut returns bookings holding a room whose checkout is at or before now,
	// excluding CANCELLED and COMPLETED ones
	ListCheckedOut(ctx context.Context, now time.Time) ([]*models.Booking, error)
	// DeleteBookingWithSlips removes the booking and every slip referencing it
	DeleteBookingWithSlips(ctx context.Context, id uuid.UUID) (int, error)
}

// PaymentSlipStore persists payment slips
type PaymentSlipStore interface {
	CreateSlip(ctx context.Context, slip *models.PaymentSlip) error
	GetSlipByID(ctx context.Context, id uuid.UUID) (*models.PaymentSlip, error)
	UpdateSlipReview(ctx context.Context, slip *models.PaymentSlip) error
	LatestSlipForBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentSlip, error)
	ListSlipsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.PaymentSlip, error)
	ListSlips(ctx context.Context, status *models.SlipStatus) ([]*models.SlipWithBooking, error)
}

// UserStore persists accounts
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)
}

// PackageStore persists promotional packages
type PackageStore interface {
	CreatePackage(ctx context.Context, p *models.Package) error
	GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]*models.Package, error)
	UpdatePackage(ctx context.Context, p *models.Package) error
	DeletePackage(ctx context.Context, id uuid.UUID) (bool, error)
}

// Stores groups every repository a process needs
type Stores struct {
	RoomTypes RoomTypeStore
	Bookings  BookingStore
	Slips     PaymentSlipStore
	Users     UserStore
	Packages  PackageStore
}
