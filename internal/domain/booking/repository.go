package booking

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
)

// OverlapReader evaluates the overlap predicate against some view of the ledger.
type OverlapReader interface {
	// HasOverlap reports whether a non-canceled booking on roomID overlaps stay.
	HasOverlap(ctx context.Context, roomID int64, stay StayPeriod) (bool, error)
}

// Ledger is the view of one room's bookings inside a unit of work. Reads observe
// the serialized state for that room and Insert becomes visible only on commit.
type Ledger interface {
	OverlapReader

	// ActiveByRoom returns the non-canceled bookings on roomID, ordered by check-in.
	ActiveByRoom(ctx context.Context, roomID int64) ([]*Booking, error)

	// Insert persists a new booking and assigns its identifier.
	Insert(ctx context.Context, booking *Booking) error
}

// RoomUnitOfWork runs with exclusive access to one room's ledger. Returning an
// error rolls back every write made through the ledger.
type RoomUnitOfWork func(ctx context.Context, room *hotel.Room, ledger Ledger) error

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	OverlapReader

	// FindByID retrieves a booking by its identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindByCustomerID retrieves bookings belonging to a customer with pagination.
	FindByCustomerID(ctx context.Context, customerID int64, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// ActiveByRoom returns the non-canceled bookings on roomID, ordered by check-in.
	ActiveByRoom(ctx context.Context, roomID int64) ([]*Booking, error)

	// OverlappingRoomIDs returns the subset of roomIDs holding a non-canceled
	// booking that overlaps stay.
	OverlappingRoomIDs(ctx context.Context, roomIDs []int64, stay StayPeriod) (map[int64]bool, error)

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// WithinRoomLock loads roomID and runs fn while holding exclusive access to
	// that room's ledger. A missing room yields a not_found error without calling fn.
	WithinRoomLock(ctx context.Context, roomID int64, fn RoomUnitOfWork) error
}
