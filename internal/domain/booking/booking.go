package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id         int64
	reference  string
	roomID     int64
	customerID int64
	stay       StayPeriod
	status     BookingStatus

	canceledAt   *time.Time
	cancelReason string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a confirmation reference in the format "HB-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "HB-" + string(result), nil
}

// NewBooking creates a confirmed Booking. The identifier is assigned by storage on insert.
func NewBooking(customerID, roomID int64, stay StayPeriod) (*Booking, error) {
	if customerID <= 0 {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if roomID <= 0 {
		return nil, domain.NewValidationError("room ID is required")
	}
	if stay.CheckIn().IsZero() {
		return nil, domain.NewValidationError("stay period is required")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		reference:  reference,
		roomID:     roomID,
		customerID: customerID,
		stay:       stay,
		status:     StatusConfirmed,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id int64,
	reference string,
	roomID int64,
	customerID int64,
	checkIn time.Time,
	checkOut time.Time,
	status BookingStatus,
	canceledAt *time.Time,
	cancelReason string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:           id,
		reference:    reference,
		roomID:       roomID,
		customerID:   customerID,
		stay:         StayPeriod{checkIn: ToDate(checkIn), checkOut: ToDate(checkOut)},
		status:       status,
		canceledAt:   canceledAt,
		cancelReason: cancelReason,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

// ID returns the storage-assigned identifier, zero until inserted.
func (b *Booking) ID() int64 { return b.id }

// Reference returns the human-readable confirmation reference.
func (b *Booking) Reference() string { return b.reference }

// RoomID returns the booked room.
func (b *Booking) RoomID() int64 { return b.roomID }

// CustomerID returns the guest the booking was made for.
func (b *Booking) CustomerID() int64 { return b.customerID }

// Stay returns the booked [checkIn, checkOut) interval.
func (b *Booking) Stay() StayPeriod { return b.stay }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Nights returns the number of nights covered by the stay.
func (b *Booking) Nights() int { return b.stay.Nights() }

// CanceledAt returns the time the booking was canceled.
func (b *Booking) CanceledAt() *time.Time { return b.canceledAt }

// CancelReason returns the cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the server-assigned creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// AssignID records the identifier generated by storage. It has no effect once set.
func (b *Booking) AssignID(id int64) {
	if b.id == 0 {
		b.id = id
	}
}

// Blocks reports whether this booking occupies its room for an overlapping stay.
func (b *Booking) Blocks(stay StayPeriod) bool {
	return b.status.BlocksAvailability() && b.stay.Overlaps(stay)
}

// Cancel transitions the booking from confirmed to canceled.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanTransitionTo(StatusCanceled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCanceled))
	}
	now := time.Now().UTC()
	b.status = StatusCanceled
	b.cancelReason = reason
	b.canceledAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// VerifyNoOverlap checks that the blocking bookings in the list are pairwise
// non-overlapping. All bookings are expected to belong to the same room.
func VerifyNoOverlap(bookings []*Booking) error {
	for i := 0; i < len(bookings); i++ {
		a := bookings[i]
		if !a.status.BlocksAvailability() {
			continue
		}
		for j := i + 1; j < len(bookings); j++ {
			if bookings[j].Blocks(a.stay) {
				return fmt.Errorf("bookings %d %s and %d %s overlap on room %d",
					a.id, a.stay, bookings[j].id, bookings[j].stay, a.roomID)
			}
		}
	}
	return nil
}
