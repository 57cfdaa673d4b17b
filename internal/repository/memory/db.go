// Package memory is a process-local storage driver. It serializes units of
// work per room with a lock table and applies their writes only on commit.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

type bookingRecord struct {
	id           int64
	reference    string
	roomID       int64
	customerID   int64
	checkIn      time.Time
	checkOut     time.Time
	status       bookingDomain.BookingStatus
	canceledAt   *time.Time
	cancelReason string
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
}

// DB holds inventory and bookings in memory.
type DB struct {
	mu        sync.RWMutex
	hotels    map[int64]*hotel.Hotel
	rooms     map[int64]*hotel.Room
	amenities map[int64][]*hotel.Amenity
	customers map[int64]*hotel.Customer
	bookings  map[int64]*bookingRecord
	nextID    int64

	locksMu   sync.Mutex
	roomLocks map[int64]*sync.Mutex
}

// New creates an empty store.
func New() *DB {
	return &DB{
		hotels:    make(map[int64]*hotel.Hotel),
		rooms:     make(map[int64]*hotel.Room),
		amenities: make(map[int64][]*hotel.Amenity),
		customers: make(map[int64]*hotel.Customer),
		bookings:  make(map[int64]*bookingRecord),
		roomLocks: make(map[int64]*sync.Mutex),
	}
}

func (db *DB) allocID() int64 {
	db.nextID++
	return db.nextID
}

// Ping always succeeds.
func (db *DB) Ping(context.Context) error { return nil }

// --- Inventory writes (seeding and tests) ---

// AddHotel stores h and returns its assigned id.
func (db *DB) AddHotel(h hotel.Hotel) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	h.ID = db.allocID()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	db.hotels[h.ID] = &h
	return h.ID
}

// AddRoom stores r under its hotel and returns its assigned id.
func (db *DB) AddRoom(r hotel.Room) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	r.ID = db.allocID()
	db.rooms[r.ID] = &r
	return r.ID
}

// AddAmenity stores a and returns its assigned id.
func (db *DB) AddAmenity(a hotel.Amenity) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	a.ID = db.allocID()
	db.amenities[a.HotelID] = append(db.amenities[a.HotelID], &a)
	return a.ID
}

// AddCustomer stores c and returns its assigned id.
func (db *DB) AddCustomer(c hotel.Customer) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	c.ID = db.allocID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	db.customers[c.ID] = &c
	return c.ID
}

// --- hotel.Repository ---

func (db *DB) FindHotel(_ context.Context, id int64) (*hotel.Hotel, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	h, ok := db.hotels[id]
	if !ok {
		return nil, domain.NewNotFoundError("Hotel", strconv.FormatInt(id, 10))
	}
	cp := *h
	return &cp, nil
}

func (db *DB) FindRoom(_ context.Context, id int64) (*hotel.Room, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	r, ok := db.joinedRoom(id)
	if !ok {
		return nil, domain.NewNotFoundError("Room", strconv.FormatInt(id, 10))
	}
	return r, nil
}

// joinedRoom copies a room with its hotel fields. Callers hold mu.
func (db *DB) joinedRoom(id int64) (*hotel.Room, bool) {
	r, ok := db.rooms[id]
	if !ok {
		return nil, false
	}
	cp := *r
	if h, ok := db.hotels[r.HotelID]; ok {
		cp.HotelName = h.Name
		cp.HotelLocation = h.Location
		cp.HotelStarRating = h.StarRating
	}
	return &cp, true
}

func (db *DB) ListRooms(_ context.Context, hotelID int64) ([]*hotel.Room, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var out []*hotel.Room
	for id, r := range db.rooms {
		if r.HotelID == hotelID {
			room, _ := db.joinedRoom(id)
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriceCents != out[j].PriceCents {
			return out[i].PriceCents < out[j].PriceCents
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (db *DB) ListAmenities(_ context.Context, hotelID int64) ([]*hotel.Amenity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	src := db.amenities[hotelID]
	out := make([]*hotel.Amenity, len(src))
	for i, a := range src {
		cp := *a
		out[i] = &cp
	}
	return out, nil
}

func (db *DB) SearchRooms(_ context.Context, filter hotel.RoomFilter) ([]*hotel.Room, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var out []*hotel.Room
	for id := range db.rooms {
		room, _ := db.joinedRoom(id)
		if filter.Matches(*room) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HotelID != out[j].HotelID {
			return out[i].HotelID < out[j].HotelID
		}
		return out[i].PriceCents < out[j].PriceCents
	})
	return out, nil
}

// --- hotel.CustomerRepository ---

func (db *DB) Exists(_ context.Context, id int64) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.customers[id]
	return ok, nil
}

// --- booking.BookingRepository ---

func (db *DB) FindByID(_ context.Context, id int64) (*bookingDomain.Booking, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, ok := db.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	return rec.toDomain(), nil
}

func (db *DB) FindByCustomerID(_ context.Context, customerID int64, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.page(func(r *bookingRecord) bool { return r.customerID == customerID }, page, limit)
}

func (db *DB) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.page(func(*bookingRecord) bool { return true }, page, limit)
}

// page returns newest-first results. Callers hold mu.
func (db *DB) page(keep func(*bookingRecord) bool, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var matched []*bookingRecord
	for _, r := range db.bookings {
		if keep(r) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].id > matched[j].id })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start < 0 || start >= len(matched) {
		return []*bookingDomain.Booking{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]*bookingDomain.Booking, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, r.toDomain())
	}
	return out, total, nil
}

func (db *DB) CountByStatus(context.Context) (map[string]int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	counts := make(map[string]int64)
	for _, r := range db.bookings {
		counts[string(r.status)]++
	}
	return counts, nil
}

func (db *DB) HasOverlap(_ context.Context, roomID int64, stay bookingDomain.StayPeriod) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.overlaps(roomID, stay, nil), nil
}

// overlaps checks committed bookings plus any pending ones. Callers hold mu.
func (db *DB) overlaps(roomID int64, stay bookingDomain.StayPeriod, pending []*bookingRecord) bool {
	for _, r := range db.bookings {
		if r.roomID == roomID && r.toDomain().Blocks(stay) {
			return true
		}
	}
	for _, r := range pending {
		if r.roomID == roomID && r.toDomain().Blocks(stay) {
			return true
		}
	}
	return false
}

func (db *DB) ActiveByRoom(_ context.Context, roomID int64) ([]*bookingDomain.Booking, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.activeByRoom(roomID, nil), nil
}

// activeByRoom lists blocking bookings ordered by check-in. Callers hold mu.
func (db *DB) activeByRoom(roomID int64, pending []*bookingRecord) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	add := func(r *bookingRecord) {
		if r.roomID == roomID && r.status.BlocksAvailability() {
			out = append(out, r.toDomain())
		}
	}
	for _, r := range db.bookings {
		add(r)
	}
	for _, r := range pending {
		add(r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Stay().CheckIn().Equal(out[j].Stay().CheckIn()) {
			return out[i].Stay().CheckIn().Before(out[j].Stay().CheckIn())
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

func (db *DB) OverlappingRoomIDs(_ context.Context, roomIDs []int64, stay bookingDomain.StayPeriod) (map[int64]bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	wanted := make(map[int64]bool, len(roomIDs))
	for _, id := range roomIDs {
		wanted[id] = true
	}
	out := make(map[int64]bool)
	for _, r := range db.bookings {
		if wanted[r.roomID] && r.toDomain().Blocks(stay) {
			out[r.roomID] = true
		}
	}
	return out, nil
}

func (db *DB) Update(_ context.Context, bk *bookingDomain.Booking) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	rec, ok := db.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(bk.ID(), 10))
	}
	if rec.version != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	db.bookings[bk.ID()] = fromDomain(bk)
	return nil
}

// roomLock returns the mutex serializing units of work on roomID.
func (db *DB) roomLock(roomID int64) *sync.Mutex {
	db.locksMu.Lock()
	defer db.locksMu.Unlock()
	l, ok := db.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		db.roomLocks[roomID] = l
	}
	return l
}

// WithinRoomLock runs fn holding the room's lock. Inserts made through the
// ledger are applied atomically when fn returns nil and dropped otherwise.
func (db *DB) WithinRoomLock(ctx context.Context, roomID int64, fn bookingDomain.RoomUnitOfWork) error {
	if err := ctx.Err(); err != nil {
		return domain.NewTransactionFailureError("unit of work canceled", err)
	}

	lock := db.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	db.mu.RLock()
	room, ok := db.joinedRoom(roomID)
	db.mu.RUnlock()
	if !ok {
		return domain.NewNotFoundError("Room", strconv.FormatInt(roomID, 10))
	}

	tx := &ledger{db: db, roomID: roomID}
	if err := fn(ctx, room, tx); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for _, rec := range tx.pending {
		db.bookings[rec.id] = rec
	}
	return nil
}

// ledger buffers inserts for one unit of work.
type ledger struct {
	db      *DB
	roomID  int64
	pending []*bookingRecord
}

func (l *ledger) HasOverlap(_ context.Context, roomID int64, stay bookingDomain.StayPeriod) (bool, error) {
	l.db.mu.RLock()
	defer l.db.mu.RUnlock()
	return l.db.overlaps(roomID, stay, l.pending), nil
}

func (l *ledger) ActiveByRoom(_ context.Context, roomID int64) ([]*bookingDomain.Booking, error) {
	l.db.mu.RLock()
	defer l.db.mu.RUnlock()
	return l.db.activeByRoom(roomID, l.pending), nil
}

func (l *ledger) Insert(_ context.Context, bk *bookingDomain.Booking) error {
	if bk.RoomID() != l.roomID {
		return domain.NewValidationError("booking room does not match the locked room")
	}
	l.db.mu.Lock()
	id := l.db.allocID()
	_, customerOK := l.db.customers[bk.CustomerID()]
	l.db.mu.Unlock()
	if !customerOK {
		return domain.NewValidationError("referenced room or customer does not exist")
	}

	bk.AssignID(id)
	l.pending = append(l.pending, fromDomain(bk))
	return nil
}

func fromDomain(bk *bookingDomain.Booking) *bookingRecord {
	return &bookingRecord{
		id:           bk.ID(),
		reference:    bk.Reference(),
		roomID:       bk.RoomID(),
		customerID:   bk.CustomerID(),
		checkIn:      bk.Stay().CheckIn(),
		checkOut:     bk.Stay().CheckOut(),
		status:       bk.Status(),
		canceledAt:   bk.CanceledAt(),
		cancelReason: bk.CancelReason(),
		version:      bk.Version(),
		createdAt:    bk.CreatedAt(),
		updatedAt:    bk.UpdatedAt(),
	}
}

func (r *bookingRecord) toDomain() *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		r.id, r.reference, r.roomID, r.customerID, r.checkIn, r.checkOut,
		r.status, r.canceledAt, r.cancelReason, r.version, r.createdAt, r.updatedAt,
	)
}

var (
	_ bookingDomain.BookingRepository = (*DB)(nil)
	_ hotel.Repository                = (*DB)(nil)
	_ hotel.CustomerRepository        = (*DB)(nil)
)
