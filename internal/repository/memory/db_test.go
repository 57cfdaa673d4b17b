package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

func stay(t *testing.T, in, out string) bookingDomain.StayPeriod {
	t.Helper()
	s, err := bookingDomain.ParseStayPeriod(in, out)
	require.NoError(t, err)
	return s
}

func newFixture(t *testing.T) (*DB, int64, int64) {
	t.Helper()
	db := New()
	hotelID := db.AddHotel(hotel.Hotel{Name: "Harbourview", Location: "Kuala Lumpur", StarRating: 4})
	roomID := db.AddRoom(hotel.Room{HotelID: hotelID, RoomNumber: "42", RoomType: hotel.RoomTypeDouble, PriceCents: 20000})
	customerID := db.AddCustomer(hotel.Customer{Name: "Guest", Email: "guest@example.com"})
	return db, roomID, customerID
}

func insert(ctx context.Context, db *DB, roomID, customerID int64, s bookingDomain.StayPeriod) error {
	return db.WithinRoomLock(ctx, roomID, func(ctx context.Context, _ *hotel.Room, l bookingDomain.Ledger) error {
		bk, err := bookingDomain.NewBooking(customerID, roomID, s)
		if err != nil {
			return err
		}
		return l.Insert(ctx, bk)
	})
}

func TestWithinRoomLock_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	db, roomID, customerID := newFixture(t)

	require.NoError(t, insert(ctx, db, roomID, customerID, stay(t, "2024-06-01", "2024-06-05")))

	busy, err := db.HasOverlap(ctx, roomID, stay(t, "2024-06-04", "2024-06-06"))
	require.NoError(t, err)
	assert.True(t, busy)

	free, err := db.OverlappingRoomIDs(ctx, []int64{roomID}, stay(t, "2024-06-05", "2024-06-08"))
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestWithinRoomLock_DiscardsWritesOnError(t *testing.T) {
	ctx := context.Background()
	db, roomID, customerID := newFixture(t)
	abort := errors.New("abort")

	err := db.WithinRoomLock(ctx, roomID, func(ctx context.Context, _ *hotel.Room, l bookingDomain.Ledger) error {
		bk, err := bookingDomain.NewBooking(customerID, roomID, stay(t, "2024-06-01", "2024-06-05"))
		require.NoError(t, err)
		require.NoError(t, l.Insert(ctx, bk))

		pending, err := l.HasOverlap(ctx, roomID, stay(t, "2024-06-02", "2024-06-03"))
		require.NoError(t, err)
		assert.True(t, pending, "ledger sees its own pending insert")
		return abort
	})
	assert.ErrorIs(t, err, abort)

	_, total, err := db.ListAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWithinRoomLock_UnknownRoom(t *testing.T) {
	db, _, _ := newFixture(t)
	called := false
	err := db.WithinRoomLock(context.Background(), 999, func(context.Context, *hotel.Room, bookingDomain.Ledger) error {
		called = true
		return nil
	})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.False(t, called)
}

func TestWithinRoomLock_SerializesSameRoom(t *testing.T) {
	db, roomID, _ := newFixture(t)
	var inside, maxInside int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.WithinRoomLock(context.Background(), roomID, func(context.Context, *hotel.Room, bookingDomain.Ledger) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestUpdate_OptimisticVersion(t *testing.T) {
	ctx := context.Background()
	db, roomID, customerID := newFixture(t)
	require.NoError(t, insert(ctx, db, roomID, customerID, stay(t, "2024-06-01", "2024-06-05")))

	all, _, err := db.ListAll(ctx, 1, 10)
	require.NoError(t, err)
	first := all[0]
	second, err := db.FindByID(ctx, first.ID())
	require.NoError(t, err)

	require.NoError(t, first.Cancel("x"))
	first.IncrementVersion()
	require.NoError(t, db.Update(ctx, first))

	require.NoError(t, second.Cancel("y"))
	second.IncrementVersion()
	assert.True(t, domain.IsKind(db.Update(ctx, second), domain.KindConflict))

	active, err := db.ActiveByRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInsert_RejectsUnknownCustomer(t *testing.T) {
	db, roomID, _ := newFixture(t)
	err := insert(context.Background(), db, roomID, 999, stay(t, "2024-06-01", "2024-06-05"))
	assert.True(t, domain.IsKind(err, domain.KindInvalidRequest))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := New()
	Seed(db)

	rooms, err := db.SearchRooms(ctx, hotel.RoomFilter{Location: "kuala lumpur", MinRoomType: hotel.RoomTypeDouble})
	require.NoError(t, err)
	require.NotEmpty(t, rooms)
	for _, r := range rooms {
		assert.Contains(t, r.HotelLocation, "Kuala Lumpur")
		assert.True(t, r.RoomType.AtLeast(hotel.RoomTypeDouble))
	}
}
