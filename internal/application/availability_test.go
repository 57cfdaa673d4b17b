package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

func TestIsAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.book(f.room42, f.guest, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	tests := []struct {
		name      string
		in, out   string
		available bool
	}{
		{"overlapping tail", "2024-06-04", "2024-06-06", false},
		{"inside", "2024-06-02", "2024-06-03", false},
		{"enclosing", "2024-05-30", "2024-06-10", false},
		{"starts at checkout", "2024-06-05", "2024-06-08", true},
		{"ends at checkin", "2024-05-29", "2024-06-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.oracle.IsAvailable(ctx, f.room42, mustStay(t, tt.in, tt.out))
			require.NoError(t, err)
			assert.Equal(t, tt.available, got)

			// Repeated queries agree and do not write.
			again, err := f.oracle.IsAvailable(ctx, f.room42, mustStay(t, tt.in, tt.out))
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}

	_, total, err := f.db.ListAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestIsAvailable_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.oracle.IsAvailable(ctx, 9999, mustStay(t, "2024-06-01", "2024-06-02"))
	assert.Equal(t, domain.KindInvalidRequest, domain.KindOf(err))

	_, err = f.oracle.IsAvailable(ctx, f.room42, bookingDomain.StayPeriod{})
	assert.Equal(t, domain.KindInvalidRequest, domain.KindOf(err))
}

func TestSearchAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stay := mustStay(t, "2024-06-01", "2024-06-03")

	all, err := f.oracle.SearchAvailability(ctx, SearchCriteria{Stay: stay, SortBy: SortByPrice, SortOrder: SortAsc})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, f.lanternID, all[0].HotelID)
	assert.Equal(t, int64(12000), all[0].MinPriceCents)
	assert.Equal(t, f.harbourID, all[1].HotelID)
	assert.Equal(t, int64(20000), all[1].MinPriceCents)
	assert.Equal(t, int64(55000), all[1].MaxPriceCents)
	assert.Equal(t, 2, all[1].AvailableRooms)

	t.Run("booked room drops out of aggregation", func(t *testing.T) {
		_, err := f.book(f.room42, f.guest, "2024-06-02", "2024-06-04")
		require.NoError(t, err)

		got, err := f.oracle.SearchAvailability(ctx, SearchCriteria{Location: "kuala", Stay: stay, SortBy: SortByPrice})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].AvailableRooms)
		assert.Equal(t, int64(55000), got[0].MinPriceCents)
	})

	t.Run("hotel with no free room is omitted", func(t *testing.T) {
		_, err := f.book(f.lanternTwo, f.guest, "2024-05-30", "2024-06-02")
		require.NoError(t, err)

		got, err := f.oracle.SearchAvailability(ctx, SearchCriteria{Location: "Penang", Stay: stay})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("min room type and price bounds", func(t *testing.T) {
		got, err := f.oracle.SearchAvailability(ctx, SearchCriteria{
			Stay:          mustStay(t, "2025-01-01", "2025-01-02"),
			MinRoomType:   hotel.RoomTypeSuite,
			PriceMaxCents: 60000,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, f.harbourID, got[0].HotelID)

		got, err = f.oracle.SearchAvailability(ctx, SearchCriteria{
			Stay:          mustStay(t, "2025-01-01", "2025-01-02"),
			PriceMinCents: 100000,
		})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("inverted price range", func(t *testing.T) {
		_, err := f.oracle.SearchAvailability(ctx, SearchCriteria{Stay: stay, PriceMinCents: 500, PriceMaxCents: 100})
		assert.Equal(t, domain.KindInvalidRequest, domain.KindOf(err))
	})
}

func TestSearchAvailability_Sorting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stay := mustStay(t, "2024-06-01", "2024-06-03")

	tests := []struct {
		by    SortKey
		order SortOrder
		first int64
	}{
		{SortByPrice, SortAsc, f.lanternID},
		{SortByPrice, SortDesc, f.harbourID},
		{SortByRating, SortDesc, f.harbourID},
		{SortByRating, SortAsc, f.lanternID},
		{SortByName, SortAsc, f.harbourID},
		{SortByName, SortDesc, f.lanternID},
	}
	for _, tt := range tests {
		t.Run(string(tt.by)+"_"+string(tt.order), func(t *testing.T) {
			got, err := f.oracle.SearchAvailability(ctx, SearchCriteria{Stay: stay, SortBy: tt.by, SortOrder: tt.order})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, tt.first, got[0].HotelID)
		})
	}
}

func TestParseSortOptions(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByPrice, key)

	key, err = ParseSortKey(" Rating ")
	require.NoError(t, err)
	assert.Equal(t, SortByRating, key)

	_, err = ParseSortKey("distance")
	assert.Equal(t, domain.KindInvalidRequest, domain.KindOf(err))

	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortAsc, order)

	_, err = ParseSortOrder("sideways")
	assert.Equal(t, domain.KindInvalidRequest, domain.KindOf(err))
}

// For any sequence of reservations and cancellations, a reservation succeeds
// exactly when the room was available, and no room ever holds two overlapping
// active bookings.
func TestReservationSequence_Property(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		ctx := context.Background()
		rooms := []int64{f.room42, f.suite, f.lanternTwo}
		var committed []int64

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			if len(committed) > 0 && rapid.IntRange(0, 4).Draw(rt, "cancel") == 0 {
				idx := rapid.IntRange(0, len(committed)-1).Draw(rt, "which")
				_, err := f.bookings.CancelBooking(ctx, committed[idx], "")
				if err != nil && !domain.IsKind(err, domain.KindInvalidState) {
					rt.Fatalf("cancel: %v", err)
				}
				continue
			}

			room := rooms[rapid.IntRange(0, len(rooms)-1).Draw(rt, "room")]
			start := base.AddDate(0, 0, rapid.IntRange(0, 20).Draw(rt, "start"))
			end := start.AddDate(0, 0, rapid.IntRange(1, 6).Draw(rt, "nights"))
			in, out := start.Format(bookingDomain.DateLayout), end.Format(bookingDomain.DateLayout)

			available, err := f.oracle.IsAvailable(ctx, room, mustStay(rt, in, out))
			if err != nil {
				rt.Fatalf("is available: %v", err)
			}
			res, err := f.book(room, f.guest, in, out)
			switch {
			case available && err != nil:
				rt.Fatalf("room was available but booking failed: %v", err)
			case !available && !domain.IsKind(err, domain.KindRoomUnavailable):
				rt.Fatalf("room was busy but booking returned %v", err)
			}
			if err == nil {
				committed = append(committed, res.Booking.ID)
			}
		}

		for _, room := range rooms {
			active, err := f.db.ActiveByRoom(ctx, room)
			if err != nil {
				rt.Fatalf("active by room: %v", err)
			}
			if err := bookingDomain.VerifyNoOverlap(active); err != nil {
				rt.Fatalf("invariant violated: %v", err)
			}
		}
	})
}
