package hotel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomType_RankOrderingIsExplicit(t *testing.T) {
	// Lexically "Double" < "Single" < "Suite"; rank ordering must not follow that.
	assert.True(t, RoomTypeSingle.Rank() < RoomTypeDouble.Rank())
	assert.True(t, RoomTypeDouble.Rank() < RoomTypeSuite.Rank())

	assert.True(t, RoomTypeSuite.AtLeast(RoomTypeDouble))
	assert.True(t, RoomTypeDouble.AtLeast(RoomTypeDouble))
	assert.False(t, RoomTypeSingle.AtLeast(RoomTypeDouble))
	assert.False(t, RoomType("Penthouse").AtLeast(RoomTypeSingle))
}

func TestTypesAtLeast(t *testing.T) {
	assert.Equal(t, []RoomType{RoomTypeDouble, RoomTypeSuite}, TypesAtLeast(RoomTypeDouble))
	assert.Equal(t, AllRoomTypes(), TypesAtLeast(RoomTypeSingle))
}

func TestParseRoomType(t *testing.T) {
	rt, err := ParseRoomType(" suite ")
	require.NoError(t, err)
	assert.Equal(t, RoomTypeSuite, rt)

	_, err = ParseRoomType("king")
	assert.Error(t, err)
}

func TestRoomFilter_Matches(t *testing.T) {
	room := Room{
		ID:            1,
		RoomType:      RoomTypeDouble,
		PriceCents:    12000,
		HotelLocation: "Kuala Lumpur",
	}

	tests := []struct {
		name   string
		filter RoomFilter
		want   bool
	}{
		{"location substring, case-insensitive", RoomFilter{Location: "lumpur", MinRoomType: RoomTypeSingle}, true},
		{"other location", RoomFilter{Location: "Penang", MinRoomType: RoomTypeSingle}, false},
		{"type rank too low", RoomFilter{Location: "", MinRoomType: RoomTypeSuite}, false},
		{"price within bounds", RoomFilter{MinRoomType: RoomTypeDouble, PriceMinCents: 10000, PriceMaxCents: 12000}, true},
		{"price below min", RoomFilter{MinRoomType: RoomTypeDouble, PriceMinCents: 12001}, false},
		{"price above max", RoomFilter{MinRoomType: RoomTypeDouble, PriceMaxCents: 11999}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(room))
		})
	}
}
