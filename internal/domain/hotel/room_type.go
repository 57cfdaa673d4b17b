package hotel

import (
	"fmt"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// RoomType is the category of a room. Categories are ordered by rank, not by name.
type RoomType string

const (
	RoomTypeSingle RoomType = "Single"
	RoomTypeDouble RoomType = "Double"
	RoomTypeSuite  RoomType = "Suite"
)

var roomTypeRank = map[RoomType]int{
	RoomTypeSingle: 1,
	RoomTypeDouble: 2,
	RoomTypeSuite:  3,
}

// AllRoomTypes lists every category in ascending rank.
func AllRoomTypes() []RoomType {
	return []RoomType{RoomTypeSingle, RoomTypeDouble, RoomTypeSuite}
}

// IsValid returns true if the type is a recognized room category.
func (t RoomType) IsValid() bool {
	_, ok := roomTypeRank[t]
	return ok
}

// Rank returns the ordinal of the category; unknown types rank 0.
func (t RoomType) Rank() int {
	return roomTypeRank[t]
}

// AtLeast reports whether t ranks at or above min.
func (t RoomType) AtLeast(min RoomType) bool {
	return t.IsValid() && t.Rank() >= min.Rank()
}

// String returns the string representation of the room type.
func (t RoomType) String() string {
	return string(t)
}

// TypesAtLeast returns the categories ranking at or above min, in ascending rank.
func TypesAtLeast(min RoomType) []RoomType {
	var out []RoomType
	for _, t := range AllRoomTypes() {
		if t.AtLeast(min) {
			out = append(out, t)
		}
	}
	return out
}

// ParseRoomType converts a case-insensitive name to a RoomType.
func ParseRoomType(s string) (RoomType, error) {
	for _, t := range AllRoomTypes() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid room type %q, expected Single, Double or Suite", s))
}
