package hotel

import (
	"strings"
	"time"
)

// Hotel is a property offering rooms. Inventory is read-only for the reservation core.
type Hotel struct {
	ID         int64     `json:"hotel_id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	StarRating int       `json:"star_rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// Room is a bookable unit belonging to one hotel.
type Room struct {
	ID              int64    `json:"room_id"`
	HotelID         int64    `json:"hotel_id"`
	RoomNumber      string   `json:"room_number"`
	RoomType        RoomType `json:"room_type"`
	PriceCents      int64    `json:"price_cents"`
	Capacity        int      `json:"capacity"`
	HotelName       string   `json:"hotel_name,omitempty"`
	HotelLocation   string   `json:"-"`
	HotelStarRating int      `json:"-"`
}

// Amenity is a facility offered by a hotel.
type Amenity struct {
	ID          int64  `json:"amenity_id"`
	HotelID     int64  `json:"hotel_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Customer is the guest a booking is made for.
type Customer struct {
	ID        int64     `json:"customer_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomFilter narrows the candidate rooms considered by a search.
type RoomFilter struct {
	// Location is matched as a case-insensitive substring of the hotel location.
	Location    string
	MinRoomType RoomType
	// PriceMinCents and PriceMaxCents are ignored when zero.
	PriceMinCents int64
	PriceMaxCents int64
}

// Matches reports whether room r (joined with its hotel) satisfies the filter.
func (f RoomFilter) Matches(r Room) bool {
	if !r.RoomType.AtLeast(f.MinRoomType) {
		return false
	}
	if f.PriceMinCents > 0 && r.PriceCents < f.PriceMinCents {
		return false
	}
	if f.PriceMaxCents > 0 && r.PriceCents > f.PriceMaxCents {
		return false
	}
	return containsFold(r.HotelLocation, f.Location)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
