package memory

import (
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
)

type seedRoom struct {
	number   string
	kind     hotel.RoomType
	price    int64
	capacity int
}

type seedHotel struct {
	name      string
	location  string
	stars     int
	rooms     []seedRoom
	amenities [][2]string
}

var demoInventory = []seedHotel{
	{
		name: "Harbourview Grand", location: "Kuala Lumpur, Malaysia", stars: 5,
		rooms: []seedRoom{
			{"101", hotel.RoomTypeSingle, 18000, 1},
			{"102", hotel.RoomTypeDouble, 26000, 2},
			{"501", hotel.RoomTypeSuite, 64000, 4},
		},
		amenities: [][2]string{{"Pool", "Rooftop infinity pool"}, {"Spa", ""}, {"Wi-Fi", "Free in all rooms"}},
	},
	{
		name: "Lantern Lane Inn", location: "Penang, Malaysia", stars: 3,
		rooms: []seedRoom{
			{"1", hotel.RoomTypeSingle, 9000, 1},
			{"2", hotel.RoomTypeDouble, 12500, 2},
		},
		amenities: [][2]string{{"Breakfast", "Included"}},
	},
	{
		name: "Sentral Suites", location: "Kuala Lumpur, Malaysia", stars: 4,
		rooms: []seedRoom{
			{"1201", hotel.RoomTypeDouble, 21000, 2},
			{"1202", hotel.RoomTypeSuite, 39000, 3},
		},
		amenities: [][2]string{{"Gym", "24 hours"}, {"Wi-Fi", ""}},
	},
}

var demoCustomers = []hotel.Customer{
	{Name: "Aisha Rahman", Email: "aisha@example.com"},
	{Name: "Daniel Tan", Email: "daniel@example.com"},
	{Name: "Priya Nair", Email: "priya@example.com"},
}

// Seed loads a small demo inventory and customer list.
func Seed(db *DB) {
	for _, h := range demoInventory {
		hotelID := db.AddHotel(hotel.Hotel{Name: h.name, Location: h.location, StarRating: h.stars})
		for _, r := range h.rooms {
			db.AddRoom(hotel.Room{
				HotelID:    hotelID,
				RoomNumber: r.number,
				RoomType:   r.kind,
				PriceCents: r.price,
				Capacity:   r.capacity,
			})
		}
		for _, a := range h.amenities {
			db.AddAmenity(hotel.Amenity{HotelID: hotelID, Name: a[0], Description: a[1]})
		}
	}
	for _, c := range demoCustomers {
		db.AddCustomer(c)
	}
}
