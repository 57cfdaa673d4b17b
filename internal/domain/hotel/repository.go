package hotel

import "context"

// Repository defines the read-only persistence contract for the room inventory.
type Repository interface {
	// FindHotel retrieves a hotel by id.
	FindHotel(ctx context.Context, id int64) (*Hotel, error)

	// FindRoom retrieves a room joined with its hotel name.
	FindRoom(ctx context.Context, id int64) (*Room, error)

	// ListRooms returns a hotel's rooms ordered by price.
	ListRooms(ctx context.Context, hotelID int64) ([]*Room, error)

	// ListAmenities returns a hotel's amenities.
	ListAmenities(ctx context.Context, hotelID int64) ([]*Amenity, error)

	// SearchRooms returns rooms (joined with hotel data) matching the filter.
	SearchRooms(ctx context.Context, filter RoomFilter) ([]*Room, error)
}

// CustomerRepository defines the persistence contract for customers.
type CustomerRepository interface {
	// Exists reports whether a customer with the given id exists.
	Exists(ctx context.Context, id int64) (bool, error)
}
