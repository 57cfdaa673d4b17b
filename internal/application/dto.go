package application

import (
	"errors"
	"time"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// CreateBookingRequest holds the data needed to reserve a room.
type CreateBookingRequest struct {
	CustomerID   int64  `json:"customerId" binding:"required"`
	RoomID       int64  `json:"roomId" binding:"required"`
	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`
}

// CancelBookingRequest holds the optional cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID           int64      `json:"booking_id"`
	Reference    string     `json:"reference"`
	RoomID       int64      `json:"room_id"`
	CustomerID   int64      `json:"customer_id"`
	CheckInDate  string     `json:"check_in_date"`
	CheckOutDate string     `json:"check_out_date"`
	Nights       int        `json:"nights"`
	Status       string     `json:"status"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
	Version      int64      `json:"version"`
	BookingDate  time.Time  `json:"booking_date"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ReservationDTO is the result of a committed reservation.
type ReservationDTO struct {
	Booking  BookingDTO `json:"booking"`
	Room     hotel.Room `json:"room"`
	Nights   int        `json:"nights"`
	Message  string     `json:"message"`
	Replayed bool       `json:"replayed,omitempty"`
}

// AvailabilityDTO answers a single-room availability query.
type AvailabilityDTO struct {
	RoomID       int64  `json:"roomId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Available    bool   `json:"available"`
}

// HotelAvailabilityDTO aggregates a hotel's available rooms for a search.
type HotelAvailabilityDTO struct {
	HotelID        int64  `json:"hotel_id"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	StarRating     int    `json:"star_rating"`
	MinPriceCents  int64  `json:"min_price_cents"`
	MaxPriceCents  int64  `json:"max_price_cents"`
	AvailableRooms int    `json:"available_rooms"`
}

// SearchResultDTO is the response of a hotel search.
type SearchResultDTO struct {
	Hotels         []HotelAvailabilityDTO `json:"hotels"`
	Count          int                    `json:"count"`
	SearchCriteria SearchCriteriaDTO      `json:"searchCriteria"`
}

// SearchCriteriaDTO echoes the normalized search input.
type SearchCriteriaDTO struct {
	Location      string `json:"location"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
	MinRoomType   string `json:"room_type"`
	PriceMinCents int64  `json:"price_min_cents,omitempty"`
	PriceMaxCents int64  `json:"price_max_cents,omitempty"`
	SortBy        string `json:"sort_by"`
	SortOrder     string `json:"sort_order"`
}

// HotelDetailsDTO is a hotel with its rooms and amenities.
type HotelDetailsDTO struct {
	Hotel     hotel.Hotel      `json:"hotel"`
	Rooms     []*hotel.Room    `json:"rooms"`
	Amenities []*hotel.Amenity `json:"amenities"`
}

// BookingStatsDTO summarizes bookings by status (admin).
type BookingStatsDTO struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// RoomLedgerDTO is an audit of one room's active bookings (admin).
type RoomLedgerDTO struct {
	RoomID     int64        `json:"room_id"`
	Bookings   []BookingDTO `json:"bookings"`
	Consistent bool         `json:"consistent"`
	Violation  string       `json:"violation,omitempty"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:           bk.ID(),
		Reference:    bk.Reference(),
		RoomID:       bk.RoomID(),
		CustomerID:   bk.CustomerID(),
		CheckInDate:  bk.Stay().CheckIn().Format(bookingDomain.DateLayout),
		CheckOutDate: bk.Stay().CheckOut().Format(bookingDomain.DateLayout),
		Nights:       bk.Nights(),
		Status:       string(bk.Status()),
		CancelReason: bk.CancelReason(),
		CanceledAt:   bk.CanceledAt(),
		Version:      bk.Version(),
		BookingDate:  bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func asAppError(err error, target **domain.AppError) bool {
	return errors.As(err, target)
}
