// Package contracts defines the Kafka topics and payloads exchanged with other services.
package contracts

import "time"

// Topics.
const (
	TopicBookingEvents   = "hotel.booking.events"
	TopicBookingCommands = "hotel.booking.commands"
)

// Event and command types.
const (
	BookingConfirmed       = "booking.confirmed"
	BookingCanceled        = "booking.canceled"
	BookingCancelRequested = "booking.cancel_requested"
)

// BookingConfirmedEvent is published after a reservation commits.
type BookingConfirmedEvent struct {
	BookingID    int64     `json:"booking_id"`
	Reference    string    `json:"reference"`
	RoomID       int64     `json:"room_id"`
	HotelID      int64     `json:"hotel_id"`
	CustomerID   int64     `json:"customer_id"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	Nights       int       `json:"nights"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BookingCanceledEvent is published after a booking is canceled.
type BookingCanceledEvent struct {
	BookingID    int64     `json:"booking_id"`
	Reference    string    `json:"reference"`
	RoomID       int64     `json:"room_id"`
	CustomerID   int64     `json:"customer_id"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	Reason       string    `json:"reason"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// CancelBookingCommand asks this service to cancel a booking.
type CancelBookingCommand struct {
	BookingID   int64  `json:"booking_id"`
	Reason      string `json:"reason"`
	RequestedBy string `json:"requested_by"`
}
