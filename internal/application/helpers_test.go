package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/cache"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/repository/memory"
)

type publishedEvent struct {
	topic string
	key   string
	event kafka.CloudEvent
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishEventWithKey(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fixture is a fully wired service stack over the in-memory store.
type fixture struct {
	db          *memory.DB
	publisher   *recordingPublisher
	idem        *cache.MemoryStore
	oracle      *AvailabilityService
	reservation *ReservationService
	bookings    *BookingService
	hotels      *HotelService

	harbourID  int64
	lanternID  int64
	room42     int64 // Harbourview double, 200.00
	suite      int64 // Harbourview suite, 550.00
	lanternTwo int64 // Lantern Lane double, 120.00
	guest      int64
	otherGuest int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	f := &fixture{db: db, publisher: &recordingPublisher{}, idem: cache.NewMemoryStore()}

	f.harbourID = db.AddHotel(hotel.Hotel{Name: "Harbourview", Location: "Kuala Lumpur, Malaysia", StarRating: 5})
	f.lanternID = db.AddHotel(hotel.Hotel{Name: "Lantern Lane", Location: "Penang, Malaysia", StarRating: 3})
	f.room42 = db.AddRoom(hotel.Room{HotelID: f.harbourID, RoomNumber: "42", RoomType: hotel.RoomTypeDouble, PriceCents: 20000, Capacity: 2})
	f.suite = db.AddRoom(hotel.Room{HotelID: f.harbourID, RoomNumber: "900", RoomType: hotel.RoomTypeSuite, PriceCents: 55000, Capacity: 4})
	f.lanternTwo = db.AddRoom(hotel.Room{HotelID: f.lanternID, RoomNumber: "2", RoomType: hotel.RoomTypeDouble, PriceCents: 12000, Capacity: 2})
	db.AddAmenity(hotel.Amenity{HotelID: f.harbourID, Name: "Pool"})
	f.guest = db.AddCustomer(hotel.Customer{Name: "Aisha", Email: "aisha@example.com"})
	f.otherGuest = db.AddCustomer(hotel.Customer{Name: "Daniel", Email: "daniel@example.com"})

	f.wire(db)
	return f
}

// wire builds the services over bookings, which may wrap the memory store.
func (f *fixture) wire(bookings bookingDomain.BookingRepository) {
	logger := zap.NewNop()
	f.oracle = NewAvailabilityService(f.db, bookings, logger)
	f.reservation = NewReservationService(f.oracle, f.db, f.db, bookings, f.idem, f.publisher, logger)
	f.bookings = NewBookingService(bookings, f.publisher, logger)
	f.hotels = NewHotelService(f.db, cache.NewMemoryStore(), logger)
}

func (f *fixture) book(roomID, customerID int64, in, out string) (*ReservationDTO, error) {
	return f.reservation.CreateBooking(context.Background(), CreateBookingRequest{
		CustomerID:   customerID,
		RoomID:       roomID,
		CheckInDate:  in,
		CheckOutDate: out,
	})
}

func mustStay(t require.TestingT, in, out string) bookingDomain.StayPeriod {
	s, err := bookingDomain.ParseStayPeriod(in, out)
	require.NoError(t, err)
	return s
}
