package application

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/contracts"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// BookingService handles the booking lifecycle after a reservation is committed.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CancelBooking moves a confirmed booking to canceled, freeing its room for the stay.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}
	bk.IncrementVersion()

	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking canceled",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("room_id", bk.RoomID()),
		zap.String("reason", reason),
	)

	evt := contracts.BookingCanceledEvent{
		BookingID:    bk.ID(),
		Reference:    bk.Reference(),
		RoomID:       bk.RoomID(),
		CustomerID:   bk.CustomerID(),
		CheckInDate:  bk.Stay().CheckIn().Format(bookingDomain.DateLayout),
		CheckOutDate: bk.Stay().CheckOut().Format(bookingDomain.DateLayout),
		Reason:       reason,
		OccurredAt:   time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, contracts.TopicBookingEvents, contracts.BookingCanceled,
		strconv.FormatInt(bk.RoomID(), 10), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListCustomerBookings retrieves paginated bookings for a customer, newest first.
func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID int64, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListAllBookings retrieves all bookings with pagination (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns booking counts grouped by status (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{Total: total, ByStatus: counts}, nil
}

// AuditRoomLedger lists a room's active bookings and checks they are pairwise
// non-overlapping (admin diagnostic, read only).
func (s *BookingService) AuditRoomLedger(ctx context.Context, roomID int64) (*RoomLedgerDTO, error) {
	active, err := s.repo.ActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	result := &RoomLedgerDTO{
		RoomID:     roomID,
		Bookings:   toBookingDTOs(active),
		Consistent: true,
	}
	if err := bookingDomain.VerifyNoOverlap(active); err != nil {
		result.Consistent = false
		result.Violation = err.Error()
		s.logger.Error("room ledger violates no-overlap invariant",
			zap.Int64("room_id", roomID),
			zap.Error(err),
		)
	}
	return result, nil
}
