package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// SortKey orders search results.
type SortKey string

const (
	SortByPrice  SortKey = "price"
	SortByRating SortKey = "rating"
	SortByName   SortKey = "name"
)

// SortOrder is the direction of a search sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortKey accepts price, rating or name; empty means price.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByPrice, nil
	case SortByPrice, SortByRating, SortByName:
		return k, nil
	default:
		return "", domain.NewValidationError(fmt.Sprintf("invalid sortBy %q, expected price, rating or name", s))
	}
}

// ParseSortOrder accepts asc or desc; empty means asc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortAsc, nil
	case SortAsc, SortDesc:
		return o, nil
	default:
		return "", domain.NewValidationError(fmt.Sprintf("invalid sortOrder %q, expected asc or desc", s))
	}
}

// SearchCriteria is a validated search request.
type SearchCriteria struct {
	Location      string
	Stay          bookingDomain.StayPeriod
	MinRoomType   hotel.RoomType
	PriceMinCents int64
	PriceMaxCents int64
	SortBy        SortKey
	SortOrder     SortOrder
}

// AvailabilityService answers whether rooms are free for a stay.
type AvailabilityService struct {
	hotels   hotel.Repository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(hotels hotel.Repository, bookings bookingDomain.BookingRepository, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		hotels:   hotels,
		bookings: bookings,
		logger:   logger,
		tracer:   otel.Tracer("service-hotel-booking/availability"),
	}
}

// IsAvailable reports whether roomID has no active booking overlapping stay.
// It reads committed state only and has no side effects.
func (s *AvailabilityService) IsAvailable(ctx context.Context, roomID int64, stay bookingDomain.StayPeriod) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "availability.is_available", trace.WithAttributes(
		attribute.Int64("room.id", roomID),
		attribute.String("stay", stay.String()),
	))
	defer span.End()

	if stay.CheckIn().IsZero() {
		return false, domain.NewValidationError("check-in and check-out dates are required")
	}
	if _, err := s.hotels.FindRoom(ctx, roomID); err != nil {
		return false, asInvalidReference(err)
	}

	available, err := s.availableIn(ctx, s.bookings, roomID, stay)
	if err != nil {
		return false, err
	}
	span.SetAttributes(attribute.Bool("available", available))
	return available, nil
}

// availableIn evaluates the overlap predicate against reader, which is either
// committed state or a ledger inside a unit of work.
func (s *AvailabilityService) availableIn(ctx context.Context, reader bookingDomain.OverlapReader, roomID int64, stay bookingDomain.StayPeriod) (bool, error) {
	busy, err := reader.HasOverlap(ctx, roomID, stay)
	if err != nil {
		return false, err
	}
	return !busy, nil
}

// SearchAvailability lists hotels with at least one room free for the whole
// stay, aggregating price bounds over the free rooms.
func (s *AvailabilityService) SearchAvailability(ctx context.Context, criteria SearchCriteria) ([]HotelAvailabilityDTO, error) {
	ctx, span := s.tracer.Start(ctx, "availability.search", trace.WithAttributes(
		attribute.String("location", criteria.Location),
		attribute.String("stay", criteria.Stay.String()),
		attribute.String("sort_by", string(criteria.SortBy)),
	))
	defer span.End()

	if criteria.Stay.CheckIn().IsZero() {
		return nil, domain.NewValidationError("check-in and check-out dates are required")
	}
	if criteria.PriceMinCents > 0 && criteria.PriceMaxCents > 0 && criteria.PriceMinCents > criteria.PriceMaxCents {
		return nil, domain.NewValidationError("priceMin must not exceed priceMax")
	}

	rooms, err := s.hotels.SearchRooms(ctx, hotel.RoomFilter{
		Location:      criteria.Location,
		MinRoomType:   criteria.MinRoomType,
		PriceMinCents: criteria.PriceMinCents,
		PriceMaxCents: criteria.PriceMaxCents,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	occupied, err := s.bookings.OverlappingRoomIDs(ctx, ids, criteria.Stay)
	if err != nil {
		return nil, err
	}

	byHotel := make(map[int64]*HotelAvailabilityDTO)
	for _, r := range rooms {
		if occupied[r.ID] {
			continue
		}
		agg, ok := byHotel[r.HotelID]
		if !ok {
			agg = &HotelAvailabilityDTO{
				HotelID:       r.HotelID,
				Name:          r.HotelName,
				Location:      r.HotelLocation,
				StarRating:    r.HotelStarRating,
				MinPriceCents: r.PriceCents,
				MaxPriceCents: r.PriceCents,
			}
			byHotel[r.HotelID] = agg
		}
		if r.PriceCents < agg.MinPriceCents {
			agg.MinPriceCents = r.PriceCents
		}
		if r.PriceCents > agg.MaxPriceCents {
			agg.MaxPriceCents = r.PriceCents
		}
		agg.AvailableRooms++
	}

	results := make([]HotelAvailabilityDTO, 0, len(byHotel))
	for _, agg := range byHotel {
		results = append(results, *agg)
	}
	sortHotels(results, criteria.SortBy, criteria.SortOrder)

	span.SetAttributes(
		attribute.Int("rooms.candidates", len(rooms)),
		attribute.Int("rooms.occupied", len(occupied)),
		attribute.Int("hotels.available", len(results)),
	)
	s.logger.Debug("availability search",
		zap.String("location", criteria.Location),
		zap.String("stay", criteria.Stay.String()),
		zap.Int("candidates", len(rooms)),
		zap.Int("hotels", len(results)),
	)
	return results, nil
}

func sortHotels(hotels []HotelAvailabilityDTO, by SortKey, order SortOrder) {
	// compare returns <0, 0, >0 for the ascending order of the sort key.
	compare := func(a, b HotelAvailabilityDTO) int {
		switch by {
		case SortByRating:
			return a.StarRating - b.StarRating
		case SortByName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		default:
			switch {
			case a.MinPriceCents < b.MinPriceCents:
				return -1
			case a.MinPriceCents > b.MinPriceCents:
				return 1
			}
			return 0
		}
	}
	sort.SliceStable(hotels, func(i, j int) bool {
		c := compare(hotels[i], hotels[j])
		if c == 0 {
			return hotels[i].HotelID < hotels[j].HotelID
		}
		if order == SortDesc {
			return c > 0
		}
		return c < 0
	})
}

// asInvalidReference turns a missing referenced entity into invalid input.
func asInvalidReference(err error) error {
	if domain.IsKind(err, domain.KindNotFound) {
		var appErr *domain.AppError
		if asAppError(err, &appErr) {
			return domain.NewValidationError(appErr.Message)
		}
	}
	return err
}
