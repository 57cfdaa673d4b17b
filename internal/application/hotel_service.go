package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/cache"
)

// HotelService serves read-only inventory. Details are cached because
// inventory does not change while the service runs.
type HotelService struct {
	repo   hotel.Repository
	cache  cache.Store
	logger *zap.Logger
}

// NewHotelService creates a new HotelService. store may be nil to disable caching.
func NewHotelService(repo hotel.Repository, store cache.Store, logger *zap.Logger) *HotelService {
	return &HotelService{repo: repo, cache: store, logger: logger}
}

// GetHotelDetails returns a hotel with its rooms (cheapest first) and amenities.
func (s *HotelService) GetHotelDetails(ctx context.Context, hotelID int64) (*HotelDetailsDTO, error) {
	key := fmt.Sprintf(cache.KeyHotelDetails, hotelID)
	if cached, ok := s.cached(ctx, key); ok {
		return cached, nil
	}

	h, err := s.repo.FindHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.repo.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	amenities, err := s.repo.ListAmenities(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*hotel.Room{}
	}
	if amenities == nil {
		amenities = []*hotel.Amenity{}
	}

	details := &HotelDetailsDTO{Hotel: *h, Rooms: rooms, Amenities: amenities}
	s.store(ctx, key, details)
	return details, nil
}

func (s *HotelService) cached(ctx context.Context, key string) (*HotelDetailsDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("hotel cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var details HotelDetailsDTO
	if err := json.Unmarshal(raw, &details); err != nil {
		s.logger.Warn("discarding corrupt hotel cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &details, true
}

func (s *HotelService) store(ctx context.Context, key string, details *HotelDetailsDTO) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cache.TTLHotelDetails); err != nil {
		s.logger.Warn("hotel cache write failed", zap.String("key", key), zap.Error(err))
	}
}
