package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// HotelModel is the GORM model for the hotels table.
type HotelModel struct {
	HotelID    int64     `gorm:"column:hotel_id;primaryKey;autoIncrement"`
	Name       string    `gorm:"not null;size:255"`
	Location   string    `gorm:"not null;size:255"`
	StarRating int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HotelModel) TableName() string { return "hotels" }

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	RoomID     int64  `gorm:"column:room_id;primaryKey;autoIncrement"`
	HotelID    int64  `gorm:"not null;index;uniqueIndex:idx_rooms_hotel_number"`
	RoomNumber string `gorm:"not null;size:20;uniqueIndex:idx_rooms_hotel_number"`
	RoomType   string `gorm:"not null;size:20"`
	PriceCents int64  `gorm:"not null"`
	Capacity   int    `gorm:"not null;default:1"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string { return "rooms" }

// AmenityModel is the GORM model for the amenities table.
type AmenityModel struct {
	AmenityID   int64  `gorm:"column:amenity_id;primaryKey;autoIncrement"`
	HotelID     int64  `gorm:"not null;index"`
	Name        string `gorm:"not null;size:100"`
	Description string `gorm:"not null;default:''"`
}

// TableName returns the table name for the GORM model.
func (AmenityModel) TableName() string { return "amenities" }

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	CustomerID int64     `gorm:"column:customer_id;primaryKey;autoIncrement"`
	Name       string    `gorm:"not null;size:255"`
	Email      string    `gorm:"not null;size:255;uniqueIndex"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string { return "customers" }

// roomRow is a room joined with its hotel.
type roomRow struct {
	RoomModel
	HotelName       string
	HotelLocation   string
	HotelStarRating int
}

const (
	roomColumns = "r.room_id, r.hotel_id, r.room_number, r.room_type, r.price_cents, r.capacity, " +
		"h.name AS hotel_name, h.location AS hotel_location, h.star_rating AS hotel_star_rating"
	roomHotelJoin = "JOIN hotels h ON h.hotel_id = r.hotel_id"
)

// GormHotelRepository is the GORM-based implementation of hotel.Repository.
type GormHotelRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

// NewGormHotelRepository creates a new GormHotelRepository.
func NewGormHotelRepository(db *gorm.DB) *GormHotelRepository {
	return &GormHotelRepository{db: db, tracer: otel.Tracer("service-hotel-booking/repository")}
}

func (r *GormHotelRepository) rooms(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("rooms AS r").Select(roomColumns).Joins(roomHotelJoin)
}

// FindHotel retrieves a hotel by id.
func (r *GormHotelRepository) FindHotel(ctx context.Context, id int64) (*hotel.Hotel, error) {
	var model HotelModel
	if err := r.db.WithContext(ctx).Where("hotel_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Hotel", strconv.FormatInt(id, 10))
		}
		return nil, classifyError(err, "find hotel")
	}
	return toDomainHotel(&model), nil
}

// FindRoom retrieves a room joined with its hotel.
func (r *GormHotelRepository) FindRoom(ctx context.Context, id int64) (*hotel.Room, error) {
	var row roomRow
	if err := r.rooms(ctx).Where("r.room_id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", strconv.FormatInt(id, 10))
		}
		return nil, classifyError(err, "find room")
	}
	return row.toDomain(), nil
}

// ListRooms returns a hotel's rooms ordered by price.
func (r *GormHotelRepository) ListRooms(ctx context.Context, hotelID int64) ([]*hotel.Room, error) {
	var rows []roomRow
	if err := r.rooms(ctx).Where("r.hotel_id = ?", hotelID).Order("r.price_cents ASC, r.room_id ASC").Find(&rows).Error; err != nil {
		return nil, classifyError(err, "list rooms")
	}
	return toDomainRooms(rows), nil
}

// ListAmenities returns a hotel's amenities.
func (r *GormHotelRepository) ListAmenities(ctx context.Context, hotelID int64) ([]*hotel.Amenity, error) {
	var models []AmenityModel
	if err := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("amenity_id ASC").Find(&models).Error; err != nil {
		return nil, classifyError(err, "list amenities")
	}
	out := make([]*hotel.Amenity, len(models))
	for i, m := range models {
		out[i] = &hotel.Amenity{ID: m.AmenityID, HotelID: m.HotelID, Name: m.Name, Description: m.Description}
	}
	return out, nil
}

// SearchRooms returns rooms matching filter, joined with their hotel.
func (r *GormHotelRepository) SearchRooms(ctx context.Context, filter hotel.RoomFilter) ([]*hotel.Room, error) {
	ctx, span := r.tracer.Start(ctx, "hotels.search_rooms", trace.WithAttributes(
		attribute.String("filter.location", filter.Location),
		attribute.String("filter.min_room_type", filter.MinRoomType.String()),
	))
	defer span.End()

	q := r.rooms(ctx).Where("r.room_type IN ?", roomTypeNames(hotel.TypesAtLeast(filter.MinRoomType)))
	if filter.Location != "" {
		q = q.Where("h.location ILIKE ?", "%"+escapeLike(filter.Location)+"%")
	}
	if filter.PriceMinCents > 0 {
		q = q.Where("r.price_cents >= ?", filter.PriceMinCents)
	}
	if filter.PriceMaxCents > 0 {
		q = q.Where("r.price_cents <= ?", filter.PriceMaxCents)
	}

	var rows []roomRow
	if err := q.Order("r.hotel_id ASC, r.price_cents ASC").Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, classifyError(err, "search rooms")
	}
	span.SetAttributes(attribute.Int("result.rooms", len(rows)))
	return toDomainRooms(rows), nil
}

// GormCustomerRepository is the GORM-based implementation of hotel.CustomerRepository.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Exists reports whether a customer with id exists.
func (r *GormCustomerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("customer_id = ?", id).Count(&count).Error; err != nil {
		return false, classifyError(err, "check customer")
	}
	return count > 0, nil
}

// --- Conversion Helpers ---

func toDomainHotel(m *HotelModel) *hotel.Hotel {
	return &hotel.Hotel{
		ID:         m.HotelID,
		Name:       m.Name,
		Location:   m.Location,
		StarRating: m.StarRating,
		CreatedAt:  m.CreatedAt,
	}
}

func (row *roomRow) toDomain() *hotel.Room {
	return &hotel.Room{
		ID:              row.RoomID,
		HotelID:         row.HotelID,
		RoomNumber:      row.RoomNumber,
		RoomType:        hotel.RoomType(row.RoomType),
		PriceCents:      row.PriceCents,
		Capacity:        row.Capacity,
		HotelName:       row.HotelName,
		HotelLocation:   row.HotelLocation,
		HotelStarRating: row.HotelStarRating,
	}
}

func toDomainRooms(rows []roomRow) []*hotel.Room {
	out := make([]*hotel.Room, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}

func roomTypeNames(types []hotel.RoomType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
