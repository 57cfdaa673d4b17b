package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	BookingID    int64      `gorm:"column:booking_id;primaryKey;autoIncrement"`
	Reference    string     `gorm:"uniqueIndex;not null;size:12"`
	RoomID       int64      `gorm:"not null;index:idx_bookings_room_status"`
	CustomerID   int64      `gorm:"not null;index"`
	CheckInDate  time.Time  `gorm:"type:date;not null"`
	CheckOutDate time.Time  `gorm:"type:date;not null"`
	Status       string     `gorm:"not null;size:20;default:'confirmed';index:idx_bookings_room_status"`
	CancelReason string     `gorm:"not null;default:''"`
	CanceledAt   *time.Time `gorm:""`
	Version      int64      `gorm:"not null;default:1"`
	BookingDate  time.Time  `gorm:"column:booking_date;not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// overlapCondition is the half-open overlap rule against a requested stay:
// existing.check_in < requested.check_out AND requested.check_in < existing.check_out.
const overlapCondition = "status <> ? AND check_in_date < ? AND ? < check_out_date"

func overlapArgs(stay bookingDomain.StayPeriod) []interface{} {
	return []interface{}{
		string(bookingDomain.StatusCanceled),
		stay.CheckOut().Format(bookingDomain.DateLayout),
		stay.CheckIn().Format(bookingDomain.DateLayout),
	}
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db, tracer: otel.Tracer("service-hotel-booking/repository")}
}

// FindByID retrieves a booking by its identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, classifyError(err, "find booking")
	}
	return toDomainBooking(&model), nil
}

// FindByCustomerID retrieves bookings for a specific customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID int64, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Where("customer_id = ?", customerID), page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx), page, limit)
}

func (r *GormBookingRepository) paginate(ctx context.Context, q *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, classifyError(err, "count bookings")
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := q.Session(&gorm.Session{}).
		Order("booking_date DESC, booking_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, classifyError(err, "list bookings")
	}
	return toDomainBookings(models), total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, classifyError(err, "count by status")
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// HasOverlap reports whether a non-canceled booking on roomID overlaps stay.
// Outside a unit of work this is a read-committed view.
func (r *GormBookingRepository) HasOverlap(ctx context.Context, roomID int64, stay bookingDomain.StayPeriod) (bool, error) {
	return hasOverlap(r.db.WithContext(ctx), roomID, stay)
}

// ActiveByRoom returns the non-canceled bookings on roomID, ordered by check-in.
func (r *GormBookingRepository) ActiveByRoom(ctx context.Context, roomID int64) ([]*bookingDomain.Booking, error) {
	return activeByRoom(r.db.WithContext(ctx), roomID)
}

// OverlappingRoomIDs evaluates the overlap rule for many rooms in one query.
func (r *GormBookingRepository) OverlappingRoomIDs(ctx context.Context, roomIDs []int64, stay bookingDomain.StayPeriod) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if len(roomIDs) == 0 {
		return out, nil
	}

	ctx, span := r.tracer.Start(ctx, "bookings.overlapping_rooms", trace.WithAttributes(
		attribute.Int("room.count", len(roomIDs)),
		attribute.String("stay", stay.String()),
	))
	defer span.End()

	var ids []int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Distinct("room_id").
		Where("room_id IN ?", roomIDs).
		Where(overlapCondition, overlapArgs(stay)...).
		Pluck("room_id", &ids).Error; err != nil {
		span.RecordError(err)
		return nil, classifyError(err, "find overlapping rooms")
	}
	for _, id := range ids {
		out[id] = true
	}
	span.SetAttributes(attribute.Int("room.occupied", len(out)))
	return out, nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row carries version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("booking_id = ? AND version = ?", model.BookingID, expectedVersion).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"cancel_reason": model.CancelReason,
			"canceled_at":   model.CanceledAt,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return classifyError(result.Error, "update booking")
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// WithinRoomLock runs fn in a transaction holding a row lock on the room.
// Concurrent units for the same room queue on that lock, so each one's
// overlap check observes every booking committed before it.
func (r *GormBookingRepository) WithinRoomLock(ctx context.Context, roomID int64, fn bookingDomain.RoomUnitOfWork) error {
	ctx, span := r.tracer.Start(ctx, "bookings.within_room_lock", trace.WithAttributes(
		attribute.Int64("room.id", roomID),
	))
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row roomRow
		err := tx.Table("rooms AS r").
			Select(roomColumns).
			Joins(roomHotelJoin).
			Where("r.room_id = ?", roomID).
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "r"}}).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("Room", strconv.FormatInt(roomID, 10))
		}
		if err != nil {
			return classifyError(err, "lock room")
		}
		span.AddEvent("room.locked")

		return fn(ctx, row.toDomain(), &gormLedger{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unit of work aborted")
		return classifyError(err, "room unit of work")
	}
	return nil
}

// gormLedger is the transactional view handed to a RoomUnitOfWork.
type gormLedger struct {
	tx *gorm.DB
}

func (l *gormLedger) HasOverlap(ctx context.Context, roomID int64, stay bookingDomain.StayPeriod) (bool, error) {
	return hasOverlap(l.tx.WithContext(ctx), roomID, stay)
}

func (l *gormLedger) ActiveByRoom(ctx context.Context, roomID int64) ([]*bookingDomain.Booking, error) {
	return activeByRoom(l.tx.WithContext(ctx), roomID)
}

func (l *gormLedger) Insert(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := l.tx.WithContext(ctx).Create(model).Error; err != nil {
		return classifyError(err, "insert booking")
	}
	bk.AssignID(model.BookingID)
	return nil
}

func hasOverlap(db *gorm.DB, roomID int64, stay bookingDomain.StayPeriod) (bool, error) {
	var count int64
	if err := db.Model(&BookingModel{}).
		Where("room_id = ?", roomID).
		Where(overlapCondition, overlapArgs(stay)...).
		Count(&count).Error; err != nil {
		return false, classifyError(err, "check overlap")
	}
	return count > 0, nil
}

func activeByRoom(db *gorm.DB, roomID int64) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := db.Where("room_id = ? AND status <> ?", roomID, string(bookingDomain.StatusCanceled)).
		Order("check_in_date ASC, booking_id ASC").
		Find(&models).Error; err != nil {
		return nil, classifyError(err, "list room bookings")
	}
	return toDomainBookings(models), nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		BookingID:    bk.ID(),
		Reference:    bk.Reference(),
		RoomID:       bk.RoomID(),
		CustomerID:   bk.CustomerID(),
		CheckInDate:  bk.Stay().CheckIn(),
		CheckOutDate: bk.Stay().CheckOut(),
		Status:       string(bk.Status()),
		CancelReason: bk.CancelReason(),
		CanceledAt:   bk.CanceledAt(),
		Version:      bk.Version(),
		BookingDate:  bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.BookingID,
		m.Reference,
		m.RoomID,
		m.CustomerID,
		m.CheckInDate,
		m.CheckOutDate,
		bookingDomain.BookingStatus(m.Status),
		m.CanceledAt,
		m.CancelReason,
		m.Version,
		m.BookingDate,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	out := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		out[i] = toDomainBooking(&models[i])
	}
	return out
}

var _ bookingDomain.BookingRepository = (*GormBookingRepository)(nil)
var _ hotel.Repository = (*GormHotelRepository)(nil)
var _ hotel.CustomerRepository = (*GormCustomerRepository)(nil)
