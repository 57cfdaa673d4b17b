package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/contracts"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/cache"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// attemptState is a step of one reservation attempt.
type attemptState string

const (
	stateStarted         attemptState = "started"
	stateValidating      attemptState = "validating"
	stateCommitted       attemptState = "committed"
	stateAbortedConflict attemptState = "aborted_conflict"
	stateAbortedError    attemptState = "aborted_error"
)

// attempt tracks and logs the state of a single CreateBooking call.
type attempt struct {
	logger *zap.Logger
	state  attemptState
	start  time.Time
}

func (a *attempt) to(state attemptState, fields ...zap.Field) {
	a.state = state
	fields = append(fields, zap.Duration("elapsed", time.Since(a.start)))
	switch state {
	case stateAbortedError:
		a.logger.Warn("reservation attempt", append(fields, zap.String("state", string(state)))...)
	case stateCommitted, stateAbortedConflict:
		a.logger.Info("reservation attempt", append(fields, zap.String("state", string(state)))...)
	default:
		a.logger.Debug("reservation attempt", append(fields, zap.String("state", string(state)))...)
	}
}

// ReservationService commits bookings. Validation and insert for a room run
// as one unit of work under that room's exclusive lock.
type ReservationService struct {
	oracle    *AvailabilityService
	hotels    hotel.Repository
	customers hotel.CustomerRepository
	bookings  bookingDomain.BookingRepository
	idem      cache.Store
	publisher EventPublisher
	logger    *zap.Logger
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	oracle *AvailabilityService,
	hotels hotel.Repository,
	customers hotel.CustomerRepository,
	bookings bookingDomain.BookingRepository,
	idem cache.Store,
	publisher EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		oracle:    oracle,
		hotels:    hotels,
		customers: customers,
		bookings:  bookings,
		idem:      idem,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking reserves req.RoomID for the requested stay. It returns
// invalid_request for bad input and room_unavailable when an active booking
// overlaps. On any error nothing is written.
func (s *ReservationService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*ReservationDTO, error) {
	a := &attempt{
		logger: s.logger.With(zap.Int64("room_id", req.RoomID), zap.Int64("customer_id", req.CustomerID)),
		start:  time.Now(),
	}
	a.to(stateStarted)

	stay, err := s.validate(ctx, req)
	if err != nil {
		a.to(stateAbortedError, zap.Error(err))
		return nil, err
	}

	a.to(stateValidating, zap.String("stay", stay.String()))
	var (
		snapshot hotel.Room
		created  *bookingDomain.Booking
	)
	err = s.bookings.WithinRoomLock(ctx, req.RoomID, func(ctx context.Context, room *hotel.Room, ledger bookingDomain.Ledger) error {
		snapshot = *room

		available, err := s.oracle.availableIn(ctx, ledger, req.RoomID, stay)
		if err != nil {
			return err
		}
		if !available {
			return domain.NewRoomUnavailableError(
				fmt.Sprintf("room %d is already booked for a stay overlapping %s", req.RoomID, stay))
		}

		bk, err := bookingDomain.NewBooking(req.CustomerID, req.RoomID, stay)
		if err != nil {
			return err
		}
		if err := ledger.Insert(ctx, bk); err != nil {
			return err
		}

		active, err := ledger.ActiveByRoom(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if err := bookingDomain.VerifyNoOverlap(active); err != nil {
			return domain.NewTransactionFailureError("no-overlap check failed after insert", err)
		}

		created = bk
		return nil
	})
	if err != nil {
		err = classifyCommitError(err)
		if domain.IsKind(err, domain.KindRoomUnavailable) {
			a.to(stateAbortedConflict, zap.String("reason", err.Error()))
		} else {
			a.to(stateAbortedError, zap.Error(err))
		}
		return nil, err
	}

	a.to(stateCommitted, zap.Int64("booking_id", created.ID()), zap.String("reference", created.Reference()))
	s.publishConfirmed(ctx, created, snapshot)

	return &ReservationDTO{
		Booking: toBookingDTO(created),
		Room:    snapshot,
		Nights:  created.Nights(),
		Message: fmt.Sprintf("Booking %s confirmed: %d night(s) at %s, room %s",
			created.Reference(), created.Nights(), snapshot.HotelName, snapshot.RoomNumber),
	}, nil
}

// validate checks the Started preconditions without touching the ledger.
func (s *ReservationService) validate(ctx context.Context, req CreateBookingRequest) (bookingDomain.StayPeriod, error) {
	if req.CustomerID <= 0 {
		return bookingDomain.StayPeriod{}, domain.NewValidationError("customerId must be a positive integer")
	}
	if req.RoomID <= 0 {
		return bookingDomain.StayPeriod{}, domain.NewValidationError("roomId must be a positive integer")
	}
	stay, err := bookingDomain.ParseStayPeriod(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return bookingDomain.StayPeriod{}, err
	}
	if _, err := s.hotels.FindRoom(ctx, req.RoomID); err != nil {
		return bookingDomain.StayPeriod{}, asInvalidReference(err)
	}
	exists, err := s.customers.Exists(ctx, req.CustomerID)
	if err != nil {
		return bookingDomain.StayPeriod{}, err
	}
	if !exists {
		return bookingDomain.StayPeriod{}, domain.NewValidationError(fmt.Sprintf("customer %d does not exist", req.CustomerID))
	}
	return stay, nil
}

// classifyCommitError keeps typed errors and reports anything else as a failed unit of work.
func classifyCommitError(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return domain.NewTransactionFailureError("booking could not be committed", err)
	}
	if appErr.Kind == domain.KindNotFound {
		return domain.NewValidationError(appErr.Message)
	}
	return err
}

// idemRecord is the value stored under an idempotency key. BookingID is zero
// while the first attempt is still running.
type idemRecord struct {
	Fingerprint string `json:"fingerprint"`
	BookingID   int64  `json:"bookingId,omitempty"`
}

// idemPollInterval is how often a call waits on a key held by another attempt.
const idemPollInterval = 20 * time.Millisecond

// requestFingerprint identifies the booking a key was first used for.
func requestFingerprint(req CreateBookingRequest) string {
	canonical := strings.Join([]string{
		strconv.FormatInt(req.CustomerID, 10),
		strconv.FormatInt(req.RoomID, 10),
		strings.TrimSpace(req.CheckInDate),
		strings.TrimSpace(req.CheckOutDate),
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// CreateBookingOnce is CreateBooking keyed by a client-supplied idempotency key.
// The first call claims the key before reserving. Later calls with the same key
// and the same request wait for that attempt and return its booking; a different
// request under a used key is rejected. A failed attempt releases the key.
func (s *ReservationService) CreateBookingOnce(ctx context.Context, key string, req CreateBookingRequest) (*ReservationDTO, error) {
	if key == "" || s.idem == nil {
		return s.CreateBooking(ctx, req)
	}
	cacheKey := fmt.Sprintf(cache.KeyIdemBooking, key)
	fingerprint := requestFingerprint(req)
	log := s.logger.With(zap.String("idempotency_key", key))

	for {
		claimed, err := s.writeRecord(ctx, cacheKey, idemRecord{Fingerprint: fingerprint}, cache.TTLIdempotencyPending, true)
		if err != nil {
			log.Warn("idempotency claim failed, reserving without it", zap.Error(err))
			return s.CreateBooking(ctx, req)
		}
		if claimed {
			return s.createAndRecord(ctx, cacheKey, fingerprint, req, log)
		}

		rec, found, err := s.readRecord(ctx, cacheKey)
		if err != nil {
			log.Warn("idempotency lookup failed, reserving without it", zap.Error(err))
			return s.CreateBooking(ctx, req)
		}
		switch {
		case !found:
			// The holder failed and released the key.
			continue
		case rec.Fingerprint != fingerprint:
			return nil, domain.NewValidationError("idempotency key was already used for a different booking request")
		case rec.BookingID != 0:
			return s.replay(ctx, rec.BookingID)
		}

		select {
		case <-ctx.Done():
			return nil, domain.NewTransactionFailureError("gave up waiting for a concurrent request with the same idempotency key", ctx.Err())
		case <-time.After(idemPollInterval):
		}
	}
}

func (s *ReservationService) createAndRecord(ctx context.Context, cacheKey, fingerprint string, req CreateBookingRequest, log *zap.Logger) (*ReservationDTO, error) {
	result, err := s.CreateBooking(ctx, req)
	if err != nil {
		if delErr := s.idem.Delete(context.WithoutCancel(ctx), cacheKey); delErr != nil {
			log.Warn("failed to release idempotency key", zap.Error(delErr))
		}
		return nil, err
	}

	rec := idemRecord{Fingerprint: fingerprint, BookingID: result.Booking.ID}
	if _, err := s.writeRecord(context.WithoutCancel(ctx), cacheKey, rec, cache.TTLIdempotency, false); err != nil {
		log.Warn("failed to store idempotency key", zap.Error(err))
	}
	return result, nil
}

// writeRecord stores rec under cacheKey. With onlyIfAbsent it reports whether
// the key was claimed.
func (s *ReservationService) writeRecord(ctx context.Context, cacheKey string, rec idemRecord, ttl time.Duration, onlyIfAbsent bool) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode idempotency record: %w", err)
	}
	if onlyIfAbsent {
		return s.idem.SetNX(ctx, cacheKey, raw, ttl)
	}
	return true, s.idem.Set(ctx, cacheKey, raw, ttl)
}

func (s *ReservationService) readRecord(ctx context.Context, cacheKey string) (idemRecord, bool, error) {
	raw, err := s.idem.Get(ctx, cacheKey)
	if errors.Is(err, cache.ErrMiss) {
		return idemRecord{}, false, nil
	}
	if err != nil {
		return idemRecord{}, false, err
	}
	var rec idemRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return idemRecord{}, false, fmt.Errorf("decode idempotency record %s: %w", cacheKey, err)
	}
	return rec, true, nil
}

func (s *ReservationService) replay(ctx context.Context, bookingID int64) (*ReservationDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	room, err := s.hotels.FindRoom(ctx, bk.RoomID())
	if err != nil {
		return nil, err
	}
	return &ReservationDTO{
		Booking:  toBookingDTO(bk),
		Room:     *room,
		Nights:   bk.Nights(),
		Message:  fmt.Sprintf("Booking %s already exists for this request", bk.Reference()),
		Replayed: true,
	}, nil
}

func (s *ReservationService) publishConfirmed(ctx context.Context, bk *bookingDomain.Booking, room hotel.Room) {
	evt := contracts.BookingConfirmedEvent{
		BookingID:    bk.ID(),
		Reference:    bk.Reference(),
		RoomID:       bk.RoomID(),
		HotelID:      room.HotelID,
		CustomerID:   bk.CustomerID(),
		CheckInDate:  bk.Stay().CheckIn().Format(bookingDomain.DateLayout),
		CheckOutDate: bk.Stay().CheckOut().Format(bookingDomain.DateLayout),
		Nights:       bk.Nights(),
		OccurredAt:   time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, contracts.TopicBookingEvents, contracts.BookingConfirmed,
		strconv.FormatInt(bk.RoomID(), 10), evt)
}
