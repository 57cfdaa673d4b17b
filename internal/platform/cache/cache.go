package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Key templates and lifetimes.
const (
	KeyHotelDetails = "hotel:details:%d"
	KeyIdemBooking  = "idem:booking:create:%s"
	TTLHotelDetails = 5 * time.Minute
	TTLIdempotency  = 24 * time.Hour
	// TTLIdempotencyPending bounds how long a claimed key blocks retries
	// when its holder dies before recording a result.
	TTLIdempotencyPending = 30 * time.Second
)

// Store is a byte-oriented key/value cache with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
