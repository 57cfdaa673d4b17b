package booking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// StayPeriod is a half-open calendar-date interval [checkIn, checkOut).
// The checkout day may equal another stay's check-in day without conflict.
type StayPeriod struct {
	checkIn  time.Time
	checkOut time.Time
}

// NewStayPeriod truncates both bounds to calendar dates and rejects empty or reversed stays.
func NewStayPeriod(checkIn, checkOut time.Time) (StayPeriod, error) {
	in, out := ToDate(checkIn), ToDate(checkOut)
	if in.IsZero() || out.IsZero() {
		return StayPeriod{}, domain.NewValidationError("check-in and check-out dates are required")
	}
	if !in.Before(out) {
		return StayPeriod{}, domain.NewValidationError(
			fmt.Sprintf("check-out date %s must be after check-in date %s", out.Format(DateLayout), in.Format(DateLayout)),
		)
	}
	return StayPeriod{checkIn: in, checkOut: out}, nil
}

// ParseStayPeriod parses two YYYY-MM-DD dates into a StayPeriod.
func ParseStayPeriod(checkIn, checkOut string) (StayPeriod, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return StayPeriod{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return StayPeriod{}, err
	}
	return NewStayPeriod(in, out)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

// ToDate drops the time-of-day and zone, keeping the calendar date as seen in t's location.
func ToDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckIn returns the first night of the stay.
func (p StayPeriod) CheckIn() time.Time { return p.checkIn }

// CheckOut returns the departure date (exclusive).
func (p StayPeriod) CheckOut() time.Time { return p.checkOut }

// Overlaps reports whether p and o share at least one night: a1 < b2 && b1 < a2.
func (p StayPeriod) Overlaps(o StayPeriod) bool {
	return p.checkIn.Before(o.checkOut) && o.checkIn.Before(p.checkOut)
}

// Nights returns ceil(checkOut - checkIn) in days.
func (p StayPeriod) Nights() int {
	return int(math.Ceil(p.checkOut.Sub(p.checkIn).Hours() / 24))
}

// String formats the stay as [checkIn, checkOut).
func (p StayPeriod) String() string {
	return fmt.Sprintf("[%s, %s)", p.checkIn.Format(DateLayout), p.checkOut.Format(DateLayout))
}
