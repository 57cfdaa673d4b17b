package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/application"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/kafka"
)

type fakeCanceler struct {
	calls  []int64
	reason string
	err    error
}

func (f *fakeCanceler) CancelBooking(_ context.Context, bookingID int64, reason string) (*application.BookingDTO, error) {
	f.calls = append(f.calls, bookingID)
	f.reason = reason
	if f.err != nil {
		return nil, f.err
	}
	return &application.BookingDTO{ID: bookingID, Status: "canceled"}, nil
}

func message(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-frontdesk", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: contracts.TopicBookingCommands, Value: raw}
}

func TestHandleMessage_CancelRequested(t *testing.T) {
	svc := &fakeCanceler{}
	c := &CommandConsumer{service: svc, logger: zap.NewNop()}

	err := c.handleMessage(context.Background(), message(t, contracts.BookingCancelRequested,
		contracts.CancelBookingCommand{BookingID: 12, Reason: "no-show", RequestedBy: "frontdesk"}))
	require.NoError(t, err)
	assert.Equal(t, []int64{12}, svc.calls)
	assert.Equal(t, "no-show", svc.reason)
}

func TestHandleMessage_RetryPolicy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"already canceled is dropped", domain.NewInvalidStateError("canceled", "canceled"), false},
		{"unknown booking is dropped", domain.NewNotFoundError("Booking", "12"), false},
		{"version conflict is retried", domain.NewConflictError("booking was modified"), true},
		{"backend outage is retried", domain.NewBackendUnavailableError("db down", errors.New("dial")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CommandConsumer{service: &fakeCanceler{err: tt.err}, logger: zap.NewNop()}
			err := c.handleMessage(context.Background(), message(t, contracts.BookingCancelRequested,
				contracts.CancelBookingCommand{BookingID: 12}))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandleMessage_IgnoresMalformedAndUnknown(t *testing.T) {
	svc := &fakeCanceler{}
	c := &CommandConsumer{service: svc, logger: zap.NewNop()}
	ctx := context.Background()

	assert.NoError(t, c.handleMessage(ctx, kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, c.handleMessage(ctx, message(t, "booking.rebook_requested", map[string]int{"booking_id": 1})))
	assert.NoError(t, c.handleMessage(ctx, message(t, contracts.BookingCancelRequested, "just a string")))
	assert.Empty(t, svc.calls)
}
