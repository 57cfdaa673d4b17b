package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_UnwrapsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("create booking: %w", NewRoomUnavailableError("room 42 is booked"))

	assert.Equal(t, KindRoomUnavailable, KindOf(err))
	assert.True(t, IsKind(err, KindRoomUnavailable))
	assert.False(t, IsKind(err, KindInvalidRequest))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendUnavailableError("database unreachable", cause)

	assert.Contains(t, err.Error(), "backend_unavailable")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestNewPaginatedResult(t *testing.T) {
	res := NewPaginatedResult([]int{1, 2}, 45, 2, 20)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Items, 2)

	empty := NewPaginatedResult[int](nil, 0, 1, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
