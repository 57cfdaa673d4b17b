package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	cases := map[domain.ErrorKind]int{
		domain.KindInvalidRequest:     http.StatusBadRequest,
		domain.KindNotFound:           http.StatusNotFound,
		domain.KindRoomUnavailable:    http.StatusConflict,
		domain.KindConflict:           http.StatusConflict,
		domain.KindInvalidState:       http.StatusConflict,
		domain.KindBackendUnavailable: http.StatusServiceUnavailable,
		domain.KindTransactionFailure: http.StatusInternalServerError,
		domain.KindInternal:           http.StatusInternalServerError,
		domain.KindUnauthorized:       http.StatusUnauthorized,
		domain.KindForbidden:          http.StatusForbidden,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func TestError_WritesTypedPayload(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, fmt.Errorf("create: %w", domain.NewRoomUnavailableError("room 42 is booked")))

	require.Equal(t, http.StatusConflict, w.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "room_unavailable", body.Error.Kind)
	assert.Equal(t, "room 42 is booked", body.Error.Message)
}

func TestError_HidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestPaginated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Paginated(c, []int{1, 2}, 5, 1, 2)

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Meta)
	assert.Equal(t, 3, body.Meta.TotalPages)
}
