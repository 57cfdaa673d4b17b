package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/application"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/response"
)

// IdempotencyKeyHeader lets clients retry a create safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	reservations *application.ReservationService
	bookings     *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(reservations *application.ReservationService, bookings *application.BookingService) *BookingHandler {
	return &BookingHandler{reservations: reservations, bookings: bookings}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
	r.GET("/api/v1/customers/:id/bookings", h.ListCustomerBookings)
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		response.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	result, err := h.reservations.CreateBookingOnce(c.Request.Context(), key, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Replayed {
		c.JSON(http.StatusOK, response.Envelope{Success: true, Data: result})
		return
	}
	response.Created(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.bookings.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var body application.CancelBookingRequest
	_ = c.ShouldBindJSON(&body)

	result, err := h.bookings.CancelBooking(c.Request.Context(), bookingID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListCustomerBookings handles GET /api/v1/customers/:id/bookings.
func (h *BookingHandler) ListCustomerBookings(c *gin.Context) {
	customerID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	page, limit := parsePagination(c)
	result, err := h.bookings.ListCustomerBookings(c.Request.Context(), customerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}
