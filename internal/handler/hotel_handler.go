package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/application"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/domain/hotel"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/response"
)

// HotelHandler serves inventory and availability queries.
type HotelHandler struct {
	hotels *application.HotelService
	oracle *application.AvailabilityService
}

// NewHotelHandler creates a new HotelHandler.
func NewHotelHandler(hotels *application.HotelService, oracle *application.AvailabilityService) *HotelHandler {
	return &HotelHandler{hotels: hotels, oracle: oracle}
}

// RegisterRoutes registers the public hotel and room routes.
func (h *HotelHandler) RegisterRoutes(r *gin.RouterGroup) {
	hotels := r.Group("/api/v1/hotels")
	{
		hotels.GET("/search", h.Search)
		hotels.GET("/:id", h.GetHotel)
	}
	r.GET("/api/v1/rooms/:id/availability", h.RoomAvailability)
}

// Search handles GET /api/v1/hotels/search.
func (h *HotelHandler) Search(c *gin.Context) {
	stay, err := bookingDomain.ParseStayPeriod(c.Query("checkIn"), c.Query("checkOut"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var minType hotel.RoomType
	if raw := c.Query("roomType"); raw != "" {
		if minType, err = hotel.ParseRoomType(raw); err != nil {
			response.Error(c, err)
			return
		}
	}
	priceMin, err := parseMoney("priceMin", c.Query("priceMin"))
	if err != nil {
		response.Error(c, err)
		return
	}
	priceMax, err := parseMoney("priceMax", c.Query("priceMax"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sortBy, err := application.ParseSortKey(c.Query("sortBy"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sortOrder, err := application.ParseSortOrder(c.Query("sortOrder"))
	if err != nil {
		response.Error(c, err)
		return
	}

	criteria := application.SearchCriteria{
		Location:      c.Query("location"),
		Stay:          stay,
		MinRoomType:   minType,
		PriceMinCents: priceMin,
		PriceMaxCents: priceMax,
		SortBy:        sortBy,
		SortOrder:     sortOrder,
	}
	hotels, err := h.oracle.SearchAvailability(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, application.SearchResultDTO{
		Hotels: hotels,
		Count:  len(hotels),
		SearchCriteria: application.SearchCriteriaDTO{
			Location:      criteria.Location,
			CheckInDate:   stay.CheckIn().Format(bookingDomain.DateLayout),
			CheckOutDate:  stay.CheckOut().Format(bookingDomain.DateLayout),
			MinRoomType:   minType.String(),
			PriceMinCents: priceMin,
			PriceMaxCents: priceMax,
			SortBy:        string(sortBy),
			SortOrder:     string(sortOrder),
		},
	})
}

// GetHotel handles GET /api/v1/hotels/:id.
func (h *HotelHandler) GetHotel(c *gin.Context) {
	hotelID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	details, err := h.hotels.GetHotelDetails(c.Request.Context(), hotelID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, details)
}

// RoomAvailability handles GET /api/v1/rooms/:id/availability.
func (h *HotelHandler) RoomAvailability(c *gin.Context) {
	roomID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	stay, err := bookingDomain.ParseStayPeriod(c.Query("checkIn"), c.Query("checkOut"))
	if err != nil {
		response.Error(c, err)
		return
	}

	available, err := h.oracle.IsAvailable(c.Request.Context(), roomID, stay)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, application.AvailabilityDTO{
		RoomID:       roomID,
		CheckInDate:  stay.CheckIn().Format(bookingDomain.DateLayout),
		CheckOutDate: stay.CheckOut().Format(bookingDomain.DateLayout),
		Available:    available,
	})
}
