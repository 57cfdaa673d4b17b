package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// maxMoney is the largest price filter accepted, in whole currency units.
const maxMoney = 1_000_000

// parseMoney converts a decimal amount such as "150" or "99.50" to cents.
// An empty value yields zero.
func parseMoney(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, domain.NewValidationError(fmt.Sprintf("%s must be a non-negative amount", field))
	}
	if v > maxMoney {
		return 0, domain.NewValidationError(fmt.Sprintf("%s must not exceed %d", field, maxMoney))
	}
	return int64(math.Round(v * 100)), nil
}
