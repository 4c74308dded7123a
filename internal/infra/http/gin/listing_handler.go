package ginserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	availabilityapp "homestay/internal/app/handlers/availability"
	listingapp "homestay/internal/app/handlers/listings"

	"homestay/internal/app/dto"
	"homestay/internal/app/queries"
	domainlisting "homestay/internal/domain/listing"
	domainrange "homestay/internal/domain/shared/daterange"
)

// ListingHandler wires catalog queries to HTTP.
type ListingHandler struct {
	Queries queries.Bus
}

// Search responds with a filtered collection of listings.
func (h ListingHandler) Search(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	start, startOK := parseFlexibleTime(c.Query("start_date"))
	end, endOK := parseFlexibleTime(c.Query("end_date"))
	if startOK != endOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date must be provided together"})
		return
	}
	query := listingapp.SearchListingsQuery{
		Place:         c.Query("place"),
		PriceMinCents: parseInt64(c.Query("price_min_cents")),
		PriceMaxCents: parseInt64(c.Query("price_max_cents")),
		MinRooms:      parseInt(c.Query("rooms")),
		MinGuests:     parseInt(c.Query("guests")),
		Limit:         parseIntWithDefault(c.Query("limit"), 24),
		Offset:        parseInt(c.Query("offset")),
	}
	if startOK && endOK {
		query.StartDate = start
		query.EndDate = end
	}
	result, err := queries.Ask[listingapp.SearchListingsQuery, dto.ListingPageDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domainrange.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := listingapp.GetListingQuery{ListingID: listingID}
	result, err := queries.Ask[listingapp.GetListingQuery, *dto.ListingDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Calendar(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := availabilityapp.GetCalendarQuery{ListingID: listingID}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.CalendarDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}

func parseFlexibleTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}
