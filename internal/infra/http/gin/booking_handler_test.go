package ginserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"homestay/internal/app/commands"
	domainavailability "homestay/internal/domain/availability"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
)

type stubCommandBus struct {
	result any
	err    error
}

func (b stubCommandBus) Dispatch(_ context.Context, _ commands.Command) (any, error) {
	return b.result, b.err
}

func createBookingRequestWith(t *testing.T, bus commands.Bus) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		setPrincipal(c, principal{ID: "guest-1", Roles: []string{"guest"}})
		c.Next()
	})
	router.POST("/bookings", BookingHandler{Commands: bus}.Create)

	body := `{"listing_id":"listing-1","start_date":"2026-05-10T00:00:00Z","end_date":"2026-05-13T00:00:00Z","guests":2}`
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateBookingStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"dates unavailable is a conflict", domainavailability.ErrDatesUnavailable, http.StatusConflict},
		{"unknown listing", domainlisting.ErrNotFound, http.StatusNotFound},
		{"capacity exceeded", domainbooking.ErrCapacityExceeded, http.StatusBadRequest},
		{"check-in in the past", domainbooking.ErrCheckInInPast, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := createBookingRequestWith(t, stubCommandBus{err: tc.err})
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bookings", BookingHandler{Commands: stubCommandBus{}}.Create)

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
