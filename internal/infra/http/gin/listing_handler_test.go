package ginserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/dto"
	listingapp "homestay/internal/app/handlers/listings"
	"homestay/internal/app/queries"
)

type recordingQueryBus struct {
	last   queries.Query
	result any
	err    error
}

func (b *recordingQueryBus) Ask(_ context.Context, q queries.Query) (any, error) {
	b.last = q
	return b.result, b.err
}

func searchRequest(t *testing.T, bus queries.Bus, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/listings", ListingHandler{Queries: bus}.Search)

	req := httptest.NewRequest(http.MethodGet, "/listings?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSearchParsesFilters(t *testing.T) {
	bus := &recordingQueryBus{result: dto.ListingPageDTO{Items: []dto.ListingDTO{}}}

	rec := searchRequest(t, bus, "place=goa&price_min_cents=1000&price_max_cents=9000&rooms=2&guests=4&start_date=2026-05-10&end_date=2026-05-14&limit=10&offset=20")
	assert.Equal(t, http.StatusOK, rec.Code)

	q, ok := bus.last.(listingapp.SearchListingsQuery)
	require.True(t, ok)
	assert.Equal(t, "goa", q.Place)
	assert.Equal(t, int64(1000), q.PriceMinCents)
	assert.Equal(t, int64(9000), q.PriceMaxCents)
	assert.Equal(t, 2, q.MinRooms)
	assert.Equal(t, 4, q.MinGuests)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), q.StartDate)
	assert.Equal(t, time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC), q.EndDate)
}

func TestSearchRequiresBothDatesOrNeither(t *testing.T) {
	bus := &recordingQueryBus{result: dto.ListingPageDTO{}}

	rec := searchRequest(t, bus, "start_date=2026-05-10")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, bus.last, "query must not reach the bus")

	rec = searchRequest(t, bus, "end_date=2026-05-14")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = searchRequest(t, bus, "place=goa")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchAcceptsRFC3339Dates(t *testing.T) {
	bus := &recordingQueryBus{result: dto.ListingPageDTO{}}

	rec := searchRequest(t, bus, "start_date=2026-05-10T00%3A00%3A00Z&end_date=2026-05-14T00%3A00%3A00Z")
	assert.Equal(t, http.StatusOK, rec.Code)

	q, ok := bus.last.(listingapp.SearchListingsQuery)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), q.StartDate)
}
