package availability

import (
	"context"
	"errors"
	"strings"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const getCalendarKey = "availability.calendar"

type GetCalendarQuery struct {
	ListingID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.Factory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.CalendarDTO, error) {
	if strings.TrimSpace(q.ListingID) == "" {
		return dto.CalendarDTO{}, errors.New("listing id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	l, err := unit.Listings().ByID(execCtx, domainlisting.ListingID(q.ListingID))
	if err != nil {
		return dto.CalendarDTO{}, err
	}
	calendar, err := unit.Availability().Calendar(execCtx, l.ID)
	if err != nil {
		return dto.CalendarDTO{}, err
	}
	return dto.MapCalendar(calendar, l.IsAlwaysAvailable), nil
}

var _ queries.Handler[GetCalendarQuery, dto.CalendarDTO] = (*GetCalendarHandler)(nil)
