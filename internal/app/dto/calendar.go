package dto

import (
	"time"

	"homestay/internal/domain/availability"
)

type BlockDTO struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type CalendarDTO struct {
	ListingID         string     `json:"listing_id"`
	IsAlwaysAvailable bool       `json:"is_always_available"`
	Blocks            []BlockDTO `json:"blocks"`
}

func MapCalendar(c *availability.BlackoutCalendar, alwaysAvailable bool) CalendarDTO {
	blocks := make([]BlockDTO, 0, len(c.Blocks))
	for _, block := range c.Blocks {
		blocks = append(blocks, BlockDTO{
			StartDate: block.Range.Start,
			EndDate:   block.Range.End,
			Reason:    string(block.Reason),
			CreatedAt: block.CreatedAt,
		})
	}
	return CalendarDTO{
		ListingID:         string(c.ListingID),
		IsAlwaysAvailable: alwaysAvailable,
		Blocks:            blocks,
	}
}
