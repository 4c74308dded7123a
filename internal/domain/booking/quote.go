package booking

import (
	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

// Quote checks the guest count against the listing capacity and prices
// the stay: nights x nightly rate. The capacity check is independent of
// date validity and runs first.
func Quote(l *listing.Listing, stay daterange.DateRange, guests int) (money.Money, error) {
	if guests <= 0 {
		return money.Money{}, ErrInvalidGuests
	}
	if guests > l.Capacity {
		return money.Money{}, ErrCapacityExceeded
	}
	if err := stay.Validate(); err != nil {
		return money.Money{}, err
	}
	return l.PricePerNight.Multiply(int64(stay.Nights())), nil
}
