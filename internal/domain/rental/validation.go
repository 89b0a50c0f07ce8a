package rental

import (
	"time"

	"github.com/loca-mat/service-rental/internal/domain"
)

// UnavailableItems returns the ids of cart items that cannot be booked.
// An empty result means every item in the cart is available.
func UnavailableItems(items []*Item) []uint64 {
	var unavailable []uint64
	for _, item := range items {
		if !item.IsAvailable() {
			unavailable = append(unavailable, item.ID())
		}
	}
	return unavailable
}

// ValidateRentalDates checks the rental period: the end date must not be
// before the start date, and the rental cannot start in the past.
func ValidateRentalDates(start, end time.Time) error {
	if end.Before(start) {
		return domain.NewValidationError("end date must not be before start date")
	}
	if start.Before(Today()) {
		return domain.NewValidationError("start date cannot be in the past")
	}
	return nil
}

// ValidatePurchaseDate checks that an item's purchase date is not in the future.
func ValidatePurchaseDate(d time.Time) error {
	if d.After(Today()) {
		return domain.NewValidationError("purchase date cannot be in the future")
	}
	return nil
}

// Today returns the current UTC date at midnight, the granularity all rental
// dates are compared at.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
