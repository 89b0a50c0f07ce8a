package rental

import (
	"fmt"
	"time"

	"github.com/loca-mat/service-rental/internal/domain"
)

// ItemStatus represents the lifecycle state of a fleet item.
type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusRented      ItemStatus = "rented"
	ItemStatusMaintenance ItemStatus = "maintenance"
	ItemStatusScrapped    ItemStatus = "scrapped"
)

// validItemTransitions defines the state machine for item status changes.
// Scrapped is terminal. A rented item must be returned before it can be
// sent to maintenance or scrapped.
var validItemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusAvailable:   {ItemStatusRented, ItemStatusMaintenance, ItemStatusScrapped},
	ItemStatusRented:      {ItemStatusAvailable},
	ItemStatusMaintenance: {ItemStatusAvailable, ItemStatusScrapped},
	ItemStatusScrapped:    {},
}

// IsValid returns true if the status is a recognized item status.
func (s ItemStatus) IsValid() bool {
	_, exists := validItemTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	allowed, exists := validItemTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s ItemStatus) IsTerminal() bool {
	allowed, exists := validItemTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s ItemStatus) String() string {
	return string(s)
}

// ParseItemStatus converts a string to an ItemStatus, returning an error if invalid.
func ParseItemStatus(s string) (ItemStatus, error) {
	status := ItemStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid item status: %s", s)
	}
	return status, nil
}

// Item is a rentable piece of equipment in the fleet.
type Item struct {
	id              uint64
	category        string
	brand           string
	model           string
	serialNumber    string
	purchaseDate    time.Time
	status          ItemStatus
	dailyPriceCents int64
}

// NewItem creates a new available item with validated fields.
func NewItem(category, brand, model, serialNumber string, purchaseDate time.Time, dailyPriceCents int64) (*Item, error) {
	if category == "" {
		return nil, domain.NewValidationError("category is required")
	}
	if brand == "" {
		return nil, domain.NewValidationError("brand is required")
	}
	if model == "" {
		return nil, domain.NewValidationError("model is required")
	}
	if serialNumber == "" {
		return nil, domain.NewValidationError("serial number is required")
	}
	if err := ValidatePurchaseDate(purchaseDate); err != nil {
		return nil, err
	}
	if dailyPriceCents <= 0 {
		return nil, domain.NewValidationError("daily price must be positive")
	}

	return &Item{
		category:        category,
		brand:           brand,
		model:           model,
		serialNumber:    serialNumber,
		purchaseDate:    purchaseDate,
		status:          ItemStatusAvailable,
		dailyPriceCents: dailyPriceCents,
	}, nil
}

// ReconstructItem rebuilds an Item from persistence data (no validation).
func ReconstructItem(
	id uint64,
	category, brand, model, serialNumber string,
	purchaseDate time.Time,
	status ItemStatus,
	dailyPriceCents int64,
) *Item {
	return &Item{
		id:              id,
		category:        category,
		brand:           brand,
		model:           model,
		serialNumber:    serialNumber,
		purchaseDate:    purchaseDate,
		status:          status,
		dailyPriceCents: dailyPriceCents,
	}
}

// --- Getters ---

func (i *Item) ID() uint64              { return i.id }
func (i *Item) Category() string        { return i.category }
func (i *Item) Brand() string           { return i.brand }
func (i *Item) Model() string           { return i.model }
func (i *Item) SerialNumber() string    { return i.serialNumber }
func (i *Item) PurchaseDate() time.Time { return i.purchaseDate }
func (i *Item) Status() ItemStatus      { return i.status }
func (i *Item) DailyPriceCents() int64  { return i.dailyPriceCents }

// IsAvailable returns true if the item can be booked.
func (i *Item) IsAvailable() bool {
	return i.status == ItemStatusAvailable
}

// --- Behavior ---

// Rent transitions the item from available to rented.
func (i *Item) Rent() error {
	return i.transition(ItemStatusRented)
}

// Return transitions the item from rented back to available.
func (i *Item) Return() error {
	return i.transition(ItemStatusAvailable)
}

// ChangeStatus applies a fleet-admin status change (maintenance, scrap, back
// to available) through the transition table.
func (i *Item) ChangeStatus(target ItemStatus) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid item status: %s", target))
	}
	return i.transition(target)
}

func (i *Item) transition(target ItemStatus) error {
	if !i.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(i.status), string(target))
	}
	i.status = target
	return nil
}
