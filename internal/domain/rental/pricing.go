package rental

import (
	"math"
	"time"

	"github.com/loca-mat/service-rental/internal/domain"
)

// Pricing rule factors. Discounts cumulate multiplicatively with each other
// and with the late-return surcharge.
const (
	durationDiscountFactor = 0.90 // rental longer than 7 days
	vipDiscountFactor      = 0.85 // VIP client
	lateSurchargeFactor    = 1.05 // client returned their previous contract late
	durationDiscountDays   = 7
)

// PriceQuote is the result of pricing a cart for a period.
type PriceQuote struct {
	DurationDays     int   `json:"duration_days"`
	BaseCents        int64 `json:"base_cents"`
	DurationDiscount bool  `json:"duration_discount"`
	VIPDiscount      bool  `json:"vip_discount"`
	LateSurcharge    bool  `json:"late_surcharge"`
	TotalCents       int64 `json:"total_cents"`
}

// PricingStrategy defines the interface for pricing a rental cart.
type PricingStrategy interface {
	// Quote returns the priced quote for the given cart and period.
	Quote(items []*Item, start, end time.Time, client *Client, priorLateReturn bool) (PriceQuote, error)
}

// StandardPricingStrategy implements the default rental pricing rules.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Quote computes the total price in cents for renting all items over the
// period.
//
// The duration is counted inclusively: start and end day both rent, so
// durationDays = (end - start) + 1. The >7-day discount therefore first
// applies to an 8-day span.
//
// Rules:
//   - base = sum of daily prices x duration days
//   - x0.90 iff duration > 7 days
//   - x0.85 iff the client is VIP
//   - x1.05 iff the client's previous contract came back late
//
// The factors are pure multiplications, so they are folded into a single
// product and rounded half-up to whole cents exactly once at the end;
// rounding between steps would drift.
func (s *StandardPricingStrategy) Quote(items []*Item, start, end time.Time, client *Client, priorLateReturn bool) (PriceQuote, error) {
	if len(items) == 0 {
		return PriceQuote{}, domain.NewValidationError("cart is empty")
	}
	if client == nil {
		return PriceQuote{}, domain.NewValidationError("client is required")
	}
	if end.Before(start) {
		return PriceQuote{}, domain.NewValidationError("end date must not be before start date")
	}

	var dailyTotalCents int64
	for _, item := range items {
		if item.DailyPriceCents() <= 0 {
			return PriceQuote{}, domain.NewValidationError("item daily price must be positive")
		}
		dailyTotalCents += item.DailyPriceCents()
	}

	days := DurationDays(start, end)
	baseCents := dailyTotalCents * int64(days)

	factor := 1.0
	quote := PriceQuote{
		DurationDays: days,
		BaseCents:    baseCents,
	}
	if days > durationDiscountDays {
		factor *= durationDiscountFactor
		quote.DurationDiscount = true
	}
	if client.IsVIP() {
		factor *= vipDiscountFactor
		quote.VIPDiscount = true
	}
	if priorLateReturn {
		factor *= lateSurchargeFactor
		quote.LateSurcharge = true
	}

	quote.TotalCents = roundHalfUp(float64(baseCents) * factor)
	return quote, nil
}

// DurationDays returns the inclusive number of rental days between two dates.
func DurationDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// roundHalfUp rounds to the nearest integer cent, ties away from zero.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
