package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return Today().AddDate(0, 0, offset)
}

func testItem(id uint64, dailyCents int64) *Item {
	return ReconstructItem(id, "excavator", "Komatsu", "PC210", "SN-1000", day(-300), ItemStatusAvailable, dailyCents)
}

func testClient(id uint64, vip bool) *Client {
	return ReconstructClient(id, "Marie", "Durand", "marie@example.com", "", "", vip)
}

func TestQuoteStandardRental(t *testing.T) {
	pricing := NewStandardPricingStrategy()

	// 10 inclusive days at 20.00/day crosses the >7-day threshold.
	quote, err := pricing.Quote(
		[]*Item{testItem(1, 2000)},
		day(1), day(10),
		testClient(1, false),
		false,
	)
	require.NoError(t, err)

	assert.Equal(t, 10, quote.DurationDays)
	assert.Equal(t, int64(20000), quote.BaseCents)
	assert.True(t, quote.DurationDiscount)
	assert.False(t, quote.VIPDiscount)
	assert.False(t, quote.LateSurcharge)
	assert.Equal(t, int64(18000), quote.TotalCents)
}

func TestQuoteVIPWithLateSurcharge(t *testing.T) {
	pricing := NewStandardPricingStrategy()

	// 200.00 base x 0.90 x 0.85 x 1.05 = 160.65 exactly.
	quote, err := pricing.Quote(
		[]*Item{testItem(1, 2000)},
		day(1), day(10),
		testClient(1, true),
		true,
	)
	require.NoError(t, err)

	assert.True(t, quote.DurationDiscount)
	assert.True(t, quote.VIPDiscount)
	assert.True(t, quote.LateSurcharge)
	assert.Equal(t, int64(16065), quote.TotalCents)
}

func TestQuoteRoundsOnceAtTheEnd(t *testing.T) {
	pricing := NewStandardPricingStrategy()

	// 9.99 base x 0.85 x 1.05 = 8.916075 -> 8.92. Rounding after the VIP
	// step first (8.49) and then applying the surcharge would give 8.91.
	quote, err := pricing.Quote(
		[]*Item{testItem(1, 333)},
		day(1), day(3),
		testClient(1, true),
		true,
	)
	require.NoError(t, err)

	assert.Equal(t, int64(999), quote.BaseCents)
	assert.Equal(t, int64(892), quote.TotalCents)
}

func TestQuoteDurationDiscountThreshold(t *testing.T) {
	pricing := NewStandardPricingStrategy()
	items := []*Item{testItem(1, 1000)}
	client := testClient(1, false)

	// Exactly 7 inclusive days: no discount.
	quote, err := pricing.Quote(items, day(1), day(7), client, false)
	require.NoError(t, err)
	assert.Equal(t, 7, quote.DurationDays)
	assert.False(t, quote.DurationDiscount)
	assert.Equal(t, int64(7000), quote.TotalCents)

	// 8 inclusive days: discount kicks in.
	quote, err = pricing.Quote(items, day(1), day(8), client, false)
	require.NoError(t, err)
	assert.Equal(t, 8, quote.DurationDays)
	assert.True(t, quote.DurationDiscount)
	assert.Equal(t, int64(7200), quote.TotalCents)
}

func TestQuoteMultipleItems(t *testing.T) {
	pricing := NewStandardPricingStrategy()

	quote, err := pricing.Quote(
		[]*Item{testItem(1, 1500), testItem(2, 2500)},
		day(1), day(2),
		testClient(1, false),
		false,
	)
	require.NoError(t, err)

	assert.Equal(t, int64(8000), quote.BaseCents)
	assert.Equal(t, int64(8000), quote.TotalCents)
}

func TestQuoteRejectsBadInput(t *testing.T) {
	pricing := NewStandardPricingStrategy()
	items := []*Item{testItem(1, 1000)}
	client := testClient(1, false)

	_, err := pricing.Quote(nil, day(1), day(2), client, false)
	assert.Error(t, err)

	_, err = pricing.Quote(items, day(1), day(2), nil, false)
	assert.Error(t, err)

	_, err = pricing.Quote(items, day(5), day(2), client, false)
	assert.Error(t, err)
}

func TestDurationDaysIsInclusive(t *testing.T) {
	assert.Equal(t, 1, DurationDays(day(1), day(1)))
	assert.Equal(t, 2, DurationDays(day(1), day(2)))
	assert.Equal(t, 10, DurationDays(day(1), day(10)))
}
