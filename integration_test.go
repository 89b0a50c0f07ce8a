//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loca-mat/service-rental/internal/domain"
	rentalEvents "github.com/loca-mat/service-rental/internal/events"
)

func rentalDay(offset int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, offset)
}

// TestConcurrentBooking_SingleWinner races several bookings for the same
// item and asserts the row locks let exactly one through.
func TestConcurrentBooking_SingleWinner(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	clientID, itemIDs := seedFleet(t, stack, 1, 2000)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = stack.Booking.BookCart(context.Background(), clientID, itemIDs, rentalDay(1), rentalDay(3))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		// Losers fail the pre-check (validation) or the locked re-check
		// (conflict), never anything else.
		kind := domain.KindOf(err)
		assert.Contains(t, []domain.ErrorKind{domain.KindValidation, domain.KindConflict}, kind, "unexpected error: %v", err)
	}
	assert.Equal(t, 1, winners, "exactly one booking must win the race")

	contracts, _, err := stack.Store.ListContracts(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, contracts, 1)
}

// TestBooking_PublishesContractCreated verifies the post-commit event on
// contract.events carries the priced total.
func TestBooking_PublishesContractCreated(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	clientID, itemIDs := seedFleet(t, stack, 1, 2000)

	// 10 inclusive days at 20.00/day with the >7-day discount.
	result, err := stack.Booking.BookCart(context.Background(), clientID, itemIDs, rentalDay(1), rentalDay(10))
	require.NoError(t, err)
	assert.Equal(t, int64(18000), result.Quote.TotalCents)

	ce := consumeOneEvent(t, infra.KafkaBrokers, rentalEvents.TopicContractEvents,
		rentalEvents.ContractCreated, 15*time.Second)

	var created rentalEvents.ContractCreatedEvent
	require.NoError(t, ce.ParseData(&created))
	assert.Equal(t, result.ContractID, created.ContractID)
	assert.Equal(t, clientID, created.ClientID)
	assert.Equal(t, int64(18000), created.TotalPriceCents)
}

// TestMaintenanceCompleted_ReturnsItemToFleet verifies that a maintenance
// completed event on fleet.events moves the item back to available.
func TestMaintenanceCompleted_ReturnsItemToFleet(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	_, itemIDs := seedFleet(t, stack, 1, 2000)
	itemID := itemIDs[0]

	_, err := stack.Fleet.ChangeItemStatus(context.Background(), itemID, "maintenance")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, rentalEvents.TopicFleetEvents,
		"service-workshop", rentalEvents.FleetMaintenanceCompleted,
		rentalEvents.MaintenanceCompletedEvent{ItemID: itemID, OccurredAt: time.Now().UTC()})

	waitForItemStatus(t, infra.DB, itemID, "available", 15*time.Second)
}

// TestDeleteItem_WithContractHistoryIsRejected verifies the RESTRICT foreign
// key keeps items with rental history in the fleet.
func TestDeleteItem_WithContractHistoryIsRejected(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	clientID, itemIDs := seedFleet(t, stack, 1, 2000)
	itemID := itemIDs[0]

	booking, err := stack.Booking.BookCart(context.Background(), clientID, itemIDs, rentalDay(1), rentalDay(3))
	require.NoError(t, err)

	// Even after cancellation the link rows keep the item's history.
	_, err = stack.Booking.CancelContract(context.Background(), booking.ContractID)
	require.NoError(t, err)

	err = stack.Fleet.DeleteItem(context.Background(), itemID)
	assert.Equal(t, domain.KindIntegrity, domain.KindOf(err))
}

// TestReturnFlow_CompletesContract walks a two-item contract through partial
// and final returns against the real store.
func TestReturnFlow_CompletesContract(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	clientID, itemIDs := seedFleet(t, stack, 2, 2000)

	booking, err := stack.Booking.BookCart(context.Background(), clientID, itemIDs, rentalDay(0), rentalDay(3))
	require.NoError(t, err)

	result, err := stack.Booking.ReturnItem(context.Background(), booking.ContractID, itemIDs[0], rentalDay(1))
	require.NoError(t, err)
	assert.False(t, result.ContractCompleted)

	result, err = stack.Booking.ReturnItem(context.Background(), booking.ContractID, itemIDs[1], rentalDay(5))
	require.NoError(t, err)
	assert.True(t, result.ContractCompleted)
	assert.True(t, result.Late)

	contract, err := stack.Booking.GetContract(context.Background(), booking.ContractID)
	require.NoError(t, err)
	assert.Equal(t, "completed", contract.Status)
	require.NotNil(t, contract.ActualReturnDate)

	// The late return surcharges this client's next booking.
	next, err := stack.Booking.BookCart(context.Background(), clientID, itemIDs[:1], rentalDay(1), rentalDay(2))
	require.NoError(t, err)
	assert.True(t, next.Quote.LateSurcharge)
}
