package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loca-mat/service-rental/internal/domain"
	"github.com/loca-mat/service-rental/internal/domain/rental"
)

func TestCreateItemAndListByStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewFleetService(store, zap.NewNop())

	created, err := svc.CreateItem(context.Background(), CreateItemInput{
		Category:        "scaffolding",
		Brand:           "Layher",
		Model:           "Allround",
		SerialNumber:    "SN-900",
		PurchaseDate:    day(-10),
		DailyPriceCents: 500,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, string(rental.ItemStatusAvailable), created.Status)

	rented := seedItem(t, store, 1000)
	require.NoError(t, store.UpdateItemStatus(context.Background(), rented, rental.ItemStatusRented))

	available := rental.ItemStatusAvailable
	items, err := svc.ListItems(context.Background(), &available)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
}

func TestChangeItemStatusEnforcesTransitions(t *testing.T) {
	store := newFakeStore()
	svc := NewFleetService(store, zap.NewNop())
	itemID := seedItem(t, store, 1000)

	dto, err := svc.ChangeItemStatus(context.Background(), itemID, rental.ItemStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, string(rental.ItemStatusMaintenance), dto.Status)

	// Maintenance cannot go straight to rented.
	_, err = svc.ChangeItemStatus(context.Background(), itemID, rental.ItemStatusRented)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, rental.ItemStatusMaintenance, store.items[itemID].Status())
}

func TestCompleteMaintenance(t *testing.T) {
	store := newFakeStore()
	svc := NewFleetService(store, zap.NewNop())
	itemID := seedItem(t, store, 1000)
	require.NoError(t, store.UpdateItemStatus(context.Background(), itemID, rental.ItemStatusMaintenance))

	require.NoError(t, svc.CompleteMaintenance(context.Background(), itemID))
	assert.Equal(t, rental.ItemStatusAvailable, store.items[itemID].Status())
}

func TestDeleteItemGuards(t *testing.T) {
	store := newFakeStore()
	fleetSvc := NewFleetService(store, zap.NewNop())
	bookingSvc, _ := newTestService(store)
	clientID := seedClient(t, store, false)
	rentedID := seedItem(t, store, 1000)
	freeID := seedItem(t, store, 1000)

	booking, err := bookingSvc.BookCart(context.Background(), clientID, []uint64{rentedID}, day(1), day(2))
	require.NoError(t, err)

	err = fleetSvc.DeleteItem(context.Background(), rentedID)
	assert.True(t, domain.IsKind(err, domain.KindValidation), "rented item cannot be deleted")

	// A returned item is still protected by its contract history.
	_, err = bookingSvc.CancelContract(context.Background(), booking.ContractID)
	require.NoError(t, err)
	err = fleetSvc.DeleteItem(context.Background(), rentedID)
	assert.True(t, domain.IsKind(err, domain.KindIntegrity))

	assert.NoError(t, fleetSvc.DeleteItem(context.Background(), freeID))
	_, err = fleetSvc.GetItem(context.Background(), freeID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
