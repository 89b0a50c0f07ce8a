package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/loca-mat/service-rental/internal/domain"
	"github.com/loca-mat/service-rental/internal/domain/rental"
)

// ItemDTO is the response representation of a fleet item.
type ItemDTO struct {
	ID              uint64    `json:"id"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	SerialNumber    string    `json:"serial_number"`
	PurchaseDate    time.Time `json:"purchase_date"`
	Status          string    `json:"status"`
	DailyPriceCents int64     `json:"daily_price_cents"`
}

// CreateItemInput carries the fields needed to register a fleet item.
type CreateItemInput struct {
	Category        string
	Brand           string
	Model           string
	SerialNumber    string
	PurchaseDate    time.Time
	DailyPriceCents int64
}

// FleetService manages the equipment fleet: registration, status changes,
// and removal. Booking-driven status flips (available/rented) belong to the
// BookingService; this service handles the admin-driven ones.
type FleetService struct {
	store  rental.InventoryStore
	logger *zap.Logger
}

// NewFleetService creates a new FleetService.
func NewFleetService(store rental.InventoryStore, logger *zap.Logger) *FleetService {
	return &FleetService{store: store, logger: logger}
}

// CreateItem registers a new item in the fleet, starting as available.
func (s *FleetService) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	item, err := rental.NewItem(
		input.Category, input.Brand, input.Model, input.SerialNumber,
		input.PurchaseDate,
		input.DailyPriceCents,
	)
	if err != nil {
		return nil, err
	}

	id, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		zap.Uint64("item_id", id),
		zap.String("category", input.Category),
		zap.String("serial_number", input.SerialNumber),
	)
	dto := toItemDTO(rental.ReconstructItem(
		id,
		item.Category(), item.Brand(), item.Model(), item.SerialNumber(),
		item.PurchaseDate(),
		item.Status(),
		item.DailyPriceCents(),
	))
	return &dto, nil
}

// GetItem retrieves a single item.
func (s *FleetService) GetItem(ctx context.Context, itemID uint64) (*ItemDTO, error) {
	items, err := s.store.FetchItems(ctx, []uint64{itemID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewNotFoundError("item", fmt.Sprint(itemID))
	}
	dto := toItemDTO(items[0])
	return &dto, nil
}

// ListItems retrieves the fleet, optionally filtered by status.
func (s *FleetService) ListItems(ctx context.Context, status *rental.ItemStatus) ([]ItemDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid item status: %s", *status))
	}
	items, err := s.store.ListItems(ctx, status)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(item)
	}
	return dtos, nil
}

// ChangeItemStatus applies an admin status change (to maintenance, back to
// available, or scrapped) under a row lock so it cannot race a booking.
func (s *FleetService) ChangeItemStatus(ctx context.Context, itemID uint64, target rental.ItemStatus) (*ItemDTO, error) {
	var dto *ItemDTO
	err := s.store.WithTx(ctx, func(tx rental.InventoryStore) error {
		items, err := tx.FetchItemsForUpdate(ctx, []uint64{itemID})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.NewNotFoundError("item", fmt.Sprint(itemID))
		}
		item := items[0]
		if err := item.ChangeStatus(target); err != nil {
			return err
		}
		if err := tx.UpdateItemStatus(ctx, item.ID(), item.Status()); err != nil {
			return err
		}
		d := toItemDTO(item)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item status changed",
		zap.Uint64("item_id", itemID),
		zap.String("status", string(target)),
	)
	return dto, nil
}

// CompleteMaintenance moves an item from maintenance back to available. It
// is invoked by the fleet-events consumer when the workshop reports done.
func (s *FleetService) CompleteMaintenance(ctx context.Context, itemID uint64) error {
	_, err := s.ChangeItemStatus(ctx, itemID, rental.ItemStatusAvailable)
	return err
}

// DeleteItem removes an item from the fleet. Items referenced by any
// contract are protected by a RESTRICT foreign key; the resulting integrity
// error tells the caller to scrap the item instead.
func (s *FleetService) DeleteItem(ctx context.Context, itemID uint64) error {
	err := s.store.WithTx(ctx, func(tx rental.InventoryStore) error {
		items, err := tx.FetchItemsForUpdate(ctx, []uint64{itemID})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.NewNotFoundError("item", fmt.Sprint(itemID))
		}
		switch items[0].Status() {
		case rental.ItemStatusRented:
			return domain.NewValidationError(fmt.Sprintf("item %d is rented and cannot be deleted", itemID))
		case rental.ItemStatusMaintenance:
			return domain.NewValidationError(fmt.Sprintf("item %d is in maintenance and cannot be deleted", itemID))
		}
		return tx.DeleteItem(ctx, itemID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("item deleted", zap.Uint64("item_id", itemID))
	return nil
}

func toItemDTO(item *rental.Item) ItemDTO {
	return ItemDTO{
		ID:              item.ID(),
		Category:        item.Category(),
		Brand:           item.Brand(),
		Model:           item.Model(),
		SerialNumber:    item.SerialNumber(),
		PurchaseDate:    item.PurchaseDate(),
		Status:          string(item.Status()),
		DailyPriceCents: item.DailyPriceCents(),
	}
}
