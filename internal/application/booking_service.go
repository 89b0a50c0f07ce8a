package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/loca-mat/service-rental/internal/domain"
	"github.com/loca-mat/service-rental/internal/domain/rental"
	"github.com/loca-mat/service-rental/internal/events"
	"github.com/loca-mat/service-rental/internal/platform/kafka"
)

const eventSource = "service-rental"

// EventPublisher publishes CloudEvents; satisfied by the Kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingResultDTO is the response representation of a successful booking.
type BookingResultDTO struct {
	ContractID     uint64            `json:"contract_id"`
	ContractNumber string            `json:"contract_number"`
	ClientID       uint64            `json:"client_id"`
	ItemIDs        []uint64          `json:"item_ids"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	Quote          rental.PriceQuote `json:"quote"`
}

// ReturnResultDTO is the response representation of an item return.
type ReturnResultDTO struct {
	ContractID        uint64    `json:"contract_id"`
	ItemID            uint64    `json:"item_id"`
	ReturnDate        time.Time `json:"return_date"`
	Late              bool      `json:"late"`
	ContractCompleted bool      `json:"contract_completed"`
}

// ContractDTO is the response representation of a contract.
type ContractDTO struct {
	ID               uint64     `json:"id"`
	Number           string     `json:"number"`
	ClientID         uint64     `json:"client_id"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty"`
	TotalPriceCents  int64      `json:"total_price_cents"`
	Status           string     `json:"status"`
	CreatedDate      time.Time  `json:"created_date"`
	Items            []ItemDTO  `json:"items,omitempty"`
}

// BookingService orchestrates booking, return, and cancellation of rental
// contracts. Each operation runs in a single store transaction; correctness
// under concurrent callers relies on row locks taken in ascending item-id
// order and on re-validating every locked row before mutating it.
type BookingService struct {
	store    rental.InventoryStore
	pricing  rental.PricingStrategy
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	store rental.InventoryStore,
	pricing rental.PricingStrategy,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:    store,
		pricing:  pricing,
		producer: producer,
		logger:   logger,
	}
}

// BookCart atomically books the cart for the client over [start, end].
//
// Flow: optimistic pre-check without locks (fast failure only), then one
// transaction that locks the items in ascending id order, re-checks their
// status under lock, prices the cart from the locked rows, flips each item
// to rented, and creates the contract with its links. Any failure rolls the
// whole transaction back; on success exactly the requested items are rented
// and linked to one new contract.
func (s *BookingService) BookCart(ctx context.Context, clientID uint64, itemIDs []uint64, start, end time.Time) (*BookingResultDTO, error) {
	if len(itemIDs) == 0 {
		return nil, domain.NewValidationError("cart is empty")
	}
	if err := rental.ValidateRentalDates(start, end); err != nil {
		return nil, err
	}
	itemIDs = sortedUnique(itemIDs)

	// Pre-check without locks. This only exists for fast failure: a
	// concurrent booking can still claim an item between here and the
	// locked phase, which the re-check below catches.
	if _, err := s.store.FetchClient(ctx, clientID); err != nil {
		return nil, err
	}
	items, err := s.store.FetchItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(itemIDs, items); len(missing) > 0 {
		return nil, domain.NewNotFoundError("items", fmt.Sprint(missing))
	}
	if unavailable := rental.UnavailableItems(items); len(unavailable) > 0 {
		return nil, domain.NewUnavailableItemsError(unavailable)
	}

	var result *BookingResultDTO
	err = s.store.WithTx(ctx, func(tx rental.InventoryStore) error {
		locked, err := tx.FetchItemsForUpdate(ctx, itemIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(itemIDs, locked); len(missing) > 0 {
			return domain.NewItemConflictError(missing)
		}
		// Re-check under lock: an item that was available in the
		// pre-check may have been claimed by a booking that committed
		// while we waited for the locks.
		if unavailable := rental.UnavailableItems(locked); len(unavailable) > 0 {
			return domain.NewItemConflictError(unavailable)
		}

		client, err := tx.FetchClient(ctx, clientID)
		if err != nil {
			return err
		}
		priorLate, err := tx.HasRecentLateReturn(ctx, clientID)
		if err != nil {
			return err
		}

		// Price from the locked rows, never from the pre-check reads.
		quote, err := s.pricing.Quote(locked, start, end, client, priorLate)
		if err != nil {
			return err
		}

		for _, item := range locked {
			if err := item.Rent(); err != nil {
				return err
			}
			if err := tx.UpdateItemStatus(ctx, item.ID(), item.Status()); err != nil {
				return err
			}
		}

		contract, err := rental.NewContract(clientID, start, end, quote.TotalCents)
		if err != nil {
			return err
		}
		contractID, err := tx.CreateContract(ctx, contract)
		if err != nil {
			return err
		}
		if err := tx.CreateLinks(ctx, contractID, itemIDs); err != nil {
			return err
		}

		result = &BookingResultDTO{
			ContractID:     contractID,
			ContractNumber: contract.Number(),
			ClientID:       clientID,
			ItemIDs:        itemIDs,
			StartDate:      start,
			EndDate:        end,
			Quote:          quote,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("booking failed",
			zap.Uint64("client_id", clientID),
			zap.Uint64s("item_ids", itemIDs),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("contract created",
		zap.Uint64("contract_id", result.ContractID),
		zap.String("contract_number", result.ContractNumber),
		zap.Uint64("client_id", clientID),
		zap.Int64("total_price_cents", result.Quote.TotalCents),
	)
	s.publishEvent(ctx, events.TopicContractEvents, events.ContractCreated, events.ContractCreatedEvent{
		ContractID:      result.ContractID,
		ContractNumber:  result.ContractNumber,
		ClientID:        clientID,
		ItemIDs:         itemIDs,
		StartDate:       start,
		EndDate:         end,
		TotalPriceCents: result.Quote.TotalCents,
		OccurredAt:      time.Now().UTC(),
	})
	return result, nil
}

// ReturnItem returns one rented item of a contract. When the last item of
// the contract comes back, the contract completes and records its actual
// return date; a return date past the agreed end date marks the contract
// late, which surcharges the client's next booking.
func (s *BookingService) ReturnItem(ctx context.Context, contractID, itemID uint64, returnDate time.Time) (*ReturnResultDTO, error) {
	var result *ReturnResultDTO
	err := s.store.WithTx(ctx, func(tx rental.InventoryStore) error {
		// Lock order is fixed across all contract operations: contract
		// row first, then item rows.
		contract, err := tx.FetchContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if !contract.IsActive() {
			return domain.NewValidationError(fmt.Sprintf("contract %d is %s", contractID, contract.Status()))
		}

		linked, err := tx.LinkExists(ctx, contractID, itemID)
		if err != nil {
			return err
		}
		if !linked {
			return domain.NewValidationError(fmt.Sprintf("item %d is not part of contract %d", itemID, contractID))
		}

		items, err := tx.FetchItemsForUpdate(ctx, []uint64{itemID})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.NewNotFoundError("item", fmt.Sprint(itemID))
		}
		item := items[0]
		if item.Status() != rental.ItemStatusRented {
			return domain.NewValidationError(fmt.Sprintf("item %d is not rented", itemID))
		}

		if err := item.Return(); err != nil {
			return err
		}
		if err := tx.UpdateItemStatus(ctx, item.ID(), item.Status()); err != nil {
			return err
		}

		remaining, err := tx.FetchContractItems(ctx, contractID)
		if err != nil {
			return err
		}
		completed := false
		if countRented(remaining) == 0 {
			if err := contract.Complete(returnDate); err != nil {
				return err
			}
			if err := tx.UpdateContract(ctx, contract); err != nil {
				return err
			}
			completed = true
		}

		result = &ReturnResultDTO{
			ContractID:        contractID,
			ItemID:            itemID,
			ReturnDate:        returnDate,
			Late:              returnDate.After(contract.EndDate()),
			ContractCompleted: completed,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("return failed",
			zap.Uint64("contract_id", contractID),
			zap.Uint64("item_id", itemID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("item returned",
		zap.Uint64("contract_id", contractID),
		zap.Uint64("item_id", itemID),
		zap.Bool("late", result.Late),
		zap.Bool("contract_completed", result.ContractCompleted),
	)
	s.publishEvent(ctx, events.TopicContractEvents, events.ContractItemReturned, events.ContractItemReturnedEvent{
		ContractID: contractID,
		ItemID:     itemID,
		ReturnDate: returnDate,
		Late:       result.Late,
		OccurredAt: time.Now().UTC(),
	})
	if result.ContractCompleted {
		if contract, err := s.store.FetchContract(ctx, contractID); err == nil {
			s.publishEvent(ctx, events.TopicContractEvents, events.ContractCompleted, events.ContractCompletedEvent{
				ContractID:       contract.ID(),
				ContractNumber:   contract.Number(),
				ClientID:         contract.ClientID(),
				ActualReturnDate: returnDate,
				Late:             result.Late,
				OccurredAt:       time.Now().UTC(),
			})
		}
	}
	return result, nil
}

// CancelContract voids a contract before its rental period begins, freeing
// its items.
func (s *BookingService) CancelContract(ctx context.Context, contractID uint64) (*ContractDTO, error) {
	var dto *ContractDTO
	err := s.store.WithTx(ctx, func(tx rental.InventoryStore) error {
		contract, err := tx.FetchContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if err := contract.Cancel(rental.Today()); err != nil {
			return err
		}

		items, err := tx.FetchContractItems(ctx, contractID)
		if err != nil {
			return err
		}
		ids := make([]uint64, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID())
		}
		locked, err := tx.FetchItemsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		for _, item := range locked {
			if item.Status() != rental.ItemStatusRented {
				continue
			}
			if err := item.Return(); err != nil {
				return err
			}
			if err := tx.UpdateItemStatus(ctx, item.ID(), item.Status()); err != nil {
				return err
			}
		}

		if err := tx.UpdateContract(ctx, contract); err != nil {
			return err
		}
		d := toContractDTO(contract, locked)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract cancelled", zap.Uint64("contract_id", contractID))
	s.publishEvent(ctx, events.TopicContractEvents, events.ContractCancelled, events.ContractCancelledEvent{
		ContractID: contractID,
		ClientID:   dto.ClientID,
		OccurredAt: time.Now().UTC(),
	})
	return dto, nil
}

// GetContract retrieves a single contract with its items.
func (s *BookingService) GetContract(ctx context.Context, contractID uint64) (*ContractDTO, error) {
	contract, err := s.store.FetchContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.FetchContractItems(ctx, contractID)
	if err != nil {
		return nil, err
	}
	dto := toContractDTO(contract, items)
	return &dto, nil
}

// ListContracts retrieves contracts with pagination, newest first.
func (s *BookingService) ListContracts(ctx context.Context, page, limit int) ([]ContractDTO, int64, error) {
	contracts, total, err := s.store.ListContracts(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c, nil)
	}
	return dtos, total, nil
}

// ListActiveContracts retrieves contracts that still hold items.
func (s *BookingService) ListActiveContracts(ctx context.Context) ([]ContractDTO, error) {
	contracts, err := s.store.ListActiveContracts(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c, nil)
	}
	return dtos, nil
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toContractDTO(c *rental.Contract, items []*rental.Item) ContractDTO {
	dto := ContractDTO{
		ID:               c.ID(),
		Number:           c.Number(),
		ClientID:         c.ClientID(),
		StartDate:        c.StartDate(),
		EndDate:          c.EndDate(),
		ActualReturnDate: c.ActualReturnDate(),
		TotalPriceCents:  c.TotalPriceCents(),
		Status:           string(c.Status()),
		CreatedDate:      c.CreatedDate(),
	}
	for _, item := range items {
		dto.Items = append(dto.Items, toItemDTO(item))
	}
	return dto
}

func sortedUnique(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(wanted []uint64, items []*rental.Item) []uint64 {
	found := make(map[uint64]struct{}, len(items))
	for _, item := range items {
		found[item.ID()] = struct{}{}
	}
	var missing []uint64
	for _, id := range wanted {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func countRented(items []*rental.Item) int {
	n := 0
	for _, item := range items {
		if item.Status() == rental.ItemStatusRented {
			n++
		}
	}
	return n
}
