package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/loca-mat/service-rental/internal/domain"
	"github.com/loca-mat/service-rental/internal/domain/rental"
)

// GormInventoryStore is the GORM-backed implementation of rental.InventoryStore.
//
// Inside WithTx the embedded handle is the transaction, so the same methods
// serve both transactional and plain reads. Row locks rely entirely on
// PostgreSQL; no in-process lock would protect against a second instance of
// the service hitting the same database.
type GormInventoryStore struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormInventoryStore creates a store bound to the given connection. The
// lock timeout bounds row-lock waits inside transactions via
// SET LOCAL lock_timeout.
func NewGormInventoryStore(db *gorm.DB, lockTimeout time.Duration) *GormInventoryStore {
	return &GormInventoryStore{db: db, lockTimeout: lockTimeout}
}

// WithTx runs fn inside a single database transaction.
func (s *GormInventoryStore) WithTx(ctx context.Context, fn func(tx rental.InventoryStore) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return translateError(err)
			}
		}
		return fn(&GormInventoryStore{db: tx, lockTimeout: s.lockTimeout})
	})
	return translateError(err)
}

// --- Items ---

// FetchItems retrieves items by id without locking.
func (s *GormInventoryStore) FetchItems(ctx context.Context, ids []uint64) ([]*rental.Item, error) {
	var models []ItemModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainItems(models)
}

// FetchItemsForUpdate retrieves items under exclusive row locks. The
// ascending id ordering is the deadlock-avoidance invariant for overlapping
// carts: every transaction asks PostgreSQL for the same rows in the same
// order, so no circular wait can form.
func (s *GormInventoryStore) FetchItemsForUpdate(ctx context.Context, ids []uint64) ([]*rental.Item, error) {
	sorted := make([]uint64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var models []ItemModel
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainItems(models)
}

// ListItems retrieves all items, optionally filtered by status.
func (s *GormInventoryStore) ListItems(ctx context.Context, status *rental.ItemStatus) ([]*rental.Item, error) {
	query := s.db.WithContext(ctx).Order("id ASC")
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	var models []ItemModel
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainItems(models)
}

// CreateItem persists a new item and returns its generated id.
func (s *GormInventoryStore) CreateItem(ctx context.Context, item *rental.Item) (uint64, error) {
	model := toItemModel(item)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, translateError(err)
	}
	return model.ID, nil
}

// UpdateItemStatus persists an item's status change.
func (s *GormInventoryStore) UpdateItemStatus(ctx context.Context, id uint64, status rental.ItemStatus) error {
	result := s.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("item", fmt.Sprint(id))
	}
	return nil
}

// DeleteItem removes an item; the RESTRICT foreign key on contract_links
// rejects the delete while any contract references the item.
func (s *GormInventoryStore) DeleteItem(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&ItemModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("item", fmt.Sprint(id))
	}
	return nil
}

// --- Clients ---

// FetchClient retrieves a client by id.
func (s *GormInventoryStore) FetchClient(ctx context.Context, id uint64) (*rental.Client, error) {
	var model ClientModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("client", fmt.Sprint(id))
		}
		return nil, translateError(err)
	}
	return toDomainClient(&model), nil
}

// ListClients retrieves all clients.
func (s *GormInventoryStore) ListClients(ctx context.Context) ([]*rental.Client, error) {
	var models []ClientModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	clients := make([]*rental.Client, len(models))
	for i, m := range models {
		clients[i] = toDomainClient(&m)
	}
	return clients, nil
}

// CreateClient persists a new client and returns its generated id.
func (s *GormInventoryStore) CreateClient(ctx context.Context, client *rental.Client) (uint64, error) {
	model := toClientModel(client)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, translateError(err)
	}
	return model.ID, nil
}

// UpdateClientVIP persists a client's VIP flag.
func (s *GormInventoryStore) UpdateClientVIP(ctx context.Context, id uint64, vip bool) error {
	result := s.db.WithContext(ctx).
		Model(&ClientModel{}).
		Where("id = ?", id).
		Update("vip", vip)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("client", fmt.Sprint(id))
	}
	return nil
}

// DeleteClient removes a client; the RESTRICT foreign key on contracts
// rejects the delete while any contract references the client.
func (s *GormInventoryStore) DeleteClient(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&ClientModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("client", fmt.Sprint(id))
	}
	return nil
}

// HasRecentLateReturn reports whether the client's most recent completed
// contract was returned after its end date.
func (s *GormInventoryStore) HasRecentLateReturn(ctx context.Context, clientID uint64) (bool, error) {
	var model ContractModel
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND status = ? AND actual_return_date IS NOT NULL",
			clientID, string(rental.ContractStatusCompleted)).
		Order("actual_return_date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, translateError(err)
	}
	return model.ActualReturnDate.After(model.EndDate), nil
}

// --- Contracts ---

// FetchContract retrieves a contract by id without locking.
func (s *GormInventoryStore) FetchContract(ctx context.Context, id uint64) (*rental.Contract, error) {
	return s.fetchContract(ctx, id, false)
}

// FetchContractForUpdate retrieves a contract under an exclusive row lock.
func (s *GormInventoryStore) FetchContractForUpdate(ctx context.Context, id uint64) (*rental.Contract, error) {
	return s.fetchContract(ctx, id, true)
}

func (s *GormInventoryStore) fetchContract(ctx context.Context, id uint64, forUpdate bool) (*rental.Contract, error) {
	query := s.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model ContractModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("contract", fmt.Sprint(id))
		}
		return nil, translateError(err)
	}
	return toDomainContract(&model)
}

// ListContracts retrieves contracts with pagination, newest first.
func (s *GormInventoryStore) ListContracts(ctx context.Context, page, limit int) ([]*rental.Contract, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&ContractModel{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var models []ContractModel
	offset := (page - 1) * limit
	if err := s.db.WithContext(ctx).
		Order("created_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, translateError(err)
	}

	contracts, err := toDomainContracts(models)
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// ListActiveContracts retrieves contracts that still hold items.
func (s *GormInventoryStore) ListActiveContracts(ctx context.Context) ([]*rental.Contract, error) {
	var models []ContractModel
	if err := s.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(rental.ContractStatusPending),
			string(rental.ContractStatusOngoing),
		}).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainContracts(models)
}

// CreateContract persists a new contract and returns its generated id.
func (s *GormInventoryStore) CreateContract(ctx context.Context, contract *rental.Contract) (uint64, error) {
	model := toContractModel(contract)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, translateError(err)
	}
	return model.ID, nil
}

// UpdateContract persists the contract's status and actual return date. The
// total price column is deliberately not in the update set: it is fixed at
// creation.
func (s *GormInventoryStore) UpdateContract(ctx context.Context, contract *rental.Contract) error {
	result := s.db.WithContext(ctx).
		Model(&ContractModel{}).
		Where("id = ?", contract.ID()).
		Updates(map[string]interface{}{
			"status":             string(contract.Status()),
			"actual_return_date": contract.ActualReturnDate(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("contract", fmt.Sprint(contract.ID()))
	}
	return nil
}

// CreateLinks persists one contract-item link per item id.
func (s *GormInventoryStore) CreateLinks(ctx context.Context, contractID uint64, itemIDs []uint64) error {
	links := make([]ContractLinkModel, len(itemIDs))
	for i, itemID := range itemIDs {
		links[i] = ContractLinkModel{ContractID: contractID, ItemID: itemID}
	}
	if err := s.db.WithContext(ctx).Create(&links).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// LinkExists reports whether the item is linked to the contract.
func (s *GormInventoryStore) LinkExists(ctx context.Context, contractID, itemID uint64) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&ContractLinkModel{}).
		Where("contract_id = ? AND item_id = ?", contractID, itemID).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// FetchContractItems retrieves all items linked to a contract.
func (s *GormInventoryStore) FetchContractItems(ctx context.Context, contractID uint64) ([]*rental.Item, error) {
	var models []ItemModel
	if err := s.db.WithContext(ctx).
		Joins("JOIN contract_links ON contract_links.item_id = items.id").
		Where("contract_links.contract_id = ?", contractID).
		Order("items.id ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainItems(models)
}

// --- Reporting ---

// OverdueContracts retrieves ongoing contracts whose end date has passed
// without a recorded return.
func (s *GormInventoryStore) OverdueContracts(ctx context.Context) ([]*rental.Contract, error) {
	var models []ContractModel
	if err := s.db.WithContext(ctx).
		Where("status = ? AND end_date < ? AND actual_return_date IS NULL",
			string(rental.ContractStatusOngoing), rental.Today()).
		Order("end_date ASC").
		Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	return toDomainContracts(models)
}

// RevenueLast30Days sums non-cancelled contract prices created in the last
// 30 days.
func (s *GormInventoryStore) RevenueLast30Days(ctx context.Context) (int64, error) {
	since := rental.Today().AddDate(0, 0, -30)
	var total *int64
	if err := s.db.WithContext(ctx).
		Model(&ContractModel{}).
		Select("SUM(total_price_cents)").
		Where("created_date >= ? AND status <> ?", since, string(rental.ContractStatusCancelled)).
		Scan(&total).Error; err != nil {
		return 0, translateError(err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// TopItemsByRevenue retrieves the items that generated the most revenue
// month-to-date.
func (s *GormInventoryStore) TopItemsByRevenue(ctx context.Context, limit int) ([]rental.ItemRevenue, error) {
	monthStart := rental.Today().AddDate(0, 0, 1-rental.Today().Day())

	type revenueRow struct {
		ItemID   uint64
		Category string
		Brand    string
		Model    string
		Revenue  int64
	}
	var rows []revenueRow
	if err := s.db.WithContext(ctx).
		Model(&ItemModel{}).
		Select("items.id AS item_id, items.category, items.brand, items.model, SUM(contracts.total_price_cents) AS revenue").
		Joins("JOIN contract_links ON contract_links.item_id = items.id").
		Joins("JOIN contracts ON contracts.id = contract_links.contract_id").
		Where("contracts.created_date >= ? AND contracts.status <> ?",
			monthStart, string(rental.ContractStatusCancelled)).
		Group("items.id, items.category, items.brand, items.model").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	result := make([]rental.ItemRevenue, len(rows))
	for i, r := range rows {
		result[i] = rental.ItemRevenue{
			ItemID:       r.ItemID,
			Category:     r.Category,
			Brand:        r.Brand,
			Model:        r.Model,
			RevenueCents: r.Revenue,
		}
	}
	return result, nil
}

// --- Conversion helpers ---

func toDomainItems(models []ItemModel) ([]*rental.Item, error) {
	items := make([]*rental.Item, len(models))
	for i, m := range models {
		item, err := toDomainItem(&m)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func toDomainContracts(models []ContractModel) ([]*rental.Contract, error) {
	contracts := make([]*rental.Contract, len(models))
	for i, m := range models {
		contract, err := toDomainContract(&m)
		if err != nil {
			return nil, err
		}
		contracts[i] = contract
	}
	return contracts, nil
}
