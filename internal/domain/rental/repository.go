package rental

import (
	"context"
)

// ItemRevenue is a reporting row: revenue attributed to a single item.
type ItemRevenue struct {
	ItemID       uint64 `json:"item_id"`
	Category     string `json:"category"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	RevenueCents int64  `json:"revenue_cents"`
}

// InventoryStore defines the persistence contract for the rental fleet.
//
// Mutations that must be atomic run inside WithTx; the store passed to the
// callback is scoped to that transaction, and every row lock it takes is
// held until the callback returns (commit) or errors (rollback). Reads
// performed for validation or pricing inside the locked phase must go
// through the transactional store, never be reused from before it.
type InventoryStore interface {
	// WithTx runs fn inside a single store transaction. A nil return
	// commits; any error rolls back everything.
	WithTx(ctx context.Context, fn func(tx InventoryStore) error) error

	// --- Items ---

	// FetchItems retrieves items by id without locking. Missing ids are
	// simply absent from the result.
	FetchItems(ctx context.Context, ids []uint64) ([]*Item, error)

	// FetchItemsForUpdate retrieves items by id under exclusive row locks,
	// acquiring them in ascending id order. Blocks until the locks are
	// granted or the store's lock timeout aborts the wait. Only valid
	// inside WithTx.
	FetchItemsForUpdate(ctx context.Context, ids []uint64) ([]*Item, error)

	// ListItems retrieves all items, optionally filtered by status.
	ListItems(ctx context.Context, status *ItemStatus) ([]*Item, error)

	// CreateItem persists a new item and returns its generated id.
	CreateItem(ctx context.Context, item *Item) (uint64, error)

	// UpdateItemStatus persists an item's status change.
	UpdateItemStatus(ctx context.Context, id uint64, status ItemStatus) error

	// DeleteItem removes an item. Fails with an integrity error while any
	// contract link references the item.
	DeleteItem(ctx context.Context, id uint64) error

	// --- Clients ---

	// FetchClient retrieves a client by id.
	FetchClient(ctx context.Context, id uint64) (*Client, error)

	// ListClients retrieves all clients.
	ListClients(ctx context.Context) ([]*Client, error)

	// CreateClient persists a new client and returns its generated id.
	CreateClient(ctx context.Context, client *Client) (uint64, error)

	// UpdateClientVIP persists a client's VIP flag.
	UpdateClientVIP(ctx context.Context, id uint64, vip bool) error

	// DeleteClient removes a client. Fails with an integrity error while
	// any contract references the client.
	DeleteClient(ctx context.Context, id uint64) error

	// HasRecentLateReturn reports whether the client's most recent
	// completed contract was returned after its end date.
	HasRecentLateReturn(ctx context.Context, clientID uint64) (bool, error)

	// --- Contracts ---

	// FetchContract retrieves a contract by id without locking.
	FetchContract(ctx context.Context, id uint64) (*Contract, error)

	// FetchContractForUpdate retrieves a contract under an exclusive row
	// lock. Only valid inside WithTx.
	FetchContractForUpdate(ctx context.Context, id uint64) (*Contract, error)

	// ListContracts retrieves contracts with pagination, newest first.
	ListContracts(ctx context.Context, page, limit int) ([]*Contract, int64, error)

	// ListActiveContracts retrieves contracts that still hold items.
	ListActiveContracts(ctx context.Context) ([]*Contract, error)

	// CreateContract persists a new contract and returns its generated id.
	CreateContract(ctx context.Context, contract *Contract) (uint64, error)

	// UpdateContract persists a contract's status and actual return date.
	// The total price is fixed at creation and never written again.
	UpdateContract(ctx context.Context, contract *Contract) error

	// CreateLinks persists one contract-item link per item id.
	CreateLinks(ctx context.Context, contractID uint64, itemIDs []uint64) error

	// LinkExists reports whether the item is linked to the contract.
	LinkExists(ctx context.Context, contractID, itemID uint64) (bool, error)

	// FetchContractItems retrieves all items linked to a contract.
	FetchContractItems(ctx context.Context, contractID uint64) ([]*Item, error)

	// --- Reporting ---

	// OverdueContracts retrieves ongoing contracts whose end date has
	// passed without a recorded return.
	OverdueContracts(ctx context.Context) ([]*Contract, error)

	// RevenueLast30Days sums non-cancelled contract prices created in the
	// last 30 days.
	RevenueLast30Days(ctx context.Context) (int64, error)

	// TopItemsByRevenue retrieves the items that generated the most
	// revenue month-to-date.
	TopItemsByRevenue(ctx context.Context, limit int) ([]ItemRevenue, error)
}
