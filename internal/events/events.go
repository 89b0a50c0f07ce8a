package events

import "time"

// Kafka topics the rental service produces to and consumes from.
const (
	TopicContractEvents = "contract.events"
	TopicFleetEvents    = "fleet.events"
)

// Event types.
const (
	ContractCreated           = "rental.contract.created"
	ContractItemReturned      = "rental.contract.item_returned"
	ContractCompleted         = "rental.contract.completed"
	ContractCancelled         = "rental.contract.cancelled"
	FleetMaintenanceCompleted = "fleet.maintenance.completed"
)

// ContractCreatedEvent is published after a booking transaction commits.
type ContractCreatedEvent struct {
	ContractID      uint64    `json:"contract_id"`
	ContractNumber  string    `json:"contract_number"`
	ClientID        uint64    `json:"client_id"`
	ItemIDs         []uint64  `json:"item_ids"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TotalPriceCents int64     `json:"total_price_cents"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ContractItemReturnedEvent is published when a single item comes back.
type ContractItemReturnedEvent struct {
	ContractID uint64    `json:"contract_id"`
	ItemID     uint64    `json:"item_id"`
	ReturnDate time.Time `json:"return_date"`
	Late       bool      `json:"late"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ContractCompletedEvent is published when the last item of a contract is
// returned.
type ContractCompletedEvent struct {
	ContractID       uint64    `json:"contract_id"`
	ContractNumber   string    `json:"contract_number"`
	ClientID         uint64    `json:"client_id"`
	ActualReturnDate time.Time `json:"actual_return_date"`
	Late             bool      `json:"late"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ContractCancelledEvent is published when a contract is voided before start.
type ContractCancelledEvent struct {
	ContractID uint64    `json:"contract_id"`
	ClientID   uint64    `json:"client_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MaintenanceCompletedEvent is consumed from the workshop service when an
// item's maintenance finishes and it can rejoin the fleet.
type MaintenanceCompletedEvent struct {
	ItemID     uint64    `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
