package rental

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/loca-mat/service-rental/internal/domain"
)

const contractNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ContractStatus represents the lifecycle state of a rental contract.
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusOngoing   ContractStatus = "ongoing"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// validContractTransitions defines the state machine for contract status changes.
var validContractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusPending:   {ContractStatusOngoing, ContractStatusCancelled},
	ContractStatusOngoing:   {ContractStatusCompleted, ContractStatusCancelled},
	ContractStatusCompleted: {},
	ContractStatusCancelled: {},
}

// IsValid returns true if the status is a recognized contract status.
func (s ContractStatus) IsValid() bool {
	_, exists := validContractTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	allowed, exists := validContractTransitions[s]
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
func (s ContractStatus) IsTerminal() bool {
	allowed, exists := validContractTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s ContractStatus) String() string {
	return string(s)
}

// ParseContractStatus converts a string to a ContractStatus, returning an error if invalid.
func ParseContractStatus(s string) (ContractStatus, error) {
	status := ContractStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid contract status: %s", s)
	}
	return status, nil
}

// generateContractNumber creates a contract number in the format "LOC-XXXXXX".
func generateContractNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(contractNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate contract number: %w", err)
		}
		result[i] = contractNumberChars[n.Int64()]
	}
	return "LOC-" + string(result), nil
}

// Contract is a rental agreement linking a client to one or more items for a
// period, with a price fixed at creation.
type Contract struct {
	id               uint64
	number           string
	clientID         uint64
	startDate        time.Time
	endDate          time.Time
	actualReturnDate *time.Time
	totalPriceCents  int64
	status           ContractStatus
	createdDate      time.Time
}

// NewContract creates a new ongoing contract. The total price is computed
// once by the pricing engine and never recomputed.
func NewContract(clientID uint64, startDate, endDate time.Time, totalPriceCents int64) (*Contract, error) {
	if clientID == 0 {
		return nil, domain.NewValidationError("client ID is required")
	}
	if err := ValidateRentalDates(startDate, endDate); err != nil {
		return nil, err
	}
	if totalPriceCents < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	number, err := generateContractNumber()
	if err != nil {
		return nil, err
	}

	return &Contract{
		number:          number,
		clientID:        clientID,
		startDate:       startDate,
		endDate:         endDate,
		totalPriceCents: totalPriceCents,
		status:          ContractStatusOngoing,
		createdDate:     time.Now().UTC().Truncate(24 * time.Hour),
	}, nil
}

// ReconstructContract rebuilds a Contract from persistence data (no validation).
func ReconstructContract(
	id uint64,
	number string,
	clientID uint64,
	startDate, endDate time.Time,
	actualReturnDate *time.Time,
	totalPriceCents int64,
	status ContractStatus,
	createdDate time.Time,
) *Contract {
	return &Contract{
		id:               id,
		number:           number,
		clientID:         clientID,
		startDate:        startDate,
		endDate:          endDate,
		actualReturnDate: actualReturnDate,
		totalPriceCents:  totalPriceCents,
		status:           status,
		createdDate:      createdDate,
	}
}

// --- Getters ---

func (c *Contract) ID() uint64                   { return c.id }
func (c *Contract) Number() string               { return c.number }
func (c *Contract) ClientID() uint64             { return c.clientID }
func (c *Contract) StartDate() time.Time         { return c.startDate }
func (c *Contract) EndDate() time.Time           { return c.endDate }
func (c *Contract) ActualReturnDate() *time.Time { return c.actualReturnDate }
func (c *Contract) TotalPriceCents() int64       { return c.totalPriceCents }
func (c *Contract) Status() ContractStatus       { return c.status }
func (c *Contract) CreatedDate() time.Time       { return c.createdDate }

// IsActive returns true while the contract still holds items.
func (c *Contract) IsActive() bool {
	return c.status == ContractStatusPending || c.status == ContractStatusOngoing
}

// WasReturnedLate reports whether the contract was closed after its agreed
// end date. Feeds the prior-late-return pricing surcharge for the client's
// next booking.
func (c *Contract) WasReturnedLate() bool {
	return c.actualReturnDate != nil && c.actualReturnDate.After(c.endDate)
}

// --- Behavior ---

// Complete closes the contract once every linked item has been returned.
func (c *Contract) Complete(returnDate time.Time) error {
	if !c.status.CanTransitionTo(ContractStatusCompleted) {
		return domain.NewInvalidStateError(string(c.status), string(ContractStatusCompleted))
	}
	c.status = ContractStatusCompleted
	c.actualReturnDate = &returnDate
	return nil
}

// Cancel voids the contract before its rental period begins.
func (c *Contract) Cancel(today time.Time) error {
	if !c.status.CanTransitionTo(ContractStatusCancelled) {
		return domain.NewInvalidStateError(string(c.status), string(ContractStatusCancelled))
	}
	if !today.Before(c.startDate) {
		return domain.NewValidationError("contract can only be cancelled before its start date")
	}
	c.status = ContractStatusCancelled
	return nil
}
