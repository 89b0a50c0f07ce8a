package repository

import (
	"time"

	"github.com/loca-mat/service-rental/internal/domain/rental"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	Category        string    `gorm:"not null;size:100;index"`
	Brand           string    `gorm:"not null;size:100"`
	Model           string    `gorm:"not null;size:100"`
	SerialNumber    string    `gorm:"uniqueIndex;not null;size:100"`
	PurchaseDate    time.Time `gorm:"type:date;not null"`
	Status          string    `gorm:"not null;size:20;index"`
	DailyPriceCents int64     `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string {
	return "items"
}

// ClientModel is the GORM model for the clients table.
type ClientModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	FirstName string `gorm:"not null;size:100"`
	LastName  string `gorm:"not null;size:100"`
	Email     string `gorm:"uniqueIndex;not null;size:255"`
	Phone     string `gorm:"size:20"`
	Address   string `gorm:"size:255"`
	VIP       bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for the GORM model.
func (ClientModel) TableName() string {
	return "clients"
}

// ContractModel is the GORM model for the contracts table.
type ContractModel struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"`
	Number           string     `gorm:"uniqueIndex;not null;size:20"`
	ClientID         uint64     `gorm:"not null;index"`
	StartDate        time.Time  `gorm:"type:date;not null"`
	EndDate          time.Time  `gorm:"type:date;not null"`
	ActualReturnDate *time.Time `gorm:"type:date"`
	TotalPriceCents  int64      `gorm:"not null"`
	Status           string     `gorm:"not null;size:20;index"`
	CreatedDate      time.Time  `gorm:"type:date;not null"`
}

// TableName returns the table name for the GORM model.
func (ContractModel) TableName() string {
	return "contracts"
}

// ContractLinkModel is the GORM model for the contract_links join table.
type ContractLinkModel struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	ContractID uint64 `gorm:"not null;index;uniqueIndex:idx_contract_item"`
	ItemID     uint64 `gorm:"not null;index;uniqueIndex:idx_contract_item"`
}

// TableName returns the table name for the GORM model.
func (ContractLinkModel) TableName() string {
	return "contract_links"
}

// --- Conversion helpers ---

func toItemModel(item *rental.Item) *ItemModel {
	return &ItemModel{
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

func toDomainItem(m *ItemModel) (*rental.Item, error) {
	status, err := rental.ParseItemStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return rental.ReconstructItem(
		m.ID,
		m.Category, m.Brand, m.Model, m.SerialNumber,
		m.PurchaseDate,
		status,
		m.DailyPriceCents,
	), nil
}

func toClientModel(client *rental.Client) *ClientModel {
	return &ClientModel{
		ID:        client.ID(),
		FirstName: client.FirstName(),
		LastName:  client.LastName(),
		Email:     client.Email(),
		Phone:     client.Phone(),
		Address:   client.Address(),
		VIP:       client.IsVIP(),
	}
}

func toDomainClient(m *ClientModel) *rental.Client {
	return rental.ReconstructClient(
		m.ID,
		m.FirstName, m.LastName, m.Email, m.Phone, m.Address,
		m.VIP,
	)
}

func toContractModel(contract *rental.Contract) *ContractModel {
	return &ContractModel{
		ID:               contract.ID(),
		Number:           contract.Number(),
		ClientID:         contract.ClientID(),
		StartDate:        contract.StartDate(),
		EndDate:          contract.EndDate(),
		ActualReturnDate: contract.ActualReturnDate(),
		TotalPriceCents:  contract.TotalPriceCents(),
		Status:           string(contract.Status()),
		CreatedDate:      contract.CreatedDate(),
	}
}

func toDomainContract(m *ContractModel) (*rental.Contract, error) {
	status, err := rental.ParseContractStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return rental.ReconstructContract(
		m.ID,
		m.Number,
		m.ClientID,
		m.StartDate, m.EndDate,
		m.ActualReturnDate,
		m.TotalPriceCents,
		status,
		m.CreatedDate,
	), nil
}
