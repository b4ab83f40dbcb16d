package model

import "github.com/google/uuid"

// StockEntry is the per-(branch, sku) quantity on hand. It is the unit of
// concurrency control: every mutation locks the row FOR UPDATE. Quantity is
// never negative and entries are never deleted (zero is a valid steady state).
type StockEntry struct {
	BaseModel
	BranchID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_branch_sku" json:"branch_id"`
	SKU      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_branch_sku" json:"sku"`
	Quantity int       `gorm:"not null;default:0" json:"quantity"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

// StockTransfer is the audit record for a paired debit/credit between
// branches. Written in the same transaction as the two StockEntry updates.
type StockTransfer struct {
	BaseModel
	SKU           string    `gorm:"type:varchar(100);not null;index" json:"sku"`
	FromBranchID  uuid.UUID `gorm:"type:uuid;not null" json:"from_branch_id"`
	ToBranchID    uuid.UUID `gorm:"type:uuid;not null" json:"to_branch_id"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	TransferredBy uuid.UUID `gorm:"type:uuid" json:"transferred_by"`
}

// LowStockItem is a read-model row: stock entries under a threshold joined
// with their variant and product metadata.
type LowStockItem struct {
	BranchID    uuid.UUID `json:"branch_id"`
	BranchName  string    `json:"branch_name"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Size        string    `json:"size,omitempty"`
	Color       string    `json:"color,omitempty"`
	Quantity    int       `json:"quantity"`
}
