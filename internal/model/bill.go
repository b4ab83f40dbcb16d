package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
	PaymentUPI  PaymentMethod = "UPI"
	// PaymentReturn marks compensating return bills, never accepted as input.
	PaymentReturn PaymentMethod = "Return"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

type BillStatus string

const (
	BillStatusCompleted     BillStatus = "completed"
	BillStatusVoided        BillStatus = "voided"
	BillStatusReturned      BillStatus = "returned"
	BillStatusPartialReturn BillStatus = "partial-return"
)

// Bill is immutable once created except for the status transition driven by
// the returns workflow. Subtotal and line prices are frozen at sale time.
type Bill struct {
	BaseModel
	BillNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"bill_number"`
	BranchID   uuid.UUID `gorm:"type:uuid;not null;index" json:"branch_id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`

	Items []BillItem `gorm:"foreignKey:BillID" json:"items"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status         BillStatus      `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`

	// Set on return bills only, pointing at the original.
	RelatedBillID *uuid.UUID `gorm:"type:uuid" json:"related_bill_id,omitempty"`
	ReturnReason  string     `gorm:"type:text" json:"return_reason,omitempty"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

type BillItem struct {
	BaseModel
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	SKU         string          `gorm:"type:varchar(100);not null;index" json:"sku"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"line_total"`
}

// BillSequence backs the per-branch human-readable bill numbering. The row
// is locked FOR UPDATE while a number is handed out.
type BillSequence struct {
	BranchID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	NextNumber int64     `gorm:"not null;default:1"`
}
