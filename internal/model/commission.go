package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionPending CommissionStatus = "pending"
	CommissionPaid    CommissionStatus = "paid"
)

// Commission is derived 1:1 from a completed bill; the unique bill_id index
// is what makes accrual idempotent. Return bills get their own negative
// commission row pointing at the return bill's id.
type Commission struct {
	BaseModel
	EmployeeID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"employee_id"`
	BillID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"bill_id"`
	SaleAmount       decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"sale_amount"`
	CommissionRate   decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"commission_rate"`
	CommissionAmount decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"commission_amount"`
	Status           CommissionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaidAt           *time.Time       `json:"paid_at,omitempty"`

	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}
