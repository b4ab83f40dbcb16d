package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category    string `gorm:"type:varchar(100);not null" json:"category" validate:"required"`
	Brand       string `gorm:"type:varchar(100)" json:"brand"`
	Description string `gorm:"type:text" json:"description"`

	Variants []Variant `gorm:"foreignKey:ProductID" json:"variants" validate:"required,min=1,dive"`
}

// Variant is the purchasable unit. SKU and barcode are unique process-wide.
// Variants referenced by historical bills are archived, never deleted.
type Variant struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	SKU       string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku" validate:"required"`
	Barcode   *string         `gorm:"type:varchar(100);uniqueIndex" json:"barcode,omitempty"`
	Size      string          `gorm:"type:varchar(50)" json:"size,omitempty"`
	Color     string          `gorm:"type:varchar(50)" json:"color,omitempty"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Archived  bool            `gorm:"default:false" json:"archived"`
}
