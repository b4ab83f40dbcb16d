package model

// Branch is immutable reference data for the stock ledger and billing.
type Branch struct {
	BaseModel
	Name          string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address       string `gorm:"type:text" json:"address"`
	ContactNumber string `gorm:"type:varchar(20)" json:"contact_number"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
}
