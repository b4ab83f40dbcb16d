package model

// Customer is identified externally by phone number and created lazily on
// the first bill that references an unknown number.
type Customer struct {
	BaseModel
	PhoneNumber string `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone_number" validate:"required"`
	Name        string `gorm:"type:varchar(255)" json:"name,omitempty"`

	// Only ever incremented by the engine (bill totals, floored by policy).
	LoyaltyPoints int64 `gorm:"not null;default:0" json:"loyalty_points"`
}
