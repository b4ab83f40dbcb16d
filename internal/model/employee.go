package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Role codes. Authorization is a flat two-role check.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type Employee struct {
	BaseModel
	Username string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"username" validate:"required"`
	Password string  `gorm:"type:varchar(255);not null" json:"-"`
	FullName string  `gorm:"type:varchar(255);not null" json:"full_name" validate:"required"`
	Role     string  `gorm:"type:varchar(20);not null" json:"role" validate:"required,oneof=admin employee"`
	BranchID uuid.UUID `gorm:"type:uuid;not null;index" json:"branch_id" validate:"uuid_required"`
	Branch   *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`

	// Frozen into each Commission at bill-creation time.
	CommissionRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"commission_rate"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

func (e *Employee) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.Password = string(hashed)
	return nil
}

func (e *Employee) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(e.Password), []byte(password)) == nil
}

func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// EmployeeResponse is used for API responses (without the password hash).
type EmployeeResponse struct {
	ID             uuid.UUID       `json:"id"`
	Username       string          `json:"username"`
	FullName       string          `json:"full_name"`
	Role           string          `json:"role"`
	BranchID       uuid.UUID       `json:"branch_id"`
	Branch         *Branch         `json:"branch,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	IsActive       bool            `json:"is_active"`
}

func (e *Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID,
		Username:       e.Username,
		FullName:       e.FullName,
		Role:           e.Role,
		BranchID:       e.BranchID,
		Branch:         e.Branch,
		CommissionRate: e.CommissionRate,
		IsActive:       e.IsActive,
	}
}
