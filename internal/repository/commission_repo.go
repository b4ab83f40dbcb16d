package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommissionRepository interface {
	Create(tx *gorm.DB, commission *model.Commission) error
	FindByBillID(billID uuid.UUID) (*model.Commission, error)
	FindByEmployee(employeeID uuid.UUID) ([]model.Commission, error)
	FindAll() ([]model.Commission, error)
	MarkPaid(ids []uuid.UUID, at time.Time) error
}

type commissionRepo struct {
	db *gorm.DB
}

func NewCommissionRepo(db *gorm.DB) CommissionRepository {
	return &commissionRepo{db}
}

func (r *commissionRepo) Create(tx *gorm.DB, commission *model.Commission) error {
	return tx.Create(commission).Error
}

func (r *commissionRepo) FindByBillID(billID uuid.UUID) (*model.Commission, error) {
	var commission model.Commission
	err := r.db.First(&commission, "bill_id = ?", billID).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepo) FindByEmployee(employeeID uuid.UUID) ([]model.Commission, error) {
	var commissions []model.Commission
	err := r.db.Where("employee_id = ?", employeeID).
		Order("created_at DESC").Find(&commissions).Error
	return commissions, err
}

func (r *commissionRepo) FindAll() ([]model.Commission, error) {
	var commissions []model.Commission
	err := r.db.Preload("Employee").Order("created_at DESC").Find(&commissions).Error
	return commissions, err
}

func (r *commissionRepo) MarkPaid(ids []uuid.UUID, at time.Time) error {
	return r.db.Model(&model.Commission{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":  model.CommissionPaid,
			"paid_at": at,
		}).Error
}
