package repository

import (
	"errors"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindByPhone(phone string) (*model.Customer, error)
	FindByID(id uuid.UUID) (*model.Customer, error)
	// FindOrCreateByPhone backs lazy customer creation during checkout.
	FindOrCreateByPhone(tx *gorm.DB, phone string) (*model.Customer, error)
	// AddLoyaltyPoints increments atomically in SQL so concurrent bills for
	// the same customer never lose points.
	AddLoyaltyPoints(tx *gorm.DB, id uuid.UUID, points int64) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(customer *model.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepo) FindByPhone(phone string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "phone_number = ?", phone).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindOrCreateByPhone(tx *gorm.DB, phone string) (*model.Customer, error) {
	var customer model.Customer
	err := tx.First(&customer, "phone_number = ?", phone).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = model.Customer{PhoneNumber: phone}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) AddLoyaltyPoints(tx *gorm.DB, id uuid.UUID, points int64) error {
	return tx.Model(&model.Customer{}).
		Where("id = ?", id).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points)).Error
}
