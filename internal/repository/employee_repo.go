package repository

import (
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(employee *model.Employee) error
	FindByUsername(username string) (*model.Employee, error)
	FindByID(id uuid.UUID) (*model.Employee, error)
	FindAll() ([]model.Employee, error)
}

type employeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db}
}

func (r *employeeRepo) Create(employee *model.Employee) error {
	return r.db.Create(employee).Error
}

func (r *employeeRepo) FindByUsername(username string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.Preload("Branch").First(&employee, "username = ? AND is_active = ?", username, true).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) FindByID(id uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.Preload("Branch").First(&employee, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) FindAll() ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.Preload("Branch").Where("is_active = ?", true).Find(&employees).Error
	return employees, err
}
