package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
)

type CustomerService interface {
	// CreateOrGet registers a customer, returning the existing record when
	// the phone number is already known.
	CreateOrGet(phone, name string) (*model.Customer, error)
	SearchByPhone(phone string) (*model.Customer, error)
	Bills(customerID uuid.UUID) ([]model.Bill, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	billRepo     repository.BillRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository, billRepo repository.BillRepository) CustomerService {
	return &customerService{customerRepo: customerRepo, billRepo: billRepo}
}

func (s *customerService) CreateOrGet(phone, name string) (*model.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", apperr.ErrValidation)
	}

	if existing, err := s.customerRepo.FindByPhone(phone); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := &model.Customer{PhoneNumber: phone, Name: name}
	if err := s.customerRepo.Create(customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return s.customerRepo.FindByPhone(phone)
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) SearchByPhone(phone string) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByPhone(strings.TrimSpace(phone))
	if err != nil {
		return nil, translate(err)
	}
	return customer, nil
}

func (s *customerService) Bills(customerID uuid.UUID) ([]model.Bill, error) {
	if _, err := s.customerRepo.FindByID(customerID); err != nil {
		return nil, translate(err)
	}
	return s.billRepo.FindByCustomer(customerID)
}
