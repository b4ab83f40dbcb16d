package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/jwt"
	"go-retail-pos/pkg/validator"
)

type LoginResponse struct {
	Token    string                 `json:"token"`
	Employee model.EmployeeResponse `json:"employee"`
}

type CreateEmployeeRequest struct {
	Username       string          `json:"username" validate:"required"`
	Password       string          `json:"password" validate:"required,min=6"`
	FullName       string          `json:"full_name" validate:"required"`
	Role           string          `json:"role" validate:"required,oneof=admin employee"`
	BranchID       string          `json:"branch_id" validate:"required"`
	// Nil means "not supplied" and takes the configured default; an explicit
	// zero is kept as-is.
	CommissionRate *decimal.Decimal `json:"commission_rate"`
}

type AuthService interface {
	Login(username, password string) (*LoginResponse, error)
}

type authService struct {
	employeeRepo repository.EmployeeRepository
	tokens       *jwt.Manager
}

func NewAuthService(employeeRepo repository.EmployeeRepository, tokens *jwt.Manager) AuthService {
	return &authService{employeeRepo: employeeRepo, tokens: tokens}
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperr.ErrValidation)
	}

	employee, err := s.employeeRepo.FindByUsername(username)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if !employee.CheckPassword(password) {
		return nil, apperr.ErrUnauthorized
	}

	token, err := s.tokens.Generate(employee.ID, employee.Username, employee.FullName, employee.Role, employee.BranchID)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token, Employee: employee.ToResponse()}, nil
}

// ValidateCreateEmployee applies the request's struct tags; kept here so
// handler code stays thin.
func ValidateCreateEmployee(req *CreateEmployeeRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on '%s'", apperr.ErrValidation, first.FailedField, first.Tag)
	}
	return nil
}
