package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
)

type CommissionService interface {
	// AccrueInTx writes the commission for a freshly created bill inside the
	// checkout transaction. The unique bill_id index keeps accrual 1:1.
	AccrueInTx(tx *gorm.DB, bill *model.Bill, rate decimal.Decimal) (*model.Commission, error)
	// ReverseInTx writes the proportional negative commission for a return.
	ReverseInTx(tx *gorm.DB, original *model.Bill, returnBill *model.Bill, returnTotal decimal.Decimal) error
	// Accrue is the idempotent standalone path: replaying it for a bill that
	// already has a commission returns the existing record.
	Accrue(ctx context.Context, billID uuid.UUID) (*model.Commission, error)
	My(employeeID uuid.UUID) ([]model.Commission, error)
	All() ([]model.Commission, error)
	Payout(ids []uuid.UUID) error
}

type commissionService struct {
	db             repository.TxRunner
	commissionRepo repository.CommissionRepository
	billRepo       repository.BillRepository
	employeeRepo   repository.EmployeeRepository
}

func NewCommissionService(
	db repository.TxRunner,
	commissionRepo repository.CommissionRepository,
	billRepo repository.BillRepository,
	employeeRepo repository.EmployeeRepository,
) CommissionService {
	return &commissionService{
		db:             db,
		commissionRepo: commissionRepo,
		billRepo:       billRepo,
		employeeRepo:   employeeRepo,
	}
}

func (s *commissionService) AccrueInTx(tx *gorm.DB, bill *model.Bill, rate decimal.Decimal) (*model.Commission, error) {
	commission := &model.Commission{
		EmployeeID:       bill.EmployeeID,
		BillID:           bill.ID,
		SaleAmount:       bill.TotalAmount,
		CommissionRate:   rate,
		CommissionAmount: bill.TotalAmount.Mul(rate).Round(4),
		Status:           model.CommissionPending,
	}
	if err := s.commissionRepo.Create(tx, commission); err != nil {
		return nil, err
	}
	return commission, nil
}

func (s *commissionService) ReverseInTx(tx *gorm.DB, original *model.Bill, returnBill *model.Bill, returnTotal decimal.Decimal) error {
	commission, err := s.commissionRepo.FindByBillID(original.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // nothing accrued, nothing to reverse
	}
	if err != nil {
		return err
	}
	if original.TotalAmount.IsZero() {
		return nil
	}

	reversed := returnTotal.Div(original.TotalAmount).Mul(commission.CommissionAmount).Round(4)
	return s.commissionRepo.Create(tx, &model.Commission{
		EmployeeID:       original.EmployeeID,
		BillID:           returnBill.ID,
		SaleAmount:       returnTotal.Neg(),
		CommissionRate:   commission.CommissionRate,
		CommissionAmount: reversed.Neg(),
		Status:           model.CommissionPending,
	})
}

func (s *commissionService) Accrue(ctx context.Context, billID uuid.UUID) (*model.Commission, error) {
	if existing, err := s.commissionRepo.FindByBillID(billID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	bill, err := s.billRepo.FindByID(billID)
	if err != nil {
		return nil, translate(err)
	}
	if bill.Status != model.BillStatusCompleted {
		return nil, fmt.Errorf("%w: commission accrues only on completed bills", apperr.ErrValidation)
	}
	employee, err := s.employeeRepo.FindByID(bill.EmployeeID)
	if err != nil {
		return nil, translate(err)
	}
	// The stored rate applies verbatim; a zero rate earns nothing.
	var commission *model.Commission
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		commission, err = s.AccrueInTx(tx, bill, employee.CommissionRate)
		return err
	})
	if err != nil {
		// Lost the race against another accrual: the existing record wins.
		if repository.IsUniqueViolation(err) {
			return s.commissionRepo.FindByBillID(billID)
		}
		return nil, translate(err)
	}
	return commission, nil
}

func (s *commissionService) My(employeeID uuid.UUID) ([]model.Commission, error) {
	return s.commissionRepo.FindByEmployee(employeeID)
}

func (s *commissionService) All() ([]model.Commission, error) {
	return s.commissionRepo.FindAll()
}

func (s *commissionService) Payout(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no commission ids given", apperr.ErrValidation)
	}
	return s.commissionRepo.MarkPaid(ids, time.Now())
}
