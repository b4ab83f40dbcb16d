package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/notify"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
)

type CartItem struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type CreateBillRequest struct {
	CustomerPhoneNumber string              `json:"customer_phone_number"`
	Items               []CartItem          `json:"items"`
	Discount            decimal.Decimal     `json:"discount"`
	PaymentMethod       model.PaymentMethod `json:"payment_method"`
}

type ReturnItem struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type ReturnRequest struct {
	OriginalBillID uuid.UUID    `json:"original_bill_id"`
	Items          []ReturnItem `json:"items"`
	Reason         string       `json:"reason,omitempty"`
}

type ReturnResult struct {
	ReturnBillID uuid.UUID       `json:"return_bill_id"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// BillingPolicy carries the configurable business knobs checkout reads.
type BillingPolicy struct {
	LoyaltyEarnRate decimal.Decimal
}

type BillingService interface {
	CreateBill(ctx context.Context, actor Actor, req *CreateBillRequest) (*model.Bill, error)
	ProcessReturn(ctx context.Context, actor Actor, req *ReturnRequest) (*ReturnResult, error)
	GetBills(actor Actor) ([]model.Bill, error)
	GetBill(id uuid.UUID) (*model.Bill, error)
}

type billingService struct {
	db           repository.TxRunner
	productRepo  repository.ProductRepository
	stockRepo    repository.StockRepository
	billRepo     repository.BillRepository
	customerRepo repository.CustomerRepository
	employeeRepo repository.EmployeeRepository
	commissions  CommissionService
	branchRepo   repository.BranchRepository
	policy       BillingPolicy
	hub          *ws.Hub
	notifier     notify.Notifier
}

func NewBillingService(
	db repository.TxRunner,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	billRepo repository.BillRepository,
	customerRepo repository.CustomerRepository,
	employeeRepo repository.EmployeeRepository,
	branchRepo repository.BranchRepository,
	commissions CommissionService,
	policy BillingPolicy,
	hub *ws.Hub,
	notifier notify.Notifier,
) BillingService {
	return &billingService{
		db:           db,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		billRepo:     billRepo,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		branchRepo:   branchRepo,
		commissions:  commissions,
		policy:       policy,
		hub:          hub,
		notifier:     notifier,
	}
}

// billLine is a cart line resolved against the catalog, with the sale-time
// price frozen in.
type billLine struct {
	variant  *model.Variant
	product  *model.Product
	quantity int
}

func (s *billingService) CreateBill(ctx context.Context, actor Actor, req *CreateBillRequest) (*model.Bill, error) {
	// Steps 1-6 validate before any stock row is touched.
	if len(req.Items) == 0 {
		return nil, apperr.ErrEmptyCart
	}
	if strings.TrimSpace(req.CustomerPhoneNumber) == "" {
		return nil, fmt.Errorf("%w: customer phone number is required", apperr.ErrValidation)
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: payment method must be Cash, Card or UPI", apperr.ErrValidation)
	}
	if req.Discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount cannot be negative", apperr.ErrInvalidDiscount)
	}

	lines := make([]billLine, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for sku %s", apperr.ErrValidation, item.SKU)
		}
		variant, product, err := s.productRepo.FindVariantBySKU(item.SKU)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownSKU, item.SKU)
			}
			return nil, err
		}
		lines = append(lines, billLine{variant: variant, product: product, quantity: item.Quantity})
		subtotal = subtotal.Add(variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if req.Discount.GreaterThan(subtotal) {
		return nil, fmt.Errorf("%w: discount %s exceeds subtotal %s",
			apperr.ErrInvalidDiscount, req.Discount.StringFixed(2), subtotal.StringFixed(2))
	}
	total := subtotal.Sub(req.Discount)

	employee, err := s.employeeRepo.FindByID(actor.EmployeeID)
	if err != nil {
		return nil, translate(err)
	}

	// Deterministic lock order across cart lines; the bill itself keeps the
	// caller's line order.
	locked := make([]billLine, len(lines))
	copy(locked, lines)
	sort.Slice(locked, func(i, j int) bool { return locked[i].variant.SKU < locked[j].variant.SKU })

	var bill *model.Bill
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		// All-or-nothing decrement: every key is locked and checked before
		// the transaction can commit; any failure rolls all of them back.
		for _, line := range locked {
			entry, err := s.stockRepo.LockEntry(tx, employee.BranchID, line.variant.SKU)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s has no stock at this branch", apperr.ErrInsufficientStock, line.variant.SKU)
			}
			if err != nil {
				return err
			}
			if entry.Quantity < line.quantity {
				return fmt.Errorf("%w: %s has %d on hand, %d requested",
					apperr.ErrInsufficientStock, line.variant.SKU, entry.Quantity, line.quantity)
			}
			if err := s.stockRepo.UpdateQuantity(tx, entry.ID, entry.Quantity-line.quantity); err != nil {
				return err
			}
		}

		customer, err := s.customerRepo.FindOrCreateByPhone(tx, strings.TrimSpace(req.CustomerPhoneNumber))
		if err != nil {
			return err
		}

		seq, err := s.billRepo.NextBillNumber(tx, employee.BranchID)
		if err != nil {
			return err
		}

		bill = &model.Bill{
			BillNumber:     formatBillNumber("BR", employee.BranchID, seq),
			BranchID:       employee.BranchID,
			EmployeeID:     employee.ID,
			CustomerID:     customer.ID,
			Subtotal:       subtotal,
			DiscountAmount: req.Discount,
			TotalAmount:    total,
			PaymentMethod:  req.PaymentMethod,
			Status:         model.BillStatusCompleted,
		}
		for _, line := range lines {
			bill.Items = append(bill.Items, model.BillItem{
				ProductID:   line.product.ID,
				SKU:         line.variant.SKU,
				ProductName: displayName(line.product, line.variant),
				Quantity:    line.quantity,
				UnitPrice:   line.variant.Price,
				LineTotal:   line.variant.Price.Mul(decimal.NewFromInt(int64(line.quantity))),
			})
		}
		if err := s.billRepo.Create(tx, bill); err != nil {
			return err
		}

		if points := total.Mul(s.policy.LoyaltyEarnRate).Floor().IntPart(); points > 0 {
			if err := s.customerRepo.AddLoyaltyPoints(tx, customer.ID, points); err != nil {
				return err
			}
		}

		// Commission accrues in the same transaction as the bill, so a sale
		// and its payout record commit or roll back together. The employee's
		// stored rate applies verbatim; a zero rate earns nothing.
		if _, err := s.commissions.AccrueInTx(tx, bill, employee.CommissionRate); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.afterCommit(bill, employee)
	return bill, nil
}

// afterCommit signals collaborators once the bill is durable.
func (s *billingService) afterCommit(bill *model.Bill, employee *model.Employee) {
	branchName := ""
	if branch, err := s.branchRepo.FindByID(bill.BranchID); err == nil {
		branchName = branch.Name
	}

	if customer, err := s.customerRepo.FindByID(bill.CustomerID); err == nil {
		s.notifier.BillConfirmation(customer.PhoneNumber, bill, branchName)
	}

	if s.hub != nil {
		go s.hub.BroadcastEvent("bill_created", map[string]interface{}{
			"bill_number":  bill.BillNumber,
			"branch_id":    bill.BranchID,
			"employee":     employee.FullName,
			"total_amount": bill.TotalAmount,
		})
	}
}

func (s *billingService) ProcessReturn(ctx context.Context, actor Actor, req *ReturnRequest) (*ReturnResult, error) {
	if req.OriginalBillID == uuid.Nil {
		return nil, fmt.Errorf("%w: original bill id is required", apperr.ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: nothing to return", apperr.ErrValidation)
	}

	var result *ReturnResult
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		original, err := s.billRepo.LockByID(tx, req.OriginalBillID)
		if err != nil {
			return err
		}
		if original.Status == model.BillStatusReturned {
			return fmt.Errorf("%w: bill already fully returned", apperr.ErrValidation)
		}

		bySKU := make(map[string]model.BillItem, len(original.Items))
		for _, item := range original.Items {
			bySKU[item.SKU] = item
		}

		// Quantities already returned in earlier (partial) returns count
		// against the original line, so successive returns can never hand
		// back more than was sold. The original's row lock serializes this
		// read against concurrent returns.
		returned := make(map[string]int, len(original.Items))
		previous, err := s.billRepo.FindReturns(tx, original.ID)
		if err != nil {
			return err
		}
		for _, prior := range previous {
			for _, item := range prior.Items {
				returned[item.SKU] += item.Quantity
			}
		}

		returnTotal := decimal.Zero
		returnBill := &model.Bill{
			BranchID:      original.BranchID,
			EmployeeID:    actor.EmployeeID,
			CustomerID:    original.CustomerID,
			PaymentMethod: model.PaymentReturn,
			Status:        model.BillStatusReturned,
			RelatedBillID: &original.ID,
			ReturnReason:  req.Reason,
		}
		for _, ret := range req.Items {
			originalItem, ok := bySKU[ret.SKU]
			if !ok {
				return fmt.Errorf("%w: %s is not on the original bill", apperr.ErrNotFound, ret.SKU)
			}
			remaining := originalItem.Quantity - returned[ret.SKU]
			if ret.Quantity <= 0 || ret.Quantity > remaining {
				return fmt.Errorf("%w: return quantity for %s exceeds the %d still returnable",
					apperr.ErrValidation, ret.SKU, remaining)
			}
			returned[ret.SKU] += ret.Quantity

			lineTotal := originalItem.UnitPrice.Mul(decimal.NewFromInt(int64(ret.Quantity)))
			returnTotal = returnTotal.Add(lineTotal)
			returnBill.Items = append(returnBill.Items, model.BillItem{
				ProductID:   originalItem.ProductID,
				SKU:         ret.SKU,
				ProductName: originalItem.ProductName,
				Quantity:    ret.Quantity,
				UnitPrice:   originalItem.UnitPrice,
				LineTotal:   lineTotal,
			})

			// Restore stock at the branch that sold it.
			entry, err := s.stockRepo.LockEntry(tx, original.BranchID, ret.SKU)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				entry = &model.StockEntry{BranchID: original.BranchID, SKU: ret.SKU, Quantity: 0}
				if err := s.stockRepo.CreateEntry(tx, entry); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			if err := s.stockRepo.UpdateQuantity(tx, entry.ID, entry.Quantity+ret.Quantity); err != nil {
				return err
			}
		}
		fullReturn := true
		for _, item := range original.Items {
			if returned[item.SKU] < item.Quantity {
				fullReturn = false
				break
			}
		}

		seq, err := s.billRepo.NextBillNumber(tx, original.BranchID)
		if err != nil {
			return err
		}
		returnBill.BillNumber = formatBillNumber("RET", original.BranchID, seq)
		returnBill.Subtotal = returnTotal.Neg()
		returnBill.TotalAmount = returnTotal.Neg()
		if err := s.billRepo.Create(tx, returnBill); err != nil {
			return err
		}

		if err := s.commissions.ReverseInTx(tx, original, returnBill, returnTotal); err != nil {
			return err
		}

		status := model.BillStatusPartialReturn
		if fullReturn {
			status = model.BillStatusReturned
		}
		if err := s.billRepo.UpdateStatus(tx, original.ID, status); err != nil {
			return err
		}

		result = &ReturnResult{ReturnBillID: returnBill.ID, RefundAmount: returnTotal}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	if s.hub != nil {
		go s.hub.BroadcastEvent("bill_returned", map[string]interface{}{
			"original_bill_id": req.OriginalBillID,
			"refund_amount":    result.RefundAmount,
		})
	}
	return result, nil
}

func (s *billingService) GetBills(actor Actor) ([]model.Bill, error) {
	if actor.IsAdmin() {
		return s.billRepo.FindAll()
	}
	return s.billRepo.FindByEmployee(actor.EmployeeID)
}

func (s *billingService) GetBill(id uuid.UUID) (*model.Bill, error) {
	bill, err := s.billRepo.FindByID(id)
	if err != nil {
		return nil, translate(err)
	}
	return bill, nil
}

func formatBillNumber(prefix string, branchID uuid.UUID, seq int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, branchID.String()[:4], seq)
}

func displayName(product *model.Product, variant *model.Variant) string {
	parts := []string{}
	if variant.Color != "" {
		parts = append(parts, variant.Color)
	}
	if variant.Size != "" {
		parts = append(parts, variant.Size)
	}
	if len(parts) == 0 {
		return product.Name
	}
	return fmt.Sprintf("%s (%s)", product.Name, strings.Join(parts, ", "))
}
