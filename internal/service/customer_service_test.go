package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
)

func newCustomers(d *memDB) CustomerService {
	return NewCustomerService(memCustomerRepo{d}, memBillRepo{d})
}

func TestCreateOrGetReturnsExistingCustomer(t *testing.T) {
	d := newMemDB()
	customers := newCustomers(d)

	first, err := customers.CreateOrGet("5551000", "Asha")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := customers.CreateOrGet("5551000", "Someone Else")
	if err != nil {
		t.Fatalf("repeat create failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same customer back, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "Asha" {
		t.Errorf("expected original name kept, got %s", second.Name)
	}
}

func TestCreateOrGetRequiresPhone(t *testing.T) {
	d := newMemDB()
	customers := newCustomers(d)

	if _, err := customers.CreateOrGet("  ", "Asha"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchByPhone(t *testing.T) {
	d := newMemDB()
	customers := newCustomers(d)

	if _, err := customers.CreateOrGet("5551001", "Asha"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := customers.SearchByPhone("5551001")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if found.Name != "Asha" {
		t.Errorf("expected Asha, got %s", found.Name)
	}

	if _, err := customers.SearchByPhone("0000000"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCustomerBillHistory(t *testing.T) {
	e := newEnv()
	e.db.addProduct("T-Shirt", "TS-001", decimal.NewFromInt(20))
	e.db.setStock(e.branchID, "TS-001", 10)

	bill, err := e.billing.CreateBill(context.Background(), e.cashier(), &CreateBillRequest{
		CustomerPhoneNumber: "5551002",
		Items:               []CartItem{{SKU: "TS-001", Quantity: 1}},
		PaymentMethod:       model.PaymentCash,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	customers := newCustomers(e.db)
	bills, err := customers.Bills(bill.CustomerID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(bills) != 1 || bills[0].ID != bill.ID {
		t.Errorf("expected the customer's single bill, got %d", len(bills))
	}

	if _, err := customers.Bills(uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for unknown customer, got %v", err)
	}
}
