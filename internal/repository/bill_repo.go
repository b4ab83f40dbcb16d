package repository

import (
	"errors"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportFilter narrows the sales report. Nil fields mean "all".
type ReportFilter struct {
	Start      *time.Time
	End        *time.Time
	BranchID   *uuid.UUID
	EmployeeID *uuid.UUID
}

type PaymentMethodTotals struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type SalesReport struct {
	TotalSales        decimal.Decimal                `json:"total_sales"`
	TotalTransactions int64                          `json:"total_transactions"`
	TotalDiscount     decimal.Decimal                `json:"total_discount"`
	AvgBillValue      decimal.Decimal                `json:"avg_bill_value"`
	PaymentMethods    map[string]PaymentMethodTotals `json:"payment_methods"`
}

type DashboardStats struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int64           `json:"total_transactions"`
	AvgBillValue      decimal.Decimal `json:"avg_bill_value"`
}

type BillRepository interface {
	Create(tx *gorm.DB, bill *model.Bill) error
	// NextBillNumber hands out the branch's next sequence number while
	// holding the sequence row FOR UPDATE, so numbers are gapless per
	// committed transaction and never reused.
	NextBillNumber(tx *gorm.DB, branchID uuid.UUID) (int64, error)
	FindByID(id uuid.UUID) (*model.Bill, error)
	// LockByID loads a bill with its items while holding its row FOR UPDATE,
	// serializing concurrent returns against the same bill.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Bill, error)
	// FindReturns loads the return bills already issued against an original,
	// items included.
	FindReturns(tx *gorm.DB, originalBillID uuid.UUID) ([]model.Bill, error)
	FindAll() ([]model.Bill, error)
	FindByEmployee(employeeID uuid.UUID) ([]model.Bill, error)
	FindByCustomer(customerID uuid.UUID) ([]model.Bill, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.BillStatus) error
	SalesReport(filter ReportFilter) (*SalesReport, error)
	DashboardStats(employeeID *uuid.UUID) (*DashboardStats, error)
}

type billRepo struct {
	db *gorm.DB
}

func NewBillRepo(db *gorm.DB) BillRepository {
	return &billRepo{db}
}

func (r *billRepo) Create(tx *gorm.DB, bill *model.Bill) error {
	return tx.Create(bill).Error
}

func (r *billRepo) NextBillNumber(tx *gorm.DB, branchID uuid.UUID) (int64, error) {
	var seq model.BillSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "branch_id = ?", branchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = model.BillSequence{BranchID: branchID, NextNumber: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	n := seq.NextNumber
	if err := tx.Model(&model.BillSequence{}).
		Where("branch_id = ?", branchID).
		Update("next_number", n+1).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *billRepo) FindByID(id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	err := r.db.Preload("Items").Preload("Customer").Preload("Employee").
		First(&bill, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("bill_id = ?", id).Find(&bill.Items).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepo) FindReturns(tx *gorm.DB, originalBillID uuid.UUID) ([]model.Bill, error) {
	var bills []model.Bill
	err := tx.Preload("Items").Where("related_bill_id = ?", originalBillID).Find(&bills).Error
	return bills, err
}

func (r *billRepo) FindAll() ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.Preload("Items").Order("created_at DESC").Find(&bills).Error
	return bills, err
}

func (r *billRepo) FindByEmployee(employeeID uuid.UUID) ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.Preload("Items").Where("employee_id = ?", employeeID).
		Order("created_at DESC").Find(&bills).Error
	return bills, err
}

func (r *billRepo) FindByCustomer(customerID uuid.UUID) ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.Preload("Items").Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&bills).Error
	return bills, err
}

func (r *billRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.BillStatus) error {
	return tx.Model(&model.Bill{}).Where("id = ?", id).Update("status", status).Error
}

func (r *billRepo) reportQuery(filter ReportFilter) *gorm.DB {
	q := r.db.Model(&model.Bill{}).Where("status = ?", model.BillStatusCompleted)
	if filter.Start != nil {
		q = q.Where("created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("created_at <= ?", *filter.End)
	}
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	return q
}

func (r *billRepo) SalesReport(filter ReportFilter) (*SalesReport, error) {
	report := &SalesReport{
		TotalSales:     decimal.Zero,
		TotalDiscount:  decimal.Zero,
		AvgBillValue:   decimal.Zero,
		PaymentMethods: map[string]PaymentMethodTotals{},
	}

	var totals struct {
		TotalSales    decimal.Decimal
		TotalDiscount decimal.Decimal
		Count         int64
	}
	err := r.reportQuery(filter).
		Select(`COALESCE(SUM(total_amount), 0) as total_sales,
			COALESCE(SUM(discount_amount), 0) as total_discount,
			COUNT(*) as count`).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	report.TotalSales = totals.TotalSales
	report.TotalDiscount = totals.TotalDiscount
	report.TotalTransactions = totals.Count
	if totals.Count > 0 {
		report.AvgBillValue = totals.TotalSales.Div(decimal.NewFromInt(totals.Count)).Round(4)
	}

	rows, err := r.reportQuery(filter).
		Select("payment_method, COUNT(*), COALESCE(SUM(total_amount), 0)").
		Group("payment_method").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var pm PaymentMethodTotals
		if err := rows.Scan(&method, &pm.Count, &pm.Total); err != nil {
			return nil, err
		}
		report.PaymentMethods[method] = pm
	}
	return report, rows.Err()
}

func (r *billRepo) DashboardStats(employeeID *uuid.UUID) (*DashboardStats, error) {
	filter := ReportFilter{EmployeeID: employeeID}

	var totals struct {
		TotalSales decimal.Decimal
		Count      int64
	}
	err := r.reportQuery(filter).
		Select("COALESCE(SUM(total_amount), 0) as total_sales, COUNT(*) as count").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalSales:        totals.TotalSales,
		TotalTransactions: totals.Count,
		AvgBillValue:      decimal.Zero,
	}
	if totals.Count > 0 {
		stats.AvgBillValue = totals.TotalSales.Div(decimal.NewFromInt(totals.Count)).Round(4)
	}
	return stats, nil
}
