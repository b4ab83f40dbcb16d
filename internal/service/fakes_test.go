package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
)

// memDB is an in-memory stand-in for the Postgres layer. All stores hold
// values, not pointers, so a snapshot is a plain map copy; Transaction takes
// one before the callback and restores it on error, giving the same
// all-or-nothing behavior the services rely on. txMu serializes transactions
// the way row locks do.
type memDB struct {
	mu   sync.Mutex
	txMu sync.Mutex

	branches    map[uuid.UUID]model.Branch
	employees   map[uuid.UUID]model.Employee
	customers   map[uuid.UUID]model.Customer
	products    map[uuid.UUID]model.Product
	variants    map[string]model.Variant
	stock       map[uuid.UUID]model.StockEntry
	transfers   []model.StockTransfer
	bills       map[uuid.UUID]model.Bill
	sequences   map[uuid.UUID]int64
	commissions map[uuid.UUID]model.Commission
}

func newMemDB() *memDB {
	return &memDB{
		branches:    map[uuid.UUID]model.Branch{},
		employees:   map[uuid.UUID]model.Employee{},
		customers:   map[uuid.UUID]model.Customer{},
		products:    map[uuid.UUID]model.Product{},
		variants:    map[string]model.Variant{},
		stock:       map[uuid.UUID]model.StockEntry{},
		bills:       map[uuid.UUID]model.Bill{},
		sequences:   map[uuid.UUID]int64{},
		commissions: map[uuid.UUID]model.Commission{},
	}
}

type memSnapshot struct {
	customers   map[uuid.UUID]model.Customer
	stock       map[uuid.UUID]model.StockEntry
	transfers   []model.StockTransfer
	bills       map[uuid.UUID]model.Bill
	sequences   map[uuid.UUID]int64
	commissions map[uuid.UUID]model.Commission
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *memDB) Transaction(ctx context.Context, fc func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.txMu.Lock()
	defer d.txMu.Unlock()

	d.mu.Lock()
	snap := memSnapshot{
		customers:   copyMap(d.customers),
		stock:       copyMap(d.stock),
		transfers:   append([]model.StockTransfer(nil), d.transfers...),
		bills:       copyMap(d.bills),
		sequences:   copyMap(d.sequences),
		commissions: copyMap(d.commissions),
	}
	d.mu.Unlock()

	if err := fc(nil); err != nil {
		d.mu.Lock()
		d.customers = snap.customers
		d.stock = snap.stock
		d.transfers = snap.transfers
		d.bills = snap.bills
		d.sequences = snap.sequences
		d.commissions = snap.commissions
		d.mu.Unlock()
		return err
	}
	return nil
}

var _ repository.TxRunner = (*memDB)(nil)

// --- seed helpers ---

func (d *memDB) addBranch(name string) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	branch := model.Branch{Name: name, IsActive: true}
	branch.ID = uuid.New()
	d.branches[branch.ID] = branch
	return branch.ID
}

func (d *memDB) addEmployee(username string, role string, branchID uuid.UUID, rate decimal.Decimal) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	employee := model.Employee{
		Username:       username,
		FullName:       username,
		Role:           role,
		BranchID:       branchID,
		CommissionRate: rate,
		IsActive:       true,
	}
	employee.ID = uuid.New()
	d.employees[employee.ID] = employee
	return employee.ID
}

func (d *memDB) addProduct(name string, sku string, price decimal.Decimal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	product := model.Product{Name: name, Category: "test"}
	product.ID = uuid.New()
	d.products[product.ID] = product

	variant := model.Variant{ProductID: product.ID, SKU: sku, Price: price}
	variant.ID = uuid.New()
	d.variants[sku] = variant
}

func (d *memDB) setStock(branchID uuid.UUID, sku string, quantity int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, entry := range d.stock {
		if entry.BranchID == branchID && entry.SKU == sku {
			entry.Quantity = quantity
			d.stock[id] = entry
			return
		}
	}
	entry := model.StockEntry{BranchID: branchID, SKU: sku, Quantity: quantity}
	entry.ID = uuid.New()
	d.stock[entry.ID] = entry
}

func (d *memDB) stockQty(branchID uuid.UUID, sku string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, entry := range d.stock {
		if entry.BranchID == branchID && entry.SKU == sku {
			return entry.Quantity
		}
	}
	return 0
}

// --- fake repositories ---

type memBranchRepo struct{ d *memDB }

func (r memBranchRepo) Create(branch *model.Branch) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	r.d.branches[branch.ID] = *branch
	return nil
}

func (r memBranchRepo) FindAll() ([]model.Branch, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Branch{}
	for _, branch := range r.d.branches {
		out = append(out, branch)
	}
	return out, nil
}

func (r memBranchRepo) FindByID(id uuid.UUID) (*model.Branch, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	branch, ok := r.d.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &branch, nil
}

type memEmployeeRepo struct{ d *memDB }

func (r memEmployeeRepo) Create(employee *model.Employee) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	r.d.employees[employee.ID] = *employee
	return nil
}

func (r memEmployeeRepo) FindByUsername(username string) (*model.Employee, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, employee := range r.d.employees {
		if employee.Username == username && employee.IsActive {
			e := employee
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memEmployeeRepo) FindByID(id uuid.UUID) (*model.Employee, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	employee, ok := r.d.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &employee, nil
}

func (r memEmployeeRepo) FindAll() ([]model.Employee, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Employee{}
	for _, employee := range r.d.employees {
		if employee.IsActive {
			out = append(out, employee)
		}
	}
	return out, nil
}

type memCustomerRepo struct{ d *memDB }

func (r memCustomerRepo) Create(customer *model.Customer) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.customers {
		if existing.PhoneNumber == customer.PhoneNumber {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.d.customers[customer.ID] = *customer
	return nil
}

func (r memCustomerRepo) FindByPhone(phone string) (*model.Customer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, customer := range r.d.customers {
		if customer.PhoneNumber == phone {
			c := customer
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCustomerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	customer, ok := r.d.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &customer, nil
}

func (r memCustomerRepo) FindOrCreateByPhone(_ *gorm.DB, phone string) (*model.Customer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, customer := range r.d.customers {
		if customer.PhoneNumber == phone {
			c := customer
			return &c, nil
		}
	}
	customer := model.Customer{PhoneNumber: phone}
	customer.ID = uuid.New()
	r.d.customers[customer.ID] = customer
	return &customer, nil
}

func (r memCustomerRepo) AddLoyaltyPoints(_ *gorm.DB, id uuid.UUID, points int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	customer, ok := r.d.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	customer.LoyaltyPoints += points
	r.d.customers[id] = customer
	return nil
}

type memProductRepo struct{ d *memDB }

func (r memProductRepo) Create(product *model.Product) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for i := range product.Variants {
		if _, exists := r.d.variants[product.Variants[i].SKU]; exists {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.d.products[product.ID] = *product
	for i := range product.Variants {
		variant := product.Variants[i]
		if variant.ID == uuid.Nil {
			variant.ID = uuid.New()
		}
		variant.ProductID = product.ID
		r.d.variants[variant.SKU] = variant
	}
	return nil
}

func (r memProductRepo) Update(product *model.Product) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.products[product.ID] = *product
	for i := range product.Variants {
		variant := product.Variants[i]
		if variant.ID == uuid.Nil {
			variant.ID = uuid.New()
		}
		variant.ProductID = product.ID
		r.d.variants[variant.SKU] = variant
	}
	return nil
}

func (r memProductRepo) FindAll() ([]model.Product, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Product{}
	for _, product := range r.d.products {
		out = append(out, product)
	}
	return out, nil
}

func (r memProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	product, ok := r.d.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (r memProductRepo) FindByBarcode(code string) (*model.Product, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, variant := range r.d.variants {
		if variant.Barcode != nil && *variant.Barcode == code && !variant.Archived {
			product, ok := r.d.products[variant.ProductID]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return &product, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memProductRepo) FindVariantBySKU(sku string) (*model.Variant, *model.Product, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	variant, ok := r.d.variants[sku]
	if !ok || variant.Archived {
		return nil, nil, gorm.ErrRecordNotFound
	}
	product, ok := r.d.products[variant.ProductID]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	return &variant, &product, nil
}

type memStockRepo struct{ d *memDB }

func (r memStockRepo) FindEntry(branchID uuid.UUID, sku string) (*model.StockEntry, error) {
	return r.LockEntry(nil, branchID, sku)
}

func (r memStockRepo) LockEntry(_ *gorm.DB, branchID uuid.UUID, sku string) (*model.StockEntry, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, entry := range r.d.stock {
		if entry.BranchID == branchID && entry.SKU == sku {
			e := entry
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memStockRepo) CreateEntry(_ *gorm.DB, entry *model.StockEntry) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.d.stock[entry.ID] = *entry
	return nil
}

func (r memStockRepo) UpdateQuantity(_ *gorm.DB, id uuid.UUID, quantity int) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	entry, ok := r.d.stock[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.Quantity = quantity
	r.d.stock[id] = entry
	return nil
}

func (r memStockRepo) CreateTransfer(_ *gorm.DB, transfer *model.StockTransfer) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}
	r.d.transfers = append(r.d.transfers, *transfer)
	return nil
}

func (r memStockRepo) LowStock(threshold int) ([]model.LowStockItem, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var items []model.LowStockItem
	for _, entry := range r.d.stock {
		if entry.Quantity >= threshold {
			continue
		}
		variant, ok := r.d.variants[entry.SKU]
		if !ok {
			continue
		}
		product := r.d.products[variant.ProductID]
		branch := r.d.branches[entry.BranchID]
		items = append(items, model.LowStockItem{
			BranchID:    entry.BranchID,
			BranchName:  branch.Name,
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         entry.SKU,
			Size:        variant.Size,
			Color:       variant.Color,
			Quantity:    entry.Quantity,
		})
	}
	return items, nil
}

type memBillRepo struct{ d *memDB }

func (r memBillRepo) Create(_ *gorm.DB, bill *model.Bill) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	bill.CreatedAt = time.Now()
	for i := range bill.Items {
		if bill.Items[i].ID == uuid.Nil {
			bill.Items[i].ID = uuid.New()
		}
		bill.Items[i].BillID = bill.ID
	}
	r.d.bills[bill.ID] = *bill
	return nil
}

func (r memBillRepo) NextBillNumber(_ *gorm.DB, branchID uuid.UUID) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	n, ok := r.d.sequences[branchID]
	if !ok {
		n = 1
	}
	r.d.sequences[branchID] = n + 1
	return n, nil
}

func (r memBillRepo) FindByID(id uuid.UUID) (*model.Bill, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	bill, ok := r.d.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &bill, nil
}

func (r memBillRepo) LockByID(_ *gorm.DB, id uuid.UUID) (*model.Bill, error) {
	return r.FindByID(id)
}

func (r memBillRepo) FindReturns(_ *gorm.DB, originalBillID uuid.UUID) ([]model.Bill, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Bill{}
	for _, bill := range r.d.bills {
		if bill.RelatedBillID != nil && *bill.RelatedBillID == originalBillID {
			out = append(out, bill)
		}
	}
	return out, nil
}

func (r memBillRepo) FindAll() ([]model.Bill, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Bill{}
	for _, bill := range r.d.bills {
		out = append(out, bill)
	}
	return out, nil
}

func (r memBillRepo) FindByEmployee(employeeID uuid.UUID) ([]model.Bill, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Bill{}
	for _, bill := range r.d.bills {
		if bill.EmployeeID == employeeID {
			out = append(out, bill)
		}
	}
	return out, nil
}

func (r memBillRepo) FindByCustomer(customerID uuid.UUID) ([]model.Bill, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Bill{}
	for _, bill := range r.d.bills {
		if bill.CustomerID == customerID {
			out = append(out, bill)
		}
	}
	return out, nil
}

func (r memBillRepo) UpdateStatus(_ *gorm.DB, id uuid.UUID, status model.BillStatus) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	bill, ok := r.d.bills[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	bill.Status = status
	r.d.bills[id] = bill
	return nil
}

func (r memBillRepo) matches(bill model.Bill, filter repository.ReportFilter) bool {
	if bill.Status != model.BillStatusCompleted {
		return false
	}
	if filter.Start != nil && bill.CreatedAt.Before(*filter.Start) {
		return false
	}
	if filter.End != nil && bill.CreatedAt.After(*filter.End) {
		return false
	}
	if filter.BranchID != nil && bill.BranchID != *filter.BranchID {
		return false
	}
	if filter.EmployeeID != nil && bill.EmployeeID != *filter.EmployeeID {
		return false
	}
	return true
}

func (r memBillRepo) SalesReport(filter repository.ReportFilter) (*repository.SalesReport, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	report := &repository.SalesReport{
		TotalSales:     decimal.Zero,
		TotalDiscount:  decimal.Zero,
		AvgBillValue:   decimal.Zero,
		PaymentMethods: map[string]repository.PaymentMethodTotals{},
	}
	for _, bill := range r.d.bills {
		if !r.matches(bill, filter) {
			continue
		}
		report.TotalSales = report.TotalSales.Add(bill.TotalAmount)
		report.TotalDiscount = report.TotalDiscount.Add(bill.DiscountAmount)
		report.TotalTransactions++

		pm := report.PaymentMethods[string(bill.PaymentMethod)]
		pm.Count++
		pm.Total = pm.Total.Add(bill.TotalAmount)
		report.PaymentMethods[string(bill.PaymentMethod)] = pm
	}
	if report.TotalTransactions > 0 {
		report.AvgBillValue = report.TotalSales.Div(decimal.NewFromInt(report.TotalTransactions)).Round(4)
	}
	return report, nil
}

func (r memBillRepo) DashboardStats(employeeID *uuid.UUID) (*repository.DashboardStats, error) {
	report, err := r.SalesReport(repository.ReportFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	return &repository.DashboardStats{
		TotalSales:        report.TotalSales,
		TotalTransactions: report.TotalTransactions,
		AvgBillValue:      report.AvgBillValue,
	}, nil
}

type memCommissionRepo struct{ d *memDB }

func (r memCommissionRepo) Create(_ *gorm.DB, commission *model.Commission) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.commissions {
		if existing.BillID == commission.BillID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	if commission.ID == uuid.Nil {
		commission.ID = uuid.New()
	}
	r.d.commissions[commission.ID] = *commission
	return nil
}

func (r memCommissionRepo) FindByBillID(billID uuid.UUID) (*model.Commission, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, commission := range r.d.commissions {
		if commission.BillID == billID {
			c := commission
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCommissionRepo) FindByEmployee(employeeID uuid.UUID) ([]model.Commission, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Commission{}
	for _, commission := range r.d.commissions {
		if commission.EmployeeID == employeeID {
			out = append(out, commission)
		}
	}
	return out, nil
}

func (r memCommissionRepo) FindAll() ([]model.Commission, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Commission{}
	for _, commission := range r.d.commissions {
		out = append(out, commission)
	}
	return out, nil
}

func (r memCommissionRepo) MarkPaid(ids []uuid.UUID, at time.Time) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, id := range ids {
		commission, ok := r.d.commissions[id]
		if !ok {
			continue
		}
		commission.Status = model.CommissionPaid
		paidAt := at
		commission.PaidAt = &paidAt
		r.d.commissions[id] = commission
	}
	return nil
}

var (
	_ repository.BranchRepository     = memBranchRepo{}
	_ repository.EmployeeRepository   = memEmployeeRepo{}
	_ repository.CustomerRepository   = memCustomerRepo{}
	_ repository.ProductRepository    = memProductRepo{}
	_ repository.StockRepository      = memStockRepo{}
	_ repository.BillRepository       = memBillRepo{}
	_ repository.CommissionRepository = memCommissionRepo{}
)

type noopNotifier struct{}

func (noopNotifier) BillConfirmation(string, *model.Bill, string) {}

// env bundles everything a service test needs, pre-wired against one memDB.
type env struct {
	db          *memDB
	billing     BillingService
	stock       StockService
	commissions CommissionService
	reports     ReportService

	branchID   uuid.UUID
	employeeID uuid.UUID
	adminID    uuid.UUID
}

func newEnv() *env {
	db := newMemDB()
	branchID := db.addBranch("Main Branch")
	employeeID := db.addEmployee("cashier", model.RoleEmployee, branchID, decimal.NewFromFloat(0.05))
	adminID := db.addEmployee("boss", model.RoleAdmin, branchID, decimal.Zero)

	branchRepo := memBranchRepo{db}
	employeeRepo := memEmployeeRepo{db}
	customerRepo := memCustomerRepo{db}
	productRepo := memProductRepo{db}
	stockRepo := memStockRepo{db}
	billRepo := memBillRepo{db}
	commissionRepo := memCommissionRepo{db}

	commissions := NewCommissionService(db, commissionRepo, billRepo, employeeRepo)
	billing := NewBillingService(
		db, productRepo, stockRepo, billRepo, customerRepo, employeeRepo, branchRepo,
		commissions,
		BillingPolicy{LoyaltyEarnRate: decimal.NewFromInt(1)},
		nil,
		noopNotifier{},
	)

	return &env{
		db:          db,
		billing:     billing,
		stock:       NewStockService(db, stockRepo, productRepo, branchRepo, nil),
		commissions: commissions,
		reports:     NewReportService(billRepo),
		branchID:    branchID,
		employeeID:  employeeID,
		adminID:     adminID,
	}
}

func (e *env) cashier() Actor {
	return Actor{EmployeeID: e.employeeID, Role: model.RoleEmployee, BranchID: e.branchID}
}

func (e *env) admin() Actor {
	return Actor{EmployeeID: e.adminID, Role: model.RoleAdmin, BranchID: e.branchID}
}
