package repository

import (
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	FindEntry(branchID uuid.UUID, sku string) (*model.StockEntry, error)
	// LockEntry takes the row lock that serializes every mutation of one
	// (branch, sku) key. Returns gorm.ErrRecordNotFound when absent.
	LockEntry(tx *gorm.DB, branchID uuid.UUID, sku string) (*model.StockEntry, error)
	CreateEntry(tx *gorm.DB, entry *model.StockEntry) error
	UpdateQuantity(tx *gorm.DB, id uuid.UUID, quantity int) error
	CreateTransfer(tx *gorm.DB, transfer *model.StockTransfer) error
	LowStock(threshold int) ([]model.LowStockItem, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) FindEntry(branchID uuid.UUID, sku string) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := r.db.First(&entry, "branch_id = ? AND sku = ?", branchID, sku).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockRepo) LockEntry(tx *gorm.DB, branchID uuid.UUID, sku string) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entry, "branch_id = ? AND sku = ?", branchID, sku).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockRepo) CreateEntry(tx *gorm.DB, entry *model.StockEntry) error {
	return tx.Create(entry).Error
}

func (r *stockRepo) UpdateQuantity(tx *gorm.DB, id uuid.UUID, quantity int) error {
	return tx.Model(&model.StockEntry{}).Where("id = ?", id).Update("quantity", quantity).Error
}

func (r *stockRepo) CreateTransfer(tx *gorm.DB, transfer *model.StockTransfer) error {
	return tx.Create(transfer).Error
}

func (r *stockRepo) LowStock(threshold int) ([]model.LowStockItem, error) {
	var items []model.LowStockItem

	rows, err := r.db.Model(&model.StockEntry{}).
		Select(`stock_entries.branch_id, branches.name, variants.product_id,
			products.name, stock_entries.sku, variants.size, variants.color,
			stock_entries.quantity`).
		Joins("JOIN branches ON branches.id = stock_entries.branch_id").
		Joins("JOIN variants ON variants.sku = stock_entries.sku").
		Joins("JOIN products ON products.id = variants.product_id").
		Where("stock_entries.quantity < ?", threshold).
		Order("stock_entries.quantity ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item model.LowStockItem
		if err := rows.Scan(&item.BranchID, &item.BranchName, &item.ProductID,
			&item.ProductName, &item.SKU, &item.Size, &item.Color, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
