package repository

import (
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByBarcode(code string) (*model.Product, error)
	// FindVariantBySKU resolves a sellable (non-archived) variant and its
	// owning product.
	FindVariantBySKU(sku string) (*model.Variant, *model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Variants", "archived = ?", false).Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Variants").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(code string) (*model.Product, error) {
	var variant model.Variant
	if err := r.db.First(&variant, "barcode = ? AND archived = ?", code, false).Error; err != nil {
		return nil, err
	}
	return r.FindByID(variant.ProductID)
}

func (r *productRepo) FindVariantBySKU(sku string) (*model.Variant, *model.Product, error) {
	var variant model.Variant
	if err := r.db.First(&variant, "sku = ? AND archived = ?", sku, false).Error; err != nil {
		return nil, nil, err
	}
	var product model.Product
	if err := r.db.First(&product, "id = ?", variant.ProductID).Error; err != nil {
		return nil, nil, err
	}
	return &variant, &product, nil
}
