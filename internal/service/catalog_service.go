package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/cache"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/logger"
	"go-retail-pos/pkg/validator"
)

const productCacheTTL = 30 * time.Second

type CatalogService interface {
	CreateProduct(product *model.Product) error
	UpdateProduct(id uuid.UUID, product *model.Product) (*model.Product, error)
	GetProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	SearchByBarcode(code string) (*model.Product, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	cache       cache.ProductCache
	hub         *ws.Hub
}

func NewCatalogService(productRepo repository.ProductRepository, productCache cache.ProductCache, hub *ws.Hub) CatalogService {
	return &catalogService{productRepo: productRepo, cache: productCache, hub: hub}
}

func (s *catalogService) CreateProduct(product *model.Product) error {
	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on '%s'", apperr.ErrValidation, first.FailedField, first.Tag)
	}
	for _, v := range product.Variants {
		if v.Price.IsNegative() {
			return fmt.Errorf("%w: price for %s cannot be negative", apperr.ErrValidation, v.SKU)
		}
		if existing, _, err := s.productRepo.FindVariantBySKU(v.SKU); err == nil && existing != nil {
			return fmt.Errorf("%w: sku %s already exists", apperr.ErrConflict, v.SKU)
		}
	}

	if err := s.productRepo.Create(product); err != nil {
		return translate(err)
	}

	s.invalidate()
	if s.hub != nil {
		go s.hub.BroadcastEvent("product_created", map[string]interface{}{
			"id":   product.ID,
			"name": product.Name,
		})
	}
	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, translate(err)
	}

	existing.Name = req.Name
	existing.Category = req.Category
	existing.Brand = req.Brand
	existing.Description = req.Description

	// Variants are matched by SKU: updates touch price/size/color/barcode,
	// new SKUs are appended, missing SKUs are archived (never deleted, bill
	// history references them).
	current := make(map[string]*model.Variant, len(existing.Variants))
	for i := range existing.Variants {
		current[existing.Variants[i].SKU] = &existing.Variants[i]
	}
	seen := make(map[string]bool, len(req.Variants))
	for _, v := range req.Variants {
		if v.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price for %s cannot be negative", apperr.ErrValidation, v.SKU)
		}
		seen[v.SKU] = true
		if cur, ok := current[v.SKU]; ok {
			cur.Barcode = v.Barcode
			cur.Size = v.Size
			cur.Color = v.Color
			cur.Price = v.Price
			cur.Archived = false
		} else {
			existing.Variants = append(existing.Variants, model.Variant{
				ProductID: existing.ID,
				SKU:       v.SKU,
				Barcode:   v.Barcode,
				Size:      v.Size,
				Color:     v.Color,
				Price:     v.Price,
			})
		}
	}
	for i := range existing.Variants {
		if !seen[existing.Variants[i].SKU] {
			existing.Variants[i].Archived = true
		}
	}

	if err := s.productRepo.Update(existing); err != nil {
		return nil, translate(err)
	}

	s.invalidate()
	return existing, nil
}

func (s *catalogService) GetProducts(ctx context.Context) ([]model.Product, error) {
	if products, ok, err := s.cache.GetProducts(ctx); err == nil && ok {
		return products, nil
	}

	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetProducts(ctx, products, productCacheTTL); err != nil {
		logger.Get().WithError(err).Warn("product cache write failed")
	}
	return products, nil
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, translate(err)
	}
	return product, nil
}

func (s *catalogService) SearchByBarcode(code string) (*model.Product, error) {
	product, err := s.productRepo.FindByBarcode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no variant with barcode %s", apperr.ErrNotFound, code)
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) invalidate() {
	if err := s.cache.Invalidate(context.Background()); err != nil {
		logger.Get().WithError(err).Warn("product cache invalidation failed")
	}
}
