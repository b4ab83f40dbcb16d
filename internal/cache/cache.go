package cache

import (
	"context"
	"time"

	"go-retail-pos/internal/model"
)

// ProductCache is a read-through cache for the catalog list, the hottest
// read on a POS terminal. Writes to the catalog or the stock ledger
// invalidate it.
type ProductCache interface {
	GetProducts(ctx context.Context) ([]model.Product, bool, error)
	SetProducts(ctx context.Context, products []model.Product, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopProductCache struct{}

func (NoopProductCache) GetProducts(_ context.Context) ([]model.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) SetProducts(_ context.Context, _ []model.Product, _ time.Duration) error {
	return nil
}

func (NoopProductCache) Invalidate(_ context.Context) error {
	return nil
}
