package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
)

type StockInRequest struct {
	BranchID uuid.UUID `json:"branch_id"`
	SKU      string    `json:"sku"`
	Quantity int       `json:"quantity"`
}

type TransferRequest struct {
	FromBranchID uuid.UUID `json:"from_branch_id"`
	ToBranchID   uuid.UUID `json:"to_branch_id"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
}

type TransferResult struct {
	From *model.StockEntry `json:"from"`
	To   *model.StockEntry `json:"to"`
}

type StockService interface {
	StockIn(ctx context.Context, actor Actor, req *StockInRequest) (*model.StockEntry, error)
	Transfer(ctx context.Context, actor Actor, req *TransferRequest) (*TransferResult, error)
	LowStock(threshold int) ([]model.LowStockItem, error)
	GetQuantity(branchID uuid.UUID, sku string) (int, error)
}

type stockService struct {
	db          repository.TxRunner
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	hub         *ws.Hub
}

func NewStockService(
	db repository.TxRunner,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	hub *ws.Hub,
) StockService {
	return &stockService{
		db:          db,
		stockRepo:   stockRepo,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		hub:         hub,
	}
}

// StockIn is the unconditional positive adjust; it creates the ledger entry
// on first stock-in for a (branch, sku) pair.
func (s *stockService) StockIn(ctx context.Context, actor Actor, req *StockInRequest) (*model.StockEntry, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperr.ErrValidation)
	}
	if _, _, err := s.productRepo.FindVariantBySKU(req.SKU); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownSKU, req.SKU)
		}
		return nil, err
	}
	if _, err := s.branchRepo.FindByID(req.BranchID); err != nil {
		return nil, fmt.Errorf("%w: branch %s", apperr.ErrNotFound, req.BranchID)
	}

	var updated *model.StockEntry
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		entry, err := s.stockRepo.LockEntry(tx, req.BranchID, req.SKU)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = &model.StockEntry{BranchID: req.BranchID, SKU: req.SKU, Quantity: req.Quantity}
			if err := s.stockRepo.CreateEntry(tx, entry); err != nil {
				return err
			}
			updated = entry
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.stockRepo.UpdateQuantity(tx, entry.ID, entry.Quantity+req.Quantity); err != nil {
			return err
		}
		entry.Quantity += req.Quantity
		updated = entry
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.broadcastStock("stock_in", req.SKU, req.BranchID, updated.Quantity)
	return updated, nil
}

// Transfer atomically debits the source and credits the destination ledger
// entry. Rows are locked in branch-id order so two transfers crossing in
// opposite directions cannot deadlock.
func (s *stockService) Transfer(ctx context.Context, actor Actor, req *TransferRequest) (*TransferResult, error) {
	if req.FromBranchID == req.ToBranchID {
		return nil, apperr.ErrSameBranch
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperr.ErrValidation)
	}
	if _, _, err := s.productRepo.FindVariantBySKU(req.SKU); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownSKU, req.SKU)
		}
		return nil, err
	}
	for _, branchID := range []uuid.UUID{req.FromBranchID, req.ToBranchID} {
		if _, err := s.branchRepo.FindByID(branchID); err != nil {
			return nil, fmt.Errorf("%w: branch %s", apperr.ErrNotFound, branchID)
		}
	}

	var result *TransferResult
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		order := []uuid.UUID{req.FromBranchID, req.ToBranchID}
		if order[1].String() < order[0].String() {
			order[0], order[1] = order[1], order[0]
		}

		entries := make(map[uuid.UUID]*model.StockEntry, 2)
		for _, branchID := range order {
			entry, err := s.stockRepo.LockEntry(tx, branchID, req.SKU)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if branchID == req.FromBranchID {
					return fmt.Errorf("%w: %s has no stock at source branch", apperr.ErrInsufficientStock, req.SKU)
				}
				entry = &model.StockEntry{BranchID: branchID, SKU: req.SKU, Quantity: 0}
				if err := s.stockRepo.CreateEntry(tx, entry); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			entries[branchID] = entry
		}

		src, dst := entries[req.FromBranchID], entries[req.ToBranchID]
		if src.Quantity < req.Quantity {
			return fmt.Errorf("%w: %s has %d at source, %d requested",
				apperr.ErrInsufficientStock, req.SKU, src.Quantity, req.Quantity)
		}

		if err := s.stockRepo.UpdateQuantity(tx, src.ID, src.Quantity-req.Quantity); err != nil {
			return err
		}
		if err := s.stockRepo.UpdateQuantity(tx, dst.ID, dst.Quantity+req.Quantity); err != nil {
			return err
		}
		src.Quantity -= req.Quantity
		dst.Quantity += req.Quantity

		if err := s.stockRepo.CreateTransfer(tx, &model.StockTransfer{
			SKU:           req.SKU,
			FromBranchID:  req.FromBranchID,
			ToBranchID:    req.ToBranchID,
			Quantity:      req.Quantity,
			TransferredBy: actor.EmployeeID,
		}); err != nil {
			return err
		}

		result = &TransferResult{From: src, To: dst}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.broadcastStock("stock_transfer", req.SKU, req.ToBranchID, result.To.Quantity)
	return result, nil
}

func (s *stockService) LowStock(threshold int) ([]model.LowStockItem, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold cannot be negative", apperr.ErrValidation)
	}
	return s.stockRepo.LowStock(threshold)
}

func (s *stockService) GetQuantity(branchID uuid.UUID, sku string) (int, error) {
	entry, err := s.stockRepo.FindEntry(branchID, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Quantity, nil
}

func (s *stockService) broadcastStock(event, sku string, branchID uuid.UUID, quantity int) {
	if s.hub != nil {
		go s.hub.BroadcastEvent(event, map[string]interface{}{
			"sku":       sku,
			"branch_id": branchID,
			"quantity":  quantity,
		})
	}
}
