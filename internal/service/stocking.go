package service

import (
	"context"

	"vendmatic-rest-api/internal/model"
	"vendmatic-rest-api/pkg/uid"
)

// StockingService loads items into slots. A bulk stocking is all-or-nothing:
// either every entry fits and is persisted, or nothing changes.
type StockingService struct {
	inv *InventoryService
}

// NewStockingService creates a new stocking service.
// Returns nil if inv is nil (required dependency).
func NewStockingService(inv *InventoryService) *StockingService {
	if inv == nil {
		return nil
	}
	return &StockingService{inv: inv}
}

// BulkAdd stocks the given entries into a slot and returns how many units
// were added. Capacity is checked against the combined total before anything
// is persisted, so a batch whose entries fit individually but overflow
// together is rejected whole.
func (s *StockingService) BulkAdd(ctx context.Context, slotID string, entries []model.StockEntry) (int, error) {
	if len(entries) == 0 {
		return 0, ErrInvalidQuantity
	}

	total := 0
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			return 0, ErrInvalidQuantity
		}
		if entry.Price <= 0 {
			return 0, ErrInvalidPrice
		}
		total += entry.Quantity
	}

	err := s.inv.WithSlot(slotID, func() error {
		repo := s.inv.Repo()

		slot, err := repo.GetSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if err := slot.Restock(total); err != nil {
			return err
		}

		items := make([]model.Item, 0, total)
		for _, entry := range entries {
			for i := 0; i < entry.Quantity; i++ {
				items = append(items, model.Item{
					ID:     uid.New(),
					SlotID: slotID,
					Name:   entry.Name,
					Price:  entry.Price,
				})
			}
		}

		return repo.StockItems(ctx, slotID, items, slot.CurrentItemCount)
	})
	if err != nil {
		return 0, err
	}

	s.inv.InvalidateListing(ctx)
	return total, nil
}
