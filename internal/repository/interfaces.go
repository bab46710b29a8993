package repository

import (
	"context"
	"time"

	"vendmatic-rest-api/internal/model"
)

// VendingRepository defines data access for slots, items and the purchase log.
//
// Every method is atomic on its own: it either fully applies or leaves prior
// state unchanged. Logical consistency across a read-check-write sequence is
// the caller's job (the service layer serializes per slot).
type VendingRepository interface {
	// CreateSlot inserts a new empty slot.
	CreateSlot(ctx context.Context, slot *model.Slot) error

	// GetSlot retrieves a slot by id. Returns model.ErrSlotNotFound if absent.
	GetSlot(ctx context.Context, id string) (*model.Slot, error)

	// ListSlots returns all slots ordered by creation time.
	ListSlots(ctx context.Context) ([]model.Slot, error)

	// DeleteSlot removes a slot by id. Returns model.ErrSlotNotFound if absent.
	// The caller must have verified the slot is empty.
	DeleteSlot(ctx context.Context, id string) error

	// NextItem returns the oldest item stocked in the slot, which is the
	// slot's current offering. Returns model.ErrItemNotFound when empty.
	NextItem(ctx context.Context, slotID string) (*model.Item, error)

	// StockItems inserts the items and writes the slot's new count as one
	// transaction. Partial application is never visible.
	StockItems(ctx context.Context, slotID string, items []model.Item, newCount int) error

	// UpdateItemPrices sets the price of every item in the slot and advances
	// their updated_at timestamps.
	UpdateItemPrices(ctx context.Context, slotID string, price int) error

	// CommitPurchase removes the dispensed item, writes the slot's new count
	// and appends the purchase record as one transaction.
	CommitPurchase(ctx context.Context, p model.Purchase, newCount int) error

	// RecentPurchases returns the newest purchase records, newest first.
	RecentPurchases(ctx context.Context, limit int) ([]model.Purchase, error)

	// DeletePurchasesBefore purges purchase records older than cutoff and
	// returns how many were removed.
	DeletePurchasesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Stats returns statistics about the vending database.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}
