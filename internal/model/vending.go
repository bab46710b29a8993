package model

import (
	"errors"
	"time"
)

// Domain errors shared by the slot entity, services and repositories.
var (
	// ErrSlotNotFound is returned when a slot id does not exist.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrItemNotFound is returned when a slot has no item to offer.
	ErrItemNotFound = errors.New("slot is not stocked")

	// ErrOutOfStock is returned when a reservation exceeds the current count.
	ErrOutOfStock = errors.New("out of stock")

	// ErrCapacityExceeded is returned when a restock would overflow the slot.
	ErrCapacityExceeded = errors.New("slot capacity exceeded")

	// ErrSlotNotEmpty is returned when deleting a slot that still holds items.
	ErrSlotNotEmpty = errors.New("slot is not empty")
)

// Slot is a physical compartment with a fixed capacity holding zero or more
// units of one item type. ID and Capacity never change after creation;
// CurrentItemCount always satisfies 0 <= count <= capacity.
//
// The mutating methods check-and-mutate in one step and leave the count
// untouched on failure. Callers must hold the slot's lock (see
// service.InventoryService.WithSlot) so no other goroutine observes the
// count between the check and the mutation.
type Slot struct {
	ID               string    `json:"id"`
	Capacity         int       `json:"capacity"`
	CurrentItemCount int       `json:"current_item_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReserveOne removes a single unit. Fails with ErrOutOfStock on an empty slot.
func (s *Slot) ReserveOne() error {
	return s.ReserveMany(1)
}

// ReserveMany removes n units, or fails with ErrOutOfStock leaving the count
// unchanged. There is no partial decrement.
func (s *Slot) ReserveMany(n int) error {
	if s.CurrentItemCount-n < 0 {
		return ErrOutOfStock
	}
	s.CurrentItemCount -= n
	return nil
}

// Restock adds n units, or fails with ErrCapacityExceeded leaving the count
// unchanged.
func (s *Slot) Restock(n int) error {
	if s.CurrentItemCount+n > s.Capacity {
		return ErrCapacityExceeded
	}
	s.CurrentItemCount += n
	return nil
}

// CanDelete reports whether the slot may be removed. A slot that still owns
// items is never deleted; the items would be orphaned.
func (s *Slot) CanDelete() bool {
	return s.CurrentItemCount == 0
}

// Item is a single stocked unit. An item always belongs to exactly one slot
// for its whole lifetime. UpdatedAt is maintained by the repository on every
// mutation; business code never writes it.
type Item struct {
	ID        string    `json:"id"`
	SlotID    string    `json:"slot_id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockEntry describes one line of a bulk stocking request.
type StockEntry struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// Purchase is the audit record of one completed sale.
type Purchase struct {
	ID             string    `json:"id"`
	SlotID         string    `json:"slot_id"`
	ItemID         string    `json:"item_id"`
	ItemName       string    `json:"item_name"`
	Price          int       `json:"price"`
	CashInserted   int       `json:"cash_inserted"`
	ChangeReturned int       `json:"change_returned"`
	CreatedAt      time.Time `json:"created_at"`
}

// Receipt is what a successful purchase returns to the buyer.
type Receipt struct {
	Item              string      `json:"item"`
	Price             int         `json:"price"`
	CashInserted      int         `json:"cash_inserted"`
	ChangeReturned    int         `json:"change_returned"`
	ChangeBreakdown   map[int]int `json:"change_breakdown"`
	RemainingQuantity int         `json:"remaining_quantity"`
	Message           string      `json:"message"`
}
