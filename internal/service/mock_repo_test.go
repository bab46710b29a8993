package service

import (
	"context"
	"sync"
	"time"

	"vendmatic-rest-api/internal/model"
)

// mockVendingRepo is an in-memory VendingRepository for tests.
type mockVendingRepo struct {
	mu        sync.Mutex
	slots     map[string]model.Slot
	items     map[string][]model.Item // per slot, oldest first
	purchases []model.Purchase
}

func newMockVendingRepo() *mockVendingRepo {
	return &mockVendingRepo{
		slots: make(map[string]model.Slot),
		items: make(map[string][]model.Item),
	}
}

// seedSlot installs a slot with count units of the named item.
func (m *mockVendingRepo) seedSlot(id string, capacity, count int, itemName string, price int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[id] = model.Slot{
		ID:               id,
		Capacity:         capacity,
		CurrentItemCount: count,
		CreatedAt:        time.Now().UTC(),
	}
	for i := 0; i < count; i++ {
		m.items[id] = append(m.items[id], model.Item{
			ID:     itemName + "-" + string(rune('a'+i)),
			SlotID: id,
			Name:   itemName,
			Price:  price,
		})
	}
}

func (m *mockVendingRepo) slotCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[id].CurrentItemCount
}

func (m *mockVendingRepo) itemCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items[id])
}

func (m *mockVendingRepo) CreateSlot(ctx context.Context, slot *model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot.ID] = *slot
	return nil
}

func (m *mockVendingRepo) GetSlot(ctx context.Context, id string) (*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	copied := slot
	return &copied, nil
}

func (m *mockVendingRepo) ListSlots(ctx context.Context) ([]model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots := make([]model.Slot, 0, len(m.slots))
	for _, slot := range m.slots {
		slots = append(slots, slot)
	}
	return slots, nil
}

func (m *mockVendingRepo) DeleteSlot(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[id]; !ok {
		return model.ErrSlotNotFound
	}
	delete(m.slots, id)
	delete(m.items, id)
	return nil
}

func (m *mockVendingRepo) NextItem(ctx context.Context, slotID string) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[slotID]
	if len(items) == 0 {
		return nil, model.ErrItemNotFound
	}
	copied := items[0]
	return &copied, nil
}

func (m *mockVendingRepo) StockItems(ctx context.Context, slotID string, items []model.Item, newCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[slotID] = append(m.items[slotID], items...)
	slot := m.slots[slotID]
	slot.CurrentItemCount = newCount
	m.slots[slotID] = slot
	return nil
}

func (m *mockVendingRepo) UpdateItemPrices(ctx context.Context, slotID string, price int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	items := m.items[slotID]
	for i := range items {
		items[i].Price = price
		items[i].UpdatedAt = now
	}
	return nil
}

func (m *mockVendingRepo) CommitPurchase(ctx context.Context, p model.Purchase, newCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.items[p.SlotID]
	for i, item := range items {
		if item.ID == p.ItemID {
			m.items[p.SlotID] = append(items[:i], items[i+1:]...)
			break
		}
	}
	slot := m.slots[p.SlotID]
	slot.CurrentItemCount = newCount
	m.slots[p.SlotID] = slot
	m.purchases = append(m.purchases, p)
	return nil
}

func (m *mockVendingRepo) RecentPurchases(ctx context.Context, limit int) ([]model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Purchase, 0, limit)
	for i := len(m.purchases) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.purchases[i])
	}
	return out, nil
}

func (m *mockVendingRepo) DeletePurchasesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.purchases[:0]
	var deleted int64
	for _, p := range m.purchases {
		if p.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	m.purchases = kept
	return deleted, nil
}

func (m *mockVendingRepo) Stats(ctx context.Context) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]interface{}{
		"total_slots":     int64(len(m.slots)),
		"total_purchases": int64(len(m.purchases)),
	}, nil
}

func (m *mockVendingRepo) Close() error { return nil }
