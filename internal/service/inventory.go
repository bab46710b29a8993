package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"vendmatic-rest-api/internal/cache"
	"vendmatic-rest-api/internal/model"
	"vendmatic-rest-api/internal/repository"
	"vendmatic-rest-api/pkg/uid"
)

// Validation errors shared by the services.
var (
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// slotListKey is the cache key for the slot listing.
const slotListKey = "slots:list"

// slotLocks hands out one mutex per slot id. Operations on different slots
// never contend; operations on the same slot serialize.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *slotLocks) get(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// InventoryService owns the machine's slots and their concurrency control.
// Every read-check-mutate sequence on a slot must run inside WithSlot so the
// slot's committed mutations form a total order; this is what keeps two
// concurrent buyers from both taking the last unit.
type InventoryService struct {
	repo     repository.VendingRepository
	cache    cache.Cache
	cacheTTL time.Duration
	locks    *slotLocks
}

// NewInventoryService creates a new inventory service.
// cache may be nil to disable listing caching.
// Returns nil if repo is nil (required dependency).
func NewInventoryService(repo repository.VendingRepository, c cache.Cache, cacheTTL time.Duration) *InventoryService {
	if repo == nil {
		return nil
	}
	return &InventoryService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		locks:    newSlotLocks(),
	}
}

// WithSlot runs fn while holding the identified slot's exclusive lock. The
// lock is released on every exit path, including when fn fails. WithSlot
// does not check that the slot exists; fn does its own lookup.
func (s *InventoryService) WithSlot(slotID string, fn func() error) error {
	m := s.locks.get(slotID)
	m.Lock()
	defer m.Unlock()
	return fn()
}

// Repo exposes the backing repository to the sibling services that share
// this service's locking discipline.
func (s *InventoryService) Repo() repository.VendingRepository {
	return s.repo
}

// SlotStatus is a slot together with its current offering, if any.
type SlotStatus struct {
	model.Slot
	ItemName string `json:"item_name,omitempty"`
	Price    int    `json:"price,omitempty"`
}

// CreateSlot registers a new empty slot with a fixed capacity.
func (s *InventoryService) CreateSlot(ctx context.Context, capacity int) (*model.Slot, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	slot := &model.Slot{
		ID:        uid.New(),
		Capacity:  capacity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}

	s.InvalidateListing(ctx)
	return slot, nil
}

// GetSlot returns a slot and its current offering.
func (s *InventoryService) GetSlot(ctx context.Context, slotID string) (*SlotStatus, error) {
	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	status := &SlotStatus{Slot: *slot}
	item, err := s.repo.NextItem(ctx, slotID)
	if err == nil {
		status.ItemName = item.Name
		status.Price = item.Price
	} else if !errors.Is(err, model.ErrItemNotFound) {
		return nil, err
	}
	return status, nil
}

// ListSlots returns all slots, served from cache when possible.
func (s *InventoryService) ListSlots(ctx context.Context) ([]model.Slot, error) {
	if s.cache == nil {
		return s.repo.ListSlots(ctx)
	}

	data, err := s.cache.GetOrSet(ctx, slotListKey, s.cacheTTL, func() ([]byte, error) {
		slots, err := s.repo.ListSlots(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(slots)
	})
	if err != nil {
		return nil, err
	}

	var slots []model.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// DeleteSlot removes a slot. A slot that still holds items is never deleted;
// the caller must empty it first. Ownership is enforced, not cascaded.
func (s *InventoryService) DeleteSlot(ctx context.Context, slotID string) error {
	return s.WithSlot(slotID, func() error {
		slot, err := s.repo.GetSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if !slot.CanDelete() {
			return model.ErrSlotNotEmpty
		}
		if err := s.repo.DeleteSlot(ctx, slotID); err != nil {
			return err
		}
		s.InvalidateListing(ctx)
		return nil
	})
}

// SetPrice updates the price of every item in a slot. Runs under the slot
// lock so a concurrent purchase never charges a price it did not validate.
func (s *InventoryService) SetPrice(ctx context.Context, slotID string, price int) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	return s.WithSlot(slotID, func() error {
		if _, err := s.repo.GetSlot(ctx, slotID); err != nil {
			return err
		}
		return s.repo.UpdateItemPrices(ctx, slotID, price)
	})
}

// InvalidateListing drops the cached slot listing after a mutation.
func (s *InventoryService) InvalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, slotListKey)
	}
}
