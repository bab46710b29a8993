package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vendmatic-rest-api/internal/model"
	"vendmatic-rest-api/pkg/denom"
)

func mustSet(t *testing.T, values []int) *denom.Set {
	t.Helper()
	set, err := denom.New(values)
	if err != nil {
		t.Fatalf("failed to build denomination set: %v", err)
	}
	return set
}

func newPurchaseFixture(t *testing.T, values []int) (*mockVendingRepo, *PurchaseService) {
	t.Helper()
	repo := newMockVendingRepo()
	inv := NewInventoryService(repo, nil, time.Minute)
	svc := NewPurchaseService(inv, mustSet(t, values), 100000)
	if svc == nil {
		t.Fatal("expected non-nil purchase service")
	}
	return repo, svc
}

func TestPurchase_Success(t *testing.T) {
	repo, svc := newPurchaseFixture(t, []int{1, 2, 5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 10, 3, "cola", 47)

	receipt, err := svc.Purchase(context.Background(), "slot-1", 50)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if receipt.ChangeReturned != 3 {
		t.Errorf("expected change 3, got %d", receipt.ChangeReturned)
	}
	if receipt.ChangeBreakdown[2] != 1 || receipt.ChangeBreakdown[1] != 1 {
		t.Errorf("expected breakdown {2:1, 1:1}, got %v", receipt.ChangeBreakdown)
	}
	if receipt.Item != "cola" {
		t.Errorf("expected item cola, got %s", receipt.Item)
	}
	if receipt.RemainingQuantity != 2 {
		t.Errorf("expected remaining 2, got %d", receipt.RemainingQuantity)
	}
	if repo.slotCount("slot-1") != 2 {
		t.Errorf("expected slot count 2, got %d", repo.slotCount("slot-1"))
	}
	if repo.itemCount("slot-1") != 2 {
		t.Errorf("expected 2 items left, got %d", repo.itemCount("slot-1"))
	}
	if len(repo.purchases) != 1 {
		t.Errorf("expected 1 purchase record, got %d", len(repo.purchases))
	}
}

func TestPurchase_ExactCash_NoChange(t *testing.T) {
	repo, svc := newPurchaseFixture(t, []int{1, 2, 5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 10, 1, "water", 20)

	receipt, err := svc.Purchase(context.Background(), "slot-1", 20)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if receipt.ChangeReturned != 0 {
		t.Errorf("expected no change, got %d", receipt.ChangeReturned)
	}
	if len(receipt.ChangeBreakdown) != 0 {
		t.Errorf("expected empty breakdown, got %v", receipt.ChangeBreakdown)
	}
}

func TestPurchase_CannotMakeChange(t *testing.T) {
	// Without a 1-unit coin the machine cannot return 3 in change.
	repo, svc := newPurchaseFixture(t, []int{5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 10, 3, "cola", 47)

	_, err := svc.Purchase(context.Background(), "slot-1", 50)
	if !errors.Is(err, ErrCannotMakeChange) {
		t.Fatalf("expected ErrCannotMakeChange, got: %v", err)
	}
	if repo.slotCount("slot-1") != 3 {
		t.Errorf("expected slot count unchanged at 3, got %d", repo.slotCount("slot-1"))
	}
	if len(repo.purchases) != 0 {
		t.Errorf("expected no purchase record, got %d", len(repo.purchases))
	}
}

func TestPurchase_InsufficientPayment(t *testing.T) {
	repo, svc := newPurchaseFixture(t, []int{1, 2, 5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 10, 3, "cola", 47)

	_, err := svc.Purchase(context.Background(), "slot-1", 30)
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got: %v", err)
	}
	if repo.slotCount("slot-1") != 3 {
		t.Errorf("expected slot count unchanged, got %d", repo.slotCount("slot-1"))
	}
}

func TestPurchase_InvalidDenomination(t *testing.T) {
	// 3 cannot be assembled from {2, 5}, so it could not have been inserted.
	repo, svc := newPurchaseFixture(t, []int{2, 5})
	repo.seedSlot("slot-1", 10, 3, "gum", 1)

	_, err := svc.Purchase(context.Background(), "slot-1", 3)
	if !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("expected ErrInvalidDenomination, got: %v", err)
	}
	if repo.slotCount("slot-1") != 3 {
		t.Errorf("expected slot count unchanged, got %d", repo.slotCount("slot-1"))
	}
}

func TestPurchase_OutOfStock(t *testing.T) {
	repo, svc := newPurchaseFixture(t, []int{1, 2, 5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 10, 1, "cola", 47)
	// Drain the count but leave the catalog entry so the price lookup works.
	repo.mu.Lock()
	slot := repo.slots["slot-1"]
	slot.CurrentItemCount = 0
	repo.slots["slot-1"] = slot
	repo.mu.Unlock()

	_, err := svc.Purchase(context.Background(), "slot-1", 50)
	if !errors.Is(err, model.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got: %v", err)
	}
	if len(repo.purchases) != 0 {
		t.Errorf("expected no purchase record, got %d", len(repo.purchases))
	}
}

func TestPurchase_SlotNotFound(t *testing.T) {
	_, svc := newPurchaseFixture(t, []int{1, 2, 5})

	_, err := svc.Purchase(context.Background(), "missing", 50)
	if !errors.Is(err, model.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got: %v", err)
	}
}

func TestPurchase_AmountTooLarge(t *testing.T) {
	repo := newMockVendingRepo()
	repo.seedSlot("slot-1", 10, 3, "cola", 47)
	inv := NewInventoryService(repo, nil, time.Minute)
	svc := NewPurchaseService(inv, mustSet(t, []int{1, 2, 5}), 100)

	_, err := svc.Purchase(context.Background(), "slot-1", 101)
	if !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got: %v", err)
	}
}

func TestPurchase_Concurrent_LastUnit(t *testing.T) {
	repo, svc := newPurchaseFixture(t, []int{1, 2, 5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 10, 1, "cola", 47)

	var successCount, outOfStockCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), "slot-1", 50)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, model.ErrOutOfStock):
				outOfStockCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
	if outOfStockCount.Load() != 1 {
		t.Errorf("expected exactly 1 out-of-stock, got %d", outOfStockCount.Load())
	}
	if repo.slotCount("slot-1") != 0 {
		t.Errorf("expected final count 0, got %d", repo.slotCount("slot-1"))
	}
}

func TestPurchase_Concurrent_NeverOversells(t *testing.T) {
	initialStock := 5
	totalRequests := 20

	repo, svc := newPurchaseFixture(t, []int{1, 2, 5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 20, initialStock, "cola", 50)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Purchase(context.Background(), "slot-1", 50); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if int(successCount.Load()) != initialStock {
		t.Errorf("expected %d successes, got %d", initialStock, successCount.Load())
	}
	if repo.slotCount("slot-1") != 0 {
		t.Errorf("expected final count 0, got %d", repo.slotCount("slot-1"))
	}
	if len(repo.purchases) != initialStock {
		t.Errorf("expected %d purchase records, got %d", initialStock, len(repo.purchases))
	}
}

func TestRecentPurchases_DefaultLimit(t *testing.T) {
	repo, svc := newPurchaseFixture(t, []int{1, 2, 5, 10, 20, 50, 100})
	repo.seedSlot("slot-1", 10, 2, "cola", 10)

	if _, err := svc.Purchase(context.Background(), "slot-1", 10); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	purchases, err := svc.RecentPurchases(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentPurchases failed: %v", err)
	}
	if len(purchases) != 1 {
		t.Errorf("expected 1 purchase, got %d", len(purchases))
	}
}
