package model

import (
	"errors"
	"testing"
)

func TestSlot_ReserveOne(t *testing.T) {
	slot := Slot{ID: "s1", Capacity: 3, CurrentItemCount: 1}

	if err := slot.ReserveOne(); err != nil {
		t.Fatalf("expected reserve to succeed, got: %v", err)
	}
	if slot.CurrentItemCount != 0 {
		t.Errorf("expected count 0, got %d", slot.CurrentItemCount)
	}

	if err := slot.ReserveOne(); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock on empty slot, got: %v", err)
	}
	if slot.CurrentItemCount != 0 {
		t.Errorf("failed reserve must not change count, got %d", slot.CurrentItemCount)
	}
}

func TestSlot_ReserveMany_NoPartialDecrement(t *testing.T) {
	slot := Slot{ID: "s1", Capacity: 5, CurrentItemCount: 2}

	if err := slot.ReserveMany(3); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got: %v", err)
	}
	if slot.CurrentItemCount != 2 {
		t.Errorf("expected count unchanged at 2, got %d", slot.CurrentItemCount)
	}

	if err := slot.ReserveMany(2); err != nil {
		t.Fatalf("expected reserve to succeed, got: %v", err)
	}
	if slot.CurrentItemCount != 0 {
		t.Errorf("expected count 0, got %d", slot.CurrentItemCount)
	}
}

func TestSlot_Restock(t *testing.T) {
	slot := Slot{ID: "s1", Capacity: 5, CurrentItemCount: 3}

	if err := slot.Restock(3); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got: %v", err)
	}
	if slot.CurrentItemCount != 3 {
		t.Errorf("failed restock must not change count, got %d", slot.CurrentItemCount)
	}

	if err := slot.Restock(2); err != nil {
		t.Fatalf("expected restock to succeed, got: %v", err)
	}
	if slot.CurrentItemCount != 5 {
		t.Errorf("expected count 5, got %d", slot.CurrentItemCount)
	}
}

func TestSlot_InvariantHoldsUnderMixedOps(t *testing.T) {
	slot := Slot{ID: "s1", Capacity: 4}

	ops := []func() error{
		func() error { return slot.Restock(4) },
		func() error { return slot.ReserveOne() },
		func() error { return slot.Restock(2) },   // would overflow, must fail
		func() error { return slot.ReserveMany(3) },
		func() error { return slot.ReserveOne() }, // empty, must fail
		func() error { return slot.Restock(1) },
	}
	for i, op := range ops {
		_ = op()
		if slot.CurrentItemCount < 0 || slot.CurrentItemCount > slot.Capacity {
			t.Fatalf("invariant violated after op %d: count=%d capacity=%d",
				i, slot.CurrentItemCount, slot.Capacity)
		}
	}
	if slot.CurrentItemCount != 1 {
		t.Errorf("expected final count 1, got %d", slot.CurrentItemCount)
	}
}

func TestSlot_CanDelete(t *testing.T) {
	slot := Slot{ID: "s1", Capacity: 3, CurrentItemCount: 1}
	if slot.CanDelete() {
		t.Error("stocked slot must not be deletable")
	}

	slot.CurrentItemCount = 0
	if !slot.CanDelete() {
		t.Error("empty slot must be deletable")
	}
}
