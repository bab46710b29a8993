package service

import (
	"context"
	"errors"
	"time"

	"vendmatic-rest-api/internal/model"
	"vendmatic-rest-api/pkg/denom"
	"vendmatic-rest-api/pkg/uid"
)

// Purchase failure modes. All of them leave machine state untouched.
var (
	ErrInsufficientPayment = errors.New("inserted cash does not cover the price")
	ErrInvalidDenomination = errors.New("inserted cash is not composable from accepted denominations")
	ErrCannotMakeChange    = errors.New("change cannot be returned with accepted denominations")
	ErrAmountTooLarge      = errors.New("inserted cash exceeds the transaction limit")
)

// PurchaseService settles purchase transactions: it verifies funds, checks
// stock, computes change and commits the inventory decrement.
type PurchaseService struct {
	inv            *InventoryService
	denoms         *denom.Set
	maxTransaction int
}

// NewPurchaseService creates a new purchase service.
// Returns nil if inv or denoms is nil (required dependencies).
func NewPurchaseService(inv *InventoryService, denoms *denom.Set, maxTransaction int) *PurchaseService {
	if inv == nil || denoms == nil {
		return nil
	}
	return &PurchaseService{
		inv:            inv,
		denoms:         denoms,
		maxTransaction: maxTransaction,
	}
}

// Purchase sells one unit from the slot for cashInserted and returns a
// receipt with the minimal change breakdown.
//
// The whole sequence runs inside the slot's critical section, so the price
// read, the stock check and the decrement are atomic with respect to every
// other operation on the same slot. All validation happens before the single
// mutating store call; any failure leaves state exactly as it was.
func (s *PurchaseService) Purchase(ctx context.Context, slotID string, cashInserted int) (*model.Receipt, error) {
	if cashInserted <= 0 {
		return nil, ErrInvalidDenomination
	}
	if s.maxTransaction > 0 && cashInserted > s.maxTransaction {
		return nil, ErrAmountTooLarge
	}

	var receipt *model.Receipt
	err := s.inv.WithSlot(slotID, func() error {
		repo := s.inv.Repo()

		slot, err := repo.GetSlot(ctx, slotID)
		if err != nil {
			return err
		}
		item, err := repo.NextItem(ctx, slotID)
		if err != nil {
			return err
		}

		if cashInserted < item.Price {
			return ErrInsufficientPayment
		}
		if !s.denoms.IsRepresentable(cashInserted) {
			return ErrInvalidDenomination
		}

		change := cashInserted - item.Price
		if change > 0 && !s.denoms.IsRepresentable(change) {
			return ErrCannotMakeChange
		}

		// Stock is the final gate: everything about the payment is already
		// known to be good, so a failure here mutates nothing either.
		if err := slot.ReserveOne(); err != nil {
			return err
		}

		breakdown := map[int]int{}
		if change > 0 {
			// Representable per the check above; the DP cannot fail here.
			breakdown, err = s.denoms.MinimalBreakdown(change)
			if err != nil {
				return err
			}
		}

		purchase := model.Purchase{
			ID:             uid.New(),
			SlotID:         slotID,
			ItemID:         item.ID,
			ItemName:       item.Name,
			Price:          item.Price,
			CashInserted:   cashInserted,
			ChangeReturned: change,
			CreatedAt:      time.Now().UTC(),
		}
		if err := repo.CommitPurchase(ctx, purchase, slot.CurrentItemCount); err != nil {
			return err
		}

		receipt = &model.Receipt{
			Item:              item.Name,
			Price:             item.Price,
			CashInserted:      cashInserted,
			ChangeReturned:    change,
			ChangeBreakdown:   breakdown,
			RemainingQuantity: slot.CurrentItemCount,
			Message:           "Purchase successful",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.inv.InvalidateListing(ctx)
	return receipt, nil
}

// RecentPurchases returns the newest purchase records.
func (s *PurchaseService) RecentPurchases(ctx context.Context, limit int) ([]model.Purchase, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.inv.Repo().RecentPurchases(ctx, limit)
}
