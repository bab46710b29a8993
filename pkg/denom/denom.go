// Package denom implements representability and change-making over a fixed
// set of currency denominations.
package denom

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotRepresentable indicates the amount cannot be composed from the set.
var ErrNotRepresentable = errors.New("amount not representable by denomination set")

// Set is a fixed collection of accepted denominations, in smallest-unit values.
// A Set is immutable after construction and safe for concurrent use.
type Set struct {
	values []int // ascending, no duplicates
}

// New validates and builds a denomination set. Values must be positive and
// unique; the set must be non-empty. A set without a 1-unit denomination is
// legal, it just makes more amounts unrepresentable.
func New(values []int) (*Set, error) {
	if len(values) == 0 {
		return nil, errors.New("denomination set must not be empty")
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	for i, v := range sorted {
		if v <= 0 {
			return nil, fmt.Errorf("denomination must be positive, got %d", v)
		}
		if i > 0 && sorted[i-1] == v {
			return nil, fmt.Errorf("duplicate denomination %d", v)
		}
	}

	return &Set{values: sorted}, nil
}

// Values returns the denominations in ascending order.
func (s *Set) Values() []int {
	out := make([]int, len(s.values))
	copy(out, s.values)
	return out
}

// IsRepresentable reports whether amount can be written as a non-negative
// integer combination of the set's denominations. Zero is representable by
// the empty combination.
//
// Computed by bottom-up reachability over [0, amount]. Checking
// amount % d == 0 per denomination is wrong for any set with more than one
// value: 7 is representable from {2, 5} even though neither 7%2 nor 7%5 is
// zero.
func (s *Set) IsRepresentable(amount int) bool {
	if amount < 0 {
		return false
	}
	if amount == 0 {
		return true
	}

	reachable := make([]bool, amount+1)
	reachable[0] = true
	for _, d := range s.values {
		for sum := d; sum <= amount; sum++ {
			if reachable[sum-d] {
				reachable[sum] = true
			}
		}
	}
	return reachable[amount]
}

// MinimalBreakdown returns a denomination->count combination summing to
// amount with the minimum total number of coins. Returns ErrNotRepresentable
// when no combination exists.
//
// Minimum-coin-change DP with backtracking. Greedy-from-largest agrees with
// this for canonical sets like {1,2,5,10,20,50,100} but is wrong in general
// (greedy picks 6+1+1+1 for 9 from {6,5,3,1}; the optimum is 6+3), so the
// set being reconfigurable forces the DP.
func (s *Set) MinimalBreakdown(amount int) (map[int]int, error) {
	if amount < 0 {
		return nil, ErrNotRepresentable
	}
	if amount == 0 {
		return map[int]int{}, nil
	}

	const unreachable = -1

	// coins[sum] = minimum coin count to reach sum; pick[sum] = last
	// denomination used in one optimal combination for sum.
	coins := make([]int, amount+1)
	pick := make([]int, amount+1)
	for i := 1; i <= amount; i++ {
		coins[i] = unreachable
	}

	for sum := 1; sum <= amount; sum++ {
		for _, d := range s.values {
			if d > sum || coins[sum-d] == unreachable {
				continue
			}
			if coins[sum] == unreachable || coins[sum-d]+1 < coins[sum] {
				coins[sum] = coins[sum-d] + 1
				pick[sum] = d
			}
		}
	}

	if coins[amount] == unreachable {
		return nil, ErrNotRepresentable
	}

	breakdown := make(map[int]int)
	for sum := amount; sum > 0; sum -= pick[sum] {
		breakdown[pick[sum]]++
	}
	return breakdown, nil
}
