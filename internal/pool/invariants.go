package pool

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrCorruptState is returned by CheckInvariants.
var ErrCorruptState = errors.New("pool state corrupt")

// CheckInvariants verifies that provider shares add up to the total supply
// and that reserves and shares are either all zero or all positive.
func (e *Engine) CheckInvariants() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sum := new(uint256.Int)
	for account, s := range e.shares {
		if s.IsZero() {
			return fmt.Errorf("%w: zero share entry for %s", ErrCorruptState, account.Hex())
		}
		if _, overflow := sum.AddOverflow(sum, s); overflow {
			return fmt.Errorf("%w: share sum overflows", ErrCorruptState)
		}
	}
	if !sum.Eq(&e.totalShares) {
		return fmt.Errorf("%w: shares sum to %s, total is %s", ErrCorruptState, sum.Dec(), e.totalShares.Dec())
	}

	emptyA, emptyB, emptyT := e.reserveA.IsZero(), e.reserveB.IsZero(), e.totalShares.IsZero()
	if emptyA != emptyB || emptyB != emptyT {
		return fmt.Errorf("%w: reserves (%s, %s) with %s shares", ErrCorruptState, e.reserveA.Dec(), e.reserveB.Dec(), e.totalShares.Dec())
	}
	return nil
}
