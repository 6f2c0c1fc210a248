package uniswapv2

import "github.com/holiman/uint256"

// MintShares returns the number of pool shares a deposit of (amountA, amountB)
// is worth.
//
// The first deposit into an empty pool mints amountA shares: the first
// provider sets the share-to-reserve rate. Later deposits mint
//
//	min(amountA*totalShares/reserveA, amountB*totalShares/reserveB)
//
// so a deposit off the pool ratio is credited for its smaller side only.
func MintShares(amountA, amountB, reserveA, reserveB, totalShares *uint256.Int) (*uint256.Int, error) {
	if amountA.IsZero() || amountB.IsZero() {
		return nil, ErrInsufficientInput
	}
	if totalShares.IsZero() {
		return amountA.Clone(), nil
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	sharesA, overflow := new(uint256.Int).MulDivOverflow(amountA, totalShares, reserveA)
	if overflow {
		return nil, ErrOverflow
	}
	sharesB, overflow := new(uint256.Int).MulDivOverflow(amountB, totalShares, reserveB)
	if overflow {
		return nil, ErrOverflow
	}
	if sharesA.Lt(sharesB) {
		return sharesA, nil
	}
	return sharesB, nil
}

// RedeemShares returns the reserve amounts paid out for burning shares:
// reserveX*shares/totalShares, rounded down so the pool never pays out more
// than it holds.
func RedeemShares(shares, reserveA, reserveB, totalShares *uint256.Int) (amountA, amountB *uint256.Int, err error) {
	if totalShares.IsZero() {
		return nil, nil, ErrInsufficientLiquidity
	}
	if shares.Gt(totalShares) {
		return nil, nil, ErrInsufficientLiquidity
	}
	// shares <= totalShares keeps both quotients within the reserves.
	amountA, _ = new(uint256.Int).MulDivOverflow(reserveA, shares, totalShares)
	amountB, _ = new(uint256.Int).MulDivOverflow(reserveB, shares, totalShares)
	return amountA, amountB, nil
}
