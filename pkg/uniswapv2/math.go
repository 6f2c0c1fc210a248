// Package uniswapv2 implements the Uniswap V2 constant-product pool math on
// 256-bit unsigned integers.
package uniswapv2

import (
	"math/big"

	"github.com/holiman/uint256"
)

// fee: 0.3% => multiplier 997/1000
const (
	FeeNumerator   = 997
	FeeDenominator = 1000
)

var (
	feeMul = big.NewInt(FeeNumerator)
	feeDen = big.NewInt(FeeDenominator)

	feeMul256 = uint256.NewInt(FeeNumerator)
	feeDen256 = uint256.NewInt(FeeDenominator)
)

// GetAmountOut returns the output amount of a swap of amountIn against the
// given reserves, keeping 0.3% of the input in the pool:
//
//	amountOut = amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997)
//
// The numerator is evaluated with a 512-bit intermediate, so only results
// (or denominators) that do not fit in 256 bits report ErrOverflow.
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, ErrInsufficientInput
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	amountInWithFee, overflow := new(uint256.Int).MulOverflow(amountIn, feeMul256)
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).MulOverflow(reserveIn, feeDen256)
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = denominator.AddOverflow(denominator, amountInWithFee); overflow {
		return nil, ErrOverflow
	}

	// amountOut < reserveOut, so the quotient always fits.
	amountOut, _ := new(uint256.Int).MulDivOverflow(amountInWithFee, reserveOut, denominator)
	return amountOut, nil
}

// InvariantHolds reports whether a swap of amountIn for amountOut keeps the
// fee-adjusted constant product from decreasing:
//
//	(reserveIn*1000 + amountIn*997) * (reserveOut - amountOut) >= reserveIn*reserveOut*1000
//
// Products are taken on big.Int because they routinely exceed 256 bits.
func InvariantHolds(amountIn, amountOut, reserveIn, reserveOut *uint256.Int) bool {
	if amountOut.Gt(reserveOut) {
		return false
	}

	adjustedIn := new(big.Int).Mul(reserveIn.ToBig(), feeDen)
	adjustedIn.Add(adjustedIn, new(big.Int).Mul(amountIn.ToBig(), feeMul))
	remainingOut := new(big.Int).Sub(reserveOut.ToBig(), amountOut.ToBig())
	after := adjustedIn.Mul(adjustedIn, remainingOut)

	before := new(big.Int).Mul(reserveIn.ToBig(), reserveOut.ToBig())
	before.Mul(before, feeDen)

	return after.Cmp(before) >= 0
}

// Product returns x*y without truncation.
func Product(x, y *uint256.Int) *big.Int {
	return new(big.Int).Mul(x.ToBig(), y.ToBig())
}
