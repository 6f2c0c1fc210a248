package pool

import "errors"

var (
	// ErrInvalidAmount is returned for zero or otherwise unusable quantities,
	// including deposits too small to mint a share and swaps whose output
	// rounds down to nothing.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientShares is returned when a withdrawal exceeds the
	// caller's share balance.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrEmptyPool is returned by price-dependent calls on a pool without
	// liquidity.
	ErrEmptyPool = errors.New("pool has no liquidity")

	// ErrInvalidAccount is returned when the caller is the zero address or
	// the pool itself.
	ErrInvalidAccount = errors.New("invalid account")

	ErrOverflow          = errors.New("arithmetic overflow")
	ErrInvariantViolated = errors.New("constant product invariant violated")
	ErrUnknownAsset      = errors.New("unknown asset")
)
