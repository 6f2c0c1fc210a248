package uniswapv2

import "errors"

var (
	ErrInsufficientInput     = errors.New("insufficient input amount")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrOverflow              = errors.New("uint256 overflow")
)
