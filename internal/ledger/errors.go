package ledger

import "errors"

var (
	// ErrInsufficientBalance is returned when an account holds less than the
	// amount it is asked to move.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAuthorization is returned when a spender moves more than
	// the owner approved it for.
	ErrInsufficientAuthorization = errors.New("insufficient allowance")

	ErrZeroAddress = errors.New("zero address")
	ErrOverflow    = errors.New("balance overflow")
)
