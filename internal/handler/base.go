// Package handler defines HTTP request handlers and related utilities.
package handler

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}

func parseAddress(field, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, NewAddressRequired(field)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, NewInvalidAddress(field)
	}
	return common.HexToAddress(s), nil
}

// parseAmount reads a positive base-10 integer that fits in 256 bits.
func parseAmount(field, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, NewAmountRequired(field)
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, NewInvalidAmount(field, err)
	}
	if amount.IsZero() {
		return nil, NewAmountNonPositive(field)
	}
	return amount, nil
}
