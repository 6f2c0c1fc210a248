package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-amm/internal/ledger"
	"github.com/nulln0ne/dex-amm/internal/pool"
	"github.com/nulln0ne/dex-amm/internal/service"
)

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrInvalidBody indicates that the request body could not be decoded.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrSameAddresses is returned when src and dst addresses are identical.
var ErrSameAddresses = fiber.NewError(fiber.StatusBadRequest, "src and dst addresses cannot be the same")

// ErrSameTokenBadRequest maps a same-token validation failure to a 400 error.
var ErrSameTokenBadRequest = fiber.NewError(fiber.StatusBadRequest, "src and dst tokens cannot be the same")

// ErrPairMismatchBadRequest is returned when src/dst are not the pool's pair.
var ErrPairMismatchBadRequest = fiber.NewError(fiber.StatusBadRequest, "src/dst do not match the pool pair")

// ErrEmptyReservesBadRequest maps empty-reserve pool state to a 400 error.
var ErrEmptyReservesBadRequest = fiber.NewError(fiber.StatusBadRequest, "pool has insufficient reserves")

var ErrUnknownTokenNotFound = fiber.NewError(fiber.StatusNotFound, "unknown token")

// ErrInternal signals a generic server-side failure.
var ErrInternal = fiber.NewError(fiber.StatusInternalServerError, "internal error")

// NewAmountRequired returns a 400 Bad Request for a missing amount field.
func NewAmountRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" is required")
}

// NewInvalidAmount wraps an amount parsing error into a 400 Bad Request with
// a descriptive message.
func NewInvalidAmount(field string, err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+": "+err.Error())
}

// NewAmountNonPositive is returned when an amount is zero.
func NewAmountNonPositive(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" must be greater than zero")
}

// NewAddressRequired returns a 400 Bad Request for a missing address field.
func NewAddressRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

// NewInvalidAddress returns a 400 Bad Request for an invalid address format.
func NewInvalidAddress(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}

// handleServiceError maps pool, ledger and service errors to HTTP errors.
// Rejections caused by the request keep their message; anything else is
// logged and reported as a 500.
func (h *BaseHandler) handleServiceError(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrSameToken):
		return ErrSameTokenBadRequest
	case errors.Is(err, service.ErrPairMismatch):
		return ErrPairMismatchBadRequest
	case errors.Is(err, service.ErrEmptyReserves), errors.Is(err, pool.ErrEmptyPool):
		return ErrEmptyReservesBadRequest
	case errors.Is(err, service.ErrUnknownToken), errors.Is(err, pool.ErrUnknownAsset):
		return ErrUnknownTokenNotFound
	case errors.Is(err, pool.ErrInvalidAmount),
		errors.Is(err, pool.ErrInvalidAccount),
		errors.Is(err, pool.ErrInsufficientShares),
		errors.Is(err, pool.ErrOverflow),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAuthorization),
		errors.Is(err, ledger.ErrZeroAddress),
		errors.Is(err, ledger.ErrOverflow):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "op", op, "err", err)
		return ErrInternal
	}
}
