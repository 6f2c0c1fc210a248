package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/dex-amm/internal/service"
)

// TokenHandler serves the two token ledgers. The :asset path parameter is
// "A", "B", a token address or a token symbol.
type TokenHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewTokenHandler(logger *slog.Logger, svc *service.PoolService) *TokenHandler {
	return &TokenHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

type BalanceResponse struct {
	Token   string `json:"token"`
	Account string `json:"account"`
	Balance string `json:"balance"`
}

func (h *TokenHandler) Balance() fiber.Handler {
	return func(c fiber.Ctx) error {
		asset, err := h.service.Resolve(c.Params("asset"))
		if err != nil {
			return h.handleServiceError("balance", err)
		}
		account, err := parseAddress("account", c.Params("account"))
		if err != nil {
			return err
		}
		balance, err := h.service.Balance(asset, account)
		if err != nil {
			return h.handleServiceError("balance", err)
		}
		tok, _ := h.service.Token(asset)
		return c.JSON(BalanceResponse{
			Token:   tok.Address().Hex(),
			Account: account.Hex(),
			Balance: balance.Dec(),
		})
	}
}

type ApproveRequest struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// Approve sets an allowance. A zero amount is allowed and revokes it.
func (h *TokenHandler) Approve() fiber.Handler {
	return func(c fiber.Ctx) error {
		asset, err := h.service.Resolve(c.Params("asset"))
		if err != nil {
			return h.handleServiceError("approve", err)
		}
		var req ApproveRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind body", "err", err)
			return ErrInvalidBody
		}
		owner, err := parseAddress("owner", req.Owner)
		if err != nil {
			return err
		}
		spender, err := parseAddress("spender", req.Spender)
		if err != nil {
			return err
		}
		if req.Amount == "" {
			return NewAmountRequired("amount")
		}
		amount, err := uint256.FromDecimal(req.Amount)
		if err != nil {
			return NewInvalidAmount("amount", err)
		}

		if err := h.service.Approve(asset, owner, spender, amount); err != nil {
			return h.handleServiceError("approve", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type TransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (h *TokenHandler) Transfer() fiber.Handler {
	return func(c fiber.Ctx) error {
		asset, err := h.service.Resolve(c.Params("asset"))
		if err != nil {
			return h.handleServiceError("transfer", err)
		}
		var req TransferRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind body", "err", err)
			return ErrInvalidBody
		}
		from, err := parseAddress("from", req.From)
		if err != nil {
			return err
		}
		to, err := parseAddress("to", req.To)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", req.Amount)
		if err != nil {
			return err
		}

		if err := h.service.Transfer(asset, from, to, amount); err != nil {
			return h.handleServiceError("transfer", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
