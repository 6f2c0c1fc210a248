package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-amm/internal/ledger"
	"github.com/nulln0ne/dex-amm/internal/service"
)

type PoolHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewPoolHandler(logger *slog.Logger, svc *service.PoolService) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type TokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type PoolResponse struct {
	Address     string    `json:"address"`
	TokenA      TokenInfo `json:"token_a"`
	TokenB      TokenInfo `json:"token_b"`
	ReserveA    string    `json:"reserve_a"`
	ReserveB    string    `json:"reserve_b"`
	TotalShares string    `json:"total_shares"`
	Providers   int       `json:"providers"`
}

// Pool reports the pool's tokens, reserves and share supply.
func (h *PoolHandler) Pool() fiber.Handler {
	return func(c fiber.Ctx) error {
		info := h.service.Info()
		return c.JSON(PoolResponse{
			Address:     info.Address.Hex(),
			TokenA:      tokenInfo(info.TokenA),
			TokenB:      tokenInfo(info.TokenB),
			ReserveA:    info.ReserveA.Dec(),
			ReserveB:    info.ReserveB.Dec(),
			TotalShares: info.TotalShares.Dec(),
			Providers:   info.Providers,
		})
	}
}

type PriceResponse struct {
	// Ratio is reserveB/reserveA in lowest terms.
	Ratio   string `json:"ratio"`
	Decimal string `json:"decimal"`
}

func (h *PoolHandler) Price() fiber.Handler {
	return func(c fiber.Ctx) error {
		price, err := h.service.Price()
		if err != nil {
			return h.handleServiceError("price", err)
		}
		return c.JSON(PriceResponse{
			Ratio:   price.RatString(),
			Decimal: price.FloatString(18),
		})
	}
}

type QuoteRequest struct {
	Src      string `query:"src" json:"src"`
	Dst      string `query:"dst" json:"dst"`
	AmountIn string `query:"src_amount" json:"amount_in"`
}

// Quote answers with the output amount, as plain text, that swapping
// src_amount of src into dst would pay at the current reserves.
func (h *PoolHandler) Quote() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req QuoteRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}

		src, err := parseAddress("src", req.Src)
		if err != nil {
			return err
		}
		dst, err := parseAddress("dst", req.Dst)
		if err != nil {
			return err
		}
		if src == dst {
			return ErrSameAddresses
		}
		amountIn, err := parseAmount("src_amount", req.AmountIn)
		if err != nil {
			return err
		}

		amountOut, err := h.service.Quote(src, dst, amountIn)
		if err != nil {
			return h.handleServiceError("quote", err)
		}

		h.logger.Debug("quote computed", "src", req.Src, "dst", req.Dst, "in", amountIn.Dec(), "out", amountOut.Dec())
		return c.SendString(amountOut.Dec())
	}
}

type SharesResponse struct {
	Account     string `json:"account"`
	Shares      string `json:"shares"`
	TotalShares string `json:"total_shares"`
}

func (h *PoolHandler) Shares() fiber.Handler {
	return func(c fiber.Ctx) error {
		account, err := parseAddress("account", c.Params("account"))
		if err != nil {
			return err
		}
		shares, total := h.service.Position(account)
		return c.JSON(SharesResponse{
			Account:     account.Hex(),
			Shares:      shares.Dec(),
			TotalShares: total.Dec(),
		})
	}
}

type AddLiquidityRequest struct {
	Account string `json:"account"`
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
}

type AddLiquidityResponse struct {
	SharesMinted string `json:"shares_minted"`
}

// AddLiquidity deposits both assets from account. account must have approved
// the pool address on both tokens beforehand.
func (h *PoolHandler) AddLiquidity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req AddLiquidityRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind body", "err", err)
			return ErrInvalidBody
		}
		account, err := parseAddress("account", req.Account)
		if err != nil {
			return err
		}
		amountA, err := parseAmount("amount_a", req.AmountA)
		if err != nil {
			return err
		}
		amountB, err := parseAmount("amount_b", req.AmountB)
		if err != nil {
			return err
		}

		shares, err := h.service.AddLiquidity(c.Context(), account, amountA, amountB)
		if err != nil {
			return h.handleServiceError("add liquidity", err)
		}
		return c.JSON(AddLiquidityResponse{SharesMinted: shares.Dec()})
	}
}

type RemoveLiquidityRequest struct {
	Account string `json:"account"`
	Shares  string `json:"shares"`
}

type RemoveLiquidityResponse struct {
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
}

func (h *PoolHandler) RemoveLiquidity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req RemoveLiquidityRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind body", "err", err)
			return ErrInvalidBody
		}
		account, err := parseAddress("account", req.Account)
		if err != nil {
			return err
		}
		shares, err := parseAmount("shares", req.Shares)
		if err != nil {
			return err
		}

		amountA, amountB, err := h.service.RemoveLiquidity(c.Context(), account, shares)
		if err != nil {
			return h.handleServiceError("remove liquidity", err)
		}
		return c.JSON(RemoveLiquidityResponse{AmountA: amountA.Dec(), AmountB: amountB.Dec()})
	}
}

// SwapRequest sells AmountIn of AssetIn, which is "A", "B", a token address
// or a token symbol.
type SwapRequest struct {
	Account  string `json:"account"`
	AssetIn  string `json:"asset_in"`
	AmountIn string `json:"amount_in"`
}

type SwapResponse struct {
	AssetIn   string `json:"asset_in"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

func (h *PoolHandler) Swap() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req SwapRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind body", "err", err)
			return ErrInvalidBody
		}
		account, err := parseAddress("account", req.Account)
		if err != nil {
			return err
		}
		assetIn, err := h.service.Resolve(req.AssetIn)
		if err != nil {
			return h.handleServiceError("swap", err)
		}
		amountIn, err := parseAmount("amount_in", req.AmountIn)
		if err != nil {
			return err
		}

		amountOut, err := h.service.Swap(c.Context(), account, assetIn, amountIn)
		if err != nil {
			return h.handleServiceError("swap", err)
		}
		tok, _ := h.service.Token(assetIn)
		return c.JSON(SwapResponse{
			AssetIn:   tok.Address().Hex(),
			AmountIn:  amountIn.Dec(),
			AmountOut: amountOut.Dec(),
		})
	}
}

func tokenInfo(t *ledger.Token) TokenInfo {
	return TokenInfo{Address: t.Address().Hex(), Name: t.Name(), Symbol: t.Symbol()}
}
