package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nulln0ne/dex-amm/internal/service"
)

// Register mounts the pool, token and metrics routes on r. gatherer may be
// nil, in which case /metrics is not served.
func Register(r fiber.Router, logger *slog.Logger, svc *service.PoolService, gatherer prometheus.Gatherer) {
	pools := NewPoolHandler(logger, svc)
	r.Get("/pool", pools.Pool())
	r.Get("/price", pools.Price())
	r.Get("/quote", pools.Quote())
	r.Get("/shares/:account", pools.Shares())
	r.Post("/liquidity/add", pools.AddLiquidity())
	r.Post("/liquidity/remove", pools.RemoveLiquidity())
	r.Post("/swap", pools.Swap())

	tokens := NewTokenHandler(logger, svc)
	r.Get("/tokens/:asset/balance/:account", tokens.Balance())
	r.Post("/tokens/:asset/approve", tokens.Approve())
	r.Post("/tokens/:asset/transfer", tokens.Transfer())

	if gatherer != nil {
		r.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
