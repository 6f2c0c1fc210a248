package pool

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by the engine.
type Metrics struct {
	Swaps            *prometheus.CounterVec
	LiquidityChanges *prometheus.CounterVec
	Reserves         *prometheus.GaugeVec
	TotalShares      prometheus.Gauge
}

// NewMetrics creates the pool collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Swaps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Name:      "swaps_total",
			Help:      "Committed swaps by input asset.",
		}, []string{"asset_in"}),
		LiquidityChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amm",
			Name:      "liquidity_changes_total",
			Help:      "Committed liquidity additions and removals.",
		}, []string{"op"}),
		Reserves: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "amm",
			Name:      "reserve",
			Help:      "Current pool reserve per asset, in base units.",
		}, []string{"asset"}),
		TotalShares: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "amm",
			Name:      "total_shares",
			Help:      "Outstanding liquidity shares.",
		}),
	}
}

func (m *Metrics) observeState(reserveA, reserveB, totalShares *uint256.Int) {
	m.Reserves.WithLabelValues(AssetA.String()).Set(toFloat(reserveA))
	m.Reserves.WithLabelValues(AssetB.String()).Set(toFloat(reserveB))
	m.TotalShares.Set(toFloat(totalShares))
}

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
