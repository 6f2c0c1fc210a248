package pool

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nulln0ne/dex-amm/internal/ledger"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	provider = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	trader   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	poolAddr = common.HexToAddress("0x0000000000000000000000000000000000000abc")
)

const initialBalance = 1_000_000

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// flakyLedger fails Debit or Credit on demand.
type flakyLedger struct {
	Ledger
	debitErr  error
	creditErr error
}

func (f *flakyLedger) Debit(ctx context.Context, from common.Address, amount *uint256.Int) error {
	if f.debitErr != nil {
		return f.debitErr
	}
	return f.Ledger.Debit(ctx, from, amount)
}

func (f *flakyLedger) Credit(ctx context.Context, to common.Address, amount *uint256.Int) error {
	if f.creditErr != nil {
		return f.creditErr
	}
	return f.Ledger.Credit(ctx, to, amount)
}

type fixture struct {
	engine  *Engine
	tokenA  *ledger.Token
	tokenB  *ledger.Token
	ledgerA *flakyLedger
	ledgerB *flakyLedger
	events  *recorder
	metrics *Metrics
}

// newFixture deploys two tokens and an empty pool. Every holder receives
// initialBalance of each token and approves the pool without limit.
func newFixture(holders ...common.Address) *fixture {
	tokenA := ledger.NewToken("Token A", "TKA", common.HexToAddress("0x00000000000000000000000000000000000000aa"))
	tokenB := ledger.NewToken("Token B", "TKB", common.HexToAddress("0x00000000000000000000000000000000000000bb"))
	unlimited := new(uint256.Int).SetAllOne()
	for _, h := range holders {
		for _, tok := range []*ledger.Token{tokenA, tokenB} {
			if err := tok.Mint(h, u(initialBalance)); err != nil {
				panic(err)
			}
			if err := tok.Approve(h, poolAddr, unlimited); err != nil {
				panic(err)
			}
		}
	}

	f := &fixture{
		tokenA:  tokenA,
		tokenB:  tokenB,
		ledgerA: &flakyLedger{Ledger: ledger.NewVault(tokenA, poolAddr)},
		ledgerB: &flakyLedger{Ledger: ledger.NewVault(tokenB, poolAddr)},
		events:  &recorder{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.engine = New(logger, poolAddr, f.ledgerA, f.ledgerB, WithEventSink(f.events), WithMetrics(f.metrics))
	return f
}

// poolHoldsReserves reports whether the pool's token balances equal its
// recorded reserves.
func (f *fixture) poolHoldsReserves() bool {
	rA, rB := f.engine.Reserves()
	return f.tokenA.BalanceOf(poolAddr).Eq(rA) && f.tokenB.BalanceOf(poolAddr).Eq(rB)
}

func (f *flakyLedger) ReverseDebit(ctx context.Context, from common.Address, amount *uint256.Int) error {
	return f.Ledger.(Reverser).ReverseDebit(ctx, from, amount)
}

func (f *flakyLedger) ReverseCredit(ctx context.Context, to common.Address, amount *uint256.Int) error {
	return f.Ledger.(Reverser).ReverseCredit(ctx, to, amount)
}
