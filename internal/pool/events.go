package pool

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const (
	SigLiquidityAdded   = "LiquidityAdded(address,uint256,uint256,uint256)"
	SigLiquidityRemoved = "LiquidityRemoved(address,uint256,uint256,uint256)"
	SigSwap             = "Swap(address,address,uint256,uint256)"
)

var (
	TopicLiquidityAdded   = crypto.Keccak256Hash([]byte(SigLiquidityAdded))
	TopicLiquidityRemoved = crypto.Keccak256Hash([]byte(SigLiquidityRemoved))
	TopicSwap             = crypto.Keccak256Hash([]byte(SigSwap))
)

// Event is a committed pool state transition.
type Event interface {
	Name() string
	Topic() common.Hash
}

type LiquidityAdded struct {
	Account      common.Address
	AmountA      *uint256.Int
	AmountB      *uint256.Int
	SharesMinted *uint256.Int
}

func (LiquidityAdded) Name() string       { return "LiquidityAdded" }
func (LiquidityAdded) Topic() common.Hash { return TopicLiquidityAdded }

type LiquidityRemoved struct {
	Account      common.Address
	AmountA      *uint256.Int
	AmountB      *uint256.Int
	SharesBurned *uint256.Int
}

func (LiquidityRemoved) Name() string       { return "LiquidityRemoved" }
func (LiquidityRemoved) Topic() common.Hash { return TopicLiquidityRemoved }

// Swap records a trade. AssetIn is the token address of the input side.
type Swap struct {
	Account   common.Address
	AssetIn   common.Address
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
}

func (Swap) Name() string       { return "Swap" }
func (Swap) Topic() common.Hash { return TopicSwap }

// EventSink receives events in commit order. Publish is called while the
// engine still holds its write lock, so implementations must not call back
// into the engine.
type EventSink interface {
	Publish(ctx context.Context, ev Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ctx context.Context, ev Event)

func (f SinkFunc) Publish(ctx context.Context, ev Event) { f(ctx, ev) }

// Sinks fans an event out to every sink in order.
type Sinks []EventSink

func (s Sinks) Publish(ctx context.Context, ev Event) {
	for _, sink := range s {
		sink.Publish(ctx, ev)
	}
}
