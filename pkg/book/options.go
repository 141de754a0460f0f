package book

import (
	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

type Option func(*Book)

// SlippageHandler prices the execution slippage recorded on a trade.
type SlippageHandler func(common.Trade) fixed.Point

// CostHandler prices the transaction cost recorded on a trade.
type CostHandler func(common.Trade) fixed.Point

func WithSlippageHandler(handler SlippageHandler) Option {
	return func(b *Book) {
		b.slippageHandler = handler
	}
}

func WithCostHandler(handler CostHandler) Option {
	return func(b *Book) {
		b.costHandler = handler
	}
}

// WithProportionalCost charges rate x notional per fill.
func WithProportionalCost(rate fixed.Point) Option {
	return WithCostHandler(func(t common.Trade) fixed.Point {
		return t.Notional().Mul(rate)
	})
}
