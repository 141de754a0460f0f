package sim

import "github.com/quantarc/tradekit/pkg/exchange"

type Option func(*Simulator)

func WithMode(mode exchange.TradingMode) Option {
	return func(s *Simulator) {
		s.mode = mode
	}
}

// WithHalted starts the simulator refusing orders until a continue event.
func WithHalted() Option {
	return func(s *Simulator) {
		s.halted = true
	}
}
