package exchange

// TradingMode tags where orders originate. The core treats it opaquely; it
// never changes matching semantics.
type TradingMode string

const (
	ModeLive       TradingMode = "live"
	ModeSandbox    TradingMode = "sandbox"
	ModeSimulation TradingMode = "simulation"
	ModeBacktest   TradingMode = "backtest"
)

func (m TradingMode) Valid() bool {
	switch m {
	case ModeLive, ModeSandbox, ModeSimulation, ModeBacktest:
		return true
	default:
		return false
	}
}
