package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantarc/tradekit/pkg/common"
)

func TestGroup_BookPerKey(t *testing.T) {
	g := NewGroup()

	btc := common.NewInstrument("BTCUSD", common.InstrumentCrypto)
	eth := common.NewInstrument("ETHUSD", common.InstrumentCrypto)
	venue := common.ExchangeType{Name: "venue"}
	other := common.ExchangeType{Name: "other"}

	first := g.Book(btc, venue)
	assert.Same(t, first, g.Book(btc, venue))
	assert.NotSame(t, first, g.Book(eth, venue))
	assert.NotSame(t, first, g.Book(btc, other))
	assert.Equal(t, 3, g.Count())
}

func TestTradingMode_Valid(t *testing.T) {
	for _, m := range []TradingMode{ModeLive, ModeSandbox, ModeSimulation, ModeBacktest} {
		assert.True(t, m.Valid())
	}
	assert.False(t, TradingMode("paper").Valid())
}
