package main

import (
	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/datasource/historical"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

// executor replays the recorded tape through the matching books. Each
// historical print becomes a resting limit order and a crossing market order
// of the same volume, so the books re-create every trade at its recorded
// price.
type executor struct {
	router *bus.Router
	reader *historical.TradeReader
}

func newExecutor(router *bus.Router, reader *historical.TradeReader) *executor {
	return &executor{
		router: router,
		reader: reader,
	}
}

func (e *executor) Feed() error {
	record, err := e.reader.GetNext()
	if err != nil {
		return err
	}

	maker := common.NewOrder(record.Side.Opposite(), record.Volume, record.Price,
		record.Instrument, record.Exchange, common.OrderTypeLimit, common.OrderFlagNone)
	maker.TimeStamp = record.TimeStamp

	taker := common.NewOrder(record.Side, record.Volume, fixed.Zero,
		record.Instrument, record.Exchange, common.OrderTypeMarket, common.OrderFlagNone)
	taker.TimeStamp = record.TimeStamp

	if err := e.router.Post(bus.OrderEvent, maker); err != nil {
		return err
	}
	return e.router.Post(bus.OrderEvent, taker)
}
