package main

import (
	"time"

	"github.com/quantarc/tradekit/pkg/exchange"
	"github.com/quantarc/tradekit/pkg/middleware"
)

var ReplayStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
var ReplayEnd = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

const (
	RouterEventCapacity = 1000
	TradeDataSource     = "data/btcusd_trades_2024.bin"

	AccountId      = "replay"
	ExchangeName   = "replay-venue"
	InstrumentName = "BTCUSD"

	Mode         = exchange.ModeBacktest
	MonitorFlags = middleware.MonitorOrdersRejected | middleware.MonitorErrors
)
