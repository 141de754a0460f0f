package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/datasource/historical"
	"github.com/quantarc/tradekit/pkg/exchange"
	"github.com/quantarc/tradekit/pkg/exchange/sim"
	"github.com/quantarc/tradekit/pkg/ledger"
	"github.com/quantarc/tradekit/pkg/middleware"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("replay starting", zap.String("mode", string(Mode)))
	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source := historical.NewSource[historical.BinaryTrade](TradeDataSource)
	if err := source.Open(); err != nil {
		logger.Fatal("error opening trade data source", zap.Error(err))
	}
	defer source.Close()

	instrument := common.NewInstrument(InstrumentName, common.InstrumentCrypto)
	venue := common.ExchangeType{Name: ExchangeName}
	reader := historical.NewTradeReader(source, instrument, venue, ReplayStart, ReplayEnd)

	// Create
	monitor := middleware.NewMonitor(MonitorFlags)
	telemetry := middleware.NewTelemetry(logger)
	performance := middleware.NewPerformance(logger)

	router := bus.NewRouter(RouterEventCapacity)
	books := exchange.NewGroup()
	account := ledger.NewAccount(AccountId, venue)
	simulator := sim.NewSimulator(router, books, account, sim.WithMode(Mode))
	executor := newExecutor(router, reader)

	// Initialize
	router.OrderHandler = telemetry.WithOrder(monitor.WithOrder(performance.WithOrder(simulator.OnOrder)))
	router.TradeHandler = telemetry.WithTrade(monitor.WithTrade(middleware.NoopTradeHdl))
	router.FillHandler = telemetry.WithFill(monitor.WithFill(middleware.NoopFillHdl))
	router.OrderOpenHandler = monitor.WithOrderOpen(middleware.NoopOrderOpenHdl)
	router.CancelHandler = telemetry.WithCancel(monitor.WithCancel(middleware.NoopCancelHdl))
	router.OrderRejectedHandler = telemetry.WithOrderRejected(monitor.WithOrderRejected(middleware.NoopOrderRjctHdl))
	router.ErrorHandler = telemetry.WithError(monitor.WithError(middleware.NoopErrorHdl))
	router.HaltHandler = simulator.OnHalt
	router.ContinueHandler = simulator.OnContinue

	// Execute the replay
	go router.ExecLoop(ctx, executor.Feed)
	defer performance.PrintStatistics()
	defer telemetry.PrintStatistics()
	defer func() { router.Statistics().Print() }()

	// Wait for the replay to complete
	if err := <-router.Done(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, historical.ErrEof) {
			logger.Error("error during replay", zap.Error(err))
		}
	}

	for _, p := range account.Positions() {
		logger.Info("position",
			zap.String("instrument", p.Instrument().Name),
			zap.String("size", p.Size().String()),
			zap.String("price", p.Price().String()),
			zap.String("pnl", p.Pnl().String()),
			zap.String("unrealized_pnl", p.UnrealizedPnl().String()))
	}
}
