package middleware

import (
	"context"

	"go.uber.org/zap"

	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
)

// Telemetry counts events passing through the chain.
type Telemetry struct {
	logger *zap.Logger

	orderEventCounter         int64
	tradeEventCounter         int64
	orderOpenEventCounter     int64
	fillEventCounter          int64
	cancelEventCounter        int64
	changeEventCounter        int64
	orderRejectedEventCounter int64
	errorEventCounter         int64
}

func NewTelemetry(logger *zap.Logger) *Telemetry {
	return &Telemetry{
		logger: logger,
	}
}

func (t *Telemetry) WithOrder(handler bus.OrderEventHandler) bus.OrderEventHandler {
	return func(ctx context.Context, order common.Order) {
		t.orderEventCounter++
		handler(ctx, order)
	}
}

func (t *Telemetry) WithTrade(handler bus.TradeEventHandler) bus.TradeEventHandler {
	return func(ctx context.Context, trade common.Trade) {
		t.tradeEventCounter++
		handler(ctx, trade)
	}
}

func (t *Telemetry) WithOrderOpen(handler bus.OrderOpenEventHandler) bus.OrderOpenEventHandler {
	return func(ctx context.Context, open common.OrderOpen) {
		t.orderOpenEventCounter++
		handler(ctx, open)
	}
}

func (t *Telemetry) WithFill(handler bus.FillEventHandler) bus.FillEventHandler {
	return func(ctx context.Context, fill common.Fill) {
		t.fillEventCounter++
		handler(ctx, fill)
	}
}

func (t *Telemetry) WithCancel(handler bus.CancelEventHandler) bus.CancelEventHandler {
	return func(ctx context.Context, cancel common.Cancel) {
		t.cancelEventCounter++
		handler(ctx, cancel)
	}
}

func (t *Telemetry) WithChange(handler bus.ChangeEventHandler) bus.ChangeEventHandler {
	return func(ctx context.Context, change common.Change) {
		t.changeEventCounter++
		handler(ctx, change)
	}
}

func (t *Telemetry) WithOrderRejected(handler bus.OrderRejectionEventHandler) bus.OrderRejectionEventHandler {
	return func(ctx context.Context, rejected common.OrderRejected) {
		t.orderRejectedEventCounter++
		handler(ctx, rejected)
	}
}

func (t *Telemetry) WithError(handler bus.ErrorEventHandler) bus.ErrorEventHandler {
	return func(ctx context.Context, e common.Error) {
		t.errorEventCounter++
		handler(ctx, e)
	}
}

func (t *Telemetry) PrintStatistics() {
	t.logger.Info("telemetry statistics",
		zap.Int64("order_events", t.orderEventCounter),
		zap.Int64("trade_events", t.tradeEventCounter),
		zap.Int64("order_open_events", t.orderOpenEventCounter),
		zap.Int64("fill_events", t.fillEventCounter),
		zap.Int64("cancel_events", t.cancelEventCounter),
		zap.Int64("change_events", t.changeEventCounter),
		zap.Int64("order_rejected_events", t.orderRejectedEventCounter),
		zap.Int64("error_events", t.errorEventCounter))
}
