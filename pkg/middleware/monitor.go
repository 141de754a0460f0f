package middleware

import (
	"context"
	"log/slog"

	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
)

type MonitorFlags uint16

//goland:noinspection GoUnusedConst
const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorOrders
	MonitorTrades
	MonitorOrdersOpened
	MonitorFills
	MonitorCancels
	MonitorChanges
	MonitorOrdersRejected
	MonitorErrors
)

// Monitor echoes selected events to the log without altering the chain.
type Monitor struct {
	flags MonitorFlags
}

func NewMonitor(flags MonitorFlags) *Monitor {
	return &Monitor{
		flags: flags,
	}
}

func (m *Monitor) enabled(flag MonitorFlags) bool {
	return m.flags&flag != 0 || m.flags&MonitorAll != 0
}

func (m *Monitor) WithOrder(handler bus.OrderEventHandler) bus.OrderEventHandler {
	return func(ctx context.Context, order common.Order) {
		if m.enabled(MonitorOrders) {
			slog.Info("event", "order", order)
		}
		handler(ctx, order)
	}
}

func (m *Monitor) WithTrade(handler bus.TradeEventHandler) bus.TradeEventHandler {
	return func(ctx context.Context, trade common.Trade) {
		if m.enabled(MonitorTrades) {
			slog.Info("event", "trade", trade)
		}
		handler(ctx, trade)
	}
}

func (m *Monitor) WithOrderOpen(handler bus.OrderOpenEventHandler) bus.OrderOpenEventHandler {
	return func(ctx context.Context, open common.OrderOpen) {
		if m.enabled(MonitorOrdersOpened) {
			slog.Info("event", "order_open", open)
		}
		handler(ctx, open)
	}
}

func (m *Monitor) WithFill(handler bus.FillEventHandler) bus.FillEventHandler {
	return func(ctx context.Context, fill common.Fill) {
		if m.enabled(MonitorFills) {
			slog.Info("event", "fill", fill)
		}
		handler(ctx, fill)
	}
}

func (m *Monitor) WithCancel(handler bus.CancelEventHandler) bus.CancelEventHandler {
	return func(ctx context.Context, cancel common.Cancel) {
		if m.enabled(MonitorCancels) {
			slog.Info("event", "cancel", cancel)
		}
		handler(ctx, cancel)
	}
}

func (m *Monitor) WithChange(handler bus.ChangeEventHandler) bus.ChangeEventHandler {
	return func(ctx context.Context, change common.Change) {
		if m.enabled(MonitorChanges) {
			slog.Info("event", "change", change)
		}
		handler(ctx, change)
	}
}

func (m *Monitor) WithOrderRejected(handler bus.OrderRejectionEventHandler) bus.OrderRejectionEventHandler {
	return func(ctx context.Context, rejected common.OrderRejected) {
		if m.enabled(MonitorOrdersRejected) {
			slog.Info("event", "order_rejected", rejected)
		}
		handler(ctx, rejected)
	}
}

func (m *Monitor) WithError(handler bus.ErrorEventHandler) bus.ErrorEventHandler {
	return func(ctx context.Context, e common.Error) {
		if m.enabled(MonitorErrors) {
			slog.Warn("event", "error", e)
		}
		handler(ctx, e)
	}
}
