package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
)

// Performance accumulates handler wall time per event kind.
type Performance struct {
	logger *zap.Logger

	totalOrderHandlerDur  time.Duration
	totalTradeHandlerDur  time.Duration
	totalFillHandlerDur   time.Duration
	totalCancelHandlerDur time.Duration

	orderCount  int64
	tradeCount  int64
	fillCount   int64
	cancelCount int64
}

func NewPerformance(logger *zap.Logger) *Performance {
	return &Performance{
		logger: logger,
	}
}

func (p *Performance) WithOrder(handler bus.OrderEventHandler) bus.OrderEventHandler {
	return func(ctx context.Context, order common.Order) {
		startTime := time.Now()
		handler(ctx, order)
		p.totalOrderHandlerDur += time.Since(startTime)
		p.orderCount++
	}
}

func (p *Performance) WithTrade(handler bus.TradeEventHandler) bus.TradeEventHandler {
	return func(ctx context.Context, trade common.Trade) {
		startTime := time.Now()
		handler(ctx, trade)
		p.totalTradeHandlerDur += time.Since(startTime)
		p.tradeCount++
	}
}

func (p *Performance) WithFill(handler bus.FillEventHandler) bus.FillEventHandler {
	return func(ctx context.Context, fill common.Fill) {
		startTime := time.Now()
		handler(ctx, fill)
		p.totalFillHandlerDur += time.Since(startTime)
		p.fillCount++
	}
}

func (p *Performance) WithCancel(handler bus.CancelEventHandler) bus.CancelEventHandler {
	return func(ctx context.Context, cancel common.Cancel) {
		startTime := time.Now()
		handler(ctx, cancel)
		p.totalCancelHandlerDur += time.Since(startTime)
		p.cancelCount++
	}
}

func (p *Performance) PrintStatistics() {
	var fields []zap.Field

	if p.orderCount > 0 {
		fields = append(fields,
			zap.Duration("order_avg_duration", p.totalOrderHandlerDur/time.Duration(p.orderCount)),
			zap.Duration("order_total_duration", p.totalOrderHandlerDur))
	}
	if p.tradeCount > 0 {
		fields = append(fields,
			zap.Duration("trade_avg_duration", p.totalTradeHandlerDur/time.Duration(p.tradeCount)),
			zap.Duration("trade_total_duration", p.totalTradeHandlerDur))
	}
	if p.fillCount > 0 {
		fields = append(fields,
			zap.Duration("fill_avg_duration", p.totalFillHandlerDur/time.Duration(p.fillCount)),
			zap.Duration("fill_total_duration", p.totalFillHandlerDur))
	}
	if p.cancelCount > 0 {
		fields = append(fields,
			zap.Duration("cancel_avg_duration", p.totalCancelHandlerDur/time.Duration(p.cancelCount)),
			zap.Duration("cancel_total_duration", p.totalCancelHandlerDur))
	}

	p.logger.Info("performance statistics", fields...)
}
