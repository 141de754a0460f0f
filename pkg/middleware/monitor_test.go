package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/quantarc/tradekit/pkg/common"
)

func setupTestLogger(_ *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	return buf
}

func TestMiddlewareMonitor_NewMonitor(t *testing.T) {
	m := NewMonitor(MonitorOrders | MonitorTrades)
	if m.flags != (MonitorOrders | MonitorTrades) {
		t.Errorf("Expected flags %d, got %d", MonitorOrders|MonitorTrades, m.flags)
	}
}

func TestMiddlewareMonitor_WithOrder(t *testing.T) {
	buf := setupTestLogger(t)

	var handlerCalled bool
	handler := func(ctx context.Context, order common.Order) {
		handlerCalled = true
	}

	m := NewMonitor(MonitorOrders)
	wrapped := m.WithOrder(handler)

	wrapped(context.Background(), common.Order{})

	if !handlerCalled {
		t.Error("Handler not called")
	}
	if !strings.Contains(buf.String(), "order") {
		t.Error("Log entry not found")
	}
}

func TestMiddlewareMonitor_WithOrderNoMonitor(t *testing.T) {
	buf := setupTestLogger(t)

	var handlerCalled bool
	handler := func(ctx context.Context, order common.Order) {
		handlerCalled = true
	}

	m := NewMonitor(MonitorTrades)
	wrapped := m.WithOrder(handler)

	wrapped(context.Background(), common.Order{})

	if !handlerCalled {
		t.Error("Handler not called")
	}
	if buf.Len() != 0 {
		t.Errorf("Unexpected log output: %s", buf.String())
	}
}

func TestMiddlewareMonitor_MonitorAll(t *testing.T) {
	buf := setupTestLogger(t)

	m := NewMonitor(MonitorAll)
	m.WithTrade(NoopTradeHdl)(context.Background(), common.Trade{})
	m.WithFill(NoopFillHdl)(context.Background(), common.Fill{})

	out := buf.String()
	if !strings.Contains(out, "trade") || !strings.Contains(out, "fill") {
		t.Errorf("Expected trade and fill entries, got: %s", out)
	}
}

func TestMiddlewareMonitor_WithError(t *testing.T) {
	buf := setupTestLogger(t)

	m := NewMonitor(MonitorErrors)
	m.WithError(NoopErrorHdl)(context.Background(), common.Error{Err: "boom"})

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected error entry, got: %s", buf.String())
	}
}
