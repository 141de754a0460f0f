package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
)

const feedComponentName = "datasource.stream.feed"

// envelope is the wire frame: a kind tag and the event payload. The feed is
// venue-agnostic; whatever speaks this frame can drive the runtime.
type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Feed reads order and trade events from a websocket endpoint and posts them
// onto the bus. One feed goroutine per connection; the bus serializes from
// there.
type Feed struct {
	url    string
	router *bus.Router
	conn   *websocket.Conn

	readTimeout time.Duration
}

func NewFeed(url string, router *bus.Router) *Feed {
	return &Feed{
		url:         url,
		router:      router,
		readTimeout: 30 * time.Second,
	}
}

func (f *Feed) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("unable to dial %q: %w", f.url, err)
	}
	f.conn = conn
	return nil
}

func (f *Feed) Close() {
	if f.conn != nil {
		_ = f.conn.Close()
	}
}

// Run pumps events until the context ends or the connection drops.
func (f *Feed) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := f.conn.SetReadDeadline(time.Now().Add(f.readTimeout)); err != nil {
			return fmt.Errorf("unable to set read deadline: %w", err)
		}

		_, payload, err := f.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		if err := f.handle(payload); err != nil {
			slog.Warn("dropping malformed frame", "error", err)
		}
	}
}

func (f *Feed) handle(payload []byte) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}

	switch env.Kind {
	case "order":
		var order common.Order
		if err := json.Unmarshal(env.Data, &order); err != nil {
			return fmt.Errorf("order payload: %w", err)
		}
		order.Source = feedComponentName
		return f.router.Post(bus.OrderEvent, order)
	case "trade":
		var trade common.Trade
		if err := json.Unmarshal(env.Data, &trade); err != nil {
			return fmt.Errorf("trade payload: %w", err)
		}
		trade.Source = feedComponentName
		return f.router.Post(bus.TradeEvent, trade)
	case "halt":
		var halt common.Halt
		if err := json.Unmarshal(env.Data, &halt); err != nil {
			return fmt.Errorf("halt payload: %w", err)
		}
		return f.router.Post(bus.HaltEvent, halt)
	case "continue":
		var cont common.Continue
		if err := json.Unmarshal(env.Data, &cont); err != nil {
			return fmt.Errorf("continue payload: %w", err)
		}
		return f.router.Post(bus.ContinueEvent, cont)
	default:
		return fmt.Errorf("unknown kind %q", env.Kind)
	}
}
