package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantarc/tradekit/pkg/common"
)

type event struct {
	id   EventId
	data interface{}
}

// Router is the single-threaded dispatch loop. Posting is non-blocking and
// fails when the capacity is reached; dispatch happens on the goroutine
// running Exec or ExecLoop, which is what serializes every mutation the
// handlers perform.
type Router struct {
	// Channels
	done   chan error
	events chan event

	// Handlers
	OrderHandler         OrderEventHandler
	TradeHandler         TradeEventHandler
	OrderOpenHandler     OrderOpenEventHandler
	FillHandler          FillEventHandler
	CancelHandler        CancelEventHandler
	ChangeHandler        ChangeEventHandler
	OrderRejectedHandler OrderRejectionEventHandler
	ErrorHandler         ErrorEventHandler
	HaltHandler          HaltEventHandler
	ContinueHandler      ContinueEventHandler

	// Statistics
	runTime        time.Duration
	postCount      uint64
	postFails      uint64
	dispatchCount  uint64
	dispatchFails  uint64
	dispatchByKind [eventIdCount]uint64
}

func NewRouter(eventCapacity int) *Router {
	return &Router{
		done:   make(chan error),
		events: make(chan event, eventCapacity),
	}
}

func (r *Router) Post(id EventId, data interface{}) error {
	select {
	case r.events <- event{id, data}:
		r.postCount++
		return nil
	default:
		r.postFails++
		return errors.New("event capacity reached")
	}
}

func (r *Router) Exec(ctx context.Context) {
	r.resetStatistics()

	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			r.done <- ctx.Err()
			return
		case ev := <-r.events:
			r.dispatchCount++
			if err := r.dispatch(ctx, ev); err != nil {
				r.dispatchFails++
				slog.Warn("dispatch failed", "error", err, "event", ev.id)
			}
		}
	}
}

// ExecLoop drains posted events and calls doOnceCb whenever the queue is
// empty; the callback is the replay/backtest suspension point that feeds the
// next timestamped record in.
func (r *Router) ExecLoop(ctx context.Context, doOnceCb func() error) {
	r.resetStatistics()

	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			r.done <- ctx.Err()
			return
		case ev := <-r.events:
			r.dispatchCount++
			if err := r.dispatch(ctx, ev); err != nil {
				r.dispatchFails++
				slog.Warn("dispatch failed", "error", err, "event", ev.id)
			}
		default:
			if err := doOnceCb(); err != nil {
				r.done <- err
				return
			}
		}
	}
}

func (r *Router) Done() <-chan error {
	return r.done
}

func (r *Router) Statistics() Statistics {
	throughput := 0.0
	if r.runTime > 0 {
		throughput = float64(r.postCount) / r.runTime.Seconds()
	}
	return Statistics{
		RunTime:        r.runTime,
		PostCount:      r.postCount,
		PostFails:      r.postFails,
		DispatchCount:  r.dispatchCount,
		DispatchFails:  r.dispatchFails,
		Throughput:     throughput,
		DispatchByKind: r.dispatchByKind,
	}
}

func (r *Router) resetStatistics() {
	r.runTime = 0
	r.dispatchCount = 0
	r.dispatchFails = 0
	r.postCount = 0
	r.postFails = 0
	r.dispatchByKind = [eventIdCount]uint64{}
}

func (r *Router) dispatch(ctx context.Context, ev event) error {
	if ev.id < eventIdCount {
		r.dispatchByKind[ev.id]++
	}
	switch ev.id {
	case OrderEvent:
		order, ok := ev.data.(common.Order)
		if !ok {
			return errors.New("invalid type assertion for order event")
		}
		if r.OrderHandler != nil {
			r.OrderHandler(ctx, order)
		} else {
			slog.Debug("order handler is nil")
		}
	case TradeEvent:
		trade, ok := ev.data.(common.Trade)
		if !ok {
			return errors.New("invalid type assertion for trade event")
		}
		if r.TradeHandler != nil {
			r.TradeHandler(ctx, trade)
		} else {
			slog.Debug("trade handler is nil")
		}
	case OrderOpenEvent:
		open, ok := ev.data.(common.OrderOpen)
		if !ok {
			return errors.New("invalid type assertion for order open event")
		}
		if r.OrderOpenHandler != nil {
			r.OrderOpenHandler(ctx, open)
		} else {
			slog.Debug("order open handler is nil")
		}
	case FillEvent:
		fill, ok := ev.data.(common.Fill)
		if !ok {
			return errors.New("invalid type assertion for fill event")
		}
		if r.FillHandler != nil {
			r.FillHandler(ctx, fill)
		} else {
			slog.Debug("fill handler is nil")
		}
	case CancelEvent:
		cancel, ok := ev.data.(common.Cancel)
		if !ok {
			return errors.New("invalid type assertion for cancel event")
		}
		if r.CancelHandler != nil {
			r.CancelHandler(ctx, cancel)
		} else {
			slog.Debug("cancel handler is nil")
		}
	case ChangeEvent:
		change, ok := ev.data.(common.Change)
		if !ok {
			return errors.New("invalid type assertion for change event")
		}
		if r.ChangeHandler != nil {
			r.ChangeHandler(ctx, change)
		} else {
			slog.Debug("change handler is nil")
		}
	case OrderRejectedEvent:
		rejected, ok := ev.data.(common.OrderRejected)
		if !ok {
			return errors.New("invalid type assertion for order rejected event")
		}
		if r.OrderRejectedHandler != nil {
			r.OrderRejectedHandler(ctx, rejected)
		} else {
			slog.Debug("order rejected handler is nil")
		}
	case ErrorEvent:
		e, ok := ev.data.(common.Error)
		if !ok {
			return errors.New("invalid type assertion for error event")
		}
		if r.ErrorHandler != nil {
			r.ErrorHandler(ctx, e)
		} else {
			slog.Debug("error handler is nil")
		}
	case HaltEvent:
		halt, ok := ev.data.(common.Halt)
		if !ok {
			return errors.New("invalid type assertion for halt event")
		}
		if r.HaltHandler != nil {
			r.HaltHandler(ctx, halt)
		} else {
			slog.Debug("halt handler is nil")
		}
	case ContinueEvent:
		cont, ok := ev.data.(common.Continue)
		if !ok {
			return errors.New("invalid type assertion for continue event")
		}
		if r.ContinueHandler != nil {
			r.ContinueHandler(ctx, cont)
		} else {
			slog.Debug("continue handler is nil")
		}
	default:
		return fmt.Errorf("unsupported event id: %v", ev.id)
	}
	return nil
}
