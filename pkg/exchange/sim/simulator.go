package sim

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quantarc/tradekit/pkg/book"
	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/exchange"
	"github.com/quantarc/tradekit/pkg/ledger"
	"github.com/quantarc/tradekit/pkg/utility"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

const simulatorComponentName = "exchange.sim.simulator"

// Simulator drives the matching books from order events and bookkeeps the
// resulting exposure. Orders come in on the bus, trades and order lifecycle
// events go back out, and every committed trade is folded into the owning
// account's position for its instrument.
type Simulator struct {
	router  *bus.Router
	books   *exchange.Group
	account *ledger.Account

	mode   exchange.TradingMode
	halted bool
}

func NewSimulator(router *bus.Router, books *exchange.Group, account *ledger.Account, options ...Option) *Simulator {
	s := &Simulator{
		router:  router,
		books:   books,
		account: account,
		mode:    exchange.ModeSimulation,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Simulator) Mode() exchange.TradingMode { return s.mode }
func (s *Simulator) Account() *ledger.Account   { return s.account }

func (s *Simulator) OnOrder(_ context.Context, order common.Order) {
	if s.halted {
		s.postRejected(order, "trading halted")
		return
	}

	b := s.books.Book(order.Instrument, order.Exchange)
	trades, err := b.Add(order)

	// Whatever the error outcome, trades the book committed have already
	// mutated it and must reach the ledger.
	s.settle(order, trades)

	if err != nil {
		switch {
		case errors.Is(err, book.ErrUnfillable), errors.Is(err, book.ErrInvalidOrder):
			s.postRejected(order, err.Error())
		default:
			s.postError(err)
		}
		return
	}

	filled := fixed.Zero
	for _, t := range trades {
		if t.TakerId == order.Id {
			filled = filled.Add(t.Volume)
		}
	}
	remainder := order.Volume.Sub(filled)

	switch {
	case remainder.IsZero():
		// Fully filled, settle already reported the fills.
	case order.Type == common.OrderTypeStop && len(trades) == 0:
		s.postOpen(order)
	case order.Type == common.OrderTypeLimit && order.Flag != common.OrderFlagImmediateOrCancel:
		s.postOpen(order)
	default:
		// Market or immediate-or-cancel remainder never rests.
		order.Filled = filled
		s.postCancel(order)
	}
}

func (s *Simulator) OnHalt(_ context.Context, halt common.Halt) {
	s.halted = true
	slog.Info("trading halted", "reason", halt.Reason)
}

func (s *Simulator) OnContinue(_ context.Context, _ common.Continue) {
	s.halted = false
	slog.Info("trading resumed")
}

// CancelOrder removes a resting or held order and reports the outcome on the bus.
func (s *Simulator) CancelOrder(instrument common.Instrument, ex common.ExchangeType, id common.OrderId) error {
	b := s.books.Book(instrument, ex)
	cancelled, err := b.Cancel(id)
	if err != nil {
		s.postError(err)
		return err
	}
	s.postCancel(cancelled)
	return nil
}

// ChangeOrder reprices a resting order; the order loses its time priority.
func (s *Simulator) ChangeOrder(order common.Order) error {
	b := s.books.Book(order.Instrument, order.Exchange)
	old, err := b.Cancel(order.Id)
	if err != nil {
		s.postError(err)
		return err
	}
	if err := s.router.Post(bus.ChangeEvent, common.Change{
		OldOrder:    old,
		NewOrder:    order,
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   time.Now(),
	}); err != nil {
		slog.Warn("unable to post change event", "error", err)
	}

	trades, err := b.Add(order)
	s.settle(order, trades)
	if err != nil {
		if errors.Is(err, book.ErrUnfillable) || errors.Is(err, book.ErrInvalidOrder) {
			s.postRejected(order, err.Error())
			return err
		}
		s.postError(err)
		return err
	}
	return nil
}

// settle publishes committed trades and folds them into the account ledger.
// Every Fill carries the triggering submission; the trade's maker and taker
// ids identify the actual counterparties.
func (s *Simulator) settle(order common.Order, trades []common.Trade) {
	for _, t := range trades {
		if err := s.router.Post(bus.TradeEvent, t); err != nil {
			slog.Warn("unable to post trade event", "error", err)
		}
		if err := s.router.Post(bus.FillEvent, common.Fill{
			Order:       order,
			Trade:       t,
			Source:      simulatorComponentName,
			ExecutionId: utility.GetExecutionID(),
			TraceID:     utility.CreateTraceID(),
			TimeStamp:   t.TimeStamp,
		}); err != nil {
			slog.Warn("unable to post fill event", "error", err)
		}

		if err := s.apply(t); err != nil {
			s.postError(err)
		}
	}
}

func (s *Simulator) apply(t common.Trade) error {
	p, err := s.account.Find(t.Instrument)
	if errors.Is(err, ledger.ErrPositionNotFound) {
		p, err = ledger.NewPosition(fixed.Zero, fixed.Zero, t.TimeStamp, t.Instrument, t.Exchange, nil)
		if err != nil {
			return err
		}
		s.account.AddPosition(p)
	} else if err != nil {
		return err
	}
	return p.ApplyTrade(t)
}

func (s *Simulator) postOpen(order common.Order) {
	if err := s.router.Post(bus.OrderOpenEvent, common.OrderOpen{
		Order:       order,
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   order.TimeStamp,
	}); err != nil {
		slog.Warn("unable to post order open event", "error", err)
	}
}

func (s *Simulator) postCancel(order common.Order) {
	if err := s.router.Post(bus.CancelEvent, common.Cancel{
		Order:       order,
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   time.Now(),
	}); err != nil {
		slog.Warn("unable to post cancel event", "error", err)
	}
}

func (s *Simulator) postRejected(order common.Order, reason string) {
	if err := s.router.Post(bus.OrderRejectedEvent, common.OrderRejected{
		OriginalOrder: order,
		Reason:        reason,
		Source:        simulatorComponentName,
		ExecutionId:   utility.GetExecutionID(),
		TraceID:       utility.CreateTraceID(),
		TimeStamp:     time.Now(),
	}); err != nil {
		slog.Warn("unable to post order rejected event", "error", err)
	}
}

func (s *Simulator) postError(err error) {
	if postErr := s.router.Post(bus.ErrorEvent, common.Error{
		Err:         err.Error(),
		Source:      simulatorComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   time.Now(),
	}); postErr != nil {
		slog.Warn("unable to post error event", "error", postErr)
	}
}
