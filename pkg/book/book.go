package book

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/utility"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

var (
	ErrInvalidOrder      = errors.New("invalid order")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUnfillable        = errors.New("order is unfillable as all-or-nothing")
	ErrInconsistentState = errors.New("inconsistent book state")
)

const bookComponentName = "book"

// Quote is one side's top of book: best price and the aggregate resting
// volume at that price.
type Quote struct {
	Price  fixed.Point
	Volume fixed.Point
}

// Book is the matching engine for one (instrument, exchange) key. All
// operations on one book are serialized; a match cycle runs to completion
// atomically, suspension only ever happens before an order enters the book.
type Book struct {
	mu sync.Mutex

	instrument common.Instrument
	exchange   common.ExchangeType

	bids *bookSide
	asks *bookSide

	index   map[common.OrderId]*restingOrder
	pending map[common.OrderId]common.Order

	seq       uint64
	lastPrice fixed.Point

	slippageHandler SlippageHandler
	costHandler     CostHandler
}

func New(instrument common.Instrument, exchange common.ExchangeType, options ...Option) *Book {
	b := &Book{
		instrument: instrument,
		exchange:   exchange,
		bids:       newBookSide(common.OrderSideBuy),
		asks:       newBookSide(common.OrderSideSell),
		index:      make(map[common.OrderId]*restingOrder),
		pending:    make(map[common.OrderId]common.Order),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *Book) Instrument() common.Instrument { return b.instrument }
func (b *Book) Exchange() common.ExchangeType { return b.exchange }

// Add matches the order against the resting book and returns every trade the
// submission committed, including trades from stop orders it activated.
// A fill-or-kill order that cannot fill in full returns ErrUnfillable with
// the book untouched.
func (b *Book) Add(order common.Order) ([]common.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.add(order)
}

func (b *Book) add(order common.Order) ([]common.Trade, error) {
	if err := b.validate(order); err != nil {
		return nil, err
	}

	if order.Type == common.OrderTypeStop {
		if b.lastPrice.IsZero() || !stopTriggered(order, b.lastPrice) {
			b.pending[order.Id] = order
			return nil, nil
		}
		// Trigger already met on arrival, enters as its underlying type.
		order.Type = common.OrderTypeMarket
	}

	switch order.Flag {
	case common.OrderFlagFillOrKill:
		if !b.fillable(order) {
			return nil, fmt.Errorf("%w: order %d", ErrUnfillable, order.Id)
		}
	case common.OrderFlagAllOrNone:
		if !b.fillable(order) {
			if order.Type != common.OrderTypeLimit {
				return nil, fmt.Errorf("%w: order %d", ErrUnfillable, order.Id)
			}
			// Unlike fill-or-kill, an unfillable all-or-none limit order
			// rests and waits for a counterparty that can take it whole.
			b.rest(order)
			return nil, nil
		}
	}

	trades, err := b.match(&order)
	if err != nil {
		return trades, err
	}

	if order.Remaining().IsPos() &&
		order.Flag != common.OrderFlagImmediateOrCancel &&
		order.Type == common.OrderTypeLimit {
		b.rest(order)
	}

	cascade, err := b.activateStops(trades)
	trades = append(trades, cascade...)
	return trades, err
}

// Cancel removes a resting or pending order and returns its final snapshot.
// A second cancel of the same id is an error, not a silent no-op, as is
// cancelling an id that already filled.
func (b *Book) Cancel(id common.OrderId) (common.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel(id)
}

func (b *Book) cancel(id common.OrderId) (common.Order, error) {
	if held, ok := b.pending[id]; ok {
		delete(b.pending, id)
		return held, nil
	}

	r, ok := b.index[id]
	if !ok {
		return common.Order{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}

	side := b.bids
	if r.order.Side == common.OrderSideSell {
		side = b.asks
	}
	if !side.remove(r) {
		return common.Order{}, fmt.Errorf("%w: id %d missing from its price level", ErrInconsistentState, id)
	}
	delete(b.index, id)
	return r.order, nil
}

// Change replaces a resting order with the given price/volume. It is cancel
// followed by add, so the order deliberately loses time priority at the new
// price level.
func (b *Book) Change(order common.Order) ([]common.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.cancel(order.Id); err != nil {
		return nil, err
	}
	return b.add(order)
}

// TopOfBook reports the best price level of one side, false when that side
// is empty.
func (b *Book) TopOfBook(side common.OrderSide) (Quote, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.bids
	if side == common.OrderSideSell {
		s = b.asks
	}
	lvl := s.best()
	if lvl == nil {
		return Quote{}, false
	}
	return Quote{Price: lvl.price, Volume: lvl.volume()}, true
}

// LastPrice is the price of the most recent fill, zero before any trade.
func (b *Book) LastPrice() fixed.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPrice
}

// Depth returns the number of resting orders on one side.
func (b *Book) Depth(side common.OrderSide) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.bids
	if side == common.OrderSideSell {
		s = b.asks
	}
	count := 0
	for _, lvl := range s.levels {
		count += len(lvl.queue)
	}
	return count
}

// PendingStops returns the number of held stop orders.
func (b *Book) PendingStops() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Book) validate(order common.Order) error {
	if !order.Volume.IsPos() {
		return fmt.Errorf("%w: non-positive volume %s", ErrInvalidOrder, order.Volume)
	}
	if order.Type != common.OrderTypeMarket && !order.Price.IsPos() {
		return fmt.Errorf("%w: non-positive price %s for %s order", ErrInvalidOrder, order.Price, order.Type)
	}
	if _, ok := b.index[order.Id]; ok {
		return fmt.Errorf("%w: duplicate id %d", ErrInvalidOrder, order.Id)
	}
	if _, ok := b.pending[order.Id]; ok {
		return fmt.Errorf("%w: duplicate id %d", ErrInvalidOrder, order.Id)
	}
	return nil
}

// crosses reports whether the taker is willing to trade at the given level
// price. Market orders always cross.
func crosses(taker common.Order, price fixed.Point) bool {
	if taker.Type == common.OrderTypeMarket {
		return true
	}
	if taker.Side == common.OrderSideBuy {
		return price.Lte(taker.Price)
	}
	return price.Gte(taker.Price)
}

// fillable simulates the matching loop without committing anything and
// reports whether the order's full remaining volume could fill right now.
func (b *Book) fillable(order common.Order) bool {
	need := order.Remaining()
	opposite := b.asks
	if order.Side == common.OrderSideSell {
		opposite = b.bids
	}

	for _, lvl := range opposite.levels {
		if !crosses(order, lvl.price) {
			break
		}
		for _, maker := range lvl.queue {
			if maker.order.Flag == common.OrderFlagAllOrNone && maker.remaining().Gt(need) {
				continue
			}
			need = need.Sub(fixed.Min(need, maker.remaining()))
			if need.IsZero() {
				return true
			}
		}
	}
	return need.IsZero()
}

// match runs the taker against the opposing side. Fills always happen at the
// resting order's price; ties at a price level break strictly by arrival
// sequence. A resting all-or-none maker is skipped whenever taking it would
// leave it partially filled.
func (b *Book) match(taker *common.Order) ([]common.Trade, error) {
	opposite := b.asks
	if taker.Side == common.OrderSideSell {
		opposite = b.bids
	}

	var trades []common.Trade
	li := 0
	for taker.Remaining().IsPos() && li < len(opposite.levels) {
		lvl := opposite.levels[li]
		if !crosses(*taker, lvl.price) {
			break
		}

		qi := 0
		for qi < len(lvl.queue) && taker.Remaining().IsPos() {
			maker := lvl.queue[qi]
			if maker.order.Flag == common.OrderFlagAllOrNone && maker.remaining().Gt(taker.Remaining()) {
				qi++
				continue
			}

			fill := fixed.Min(taker.Remaining(), maker.remaining())
			trade, err := b.commit(taker, maker, lvl.price, fill)
			if err != nil {
				return trades, err
			}
			trades = append(trades, trade)

			if maker.order.IsFilled() {
				lvl.queue = append(lvl.queue[:qi], lvl.queue[qi+1:]...)
				delete(b.index, maker.order.Id)
			}
		}

		if len(lvl.queue) == 0 {
			opposite.dropLevelIfEmpty(li)
		} else {
			li++
		}
	}
	return trades, nil
}

func (b *Book) commit(taker *common.Order, maker *restingOrder, price, fill fixed.Point) (common.Trade, error) {
	taker.Filled = taker.Filled.Add(fill)
	maker.order.Filled = maker.order.Filled.Add(fill)

	if taker.Filled.Gt(taker.Volume) || maker.order.Filled.Gt(maker.order.Volume) {
		return common.Trade{}, fmt.Errorf("%w: fill exceeds requested volume (taker %d, maker %d)",
			ErrInconsistentState, taker.Id, maker.order.Id)
	}

	b.lastPrice = price

	ts := taker.TimeStamp
	if ts.IsZero() {
		ts = time.Now()
	}

	trade := common.Trade{
		Price:       price,
		Volume:      fill,
		Side:        taker.Side,
		Instrument:  b.instrument,
		Exchange:    b.exchange,
		MakerId:     maker.order.Id,
		TakerId:     taker.Id,
		Slippage:    fixed.Zero,
		Source:      bookComponentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   ts,
	}
	if b.slippageHandler != nil {
		trade.Slippage = b.slippageHandler(trade)
	}
	if b.costHandler != nil {
		trade.TransactionCost = b.costHandler(trade)
	}
	return trade, nil
}

func (b *Book) rest(order common.Order) {
	b.seq++
	r := &restingOrder{order: order, seq: b.seq}
	if order.Side == common.OrderSideBuy {
		b.bids.insert(r)
	} else {
		b.asks.insert(r)
	}
	b.index[order.Id] = r
}

func stopTriggered(order common.Order, price fixed.Point) bool {
	if order.Side == common.OrderSideBuy {
		return price.Gte(order.StopTarget)
	}
	return price.Lte(order.StopTarget)
}

// activateStops resubmits every held stop order whose trigger a committed
// trade satisfied, as a market order, in arrival order. Activation can
// cascade; trades from activated orders are returned in commit order.
func (b *Book) activateStops(committed []common.Trade) ([]common.Trade, error) {
	var extra []common.Trade
	for _, t := range committed {
		ids := make([]common.OrderId, 0, len(b.pending))
		for id, held := range b.pending {
			if stopTriggered(held, t.Price) {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			held, ok := b.pending[id]
			if !ok {
				continue
			}
			delete(b.pending, id)
			held.Type = common.OrderTypeMarket
			trades, err := b.add(held)
			extra = append(extra, trades...)
			if err != nil {
				// Rejection of the activated order is its own outcome, not the
				// triggering submission's; the scan continues so one dud stop
				// cannot block the rest of the cascade.
				if errors.Is(err, ErrUnfillable) || errors.Is(err, ErrInvalidOrder) {
					continue
				}
				return extra, err
			}
		}
	}
	return extra, nil
}
