package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInstrumentMismatch = errors.New("instrument mismatch")
	ErrPositionNotFound   = errors.New("position is not found")
)

// Position tracks a single instrument's exposure. Every scalar is backed by a
// full append-only history; reads report the last entry rounded to 4 decimal
// places while the stored values keep full precision. All mutations go through
// setters that take a (value, timestamp) pair and preserve the monotonic
// timestamp invariant of each history.
type Position struct {
	instrument common.Instrument
	exchange   common.ExchangeType
	timeStamp  time.Time

	size            Series
	price           Series
	investment      Series
	notional        Series
	instrumentPrice Series
	pnl             Series
	unrealizedPnl   Series

	trades []common.Trade
}

// NewPosition seeds every history with one entry at ts. Investment is derived
// as size x price, notional starts equal to investment, both P&L figures at zero.
func NewPosition(size, price fixed.Point, ts time.Time, instrument common.Instrument, exchange common.ExchangeType, trades []common.Trade) (*Position, error) {
	if ts.IsZero() {
		return nil, fmt.Errorf("%w: zero timestamp", ErrInvalidArgument)
	}

	investment := size.Mul(price)
	p := &Position{
		instrument:      instrument,
		exchange:        exchange,
		timeStamp:       ts,
		size:            Series{{Value: size, TimeStamp: ts}},
		price:           Series{{Value: price, TimeStamp: ts}},
		investment:      Series{{Value: investment, TimeStamp: ts}},
		notional:        Series{{Value: investment, TimeStamp: ts}},
		instrumentPrice: Series{{Value: price, TimeStamp: ts}},
		pnl:             Series{{Value: fixed.Zero, TimeStamp: ts}},
		unrealizedPnl:   Series{{Value: fixed.Zero, TimeStamp: ts}},
		trades:          append([]common.Trade(nil), trades...),
	}
	return p, nil
}

func (p *Position) Instrument() common.Instrument { return p.instrument }
func (p *Position) Exchange() common.ExchangeType { return p.exchange }
func (p *Position) TimeStamp() time.Time          { return p.timeStamp }

func (p *Position) Size() fixed.Point            { return p.size.LastValue().Round4() }
func (p *Position) Price() fixed.Point           { return p.price.LastValue().Round4() }
func (p *Position) Investment() fixed.Point      { return p.investment.LastValue().Round4() }
func (p *Position) Notional() fixed.Point        { return p.notional.LastValue().Round4() }
func (p *Position) InstrumentPrice() fixed.Point { return p.instrumentPrice.LastValue().Round4() }
func (p *Position) Pnl() fixed.Point             { return p.pnl.LastValue().Round4() }
func (p *Position) UnrealizedPnl() fixed.Point   { return p.unrealizedPnl.LastValue().Round4() }

func (p *Position) SizeHistory() Series            { return p.size }
func (p *Position) PriceHistory() Series           { return p.price }
func (p *Position) InvestmentHistory() Series      { return p.investment }
func (p *Position) NotionalHistory() Series        { return p.notional }
func (p *Position) InstrumentPriceHistory() Series { return p.instrumentPrice }
func (p *Position) PnlHistory() Series             { return p.pnl }
func (p *Position) UnrealizedPnlHistory() Series   { return p.unrealizedPnl }

func (p *Position) Trades() []common.Trade { return p.trades }

func (p *Position) validate(s Series, ts time.Time) error {
	if ts.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrInvalidArgument)
	}
	if last, ok := s.Last(); ok && ts.Before(last.TimeStamp) {
		return fmt.Errorf("%w: timestamp %s precedes history head %s", ErrInvalidArgument, ts, last.TimeStamp)
	}
	return nil
}

func (p *Position) SetSize(value fixed.Point, ts time.Time) error {
	if err := p.validate(p.size, ts); err != nil {
		return err
	}
	p.size = append(p.size, Entry{Value: value, TimeStamp: ts})
	return nil
}

// SetPrice also recomputes investment against the current size.
func (p *Position) SetPrice(value fixed.Point, ts time.Time) error {
	if err := p.validate(p.price, ts); err != nil {
		return err
	}
	p.price = append(p.price, Entry{Value: value, TimeStamp: ts})
	p.investment = append(p.investment, Entry{Value: p.size.LastValue().Mul(value), TimeStamp: ts})
	return nil
}

func (p *Position) SetInvestment(value fixed.Point, ts time.Time) error {
	if err := p.validate(p.investment, ts); err != nil {
		return err
	}
	p.investment = append(p.investment, Entry{Value: value, TimeStamp: ts})
	return nil
}

func (p *Position) SetNotional(value fixed.Point, ts time.Time) error {
	if err := p.validate(p.notional, ts); err != nil {
		return err
	}
	p.notional = append(p.notional, Entry{Value: value, TimeStamp: ts})
	return nil
}

// SetInstrumentPrice also recomputes notional when the position has size.
func (p *Position) SetInstrumentPrice(value fixed.Point, ts time.Time) error {
	if err := p.validate(p.instrumentPrice, ts); err != nil {
		return err
	}
	p.instrumentPrice = append(p.instrumentPrice, Entry{Value: value, TimeStamp: ts})
	if size := p.size.LastValue(); !size.IsZero() {
		p.notional = append(p.notional, Entry{Value: size.Mul(value), TimeStamp: ts})
	}
	return nil
}

func (p *Position) SetPnl(value fixed.Point, ts time.Time) error {
	if err := p.validate(p.pnl, ts); err != nil {
		return err
	}
	p.pnl = append(p.pnl, Entry{Value: value, TimeStamp: ts})
	return nil
}

func (p *Position) SetUnrealizedPnl(value fixed.Point, ts time.Time) error {
	if err := p.validate(p.unrealizedPnl, ts); err != nil {
		return err
	}
	p.unrealizedPnl = append(p.unrealizedPnl, Entry{Value: value, TimeStamp: ts})
	return nil
}

// ApplyTrade folds a fill into the exposure: same-direction fills move the
// entry price to the volume-weighted average, reducing fills realize P&L
// against the entry price, and a fill crossing through zero restarts the
// entry price at the trade price.
func (p *Position) ApplyTrade(t common.Trade) error {
	if !p.instrument.Equal(t.Instrument) {
		return fmt.Errorf("%w: position %s, trade %s", ErrInstrumentMismatch, p.instrument, t.Instrument)
	}

	signed := t.Volume
	if t.Side == common.OrderSideSell {
		signed = t.Volume.Neg()
	}

	oldSize := p.size.LastValue()
	oldPrice := p.price.LastValue()
	newSize := oldSize.Add(signed)

	var newPrice fixed.Point
	realized := fixed.Zero

	switch {
	case oldSize.IsZero():
		newPrice = t.Price
	case oldSize.IsPos() == signed.IsPos():
		// Same direction, weighted-average entry.
		total := oldSize.Abs().Add(t.Volume)
		newPrice = oldSize.Abs().Mul(oldPrice).Add(t.Volume.Mul(t.Price)).Div(total)
	case newSize.IsZero() || newSize.IsPos() == oldSize.IsPos():
		// Reduction, realize against the closed volume.
		closed := fixed.Min(t.Volume, oldSize.Abs())
		diff := t.Price.Sub(oldPrice)
		if oldSize.IsNeg() {
			diff = diff.Neg()
		}
		realized = diff.Mul(closed)
		newPrice = oldPrice
	default:
		// Crossed through zero, the remainder opens at the trade price.
		closed := oldSize.Abs()
		diff := t.Price.Sub(oldPrice)
		if oldSize.IsNeg() {
			diff = diff.Neg()
		}
		realized = diff.Mul(closed)
		newPrice = t.Price
	}

	if err := p.SetSize(newSize, t.TimeStamp); err != nil {
		return err
	}
	if err := p.SetPrice(newPrice, t.TimeStamp); err != nil {
		return err
	}
	if !realized.IsZero() {
		if err := p.SetPnl(p.pnl.LastValue().Add(realized), t.TimeStamp); err != nil {
			return err
		}
	}
	if err := p.SetInstrumentPrice(t.Price, t.TimeStamp); err != nil {
		return err
	}
	unrealized := t.Price.Sub(newPrice).Mul(newSize)
	if err := p.SetUnrealizedPnl(unrealized, t.TimeStamp); err != nil {
		return err
	}

	p.trades = append(p.trades, t)
	return nil
}

// MarkToMarket revalues against an observed instrument price without trading.
func (p *Position) MarkToMarket(price fixed.Point, ts time.Time) error {
	if err := p.SetInstrumentPrice(price, ts); err != nil {
		return err
	}
	unrealized := price.Sub(p.price.LastValue()).Mul(p.size.LastValue())
	return p.SetUnrealizedPnl(unrealized, ts)
}

// Combine produces a consolidated position from two exposure histories over
// the same instrument. Sum-type histories (size, notional, investment, pnl,
// unrealizedPnl) merge in sum mode, rate-type histories (price,
// instrumentPrice) in mean mode; current scalars become the last entry of
// each combined history and trade lists are concatenated.
func (p *Position) Combine(other *Position) (*Position, error) {
	if other == nil {
		return nil, fmt.Errorf("%w: nil position", ErrInvalidArgument)
	}
	if !p.instrument.Equal(other.instrument) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrInstrumentMismatch, p.instrument, other.instrument)
	}

	ts := p.timeStamp
	if other.timeStamp.Before(ts) {
		ts = other.timeStamp
	}

	trades := make([]common.Trade, 0, len(p.trades)+len(other.trades))
	trades = append(trades, p.trades...)
	trades = append(trades, other.trades...)

	return &Position{
		instrument:      p.instrument,
		exchange:        p.exchange,
		timeStamp:       ts,
		size:            Merge(p.size, other.size, MergeSum),
		price:           Merge(p.price, other.price, MergeMean),
		investment:      Merge(p.investment, other.investment, MergeSum),
		notional:        Merge(p.notional, other.notional, MergeSum),
		instrumentPrice: Merge(p.instrumentPrice, other.instrumentPrice, MergeMean),
		pnl:             Merge(p.pnl, other.pnl, MergeSum),
		unrealizedPnl:   Merge(p.unrealizedPnl, other.unrealizedPnl, MergeSum),
		trades:          trades,
	}, nil
}

type positionJSON struct {
	TimeStamp              int64               `json:"timestamp"`
	Instrument             common.Instrument   `json:"instrument"`
	Exchange               common.ExchangeType `json:"exchange"`
	Size                   fixed.Point         `json:"size"`
	SizeHistory            Series              `json:"size_history"`
	Notional               fixed.Point         `json:"notional"`
	NotionalHistory        Series              `json:"notional_history"`
	Price                  fixed.Point         `json:"price"`
	PriceHistory           Series              `json:"price_history"`
	Investment             fixed.Point         `json:"investment"`
	InvestmentHistory      Series              `json:"investment_history"`
	InstrumentPrice        fixed.Point         `json:"instrumentPrice"`
	InstrumentPriceHistory Series              `json:"instrumentPrice_history"`
	Pnl                    fixed.Point         `json:"pnl"`
	PnlHistory             Series              `json:"pnl_history"`
	UnrealizedPnl          fixed.Point         `json:"unrealizedPnl"`
	UnrealizedPnlHistory   Series              `json:"unrealizedPnl_history"`
	Trades                 []common.Trade      `json:"trades"`
}

// MarshalJSON writes full-precision current values; rounding applies only to
// the getter view, never to persisted audit data.
func (p *Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{
		TimeStamp:              p.timeStamp.Unix(),
		Instrument:             p.instrument,
		Exchange:               p.exchange,
		Size:                   p.size.LastValue(),
		SizeHistory:            p.size,
		Notional:               p.notional.LastValue(),
		NotionalHistory:        p.notional,
		Price:                  p.price.LastValue(),
		PriceHistory:           p.price,
		Investment:             p.investment.LastValue(),
		InvestmentHistory:      p.investment,
		InstrumentPrice:        p.instrumentPrice.LastValue(),
		InstrumentPriceHistory: p.instrumentPrice,
		Pnl:                    p.pnl.LastValue(),
		PnlHistory:             p.pnl,
		UnrealizedPnl:          p.unrealizedPnl.LastValue(),
		UnrealizedPnlHistory:   p.unrealizedPnl,
		Trades:                 p.trades,
	})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ledger: position: %w", err)
	}

	p.instrument = raw.Instrument
	p.exchange = raw.Exchange
	p.timeStamp = time.Unix(raw.TimeStamp, 0).UTC()
	p.size = raw.SizeHistory
	p.price = raw.PriceHistory
	p.investment = raw.InvestmentHistory
	p.notional = raw.NotionalHistory
	p.instrumentPrice = raw.InstrumentPriceHistory
	p.pnl = raw.PnlHistory
	p.unrealizedPnl = raw.UnrealizedPnlHistory
	p.trades = raw.Trades
	return nil
}
