package historical

import (
	"fmt"
	"time"

	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/utility"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

const (
	invalidIndex             = -1
	tradeReaderComponentName = "datasource.historical.reader"
)

// BinaryTrade is the fixed-width on-disk record layout. Records are sorted
// by timestamp when written, which is what makes the start lookup a binary
// search.
type BinaryTrade struct {
	TimeStamp int64 // unix nanoseconds
	Price     float64
	Volume    float64
	Side      int64 // 0 buy, 1 sell
}

func (b BinaryTrade) toTrade(instrument common.Instrument, ex common.ExchangeType, trade *common.Trade) {
	trade.Price = fixed.FromFloat64(b.Price)
	trade.Volume = fixed.FromFloat64(b.Volume)
	trade.Side = common.OrderSideBuy
	if b.Side == 1 {
		trade.Side = common.OrderSideSell
	}
	trade.Instrument = instrument
	trade.Exchange = ex
	trade.TimeStamp = time.Unix(0, b.TimeStamp).UTC()
}

// TradeReader replays recorded trades of one instrument inside [from, to].
type TradeReader struct {
	source *Source[BinaryTrade]

	instrument common.Instrument
	exchange   common.ExchangeType
	from       int64
	to         int64
	idx        int64
}

func NewTradeReader(source *Source[BinaryTrade], instrument common.Instrument, ex common.ExchangeType, from, to time.Time) *TradeReader {
	return &TradeReader{
		source:     source,
		instrument: instrument,
		exchange:   ex,
		from:       from.UnixNano(),
		to:         to.UnixNano(),
		idx:        invalidIndex,
	}
}

func (t *TradeReader) GetNext() (common.Trade, error) {

	var trade common.Trade
	var binTrade BinaryTrade

	if t.idx == invalidIndex {
		if err := t.lookupStartIndex(); err != nil {
			return trade, err
		}
	}

	if err := t.source.Read(t.idx, &binTrade); err != nil {
		return trade, fmt.Errorf("error reading entry at index %d: %w", t.idx, err)
	}
	t.idx++

	if binTrade.TimeStamp < t.from {
		return trade, fmt.Errorf("timestamp is not from the proposed range")
	}

	if binTrade.TimeStamp > t.to {
		return trade, ErrEof
	}

	binTrade.toTrade(t.instrument, t.exchange, &trade)

	trade.Source = tradeReaderComponentName
	trade.ExecutionId = utility.GetExecutionID()
	trade.TraceID = utility.CreateTraceID()

	return trade, nil
}

func (t *TradeReader) lookupStartIndex() error {
	entryCount := t.source.EntryCount()
	if entryCount == 0 {
		return fmt.Errorf("entry count is zero")
	}

	var entry BinaryTrade

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		if err := t.source.Read(mid, &entry); err != nil {
			return fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.TimeStamp < t.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return fmt.Errorf("no entry found with timestamp >= from")
	}

	t.idx = low
	return nil
}
