package common

import (
	"time"

	"github.com/quantarc/tradekit/pkg/utility"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

// Trade is produced only by the matching engine and is immutable once created.
// MakerId is the resting side, TakerId the incoming side.
type Trade struct {
	Price           fixed.Point  `json:"price"`
	Volume          fixed.Point  `json:"volume"`
	Side            OrderSide    `json:"side"`
	Instrument      Instrument   `json:"instrument"`
	Exchange        ExchangeType `json:"exchange"`
	MakerId         OrderId      `json:"maker_id"`
	TakerId         OrderId      `json:"taker_id"`
	Slippage        fixed.Point  `json:"slippage"`
	TransactionCost fixed.Point  `json:"transaction_cost"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

// Notional is price x volume, the traded value.
func (t Trade) Notional() fixed.Point {
	return t.Price.Mul(t.Volume)
}
