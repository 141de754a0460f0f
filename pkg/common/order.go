package common

import (
	"sync/atomic"
	"time"

	"github.com/quantarc/tradekit/pkg/utility"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

type OrderId = int64
type OrderSide int
type OrderType int
type OrderFlag int
type OrderStatus string

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStop
)

const (
	OrderFlagNone OrderFlag = iota
	OrderFlagFillOrKill
	OrderFlagAllOrNone
	OrderFlagImmediateOrCancel
)

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderSide) String() string {
	if s == OrderSideSell {
		return "sell"
	}
	return "buy"
}

// Opposite is the side a taker crosses against.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeStop:
		return "stop"
	default:
		return "market"
	}
}

func (f OrderFlag) String() string {
	switch f {
	case OrderFlagFillOrKill:
		return "fok"
	case OrderFlagAllOrNone:
		return "aon"
	case OrderFlagImmediateOrCancel:
		return "ioc"
	default:
		return "none"
	}
}

var orderIdCounter atomic.Int64

// NextOrderId hands out process-wide collision-free monotonically increasing ids.
func NextOrderId() OrderId {
	return orderIdCounter.Add(1)
}

type Order struct {
	Id         OrderId      `json:"id"`
	Side       OrderSide    `json:"side"`
	Volume     fixed.Point  `json:"volume"`
	Filled     fixed.Point  `json:"filled"`
	Price      fixed.Point  `json:"price"`
	Instrument Instrument   `json:"instrument"`
	Exchange   ExchangeType `json:"exchange"`
	Type       OrderType    `json:"order_type"`
	Flag       OrderFlag    `json:"flag"`
	StopTarget fixed.Point  `json:"stop_target"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

// NewOrder assigns the next process-wide id and stamps the order. Price is
// ignored for market orders, StopTarget only applies to stop orders.
func NewOrder(side OrderSide, volume, price fixed.Point, instrument Instrument, exchange ExchangeType, orderType OrderType, flag OrderFlag) Order {
	return Order{
		Id:          NextOrderId(),
		Side:        side,
		Volume:      volume,
		Filled:      fixed.Zero,
		Price:       price,
		Instrument:  instrument,
		Exchange:    exchange,
		Type:        orderType,
		Flag:        flag,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   time.Now(),
	}
}

func (o Order) Remaining() fixed.Point {
	return o.Volume.Sub(o.Filled)
}

func (o Order) IsFilled() bool {
	return o.Filled.Gte(o.Volume)
}
