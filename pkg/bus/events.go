package bus

type EventId uint8

const (
	OrderEvent EventId = iota
	TradeEvent
	OrderOpenEvent
	FillEvent
	CancelEvent
	ChangeEvent
	OrderRejectedEvent
	ErrorEvent
	HaltEvent
	ContinueEvent

	eventIdCount
)

func (id EventId) String() string {
	switch id {
	case OrderEvent:
		return "order"
	case TradeEvent:
		return "trade"
	case OrderOpenEvent:
		return "order_open"
	case FillEvent:
		return "fill"
	case CancelEvent:
		return "cancel"
	case ChangeEvent:
		return "change"
	case OrderRejectedEvent:
		return "order_rejected"
	case ErrorEvent:
		return "error"
	case HaltEvent:
		return "halt"
	case ContinueEvent:
		return "continue"
	default:
		return "unknown"
	}
}
