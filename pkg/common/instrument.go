package common

import "go.uber.org/zap"

type InstrumentType int

const (
	InstrumentCurrency InstrumentType = iota
	InstrumentEquity
	InstrumentCrypto
	InstrumentPair
)

func (t InstrumentType) String() string {
	switch t {
	case InstrumentCurrency:
		return "currency"
	case InstrumentEquity:
		return "equity"
	case InstrumentCrypto:
		return "crypto"
	case InstrumentPair:
		return "pair"
	default:
		return "unknown"
	}
}

// ExchangeType is a thin venue identity. The zero value (empty name) is the
// valid "no exchange" sentinel.
type ExchangeType struct {
	Name string `json:"name"`
}

func (e ExchangeType) IsZero() bool   { return e.Name == "" }
func (e ExchangeType) String() string { return e.Name }

// Instrument identifies what is being traded. Identity is name+type;
// instruments are immutable after construction. Composite pairs carry their
// two legs.
type Instrument struct {
	Name string         `json:"name"`
	Type InstrumentType `json:"type"`
	Leg1 *Instrument    `json:"leg1,omitempty"`
	Leg2 *Instrument    `json:"leg2,omitempty"`
}

func NewInstrument(name string, instrumentType InstrumentType) Instrument {
	return Instrument{Name: name, Type: instrumentType}
}

func NewPair(name string, leg1, leg2 Instrument) Instrument {
	return Instrument{Name: name, Type: InstrumentPair, Leg1: &leg1, Leg2: &leg2}
}

func (i Instrument) Equal(o Instrument) bool {
	return i.Name == o.Name && i.Type == o.Type
}

func (i Instrument) String() string {
	return i.Name
}

func (i Instrument) Fields() []zap.Field {
	return []zap.Field{
		zap.String("name", i.Name),
		zap.String("type", i.Type.String()),
	}
}
