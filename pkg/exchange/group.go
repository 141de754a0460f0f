package exchange

import (
	"sync"

	"github.com/quantarc/tradekit/pkg/book"
	"github.com/quantarc/tradekit/pkg/common"
)

// Key identifies one order book: instrument identity plus venue.
type Key struct {
	Instrument common.InstrumentType
	Name       string
	Exchange   string
}

func KeyOf(instrument common.Instrument, exchange common.ExchangeType) Key {
	return Key{Instrument: instrument.Type, Name: instrument.Name, Exchange: exchange.Name}
}

// Group owns one matching book per (instrument, exchange) key. Each book
// serializes its own mutations; books for different keys share no mutable
// state and may be driven concurrently.
type Group struct {
	mu      sync.RWMutex
	books   map[Key]*book.Book
	options []book.Option
}

func NewGroup(options ...book.Option) *Group {
	return &Group{
		books:   make(map[Key]*book.Book),
		options: options,
	}
}

// Book returns the matching engine for the key, creating it on first use.
func (g *Group) Book(instrument common.Instrument, exchange common.ExchangeType) *book.Book {
	key := KeyOf(instrument, exchange)

	g.mu.RLock()
	b, ok := g.books[key]
	g.mu.RUnlock()
	if ok {
		return b
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok = g.books[key]; ok {
		return b
	}
	b = book.New(instrument, exchange, g.options...)
	g.books[key] = b
	return b
}

func (g *Group) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.books)
}
