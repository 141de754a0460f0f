package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/quantarc/tradekit/pkg/common"
)

// Account owns the positions of one id on one exchange. AddPosition is
// append-only and never merges positions that refer to the same instrument;
// consolidating those is the caller's job via Position.Combine.
type Account struct {
	id        string
	exchange  common.ExchangeType
	positions []*Position
}

func NewAccount(id string, exchange common.ExchangeType) *Account {
	return &Account{id: id, exchange: exchange}
}

func (a *Account) Id() string                    { return a.id }
func (a *Account) Exchange() common.ExchangeType { return a.exchange }
func (a *Account) Positions() []*Position        { return a.positions }
func (a *Account) Count() int                    { return len(a.positions) }

func (a *Account) AddPosition(p *Position) {
	a.positions = append(a.positions, p)
}

// Find returns the first position on the given instrument.
func (a *Account) Find(instrument common.Instrument) (*Position, error) {
	for _, p := range a.positions {
		if p.Instrument().Equal(instrument) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, instrument)
}

type accountJSON struct {
	Id        string              `json:"id"`
	Exchange  common.ExchangeType `json:"exchange"`
	Positions []*Position         `json:"positions"`
}

func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{
		Id:        a.id,
		Exchange:  a.exchange,
		Positions: a.positions,
	})
}

func (a *Account) UnmarshalJSON(data []byte) error {
	var raw accountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ledger: account: %w", err)
	}
	a.id = raw.Id
	a.exchange = raw.Exchange
	a.positions = raw.Positions
	return nil
}
