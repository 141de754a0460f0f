package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

func TestAccount_AddAndFind(t *testing.T) {
	account := NewAccount("acct-1", testExchange)
	assert.Equal(t, "acct-1", account.Id())
	assert.Equal(t, 0, account.Count())

	_, err := account.Find(testInstrument)
	assert.ErrorIs(t, err, ErrPositionNotFound)

	p := newTestPosition(t, 1, 100, t1)
	account.AddPosition(p)

	found, err := account.Find(testInstrument)
	require.NoError(t, err)
	assert.Same(t, p, found)
}

func TestAccount_AddPositionNeverMerges(t *testing.T) {
	account := NewAccount("acct-1", testExchange)
	first := newTestPosition(t, 1, 100, t1)
	second := newTestPosition(t, 2, 101, t2)

	account.AddPosition(first)
	account.AddPosition(second)

	assert.Equal(t, 2, account.Count())

	// Find resolves the earliest added position for the instrument.
	found, err := account.Find(testInstrument)
	require.NoError(t, err)
	assert.Same(t, first, found)
}

func TestAccount_JsonRoundTrip(t *testing.T) {
	account := NewAccount("acct-1", testExchange)
	account.AddPosition(newTestPosition(t, 2, 100, t1))

	data, err := json.Marshal(account)
	require.NoError(t, err)

	var out Account
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, account.Id(), out.Id())
	assert.Equal(t, account.Exchange(), out.Exchange())
	require.Equal(t, 1, out.Count())

	p, err := out.Find(testInstrument)
	require.NoError(t, err)
	assert.Equal(t, "2", p.Size().String())
	assert.True(t, p.Investment().Eq(fixed.FromFloat64(200)))
}
