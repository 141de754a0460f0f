package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

var (
	t1 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC)
	t3 = time.Date(2024, 3, 1, 10, 0, 2, 0, time.UTC)
)

func entry(v float64, ts time.Time) Entry {
	return Entry{Value: fixed.FromFloat64(v), TimeStamp: ts}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		a        Series
		b        Series
		mode     MergeMode
		expected Series
	}{
		{
			name:     "sum of two entries at the same timestamp",
			a:        Series{entry(1, t1)},
			b:        Series{entry(2, t1)},
			mode:     MergeSum,
			expected: Series{entry(3, t1)},
		},
		{
			name:     "sum with forward fill",
			a:        Series{entry(1, t1), entry(2, t2)},
			b:        Series{entry(10, t2)},
			mode:     MergeSum,
			expected: Series{entry(1, t1), entry(12, t2)},
		},
		{
			name:     "zero before first timestamp of the other series",
			a:        Series{entry(5, t2)},
			b:        Series{entry(3, t1)},
			mode:     MergeSum,
			expected: Series{entry(3, t1), entry(8, t2)},
		},
		{
			name:     "mean of aligned series",
			a:        Series{entry(100, t1), entry(102, t2)},
			b:        Series{entry(102, t1), entry(104, t2)},
			mode:     MergeMean,
			expected: Series{entry(101, t1), entry(103, t2)},
		},
		{
			name:     "mean forward fills the stale side",
			a:        Series{entry(100, t1)},
			b:        Series{entry(104, t2)},
			mode:     MergeMean,
			expected: Series{entry(50, t1), entry(102, t2)},
		},
		{
			name:     "duplicate timestamp collapses to the later-inserted value",
			a:        Series{entry(1, t1), entry(7, t1)},
			b:        Series{entry(2, t1)},
			mode:     MergeSum,
			expected: Series{entry(9, t1)},
		},
		{
			name:     "empty against empty",
			a:        nil,
			b:        nil,
			mode:     MergeSum,
			expected: nil,
		},
		{
			name:     "one side empty",
			a:        Series{entry(4, t1), entry(5, t3)},
			b:        nil,
			mode:     MergeSum,
			expected: Series{entry(4, t1), entry(5, t3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.a, tt.b, tt.mode)
			require.Len(t, got, len(tt.expected))
			for i := range tt.expected {
				assert.True(t, got[i].Value.Eq(tt.expected[i].Value),
					"entry %d: expected %s got %s", i, tt.expected[i].Value, got[i].Value)
				assert.True(t, got[i].TimeStamp.Equal(tt.expected[i].TimeStamp),
					"entry %d: expected %s got %s", i, tt.expected[i].TimeStamp, got[i].TimeStamp)
			}
		})
	}
}

func TestMerge_ChronologicalOutput(t *testing.T) {
	a := Series{entry(1, t1), entry(2, t3)}
	b := Series{entry(10, t2)}

	got := Merge(a, b, MergeSum)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].TimeStamp.After(got[i-1].TimeStamp))
	}
	assert.Equal(t, "1", got[0].Value.String())
	assert.Equal(t, "11", got[1].Value.String())
	assert.Equal(t, "12", got[2].Value.String())
}

func TestEntry_JsonRoundTrip(t *testing.T) {
	in := entry(12.34, t1)

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[12.34, 1709287200]`, string(data))

	var out Entry
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.Value.Eq(in.Value))
	assert.Equal(t, in.TimeStamp.Unix(), out.TimeStamp.Unix())
}

func TestSeries_LastValue(t *testing.T) {
	assert.True(t, Series(nil).LastValue().IsZero())

	s := Series{entry(1, t1), entry(2, t2)}
	assert.Equal(t, "2", s.LastValue().String())
}
