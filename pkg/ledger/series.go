package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

// Entry is one observation of a tracked value. Entries serialize as
// [value, epoch_seconds] pairs.
type Entry struct {
	Value     fixed.Point
	TimeStamp time.Time
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%s,%d]", e.Value.String(), e.TimeStamp.Unix())), nil
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("ledger: entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("ledger: entry: expected [value, epoch_seconds], got %d elements", len(pair))
	}
	value, err := fixed.Parse(pair[0].String())
	if err != nil {
		return fmt.Errorf("ledger: entry value: %w", err)
	}
	seconds, err := pair[1].Int64()
	if err != nil {
		return fmt.Errorf("ledger: entry timestamp: %w", err)
	}
	e.Value = value
	e.TimeStamp = time.Unix(seconds, 0).UTC()
	return nil
}

// Series is an append-only chronological sequence of observations. It is the
// audit trail behind every position scalar; it is never truncated.
type Series []Entry

func (s Series) Last() (Entry, bool) {
	if len(s) == 0 {
		return Entry{}, false
	}
	return s[len(s)-1], true
}

// LastValue returns the most recent observation, Zero for an empty series.
func (s Series) LastValue() fixed.Point {
	if len(s) == 0 {
		return fixed.Zero
	}
	return s[len(s)-1].Value
}

type MergeMode int

const (
	MergeSum MergeMode = iota
	MergeMean
)

// Merge combines two chronological series into one observed at the sorted
// union of both input timestamps. At each timestamp the most recently known
// value of each input is forward-filled, Zero before an input's first entry,
// and the pair is combined per mode: sum adds, mean averages. Duplicate
// timestamps within one input collapse to the later-inserted value.
//
// This is the only mechanism consolidating two independently tracked
// exposures into one reportable series, so it has to be exact.
func Merge(a, b Series, mode MergeMode) Series {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	out := make(Series, 0, len(a)+len(b))

	lastA := fixed.Zero
	lastB := fixed.Zero

	ia, ib := 0, 0
	for ia < len(a) || ib < len(b) {
		var ts time.Time
		switch {
		case ia >= len(a):
			ts = b[ib].TimeStamp
		case ib >= len(b):
			ts = a[ia].TimeStamp
		case a[ia].TimeStamp.Before(b[ib].TimeStamp):
			ts = a[ia].TimeStamp
		default:
			ts = b[ib].TimeStamp
		}

		// Consume every entry at or before ts so the later-inserted value
		// wins on identical timestamps.
		for ia < len(a) && !a[ia].TimeStamp.After(ts) {
			lastA = a[ia].Value
			ia++
		}
		for ib < len(b) && !b[ib].TimeStamp.After(ts) {
			lastB = b[ib].Value
			ib++
		}

		combined := lastA.Add(lastB)
		if mode == MergeMean {
			combined = combined.Div(fixed.Two)
		}
		out = append(out, Entry{Value: combined, TimeStamp: ts})
	}

	return out
}
