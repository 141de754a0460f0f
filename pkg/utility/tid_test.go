package utility

import (
	"testing"
	"time"
)

func TestUtility_CreateTraceIDMonotonic(t *testing.T) {
	id1 := CreateTraceID()
	id2 := CreateTraceID()

	if id1 >= id2 {
		t.Errorf("Expected id2 > id1, got id1=%d, id2=%d", id1, id2)
	}
}

func TestUtility_CreateTraceIDUniqueness(t *testing.T) {
	const n = 5000
	ids := make(map[TraceID]bool, n)

	for i := 0; i < n; i++ {
		id := CreateTraceID()
		if ids[id] {
			t.Errorf("Duplicate TraceID: %d", id)
		}
		ids[id] = true
	}
}

func TestUtility_ParseTraceID(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := CreateTraceID()
	after := time.Now().Add(time.Second)

	timestamp, machine, seq := ParseTraceID(id)

	if timestamp.Before(before) || timestamp.After(after) {
		t.Errorf("Parsed timestamp %s outside [%s, %s]", timestamp, before, after)
	}
	if machine > maxMachine {
		t.Errorf("Machine id %d exceeds %d bits", machine, machineBits)
	}
	if seq > maxSequence {
		t.Errorf("Sequence %d exceeds %d bits", seq, sequenceBits)
	}
}
