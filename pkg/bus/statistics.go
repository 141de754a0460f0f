package bus

import (
	"fmt"
	"log/slog"
	"time"
)

// Statistics is a snapshot of one Exec/ExecLoop run, with dispatch counts
// broken down per event kind.
type Statistics struct {
	RunTime       time.Duration
	PostCount     uint64
	PostFails     uint64
	DispatchCount uint64
	DispatchFails uint64
	Throughput    float64

	DispatchByKind [eventIdCount]uint64
}

// Dispatched returns how many events of one kind the run dispatched.
func (s Statistics) Dispatched(id EventId) uint64 {
	if id >= eventIdCount {
		return 0
	}
	return s.DispatchByKind[id]
}

func (s Statistics) Print() {
	args := []any{
		"run_time", fmt.Sprintf("%.2fs", s.RunTime.Seconds()),
		"post_count", s.PostCount,
		"post_fails", s.PostFails,
		"dispatch_count", s.DispatchCount,
		"dispatch_fails", s.DispatchFails,
		"throughput", fmt.Sprintf("%.2f", s.Throughput),
	}
	for id := EventId(0); id < eventIdCount; id++ {
		if n := s.DispatchByKind[id]; n > 0 {
			args = append(args, id.String(), n)
		}
	}
	slog.Info("router statistics", args...)
}
