package book

import (
	"sort"

	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

// restingOrder is the stable handle a placed order lives behind until it is
// filled or cancelled. seq is the arrival sequence, the only tie-breaker at
// a price level.
type restingOrder struct {
	order common.Order
	seq   uint64
}

func (r *restingOrder) remaining() fixed.Point {
	return r.order.Remaining()
}

// level is one price with its FIFO queue of resting orders.
type level struct {
	price fixed.Point
	queue []*restingOrder
}

func (l *level) volume() fixed.Point {
	total := fixed.Zero
	for _, r := range l.queue {
		total = total.Add(r.remaining())
	}
	return total
}

// bookSide keeps levels sorted best price first: descending for bids,
// ascending for asks.
type bookSide struct {
	side   common.OrderSide
	levels []*level
}

func newBookSide(side common.OrderSide) *bookSide {
	return &bookSide{side: side}
}

// better reports whether price a outranks price b on this side.
func (s *bookSide) better(a, b fixed.Point) bool {
	if s.side == common.OrderSideBuy {
		return a.Gt(b)
	}
	return a.Lt(b)
}

// search returns the index the price belongs at and whether a level with
// exactly that price exists there.
func (s *bookSide) search(price fixed.Point) (int, bool) {
	idx := sort.Search(len(s.levels), func(i int) bool {
		return !s.better(s.levels[i].price, price)
	})
	if idx < len(s.levels) && s.levels[idx].price.Eq(price) {
		return idx, true
	}
	return idx, false
}

func (s *bookSide) best() *level {
	if len(s.levels) == 0 {
		return nil
	}
	return s.levels[0]
}

func (s *bookSide) insert(r *restingOrder) {
	idx, exact := s.search(r.order.Price)
	if exact {
		s.levels[idx].queue = append(s.levels[idx].queue, r)
		return
	}
	lvl := &level{price: r.order.Price, queue: []*restingOrder{r}}
	s.levels = append(s.levels, nil)
	copy(s.levels[idx+1:], s.levels[idx:])
	s.levels[idx] = lvl
}

func (s *bookSide) remove(r *restingOrder) bool {
	idx, exact := s.search(r.order.Price)
	if !exact {
		return false
	}
	lvl := s.levels[idx]
	for i, q := range lvl.queue {
		if q == r {
			lvl.queue = append(lvl.queue[:i], lvl.queue[i+1:]...)
			if len(lvl.queue) == 0 {
				s.levels = append(s.levels[:idx], s.levels[idx+1:]...)
			}
			return true
		}
	}
	return false
}

// dropLevelIfEmpty prunes the level at idx once its queue drains.
func (s *bookSide) dropLevelIfEmpty(idx int) {
	if idx < len(s.levels) && len(s.levels[idx].queue) == 0 {
		s.levels = append(s.levels[:idx], s.levels[idx+1:]...)
	}
}
