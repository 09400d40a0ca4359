// Package book implements the two-sided price ladder: a btree of price
// levels per side, each level an insertion-ordered FIFO queue of
// resting orders. This mirrors the teacher's engine.OrderBook, which
// keeps bids/asks as btree.BTreeG[*PriceLevel]; the queue inside each
// level is generalized here to a doubly-linked list plus an order-id
// index so cancel/delete is O(1) instead of a slice scan.
package book

import (
	"container/list"

	"github.com/tidwall/btree"

	"lobster/internal/domain"
)

// level is one price's FIFO queue of resting orders.
type level struct {
	price   int64
	orders  *list.List                   // of *domain.RestingOrder, front = oldest
	byOrder map[int64]*list.Element
}

func newLevel(price int64) *level {
	return &level{
		price:   price,
		orders:  list.New(),
		byOrder: make(map[int64]*list.Element),
	}
}

func (l *level) totalSize() int64 {
	var total int64
	for e := l.orders.Front(); e != nil; e = e.Next() {
		total += e.Value.(*domain.RestingOrder).Size
	}
	return total
}

// Ladder is one side (bids or asks) of the book: a price-ordered index
// of levels, best price first.
type Ladder struct {
	side   domain.Side
	levels *btree.BTreeG[*level]
	byPrice map[int64]*level
}

func newLadder(side domain.Side) *Ladder {
	var less func(a, b *level) bool
	if side == domain.Bid {
		less = func(a, b *level) bool { return a.price > b.price } // highest first
	} else {
		less = func(a, b *level) bool { return a.price < b.price } // lowest first
	}
	return &Ladder{
		side:    side,
		levels:  btree.NewBTreeG(less),
		byPrice: make(map[int64]*level),
	}
}

// Best returns the best (highest bid / lowest ask) price and whether
// the ladder is non-empty.
func (l *Ladder) Best() (price int64, ok bool) {
	lv, ok := l.levels.Min()
	if !ok {
		return 0, false
	}
	return lv.price, true
}

// Worst returns the worst (lowest bid / highest ask) occupied price.
func (l *Ladder) Worst() (price int64, ok bool) {
	lv, ok := l.levels.Max()
	if !ok {
		return 0, false
	}
	return lv.price, true
}

// Insert appends order to the back of its price level's FIFO queue,
// creating the level if it does not yet exist.
func (l *Ladder) Insert(order domain.RestingOrder) {
	lv, ok := l.byPrice[order.Price]
	if !ok {
		lv = newLevel(order.Price)
		l.byPrice[order.Price] = lv
		l.levels.Set(lv)
	}
	o := order
	elem := lv.orders.PushBack(&o)
	lv.byOrder[order.OrderID] = elem
}

// Get returns the resting order at price with id orderID, if present.
func (l *Ladder) Get(price, orderID int64) (*domain.RestingOrder, bool) {
	lv, ok := l.byPrice[price]
	if !ok {
		return nil, false
	}
	elem, ok := lv.byOrder[orderID]
	if !ok {
		return nil, false
	}
	return elem.Value.(*domain.RestingOrder), true
}

// Remove deletes the order at (price, orderID), removing the level too
// if it becomes empty. Returns false if not found.
func (l *Ladder) Remove(price, orderID int64) bool {
	lv, ok := l.byPrice[price]
	if !ok {
		return false
	}
	elem, ok := lv.byOrder[orderID]
	if !ok {
		return false
	}
	lv.orders.Remove(elem)
	delete(lv.byOrder, orderID)
	if lv.orders.Len() == 0 {
		delete(l.byPrice, price)
		l.levels.Delete(lv)
	}
	return true
}

// Head returns the oldest resting order at price, if the level exists
// and is non-empty.
func (l *Ladder) Head(price int64) (*domain.RestingOrder, bool) {
	lv, ok := l.byPrice[price]
	if !ok || lv.orders.Len() == 0 {
		return nil, false
	}
	return lv.orders.Front().Value.(*domain.RestingOrder), true
}

// Tail returns the newest resting order at price, if the level exists
// and is non-empty.
func (l *Ladder) Tail(price int64) (*domain.RestingOrder, bool) {
	lv, ok := l.byPrice[price]
	if !ok || lv.orders.Len() == 0 {
		return nil, false
	}
	return lv.orders.Back().Value.(*domain.RestingOrder), true
}

// VolumeAt returns the total resting size at price (0 if absent).
func (l *Ladder) VolumeAt(price int64) int64 {
	lv, ok := l.byPrice[price]
	if !ok {
		return 0
	}
	return lv.totalSize()
}

// TotalVolume sums resting size across every level.
func (l *Ladder) TotalVolume() int64 {
	var total int64
	l.levels.Scan(func(lv *level) bool {
		total += lv.totalSize()
		return true
	})
	return total
}

// Empty reports whether the ladder currently has no levels.
func (l *Ladder) Empty() bool {
	return l.levels.Len() == 0
}

// VolumeBetter sums resting size at every level strictly better than
// price (strictly higher for bids, strictly lower for asks). Used by
// VolumeOfHigherPriorityOrders; intra-level priority is not modeled
// (see spec.md §9 Open Questions).
func (l *Ladder) VolumeBetter(price int64) int64 {
	var total int64
	l.levels.Scan(func(lv *level) bool {
		better := lv.price < price
		if l.side == domain.Bid {
			better = lv.price > price
		}
		if !better {
			return false
		}
		total += lv.totalSize()
		return true
	})
	return total
}

// VolumeBeyond sums resting size at every level strictly nearer to the
// touch than the given symmetric threshold price — the side of the
// reflection point closer to best, not past it:
//   - for an ask ladder, levels with price strictly less than threshold
//   - for a bid ladder, levels with price strictly greater than threshold
//
// This directionality is fixed by the caller choosing which ladder to
// query; see SymmetricOppositeBookVolume in the engine package. The
// qualifying levels are a prefix of scan order (best first), so the
// scan can stop at the first non-qualifying level.
func (l *Ladder) VolumeBeyond(threshold int64, ascending bool) int64 {
	var total int64
	l.levels.Scan(func(lv *level) bool {
		within := lv.price < threshold
		if !ascending {
			within = lv.price > threshold
		}
		if !within {
			return false
		}
		total += lv.totalSize()
		return true
	})
	return total
}

// PriceLevel is a read-only snapshot of one level, used by L2/L3 views.
type PriceLevel struct {
	Price  int64
	Orders []domain.RestingOrder // oldest first
}

// Levels returns up to n price levels, best first, each with its full
// FIFO order list (L3) — callers wanting L2 just sum Orders sizes.
func (l *Ladder) Levels(n int) []PriceLevel {
	out := make([]PriceLevel, 0, n)
	l.levels.Scan(func(lv *level) bool {
		if len(out) >= n {
			return false
		}
		orders := make([]domain.RestingOrder, 0, lv.orders.Len())
		for e := lv.orders.Front(); e != nil; e = e.Next() {
			orders = append(orders, *e.Value.(*domain.RestingOrder))
		}
		out = append(out, PriceLevel{Price: lv.price, Orders: orders})
		return true
	})
	return out
}

// NewBidLadder and NewAskLadder construct empty ladders for their side.
func NewBidLadder() *Ladder { return newLadder(domain.Bid) }
func NewAskLadder() *Ladder { return newLadder(domain.Ask) }
