package engine

import (
	"math"

	"lobster/internal/domain"
)

// midPriceRaw is the internal (value, ok) form used by Process to
// detect midprice changes without allocating. ok is false whenever
// either side is empty, per spec.md §3 invariant 4.
func (b *Book) midPriceRaw() (float64, bool) {
	bid, bidOK := b.bids.Best()
	ask, askOK := b.asks.Best()
	if !bidOK || !askOK {
		return 0, false
	}
	return float64(bid+ask) / 2, true
}

// MidPrice is (best bid + best ask) / 2. ok is false when either side
// is empty — callers must check, per spec.md §9's sentinel guidance.
func (b *Book) MidPrice() (mid float64, ok bool) {
	return b.midPriceRaw()
}

// MidPriceChangeTimestamp is the timestamp of the most recent event
// that changed the midprice while both sides were non-empty at both
// boundaries (spec.md §3 invariant 4).
func (b *Book) MidPriceChangeTimestamp() float64 {
	return b.midpriceChangeTS
}

// HighestBidPrice returns the current best bid, or the 0 sentinel when
// the bid side is empty (spec.md §4.1).
func (b *Book) HighestBidPrice() int64 {
	price, ok := b.bids.Best()
	if !ok {
		return 0
	}
	return price
}

// LowestAskPrice returns the current best ask, or the +Inf sentinel
// (represented as math.MaxInt64) when the ask side is empty.
func (b *Book) LowestAskPrice() int64 {
	price, ok := b.asks.Best()
	if !ok {
		return math.MaxInt64
	}
	return price
}

// BidAskSpread is lowest ask minus highest bid. Returns +Inf if either
// side is empty, per spec.md §7's empty-side sentinel rule.
func (b *Book) BidAskSpread() float64 {
	_, bidOK := b.bids.Best()
	_, askOK := b.asks.Best()
	if !bidOK || !askOK {
		return math.Inf(1)
	}
	return float64(b.LowestAskPrice() - b.HighestBidPrice())
}

// LowestAskVolume sums resting size at the current best ask (0 if the
// ask side is empty).
func (b *Book) LowestAskVolume() int64 {
	ask, ok := b.asks.Best()
	if !ok {
		return 0
	}
	return b.asks.VolumeAt(ask)
}

// HighestBidVolume sums resting size at the current best bid (0 if the
// bid side is empty).
func (b *Book) HighestBidVolume() int64 {
	bid, ok := b.bids.Best()
	if !ok {
		return 0
	}
	return b.bids.VolumeAt(bid)
}

// WorstBidPrice and WorstAskPrice return the outermost occupied level
// on each side. ok is false when that side is empty.
func (b *Book) WorstBidPrice() (int64, bool) { return b.bids.Worst() }
func (b *Book) WorstAskPrice() (int64, bool) { return b.asks.Worst() }

// OrderbookPriceRange is worst ask minus worst bid.
func (b *Book) OrderbookPriceRange() (int64, bool) {
	worstBid, bidOK := b.bids.Worst()
	worstAsk, askOK := b.asks.Worst()
	if !bidOK || !askOK {
		return 0, false
	}
	return worstAsk - worstBid, true
}

// AvailableVolAtPrice sums resting size across both sides at price.
func (b *Book) AvailableVolAtPrice(price int64) int64 {
	return b.bids.VolumeAt(price) + b.asks.VolumeAt(price)
}

// TotalBidVolume and TotalAskVolume sum resting size across every
// level on that side.
func (b *Book) TotalBidVolume() int64 { return b.bids.TotalVolume() }
func (b *Book) TotalAskVolume() int64 { return b.asks.TotalVolume() }

// CumOFI returns a copy of the cumulative OFI accumulator.
func (b *Book) CumOFI() domain.OFI { return b.cumOFI }

// SizeOFI and CountOFI are the derived signed OFI quantities from
// spec.md §4.3.
func (b *Book) SizeOFI() int64  { return b.cumOFI.SizeOFI() }
func (b *Book) CountOFI() int64 { return b.cumOFI.CountOFI() }

// VolumeOfHigherPriorityOrders sums the size of every resting order on
// L's side at a price strictly better than L.Price. Intra-level
// priority is not modeled for a hypothetical order — spec.md §9 Open
// Questions resolves this to zero contribution within the same level.
func (b *Book) VolumeOfHigherPriorityOrders(order domain.RestingOrder) int64 {
	return b.ladder(order.Side).VolumeBetter(order.Price)
}

// SymmetricOppositeBookVolume sums resting size on the opposite ladder
// for prices strictly nearer the touch than the mirror of order.Price
// around the current midprice (asks strictly below it for a bid order,
// bids strictly above it for an ask order). Returns 0 if the midprice is undefined, or if
// order is already through the midprice on its own side.
func (b *Book) SymmetricOppositeBookVolume(order domain.RestingOrder) int64 {
	mid, ok := b.midPriceRaw()
	if !ok {
		return 0
	}
	symmetric := int64(2*mid) - order.Price

	if order.Side == domain.Bid {
		if float64(order.Price) >= mid {
			return 0
		}
		return b.asks.VolumeBeyond(symmetric, true)
	}
	if float64(order.Price) <= mid {
		return 0
	}
	return b.bids.VolumeBeyond(symmetric, false)
}

// OppositeSideBookDepth is the total resting volume on the side
// opposite order.
func (b *Book) OppositeSideBookDepth(order domain.RestingOrder) int64 {
	return b.ladder(order.Side.Opposite()).TotalVolume()
}

// SameSideBookDepth is the total resting volume on order's own side.
func (b *Book) SameSideBookDepth(order domain.RestingOrder) int64 {
	return b.ladder(order.Side).TotalVolume()
}

// TimeElapsedSinceFirstAvailableOrderWithSamePrice is
// order.Timestamp minus the arrival time of the oldest resting order
// at order.Price on order.Side; 0 if none resting there.
func (b *Book) TimeElapsedSinceFirstAvailableOrderWithSamePrice(order domain.RestingOrder) float64 {
	first, ok := b.ladder(order.Side).Head(order.Price)
	if !ok {
		return 0
	}
	return order.Timestamp - first.Timestamp
}

// TimeElapsedSinceMostRecentOrderWithSamePrice is order.Timestamp
// minus the arrival time of the newest resting order at order.Price
// on order.Side; 0 if none resting there.
func (b *Book) TimeElapsedSinceMostRecentOrderWithSamePrice(order domain.RestingOrder) float64 {
	last, ok := b.ladder(order.Side).Tail(order.Price)
	if !ok {
		return 0
	}
	return order.Timestamp - last.Timestamp
}

// TimeElapsedSinceMidPriceChange is order.Timestamp minus the
// timestamp of the most recent midprice change.
func (b *Book) TimeElapsedSinceMidPriceChange(order domain.RestingOrder) float64 {
	return order.Timestamp - b.midpriceChangeTS
}

// Levels returns up to n price levels (best first) on the given side,
// for L2/L3 snapshot helpers (spec.md §4.1, §6 GLOSSARY).
func (b *Book) Levels(side domain.Side, n int) []ladderLevel {
	raw := b.ladder(side).Levels(n)
	out := make([]ladderLevel, len(raw))
	for i, lv := range raw {
		out[i] = ladderLevel{Price: lv.Price, Orders: lv.Orders}
	}
	return out
}

// ladderLevel re-exports book.PriceLevel under the engine package so
// callers don't need to import internal/book for snapshot helpers.
type ladderLevel struct {
	Price  int64
	Orders []domain.RestingOrder
}

// L2Level is one aggregated price level: direction, price, total size.
type L2Level struct {
	Side  domain.Side
	Price int64
	Size  int64
}

// L2Snapshot returns the top NLevels aggregated levels per side,
// mirroring the original's convert_orderbook_to_L2_dataframe.
func (b *Book) L2Snapshot() []L2Level {
	out := make([]L2Level, 0, 2*b.cfg.NLevels)
	for _, lv := range b.Levels(domain.Bid, b.cfg.NLevels) {
		out = append(out, L2Level{Side: domain.Bid, Price: lv.Price, Size: sumSize(lv.Orders)})
	}
	for _, lv := range b.Levels(domain.Ask, b.cfg.NLevels) {
		out = append(out, L2Level{Side: domain.Ask, Price: lv.Price, Size: sumSize(lv.Orders)})
	}
	return out
}

// L3Snapshot returns every individual resting order in the top NLevels
// price levels per side, mirroring the original's convert_orderbook_to_L3_dataframe.
func (b *Book) L3Snapshot() []domain.RestingOrder {
	out := make([]domain.RestingOrder, 0)
	for _, lv := range b.Levels(domain.Bid, b.cfg.NLevels) {
		out = append(out, lv.Orders...)
	}
	for _, lv := range b.Levels(domain.Ask, b.cfg.NLevels) {
		out = append(out, lv.Orders...)
	}
	return out
}

func sumSize(orders []domain.RestingOrder) int64 {
	var total int64
	for _, o := range orders {
		total += o.Size
	}
	return total
}
