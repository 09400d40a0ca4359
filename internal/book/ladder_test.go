package book

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lobster/internal/domain"
)

func order(ts float64, id, size, price int64, side domain.Side) domain.RestingOrder {
	return domain.RestingOrder{Timestamp: ts, OrderID: id, Size: size, Price: price, Side: side}
}

func TestBidLadder_BestIsHighestPrice(t *testing.T) {
	l := NewBidLadder()
	l.Insert(order(1, 1, 10, 99, domain.Bid))
	l.Insert(order(2, 2, 10, 101, domain.Bid))
	l.Insert(order(3, 3, 10, 100, domain.Bid))

	price, ok := l.Best()
	assert.True(t, ok)
	assert.Equal(t, int64(101), price)
}

func TestAskLadder_BestIsLowestPrice(t *testing.T) {
	l := NewAskLadder()
	l.Insert(order(1, 1, 10, 105, domain.Ask))
	l.Insert(order(2, 2, 10, 101, domain.Ask))
	l.Insert(order(3, 3, 10, 103, domain.Ask))

	price, ok := l.Best()
	assert.True(t, ok)
	assert.Equal(t, int64(101), price)
}

func TestLadder_EmptyHasNoBest(t *testing.T) {
	l := NewBidLadder()
	_, ok := l.Best()
	assert.False(t, ok)
	assert.True(t, l.Empty())
}

func TestLadder_FIFOWithinLevel(t *testing.T) {
	l := NewBidLadder()
	l.Insert(order(1, 1, 10, 100, domain.Bid))
	l.Insert(order(2, 2, 20, 100, domain.Bid))
	l.Insert(order(3, 3, 30, 100, domain.Bid))

	head, ok := l.Head(100)
	assert.True(t, ok)
	assert.Equal(t, int64(1), head.OrderID)

	tail, ok := l.Tail(100)
	assert.True(t, ok)
	assert.Equal(t, int64(3), tail.OrderID)

	levels := l.Levels(10)
	assert.Len(t, levels, 1)
	assert.Equal(t, []int64{1, 2, 3}, orderIDs(levels[0].Orders))
}

func orderIDs(orders []domain.RestingOrder) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	return ids
}

func TestLadder_RemoveEmptiesLevel(t *testing.T) {
	l := NewAskLadder()
	l.Insert(order(1, 1, 10, 100, domain.Ask))

	assert.True(t, l.Remove(100, 1))
	assert.True(t, l.Empty())
	assert.False(t, l.Remove(100, 1), "removing twice should report not-found")
}

func TestLadder_VolumeAtAndTotalVolume(t *testing.T) {
	l := NewBidLadder()
	l.Insert(order(1, 1, 10, 100, domain.Bid))
	l.Insert(order(2, 2, 20, 100, domain.Bid))
	l.Insert(order(3, 3, 30, 99, domain.Bid))

	assert.Equal(t, int64(30), l.VolumeAt(100))
	assert.Equal(t, int64(30), l.VolumeAt(99))
	assert.Equal(t, int64(0), l.VolumeAt(50))
	assert.Equal(t, int64(60), l.TotalVolume())
}

func TestLadder_VolumeBetter(t *testing.T) {
	bids := NewBidLadder()
	bids.Insert(order(1, 1, 10, 101, domain.Bid))
	bids.Insert(order(2, 2, 20, 100, domain.Bid))
	bids.Insert(order(3, 3, 30, 99, domain.Bid))

	// Strictly better than 100 on the bid side means strictly higher price.
	assert.Equal(t, int64(10), bids.VolumeBetter(100))
	assert.Equal(t, int64(0), bids.VolumeBetter(101))

	asks := NewAskLadder()
	asks.Insert(order(1, 1, 10, 101, domain.Ask))
	asks.Insert(order(2, 2, 20, 102, domain.Ask))

	// Strictly better than 102 on the ask side means strictly lower price.
	assert.Equal(t, int64(10), asks.VolumeBetter(102))
}

func TestLadder_Worst(t *testing.T) {
	bids := NewBidLadder()
	bids.Insert(order(1, 1, 10, 101, domain.Bid))
	bids.Insert(order(2, 2, 10, 99, domain.Bid))

	worst, ok := bids.Worst()
	assert.True(t, ok)
	assert.Equal(t, int64(99), worst)
}
