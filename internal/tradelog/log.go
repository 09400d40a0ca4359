// Package tradelog is the append-only trade log and the meta-order /
// sweep detector that reads it, grounded on the original's
// Orderbook.trade_log, meta_orders, and order_sweeps.
package tradelog

import "lobster/internal/domain"

// Log is an append-only sequence of executions. It is cleared by
// ClearTradeLog and by a full book reset (spec.md §4.4).
type Log struct {
	trades []domain.Trade
}

// New returns an empty trade log.
func New() *Log {
	return &Log{}
}

// Append records a trade.
func (l *Log) Append(t domain.Trade) {
	l.trades = append(l.trades, t)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.trades = l.trades[:0]
}

// Trades returns the full log in recording order. The slice is owned
// by the log; callers must not mutate it.
func (l *Log) Trades() []domain.Trade {
	return l.trades
}

// MetaOrders greedily groups consecutive trades [i, j) such that every
// trade in the run arrives within delta seconds of the run's first
// trade and shares its TradeType. Delta=0 means "same timestamp, same
// type" runs. The groups partition the log exactly: concatenating them
// in order reproduces the original trade log (spec.md §4.6, §8).
func (l *Log) MetaOrders(delta float64) [][]domain.Trade {
	var groups [][]domain.Trade
	i := 0
	for i < len(l.trades) {
		j := i + 1
		for j < len(l.trades) &&
			l.trades[j].Timestamp-l.trades[i].Timestamp <= delta &&
			l.trades[j].Type == l.trades[i].Type {
			j++
		}
		group := make([]domain.Trade, j-i)
		copy(group, l.trades[i:j])
		groups = append(groups, group)
		i = j
	}
	return groups
}

// OrderSweeps returns the meta-orders (grouped at delta) whose set of
// distinct prices has cardinality at least k.
func (l *Log) OrderSweeps(delta float64, k int) [][]domain.Trade {
	var sweeps [][]domain.Trade
	for _, group := range l.MetaOrders(delta) {
		prices := make(map[int64]struct{})
		for _, t := range group {
			prices[t.Price] = struct{}{}
		}
		if len(prices) >= k {
			sweeps = append(sweeps, group)
		}
	}
	return sweeps
}
