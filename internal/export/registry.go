// Package export implements the two adapters spec.md §1 keeps outside
// the core but §9's design notes and lobster_sim.py's
// print_features_to_csv name explicitly: a duck-typed feature-name
// registry, and a CSV feature exporter built on it.
package export

import (
	"fmt"

	"lobster/internal/engine"
)

// Query is a named feature function over a reconstructed book.
type Query func(*engine.Book) float64

// FeatureRegistry maps feature names to queries. Registration fails
// fast on a duplicate name; any other name is accepted, since its query
// is supplied with it, so there is no check for unknown names. Row-time
// lookups never fail: names are checked at registration, not at row
// time.
type FeatureRegistry struct {
	queries map[string]Query
	order   []string // registration order, for stable CSV column order
}

// NewFeatureRegistry returns an empty registry.
func NewFeatureRegistry() *FeatureRegistry {
	return &FeatureRegistry{queries: make(map[string]Query)}
}

// Register adds name -> q. It returns ErrInvalidInput if name is
// already registered.
func (r *FeatureRegistry) Register(name string, q Query) error {
	if _, exists := r.queries[name]; exists {
		return fmt.Errorf("%w: feature %q already registered", engine.ErrInvalidInput, name)
	}
	r.queries[name] = q
	r.order = append(r.order, name)
	return nil
}

// Names returns the registered feature names in registration order.
func (r *FeatureRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Eval runs every registered query against book, in registration
// order.
func (r *FeatureRegistry) Eval(book *engine.Book) []float64 {
	out := make([]float64, len(r.order))
	for i, name := range r.order {
		out[i] = r.queries[name](book)
	}
	return out
}

// DefaultRegistry returns a registry pre-populated with the scalar
// feature queries named in spec.md §4.5 that take no arguments beyond
// the book itself (the per-order queries — VolumeOfHigherPriorityOrders
// and friends — need a hypothetical order and so are not registrable
// as zero-arg Query functions).
func DefaultRegistry() *FeatureRegistry {
	reg := NewFeatureRegistry()
	must := func(name string, q Query) {
		if err := reg.Register(name, q); err != nil {
			panic(err) // only reachable if this function registers a duplicate name itself
		}
	}
	must("mid_price", func(b *engine.Book) float64 {
		mid, ok := b.MidPrice()
		if !ok {
			return 0
		}
		return mid
	})
	must("spread", func(b *engine.Book) float64 { return b.BidAskSpread() })
	must("highest_bid_volume", func(b *engine.Book) float64 { return float64(b.HighestBidVolume()) })
	must("lowest_ask_volume", func(b *engine.Book) float64 { return float64(b.LowestAskVolume()) })
	must("total_bid_volume", func(b *engine.Book) float64 { return float64(b.TotalBidVolume()) })
	must("total_ask_volume", func(b *engine.Book) float64 { return float64(b.TotalAskVolume()) })
	must("size_ofi", func(b *engine.Book) float64 { return float64(b.SizeOFI()) })
	must("count_ofi", func(b *engine.Book) float64 { return float64(b.CountOFI()) })
	return reg
}
