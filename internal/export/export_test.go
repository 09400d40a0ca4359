package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobster/internal/domain"
	"lobster/internal/engine"
	"lobster/internal/session"
)

type sliceSource struct {
	events []domain.Event
	i      int
}

func (s *sliceSource) Next() (domain.Event, bool, error) {
	if s.i >= len(s.events) {
		return domain.Event{}, false, nil
	}
	e := s.events[s.i]
	s.i++
	return e, true, nil
}

func TestFeatureRegistry_RejectsDuplicateName(t *testing.T) {
	reg := NewFeatureRegistry()
	require.NoError(t, reg.Register("x", func(*engine.Book) float64 { return 1 }))

	err := reg.Register("x", func(*engine.Book) float64 { return 2 })
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestFeatureRegistry_EvalRunsInRegistrationOrder(t *testing.T) {
	reg := NewFeatureRegistry()
	require.NoError(t, reg.Register("a", func(*engine.Book) float64 { return 1 }))
	require.NoError(t, reg.Register("b", func(*engine.Book) float64 { return 2 }))

	b, err := engine.NewBook(engine.Config{NLevels: 10, Ticker: "X", TickSize: 0.01})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Equal(t, []float64{1, 2}, reg.Eval(b))
}

func TestDefaultRegistry_ReportsZeroMidPriceWhenUndefined(t *testing.T) {
	b, err := engine.NewBook(engine.Config{NLevels: 10, Ticker: "X", TickSize: 0.01})
	require.NoError(t, err)

	reg := DefaultRegistry()
	values := reg.Eval(b)
	names := reg.Names()

	for i, name := range names {
		if name == "mid_price" {
			assert.Equal(t, 0.0, values[i])
		}
	}
}

func TestPrintFeaturesToCSV_WritesOneRowPerStep(t *testing.T) {
	b, err := engine.NewBook(engine.Config{NLevels: 10, Ticker: "X", TickSize: 0.01})
	require.NoError(t, err)

	src := &sliceSource{events: []domain.Event{
		{Timestamp: 1.0, Type: domain.Submit, OrderID: 1, Size: 10, Price: 100, Side: domain.Bid},
		{Timestamp: 2.0, Type: domain.Submit, OrderID: 2, Size: 10, Price: 101, Side: domain.Ask},
	}}
	sess := session.New(b, src)

	var buf strings.Builder
	reg := NewFeatureRegistry()
	require.NoError(t, reg.Register("total_bid_volume", func(b *engine.Book) float64 { return float64(b.TotalBidVolume()) }))

	require.NoError(t, PrintFeaturesToCSV(sess, &buf, 0, 2, 1, reg))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4) // header + steps at t=0,1,2
	assert.Equal(t, "time,total_bid_volume", lines[0])
}

func TestPrintFeaturesToCSV_RejectsNonPositiveInterval(t *testing.T) {
	b, err := engine.NewBook(engine.Config{NLevels: 10, Ticker: "X", TickSize: 0.01})
	require.NoError(t, err)
	sess := session.New(b, &sliceSource{})

	var buf strings.Builder
	err = PrintFeaturesToCSV(sess, &buf, 0, 10, 0, DefaultRegistry())
	require.Error(t, err)
}
