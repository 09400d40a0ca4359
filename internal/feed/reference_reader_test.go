package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobster/internal/domain"
	"lobster/internal/engine"
)

func TestReferenceOrderbookReader_DecodesLevelsAndDropsSentinels(t *testing.T) {
	csv := "2010000,100,2000000,200,9999999999,0,1990000,50\n"
	r := NewReferenceOrderbookReader(strings.NewReader(csv))

	row, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, row.Asks, 1, "the second ask level's sentinel price is dropped")
	assert.Equal(t, int64(2010000), row.Asks[0].Price)
	require.Len(t, row.Bids, 2)
	assert.Equal(t, int64(2000000), row.Bids[0].Price)
	assert.Equal(t, int64(1990000), row.Bids[1].Price)
}

func TestReferenceOrderbookReader_RejectsNonMultipleOfFourColumns(t *testing.T) {
	csv := "1,2,3\n"
	r := NewReferenceOrderbookReader(strings.NewReader(csv))

	_, _, err := r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestCheckAgainst_FlagsMismatchedLevel(t *testing.T) {
	book, err := engine.NewBook(engine.Config{NLevels: 2, Ticker: "X", TickSize: 0.01})
	require.NoError(t, err)
	require.NoError(t, book.Process(domain.Event{Timestamp: 1, Type: domain.Submit, OrderID: 1, Size: 10, Price: 100, Side: domain.Bid}))

	row := ReferenceRow{
		Bids: []ReferenceLevel{{Price: 100, Size: 20}}, // size disagrees with the book
	}
	mismatches := CheckAgainst(book, row, 2)
	require.NotEmpty(t, mismatches)
	assert.Equal(t, domain.Bid, mismatches[0].Side)
	assert.Equal(t, int64(20), mismatches[0].ReferenceSize)
	assert.Equal(t, int64(10), mismatches[0].BookSize)
}
