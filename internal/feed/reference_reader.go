package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"lobster/internal/domain"
	"lobster/internal/engine"
)

// Sentinel raw prices used by the LOBSTER reference orderbook file for
// an absent level, per spec.md §6.
const (
	AskAbsentPrice int64 = 9999999999
	BidAbsentPrice int64 = -9999999999
)

// ReferenceLevel is one (price, size) pair for one side at one level
// of a reference-orderbook row.
type ReferenceLevel struct {
	Price int64
	Size  int64
}

// ReferenceRow is one decoded row of the optional reference orderbook
// file: N levels of (AskPrice, AskSize, BidPrice, BidSize) quadruples.
type ReferenceRow struct {
	Asks []ReferenceLevel
	Bids []ReferenceLevel
}

// ReferenceOrderbookReader reads the debugging-aid CSV named in
// spec.md §6: unheaded, 4*N columns, groups of
// (AskPrice_i, AskSize_i, BidPrice_i, BidSize_i).
type ReferenceOrderbookReader struct {
	r       *csv.Reader
	nlevels int
	line    int
}

// NewReferenceOrderbookReader wraps r. It does no validation itself;
// Next checks the column count of every row and returns an error
// wrapping engine.ErrInvalidInput for a row whose count is not a
// multiple of 4 (spec.md §7).
func NewReferenceOrderbookReader(r io.Reader) *ReferenceOrderbookReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &ReferenceOrderbookReader{r: cr}
}

// Next decodes the next reference row. ok is false (nil error) at EOF.
func (r *ReferenceOrderbookReader) Next() (ReferenceRow, bool, error) {
	record, err := r.r.Read()
	if err == io.EOF {
		return ReferenceRow{}, false, nil
	}
	if err != nil {
		return ReferenceRow{}, false, fmt.Errorf("feed: reading reference row %d: %w", r.line, err)
	}
	r.line++

	if len(record)%4 != 0 {
		return ReferenceRow{}, false, fmt.Errorf("%w: reference row %d has %d columns, not a multiple of 4", engine.ErrInvalidInput, r.line, len(record))
	}
	n := len(record) / 4
	row := ReferenceRow{
		Asks: make([]ReferenceLevel, 0, n),
		Bids: make([]ReferenceLevel, 0, n),
	}
	for i := 0; i < n; i++ {
		base := i * 4
		askPrice, err := strconv.ParseInt(record[base], 10, 64)
		if err != nil {
			return ReferenceRow{}, false, fmt.Errorf("%w: row %d level %d AskPrice: %v", ErrMalformedRow, r.line, i, err)
		}
		askSize, err := strconv.ParseInt(record[base+1], 10, 64)
		if err != nil {
			return ReferenceRow{}, false, fmt.Errorf("%w: row %d level %d AskSize: %v", ErrMalformedRow, r.line, i, err)
		}
		bidPrice, err := strconv.ParseInt(record[base+2], 10, 64)
		if err != nil {
			return ReferenceRow{}, false, fmt.Errorf("%w: row %d level %d BidPrice: %v", ErrMalformedRow, r.line, i, err)
		}
		bidSize, err := strconv.ParseInt(record[base+3], 10, 64)
		if err != nil {
			return ReferenceRow{}, false, fmt.Errorf("%w: row %d level %d BidSize: %v", ErrMalformedRow, r.line, i, err)
		}
		if askPrice != AskAbsentPrice {
			row.Asks = append(row.Asks, ReferenceLevel{Price: askPrice, Size: askSize})
		}
		if bidPrice != BidAbsentPrice {
			row.Bids = append(row.Bids, ReferenceLevel{Price: bidPrice, Size: bidSize})
		}
	}
	return row, true, nil
}

// Mismatch describes one level where a reconstructed book disagrees
// with a reference row, for the debugging aid in spec.md §6.
type Mismatch struct {
	Side           domain.Side
	Level          int
	ReferencePrice int64
	ReferenceSize  int64
	BookPrice      int64
	BookSize       int64
}

// CheckAgainst compares the top nlevels of book against row, grounded
// on lobster_sim.py's _check_full_book/_check_books_match. It returns
// every level where the reconstructed book disagrees with the
// reference; an empty result means the books match.
func CheckAgainst(book *engine.Book, row ReferenceRow, nlevels int) []Mismatch {
	var mismatches []Mismatch

	bidLevels := book.Levels(domain.Bid, nlevels)
	for i := 0; i < nlevels; i++ {
		var refPrice, refSize int64
		if i < len(row.Bids) {
			refPrice, refSize = row.Bids[i].Price, row.Bids[i].Size
		}
		var bookPrice, bookSize int64
		if i < len(bidLevels) {
			bookPrice = bidLevels[i].Price
			bookSize = sumSize(bidLevels[i].Orders)
		}
		if refPrice != bookPrice || refSize != bookSize {
			mismatches = append(mismatches, Mismatch{
				Side: domain.Bid, Level: i,
				ReferencePrice: refPrice, ReferenceSize: refSize,
				BookPrice: bookPrice, BookSize: bookSize,
			})
		}
	}

	askLevels := book.Levels(domain.Ask, nlevels)
	for i := 0; i < nlevels; i++ {
		var refPrice, refSize int64
		if i < len(row.Asks) {
			refPrice, refSize = row.Asks[i].Price, row.Asks[i].Size
		}
		var bookPrice, bookSize int64
		if i < len(askLevels) {
			bookPrice = askLevels[i].Price
			bookSize = sumSize(askLevels[i].Orders)
		}
		if refPrice != bookPrice || refSize != bookSize {
			mismatches = append(mismatches, Mismatch{
				Side: domain.Ask, Level: i,
				ReferencePrice: refPrice, ReferenceSize: refSize,
				BookPrice: bookPrice, BookSize: bookSize,
			})
		}
	}

	return mismatches
}

func sumSize(orders []domain.RestingOrder) int64 {
	var total int64
	for _, o := range orders {
		total += o.Size
	}
	return total
}
