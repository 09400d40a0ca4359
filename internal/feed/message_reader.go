// Package feed holds the external-collaborator adapters named in
// spec.md §6: the LOBSTER message-file CSV reader, the optional
// reference-orderbook CSV reader used as a debugging aid, and a small
// timestamp formatter for human-readable logging. None of this is part
// of the core state machine — every type here only produces or
// consumes domain.Event/domain.RestingOrder values that the engine
// already understands.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"lobster/internal/domain"
)

// ErrMalformedRow is returned when a message row cannot be decoded into
// an Event.
var ErrMalformedRow = errors.New("feed: malformed message row")

// MessageReader reads the unheaded, 6-column (or more — extra columns
// are ignored) LOBSTER message CSV described in spec.md §6.
type MessageReader struct {
	r    *csv.Reader
	line int
}

// NewMessageReader wraps r as a LOBSTER message-file reader.
func NewMessageReader(r io.Reader) *MessageReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // extra columns are ignored, per spec.md §6
	cr.ReuseRecord = true
	return &MessageReader{r: cr}
}

// Next decodes the next row into an Event. ok is false (with a nil
// error) once the stream is exhausted.
func (m *MessageReader) Next() (domain.Event, bool, error) {
	record, err := m.r.Read()
	if err == io.EOF {
		return domain.Event{}, false, nil
	}
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("feed: reading message row %d: %w", m.line, err)
	}
	m.line++
	if len(record) < 6 {
		return domain.Event{}, false, fmt.Errorf("%w: line %d has %d columns, want at least 6", ErrMalformedRow, m.line, len(record))
	}

	ts, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d Time: %v", ErrMalformedRow, m.line, err)
	}
	typeCode, err := strconv.Atoi(record[1])
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d Type: %v", ErrMalformedRow, m.line, err)
	}
	orderID, err := strconv.ParseInt(record[2], 10, 64)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d OrderID: %v", ErrMalformedRow, m.line, err)
	}
	size, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d Size: %v", ErrMalformedRow, m.line, err)
	}
	price, err := strconv.ParseInt(record[4], 10, 64)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d Price: %v", ErrMalformedRow, m.line, err)
	}
	dirCode, err := strconv.Atoi(record[5])
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d Direction: %v", ErrMalformedRow, m.line, err)
	}

	eventType, err := decodeEventType(typeCode)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, m.line, err)
	}
	side, err := decodeSide(dirCode)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, m.line, err)
	}

	return domain.Event{
		Timestamp: ts,
		Type:      eventType,
		OrderID:   orderID,
		Size:      size,
		Price:     price,
		Side:      side,
	}, true, nil
}

func decodeEventType(code int) (domain.EventType, error) {
	switch code {
	case 1:
		return domain.Submit, nil
	case 2:
		return domain.Cancel, nil
	case 3:
		return domain.Delete, nil
	case 4:
		return domain.VisExec, nil
	case 5:
		return domain.HidExec, nil
	case 6:
		return domain.Cross, nil
	case 7:
		return domain.Halt, nil
	default:
		return 0, fmt.Errorf("unknown event type code %d", code)
	}
}

func decodeSide(code int) (domain.Side, error) {
	switch code {
	case 1:
		return domain.Bid, nil
	case -1:
		return domain.Ask, nil
	default:
		return 0, fmt.Errorf("unknown direction code %d", code)
	}
}
