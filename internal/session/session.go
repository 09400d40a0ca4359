// Package session implements the Session API from spec.md §4.7:
// simulate_until / simulate_from_current_until / clear / reset-OFI /
// clear-trade-log, plus the opaque cursor over the source event
// stream. The cursor is synchronous by default; NewFeed optionally hands
// stream production to a background goroutine supervised by a
// tomb.Tomb, mirroring the teacher's net.Server.Run
// (tomb.WithContext/t.Go/t.Dying) so a long CSV replay can be
// cancelled without corrupting the book mid-event.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lobster/internal/domain"
	"lobster/internal/engine"
)

// EventSource is the external collaborator that supplies the ordered
// event stream; spec.md §1 treats CSV parsing as outside the core, so
// the session only depends on this interface.
type EventSource interface {
	// Next returns the next event. ok is false (with a nil error) once
	// the stream is exhausted.
	Next() (domain.Event, bool, error)
}

// Session owns a Book and a cursor into an EventSource. Every event
// ever read from source is retained in buffer, so SimulateUntil can
// rewind and replay deterministically even when source itself is a
// forward-only, single-pass reader (e.g. feed.MessageReader wrapping
// an encoding/csv.Reader) — the EventSource contract (Next only, no
// reset) never has to expose rewind support for this to work.
type Session struct {
	book   *engine.Book
	source EventSource

	buffer    []domain.Event // every event read from source so far, in order
	pos       int            // replay cursor into buffer
	exhausted bool           // source has reported EOF

	t *tomb.Tomb // non-nil only after NewFeed starts a background pump
}

// New creates a session over book, reading events from source.
func New(book *engine.Book, source EventSource) *Session {
	return &Session{book: book, source: source}
}

// Book returns the underlying order book.
func (s *Session) Book() *engine.Book { return s.book }

// SimulateUntil clears the book and rewinds the cursor to the start of
// the buffered event history, then feeds events while event.Timestamp
// <= t (spec.md §4.7). Calling SimulateUntil(t) twice in a row yields
// the same book both times, matching spec.md §8's round-trip
// invariant, because replay reads from the internally buffered
// history rather than re-reading source.
func (s *Session) SimulateUntil(t float64) error {
	s.book.ClearOrderbook()
	s.pos = 0
	return s.feedUntil(t)
}

// SimulateFromCurrentUntil continues feeding from the next unconsumed
// event while event.Timestamp <= t. It fails with ErrInvalidInput if t
// is behind the book's current timestamp.
func (s *Session) SimulateFromCurrentUntil(t float64) error {
	if t < s.book.CurrBookTimestamp() {
		return fmt.Errorf("%w: simulate_from_current_until(%v) is behind curr_book_timestamp %v", engine.ErrInvalidInput, t, s.book.CurrBookTimestamp())
	}
	return s.feedUntil(t)
}

func (s *Session) feedUntil(t float64) error {
	for {
		event, ok, err := s.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if event.Timestamp > t {
			s.pos-- // push back onto the buffer for the next call
			return nil
		}
		if err := s.book.Process(event); err != nil {
			return err
		}
	}
}

// next returns the next event, preferring the buffered replay history
// over source so a rewound cursor never re-reads source for events it
// has already seen.
func (s *Session) next() (domain.Event, bool, error) {
	if s.pos < len(s.buffer) {
		event := s.buffer[s.pos]
		s.pos++
		return event, true, nil
	}
	if s.exhausted {
		return domain.Event{}, false, nil
	}
	event, ok, err := s.source.Next()
	if err != nil {
		return domain.Event{}, false, err
	}
	if !ok {
		s.exhausted = true
		return domain.Event{}, false, nil
	}
	s.buffer = append(s.buffer, event)
	s.pos++
	return event, true, nil
}

// ClearOrderbook empties the book but leaves the cursor untouched —
// unlike SimulateUntil, it does not rewind the stream.
func (s *Session) ClearOrderbook() { s.book.ClearOrderbook() }

// ResetCumOFI zeroes the OFI accumulator in isolation.
func (s *Session) ResetCumOFI() { s.book.ResetCumOFI() }

// ClearTradeLog empties the trade log in isolation.
func (s *Session) ClearTradeLog() { s.book.ClearTradeLog() }

// SimSizeOFI rebuilds the book up to start via SimulateUntil, resets
// the OFI accumulator (the rebuilt book state is kept), replays up to
// end, and returns the size_OFI observed at end, per lobster_sim.py's sim_size_OFI. This
// exercises the additivity property from spec.md §8: the result must
// equal the sum of size_OFI over any partition of [start, end].
func (s *Session) SimSizeOFI(start, end float64) (int64, error) {
	if err := s.SimulateUntil(start); err != nil {
		return 0, err
	}
	s.book.ResetCumOFI()
	if err := s.SimulateFromCurrentUntil(end); err != nil {
		return 0, err
	}
	return s.book.SizeOFI(), nil
}

// SimCountOFI is SimSizeOFI's count-domain counterpart.
func (s *Session) SimCountOFI(start, end float64) (int64, error) {
	if err := s.SimulateUntil(start); err != nil {
		return 0, err
	}
	s.book.ResetCumOFI()
	if err := s.SimulateFromCurrentUntil(end); err != nil {
		return 0, err
	}
	return s.book.CountOFI(), nil
}

// rawSource is the blocking, synchronous collaborator a background
// pump reads from — typically a *feed.MessageReader.
type rawSource interface {
	Next() (domain.Event, bool, error)
}

// pumped is one message sent from the background pump goroutine to
// the consuming Session: either an event, or a terminal outcome (EOF
// if err is nil, a failure otherwise).
type pumped struct {
	event domain.Event
	eof   bool
	err   error
}

// chanSource adapts a channel fed by a supervised goroutine into an
// EventSource.
type chanSource struct {
	ch   <-chan pumped
	done bool
}

func (c *chanSource) Next() (domain.Event, bool, error) {
	if c.done {
		return domain.Event{}, false, nil
	}
	msg := <-c.ch
	if msg.eof || msg.err != nil {
		c.done = true
		return domain.Event{}, false, msg.err
	}
	return msg.event, true, nil
}

// NewFeed starts a tomb-supervised goroutine pumping events from raw
// into a buffered channel, and returns a Session reading from that
// channel. Cancelling ctx stops the pump; the session's cursor is
// whatever was already buffered/consumed, so a cancelled replay leaves
// the book in a well-defined (if partial) state rather than a torn one
// (spec.md §8's concurrency note on the feed pump).
func NewFeed(ctx context.Context, book *engine.Book, raw rawSource, bufSize int) *Session {
	ch := make(chan pumped, bufSize)

	t, ctx := tomb.WithContext(ctx)
	t.Go(func() error {
		for {
			select {
			case <-t.Dying():
				return nil
			default:
			}
			event, ok, err := raw.Next()
			if err != nil {
				select {
				case ch <- pumped{err: err}:
				case <-t.Dying():
				}
				return err
			}
			if !ok {
				select {
				case ch <- pumped{eof: true}:
				case <-t.Dying():
				}
				return nil
			}
			select {
			case ch <- pumped{event: event}:
			case <-t.Dying():
				return nil
			}
		}
	})

	sess := New(book, &chanSource{ch: ch})
	sess.t = t
	return sess
}

// Stop cancels a background feed pump started by NewFeed and waits for
// it to exit. It is a no-op if the session has no pump.
func (s *Session) Stop() error {
	if s.t == nil {
		return nil
	}
	s.t.Kill(nil)
	err := s.t.Wait()
	log.Debug().Err(err).Msg("feed pump stopped")
	return err
}
