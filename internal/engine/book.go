// Package engine is the core event-driven order-book reconstruction
// engine: the dispatcher that routes LOBSTER events to their handlers,
// the OFI accumulator, and the feature queries that read the
// reconstructed state. It is grounded on the teacher's
// engine.OrderBook (PlaceOrder/Match/handleLimit/handleMarket) but
// generalized from a live matching engine to a deterministic replay
// state machine: the LOBSTER event type decides routing instead of the
// order type, and every handler is total over the seven LOBSTER event kinds.
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lobster/internal/book"
	"lobster/internal/domain"
	"lobster/internal/tradelog"
)

// Config mirrors the original Orderbook constructor's parameters
// (nlevels, ticker, tick_size, price_scaling). PriceScaling defaults to
// 1e-4 when zero, matching the Python default.
type Config struct {
	NLevels      int
	Ticker       string
	TickSize     float64
	PriceScaling float64
}

func (c Config) validate() error {
	if c.TickSize <= 0 {
		return fmt.Errorf("%w: tick_size must be positive, got %v", ErrInvalidInput, c.TickSize)
	}
	if c.PriceScaling < 0 {
		return fmt.Errorf("%w: price_scaling must be positive, got %v", ErrInvalidInput, c.PriceScaling)
	}
	if c.NLevels <= 0 {
		return fmt.Errorf("%w: nlevels must be a positive integer, got %d", ErrInvalidInput, c.NLevels)
	}
	return nil
}

// Book is a single-instrument reconstructed limit order book: the two
// ladders, the cumulative OFI accumulator, the trade log, and the
// midprice-change bookkeeping from spec.md §3 invariant 4.
type Book struct {
	RunID uuid.UUID // log-correlation id for this instance, stamped at construction

	cfg Config

	bids *book.Ladder
	asks *book.Ladder

	currBookTimestamp float64
	midprice          *float64
	midpriceChangeTS  float64

	cumOFI domain.OFI
	trades *tradelog.Log

	logger zerolog.Logger
}

// NewBook validates cfg and constructs an empty book. PriceScaling
// defaults to 1e-4 (the LOBSTER convention) when left at zero.
func NewBook(cfg Config) (*Book, error) {
	if cfg.PriceScaling == 0 {
		cfg.PriceScaling = 1e-4
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	b := &Book{
		RunID:  runID,
		cfg:    cfg,
		bids:   book.NewBidLadder(),
		asks:   book.NewAskLadder(),
		trades: tradelog.New(),
		logger: log.With().Str("run_id", runID.String()).Str("ticker", cfg.Ticker).Logger(),
	}
	return b, nil
}

// Config returns the book's construction-time configuration.
func (b *Book) Config() Config { return b.cfg }

// CurrBookTimestamp is the timestamp of the last processed event.
func (b *Book) CurrBookTimestamp() float64 { return b.currBookTimestamp }

// ClearOrderbook empties both ladders and resets the timestamp,
// midprice, cumulative OFI, and trade log — spec.md §4.7.
func (b *Book) ClearOrderbook() {
	b.bids = book.NewBidLadder()
	b.asks = book.NewAskLadder()
	b.currBookTimestamp = 0
	b.midprice = nil
	b.midpriceChangeTS = 0
	b.cumOFI.Reset()
	b.trades.Clear()
}

// ResetCumOFI zeroes the six OFI counters in isolation.
func (b *Book) ResetCumOFI() { b.cumOFI.Reset() }

// ClearTradeLog empties the trade log in isolation.
func (b *Book) ClearTradeLog() { b.trades.Clear() }

// TradeLog exposes the trade log for meta-order/sweep analytics.
func (b *Book) TradeLog() *tradelog.Log { return b.trades }

// Process validates and routes a single event, per spec.md §4.2. It
// returns ErrInvalidInput without any mutation if the event is
// malformed or out of order.
func (b *Book) Process(event domain.Event) error {
	if event.Side != domain.Bid && event.Side != domain.Ask {
		return fmt.Errorf("%w: invalid side %v", ErrInvalidInput, event.Side)
	}
	if event.Timestamp < b.currBookTimestamp {
		return fmt.Errorf("%w: event timestamp %v precedes book timestamp %v", ErrInvalidInput, event.Timestamp, b.currBookTimestamp)
	}
	if event.Type < domain.Submit || event.Type > domain.Halt {
		return fmt.Errorf("%w: unknown event type %v", ErrInvalidInput, event.Type)
	}

	prevMid, prevOK := b.midPriceRaw()
	b.currBookTimestamp = event.Timestamp

	switch event.Type {
	case domain.Submit:
		b.handleSubmit(event)
	case domain.Cancel:
		b.handleCancel(event)
	case domain.Delete:
		b.handleDelete(event)
	case domain.VisExec:
		b.handleVisExec(event)
	case domain.HidExec:
		b.handleHidExec(event)
	case domain.Cross, domain.Halt:
		// accepted and ignored: no book mutation, per spec.md §4.2.6
	default:
		return fmt.Errorf("%w: unknown event type %v", ErrInvalidInput, event.Type)
	}

	newMid, newOK := b.midPriceRaw()
	if prevOK && newOK && newMid != prevMid {
		b.midprice = &newMid
		b.midpriceChangeTS = event.Timestamp
	}
	return nil
}

// --- event handlers (spec.md §4.2) -----------------------------------------

func (b *Book) handleSubmit(event domain.Event) {
	remaining := event.Size
	crossed := b.crosses(event.Side, event.Price)
	if crossed {
		remaining = b.executeAgainstOpposite(event)
	}
	if remaining <= 0 {
		return
	}

	residual := domain.RestingOrder{
		Timestamp: event.Timestamp,
		OrderID:   event.OrderID,
		Size:      remaining,
		Price:     event.Price,
		Side:      event.Side,
	}
	b.updateLOFI(event.Side, event.Price, remaining)
	b.ladder(event.Side).Insert(residual)
}

// crosses reports whether an incoming order at price on side would
// cross the opposite best, per spec.md §9's resolution of
// _does_order_cross_spread: pure price-vs-best comparison, false when
// the opposite side is empty.
func (b *Book) crosses(side domain.Side, price int64) bool {
	if side == domain.Bid {
		askPrice, ok := b.asks.Best()
		return ok && price >= askPrice
	}
	bidPrice, ok := b.bids.Best()
	return ok && price <= bidPrice
}

// executeAgainstOpposite walks the opposite ladder best-first,
// consuming resting FIFO order, recording an aggro_lim trade per fill,
// and updating the marketable OFI counter opposite to the submit
// side. Returns the unfilled remainder.
func (b *Book) executeAgainstOpposite(event domain.Event) int64 {
	remaining := event.Size
	opposite := b.ladder(event.Side.Opposite())

	for remaining > 0 && b.crosses(event.Side, event.Price) {
		bestPrice, ok := opposite.Best()
		if !ok {
			break
		}
		resting, ok := opposite.Head(bestPrice)
		if !ok {
			break
		}

		fill := min64(remaining, resting.Size)
		resting.Size -= fill
		remaining -= fill

		if resting.Size <= 0 {
			opposite.Remove(bestPrice, resting.OrderID)
		}

		b.trades.Append(domain.Trade{
			Timestamp: event.Timestamp,
			Type:      domain.AggroLim,
			Side:      event.Side.Opposite(),
			Size:      fill,
			Price:     bestPrice,
			OrderID:   event.OrderID,
		})

		if event.Side == domain.Bid {
			b.cumOFI.Ma.Add(fill)
		} else {
			b.cumOFI.Mb.Add(fill)
		}
	}
	return remaining
}

func (b *Book) handleCancel(event domain.Event) {
	if _, ok := b.ladder(event.Side).Get(event.Price, event.OrderID); !ok {
		b.warnMissing("cancel", event)
		return
	}
	b.updateDOFI(event.Side, event.Price, event.Size)
	b.reduce(event, "cancel")
}

func (b *Book) handleDelete(event domain.Event) {
	ladder := b.ladder(event.Side)
	if _, ok := ladder.Get(event.Price, event.OrderID); !ok {
		b.warnMissing("delete", event)
		return
	}
	b.updateDOFI(event.Side, event.Price, event.Size)
	ladder.Remove(event.Price, event.OrderID)
}

func (b *Book) handleVisExec(event domain.Event) {
	ladder := b.ladder(event.Side)
	resting, ok := ladder.Get(event.Price, event.OrderID)
	if !ok {
		b.warnMissing("vis_exec", event)
		return
	}

	b.updateMOFI(event.Side, event.Price, event.Size)

	b.trades.Append(domain.Trade{
		Timestamp: event.Timestamp,
		Type:      domain.VisExecTrade,
		Side:      event.Side,
		Size:      event.Size,
		Price:     event.Price,
		OrderID:   event.OrderID,
	})

	resting.Size -= event.Size
	if resting.Size <= 0 {
		ladder.Remove(event.Price, event.OrderID)
	}
}

func (b *Book) handleHidExec(event domain.Event) {
	b.trades.Append(domain.Trade{
		Timestamp: event.Timestamp,
		Type:      domain.HidExecTrade,
		Side:      event.Side,
		Size:      event.Size,
		Price:     event.Price,
		OrderID:   event.OrderID,
	})
}

// reduce is shared by cancel: decrement a resting order's size,
// removing it (and its level) if exhausted.
func (b *Book) reduce(event domain.Event, op string) {
	ladder := b.ladder(event.Side)
	resting, ok := ladder.Get(event.Price, event.OrderID)
	if !ok {
		b.warnMissing(op, event)
		return
	}
	resting.Size -= event.Size
	if resting.Size <= 0 {
		ladder.Remove(event.Price, event.OrderID)
	}
}

func (b *Book) warnMissing(op string, event domain.Event) {
	b.logger.Warn().
		Str("op", op).
		Str("direction", event.Side.String()).
		Int64("price", event.Price).
		Int64("order_id", event.OrderID).
		Msg("inconsistent reference: order not found on book")
}

func (b *Book) ladder(side domain.Side) *book.Ladder {
	if side == domain.Bid {
		return b.bids
	}
	return b.asks
}

// --- OFI update rules (spec.md §4.3) ---------------------------------------

func (b *Book) updateLOFI(side domain.Side, price, size int64) {
	if side == domain.Bid {
		if best, ok := b.bids.Best(); !ok || price >= best {
			// handleSubmit calls this before inserting the residual, so
			// best is still the pre-insertion best on this side.
			b.cumOFI.Lb.Add(size)
		}
	} else {
		if best, ok := b.asks.Best(); !ok || price <= best {
			b.cumOFI.La.Add(size)
		}
	}
}

// updateDOFI adds size to Db/Da when the cancel/delete is at the
// current best on its side; events off the top do not update DOFI.
// event.Size (not the resting order's remaining size) is the quantity
// recorded, matching the original's _update_DOFI.
func (b *Book) updateDOFI(side domain.Side, price, size int64) {
	if side == domain.Bid {
		if best, ok := b.bids.Best(); ok && price == best {
			b.cumOFI.Db.Add(size)
		}
	} else {
		if best, ok := b.asks.Best(); ok && price == best {
			b.cumOFI.Da.Add(size)
		}
	}
}

// updateMOFI adds size to Mb/Ma when a visible execution hits the
// current best on its side.
func (b *Book) updateMOFI(side domain.Side, price, size int64) {
	if side == domain.Bid {
		if best, ok := b.bids.Best(); ok && price == best {
			b.cumOFI.Mb.Add(size)
		}
	} else {
		if best, ok := b.asks.Best(); ok && price == best {
			b.cumOFI.Ma.Add(size)
		}
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
