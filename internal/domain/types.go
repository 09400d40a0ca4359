// Package domain holds the value types shared by the book, the trade
// log, and every adapter that feeds or reads a session: events coming
// off a LOBSTER message file, resting orders held in the ladder, and
// trades appended to the log.
package domain

import "fmt"

// Side is which side of the book an event or resting order belongs to.
type Side int8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return fmt.Sprintf("Side(%d)", int8(s))
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// EventType is the LOBSTER message type, mapped from the feed's 1-7
// integer column.
type EventType int8

const (
	Submit EventType = iota + 1
	Cancel
	Delete
	VisExec
	HidExec
	Cross
	Halt
)

func (t EventType) String() string {
	switch t {
	case Submit:
		return "submit"
	case Cancel:
		return "cancel"
	case Delete:
		return "delete"
	case VisExec:
		return "vis_exec"
	case HidExec:
		return "hid_exec"
	case Cross:
		return "cross"
	case Halt:
		return "halt"
	default:
		return fmt.Sprintf("EventType(%d)", int8(t))
	}
}

// Event is an immutable input record off the message stream. Price and
// Size are raw LOBSTER ticks; Timestamp is fractional seconds from
// midnight.
type Event struct {
	Timestamp float64
	Type      EventType
	OrderID   int64
	Size      int64
	Price     int64
	Side      Side
}

// RestingOrder is the mutable state the ladder holds for an order that
// is currently resting on the book. Size decreases in place; a
// RestingOrder is removed from its level once Size reaches zero.
type RestingOrder struct {
	Timestamp float64
	OrderID   int64
	Size      int64
	Price     int64
	Side      Side
}

// TradeType distinguishes a resting order being visibly hit, a hidden
// execution, or the passive side of a crossing submit being matched.
type TradeType int8

const (
	AggroLim TradeType = iota
	VisExecTrade
	HidExecTrade
)

func (t TradeType) String() string {
	switch t {
	case AggroLim:
		return "aggro_lim"
	case VisExecTrade:
		return "vis_exec"
	case HidExecTrade:
		return "hid_exec"
	default:
		return fmt.Sprintf("TradeType(%d)", int8(t))
	}
}

// Trade is an immutable, append-only record of an execution against
// the book (or a reported hidden execution with no book mutation).
type Trade struct {
	Timestamp float64
	Type      TradeType
	Side      Side // direction of the matched/hit resting order
	Size      int64
	Price     int64
	OrderID   int64 // order id of the aggressor (submit) or of the hit/hidden order
}

// OFIPair is a (size, count) accumulator for one of the six order-flow
// components.
type OFIPair struct {
	Size  int64
	Count int64
}

// Add records one event contributing size to this pair.
func (p *OFIPair) Add(size int64) {
	p.Size += size
	p.Count++
}

func (p *OFIPair) reset() {
	p.Size = 0
	p.Count = 0
}

// OFI is the six-counter order flow imbalance accumulator from
// spec.md §4.3: Lb/La passive top-of-book adds, Db/Da top-of-book
// cancels/deletes, Mb/Ma marketable removals.
type OFI struct {
	Lb, La OFIPair
	Db, Da OFIPair
	Mb, Ma OFIPair
}

// Reset zeroes all six pairs.
func (o *OFI) Reset() {
	o.Lb.reset()
	o.La.reset()
	o.Db.reset()
	o.Da.reset()
	o.Mb.reset()
	o.Ma.reset()
}

// SizeOFI is the signed combination of the six size accumulators.
func (o OFI) SizeOFI() int64 {
	return o.Lb.Size - o.Db.Size + o.Mb.Size - o.La.Size + o.Da.Size - o.Ma.Size
}

// CountOFI is the signed combination of the six count accumulators.
func (o OFI) CountOFI() int64 {
	return o.Lb.Count - o.Db.Count + o.Mb.Count - o.La.Count + o.Da.Count - o.Ma.Count
}
