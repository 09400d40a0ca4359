package engine

import "errors"

// ErrInvalidInput marks a request the caller must fix before retrying:
// an unknown event type, an invalid side, a timestamp that moves
// backwards, or a non-positive configuration value. It is never
// returned after any ladder/OFI/trade-log mutation has taken place —
// Process either fully applies an event or rejects it untouched.
var ErrInvalidInput = errors.New("invalid input")
