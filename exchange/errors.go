package exchange

import "errors"

// ErrPairAlreadyExists is returned by AddPair when the pair name is
// already registered.
var ErrPairAlreadyExists = errors.New("exchange: pair already exists")

// ErrUnknownPair names the condition of a message that references a
// pair with no registered order book. Nothing in this package returns
// it: Handle logs such a message and drops it per the resolved
// pair-not-found policy (see DESIGN.md).
var ErrUnknownPair = errors.New("exchange: unknown pair")
