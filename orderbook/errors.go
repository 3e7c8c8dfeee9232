package orderbook

import "errors"

// ErrOrderNotFound is returned by Cancel and ChangeVolume when the
// order id is not currently resting in the book.
var ErrOrderNotFound = errors.New("order not found")

// ErrZeroVolume is returned by ChangeVolume when asked to set a
// resting order's volume to zero; use Cancel instead.
var ErrZeroVolume = errors.New("order volume cannot be zero")

// ErrWouldMatch is returned by NewWithOrders when the supplied orders
// would produce a deal against each other. It exists only to keep
// deterministic test fixtures honest.
var ErrWouldMatch = errors.New("orders would match against each other")
