// Package orderbook implements the per-pair price-time priority limit
// order book and the continuous matching algorithm that drives it.
//
// This is the critical contract of the whole system: buy keys order
// by price descending (best bid first), sell keys order by price
// ascending (best ask first), and ties at the same price are broken
// by insertion order (lower sequence id first, FIFO). A single
// comparator function encodes both signs so the rule can never drift
// out of sync between the two sides, the way an earlier iteration of
// this engine once did for same-price sells.
package orderbook

import (
	"coreex/domain"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/google/uuid"
)

// treeKey is the ordering key stored in the priority tree: (side,
// price, seqID), where seqID is a strictly monotonically increasing
// counter minted by the owning book at insertion time.
type treeKey struct {
	side  domain.Side
	price uint64
	seqID uint64
}

// compareTreeKeys is the single source of truth for price-time
// ordering. Buy keys compare by price descending, sell keys by price
// ascending; ties break by seqID ascending on both sides.
func compareTreeKeys(a, b treeKey) int {
	switch {
	case a.price == b.price:
		switch {
		case a.seqID < b.seqID:
			return -1
		case a.seqID > b.seqID:
			return 1
		default:
			return 0
		}
	case a.side == domain.Sell:
		if a.price < b.price {
			return -1
		}
		return 1
	default: // Buy: reverse the natural price order
		if a.price < b.price {
			return 1
		}
		return -1
	}
}

// OrderBook is a single trading pair's price-time priority store. It
// is not safe for concurrent use: callers (the exchange dispatch
// loop) must serialize access.
type OrderBook struct {
	nextSeqID uint64
	buyLevels *rbt.Tree[treeKey, domain.Order]
	sellLevels *rbt.Tree[treeKey, domain.Order]
	byID      map[uuid.UUID]treeKey
}

// New creates a new, empty order book.
func New() *OrderBook {
	return &OrderBook{
		buyLevels:  rbt.NewWith[treeKey, domain.Order](compareTreeKeys),
		sellLevels: rbt.NewWith[treeKey, domain.Order](compareTreeKeys),
		byID:       make(map[uuid.UUID]treeKey),
	}
}

// NewWithOrders builds a book from a deterministic set of initial
// resting orders, for test setup. It fails if placing any of the
// supplied orders would produce a deal against an order placed
// earlier in the list.
func NewWithOrders(orders []domain.Order) (*OrderBook, error) {
	book := New()
	for _, order := range orders {
		deals := book.Place(order)
		if len(deals) != 0 {
			return nil, ErrWouldMatch
		}
	}
	return book, nil
}

func (b *OrderBook) tree(side domain.Side) *rbt.Tree[treeKey, domain.Order] {
	if side == domain.Buy {
		return b.buyLevels
	}
	return b.sellLevels
}

// crosses reports whether an incoming order at the given side/price
// can still match against a resting maker at makerPrice. Once it
// returns false for one maker, monotonicity of the opposite side's
// iteration order guarantees it is false for every maker after it.
func crosses(side domain.Side, price, makerPrice uint64) bool {
	if side == domain.Buy {
		return price >= makerPrice
	}
	return price <= makerPrice
}

// Place matches the incoming order against the opposite side of the
// book (best-priced maker first) and rests any unfilled residual.
// Deals are returned in the order they were emitted; both sides of
// each deal are value snapshots taken before that deal's volume is
// subtracted.
func (b *OrderBook) Place(incoming domain.Order) []domain.Deal {
	opposite := b.tree(incoming.Side.Opposite())

	var deals []domain.Deal

	type fill struct {
		key      treeKey
		maker    domain.Order
		depleted bool
	}
	var fills []fill

	it := opposite.Iterator()
	for it.Next() {
		key := it.Key()
		maker := it.Value()

		if !crosses(incoming.Side, incoming.Price, maker.Price) {
			break
		}

		dealVolume := maker.Volume
		if incoming.Volume < dealVolume {
			dealVolume = incoming.Volume
		}

		deals = append(deals, domain.Deal{
			TakerOrder: incoming,
			MakerOrder: maker,
			Volume:     dealVolume,
		})

		maker.Volume -= dealVolume
		incoming.Volume -= dealVolume

		fills = append(fills, fill{key: key, maker: maker, depleted: maker.Volume == 0})

		if incoming.Volume == 0 {
			break
		}
	}

	// Apply maker-side mutations after the walk: the opposite tree is
	// never mutated while its iterator is live.
	for _, f := range fills {
		if f.depleted {
			opposite.Remove(f.key)
			delete(b.byID, f.maker.ID)
		} else {
			opposite.Put(f.key, f.maker)
		}
	}

	if incoming.Volume > 0 {
		b.rest(incoming)
	}

	return deals
}

// rest inserts a residual order as a new resting order, minting a
// fresh sequence id so it sorts behind every existing order at the
// same price.
func (b *OrderBook) rest(order domain.Order) {
	key := treeKey{side: order.Side, price: order.Price, seqID: b.nextSeqID}
	b.nextSeqID++
	b.tree(order.Side).Put(key, order)
	b.byID[order.ID] = key
}

// Cancel removes a resting order by id.
func (b *OrderBook) Cancel(orderID uuid.UUID) error {
	key, ok := b.byID[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	b.tree(key.side).Remove(key)
	delete(b.byID, orderID)
	return nil
}

// ChangeVolume replaces a resting order's volume in place. The order
// keeps its original TreeKey, and therefore its time priority — a
// volume increase does not move it to the back of its price level.
// This is a deliberate simplification; callers that need "increase
// re-queues" semantics must cancel and re-place instead.
func (b *OrderBook) ChangeVolume(orderID uuid.UUID, newVolume uint64) error {
	if newVolume == 0 {
		return ErrZeroVolume
	}
	key, ok := b.byID[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	tree := b.tree(key.side)
	order, ok := tree.Get(key)
	if !ok {
		// by_id disagrees with the tree: an internal invariant is
		// broken. This is fatal, not a recoverable not-found.
		panic("orderbook: by_id entry points at a key missing from its tree")
	}
	order.Volume = newVolume
	tree.Put(key, order)
	return nil
}

// Get returns the current resting state of an order by id.
func (b *OrderBook) Get(orderID uuid.UUID) (domain.Order, bool) {
	key, ok := b.byID[orderID]
	if !ok {
		return domain.Order{}, false
	}
	order, ok := b.tree(key.side).Get(key)
	if !ok {
		panic("orderbook: by_id entry points at a key missing from its tree")
	}
	return order, true
}

// BestBuyPrice returns the highest resting bid price, or (0, false)
// if the buy side is empty.
func (b *OrderBook) BestBuyPrice() (uint64, bool) {
	node := b.buyLevels.Left()
	if node == nil {
		return 0, false
	}
	return node.Value.Price, true
}

// BestSellPrice returns the lowest resting ask price, or (0, false)
// if the sell side is empty.
func (b *OrderBook) BestSellPrice() (uint64, bool) {
	node := b.sellLevels.Left()
	if node == nil {
		return 0, false
	}
	return node.Value.Price, true
}

// BuyOrders returns every resting buy order in price-time priority
// order (best bid first). Intended for tests and snapshots; not on
// the matching hot path.
func (b *OrderBook) BuyOrders() []domain.Order {
	return ordersInOrder(b.buyLevels)
}

// SellOrders returns every resting sell order in price-time priority
// order (best ask first).
func (b *OrderBook) SellOrders() []domain.Order {
	return ordersInOrder(b.sellLevels)
}

func ordersInOrder(tree *rbt.Tree[treeKey, domain.Order]) []domain.Order {
	orders := make([]domain.Order, 0, tree.Size())
	it := tree.Iterator()
	for it.Next() {
		orders = append(orders, it.Value())
	}
	return orders
}
