// Package orderbook implements the Order Book (OB): price-time priority
// resting order storage for one asset pair, backed by a heap-of-price-levels
// design over order.AcceptedOrder.
package orderbook

import (
	"container/heap"
	"sort"
	"sync"

	"github.com/lucentlabs/dexmatcher/pkg/order"
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
)

// PriceLevel is an aggregated view of one resting price, used for snapshots
// and market-data projections, not for matching itself.
type PriceLevel struct {
	Price  uint64
	Amount uint64 // sum of RemainingAmount() across all orders resting at Price
}

// resting pairs an accepted order with a monotonic insertion sequence. The
// sequence — never a wall-clock timestamp — is what breaks ties within a
// price level, so a submitter can't jump the FIFO queue by lying about its
// own Timestamp field.
type resting struct {
	order order.AcceptedOrder
	seq   uint64
}

// OrderBook holds the resting buy and sell orders for a single asset pair.
type OrderBook struct {
	mu sync.RWMutex

	bidHeap maxPriceHeap
	askHeap minPriceHeap

	bids map[uint64][]*resting
	asks map[uint64][]*resting

	index map[xcrypto.Hash32]uint64 // order id -> price, for O(1) cancel lookup
	side  map[xcrypto.Hash32]order.Side

	nextSeq uint64
}

func New() *OrderBook {
	ob := &OrderBook{
		bids:  make(map[uint64][]*resting),
		asks:  make(map[uint64][]*resting),
		index: make(map[xcrypto.Hash32]uint64),
		side:  make(map[xcrypto.Hash32]order.Side),
	}
	heap.Init(&ob.bidHeap)
	heap.Init(&ob.askHeap)
	return ob
}

// Add inserts o at the back of its price level's FIFO queue.
func (ob *OrderBook) Add(o order.AcceptedOrder) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	id := o.Base().ID()
	price := o.Base().Price
	seq := ob.nextSeq
	ob.nextSeq++
	r := &resting{order: o, seq: seq}

	if o.Base().Side == order.Buy {
		if len(ob.bids[price]) == 0 {
			heap.Push(&ob.bidHeap, price)
		}
		ob.bids[price] = append(ob.bids[price], r)
	} else {
		if len(ob.asks[price]) == 0 {
			heap.Push(&ob.askHeap, price)
		}
		ob.asks[price] = append(ob.asks[price], r)
	}
	ob.index[id] = price
	ob.side[id] = o.Base().Side
}

// BestBuy returns the highest-priced, earliest-queued resting buy order.
func (ob *OrderBook) BestBuy() (order.AcceptedOrder, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.frontLocked(order.Buy)
}

// BestSell returns the lowest-priced, earliest-queued resting sell order.
func (ob *OrderBook) BestSell() (order.AcceptedOrder, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.frontLocked(order.Sell)
}

func (ob *OrderBook) frontLocked(side order.Side) (order.AcceptedOrder, bool) {
	if side == order.Buy {
		price, ok := ob.bidHeap.Peek()
		if !ok {
			return nil, false
		}
		level := ob.bids[price]
		if len(level) == 0 {
			return nil, false
		}
		return level[0].order, true
	}
	price, ok := ob.askHeap.Peek()
	if !ok {
		return nil, false
	}
	level := ob.asks[price]
	if len(level) == 0 {
		return nil, false
	}
	return level[0].order, true
}

// PopFront removes the best resting order on side entirely (it was fully
// consumed by a match).
func (ob *OrderBook) PopFront(side order.Side) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.popFrontLocked(side)
}

func (ob *OrderBook) popFrontLocked(side order.Side) {
	if side == order.Buy {
		price, ok := ob.bidHeap.Peek()
		if !ok {
			return
		}
		level := ob.bids[price]
		if len(level) == 0 {
			return
		}
		id := level[0].order.Base().ID()
		delete(ob.index, id)
		delete(ob.side, id)
		ob.bids[price] = level[1:]
		if len(ob.bids[price]) == 0 {
			delete(ob.bids, price)
			ob.removeFromHeapLocked(order.Buy, price)
		}
		return
	}
	price, ok := ob.askHeap.Peek()
	if !ok {
		return
	}
	level := ob.asks[price]
	if len(level) == 0 {
		return
	}
	id := level[0].order.Base().ID()
	delete(ob.index, id)
	delete(ob.side, id)
	ob.asks[price] = level[1:]
	if len(ob.asks[price]) == 0 {
		delete(ob.asks, price)
		ob.removeFromHeapLocked(order.Sell, price)
	}
}

// ReplaceFront swaps the best resting order on side for its partially-filled
// successor, keeping it at the front of the same price-level queue (it keeps
// queue priority: it was there first, and only lost the quantity a taker
// consumed).
func (ob *OrderBook) ReplaceFront(side order.Side, next order.AcceptedOrder) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	price := next.Base().Price
	if side == order.Buy {
		level := ob.bids[price]
		if len(level) == 0 {
			return
		}
		level[0] = &resting{order: next, seq: level[0].seq}
		return
	}
	level := ob.asks[price]
	if len(level) == 0 {
		return
	}
	level[0] = &resting{order: next, seq: level[0].seq}
}

// Cancel removes a resting order by id from whichever side it rests on,
// returning the removed order so the caller can emit an OrderCanceled event
// carrying its data.
func (ob *OrderBook) Cancel(id xcrypto.Hash32) (order.AcceptedOrder, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	price, ok := ob.index[id]
	if !ok {
		return nil, false
	}
	side := ob.side[id]

	queue := ob.bids
	if side == order.Sell {
		queue = ob.asks
	}

	level := queue[price]
	for i, r := range level {
		if r.order.Base().ID() == id {
			removed := r.order
			queue[price] = append(level[:i:i], level[i+1:]...)
			if len(queue[price]) == 0 {
				delete(queue, price)
				ob.removeFromHeapLocked(side, price)
			}
			delete(ob.index, id)
			delete(ob.side, id)
			return removed, true
		}
	}
	return nil, false
}

func (ob *OrderBook) removeFromHeapLocked(side order.Side, price uint64) {
	if side == order.Buy {
		for i, p := range ob.bidHeap {
			if p == price {
				heap.Remove(&ob.bidHeap, i)
				return
			}
		}
		return
	}
	for i, p := range ob.askHeap {
		if p == price {
			heap.Remove(&ob.askHeap, i)
			return
		}
	}
}

// BidLevels returns aggregated resting buy levels, best (highest) price first.
func (ob *OrderBook) BidLevels() []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return aggregateLevels(ob.bids, true)
}

// AskLevels returns aggregated resting sell levels, best (lowest) price first.
func (ob *OrderBook) AskLevels() []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return aggregateLevels(ob.asks, false)
}

func aggregateLevels(m map[uint64][]*resting, highToLow bool) []PriceLevel {
	levels := make([]PriceLevel, 0, len(m))
	for price, rs := range m {
		var total uint64
		for _, r := range rs {
			total += r.order.RemainingAmount()
		}
		if total == 0 {
			continue
		}
		levels = append(levels, PriceLevel{Price: price, Amount: total})
	}
	sort.Slice(levels, func(i, j int) bool {
		if highToLow {
			return levels[i].Price > levels[j].Price
		}
		return levels[i].Price < levels[j].Price
	})
	return levels
}

// Depth reports how many distinct price levels rest on each side.
func (ob *OrderBook) Depth() (bids, asks int) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return len(ob.bids), len(ob.asks)
}
