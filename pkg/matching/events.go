package matching

import "github.com/lucentlabs/dexmatcher/pkg/order"

// EventKind tags which variant of MatchEvent a value carries (spec §3).
type EventKind int

const (
	OrderAdded EventKind = iota
	OrderExecuted
	OrderCanceled
)

func (k EventKind) String() string {
	switch k {
	case OrderAdded:
		return "order_added"
	case OrderExecuted:
		return "order_executed"
	case OrderCanceled:
		return "order_canceled"
	default:
		return "unknown"
	}
}

// Event is a self-contained value record: it carries copies of whatever data
// downstream consumers need and never a reference back into the live book.
type Event struct {
	Kind      EventKind
	Timestamp int64

	// OrderAdded
	Added order.AcceptedOrder

	// OrderExecuted
	Submitted                 order.AcceptedOrder
	Counter                   order.AcceptedOrder
	ExecutedAmount            uint64
	ExecutedAmountOfPriceAsset uint64
	SubmittedExecutedFee      uint64
	CounterExecutedFee        uint64
	SubmittedRemaining        order.AcceptedOrder
	CounterRemaining          order.AcceptedOrder

	// OrderCanceled
	Canceled     order.AcceptedOrder
	SystemCancel bool
}
