// Package matching implements the Matching Engine (ME): the decision
// procedure that pairs a submitted accepted order against the best resting
// order on the opposite side of a book, producing match events and updated
// remainders (spec §4.4).
package matching

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/pkg/money"
	"github.com/lucentlabs/dexmatcher/pkg/order"
	"github.com/lucentlabs/dexmatcher/pkg/orderbook"
	"github.com/lucentlabs/dexmatcher/params"
)

// Book is the subset of *orderbook.OrderBook the engine depends on, so tests
// can substitute a bare-bones fake without building a real book.
type Book interface {
	BestBuy() (order.AcceptedOrder, bool)
	BestSell() (order.AcceptedOrder, bool)
	Add(o order.AcceptedOrder)
	PopFront(side order.Side)
	ReplaceFront(side order.Side, next order.AcceptedOrder)
}

var _ Book = (*orderbook.OrderBook)(nil)

// Engine runs the matching decision procedure against a Book.
type Engine struct {
	// MaxAmount bounds what isValid will accept as a resting or submitted
	// remainder (spec §4.2).
	MaxAmount uint64

	// Logger, if set, receives a Warn entry for every order the engine
	// system-cancels (invalid order, non-crossing remainder below the dust
	// floor, or a zero-executed match). Nil by default, matching the
	// nil-checked optional logger convention this node uses elsewhere.
	Logger *zap.SugaredLogger
}

func New(maxAmount uint64) *Engine {
	return &Engine{MaxAmount: maxAmount}
}

func (e *Engine) logSystemCancel(current order.AcceptedOrder, reason string) {
	if e.Logger == nil {
		return
	}
	id := current.Base().ID()
	e.Logger.Warnw("order_system_cancelled", "order_id", fmt.Sprintf("0x%x", id[:8]), "reason", reason)
}

// Match runs submitted to completion against book: it may cross zero, one,
// or several resting orders before resting, filling, or being cancelled.
// now is supplied by the caller (the engine never reads the clock itself,
// so replaying the same submissions with the same now produces the same
// event sequence).
func (e *Engine) Match(submitted order.AcceptedOrder, book Book, now int64) ([]Event, error) {
	var events []Event
	current := submitted

	for {
		valid, err := order.IsValid(current, current.Base().Price, e.MaxAmount)
		if err != nil {
			return events, err
		}
		if !valid {
			e.logSystemCancel(current, "invalid")
			events = append(events, Event{Kind: OrderCanceled, Timestamp: now, Canceled: current, SystemCancel: true})
			return events, nil
		}

		counter, counterSide, hasCounter := peekCounter(current, book)

		if !hasCounter || !crosses(current, counter) {
			rested, event, err := e.restOrCancel(current, now)
			if err != nil {
				return events, err
			}
			events = append(events, event)
			if rested {
				book.Add(current)
			}
			return events, nil
		}

		executed, err := executedAmount(current, counter)
		if err != nil {
			return events, err
		}
		if executed == 0 {
			rested, event, err := e.restOrCancel(current, now)
			if err != nil {
				return events, err
			}
			events = append(events, event)
			if rested {
				book.Add(current)
			}
			return events, nil
		}

		executedPriceAsset, err := money.Cost(executed, counter.Base().Price)
		if err != nil {
			return events, err
		}
		counterExecutedFee, err := money.PartialFee(counter.Base().MatcherFee, counter.Base().Amount, executed)
		if err != nil {
			return events, err
		}
		submittedExecutedFee, err := money.PartialFee(current.Base().MatcherFee, current.Base().Amount, executed)
		if err != nil {
			return events, err
		}

		counterRemaining := counter.Partial(counter.RemainingAmount()-executed, counter.RemainingFee()-counterExecutedFee, 0)
		minCounterAmt, err := money.MinAmountForPrice(counter.Base().Price)
		if err != nil {
			return events, err
		}
		if counterRemaining.RemainingAmount() == 0 || counterRemaining.RemainingAmount() < minCounterAmt {
			book.PopFront(counterSide)
		} else {
			book.ReplaceFront(counterSide, counterRemaining)
		}

		next := nextRemaining(current, executed, executedPriceAsset, submittedExecutedFee)

		events = append(events, Event{
			Kind:                       OrderExecuted,
			Timestamp:                  now,
			Submitted:                  current,
			Counter:                    counter,
			ExecutedAmount:             executed,
			ExecutedAmountOfPriceAsset: executedPriceAsset,
			SubmittedExecutedFee:       submittedExecutedFee,
			CounterExecutedFee:         counterExecutedFee,
			SubmittedRemaining:         next,
			CounterRemaining:           counterRemaining,
		})

		if next.RemainingAmount() == 0 {
			return events, nil
		}
		current = next
	}
}

func peekCounter(current order.AcceptedOrder, book Book) (order.AcceptedOrder, order.Side, bool) {
	if current.Base().Side == order.Buy {
		c, ok := book.BestSell()
		return c, order.Sell, ok
	}
	c, ok := book.BestBuy()
	return c, order.Buy, ok
}

// crosses applies the uniform crossing rule buy.price >= sell.price,
// regardless of which side submitted. The source this spec is drawn from
// applies that check asymmetrically in one branch only; this implementation
// deliberately does not reproduce that asymmetry (spec §9).
func crosses(current, counter order.AcceptedOrder) bool {
	var buyPrice, sellPrice uint64
	if current.Base().Side == order.Buy {
		buyPrice, sellPrice = current.Base().Price, counter.Base().Price
	} else {
		buyPrice, sellPrice = counter.Base().Price, current.Base().Price
	}
	return buyPrice >= sellPrice
}

// restOrCancel decides the step-3/step-8 tail: a limit order with a
// resting-sized remainder is added to the book; anything else (a market
// order, or a limit order below its own dust floor) is system-cancelled.
func (e *Engine) restOrCancel(current order.AcceptedOrder, now int64) (rested bool, event Event, err error) {
	minAmt, err := money.MinAmountForPrice(current.Base().Price)
	if err != nil {
		return false, Event{}, err
	}
	if !current.IsMarket() && current.RemainingAmount() >= minAmt {
		return true, Event{Kind: OrderAdded, Timestamp: now, Added: current}, nil
	}
	reason := "below_dust_floor"
	if current.IsMarket() {
		reason = "market_order_not_fully_executed"
	}
	e.logSystemCancel(current, reason)
	return false, Event{Kind: OrderCanceled, Timestamp: now, Canceled: current, SystemCancel: true}, nil
}

// executedAmount computes the trade quantity per spec §4.4. The trading
// price is always the counter's price (counter-price priority).
func executedAmount(current, counter order.AcceptedOrder) (uint64, error) {
	counterAmountOfAmountAsset, err := order.AmountOfAmountAsset(counter)
	if err != nil {
		return 0, err
	}
	correctedSubmitted, err := money.Correct(current.RemainingAmount(), counter.Base().Price)
	if err != nil {
		return 0, err
	}
	matched := min64(correctedSubmitted, counterAmountOfAmountAsset)

	mo, isMarket := current.(*order.MarketOrder)
	if !isMarket {
		return matched, nil
	}

	a := current.Base().Amount
	fee := current.Base().MatcherFee
	afs := mo.AvailableForSpending
	counterPrice := counter.Base().Price
	sameAsset := order.FeeAsset(current).Equal(order.SpentAsset(current))

	if current.Base().Side == order.Buy {
		var cap uint64
		if sameAsset {
			denomTerm, err := mulDivFloor(counterPrice, a, params.PriceConstant)
			if err != nil {
				return 0, err
			}
			denom := denomTerm + fee
			if denom == 0 {
				return 0, nil
			}
			num, err := mulDivFloor(afs, a, denom)
			if err != nil {
				return 0, err
			}
			cap, err = money.Correct(num, counterPrice)
			if err != nil {
				return 0, err
			}
		} else {
			raw, err := mulDivFloor(afs, params.PriceConstant, counterPrice)
			if err != nil {
				return 0, err
			}
			cap, err = money.Correct(raw, counterPrice)
			if err != nil {
				return 0, err
			}
		}
		return min64(matched, cap), nil
	}

	// market sell
	var cap uint64
	if sameAsset {
		denom := a + fee
		if denom == 0 {
			return 0, nil
		}
		c, err := mulDivFloor(afs, a, denom)
		if err != nil {
			return 0, err
		}
		cap = c
	} else {
		cap = afs
	}
	return min64(matched, cap), nil
}

// nextRemaining computes submittedRemaining per spec §4.4 step 7: reduce
// amount/fee by the executed quantities, and for market orders also debit
// availableForSpending by what was actually spent this round.
func nextRemaining(current order.AcceptedOrder, executed, executedPriceAsset, submittedExecutedFee uint64) order.AcceptedOrder {
	nextAmount := current.RemainingAmount() - executed
	nextFee := current.RemainingFee() - submittedExecutedFee

	mo, isMarket := current.(*order.MarketOrder)
	if !isMarket {
		return current.Partial(nextAmount, nextFee, 0)
	}

	spent := executedPriceAsset
	if current.Base().Side == order.Sell {
		spent = executed
	}
	newAFS := mo.AvailableForSpending - spent
	if order.FeeAsset(current).Equal(order.SpentAsset(current)) {
		newAFS -= submittedExecutedFee
	}
	return current.Partial(nextAmount, nextFee, newAFS)
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// mulDivFloor computes floor(x*y/z) with a 128-bit-class big.Int
// intermediate, matching the overflow-safety requirement in spec §9.
func mulDivFloor(x, y, z uint64) (uint64, error) {
	if z == 0 {
		return 0, errs.New(errs.DomainError, "mulDivFloor: division by zero")
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
	result := new(big.Int).Quo(num, new(big.Int).SetUint64(z))
	if !result.IsUint64() {
		return 0, errs.New(errs.DomainError, "mulDivFloor: arithmetic overflow")
	}
	return result.Uint64(), nil
}
