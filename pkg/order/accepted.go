package order

import (
	"github.com/lucentlabs/dexmatcher/pkg/asset"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/pkg/money"
)

// AcceptedOrder is the core's internal wrapper around a submitted or
// resting Order, modeled per §9 as a Go interface over two concrete
// variants rather than a single struct with an unused-fields union —
// MarketOrder's AvailableForSpending field simply doesn't exist on
// LimitOrder.
type AcceptedOrder interface {
	// Base returns the underlying signed Order (never mutated).
	Base() *Order
	// RemainingAmount is the amount-asset quantity still executable.
	RemainingAmount() uint64
	// RemainingFee is the matcher fee proportionate to RemainingAmount.
	RemainingFee() uint64
	// IsMarket distinguishes the variant without a type switch at call
	// sites that only care about the tag.
	IsMarket() bool

	// Partial returns a new AcceptedOrder with reduced remainders; the
	// receiver is left untouched. newAFS is ignored for LimitOrder.
	Partial(newAmount, newFee uint64, newAFS uint64) AcceptedOrder

	spentAsset() asset.Asset
	receiveAsset() asset.Asset
	feeAsset() asset.Asset
}

// SpentAsset, ReceiveAsset, FeeAsset are derived from side + pair, per §3.
func SpentAsset(a AcceptedOrder) asset.Asset   { return a.spentAsset() }
func ReceiveAsset(a AcceptedOrder) asset.Asset { return a.receiveAsset() }
func FeeAsset(a AcceptedOrder) asset.Asset     { return a.feeAsset() }

func sideAssets(o *Order) (spent, receive asset.Asset) {
	if o.Side == Buy {
		return o.Pair.PriceAsset, o.Pair.AmountAsset
	}
	return o.Pair.AmountAsset, o.Pair.PriceAsset
}

// AmountOfAmountAsset is amount, dust-corrected against price.
func AmountOfAmountAsset(a AcceptedOrder) (uint64, error) {
	return money.Correct(a.RemainingAmount(), a.Base().Price)
}

// AmountOfPriceAsset is floor(price*amount/PriceConstant).
func AmountOfPriceAsset(a AcceptedOrder) (uint64, error) {
	return money.Cost(a.RemainingAmount(), a.Base().Price)
}

// RequiredFee is max(0, fee - receiveAmount) when feeAsset == receiveAsset,
// else the full remaining fee.
func RequiredFee(a AcceptedOrder) (uint64, error) {
	if !a.feeAsset().Equal(a.receiveAsset()) {
		return a.RemainingFee(), nil
	}

	var receiveAmount uint64
	var err error
	if a.Base().Side == Buy {
		receiveAmount, err = AmountOfAmountAsset(a)
	} else {
		receiveAmount, err = AmountOfPriceAsset(a)
	}
	if err != nil {
		return 0, err
	}

	fee := a.RemainingFee()
	if fee <= receiveAmount {
		return 0, nil
	}
	return fee - receiveAmount, nil
}

// RequiredBalance maps asset -> needed units: {spentAsset -> rawSpentAmount} ⊕ {feeAsset -> requiredFee}.
func RequiredBalance(a AcceptedOrder) (map[asset.Asset]uint64, error) {
	var rawSpent uint64
	var err error
	if a.Base().Side == Buy {
		rawSpent, err = AmountOfPriceAsset(a)
	} else {
		rawSpent, err = AmountOfAmountAsset(a)
	}
	if err != nil {
		return nil, err
	}

	requiredFee, err := RequiredFee(a)
	if err != nil {
		return nil, err
	}

	out := map[asset.Asset]uint64{a.spentAsset(): rawSpent}
	out[a.feeAsset()] += requiredFee
	return out, nil
}

// ReservableBalance is identical to RequiredBalance for limit orders; for
// market orders the spent-asset entry is replaced by AvailableForSpending.
func ReservableBalance(a AcceptedOrder) (map[asset.Asset]uint64, error) {
	base, err := RequiredBalance(a)
	if err != nil {
		return nil, err
	}
	if mo, ok := a.(*MarketOrder); ok {
		base[a.spentAsset()] = mo.AvailableForSpending
	}
	return base, nil
}

// IsValid checks admission per §4.2: amount > 0, amount >= dust floor for
// counterPrice, amount < MaxAmount, spentAmount > 0, receiveAmount > 0.
func IsValid(a AcceptedOrder, counterPrice uint64, maxAmount uint64) (bool, error) {
	if a.RemainingAmount() == 0 {
		return false, nil
	}
	if a.RemainingAmount() >= maxAmount {
		return false, nil
	}

	minAmt, err := money.MinAmountForPrice(counterPrice)
	if err != nil {
		return false, err
	}
	if a.RemainingAmount() < minAmt {
		return false, nil
	}

	var spent, receive uint64
	if a.Base().Side == Buy {
		spent, err = AmountOfPriceAsset(a)
		if err != nil {
			return false, err
		}
		receive, err = AmountOfAmountAsset(a)
		if err != nil {
			return false, err
		}
	} else {
		spent, err = AmountOfAmountAsset(a)
		if err != nil {
			return false, err
		}
		receive, err = AmountOfPriceAsset(a)
		if err != nil {
			return false, err
		}
	}
	return spent > 0 && receive > 0, nil
}

// --- LimitOrder ---

// LimitOrder is a resting/submitted order with a remaining executable
// amount and a remaining fee proportionate to that amount.
type LimitOrder struct {
	Amount uint64
	Fee    uint64
	Order  *Order
}

// OfOrder constructs a fresh LimitOrder wrapping order, with the full
// amount/fee remaining.
func OfOrder(o *Order) *LimitOrder {
	return &LimitOrder{Amount: o.Amount, Fee: o.MatcherFee, Order: o}
}

func (l *LimitOrder) Base() *Order            { return l.Order }
func (l *LimitOrder) RemainingAmount() uint64 { return l.Amount }
func (l *LimitOrder) RemainingFee() uint64    { return l.Fee }
func (l *LimitOrder) IsMarket() bool          { return false }

func (l *LimitOrder) Partial(newAmount, newFee uint64, _ uint64) AcceptedOrder {
	return &LimitOrder{Amount: newAmount, Fee: newFee, Order: l.Order}
}

func (l *LimitOrder) spentAsset() asset.Asset {
	spent, _ := sideAssets(l.Order)
	return spent
}
func (l *LimitOrder) receiveAsset() asset.Asset {
	_, receive := sideAssets(l.Order)
	return receive
}
func (l *LimitOrder) feeAsset() asset.Asset { return l.Order.FeeAsset }

// --- MarketOrder ---

// MarketOrder adds a cap (AvailableForSpending) on the spent-asset balance
// the matcher may consume, on top of a LimitOrder's remaining amount/fee.
type MarketOrder struct {
	Amount               uint64
	Fee                  uint64
	Order                *Order
	AvailableForSpending uint64
}

// OfOrderWithAFS constructs a MarketOrder with an explicit spending cap.
func OfOrderWithAFS(o *Order, afs uint64) *MarketOrder {
	return &MarketOrder{Amount: o.Amount, Fee: o.MatcherFee, Order: o, AvailableForSpending: afs}
}

// OfOrderWithBalance constructs a MarketOrder via a tradable-balance
// lookup, per §4.2:
//
//	availableForSpending = min(tradableBalance(spentAsset), LimitOrder.of(order).requiredBalance[spentAsset])
func OfOrderWithBalance(o *Order, tradableBalance func(asset.Asset) (uint64, error)) (*MarketOrder, error) {
	limit := OfOrder(o)
	required, err := RequiredBalance(limit)
	if err != nil {
		return nil, err
	}
	spent := limit.spentAsset()

	balance, err := tradableBalance(spent)
	if err != nil {
		return nil, err
	}

	afs := required[spent]
	if balance < afs {
		afs = balance
	}
	return OfOrderWithAFS(o, afs), nil
}

func (m *MarketOrder) Base() *Order            { return m.Order }
func (m *MarketOrder) RemainingAmount() uint64 { return m.Amount }
func (m *MarketOrder) RemainingFee() uint64    { return m.Fee }
func (m *MarketOrder) IsMarket() bool          { return true }

func (m *MarketOrder) Partial(newAmount, newFee uint64, newAFS uint64) AcceptedOrder {
	return &MarketOrder{Amount: newAmount, Fee: newFee, Order: m.Order, AvailableForSpending: newAFS}
}

func (m *MarketOrder) spentAsset() asset.Asset {
	spent, _ := sideAssets(m.Order)
	return spent
}
func (m *MarketOrder) receiveAsset() asset.Asset {
	_, receive := sideAssets(m.Order)
	return receive
}
func (m *MarketOrder) feeAsset() asset.Asset { return m.Order.FeeAsset }

var (
	_ AcceptedOrder = (*LimitOrder)(nil)
	_ AcceptedOrder = (*MarketOrder)(nil)
)

// ErrNotMarket is returned by helpers that require a MarketOrder.
var ErrNotMarket = errs.New(errs.DomainError, "accepted order is not a market order")
