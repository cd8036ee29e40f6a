// Package validator implements the Match Validator (MV): verification that
// a candidate settlement transaction is consistent with its embedded orders
// and with the history of prior matches against those orders (spec §4.6).
package validator

import (
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/pkg/money"
	"github.com/lucentlabs/dexmatcher/pkg/order"
	"github.com/lucentlabs/dexmatcher/pkg/settlement"
	"github.com/lucentlabs/dexmatcher/params"
)

// PriorMatch is the minimal projection of a previously accepted match this
// validator needs: which amount was consumed from which order.
type PriorMatch struct {
	BuyOrderID  xcrypto.Hash32
	SellOrderID xcrypto.Hash32
	Amount      uint64
}

// History answers cumulative-fill questions (condition 5) without handing
// the validator the live order book.
type History interface {
	// FilledAmount returns the sum of prior match amounts recorded against
	// the order identified by id.
	FilledAmount(id xcrypto.Hash32) uint64
}

// Validate checks all seven conditions of spec §4.6 and returns the first
// failing one as a *errs.Error with Kind == errs.ValidationError and a
// named Predicate. now is the validation-time clock, used for the embedded
// orders' own isValid-at-now check.
func Validate(tx *settlement.ExchangeTransaction, hist History, limits params.Limits, now int64) error {
	buy, sell := tx.Order1, tx.Order2

	// 1. fee > 0 ∧ amount > 0 ∧ price > 0.
	if tx.Fee == 0 || tx.Amount == 0 || tx.Price == 0 {
		return errs.WithPredicate(errs.ValidationError, "non-positive-field", "fee, amount, and price must all be positive")
	}

	// 2. orders cross: same matcher, assets align, buy.price >= sell.price,
	// both priced in the same priceAsset.
	if buy.Side != order.Buy {
		return errs.WithPredicate(errs.ValidationError, "asset-mismatch", "order1 is not a buy order")
	}
	if sell.Side != order.Sell {
		return errs.WithPredicate(errs.ValidationError, "asset-mismatch", "order2 is not a sell order")
	}
	if buy.Matcher != sell.Matcher {
		return errs.WithPredicate(errs.ValidationError, "matcher-mismatch", "buy and sell orders have different matchers")
	}
	if !buy.Pair.PriceAsset.Equal(sell.Pair.PriceAsset) {
		return errs.WithPredicate(errs.ValidationError, "asset-mismatch", "orders do not share a price asset")
	}
	if !buy.Pair.AmountAsset.Equal(sell.Pair.AmountAsset) {
		return errs.WithPredicate(errs.ValidationError, "asset-mismatch", "orders do not share an amount asset")
	}
	if buy.Price < sell.Price {
		return errs.WithPredicate(errs.ValidationError, "price-mismatch", "buy price does not cross sell price")
	}

	// 3. price ∈ {buy.price, sell.price}.
	if tx.Price != buy.Price && tx.Price != sell.Price {
		return errs.WithPredicate(errs.ValidationError, "price-not-crossing-party", "settlement price is neither order's price")
	}

	// 4. both orders individually valid as of now.
	if err := buy.Validate(limits); err != nil {
		return errs.WithPredicate(errs.ValidationError, "buy-order-invalid", err.Error())
	}
	if buy.IsExpired(now) {
		return errs.WithPredicate(errs.ValidationError, "buy-order-invalid", "buy order expired")
	}
	if err := sell.Validate(limits); err != nil {
		return errs.WithPredicate(errs.ValidationError, "sell-order-invalid", err.Error())
	}
	if sell.IsExpired(now) {
		return errs.WithPredicate(errs.ValidationError, "sell-order-invalid", "sell order expired")
	}

	// 5. cumulative conservation: prior fills + this amount must not
	// exceed the order's original amount.
	buyID, sellID := buy.ID(), sell.ID()
	if hist.FilledAmount(buyID)+tx.Amount > buy.Amount {
		return errs.WithPredicate(errs.ValidationError, "over-fill", "cumulative fill exceeds buy order amount")
	}
	if hist.FilledAmount(sellID)+tx.Amount > sell.Amount {
		return errs.WithPredicate(errs.ValidationError, "over-fill", "cumulative fill exceeds sell order amount")
	}

	// 6. fee apportionment.
	buyShare, err := money.PartialFee(buy.MatcherFee, buy.Amount, tx.Amount)
	if err != nil {
		return &errs.Error{Kind: errs.ValidationError, Predicate: "fee-mismatch", Msg: "could not compute buy-side apportionment", Cause: err}
	}
	sellShare, err := money.PartialFee(sell.MatcherFee, sell.Amount, tx.Amount)
	if err != nil {
		return &errs.Error{Kind: errs.ValidationError, Predicate: "fee-mismatch", Msg: "could not compute sell-side apportionment", Cause: err}
	}
	if tx.MatcherFee != buyShare+sellShare {
		return errs.WithPredicate(errs.ValidationError, "fee-mismatch", "matcherFee does not equal the proportional sum")
	}

	// 7. signature over the canonical bytes verifies against the (shared)
	// matcher public key.
	if !tx.VerifySignature(buy.Matcher) {
		return errs.WithPredicate(errs.ValidationError, "signature-invalid", "transaction signature does not verify against the matcher's key")
	}

	return nil
}
