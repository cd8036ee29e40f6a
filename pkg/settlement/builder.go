// Package settlement implements the Settlement Builder (SB): it turns an
// OrderExecuted match event into a signed ExchangeTransaction and a
// balance-change projection (spec §4.5).
package settlement

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/lucentlabs/dexmatcher/pkg/asset"
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/pkg/matching"
	"github.com/lucentlabs/dexmatcher/pkg/money"
	"github.com/lucentlabs/dexmatcher/pkg/order"
)

// ExchangeTransaction is the settlement record for one completed match:
// order1 is always the buy order, order2 the sell order.
type ExchangeTransaction struct {
	Order1     *order.Order
	Order2     *order.Order
	Price      uint64
	Amount     uint64
	MatcherFee uint64
	Fee        uint64
	Timestamp  int64
	Signature  xcrypto.Signature
}

// BuildFromEvent constructs an unsigned ExchangeTransaction from an
// OrderExecuted event where both sides are limit orders — the typical
// chain-recorded case (spec §4.5). fee is the node-chosen portion of the
// combined matcher fee.
func BuildFromEvent(ev matching.Event, fee uint64, now int64) (*ExchangeTransaction, error) {
	if ev.Kind != matching.OrderExecuted {
		return nil, errs.New(errs.DomainError, "settlement: event is not an OrderExecuted")
	}
	if ev.Submitted.IsMarket() || ev.Counter.IsMarket() {
		return nil, errs.New(errs.DomainError, "settlement: only a limit/limit match produces a signed exchange transaction")
	}

	buyAO, sellAO := ev.Submitted, ev.Counter
	buyFee, sellFee := ev.SubmittedExecutedFee, ev.CounterExecutedFee
	if ev.Submitted.Base().Side == order.Sell {
		buyAO, sellAO = ev.Counter, ev.Submitted
		buyFee, sellFee = ev.CounterExecutedFee, ev.SubmittedExecutedFee
	}

	return &ExchangeTransaction{
		Order1:     buyAO.Base(),
		Order2:     sellAO.Base(),
		Price:      ev.Counter.Base().Price,
		Amount:     ev.ExecutedAmount,
		MatcherFee: buyFee + sellFee,
		Fee:        fee,
		Timestamp:  now,
	}, nil
}

// CanonicalBytes produces the exact signing/id byte layout from spec §6:
//
//	len(order1)(4 BE) ∥ len(order2)(4 BE) ∥ order1_bytes ∥ order2_bytes ∥
//	price(8 BE) ∥ amount(8 BE) ∥ matcherFee(8 BE) ∥ fee(8 BE) ∥ timestamp(8 BE)
func (tx *ExchangeTransaction) CanonicalBytes() []byte {
	o1 := tx.Order1.CanonicalBytes()
	o2 := tx.Order2.CanonicalBytes()

	buf := make([]byte, 0, 8+len(o1)+len(o2)+40)
	buf = appendU32(buf, uint32(len(o1)))
	buf = appendU32(buf, uint32(len(o2)))
	buf = append(buf, o1...)
	buf = append(buf, o2...)
	buf = appendU64(buf, tx.Price)
	buf = appendU64(buf, tx.Amount)
	buf = appendU64(buf, tx.MatcherFee)
	buf = appendU64(buf, tx.Fee)
	buf = appendU64(buf, uint64(tx.Timestamp))
	return buf
}

// ID is the transaction's stable hash, per spec §6 (SHA-256 of the toSign
// bytes, agreed project-wide).
func (tx *ExchangeTransaction) ID() xcrypto.Hash32 {
	return xcrypto.SHA256(tx.CanonicalBytes())
}

// Sign signs the canonical bytes with the matcher's key. Both embedded
// orders must already carry matcher == signer's public key (checked by the
// Match Validator, not here).
func (tx *ExchangeTransaction) Sign(signer *xcrypto.Signer) {
	tx.Signature = signer.Sign(tx.CanonicalBytes())
}

// VerifySignature checks Signature against matcherPub over the canonical
// bytes.
func (tx *ExchangeTransaction) VerifySignature(matcherPub xcrypto.PubKey) bool {
	return xcrypto.Verify(matcherPub, tx.CanonicalBytes(), tx.Signature)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// BalanceDelta is one signed balance movement produced by a settlement.
// Delta is positive for a credit, negative for a debit.
type BalanceDelta struct {
	Account xcrypto.PubKey
	Asset   asset.Asset
	Delta   int64
}

// ProjectBalanceChanges computes the balance-change projection for tx,
// independent of signing (spec §4.5): the buyer/seller swap legs, each
// sender's proportional fee debit, and the matcher's net take.
func ProjectBalanceChanges(tx *ExchangeTransaction, buyExecutedFee, sellExecutedFee uint64) ([]BalanceDelta, error) {
	cost, err := money.Cost(tx.Amount, tx.Price)
	if err != nil {
		return nil, err
	}

	buy, sell := tx.Order1, tx.Order2
	raw := []BalanceDelta{
		{Account: buy.Sender, Asset: buy.Pair.AmountAsset, Delta: int64(tx.Amount)},
		{Account: buy.Sender, Asset: buy.Pair.PriceAsset, Delta: -int64(cost)},
		{Account: buy.Sender, Asset: buy.FeeAsset, Delta: -int64(buyExecutedFee)},
		{Account: sell.Sender, Asset: sell.Pair.PriceAsset, Delta: int64(cost)},
		{Account: sell.Sender, Asset: sell.Pair.AmountAsset, Delta: -int64(tx.Amount)},
		{Account: sell.Sender, Asset: sell.FeeAsset, Delta: -int64(sellExecutedFee)},
		{Account: buy.Matcher, Asset: asset.Native, Delta: int64(tx.MatcherFee) - int64(tx.Fee)},
	}
	return mergeDeltas(raw), nil
}

// mergeDeltas combines entries sharing the same (account, asset) and returns
// them in a deterministic order, so the same inputs always yield the same
// projected sequence (spec §5 determinism).
func mergeDeltas(raw []BalanceDelta) []BalanceDelta {
	type key struct {
		account xcrypto.PubKey
		asset   asset.Asset
	}
	totals := make(map[key]int64, len(raw))
	var order []key
	for _, d := range raw {
		k := key{account: d.Account, asset: d.Asset}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += d.Delta
	}

	sort.Slice(order, func(i, j int) bool {
		ai, aj := order[i].account, order[j].account
		if c := bytes.Compare(ai[:], aj[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(order[i].asset.ID[:], order[j].asset.ID[:]) < 0
	})

	out := make([]BalanceDelta, 0, len(order))
	for _, k := range order {
		if totals[k] == 0 {
			continue
		}
		out = append(out, BalanceDelta{Account: k.account, Asset: k.asset, Delta: totals[k]})
	}
	return out
}
