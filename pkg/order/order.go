// Package order implements the Order Model (OM): the immutable Order
// value type and its canonical byte encoding, and the AcceptedOrder tagged
// variant (LimitOrder | MarketOrder) the matching engine operates on.
package order

import (
	"encoding/binary"
	"time"

	"github.com/lucentlabs/dexmatcher/pkg/asset"
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/params"
)

// Side is the direction of an order.
type Side uint8

const (
	Buy  Side = 0
	Sell Side = 1
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Version is the order schema version embedded in the canonical encoding.
type Version uint8

// Order is an immutable record describing a signed buy/sell order.
type Order struct {
	Sender     xcrypto.PubKey
	Matcher    xcrypto.PubKey
	Pair       asset.Pair
	Side       Side
	Price      uint64
	Amount     uint64
	Timestamp  int64 // unix millis
	Expiration int64 // unix millis
	MatcherFee uint64
	FeeAsset   asset.Asset
	Version    Version
	Signature  xcrypto.Signature
}

// Validate checks the Order invariants from spec §3, independent of any
// counter order (see IsValid for the counter-price check).
func (o *Order) Validate(limits params.Limits) error {
	if o.Amount == 0 {
		return errs.WithPredicate(errs.OrderRejected, "amount-zero", "amount must be positive")
	}
	if o.Amount >= limits.MaxAmount {
		return errs.WithPredicate(errs.OrderRejected, "amount-too-large", "amount must be below MaxAmount")
	}
	if o.Price == 0 {
		return errs.WithPredicate(errs.OrderRejected, "price-zero", "price must be positive")
	}
	if o.Price > limits.MaxPrice {
		return errs.WithPredicate(errs.OrderRejected, "price-too-large", "price exceeds MaxPrice")
	}
	if o.Expiration <= o.Timestamp {
		return errs.WithPredicate(errs.OrderRejected, "expiration-before-timestamp", "expiration must be after timestamp")
	}
	maxLiveMs := limits.MaxLiveTime.Milliseconds()
	if o.Expiration-o.Timestamp > maxLiveMs {
		return errs.WithPredicate(errs.OrderRejected, "lifetime-too-long", "expiration - timestamp exceeds MaxLiveTime")
	}
	return nil
}

// IsExpired reports whether the order has expired as of now (unix millis).
func (o *Order) IsExpired(now int64) bool {
	return now >= o.Expiration
}

// CanonicalBytes produces the exact signing/id byte layout from spec §6:
//
//	version ∥ sender(32) ∥ matcher(32) ∥ amountAssetFlag(1) ∥ amountAssetId?(32) ∥
//	priceAssetFlag(1) ∥ priceAssetId?(32) ∥ side(1) ∥ price(8 BE) ∥ amount(8 BE) ∥
//	timestamp(8 BE) ∥ expiration(8 BE) ∥ matcherFee(8 BE) ∥ feeAssetFlag(1) ∥ feeAssetId?(32)
func (o *Order) CanonicalBytes() []byte {
	buf := make([]byte, 0, 200)
	buf = append(buf, byte(o.Version))
	buf = append(buf, o.Sender.Bytes()...)
	buf = append(buf, o.Matcher.Bytes()...)
	buf = appendAsset(buf, o.Pair.AmountAsset)
	buf = appendAsset(buf, o.Pair.PriceAsset)
	buf = append(buf, byte(o.Side))
	buf = appendU64(buf, o.Price)
	buf = appendU64(buf, o.Amount)
	buf = appendU64(buf, uint64(o.Timestamp))
	buf = appendU64(buf, uint64(o.Expiration))
	buf = appendU64(buf, o.MatcherFee)
	buf = appendAsset(buf, o.FeeAsset)
	return buf
}

// ID is the stable hash of the canonical bytes, used to identify the order
// across the book, events, and validator history.
func (o *Order) ID() xcrypto.Hash32 {
	return xcrypto.Keccak256(o.CanonicalBytes())
}

// Sign signs the order's canonical bytes and sets Signature.
func (o *Order) Sign(signer *xcrypto.Signer) {
	o.Signature = signer.Sign(o.CanonicalBytes())
}

// VerifySignature checks Signature against Sender over the canonical bytes.
func (o *Order) VerifySignature() bool {
	return xcrypto.Verify(o.Sender, o.CanonicalBytes(), o.Signature)
}

func appendAsset(buf []byte, a asset.Asset) []byte {
	if a.Native {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return append(buf, a.ID.Bytes()...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// NowMillis is a small convenience for callers constructing orders in
// tests; the matching/validation core itself never calls time.Now
// directly (determinism, spec §5/§8).
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
