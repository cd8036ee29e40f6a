package validator

import (
	"testing"
	"time"

	"github.com/lucentlabs/dexmatcher/pkg/asset"
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/pkg/order"
	"github.com/lucentlabs/dexmatcher/pkg/settlement"
	"github.com/lucentlabs/dexmatcher/params"
)

type fakeHistory map[xcrypto.Hash32]uint64

func (h fakeHistory) FilledAmount(id xcrypto.Hash32) uint64 { return h[id] }

func testPair(t *testing.T) asset.Pair {
	t.Helper()
	var priceID asset.ID
	priceID[0] = 1
	p, err := asset.NewPair(asset.Native, asset.Issued(priceID))
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	return p
}

type fixture struct {
	buy, sell           *order.Order
	matcherSigner       *xcrypto.Signer
	buyAmount, sellFee  uint64
}

func buildValid(t *testing.T) (*settlement.ExchangeTransaction, fixture) {
	t.Helper()
	matcherSigner, err := xcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	buyerSigner, err := xcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sellerSigner, err := xcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	now := time.Now().UnixMilli()
	pair := testPair(t)

	buy := &order.Order{
		Sender: buyerSigner.PubKey(), Matcher: matcherSigner.PubKey(), Pair: pair,
		Side: order.Buy, Price: 1000, Amount: 1_000_000,
		Timestamp: now, Expiration: now + int64(time.Hour/time.Millisecond),
		MatcherFee: 300_000, FeeAsset: asset.Native, Version: 1,
	}
	buy.Sign(buyerSigner)

	sell := &order.Order{
		Sender: sellerSigner.PubKey(), Matcher: matcherSigner.PubKey(), Pair: pair,
		Side: order.Sell, Price: 1000, Amount: 1_000_000,
		Timestamp: now, Expiration: now + int64(time.Hour/time.Millisecond),
		MatcherFee: 300_000, FeeAsset: asset.Native, Version: 1,
	}
	sell.Sign(sellerSigner)

	tx := &settlement.ExchangeTransaction{
		Order1: buy, Order2: sell,
		Price: 1000, Amount: 1_000_000,
		MatcherFee: 600_000, Fee: 100_000,
		Timestamp: now,
	}
	tx.Sign(matcherSigner)

	return tx, fixture{buy: buy, sell: sell, matcherSigner: matcherSigner}
}

func TestValidateAcceptsWellFormedTransaction(t *testing.T) {
	tx, _ := buildValid(t)
	err := Validate(tx, fakeHistory{}, params.Default().Limits, tx.Timestamp)
	if err != nil {
		t.Fatalf("expected a valid transaction to pass, got %v", err)
	}
}

// S5: validator rejects an over-fill against cumulative prior matches.
func TestValidateRejectsOverFill(t *testing.T) {
	tx, fx := buildValid(t)
	tx.Amount = 300_000
	tx.Sign(fx.matcherSigner)

	hist := fakeHistory{fx.buy.ID(): 800_000}
	err := Validate(tx, hist, params.Default().Limits, tx.Timestamp)
	if err == nil {
		t.Fatal("expected an over-fill rejection")
	}
	verr, ok := errs.As(err)
	if !ok || verr.Predicate != "over-fill" {
		t.Errorf("expected predicate over-fill, got %+v", err)
	}
}

// S6: a matcherFee off by one from the proportional sum must be rejected.
func TestValidateRejectsFeeMismatch(t *testing.T) {
	tx, fx := buildValid(t)
	tx.MatcherFee++
	tx.Sign(fx.matcherSigner)

	err := Validate(tx, fakeHistory{}, params.Default().Limits, tx.Timestamp)
	if err == nil {
		t.Fatal("expected a fee-mismatch rejection")
	}
	verr, ok := errs.As(err)
	if !ok || verr.Predicate != "fee-mismatch" {
		t.Errorf("expected predicate fee-mismatch, got %+v", err)
	}
}

func TestValidateRejectsBadSignature(t *testing.T) {
	tx, _ := buildValid(t)
	tx.Fee++ // mutate after signing, without re-signing (leaves amount/fee-apportionment checks untouched)

	err := Validate(tx, fakeHistory{}, params.Default().Limits, tx.Timestamp)
	if err == nil {
		t.Fatal("expected a signature-invalid rejection")
	}
	verr, ok := errs.As(err)
	if !ok || verr.Predicate != "signature-invalid" {
		t.Errorf("expected predicate signature-invalid, got %+v", err)
	}
}

func TestValidateRejectsNonCrossingPrice(t *testing.T) {
	tx, fx := buildValid(t)
	fx.sell.Price = 2000 // sell now prices above the buy: no longer crosses
	fx.sell.Sign(fx.matcherSigner)
	tx.Sign(fx.matcherSigner)

	err := Validate(tx, fakeHistory{}, params.Default().Limits, tx.Timestamp)
	if err == nil {
		t.Fatal("expected a price-mismatch rejection")
	}
}

func TestValidateRejectsDifferentMatchers(t *testing.T) {
	tx, fx := buildValid(t)
	other, err := xcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	fx.sell.Matcher = other.PubKey()

	err = Validate(tx, fakeHistory{}, params.Default().Limits, tx.Timestamp)
	if err == nil {
		t.Fatal("expected a matcher-mismatch rejection")
	}
}
