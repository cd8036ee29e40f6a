package settlement

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lucentlabs/dexmatcher/pkg/asset"
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/matching"
	"github.com/lucentlabs/dexmatcher/pkg/order"
)

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

func testOrder(t *testing.T, signer *xcrypto.Signer, matcher xcrypto.PubKey, side order.Side, price, amount, fee uint64) *order.Order {
	t.Helper()
	now := time.Now().UnixMilli()
	o := &order.Order{
		Sender:     signer.PubKey(),
		Matcher:    matcher,
		Pair:       testPair(t),
		Side:       side,
		Price:      price,
		Amount:     amount,
		Timestamp:  now,
		Expiration: now + int64(time.Hour/time.Millisecond),
		MatcherFee: fee,
		FeeAsset:   asset.Native,
		Version:    1,
	}
	o.Sign(signer)
	return o
}

func buildEvent(t *testing.T) (matching.Event, *xcrypto.Signer) {
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

	buyOrder := testOrder(t, buyerSigner, matcherSigner.PubKey(), order.Buy, 1000, 1_000_000, 300_000)
	sellOrder := testOrder(t, sellerSigner, matcherSigner.PubKey(), order.Sell, 1000, 1_000_000, 300_000)

	buy := order.OfOrder(buyOrder)
	sell := order.OfOrder(sellOrder)

	ev := matching.Event{
		Kind:                       matching.OrderExecuted,
		Timestamp:                  123,
		Submitted:                  buy,
		Counter:                    sell,
		ExecutedAmount:             1_000_000,
		ExecutedAmountOfPriceAsset: 10,
		SubmittedExecutedFee:       300_000,
		CounterExecutedFee:         300_000,
		SubmittedRemaining:         buy.Partial(0, 0, 0),
		CounterRemaining:           sell.Partial(0, 0, 0),
	}
	return ev, matcherSigner
}

func TestBuildFromEventOrdersOrientation(t *testing.T) {
	ev, _ := buildEvent(t)
	tx, err := BuildFromEvent(ev, 100_000, 500)
	if err != nil {
		t.Fatalf("BuildFromEvent: %v", err)
	}
	if tx.Order1.Side != order.Buy {
		t.Error("expected Order1 to be the buy order")
	}
	if tx.Order2.Side != order.Sell {
		t.Error("expected Order2 to be the sell order")
	}
	if tx.MatcherFee != 600_000 {
		t.Errorf("expected combined matcherFee 600000, got %d", tx.MatcherFee)
	}
	if tx.Amount != 1_000_000 || tx.Price != 1000 {
		t.Errorf("unexpected amount/price: %d/%d", tx.Amount, tx.Price)
	}
}

func TestBuildFromEventRejectsMarketOrders(t *testing.T) {
	ev, _ := buildEvent(t)
	mo := order.OfOrderWithAFS(ev.Submitted.Base(), 1_000_000)
	ev.Submitted = mo
	if _, err := BuildFromEvent(ev, 0, 1); err == nil {
		t.Error("expected BuildFromEvent to reject a market-order-involving event")
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	ev, matcherSigner := buildEvent(t)
	tx, err := BuildFromEvent(ev, 100_000, 500)
	if err != nil {
		t.Fatalf("BuildFromEvent: %v", err)
	}
	tx.Sign(matcherSigner)
	if !tx.VerifySignature(matcherSigner.PubKey()) {
		t.Error("expected signature to verify against the matcher's key")
	}

	tx.Amount++
	if tx.VerifySignature(matcherSigner.PubKey()) {
		t.Error("expected signature to fail after mutating a signed field")
	}
}

func TestExchangeTransactionRoundTripViaWireStringProjection(t *testing.T) {
	ev, matcherSigner := buildEvent(t)
	tx, err := BuildFromEvent(ev, 100_000, 500)
	if err != nil {
		t.Fatalf("BuildFromEvent: %v", err)
	}
	tx.Sign(matcherSigner)

	w := tx.ToWire(order.NumberAsJSONString)
	b, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var roundTripped ExchangeTransaction
	if err := json.Unmarshal(b, &roundTripped); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if roundTripped.Price != tx.Price || roundTripped.Amount != tx.Amount || roundTripped.MatcherFee != tx.MatcherFee || roundTripped.Fee != tx.Fee {
		t.Errorf("monetary fields did not round-trip: got %+v", roundTripped)
	}
	if roundTripped.Signature != tx.Signature {
		t.Error("signature did not round-trip")
	}
	if !roundTripped.VerifySignature(matcherSigner.PubKey()) {
		t.Error("round-tripped transaction failed signature verification")
	}
}

func TestExchangeTransactionMarshalJSONUsesNumberProjection(t *testing.T) {
	ev, matcherSigner := buildEvent(t)
	tx, err := BuildFromEvent(ev, 100_000, 500)
	if err != nil {
		t.Fatalf("BuildFromEvent: %v", err)
	}
	tx.Sign(matcherSigner)

	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	if string(raw["amount"]) != "1000000" {
		t.Errorf("expected bare number amount, got %s", raw["amount"])
	}
}

func TestCanonicalBytesDeterministic(t *testing.T) {
	ev, _ := buildEvent(t)
	tx, err := BuildFromEvent(ev, 100_000, 500)
	if err != nil {
		t.Fatalf("BuildFromEvent: %v", err)
	}
	if string(tx.CanonicalBytes()) != string(tx.CanonicalBytes()) {
		t.Error("CanonicalBytes should be deterministic")
	}
	if tx.ID() != tx.ID() {
		t.Error("ID should be stable across calls")
	}
}

func TestProjectBalanceChangesConservesAssets(t *testing.T) {
	ev, _ := buildEvent(t)
	tx, err := BuildFromEvent(ev, 100_000, 500)
	if err != nil {
		t.Fatalf("BuildFromEvent: %v", err)
	}

	deltas, err := ProjectBalanceChanges(tx, ev.SubmittedExecutedFee, ev.CounterExecutedFee)
	if err != nil {
		t.Fatalf("ProjectBalanceChanges: %v", err)
	}

	// Fee asset here is native, which is also this pair's amount asset. The
	// price-asset leg nets to zero (buyer -cost / seller +cost). The
	// amount-asset leg nets the swap to zero, and the fee debits plus the
	// matcher's matcherFee-fee credit leave exactly -fee: the node's cut is
	// not credited to any account in the projection.
	var amountAssetSum, priceAssetSum int64
	for _, d := range deltas {
		if d.Asset.Equal(tx.Order1.Pair.AmountAsset) {
			amountAssetSum += d.Delta
		}
		if d.Asset.Equal(tx.Order1.Pair.PriceAsset) {
			priceAssetSum += d.Delta
		}
	}
	if amountAssetSum != -int64(tx.Fee) {
		t.Errorf("expected amount-asset deltas to net to -%d, got %d", tx.Fee, amountAssetSum)
	}
	if priceAssetSum != 0 {
		t.Errorf("expected price-asset deltas to net to zero, got %d", priceAssetSum)
	}
}
