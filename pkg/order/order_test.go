package order

import (
	"testing"
	"time"

	"github.com/lucentlabs/dexmatcher/pkg/asset"
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/params"
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

func newTestOrder(t *testing.T, side Side, price, amount uint64) *Order {
	t.Helper()
	signer, err := GenerateSigner(t)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	now := time.Now().UnixMilli()
	o := &Order{
		Sender:     signer.PubKey(),
		Matcher:    signer.PubKey(),
		Pair:       testPair(t),
		Side:       side,
		Price:      price,
		Amount:     amount,
		Timestamp:  now,
		Expiration: now + int64(time.Hour/time.Millisecond),
		MatcherFee: 300_000,
		FeeAsset:   asset.Native,
		Version:    1,
	}
	o.Sign(signer)
	return o
}

// GenerateSigner is a tiny test helper kept local to this package to avoid
// every test file importing pkg/crypto directly for key generation.
func GenerateSigner(t *testing.T) (*xcrypto.Signer, error) {
	t.Helper()
	return xcrypto.GenerateKey()
}

func TestOrderSignatureRoundTrip(t *testing.T) {
	o := newTestOrder(t, Buy, 1000, 1_000_000)
	if !o.VerifySignature() {
		t.Error("freshly signed order failed to verify")
	}

	o.Amount = o.Amount + 1 // mutate after signing
	if o.VerifySignature() {
		t.Error("signature verified after the signed fields changed")
	}
}

func TestCanonicalBytesDeterministic(t *testing.T) {
	o := newTestOrder(t, Sell, 2000, 500_000)
	b1 := o.CanonicalBytes()
	b2 := o.CanonicalBytes()
	if string(b1) != string(b2) {
		t.Error("CanonicalBytes is not deterministic for the same order")
	}

	o2 := *o
	o2.Price = o.Price + 1
	if string(o2.CanonicalBytes()) == string(b1) {
		t.Error("CanonicalBytes did not change when price changed")
	}
}

func TestValidateRejectsBadOrders(t *testing.T) {
	limits := params.Default().Limits

	cases := []struct {
		name    string
		mutate  func(*Order)
		wantErr bool
	}{
		{"valid", func(*Order) {}, false},
		{"zero amount", func(o *Order) { o.Amount = 0 }, true},
		{"zero price", func(o *Order) { o.Price = 0 }, true},
		{"expiration before timestamp", func(o *Order) { o.Expiration = o.Timestamp - 1 }, true},
		{"lifetime too long", func(o *Order) { o.Expiration = o.Timestamp + limits.MaxLiveTime.Milliseconds() + 1 }, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := newTestOrder(t, Buy, 1000, 1_000_000)
			c.mutate(o)
			err := o.Validate(limits)
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	o := newTestOrder(t, Buy, 1000, 1_000_000)
	if o.IsExpired(o.Timestamp) {
		t.Error("order reported expired at its own timestamp")
	}
	if !o.IsExpired(o.Expiration) {
		t.Error("order not reported expired at its own expiration")
	}
}
