package order

import (
	"encoding/json"
	"testing"
)

func TestAmountMarshalAsNumber(t *testing.T) {
	a := NewAmount(12345)
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "12345" {
		t.Errorf("expected bare number, got %s", b)
	}
}

func TestAmountMarshalAsString(t *testing.T) {
	a := NewAmount(12345).WithFormat(NumberAsJSONString)
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"12345"` {
		t.Errorf("expected quoted string, got %s", b)
	}
}

func TestAmountUnmarshalLenient(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`"98765"`), &a); err != nil {
		t.Fatalf("Unmarshal string form: %v", err)
	}
	if a.Value != 98765 {
		t.Errorf("expected 98765, got %d", a.Value)
	}

	var b Amount
	if err := json.Unmarshal([]byte(`98765`), &b); err != nil {
		t.Fatalf("Unmarshal number form: %v", err)
	}
	if b.Value != 98765 {
		t.Errorf("expected 98765, got %d", b.Value)
	}
}

func TestAmountRoundTripThroughStruct(t *testing.T) {
	type payload struct {
		Qty Amount `json:"qty"`
	}
	p := payload{Qty: NewAmount(42).WithFormat(NumberAsJSONString)}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out payload
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Qty.Value != 42 {
		t.Errorf("expected 42, got %d", out.Qty.Value)
	}
}

func TestOrderMarshalJSONUsesNumberProjection(t *testing.T) {
	o := newTestOrder(t, Buy, 1000, 1_000_000)
	b, err := json.Marshal(o)
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

func TestOrderRoundTripViaWireStringProjection(t *testing.T) {
	o := newTestOrder(t, Sell, 2500, 750_000)
	w := o.ToWire(NumberAsJSONString)
	b, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b[0:1]) != "{" {
		t.Fatalf("expected a JSON object, got %s", b)
	}

	var roundTripped Order
	if err := json.Unmarshal(b, &roundTripped); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if roundTripped.Price != o.Price || roundTripped.Amount != o.Amount || roundTripped.MatcherFee != o.MatcherFee {
		t.Errorf("monetary fields did not round-trip: got price=%d amount=%d fee=%d",
			roundTripped.Price, roundTripped.Amount, roundTripped.MatcherFee)
	}
	if roundTripped.Sender != o.Sender || roundTripped.Signature != o.Signature {
		t.Error("identity fields did not round-trip")
	}
	if !roundTripped.VerifySignature() {
		t.Error("round-tripped order failed signature verification")
	}
}
