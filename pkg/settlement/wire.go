package settlement

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/pkg/order"
)

// ExchangeTransactionWire is the client-facing JSON projection of an
// ExchangeTransaction: the embedded orders go through order.OrderWire and
// the monetary fields go through order.Amount, so a single NumberFormat
// choice governs every number in the transaction, per spec §6.
type ExchangeTransactionWire struct {
	Order1     order.OrderWire `json:"order1"`
	Order2     order.OrderWire `json:"order2"`
	Price      order.Amount    `json:"price"`
	Amount     order.Amount    `json:"amount"`
	MatcherFee order.Amount    `json:"matcherFee"`
	Fee        order.Amount    `json:"fee"`
	Timestamp  int64           `json:"timestamp"`
	Signature  string          `json:"signature"`
}

// ToWire projects tx into its client-facing wire form under format.
func (tx *ExchangeTransaction) ToWire(format order.NumberFormat) ExchangeTransactionWire {
	return ExchangeTransactionWire{
		Order1:     tx.Order1.ToWire(format),
		Order2:     tx.Order2.ToWire(format),
		Price:      order.NewAmount(tx.Price).WithFormat(format),
		Amount:     order.NewAmount(tx.Amount).WithFormat(format),
		MatcherFee: order.NewAmount(tx.MatcherFee).WithFormat(format),
		Fee:        order.NewAmount(tx.Fee).WithFormat(format),
		Timestamp:  tx.Timestamp,
		Signature:  "0x" + hex.EncodeToString(tx.Signature.Bytes()),
	}
}

// ToExchangeTransaction reconstructs an ExchangeTransaction from its wire
// projection.
func (w ExchangeTransactionWire) ToExchangeTransaction() (*ExchangeTransaction, error) {
	order1, err := w.Order1.ToOrder()
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid order1")
	}
	order2, err := w.Order2.ToOrder()
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid order2")
	}
	sig, err := hexToSignature(w.Signature)
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid signature")
	}

	return &ExchangeTransaction{
		Order1:     order1,
		Order2:     order2,
		Price:      w.Price.Value,
		Amount:     w.Amount.Value,
		MatcherFee: w.MatcherFee.Value,
		Fee:        w.Fee.Value,
		Timestamp:  w.Timestamp,
		Signature:  sig,
	}, nil
}

// MarshalJSON makes *ExchangeTransaction a json.Marshaler, projecting
// monetary fields as JSON numbers. Callers needing the string projection
// marshal ToWire(order.NumberAsJSONString) directly.
func (tx *ExchangeTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(tx.ToWire(order.NumberAsJSONNumber))
}

// UnmarshalJSON accepts either monetary-field projection.
func (tx *ExchangeTransaction) UnmarshalJSON(data []byte) error {
	var w ExchangeTransactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.DomainError, err, "invalid exchange transaction JSON")
	}
	parsed, err := w.ToExchangeTransaction()
	if err != nil {
		return err
	}
	*tx = *parsed
	return nil
}

func hexToSignature(s string) (xcrypto.Signature, error) {
	var sig xcrypto.Signature
	s = strings.TrimPrefix(s, "0x")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return sig, err
	}
	if len(decoded) != len(sig) {
		return sig, errs.Newf(errs.DomainError, "expected %d bytes, got %d", len(sig), len(decoded))
	}
	copy(sig[:], decoded)
	return sig, nil
}
