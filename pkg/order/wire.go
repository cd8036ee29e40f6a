package order

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lucentlabs/dexmatcher/pkg/asset"
	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
)

// NumberFormat selects how monetary integer fields are projected to JSON:
// as a native JSON number, or as a JSON string (for clients whose numeric
// type can't hold a full uint64 without precision loss). Per spec §6, both
// projections come from the same internal integer — this package never
// stores numbers in decimal form.
type NumberFormat int

const (
	NumberAsJSONNumber NumberFormat = iota
	NumberAsJSONString
)

// Amount is a monetary integer field with a marshal-time format choice.
// The zero value marshals as a JSON number.
type Amount struct {
	Value  uint64
	Format NumberFormat
}

func NewAmount(v uint64) Amount { return Amount{Value: v} }

func (a Amount) WithFormat(f NumberFormat) Amount {
	a.Format = f
	return a
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Format == NumberAsJSONString {
		return json.Marshal(strconv.FormatUint(a.Value, 10))
	}
	return json.Marshal(a.Value)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	// Accept either a bare number or a quoted string, regardless of which
	// format this value was last marshaled with — the client declares its
	// preference on the way out, but we stay lenient on the way in.
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		v, err := strconv.ParseUint(asString, 10, 64)
		if err != nil {
			return errs.Wrap(errs.DomainError, err, "invalid amount string")
		}
		a.Value = v
		a.Format = NumberAsJSONString
		return nil
	}

	var asNumber uint64
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return errs.Wrap(errs.DomainError, err, "invalid amount value")
	}
	a.Value = asNumber
	a.Format = NumberAsJSONNumber
	return nil
}

// OrderWire is the client-facing JSON projection of an Order: every
// monetary field (price, amount, matcherFee) goes through Amount so the
// caller's number-format preference governs the projection, while identity
// fields are hex-encoded — the same shape as the teacher's
// OrderPayload/ToEIP712Order/FromEIP712Order conversion pair, ported from
// BigInt-as-string fields to Amount's dual projection.
type OrderWire struct {
	Sender      string `json:"sender"`
	Matcher     string `json:"matcher"`
	AmountAsset string `json:"amountAsset,omitempty"`
	PriceAsset  string `json:"priceAsset,omitempty"`
	Side        uint8  `json:"side"`
	Price       Amount `json:"price"`
	Amount      Amount `json:"amount"`
	Timestamp   int64  `json:"timestamp"`
	Expiration  int64  `json:"expiration"`
	MatcherFee  Amount `json:"matcherFee"`
	FeeAsset    string `json:"feeAsset,omitempty"`
	Version     uint8  `json:"version"`
	Signature   string `json:"signature"`
}

// ToWire projects o into its client-facing wire form under format — spec
// §6's "client-declared preference": the same integer representation,
// rendered as a JSON number or JSON string depending on format.
func (o *Order) ToWire(format NumberFormat) OrderWire {
	return OrderWire{
		Sender:      hexEncode(o.Sender.Bytes()),
		Matcher:     hexEncode(o.Matcher.Bytes()),
		AmountAsset: assetHex(o.Pair.AmountAsset),
		PriceAsset:  assetHex(o.Pair.PriceAsset),
		Side:        uint8(o.Side),
		Price:       NewAmount(o.Price).WithFormat(format),
		Amount:      NewAmount(o.Amount).WithFormat(format),
		Timestamp:   o.Timestamp,
		Expiration:  o.Expiration,
		MatcherFee:  NewAmount(o.MatcherFee).WithFormat(format),
		FeeAsset:    assetHex(o.FeeAsset),
		Version:     uint8(o.Version),
		Signature:   hexEncode(o.Signature.Bytes()),
	}
}

// ToOrder reconstructs an Order from its wire projection. Amount.UnmarshalJSON
// already accepts either projection on the way in, so ToOrder works
// regardless of which NumberFormat produced w.
func (w OrderWire) ToOrder() (*Order, error) {
	sender, err := hexDecodePubKey(w.Sender)
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid sender pubkey")
	}
	matcher, err := hexDecodePubKey(w.Matcher)
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid matcher pubkey")
	}
	amountAsset := assetFromHex(w.AmountAsset)
	priceAsset := assetFromHex(w.PriceAsset)
	pair, err := asset.NewPair(amountAsset, priceAsset)
	if err != nil {
		return nil, err
	}
	sig, err := hexDecodeSignature(w.Signature)
	if err != nil {
		return nil, errs.Wrap(errs.DomainError, err, "invalid signature")
	}

	return &Order{
		Sender:     sender,
		Matcher:    matcher,
		Pair:       pair,
		Side:       Side(w.Side),
		Price:      w.Price.Value,
		Amount:     w.Amount.Value,
		Timestamp:  w.Timestamp,
		Expiration: w.Expiration,
		MatcherFee: w.MatcherFee.Value,
		FeeAsset:   assetFromHex(w.FeeAsset),
		Version:    Version(w.Version),
		Signature:  sig,
	}, nil
}

// MarshalJSON makes *Order a json.Marshaler in its own right, projecting
// monetary fields as JSON numbers (NumberAsJSONNumber). Callers that need
// the string projection marshal ToWire(NumberAsJSONString) directly.
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToWire(NumberAsJSONNumber))
}

// UnmarshalJSON accepts either monetary-field projection, since
// Amount.UnmarshalJSON is lenient regardless of which format produced it.
func (o *Order) UnmarshalJSON(data []byte) error {
	var w OrderWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.Wrap(errs.DomainError, err, "invalid order JSON")
	}
	parsed, err := w.ToOrder()
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

func hexEncode(b []byte) string { return "0x" + hex.EncodeToString(b) }

func hexDecodeInto(s string, out []byte) error {
	s = strings.TrimPrefix(s, "0x")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(decoded) != len(out) {
		return fmt.Errorf("expected %d bytes, got %d", len(out), len(decoded))
	}
	copy(out, decoded)
	return nil
}

func hexDecodePubKey(s string) (xcrypto.PubKey, error) {
	var pk xcrypto.PubKey
	err := hexDecodeInto(s, pk[:])
	return pk, err
}

func hexDecodeSignature(s string) (xcrypto.Signature, error) {
	var sig xcrypto.Signature
	err := hexDecodeInto(s, sig[:])
	return sig, err
}

// assetHex projects an Asset to its wire string: empty for native, the
// hex-encoded 32-byte id otherwise.
func assetHex(a asset.Asset) string {
	if a.Native {
		return ""
	}
	return a.ID.Hex()
}

func assetFromHex(s string) asset.Asset {
	if s == "" {
		return asset.Native
	}
	return asset.Issued(common.HexToHash(s))
}
