// Package asset models the native/issued asset distinction and the pairs
// orders trade on, plus a read-only decimals registry components can query
// without knowing how asset metadata is sourced or persisted.
package asset

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/lucentlabs/dexmatcher/pkg/errs"
)

// ID identifies an issued asset by its 32-byte id. The native asset is the
// zero value's sibling: Asset.Native == true and ID is ignored.
type ID = common.Hash

// Asset is either the native asset (no identifier) or an issued asset
// identified by a 32-byte id.
type Asset struct {
	Native bool
	ID     ID
}

// Native is the chain's native asset (e.g. the fee-paying asset).
var Native = Asset{Native: true}

// Issued constructs an issued asset from its 32-byte id.
func Issued(id ID) Asset {
	return Asset{Native: false, ID: id}
}

// Equal compares assets by identity: both native, or same issued id.
func (a Asset) Equal(b Asset) bool {
	if a.Native != b.Native {
		return false
	}
	if a.Native {
		return true
	}
	return a.ID == b.ID
}

func (a Asset) String() string {
	if a.Native {
		return "native"
	}
	return a.ID.Hex()
}

// Pair is an ordered (amountAsset, priceAsset) pair. The two must differ.
type Pair struct {
	AmountAsset Asset
	PriceAsset  Asset
}

// NewPair validates and constructs an asset pair.
func NewPair(amountAsset, priceAsset Asset) (Pair, error) {
	if amountAsset.Equal(priceAsset) {
		return Pair{}, errs.New(errs.DomainError, "amount asset and price asset must differ")
	}
	return Pair{AmountAsset: amountAsset, PriceAsset: priceAsset}, nil
}

// Equal compares pairs by the identity of both legs.
func (p Pair) Equal(o Pair) bool {
	return p.AmountAsset.Equal(o.AmountAsset) && p.PriceAsset.Equal(o.PriceAsset)
}

func (p Pair) String() string {
	return p.AmountAsset.String() + "/" + p.PriceAsset.String()
}

// MaxDecimals bounds every asset's decimals value, per spec §3.
const MaxDecimals = 8

// NativeDecimals is the decimals value fixed for the native asset.
const NativeDecimals = 8

// Description is the per-asset metadata the registry resolves.
type Description struct {
	Decimals uint8
	Name     string
}

// Registry resolves per-asset decimal precision and descriptions. It is a
// pure read interface; components depending on it never mutate it directly.
type Registry interface {
	Decimals(a Asset) (uint8, error)
	Describe(a Asset) (Description, error)
}
