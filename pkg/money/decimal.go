package money

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/lucentlabs/dexmatcher/pkg/errs"
)

// DecimalToAmount and AmountToDecimal are the system-boundary entry points:
// everywhere outside this file, amounts/prices are integers. A client or
// test fixture that wants to work in human-readable decimal values goes
// through shopspring/decimal here and nowhere else — the core itself never
// stores or compares decimal.Decimal values.

// DecimalToAmount normalizes a shopspring/decimal value into integer
// amount-asset units, truncating toward zero.
func DecimalToAmount(v decimal.Decimal, assetDecimals uint8) (uint64, error) {
	return NormalizeAmount(decimalToRat(v), assetDecimals)
}

// DecimalToPrice normalizes a shopspring/decimal value into integer price
// units, truncating toward zero.
func DecimalToPrice(v decimal.Decimal, amountDecimals, priceDecimals uint8) (uint64, error) {
	return NormalizePrice(decimalToRat(v), amountDecimals, priceDecimals)
}

// AmountToDecimal denormalizes integer amount-asset units into a decimal
// value. Presentation-only: never used internally by MA/ME/SB/MV.
func AmountToDecimal(amount uint64, assetDecimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(assetDecimals))
}

// PriceToDecimal denormalizes integer price units into a decimal value.
// Presentation-only: never used internally by MA/ME/SB/MV.
func PriceToDecimal(price uint64, amountDecimals, priceDecimals uint8) decimal.Decimal {
	exp := int32(8) + int32(priceDecimals) - int32(amountDecimals)
	return decimal.NewFromBigInt(new(big.Int).SetUint64(price), -exp)
}

func decimalToRat(v decimal.Decimal) *big.Rat {
	r := new(big.Rat)
	r.SetString(v.String())
	return r
}

// ParseDecimal parses a client-supplied decimal string, rejecting anything
// that fails to parse as a DomainError so boundary conversions never panic
// downstream.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errs.Wrap(errs.DomainError, err, "invalid decimal value")
	}
	return d, nil
}
