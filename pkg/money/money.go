// Package money implements the core's fixed-point arithmetic: normalization
// between human-readable decimal values and integer on-chain units, cost
// and dust-correction formulas, and overflow-safe fee apportionment.
//
// All operations here are integer fixed-point and total over the domain
// amount ∈ [1, MaxAmount), price ∈ [1, MaxPrice]; anything that would
// overflow is rejected with a DomainError rather than wrapping silently.
// Decimal-valued helpers exist only at the system boundary (see decimal.go).
package money

import (
	"math/big"

	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/params"
)

// PriceConstant is the fixed-point denominator for all price calculations.
const PriceConstant = params.PriceConstant

// NormalizeAmount converts a decimal amount value (given as a big.Rat, the
// exact boundary representation — see decimal.go for the shopspring/decimal
// entry point) into integer amount-asset units, truncating toward zero.
//
//	normalizeAmount(v, aDec) = floor(v * 10^aDec)
func NormalizeAmount(v *big.Rat, assetDecimals uint8) (uint64, error) {
	scale := pow10(int64(assetDecimals))
	scaled := new(big.Rat).Mul(v, new(big.Rat).SetInt(scale))
	return ratTruncToUint64(scaled)
}

// NormalizePrice converts a decimal price value into integer price units.
//
//	normalizePrice(v, aDec, pDec) = floor(v * 10^(8 + pDec - aDec))
func NormalizePrice(v *big.Rat, amountDecimals, priceDecimals uint8) (uint64, error) {
	exp := int64(8) + int64(priceDecimals) - int64(amountDecimals)
	var scaled *big.Rat
	if exp >= 0 {
		scaled = new(big.Rat).Mul(v, new(big.Rat).SetInt(pow10(exp)))
	} else {
		scaled = new(big.Rat).Quo(v, new(big.Rat).SetInt(pow10(-exp)))
	}
	return ratTruncToUint64(scaled)
}

// Cost computes the price-asset total for a trade of amount at price.
//
//	cost(amount, price) = floor(price * amount / PriceConstant)
func Cost(amount, price uint64) (uint64, error) {
	num := new(big.Int).Mul(big.NewInt(0).SetUint64(price), big.NewInt(0).SetUint64(amount))
	result := new(big.Int).Quo(num, big.NewInt(0).SetUint64(PriceConstant))
	return bigToUint64(result)
}

// Correct applies the dust-correction formula: it produces the smallest
// amount-asset quantity whose re-conversion back through price does not
// exceed the input settlement total.
//
//	settledTotal = floor(price * amount / PriceConstant)
//	result = ceil(settledTotal * PriceConstant / price)
func Correct(amount, price uint64) (uint64, error) {
	if price == 0 {
		return 0, errs.New(errs.DomainError, "correct: price must be positive")
	}
	settledTotal, err := Cost(amount, price)
	if err != nil {
		return 0, err
	}
	num := new(big.Int).Mul(big.NewInt(0).SetUint64(settledTotal), big.NewInt(0).SetUint64(PriceConstant))
	priceBI := big.NewInt(0).SetUint64(price)
	q, r := new(big.Int).QuoRem(num, priceBI, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return bigToUint64(q)
}

// MinAmountForPrice is the smallest amount that yields a non-zero cost at
// the given price.
//
//	minAmountForPrice(price) = ceil(PriceConstant / price)
func MinAmountForPrice(price uint64) (uint64, error) {
	if price == 0 {
		return 0, errs.New(errs.DomainError, "minAmountForPrice: price must be positive")
	}
	pc := big.NewInt(0).SetUint64(PriceConstant)
	priceBI := big.NewInt(0).SetUint64(price)
	q, r := new(big.Int).QuoRem(pc, priceBI, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return bigToUint64(q)
}

// PartialFee apportions fee over totalAmount for a partial fill, using a
// 128-bit-safe intermediate to avoid overflow.
//
//	partialFee(fee, totalAmount, partial) = floor(fee * partial / totalAmount)
func PartialFee(fee, totalAmount, partial uint64) (uint64, error) {
	if totalAmount == 0 {
		return 0, errs.New(errs.DomainError, "partialFee: totalAmount must be positive")
	}
	if partial > totalAmount {
		return 0, errs.Newf(errs.DomainError, "partialFee: partial %d exceeds totalAmount %d", partial, totalAmount)
	}
	num := new(big.Int).Mul(big.NewInt(0).SetUint64(fee), big.NewInt(0).SetUint64(partial))
	result := new(big.Int).Quo(num, big.NewInt(0).SetUint64(totalAmount))
	return bigToUint64(result)
}

// pow10 returns 10^n as a big.Int for n >= 0.
func pow10(n int64) *big.Int {
	if n < 0 {
		n = 0
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// ratTruncToUint64 truncates a big.Rat toward zero and narrows to uint64,
// rejecting negative values and overflow as a DomainError.
func ratTruncToUint64(r *big.Rat) (uint64, error) {
	if r.Sign() < 0 {
		return 0, errs.New(errs.DomainError, "value must be non-negative")
	}
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return bigToUint64(q)
}

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

func bigToUint64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 {
		return 0, errs.New(errs.DomainError, "arithmetic underflow: negative result")
	}
	if v.Cmp(maxUint64) > 0 {
		return 0, errs.New(errs.DomainError, "arithmetic overflow")
	}
	return v.Uint64(), nil
}
