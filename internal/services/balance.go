package services

import (
	"math"
	"math/big"

	"real-estate-market/internal/blockchain"

	"github.com/shopspring/decimal"
)

// Balances are non-negative integers no larger than blockchain.MaxBalance.
// Every balance-affecting operation goes through these helpers and fails
// instead of saturating.

var hundred = decimal.NewFromInt(100)

func checkedAdd(a, b decimal.Decimal) (decimal.Decimal, error) {
	sum := a.Add(b)
	if sum.GreaterThan(blockchain.MaxBalance) {
		return decimal.Zero, ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedSub(a, b decimal.Decimal) (decimal.Decimal, error) {
	if a.LessThan(b) {
		return decimal.Zero, ErrArithmeticUnderflow
	}
	return a.Sub(b), nil
}

func checkedMul(a, b decimal.Decimal) (decimal.Decimal, error) {
	product := a.Mul(b)
	if product.GreaterThan(blockchain.MaxBalance) {
		return decimal.Zero, ErrMultiplyError
	}
	return product, nil
}

// checkedDiv is integer division rounding toward zero.
func checkedDiv(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionError
	}
	q, _ := a.QuoRem(b, 0)
	return q, nil
}

// percentOf returns floor(amount * percent / 100)
func percentOf(amount decimal.Decimal, percent int64) (decimal.Decimal, error) {
	scaled, err := checkedMul(amount, decimal.NewFromInt(percent))
	if err != nil {
		return decimal.Zero, err
	}
	return checkedDiv(scaled, hundred)
}

// mulDiv returns floor(a * b / c)
func mulDiv(a, b, c decimal.Decimal) (decimal.Decimal, error) {
	product, err := checkedMul(a, b)
	if err != nil {
		return decimal.Zero, err
	}
	return checkedDiv(product, c)
}

func fromUint(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}

// toBalance validates an externally supplied amount
func toBalance(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() || !d.Equal(d.Truncate(0)) || d.GreaterThan(blockchain.MaxBalance) {
		return decimal.Zero, ErrConversionError
	}
	return d.Truncate(0), nil
}

func toUint32(d decimal.Decimal) (uint32, error) {
	if d.IsNegative() || !d.Equal(d.Truncate(0)) || d.GreaterThan(decimal.NewFromInt(math.MaxUint32)) {
		return 0, ErrConversionError
	}
	return uint32(d.IntPart()), nil
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
