// Package fixedpoint provides the 256-bit unsigned arithmetic used for token
// quantities, wei amounts and 8-decimal USD values.
//
// Every operation in this package saturates: a result above 2^256-1 clamps to
// Max, a result below zero clamps to zero and division by zero yields Max.
// Nothing here wraps or panics, so a pathological price combination can never
// abort a settlement path. Inputs are never mutated.
package fixedpoint

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// USDDecimals is the scale of every USD value (1.00 USD == 100_000_000)
	USDDecimals = 8

	// WeiDecimals is the scale of native gas token amounts
	WeiDecimals = 18

	// BpsDenominator converts basis points to a ratio
	BpsDenominator = 10_000

	// MaxFeeBps caps proportional fee parameters at 10%
	MaxFeeBps = 1_000
)

var maxPow10 = uint(77)

// Zero returns a fresh zero value.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// Max returns a fresh 2^256-1.
func Max() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// New returns v as a 256-bit integer.
func New(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// IsMax reports whether v is the saturation ceiling.
func IsMax(v *uint256.Int) bool {
	return v != nil && v.Eq(Max())
}

// orZero treats a nil operand as zero.
func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return Zero()
	}
	return v
}

// Add returns a+b clamped to Max.
func Add(a, b *uint256.Int) *uint256.Int {
	res, overflow := new(uint256.Int).AddOverflow(orZero(a), orZero(b))
	if overflow {
		return Max()
	}
	return res
}

// Sub returns a-b clamped to zero.
func Sub(a, b *uint256.Int) *uint256.Int {
	res, underflow := new(uint256.Int).SubOverflow(orZero(a), orZero(b))
	if underflow {
		return Zero()
	}
	return res
}

// Mul returns a*b clamped to Max.
func Mul(a, b *uint256.Int) *uint256.Int {
	res, overflow := new(uint256.Int).MulOverflow(orZero(a), orZero(b))
	if overflow {
		return Max()
	}
	return res
}

// Div returns a/b, or Max when b is zero.
func Div(a, b *uint256.Int) *uint256.Int {
	if b == nil || b.IsZero() {
		return Max()
	}
	return new(uint256.Int).Div(orZero(a), b)
}

// MulDiv returns the saturating product a*b divided by d.
// A product that already saturated stays saturated.
func MulDiv(a, b, d *uint256.Int) *uint256.Int {
	p := Mul(a, b)
	if IsMax(p) {
		return p
	}
	return Div(p, d)
}

// Pow10 returns 10^n, saturating above 10^77.
func Pow10(n uint) *uint256.Int {
	if n > maxPow10 {
		return Max()
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// Bps returns amount*bps/10000 with saturating multiplication.
func Bps(amount *uint256.Int, bps uint64) *uint256.Int {
	return MulDiv(amount, New(bps), New(BpsDenominator))
}

// ParseDecimal parses a base-10 unsigned integer. Underscores are accepted
// as digit separators.
func ParseDecimal(s string) (*uint256.Int, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if clean == "" {
		return nil, fmt.Errorf("empty numeric value")
	}
	b, ok := new(big.Int).SetString(clean, 10)
	if !ok {
		return nil, fmt.Errorf("invalid numeric value %q", s)
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("negative numeric value %q", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("numeric value %q exceeds 256 bits", s)
	}
	return v, nil
}

// ParseUnits converts a decimal string such as "2000.51" or "1.2e-05" to a
// fixed-point integer with the given scale, truncating extra digits.
func ParseUnits(s string, decimals uint) (*uint256.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("invalid decimal value %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt(Pow10(decimals).ToBig()))
	scaled := new(big.Int).Quo(r.Num(), r.Denom())
	v, overflow := uint256.FromBig(scaled)
	if overflow {
		return nil, fmt.Errorf("decimal value %q exceeds 256 bits", s)
	}
	return v, nil
}

// String renders v in base 10. Nil renders as "0".
func String(v *uint256.Int) string {
	return orZero(v).ToBig().String()
}

// FormatUnits renders v as a decimal with the given scale, e.g.
// FormatUnits(1_000_000_000, 8) == "10.00000000".
func FormatUnits(v *uint256.Int, decimals uint) string {
	digits := String(v)
	if decimals == 0 {
		return digits
	}
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}
	cut := len(digits) - int(decimals)
	return digits[:cut] + "." + digits[cut:]
}

// FormatUSD renders an 8-decimal USD value.
func FormatUSD(v *uint256.Int) string {
	return FormatUnits(v, USDDecimals)
}

// ToFloat converts a scaled value to float64 for logs and gauges only.
func ToFloat(v *uint256.Int, decimals uint) float64 {
	f, _ := new(big.Float).SetInt(orZero(v).ToBig()).Float64()
	return f / math.Pow10(int(decimals))
}
