// Package decimal implements fixed-precision decimal arithmetic on top of
// math/big so that pricing results never pass through a float64.
//
// A Decimal is a sign, an unscaled integer coefficient, and a scale (the
// number of digits to the right of the decimal point). "100.50" is
// represented as coefficient 10050, scale 2. Arithmetic never drops
// precision silently: addition and multiplication grow the scale as
// needed, and the only place precision is lost is an explicit Round call.
package decimal

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// RoundingMode selects how a Decimal is rounded to fewer fractional digits.
type RoundingMode int

const (
	// HalfUp rounds half away from zero: 2.5 -> 3, -2.5 -> -3.
	HalfUp RoundingMode = iota
	// HalfEven rounds half to the nearest even digit: 2.5 -> 2, 3.5 -> 4.
	HalfEven
)

func (m RoundingMode) String() string {
	switch m {
	case HalfUp:
		return "half_up"
	case HalfEven:
		return "half_even"
	default:
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
}

// Decimal is an immutable fixed-precision number. The zero value is 0.
type Decimal struct {
	neg   bool
	coef  *big.Int // absolute value of the unscaled coefficient, never nil
	scale int
}

var bigTen = big.NewInt(10)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// Zero returns the decimal 0.
func Zero() Decimal {
	return Decimal{coef: big.NewInt(0)}
}

// FromInt64 builds an integer-valued decimal (scale 0).
func FromInt64(v int64) Decimal {
	neg := v < 0
	coef := big.NewInt(v)
	coef.Abs(coef)
	return Decimal{neg: neg, coef: coef}
}

// Parse reads a literal such as "1267.00", "-3", "+42" or "3.1400" into a
// Decimal, preserving the scale exactly as written (trailing zeros in the
// input are significant and retained).
func Parse(s string) (Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Decimal{}, fmt.Errorf("decimal: empty literal")
	}
	neg := false
	switch raw[0] {
	case '-':
		neg = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}
	if raw == "" {
		return Decimal{}, fmt.Errorf("decimal: invalid literal %q", s)
	}
	intPart, fracPart, hasFrac := strings.Cut(raw, ".")
	if hasFrac && fracPart == "" {
		return Decimal{}, fmt.Errorf("decimal: invalid literal %q", s)
	}
	if intPart == "" {
		intPart = "0"
	}
	digits := intPart + fracPart
	if digits == "" || !isDigits(digits) {
		return Decimal{}, fmt.Errorf("decimal: invalid literal %q", s)
	}
	coef, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("decimal: invalid literal %q", s)
	}
	if coef.Sign() == 0 {
		neg = false
	}
	return Decimal{neg: neg, coef: coef, scale: len(fracPart)}, nil
}

// MustParse is Parse but panics on error; useful for literals known at
// compile time (constant node declarations, test fixtures).
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromFloat64 converts a float64 to the shortest decimal string that
// round-trips to the same bit pattern (via strconv's Ryu implementation)
// and parses that string. This is the one place a float ever touches the
// engine: an input value handed to us by a caller as a Go float64 becomes
// that shortest decimal (19.99 stays "19.99"), not the full binary
// expansion of the float64.
func FromFloat64(f float64) (Decimal, error) {
	return Parse(strconv.FormatFloat(f, 'f', -1, 64))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Scale returns the number of fractional digits.
func (d Decimal) Scale() int { return d.scale }

// Sign returns -1, 0, or 1.
func (d Decimal) Sign() int {
	if d.coef == nil || d.coef.Sign() == 0 {
		return 0
	}
	if d.neg {
		return -1
	}
	return 1
}

// IsZero reports whether d is exactly zero.
func (d Decimal) IsZero() bool { return d.Sign() == 0 }

func (d Decimal) coefficient() *big.Int {
	if d.coef == nil {
		return big.NewInt(0)
	}
	return d.coef
}

// signedCoef returns the coefficient with its sign applied.
func (d Decimal) signedCoef() *big.Int {
	c := new(big.Int).Set(d.coefficient())
	if d.neg {
		c.Neg(c)
	}
	return c
}

func fromSigned(c *big.Int, scale int) Decimal {
	neg := c.Sign() < 0
	abs := new(big.Int).Abs(c)
	if abs.Sign() == 0 {
		neg = false
	}
	return Decimal{neg: neg, coef: abs, scale: scale}
}

// align returns the signed coefficients of a and b expressed at a common
// scale (the max of the two), plus that scale.
func align(a, b Decimal) (*big.Int, *big.Int, int) {
	scale := a.scale
	if b.scale > scale {
		scale = b.scale
	}
	ac := a.signedCoef()
	bc := b.signedCoef()
	if d := scale - a.scale; d > 0 {
		ac.Mul(ac, pow10(d))
	}
	if d := scale - b.scale; d > 0 {
		bc.Mul(bc, pow10(d))
	}
	return ac, bc, scale
}

// Add returns d + e, at the scale of the more precise operand.
func (d Decimal) Add(e Decimal) Decimal {
	ac, bc, scale := align(d, e)
	return fromSigned(ac.Add(ac, bc), scale)
}

// Sub returns d - e.
func (d Decimal) Sub(e Decimal) Decimal {
	return d.Add(e.Neg())
}

// Neg returns -d.
func (d Decimal) Neg() Decimal {
	if d.IsZero() {
		return d
	}
	return Decimal{neg: !d.neg, coef: d.coefficient(), scale: d.scale}
}

// Abs returns |d|.
func (d Decimal) Abs() Decimal {
	return Decimal{neg: false, coef: d.coefficient(), scale: d.scale}
}

// Mul returns d * e at scale d.scale + e.scale.
func (d Decimal) Mul(e Decimal) Decimal {
	c := new(big.Int).Mul(d.coefficient(), e.coefficient())
	neg := d.neg != e.neg
	if c.Sign() == 0 {
		neg = false
	}
	return Decimal{neg: neg, coef: c, scale: d.scale + e.scale}
}

// Cmp returns -1, 0, or 1 comparing d to e, aligning scales first.
func (d Decimal) Cmp(e Decimal) int {
	ac, bc, _ := align(d, e)
	return ac.Cmp(bc)
}

// Min returns the smaller of two decimals.
func Min(a, b Decimal) Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Max returns the larger of two decimals.
func Max(a, b Decimal) Decimal {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Round rounds d to the given number of fractional digits using mode.
// places must be >= 0. Rounding to more places than d already carries
// merely pads with zeros; it never invents precision.
func (d Decimal) Round(places int, mode RoundingMode) (Decimal, error) {
	if places < 0 {
		return Decimal{}, fmt.Errorf("decimal: round places must be >= 0, got %d", places)
	}
	if places >= d.scale {
		c := new(big.Int).Set(d.coefficient())
		c.Mul(c, pow10(places-d.scale))
		return Decimal{neg: d.neg, coef: c, scale: places}, nil
	}
	drop := d.scale - places
	divisor := pow10(drop)
	q, r := new(big.Int).QuoRem(d.coefficient(), divisor, new(big.Int))
	if roundAwayFromZero(q, r, divisor, mode) {
		q.Add(q, big.NewInt(1))
	}
	return fromSigned(signedFromAbs(q, d.neg), places), nil
}

func signedFromAbs(abs *big.Int, neg bool) *big.Int {
	c := new(big.Int).Set(abs)
	if neg {
		c.Neg(c)
	}
	return c
}

// roundAwayFromZero decides, given the truncated quotient q and the
// remainder r of |d.coef| / divisor, whether the magnitude should be
// incremented by one.
func roundAwayFromZero(q, r, divisor *big.Int, mode RoundingMode) bool {
	if r.Sign() == 0 {
		return false
	}
	twice := new(big.Int).Lsh(r, 1)
	cmp := twice.Cmp(divisor)
	switch mode {
	case HalfUp:
		return cmp >= 0
	case HalfEven:
		if cmp > 0 {
			return true
		}
		if cmp < 0 {
			return false
		}
		// Exactly half: round to the even neighbor.
		return q.Bit(0) == 1
	default:
		return cmp >= 0
	}
}

// String renders the decimal in plain notation, always showing exactly
// Scale() fractional digits.
func (d Decimal) String() string {
	digits := d.coefficient().String()
	if d.scale == 0 {
		if d.neg {
			return "-" + digits
		}
		return digits
	}
	for len(digits) <= d.scale {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-d.scale]
	fracPart := digits[len(digits)-d.scale:]
	sign := ""
	if d.neg {
		sign = "-"
	}
	return sign + intPart + "." + fracPart
}

// Float64 converts to a float64 for display or logging only; never use the
// result as an input to further arithmetic.
func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(d.String(), 64)
	return f
}

// Int64 reports the integer value of d if it has no fractional part and
// fits in an int64.
func (d Decimal) Int64() (int64, bool) {
	if d.scale != 0 {
		rounded, _ := d.Round(0, HalfUp)
		if rounded.Cmp(d) != 0 {
			return 0, false
		}
		return rounded.Int64()
	}
	if !d.coefficient().IsInt64() {
		return 0, false
	}
	v := d.coefficient().Int64()
	if d.neg {
		v = -v
	}
	return v, true
}
