package pilp

import (
	"fmt"
	"math/big"
)

// Value is the reference-counted-in-spirit rational value used only at the
// I/O boundary (printing emitted pieces, reporting samples to callers). It
// is never used on the solve path itself -- the tableau works in raw
// (denominator, numerator row) form, see Matrix.
//
// Value additionally encodes the non-finite cases spec section 3 calls for:
//
//	NaN  = 0/0
//	+Inf = (positive)/0
//	-Inf = (negative)/0
//
// Normalized form always has gcd(|Num|, Den) = 1 and Den >= 0, with Den == 0
// reserved for the three non-finite cases above.
type Value struct {
	Num *big.Int
	Den *big.Int
}

// NewValue builds a normalized finite value num/den. den must be non-zero.
func NewValue(num, den *big.Int) Value {
	if den.Sign() == 0 {
		panic("pilp: NewValue with zero denominator; use NaN/PosInf/NegInf")
	}
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	if n.Sign() == 0 {
		return Value{Num: big.NewInt(0), Den: big.NewInt(1)}
	}
	g := gcdAbs(n, d)
	if g.Cmp(bigOne) != 0 {
		n.Quo(n, g)
		d.Quo(d, g)
	}
	return Value{Num: n, Den: d}
}

// NewValueFromInt builds a finite integer value.
func NewValueFromInt(n int64) Value {
	return Value{Num: big.NewInt(n), Den: big.NewInt(1)}
}

// NaNValue returns the NaN value 0/0.
func NaNValue() Value { return Value{Num: big.NewInt(0), Den: big.NewInt(0)} }

// PosInfValue returns +Inf, represented as 1/0.
func PosInfValue() Value { return Value{Num: big.NewInt(1), Den: big.NewInt(0)} }

// NegInfValue returns -Inf, represented as -1/0.
func NegInfValue() Value { return Value{Num: big.NewInt(-1), Den: big.NewInt(0)} }

// IsNaN reports whether v is the NaN sentinel.
func (v Value) IsNaN() bool { return v.Den.Sign() == 0 && v.Num.Sign() == 0 }

// IsInf reports whether v is +Inf or -Inf.
func (v Value) IsInf() bool { return v.Den.Sign() == 0 && v.Num.Sign() != 0 }

// IsFinite reports whether v is an ordinary rational.
func (v Value) IsFinite() bool { return v.Den.Sign() != 0 }

// String formats the value for diagnostic printing, matching the teacher's
// convention of giving every exported type a readable String() form.
func (v Value) String() string {
	switch {
	case v.IsNaN():
		return "NaN"
	case v.Den.Sign() == 0 && v.Num.Sign() > 0:
		return "+Inf"
	case v.Den.Sign() == 0:
		return "-Inf"
	case v.Den.Cmp(bigOne) == 0:
		return v.Num.String()
	default:
		return fmt.Sprintf("%s/%s", v.Num.String(), v.Den.String())
	}
}
