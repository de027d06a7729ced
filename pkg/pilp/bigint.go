// Package pilp implements the parametric integer linear programming (PILP)
// solver core: given a system of linear (in)equalities over parameters and
// variables, it computes the lexicographic minimum or maximum of the
// variables as a piecewise-affine function of the parameters, together with
// the region of parameter space where no integer solution exists.
//
// The algorithm is Feautrier-style: a dual-simplex search in a main tableau
// over (params, vars), coordinated with a context tableau over params alone,
// refined by Gomory-style cuts to force integrality.
package pilp

import "math/big"

// bigZero, bigOne and bigMinusOne are shared read-only constants. Callers must never
// mutate the returned pointer; copy with new(big.Int).Set(...) first.
var (
	bigZero     = big.NewInt(0)
	bigOne      = big.NewInt(1)
	bigMinusOne = big.NewInt(-1)
)

// floorDiv returns the quotient of a/b rounded toward negative infinity,
// matching the "floor-div" primitive required by spec section 6.1. b must
// be non-zero.
func floorDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, bigOne)
	}
	return q
}

// floorMod returns a mod b with the sign of b (the remainder paired with
// floorDiv), i.e. a - b*floorDiv(a,b).
func floorMod(a, b *big.Int) *big.Int {
	r := new(big.Int).Mod(a, new(big.Int).Abs(b))
	if b.Sign() < 0 && r.Sign() != 0 {
		r.Add(r, b)
	}
	return r
}

// ceilDiv returns the quotient of a/b rounded toward positive infinity.
func ceilDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) == (b.Sign() < 0) {
		q.Add(q, bigOne)
	}
	return q
}

// gcdAbs returns the non-negative gcd of a and b, treating 0 as the identity
// (gcd(0, x) = |x|).
func gcdAbs(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	return g
}

// gcdSlice returns the gcd of every element in xs, 0 if xs is empty.
func gcdSlice(xs []*big.Int) *big.Int {
	g := new(big.Int)
	for _, x := range xs {
		g = gcdAbs(g, x)
	}
	return g
}

// fracPart returns the fractional remainder of n/d in [0, 1) scaled by d,
// i.e. n - d*floorDiv(n, d), which is the numerator of {n/d} over
// denominator d. d must be positive.
func fracPart(n, d *big.Int) *big.Int {
	return floorMod(n, d)
}
