package pilp

import "math/big"

// Row is one tableau row: [d, c0, (M-coef?), a_1, ..., a_n]. d is the row's
// common positive denominator; every other entry is an integer numerator.
// The semantic value of column c is row[c]/row[0].
type Row []*big.Int

// CloneRow deep-copies a row so mutation of the copy never aliases the
// original -- required before any pivot touches a row that another tableau
// (e.g. a cloned split branch) still references.
func CloneRow(r Row) Row {
	out := make(Row, len(r))
	for i, v := range r {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// NewRow builds a row of the given width with every entry set to zero.
func NewRow(width int) Row {
	r := make(Row, width)
	for i := range r {
		r[i] = new(big.Int)
	}
	return r
}

// Matrix is a dense, row-extensible big.Int matrix: the coefficient matrix
// of a tableau (spec section 4.1 "Representation"). Rows are appended,
// swapped, and normalized in place; columns are never physically dropped on
// the solve path (dead columns are swapped to the front and counted, per
// spec section 3's n_dead convention) but DropColumn is provided because
// section 6.2 names it as a required primitive of the surrounding
// vector/matrix contract; rollback of a variable allocation uses it.
type Matrix struct {
	Rows []Row
	NCol int
}

// NewMatrix creates an empty matrix with the given column width.
func NewMatrix(nCol int) *Matrix {
	return &Matrix{Rows: nil, NCol: nCol}
}

// AppendRow appends r (which must have NCol entries) and returns its index.
func (m *Matrix) AppendRow(r Row) int {
	if len(r) != m.NCol {
		panic("pilp: AppendRow width mismatch")
	}
	m.Rows = append(m.Rows, r)
	return len(m.Rows) - 1
}

// SwapRows exchanges rows i and j in place.
func (m *Matrix) SwapRows(i, j int) {
	m.Rows[i], m.Rows[j] = m.Rows[j], m.Rows[i]
}

// DropColumn removes column c from every row, shifting later columns left.
func (m *Matrix) DropColumn(c int) {
	for i, r := range m.Rows {
		m.Rows[i] = append(r[:c:c], r[c+1:]...)
	}
	m.NCol--
}

// ExtendColumns appends n zero-valued columns to every row.
func (m *Matrix) ExtendColumns(n int) {
	for i, r := range m.Rows {
		ext := make(Row, n)
		for k := range ext {
			ext[k] = new(big.Int)
		}
		m.Rows[i] = append(r, ext...)
	}
	m.NCol += n
}

// InnerProduct returns the dot product of two equal-length integer vectors.
func InnerProduct(a, b []*big.Int) *big.Int {
	sum := new(big.Int)
	tmp := new(big.Int)
	for i := range a {
		sum.Add(sum, tmp.Mul(a[i], b[i]))
	}
	return sum
}

// FirstNonZero returns the index (>= from) of the first non-zero entry in
// v, or -1 if every entry from that point on is zero.
func FirstNonZero(v []*big.Int, from int) int {
	for i := from; i < len(v); i++ {
		if v[i].Sign() != 0 {
			return i
		}
	}
	return -1
}

// NormalizeVector divides every entry of v by the gcd of all entries,
// leaving v unchanged if it is all-zero. This is the "normalize (divide out
// gcd of whole vector)" primitive of spec section 6.2.
func NormalizeVector(v []*big.Int) {
	g := gcdSlice(v)
	if g.Sign() == 0 || g.Cmp(bigOne) == 0 {
		return
	}
	for _, x := range v {
		x.Quo(x, g)
	}
}

// ScaleDownByGCD divides a row (with its leading denominator at index 0) by
// the gcd of the whole row, keeping the denominator positive. This is the
// normalization spec section 9 requires after every row-producing
// arithmetic operation.
func ScaleDownByGCD(r Row) {
	if r[0].Sign() < 0 {
		for _, x := range r {
			x.Neg(x)
		}
	}
	g := gcdSlice(r)
	if g.Sign() == 0 || g.Cmp(bigOne) == 0 {
		return
	}
	for _, x := range r {
		x.Quo(x, g)
	}
}
