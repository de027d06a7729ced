package pilp

import (
	"fmt"
	"math/big"
	"strings"
)

// BasicSet is a minimal stand-in for the surrounding polyhedral library's
// basic-set container (spec section 6.3): a conjunction of equalities and
// inequalities over NDim "input" dimensions (parameters, in this core)
// plus NDiv appended integer divisions. Real basic-set/basic-map
// implementations (exact Gaussian reduction, constraint minimization,
// pretty-printing) are explicitly out of scope (spec section 1); this type
// only implements the contract spec section 6.3 lists as required so the
// core can be built and tested against something concrete. See DESIGN.md.
//
// Every constraint row has length 1 + NDim + NDiv: [const, dim_1, ...,
// dim_NDim, div_1, ..., div_NDiv]. An equality row e means e == 0; an
// inequality row e means e >= 0.
type BasicSet struct {
	NDim int
	Eq   []Row
	Ineq []Row
	Divs []DivDef
	NDiv int

	// markedEmpty short-circuits IsEmpty for sets built from a cut's
	// "no solution in strict half" emission (spec section 4.4), where the
	// region is known empty by construction rather than by structural
	// inspection.
	markedEmpty bool
}

// DivDef is one context integer division: a new dimension q = floor(Expr /
// Denom), where Expr has length 1+NDim+NDiv (over the dims *before* q was
// introduced).
type DivDef struct {
	Expr  Row
	Denom *big.Int
}

// NewBasicSet allocates an empty basic set over nDim dimensions with no
// divisions (spec section 6.3, "allocation with (n_eq, n_ineq, n_div)
// capacities" -- capacities are advisory in a slice-backed container, so
// this constructor only fixes the dimension).
func NewBasicSet(nDim int) *BasicSet {
	return &BasicSet{NDim: nDim}
}

// Width returns the row width constraints of this set must have.
func (b *BasicSet) Width() int { return 1 + b.NDim + b.NDiv }

// AppendEq appends an equality row and returns its index.
func (b *BasicSet) AppendEq(row Row) int {
	b.Eq = append(b.Eq, row)
	return len(b.Eq) - 1
}

// AppendIneq appends an inequality row (e >= 0) and returns its index.
func (b *BasicSet) AppendIneq(row Row) int {
	b.Ineq = append(b.Ineq, row)
	return len(b.Ineq) - 1
}

// AppendDiv introduces a new division dimension, extending every existing
// constraint row with a zero coefficient for it.
func (b *BasicSet) AppendDiv(expr Row, denom *big.Int) int {
	idx := len(b.Divs)
	b.Divs = append(b.Divs, DivDef{Expr: CloneRow(expr), Denom: new(big.Int).Set(denom)})
	b.NDiv++
	zero := new(big.Int)
	for i, r := range b.Eq {
		b.Eq[i] = append(r, new(big.Int).Set(zero))
	}
	for i, r := range b.Ineq {
		b.Ineq[i] = append(r, new(big.Int).Set(zero))
	}
	return idx
}

// SwapDivs exchanges two division dimensions, including the coefficient
// column of every constraint row that mentions them.
func (b *BasicSet) SwapDivs(i, j int) {
	b.Divs[i], b.Divs[j] = b.Divs[j], b.Divs[i]
	ci, cj := 1+b.NDim+i, 1+b.NDim+j
	for _, r := range b.Eq {
		r[ci], r[cj] = r[cj], r[ci]
	}
	for _, r := range b.Ineq {
		r[ci], r[cj] = r[cj], r[ci]
	}
}

// Normalize divides every constraint row by the gcd of its entries (spec
// section 9, "numerical normalization").
func (b *BasicSet) Normalize() {
	for _, r := range b.Eq {
		NormalizeVector(r)
	}
	for _, r := range b.Ineq {
		NormalizeVector(r)
	}
}

// Finalize returns a normalized, duplicate-free copy of b. This is the
// minimal stand-in for the external library's "Gaussian elimination and
// constraint normalization used to finalize emitted pieces" (spec section
// 1): it removes exact duplicate rows and normalizes the rest, but does
// not perform full Gaussian variable elimination -- that refinement
// belongs to the real polyhedral library this core assumes as a
// collaborator.
func (b *BasicSet) Finalize() *BasicSet {
	out := b.Copy()
	out.Normalize()
	out.Eq = dedupRows(out.Eq)
	out.Ineq = dedupRows(out.Ineq)
	return out
}

func dedupRows(rows []Row) []Row {
	var out []Row
	seen := make([]Row, 0, len(rows))
	for _, r := range rows {
		dup := false
		for _, s := range seen {
			if rowsEqual(r, s) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, r)
			out = append(out, r)
		}
	}
	return out
}

func rowsEqual(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}

// Copy deep-copies b.
func (b *BasicSet) Copy() *BasicSet {
	c := &BasicSet{NDim: b.NDim, NDiv: b.NDiv, markedEmpty: b.markedEmpty}
	c.Eq = make([]Row, len(b.Eq))
	for i, r := range b.Eq {
		c.Eq[i] = CloneRow(r)
	}
	c.Ineq = make([]Row, len(b.Ineq))
	for i, r := range b.Ineq {
		c.Ineq[i] = CloneRow(r)
	}
	c.Divs = make([]DivDef, len(b.Divs))
	for i, d := range b.Divs {
		c.Divs[i] = DivDef{Expr: CloneRow(d.Expr), Denom: new(big.Int).Set(d.Denom)}
	}
	return c
}

// ExtendDims grows NDim by n, inserting n zero coefficients for the new
// dims just before the division columns of every existing row.
func (b *BasicSet) ExtendDims(n int) {
	insertAt := 1 + b.NDim
	grow := func(r Row) Row {
		out := make(Row, 0, len(r)+n)
		out = append(out, r[:insertAt]...)
		for i := 0; i < n; i++ {
			out = append(out, new(big.Int))
		}
		out = append(out, r[insertAt:]...)
		return out
	}
	for i, r := range b.Eq {
		b.Eq[i] = grow(r)
	}
	for i, r := range b.Ineq {
		b.Ineq[i] = grow(r)
	}
	b.NDim += n
}

// IsEmpty reports whether b is structurally known to be empty: either
// explicitly marked so, or containing a constraint that reduces to a
// negative constant with every coefficient zero. This is a cheap
// structural check, not a full LP feasibility test -- Context.IsFeasible
// in context.go performs the real test via the context tableau.
func (b *BasicSet) IsEmpty() bool {
	if b.markedEmpty {
		return true
	}
	trivialFalse := func(r Row) bool {
		for _, c := range r[1:] {
			if c.Sign() != 0 {
				return false
			}
		}
		return r[0].Sign() != 0
	}
	for _, r := range b.Eq {
		if trivialFalse(r) {
			return true
		}
	}
	allZeroCoefs := func(r Row) bool {
		for _, c := range r[1:] {
			if c.Sign() != 0 {
				return false
			}
		}
		return true
	}
	for _, r := range b.Ineq {
		if allZeroCoefs(r) && r[0].Sign() < 0 {
			return true
		}
	}
	return false
}

// MarkEmpty flags the set as empty by construction (used by the "no
// solution in strict half" emission, spec section 4.4).
func (b *BasicSet) MarkEmpty() { b.markedEmpty = true }

// DivEqual reports whether division i of b and division j of other define
// the same integer division (equal scaled expression and denominator),
// the "equality detection for divs" primitive of spec section 6.3.
func (b *BasicSet) DivEqual(i int, other *BasicSet, j int) bool {
	di, dj := b.Divs[i], other.Divs[j]
	if di.Denom.Cmp(dj.Denom) != 0 {
		return false
	}
	return rowsEqual(di.Expr, dj.Expr)
}

// OutExpr is one output-variable affine expression over (dims, divs):
// Den*x == Num (where Num[0] is the constant term).
type OutExpr struct {
	Den *big.Int
	Num Row
}

// BasicMap pairs a domain region with the affine image of each output
// variable over that region (spec section 3, "Solution piece"). Every Out
// element is a bounded expression: an unbounded output makes OutputExpr
// (sink.go) return ErrInvalidInput, and no piece is emitted for it.
type BasicMap struct {
	Domain *BasicSet
	Out    []OutExpr
}

// Relation is an ordered collection of disjoint basic maps plus the set of
// parameter regions with no integer solution, i.e. the result of
// partial_lexopt (spec section 6).
type Relation struct {
	Pieces []BasicMap
	Empty  []*BasicSet
}

// String formats a diagnostic summary, one line per piece and one per
// empty region, in the teacher's give-every-exported-type-a-String()
// convention.
func (rel *Relation) String() string {
	var sb strings.Builder
	for i, p := range rel.Pieces {
		fmt.Fprintf(&sb, "piece %d: %s\n", i, p.String())
	}
	for i, e := range rel.Empty {
		fmt.Fprintf(&sb, "empty %d: %s\n", i, e.String())
	}
	return sb.String()
}

// String formats one output's affine image for diagnostics, e.g.
// "(1 + 2*p0)/3".
func (o OutExpr) String() string {
	return fmt.Sprintf("(%s)/%s", formatAffine(o.Num), o.Den.String())
}

// String formats a piece's domain and every output's expression.
func (m BasicMap) String() string {
	var outs []string
	for i, o := range m.Out {
		outs = append(outs, fmt.Sprintf("x%d=%s", i, o.String()))
	}
	return fmt.Sprintf("domain{%s} -> %s", m.Domain.String(), strings.Join(outs, ", "))
}

// String formats a basic set's constraints for diagnostics.
func (b *BasicSet) String() string {
	var parts []string
	for _, r := range b.Eq {
		parts = append(parts, formatAffine(r)+" = 0")
	}
	for _, r := range b.Ineq {
		parts = append(parts, formatAffine(r)+" >= 0")
	}
	for i, d := range b.Divs {
		parts = append(parts, fmt.Sprintf("q%d = floor((%s)/%s)", i, formatAffine(d.Expr), d.Denom.String()))
	}
	return strings.Join(parts, " & ")
}

// formatAffine renders row (constant first, then one coefficient per
// dimension) as a human-readable sum.
func formatAffine(row Row) string {
	if len(row) == 0 {
		return "0"
	}
	terms := []string{row[0].String()}
	for i, c := range row[1:] {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, fmt.Sprintf("%s*p%d", c.String(), i))
	}
	return strings.Join(terms, " + ")
}
