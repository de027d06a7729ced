// Solution sink: where partial_lexopt/foreach_lexopt deposit the solution
// pieces and empty regions a search discovers (spec section 6, component
// C5), plus the big-M cancellation check that turns a genuinely unbounded
// output into a reported error instead of a bogus symbolic piece.
package pilp

import "math/big"

// OutputExpr reads off variable vi's current affine expression over (dims,
// divs) -- Den*vi == Num -- or reports ErrInvalidInput if the value still
// depends on the big-M placeholder (spec section 9, "Open question --
// unbounded outputs"): this implementation resolves that question by
// returning ErrInvalidInput rather than emitting a sentinel piece.
//
// max selects which substitution built the tableau (spec section 9, "the
// main tableau is constructed with x' = M - x rather than x' = M + x"):
// min mode tracks vi directly and never touches the M column, so a
// non-basic vi is simply 0 and a basic row must show M cancelled to zero;
// max mode tracks w = M - vi, so a non-basic w means vi is unbounded
// above, and a basic row must show M cancelled to exactly its own
// denominator (vi = -(row's parametric constant), the sign flip of spec
// section 4.5).
func (t *Tableau) OutputExpr(vi int, max bool) (OutExpr, error) {
	if !t.Var[vi].IsRow {
		if max {
			return OutExpr{}, invalidInput("extract_output", "unbounded output: no upper bound ever constrained this variable")
		}
		return OutExpr{Den: new(big.Int).Set(bigOne), Num: NewRow(1 + t.NParam + t.NDiv)}, nil
	}
	r := t.Var[vi].Index
	d := t.M.Rows[r][0]
	wantM := new(big.Int)
	if max {
		wantM.Set(d)
	}
	if t.HasM && t.M.Rows[r][2].Cmp(wantM) != 0 {
		return OutExpr{}, invalidInput("extract_output", "unbounded output: big-M coefficient did not cancel")
	}
	num := t.ParametricConstant(r)
	if max {
		for _, c := range num {
			c.Neg(c)
		}
	}
	return OutExpr{Den: new(big.Int).Set(d), Num: num}, nil
}

// Sink receives the pieces a search discovers (spec section 6): Add for a
// solution piece (a domain region paired with each output's affine image
// over it), Free for a region proven to admit no integer solution.
type Sink interface {
	Add(piece BasicMap) error
	Free(domain *BasicSet) error
}

// RelationCollector accumulates every piece and empty region into a single
// Relation, the in-memory result partial_lexopt returns.
type RelationCollector struct {
	rel Relation
}

// NewRelationCollector returns an empty collector.
func NewRelationCollector() *RelationCollector {
	return &RelationCollector{}
}

func (c *RelationCollector) Add(piece BasicMap) error {
	c.rel.Pieces = append(c.rel.Pieces, piece)
	return nil
}

func (c *RelationCollector) Free(domain *BasicSet) error {
	c.rel.Empty = append(c.rel.Empty, domain)
	return nil
}

// Relation returns the accumulated result.
func (c *RelationCollector) Relation() *Relation {
	return &c.rel
}

// PieceFunc is called once per solution piece foreach_lexopt discovers;
// returning a non-nil error aborts the search and propagates it.
type PieceFunc func(piece BasicMap) error

// EmptyFunc is called once per empty region foreach_lexopt discovers.
type EmptyFunc func(domain *BasicSet) error

// CallbackCollector adapts a pair of user callbacks to Sink (spec section
// 6, "foreach_lexopt"): the streaming driver uses this instead of
// RelationCollector so the caller can act on each piece without waiting for
// the whole search to finish, and without the whole Relation ever living in
// memory at once.
type CallbackCollector struct {
	OnPiece PieceFunc
	OnEmpty EmptyFunc
}

func (c *CallbackCollector) Add(piece BasicMap) error {
	if c.OnPiece == nil {
		return nil
	}
	return c.OnPiece(piece)
}

func (c *CallbackCollector) Free(domain *BasicSet) error {
	if c.OnEmpty == nil {
		return nil
	}
	return c.OnEmpty(domain)
}
