// Top-level entry points: partial_lexopt and foreach_lexopt of spec section
// 6, driving the recursive C2 (restore_lexmin) -> C3 (row-sign classify and
// split) -> C4 (cut_to_integer_lexmin) search described in spec section 2.
package pilp

import "math/big"

// Options configures one solve (spec section 6).
type Options struct {
	// Max requests the lexicographic maximum instead of the minimum (spec
	// section 9, "x' = M - x").
	Max bool

	// Rational stops the search at each region's lex-min rational vertex
	// and skips the Gomory cut refinement entirely (spec section 6.1,
	// "rational relaxation").
	Rational bool

	// SplitTieBreak chooses among equally-scoring BestSplit candidates
	// (spec section 4.3, "Splitting"). The zero value is TieBreakEarliest.
	SplitTieBreak SplitTieBreak

	// Trace receives step-by-step driver events if set. Callers who leave
	// this nil pay nothing (logging.go).
	Trace Tracer
}

func (o Options) tracer() Tracer {
	if o.Trace == nil {
		return NopTracer{}
	}
	return o.Trace
}

// Problem is the constraint system a solve builds its main tableau from
// (spec section 3's bmap): equalities and inequalities over (parameters,
// problem variables), each row of length 1+NParam+NVar, constant term
// first. The problem variables are the solve's outputs, in order.
type Problem struct {
	NParam int
	NVar   int
	Eq     []Row
	Ineq   []Row
}

// PartialLexopt computes the lexicographic optimum of p's variables, as a
// piecewise-affine function of its parameters restricted to dom, and
// collects every solution piece and every parameter region admitting no
// integer solution into one Relation (spec section 6, "partial_lexopt").
// dom may be nil for the unconstrained parameter universe.
func PartialLexopt(p *Problem, dom *BasicSet, opts Options) (*Relation, error) {
	collector := NewRelationCollector()
	if err := runSearch(p, dom, opts, collector); err != nil {
		return nil, err
	}
	return collector.Relation(), nil
}

// ForeachLexopt is PartialLexopt, but streams each piece and empty region
// to the given callbacks as the search discovers them rather than
// collecting a Relation in memory (spec section 6, "foreach_lexopt").
func ForeachLexopt(p *Problem, dom *BasicSet, opts Options, onPiece PieceFunc, onEmpty EmptyFunc) error {
	return runSearch(p, dom, opts, &CallbackCollector{OnPiece: onPiece, OnEmpty: onEmpty})
}

// runSearch validates the inputs, builds C1 and initializes C3 from dom
// (spec section 2, "construct over bmap, initialize the context from
// dom"), and launches the recursive search.
func runSearch(p *Problem, dom *BasicSet, opts Options, sink Sink) error {
	if dom != nil && dom.NDim != p.NParam {
		return invalidInput("partial_lexopt", "domain dimension does not match parameter count")
	}
	if dom != nil && dom.NDiv != 0 {
		// A caller-supplied domain carrying its own integer divisions would
		// need them replayed into a fresh context before its constraints
		// can be added; this core only ever introduces divisions itself,
		// during cut refinement, so this path is left unimplemented. See
		// DESIGN.md.
		return invalidInput("partial_lexopt", "domain with pre-existing integer divisions is not supported")
	}
	main := NewTableau(p.NParam, p.NVar, true, opts.Rational)
	ctx := NewContext(p.NParam)

	if dom != nil {
		for _, r := range dom.Eq {
			if err := ctx.addContextEq(r); err != nil {
				return err
			}
			if ctx.T.Empty {
				return nil
			}
		}
		for _, r := range dom.Ineq {
			if err := ctx.addContextIneq(r); err != nil {
				return err
			}
			if ctx.T.Empty {
				return nil
			}
		}
	}

	for _, r := range p.Eq {
		if isPureParametric(r, p.NParam, p.NVar) {
			if err := ctx.addContextEq(r[:1+p.NParam]); err != nil {
				return err
			}
			if ctx.T.Empty {
				return nil
			}
			rowIdx, _ := main.AddRow(r, RowEq)
			main.MarkRedundant(rowIdx)
			continue
		}
		if err := addConstraint(main, r, true, opts.Max); err != nil {
			return err
		}
		if main.Empty {
			break
		}
	}
	if !main.Empty {
		for _, r := range p.Ineq {
			if err := addConstraint(main, r, false, opts.Max); err != nil {
				return err
			}
			if main.Empty {
				break
			}
		}
	}

	return search(main, ctx, opts, sink)
}

// isPureParametric reports whether coeffs (length 1+NParam+NVar, a
// Problem.Eq row as supplied by the caller) carries no problem-variable
// coefficients at all -- a constraint purely over the parameters (spec
// section 8, "Boundary behavior": such a row transfers to the context at
// preprocessing, and the main tableau is left with that row marked
// redundant, rather than spending one of main's problem-variable
// eliminations on it).
func isPureParametric(coeffs Row, nParam, nProb int) bool {
	for vi := 0; vi < nProb; vi++ {
		if coeffs[1+nParam+vi].Sign() != 0 {
			return false
		}
	}
	return true
}

// addConstraint adds one user-supplied constraint, over the real problem
// variables, to main. In max mode it first applies the substitution x_i =
// M - w_i of spec section 9 to every problem-variable coefficient before
// handing the row to the tableau; min mode passes coeffs through
// unchanged and never touches the big-M column.
func addConstraint(main *Tableau, coeffs Row, eq, max bool) error {
	if !max {
		if eq {
			return main.AddEquality(coeffs)
		}
		main.AddInequality(coeffs)
		return RestoreLexmin(main)
	}
	probStart := main.NParam
	probEnd := main.NVar - main.NDiv
	transformed := CloneRow(coeffs)
	mConst := new(big.Int)
	for vi := probStart; vi < probEnd; vi++ {
		a := coeffs[1+vi]
		if a.Sign() == 0 {
			continue
		}
		mConst.Add(mConst, a)
		transformed[1+vi].Neg(a)
	}
	if eq {
		return main.AddEqualityM(transformed, mConst)
	}
	main.AddInequalityM(transformed, mConst)
	return RestoreLexmin(main)
}

// search drives one region of the recursive C2 -> C3 -> C4 loop of spec
// section 2: repair main to its lex-min vertex, resolve every row whose
// sign is contested within the current context region by splitting
// (recursing into the positive half, continuing in place into the
// negative half), and once every row has a definite sign, refine to
// integrality with Gomory cuts (unless opts.Rational) before handing the
// result to sink as a piece or an empty region.
func search(main *Tableau, ctx *Context, opts Options, sink Sink) error {
	trace := opts.tracer()
	for {
		if err := RestoreLexminTraced(main, trace); err != nil {
			return err
		}
		if main.Empty {
			trace.Trace("region_empty")
			return emitEmptyRegion(ctx, sink)
		}
		anyRows, err := collectAnyRows(main, ctx)
		if err != nil {
			return err
		}
		trace.Trace("classify_done", F("any_rows", len(anyRows)))
		if len(anyRows) == 0 {
			break
		}
		r, err := ctx.BestSplit(main, anyRows, opts.SplitTieBreak)
		if err != nil {
			return err
		}
		trace.Trace("split", F("row", r), F("candidates", len(anyRows)))
		cloneMain, cloneCtx, err := ctx.SplitPositive(main, r)
		if err != nil {
			return err
		}
		if err := search(cloneMain, cloneCtx, opts, sink); err != nil {
			return err
		}
		if err := ctx.SplitNegative(main, r); err != nil {
			return err
		}
		if ctx.T.Empty {
			return nil
		}
	}

	if opts.Rational {
		trace.Trace("emit_piece", F("rational", true))
		return emitPiece(main, ctx, opts, sink)
	}

	err := CutToIntegerLexminParametric(main, ctx, func(c *Context) error {
		return emitEmptyRegion(c, sink)
	})
	if err != nil {
		return err
	}
	if main.Empty {
		trace.Trace("region_empty", F("after", "cut_to_integer"))
		return emitEmptyRegion(ctx, sink)
	}
	trace.Trace("emit_piece", F("rational", false))
	return emitPiece(main, ctx, opts, sink)
}

// collectAnyRows classifies every live, non-negatively-constrained row of
// main against the current context region and returns those whose sign is
// contested (spec section 4.3, "Splitting").
func collectAnyRows(main *Tableau, ctx *Context) ([]int, error) {
	var rows []int
	for r := main.NRedundant; r < main.NRow; r++ {
		if !main.isNonneg(main.rowOwner[r]) {
			continue
		}
		s, err := ctx.classify(main, r, true)
		if err != nil {
			return nil, err
		}
		if s == SignAny {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// emitEmptyRegion reports the current context region as admitting no
// integer solution (spec section 4.5, "relation collector... otherwise
// append the current context's basic-set to empty").
func emitEmptyRegion(ctx *Context, sink Sink) error {
	return sink.Free(ctx.T.BSet.Finalize())
}

// emitPiece reads off every problem variable's affine expression and
// deposits the finished solution piece (spec section 4.5).
func emitPiece(main *Tableau, ctx *Context, opts Options, sink Sink) error {
	nProb := main.NVar - main.NDiv - main.NParam
	out := make([]OutExpr, nProb)
	for i := 0; i < nProb; i++ {
		e, err := main.OutputExpr(main.NParam+i, opts.Max)
		if err != nil {
			return err
		}
		out[i] = e
	}
	return sink.Add(BasicMap{Domain: ctx.T.BSet.Finalize(), Out: out})
}
