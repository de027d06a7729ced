// Cut & div engine: Gomory-style integer cuts that force a rational
// lex-min vertex to an integer one, and the integer-division machinery
// shared between the main and context tableaux (spec section 4.4,
// component C4).
package pilp

import "math/big"

// EmitEmptyFunc reports an empty parameter region to the active solution
// sink (spec section 4.4, "No solution in strict half" emission). The
// top-level driver in solver.go owns the sink and supplies this hook.
type EmitEmptyFunc func(ctx *Context) error

// CutToIntegerLexmin closes a tableau to an all-integer feasible point
// using only non-parametric cuts (spec section 4.4, "Integer closure of
// the context"): this is what Context.IsFeasible uses to manufacture a
// concrete sample, and it never needs to introduce a division, since a
// context tableau has no parameters of its own.
func CutToIntegerLexmin(t *Tableau) error {
	return cutLoop(t, nil, nil)
}

// CutToIntegerLexminParametric is the main-tableau driver: the same
// closure loop, but threading the context and sink-emission hook that
// parametric and split-div cuts need.
func CutToIntegerLexminParametric(t *Tableau, ctx *Context, emitEmpty EmitEmptyFunc) error {
	return cutLoop(t, ctx, emitEmpty)
}

func cutLoop(t *Tableau, ctx *Context, emitEmpty EmitEmptyFunc) error {
	for {
		if t.Empty {
			return nil
		}
		r, d, iPar, iVar := nextCut(t)
		if r == -1 {
			return nil
		}
		var err error
		switch {
		case iPar && iVar:
			t.Empty = true
			return nil
		case iPar && !iVar:
			err = nonParametricCut(t, r, d)
		case !iPar && iVar:
			err = splitDivCut(t, ctx, emitEmpty, r, d)
		default:
			err = parametricCut(t, ctx, r, d)
		}
		if err != nil {
			return err
		}
	}
}

// nextCut scans rows holding problem variables for the first with
// denominator > 1 that is not already integral (I_CST && I_PAR), returning
// its classification bits (spec section 4.4).
func nextCut(t *Tableau) (r int, d *big.Int, iPar, iVar bool) {
	for rr := t.NRedundant; rr < t.NRow; rr++ {
		owner := t.rowOwner[rr]
		if !owner.isVar || !t.isProblemVar(owner.idx) {
			continue
		}
		dd := t.M.Rows[rr][0]
		if dd.Cmp(bigOne) == 0 {
			continue
		}
		ic, ip, iv := classifyRow(t, rr, dd)
		if ic && ip {
			continue
		}
		return rr, dd, ip, iv
	}
	return -1, nil, false, false
}

// classifyRow computes the I_CST/I_PAR/I_VAR bits of spec section 4.4 for
// row r with denominator d: whether d divides the constant, every
// context-owned column (parameters and divisions), and every other
// non-basic column (problem variables and constraint slacks alike -- a
// slack is just as integer-valued as a problem variable once the data is
// integral, so it belongs in the same bucket for cut purposes).
func classifyRow(t *Tableau, r int, d *big.Int) (iCst, iPar, iVar bool) {
	off := t.off()
	row := t.M.Rows[r]
	divides := func(c *big.Int) bool {
		return new(big.Int).Mod(c, d).Sign() == 0
	}
	iCst = divides(row[1])
	iPar, iVar = true, true
	for j := t.NDead; j < t.NCol; j++ {
		c := row[off+j]
		if c.Sign() == 0 {
			continue
		}
		if t.isContextOwner(t.colOwner[j]) {
			if !divides(c) {
				iPar = false
			}
		} else {
			if !divides(c) {
				iVar = false
			}
		}
	}
	return
}

// addQColumnInto adds 1 to the coefficient of variable q in a raw,
// column-indexed cut row: if q is currently non-basic this is a direct
// column bump, otherwise q's whole defining row must be folded in (spec
// section 4.4 notes a freshly-introduced division is always a fresh
// non-basic column, but a reused one from GetDiv's dedup lookup may since
// have been pivoted elsewhere).
func addQColumnInto(t *Tableau, row Row, q int) {
	off := t.off()
	if c := t.ColumnOf(q); c != -1 {
		row[off+c].Add(row[off+c], bigOne)
		return
	}
	combineRowInPlace(row, t.M.Rows[t.RowOf(q)], bigOne)
}

// nonParametricCut adds, from row r = (c0 + Sum a_j x_j)/d (I_PAR true,
// I_VAR false), the cut -{-c0/d} + Sum {a_j/d} x_j >= 0 over every
// non-context column j (spec section 4.4): it is necessarily violated at
// the current vertex, so the new row is cached neg and restore_lexmin
// immediately repairs it.
func nonParametricCut(t *Tableau, r int, d *big.Int) error {
	off := t.off()
	row := t.M.Rows[r]
	cut := NewRow(off + t.NCol)
	cut[0].SetInt64(1)
	cut[1].Neg(fracPart(new(big.Int).Neg(row[1]), d))
	for j := t.NDead; j < t.NCol; j++ {
		if t.isContextOwner(t.colOwner[j]) {
			continue
		}
		c := row[off+j]
		if c.Sign() == 0 {
			continue
		}
		cut[off+j].Set(fracPart(c, d))
	}
	ScaleDownByGCD(cut)
	rowIdx, _ := t.AddCutRow(cut, true)
	t.cacheRowSign(rowIdx, SignNeg)
	return RestoreLexmin(t)
}

// contextExpr builds the (param, div) expression GetDiv needs from row r's
// context-owned column coefficients, applying xform to each raw
// coefficient (e.g. negate-then-fracPart, or plain fracPart, depending on
// which cut is calling).
func contextExpr(main *Tableau, r int, d *big.Int, xform func(c, d *big.Int) *big.Int) Row {
	off := main.off()
	row := main.M.Rows[r]
	expr := NewRow(1 + main.NParam + main.NDiv)
	for i := 0; i < main.NParam; i++ {
		if main.Var[i].IsRow {
			continue
		}
		expr[1+i].Set(xform(row[off+main.Var[i].Index], d))
	}
	probEnd := main.NVar - main.NDiv
	for i := 0; i < main.NDiv; i++ {
		vi := probEnd + i
		if main.Var[vi].IsRow {
			continue
		}
		expr[1+main.NParam+i].Set(xform(row[off+main.Var[vi].Index], d))
	}
	return expr
}

// parametricCut handles the I_PAR == false, I_VAR == false case of spec
// section 4.4: it builds the division q = floor(Sum {-a_i/d} y_i) over
// parameters and context-divs, looks it up or introduces it via GetDiv,
// and adds -{-c0/d} + Sum {a_j/d} x_j + q >= 0 to the main tableau, where
// the x_j sum ranges over every non-context column.
func parametricCut(main *Tableau, ctx *Context, r int, d *big.Int) error {
	if ctx == nil {
		return internalInvariant("cut_to_integer_lexmin", "parametric cut reached without a context")
	}
	negFrac := func(c, d *big.Int) *big.Int { return fracPart(new(big.Int).Neg(c), d) }
	expr := contextExpr(main, r, d, negFrac)

	qMain, _, err := GetDiv(main, ctx, DivDef{Expr: expr, Denom: new(big.Int).Set(d)})
	if err != nil {
		return err
	}

	off := main.off()
	row := main.M.Rows[r]
	cut := NewRow(off + main.NCol)
	cut[0].SetInt64(1)
	cut[1].Neg(fracPart(new(big.Int).Neg(row[1]), d))
	for j := main.NDead; j < main.NCol; j++ {
		if main.isContextOwner(main.colOwner[j]) {
			continue
		}
		c := row[off+j]
		if c.Sign() == 0 {
			continue
		}
		cut[off+j].Set(fracPart(c, d))
	}
	addQColumnInto(main, cut, qMain)
	ScaleDownByGCD(cut)

	rowIdx, _ := main.AddCutRow(cut, true)
	main.cacheRowSign(rowIdx, SignNeg)
	return RestoreLexmin(main)
}

// splitDivCut handles the I_PAR == false, I_VAR == true case of spec
// section 4.4: only the context (parameter/div) coefficients are
// fractional. It introduces q = floor(Sum {a_i/d} y_i + {c0/d}) and
// rewrites row r in place as v = floor(c0/d) + Sum (b_j/d) x_j + q over
// every non-context column x_j, then emits the region where that equality
// would fail to hold as an empty piece.
func splitDivCut(main *Tableau, ctx *Context, emitEmpty EmitEmptyFunc, r int, d *big.Int) error {
	if ctx == nil {
		return internalInvariant("cut_to_integer_lexmin", "split-div cut reached without a context")
	}
	row := main.M.Rows[r]
	plainFrac := func(c, d *big.Int) *big.Int { return fracPart(c, d) }
	expr := contextExpr(main, r, d, plainFrac)
	expr[0].Set(fracPart(row[1], d))

	qMain, qCtx, err := GetDiv(main, ctx, DivDef{Expr: expr, Denom: new(big.Int).Set(d)})
	if err != nil {
		return err
	}
	if err := emitNoSolutionStrictHalf(ctx, expr, d, qCtx, emitEmpty); err != nil {
		return err
	}

	off := main.off()
	row = main.M.Rows[r] // re-read: GetDiv may have grown/pivoted the tableau
	newRow := NewRow(off + main.NCol)
	newRow[0].SetInt64(1)
	newRow[1].Set(floorDiv(row[1], d))
	for j := main.NDead; j < main.NCol; j++ {
		if main.isContextOwner(main.colOwner[j]) {
			continue
		}
		c := row[off+j]
		if c.Sign() == 0 {
			continue
		}
		newRow[off+j].Set(new(big.Int).Quo(c, d))
	}
	addQColumnInto(main, newRow, qMain)
	ScaleDownByGCD(newRow)

	main.ReplaceRow(r, newRow)
	main.cacheRowSign(r, SignUnknown)
	return RestoreLexmin(main)
}

// emitNoSolutionStrictHalf records the region where expr - d*q >= 1 (the
// strict half a forced floor relation excludes) as empty via emitEmpty,
// then rolls back the temporary context addition (spec section 4.4, "No
// solution in strict half" emission). A nil emitEmpty is a silent no-op,
// used by callers (context self-closure) that never reach this path.
func emitNoSolutionStrictHalf(ctx *Context, expr Row, m *big.Int, qCtx int, emitEmpty EmitEmptyFunc) error {
	if emitEmpty == nil {
		return nil
	}
	snap := ctx.T.Journal.Snapshot()
	defer ctx.T.Rollback(snap)
	width := 1 + ctx.T.NVar
	strict := NewRow(width)
	copy(strict[:len(expr)], expr)
	strict[1+qCtx].Sub(strict[1+qCtx], m)
	strict[0].Sub(strict[0], bigOne)
	if err := ctx.addContextIneq(strict); err != nil {
		return err
	}
	if ctx.T.Empty {
		return nil
	}
	return emitEmpty(ctx)
}

// GetDiv implements get_div(T, ctx, div) of spec section 4.4: it finds an
// equal existing division in ctx's bset, or introduces a fresh one into
// both main and ctx with the two canonical inequalities enforcing q =
// floor(e/m), extending every existing context sample with floor(e/m) on
// the new coordinate. Returns the new division's variable index in main
// and in ctx.
func GetDiv(main *Tableau, ctx *Context, div DivDef) (qMain, qCtx int, err error) {
	mainProbEnd := main.NVar - main.NDiv
	for i, existing := range ctx.T.BSet.Divs {
		if existing.Denom.Cmp(div.Denom) == 0 && rowsEqual(existing.Expr, div.Expr) {
			return mainProbEnd + i, ctx.T.NVar - ctx.T.NDiv + i, nil
		}
	}

	qMain = main.AllocDiv(true)
	qCtx = ctx.T.AllocDiv(true)
	ctx.T.BSet.AppendDiv(div.Expr, div.Denom)
	ctx.T.Journal.push(undoEntry{kind: UndoAddBsetDiv, bset: ctx.T.BSet})

	m := div.Denom
	width := 1 + ctx.T.NVar
	eMinusMQ := NewRow(width)
	copy(eMinusMQ[:len(div.Expr)], div.Expr)
	eMinusMQ[1+qCtx].Sub(eMinusMQ[1+qCtx], m)

	negE := NewRow(width)
	for i, c := range div.Expr {
		negE[i].Neg(c)
	}
	negE[1+qCtx].Add(negE[1+qCtx], m)
	negE[0].Add(negE[0], new(big.Int).Sub(m, bigOne))

	if err = ctx.addContextIneq(eMinusMQ); err != nil {
		return 0, 0, err
	}
	if err = ctx.addContextIneq(negE); err != nil {
		return 0, 0, err
	}

	newCol := len(div.Expr) - 1
	ctx.T.Samples.ExtendColumns(1)
	for _, srow := range ctx.T.Samples.Rows {
		v := evalConstraint(div.Expr, srow[:newCol])
		srow[newCol].Set(floorDiv(v, m))
	}
	return qMain, qCtx, nil
}
