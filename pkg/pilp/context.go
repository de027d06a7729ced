// Context manager: a second tableau over parameters (plus context-shared
// integer divisions) paired with a basic-set shadow, row-sign
// classification, and case splitting (spec section 4.3, component C3).
package pilp

import "math/big"

// Context wraps the context tableau of spec section 3 ("The context is
// represented redundantly by (i) the context tableau... and (ii) bset").
// Its tracked variables are exactly the main tableau's parameters, in the
// same order, followed by whatever integer divisions have been introduced
// so far; it never carries a big-M column or problem variables of its own.
type Context struct {
	T *Tableau
}

// NewContext allocates an empty context over nParam parameter dimensions.
func NewContext(nParam int) *Context {
	t := NewTableau(0, nParam, false, false)
	t.BSet = NewBasicSet(nParam)
	t.Samples = NewMatrix(nParam)
	return &Context{T: t}
}

// ParametricConstant returns the parametric constant of row r (spec section
// 4.3): the vector (M[r][1], coefficients of each parameter column,
// coefficients of each context-div column), explicitly excluding the big-M
// coefficient. A parameter or div that has itself become basic (possible
// only via the unit-coefficient elimination path in AddEquality) no longer
// occupies a column and so contributes no term here.
func (t *Tableau) ParametricConstant(r int) Row {
	off := t.off()
	row := t.M.Rows[r]
	out := NewRow(1 + t.NParam + t.NDiv)
	out[0].Set(row[1])
	for i := 0; i < t.NParam; i++ {
		if !t.Var[i].IsRow {
			out[1+i].Set(row[off+t.Var[i].Index])
		}
	}
	probEnd := t.NVar - t.NDiv
	for i := 0; i < t.NDiv; i++ {
		vi := probEnd + i
		if !t.Var[vi].IsRow {
			out[1+t.NParam+i].Set(row[off+t.Var[vi].Index])
		}
	}
	return out
}

// evalConstraint evaluates row (shape [const, coef_1, ..., coef_n]) at
// sample (shape [v_1, ..., v_n]).
func evalConstraint(row, sample Row) *big.Int {
	sum := new(big.Int).Set(row[0])
	for i, c := range row[1:] {
		if c.Sign() == 0 {
			continue
		}
		sum.Add(sum, new(big.Int).Mul(c, sample[i]))
	}
	return sum
}

// DropSample moves the live sample at position p to the front of the
// dropped region [0, NOutside) (spec section 4.3, "Sample maintenance").
func (t *Tableau) DropSample(p int) {
	j := t.NOutside
	if j != p {
		t.Samples.SwapRows(j, p)
	}
	t.Journal.push(undoEntry{kind: UndoDropSample, row: j, col: p})
	t.NOutside++
}

// appendSample appends point as a new live sample, journaled so a later
// rollback removes it again.
func (t *Tableau) appendSample(point Row) {
	t.Samples.AppendRow(point)
	t.Journal.push(undoEntry{kind: UndoAppendSample})
}

// dropFailingSamples moves every live sample violating row (row >= 0, or
// row == 0 when eq is set) into the dropped prefix.
func (t *Tableau) dropFailingSamples(row Row, eq bool) {
	for p := t.NOutside; p < len(t.Samples.Rows); p++ {
		v := evalConstraint(row, t.Samples.Rows[p])
		ok := v.Sign() >= 0
		if eq {
			ok = v.Sign() == 0
		}
		if !ok {
			t.DropSample(p)
		}
	}
}

// addContextIneq adds row >= 0 to both the context tableau and its bset
// shadow, dropping samples it invalidates, and restores lex-min.
func (c *Context) addContextIneq(row Row) error {
	t := c.T
	t.BSet.AppendIneq(CloneRow(row))
	t.Journal.push(undoEntry{kind: UndoAddBsetIneq, bset: t.BSet})
	t.dropFailingSamples(row, false)
	t.AddInequality(row)
	return RestoreLexmin(t)
}

// addContextEq adds row == 0 to both the context tableau and its bset
// shadow, dropping samples it invalidates.
func (c *Context) addContextEq(row Row) error {
	t := c.T
	t.BSet.AppendEq(CloneRow(row))
	t.Journal.push(undoEntry{kind: UndoAddBsetEq, bset: t.BSet})
	t.dropFailingSamples(row, true)
	return t.AddEquality(row)
}

// currentPoint reads off the tableau's current variable values, valid once
// every row is integral (d == 1).
func (t *Tableau) currentPoint() Row {
	pt := NewRow(t.NVar)
	for vi := 0; vi < t.NVar; vi++ {
		if t.Var[vi].IsRow {
			r := t.Var[vi].Index
			d, c0, _ := t.RowValue(r)
			pt[vi].Quo(c0, d)
		}
	}
	return pt
}

// IsFeasible implements context_is_feasible (spec section 4.3): it snapshots
// the context, runs cut_to_integer_lexmin, and, if a finite integer point is
// found, records it as a new (permanent) sample before rolling back every
// other mutation the cut closure made.
func (c *Context) IsFeasible() (bool, error) {
	t := c.T
	if t.Empty {
		return false, nil
	}
	snap := t.Journal.Snapshot()
	if err := CutToIntegerLexmin(t); err != nil {
		t.Rollback(snap)
		return false, err
	}
	feasible := !t.Empty
	var point Row
	if feasible {
		point = t.currentPoint()
	}
	t.Rollback(snap)
	if feasible {
		t.appendSample(point)
	}
	return feasible, nil
}

// testFeasible reports whether row >= 0 is satisfiable together with
// everything already in the context, without permanently adding it.
func (c *Context) testFeasible(row Row) (bool, error) {
	t := c.T
	snap := t.Journal.Snapshot()
	defer t.Rollback(snap)
	if err := c.addContextIneq(row); err != nil {
		return false, err
	}
	return c.IsFeasible()
}

// RowSign implements row_sign(T, sol, r) of spec section 4.3, caching the
// result on main.RowSign[r].
func (c *Context) RowSign(main *Tableau, r int) (RowSign, error) {
	return c.classify(main, r, true)
}

func (t *Tableau) cacheRowSign(r int, s RowSign) {
	if t.RowSign != nil && r < len(t.RowSign) {
		t.RowSign[r] = s
	}
}

func (t *Tableau) hasPivotColumn(r int) bool {
	_, ok := t.lexPivotCol(r)
	return ok
}

// isStrictOverIntegers reports whether the gcd of pc's coefficients (index
// 1 on) fails to divide its constant term -- "the inequality is strict over
// integers" of spec section 4.3 step 4's criticality adjustment.
func isStrictOverIntegers(pc Row) bool {
	g := gcdSlice(pc[1:])
	if g.Sign() == 0 {
		return false
	}
	return new(big.Int).Mod(new(big.Int).Abs(pc[0]), g).Sign() != 0
}

// classify performs the six-step algorithm of spec section 4.3; cache
// controls whether the result is written back to main.RowSign (BestSplit
// needs a read-only probe that does not pollute the real cache with
// speculative splits).
func (c *Context) classify(main *Tableau, r int, cache bool) (RowSign, error) {
	if main.RowSign != nil && r < len(main.RowSign) && main.RowSign[r] != SignUnknown {
		return main.RowSign[r], nil
	}
	if s := main.rowObviousSign(r); s != SignUnknown {
		if cache {
			main.cacheRowSign(r, s)
		}
		return s, nil
	}
	pc := main.ParametricConstant(r)
	for other := main.NRedundant; other < main.NRow; other++ {
		if other == r || main.RowSign == nil || other >= len(main.RowSign) {
			continue
		}
		os := main.RowSign[other]
		if os == SignUnknown {
			continue
		}
		if main.HasM && main.M.Rows[other][2].Cmp(main.M.Rows[r][2]) != 0 {
			continue
		}
		if rowsEqual(pc, main.ParametricConstant(other)) {
			if cache {
				main.cacheRowSign(r, os)
			}
			return os, nil
		}
	}
	guess := SignUnknown
	mixed := false
	for p := c.T.NOutside; p < len(c.T.Samples.Rows); p++ {
		s := evalConstraint(pc, c.T.Samples.Rows[p]).Sign()
		if s == 0 {
			continue
		}
		cur := SignPos
		if s < 0 {
			cur = SignNeg
		}
		switch {
		case guess == SignUnknown:
			guess = cur
		case guess != cur:
			mixed = true
		}
	}
	if mixed {
		guess = SignAny
	}
	if guess == SignUnknown && (!main.hasPivotColumn(r) || isStrictOverIntegers(pc)) {
		guess = SignPos
	}
	if guess == SignUnknown || guess == SignPos {
		neg := Row(negateRow(pc))
		neg[0].Sub(neg[0], bigOne)
		feasible, err := c.testFeasible(neg)
		if err != nil {
			return SignUnknown, err
		}
		if !feasible {
			if cache {
				main.cacheRowSign(r, SignPos)
			}
			return SignPos, nil
		}
		if guess == SignUnknown {
			guess = SignNeg
		} else {
			guess = SignAny
		}
	}
	if guess == SignNeg {
		pos := CloneRow(pc)
		pos[0].Sub(pos[0], bigOne)
		feasible, err := c.testFeasible(pos)
		if err != nil {
			return SignUnknown, err
		}
		if feasible {
			guess = SignAny
		}
	}
	if cache {
		main.cacheRowSign(r, guess)
	}
	return guess, nil
}

// SplitTieBreak selects which row BestSplit prefers when two candidates
// resolve the same number of other any-rows to a definite sign (spec
// section 4.3, "Splitting"). The zero value, TieBreakEarliest, keeps the
// earliest such row and is the default.
type SplitTieBreak int

const (
	// TieBreakEarliest keeps the first-seen best score, matching the
	// teacher's earliest-wins tie-breaking style elsewhere in this core.
	TieBreakEarliest SplitTieBreak = iota
	// TieBreakLatest keeps the most recently seen best score instead.
	TieBreakLatest
)

// BestSplit selects, among rows classified any, the one whose positive
// half resolves the most other any-rows to a definite sign (spec section
// 4.3, "Splitting"), breaking ties per policy.
func (c *Context) BestSplit(main *Tableau, anyRows []int, policy SplitTieBreak) (int, error) {
	best, bestScore := -1, -1
	for _, r := range anyRows {
		pc := main.ParametricConstant(r)
		snap := c.T.Journal.Snapshot()
		if err := c.addContextIneq(pc); err != nil {
			c.T.Rollback(snap)
			return -1, err
		}
		score := 0
		for _, other := range anyRows {
			if other == r {
				continue
			}
			s, err := c.classify(main, other, false)
			if err != nil {
				c.T.Rollback(snap)
				return -1, err
			}
			if s != SignAny {
				score++
			}
		}
		c.T.Rollback(snap)
		better := score > bestScore
		if score == bestScore && policy == TieBreakLatest {
			better = true
		}
		if better {
			bestScore = score
			best = r
		}
	}
	return best, nil
}

// SplitPositive clones main and c's tableau for the positive half of a
// split on row r's inequality (spec section 4.3, "Splitting"): the clone
// gets e >= 0 added to its own cloned context, with row r pre-classified
// pos. The context is copied, not snapshotted or journaled. The caller recurses into the returned pair; the original main/c are
// left untouched for the caller to mutate into the negative half next
// (SplitNegative).
func (c *Context) SplitPositive(main *Tableau, r int) (*Tableau, *Context, error) {
	pc := main.ParametricConstant(r)
	cloneMain := main.Clone()
	cloneCtx := &Context{T: c.T.Clone()}
	if err := cloneCtx.addContextIneq(pc); err != nil {
		return nil, nil, err
	}
	cloneMain.cacheRowSign(r, SignPos)
	return cloneMain, cloneCtx, nil
}

// SplitNegative mutates main/c in place into the negative half of a split
// on row r: adds -e-1 >= 0 to the context and classifies r neg.
func (c *Context) SplitNegative(main *Tableau, r int) error {
	pc := main.ParametricConstant(r)
	neg := Row(negateRow(pc))
	neg[0].Sub(neg[0], bigOne)
	if err := c.addContextIneq(neg); err != nil {
		return err
	}
	main.cacheRowSign(r, SignNeg)
	return nil
}
