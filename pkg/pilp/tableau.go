package pilp

import (
	"fmt"
	"math/big"
)

// entityRef names one tracked entity: either a variable (index into
// Tableau.Var) or a constraint slack (index into Tableau.Con).
type entityRef struct {
	isVar bool
	idx   int
}

// RowKind distinguishes an inequality's slack (constrained >= 0) from an
// equality's slack (unconstrained) when AddRow creates the new Con record.
type RowKind int

const (
	RowIneq RowKind = iota
	RowEq
)

// Tableau is the revised-simplex matrix of spec section 3/4.1: a dense
// arbitrary-precision matrix with sample value, basis, row/column variable
// mapping, undo stack, and an optional symbolic big-M column.
//
// Row layout of M: [d, c0, (M-coef?), a_1, ..., a_NCol]. off = 2 + (HasM ?
// 1 : 0) is the index of the first coefficient column, exactly as spec
// section 3 defines it.
type Tableau struct {
	NRow, NCol int
	NVar       int // NParam + n_problem + NDiv
	NParam     int
	NDiv       int
	NDead      int // frozen (killed) columns, kept at the front of the coefficient block
	NRedundant int // rows proven redundant, kept at the front of M.Rows

	HasM     bool // symbolic big-parameter column present at M row position 2
	Rational bool // stop after the lex-min rational vertex; cuts are skipped
	Empty    bool // terminal infeasibility flag

	Var []VarRecord
	Con []ConRecord

	// RowSign caches the row-sign classification of spec section 4.3.
	// Only meaningful in parametric mode (HasM && !Rational); len == NRow.
	RowSign []RowSign

	M *Matrix

	colOwner []entityRef // len NCol: which Var/Con is non-basic in each coefficient column
	rowOwner []entityRef // len NRow: which Var/Con is basic in each row

	// Samples holds integer points known to satisfy every constraint
	// currently added to this tableau (meaningful for context tableaux;
	// nil for main tableaux). Each row has NVar entries, one per tracked
	// variable in Var order. NOutside marks the prefix of samples dropped
	// by the current constraint stack (spec section 3, "samples").
	Samples  *Matrix
	NOutside int

	// BSet is the shadow basic-set for a context tableau; nil for main
	// tableaux (spec section 3, "bset: shadow basic-set").
	BSet *BasicSet

	Journal *Journal
}

// off returns the index of the first coefficient column in a row.
func (t *Tableau) off() int {
	if t.HasM {
		return 3
	}
	return 2
}

// String formats a one-line shape summary for diagnostics, matching the
// teacher's give-every-exported-type-a-String() convention; it reports
// dimensions and status rather than the full matrix, which is exact but
// not legible at any non-trivial size.
func (t *Tableau) String() string {
	status := "feasible"
	if t.Empty {
		status = "empty"
	}
	return fmt.Sprintf("Tableau{rows=%d(%d redundant) cols=%d(%d dead) nparam=%d ndiv=%d hasM=%v rational=%v status=%s}",
		t.NRow, t.NRedundant, t.NCol, t.NDead, t.NParam, t.NDiv, t.HasM, t.Rational, status)
}

// NewTableau allocates an empty tableau tracking nParam parameters followed
// by nProb problem variables (no divisions yet). Every tracked variable
// starts non-basic in its own column, i.e. the initial sample point is the
// origin. hasM enables the symbolic big-parameter column (spec section 9,
// "Big-M as symbolic column").
func NewTableau(nParam, nProb int, hasM, rational bool) *Tableau {
	nVar := nParam + nProb
	t := &Tableau{
		NVar:     nVar,
		NParam:   nParam,
		HasM:     hasM,
		Rational: rational,
		M:        NewMatrix(0),
		Journal:  &Journal{},
	}
	t.Var = make([]VarRecord, nVar)
	t.colOwner = make([]entityRef, nVar)
	for i := 0; i < nVar; i++ {
		kind := KindProblem
		if i < nParam {
			kind = KindParam
		}
		t.Var[i] = VarRecord{IsRow: false, Index: i, IsNonneg: i >= nParam, Kind: kind}
		t.colOwner[i] = entityRef{isVar: true, idx: i}
	}
	t.NCol = nVar
	t.M.NCol = t.off() + nVar
	if hasM && !rational {
		t.RowSign = []RowSign{}
	}
	return t
}

func (t *Tableau) locationOf(e entityRef) (isRow bool, idx int) {
	if e.isVar {
		return t.Var[e.idx].IsRow, t.Var[e.idx].Index
	}
	return t.Con[e.idx].IsRow, t.Con[e.idx].Index
}

func (t *Tableau) setLocation(e entityRef, isRow bool, idx int) {
	if e.isVar {
		t.Var[e.idx].IsRow = isRow
		t.Var[e.idx].Index = idx
	} else {
		t.Con[e.idx].IsRow = isRow
		t.Con[e.idx].Index = idx
	}
}

func (t *Tableau) isNonneg(e entityRef) bool {
	if e.isVar {
		return t.Var[e.idx].IsNonneg
	}
	return t.Con[e.idx].IsNonneg
}

// swapRows exchanges rows i and j of M along with their owner and row-sign
// bookkeeping. Used by MarkRedundant/DropSample and their undo.
func (t *Tableau) swapRows(i, j int) {
	if i == j {
		return
	}
	t.M.SwapRows(i, j)
	t.rowOwner[i], t.rowOwner[j] = t.rowOwner[j], t.rowOwner[i]
	t.setLocation(t.rowOwner[i], true, i)
	t.setLocation(t.rowOwner[j], true, j)
	if t.RowSign != nil {
		t.RowSign[i], t.RowSign[j] = t.RowSign[j], t.RowSign[i]
	}
}

// MarkRedundant swaps row r to the front of the redundant region and
// records the swap on the journal (spec section 4.1, "Redundancy
// detection"). r must not already be inside the redundant region.
func (t *Tableau) MarkRedundant(r int) {
	j := t.NRedundant
	t.swapRows(j, r)
	t.Journal.push(undoEntry{kind: UndoMarkRedundant, row: j, col: r})
	t.NRedundant++
}

// rawPivot performs the classical denominator-convention simplex pivot
// exchanging the basic variable of row r with the non-basic variable of
// column c (spec section 4.1, "Pivot(row r, col c)"). It is also how
// rollback undoes a prior pivot: pivoting twice at the same (r, c)
// location is an involution.
func (t *Tableau) rawPivot(r, c int) error {
	off := t.off()
	cc := off + c
	e := new(big.Int).Set(t.M.Rows[r][cc])
	if e.Sign() == 0 {
		return internalInvariant("pivot", "pivot element is zero")
	}
	width := off + t.NCol
	oldPiv := t.M.Rows[r] // stable reference; not mutated until we overwrite t.M.Rows[r] at the end
	dr := new(big.Int).Set(oldPiv[0])

	for i := range t.M.Rows {
		if i == r {
			continue
		}
		row := t.M.Rows[i]
		f := row[cc]
		if f.Sign() == 0 {
			continue
		}
		newRow := NewRow(width)
		newRow[0].Mul(e, row[0])
		for pos := 1; pos < width; pos++ {
			if pos == cc {
				newRow[pos].Mul(f, dr)
			} else {
				newRow[pos].Sub(new(big.Int).Mul(e, row[pos]), new(big.Int).Mul(f, oldPiv[pos]))
			}
		}
		ScaleDownByGCD(newRow)
		t.M.Rows[i] = newRow
	}

	newPiv := NewRow(width)
	newPiv[0].Set(e)
	for pos := 1; pos < width; pos++ {
		if pos == cc {
			newPiv[pos].Set(dr)
		} else {
			newPiv[pos].Neg(oldPiv[pos])
		}
	}
	ScaleDownByGCD(newPiv)
	t.M.Rows[r] = newPiv

	enter := t.colOwner[c]
	leave := t.rowOwner[r]
	t.rowOwner[r] = enter
	t.colOwner[c] = leave
	t.setLocation(enter, true, r)
	t.setLocation(leave, false, c)
	return nil
}

// Pivot performs rawPivot and journals it for rollback.
func (t *Tableau) Pivot(r, c int) error {
	if err := t.rawPivot(r, c); err != nil {
		return err
	}
	t.Journal.push(undoEntry{kind: UndoPivotRowCol, row: r, col: c})
	return nil
}

// materialize rewrites an input constraint, given as integer coefficients
// coeffs (length 1+NVar: constant followed by one coefficient per tracked
// variable, in Var order), in terms of the tableau's currently non-basic
// variables -- "subtracting multiples of the rows of currently basic
// variables" (spec section 4.1, "Add row").
func (t *Tableau) materialize(coeffs []*big.Int) Row {
	return t.materializeM(coeffs, nil)
}

// materializeM is materialize plus an extra big-M contribution seeded into
// the row before any basic-row combination runs, so it gets scaled through
// the same combine arithmetic as the constant term. Used only to build a
// max-mode tableau (spec section 9, "x' = M - x"): see AddRowM.
func (t *Tableau) materializeM(coeffs []*big.Int, mConst *big.Int) Row {
	off := t.off()
	out := NewRow(off + t.NCol)
	out[0].SetInt64(1)
	out[1].Set(coeffs[0])
	if mConst != nil {
		out[2].Set(mConst)
	}
	for vi := 0; vi < t.NVar; vi++ {
		a := coeffs[1+vi]
		if a == nil || a.Sign() == 0 {
			continue
		}
		if t.Var[vi].IsRow {
			src := t.M.Rows[t.Var[vi].Index]
			combineRowInPlace(out, src, a)
		} else {
			col := off + t.Var[vi].Index
			out[col].Add(out[col], new(big.Int).Mul(a, out[0]))
		}
	}
	ScaleDownByGCD(out)
	return out
}

// combineRowInPlace performs out += coeff * src, where both rows share the
// [d, c0, (M?), coefficients...] layout and may have different
// denominators.
func combineRowInPlace(out, src Row, coeff *big.Int) {
	scaleOut := new(big.Int).Set(src[0])
	scaleSrc := new(big.Int).Mul(coeff, out[0])
	newD := new(big.Int).Mul(out[0], src[0])
	for i := 1; i < len(out); i++ {
		out[i].Mul(out[i], scaleOut)
		out[i].Add(out[i], new(big.Int).Mul(src[i], scaleSrc))
	}
	out[0] = newD
}

// growColumns appends n fresh non-basic columns, one per entity in refs,
// extending M and colOwner.
func (t *Tableau) growColumns(refs []entityRef) {
	t.M.ExtendColumns(len(refs))
	t.colOwner = append(t.colOwner, refs...)
	t.NCol += len(refs)
}

// AllocVar appends one new tracked variable, non-basic in a fresh column,
// and journals the allocation.
func (t *Tableau) AllocVar(nonneg bool) int {
	idx := len(t.Var)
	// AllocDiv is the only production caller; every variable allocated
	// after construction is a context-shared integer division (spec
	// section 3, n_div).
	t.Var = append(t.Var, VarRecord{IsRow: false, Index: t.NCol, IsNonneg: nonneg, Kind: KindDiv})
	t.growColumns([]entityRef{{isVar: true, idx: idx}})
	t.NVar++
	t.Journal.push(undoEntry{kind: UndoAllocVar})
	return idx
}

// ReplaceRow overwrites row r's content wholesale (used by the split-div
// cut of spec section 4.4, which rewrites a row in place rather than
// appending a new one), journaling the old content for rollback.
func (t *Tableau) ReplaceRow(r int, newRow Row) {
	old := t.M.Rows[r]
	t.M.Rows[r] = newRow
	t.Journal.push(undoEntry{kind: UndoReplaceRow, row: r, oldRow: old})
}

// AllocDiv appends one new integer-division variable at the tail of the
// context-shared block (spec section 4.4, "Introducing an integer
// division"): it behaves like AllocVar but also advances NDiv, so the
// problem-variable range [NParam, NVar-NDiv) the lex-min driver scans
// never includes it.
func (t *Tableau) AllocDiv(nonneg bool) int {
	idx := t.AllocVar(nonneg)
	t.NDiv++
	t.Journal.push(undoEntry{kind: UndoAllocDiv})
	return idx
}

// AddRow materializes coeffs (length 1+NVar) against the current basis and
// appends it as a new row, owned by a freshly allocated constraint slack
// (spec section 4.1, "Add row"). For RowIneq the slack is constrained
// non-negative; for RowEq it is not. Returns the new row index and the new
// Con index.
func (t *Tableau) AddRow(coeffs []*big.Int, kind RowKind) (rowIdx, conIdx int) {
	row := t.materialize(coeffs)
	return t.appendOwnedRow(row, kind == RowIneq)
}

// AddRowM is AddRow with an extra big-M contribution (spec section 9,
// "x' = M - x"); see materializeM.
func (t *Tableau) AddRowM(coeffs []*big.Int, mConst *big.Int, kind RowKind) (rowIdx, conIdx int) {
	row := t.materializeM(coeffs, mConst)
	return t.appendOwnedRow(row, kind == RowIneq)
}

// AddCutRow appends an already-built, column-indexed row (width
// off()+NCol) directly, bypassing materialize. Gomory cuts need this: they
// must reproduce a row's existing non-basic column coefficients verbatim,
// including constraint-slack columns that materialize's named-variable
// coeffs interface has no way to address (spec section 4.4).
func (t *Tableau) AddCutRow(row Row, nonneg bool) (rowIdx, conIdx int) {
	return t.appendOwnedRow(row, nonneg)
}

// appendOwnedRow appends row as a new tableau row owned by a freshly
// allocated constraint slack, journaling the append.
func (t *Tableau) appendOwnedRow(row Row, nonneg bool) (rowIdx, conIdx int) {
	rowIdx = len(t.M.Rows)
	t.M.AppendRow(row)
	t.rowOwner = append(t.rowOwner, entityRef{})
	t.NRow++
	conIdx = len(t.Con)
	t.Con = append(t.Con, ConRecord{IsRow: true, Index: rowIdx, IsNonneg: nonneg})
	t.rowOwner[rowIdx] = entityRef{isVar: false, idx: conIdx}
	if t.RowSign != nil {
		t.RowSign = append(t.RowSign, SignUnknown)
	}
	t.Journal.push(undoEntry{kind: UndoAppendRow, row: rowIdx})
	return rowIdx, conIdx
}

// KillColumn freezes the variable currently non-basic in column c: the
// column is swapped into the dead region [0, NDead) and NDead incremented.
// Callers (the equality-elimination logic in lexmin.go) must pivot the
// variable into the dead column's former row *before* calling KillColumn
// if they mean to eliminate it; KillColumn itself only performs the
// freeze/bookkeeping half described in spec section 3 ("n_dead... columns
// frozen because their variable has been eliminated").
func (t *Tableau) KillColumn(c int) {
	j := t.NDead
	if j != c {
		t.swapColumns(j, c)
	}
	owner := t.colOwner[j]
	if owner.isVar {
		t.Var[owner.idx].Frozen = true
	}
	t.NDead++
}

// swapColumns exchanges coefficient columns i and j across every row.
func (t *Tableau) swapColumns(i, j int) {
	if i == j {
		return
	}
	off := t.off()
	ci, cj := off+i, off+j
	for _, r := range t.M.Rows {
		r[ci], r[cj] = r[cj], r[ci]
	}
	t.colOwner[i], t.colOwner[j] = t.colOwner[j], t.colOwner[i]
	t.setLocation(t.colOwner[i], false, i)
	t.setLocation(t.colOwner[j], false, j)
}

// RowValue returns the (constant, big-M coefficient or nil) pair for row r:
// the row's current sample value is constant/d (+ (mCoef/d)*M symbolically).
func (t *Tableau) RowValue(r int) (d, c0 *big.Int, mCoef *big.Int) {
	row := t.M.Rows[r]
	d = row[0]
	c0 = row[1]
	if t.HasM {
		mCoef = row[2]
	}
	return
}

// ColumnOf returns the column index a non-basic variable currently
// occupies, or -1 if it is basic.
func (t *Tableau) ColumnOf(vi int) int {
	if t.Var[vi].IsRow {
		return -1
	}
	return t.Var[vi].Index
}

// RowOf returns the row index a basic variable currently occupies, or -1
// if it is non-basic.
func (t *Tableau) RowOf(vi int) int {
	if !t.Var[vi].IsRow {
		return -1
	}
	return t.Var[vi].Index
}

// Clone deep-copies the tableau for the positive branch of a split (spec
// section 3, "Lifecycles": "cloned only when descending into the positive
// half of a split"). The clone gets its own fresh journal: undo history
// before a clone point is irrelevant to the clone's own future mutations.
func (t *Tableau) Clone() *Tableau {
	c := &Tableau{
		NRow: t.NRow, NCol: t.NCol, NVar: t.NVar, NParam: t.NParam, NDiv: t.NDiv,
		NDead: t.NDead, NRedundant: t.NRedundant, HasM: t.HasM, Rational: t.Rational,
		Empty: t.Empty, NOutside: t.NOutside, Journal: &Journal{},
	}
	c.Var = append([]VarRecord(nil), t.Var...)
	c.Con = append([]ConRecord(nil), t.Con...)
	if t.RowSign != nil {
		c.RowSign = append([]RowSign(nil), t.RowSign...)
	}
	c.colOwner = append([]entityRef(nil), t.colOwner...)
	c.rowOwner = append([]entityRef(nil), t.rowOwner...)
	c.M = &Matrix{NCol: t.M.NCol, Rows: make([]Row, len(t.M.Rows))}
	for i, r := range t.M.Rows {
		c.M.Rows[i] = CloneRow(r)
	}
	if t.Samples != nil {
		c.Samples = &Matrix{NCol: t.Samples.NCol, Rows: make([]Row, len(t.Samples.Rows))}
		for i, r := range t.Samples.Rows {
			c.Samples.Rows[i] = CloneRow(r)
		}
	}
	if t.BSet != nil {
		c.BSet = t.BSet.Copy()
	}
	return c
}
