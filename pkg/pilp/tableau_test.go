package pilp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableauLaysOutParamsThenProblemVars(t *testing.T) {
	tb := NewTableau(2, 3, true, false)
	require.Len(t, tb.Var, 5)
	for i := 0; i < 5; i++ {
		assert.False(t, tb.Var[i].IsRow, "var %d starts non-basic", i)
		assert.Equal(t, i, tb.Var[i].Index)
		assert.Equal(t, i >= 2, tb.Var[i].IsNonneg, "var %d nonneg flag", i)
	}
	assert.Equal(t, 5, tb.NVar)
	assert.Equal(t, 5, tb.NCol)
	assert.Equal(t, 3, tb.off(), "hasM pushes the coefficient block out by one")
	assert.Equal(t, tb.off()+5, tb.M.NCol)
}

func TestTableauOffWithoutM(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	assert.Equal(t, 2, tb.off())
}

func TestAddRowMaterializesAgainstOriginColumns(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	// x >= 0 over (n, x): coeffs = [const=0, n-coef=0, x-coef=1]. Every
	// variable starts non-basic, so materialize should pass the row
	// through into column form essentially unchanged.
	coeffs := []*big.Int{bi(0), bi(0), bi(1)}
	rIdx, cIdx := tb.AddRow(coeffs, RowIneq)
	assert.Equal(t, 0, rIdx)
	assert.Equal(t, 0, cIdx)
	assert.Equal(t, 1, tb.NRow)

	off := tb.off()
	rr := tb.M.Rows[rIdx]
	assert.Equal(t, bi(1), rr[0], "denominator")
	assert.Equal(t, bi(0), rr[1], "constant")
	assert.Equal(t, bi(0), rr[off+0], "n column untouched")
	assert.Equal(t, bi(1), rr[off+1], "x column carries the coefficient")
	assert.True(t, tb.Con[cIdx].IsNonneg)
}

func TestAddRowEqualitySlackIsNotNonneg(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	coeffs := []*big.Int{bi(0), bi(-1), bi(2)}
	_, cIdx := tb.AddRow(coeffs, RowEq)
	assert.False(t, tb.Con[cIdx].IsNonneg)
}

func TestPivotIsInvolution(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	tb.AddRow([]*big.Int{bi(0), bi(1), bi(-1)}, RowIneq) // n - x >= 0

	before := make([]Row, len(tb.M.Rows))
	for i, r := range tb.M.Rows {
		before[i] = CloneRow(r)
	}
	col := tb.ColumnOf(1) // x's column
	require.GreaterOrEqual(t, col, 0)
	require.NoError(t, tb.Pivot(0, col))
	require.NoError(t, tb.Pivot(0, col)) // same (row, col) location again

	// two pivots at the same physical (row, col) location are an
	// involution: the tableau returns to its original content exactly.
	for i, r := range before {
		assert.Equal(t, r, tb.M.Rows[i], "row %d", i)
	}
}

func TestPivotZeroElementFails(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	tb.AddRow([]*big.Int{bi(0), bi(0), bi(1)}, RowIneq)
	// column 0 (the parameter n) has a zero coefficient in this row.
	err := tb.Pivot(0, 0)
	assert.Error(t, err)
}

func TestKillColumnFreezesVariable(t *testing.T) {
	tb := NewTableau(1, 2, false, false)
	tb.KillColumn(1)
	assert.Equal(t, 1, tb.NDead)
	owner := tb.colOwner[0]
	require.True(t, owner.isVar)
	assert.True(t, tb.Var[owner.idx].Frozen)
}

func TestAllocVarAndAllocDiv(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	before := tb.NVar
	vi := tb.AllocVar(true)
	assert.Equal(t, before, vi)
	assert.Equal(t, before+1, tb.NVar)
	assert.False(t, tb.Var[vi].IsRow)

	di := tb.AllocDiv(true)
	assert.Equal(t, 1, tb.NDiv)
	assert.Equal(t, di, tb.NVar-1)
}

func TestCloneIsIndependent(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	tb.AddRow([]*big.Int{bi(0), bi(0), bi(1)}, RowIneq)
	clone := tb.Clone()

	clone.M.Rows[0][1].SetInt64(42)
	assert.NotEqual(t, tb.M.Rows[0][1], clone.M.Rows[0][1])

	clone.AllocVar(true)
	assert.NotEqual(t, tb.NVar, clone.NVar)
}

func TestRowValueReportsDenomAndConstant(t *testing.T) {
	tb := NewTableau(1, 1, true, false)
	tb.AddRowM([]*big.Int{bi(3), bi(0), bi(1)}, big.NewInt(5), RowIneq)
	d, c0, mCoef := tb.RowValue(0)
	assert.Equal(t, bi(1), d)
	assert.Equal(t, bi(3), c0)
	require.NotNil(t, mCoef)
	assert.Equal(t, bi(5), mCoef)
}
