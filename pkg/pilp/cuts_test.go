package pilp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRowDivisibility(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	off := tb.off()
	r := NewRow(off + tb.NCol)
	r[0].SetInt64(2)
	r[1].SetInt64(4)     // constant 4, divisible by 2
	r[off+0].SetInt64(3) // parameter column, not divisible by 2
	r[off+1].SetInt64(6) // problem-var column, divisible by 2
	tb.M.AppendRow(r)

	iCst, iPar, iVar := classifyRow(tb, 0, bi(2))
	assert.True(t, iCst)
	assert.False(t, iPar)
	assert.True(t, iVar)
}

func TestNextCutSkipsAlreadyIntegralRows(t *testing.T) {
	tb := NewTableau(0, 1, false, false)
	tb.AddInequality(row(-5, 1)) // integral denominator 1
	require.NoError(t, RestoreLexmin(tb))
	r, _, _, _ := nextCut(tb)
	assert.Equal(t, -1, r, "row with denominator 1 is never a cut candidate")
}

func TestCutToIntegerLexminNoOpWhenAlreadyIntegral(t *testing.T) {
	tb := NewTableau(0, 1, false, false)
	tb.AddInequality(row(-5, 1))
	require.NoError(t, RestoreLexmin(tb))
	require.NoError(t, CutToIntegerLexmin(tb))
	assert.False(t, tb.Empty)
	d, c0, _ := tb.RowValue(tb.RowOf(0))
	assert.Equal(t, bi(1), d)
	assert.Equal(t, bi(5), c0)
}

func TestGetDivDedupsEqualDivisions(t *testing.T) {
	main := NewTableau(1, 1, true, false)
	ctx := NewContext(1)
	div := DivDef{Expr: row(0, 1), Denom: bi(2)}

	qMain1, qCtx1, err := GetDiv(main, ctx, div)
	require.NoError(t, err)

	qMain2, qCtx2, err := GetDiv(main, ctx, DivDef{Expr: row(0, 1), Denom: bi(2)})
	require.NoError(t, err)

	assert.Equal(t, qMain1, qMain2, "an equal division must be reused, not re-introduced")
	assert.Equal(t, qCtx1, qCtx2)
	assert.Equal(t, 1, main.NDiv)
	assert.Equal(t, 1, len(ctx.T.BSet.Divs))
}

func TestGetDivIntroducesFloorConstraints(t *testing.T) {
	main := NewTableau(1, 1, true, false)
	ctx := NewContext(1)
	div := DivDef{Expr: row(0, 1), Denom: bi(2)} // q = floor(n/2)

	_, _, err := GetDiv(main, ctx, div)
	require.NoError(t, err)
	assert.Equal(t, 1, main.NDiv)
	assert.Equal(t, 1, ctx.T.NDiv)
	// GetDiv enforces q via two inequalities: n - 2q >= 0 and 2q - n + 1 >= 0.
	assert.Len(t, ctx.T.BSet.Divs, 1)
	assert.Equal(t, bi(2), ctx.T.BSet.Divs[0].Denom)
	require.Len(t, ctx.T.BSet.Ineq, 2)
	assert.Equal(t, row(0, 1, -2), ctx.T.BSet.Ineq[0])
	assert.Equal(t, row(1, -1, 2), ctx.T.BSet.Ineq[1])
}
