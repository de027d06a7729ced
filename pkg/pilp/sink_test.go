package pilp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputExprMinModeNonBasicIsZero(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	out, err := tb.OutputExpr(1, false)
	require.NoError(t, err)
	assert.Equal(t, bigOne, out.Den)
	for _, c := range out.Num {
		assert.Equal(t, 0, c.Sign())
	}
}

func TestOutputExprMaxModeNonBasicIsUnbounded(t *testing.T) {
	tb := NewTableau(1, 1, true, false)
	_, err := tb.OutputExpr(1, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOutputExprMinModeBasicReadsParametricConstant(t *testing.T) {
	tb := NewTableau(0, 1, false, false)
	tb.AddInequality(row(-5, 1)) // x - 5 >= 0
	require.NoError(t, RestoreLexmin(tb))
	out, err := tb.OutputExpr(0, false)
	require.NoError(t, err)
	assert.Equal(t, bi(1), out.Den)
	assert.Equal(t, row(5), out.Num)
}

func TestOutputExprMaxModeRejectsUncancelledM(t *testing.T) {
	tb := NewTableau(0, 1, true, false)
	tb.AddInequalityM(row(-5, 1), bi(0)) // x - 5 >= 0, M contribution 0
	require.NoError(t, RestoreLexmin(tb))
	require.GreaterOrEqual(t, tb.RowOf(0), 0, "x must be basic to reach the M-cancellation check")
	_, err := tb.OutputExpr(0, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRelationCollector(t *testing.T) {
	c := NewRelationCollector()
	require.NoError(t, c.Add(BasicMap{}))
	require.NoError(t, c.Free(&BasicSet{}))
	rel := c.Relation()
	assert.Len(t, rel.Pieces, 1)
	assert.Len(t, rel.Empty, 1)
}

func TestCallbackCollectorInvokesCallbacks(t *testing.T) {
	var pieces int
	var empties int
	c := &CallbackCollector{
		OnPiece: func(BasicMap) error { pieces++; return nil },
		OnEmpty: func(*BasicSet) error { empties++; return nil },
	}
	require.NoError(t, c.Add(BasicMap{}))
	require.NoError(t, c.Free(&BasicSet{}))
	assert.Equal(t, 1, pieces)
	assert.Equal(t, 1, empties)
}

func TestCallbackCollectorNilCallbacksAreNoop(t *testing.T) {
	c := &CallbackCollector{}
	assert.NoError(t, c.Add(BasicMap{}))
	assert.NoError(t, c.Free(&BasicSet{}))
}
