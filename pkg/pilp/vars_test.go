package pilp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowSignString(t *testing.T) {
	assert.Equal(t, "pos", SignPos.String())
	assert.Equal(t, "neg", SignNeg.String())
	assert.Equal(t, "any", SignAny.String())
	assert.Equal(t, "unknown", SignUnknown.String())
}

func TestVarRecordZeroValueIsNonBasicColumn(t *testing.T) {
	var v VarRecord
	assert.False(t, v.IsRow)
	assert.Equal(t, 0, v.Index)
	assert.False(t, v.Frozen)
}

func TestNewTableauAssignsVarKindByPartition(t *testing.T) {
	tb := NewTableau(1, 2, false, false) // n, x, y
	assert.Equal(t, KindParam, tb.Var[0].Kind)
	assert.Equal(t, KindProblem, tb.Var[1].Kind)
	assert.Equal(t, KindProblem, tb.Var[2].Kind)
}

func TestAllocVarMarksKindDiv(t *testing.T) {
	tb := NewTableau(1, 1, false, false)
	vi := tb.AllocVar(true)
	assert.Equal(t, KindDiv, tb.Var[vi].Kind)
	assert.False(t, tb.isProblemVar(vi))
}
