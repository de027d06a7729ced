package pilp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValueNormalizes(t *testing.T) {
	v := NewValue(bi(4), bi(6))
	assert.Equal(t, bi(2), v.Num)
	assert.Equal(t, bi(3), v.Den)
}

func TestNewValueNegativeDenominatorMovesSignToNumerator(t *testing.T) {
	v := NewValue(bi(3), bi(-4))
	assert.Equal(t, bi(-3), v.Num)
	assert.Equal(t, bi(4), v.Den)
}

func TestNewValueZeroNumeratorCanonicalizes(t *testing.T) {
	v := NewValue(bi(0), bi(7))
	assert.Equal(t, bi(0), v.Num)
	assert.Equal(t, bi(1), v.Den)
}

func TestNewValueZeroDenominatorPanics(t *testing.T) {
	assert.Panics(t, func() { NewValue(bi(1), bi(0)) })
}

func TestNonFiniteSentinels(t *testing.T) {
	assert.True(t, NaNValue().IsNaN())
	assert.True(t, PosInfValue().IsInf())
	assert.True(t, NegInfValue().IsInf())
	assert.False(t, NewValueFromInt(5).IsNaN())
	assert.True(t, NewValueFromInt(5).IsFinite())
	assert.False(t, PosInfValue().IsFinite())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NaN", NaNValue().String())
	assert.Equal(t, "+Inf", PosInfValue().String())
	assert.Equal(t, "-Inf", NegInfValue().String())
	assert.Equal(t, "5", NewValueFromInt(5).String())
	assert.Equal(t, "2/3", NewValue(bi(4), bi(6)).String())
}
