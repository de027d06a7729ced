package pilp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bi(n int64) *big.Int { return big.NewInt(n) }

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{0, 5, 0},
		{6, 3, 2},
		{-6, 3, -2},
	}
	for _, c := range cases {
		got := floorDiv(bi(c.a), bi(c.b))
		assert.Equal(t, bi(c.want), got, "floorDiv(%d,%d)", c.a, c.b)
	}
}

func TestCeilDiv(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{7, 2, 4},
		{-7, 2, -3},
		{7, -2, -3},
		{-7, -2, 4},
		{0, 5, 0},
		{6, 3, 2},
	}
	for _, c := range cases {
		got := ceilDiv(bi(c.a), bi(c.b))
		assert.Equal(t, bi(c.want), got, "ceilDiv(%d,%d)", c.a, c.b)
	}
}

func TestFloorMod(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{7, 2, 1},
		{-7, 2, 1},
		{7, -2, -1},
		{-7, -2, -1},
		{6, 3, 0},
	}
	for _, c := range cases {
		got := floorMod(bi(c.a), bi(c.b))
		assert.Equal(t, bi(c.want), got, "floorMod(%d,%d)", c.a, c.b)
	}
}

func TestFloorDivModIdentity(t *testing.T) {
	for _, a := range []int64{-11, -5, -1, 0, 1, 5, 11} {
		for _, b := range []int64{-3, -1, 2, 5} {
			q := floorDiv(bi(a), bi(b))
			r := floorMod(bi(a), bi(b))
			recon := new(big.Int).Add(new(big.Int).Mul(q, bi(b)), r)
			assert.Equal(t, bi(a), recon, "a=%d b=%d", a, b)
		}
	}
}

func TestGcdAbs(t *testing.T) {
	assert.Equal(t, bi(6), gcdAbs(bi(12), bi(18)))
	assert.Equal(t, bi(6), gcdAbs(bi(-12), bi(18)))
	assert.Equal(t, bi(5), gcdAbs(bi(0), bi(-5)))
	assert.Equal(t, bi(0), gcdAbs(bi(0), bi(0)))
}

func TestGcdSlice(t *testing.T) {
	assert.Equal(t, bi(4), gcdSlice([]*big.Int{bi(8), bi(12), bi(-20)}))
	assert.Equal(t, bi(0), gcdSlice(nil))
	assert.Equal(t, bi(7), gcdSlice([]*big.Int{bi(7)}))
}

func TestFracPart(t *testing.T) {
	assert.Equal(t, bi(1), fracPart(bi(7), bi(2)))
	assert.Equal(t, bi(0), fracPart(bi(6), bi(3)))
	assert.Equal(t, bi(1), fracPart(bi(-7), bi(2)))
}
