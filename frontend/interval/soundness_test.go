package interval

import (
	"math"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

var interesting = []int64{
	math.MinInt64, math.MinInt64 + 1, -1 << 40, -1 << 32, -1 << 31, -1000, -17, -8, -3, -2, -1,
	0, 1, 2, 3, 4, 7, 8, 63, 64, 65, 1000, 1<<31 - 1, 1 << 32, 1 << 40, math.MaxInt64 - 1, math.MaxInt64,
}

func pickValue(r *rand.Rand) int64 {
	switch r.IntN(3) {
	case 0:
		return interesting[r.IntN(len(interesting))]
	case 1:
		return r.Int64N(41) - 20
	default:
		return int64(r.Uint64())
	}
}

func randomInterval(r *rand.Rand) Interval {
	a, b := pickValue(r), pickValue(r)
	if a > b {
		a, b = b, a
	}
	i := New(a, b)
	switch r.IntN(8) {
	case 0:
		i.Min, i.MinDefined = 0, false
	case 1:
		i.Max, i.MaxDefined = 0, false
	case 2:
		i = Everything()
	case 3:
		i = SinglePoint(a)
	}
	return i
}

// samplePoint picks a member of i, favouring its endpoints and small values.
func samplePoint(r *rand.Rand, i Interval) int64 {
	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	if i.MinDefined {
		lo = i.Min
	}
	if i.MaxDefined {
		hi = i.Max
	}
	switch r.IntN(4) {
	case 0:
		return lo
	case 1:
		return hi
	case 2:
		if v := interesting[r.IntN(len(interesting))]; i.Contains(v) {
			return v
		}
		fallthrough
	default:
		span := uint64(hi) - uint64(lo)
		if span == math.MaxUint64 {
			return int64(r.Uint64())
		}
		return int64(uint64(lo) + r.Uint64N(span+1))
	}
}

func containsBig(i Interval, v *big.Int) bool {
	if i.MinDefined && v.Cmp(big.NewInt(i.Min)) < 0 {
		return false
	}
	if i.MaxDefined && v.Cmp(big.NewInt(i.Max)) > 0 {
		return false
	}
	return true
}

// shiftBig is x * 2^s in infinite precision. Shift amounts are capped at
// 200 in either direction: past that, every int64 operand already shifts
// beyond the int64 range or down to 0 or -1.
func shiftBig(x int64, s *big.Int) *big.Int {
	n := s.Int64()
	if !s.IsInt64() || n > 200 || n < -200 {
		if s.Sign() > 0 {
			n = 200
		} else {
			n = -200
		}
	}
	if n >= 0 {
		return new(big.Int).Lsh(big.NewInt(x), uint(n))
	}
	return new(big.Int).Rsh(big.NewInt(x), uint(-n))
}

type binaryOracle struct {
	name   string
	op     func(a, b Interval) Interval
	oracle func(x, y int64) *big.Int
}

var binaryOracles = []binaryOracle{
	{"add", Add, func(x, y int64) *big.Int { return new(big.Int).Add(big.NewInt(x), big.NewInt(y)) }},
	{"sub", Sub, func(x, y int64) *big.Int { return new(big.Int).Sub(big.NewInt(x), big.NewInt(y)) }},
	{"mul", Mul, func(x, y int64) *big.Int { return new(big.Int).Mul(big.NewInt(x), big.NewInt(y)) }},
	{"div", Div, func(x, y int64) *big.Int {
		if y == 0 {
			return new(big.Int)
		}
		// big.Int.Div is Euclidean
		return new(big.Int).Div(big.NewInt(x), big.NewInt(y))
	}},
	{"mod", Mod, func(x, y int64) *big.Int {
		if y == 0 {
			return new(big.Int)
		}
		return new(big.Int).Mod(big.NewInt(x), big.NewInt(y))
	}},
	{"shl", Shl, func(x, y int64) *big.Int { return shiftBig(x, big.NewInt(y)) }},
	{"shr", Shr, func(x, y int64) *big.Int { return shiftBig(x, new(big.Int).Neg(big.NewInt(y))) }},
	{"min", Min, func(x, y int64) *big.Int { return big.NewInt(min(x, y)) }},
	{"max", Max, func(x, y int64) *big.Int { return big.NewInt(max(x, y)) }},
}

func TestBinaryOperatorsAreSound(t *testing.T) {
	for _, o := range binaryOracles {
		t.Run(o.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			for range 20_000 {
				a, b := randomInterval(r), randomInterval(r)
				res := o.op(a, b)
				for range 4 {
					x, y := samplePoint(r, a), samplePoint(r, b)
					want := o.oracle(x, y)
					if !containsBig(res, want) {
						t.Fatalf("%s(%v, %v) = %v does not contain %s(%d, %d) = %s", o.name, a, b, res, o.name, x, y, want)
					}
				}
			}
		})
	}
}

func TestUnaryOperatorsAreSound(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 20_000 {
		a := randomInterval(r)
		neg, abs := a.Neg(), a.Abs()
		for range 4 {
			x := samplePoint(r, a)
			n := new(big.Int).Neg(big.NewInt(x))
			assert.True(t, containsBig(neg, n), "-%v = %v does not contain %s", a, neg, n)
			m := new(big.Int).Abs(big.NewInt(x))
			assert.True(t, containsBig(abs, m), "abs(%v) = %v does not contain %s", a, abs, m)
		}
	}
}

func TestComparisonsAreConservative(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for range 20_000 {
		a, b := randomInterval(r), randomInterval(r)
		lt, le, eq, ne := a.Lt(b).Proven(), a.Le(b).Proven(), a.Eq(b).Proven(), a.Ne(b).Proven()
		for range 4 {
			x, y := samplePoint(r, a), samplePoint(r, b)
			if lt && !(x < y) || le && !(x <= y) || eq && x != y || ne && x == y {
				t.Fatalf("comparison of %v and %v proved something false for %d, %d", a, b, x, y)
			}
		}
	}
}

func TestIntersectionAndUnionAreSound(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	for range 20_000 {
		a, b := randomInterval(r), randomInterval(r)
		u := Union(a, b)
		x := samplePoint(r, a)
		assert.True(t, u.Contains(x))
		assert.True(t, u.Contains(samplePoint(r, b)))
		if b.Contains(x) {
			assert.True(t, Intersection(a, b).Contains(x))
		}
	}
}
