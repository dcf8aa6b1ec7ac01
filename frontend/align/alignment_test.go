package align

import (
	"math"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalise(t *testing.T) {
	assert.Equal(t, Alignment{Modulus: 4, Remainder: 3}, New(4, -1))
	assert.Equal(t, Alignment{Modulus: 4, Remainder: 1}, New(-4, 9))
	assert.Equal(t, Exact(5), New(0, 5))
	assert.True(t, Unknown().IsUnknown())
	assert.True(t, New(1, 7).IsUnknown())
	assert.True(t, Exact(3).IsExact())
	assert.True(t, New(4, 3).Contains(-1))
	assert.False(t, New(4, 3).Contains(2))
	assert.Equal(t, "≡ 3 (mod 4)", New(4, 3).String())
	assert.Equal(t, "= 2", Exact(2).String())
}

func TestOperators(t *testing.T) {
	testCases := []struct {
		name     string
		got      Alignment
		expected Alignment
	}{
		{"add", Add(New(4, 1), New(6, 3)), New(2, 0)},
		{"add exact", Add(Exact(3), Exact(4)), Exact(7)},
		{"add exact to periodic", Add(Exact(3), New(8, 2)), New(8, 5)},
		{"add overflowing exact", Add(Exact(math.MaxInt64), Exact(1)), Unknown()},
		{"sub", Sub(New(8, 1), Exact(3)), New(8, 6)},
		{"neg", New(8, 3).Neg(), New(8, 5)},
		{"neg MinInt64", Exact(math.MinInt64).Neg(), Unknown()},
		{"mul", Mul(New(4, 2), New(6, 3)), New(2, 0)},
		{"mul by constant", Mul(Exact(3), New(4, 1)), New(12, 3)},
		{"mul multiples", Mul(New(4, 0), New(6, 0)), New(24, 0)},
		{"mul multiple by periodic", Mul(New(4, 0), New(6, 3)), New(12, 0)},
		{"mul by zero", Mul(Unknown(), Exact(0)), Exact(0)},
		{"mul unknown by constant", Mul(Unknown(), Exact(6)), New(6, 0)},
		{"div", DivConst(New(8, 4), 4), New(2, 1)},
		{"div by negative", DivConst(New(8, 4), -4), New(2, 1)},
		{"div not dividing modulus", DivConst(New(8, 4), 3), Unknown()},
		{"div by zero", DivConst(New(8, 4), 0), Exact(0)},
		{"div exact", DivConst(Exact(-7), 2), Exact(-4)},
		{"mod", ModConst(New(6, 5), 4), New(2, 1)},
		{"mod exact", ModConst(Exact(-7), 4), Exact(1)},
		{"mod by one", ModConst(Unknown(), 1), Exact(0)},
		{"shl", ShlConst(New(2, 1), 3), New(16, 8)},
		{"shr", ShlConst(New(16, 8), -3), New(2, 1)},
		{"shl saturates", ShlConst(Unknown(), 70), New(1<<62, 0)},
		{"union exact", Union(Exact(3), Exact(7)), New(4, 3)},
		{"union same", Union(Exact(3), Exact(3)), Exact(3)},
		{"union periodic", Union(New(8, 1), New(12, 5)), New(4, 1)},
		{"intersect", Intersect(New(4, 1), New(6, 3)), New(12, 9)},
		{"intersect contradiction keeps receiver", Intersect(New(4, 1), New(6, 2)), New(4, 1)},
		{"intersect with unknown", Intersect(Unknown(), New(6, 2)), New(6, 2)},
		{"intersect with exact", Intersect(New(4, 1), Exact(9)), Exact(9)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.got)
		})
	}
}

var moduli = []int64{0, 0, 1, 2, 3, 4, 5, 6, 8, 12, 16, 1 << 20, 1 << 40, 1 << 62, math.MaxInt64}

func randomAlignment(r *rand.Rand) Alignment {
	m := moduli[r.IntN(len(moduli))]
	if m == 0 {
		if r.IntN(4) == 0 {
			return Exact(int64(r.Uint64()))
		}
		return Exact(r.Int64N(201) - 100)
	}
	return New(m, r.Int64())
}

// sample picks a member of a, or reports that the one it tried overflowed.
func sample(r *rand.Rand, a Alignment) (int64, bool) {
	if a.IsExact() {
		return a.Remainder, true
	}
	n := r.Int64N(2001) - 1000
	v := new(big.Int).Mul(big.NewInt(a.Modulus), big.NewInt(n))
	v.Add(v, big.NewInt(a.Remainder))
	return v.Int64(), v.IsInt64()
}

func containsBig(a Alignment, v *big.Int) bool {
	if a.IsExact() {
		return v.IsInt64() && v.Int64() == a.Remainder
	}
	d := new(big.Int).Sub(v, big.NewInt(a.Remainder))
	return d.Mod(d, big.NewInt(a.Modulus)).Sign() == 0
}

func TestBinaryOperatorsAreSound(t *testing.T) {
	ops := []struct {
		name   string
		op     func(a, b Alignment) Alignment
		oracle func(x, y int64) *big.Int
	}{
		{"add", Add, func(x, y int64) *big.Int { return new(big.Int).Add(big.NewInt(x), big.NewInt(y)) }},
		{"sub", Sub, func(x, y int64) *big.Int { return new(big.Int).Sub(big.NewInt(x), big.NewInt(y)) }},
		{"mul", Mul, func(x, y int64) *big.Int { return new(big.Int).Mul(big.NewInt(x), big.NewInt(y)) }},
	}
	for _, o := range ops {
		t.Run(o.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(11, 12))
			for range 20_000 {
				a, b := randomAlignment(r), randomAlignment(r)
				res := o.op(a, b)
				x, okX := sample(r, a)
				y, okY := sample(r, b)
				if !okX || !okY {
					continue
				}
				if want := o.oracle(x, y); !containsBig(res, want) {
					t.Fatalf("%s(%v, %v) = %v does not hold for %d, %d -> %s", o.name, a, b, res, x, y, want)
				}
			}
		})
	}
}

func TestConstOperatorsAreSound(t *testing.T) {
	r := rand.New(rand.NewPCG(13, 14))
	constants := []int64{math.MinInt64, -64, -8, -3, -2, -1, 0, 1, 2, 3, 4, 8, 12, 62, 63, 64, math.MaxInt64}
	for range 20_000 {
		a := randomAlignment(r)
		k := constants[r.IntN(len(constants))]
		x, ok := sample(r, a)
		if !ok {
			continue
		}
		bx, bk := big.NewInt(x), big.NewInt(k)

		q := new(big.Int)
		if k != 0 {
			q.Div(bx, bk)
		}
		assert.True(t, containsBig(DivConst(a, k), q), "%v / %d at %d", a, k, x)

		m := new(big.Int)
		if k != 0 {
			m.Mod(bx, bk)
		}
		assert.True(t, containsBig(ModConst(a, k), m), "%v %% %d at %d", a, k, x)

		var s *big.Int
		switch {
		case k > 200:
			s = new(big.Int).Lsh(bx, 200)
		case k >= 0:
			s = new(big.Int).Lsh(bx, uint(k))
		case k < -200:
			s = new(big.Int).Rsh(bx, 200)
		default:
			s = new(big.Int).Rsh(bx, uint(-k))
		}
		if k <= 200 || x == 0 {
			assert.True(t, containsBig(ShlConst(a, k), s), "%v << %d at %d", a, k, x)
		}

		assert.True(t, containsBig(a.Neg(), new(big.Int).Neg(bx)), "-(%v) at %d", a, x)
	}
}

func TestLatticeIsSound(t *testing.T) {
	r := rand.New(rand.NewPCG(15, 16))
	for range 20_000 {
		a, b := randomAlignment(r), randomAlignment(r)
		u := Union(a, b)
		if x, ok := sample(r, a); ok {
			assert.True(t, u.Contains(x), "%v ∪ %v at %d", a, b, x)
			if b.Contains(x) {
				assert.True(t, Intersect(a, b).Contains(x), "%v ∩ %v at %d", a, b, x)
			}
		}
		if y, ok := sample(r, b); ok {
			assert.True(t, u.Contains(y), "%v ∪ %v at %d", a, b, y)
		}
	}
}
