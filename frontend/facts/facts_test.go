package facts

import (
	"math"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/cottand/pixl/frontend/align"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/scalar"
	"github.com/stretchr/testify/assert"
)

func TestTrim(t *testing.T) {
	testCases := []struct {
		name     string
		in       Info
		expected Info
	}{
		{
			"bounds move inward",
			Info{interval.New(1, 20), align.New(4, 3)},
			Info{interval.New(3, 19), align.New(4, 3)},
		},
		{
			"exact alignment collapses bounds",
			Info{interval.New(0, 100), align.Exact(7)},
			Const(7),
		},
		{
			"single point makes alignment exact",
			Info{interval.SinglePoint(9), align.New(4, 1)},
			Const(9),
		},
		{
			"no value in bounds is aligned",
			Info{interval.New(5, 6), align.New(8, 0)},
			Const(8),
		},
		{
			"half open",
			Info{interval.BoundedBelow(-7), align.New(3, 0)},
			Info{interval.BoundedBelow(-6), align.New(3, 0)},
		},
		{
			"large modulus",
			Info{interval.New(0, math.MaxInt64), align.New(1<<62, 5)},
			Info{interval.New(5, 1<<62+5), align.New(1<<62, 5)},
		},
		{
			"next aligned value does not fit",
			Info{interval.BoundedBelow(math.MaxInt64 - 1), align.New(4, 0)},
			Info{interval.BoundedBelow(math.MaxInt64 - 1), align.New(4, 0)},
		},
		{
			"unknown alignment",
			Info{interval.New(1, 2), align.Unknown()},
			Info{interval.New(1, 2), align.Unknown()},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.TrimBoundsUsingAlignment()
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, got, got.TrimBoundsUsingAlignment())
		})
	}
}

func TestIntersect(t *testing.T) {
	a := Info{interval.New(0, 100), align.New(2, 0)}
	b := Info{interval.New(50, 200), align.New(3, 1)}
	assert.Equal(t, Info{interval.New(52, 100), align.New(6, 4)}, a.Intersect(b))

	// disjoint bounds mean unreachable code, not a bug
	c := Info{interval.New(0, 5), align.Unknown()}
	d := Info{interval.New(10, 20), align.Unknown()}
	assert.Equal(t, c, c.Intersect(d))

	assert.Equal(t, Const(4), Unknown().Intersect(Const(4)))
}

func TestCastTo(t *testing.T) {
	testCases := []struct {
		name     string
		in       Info
		typ      scalar.Type
		expected Info
	}{
		{"wraps a known constant", Const(500), scalar.Int8, Const(-12)},
		{"representable is a no-op", Info{interval.New(0, 100), align.New(4, 0)}, scalar.Int8, Info{interval.New(0, 100), align.New(4, 0)}},
		{
			"narrow cast folds 2^bits into the modulus",
			Info{interval.New(0, 1000), align.New(12, 4)},
			scalar.UInt8,
			Info{interval.New(0, 252), align.New(4, 0)},
		},
		{
			"64 bit cast keeps the power of two factor",
			Info{interval.Everything(), align.New(12, 5)},
			scalar.Int64,
			Info{interval.New(math.MinInt64+1, math.MaxInt64-2), align.New(4, 1)},
		},
		{
			"negative into uint64",
			Const(-1),
			scalar.UInt64,
			Info{interval.BoundedBelow(1<<62 - 1), align.New(1<<62, -1)},
		},
		{"bool", Info{interval.New(0, 5), align.New(2, 1)}, scalar.BoolT, Info{interval.New(0, 1), align.Unknown()}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.CastTo(tc.typ)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, got, got.CastTo(tc.typ))
		})
	}
}

var types = []scalar.Type{
	scalar.Int8, scalar.Int16, scalar.Int32, scalar.Int64,
	scalar.UInt8, scalar.UInt16, scalar.UInt32, scalar.UInt64, scalar.BoolT,
}

var moduli = []int64{0, 1, 1, 2, 3, 4, 6, 8, 256, 1000, 1 << 32}

var ends = []int64{math.MinInt64, -1 << 40, -70000, -300, -129, -5, -1, 0, 1, 3, 100, 255, 256, 70000, 1 << 40, math.MaxInt64}

func randomInfo(r *rand.Rand) Info {
	lo, hi := ends[r.IntN(len(ends))], ends[r.IntN(len(ends))]
	if lo > hi {
		lo, hi = hi, lo
	}
	b := interval.New(lo, hi)
	switch r.IntN(5) {
	case 0:
		b = interval.BoundedBelow(lo)
	case 1:
		b = interval.BoundedAbove(hi)
	case 2:
		b = interval.Everything()
	}
	m := moduli[r.IntN(len(moduli))]
	if m == 0 {
		return Info{b, align.Exact(lo + r.Int64N(3))}
	}
	return Info{b, align.New(m, r.Int64N(m))}
}

// member looks for a value satisfying both projections of i.
func member(r *rand.Rand, i Info) (int64, bool) {
	for range 20 {
		var x int64
		switch r.IntN(3) {
		case 0:
			x = ends[r.IntN(len(ends))] + r.Int64N(9) - 4
		case 1:
			x = r.Int64N(2001) - 1000
		default:
			x = int64(r.Uint64())
		}
		if i.Alignment.Modulus > 1 {
			x -= arithMod(x, i.Alignment.Modulus) - i.Alignment.Remainder
		}
		if i.Alignment.IsExact() {
			x = i.Alignment.Remainder
		}
		if i.Bounds.Contains(x) && i.Alignment.Contains(x) {
			return x, true
		}
	}
	return 0, false
}

func arithMod(x, m int64) int64 {
	return new(big.Int).Mod(big.NewInt(x), big.NewInt(m)).Int64()
}

func containsBig(i Info, v *big.Int) bool {
	b := i.Bounds
	if b.MinDefined && v.Cmp(big.NewInt(b.Min)) < 0 || b.MaxDefined && v.Cmp(big.NewInt(b.Max)) > 0 {
		return false
	}
	a := i.Alignment
	if a.IsExact() {
		return v.IsInt64() && v.Int64() == a.Remainder
	}
	d := new(big.Int).Sub(v, big.NewInt(a.Remainder))
	return d.Mod(d, big.NewInt(a.Modulus)).Sign() == 0
}

func TestTrimIsIdempotentAndSound(t *testing.T) {
	r := rand.New(rand.NewPCG(21, 22))
	for range 20_000 {
		i := randomInfo(r)
		once := i.TrimBoundsUsingAlignment()
		assert.Equal(t, once, once.TrimBoundsUsingAlignment(), "trim of %v", i)
		if x, ok := member(r, i); ok {
			assert.True(t, containsBig(once, big.NewInt(x)), "trim of %v lost %d", i, x)
		}
	}
}

func TestCastIsStableAndSound(t *testing.T) {
	r := rand.New(rand.NewPCG(23, 24))
	for range 20_000 {
		i := randomInfo(r).TrimBoundsUsingAlignment()
		typ := types[r.IntN(len(types))]
		once := i.CastTo(typ)
		assert.Equal(t, once, once.CastTo(typ), "%v cast to %v", i, typ)
		if i.Bounds.RepresentableIn(typ) {
			assert.Equal(t, i, once)
		}

		x, ok := member(r, i)
		if !ok {
			continue
		}
		wrapped := big.NewInt(typ.Wrap(x))
		if typ == scalar.UInt64 {
			wrapped.SetUint64(uint64(x))
		}
		assert.True(t, containsBig(once, wrapped), "%v cast to %v lost %d (wrapped %s)", i, typ, x, wrapped)
	}
}
