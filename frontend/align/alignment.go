// Package align is the periodicity domain: facts of the form
// x ≡ Remainder (mod Modulus).
//
// A Modulus of 0 means the value is known exactly and equals Remainder. A
// Modulus of 1 carries no information. Otherwise 0 <= Remainder < Modulus.
// Like intervals, alignments describe the infinite-precision value of an
// expression; wraparound is modelled by facts.Info.CastTo.
//
// Every operation is sound: when a result cannot be computed without
// overflowing it degrades to a coarser alignment, never a wrong one.
package align

import (
	"fmt"
	"math"
	"math/big"

	"github.com/cottand/pixl/internal/arith"
)

// Alignment is a congruence fact. Note that the zero value is Exact(0), so
// build alignments with Unknown, Exact or New.
type Alignment struct {
	Modulus, Remainder int64
}

func Unknown() Alignment { return Alignment{Modulus: 1} }

func Exact(v int64) Alignment { return Alignment{Remainder: v} }

// New normalises (m, r): the modulus is made non-negative and the remainder
// reduced into [0, m).
func New(m, r int64) Alignment {
	if m == 0 {
		return Exact(r)
	}
	if m < 0 {
		if m == math.MinInt64 {
			m = 1 << 62
		} else {
			m = -m
		}
	}
	return Alignment{Modulus: m, Remainder: arith.ModEuclid(r, m)}
}

func (a Alignment) IsExact() bool { return a.Modulus == 0 }

func (a Alignment) IsUnknown() bool { return a.Modulus == 1 }

// Contains reports whether x satisfies the congruence.
func (a Alignment) Contains(x int64) bool {
	if a.IsExact() {
		return x == a.Remainder
	}
	return arith.ModEuclid(x, a.Modulus) == a.Remainder
}

func (a Alignment) String() string {
	switch {
	case a.IsExact():
		return fmt.Sprintf("= %d", a.Remainder)
	case a.IsUnknown():
		return "unknown"
	}
	return fmt.Sprintf("≡ %d (mod %d)", a.Remainder, a.Modulus)
}

// addMod is (a + b) mod m for m > 0 without overflowing.
func addMod(a, b, m int64) int64 {
	ra, rb := uint64(arith.ModEuclid(a, m)), uint64(arith.ModEuclid(b, m))
	return int64((ra + rb) % uint64(m))
}

func Add(a, b Alignment) Alignment {
	m := arith.GCD(a.Modulus, b.Modulus)
	if r, ok := arith.AddChecked(a.Remainder, b.Remainder); ok {
		return New(m, r)
	}
	if m == 0 {
		return Unknown()
	}
	return Alignment{Modulus: m, Remainder: addMod(a.Remainder, b.Remainder, m)}
}

func (a Alignment) Neg() Alignment {
	if a.IsExact() {
		if r, ok := arith.NegChecked(a.Remainder); ok {
			return Exact(r)
		}
		return Unknown()
	}
	return New(a.Modulus, a.Modulus-a.Remainder)
}

func Sub(a, b Alignment) Alignment {
	return Add(a, b.Neg())
}

// scale is k * a.
func scale(a Alignment, k int64) Alignment {
	if k == 0 {
		return Exact(0)
	}
	if a.IsExact() {
		if r, ok := arith.MulChecked(a.Remainder, k); ok {
			return Exact(r)
		}
		return New(k, 0)
	}
	m, ok := arith.MulChecked(a.Modulus, k)
	if !ok {
		// k * x is always a multiple of k
		return New(k, 0)
	}
	// |k * r| < |k * m|, so this cannot overflow
	r, _ := arith.MulChecked(a.Remainder, k)
	return New(m, r)
}

func Mul(a, b Alignment) Alignment {
	switch {
	case a.IsExact():
		return scale(b, a.Remainder)
	case b.IsExact():
		return scale(a, b.Remainder)
	case a.Remainder == 0 && b.Remainder == 0:
		if m, ok := arith.MulChecked(a.Modulus, b.Modulus); ok {
			return New(m, 0)
		}
		return New(max(a.Modulus, b.Modulus), 0)
	case a.Remainder == 0:
		if m, ok := arith.MulChecked(a.Modulus, arith.GCD(b.Modulus, b.Remainder)); ok {
			return New(m, 0)
		}
		return New(a.Modulus, 0)
	case b.Remainder == 0:
		return Mul(b, a)
	}
	// (ma*i + ra) * (mb*j + rb) ≡ ra * rb (mod gcd(ma, mb))
	m := arith.GCD(a.Modulus, b.Modulus)
	if r, ok := arith.MulChecked(a.Remainder, b.Remainder); ok {
		return New(m, r)
	}
	return Unknown()
}

// DivConst is the alignment of the Euclidean quotient a / k, where x / 0 is
// 0. Only a modulus that k divides survives.
func DivConst(a Alignment, k int64) Alignment {
	if k == 0 {
		return Exact(0)
	}
	if a.IsExact() {
		if q, ok := arith.DivEuclid(a.Remainder, k); ok {
			return Exact(q)
		}
		return Unknown()
	}
	absK := arith.Abs(k)
	if uint64(a.Modulus)%absK != 0 {
		return Unknown()
	}
	m := a.Modulus / int64(absK)
	r := a.Remainder / int64(absK)
	if k < 0 {
		r = -r
	}
	return New(m, r)
}

// ModConst is the alignment of the Euclidean remainder a % k, where x % 0
// is 0. x % k differs from x by a multiple of k, so gcd(m, k) survives.
func ModConst(a Alignment, k int64) Alignment {
	if k == 0 || k == -1 || k == 1 {
		return Exact(0)
	}
	if a.IsExact() {
		return Exact(arith.ModEuclid(a.Remainder, k))
	}
	return New(arith.GCD(a.Modulus, k), a.Remainder)
}

// ShlConst is the alignment of a << k, read as a * 2^k. Negative amounts
// shift right, rounding towards negative infinity.
func ShlConst(a Alignment, k int64) Alignment {
	switch {
	case k >= 63:
		// a * 2^k is a multiple of 2^63, and so of 2^62
		return Mul(a, New(1<<62, 0))
	case k >= 0:
		return Mul(a, Exact(int64(1)<<k))
	case k > -63:
		return DivConst(a, int64(1)<<(-k))
	}
	return Unknown()
}

// Union is the join: an alignment that holds for values satisfying either
// a or b.
func Union(a, b Alignment) Alignment {
	m := arith.GCD(a.Modulus, b.Modulus)
	diff, ok := arith.SubChecked(a.Remainder, b.Remainder)
	if !ok {
		return Unknown()
	}
	m = arith.GCD(m, diff)
	if m == 0 {
		return a
	}
	return New(m, b.Remainder)
}

// Intersect is the meet: an alignment for values satisfying both a and b,
// by the Chinese remainder theorem. When no value satisfies both, the code
// asking is unreachable and a is returned unchanged.
func Intersect(a, b Alignment) Alignment {
	switch {
	case a.IsExact():
		return a
	case b.IsExact():
		if a.Contains(b.Remainder) {
			return b
		}
		return a
	}

	ma, mb := big.NewInt(a.Modulus), big.NewInt(b.Modulus)
	g := new(big.Int).GCD(nil, nil, ma, mb)
	diff := new(big.Int).Sub(big.NewInt(b.Remainder), big.NewInt(a.Remainder))
	if new(big.Int).Mod(diff, g).Sign() != 0 {
		return a
	}

	// x = ra + ma * t, where t ≡ diff/g * inv(ma/g) (mod mb/g)
	mbg := new(big.Int).Div(mb, g)
	lcm := new(big.Int).Mul(new(big.Int).Div(ma, g), mb)
	if !lcm.IsInt64() {
		if a.Modulus >= b.Modulus {
			return a
		}
		return b
	}
	t := new(big.Int).Div(diff, g)
	if mbg.Cmp(big.NewInt(1)) != 0 {
		inv := new(big.Int).ModInverse(new(big.Int).Div(ma, g), mbg)
		t.Mul(t, inv).Mod(t, mbg)
	} else {
		t.SetInt64(0)
	}
	x := new(big.Int).Mul(ma, t)
	x.Add(x, big.NewInt(a.Remainder)).Mod(x, lcm)
	return New(lcm.Int64(), x.Int64())
}
