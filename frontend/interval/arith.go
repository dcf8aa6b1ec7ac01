package interval

import (
	"math"

	"github.com/cottand/pixl/internal/arith"
)

// Add bounds a + b. A side is defined only if both operands are bounded on
// that side and the endpoint sum does not overflow.
func Add(a, b Interval) Interval {
	var r Interval
	if a.MinDefined && b.MinDefined {
		r.Min, r.MinDefined = arith.AddChecked(a.Min, b.Min)
	}
	if a.MaxDefined && b.MaxDefined {
		r.Max, r.MaxDefined = arith.AddChecked(a.Max, b.Max)
	}
	return r
}

// Sub bounds a - b.
func Sub(a, b Interval) Interval {
	var r Interval
	if a.MinDefined && b.MaxDefined {
		r.Min, r.MinDefined = arith.SubChecked(a.Min, b.Max)
	}
	if a.MaxDefined && b.MinDefined {
		r.Max, r.MaxDefined = arith.SubChecked(a.Max, b.Min)
	}
	return r
}

// Neg bounds -a.
func (a Interval) Neg() Interval {
	var r Interval
	if a.MaxDefined {
		r.Min, r.MinDefined = arith.NegChecked(a.Max)
	}
	if a.MinDefined {
		r.Max, r.MaxDefined = arith.NegChecked(a.Min)
	}
	return r
}

// Mul bounds a * b from the four corner products. A corner that overflows
// is an infinity with the sign of the product, so a positive overflow
// loses the upper bound and a negative one loses the lower bound.
func Mul(a, b Interval) Interval {
	al, ah, bl, bh := lowerExt(a), upperExt(a), lowerExt(b), upperExt(b)
	corners := [...]ext{mulExt(al, bl), mulExt(al, bh), mulExt(ah, bl), mulExt(ah, bh)}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c.less(lo) {
			lo = c
		}
		if hi.less(c) {
			hi = c
		}
	}
	r := fromExt(lo, hi)

	// operands of the same sign never multiply to a negative number, and
	// operands of opposite signs never to a positive one.
	if !r.MinDefined && (a.nonNegative() && b.nonNegative() || a.nonPositive() && b.nonPositive()) {
		r.Min, r.MinDefined = 0, true
	}
	if !r.MaxDefined && (a.nonNegative() && b.nonPositive() || a.nonPositive() && b.nonNegative()) {
		r.Max, r.MaxDefined = 0, true
	}
	return r
}

func (a Interval) nonNegative() bool { return a.MinDefined && a.Min >= 0 }
func (a Interval) nonPositive() bool { return a.MaxDefined && a.Max <= 0 }

// Div bounds the Euclidean quotient a / b, where x / 0 == 0.
//
// The denominator is split into its strictly positive part, its strictly
// negative part and zero. For a positive denominator the quotient is
// monotonic in both operands, so the extremes are reached at the corners;
// an unbounded denominator tends to 0 for a non-negative numerator and to
// -1 for a negative one. A negative denominator uses a / b == -(a / -b).
func Div(a, b Interval) Interval {
	if a.IsSinglePoint() && b.IsSinglePoint() {
		if q, ok := arith.DivEuclid(a.Min, b.Min); ok {
			return SinglePoint(q)
		}
	}

	var r Interval
	first := true
	include := func(part Interval) {
		if first {
			r, first = part, false
		} else {
			r.Include(part)
		}
	}

	if !b.MaxDefined || b.Max >= 1 {
		lo := int64(1)
		if b.MinDefined && b.Min > 1 {
			lo = b.Min
		}
		include(divByPositive(a, lo, b.Max, b.MaxDefined))
	}
	if !b.MinDefined || b.Min <= -1 {
		hi := int64(-1)
		if b.MaxDefined && b.Max < -1 {
			hi = b.Max
		}
		// -b ranges over [-hi, -b.Min]; -MinInt64 saturates.
		negLo := int64(math.MaxInt64)
		if hi != math.MinInt64 {
			negLo = -hi
		}
		negHi, negHiDefined := int64(0), false
		if b.MinDefined && b.Min != math.MinInt64 {
			negHi, negHiDefined = -b.Min, true
		}
		include(divByPositive(a, negLo, negHi, negHiDefined).Neg())
	}
	if b.Contains(0) {
		include(SinglePoint(0))
	}

	// dividing never increases the magnitude of the numerator
	if a.IsBounded() && a.Min != math.MinInt64 {
		m := max(abs(a.Min), abs(a.Max))
		if !r.MinDefined || r.Min < -m {
			r.Min, r.MinDefined = -m, true
		}
		if !r.MaxDefined || r.Max > m {
			r.Max, r.MaxDefined = m, true
		}
	}
	return r
}

// divByPositive bounds a / b for b in [lo, hi], lo >= 1. hi may be undefined.
func divByPositive(a Interval, lo, hi int64, hiDefined bool) Interval {
	var r Interval
	if a.MinDefined {
		r.MinDefined = true
		switch {
		case a.Min < 0:
			r.Min, _ = arith.DivEuclid(a.Min, lo)
		case hiDefined:
			r.Min, _ = arith.DivEuclid(a.Min, hi)
		default:
			r.Min = 0
		}
	}
	if a.MaxDefined {
		r.MaxDefined = true
		switch {
		case a.Max >= 0:
			r.Max, _ = arith.DivEuclid(a.Max, lo)
		case hiDefined:
			r.Max, _ = arith.DivEuclid(a.Max, hi)
		default:
			r.Max = -1
		}
	}
	return r
}

// Mod bounds the Euclidean remainder a % b, where x % 0 == 0. The result
// is never negative and is smaller than the largest magnitude of b.
func Mod(a, b Interval) Interval {
	if a.IsSinglePoint() && b.IsSinglePoint() {
		return SinglePoint(arith.ModEuclid(a.Min, b.Min))
	}

	r := BoundedBelow(0)
	if b.IsBounded() {
		r.Max, r.MaxDefined = max(magnitudeMinusOne(b.Min), magnitudeMinusOne(b.Max)), true
	}

	if a.nonNegative() {
		if a.MaxDefined && (!r.MaxDefined || a.Max < r.Max) {
			r.Max, r.MaxDefined = a.Max, true
		}
		// a numerator smaller than every possible modulus is left alone
		if m, ok := smallestMagnitude(b); ok && a.MaxDefined && a.Max < m {
			return a
		}
	}

	// a narrow numerator over a known modulus does not wrap around
	if b.IsSinglePoint() && b.Min != 0 && b.Min != math.MinInt64 && a.IsBounded() {
		m := abs(b.Min)
		if width, ok := arith.SubChecked(a.Max, a.Min); ok && width < m {
			lo, hi := arith.ModEuclid(a.Min, m), arith.ModEuclid(a.Max, m)
			if lo <= hi {
				return New(lo, hi)
			}
		}
	}
	return r
}

// magnitudeMinusOne is |x| - 1, clamped at zero. It cannot overflow.
func magnitudeMinusOne(x int64) int64 {
	switch {
	case x < 0:
		return -(x + 1)
	case x > 0:
		return x - 1
	}
	return 0
}

// smallestMagnitude is the smallest |x| for x in b, if b excludes zero.
func smallestMagnitude(b Interval) (int64, bool) {
	switch {
	case b.MinDefined && b.Min > 0:
		return b.Min, true
	case b.MaxDefined && b.Max < 0 && b.Max != math.MinInt64:
		return -b.Max, true
	}
	return 0, false
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// Shl bounds a << b, read as a * 2^b. Negative shift amounts shift right.
// The shift interval is split into a non-negative part, handled by Mul, and
// a negative part, handled by Div, so neither needs its own overflow
// analysis.
func Shl(a, b Interval) Interval {
	var r Interval
	first := true
	include := func(part Interval) {
		if first {
			r, first = part, false
		} else {
			r.Include(part)
		}
	}

	if !b.MaxDefined || b.Max >= 0 {
		lo := int64(0)
		if b.MinDefined && b.Min > 0 {
			lo = b.Min
		}
		include(Mul(a, pow2(lo, b.Max, b.MaxDefined)))
	}
	if !b.MinDefined || b.Min < 0 {
		hi := int64(-1)
		if b.MaxDefined && b.Max < -1 {
			hi = b.Max
		}
		eLo := int64(math.MaxInt64)
		if hi != math.MinInt64 {
			eLo = -hi
		}
		eHi, eHiDefined := int64(0), false
		if b.MinDefined && b.Min != math.MinInt64 {
			eHi, eHiDefined = -b.Min, true
		}
		include(Div(a, pow2(eLo, eHi, eHiDefined)))
	}
	return r
}

// Shr bounds a >> b, which rounds towards negative infinity.
func Shr(a, b Interval) Interval {
	return Shl(a, b.Neg())
}

// pow2 bounds 2^e for e in [lo, hi], lo >= 0. Exponents from 63 up do not
// fit: the lower bound saturates at 2^62 and the upper bound is dropped.
func pow2(lo, hi int64, hiDefined bool) Interval {
	r := BoundedBelow(int64(1) << min(lo, 62))
	if hiDefined && hi < 63 {
		r.Max, r.MaxDefined = int64(1)<<hi, true
	}
	return r
}

// Abs bounds |a|. An interval reaching MinInt64 has no upper bound, since
// its magnitude does not fit.
func (a Interval) Abs() Interval {
	switch {
	case a.nonNegative():
		return a
	case a.nonPositive():
		return a.Neg()
	}
	r := BoundedBelow(0)
	if a.IsBounded() && a.Min != math.MinInt64 {
		r.Max, r.MaxDefined = max(-a.Min, a.Max), true
	}
	return r
}

// Min bounds min(a, b).
func Min(a, b Interval) Interval {
	var r Interval
	if a.MinDefined && b.MinDefined {
		r.Min, r.MinDefined = min(a.Min, b.Min), true
	}
	switch {
	case a.MaxDefined && b.MaxDefined:
		r.Max, r.MaxDefined = min(a.Max, b.Max), true
	case a.MaxDefined:
		r.Max, r.MaxDefined = a.Max, true
	case b.MaxDefined:
		r.Max, r.MaxDefined = b.Max, true
	}
	return r
}

// Max bounds max(a, b).
func Max(a, b Interval) Interval {
	var r Interval
	if a.MaxDefined && b.MaxDefined {
		r.Max, r.MaxDefined = max(a.Max, b.Max), true
	}
	switch {
	case a.MinDefined && b.MinDefined:
		r.Min, r.MinDefined = max(a.Min, b.Min), true
	case a.MinDefined:
		r.Min, r.MinDefined = a.Min, true
	case b.MinDefined:
		r.Min, r.MinDefined = b.Min, true
	}
	return r
}
