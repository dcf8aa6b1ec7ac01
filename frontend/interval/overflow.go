package interval

import (
	"math"

	"github.com/cottand/pixl/internal/arith"
)

// DivEuclid is the concrete 64-bit quotient the interval operators are
// sound for, for evaluators to share. MinInt64 / -1 wraps back to MinInt64.
func DivEuclid(a, b int64) int64 {
	q, ok := arith.DivEuclid(a, b)
	if !ok {
		return math.MinInt64
	}
	return q
}

// ModEuclid is the concrete remainder matching DivEuclid.
func ModEuclid(a, b int64) int64 { return arith.ModEuclid(a, b) }

// ext is an int64 extended with the two infinities. It is only used to
// evaluate corners of an interval operation, where an undefined bound is
// an infinite one and an overflowed corner is an infinite one of the
// same sign.
type ext struct {
	v   int64
	inf int8
}

var (
	negInf = ext{inf: -1}
	posInf = ext{inf: 1}
)

func finite(v int64) ext { return ext{v: v} }

func (e ext) sign() int {
	if e.inf != 0 {
		return int(e.inf)
	}
	switch {
	case e.v > 0:
		return 1
	case e.v < 0:
		return -1
	}
	return 0
}

func (e ext) less(o ext) bool {
	if e.inf != o.inf {
		return e.inf < o.inf
	}
	if e.inf != 0 {
		return false
	}
	return e.v < o.v
}

// mulExt multiplies two extended values. 0 * ∞ is 0, because the operands
// stand for finite integers.
func mulExt(a, b ext) ext {
	sa, sb := a.sign(), b.sign()
	if sa == 0 || sb == 0 {
		return finite(0)
	}
	if a.inf != 0 || b.inf != 0 {
		return ext{inf: int8(sa * sb)}
	}
	r, ok := arith.MulChecked(a.v, b.v)
	if !ok {
		return ext{inf: int8(sa * sb)}
	}
	return finite(r)
}

func lowerExt(i Interval) ext {
	if i.MinDefined {
		return finite(i.Min)
	}
	return negInf
}

func upperExt(i Interval) ext {
	if i.MaxDefined {
		return finite(i.Max)
	}
	return posInf
}

// fromExt builds an interval from extended bounds. A lower bound of +∞ or
// an upper bound of -∞ cannot be represented, so it becomes undefined.
func fromExt(lo, hi ext) Interval {
	var r Interval
	if lo.inf == 0 {
		r.Min, r.MinDefined = lo.v, true
	}
	if hi.inf == 0 {
		r.Max, r.MaxDefined = hi.v, true
	}
	return r
}
