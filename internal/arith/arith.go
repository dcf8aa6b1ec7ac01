// Package arith has the checked int64 arithmetic shared by the abstract
// domains. Each checked helper returns ok=false instead of a wrapped result
// when the infinite-precision value does not fit an int64; the returned
// value is then 0.
package arith

import (
	"math"

	"github.com/cznic/mathutil"
)

func AddChecked(a, b int64) (int64, bool) {
	r := a + b
	if (r > a) != (b > 0) {
		return 0, false
	}
	return r, true
}

func SubChecked(a, b int64) (int64, bool) {
	r := a - b
	if (r < a) != (b > 0) {
		return 0, false
	}
	return r, true
}

func MulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

func NegChecked(a int64) (int64, bool) {
	if a == math.MinInt64 {
		return 0, false
	}
	return -a, true
}

// DivEuclid is Euclidean division: the remainder of a by b is always
// non-negative. Division by zero is zero. ok is false only for
// MinInt64 / -1.
func DivEuclid(a, b int64) (q int64, ok bool) {
	if b == 0 {
		return 0, true
	}
	if a == math.MinInt64 && b == -1 {
		return 0, false
	}
	q = a / b
	if a%b < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q, true
}

// ModEuclid is the non-negative remainder matching DivEuclid. x % 0 is zero.
func ModEuclid(a, b int64) int64 {
	if b == 0 || b == -1 {
		return 0
	}
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

// Abs is |a| as a uint64, so that it is defined for MinInt64.
func Abs(a int64) uint64 {
	if a < 0 {
		return uint64(-(a + 1)) + 1
	}
	return uint64(a)
}

// GCD is the greatest common divisor of |a| and |b|, with GCD(0, 0) == 0.
// A divisor of 2^63 does not fit and saturates to 2^62, which still divides
// both operands.
func GCD(a, b int64) int64 {
	g := mathutil.GCDUint64(Abs(a), Abs(b))
	if g > math.MaxInt64 {
		return 1 << 62
	}
	return int64(g)
}
