package simplify

import (
	"go/token"
	"math"

	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
	"github.com/cottand/pixl/internal/arith"
)

// constBits returns the bit pattern of a constant: the two's complement of
// signed values, the value itself for unsigned ones, and 0 or 1 for booleans.
func constBits(e ir.Expr) (uint64, bool) {
	switch e := e.(type) {
	case *ir.IntImm:
		return uint64(e.Value), true
	case *ir.UIntImm:
		return e.Value, true
	case *ir.BoolImm:
		if e.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func isConst(e ir.Expr) bool {
	_, ok := constBits(e)
	return ok
}

func constOf(t scalar.Type, bits uint64, r ir.Range) ir.Expr {
	return ir.Const(t, int64(bits), r)
}

// FoldBinary computes x op y for constants of type t the way the generated
// code does: in 64 bits, then wrapped into t.
func FoldBinary(op token.Token, t scalar.Type, x, y uint64) uint64 {
	var r uint64
	if t.IsUInt() {
		r = foldUnsigned(op, x, y)
	} else {
		r = uint64(foldSigned(op, int64(x), int64(y)))
	}
	return uint64(t.Wrap(int64(r)))
}

func foldSigned(op token.Token, a, b int64) int64 {
	switch op {
	case token.ADD:
		return a + b
	case token.SUB:
		return a - b
	case token.MUL:
		return a * b
	case token.QUO:
		if q, ok := arith.DivEuclid(a, b); ok {
			return q
		}
		// MinInt64 / -1 wraps
		return math.MinInt64
	case token.REM:
		return arith.ModEuclid(a, b)
	case token.SHL:
		return ShiftLeft(a, b)
	case token.SHR:
		if b == math.MinInt64 {
			return 0
		}
		return ShiftLeft(a, -b)
	}
	panic("cannot fold " + op.String())
}

// ShiftLeft is a * 2^n in 64 bits. Negative amounts shift right, rounding
// towards negative infinity.
func ShiftLeft(a, n int64) int64 {
	switch {
	case n >= 64:
		return 0
	case n >= 0:
		return a << n
	case n > -64:
		return a >> -n
	case a < 0:
		return -1
	}
	return 0
}

func foldUnsigned(op token.Token, a, b uint64) uint64 {
	switch op {
	case token.ADD:
		return a + b
	case token.SUB:
		return a - b
	case token.MUL:
		return a * b
	case token.QUO:
		if b == 0 {
			return 0
		}
		return a / b
	case token.REM:
		if b == 0 {
			return 0
		}
		return a % b
	case token.SHL:
		if b >= 64 {
			return 0
		}
		return a << b
	case token.SHR:
		if b >= 64 {
			return 0
		}
		return a >> b
	}
	panic("cannot fold " + op.String())
}

// FoldCompare decides x op y for constants of type t.
func FoldCompare(op token.Token, t scalar.Type, x, y uint64) bool {
	if t.IsUInt() || t.IsBool() {
		return compare(op, x, y)
	}
	return compare(op, int64(x), int64(y))
}

func compare[T int64 | uint64](op token.Token, x, y T) bool {
	switch op {
	case token.EQL:
		return x == y
	case token.NEQ:
		return x != y
	case token.LSS:
		return x < y
	case token.LEQ:
		return x <= y
	case token.GTR:
		return x > y
	case token.GEQ:
		return x >= y
	}
	panic("cannot compare with " + op.String())
}

// FoldCast converts the constant with bit pattern x into type to. The bit
// pattern of a signed constant is already sign-extended.
func FoldCast(to scalar.Type, x uint64) uint64 {
	if to.IsBool() {
		if x != 0 {
			return 1
		}
		return 0
	}
	return uint64(to.Wrap(int64(x)))
}

// FoldCall evaluates an intrinsic on constants of type t.
func FoldCall(fn ir.Intrinsic, t scalar.Type, args ...uint64) uint64 {
	x := args[0]
	switch fn {
	case ir.Abs:
		if t.IsInt() && int64(x) < 0 {
			return uint64(t.Wrap(-int64(x)))
		}
		return x
	case ir.Min:
		if FoldCompare(token.LEQ, t, x, args[1]) {
			return x
		}
		return args[1]
	case ir.Max:
		if FoldCompare(token.GEQ, t, x, args[1]) {
			return x
		}
		return args[1]
	}
	panic("cannot fold " + fn.String())
}
