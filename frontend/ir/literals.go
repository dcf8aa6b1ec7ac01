package ir

import (
	"go/token"
	"math"

	"github.com/cottand/pixl/frontend/scalar"
)

// BinOp builds the node for the infix operator t. The operands must already
// have matching types.
func BinOp(t token.Token, x, y Expr, in Positioner) Expr {
	if in == nil {
		in = RangeBetween(x, y)
	}
	r := RangeOf(in)
	switch t {
	case token.ADD, token.SUB, token.MUL, token.QUO, token.REM, token.SHL, token.SHR:
		return &Binary{Op: t, X: x, Y: y, Range: r}
	case token.GEQ, token.LEQ, token.GTR, token.LSS, token.EQL, token.NEQ:
		return &Compare{Op: t, X: x, Y: y, Range: r}
	case token.LAND, token.LOR:
		return &Logical{Op: t, X: x, Y: y, Range: r}
	default:
		panic("unimplemented binary operation for token: " + t.String())
	}
}

// IntLiteral is the constant v of integer type t, or nil if t cannot hold v.
func IntLiteral(t scalar.Type, v int64, in Positioner) Expr {
	if !t.IsInteger() {
		return nil
	}
	if t.Wrap(v) != v || (t.IsUInt() && v < 0) {
		return nil
	}
	return Const(t, v, RangeOf(in))
}

// UIntLiteral is the constant v of type t. Values above MaxInt64 only fit
// uint64.
func UIntLiteral(t scalar.Type, v uint64, in Positioner) Expr {
	if t == scalar.UInt64 {
		return &UIntImm{Value: v, T: t, Range: RangeOf(in)}
	}
	if v > math.MaxInt64 {
		return nil
	}
	return IntLiteral(t, int64(v), in)
}

func BoolLiteral(v bool, in Positioner) Expr {
	return &BoolImm{Value: v, Range: RangeOf(in)}
}

var (
	True  = &BoolImm{Value: true}
	False = &BoolImm{Value: false}
)
