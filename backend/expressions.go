package backend

import (
	"fmt"
	goast "go/ast"
	"go/token"
	"reflect"

	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
)

// TranspileExpr lowers a single expression. Integer constants become calls
// to identity helpers so that the Go compiler never folds them: it would
// reject the overflowing and dividing-by-zero expressions programs are
// allowed to contain.
func (tp *Transpiler) TranspileExpr(expr ir.Expr) (goast.Expr, error) {
	switch e := expr.(type) {
	case *ir.IntImm:
		return call(helper(e.T.String()), intLit(e.Value)), nil
	case *ir.UIntImm:
		return call(helper(e.T.String()), uintLit(e.Value)), nil
	case *ir.BoolImm:
		if e.Value {
			return goast.NewIdent(ir.TrueName), nil
		}
		return goast.NewIdent(ir.FalseName), nil
	case *ir.Var:
		return goast.NewIdent(e.Name), nil
	case *ir.Cast:
		x, err := tp.TranspileExpr(e.X)
		if err != nil {
			return nil, fmt.Errorf("for cast: %w", err)
		}
		return transpileCast(e.T, e.X.Type(), x), nil
	case *ir.Binary:
		x, y, err := tp.transpileOperands(e.X, e.Y)
		if err != nil {
			return nil, fmt.Errorf("for %v: %w", e.Op, err)
		}
		return transpileBinary(e.Op, e.Type(), x, y)
	case *ir.Compare:
		x, y, err := tp.transpileOperands(e.X, e.Y)
		if err != nil {
			return nil, fmt.Errorf("for %v: %w", e.Op, err)
		}
		if e.X.Type().IsBool() && e.Op != token.EQL && e.Op != token.NEQ {
			// Go only compares booleans for equality
			x, y = call(helper("b2u"), x), call(helper("b2u"), y)
		}
		return binary(e.Op, x, y), nil
	case *ir.Logical:
		x, y, err := tp.transpileOperands(e.X, e.Y)
		if err != nil {
			return nil, fmt.Errorf("for %v: %w", e.Op, err)
		}
		return binary(e.Op, x, y), nil
	case *ir.Not:
		x, err := tp.TranspileExpr(e.X)
		if err != nil {
			return nil, fmt.Errorf("for negation: %w", err)
		}
		return &goast.UnaryExpr{Op: token.NOT, X: paren(x)}, nil
	case *ir.Select:
		return tp.transpileSelect(e)
	case *ir.Call:
		return tp.transpileCall(e)
	case nil:
		return nil, fmt.Errorf("unexpected nil expression")
	default:
		return nil, fmt.Errorf("for expr, unexpected type %v", reflect.TypeOf(expr))
	}
}

func (tp *Transpiler) transpileOperands(x, y ir.Expr) (goast.Expr, goast.Expr, error) {
	goX, err := tp.TranspileExpr(x)
	if err != nil {
		return nil, nil, err
	}
	goY, err := tp.TranspileExpr(y)
	if err != nil {
		return nil, nil, err
	}
	return goX, goY, nil
}

func transpileCast(to, from scalar.Type, x goast.Expr) goast.Expr {
	switch {
	case to == from:
		return x
	case to.IsBool():
		return binary(token.NEQ, x, intLit(0))
	case from.IsBool():
		return convert(to, scalar.UInt64, call(helper("b2u"), x))
	}
	// Go conversions between integer types wrap and sign-extend already
	return convert(to, from, x)
}

// transpileBinary lowers arithmetic on two operands of type t. Addition,
// subtraction and multiplication wrap in Go already, the rest is done by
// the runtime helpers in 64 bits.
func transpileBinary(op token.Token, t scalar.Type, x, y goast.Expr) (goast.Expr, error) {
	if !t.IsInteger() {
		return nil, fmt.Errorf("no arithmetic on %v", t)
	}
	switch op {
	case token.ADD, token.SUB, token.MUL:
		return binary(op, x, y), nil
	}
	names := map[token.Token]string{
		token.QUO: "div",
		token.REM: "mod",
		token.SHL: "shl",
		token.SHR: "shr",
	}
	name, ok := names[op]
	if !ok {
		return nil, fmt.Errorf("unexpected arithmetic operator %v", op)
	}
	return wideCall(name, t, x, y), nil
}

// wideCall calls the helper for name in the 64-bit type of t, and converts
// the result back to t. Unsigned helpers are prefixed with u.
func wideCall(name string, t scalar.Type, args ...goast.Expr) goast.Expr {
	wide := wideType(t)
	if wide.IsUInt() {
		name = "u" + name
	}
	wideArgs := make([]goast.Expr, len(args))
	for i, arg := range args {
		wideArgs[i] = convert(wide, t, arg)
	}
	return convert(t, wide, call(helper(name), wideArgs...))
}

func (tp *Transpiler) transpileCall(e *ir.Call) (goast.Expr, error) {
	if len(e.Args) != e.Fn.Arity() {
		return nil, fmt.Errorf("%v takes %d arguments, got %d", e.Fn, e.Fn.Arity(), len(e.Args))
	}
	args := make([]goast.Expr, len(e.Args))
	for i, arg := range e.Args {
		var err error
		args[i], err = tp.TranspileExpr(arg)
		if err != nil {
			return nil, fmt.Errorf("for %v argument: %w", e.Fn, err)
		}
	}
	t := e.Type()
	switch {
	case e.Fn == ir.Abs && !t.IsInt():
		return args[0], nil
	case e.Fn == ir.Abs:
		return wideCall("abs", t, args[0]), nil
	case t.IsBool() && e.Fn == ir.Min:
		return binary(token.LAND, args[0], args[1]), nil
	case t.IsBool() && e.Fn == ir.Max:
		return binary(token.LOR, args[0], args[1]), nil
	}
	return wideCall(e.Fn.String(), t, args...), nil
}

// transpileSelect inlines a function literal, since Go has no conditional
// expression:
//
//	func() T {
//		if cond {
//			return t
//		}
//		return f
//	}()
func (tp *Transpiler) transpileSelect(e *ir.Select) (goast.Expr, error) {
	cond, err := tp.TranspileExpr(e.Cond)
	if err != nil {
		return nil, fmt.Errorf("for select condition: %w", err)
	}
	t, f, err := tp.transpileOperands(e.True, e.False)
	if err != nil {
		return nil, fmt.Errorf("for select branch: %w", err)
	}
	return &goast.CallExpr{
		Fun: &goast.FuncLit{
			Type: &goast.FuncType{Params: &goast.FieldList{}, Results: fieldList(e.Type())},
			Body: &goast.BlockStmt{List: []goast.Stmt{
				&goast.IfStmt{
					Cond: cond,
					Body: &goast.BlockStmt{List: []goast.Stmt{&goast.ReturnStmt{Results: []goast.Expr{t}}}},
				},
				&goast.ReturnStmt{Results: []goast.Expr{f}},
			}},
		},
	}, nil
}
