package parse

import (
	"go/ast"
	"go/token"
	"strconv"

	"github.com/cottand/pixl/frontend/fatal"
	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
)

// isUntyped is true for expressions built only from integer literals, which
// take their type from where they are used.
func isUntyped(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.BasicLit:
		return e.Kind == token.INT
	case *ast.ParenExpr:
		return isUntyped(e.X)
	case *ast.UnaryExpr:
		return (e.Op == token.SUB || e.Op == token.ADD) && isUntyped(e.X)
	case *ast.BinaryExpr:
		return isArithmetic(e.Op) && isUntyped(e.X) && isUntyped(e.Y)
	}
	return false
}

func isArithmetic(op token.Token) bool {
	switch op {
	case token.ADD, token.SUB, token.MUL, token.QUO, token.REM, token.SHL, token.SHR:
		return true
	}
	return false
}

func isComparison(op token.Token) bool {
	switch op {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		return true
	}
	return false
}

// literalType picks the type of an untyped expression from hint.
func literalType(hint *scalar.Type) scalar.Type {
	if hint != nil && hint.IsInteger() {
		return *hint
	}
	return DefaultLiteralType
}

func (p *parser) boolExpr(e ast.Expr) ir.Expr {
	converted := p.expr(e, nil)
	if converted == nil {
		return nil
	}
	if !converted.Type().IsBool() {
		p.errorf(fatal.TypeMismatch, e, "expected a condition, found %v", converted.Type())
		return nil
	}
	return converted
}

// expr converts e, or records a diagnostic and returns nil. hint is the type
// untyped literals in e should take, if known.
func (p *parser) expr(e ast.Expr, hint *scalar.Type) ir.Expr {
	switch e := e.(type) {
	case *ast.ParenExpr:
		return p.expr(e.X, hint)
	case *ast.BasicLit:
		return p.literal(e, false, literalType(hint))
	case *ast.Ident:
		return p.ident(e)
	case *ast.UnaryExpr:
		return p.unary(e, hint)
	case *ast.BinaryExpr:
		return p.binary(e, hint)
	case *ast.CallExpr:
		return p.call(e, hint)
	case *ast.IndexExpr:
		p.errorf(fatal.Unsupported, e, "buffers cannot be read")
	default:
		p.errorf(fatal.Unsupported, e, "unsupported expression")
	}
	return nil
}

func (p *parser) literal(lit *ast.BasicLit, negate bool, t scalar.Type) ir.Expr {
	if lit.Kind != token.INT {
		p.errorf(fatal.Unsupported, lit, "only integer literals are supported")
		return nil
	}
	u, err := strconv.ParseUint(lit.Value, 0, 64)
	if err != nil {
		p.errorf(fatal.TypeMismatch, lit, "constant %s overflows %v", lit.Value, t)
		return nil
	}
	var converted ir.Expr
	switch {
	case negate && u <= 1<<63:
		converted = ir.IntLiteral(t, -int64(u), lit)
	case !negate:
		converted = ir.UIntLiteral(t, u, lit)
	}
	if converted == nil {
		sign := ""
		if negate {
			sign = "-"
		}
		p.errorf(fatal.TypeMismatch, lit, "constant %s%s overflows %v", sign, lit.Value, t)
	}
	return converted
}

func (p *parser) ident(id *ast.Ident) ir.Expr {
	switch id.Name {
	case ir.TrueName:
		return ir.BoolLiteral(true, id)
	case ir.FalseName:
		return ir.BoolLiteral(false, id)
	}
	v, ok := p.lookup(id.Name)
	if !ok {
		p.errorf(fatal.UndefinedVariable, id, "variable '%s' is not defined", id.Name)
		return nil
	}
	return &ir.Var{Name: v.Name, T: v.T, Range: ir.RangeOf(id)}
}

func (p *parser) unary(e *ast.UnaryExpr, hint *scalar.Type) ir.Expr {
	switch e.Op {
	case token.ADD:
		return p.expr(e.X, hint)
	case token.NOT:
		x := p.boolExpr(e.X)
		if x == nil {
			return nil
		}
		return &ir.Not{X: x, Range: ir.RangeOf(e)}
	case token.SUB:
		if lit, ok := unparen(e.X).(*ast.BasicLit); ok {
			return p.literal(lit, true, literalType(hint))
		}
		x := p.expr(e.X, hint)
		if x == nil {
			return nil
		}
		if !x.Type().IsInteger() {
			p.errorf(fatal.TypeMismatch, e, "cannot negate %v", x.Type())
			return nil
		}
		return &ir.Binary{Op: token.SUB, X: ir.Const(x.Type(), 0, ir.RangeOf(e)), Y: x, Range: ir.RangeOf(e)}
	}
	p.errorf(fatal.Unsupported, e, "unsupported operator %v", e.Op)
	return nil
}

func unparen(e ast.Expr) ast.Expr {
	for {
		paren, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = paren.X
	}
}

// pair converts two operands that must share a type. An untyped operand
// takes the type of the other one.
func (p *parser) pair(x, y ast.Expr, hint *scalar.Type) (ir.Expr, ir.Expr) {
	var cx, cy ir.Expr
	switch {
	case isUntyped(x) && !isUntyped(y):
		cy = p.expr(y, hint)
		if cy == nil {
			return nil, nil
		}
		t := cy.Type()
		cx = p.expr(x, &t)
	case isUntyped(x) && isUntyped(y):
		t := literalType(hint)
		cx, cy = p.expr(x, &t), p.expr(y, &t)
	default:
		cx = p.expr(x, hint)
		if cx == nil {
			return nil, nil
		}
		t := cx.Type()
		cy = p.expr(y, &t)
	}
	if cx == nil || cy == nil {
		return nil, nil
	}
	return cx, cy
}

func (p *parser) binary(e *ast.BinaryExpr, hint *scalar.Type) ir.Expr {
	switch {
	case isArithmetic(e.Op):
		x, y := p.pair(e.X, e.Y, hint)
		if x == nil {
			return nil
		}
		if !x.Type().IsInteger() || x.Type() != y.Type() {
			p.errorf(fatal.TypeMismatch, e, "invalid operation: %v %v %v", x.Type(), e.Op, y.Type())
			return nil
		}
		return ir.BinOp(e.Op, x, y, ir.RangeOf(e))
	case isComparison(e.Op):
		x, y := p.pair(e.X, e.Y, nil)
		if x == nil {
			return nil
		}
		ordered := e.Op != token.EQL && e.Op != token.NEQ
		if x.Type() != y.Type() || (ordered && x.Type().IsBool()) {
			p.errorf(fatal.TypeMismatch, e, "invalid comparison: %v %v %v", x.Type(), e.Op, y.Type())
			return nil
		}
		return ir.BinOp(e.Op, x, y, ir.RangeOf(e))
	case e.Op == token.LAND || e.Op == token.LOR:
		x, y := p.boolExpr(e.X), p.boolExpr(e.Y)
		if x == nil || y == nil {
			return nil
		}
		return ir.BinOp(e.Op, x, y, ir.RangeOf(e))
	}
	p.errorf(fatal.Unsupported, e, "unsupported operator %v", e.Op)
	return nil
}

func (p *parser) call(e *ast.CallExpr, hint *scalar.Type) ir.Expr {
	id, ok := e.Fun.(*ast.Ident)
	if !ok {
		p.errorf(fatal.Unsupported, e.Fun, "only intrinsics and conversions can be called")
		return nil
	}
	if t, err := scalar.ParseType(id.Name); err == nil {
		return p.conversion(e, t)
	}
	if id.Name == ir.SelectName {
		return p.selectCall(e, hint)
	}
	fn, ok := ir.LookupIntrinsic(id.Name)
	if !ok {
		switch id.Name {
		case ir.AssertName:
			p.errorf(fatal.Unsupported, e, "assert is a statement")
		case ir.BoundsName:
			p.errorf(fatal.Unsupported, e, "bounds can only annotate an input declaration")
		default:
			p.errorf(fatal.UndefinedVariable, id, "unknown function '%s'", id.Name)
		}
		return nil
	}
	if len(e.Args) != fn.Arity() {
		p.errorf(fatal.TypeMismatch, e, "%v takes %d arguments", fn, fn.Arity())
		return nil
	}
	call := &ir.Call{Fn: fn, Range: ir.RangeOf(e)}
	if fn.Arity() == 1 {
		x := p.expr(e.Args[0], hint)
		if x == nil {
			return nil
		}
		call.Args = []ir.Expr{x}
	} else {
		x, y := p.pair(e.Args[0], e.Args[1], hint)
		if x == nil {
			return nil
		}
		if x.Type() != y.Type() {
			p.errorf(fatal.TypeMismatch, e, "%v of %v and %v", fn, x.Type(), y.Type())
			return nil
		}
		call.Args = []ir.Expr{x, y}
	}
	if !call.Args[0].Type().IsInteger() {
		p.errorf(fatal.TypeMismatch, e, "%v of %v", fn, call.Args[0].Type())
		return nil
	}
	return call
}

func (p *parser) conversion(e *ast.CallExpr, t scalar.Type) ir.Expr {
	if len(e.Args) != 1 {
		p.errorf(fatal.TypeMismatch, e, "conversion to %v takes one argument", t)
		return nil
	}
	if isUntyped(e.Args[0]) && t.IsInteger() {
		// a constant, which must fit t
		return p.expr(e.Args[0], &t)
	}
	x := p.expr(e.Args[0], nil)
	if x == nil {
		return nil
	}
	if x.Type() == t {
		return x
	}
	return &ir.Cast{X: x, T: t, Range: ir.RangeOf(e)}
}

func (p *parser) selectCall(e *ast.CallExpr, hint *scalar.Type) ir.Expr {
	if len(e.Args) != 3 {
		p.errorf(fatal.TypeMismatch, e, "%s takes a condition and two values", ir.SelectName)
		return nil
	}
	cond := p.boolExpr(e.Args[0])
	x, y := p.pair(e.Args[1], e.Args[2], hint)
	if cond == nil || x == nil {
		return nil
	}
	if x.Type() != y.Type() {
		p.errorf(fatal.TypeMismatch, e, "%s between %v and %v", ir.SelectName, x.Type(), y.Type())
		return nil
	}
	return &ir.Select{Cond: cond, True: x, False: y, Range: ir.RangeOf(e)}
}
