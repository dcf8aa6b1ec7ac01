package ir

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"
)

// ExprString renders expr in the surface syntax, with only the parentheses
// that are needed.
func ExprString(expr Expr) string {
	ctx := newShowContext()
	ctx.showExprWalker(expr, 0)
	return ctx.String()
}

// StmtString renders a statement in the surface syntax. The outermost
// Block is shown without braces.
func StmtString(stmt Stmt) string {
	ctx := newShowContext()
	if block, ok := stmt.(*Block); ok {
		ctx.showStmts(block.Stmts)
	} else {
		ctx.showStmt(stmt)
	}
	return ctx.String()
}

type showContext struct {
	*strings.Builder
	indent    int
	indentStr string
}

func newShowContext() *showContext {
	return &showContext{
		Builder:   &strings.Builder{},
		indentStr: "\t",
		indent:    0,
	}
}

func (ctx *showContext) currentIndent() string {
	return strings.Repeat(ctx.indentStr, ctx.indent)
}

const unaryPrecedence = token.UnaryPrec

// showExprWalker prints to ctx. outerPrecedence is the binding strength of
// the operator expr is an operand of, using the precedences of go/token:
// 0: can be shown on its own
// 1: ||
// 2: &&
// 3: comparisons
// 4: + -
// 5: * / % << >>
// 6: unary
func (ctx *showContext) showExprWalker(expr Expr, outerPrecedence int) {
	if expr == nil {
		ctx.WriteString("nil")
		return
	}
	switch expr := expr.(type) {
	case *IntImm:
		ctx.WriteString(strconv.FormatInt(expr.Value, 10))
	case *UIntImm:
		ctx.WriteString(strconv.FormatUint(expr.Value, 10))
	case *BoolImm:
		ctx.WriteString(strconv.FormatBool(expr.Value))
	case *Var:
		ctx.WriteString(expr.Name)
	case *Cast:
		ctx.WriteString(expr.T.String())
		ctx.WriteString("(")
		ctx.showExprWalker(expr.X, 0)
		ctx.WriteString(")")
	case *Binary:
		ctx.showInfix(expr.Op, expr.X, expr.Y, outerPrecedence)
	case *Compare:
		ctx.showInfix(expr.Op, expr.X, expr.Y, outerPrecedence)
	case *Logical:
		ctx.showInfix(expr.Op, expr.X, expr.Y, outerPrecedence)
	case *Not:
		ctx.WriteString("!")
		ctx.showExprWalker(expr.X, unaryPrecedence)
	case *Select:
		ctx.showCall(SelectName, expr.Cond, expr.True, expr.False)
	case *Call:
		ctx.showCall(expr.Fn.String(), expr.Args...)
	default:
		ctx.WriteString(fmt.Sprintf("<unknown %T>", expr))
	}
}

func (ctx *showContext) showInfix(op token.Token, x, y Expr, outerPrecedence int) {
	prec := op.Precedence()
	if prec < outerPrecedence {
		ctx.WriteString("(")
		defer ctx.WriteString(")")
	}
	ctx.showExprWalker(x, prec)
	ctx.WriteString(" ")
	ctx.WriteString(op.String())
	ctx.WriteString(" ")
	// operators are left-associative
	ctx.showExprWalker(y, prec+1)
}

func (ctx *showContext) showCall(name string, args ...Expr) {
	ctx.WriteString(name)
	ctx.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.showExprWalker(arg, 0)
	}
	ctx.WriteString(")")
}

func (ctx *showContext) showStmts(stmts []Stmt) {
	for i, stmt := range stmts {
		if i > 0 {
			ctx.WriteString("\n")
		}
		ctx.showStmt(stmt)
	}
}

func (ctx *showContext) showBraced(stmt Stmt) {
	ctx.WriteString("{\n")
	ctx.indent++
	if block, ok := stmt.(*Block); ok {
		ctx.showStmts(block.Stmts)
		if len(block.Stmts) > 0 {
			ctx.WriteString("\n")
		}
	} else {
		ctx.showStmt(stmt)
		ctx.WriteString("\n")
	}
	ctx.indent--
	ctx.WriteString(ctx.currentIndent())
	ctx.WriteString("}")
}

func (ctx *showContext) showStmt(stmt Stmt) {
	ctx.WriteString(ctx.currentIndent())
	switch stmt := stmt.(type) {
	case *Block:
		ctx.showBraced(stmt)
	case *If:
		ctx.showIf(stmt)
	case *Let:
		ctx.WriteString(stmt.Name)
		ctx.WriteString(" := ")
		ctx.showExprWalker(stmt.Value, 0)
	case *For:
		ctx.WriteString("for ")
		ctx.WriteString(stmt.Var)
		ctx.WriteString(" := range ")
		ctx.showExprWalker(stmt.Extent, 0)
		ctx.WriteString(" ")
		ctx.showBraced(stmt.Body)
	case *Assert:
		ctx.WriteString("assert(")
		ctx.showExprWalker(stmt.Cond, 0)
		if stmt.Message != "" {
			ctx.WriteString(", ")
			ctx.WriteString(strconv.Quote(stmt.Message))
		}
		ctx.WriteString(")")
	case *Store:
		ctx.WriteString(stmt.Buffer)
		ctx.WriteString("[")
		ctx.showExprWalker(stmt.Index, 0)
		ctx.WriteString("] = ")
		ctx.showExprWalker(stmt.Value, 0)
	case *Declare:
		ctx.WriteString("var ")
		ctx.WriteString(stmt.Name)
		ctx.WriteString(" ")
		ctx.WriteString(stmt.T.String())
		if b := stmt.Bounds; !b.IsEverything() {
			ctx.WriteString(" = bounds(")
			ctx.WriteString(boundString(b.Min, b.MinDefined))
			ctx.WriteString(", ")
			ctx.WriteString(boundString(b.Max, b.MaxDefined))
			ctx.WriteString(")")
		}
	default:
		ctx.WriteString(fmt.Sprintf("<unknown %T>", stmt))
	}
}

func (ctx *showContext) showIf(stmt *If) {
	ctx.WriteString("if ")
	ctx.showExprWalker(stmt.Cond, 0)
	ctx.WriteString(" ")
	ctx.showBraced(stmt.Then)
	switch elseStmt := stmt.Else.(type) {
	case nil:
	case *If:
		ctx.WriteString(" else ")
		ctx.showIf(elseStmt)
	default:
		ctx.WriteString(" else ")
		ctx.showBraced(elseStmt)
	}
}

func boundString(v int64, defined bool) string {
	if !defined {
		return "_"
	}
	return strconv.FormatInt(v, 10)
}
