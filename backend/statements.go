package backend

import (
	"fmt"
	goast "go/ast"
	"go/token"
	"reflect"

	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
)

func (tp *Transpiler) transpileStmts(stmts []ir.Stmt) ([]goast.Stmt, error) {
	var out []goast.Stmt
	for _, st := range stmts {
		goStmts, err := tp.transpileStmt(st)
		if err != nil {
			return nil, err
		}
		out = append(out, goStmts...)
	}
	return out, nil
}

// transpileStmt lowers st into zero or more Go statements. Declares produce
// none, since inputs are parameters of Run.
func (tp *Transpiler) transpileStmt(st ir.Stmt) ([]goast.Stmt, error) {
	switch st := st.(type) {
	case *ir.Block:
		block, err := tp.transpileBlock(st)
		if err != nil {
			return nil, err
		}
		return []goast.Stmt{block}, nil
	case *ir.Declare:
		return nil, nil
	case *ir.Let:
		value, err := tp.TranspileExpr(st.Value)
		if err != nil {
			return nil, fmt.Errorf("for binding of %s: %w", st.Name, err)
		}
		return []goast.Stmt{
			&goast.AssignStmt{
				Lhs: []goast.Expr{goast.NewIdent(st.Name)},
				Tok: token.DEFINE,
				Rhs: []goast.Expr{value},
			},
			// bindings may be unused after simplification
			&goast.AssignStmt{
				Lhs: []goast.Expr{goast.NewIdent("_")},
				Tok: token.ASSIGN,
				Rhs: []goast.Expr{goast.NewIdent(st.Name)},
			},
		}, nil
	case *ir.If:
		ifStmt, err := tp.transpileIf(st)
		if err != nil {
			return nil, err
		}
		return []goast.Stmt{ifStmt}, nil
	case *ir.For:
		return tp.transpileFor(st)
	case *ir.Assert:
		cond, err := tp.TranspileExpr(st.Cond)
		if err != nil {
			return nil, fmt.Errorf("for assertion: %w", err)
		}
		return []goast.Stmt{&goast.ExprStmt{X: call(helper("assert"), cond, stringLit(assertMessage(st)))}}, nil
	case *ir.Store:
		return tp.transpileStore(st)
	case nil:
		return nil, fmt.Errorf("unexpected nil statement")
	}
	return nil, fmt.Errorf("for stmt, unexpected type %v", reflect.TypeOf(st))
}

func assertMessage(st *ir.Assert) string {
	msg := "assertion failed: " + ir.ExprString(st.Cond)
	if st.Message != "" {
		msg += ": " + st.Message
	}
	return msg
}

// transpileBlock always produces a block statement, so it can serve as the
// body of an if or a for.
func (tp *Transpiler) transpileBlock(st ir.Stmt) (*goast.BlockStmt, error) {
	var stmts []ir.Stmt
	if b, ok := st.(*ir.Block); ok {
		stmts = b.Stmts
	} else {
		stmts = []ir.Stmt{st}
	}
	goStmts, err := tp.transpileStmts(stmts)
	if err != nil {
		return nil, err
	}
	return &goast.BlockStmt{List: goStmts}, nil
}

func (tp *Transpiler) transpileIf(st *ir.If) (*goast.IfStmt, error) {
	cond, err := tp.TranspileExpr(st.Cond)
	if err != nil {
		return nil, fmt.Errorf("for if condition: %w", err)
	}
	then, err := tp.transpileBlock(st.Then)
	if err != nil {
		return nil, err
	}
	ifStmt := &goast.IfStmt{Cond: cond, Body: then}
	switch otherwise := st.Else.(type) {
	case nil:
	case *ir.If:
		ifStmt.Else, err = tp.transpileIf(otherwise)
	default:
		ifStmt.Else, err = tp.transpileBlock(otherwise)
	}
	if err != nil {
		return nil, err
	}
	return ifStmt, nil
}

// transpileFor lowers the loop into
//
//	for i := T(0); i < extent; i++ { ... }
//
// The extent is evaluated once before the loop.
func (tp *Transpiler) transpileFor(st *ir.For) ([]goast.Stmt, error) {
	extent, err := tp.TranspileExpr(st.Extent)
	if err != nil {
		return nil, fmt.Errorf("for loop extent: %w", err)
	}
	body, err := tp.transpileBlock(st.Body)
	if err != nil {
		return nil, err
	}
	t := st.Extent.Type()
	limit := goast.NewIdent(helper(st.Var + "_extent"))
	return []goast.Stmt{&goast.BlockStmt{List: []goast.Stmt{
		&goast.AssignStmt{Lhs: []goast.Expr{limit}, Tok: token.DEFINE, Rhs: []goast.Expr{extent}},
		&goast.ForStmt{
			Init: &goast.AssignStmt{
				Lhs: []goast.Expr{goast.NewIdent(st.Var)},
				Tok: token.DEFINE,
				Rhs: []goast.Expr{&goast.CallExpr{Fun: transpileType(t), Args: []goast.Expr{intLit(0)}}},
			},
			Cond: binary(token.LSS, goast.NewIdent(st.Var), limit),
			Post: &goast.IncDecStmt{X: goast.NewIdent(st.Var), Tok: token.INC},
			Body: body,
		},
	}}}, nil
}

func (tp *Transpiler) transpileStore(st *ir.Store) ([]goast.Stmt, error) {
	index, value, err := tp.transpileOperands(st.Index, st.Value)
	if err != nil {
		return nil, fmt.Errorf("for store into %s: %w", st.Buffer, err)
	}
	return []goast.Stmt{&goast.ExprStmt{X: call(helper("store"),
		stringLit(st.Buffer),
		toInt64(st.Index.Type(), index),
		toInt64(st.Value.Type(), value),
	)}}, nil
}

func toInt64(t scalar.Type, x goast.Expr) goast.Expr {
	if t.IsBool() {
		return convert(scalar.Int64, scalar.UInt64, call(helper("b2u"), x))
	}
	return convert(scalar.Int64, t, x)
}
