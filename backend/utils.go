package backend

import (
	goast "go/ast"
	"go/token"
	"strconv"

	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
)

const goVersion = "1.23.3"

const (
	// EntryPoint is the function of the generated file that runs the program.
	EntryPoint = "Run"
	// MemoryName is the package variable Run stores buffers into, indexed
	// by buffer name and then by index.
	MemoryName = "Memory"
)

func helper(name string) string { return ir.GeneratedPrefix + name }

func call(fn string, args ...goast.Expr) *goast.CallExpr {
	return &goast.CallExpr{Fun: goast.NewIdent(fn), Args: args}
}

// convert is the Go conversion T(x), or x itself when it already has type t.
func convert(t scalar.Type, from scalar.Type, x goast.Expr) goast.Expr {
	if t == from {
		return x
	}
	return &goast.CallExpr{Fun: transpileType(t), Args: []goast.Expr{x}}
}

// paren wraps operators so that the printed code keeps the structure of
// the AST regardless of precedence.
func paren(e goast.Expr) goast.Expr {
	switch e.(type) {
	case *goast.BinaryExpr, *goast.UnaryExpr:
		return &goast.ParenExpr{X: e}
	}
	return e
}

func binary(op token.Token, x, y goast.Expr) *goast.BinaryExpr {
	return &goast.BinaryExpr{X: paren(x), Op: op, Y: paren(y)}
}

func intLit(v int64) goast.Expr {
	if v < 0 {
		// the magnitude of MinInt64 only fits an untyped constant
		abs := strconv.FormatUint(uint64(-(v+1))+1, 10)
		return &goast.UnaryExpr{Op: token.SUB, X: &goast.BasicLit{Kind: token.INT, Value: abs}}
	}
	return &goast.BasicLit{Kind: token.INT, Value: strconv.FormatInt(v, 10)}
}

func uintLit(v uint64) goast.Expr {
	return &goast.BasicLit{Kind: token.INT, Value: strconv.FormatUint(v, 10)}
}

func stringLit(s string) goast.Expr {
	return &goast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}
