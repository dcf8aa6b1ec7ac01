package ir

import (
	"bytes"
	"go/token"
	"log/slog"
	"testing"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(name string) *Var { return &Var{Name: name, T: scalar.Int32} }

func c(value int64) Expr { return Const(scalar.Int32, value, Range{}) }

func TestExprString(t *testing.T) {
	x, y, z := v("x"), v("y"), v("z")
	testCases := []struct {
		expr     Expr
		expected string
	}{
		{BinOp(token.ADD, x, BinOp(token.MUL, y, z, nil), nil), "x + y * z"},
		{BinOp(token.MUL, BinOp(token.ADD, x, y, nil), z, nil), "(x + y) * z"},
		{BinOp(token.SUB, x, BinOp(token.SUB, y, z, nil), nil), "x - (y - z)"},
		{BinOp(token.SUB, BinOp(token.SUB, x, y, nil), z, nil), "x - y - z"},
		{&Not{X: BinOp(token.LSS, x, c(3), nil)}, "!(x < 3)"},
		{BinOp(token.LOR, BinOp(token.LAND, BoolLiteral(true, nil), BoolLiteral(false, nil), nil), BoolLiteral(true, nil), nil), "true && false || true"},
		{&Call{Fn: Min, Args: []Expr{x, BinOp(token.ADD, y, c(1), nil)}}, "min(x, y + 1)"},
		{&Select{Cond: BinOp(token.GEQ, x, c(0), nil), True: x, False: c(-1)}, "choose(x >= 0, x, -1)"},
		{&Cast{X: BinOp(token.SHL, x, c(2), nil), T: scalar.UInt8}, "uint8(x << 2)"},
		{&UIntImm{Value: 1 << 63, T: scalar.UInt64}, "9223372036854775808"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExprString(tc.expr))
		})
	}
}

func TestStmtString(t *testing.T) {
	prog := &Block{Stmts: []Stmt{
		&Declare{Name: "n", T: scalar.Int32, Bounds: interval.New(0, 100)},
		&Declare{Name: "k", T: scalar.Int32, Bounds: interval.BoundedBelow(1)},
		&For{Var: "i", Extent: v("n"), Body: &Block{Stmts: []Stmt{
			&Assert{Cond: BinOp(token.LSS, v("i"), c(100), nil), Message: "oob"},
			&Store{Buffer: "out", Index: v("i"), Value: BinOp(token.MUL, v("i"), v("k"), nil)},
		}}},
		&If{
			Cond: BinOp(token.GTR, v("n"), c(4), nil),
			Then: &Let{Name: "a", Value: c(1)},
			Else: &If{Cond: BoolLiteral(false, nil), Then: &Block{}},
		},
	}}
	expected := `var n int32 = bounds(0, 100)
var k int32 = bounds(1, _)
for i := range n {
	assert(i < 100, "oob")
	out[i] = i * k
}
if n > 4 {
	a := 1
} else if false {
}`
	assert.Equal(t, expected, StmtString(prog))
}

func TestConst(t *testing.T) {
	assert.Equal(t, &IntImm{Value: -12, T: scalar.Int8}, Const(scalar.Int8, 500, Range{}))
	assert.Equal(t, &UIntImm{Value: 255, T: scalar.UInt8}, Const(scalar.UInt8, -1, Range{}))
	assert.Equal(t, &BoolImm{Value: true}, Const(scalar.BoolT, 7, Range{}))

	value, ok := AsConst(&UIntImm{Value: 1 << 63, T: scalar.UInt64})
	assert.False(t, ok)
	assert.Zero(t, value)
	assert.True(t, IsConst(c(3), 3))
	assert.False(t, IsConst(v("x"), 0))

	assert.Nil(t, IntLiteral(scalar.Int8, 128, nil))
	assert.Nil(t, IntLiteral(scalar.UInt16, -1, nil))
	assert.Nil(t, UIntLiteral(scalar.Int64, 1<<63, nil))
	assert.Equal(t, &IntImm{Value: 127, T: scalar.Int8}, IntLiteral(scalar.Int8, 127, nil))
}

func TestEqualIgnoresPositions(t *testing.T) {
	a := BinOp(token.ADD, &Var{Name: "x", T: scalar.Int32, Range: Range{1, 2}}, c(1), Range{1, 5})
	b := BinOp(token.ADD, &Var{Name: "x", T: scalar.Int32, Range: Range{10, 11}}, c(1), Range{10, 15})
	assert.True(t, Equal(a, b))
	assert.Equal(t, a.Hash(), b.Hash())

	differentType := BinOp(token.ADD, &Var{Name: "x", T: scalar.Int64}, Const(scalar.Int64, 1, Range{}), nil)
	assert.False(t, Equal(a, differentType))
	assert.NotEqual(t, a.Hash(), differentType.Hash())

	assert.False(t, Equal(a, BinOp(token.SUB, v("x"), c(1), nil)))
	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))

	s1 := &If{Cond: a, Then: &Assert{Cond: BoolLiteral(true, nil)}}
	s2 := &If{Cond: b, Then: &Assert{Cond: BoolLiteral(true, Range{3, 4})}}
	assert.True(t, EqualStmt(s1, s2))
	assert.Equal(t, s1.Hash(), s2.Hash())
	assert.False(t, EqualStmt(s1, &If{Cond: a, Then: &Block{}}))
}

func TestTransformCopies(t *testing.T) {
	x := v("x")
	orig := BinOp(token.ADD, x, BinOp(token.MUL, x, c(2), nil), nil)
	var visited []string
	replaced := orig.Transform(func(e Expr) Expr {
		visited = append(visited, e.ExprName())
		if e, ok := e.(*Var); ok && e.Name == "x" {
			return c(5)
		}
		return e
	})
	// children are visited before their parents
	assert.Equal(t, []string{"x", "x", "2", "*", "+"}, visited)
	assert.Equal(t, "5 + 5 * 2", ExprString(replaced))
	assert.Equal(t, "x + x * 2", ExprString(orig))
}

func TestFreeVars(t *testing.T) {
	e := BinOp(token.ADD, v("zeta"), BinOp(token.MUL, v("alpha"), v("zeta"), nil), nil)
	var names []string
	for fv := range FreeVars(e).Items() {
		names = append(names, fv.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta"}, names)
	assert.True(t, Mentions(e, "alpha"))
	assert.False(t, Mentions(e, "beta"))

	prog := &Block{Stmts: []Stmt{
		&Declare{Name: "n", T: scalar.Int32},
		&Let{Name: "m", Value: BinOp(token.ADD, v("n"), v("offset"), nil)},
		&For{Var: "i", Extent: v("m"), Body: &Store{Buffer: "b", Index: v("i"), Value: v("scale")}},
	}}
	names = nil
	for fv := range FreeVarsStmt(prog).Items() {
		names = append(names, fv.Name)
	}
	assert.Equal(t, []string{"offset", "scale"}, names)
	assert.Len(t, Inputs(prog), 1)
}

func TestHasherInImmutableSet(t *testing.T) {
	cond := BinOp(token.LSS, v("x"), c(3), Range{4, 9})
	truths := immutable.NewSet[Expr](Hasher{})
	withCond := truths.Add(cond)
	assert.False(t, truths.Has(cond))
	assert.True(t, withCond.Has(BinOp(token.LSS, v("x"), c(3), nil)))
	assert.False(t, withCond.Has(BinOp(token.LEQ, v("x"), c(3), nil)))
}

func TestComparisonAlgebra(t *testing.T) {
	for _, op := range []token.Token{token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ} {
		assert.Equal(t, op, Negate(Negate(op)))
		assert.Equal(t, op, Flip(Flip(op)))
		assert.NotEqual(t, op, Negate(op))
	}
	assert.Equal(t, token.GTR, Flip(token.LSS))
	assert.Equal(t, token.EQL, Flip(token.EQL))
	assert.Equal(t, token.GEQ, Negate(token.LSS))
}

func TestSlogHandlerRendersNodes(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(SlogHandler(slog.NewTextHandler(buf, nil)))
	logger.With("stmt", Stmt(&Let{Name: "a", Value: c(2)})).
		Info("rewrote", "expr", BinOp(token.ADD, v("x"), c(1), nil))

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `expr.str="x + 1"`)
	assert.Contains(t, out, "expr.type=int32")
	assert.Contains(t, out, `stmt.str="a := 2"`)
	assert.Contains(t, out, "stmt.kind=Let")
}
