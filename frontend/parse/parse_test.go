package parse

import (
	"go/token"
	"testing"

	"github.com/cottand/pixl/frontend/fatal"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) *ir.Program {
	prog, err := File(token.NewFileSet(), "test.pxl", []byte(src))
	require.NoError(t, err)
	return prog
}

func parseErrors(t *testing.T, src string) fatal.Diagnostics {
	_, err := File(token.NewFileSet(), "test.pxl", []byte(src))
	require.Error(t, err)
	ds, ok := fatal.AsDiagnostics(err)
	require.True(t, ok)
	return ds
}

func TestRoundTrip(t *testing.T) {
	testCases := []string{
		"var n int32 = bounds(0, 1024)\nhalf := n / 2\nhalf + 1",
		"var x int8\nvar y int8\nx * (y - 3) % 7",
		"var k uint8\nfor i := range k {\n\tassert(i < 255, \"oob\")\n\tout[i] = i << 1\n}",
		"var x int64 = bounds(_, 10)\nif x > 4 {\n\ta := min(x, 3)\n} else if x == 0 {\n} else {\n\tb := abs(x)\n}",
		"var c bool\nvar x int16\nchoose(c && !(x < 0), x, -1)",
		"var x uint64\nx + 18446744073709551615",
		"var x int32\nint8(x) == -128",
	}
	for _, src := range testCases {
		t.Run(src, func(t *testing.T) {
			prog := parseProgram(t, src)
			assert.Equal(t, src, ir.ProgramString(prog))
		})
	}
}

func TestChooseRoundTrip(t *testing.T) {
	src := "var c bool\nvar x int32\nchoose(c, x, 0)"
	prog := parseProgram(t, src)
	sel, ok := prog.Result.(*ir.Select)
	require.True(t, ok, "parsed %T", prog.Result)
	assert.Equal(t, scalar.Int32, sel.Type())

	printed := ir.ProgramString(prog)
	assert.Equal(t, src, printed)
	reparsed := parseProgram(t, printed)
	assert.True(t, ir.Equal(prog.Result, reparsed.Result))
}

func TestDeclarations(t *testing.T) {
	prog := parseProgram(t, "var a, b uint16\nvar n int = bounds(-5, _)")
	decls := prog.Inputs()
	require.Len(t, decls, 3)
	assert.Equal(t, "a", decls[0].Name)
	assert.Equal(t, scalar.UInt16, decls[1].T)
	assert.Equal(t, scalar.Int64, decls[2].T)
	assert.Equal(t, interval.BoundedBelow(-5), decls[2].Bounds)
	assert.Equal(t, interval.Everything(), decls[0].Bounds)
	assert.Nil(t, prog.Result)
}

func TestLiteralTyping(t *testing.T) {
	prog := parseProgram(t, "var x uint8\ny := 3 + x\nz := 7\nw := int64(2) * 5\ny")
	lets := prog.Body.Stmts[1:]
	assert.Equal(t, scalar.UInt8, lets[0].(*ir.Let).Value.Type())
	assert.Equal(t, DefaultLiteralType, lets[1].(*ir.Let).Value.Type())
	assert.Equal(t, scalar.Int64, lets[2].(*ir.Let).Value.Type())
	assert.Equal(t, scalar.UInt8, prog.Result.Type())
}

func TestShadowedNamesAreRenamed(t *testing.T) {
	prog := parseProgram(t, "var x int32\nif x > 0 {\n\tx := x + 1\n\tassert(x > 1)\n}\nx")

	ifStmt := prog.Body.Stmts[1].(*ir.If)
	inner := ifStmt.Then.(*ir.Block).Stmts
	let := inner[0].(*ir.Let)
	assert.NotEqual(t, "x", let.Name)
	// the value still refers to the outer x
	assert.Equal(t, "x + 1", ir.ExprString(let.Value))
	// and uses of the new binding refer to it
	cond := inner[1].(*ir.Assert).Cond.(*ir.Compare)
	assert.Equal(t, let.Name, cond.X.(*ir.Var).Name)
	// the branch ends the scope of the shadowing binding
	assert.Equal(t, "x", prog.Result.(*ir.Var).Name)
}

func TestLoopVariables(t *testing.T) {
	prog := parseProgram(t, "var n uint32\nfor i := range n {\n\tfor i := range i {\n\t\tout[i] = i\n\t}\n}")
	outer := prog.Body.Stmts[1].(*ir.For)
	inner := outer.Body.(*ir.Block).Stmts[0].(*ir.For)
	assert.Equal(t, "i", outer.Var)
	assert.NotEqual(t, "i", inner.Var)
	assert.Equal(t, "i", inner.Extent.(*ir.Var).Name)
	assert.Equal(t, scalar.UInt32, inner.LoopVar().T)
}

func TestPositions(t *testing.T) {
	fset := token.NewFileSet()
	prog, err := File(fset, "pos.pxl", []byte("var x int32\n\nx + 1"))
	require.NoError(t, err)
	pos := fset.Position(prog.Result.Pos())
	assert.Equal(t, "pos.pxl", pos.Filename)
	assert.Equal(t, 3, pos.Line)
	assert.Equal(t, 1, pos.Column)
}

func TestErrors(t *testing.T) {
	testCases := []struct {
		src  string
		code fatal.ErrCode
	}{
		{"y + 1", fatal.UndefinedVariable},
		{"var x float32", fatal.UnknownType},
		{"var x int8\nx + int16(1)", fatal.TypeMismatch},
		{"var x int8\nx + 200", fatal.TypeMismatch},
		{"var x uint8\nx - -1", fatal.TypeMismatch},
		{"var x int32\nx = 3", fatal.Unsupported},
		{"var x int32\nx & 3", fatal.Unsupported},
		{"var x int32\nif x {\n}", fatal.TypeMismatch},
		{"var b bool\nvar c bool\nb < c", fatal.TypeMismatch},
		{"var x int32 = bounds(10, 1)", fatal.InvertedBounds},
		{"var x uint8 = bounds(300, 400)", fatal.TypeMismatch},
		{"var x int32 = 5", fatal.Unsupported},
		{"var x int32\nbuf[0] = x\nbuf[0]", fatal.Unsupported},
		{"var x int32\nx[0] = 1", fatal.TypeMismatch},
		{"var x int32\nfoo(x)", fatal.UndefinedVariable},
		{"var x int32\nmin(x)", fatal.TypeMismatch},
		{"var min int32", fatal.Unsupported},
		{"var choose int32", fatal.Unsupported},
		{"var c bool\nvar x int8\nchoose(c, x)", fatal.TypeMismatch},
		{"var x int32\nx + 1\nx", fatal.Unsupported},
		{"var x int32 +", fatal.Parse},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			ds := parseErrors(t, tc.src)
			assert.Equal(t, tc.code, ds[0].Code, ds.Error())
		})
	}
}

func TestExpr(t *testing.T) {
	env := map[string]scalar.Type{"x": scalar.Int16, "ok": scalar.BoolT}
	e, err := Expr(token.NewFileSet(), "choose(ok, x * 2, 0) >= -3", env)
	require.NoError(t, err)
	assert.Equal(t, "choose(ok, x * 2, 0) >= -3", ir.ExprString(e))
	assert.Equal(t, scalar.BoolT, e.Type())

	_, err = Expr(token.NewFileSet(), "y", env)
	assert.Error(t, err)
}

func TestFileWithInputs(t *testing.T) {
	decls := []*ir.Declare{{Name: "n", T: scalar.Int32, Bounds: interval.New(0, 10)}}
	prog, err := FileWithInputs(token.NewFileSet(), "repl", []byte("m := n * 2\nm"), decls)
	require.NoError(t, err)
	assert.Equal(t, scalar.Int32, prog.Result.Type())
	assert.Empty(t, prog.Inputs())
}
