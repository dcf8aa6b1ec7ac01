package fatal

import (
	"errors"
	"fmt"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raising(code ErrCode) (err error) {
	defer Recover(&err)
	Raise(code, "test.op", "value %d", 3)
	return nil
}

func TestRecoverViolation(t *testing.T) {
	err := raising(EmptyIntersection)
	require.Error(t, err)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, EmptyIntersection, v.Code)
	assert.Equal(t, "test.op", v.Op)
	assert.Equal(t, "value 3", v.Message)
	assert.Contains(t, err.Error(), "empty intersection")
	// the wrapped error carries a stack trace
	assert.Contains(t, fmt.Sprintf("%+v", err), "raising")
}

func TestRecoverLeavesOtherPanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		var err error
		defer Recover(&err)
		panic("boom")
	})
	assert.Panics(t, func() {
		var err error
		defer Recover(&err)
		panic(errors.New("not a violation"))
	})
}

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "op", "fine") })
	assert.Panics(t, func() { Assert(false, "op", "not fine") })
}

func TestDiagnosticFormatting(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("prog.pxl", -1, 100)
	f.SetLines([]int{0, 10, 20})
	d := Diag(UndefinedVariable, f.Pos(12), "variable '%s' is not defined", "x")

	assert.Equal(t, "(E008) variable 'x' is not defined", d.Error())
	assert.Equal(t, "prog.pxl:2:3: (E008) variable 'x' is not defined", FormatWithPosition(d, fset))
	assert.Equal(t, d.Error(), FormatWithPosition(d, nil))
}

func TestDiagnostics(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("prog.pxl", -1, 100)
	f.SetLines([]int{0, 10, 20})
	ds := Diagnostics{
		Diag(Parse, f.Pos(1), "expected ')'"),
		Diag(TypeMismatch, f.Pos(21), "mismatched types"),
	}
	assert.Equal(t, "(E006) expected ')'\n(E009) mismatched types", ds.Error())
	assert.Equal(t, "prog.pxl:1:2: (E006) expected ')'\nprog.pxl:3:2: (E009) mismatched types", ds.Format(fset))

	wrapped := fmt.Errorf("compiling: %w", error(ds))
	found, ok := AsDiagnostics(wrapped)
	require.True(t, ok)
	assert.Len(t, found, 2)

	single, ok := AsDiagnostics(Diag(Unsupported, token.NoPos, "no"))
	require.True(t, ok)
	assert.Len(t, single, 1)

	_, ok = AsDiagnostics(errors.New("other"))
	assert.False(t, ok)
}
