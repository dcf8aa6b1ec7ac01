package backend

import (
	goast "go/ast"

	"github.com/cottand/pixl/frontend/scalar"
)

// transpileType names the Go type with the same width and signedness as t.
func transpileType(t scalar.Type) goast.Expr {
	return goast.NewIdent(t.String())
}

// wideType is the 64-bit type the runtime helpers compute t in.
func wideType(t scalar.Type) scalar.Type {
	if t.IsUInt() {
		return scalar.UInt64
	}
	return scalar.Int64
}

// fieldList declares one unnamed result of type t.
func fieldList(t scalar.Type) *goast.FieldList {
	return &goast.FieldList{List: []*goast.Field{{Type: transpileType(t)}}}
}
