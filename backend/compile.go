package backend

import (
	"fmt"
	goast "go/ast"

	"github.com/cottand/pixl/frontend/ir"
)

// TranspileFile lowers prog into a Go file of package pkgName. The file
// declares
//
//	func Run(<one parameter per input, in declaration order>) <result type>
//
// which resets Memory, runs the body and returns the value of prog.Result.
// Run has no result when prog has none.
func (tp *Transpiler) TranspileFile(prog *ir.Program, pkgName string) (*goast.File, error) {
	decls, err := runtimeDecls()
	if err != nil {
		return nil, err
	}
	inputs := prog.Inputs()
	params := tp.transpileInputs(inputs)

	stmts := []goast.Stmt{&goast.ExprStmt{X: call(helper("reset"))}}
	body, err := tp.transpileStmts(prog.Body.Stmts)
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, body...)

	fnType := &goast.FuncType{Params: params}
	if prog.Result != nil {
		result, err := tp.TranspileExpr(prog.Result)
		if err != nil {
			return nil, fmt.Errorf("for program result: %w", err)
		}
		fnType.Results = fieldList(prog.Result.Type())
		stmts = append(stmts, &goast.ReturnStmt{Results: []goast.Expr{result}})
	}

	run := &goast.FuncDecl{
		Name: goast.NewIdent(EntryPoint),
		Type: fnType,
		Body: &goast.BlockStmt{List: stmts},
	}
	tp.logger().Debug("transpiled program", "inputs", len(inputs), "statements", len(stmts))
	return &goast.File{
		Name:      &goast.Ident{Name: pkgName},
		GoVersion: goVersion,
		Decls:     append(decls, run),
	}, nil
}

// transpileInputs declares one parameter for each input.
func (tp *Transpiler) transpileInputs(inputs []*ir.Declare) *goast.FieldList {
	params := &goast.FieldList{}
	for _, d := range inputs {
		params.List = append(params.List, &goast.Field{
			Names: []*goast.Ident{goast.NewIdent(d.Name)},
			Type:  transpileType(d.T),
		})
	}
	return params
}
