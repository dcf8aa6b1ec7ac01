// Package parse reads programs written in a small subset of Go syntax into
// the typed IR.
//
//	var n int32 = bounds(0, 1024)   // an input, with the range callers promise
//	var k uint8                     // an input of any value of its type
//	half := n / 2                   // a binding
//	for i := range half {           // i takes every value in [0, half)
//		assert(i < 512, "in range") // a runtime check
//		out[i] = int32(k) * i       // a store into the buffer out
//	}
//	if k > 10 { ... } else { ... }
//	min(n, 3) + abs(n - 7)          // an optional final expression: the result
//
// Untyped integer literals take the type of the other operand, or int32.
package parse

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"strconv"

	"github.com/cottand/pixl/frontend/fatal"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
	"github.com/cottand/pixl/util"
)

// DefaultLiteralType is the type of an untyped literal with nothing else to
// take a type from.
var DefaultLiteralType = scalar.Int32

const wrapperPrefix = "package pixl; func _() {\n"

// File parses a whole program. Positions are recorded in fset under
// filename. The returned error is a fatal.Diagnostics.
func File(fset *token.FileSet, filename string, src []byte) (*ir.Program, error) {
	return FileWithInputs(fset, filename, src, nil)
}

// FileWithInputs is like File, but the program may also refer to the inputs
// declared by decls without declaring them again.
func FileWithInputs(fset *token.FileSet, filename string, src []byte, decls []*ir.Declare) (*ir.Program, error) {
	body, err := parseBody(fset, filename, src)
	if err != nil {
		return nil, err
	}
	p := newParser()
	for _, d := range decls {
		p.define(d.Name, d.Var())
	}
	prog := p.program(body)
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return prog, nil
}

// Expr parses a single expression over the variables in env.
func Expr(fset *token.FileSet, src string, env map[string]scalar.Type) (ir.Expr, error) {
	e, err := goparser.ParseExprFrom(fset, "", src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, diagnosticsOf(err)
	}
	p := newParser()
	for name, t := range env {
		p.define(name, &ir.Var{Name: name, T: t})
	}
	converted := p.expr(e, nil)
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return converted, nil
}

func parseBody(fset *token.FileSet, filename string, src []byte) (*ast.BlockStmt, error) {
	// the program is the body of a function, the line directive keeps
	// positions relative to the original source
	wrapped := wrapperPrefix + "//line " + filename + ":1:1\n" + string(src) + "\n}\n"
	f, err := goparser.ParseFile(fset, filename, wrapped, goparser.SkipObjectResolution)
	if err != nil {
		return nil, diagnosticsOf(err)
	}
	fn, ok := f.Decls[0].(*ast.FuncDecl)
	if len(f.Decls) != 1 || !ok || fn.Body == nil {
		return nil, fatal.Diagnostics{fatal.Diag(fatal.Parse, f.Pos(), "unexpected top-level declaration")}
	}
	return fn.Body, nil
}

func diagnosticsOf(err error) fatal.Diagnostics {
	var list scanner.ErrorList
	if errList, ok := err.(scanner.ErrorList); ok {
		list = errList
	} else {
		return fatal.Diagnostics{fatal.Diag(fatal.Parse, token.NoPos, "%v", err)}
	}
	ds := make(fatal.Diagnostics, 0, len(list))
	for _, e := range list {
		ds = append(ds, &fatal.Diagnostic{Code: fatal.Parse, Message: fmt.Sprintf("%v: %s", e.Pos, e.Msg)})
	}
	return ds
}

type parser struct {
	scopes  []map[string]*ir.Var
	bound   map[string]bool
	buffers map[string]bool
	errs    fatal.Diagnostics
}

func newParser() *parser {
	return &parser{
		scopes:  []map[string]*ir.Var{{}},
		bound:   map[string]bool{},
		buffers: map[string]bool{},
	}
}

func (p *parser) errorf(code fatal.ErrCode, at ir.Positioner, format string, args ...any) {
	p.errs = append(p.errs, fatal.Diag(code, at.Pos(), format, args...))
}

func (p *parser) push() { p.scopes = append(p.scopes, map[string]*ir.Var{}) }
func (p *parser) pop()  { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *parser) lookup(name string) (*ir.Var, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (p *parser) define(name string, v *ir.Var) {
	p.scopes[len(p.scopes)-1][name] = v
	p.bound[v.Name] = true
}

// bind introduces a new binding called name, and returns the unique name it
// has in the IR: bindings that reuse a name get a mangled one.
func (p *parser) bind(id *ast.Ident, t scalar.Type) *ir.Var {
	name := id.Name
	if ir.IsReserved(name) {
		p.errorf(fatal.Unsupported, id, "cannot bind reserved name '%s'", name)
	}
	if p.buffers[name] {
		p.errorf(fatal.TypeMismatch, id, "'%s' is already used as a buffer", name)
	}
	if _, err := scalar.ParseType(name); err == nil {
		p.errorf(fatal.Unsupported, id, "cannot bind type name '%s'", name)
	}
	unique := name
	if p.bound[unique] {
		unique = util.MangledIdentFrom(id.Pos(), name)
	}
	v := &ir.Var{Name: unique, T: t, Range: ir.RangeOf(id)}
	p.define(name, v)
	return v
}

func (p *parser) program(body *ast.BlockStmt) *ir.Program {
	prog := &ir.Program{Body: &ir.Block{Range: ir.RangeOf(body)}}
	for i, stmt := range body.List {
		last := i == len(body.List)-1
		if exprStmt, ok := stmt.(*ast.ExprStmt); ok && last && !isAssertCall(exprStmt.X) {
			prog.Result = p.expr(exprStmt.X, nil)
			continue
		}
		if s := p.stmt(stmt); s != nil {
			prog.Body.Stmts = append(prog.Body.Stmts, s...)
		}
	}
	return prog
}

func isAssertCall(e ast.Expr) bool {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return false
	}
	id, ok := call.Fun.(*ast.Ident)
	return ok && id.Name == ir.AssertName
}

func (p *parser) block(b *ast.BlockStmt) *ir.Block {
	p.push()
	defer p.pop()
	block := &ir.Block{Range: ir.RangeOf(b)}
	for _, stmt := range b.List {
		block.Stmts = append(block.Stmts, p.stmt(stmt)...)
	}
	return block
}

// stmt converts one statement. A var declaration with several names becomes
// several Declares.
func (p *parser) stmt(s ast.Stmt) []ir.Stmt {
	switch s := s.(type) {
	case *ast.DeclStmt:
		return p.declare(s)
	case *ast.AssignStmt:
		if st := p.assign(s); st != nil {
			return []ir.Stmt{st}
		}
	case *ast.IfStmt:
		return []ir.Stmt{p.ifStmt(s)}
	case *ast.RangeStmt:
		if st := p.forStmt(s); st != nil {
			return []ir.Stmt{st}
		}
	case *ast.BlockStmt:
		return []ir.Stmt{p.block(s)}
	case *ast.ExprStmt:
		if st := p.assert(s.X); st != nil {
			return []ir.Stmt{st}
		}
	case *ast.EmptyStmt:
	default:
		p.errorf(fatal.Unsupported, s, "unsupported statement")
	}
	return nil
}

func (p *parser) declare(s *ast.DeclStmt) []ir.Stmt {
	gen, ok := s.Decl.(*ast.GenDecl)
	if !ok || gen.Tok != token.VAR {
		p.errorf(fatal.Unsupported, s, "only var declarations are supported")
		return nil
	}
	var decls []ir.Stmt
	for _, spec := range gen.Specs {
		vs := spec.(*ast.ValueSpec)
		if vs.Type == nil {
			p.errorf(fatal.UnknownType, vs, "input declarations need a type")
			continue
		}
		t, ok := p.typeOf(vs.Type)
		if !ok {
			continue
		}
		bounds := interval.Everything()
		switch len(vs.Values) {
		case 0:
		case 1:
			bounds, ok = p.bounds(vs.Values[0], t)
			if !ok {
				continue
			}
			if len(vs.Names) != 1 {
				p.errorf(fatal.Unsupported, vs, "a bounds annotation needs a single name")
			}
		default:
			p.errorf(fatal.Unsupported, vs, "a bounds annotation needs a single name")
			continue
		}
		for _, name := range vs.Names {
			v := p.bind(name, t)
			decls = append(decls, &ir.Declare{Name: v.Name, T: t, Bounds: bounds, Range: ir.RangeOf(vs)})
		}
	}
	return decls
}

func (p *parser) typeOf(e ast.Expr) (scalar.Type, bool) {
	id, ok := e.(*ast.Ident)
	if !ok {
		p.errorf(fatal.UnknownType, e, "unsupported type")
		return scalar.Type{}, false
	}
	t, err := scalar.ParseType(id.Name)
	if err != nil {
		p.errorf(fatal.UnknownType, e, "%v", err)
		return scalar.Type{}, false
	}
	return t, true
}

// bounds reads a bounds(lo, hi) annotation, where either side may be _.
func (p *parser) bounds(e ast.Expr, t scalar.Type) (interval.Interval, bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok || !isIdent(call.Fun, ir.BoundsName) || len(call.Args) != 2 {
		p.errorf(fatal.Unsupported, e, "inputs can only be initialised with bounds(min, max)")
		return interval.Interval{}, false
	}
	if !t.IsInteger() {
		p.errorf(fatal.TypeMismatch, e, "bounds on a %v input", t)
		return interval.Interval{}, false
	}
	var b interval.Interval
	if !isIdent(call.Args[0], "_") {
		lo, ok := p.constant(call.Args[0])
		if !ok {
			return interval.Interval{}, false
		}
		b.Min, b.MinDefined = lo, true
	}
	if !isIdent(call.Args[1], "_") {
		hi, ok := p.constant(call.Args[1])
		if !ok {
			return interval.Interval{}, false
		}
		b.Max, b.MaxDefined = hi, true
	}
	if b.IsBounded() && b.Min > b.Max {
		p.errorf(fatal.InvertedBounds, e, "bounds(%d, %d) is empty", b.Min, b.Max)
		return interval.Interval{}, false
	}
	typeRange := interval.BoundsOfType(t)
	if b.Lt(typeRange).Proven() || b.Gt(typeRange).Proven() {
		p.errorf(fatal.TypeMismatch, e, "no %v value is within %v", t, b)
		return interval.Interval{}, false
	}
	return b, true
}

// constant reads a possibly negated integer literal.
func (p *parser) constant(e ast.Expr) (int64, bool) {
	neg := false
	for {
		switch inner := e.(type) {
		case *ast.ParenExpr:
			e = inner.X
			continue
		case *ast.UnaryExpr:
			if inner.Op == token.SUB {
				neg = !neg
				e = inner.X
				continue
			}
		}
		break
	}
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		p.errorf(fatal.Unsupported, e, "expected an integer constant")
		return 0, false
	}
	u, err := strconv.ParseUint(lit.Value, 0, 64)
	switch {
	case err != nil, !neg && u > 1<<63-1, neg && u > 1<<63:
		p.errorf(fatal.TypeMismatch, lit, "constant %s overflows int64", lit.Value)
		return 0, false
	case neg:
		return -int64(u), true
	}
	return int64(u), true
}

func (p *parser) assign(s *ast.AssignStmt) ir.Stmt {
	if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
		p.errorf(fatal.Unsupported, s, "only single assignments are supported")
		return nil
	}
	switch s.Tok {
	case token.DEFINE:
		id, ok := s.Lhs[0].(*ast.Ident)
		if !ok {
			p.errorf(fatal.Unsupported, s, "can only bind a name")
			return nil
		}
		value := p.expr(s.Rhs[0], nil)
		if value == nil {
			return nil
		}
		v := p.bind(id, value.Type())
		return &ir.Let{Name: v.Name, Value: value, Range: ir.RangeOf(s)}
	case token.ASSIGN:
		index, ok := s.Lhs[0].(*ast.IndexExpr)
		if !ok {
			p.errorf(fatal.Unsupported, s, "variables cannot be reassigned, only buffers can be stored into")
			return nil
		}
		buf, ok := index.X.(*ast.Ident)
		if !ok {
			p.errorf(fatal.Unsupported, index.X, "expected a buffer name")
			return nil
		}
		if _, isVar := p.lookup(buf.Name); isVar || ir.IsReserved(buf.Name) {
			p.errorf(fatal.TypeMismatch, buf, "'%s' is not a buffer", buf.Name)
			return nil
		}
		p.buffers[buf.Name] = true
		idx := p.expr(index.Index, nil)
		value := p.expr(s.Rhs[0], nil)
		if idx == nil || value == nil {
			return nil
		}
		if !idx.Type().IsInteger() {
			p.errorf(fatal.TypeMismatch, index.Index, "buffer index must be an integer, not %v", idx.Type())
			return nil
		}
		return &ir.Store{Buffer: buf.Name, Index: idx, Value: value, Range: ir.RangeOf(s)}
	}
	p.errorf(fatal.Unsupported, s, "unsupported assignment %v", s.Tok)
	return nil
}

func (p *parser) ifStmt(s *ast.IfStmt) ir.Stmt {
	if s.Init != nil {
		p.errorf(fatal.Unsupported, s.Init, "if statements cannot have an init statement")
	}
	cond := p.boolExpr(s.Cond)
	then := p.block(s.Body)
	st := &ir.If{Cond: cond, Then: then, Range: ir.RangeOf(s)}
	switch elseStmt := s.Else.(type) {
	case nil:
	case *ast.BlockStmt:
		st.Else = p.block(elseStmt)
	case *ast.IfStmt:
		st.Else = p.ifStmt(elseStmt)
	}
	if cond == nil {
		st.Cond = ir.BoolLiteral(false, s)
	}
	return st
}

func (p *parser) forStmt(s *ast.RangeStmt) ir.Stmt {
	extent := p.expr(s.X, nil)
	if extent == nil {
		return nil
	}
	if !extent.Type().IsInteger() {
		p.errorf(fatal.TypeMismatch, s.X, "cannot range over %v", extent.Type())
		return nil
	}
	p.push()
	defer p.pop()
	var loopVar *ir.Var
	switch {
	case s.Key == nil:
		loopVar = &ir.Var{Name: util.MangledIdentFrom(s.Pos(), "i"), T: extent.Type()}
	case s.Tok != token.DEFINE || s.Value != nil:
		p.errorf(fatal.Unsupported, s, "expected 'for i := range n'")
		return nil
	default:
		id, ok := s.Key.(*ast.Ident)
		if !ok {
			p.errorf(fatal.Unsupported, s.Key, "expected a loop variable")
			return nil
		}
		if id.Name == "_" {
			loopVar = &ir.Var{Name: util.MangledIdentFrom(s.Pos(), "i"), T: extent.Type()}
			break
		}
		loopVar = p.bind(id, extent.Type())
	}
	body := p.block(s.Body)
	return &ir.For{Var: loopVar.Name, Extent: extent, Body: body, Range: ir.RangeOf(s)}
}

func (p *parser) assert(e ast.Expr) ir.Stmt {
	call, ok := e.(*ast.CallExpr)
	if !ok || !isIdent(call.Fun, ir.AssertName) {
		p.errorf(fatal.Unsupported, e, "expression value is unused")
		return nil
	}
	if len(call.Args) < 1 || len(call.Args) > 2 {
		p.errorf(fatal.Unsupported, call, "assert takes a condition and an optional message")
		return nil
	}
	st := &ir.Assert{Range: ir.RangeOf(call)}
	if len(call.Args) == 2 {
		lit, ok := call.Args[1].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			p.errorf(fatal.Unsupported, call.Args[1], "assert message must be a string literal")
			return nil
		}
		msg, err := strconv.Unquote(lit.Value)
		if err != nil {
			p.errorf(fatal.Parse, lit, "%v", err)
			return nil
		}
		st.Message = msg
	}
	st.Cond = p.boolExpr(call.Args[0])
	if st.Cond == nil {
		return nil
	}
	return st
}

func isIdent(e ast.Expr, name string) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == name
}
