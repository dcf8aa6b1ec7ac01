package ir

import (
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/scalar"
)

// Stmt is the base for all statements.
//
// Names bound by Declare, Let and For are unique within a program (the parser
// renames shadowed bindings), and stay in scope until the end of the
// enclosing Block.
type Stmt interface {
	Positioner
	// StmtName is the Name of the syntax-type of the statement.
	StmtName() string
	Describe() string
	// TransformExprs rebuilds the statement with f applied to each of its
	// direct expressions, and recursively to nested statements.
	TransformExprs(f func(Expr) Expr) Stmt
	Hash() uint64
	stmtNode()
}

var (
	_ Stmt = (*Block)(nil)
	_ Stmt = (*If)(nil)
	_ Stmt = (*Let)(nil)
	_ Stmt = (*For)(nil)
	_ Stmt = (*Assert)(nil)
	_ Stmt = (*Store)(nil)
	_ Stmt = (*Declare)(nil)
)

func (*Block) stmtNode()   {}
func (*If) stmtNode()      {}
func (*Let) stmtNode()     {}
func (*For) stmtNode()     {}
func (*Assert) stmtNode()  {}
func (*Store) stmtNode()   {}
func (*Declare) stmtNode() {}

func (*Block) StmtName() string   { return "Block" }
func (*If) StmtName() string      { return "If" }
func (*Let) StmtName() string     { return "Let" }
func (*For) StmtName() string     { return "For" }
func (*Assert) StmtName() string  { return "Assert" }
func (*Store) StmtName() string   { return "Store" }
func (*Declare) StmtName() string { return "Declare" }

func (*Block) Describe() string   { return "block" }
func (*If) Describe() string      { return "if statement" }
func (*Let) Describe() string     { return "binding" }
func (*For) Describe() string     { return "loop" }
func (*Assert) Describe() string  { return "assertion" }
func (*Store) Describe() string   { return "store" }
func (*Declare) Describe() string { return "input declaration" }

type Block struct {
	Stmts []Stmt
	Range
}

func (s *Block) TransformExprs(f func(Expr) Expr) Stmt {
	copied := *s
	copied.Stmts = make([]Stmt, len(s.Stmts))
	for i, stmt := range s.Stmts {
		copied.Stmts[i] = stmt.TransformExprs(f)
	}
	return &copied
}

func (s *Block) Hash() uint64 {
	parts := make([]uint64, 0, len(s.Stmts))
	for _, stmt := range s.Stmts {
		parts = append(parts, stmt.Hash())
	}
	return hashOf("Block", parts...)
}

// If runs Then when Cond holds, and Else otherwise. Else may be nil.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
	Range
}

func (s *If) TransformExprs(f func(Expr) Expr) Stmt {
	copied := *s
	copied.Cond = f(s.Cond)
	copied.Then = s.Then.TransformExprs(f)
	if s.Else != nil {
		copied.Else = s.Else.TransformExprs(f)
	}
	return &copied
}

func (s *If) Hash() uint64 {
	var elseHash uint64
	if s.Else != nil {
		elseHash = s.Else.Hash()
	}
	return hashOf("If", s.Cond.Hash(), s.Then.Hash(), elseHash)
}

// Let binds Name to Value for the rest of the enclosing Block.
type Let struct {
	Name  string
	Value Expr
	Range
}

// Var is the variable Let binds.
func (s *Let) Var() *Var {
	return &Var{Name: s.Name, T: s.Value.Type(), Range: s.Range}
}

func (s *Let) TransformExprs(f func(Expr) Expr) Stmt {
	copied := *s
	copied.Value = f(s.Value)
	return &copied
}

func (s *Let) Hash() uint64 {
	return hashOf("Let", hashString(s.Name), s.Value.Hash())
}

// For runs Body once for each value of Var in [0, Extent). Var has the type
// of Extent.
type For struct {
	Var    string
	Extent Expr
	Body   Stmt
	Range
}

func (s *For) LoopVar() *Var {
	return &Var{Name: s.Var, T: s.Extent.Type(), Range: s.Range}
}

func (s *For) TransformExprs(f func(Expr) Expr) Stmt {
	copied := *s
	copied.Extent = f(s.Extent)
	copied.Body = s.Body.TransformExprs(f)
	return &copied
}

func (s *For) Hash() uint64 {
	return hashOf("For", hashString(s.Var), s.Extent.Hash(), s.Body.Hash())
}

// Assert is a runtime check, for example a bounds check before a Store.
// Execution aborts when Cond does not hold.
type Assert struct {
	Cond    Expr
	Message string
	Range
}

func (s *Assert) TransformExprs(f func(Expr) Expr) Stmt {
	copied := *s
	copied.Cond = f(s.Cond)
	return &copied
}

func (s *Assert) Hash() uint64 {
	return hashOf("Assert", s.Cond.Hash(), hashString(s.Message))
}

// Store writes Value into Buffer at Index.
type Store struct {
	Buffer string
	Index  Expr
	Value  Expr
	Range
}

func (s *Store) TransformExprs(f func(Expr) Expr) Stmt {
	copied := *s
	copied.Index = f(s.Index)
	copied.Value = f(s.Value)
	return &copied
}

func (s *Store) Hash() uint64 {
	return hashOf("Store", hashString(s.Buffer), s.Index.Hash(), s.Value.Hash())
}

// Declare introduces an input of type T whose value is supplied at run
// time. Bounds is a promise made by the caller about that value, it is
// Everything when there is no annotation.
type Declare struct {
	Name   string
	T      scalar.Type
	Bounds interval.Interval
	Range
}

func (s *Declare) Var() *Var {
	return &Var{Name: s.Name, T: s.T, Range: s.Range}
}

func (s *Declare) TransformExprs(func(Expr) Expr) Stmt {
	copied := *s
	return &copied
}

func (s *Declare) Hash() uint64 {
	b := s.Bounds
	return hashOf("Declare", hashString(s.Name), hashType(s.T),
		uint64(b.Min), boolBits(b.MinDefined), uint64(b.Max), boolBits(b.MaxDefined))
}

// Inputs lists the declarations of prog in order.
func Inputs(prog Stmt) []*Declare {
	var decls []*Declare
	WalkStmt(prog, func(s Stmt) {
		if d, ok := s.(*Declare); ok {
			decls = append(decls, d)
		}
	})
	return decls
}

// WalkStmt calls f on s and then on every statement nested in it, in
// source order.
func WalkStmt(s Stmt, f func(Stmt)) {
	if s == nil {
		return
	}
	f(s)
	switch s := s.(type) {
	case *Block:
		for _, stmt := range s.Stmts {
			WalkStmt(stmt, f)
		}
	case *If:
		WalkStmt(s.Then, f)
		WalkStmt(s.Else, f)
	case *For:
		WalkStmt(s.Body, f)
	}
}
