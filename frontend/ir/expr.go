package ir

import (
	"go/token"
	"math"
	"strconv"

	"github.com/cottand/pixl/frontend/scalar"
)

// Expr is the base for all expressions. Every expression has a fixed-width
// scalar type, and its value is what a machine of that width computes, so
// arithmetic wraps around.
//
// The following expressions are supported:
//
//	IntImm:   signed integer constant
//	UIntImm:  unsigned integer constant
//	BoolImm:  boolean constant
//	Var:      variable
//	Cast:     conversion to another scalar type
//	Binary:   arithmetic (+ - * / % << >>)
//	Compare:  comparison (== != < <= > >=)
//	Logical:  short-circuit && and ||
//	Not:      boolean negation
//	Select:   choose(cond, t, f), both branches have the same type
//	Call:     intrinsic call, one of min, max, abs
type Expr interface {
	Positioner
	Type() scalar.Type
	// ExprName is the Name of the syntax-type of the expression.
	ExprName() string
	// Describe is what to call this expression in error messages
	Describe() string

	// Transform should, in order:
	//  - copy the expression
	//  - call Transform(f) on any child expressions (thus copying them too)
	//  - call f on this Expr
	// In practice this means first copying the entire tree, applying f to each component bottom-up,
	// and returning the result
	Transform(f func(Expr) Expr) Expr
	// Hash is structural and ignores positions, so that Equal expressions
	// have the same Hash.
	Hash() uint64
	exprNode()
}

var (
	_ Expr = (*IntImm)(nil)
	_ Expr = (*UIntImm)(nil)
	_ Expr = (*BoolImm)(nil)
	_ Expr = (*Var)(nil)
	_ Expr = (*Cast)(nil)
	_ Expr = (*Binary)(nil)
	_ Expr = (*Compare)(nil)
	_ Expr = (*Logical)(nil)
	_ Expr = (*Not)(nil)
	_ Expr = (*Select)(nil)
	_ Expr = (*Call)(nil)
)

func (e *IntImm) Describe() string  { return "integer constant" }
func (e *UIntImm) Describe() string { return "unsigned constant" }
func (e *BoolImm) Describe() string { return "boolean constant" }
func (e *Var) Describe() string     { return "variable" }
func (e *Cast) Describe() string    { return "conversion" }
func (e *Binary) Describe() string  { return "arithmetic operation" }
func (e *Compare) Describe() string { return "comparison" }
func (e *Logical) Describe() string { return "logical operation" }
func (e *Not) Describe() string     { return "negation" }
func (e *Select) Describe() string  { return "select" }
func (e *Call) Describe() string    { return "intrinsic call" }

func (*IntImm) exprNode()  {}
func (*UIntImm) exprNode() {}
func (*BoolImm) exprNode() {}
func (*Var) exprNode()     {}
func (*Cast) exprNode()    {}
func (*Binary) exprNode()  {}
func (*Compare) exprNode() {}
func (*Logical) exprNode() {}
func (*Not) exprNode()     {}
func (*Select) exprNode()  {}
func (*Call) exprNode()    {}

// IntImm is a signed integer constant. Value is always within the range of T.
type IntImm struct {
	Value int64
	T     scalar.Type
	Range
}

func (e *IntImm) Type() scalar.Type { return e.T }
func (e *IntImm) ExprName() string  { return strconv.FormatInt(e.Value, 10) }
func (e *IntImm) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}
func (e *IntImm) Hash() uint64 {
	return hashOf("IntImm", uint64(e.Value), hashType(e.T))
}

// UIntImm is an unsigned integer constant. Value is always within the range of T.
type UIntImm struct {
	Value uint64
	T     scalar.Type
	Range
}

func (e *UIntImm) Type() scalar.Type { return e.T }
func (e *UIntImm) ExprName() string  { return strconv.FormatUint(e.Value, 10) }
func (e *UIntImm) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}
func (e *UIntImm) Hash() uint64 {
	return hashOf("UIntImm", e.Value, hashType(e.T))
}

type BoolImm struct {
	Value bool
	Range
}

func (e *BoolImm) Type() scalar.Type { return scalar.BoolT }
func (e *BoolImm) ExprName() string  { return strconv.FormatBool(e.Value) }
func (e *BoolImm) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}
func (e *BoolImm) Hash() uint64 {
	var v uint64
	if e.Value {
		v = 1
	}
	return hashOf("BoolImm", v)
}

// Var refers to a declared input, a let binding or a loop variable. Names
// are unique within a program.
type Var struct {
	Name string
	T    scalar.Type
	Range
}

func (e *Var) Type() scalar.Type { return e.T }
func (e *Var) ExprName() string  { return e.Name }
func (e *Var) Transform(f func(Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}
func (e *Var) Hash() uint64 {
	return hashOf("Var", hashString(e.Name), hashType(e.T))
}

// Cast converts X to T, wrapping around when T cannot hold the value.
// Casting to bool is x != 0.
type Cast struct {
	X Expr
	T scalar.Type
	Range
}

func (e *Cast) Type() scalar.Type { return e.T }
func (e *Cast) ExprName() string  { return "Cast" }
func (e *Cast) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	return f(&copied)
}
func (e *Cast) Hash() uint64 {
	return hashOf("Cast", e.X.Hash(), hashType(e.T))
}

// Binary is integer arithmetic. X and Y have the same type. Division and
// remainder are Euclidean, and dividing by zero yields zero. Shifting by a
// negative amount shifts the other way.
type Binary struct {
	Op   token.Token
	X, Y Expr
	Range
}

func (e *Binary) Type() scalar.Type { return e.X.Type() }
func (e *Binary) ExprName() string  { return e.Op.String() }
func (e *Binary) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	copied.Y = e.Y.Transform(f)
	return f(&copied)
}
func (e *Binary) Hash() uint64 {
	return hashOf("Binary", uint64(e.Op), e.X.Hash(), e.Y.Hash())
}

// Compare compares two integers or booleans of the same type.
type Compare struct {
	Op   token.Token
	X, Y Expr
	Range
}

func (e *Compare) Type() scalar.Type { return scalar.BoolT }
func (e *Compare) ExprName() string  { return e.Op.String() }
func (e *Compare) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	copied.Y = e.Y.Transform(f)
	return f(&copied)
}
func (e *Compare) Hash() uint64 {
	return hashOf("Compare", uint64(e.Op), e.X.Hash(), e.Y.Hash())
}

type Logical struct {
	Op   token.Token // token.LAND or token.LOR
	X, Y Expr
	Range
}

func (e *Logical) Type() scalar.Type { return scalar.BoolT }
func (e *Logical) ExprName() string  { return e.Op.String() }
func (e *Logical) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	copied.Y = e.Y.Transform(f)
	return f(&copied)
}
func (e *Logical) Hash() uint64 {
	return hashOf("Logical", uint64(e.Op), e.X.Hash(), e.Y.Hash())
}

type Not struct {
	X Expr
	Range
}

func (e *Not) Type() scalar.Type { return scalar.BoolT }
func (e *Not) ExprName() string  { return "!" }
func (e *Not) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.X = e.X.Transform(f)
	return f(&copied)
}
func (e *Not) Hash() uint64 {
	return hashOf("Not", e.X.Hash())
}

// Select evaluates to True if Cond holds and to False otherwise.
type Select struct {
	Cond, True, False Expr
	Range
}

func (e *Select) Type() scalar.Type { return e.True.Type() }
func (e *Select) ExprName() string  { return SelectName }
func (e *Select) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Cond = e.Cond.Transform(f)
	copied.True = e.True.Transform(f)
	copied.False = e.False.Transform(f)
	return f(&copied)
}
func (e *Select) Hash() uint64 {
	return hashOf("Select", e.Cond.Hash(), e.True.Hash(), e.False.Hash())
}

type Intrinsic uint8

const (
	_ Intrinsic = iota
	Min
	Max
	Abs
)

func (i Intrinsic) String() string {
	switch i {
	case Min:
		return "min"
	case Max:
		return "max"
	case Abs:
		return "abs"
	}
	return "invalid"
}

// Arity is the number of arguments the intrinsic takes.
func (i Intrinsic) Arity() int {
	if i == Abs {
		return 1
	}
	return 2
}

// Call applies an intrinsic. Arguments have the same type, which is also the
// type of the result. abs wraps around like negation does.
type Call struct {
	Fn   Intrinsic
	Args []Expr
	Range
}

func (e *Call) Type() scalar.Type { return e.Args[0].Type() }
func (e *Call) ExprName() string  { return e.Fn.String() }
func (e *Call) Transform(f func(Expr) Expr) Expr {
	copied := *e
	copied.Args = make([]Expr, len(e.Args))
	for i, arg := range e.Args {
		copied.Args[i] = arg.Transform(f)
	}
	return f(&copied)
}
func (e *Call) Hash() uint64 {
	parts := []uint64{uint64(e.Fn)}
	for _, arg := range e.Args {
		parts = append(parts, arg.Hash())
	}
	return hashOf("Call", parts...)
}

// Const builds the constant v of type t at r, wrapped into the range of t.
func Const(t scalar.Type, v int64, r Range) Expr {
	switch {
	case t.IsBool():
		return &BoolImm{Value: v != 0, Range: r}
	case t.IsUInt():
		return &UIntImm{Value: uint64(t.Wrap(v)), T: t, Range: r}
	}
	return &IntImm{Value: t.Wrap(v), T: t, Range: r}
}

// AsConst returns the value of e if it is a constant. Unsigned constants
// above MaxInt64 are not representable and report false.
func AsConst(e Expr) (int64, bool) {
	switch e := e.(type) {
	case *IntImm:
		return e.Value, true
	case *UIntImm:
		if e.Value > math.MaxInt64 {
			return 0, false
		}
		return int64(e.Value), true
	case *BoolImm:
		if e.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func IsConst(e Expr, v int64) bool {
	c, ok := AsConst(e)
	return ok && c == v
}

// Flip returns the comparison that holds for (y, x) when op holds for (x, y).
func Flip(op token.Token) token.Token {
	switch op {
	case token.LSS:
		return token.GTR
	case token.LEQ:
		return token.GEQ
	case token.GTR:
		return token.LSS
	case token.GEQ:
		return token.LEQ
	}
	return op
}

// Negate returns the comparison that holds exactly when op does not.
func Negate(op token.Token) token.Token {
	switch op {
	case token.EQL:
		return token.NEQ
	case token.NEQ:
		return token.EQL
	case token.LSS:
		return token.GEQ
	case token.LEQ:
		return token.GTR
	case token.GTR:
		return token.LEQ
	case token.GEQ:
		return token.LSS
	}
	return op
}
