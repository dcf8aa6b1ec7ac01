// Package fatal holds the two kinds of failure the compiler core can report.
//
// A Violation is an internal invariant that a caller broke (for example asking
// for the intersection of two disjoint intervals). It is raised with a panic
// and only converted back into an error at the public entry points, because
// continuing after one would produce unsound facts.
//
// A Diagnostic is an ordinary, user-facing error such as a parse failure.
package fatal

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/pkg/errors"
)

type ErrCode int

const (
	None ErrCode = iota
	// violations
	InvertedBounds
	EmptyIntersection
	ScopeDepthExceeded
	UnbalancedScope
	Unreachable
	// diagnostics
	Parse
	UnknownType
	UndefinedVariable
	TypeMismatch
	Unsupported
)

func (c ErrCode) String() string {
	switch c {
	case InvertedBounds:
		return "inverted bounds"
	case EmptyIntersection:
		return "empty intersection"
	case ScopeDepthExceeded:
		return "fact scope depth exceeded"
	case UnbalancedScope:
		return "unbalanced fact scope"
	case Unreachable:
		return "unreachable"
	case Parse:
		return "parse"
	case UnknownType:
		return "unknown type"
	case UndefinedVariable:
		return "undefined variable"
	case TypeMismatch:
		return "type mismatch"
	case Unsupported:
		return "unsupported"
	default:
		return "none"
	}
}

// Violation is an internal invariant failure. Op names the operation that
// detected it, e.g. "interval.Intersection".
type Violation struct {
	Code    ErrCode
	Op      string
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("internal error (E%03d %s) in %s: %s", v.Code, v.Code, v.Op, v.Message)
}

// Raise aborts the current compilation. The panic value is the Violation
// wrapped with a stack trace, print it with %+v to see where it came from.
func Raise(code ErrCode, op string, format string, args ...any) {
	panic(errors.WithStack(&Violation{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}))
}

// Assert raises an Unreachable violation in op when cond does not hold.
func Assert(cond bool, op string, format string, args ...any) {
	if !cond {
		Raise(Unreachable, op, format, args...)
	}
}

// Recover turns a raised Violation back into an error. It must be deferred
// directly. Panics that are not violations are re-raised.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	asErr, ok := r.(error)
	if !ok {
		panic(r)
	}
	var v *Violation
	if !errors.As(asErr, &v) {
		panic(r)
	}
	*err = asErr
}

// AsViolation returns the Violation inside err, if there is one.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	ok := errors.As(err, &v)
	return v, ok
}

// Diagnostic is a user-facing error tied to a source position.
type Diagnostic struct {
	Code    ErrCode
	Pos     token.Pos
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("(E%03d) %s", d.Code, d.Message)
}

func Diag(code ErrCode, pos token.Pos, format string, args ...any) *Diagnostic {
	return &Diagnostic{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// FormatWithPosition renders d using positions from fset, if it knows them.
func FormatWithPosition(d *Diagnostic, fset *token.FileSet) string {
	if fset == nil || !d.Pos.IsValid() {
		return d.Error()
	}
	return fmt.Sprintf("%s: %s", fset.Position(d.Pos), d.Error())
}

// Diagnostics collects every user-facing error found in one input, in
// source order.
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// Format renders every diagnostic on its own line, with positions from fset.
func (ds Diagnostics) Format(fset *token.FileSet) string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = FormatWithPosition(d, fset)
	}
	return strings.Join(msgs, "\n")
}

// AsDiagnostics returns the diagnostics inside err: either a Diagnostics or
// a single Diagnostic.
func AsDiagnostics(err error) (Diagnostics, bool) {
	var ds Diagnostics
	if errors.As(err, &ds) {
		return ds, true
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return Diagnostics{d}, true
	}
	return nil, false
}
