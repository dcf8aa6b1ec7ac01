package simplify

import (
	"go/token"
	"math"

	"github.com/benbjohnson/immutable"

	"github.com/cottand/pixl/frontend/align"
	"github.com/cottand/pixl/frontend/facts"
	"github.com/cottand/pixl/frontend/fatal"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/internal/arith"
	"github.com/cottand/pixl/internal/log"
	"github.com/cottand/pixl/util"
)

var scopeLogger = log.DefaultLogger.With("section", "simplify.scope")

// FactScope holds what is assumed about the program for the extent of one
// branch. Everything learned through it is forgotten by Pop, which must run
// on every exit path:
//
//	scope := s.Scope()
//	defer scope.Pop()
//	scope.LearnTrue(cond)
type FactScope struct {
	s     *Simplifier
	depth int

	// names whose facts or replacement got pushed, in order
	pushedFacts        []string
	pushedReplacements []string

	savedTruths     immutable.Set[ir.Expr]
	savedFalsehoods immutable.Set[ir.Expr]
	popped          bool
}

// Scope opens a new FactScope nested in the innermost open one.
func (s *Simplifier) Scope() *FactScope {
	depth := s.scopes.Len() + 1
	if depth > s.cfg.MaxScopeDepth {
		fatal.Raise(fatal.ScopeDepthExceeded, "simplify.Scope", "fact scopes nest deeper than %d", s.cfg.MaxScopeDepth)
	}
	scope := &FactScope{
		s:               s,
		depth:           depth,
		savedTruths:     s.truths,
		savedFalsehoods: s.falsehoods,
	}
	s.scopes.Push(scope)
	return scope
}

// Depth is 1 for the outermost scope.
func (f *FactScope) Depth() int { return f.depth }

// Pop forgets everything learned in f, restoring exactly what was known
// before f was opened. Scopes must be popped innermost first.
func (f *FactScope) Pop() {
	if f.popped {
		fatal.Raise(fatal.UnbalancedScope, "simplify.FactScope.Pop", "scope at depth %d popped twice", f.depth)
	}
	if top, ok := f.s.scopes.Peek(); !ok || top != f {
		fatal.Raise(fatal.UnbalancedScope, "simplify.FactScope.Pop", "scope at depth %d popped while a nested scope is open", f.depth)
	}
	for name := range util.Reverse(f.pushedFacts) {
		f.s.bindings[name].Pop()
	}
	for name := range util.Reverse(f.pushedReplacements) {
		f.s.replacements[name].Pop()
	}
	f.s.truths, f.s.falsehoods = f.savedTruths, f.savedFalsehoods
	f.s.scopes.Pop()
	f.popped = true
	scopeLogger.Debug("popped fact scope", "depth", f.depth, "facts", len(f.pushedFacts), "replacements", len(f.pushedReplacements))
}

func (f *FactScope) checkOpen(op string) {
	if f.popped {
		fatal.Raise(fatal.UnbalancedScope, op, "scope at depth %d used after Pop", f.depth)
	}
}

// Bind records that the variable name has facts info until f is popped.
func (f *FactScope) Bind(name string, info facts.Info) {
	f.checkOpen("simplify.FactScope.Bind")
	f.s.pushFacts(name, info)
	f.pushedFacts = append(f.pushedFacts, name)
}

// narrow intersects what is known about name with info.
func (f *FactScope) narrow(name string, info facts.Info) {
	current, ok := f.s.lookupFacts(name)
	if !ok {
		return
	}
	narrowed := current.Intersect(info)
	if narrowed == current {
		return
	}
	scopeLogger.Debug("narrowed", "var", name, "from", current.String(), "to", narrowed.String())
	f.Bind(name, narrowed)
}

func (f *FactScope) replace(name string, with ir.Expr) {
	stack, ok := f.s.replacements[name]
	if !ok {
		stack = &util.Stack[ir.Expr]{}
		f.s.replacements[name] = stack
	}
	stack.Push(with)
	f.pushedReplacements = append(f.pushedReplacements, name)
}

// LearnTrue assumes cond holds until f is popped.
func (f *FactScope) LearnTrue(cond ir.Expr) {
	f.checkOpen("simplify.FactScope.LearnTrue")
	switch cond := cond.(type) {
	case *ir.BoolImm:
		// learning false means the branch is unreachable, nothing to use
		return
	case *ir.Not:
		f.LearnFalse(cond.X)
		return
	case *ir.Var:
		f.replace(cond.Name, ir.BoolLiteral(true, cond))
		f.narrow(cond.Name, facts.Const(1))
	case *ir.Logical:
		if cond.Op == token.LAND {
			f.LearnTrue(cond.X)
			f.LearnTrue(cond.Y)
		}
	case *ir.Compare:
		f.learnComparison(cond.Op, cond.X, cond.Y)
		f.s.falsehoods = f.s.falsehoods.Add(&ir.Compare{Op: ir.Negate(cond.Op), X: cond.X, Y: cond.Y})
		f.s.truths = f.s.truths.Add(&ir.Compare{Op: ir.Flip(cond.Op), X: cond.Y, Y: cond.X})
	}
	f.s.truths = f.s.truths.Add(cond)
}

// LearnFalse assumes cond does not hold until f is popped.
func (f *FactScope) LearnFalse(cond ir.Expr) {
	f.checkOpen("simplify.FactScope.LearnFalse")
	switch cond := cond.(type) {
	case *ir.BoolImm:
		return
	case *ir.Not:
		f.LearnTrue(cond.X)
		return
	case *ir.Var:
		f.replace(cond.Name, ir.BoolLiteral(false, cond))
		f.narrow(cond.Name, facts.Const(0))
	case *ir.Logical:
		if cond.Op == token.LOR {
			f.LearnFalse(cond.X)
			f.LearnFalse(cond.Y)
		}
	case *ir.Compare:
		// for integers and booleans the negated comparison is exact
		f.LearnTrue(&ir.Compare{Op: ir.Negate(cond.Op), X: cond.X, Y: cond.Y, Range: cond.Range})
	}
	f.s.falsehoods = f.s.falsehoods.Add(cond)
}

// learnComparison tightens the facts of variables compared against
// constants or against each other.
func (f *FactScope) learnComparison(op token.Token, x, y ir.Expr) {
	xVar, xIsVar := x.(*ir.Var)
	yVar, yIsVar := y.(*ir.Var)
	switch {
	case xIsVar && yIsVar:
		xInfo, okX := f.s.lookupFacts(xVar.Name)
		yInfo, okY := f.s.lookupFacts(yVar.Name)
		if !okX || !okY {
			return
		}
		f.narrow(xVar.Name, facts.Info{Bounds: boundsFor(op, yInfo.Bounds), Alignment: align.Unknown()})
		f.narrow(yVar.Name, facts.Info{Bounds: boundsFor(ir.Flip(op), xInfo.Bounds), Alignment: align.Unknown()})
	case xIsVar:
		if k, ok := ir.AsConst(y); ok {
			f.learnAgainstConst(xVar.Name, op, k)
		}
	case yIsVar:
		if k, ok := ir.AsConst(x); ok {
			f.learnAgainstConst(yVar.Name, ir.Flip(op), k)
		}
	}
}

func (f *FactScope) learnAgainstConst(name string, op token.Token, k int64) {
	if op == token.EQL {
		f.narrow(name, facts.Const(k))
		return
	}
	if op == token.NEQ {
		current, ok := f.s.lookupFacts(name)
		if !ok {
			return
		}
		b := current.Bounds
		switch {
		case b.IsSinglePointOf(k):
		case b.MinDefined && b.Min == k && k < math.MaxInt64:
			b.Min++
		case b.MaxDefined && b.Max == k && k > math.MinInt64:
			b.Max--
		default:
			return
		}
		f.narrow(name, facts.Info{Bounds: b, Alignment: align.Unknown()})
		return
	}
	f.narrow(name, facts.Info{Bounds: boundsFor(op, interval.SinglePoint(k)), Alignment: align.Unknown()})
}

// boundsFor is the set of values v for which "v op w" can hold for some w
// in other.
func boundsFor(op token.Token, other interval.Interval) interval.Interval {
	switch op {
	case token.LSS:
		if other.MaxDefined {
			if hi, ok := arith.SubChecked(other.Max, 1); ok {
				return interval.BoundedAbove(hi)
			}
		}
	case token.LEQ:
		if other.MaxDefined {
			return interval.BoundedAbove(other.Max)
		}
	case token.GTR:
		if other.MinDefined {
			if lo, ok := arith.AddChecked(other.Min, 1); ok {
				return interval.BoundedBelow(lo)
			}
		}
	case token.GEQ:
		if other.MinDefined {
			return interval.BoundedBelow(other.Min)
		}
	case token.EQL:
		return other
	}
	return interval.Everything()
}

// SubstituteFacts replaces every subexpression of e that is a known truth
// with true, and every known falsehood with false.
func (f *FactScope) SubstituteFacts(e ir.Expr) ir.Expr {
	return f.s.substituteFacts(e)
}

// SubstituteFactsStmt applies SubstituteFacts to every expression in s.
func (f *FactScope) SubstituteFactsStmt(s ir.Stmt) ir.Stmt {
	return s.TransformExprs(f.s.substituteFacts)
}

func (s *Simplifier) substituteFacts(e ir.Expr) ir.Expr {
	return e.Transform(func(sub ir.Expr) ir.Expr {
		if !sub.Type().IsBool() {
			return sub
		}
		if v, ok := sub.(*ir.Var); ok {
			if replacement, ok := s.replacementOf(v.Name); ok {
				return replacement
			}
		}
		switch {
		case s.truths.Has(sub):
			return ir.BoolLiteral(true, sub)
		case s.falsehoods.Has(sub):
			return ir.BoolLiteral(false, sub)
		}
		return sub
	})
}
