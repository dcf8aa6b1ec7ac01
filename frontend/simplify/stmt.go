package simplify

import (
	"github.com/cottand/pixl/frontend/align"
	"github.com/cottand/pixl/frontend/facts"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/ir"
)

// SimplifyStmt simplifies every expression in st under the facts its
// position in the program allows. It returns nil when st does nothing.
func (s *Simplifier) SimplifyStmt(st ir.Stmt) ir.Stmt {
	switch st := st.(type) {
	case *ir.Block:
		scope := s.Scope()
		defer scope.Pop()
		return s.simplifyStmts(st)
	case *ir.Declare:
		return s.declare(st)
	case *ir.Let:
		value, info := s.Simplify(st.Value)
		s.bind(st.Var(), info)
		return &ir.Let{Name: st.Name, Value: value, Range: st.Range}
	case *ir.If:
		return s.ifStmt(st)
	case *ir.For:
		return s.forStmt(st)
	case *ir.Assert:
		return s.assert(st)
	case *ir.Store:
		index, _ := s.Simplify(st.Index)
		value, _ := s.Simplify(st.Value)
		return &ir.Store{Buffer: st.Buffer, Index: index, Value: value, Range: st.Range}
	}
	panic("unknown statement " + st.StmtName())
}

// simplifyStmts simplifies the statements of b in the current scope, so that
// what they bind stays visible after it returns.
func (s *Simplifier) simplifyStmts(b *ir.Block) *ir.Block {
	out := &ir.Block{Range: b.Range}
	for _, st := range b.Stmts {
		simplified := s.SimplifyStmt(st)
		if isEmpty(simplified) {
			continue
		}
		out.Stmts = append(out.Stmts, simplified)
	}
	return out
}

func isEmpty(st ir.Stmt) bool {
	if st == nil {
		return true
	}
	b, ok := st.(*ir.Block)
	return ok && len(b.Stmts) == 0
}

func (s *Simplifier) declare(d *ir.Declare) ir.Stmt {
	bounds := interval.Intersection(d.Bounds, interval.BoundsOfType(d.T))
	s.bind(d.Var(), facts.Of(bounds, align.Unknown()))
	return d
}

// branch simplifies st in a scope where cond is known to be taken.
func (s *Simplifier) branch(st ir.Stmt, cond ir.Expr, taken bool) ir.Stmt {
	if st == nil {
		return nil
	}
	scope := s.Scope()
	defer scope.Pop()
	if taken {
		scope.LearnTrue(cond)
	} else {
		scope.LearnFalse(cond)
	}
	return s.SimplifyStmt(st)
}

func (s *Simplifier) ifStmt(st *ir.If) ir.Stmt {
	cond, _ := s.Simplify(st.Cond)
	if b, ok := cond.(*ir.BoolImm); ok {
		s.Stats.BranchesPruned++
		logger.Debug("branch decided", "cond", st.Cond, "value", b.Value)
		if b.Value {
			return s.SimplifyStmt(st.Then)
		}
		if st.Else == nil {
			return nil
		}
		return s.SimplifyStmt(st.Else)
	}

	then := s.branch(st.Then, cond, true)
	otherwise := s.branch(st.Else, cond, false)
	switch {
	case isEmpty(then) && isEmpty(otherwise):
		return nil
	case isEmpty(then):
		// keep the else branch only
		negated, _ := s.Simplify(&ir.Not{X: cond, Range: ir.RangeOf(cond)})
		return &ir.If{Cond: negated, Then: otherwise, Range: st.Range}
	case isEmpty(otherwise):
		otherwise = nil
	}
	return &ir.If{Cond: cond, Then: then, Else: otherwise, Range: st.Range}
}

func (s *Simplifier) forStmt(st *ir.For) ir.Stmt {
	extent, fe := s.Simplify(st.Extent)
	if fe.Bounds.LeConst(0).Proven() {
		s.Stats.LoopsRemoved++
		logger.Debug("loop never runs", "extent", extent, "facts", fe.String())
		return nil
	}

	scope := s.Scope()
	defer scope.Pop()

	loopVar := &ir.Var{Name: st.Var, T: extent.Type(), Range: st.Range}
	bounds := interval.BoundedBelow(0)
	if fe.Bounds.MaxDefined && fe.Bounds.Max >= 1 {
		bounds = interval.New(0, fe.Bounds.Max-1)
	}
	bounds = interval.Intersection(bounds, interval.BoundsOfType(loopVar.T))
	s.bind(loopVar, facts.Of(bounds, align.Unknown()))

	body := s.SimplifyStmt(st.Body)
	if isEmpty(body) {
		s.Stats.LoopsRemoved++
		return nil
	}
	return &ir.For{Var: st.Var, Extent: extent, Body: body, Range: st.Range}
}

func (s *Simplifier) assert(st *ir.Assert) ir.Stmt {
	cond, _ := s.Simplify(st.Cond)
	if b, ok := cond.(*ir.BoolImm); ok {
		if b.Value {
			s.Stats.AssertsRemoved++
			logger.Debug("assertion always holds", "assert", st)
			return nil
		}
		s.Stats.AssertsFailing++
		logger.Warn("assertion never holds", "assert", st, "message", st.Message)
		return &ir.Assert{Cond: cond, Message: st.Message, Range: st.Range}
	}
	// execution only continues past the assert when cond holds
	if scope, ok := s.scopes.Peek(); ok {
		scope.LearnTrue(cond)
	}
	return &ir.Assert{Cond: cond, Message: st.Message, Range: st.Range}
}
