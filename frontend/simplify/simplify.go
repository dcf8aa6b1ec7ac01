// Package simplify rewrites IR bottom-up using the facts known about every
// expression. A rewrite is only applied when the facts prove it preserves
// the value of the program.
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
	"github.com/cottand/pixl/frontend/scalar"
	"github.com/cottand/pixl/internal/config"
	"github.com/cottand/pixl/internal/log"
	"github.com/cottand/pixl/util"
)

var logger = log.DefaultLogger.With("section", "simplify")

// Binding is what the simplifier learned about a variable where it was
// bound.
type Binding struct {
	Name  string
	T     scalar.Type
	Facts facts.Info
}

type Stats struct {
	Rewrites       int
	AssertsRemoved int
	AssertsFailing int
	BranchesPruned int
	LoopsRemoved   int
}

// Simplifier holds the state of one simplification pass. It is not safe for
// concurrent use.
type Simplifier struct {
	cfg config.Config

	scopes       util.Stack[*FactScope]
	bindings     map[string]*util.Stack[facts.Info]
	replacements map[string]*util.Stack[ir.Expr]
	truths       immutable.Set[ir.Expr]
	falsehoods   immutable.Set[ir.Expr]

	bound []Binding
	Stats Stats
}

func New(cfg config.Config) *Simplifier {
	return &Simplifier{
		cfg:          cfg,
		bindings:     make(map[string]*util.Stack[facts.Info]),
		replacements: make(map[string]*util.Stack[ir.Expr]),
		truths:       immutable.NewSet[ir.Expr](ir.Hasher{}),
		falsehoods:   immutable.NewSet[ir.Expr](ir.Hasher{}),
	}
}

// Bindings lists every variable bound so far, in the order they were bound.
func (s *Simplifier) Bindings() []Binding {
	return s.bound
}

func (s *Simplifier) pushFacts(name string, info facts.Info) {
	stack, ok := s.bindings[name]
	if !ok {
		stack = &util.Stack[facts.Info]{}
		s.bindings[name] = stack
	}
	stack.Push(info)
}

func (s *Simplifier) lookupFacts(name string) (facts.Info, bool) {
	stack, ok := s.bindings[name]
	if !ok {
		return facts.Info{}, false
	}
	return stack.Peek()
}

func (s *Simplifier) replacementOf(name string) (ir.Expr, bool) {
	stack, ok := s.replacements[name]
	if !ok {
		return nil, false
	}
	return stack.Peek()
}

// bind makes info the facts of name in the innermost scope, and records it.
func (s *Simplifier) bind(v *ir.Var, info facts.Info) {
	scope, ok := s.scopes.Peek()
	if !ok {
		fatal.Raise(fatal.UnbalancedScope, "simplify.bind", "'%s' bound outside of any fact scope", v.Name)
	}
	scope.Bind(v.Name, info)
	s.bound = append(s.bound, Binding{Name: v.Name, T: v.T, Facts: info})
}

func (s *Simplifier) rewrote(rule string, from, to ir.Expr) {
	s.Stats.Rewrites++
	logger.Debug("rewrite", "rule", rule, "from", from, "to", to)
}

// IntervalOf is the range of values e may take, given everything known in
// the current scope.
func (s *Simplifier) IntervalOf(e ir.Expr) interval.Interval {
	_, info := s.Simplify(e)
	return info.Bounds
}

// Prove is ProvablyTrue when cond holds whenever it is evaluated in the
// current scope.
func (s *Simplifier) Prove(cond ir.Expr) interval.Truth {
	simplified, _ := s.Simplify(cond)
	if b, ok := simplified.(*ir.BoolImm); ok && b.Value {
		return interval.ProvablyTrue
	}
	return interval.Unknown
}

// Simplify returns an expression equal to e on every execution reaching it,
// along with the facts known about its value.
func (s *Simplifier) Simplify(e ir.Expr) (ir.Expr, facts.Info) {
	simplified, info := s.mutate(e)
	if c, ok := s.asPoint(simplified, info); ok && c != simplified {
		s.rewrote("single point", simplified, c)
		simplified = c
	}
	if t := simplified.Type(); t.IsBool() && s.cfg.Simplify.SubstituteFacts && !isConst(simplified) {
		switch {
		case s.truths.Has(simplified):
			s.rewrote("known true", simplified, ir.True)
			simplified, info = ir.BoolLiteral(true, simplified), facts.Const(1)
		case s.falsehoods.Has(simplified):
			s.rewrote("known false", simplified, ir.False)
			simplified, info = ir.BoolLiteral(false, simplified), facts.Const(0)
		}
	}
	return simplified, info
}

// asPoint replaces an expression whose facts allow a single value with that
// value.
func (s *Simplifier) asPoint(e ir.Expr, info facts.Info) (ir.Expr, bool) {
	if isConst(e) || !info.Bounds.IsSinglePoint() {
		return nil, false
	}
	t := e.Type()
	if !interval.BoundsOfType(t).Contains(info.Bounds.Min) {
		return nil, false
	}
	return ir.Const(t, info.Bounds.Min, ir.RangeOf(e)), true
}

// finish projects the facts computed for a node of type t through the
// wraparound of t.
func (s *Simplifier) finish(t scalar.Type, bounds interval.Interval, alignment align.Alignment) facts.Info {
	info := facts.Info{Bounds: bounds, Alignment: alignment}
	if s.cfg.Simplify.TrimAlignment {
		info = info.TrimBoundsUsingAlignment()
	}
	return info.CastTo(t)
}

func boolFacts(e ir.Expr) facts.Info {
	if b, ok := e.(*ir.BoolImm); ok {
		if b.Value {
			return facts.Const(1)
		}
		return facts.Const(0)
	}
	return facts.OfType(scalar.BoolT)
}

func (s *Simplifier) mutate(e ir.Expr) (ir.Expr, facts.Info) {
	switch e := e.(type) {
	case *ir.IntImm:
		return e, facts.Const(e.Value)
	case *ir.UIntImm:
		if e.Value > math.MaxInt64 {
			return e, facts.Info{
				Bounds:    interval.BoundedBelow(math.MaxInt64),
				Alignment: align.New(1<<62, int64(e.Value&(1<<62-1))),
			}
		}
		return e, facts.Const(int64(e.Value))
	case *ir.BoolImm:
		return e, boolFacts(e)
	case *ir.Var:
		return s.variable(e)
	case *ir.Cast:
		return s.cast(e)
	case *ir.Binary:
		return s.binary(e)
	case *ir.Compare:
		return s.comparison(e)
	case *ir.Logical:
		return s.logical(e)
	case *ir.Not:
		return s.not(e)
	case *ir.Select:
		return s.selectExpr(e)
	case *ir.Call:
		return s.call(e)
	}
	panic("unknown expression " + e.ExprName())
}

func (s *Simplifier) variable(v *ir.Var) (ir.Expr, facts.Info) {
	if v.T.IsBool() {
		if replacement, ok := s.replacementOf(v.Name); ok {
			return replacement, boolFacts(replacement)
		}
	}
	if info, ok := s.lookupFacts(v.Name); ok {
		return v, info
	}
	return v, facts.OfType(v.T)
}

func (s *Simplifier) cast(e *ir.Cast) (ir.Expr, facts.Info) {
	x, fx := s.Simplify(e.X)
	if x.Type() == e.T {
		s.rewrote("no-op cast", e, x)
		return x, fx
	}
	if bits, ok := constBits(x); ok {
		folded := constOf(e.T, FoldCast(e.T, bits), e.Range)
		s.rewrote("fold cast", e, folded)
		r, info := s.mutate(folded)
		return r, info
	}
	node := &ir.Cast{X: x, T: e.T, Range: e.Range}

	if e.T.IsBool() {
		switch {
		case fx.Bounds.Ne(interval.SinglePoint(0)).Proven():
			return ir.BoolLiteral(true, e), facts.Const(1)
		case fx.Bounds.IsSinglePointOf(0):
			return ir.BoolLiteral(false, e), facts.Const(0)
		}
		return node, facts.OfType(scalar.BoolT)
	}

	// int32(int8(y)) is y for an int32 y that int8 holds
	if inner, ok := x.(*ir.Cast); ok && inner.X.Type() == e.T {
		_, fy := s.Simplify(inner.X)
		if fy.Bounds.RepresentableIn(x.Type()) {
			s.rewrote("round-trip cast", e, inner.X)
			return inner.X, fy
		}
	}
	return node, fx.CastTo(e.T)
}

func (s *Simplifier) binary(e *ir.Binary) (ir.Expr, facts.Info) {
	x, fx := s.Simplify(e.X)
	y, fy := s.Simplify(e.Y)
	t := e.Type()
	node := &ir.Binary{Op: e.Op, X: x, Y: y, Range: e.Range}

	xBits, xConst := constBits(x)
	yBits, yConst := constBits(y)
	if xConst && yConst {
		folded := constOf(t, FoldBinary(e.Op, t, xBits, yBits), e.Range)
		s.rewrote("fold", node, folded)
		return s.mutate(folded)
	}

	var bounds interval.Interval
	alignment := align.Unknown()
	k, kConst := ir.AsConst(y)
	switch e.Op {
	case token.ADD:
		bounds, alignment = interval.Add(fx.Bounds, fy.Bounds), align.Add(fx.Alignment, fy.Alignment)
	case token.SUB:
		bounds, alignment = interval.Sub(fx.Bounds, fy.Bounds), align.Sub(fx.Alignment, fy.Alignment)
	case token.MUL:
		bounds, alignment = interval.Mul(fx.Bounds, fy.Bounds), align.Mul(fx.Alignment, fy.Alignment)
	case token.QUO:
		bounds = interval.Div(fx.Bounds, fy.Bounds)
		if kConst {
			alignment = align.DivConst(fx.Alignment, k)
		}
	case token.REM:
		bounds = interval.Mod(fx.Bounds, fy.Bounds)
		if kConst {
			alignment = align.ModConst(fx.Alignment, k)
		}
	case token.SHL:
		bounds = interval.Shl(fx.Bounds, fy.Bounds)
		if kConst {
			alignment = align.ShlConst(fx.Alignment, k)
		}
	case token.SHR:
		bounds = interval.Shr(fx.Bounds, fy.Bounds)
		if kConst && k != math.MinInt64 {
			alignment = align.ShlConst(fx.Alignment, -k)
		}
	}
	info := s.finish(t, bounds, alignment)

	if r, rule := identity(e.Op, x, y, fx, kConst, k); r != nil {
		s.rewrote(rule, node, r)
		return r, info
	}
	return node, info
}

// identity applies the algebraic rules for x op y, where y is the constant
// k when kConst.
func identity(op token.Token, x, y ir.Expr, fx facts.Info, kConst bool, k int64) (ir.Expr, string) {
	t := x.Type()
	zero := func() ir.Expr { return ir.Const(t, 0, ir.RangeBetween(x, y)) }
	switch op {
	case token.ADD:
		switch {
		case kConst && k == 0:
			return x, "x + 0"
		case ir.IsConst(x, 0):
			return y, "0 + x"
		}
	case token.SUB:
		switch {
		case kConst && k == 0:
			return x, "x - 0"
		case ir.Equal(x, y):
			return zero(), "x - x"
		}
	case token.MUL:
		switch {
		case kConst && k == 1:
			return x, "x * 1"
		case ir.IsConst(x, 1):
			return y, "1 * x"
		case kConst && k == 0, ir.IsConst(x, 0):
			return zero(), "x * 0"
		}
	case token.QUO:
		switch {
		case kConst && k == 1:
			return x, "x / 1"
		case kConst && k == 0:
			return zero(), "x / 0"
		case ir.IsConst(x, 0):
			return zero(), "0 / x"
		case kConst && k > 0 && fx.Bounds.GeConst(0).Proven() && fx.Bounds.LtConst(k).Proven():
			return zero(), "x / c below c"
		}
	case token.REM:
		switch {
		case kConst && (k == 1 || k == -1 || k == 0):
			return zero(), "x % c, c in {-1, 0, 1}"
		case ir.IsConst(x, 0):
			return zero(), "0 % x"
		case kConst && k != math.MinInt64 && fx.Bounds.GeConst(0).Proven() && fx.Bounds.LtConst(max(k, -k)).Proven():
			return x, "x % c below c"
		}
	case token.SHL, token.SHR:
		switch {
		case kConst && k == 0:
			return x, "x << 0"
		case ir.IsConst(x, 0):
			return zero(), "0 << x"
		}
	}
	return nil, ""
}

func (s *Simplifier) comparison(e *ir.Compare) (ir.Expr, facts.Info) {
	x, fx := s.Simplify(e.X)
	y, fy := s.Simplify(e.Y)
	op := e.Op
	if isConst(x) && !isConst(y) {
		x, y, fx, fy, op = y, x, fy, fx, ir.Flip(op)
	}
	node := &ir.Compare{Op: op, X: x, Y: y, Range: e.Range}

	xBits, xConst := constBits(x)
	yBits, yConst := constBits(y)
	if xConst && yConst {
		folded := ir.BoolLiteral(FoldCompare(op, x.Type(), xBits, yBits), e)
		s.rewrote("fold", node, folded)
		return folded, boolFacts(folded)
	}
	if decided, ok := decide(op, x, y, fx, fy); ok {
		folded := ir.BoolLiteral(decided, e)
		s.rewrote("decided by facts", node, folded)
		return folded, boolFacts(folded)
	}
	return node, facts.OfType(scalar.BoolT)
}

// decide settles x op y when the facts about both sides allow only one
// outcome.
func decide(op token.Token, x, y ir.Expr, fx, fy facts.Info) (bool, bool) {
	if ir.Equal(x, y) {
		return op == token.EQL || op == token.LEQ || op == token.GEQ, true
	}
	a, b := fx.Bounds, fy.Bounds
	differ := a.Ne(b).Proven() || !align.Sub(fx.Alignment, fy.Alignment).Contains(0)
	switch op {
	case token.EQL:
		switch {
		case a.Eq(b).Proven():
			return true, true
		case differ:
			return false, true
		}
	case token.NEQ:
		switch {
		case differ:
			return true, true
		case a.Eq(b).Proven():
			return false, true
		}
	case token.LSS:
		switch {
		case a.Lt(b).Proven():
			return true, true
		case a.Ge(b).Proven():
			return false, true
		}
	case token.LEQ:
		switch {
		case a.Le(b).Proven():
			return true, true
		case a.Gt(b).Proven():
			return false, true
		}
	case token.GTR:
		switch {
		case a.Gt(b).Proven():
			return true, true
		case a.Le(b).Proven():
			return false, true
		}
	case token.GEQ:
		switch {
		case a.Ge(b).Proven():
			return true, true
		case a.Lt(b).Proven():
			return false, true
		}
	}
	return false, false
}

func (s *Simplifier) logical(e *ir.Logical) (ir.Expr, facts.Info) {
	x, _ := s.Simplify(e.X)
	// the value of x decides whether y is evaluated at all
	and := e.Op == token.LAND
	if b, ok := x.(*ir.BoolImm); ok {
		if b.Value != and {
			s.rewrote("short circuit", e, x)
			return x, boolFacts(x)
		}
		s.rewrote("short circuit", e, e.Y)
		return s.Simplify(e.Y)
	}

	y, _ := s.assuming(x, and, e.Y)

	node := &ir.Logical{Op: e.Op, X: x, Y: y, Range: e.Range}
	if b, ok := y.(*ir.BoolImm); ok {
		if b.Value == and {
			// x && true, x || false
			s.rewrote("neutral operand", node, x)
			return x, facts.OfType(scalar.BoolT)
		}
		// x && false is false, and x || true is true
		s.rewrote("absorbing operand", node, y)
		return y, boolFacts(y)
	}
	if ir.Equal(x, y) {
		s.rewrote("x op x", node, x)
		return x, facts.OfType(scalar.BoolT)
	}
	return node, facts.OfType(scalar.BoolT)
}

// assuming simplifies e in a scope where cond is known to evaluate to holds.
func (s *Simplifier) assuming(cond ir.Expr, holds bool, e ir.Expr) (ir.Expr, facts.Info) {
	scope := s.Scope()
	defer scope.Pop()
	if holds {
		scope.LearnTrue(cond)
	} else {
		scope.LearnFalse(cond)
	}
	return s.Simplify(e)
}

func (s *Simplifier) not(e *ir.Not) (ir.Expr, facts.Info) {
	x, _ := s.Simplify(e.X)
	switch x := x.(type) {
	case *ir.BoolImm:
		folded := ir.BoolLiteral(!x.Value, e)
		s.rewrote("fold", e, folded)
		return folded, boolFacts(folded)
	case *ir.Not:
		s.rewrote("!!x", e, x.X)
		return x.X, facts.OfType(scalar.BoolT)
	case *ir.Compare:
		negated := &ir.Compare{Op: ir.Negate(x.Op), X: x.X, Y: x.Y, Range: e.Range}
		s.rewrote("negate comparison", e, negated)
		return negated, facts.OfType(scalar.BoolT)
	}
	return &ir.Not{X: x, Range: e.Range}, facts.OfType(scalar.BoolT)
}

func (s *Simplifier) selectExpr(e *ir.Select) (ir.Expr, facts.Info) {
	cond, _ := s.Simplify(e.Cond)
	if b, ok := cond.(*ir.BoolImm); ok {
		taken := e.False
		if b.Value {
			taken = e.True
		}
		s.rewrote("decided select", e, taken)
		return s.Simplify(taken)
	}

	onTrue, fTrue := s.assuming(cond, true, e.True)
	onFalse, fFalse := s.assuming(cond, false, e.False)

	node := &ir.Select{Cond: cond, True: onTrue, False: onFalse, Range: e.Range}
	info := facts.Info{
		Bounds:    interval.Union(fTrue.Bounds, fFalse.Bounds),
		Alignment: align.Union(fTrue.Alignment, fFalse.Alignment),
	}
	switch {
	case ir.Equal(onTrue, onFalse):
		s.rewrote("same branches", node, onTrue)
		return onTrue, info
	case ir.IsConst(onTrue, 1) && ir.IsConst(onFalse, 0) && onTrue.Type().IsBool():
		s.rewrote("choose(c, true, false)", node, cond)
		return cond, info
	case ir.IsConst(onTrue, 0) && ir.IsConst(onFalse, 1) && onTrue.Type().IsBool():
		negated, _ := s.not(&ir.Not{X: cond, Range: e.Range})
		s.rewrote("choose(c, false, true)", node, negated)
		return negated, info
	}
	return node, info
}

func (s *Simplifier) call(e *ir.Call) (ir.Expr, facts.Info) {
	args := make([]ir.Expr, len(e.Args))
	argFacts := make([]facts.Info, len(e.Args))
	bits := make([]uint64, len(e.Args))
	allConst := true
	for i, arg := range e.Args {
		args[i], argFacts[i] = s.Simplify(arg)
		var ok bool
		bits[i], ok = constBits(args[i])
		allConst = allConst && ok
	}
	t := e.Type()
	node := &ir.Call{Fn: e.Fn, Args: args, Range: e.Range}
	if allConst {
		folded := constOf(t, FoldCall(e.Fn, t, bits...), e.Range)
		s.rewrote("fold", node, folded)
		return s.mutate(folded)
	}

	fx := argFacts[0]
	if e.Fn == ir.Abs {
		info := s.finish(t, fx.Bounds.Abs(), align.Union(fx.Alignment, fx.Alignment.Neg()))
		if t.IsUInt() || fx.Bounds.GeConst(0).Proven() {
			s.rewrote("abs of non-negative", node, args[0])
			return args[0], fx
		}
		return node, info
	}

	x, y, fy := args[0], args[1], argFacts[1]
	alignment := align.Union(fx.Alignment, fy.Alignment)
	if e.Fn == ir.Min {
		info := s.finish(t, interval.Min(fx.Bounds, fy.Bounds), alignment)
		switch {
		case ir.Equal(x, y), fx.Bounds.Le(fy.Bounds).Proven():
			s.rewrote("min of ordered", node, x)
			return x, fx
		case fy.Bounds.Le(fx.Bounds).Proven():
			s.rewrote("min of ordered", node, y)
			return y, fy
		}
		return node, info
	}
	info := s.finish(t, interval.Max(fx.Bounds, fy.Bounds), alignment)
	switch {
	case ir.Equal(x, y), fx.Bounds.Ge(fy.Bounds).Proven():
		s.rewrote("max of ordered", node, x)
		return x, fx
	case fy.Bounds.Ge(fx.Bounds).Proven():
		s.rewrote("max of ordered", node, y)
		return y, fy
	}
	return node, info
}
