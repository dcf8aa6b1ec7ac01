package simplify

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cottand/pixl/frontend/facts"
	"github.com/cottand/pixl/frontend/fatal"
	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/internal/config"
)

// Output is a simplified program together with what was learned about it.
type Output struct {
	Program *ir.Program
	// Result is what is known about the value of Program.Result, if there is one.
	Result   facts.Info
	Bindings []Binding
	Stats    Stats
}

// Run simplifies stmt with a fresh Simplifier. Internal invariant
// violations are returned as errors.
func Run(ctx context.Context, cfg config.Config, stmt ir.Stmt) (simplified ir.Stmt, err error) {
	_, span := otel.Tracer("simplify").Start(ctx, "simplify.Run",
		trace.WithAttributes(attribute.String("stmt", stmt.StmtName())))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "simplification failed")
		}
	}()
	defer fatal.Recover(&err)

	s := New(cfg)
	scope := s.Scope()
	simplified = s.SimplifyStmt(stmt)
	scope.Pop()
	if simplified == nil {
		simplified = &ir.Block{Range: ir.RangeOf(stmt)}
	}
	recordStats(span, s.Stats)
	return simplified, nil
}

// RunProgram simplifies prog with a fresh Simplifier. The result is
// simplified with everything the body binds in scope.
func RunProgram(ctx context.Context, cfg config.Config, prog *ir.Program) (out *Output, err error) {
	_, span := otel.Tracer("simplify").Start(ctx, "simplify.Run",
		trace.WithAttributes(attribute.Int("statements", len(prog.Body.Stmts))))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "simplification failed")
		}
	}()
	defer fatal.Recover(&err)

	s := New(cfg)
	scope := s.Scope()
	out = &Output{Program: &ir.Program{Body: s.simplifyStmts(prog.Body)}}
	if prog.Result != nil {
		out.Program.Result, out.Result = s.Simplify(prog.Result)
	}
	scope.Pop()

	out.Bindings = s.Bindings()
	out.Stats = s.Stats
	recordStats(span, s.Stats)
	logger.Info("simplified program", "rewrites", s.Stats.Rewrites, "asserts_removed", s.Stats.AssertsRemoved)
	return out, nil
}

func recordStats(span trace.Span, stats Stats) {
	span.SetAttributes(
		attribute.Int("rewrites", stats.Rewrites),
		attribute.Int("asserts_removed", stats.AssertsRemoved),
		attribute.Int("asserts_failing", stats.AssertsFailing),
		attribute.Int("branches_pruned", stats.BranchesPruned),
		attribute.Int("loops_removed", stats.LoopsRemoved),
	)
}
