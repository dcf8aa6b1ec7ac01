package ir

import (
	"context"
	"fmt"
	"log/slog"
)

// slogExpr wraps an Expr as a slog.LogValuer to not render expression strings
// unless they definitely need to be logged
func slogExpr(expr Expr) slog.LogValuer {
	return exprLogValuer{expr}
}
func slogStmt(stmt Stmt) slog.LogValuer { return stmtLogValuer{stmt} }

type exprLogValuer struct{ Expr }
type stmtLogValuer struct{ Stmt }

func (l exprLogValuer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("str", ExprString(l.Expr)),
		slog.String("type", l.Type().String()),
		slog.String("hash", fmt.Sprintf("%x", l.Hash())),
		slog.String("pos", RangeOf(l.Expr).String()),
	)
}

func (l stmtLogValuer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", l.StmtName()),
		slog.String("str", StmtString(l.Stmt)),
		slog.String("pos", RangeOf(l.Stmt).String()),
	)
}

// SlogHandler is a slog.Handler capable of lazy-printing expressions and
// statements
func SlogHandler(underlying slog.Handler) slog.Handler {
	return &irLogHandler{underlying: underlying}
}

type irLogHandler struct {
	underlying slog.Handler
}

func wrapValue(v slog.Value) slog.Value {
	if v.Kind() != slog.KindAny {
		return v
	}
	switch value := v.Any().(type) {
	case Expr:
		return slog.AnyValue(slogExpr(value))
	case Stmt:
		return slog.AnyValue(slogStmt(value))
	}
	return v
}

func (l *irLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *irLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		attr.Value = wrapValue(attr.Value)
		newRecord.AddAttrs(attr)
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *irLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		attr.Value = wrapValue(attr.Value)
		wrapped[i] = attr
	}
	return SlogHandler(l.underlying.WithAttrs(wrapped))
}

func (l *irLogHandler) WithGroup(name string) slog.Handler {
	return SlogHandler(l.underlying.WithGroup(name))
}
