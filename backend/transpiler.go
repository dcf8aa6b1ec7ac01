// Package backend lowers the IR into Go source with the same semantics, so
// that programs can be run (and checked) with an ordinary Go toolchain or
// interpreter.
package backend

import (
	"log/slog"

	"github.com/cottand/pixl/internal/log"
)

type Transpiler struct {
	*slog.Logger
}

func NewTranspiler() *Transpiler {
	return &Transpiler{
		Logger: log.DefaultLogger.With("section", "transpiler"),
	}
}

func (tp *Transpiler) logger() *slog.Logger {
	if tp.Logger == nil {
		tp.Logger = log.DefaultLogger.With("section", "transpiler")
	}
	return tp.Logger
}
