// Package pixl compiles programs end to end: it parses them, simplifies
// them with everything it can prove about their values, and lowers them to
// Go that can be evaluated in process or written out as a module.
package pixl

import (
	"cmp"
	"context"
	"go/token"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cottand/pixl/frontend/facts"
	"github.com/cottand/pixl/frontend/fatal"
	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/parse"
	"github.com/cottand/pixl/frontend/simplify"
	"github.com/cottand/pixl/internal/config"
	"github.com/cottand/pixl/internal/log"
)

var packageLogger = log.DefaultLogger.With("section", "pixl")

type Options struct {
	Config config.Config
	// Filename is used in positions of diagnostics. It defaults to
	// "program.pxl".
	Filename string
	// Inputs are declared before the program starts, so that it can use
	// them without declaring them itself.
	Inputs []*ir.Declare
	// NoSimplify keeps the program as parsed.
	NoSimplify bool
}

func DefaultOptions() Options {
	return Options{Config: config.Default()}
}

// Program is a compiled program. Source is the program as parsed, and
// Simplified is what runs.
type Program struct {
	Source     *ir.Program
	Simplified *ir.Program
	// Result is what is known about the value the program computes.
	Result facts.Info
	Stats  simplify.Stats

	bindings []simplify.Binding
	inputs   []*ir.Declare
	fset     *token.FileSet
}

// CompileError reports the diagnostics of a program that does not compile.
type CompileError struct {
	Diagnostics fatal.Diagnostics
	fset        *token.FileSet
}

func (e *CompileError) Error() string {
	return e.Diagnostics.Format(e.fset)
}

func (e *CompileError) Unwrap() error {
	return e.Diagnostics
}

// Compile parses and simplifies src. User errors are returned as a
// *CompileError, broken compiler invariants as a *fatal.Violation.
func Compile(ctx context.Context, src []byte, opts Options) (program *Program, err error) {
	filename := opts.Filename
	if filename == "" {
		filename = "program.pxl"
	}
	ctx, span := otel.Tracer("pixl").Start(ctx, "pixl.Compile",
		trace.WithAttributes(attribute.String("filename", filename), attribute.Int("bytes", len(src))))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "compilation failed")
		}
	}()

	fset := token.NewFileSet()
	parsed, err := parse.FileWithInputs(fset, filename, src, opts.Inputs)
	if err != nil {
		if ds, ok := fatal.AsDiagnostics(err); ok {
			return nil, &CompileError{Diagnostics: ds, fset: fset}
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("statements", len(parsed.Body.Stmts)))

	// inputs declared up front are part of the program
	source := parsed
	if len(opts.Inputs) > 0 {
		source = &ir.Program{Body: &ir.Block{Range: parsed.Body.Range}, Result: parsed.Result}
		for _, d := range opts.Inputs {
			source.Body.Stmts = append(source.Body.Stmts, d)
		}
		source.Body.Stmts = append(source.Body.Stmts, parsed.Body.Stmts...)
	}

	program = &Program{
		Source:     source,
		Simplified: source,
		Result:     facts.Unknown(),
		inputs:     source.Inputs(),
		fset:       fset,
	}
	if !opts.NoSimplify {
		out, err := simplify.RunProgram(ctx, opts.Config, source)
		if err != nil {
			return nil, err
		}
		program.Simplified = out.Program
		program.Result = out.Result
		program.Stats = out.Stats
		program.bindings = out.Bindings
	}
	packageLogger.Debug("compiled program", "filename", filename, "inputs", len(program.inputs))
	return program, nil
}

// Inputs lists what the program needs to run, in the order Run takes them.
func (p *Program) Inputs() []*ir.Declare {
	return p.inputs
}

// Fact is what is known about one binding of a program.
type Fact struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Bounds    string `yaml:"bounds"`
	Alignment string `yaml:"alignment"`
}

// Facts lists what the simplifier learned about every input, binding and
// loop variable, sorted by name. It is empty for programs compiled with
// NoSimplify.
func (p *Program) Facts() []Fact {
	out := make([]Fact, 0, len(p.bindings))
	for _, b := range p.bindings {
		out = append(out, Fact{
			Name:      b.Name,
			Type:      b.T.String(),
			Bounds:    b.Facts.Bounds.String(),
			Alignment: b.Facts.Alignment.String(),
		})
	}
	slices.SortStableFunc(out, func(a, b Fact) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// String renders the simplified program in the surface syntax.
func (p *Program) String() string {
	return ir.ProgramString(p.Simplified)
}
