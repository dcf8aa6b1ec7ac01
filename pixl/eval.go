package pixl

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
	"github.com/traefik/yaegi/interp"

	"github.com/cottand/pixl/backend"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/frontend/scalar"
)

// Value is a scalar computed by a program. Bits holds the two's complement
// of signed values, and 0 or 1 for booleans.
type Value struct {
	T    scalar.Type
	Bits uint64
}

func (v Value) String() string {
	switch {
	case v.T.IsBool():
		return strconv.FormatBool(v.Bits != 0)
	case v.T.IsUInt():
		return strconv.FormatUint(v.Bits, 10)
	}
	return strconv.FormatInt(int64(v.Bits), 10)
}

// Evaluation is the outcome of running a program.
type Evaluation struct {
	// Result is nil for programs without a final expression.
	Result *Value
	// Memory holds every store, by buffer and then by index.
	Memory map[string]map[int64]int64
}

// GoSource renders the simplified program as a Go file of package main.
func (p *Program) GoSource() (string, error) {
	return goSource(p.Simplified, "main")
}

func goSource(prog *ir.Program, pkgName string) (string, error) {
	f, err := backend.NewTranspiler().TranspileFile(prog, pkgName)
	if err != nil {
		return "", errors.Wrap(err, "transpiling program")
	}
	buf := bytes.NewBuffer(nil)
	if err := format.Node(buf, token.NewFileSet(), f); err != nil {
		return "", errors.Wrap(err, "formatting generated code")
	}
	return buf.String(), nil
}

// Eval runs the simplified program with the given inputs. Every input must
// be given a value within its type and its declared bounds. Booleans are 0
// or 1.
func (p *Program) Eval(inputs map[string]int64) (*Evaluation, error) {
	return p.eval(p.Simplified, inputs)
}

// EvalSource is like Eval, but runs the program as parsed.
func (p *Program) EvalSource(inputs map[string]int64) (*Evaluation, error) {
	return p.eval(p.Source, inputs)
}

func (p *Program) eval(prog *ir.Program, inputs map[string]int64) (*Evaluation, error) {
	if err := p.checkInputs(inputs); err != nil {
		return nil, err
	}
	src, err := goSource(prog, "main")
	if err != nil {
		return nil, err
	}
	i := interp.New(interp.Options{})
	if _, err := i.Eval(src); err != nil {
		return nil, errors.Wrapf(err, "loading generated code:\n%s", src)
	}
	run, err := i.Eval(backend.EntryPoint)
	if err != nil {
		return nil, errors.Wrap(err, "looking up entry point")
	}

	decls := prog.Inputs()
	args := make([]reflect.Value, len(decls))
	for k, d := range decls {
		args[k] = inputValue(d.T, inputs[d.Name])
	}
	results, err := call(run, args)
	if err != nil {
		return nil, err
	}

	evaluation := &Evaluation{}
	if prog.Result != nil {
		evaluation.Result = &Value{T: prog.Result.Type(), Bits: bitsOf(results[0])}
	}
	memory, err := i.Eval(backend.MemoryName)
	if err != nil {
		return nil, errors.Wrap(err, "reading memory")
	}
	evaluation.Memory, _ = memory.Interface().(map[string]map[int64]int64)
	return evaluation, nil
}

// RuntimeError is a program that aborted, because of a failed assertion.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return "program aborted: " + e.Message
}

func call(fn reflect.Value, args []reflect.Value) (results []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{Message: fmt.Sprint(r)}
		}
	}()
	return fn.Call(args), nil
}

func (p *Program) checkInputs(inputs map[string]int64) error {
	declared := make(map[string]bool, len(p.inputs))
	for _, d := range p.inputs {
		declared[d.Name] = true
		v, ok := inputs[d.Name]
		if !ok {
			return fmt.Errorf("missing value for input '%s'", d.Name)
		}
		if !interval.BoundsOfType(d.T).Contains(v) {
			return fmt.Errorf("%d is not a valid %v for input '%s'", v, d.T, d.Name)
		}
		if !d.Bounds.Contains(v) {
			return fmt.Errorf("input '%s' must be within %v, got %d", d.Name, d.Bounds, v)
		}
	}
	for name := range inputs {
		if !declared[name] {
			return fmt.Errorf("program has no input '%s'", name)
		}
	}
	return nil
}

var goTypes = map[scalar.Type]reflect.Type{
	scalar.Int8:   reflect.TypeFor[int8](),
	scalar.Int16:  reflect.TypeFor[int16](),
	scalar.Int32:  reflect.TypeFor[int32](),
	scalar.Int64:  reflect.TypeFor[int64](),
	scalar.UInt8:  reflect.TypeFor[uint8](),
	scalar.UInt16: reflect.TypeFor[uint16](),
	scalar.UInt32: reflect.TypeFor[uint32](),
	scalar.UInt64: reflect.TypeFor[uint64](),
}

func inputValue(t scalar.Type, v int64) reflect.Value {
	if t.IsBool() {
		return reflect.ValueOf(v != 0)
	}
	return reflect.ValueOf(v).Convert(goTypes[t])
}

func bitsOf(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	}
	return uint64(v.Int())
}
