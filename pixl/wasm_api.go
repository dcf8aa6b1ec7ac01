//go:build js && wasm

package pixl

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"
)

// SimplifyAndShowFacts compiles a program and returns the simplified
// program followed by the facts known about each binding, or the errors
// that stopped compilation.
func SimplifyAndShowFacts(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "compiler panicked: " + fmt.Sprint(r)
		}
	}()

	program, err := Compile(context.Background(), []byte(args[0].String()), DefaultOptions())
	if err != nil {
		return fmt.Sprintf("the program has the following errors:\n%s", err)
	}
	sb := strings.Builder{}
	sb.WriteString(program.String())
	sb.WriteString("\n\n")
	for _, fact := range program.Facts() {
		fmt.Fprintf(&sb, "%s %s: %s %s\n", fact.Name, fact.Type, fact.Bounds, fact.Alignment)
	}
	return sb.String()
}

// CompileAndShowGoOutput compiles a program and returns the simplified
// program and the Go code generated for it.
//
// output: { error: string } | { simplified: string, goOutput: string }
func CompileAndShowGoOutput(_ js.Value, args []js.Value) (ret any) {
	errorObj := func(err string) any {
		return js.ValueOf(map[string]any{
			"error": err,
		})
	}
	defer func() {
		if r := recover(); r != nil {
			ret = errorObj("compiler panicked: " + fmt.Sprint(r))
		}
	}()

	program, err := Compile(context.Background(), []byte(args[0].String()), DefaultOptions())
	if err != nil {
		return errorObj(fmt.Sprintf("the program has the following errors:\n%s", err))
	}
	goOutput, err := program.GoSource()
	if err != nil {
		return errorObj(fmt.Sprintf("the compiler encountered a failure:\n%s", err))
	}
	return js.ValueOf(map[string]any{
		"simplified": program.String(),
		"goOutput":   goOutput,
	})
}
