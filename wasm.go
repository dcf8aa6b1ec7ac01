//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/pixl/pixl"
)

func main() {
	js.Global().Set("SimplifyAndShowFacts", js.FuncOf(func(this js.Value, args []js.Value) any {
		return pixl.SimplifyAndShowFacts(this, args)
	}))
	js.Global().Set("CompileAndShowGoOutput", js.FuncOf(func(this js.Value, args []js.Value) any {
		return pixl.CompileAndShowGoOutput(this, args)
	}))

	// wait indefinitely so that Go does not terminate execution
	// and the function remains available
	<-make(chan struct{})
}
