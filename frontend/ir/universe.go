package ir

import "strings"

// Names the surface syntax gives a meaning to without a declaration.
const (
	MinName    = "min"
	MaxName    = "max"
	AbsName    = "abs"
	SelectName = "choose"
	AssertName = "assert"
	BoundsName = "bounds"
	TrueName   = "true"
	FalseName  = "false"

	// GeneratedPrefix starts every name the compiler makes up, in the IR
	// and in generated Go code.
	GeneratedPrefix = "pixl_"
)

var intrinsics = map[string]Intrinsic{
	MinName: Min,
	MaxName: Max,
	AbsName: Abs,
}

// LookupIntrinsic resolves the name of a min, max or abs call.
func LookupIntrinsic(name string) (Intrinsic, bool) {
	fn, ok := intrinsics[name]
	return fn, ok
}

// IsReserved is true for names a program cannot bind.
func IsReserved(name string) bool {
	switch name {
	case MinName, MaxName, AbsName, SelectName, AssertName, BoundsName, TrueName, FalseName, "_":
		return true
	}
	return strings.HasPrefix(name, GeneratedPrefix)
}
