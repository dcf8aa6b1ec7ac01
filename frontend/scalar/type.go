// Package scalar describes the fixed-width scalar types of the language.
package scalar

import (
	"fmt"
	"math"
	"strings"
)

type Kind uint8

const (
	_ Kind = iota
	Int
	UInt
	Bool
)

type Type struct {
	Kind Kind
	Bits uint8
}

var (
	Int8   = Type{Int, 8}
	Int16  = Type{Int, 16}
	Int32  = Type{Int, 32}
	Int64  = Type{Int, 64}
	UInt8  = Type{UInt, 8}
	UInt16 = Type{UInt, 16}
	UInt32 = Type{UInt, 32}
	UInt64 = Type{UInt, 64}
	BoolT  = Type{Bool, 1}
)

var byName = map[string]Type{
	"int8":   Int8,
	"int16":  Int16,
	"int32":  Int32,
	"int64":  Int64,
	"int":    Int64,
	"uint8":  UInt8,
	"byte":   UInt8,
	"uint16": UInt16,
	"uint32": UInt32,
	"uint64": UInt64,
	"uint":   UInt64,
	"bool":   BoolT,
}

// ParseType resolves a Go-style type name.
func ParseType(name string) (Type, error) {
	t, ok := byName[strings.TrimSpace(name)]
	if !ok {
		return Type{}, fmt.Errorf("unknown scalar type '%s'", name)
	}
	return t, nil
}

func (t Type) IsInt() bool   { return t.Kind == Int }
func (t Type) IsUInt() bool  { return t.Kind == UInt }
func (t Type) IsBool() bool  { return t.Kind == Bool }
func (t Type) IsValid() bool { return t.Kind != 0 && t.Bits > 0 && t.Bits <= 64 }

// IsInteger is true for signed and unsigned integers, but not booleans.
func (t Type) IsInteger() bool { return t.IsInt() || t.IsUInt() }

func (t Type) String() string {
	switch t.Kind {
	case Int:
		return fmt.Sprintf("int%d", t.Bits)
	case UInt:
		return fmt.Sprintf("uint%d", t.Bits)
	case Bool:
		return "bool"
	default:
		return "invalid"
	}
}

// Min is the smallest value of t.
func (t Type) Min() int64 {
	if t.IsInt() {
		if t.Bits >= 64 {
			return math.MinInt64
		}
		return -(int64(1) << (t.Bits - 1))
	}
	return 0
}

// Max is the largest value of t. ok is false for uint64, whose maximum
// does not fit an int64.
func (t Type) Max() (max int64, ok bool) {
	switch {
	case t.IsBool():
		return 1, true
	case t.IsInt() && t.Bits >= 64:
		return math.MaxInt64, true
	case t.IsInt():
		return int64(1)<<(t.Bits-1) - 1, true
	case t.IsUInt() && t.Bits >= 64:
		return 0, false
	default:
		return int64(1)<<t.Bits - 1, true
	}
}

// Wrap reduces v modulo 2^Bits into the range of t, the way a fixed-width
// machine integer would.
func (t Type) Wrap(v int64) int64 {
	switch {
	case t.IsBool():
		if v != 0 {
			return 1
		}
		return 0
	case t.Bits >= 64:
		return v
	case t.IsInt():
		shift := 64 - t.Bits
		return v << shift >> shift
	default:
		return int64(uint64(v) & (uint64(1)<<t.Bits - 1))
	}
}
