package backend

import (
	goast "go/ast"
	"go/parser"
	"go/token"
	"sync"

	"github.com/pkg/errors"
)

// runtimeSource holds the helpers generated code calls into. Arithmetic that
// Go does not define the way programs need it goes through them, computed in
// 64 bits and converted back to the width of the operands.
const runtimeSource = `package runtime

var Memory = map[string]map[int64]int64{}

func pixl_reset() {
	Memory = map[string]map[int64]int64{}
}

func pixl_store(buffer string, index int64, value int64) {
	m := Memory[buffer]
	if m == nil {
		m = map[int64]int64{}
		Memory[buffer] = m
	}
	m[index] = value
}

func pixl_assert(ok bool, message string) {
	if !ok {
		panic(message)
	}
}

func pixl_b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func pixl_div(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	if b == -1 {
		return -a
	}
	q := a / b
	if a%b < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

func pixl_mod(a, b int64) int64 {
	if b == 0 || b == -1 {
		return 0
	}
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

func pixl_udiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func pixl_umod(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return a % b
}

func pixl_shl(a, n int64) int64 {
	switch {
	case n >= 64:
		return 0
	case n >= 0:
		return a << uint64(n)
	case n > -64:
		return a >> uint64(-n)
	case a < 0:
		return -1
	}
	return 0
}

func pixl_shr(a, n int64) int64 {
	if n == -9223372036854775808 {
		return 0
	}
	return pixl_shl(a, -n)
}

func pixl_ushl(a, n uint64) uint64 {
	if n >= 64 {
		return 0
	}
	return a << n
}

func pixl_ushr(a, n uint64) uint64 {
	if n >= 64 {
		return 0
	}
	return a >> n
}

func pixl_abs(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

func pixl_min(a, b int64) int64 {
	if a <= b {
		return a
	}
	return b
}

func pixl_max(a, b int64) int64 {
	if a >= b {
		return a
	}
	return b
}

func pixl_umin(a, b uint64) uint64 {
	if a <= b {
		return a
	}
	return b
}

func pixl_umax(a, b uint64) uint64 {
	if a >= b {
		return a
	}
	return b
}

func pixl_int8(v int8) int8       { return v }
func pixl_int16(v int16) int16    { return v }
func pixl_int32(v int32) int32    { return v }
func pixl_int64(v int64) int64    { return v }
func pixl_uint8(v uint8) uint8    { return v }
func pixl_uint16(v uint16) uint16 { return v }
func pixl_uint32(v uint32) uint32 { return v }
func pixl_uint64(v uint64) uint64 { return v }
`

var (
	runtimeOnce sync.Once
	runtimeFile *goast.File
	runtimeErr  error
)

// runtimeDecls returns the helper declarations. The nodes are shared between
// files and must not be modified. Their positions belong to a private
// FileSet, so format generated files with an empty one.
func runtimeDecls() ([]goast.Decl, error) {
	runtimeOnce.Do(func() {
		runtimeFile, runtimeErr = parser.ParseFile(token.NewFileSet(), "runtime.go", runtimeSource, parser.SkipObjectResolution)
		runtimeErr = errors.Wrap(runtimeErr, "parsing runtime helpers")
	})
	if runtimeErr != nil {
		return nil, runtimeErr
	}
	decls := make([]goast.Decl, len(runtimeFile.Decls))
	copy(decls, runtimeFile.Decls)
	return decls, nil
}
