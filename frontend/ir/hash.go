package ir

import (
	"encoding/binary"

	"github.com/benbjohnson/immutable"
	"github.com/cespare/xxhash/v2"

	"github.com/cottand/pixl/frontend/scalar"
)

func hashOf(kind string, parts ...uint64) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(kind)
	var raw [8]byte
	for _, part := range parts {
		binary.LittleEndian.PutUint64(raw[:], part)
		_, _ = h.Write(raw[:])
	}
	return h.Sum64()
}

func hashString(s string) uint64 { return xxhash.Sum64String(s) }

func hashType(t scalar.Type) uint64 { return uint64(t.Kind)<<8 | uint64(t.Bits) }

func boolBits(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Equal is structural equality. Positions are ignored.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch a := a.(type) {
	case *IntImm:
		b, ok := b.(*IntImm)
		return ok && a.Value == b.Value && a.T == b.T
	case *UIntImm:
		b, ok := b.(*UIntImm)
		return ok && a.Value == b.Value && a.T == b.T
	case *BoolImm:
		b, ok := b.(*BoolImm)
		return ok && a.Value == b.Value
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Name == b.Name && a.T == b.T
	case *Cast:
		b, ok := b.(*Cast)
		return ok && a.T == b.T && Equal(a.X, b.X)
	case *Binary:
		b, ok := b.(*Binary)
		return ok && a.Op == b.Op && Equal(a.X, b.X) && Equal(a.Y, b.Y)
	case *Compare:
		b, ok := b.(*Compare)
		return ok && a.Op == b.Op && Equal(a.X, b.X) && Equal(a.Y, b.Y)
	case *Logical:
		b, ok := b.(*Logical)
		return ok && a.Op == b.Op && Equal(a.X, b.X) && Equal(a.Y, b.Y)
	case *Not:
		b, ok := b.(*Not)
		return ok && Equal(a.X, b.X)
	case *Select:
		b, ok := b.(*Select)
		return ok && Equal(a.Cond, b.Cond) && Equal(a.True, b.True) && Equal(a.False, b.False)
	case *Call:
		b, ok := b.(*Call)
		if !ok || a.Fn != b.Fn || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// EqualStmt is structural equality of statements. Positions are ignored.
func EqualStmt(a, b Stmt) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch a := a.(type) {
	case *Block:
		b, ok := b.(*Block)
		if !ok || len(a.Stmts) != len(b.Stmts) {
			return false
		}
		for i := range a.Stmts {
			if !EqualStmt(a.Stmts[i], b.Stmts[i]) {
				return false
			}
		}
		return true
	case *If:
		b, ok := b.(*If)
		return ok && Equal(a.Cond, b.Cond) && EqualStmt(a.Then, b.Then) && EqualStmt(a.Else, b.Else)
	case *Let:
		b, ok := b.(*Let)
		return ok && a.Name == b.Name && Equal(a.Value, b.Value)
	case *For:
		b, ok := b.(*For)
		return ok && a.Var == b.Var && Equal(a.Extent, b.Extent) && EqualStmt(a.Body, b.Body)
	case *Assert:
		b, ok := b.(*Assert)
		return ok && a.Message == b.Message && Equal(a.Cond, b.Cond)
	case *Store:
		b, ok := b.(*Store)
		return ok && a.Buffer == b.Buffer && Equal(a.Index, b.Index) && Equal(a.Value, b.Value)
	case *Declare:
		b, ok := b.(*Declare)
		return ok && a.Name == b.Name && a.T == b.T && a.Bounds == b.Bounds
	}
	return false
}

// Hasher lets expressions be kept in immutable sets and maps, keyed by
// structure.
type Hasher struct{}

var _ immutable.Hasher[Expr] = Hasher{}

func (Hasher) Hash(e Expr) uint32 {
	h := e.Hash()
	return uint32(h ^ h>>32)
}

func (Hasher) Equal(a, b Expr) bool { return Equal(a, b) }
