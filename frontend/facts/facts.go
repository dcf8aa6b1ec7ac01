// Package facts fuses bounds and alignment into what is known about the value
// of one expression.
package facts

import (
	"fmt"

	"github.com/cottand/pixl/frontend/align"
	"github.com/cottand/pixl/frontend/interval"
	"github.com/cottand/pixl/frontend/scalar"
	"github.com/cottand/pixl/internal/arith"
	"github.com/cottand/pixl/internal/log"
)

var logger = log.DefaultLogger.With("section", "facts")

// Info is two projections of one fact about an integer: its range and its
// congruence class. Keep them consistent with TrimBoundsUsingAlignment.
type Info struct {
	Bounds    interval.Interval
	Alignment align.Alignment
}

func Unknown() Info {
	return Info{Bounds: interval.Everything(), Alignment: align.Unknown()}
}

func Const(v int64) Info {
	return Info{Bounds: interval.SinglePoint(v), Alignment: align.Exact(v)}
}

// OfType is what is known about an arbitrary value of type t.
func OfType(t scalar.Type) Info {
	return Info{Bounds: interval.BoundsOfType(t), Alignment: align.Unknown()}
}

func Of(bounds interval.Interval, alignment align.Alignment) Info {
	return Info{Bounds: bounds, Alignment: alignment}.TrimBoundsUsingAlignment()
}

// Intersect narrows i with what other knows about the same value. Provably
// disjoint bounds mean the code asking is unreachable; that is not an error
// at this level, and i is returned unchanged.
func (i Info) Intersect(other Info) Info {
	if i.Bounds.Lt(other.Bounds).Proven() || i.Bounds.Gt(other.Bounds).Proven() {
		logger.Debug("intersecting disjoint facts, keeping receiver", "facts", i, "other", other)
		return i
	}
	return Info{
		Bounds:    interval.Intersection(i.Bounds, other.Bounds),
		Alignment: align.Intersect(i.Alignment, other.Alignment),
	}.TrimBoundsUsingAlignment()
}

// CastTo projects i through a conversion to t. When the value cannot wrap
// nothing is lost. Otherwise the bounds become the range of t and the
// alignment learns that some unknown multiple of 2^bits was added: at 64
// bits only the power-of-two part of the modulus survives, and narrower
// types fold 2^bits into the modulus.
func (i Info) CastTo(t scalar.Type) Info {
	if i.Bounds.RepresentableIn(t) {
		return i
	}
	r := Info{Bounds: i.Bounds.CastTo(t)}
	switch {
	case t.IsBool():
		r.Alignment = align.Unknown()
	case t.Bits >= 64:
		m := i.Alignment.Modulus
		if m == 0 {
			m = 1 << 62
		}
		r.Alignment = align.New(m&-m, i.Alignment.Remainder)
	default:
		r.Alignment = align.Add(i.Alignment, align.New(int64(1)<<t.Bits, 0))
	}
	return r.TrimBoundsUsingAlignment()
}

// TrimBoundsUsingAlignment moves each defined bound inward to the nearest
// value in the alignment's congruence class. An exact alignment collapses
// the bounds to its value, and a single-point interval makes the alignment
// exact. If trimming inverts the bounds the code is unreachable and max is
// clamped to min. Trimming twice is the same as trimming once.
func (i Info) TrimBoundsUsingAlignment() Info {
	a := i.Alignment
	if a.IsExact() {
		i.Bounds = interval.SinglePoint(a.Remainder)
		return i
	}
	if a.Modulus > 1 {
		b := &i.Bounds
		if b.MinDefined {
			adj := arith.ModEuclid(a.Remainder-arith.ModEuclid(b.Min, a.Modulus), a.Modulus)
			if v, ok := arith.AddChecked(b.Min, adj); ok {
				b.Min = v
			}
		}
		if b.MaxDefined {
			adj := arith.ModEuclid(arith.ModEuclid(b.Max, a.Modulus)-a.Remainder, a.Modulus)
			if v, ok := arith.SubChecked(b.Max, adj); ok {
				b.Max = v
			}
		}
		if b.IsBounded() && b.Min > b.Max {
			logger.Debug("alignment excludes every value in bounds, unreachable", "bounds", *b, "alignment", a)
			b.Max = b.Min
		}
	}
	if i.Bounds.IsSinglePoint() {
		i.Alignment = align.Exact(i.Bounds.Min)
	}
	return i
}

func (i Info) String() string {
	if i.Alignment.IsUnknown() {
		return i.Bounds.String()
	}
	if i.Alignment.IsExact() && i.Bounds.IsSinglePoint() {
		return fmt.Sprint(i.Alignment.Remainder)
	}
	return fmt.Sprintf("%v %v", i.Bounds, i.Alignment)
}
