// Package interval implements a sound abstract domain of integer ranges.
//
// An Interval stands for the set {x : Min <= x <= Max}, where either bound
// may be undefined, meaning unbounded in that direction. Values are the
// infinite-precision result of an operation before any fixed-width cast;
// CastTo models what is left after wraparound.
//
// Every operation over-approximates: the result contains every value the
// operation can produce on members of its operands. Bounds that cannot be
// computed without overflowing 64 bits become undefined, they never wrap.
package interval

import (
	"fmt"
	"math"

	"github.com/cottand/pixl/frontend/fatal"
	"golang.org/x/exp/constraints"
)

// Interval is a possibly half-open range of int64 values. The zero value
// is Everything.
type Interval struct {
	Min, Max               int64
	MinDefined, MaxDefined bool
}

// Everything is the interval with no information.
func Everything() Interval { return Interval{} }

func SinglePoint(x int64) Interval {
	return Interval{Min: x, Max: x, MinDefined: true, MaxDefined: true}
}

func BoundedBelow(x int64) Interval { return Interval{Min: x, MinDefined: true} }

func BoundedAbove(x int64) Interval { return Interval{Max: x, MaxDefined: true} }

// New returns [min, max]. min must not exceed max.
func New(min, max int64) Interval {
	if min > max {
		fatal.Raise(fatal.InvertedBounds, "interval.New", "min %d is greater than max %d", min, max)
	}
	return Interval{Min: min, Max: max, MinDefined: true, MaxDefined: true}
}

func (i Interval) IsEverything() bool { return !i.MinDefined && !i.MaxDefined }

func (i Interval) IsSinglePoint() bool { return i.IsBounded() && i.Min == i.Max }

func (i Interval) IsSinglePointOf(x int64) bool { return i.IsSinglePoint() && i.Min == x }

func (i Interval) IsBounded() bool { return i.MinDefined && i.MaxDefined }

func (i Interval) HasLowerBound() bool { return i.MinDefined }

func (i Interval) HasUpperBound() bool { return i.MaxDefined }

func (i Interval) Contains(x int64) bool {
	return (!i.MinDefined || i.Min <= x) && (!i.MaxDefined || x <= i.Max)
}

// ContainsUint64 reports whether x may be in i. Values too large for an
// int64 can only be contained by an interval that is unbounded above.
func (i Interval) ContainsUint64(x uint64) bool {
	if x > math.MaxInt64 {
		return !i.MaxDefined
	}
	return i.Contains(int64(x))
}

// ContainsInteger is Contains for any Go integer type.
func ContainsInteger[T constraints.Integer](i Interval, x T) bool {
	if x < 0 {
		return i.Contains(int64(x))
	}
	return i.ContainsUint64(uint64(x))
}

// Include widens i to also cover other. A side stays defined only if both
// intervals are bounded on that side.
func (i *Interval) Include(other Interval) {
	if i.MaxDefined && other.MaxDefined {
		i.Max = max(i.Max, other.Max)
	} else {
		i.Max, i.MaxDefined = 0, false
	}
	if i.MinDefined && other.MinDefined {
		i.Min = min(i.Min, other.Min)
	} else {
		i.Min, i.MinDefined = 0, false
	}
}

// IncludePoint widens i to also cover x.
func (i *Interval) IncludePoint(x int64) {
	if i.MaxDefined {
		i.Max = max(i.Max, x)
	}
	if i.MinDefined {
		i.Min = min(i.Min, x)
	}
}

// Union returns the smallest interval covering both a and b.
func Union(a, b Interval) Interval {
	a.Include(b)
	return a
}

// Intersection returns the values in both a and b. The result must not be
// empty: intersecting disjoint intervals is a bug in the caller.
func Intersection(a, b Interval) Interval {
	var r Interval
	switch {
	case a.MinDefined && b.MinDefined:
		r.Min, r.MinDefined = max(a.Min, b.Min), true
	case a.MinDefined:
		r.Min, r.MinDefined = a.Min, true
	case b.MinDefined:
		r.Min, r.MinDefined = b.Min, true
	}
	switch {
	case a.MaxDefined && b.MaxDefined:
		r.Max, r.MaxDefined = min(a.Max, b.Max), true
	case a.MaxDefined:
		r.Max, r.MaxDefined = a.Max, true
	case b.MaxDefined:
		r.Max, r.MaxDefined = b.Max, true
	}
	if r.IsBounded() && r.Min > r.Max {
		fatal.Raise(fatal.EmptyIntersection, "interval.Intersection", "%v and %v do not overlap", a, b)
	}
	return r
}

func (i Interval) String() string {
	lo, hi := "-∞", "∞"
	if i.MinDefined {
		lo = fmt.Sprint(i.Min)
	}
	if i.MaxDefined {
		hi = fmt.Sprint(i.Max)
	}
	return "[" + lo + ", " + hi + "]"
}
