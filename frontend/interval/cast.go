package interval

import "github.com/cottand/pixl/frontend/scalar"

// BoundsOfType is the range of values t can hold. uint64 has no upper
// bound here because its maximum does not fit an int64.
func BoundsOfType(t scalar.Type) Interval {
	switch {
	case t.IsBool():
		return New(0, 1)
	case t.IsInteger():
		r := BoundedBelow(t.Min())
		if hi, ok := t.Max(); ok {
			r.Max, r.MaxDefined = hi, true
		}
		return r
	}
	return Everything()
}

// RepresentableIn reports whether every value of i fits t without wrapping.
func (i Interval) RepresentableIn(t scalar.Type) bool {
	if !i.IsBounded() {
		return false
	}
	bounds := BoundsOfType(t)
	return bounds.Contains(i.Min) && bounds.Contains(i.Max)
}

// CastTo projects i through a conversion to t. When t cannot hold all of i
// the value may have wrapped, and all that is left is the range of t.
func (i Interval) CastTo(t scalar.Type) Interval {
	if i.RepresentableIn(t) {
		return i
	}
	return BoundsOfType(t)
}
