package interval

// Truth is the result of comparing intervals. A comparison is only
// ProvablyTrue when it holds for every pair of values drawn from the two
// intervals; Unknown covers both "false" and "might be either".
type Truth uint8

const (
	Unknown Truth = iota
	ProvablyTrue
)

func proven(b bool) Truth {
	if b {
		return ProvablyTrue
	}
	return Unknown
}

// Proven is true only for ProvablyTrue. It is the only way to turn a Truth
// back into a bool, so call sites read as "if proven, rewrite".
func (t Truth) Proven() bool { return t == ProvablyTrue }

func (t Truth) String() string {
	if t == ProvablyTrue {
		return "provably true"
	}
	return "unknown"
}

// Lt proves a < b.
func (a Interval) Lt(b Interval) Truth {
	return proven(a.MaxDefined && b.MinDefined && a.Max < b.Min)
}

// Le proves a <= b.
func (a Interval) Le(b Interval) Truth {
	return proven(a.MaxDefined && b.MinDefined && a.Max <= b.Min)
}

// Gt proves a > b.
func (a Interval) Gt(b Interval) Truth { return b.Lt(a) }

// Ge proves a >= b.
func (a Interval) Ge(b Interval) Truth { return b.Le(a) }

// Eq proves a == b, which needs both to be the same single point.
func (a Interval) Eq(b Interval) Truth {
	return proven(a.IsSinglePoint() && b.IsSinglePoint() && a.Min == b.Min)
}

// Ne proves a != b, i.e. that the intervals are disjoint.
func (a Interval) Ne(b Interval) Truth {
	return proven(a.Lt(b).Proven() || a.Gt(b).Proven())
}

func (a Interval) LtConst(k int64) Truth { return proven(a.MaxDefined && a.Max < k) }
func (a Interval) LeConst(k int64) Truth { return proven(a.MaxDefined && a.Max <= k) }
func (a Interval) GtConst(k int64) Truth { return proven(a.MinDefined && a.Min > k) }
func (a Interval) GeConst(k int64) Truth { return proven(a.MinDefined && a.Min >= k) }
