package stats

// stringProjectionChars and stringProjectionBase fix the monotonic mapping
// from a string prefix to an integer: the first stringProjectionChars
// bytes (zero-padded if the string is shorter) read as a big-endian
// base-stringProjectionBase number. If a sorts before b byte-wise, then
// projectString(a) <= projectString(b); strings that agree on their first
// stringProjectionChars bytes project to the same value. A range predicate
// on the string therefore maps to the same range predicate on the
// projected integer.
const (
	stringProjectionChars = 4
	stringProjectionBase  = 256
)

func projectString(s string) int64 {
	var v int64
	for i := 0; i < stringProjectionChars; i++ {
		var b byte
		if i < len(s) {
			b = s[i]
		}
		v = v*stringProjectionBase + int64(b)
	}
	return v
}

// maxProjectedValue is the projection of the highest possible string
// under this scheme, used as the upper bound of the underlying
// IntHistogram's range.
func maxProjectedValue() int64 {
	var v int64
	for i := 0; i < stringProjectionChars; i++ {
		v = v*stringProjectionBase + (stringProjectionBase - 1)
	}
	return v
}

// StringHistogram buckets fixed-width string values by projecting each one
// to an integer and delegating to an IntHistogram over the projected
// range.
type StringHistogram struct {
	inner *IntHistogram
}

// NewStringHistogram returns a histogram with at most buckets buckets
// spanning every value the projection can produce.
func NewStringHistogram(buckets int) *StringHistogram {
	return &StringHistogram{inner: NewIntHistogram(buckets, 0, maxProjectedValue())}
}

// AddValue records s.
func (h *StringHistogram) AddValue(s string) {
	h.inner.AddValue(projectString(s))
}

// EstimateSelectivity returns the estimated fraction of recorded values
// satisfying `value op s`.
func (h *StringHistogram) EstimateSelectivity(op Op, s string) float64 {
	return h.inner.EstimateSelectivity(op, projectString(s))
}

// AvgSelectivity is the average, over every bucket, of that bucket's share
// of recorded values.
func (h *StringHistogram) AvgSelectivity() float64 {
	return h.inner.AvgSelectivity()
}
