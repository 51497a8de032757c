// Package stats implements the equi-width histograms and per-table
// statistics used to estimate predicate selectivity, grounded on
// simpledb's IntHistogram/StringHistogram/TableStats (see
// original_source/src/java/simpledb/optimizer).
package stats

import (
	"math"

	"github.com/kavedb/ledgerdb/storage/tuple"
)

// Op is a predicate comparison operator, matching the closed set
// selectivity can be estimated for.
type Op int

const (
	Equals Op = iota
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	NotEquals
)

// IntHistogram is a fixed-width, equi-width histogram over a single
// integer-valued column, in O(1) space and update time regardless of how
// many values it has seen.
type IntHistogram struct {
	min, max int64
	buckets  int
	width    float64
	counts   []int64
	ntup     int64
}

// NewIntHistogram returns a histogram with at most buckets buckets
// covering [min, max] inclusive. If the value range is narrower than
// buckets, the bucket count is reduced to one bucket per distinct value
// so no bucket ever covers zero values.
func NewIntHistogram(buckets int, min, max int64) *IntHistogram {
	if span := max - min + 1; int64(buckets) > span {
		buckets = int(span)
	}
	return &IntHistogram{
		min:     min,
		max:     max,
		buckets: buckets,
		width:   float64(max-min+1) / float64(buckets),
		counts:  make([]int64, buckets),
	}
}

func (h *IntHistogram) index(v int64) int {
	return int(math.Floor(float64(v-h.min) / h.width))
}

// AddValue records v. Values outside [min, max] are silently dropped, as
// construction promised only that range would be histogrammed.
func (h *IntHistogram) AddValue(v int64) {
	i := h.index(v)
	if i >= 0 && i < h.buckets {
		h.counts[i]++
		h.ntup++
	}
}

// EstimateSelectivity returns the estimated fraction of recorded values
// satisfying `value op v`.
func (h *IntHistogram) EstimateSelectivity(op Op, v int64) float64 {
	if h.ntup == 0 {
		return 0
	}
	switch op {
	case Equals:
		i := h.index(v)
		if i < 0 || i >= h.buckets {
			return 0
		}
		return (float64(h.counts[i]) / h.width) / float64(h.ntup)

	case LessThan:
		i := h.index(v)
		if i < 0 {
			return 0
		}
		if i >= h.buckets {
			return 1
		}
		var sum float64
		for b := 0; b < i; b++ {
			sum += float64(h.counts[b]) / float64(h.ntup)
		}
		sum += (float64(v) - float64(i)*h.width - float64(h.min)) * float64(h.counts[i]) / h.width / float64(h.ntup)
		return sum

	case LessThanOrEqual:
		return h.EstimateSelectivity(LessThan, v+1)

	case GreaterThanOrEqual:
		return 1 - h.EstimateSelectivity(LessThan, v)

	case GreaterThan:
		return h.EstimateSelectivity(GreaterThanOrEqual, v+1)

	case NotEquals:
		return 1 - h.EstimateSelectivity(Equals, v)

	default:
		return 0
	}
}

// AvgSelectivity is the average, over every bucket, of that bucket's share
// of recorded values. Used when a predicate's constant isn't known yet
// (e.g. during join ordering) and only a rough selectivity is needed.
func (h *IntHistogram) AvgSelectivity() float64 {
	if h.ntup == 0 {
		return 0
	}
	var avg float64
	for _, c := range h.counts {
		avg += float64(c) / float64(h.ntup)
	}
	return avg / float64(h.buckets)
}

// fieldValue extracts the comparable int64 a histogram bucket indexes on,
// from whichever concrete tuple.Field is passed.
func fieldValue(f tuple.Field) int64 {
	switch v := f.(type) {
	case tuple.IntField:
		return int64(v.Value)
	case tuple.StringField:
		return projectString(v.Value)
	default:
		return 0
	}
}
