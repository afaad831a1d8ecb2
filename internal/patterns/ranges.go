package patterns

import (
	"math"
	"sort"
)

// interval is an inclusive int64 range. Literal heads are the degenerate
// interval [v, v].
type interval struct {
	lo, hi int64
}

func (iv interval) contains(other interval) bool {
	return iv.lo <= other.lo && other.hi <= iv.hi
}

func (iv interval) overlaps(other interval) bool {
	return iv.lo <= other.hi && other.lo <= iv.hi
}

// headInterval extracts the interval of an integer-column head pattern.
func headInterval(p Pattern) (interval, bool) {
	switch pat := stripAt(p).(type) {
	case LitInt:
		return interval{lo: pat.Value, hi: pat.Value}, true
	case Range:
		return interval{lo: pat.Lo, hi: pat.Hi}, true
	default:
		return interval{}, false
	}
}

// mergeIntervals returns the sorted union of the inputs with overlapping
// and adjacent intervals coalesced.
func mergeIntervals(ivs []interval) []interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].lo != sorted[j].lo {
			return sorted[i].lo < sorted[j].lo
		}
		return sorted[i].hi < sorted[j].hi
	})
	merged := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.lo <= last.hi || (last.hi < math.MaxInt64 && iv.lo == last.hi+1) {
			if iv.hi > last.hi {
				last.hi = iv.hi
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// coversFullDomain reports whether a merged interval set covers every
// int64 value.
func coversFullDomain(merged []interval) bool {
	return len(merged) == 1 && merged[0].lo == math.MinInt64 && merged[0].hi == math.MaxInt64
}

// gapWitness picks a deterministic uncovered value: first choice is the
// value just past the first covered interval that has a gap after it,
// then one past the overall maximum, then one below the overall minimum.
func gapWitness(merged []interval) (int64, bool) {
	if len(merged) > 1 {
		return merged[0].hi + 1, true
	}
	if len(merged) > 0 && merged[len(merged)-1].hi < math.MaxInt64 {
		return merged[len(merged)-1].hi + 1, true
	}
	if len(merged) > 0 && merged[0].lo > math.MinInt64 {
		return merged[0].lo - 1, true
	}
	return 0, false
}

// splitSegments cuts the union of the input intervals into maximal
// disjoint segments such that every input interval either fully contains
// a segment or is disjoint from it. Rows therefore match a segment
// uniformly, which makes segments usable as switch constructors.
func splitSegments(ivs []interval) []interval {
	if len(ivs) == 0 {
		return nil
	}
	boundarySet := make(map[int64]bool)
	for _, iv := range ivs {
		boundarySet[iv.lo] = true
		if iv.hi < math.MaxInt64 {
			boundarySet[iv.hi+1] = true
		}
	}
	boundaries := make([]int64, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	covered := func(v int64) bool {
		for _, iv := range ivs {
			if iv.lo <= v && v <= iv.hi {
				return true
			}
		}
		return false
	}

	var segments []interval
	for i, b := range boundaries {
		hi := int64(math.MaxInt64)
		if i+1 < len(boundaries) {
			hi = boundaries[i+1] - 1
		}
		if covered(b) {
			segments = append(segments, interval{lo: b, hi: hi})
		}
	}
	return segments
}
