package aggregate

import "sort"

// Percentile reduces values by linear interpolation between ranks —
// spec.md §9's "the only one tests can depend on" convention, matching
// the source dataframe library's default. An empty group has no
// defined percentile: callers get (0, false) rather than a panic or a
// silent zero.
func Percentile(values []float64, p float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0], true
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1], true
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, true
}
