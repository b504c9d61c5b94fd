package aggregate

import "time"

// Window is a half-open [start, end) time-of-day range expressed as
// (hour, minute) pairs, the unit spec.md's configured time_periods use.
type Window struct {
	Start [2]int
	End   [2]int
}

func (w Window) seconds() (int, int) {
	return w.Start[0]*3600 + w.Start[1]*60, w.End[0]*3600 + w.End[1]*60
}

func (w Window) contains(tripStartTime int) bool {
	start, end := w.seconds()
	return tripStartTime >= start && tripStartTime < end
}

// RollingBuckets generates the sequence of fixed-width windows spec.md
// §4.6's "10-minute-interval run" produces: consecutive, non-overlapping
// windows of length step, covering [day.Start, day.End).
func RollingBuckets(day Window, step time.Duration) []Window {
	start, end := day.seconds()
	stepSec := int(step.Seconds())
	if stepSec <= 0 {
		return nil
	}

	var out []Window
	for t := start; t < end; t += stepSec {
		bucketEnd := t + stepSec
		if bucketEnd > end {
			bucketEnd = end
		}
		out = append(out, Window{
			Start: [2]int{t / 3600, (t % 3600) / 60},
			End:   [2]int{bucketEnd / 3600, (bucketEnd % 3600) / 60},
		})
	}
	return out
}
