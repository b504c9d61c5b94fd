package metrics

import (
	"sort"

	"github.com/camsys-rove/rove/model"
)

// Prepared wraps a stop-event record with the next-stop lookahead
// every metric definition in this package is built on: next_stop,
// next_stop_arrival_time, and the (stop_id, next_stop) stop_pair.
type Prepared[T any] struct {
	Record            T
	NextStopID        string
	NextStopArrival   int
	StopPair          model.StopPair
}

// PrepareStopEvents is the generic two-pass partition-then-reduce
// realization of the source's `groupby(groups)[col].shift(-1)` idiom:
// partition records by groupKey, sort each partition by seq, then pair
// each record with its successor in the partition. A partition's last
// record has no successor and is dropped, mirroring the source's
// `dropna(subset=['next_stop'])`.
func PrepareStopEvents[T any](records []T, groupKey func(T) string, stopID func(T) string, seq func(T) int, arrival func(T) int) []Prepared[T] {
	idx := make([]int, len(records))
	for i := range records {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := groupKey(records[idx[a]]), groupKey(records[idx[b]])
		if ka != kb {
			return ka < kb
		}
		return seq(records[idx[a]]) < seq(records[idx[b]])
	})

	out := make([]Prepared[T], 0, len(records))
	for i := 0; i < len(idx); i++ {
		if i+1 >= len(idx) || groupKey(records[idx[i+1]]) != groupKey(records[idx[i]]) {
			continue // last record of its partition: no next_stop
		}
		cur := records[idx[i]]
		next := records[idx[i+1]]
		out = append(out, Prepared[T]{
			Record:          cur,
			NextStopID:      stopID(next),
			NextStopArrival: arrival(next),
			StopPair:        model.StopPair{stopID(cur), stopID(next)},
		})
	}
	return out
}
