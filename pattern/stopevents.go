// Package pattern is PatternSynthesizer (C3): it turns a GTFSLoader's
// validated tables into the stop-event records, timepoint/branchpoint
// classification, pattern hashes, and segment geometry that every
// downstream metric depends on.
//
// The source dataframe library leans on groupby().shift()/transform()/
// cumsum() throughout; per the port's design notes each of those becomes
// an explicit two-pass partition-then-reduce over a slice sorted by the
// grouping key, never a per-row dynamic dispatch.
package pattern

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/parse"
)

// BuildStopEvents left-joins stop_times with trips, sorts by (route_id,
// trip_id, stop_sequence), de-duplicates on (route_id, trip_id,
// direction_id, stop_sequence) keeping the first occurrence, and adds
// the per-trip trip_start_time/trip_end_time derived columns.
func BuildStopEvents(tables *parse.Tables) ([]model.GTFSStopEvent, error) {
	events := make([]model.GTFSStopEvent, 0, len(tables.StopTimes))

	for _, st := range tables.StopTimes {
		trip, ok := tables.Trips[st.TripID]
		if !ok {
			// Narrowed away by trip-level filtering upstream; not an
			// error, just not part of this run.
			continue
		}

		events = append(events, model.GTFSStopEvent{
			TripID:        st.TripID,
			RouteID:       trip.RouteID,
			ServiceID:     trip.ServiceID,
			DirectionID:   trip.DirectionID,
			StopID:        st.StopID,
			StopSequence:  st.StopSequence,
			ArrivalTime:   st.ArrivalTime,
			DepartureTime: st.DepartureTime,
			Timepoint:     st.Timepoint, // -1 sentinel until AssignTimepoints runs
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].RouteID != events[j].RouteID {
			return events[i].RouteID < events[j].RouteID
		}
		if events[i].TripID != events[j].TripID {
			return events[i].TripID < events[j].TripID
		}
		return events[i].StopSequence < events[j].StopSequence
	})

	type dedupeKey struct {
		route, trip string
		direction   int8
		seq         int
	}
	seen := make(map[dedupeKey]bool, len(events))
	deduped := events[:0]
	for _, e := range events {
		k := dedupeKey{e.RouteID, e.TripID, e.DirectionID, e.StopSequence}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, e)
	}
	events = deduped

	if len(events) == 0 {
		return nil, errors.New("pattern: no stop events survived the trip join")
	}

	// trip_start_time/trip_end_time: min/max arrival_time per trip_id,
	// computed in a single grouped pass since sorting above already
	// makes each trip's events contiguous within its route block... but
	// trip_id grouping must hold across the whole table regardless of
	// route ordering (each trip belongs to exactly one route, so this
	// holds). A two-pass grouped reduce: first accumulate min/max keyed
	// by trip_id, then broadcast back.
	type minMax struct{ min, max int }
	bounds := make(map[string]minMax, len(events))
	for _, e := range events {
		b, ok := bounds[e.TripID]
		if !ok {
			bounds[e.TripID] = minMax{e.ArrivalTime, e.ArrivalTime}
			continue
		}
		if e.ArrivalTime < b.min {
			b.min = e.ArrivalTime
		}
		if e.ArrivalTime > b.max {
			b.max = e.ArrivalTime
		}
		bounds[e.TripID] = b
	}
	for i := range events {
		b := bounds[events[i].TripID]
		events[i].TripStartTime = b.min
		events[i].TripEndTime = b.max
	}

	return events, nil
}
