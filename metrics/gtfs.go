package metrics

import (
	"fmt"
	"sort"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/shape"
)

// buildScheduledMetrics computes every metric derivable from GTFS
// events alone: stop_spacing, scheduled_headway, scheduled_running_time
// and scheduled_speed, at stop and route grain.
func buildScheduledMetrics(events []model.GTFSStopEvent, shapes shape.DistanceTable) ([]StopMetric, []RouteMetric) {
	prepared := PrepareStopEvents(events,
		func(e model.GTFSStopEvent) string { return e.TripID },
		func(e model.GTFSStopEvent) string { return e.StopID },
		func(e model.GTFSStopEvent) int { return e.StopSequence },
		func(e model.GTFSStopEvent) int { return e.ArrivalTime },
	)

	stopRows := make([]StopMetric, len(prepared))
	for i, p := range prepared {
		r := p.Record
		stopRows[i] = StopMetric{
			RouteID:       r.RouteID,
			DirectionID:   r.DirectionID,
			Pattern:       r.Pattern,
			TripID:        r.TripID,
			ServiceID:     r.ServiceID,
			StopPair:      p.StopPair,
			TPBP:          r.TPBP,
			ArrivalTime:   r.ArrivalTime,
			DepartureTime: r.DepartureTime,
			TripStartTime: r.TripStartTime,
		}

		if distKM, ok := shapes[r.Pattern][p.StopPair]; ok {
			stopRows[i].StopSpacing = floatPtr(round2(distKM * KmToFt))
		}

		rt := round2(float64(p.NextStopArrival-r.DepartureTime) / 60)
		stopRows[i].ScheduledRunningTime = floatPtr(rt)

		if stopRows[i].StopSpacing != nil && rt != 0 {
			stopRows[i].ScheduledSpeed = floatPtr(round2(*stopRows[i].StopSpacing / rt * FeetPerMinToMPH))
		}
	}

	assignScheduledHeadway(stopRows)

	routeRows := buildRouteMetrics(stopRows)

	return stopRows, routeRows
}

// assignScheduledHeadway computes, in place, the diff of arrival_time
// within (route_id, direction_id, pattern, stop_pair) ordered by
// arrival_time — the first record of each such partition has no
// predecessor and keeps a nil headway, mirroring pandas .diff().
func assignScheduledHeadway(stopRows []StopMetric) {
	idx := make([]int, len(stopRows))
	for i := range stopRows {
		idx[i] = i
	}

	key := func(i int) string {
		r := stopRows[i]
		return fmt.Sprintf("%s\x1f%d\x1f%s\x1f%s\x1f%s", r.RouteID, r.DirectionID, r.Pattern, r.StopPair[0], r.StopPair[1])
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := key(idx[a]), key(idx[b])
		if ka != kb {
			return ka < kb
		}
		return stopRows[idx[a]].ArrivalTime < stopRows[idx[b]].ArrivalTime
	})

	for i := 1; i < len(idx); i++ {
		if key(idx[i]) != key(idx[i-1]) {
			continue
		}
		diff := round2(float64(stopRows[idx[i]].ArrivalTime-stopRows[idx[i-1]].ArrivalTime) / 60)
		stopRows[idx[i]].ScheduledHeadway = floatPtr(diff)
	}
}

// buildRouteMetrics sums stop_spacing and scheduled_running_time per
// (pattern, route_id, direction_id, trip_id) — one row per trip — then
// derives scheduled_speed from the summed pair.
func buildRouteMetrics(stopRows []StopMetric) []RouteMetric {
	type key struct {
		pattern, route, trip string
		dir                  int8
	}
	order := []key{}
	seen := map[key]bool{}
	spacing := map[key]float64{}
	running := map[key]float64{}
	serviceID := map[key]string{}
	tripStart := map[key]int{}

	for _, r := range stopRows {
		k := key{r.Pattern, r.RouteID, r.TripID, r.DirectionID}
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
			serviceID[k] = r.ServiceID
			tripStart[k] = r.TripStartTime
		}
		if r.StopSpacing != nil {
			spacing[k] += *r.StopSpacing
		}
		if r.ScheduledRunningTime != nil {
			running[k] += *r.ScheduledRunningTime
		}
	}

	out := make([]RouteMetric, len(order))
	for i, k := range order {
		rm := RouteMetric{
			RouteID:       k.route,
			DirectionID:   k.dir,
			Pattern:       k.pattern,
			TripID:        k.trip,
			ServiceID:     serviceID[k],
			TripStartTime: tripStart[k],
			StopSpacing:   floatPtr(round2(spacing[k])),
		}
		rt := running[k]
		rm.ScheduledRunningTime = floatPtr(round2(rt))
		if rt != 0 {
			rm.ScheduledSpeed = floatPtr(round2(*rm.StopSpacing / rt * FeetPerMinToMPH))
		}
		out[i] = rm
	}
	return out
}
