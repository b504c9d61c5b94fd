package metrics

import "github.com/camsys-rove/rove/model"

// buildTpbpMetrics derives the tpbp-grain table from the already
// stop_spacing/scheduled_running_time-populated stop rows: running
// metrics are re-summed over the window starting at each TPBP==1 stop
// up to (but excluding) the next one — the Go equivalent of the
// source's `groupby(['trip_id'])['tp_bp'].cumsum()` group id followed
// by a `transform('sum')`. The group's StopPair label is the pair of
// consecutive tp_bp stops bounding it (spec.md §3's TimepointSegment),
// not the immediate next stop of its first row.
//
// stopRows must be trip-contiguous (the order PrepareStopEvents /
// BuildStopEvents leaves them in).
func buildTpbpMetrics(stopRows []StopMetric) []TpbpMetric {
	out := make([]TpbpMetric, 0)

	tripStart := 0
	for i := 0; i <= len(stopRows); i++ {
		if i < len(stopRows) && stopRows[i].TripID == stopRows[tripStart].TripID {
			continue
		}
		out = append(out, tpbpGroupsForTrip(stopRows[tripStart:i])...)
		tripStart = i
	}

	return out
}

func tpbpGroupsForTrip(trip []StopMetric) []TpbpMetric {
	var groups []TpbpMetric
	var cur *TpbpMetric

	add := func(dst **float64, v *float64) {
		if v == nil {
			return
		}
		if *dst == nil {
			*dst = floatPtr(0)
		}
		**dst += *v
	}

	for _, r := range trip {
		if r.TPBP == 1 {
			// r.StopPair[0] is this row's own stop_id (the new tp_bp
			// stop), which also closes out the prior group's span.
			if cur != nil {
				cur.StopPair[1] = r.StopPair[0]
				groups = append(groups, *cur)
			}
			cur = &TpbpMetric{
				RouteID:       r.RouteID,
				DirectionID:   r.DirectionID,
				Pattern:       r.Pattern,
				TripID:        r.TripID,
				StopPair:      model.StopPair{r.StopPair[0], ""},
				TripStartTime: r.TripStartTime,
			}
		}
		if cur == nil {
			continue // shouldn't happen: first stop of a trip is always TPBP==1
		}
		add(&cur.StopSpacing, r.StopSpacing)
		add(&cur.ScheduledRunningTime, r.ScheduledRunningTime)
		add(&cur.ObservedRunningTime, r.ObservedRunningTime)
		add(&cur.ObservedRunningTimeWithDwell, r.ObservedRunningTimeWithDwell)
		add(&cur.Boardings, r.Boardings)
	}
	// cur, if still open, spans from the last tp_bp stop to the end of
	// the trip with no closing tp_bp stop in stopRows (PrepareStopEvents
	// already dropped the trip's final row for lack of a next_stop):
	// the trailing partial tpbp segment is discarded, per spec.md §9.

	for i := range groups {
		g := &groups[i]
		if g.StopSpacing != nil && g.ScheduledRunningTime != nil && *g.ScheduledRunningTime != 0 {
			g.ScheduledSpeed = floatPtr(round2(*g.StopSpacing / *g.ScheduledRunningTime * FeetPerMinToMPH))
		}
		if g.StopSpacing != nil && g.ObservedRunningTime != nil && *g.ObservedRunningTime != 0 {
			g.ObservedSpeedWithoutDwell = floatPtr(round2(*g.StopSpacing / *g.ObservedRunningTime * FeetPerMinToMPH))
		}
		if g.StopSpacing != nil && g.ObservedRunningTimeWithDwell != nil && *g.ObservedRunningTimeWithDwell != 0 {
			g.ObservedSpeedWithDwell = floatPtr(round2(*g.StopSpacing / *g.ObservedRunningTimeWithDwell * FeetPerMinToMPH))
		}
	}

	return groups
}

