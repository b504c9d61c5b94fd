// Package aggregate is MetricAggregator (C7): it groups MetricCalculator's
// trip-level tables by time window and output grain, then reduces each
// metric column to a single representative value per group via a
// percentile (median, 90th, ...).
package aggregate

import (
	"fmt"

	"github.com/camsys-rove/rove/metrics"
	"github.com/camsys-rove/rove/model"
)

// Grain names the five output groupings spec.md §4.6 item 3 defines.
type Grain string

const (
	GrainSegment      Grain = "segment"
	GrainCorridor     Grain = "corridor"
	GrainRoute        Grain = "route"
	GrainTpbpSegment  Grain = "tpbp-segment"
	GrainTpbpCorridor Grain = "tpbp-corridor"
)

// AggregatedRow is one group's reduced metric values, plus the group
// identity fields relevant to its grain (irrelevant fields are left
// zero-valued — e.g. corridor grain leaves RouteID empty).
type AggregatedRow struct {
	RouteID     string
	DirectionID int8
	StopPair    model.StopPair
	Metrics     map[string]float64
}

// Result holds the Cartesian product of {named windows} x {percentiles}
// x {five grains}, keyed by "{period}-{grain}-{method}", alongside the
// redValues configuration carried through unmodified from Aggregate's
// caller: §4.6 requires it be *preserved*, not interpreted here, for
// downstream rendering to consume.
type Result struct {
	Rows      map[string][]AggregatedRow `json:"rows"`
	RedValues map[string]bool            `json:"redValues,omitempty"`
}

// Aggregate produces the Cartesian product of {named windows} x
// {percentiles} x {five grains}.
func Aggregate(tables *metrics.Tables, windows map[string]Window, percentiles []float64, redValues map[string]bool) (Result, error) {
	result := Result{
		Rows:      map[string][]AggregatedRow{},
		RedValues: redValues,
	}

	for periodName, window := range windows {
		stopRows := filterStop(tables.StopMetrics, window)
		routeRows := filterRoute(tables.RouteMetrics, window)
		tpbpRows := filterTpbp(tables.TpbpMetrics, window)

		for _, p := range percentiles {
			method := methodName(p)

			corridor := aggregateStopLike(stopRows, p, corridorKey)
			tpbpCorridor := aggregateTpbp(tpbpRows, p, tpbpCorridorKey)
			for i := range corridor {
				corridor[i].RouteID = ""
			}
			for i := range tpbpCorridor {
				tpbpCorridor[i].RouteID = ""
			}

			result.Rows[resultKey(periodName, GrainSegment, method)] = aggregateStopLike(stopRows, p, segmentKey)
			result.Rows[resultKey(periodName, GrainCorridor, method)] = corridor
			result.Rows[resultKey(periodName, GrainRoute, method)] = aggregateRoute(routeRows, p)
			result.Rows[resultKey(periodName, GrainTpbpSegment, method)] = aggregateTpbp(tpbpRows, p, tpbpSegmentKey)
			result.Rows[resultKey(periodName, GrainTpbpCorridor, method)] = tpbpCorridor
		}
	}

	return result, nil
}

func methodName(p float64) string {
	if p == 50 {
		return "median"
	}
	return fmt.Sprintf("p%g", p)
}

func resultKey(period string, grain Grain, method string) string {
	return fmt.Sprintf("%s-%s-%s", period, grain, method)
}

func filterStop(rows []metrics.StopMetric, w Window) []metrics.StopMetric {
	out := make([]metrics.StopMetric, 0, len(rows))
	for _, r := range rows {
		if w.contains(r.TripStartTime) {
			out = append(out, r)
		}
	}
	return out
}

func filterRoute(rows []metrics.RouteMetric, w Window) []metrics.RouteMetric {
	out := make([]metrics.RouteMetric, 0, len(rows))
	for _, r := range rows {
		if w.contains(r.TripStartTime) {
			out = append(out, r)
		}
	}
	return out
}

func filterTpbp(rows []metrics.TpbpMetric, w Window) []metrics.TpbpMetric {
	out := make([]metrics.TpbpMetric, 0, len(rows))
	for _, r := range rows {
		if w.contains(r.TripStartTime) {
			out = append(out, r)
		}
	}
	return out
}

func segmentKey(r metrics.StopMetric) string  { return r.RouteID + "\x1f" + r.StopPair[0] + "\x1f" + r.StopPair[1] }
func corridorKey(r metrics.StopMetric) string { return r.StopPair[0] + "\x1f" + r.StopPair[1] }

func tpbpSegmentKey(r metrics.TpbpMetric) string {
	return r.RouteID + "\x1f" + r.StopPair[0] + "\x1f" + r.StopPair[1]
}
func tpbpCorridorKey(r metrics.TpbpMetric) string { return r.StopPair[0] + "\x1f" + r.StopPair[1] }

func aggregateStopLike(rows []metrics.StopMetric, p float64, keyFn func(metrics.StopMetric) string) []AggregatedRow {
	groups := map[string][]metrics.StopMetric{}
	order := []string{}
	for _, r := range rows {
		k := keyFn(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]AggregatedRow, 0, len(order))
	for _, k := range order {
		members := groups[k]
		valuesByMetric := map[string][]float64{}
		for _, m := range members {
			for name, v := range stopMetricValues(m) {
				valuesByMetric[name] = append(valuesByMetric[name], v)
			}
		}
		reduced := map[string]float64{}
		for name, vals := range valuesByMetric {
			if v, ok := Percentile(vals, p); ok {
				reduced[name] = v
			}
		}
		out = append(out, AggregatedRow{
			RouteID:  members[0].RouteID,
			StopPair: members[0].StopPair,
			Metrics:  reduced,
		})
	}
	return out
}

func aggregateRoute(rows []metrics.RouteMetric, p float64) []AggregatedRow {
	type key struct {
		route string
		dir   int8
	}
	groups := map[key][]metrics.RouteMetric{}
	order := []key{}
	for _, r := range rows {
		k := key{r.RouteID, r.DirectionID}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]AggregatedRow, 0, len(order))
	for _, k := range order {
		members := groups[k]
		valuesByMetric := map[string][]float64{}
		for _, m := range members {
			for name, v := range routeMetricValues(m) {
				valuesByMetric[name] = append(valuesByMetric[name], v)
			}
		}
		reduced := map[string]float64{}
		for name, vals := range valuesByMetric {
			if v, ok := Percentile(vals, p); ok {
				reduced[name] = v
			}
		}
		out = append(out, AggregatedRow{
			RouteID:     k.route,
			DirectionID: k.dir,
			Metrics:     reduced,
		})
	}
	return out
}

func aggregateTpbp(rows []metrics.TpbpMetric, p float64, keyFn func(metrics.TpbpMetric) string) []AggregatedRow {
	groups := map[string][]metrics.TpbpMetric{}
	order := []string{}
	for _, r := range rows {
		k := keyFn(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]AggregatedRow, 0, len(order))
	for _, k := range order {
		members := groups[k]
		valuesByMetric := map[string][]float64{}
		for _, m := range members {
			for name, v := range tpbpMetricValues(m) {
				valuesByMetric[name] = append(valuesByMetric[name], v)
			}
		}
		reduced := map[string]float64{}
		for name, vals := range valuesByMetric {
			if v, ok := Percentile(vals, p); ok {
				reduced[name] = v
			}
		}
		out = append(out, AggregatedRow{
			RouteID:  members[0].RouteID,
			StopPair: members[0].StopPair,
			Metrics:  reduced,
		})
	}
	return out
}
