package metrics

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/camsys-rove/rove/model"
)

// applyObservedMetrics fills in every AVL-grounded column on stopRows
// and routeRows in place: observed_headway, observed_running_time (with
// and without dwell) and their derived speeds, boardings,
// on_time_performance, passenger_load, crowding and congestion_delay.
func applyObservedMetrics(stopRows []StopMetric, routeRows []RouteMetric, avlEvents []model.AVLStopEvent, earlyMin, lateMin int, log *slog.Logger) {
	prepared := PrepareStopEvents(avlEvents,
		func(e model.AVLStopEvent) string { return e.SvcDate + "\x1f" + e.TripID },
		func(e model.AVLStopEvent) string { return e.StopID },
		func(e model.AVLStopEvent) int { return e.StopSequence },
		func(e model.AVLStopEvent) int { return e.StopTime },
	)

	stopIdx := map[string]int{}
	for i, r := range stopRows {
		stopIdx[stopKey(r.RouteID, r.TripID, r.StopPair)] = i
	}
	routeIdx := map[string]int{}
	for i, r := range routeRows {
		routeIdx[routeKey(r.RouteID, r.TripID)] = i
	}

	assignObservedHeadway(stopRows, prepared)
	assignObservedRunningTime(stopRows, routeRows, stopIdx, routeIdx, prepared)
	assignBoardings(stopRows, routeRows, stopIdx, routeIdx, prepared)
	assignOnTimePerformance(stopRows, routeRows, stopIdx, routeIdx, prepared, earlyMin, lateMin)
	assignPassengerLoad(stopRows, routeRows, stopIdx, routeIdx, prepared)
	assignCrowding(stopRows, routeRows, stopIdx, routeIdx, prepared)
	assignCongestionDelay(stopRows)

	if log != nil {
		log.Info("observed metrics applied", "avl_records", len(avlEvents), "prepared_events", len(prepared))
	}
}

func stopKey(routeID, tripID string, pair model.StopPair) string {
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%s", routeID, tripID, pair[0], pair[1])
}

func routeKey(routeID, tripID string) string {
	return routeID + "\x1f" + tripID
}

// assignObservedHeadway: diff of stop_time within (svc_date, route_id,
// stop_pair) ordered by stop_time, then mean across svc_date grouped
// by (route_id, stop_pair). A first-of-day record has no predecessor
// and contributes no diff to the mean (spec.md §9's documented
// date-boundary NaN exclusion).
func assignObservedHeadway(stopRows []StopMetric, prepared []Prepared[model.AVLStopEvent]) {
	idx := make([]int, len(prepared))
	for i := range prepared {
		idx[i] = i
	}
	key := func(i int) string {
		p := prepared[i]
		return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%s", p.Record.SvcDate, p.Record.RouteID, p.StopPair[0], p.StopPair[1])
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := key(idx[a]), key(idx[b])
		if ka != kb {
			return ka < kb
		}
		return prepared[idx[a]].Record.StopTime < prepared[idx[b]].Record.StopTime
	})

	byRouteStopPair := map[string][]float64{}
	for i := 1; i < len(idx); i++ {
		if key(idx[i]) != key(idx[i-1]) {
			continue
		}
		diff := float64(prepared[idx[i]].Record.StopTime-prepared[idx[i-1]].Record.StopTime) / 60
		p := prepared[idx[i]]
		k := p.Record.RouteID + "\x1f" + p.StopPair[0] + "\x1f" + p.StopPair[1]
		byRouteStopPair[k] = append(byRouteStopPair[k], diff)
	}

	means := map[string]float64{}
	for k, vals := range byRouteStopPair {
		means[k] = round2(mean(vals))
	}

	for i := range stopRows {
		k := stopRows[i].RouteID + "\x1f" + stopRows[i].StopPair[0] + "\x1f" + stopRows[i].StopPair[1]
		if v, ok := means[k]; ok {
			stopRows[i].ObservedHeadway = floatPtr(v)
		}
	}
}

func assignObservedRunningTime(stopRows []StopMetric, routeRows []RouteMetric, stopIdx, routeIdx map[string]int, prepared []Prepared[model.AVLStopEvent]) {
	withoutDwellByStop := map[string][]float64{}
	withDwellByStop := map[string][]float64{}
	withoutDwellBySvcRouteTrip := map[string]float64{}
	withDwellBySvcRouteTrip := map[string]float64{}

	for _, p := range prepared {
		r := p.Record
		withoutDwell := clamp0(float64(p.NextStopArrival-r.StopTime-r.DwellTime) / 60)
		withDwell := clamp0(float64(p.NextStopArrival-r.StopTime) / 60)

		sk := stopKey(r.RouteID, r.TripID, p.StopPair)
		withoutDwellByStop[sk] = append(withoutDwellByStop[sk], withoutDwell)
		withDwellByStop[sk] = append(withDwellByStop[sk], withDwell)

		svcKey := r.SvcDate + "\x1f" + routeKey(r.RouteID, r.TripID)
		withoutDwellBySvcRouteTrip[svcKey] += withoutDwell
		withDwellBySvcRouteTrip[svcKey] += withDwell
	}

	for sk, vals := range withoutDwellByStop {
		if i, ok := stopIdx[sk]; ok {
			stopRows[i].ObservedRunningTime = floatPtr(round2(mean(vals)))
		}
	}
	for sk, vals := range withDwellByStop {
		if i, ok := stopIdx[sk]; ok {
			stopRows[i].ObservedRunningTimeWithDwell = floatPtr(round2(mean(vals)))
		}
	}

	routeWithout := map[string][]float64{}
	routeWith := map[string][]float64{}
	for svcKey, v := range withoutDwellBySvcRouteTrip {
		rk := routeKeyFromSvcKey(svcKey)
		routeWithout[rk] = append(routeWithout[rk], v)
	}
	for svcKey, v := range withDwellBySvcRouteTrip {
		rk := routeKeyFromSvcKey(svcKey)
		routeWith[rk] = append(routeWith[rk], v)
	}
	for rk, vals := range routeWithout {
		if i, ok := routeIdx[rk]; ok {
			routeRows[i].ObservedRunningTime = floatPtr(round2(mean(vals)))
		}
	}
	for rk, vals := range routeWith {
		if i, ok := routeIdx[rk]; ok {
			routeRows[i].ObservedRunningTimeWithDwell = floatPtr(round2(mean(vals)))
		}
	}

	for i := range stopRows {
		if stopRows[i].StopSpacing == nil {
			continue
		}
		if rt := stopRows[i].ObservedRunningTime; rt != nil && *rt != 0 {
			stopRows[i].ObservedSpeedWithoutDwell = floatPtr(round2(*stopRows[i].StopSpacing / *rt * FeetPerMinToMPH))
		}
		if rt := stopRows[i].ObservedRunningTimeWithDwell; rt != nil && *rt != 0 {
			stopRows[i].ObservedSpeedWithDwell = floatPtr(round2(*stopRows[i].StopSpacing / *rt * FeetPerMinToMPH))
		}
	}
	for i := range routeRows {
		if routeRows[i].StopSpacing == nil {
			continue
		}
		if rt := routeRows[i].ObservedRunningTime; rt != nil && *rt != 0 {
			routeRows[i].ObservedSpeedWithoutDwell = floatPtr(round2(*routeRows[i].StopSpacing / *rt * FeetPerMinToMPH))
		}
		if rt := routeRows[i].ObservedRunningTimeWithDwell; rt != nil && *rt != 0 {
			routeRows[i].ObservedSpeedWithDwell = floatPtr(round2(*routeRows[i].StopSpacing / *rt * FeetPerMinToMPH))
		}
	}
}

func routeKeyFromSvcKey(svcKey string) string {
	// svcKey is "svc_date\x1froute_id\x1ftrip_id"; drop the svc_date prefix.
	for i := 0; i < len(svcKey); i++ {
		if svcKey[i] == '\x1f' {
			return svcKey[i+1:]
		}
	}
	return svcKey
}

func assignBoardings(stopRows []StopMetric, routeRows []RouteMetric, stopIdx, routeIdx map[string]int, prepared []Prepared[model.AVLStopEvent]) {
	byStop := map[string][]float64{}
	bySvcRouteTrip := map[string]float64{}
	for _, p := range prepared {
		r := p.Record
		sk := stopKey(r.RouteID, r.TripID, p.StopPair)
		byStop[sk] = append(byStop[sk], float64(r.PassengerOn))
		bySvcRouteTrip[r.SvcDate+"\x1f"+routeKey(r.RouteID, r.TripID)] += float64(r.PassengerOn)
	}
	for sk, vals := range byStop {
		if i, ok := stopIdx[sk]; ok {
			stopRows[i].Boardings = floatPtr(round0(mean(vals)))
		}
	}
	byRoute := map[string][]float64{}
	for svcKey, v := range bySvcRouteTrip {
		byRoute[routeKeyFromSvcKey(svcKey)] = append(byRoute[routeKeyFromSvcKey(svcKey)], v)
	}
	for rk, vals := range byRoute {
		if i, ok := routeIdx[rk]; ok {
			routeRows[i].Boardings = floatPtr(round2(mean(vals)))
		}
	}
}

func assignOnTimePerformance(stopRows []StopMetric, routeRows []RouteMetric, stopIdx, routeIdx map[string]int, prepared []Prepared[model.AVLStopEvent], earlyMin, lateMin int) {
	delayByStop := map[string][]float64{}
	onTimeBySvcRouteTrip := map[string]int{}
	totalBySvcRouteTrip := map[string]int{}

	for _, p := range prepared {
		r := p.Record
		sk := stopKey(r.RouteID, r.TripID, p.StopPair)
		i, ok := stopIdx[sk]
		if !ok {
			continue
		}
		delay := float64(r.StopTime - stopRows[i].ArrivalTime)
		delayByStop[sk] = append(delayByStop[sk], delay)

		svcKey := r.SvcDate + "\x1f" + routeKey(r.RouteID, r.TripID)
		totalBySvcRouteTrip[svcKey]++
		if delay > float64(earlyMin*60) && delay < float64(lateMin*60) {
			onTimeBySvcRouteTrip[svcKey]++
		}
	}

	for sk, vals := range delayByStop {
		if i, ok := stopIdx[sk]; ok {
			stopRows[i].OnTimePerformance = floatPtr(round0(mean(vals)))
		}
	}

	byRoute := map[string][]float64{}
	for svcKey, total := range totalBySvcRouteTrip {
		if total == 0 {
			continue
		}
		pct := float64(onTimeBySvcRouteTrip[svcKey]) / float64(total) * 100
		rk := routeKeyFromSvcKey(svcKey)
		byRoute[rk] = append(byRoute[rk], pct)
	}
	for rk, vals := range byRoute {
		if i, ok := routeIdx[rk]; ok {
			routeRows[i].OnTimePerformance = floatPtr(round0(mean(vals)))
		}
	}
}

func assignPassengerLoad(stopRows []StopMetric, routeRows []RouteMetric, stopIdx, routeIdx map[string]int, prepared []Prepared[model.AVLStopEvent]) {
	byStop := map[string][]float64{}
	maxBySvcRouteTrip := map[string]float64{}
	seenSvcRouteTrip := map[string]bool{}

	for _, p := range prepared {
		r := p.Record
		sk := stopKey(r.RouteID, r.TripID, p.StopPair)
		byStop[sk] = append(byStop[sk], float64(r.PassengerLoad))

		svcKey := r.SvcDate + "\x1f" + routeKey(r.RouteID, r.TripID)
		if !seenSvcRouteTrip[svcKey] || float64(r.PassengerLoad) > maxBySvcRouteTrip[svcKey] {
			maxBySvcRouteTrip[svcKey] = float64(r.PassengerLoad)
			seenSvcRouteTrip[svcKey] = true
		}
	}
	for sk, vals := range byStop {
		if i, ok := stopIdx[sk]; ok {
			stopRows[i].PassengerLoad = floatPtr(round0(mean(vals)))
		}
	}
	byRoute := map[string][]float64{}
	for svcKey, v := range maxBySvcRouteTrip {
		byRoute[routeKeyFromSvcKey(svcKey)] = append(byRoute[routeKeyFromSvcKey(svcKey)], v)
	}
	for rk, vals := range byRoute {
		if i, ok := routeIdx[rk]; ok {
			routeRows[i].PassengerLoad = floatPtr(round0(mean(vals)))
		}
	}
}

func assignCrowding(stopRows []StopMetric, routeRows []RouteMetric, stopIdx, routeIdx map[string]int, prepared []Prepared[model.AVLStopEvent]) {
	byStop := map[string][]float64{}
	maxBySvcRouteTrip := map[string]float64{}
	seenSvcRouteTrip := map[string]bool{}

	for _, p := range prepared {
		r := p.Record
		if r.SeatCapacity == 0 {
			continue
		}
		crowding := float64(r.PassengerLoad) / float64(r.SeatCapacity) * 100

		sk := stopKey(r.RouteID, r.TripID, p.StopPair)
		byStop[sk] = append(byStop[sk], crowding)

		svcKey := r.SvcDate + "\x1f" + routeKey(r.RouteID, r.TripID)
		if !seenSvcRouteTrip[svcKey] || crowding > maxBySvcRouteTrip[svcKey] {
			maxBySvcRouteTrip[svcKey] = crowding
			seenSvcRouteTrip[svcKey] = true
		}
	}
	for sk, vals := range byStop {
		if i, ok := stopIdx[sk]; ok {
			stopRows[i].Crowding = floatPtr(round0(mean(vals)))
		}
	}
	byRoute := map[string][]float64{}
	for svcKey, v := range maxBySvcRouteTrip {
		byRoute[routeKeyFromSvcKey(svcKey)] = append(byRoute[routeKeyFromSvcKey(svcKey)], v)
	}
	for rk, vals := range byRoute {
		if i, ok := routeIdx[rk]; ok {
			routeRows[i].Crowding = floatPtr(round0(mean(vals)))
		}
	}
}

// assignCongestionDelay computes free_flow_speed per stop_pair (the
// max observed_speed_without_dwell across all trips traversing that
// pair, capped at MaxSpeedMPH, defaulting to MeanSpeedMPH when no trip
// has an observed speed) and derives vehicle/passenger congestion
// delay per stop row.
func assignCongestionDelay(stopRows []StopMetric) {
	freeFlowByPair := map[string]float64{}
	for _, r := range stopRows {
		if r.ObservedSpeedWithoutDwell == nil {
			continue
		}
		k := r.StopPair[0] + "\x1f" + r.StopPair[1]
		if v := *r.ObservedSpeedWithoutDwell; v > freeFlowByPair[k] {
			freeFlowByPair[k] = v
		}
	}

	for i := range stopRows {
		r := &stopRows[i]
		if r.StopSpacing == nil || r.ObservedSpeedWithoutDwell == nil {
			continue
		}

		k := r.StopPair[0] + "\x1f" + r.StopPair[1]
		freeFlow := freeFlowByPair[k]
		if freeFlow == 0 {
			freeFlow = MeanSpeedMPH
		}
		if freeFlow > MaxSpeedMPH {
			freeFlow = MaxSpeedMPH
		}

		freeFlowTravelTime := *r.StopSpacing / (freeFlow / FeetPerMinToMPH)
		observedTravelTime := *r.StopSpacing / (*r.ObservedSpeedWithoutDwell / FeetPerMinToMPH)

		vehicleDelay := (observedTravelTime - freeFlowTravelTime) / (*r.StopSpacing * FtToMi)
		r.VehicleCongestionDelay = floatPtr(vehicleDelay)

		if r.PassengerLoad != nil {
			r.PassengerCongestionDelay = floatPtr(vehicleDelay * *r.PassengerLoad)
		}
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func clamp0(v float64) float64 {
	return math.Max(v, 0)
}
