package pattern

import (
	"sort"

	"github.com/camsys-rove/rove/model"
)

// routesByStop is the classical inverted index described in the port's
// design notes: stop_id -> sorted, deduped vector of route_id. Built
// once per call so the per-stop set difference below is linear in the
// combined length of both sides.
func routesByStop(events []model.GTFSStopEvent) map[string][]string {
	seen := map[string]map[string]bool{}
	for _, e := range events {
		s, ok := seen[e.StopID]
		if !ok {
			s = map[string]bool{}
			seen[e.StopID] = s
		}
		s[e.RouteID] = true
	}

	out := make(map[string][]string, len(seen))
	for stop, routes := range seen {
		list := make([]string, 0, len(routes))
		for r := range routes {
			list = append(list, r)
		}
		sort.Strings(list)
		out[stop] = list
	}
	return out
}

// setDiff returns the sorted elements of a not present in b. Both
// inputs must already be sorted.
func setDiff(a, b []string) []string {
	if len(a) == 0 {
		return nil
	}
	bset := make(map[string]bool, len(b))
	for _, v := range b {
		bset[v] = true
	}
	var diff []string
	for _, v := range a {
		if !bset[v] {
			diff = append(diff, v)
		}
	}
	return diff
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AssignBranchpoints classifies branchpoints and finalizes tp_bp.
//
// Within each trip (events must already be grouped/ordered the way
// BuildStopEvents leaves them: sorted so that a trip's records are
// contiguous and stop_sequence-ascending), a stop s with predecessor p
// and successor n is a branchpoint iff R(s)\R(n) and R(s)\R(p) are not
// both empty, and it is not the pass-through case where the two
// differences are equal and non-empty (routes diverge then immediately
// reconverge around a single shared stop rather than truly branching).
//
// tp_bp is then timepoint OR branchpoint, forced to 1 on the first and
// last record of every trip, and finally normalized so that every
// record sharing (route_id, stop_id) agrees (the max over that group).
func AssignBranchpoints(events []model.GTFSStopEvent) {
	routes := routesByStop(events)

	tripStart := 0
	for i := 0; i <= len(events); i++ {
		if i < len(events) && events[i].TripID == events[tripStart].TripID {
			continue
		}
		assignTripBranchpoints(events[tripStart:i], routes)
		tripStart = i
	}

	for i := range events {
		tpbp := 0
		if events[i].Timepoint == 1 || events[i].Branchpoint == 1 {
			tpbp = 1
		}
		events[i].TPBP = tpbp
	}
	tripStart = 0
	for i := 0; i <= len(events); i++ {
		if i < len(events) && events[i].TripID == events[tripStart].TripID {
			continue
		}
		if i > tripStart {
			events[tripStart].TPBP = 1
			events[i-1].TPBP = 1
		}
		tripStart = i
	}

	type routeStop struct{ route, stop string }
	maxTPBP := map[routeStop]int{}
	for _, e := range events {
		k := routeStop{e.RouteID, e.StopID}
		if e.TPBP > maxTPBP[k] {
			maxTPBP[k] = e.TPBP
		}
	}
	for i := range events {
		events[i].TPBP = maxTPBP[routeStop{events[i].RouteID, events[i].StopID}]
	}
}

func assignTripBranchpoints(trip []model.GTFSStopEvent, routes map[string][]string) {
	for i := range trip {
		s := trip[i].StopID
		rs := routes[s]

		var deltaNext, deltaPrev []string
		if i < len(trip)-1 {
			deltaNext = setDiff(rs, routes[trip[i+1].StopID])
		}
		if i > 0 {
			deltaPrev = setDiff(rs, routes[trip[i-1].StopID])
		}

		isBranch := (len(deltaNext)+len(deltaPrev) > 0) &&
			!(sameStrings(deltaPrev, deltaNext) && len(deltaPrev) != 0)

		if isBranch {
			trip[i].Branchpoint = 1
		} else {
			trip[i].Branchpoint = 0
		}
	}
}
