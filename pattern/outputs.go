package pattern

import (
	"fmt"

	"github.com/camsys-rove/rove/model"
)

// TimepointsOutput builds the timepoints.json lookup: for every
// consecutive stop pair within a trip, the enclosing pair of tp_bp
// stops it falls between. Keyed by "{route_id}-{stop_a}-{stop_b}".
//
// events must be in BuildStopEvents order (trip-contiguous,
// stop_sequence ascending) with TPBP already finalized.
func TimepointsOutput(events []model.GTFSStopEvent) map[string][2]string {
	out := map[string][2]string{}

	tripStart := 0
	for i := 0; i <= len(events); i++ {
		if i < len(events) && events[i].TripID == events[tripStart].TripID {
			continue
		}
		tripTimepointsOutput(events[tripStart:i], out)
		tripStart = i
	}

	return out
}

func tripTimepointsOutput(trip []model.GTFSStopEvent, out map[string][2]string) {
	var tpbpIdx []int
	for i, e := range trip {
		if e.TPBP == 1 {
			tpbpIdx = append(tpbpIdx, i)
		}
	}

	nextTpbpPair := map[int][2]string{}
	for j, idx := range tpbpIdx {
		if j == len(tpbpIdx)-1 {
			continue // last tp_bp of the trip has no successor pair
		}
		next := trip[tpbpIdx[j+1]]
		nextTpbpPair[idx] = [2]string{trip[idx].StopID, next.StopID}
	}

	var current [2]string
	for i, e := range trip {
		if pair, ok := nextTpbpPair[i]; ok {
			current = pair
		}
		if i == len(trip)-1 {
			continue // no next_stop for the trip's last record
		}
		nextStop := trip[i+1].StopID
		key := fmt.Sprintf("%s-%s-%s", e.RouteID, e.StopID, nextStop)
		out[key] = current
	}
}

// StopNameLookupOutput builds the stop_name_lookup.json map: stop_id ->
// {stop_name, [municipality]}.
func StopNameLookupOutput(stops map[string]model.Stop) map[string]model.StopNameEntry {
	out := make(map[string]model.StopNameEntry, len(stops))
	for id, s := range stops {
		out[id] = model.StopNameEntry{
			StopName:     s.Name,
			Municipality: s.Municipality,
		}
	}
	return out
}
