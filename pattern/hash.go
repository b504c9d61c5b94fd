package pattern

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/camsys-rove/rove/model"
)

// stopSeqHash is a 64-bit FNV-1a over the ordered, separator-joined
// stop_id sequence: non-cryptographic but order-sensitive, meeting
// the "≥64 bits" injectivity bar spec.md requires in practice.
func stopSeqHash(stopIDs []string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(stopIDs, "\x1f")))
	return h.Sum64()
}

// HashPatterns assigns the pattern column. events must already be
// ordered the way BuildStopEvents leaves them (trip-contiguous,
// stop_sequence ascending). Returns ErrPatternHashCollision if the
// number of distinct hashes doesn't match the number of distinct
// ordered stop-id sequences.
func HashPatterns(events []model.GTFSStopEvent) error {
	tripStopIDs := map[string][]string{}
	tripOrder := make([]string, 0)

	tripStart := 0
	for i := 0; i <= len(events); i++ {
		if i < len(events) && events[i].TripID == events[tripStart].TripID {
			continue
		}
		trip := events[tripStart].TripID
		ids := make([]string, 0, i-tripStart)
		for _, e := range events[tripStart:i] {
			ids = append(ids, e.StopID)
		}
		tripStopIDs[trip] = ids
		tripOrder = append(tripOrder, trip)
		tripStart = i
	}

	tripHash := make(map[string]uint64, len(tripStopIDs))
	distinctSeqs := map[string]bool{}
	distinctHashes := map[uint64]bool{}
	for _, trip := range tripOrder {
		ids := tripStopIDs[trip]
		h := stopSeqHash(ids)
		tripHash[trip] = h
		distinctSeqs[strings.Join(ids, "\x1f")] = true
		distinctHashes[h] = true
	}

	if len(distinctHashes) != len(distinctSeqs) {
		return ErrPatternHashCollision
	}

	hashCount := map[string]map[uint64]int{} // route-dir -> hash -> ordinal
	tripPattern := make(map[string]string, len(tripOrder))

	// First-seen ordinal assignment per (route_id, direction_id), in
	// the order trips already appear in the sorted records.
	seenTripForRouteDir := map[string]bool{}
	for i := range events {
		if seenTripForRouteDir[events[i].TripID] {
			continue
		}
		seenTripForRouteDir[events[i].TripID] = true

		key := fmt.Sprintf("%s|%d", events[i].RouteID, events[i].DirectionID)
		if hashCount[key] == nil {
			hashCount[key] = map[uint64]int{}
		}
		h := tripHash[events[i].TripID]
		if _, ok := hashCount[key][h]; !ok {
			hashCount[key][h] = len(hashCount[key]) + 1
		}

		pattern := fmt.Sprintf("%s-%d-%d", events[i].RouteID, events[i].DirectionID, hashCount[key][h])
		tripPattern[events[i].TripID] = pattern
	}

	for i := range events {
		events[i].Pattern = tripPattern[events[i].TripID]
	}

	return nil
}

// Patterns assembles model.Pattern values (without segment geometry)
// from events already carrying a Pattern field, one per distinct
// pattern, sorted by pattern ID.
func Patterns(events []model.GTFSStopEvent) []model.Pattern {
	order := []string{}
	stopIDs := map[string][]string{}
	routeDir := map[string][2]interface{}{}

	tripStart := 0
	for i := 0; i <= len(events); i++ {
		if i < len(events) && events[i].TripID == events[tripStart].TripID {
			continue
		}
		trip := events[tripStart:i]
		pat := trip[0].Pattern
		if _, ok := stopIDs[pat]; !ok {
			ids := make([]string, 0, len(trip))
			for _, e := range trip {
				ids = append(ids, e.StopID)
			}
			stopIDs[pat] = ids
			routeDir[pat] = [2]interface{}{trip[0].RouteID, trip[0].DirectionID}
			order = append(order, pat)
		}
		tripStart = i
	}

	sort.Strings(order)

	patterns := make([]model.Pattern, 0, len(order))
	for _, pat := range order {
		rd := routeDir[pat]
		patterns = append(patterns, model.Pattern{
			ID:          pat,
			RouteID:     rd[0].(string),
			DirectionID: rd[1].(int8),
			StopIDs:     stopIDs[pat],
		})
	}
	return patterns
}
