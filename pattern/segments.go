package pattern

import (
	"math"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/storage"
)

// SynthesizeSegments builds the ordered Segment list for each pattern:
// a consecutive stop-pair geometry initialized to the two stop
// coordinates and a straight-line (haversine) distance, then enriched
// with a GTFS shapes.txt polyline when one is available for the
// pattern.
//
// tripShapeID carries trip_id -> shape_id so a representative shape can be
// found for each pattern; shapes carries shape_id -> ordered polyline.
// Both may be nil, in which case every segment keeps its two-point
// stop-coordinate polyline.
func SynthesizeSegments(patterns []model.Pattern, events []model.GTFSStopEvent, stops map[string]model.Stop, tripShapeID map[string]string, shapes map[string][]model.ShapePoint) []model.Pattern {
	patternTrips := patternTripIDs(events)

	out := make([]model.Pattern, len(patterns))
	for pi, p := range patterns {
		segs := make([]model.Segment, 0, len(p.StopIDs)-1)
		for i := 0; i < len(p.StopIDs)-1; i++ {
			a, b := p.StopIDs[i], p.StopIDs[i+1]
			aStop, bStop := stops[a], stops[b]
			segs = append(segs, model.Segment{
				Pair:     model.StopPair{a, b},
				Coords:   [][2]float64{aStop.Coords(), bStop.Coords()},
				Distance: storage.HaversineDistance(aStop.Lat, aStop.Lon, bStop.Lat, bStop.Lon),
			})
		}

		if shapeCoords := representativeShape(patternTrips[p.ID], tripShapeID, shapes); shapeCoords != nil {
			enrichWithShape(segs, shapeCoords)
		}

		p.Segments = segs
		out[pi] = p
	}
	return out
}

func patternTripIDs(events []model.GTFSStopEvent) map[string][]string {
	out := map[string][]string{}
	seen := map[string]bool{}
	for _, e := range events {
		if seen[e.TripID] {
			continue
		}
		seen[e.TripID] = true
		out[e.Pattern] = append(out[e.Pattern], e.TripID)
	}
	return out
}

// representativeShape finds the first trip in tripIDs with a known,
// resolvable shape_id and returns its coordinate polyline.
func representativeShape(tripIDs []string, tripShapeID map[string]string, shapes map[string][]model.ShapePoint) [][2]float64 {
	if shapes == nil {
		return nil
	}
	for _, t := range tripIDs {
		shapeID, ok := tripShapeID[t]
		if !ok || shapeID == "" {
			continue
		}
		pts, ok := shapes[shapeID]
		if !ok {
			continue
		}
		coords := make([][2]float64, len(pts))
		for i, pt := range pts {
			coords[i] = [2]float64{pt.Lat, pt.Lon}
		}
		return coords
	}
	return nil
}

// enrichWithShape replaces each segment's polyline with the shape
// slice between the nearest-point indices of its endpoints, in place,
// advancing the search window monotonically after each segment so a
// loop route's second pass through a stop never back-tracks onto the
// first pass's shape indices.
func enrichWithShape(segs []model.Segment, shapeCoords [][2]float64) {
	window := shapeCoords
	windowOffset := 0

	for i := range segs {
		start := segs[i].Coords[0]
		end := segs[i].Coords[len(segs[i].Coords)-1]

		startIdx := nearestPointIndex(window, start)
		endIdx := nearestPointIndex(window, end)

		slice := window[startIdx : endIdx+1]
		if len(slice) > 2 {
			cp := make([][2]float64, len(slice))
			copy(cp, slice)
			segs[i].Coords = cp
		}

		// Advance the window to end_idx of this segment (absolute
		// position in the original shape), never back-tracking.
		windowOffset += endIdx
		window = shapeCoords[windowOffset:]
	}
}

func nearestPointIndex(coords [][2]float64, point [2]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range coords {
		dLat := c[0] - point[0]
		dLon := c[1] - point[1]
		d := dLat*dLat + dLon*dLon
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
