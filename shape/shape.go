// Package shape resolves each pattern's segment distances against a
// routing engine's map-matched trace, falling back to great-circle
// distance between stop coordinates when the engine can't be reached
// or returns nothing usable for a pattern.
package shape

import (
	"context"
	"log/slog"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/storage"
)

// TraceResult is a routing engine's answer for one segment's
// polyline: the map-matched distance in kilometers.
type TraceResult struct {
	DistanceKM float64
}

// TraceAttributesClient asks a routing engine to map-match an ordered
// list of stop coordinates and report the traveled distance.
type TraceAttributesClient interface {
	TraceAttributes(ctx context.Context, polyline []model.Stop) (TraceResult, error)
}

// DistanceTable holds the resolved distance, in kilometers, of every
// (pattern, stop_pair) segment spec.md §4.4 requires.
type DistanceTable map[string]map[model.StopPair]float64

// Generate resolves every pattern's segment distances, querying client
// once per pattern segment. Each segment whose client call fails falls
// back to great-circle distance and is logged, not fatal to the batch.
func Generate(ctx context.Context, ps []model.Pattern, client TraceAttributesClient, stops map[string]model.Stop, log *slog.Logger) (DistanceTable, error) {
	table := make(DistanceTable, len(ps))

	for _, p := range ps {
		segDistances := make(map[model.StopPair]float64, len(p.Segments))

		for _, seg := range p.Segments {
			aStop, bStop := stops[seg.Pair[0]], stops[seg.Pair[1]]
			fallback := storage.HaversineDistance(aStop.Lat, aStop.Lon, bStop.Lat, bStop.Lon)

			result, err := client.TraceAttributes(ctx, []model.Stop{aStop, bStop})
			if err != nil {
				if log != nil {
					log.Warn("shape match failed, falling back to great-circle distance",
						"pattern", p.ID, "stop_pair", seg.Pair, "error", err)
				}
				segDistances[seg.Pair] = fallback
				continue
			}

			segDistances[seg.Pair] = result.DistanceKM
		}

		table[p.ID] = segDistances
	}

	return table, nil
}
