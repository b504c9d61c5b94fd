// Package avl is AVLLoader (C4): it normalizes agency-specific vehicle
// telemetry exports into the canonical AVL StopEvent schema the rest of
// the pipeline (MetricCalculator in particular) depends on.
package avl

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

// ErrMissingKeyField is returned by Normalize, failing the whole batch,
// when a row has an empty svc_date, trip_id or stop_id. stop_sequence
// is parsed as an integer and is not checked for emptiness.
var ErrMissingKeyField = errors.New("avl: row missing a required key field")

// Normalizer turns one agency's raw AVL export into canonical
// model.AVLStopEvent rows. Each agency's export has its own column
// names and units; Normalize is responsible for renaming route -> route_id
// and coercing stop_time/dwell_time to seconds before returning.
type Normalizer interface {
	Normalize(raw []byte) ([]model.AVLStopEvent, error)
}

// Dedupe enforces "at most one record per (svc_date, trip_id,
// stop_sequence)" (spec.md §3), keeping the latest-parsed record for a
// colliding key and logging a warning. Input order is preserved for
// the kept records.
func Dedupe(events []model.AVLStopEvent, log *slog.Logger) []model.AVLStopEvent {
	type key struct {
		svcDate, tripID string
		seq             int
	}

	lastIdx := map[key]int{}
	for i, e := range events {
		k := key{e.SvcDate, e.TripID, e.StopSequence}
		if prev, ok := lastIdx[k]; ok && log != nil {
			log.Warn("duplicate AVL record for (svc_date, trip_id, stop_sequence), keeping latest",
				"svc_date", e.SvcDate, "trip_id", e.TripID, "stop_sequence", e.StopSequence, "dropped_row", prev)
		}
		lastIdx[k] = i
	}

	kept := make(map[int]bool, len(lastIdx))
	for _, idx := range lastIdx {
		kept[idx] = true
	}

	out := make([]model.AVLStopEvent, 0, len(kept))
	for i, e := range events {
		if kept[i] {
			out = append(out, e)
		}
	}
	return out
}
