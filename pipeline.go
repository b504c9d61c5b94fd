package rove

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/aggregate"
	"github.com/camsys-rove/rove/avl"
	"github.com/camsys-rove/rove/calendar"
	"github.com/camsys-rove/rove/metrics"
	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/parse"
	"github.com/camsys-rove/rove/pattern"
	"github.com/camsys-rove/rove/shape"
	"github.com/camsys-rove/rove/storage"
)

const resultCacheNamespace = "result"

// Pipeline runs C1-C7 in sequence against one agency-month, handing each
// stage's output read-only to the next. It holds no state between runs.
type Pipeline struct {
	Log *slog.Logger

	// ShapeClient is the Valhalla-style trace_attributes client C5 uses.
	// Nil skips shape.Generate: each segment keeps the great-circle
	// distance SynthesizeSegments computed for it.
	ShapeClient shape.TraceAttributesClient

	// Cache is a Store a caller may attach to the Pipeline. Run does not
	// read or write it: every run executes all stages.
	Cache storage.Store

	// RedValues is the per-metric direction-of-badness configuration
	// spec.md §6 lists ("redValues"). MetricAggregator preserves it on
	// the returned aggregate.Result unmodified; ROVE never interprets
	// it itself — it's consumed by the visualization front-end.
	RedValues map[string]bool
}

// NewPipeline returns a Pipeline with a default slog.Logger writing to
// stderr, matching spec.md §5's batch (not server) logging posture.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Log: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

// RunResult is everything a run produces, prior to being written to
// OutputPaths by the caller (cmd/rove).
type RunResult struct {
	Shapes            shape.DistanceTable
	Timepoints        map[string][2]string
	StopNameLookup    map[string]model.StopNameEntry
	AggregatedMetrics aggregate.Result
}

// Run executes GTFSLoader through MetricAggregator for one RunParams.
// context.Context reaches only shape.Generate's HTTP calls; the other
// stages, parse.Load included, take no context.
func (p *Pipeline) Run(ctx context.Context, params RunParams, gtfsZip []byte, avlRaw []byte) (*RunResult, error) {
	log := p.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	routeTypes, err := routeTypeSet(params.Mode)
	if err != nil {
		return nil, err
	}

	loc, err := calendar.AgencyTimezone(params.Agency)
	if err != nil {
		return nil, err
	}
	serviceDates, err := calendar.ServiceDates(params.Month, params.Year, params.DateType, loc)
	if err != nil {
		return nil, errors.Wrap(err, "rove: resolving service dates")
	}

	log.Info("loading GTFS archive", "agency", params.Agency, "service_dates", len(serviceDates))
	tables, err := parse.Load(gtfsZip, parse.LoadOptions{
		ServiceDates: serviceDates,
		RouteTypes:   routeTypes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rove: loading GTFS")
	}

	events, err := pattern.BuildStopEvents(tables)
	if err != nil {
		return nil, errors.Wrap(err, "rove: building stop events")
	}
	pattern.AssignTimepoints(events, tables.HasTimepointColumn, log)
	pattern.AssignBranchpoints(events)
	if err := pattern.HashPatterns(events); err != nil {
		return nil, errors.Wrap(err, "rove: hashing patterns")
	}

	patterns := pattern.Patterns(events)
	tripShapeID := make(map[string]string, len(tables.Trips))
	for id, trip := range tables.Trips {
		tripShapeID[id] = trip.ShapeID
	}
	patterns = pattern.SynthesizeSegments(patterns, events, tables.Stops, tripShapeID, tables.Shapes)

	timepoints := pattern.TimepointsOutput(events)
	stopNameLookup := pattern.StopNameLookupOutput(tables.Stops)

	var shapes shape.DistanceTable
	if p.ShapeClient != nil {
		log.Info("generating shape distances", "patterns", len(patterns))
		shapeCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()
		shapes, err = shape.Generate(shapeCtx, patterns, p.ShapeClient, tables.Stops, log)
		if err != nil {
			return nil, errors.Wrap(err, "rove: generating shapes")
		}
	} else {
		shapes = haversineOnlyDistances(patterns)
	}

	var avlEvents []model.AVLStopEvent
	if hasDataOption(params.DataOptions, metrics.DataOptionAVL) {
		if len(avlRaw) == 0 {
			return nil, metrics.ErrAVLRequiredButMissing
		}
		normalizer, err := normalizerFor(params.Agency)
		if err != nil {
			return nil, err
		}
		raw, err := normalizer.Normalize(avlRaw)
		if err != nil {
			return nil, errors.Wrap(err, "rove: normalizing AVL records")
		}
		avlEvents = avl.Dedupe(raw, log)
	}

	metricTables, err := metrics.Calculate(shapes, events, avlEvents, metrics.CalcOptions{
		DataOptions: params.DataOptions,
		Log:         log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rove: calculating metrics")
	}

	windows := defaultWindows()
	aggregated, err := aggregate.Aggregate(metricTables, windows, []float64{50, 90}, p.RedValues)
	if err != nil {
		return nil, errors.Wrap(err, "rove: aggregating metrics")
	}

	return &RunResult{
		Shapes:            shapes,
		Timepoints:        timepoints,
		StopNameLookup:    stopNameLookup,
		AggregatedMetrics: aggregated,
	}, nil
}

func hasDataOption(opts []metrics.DataOption, want metrics.DataOption) bool {
	for _, o := range opts {
		if o == want {
			return true
		}
	}
	return false
}

// defaultWindows is the AM peak / midday / PM peak / off-peak split
// spec.md §6's aggregation config names as the common case.
func defaultWindows() map[string]aggregate.Window {
	return map[string]aggregate.Window{
		"am_peak":  {Start: [2]int{6, 0}, End: [2]int{9, 0}},
		"midday":   {Start: [2]int{9, 0}, End: [2]int{15, 30}},
		"pm_peak":  {Start: [2]int{15, 30}, End: [2]int{18, 30}},
		"off_peak": {Start: [2]int{18, 30}, End: [2]int{24, 0}},
	}
}

func haversineOnlyDistances(patterns []model.Pattern) shape.DistanceTable {
	table := make(shape.DistanceTable, len(patterns))
	for _, p := range patterns {
		pairs := make(map[model.StopPair]float64, len(p.Segments))
		for _, seg := range p.Segments {
			pairs[seg.Pair] = seg.Distance
		}
		table[p.ID] = pairs
	}
	return table
}

// runTimeout bounds the shape-generation HTTP phase on top of any
// deadline the caller's context already carries, matching "batch, not a server" —
// this run should finish or fail, never hang indefinitely.
const runTimeout = 30 * time.Minute
