// Package rove orchestrates GTFSLoader, PatternSynthesizer, AVLLoader,
// ShapeGenerator, MetricCalculator, and MetricAggregator into a single
// batch run over one agency-month.
package rove

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/avl"
	"github.com/camsys-rove/rove/calendar"
	"github.com/camsys-rove/rove/metrics"
	"github.com/camsys-rove/rove/model"
)

// RunParams fully describes a single pipeline run. It is a plain struct
// whose fields are checked where Run and ResolvePaths use them, not a
// flag/env-parsing framework — CLI binding lives in cmd/rove.
type RunParams struct {
	Agency      string
	Month       string
	Year        string
	DateType    calendar.DateType
	DataOptions []metrics.DataOption
	Mode        string
}

// routeTypesByMode mirrors spec.md §6's "route_type map mode -> list of
// GTFS route_type integers" configuration. Bus-like modes only, per
// spec.md §1's non-goal of arbitrary-mode support.
var routeTypesByMode = map[string][]model.RouteType{
	"bus": {model.RouteTypeBus, model.RouteTypeTrolleybus},
}

func routeTypeSet(mode string) (map[model.RouteType]bool, error) {
	types, ok := routeTypesByMode[mode]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidMode, "%q", mode)
	}
	set := make(map[model.RouteType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set, nil
}

// InputPaths locates the raw inputs a run reads.
type InputPaths struct {
	GTFSZipPath string
	AVLPath     string // "" when AVL is not in DataOptions
}

// OutputPaths locates the artifacts a run writes, per spec.md §6 Outputs.
type OutputPaths struct {
	ShapesJSON         string
	TimepointsJSON     string
	StopNameLookupJSON string
	AggregatedMetrics  string
}

var supportedAgencies = map[string]bool{
	"CTA":   true,
	"MBTA":  true,
	"WMATA": true,
}

// ResolvePaths builds the input/output path set for an agency/mode run.
// It fails ErrInvalidAgency for an agency ROVE has no Normalizer for,
// and ErrInvalidMode for a mode with no route_type mapping.
func ResolvePaths(agency, mode string, dataOptions []metrics.DataOption) (InputPaths, OutputPaths, error) {
	if !supportedAgencies[agency] {
		return InputPaths{}, OutputPaths{}, errors.Wrapf(ErrInvalidAgency, "%q", agency)
	}
	if _, err := routeTypeSet(mode); err != nil {
		return InputPaths{}, OutputPaths{}, err
	}

	in := InputPaths{
		GTFSZipPath: fmt.Sprintf("data/%s/gtfs.zip", agency),
	}
	for _, opt := range dataOptions {
		if opt == metrics.DataOptionAVL {
			in.AVLPath = fmt.Sprintf("data/%s/avl.csv", agency)
		}
	}

	out := OutputPaths{
		ShapesJSON:         fmt.Sprintf("output/%s/shapes.json", agency),
		TimepointsJSON:     fmt.Sprintf("output/%s/timepoints.json", agency),
		StopNameLookupJSON: fmt.Sprintf("output/%s/stop_name_lookup.json", agency),
		AggregatedMetrics:  fmt.Sprintf("output/%s/metrics.json", agency),
	}

	return in, out, nil
}

// normalizerFor returns the AVL Normalizer for a supported agency.
func normalizerFor(agency string) (avl.Normalizer, error) {
	switch agency {
	case "CTA":
		return avl.CTANormalizer{}, nil
	case "MBTA":
		return avl.MBTANormalizer{}, nil
	case "WMATA":
		return avl.WMATANormalizer{}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidAgency, "%q", agency)
	}
}

