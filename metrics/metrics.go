// Package metrics is MetricCalculator (C6): given pattern-enriched GTFS
// stop events, AVL stop events, and a shape distance table, it
// produces the stop/tpbp/route metric tables spec.md §4.5 defines.
//
// Every groupby/shift/cumsum idiom in the source (a dataframe library)
// is modeled here as an explicit two-pass partition-then-reduce: sort
// a key-sorted view, then window over each partition. See prepare.go
// for the shared shift(-1) helper and tpbp.go for the cumsum-group
// helper.
package metrics

import (
	"log/slog"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/shape"
)

const (
	FeetPerMinToMPH = 0.0113636
	KmToFt          = 3280.84
	FtToMi          = 0.000189394
	MaxSpeedMPH     = 65.0
	MeanSpeedMPH    = 30.0
)

// DataOption names a metric source spec.md §6's configuration accepts.
type DataOption string

const (
	DataOptionGTFS DataOption = "GTFS"
	DataOptionAVL  DataOption = "AVL"
	DataOptionODX  DataOption = "ODX"
)

// CalcOptions configures Calculate. NoEarlierThanMin/NoLaterThanMin
// default to -1/5 (minutes) when left zero-valued; callers wanting the
// literal zero must pass a non-zero sentinel some other way, matching
// the source's keyword-argument defaults.
type CalcOptions struct {
	DataOptions      []DataOption
	NoEarlierThanMin int
	NoLaterThanMin   int
	Log              *slog.Logger
}

func (o CalcOptions) hasOption(d DataOption) bool {
	for _, opt := range o.DataOptions {
		if opt == d {
			return true
		}
	}
	return false
}

func (o CalcOptions) otpBounds() (int, int) {
	early, late := o.NoEarlierThanMin, o.NoLaterThanMin
	if early == 0 {
		early = -1
	}
	if late == 0 {
		late = 5
	}
	return early, late
}

// StopMetric is one (route, pattern, trip, stop_pair) stop-grain
// record. Pointer fields are nil when the underlying metric was never
// computed (no AVL supplied, or a dependency was itself nil) —
// spec.md's "the column is entirely unset" contract.
type StopMetric struct {
	RouteID       string
	DirectionID   int8
	Pattern       string
	TripID        string
	ServiceID     string
	StopPair      model.StopPair
	TPBP          int
	ArrivalTime   int
	DepartureTime int
	TripStartTime int

	StopSpacing                  *float64
	ScheduledHeadway             *float64
	ScheduledRunningTime         *float64
	ScheduledSpeed               *float64
	ObservedHeadway              *float64
	ObservedRunningTime          *float64
	ObservedSpeedWithoutDwell    *float64
	ObservedRunningTimeWithDwell *float64
	ObservedSpeedWithDwell       *float64
	Boardings                    *float64
	OnTimePerformance            *float64
	PassengerLoad                *float64
	Crowding                     *float64
	VehicleCongestionDelay       *float64
	PassengerCongestionDelay     *float64
}

// TpbpMetric is a stop-grain record restricted to stops where TPBP==1,
// with running-time-like metrics re-summed over the window from this
// timepoint/branchpoint up to (excluding) the next one.
type TpbpMetric struct {
	RouteID     string
	DirectionID int8
	Pattern     string
	TripID      string
	StopPair    model.StopPair
	TripStartTime int

	StopSpacing                  *float64
	ScheduledRunningTime         *float64
	ScheduledSpeed               *float64
	ObservedRunningTime          *float64
	ObservedSpeedWithoutDwell    *float64
	ObservedRunningTimeWithDwell *float64
	ObservedSpeedWithDwell       *float64
	Boardings                    *float64
}

// RouteMetric is one (route, direction, pattern, trip) record, summed
// or otherwise reduced over all of a trip's stops.
type RouteMetric struct {
	RouteID     string
	DirectionID int8
	Pattern     string
	TripID      string
	ServiceID   string
	TripStartTime int

	StopSpacing                  *float64
	ScheduledRunningTime         *float64
	ScheduledSpeed               *float64
	ObservedRunningTime          *float64
	ObservedSpeedWithoutDwell    *float64
	ObservedRunningTimeWithDwell *float64
	ObservedSpeedWithDwell       *float64
	Boardings                    *float64
	OnTimePerformance            *float64
	PassengerLoad                *float64
	Crowding                     *float64
}

// Tables is MetricCalculator's full output.
type Tables struct {
	StopMetrics  []StopMetric
	TpbpMetrics  []TpbpMetric
	RouteMetrics []RouteMetric
}

// Calculate runs every GTFS-grounded metric unconditionally, then every
// AVL-grounded metric only when opts requests AVL and avlEvents is
// non-empty (ErrAVLRequiredButMissing otherwise) — the Go equivalent
// of the source's `if 'AVL' in data_option` gate.
func Calculate(shapes shape.DistanceTable, gtfsEvents []model.GTFSStopEvent, avlEvents []model.AVLStopEvent, opts CalcOptions) (*Tables, error) {
	stopRows, routeRows := buildScheduledMetrics(gtfsEvents, shapes)

	if opts.hasOption(DataOptionAVL) {
		if len(avlEvents) == 0 {
			return nil, ErrAVLRequiredButMissing
		}

		early, late := opts.otpBounds()
		if early > 0 || late < 0 {
			return nil, ErrInvalidOTPBounds
		}

		applyObservedMetrics(stopRows, routeRows, avlEvents, early, late, opts.Log)
	}

	tpbpRows := buildTpbpMetrics(stopRows)

	return &Tables{StopMetrics: stopRows, TpbpMetrics: tpbpRows, RouteMetrics: routeRows}, nil
}

func floatPtr(f float64) *float64 { return &f }

func round2(f float64) float64 {
	return float64(int(f*100+sign(f)*0.5)) / 100
}

func round0(f float64) float64 {
	return float64(int(f + sign(f)*0.5))
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
