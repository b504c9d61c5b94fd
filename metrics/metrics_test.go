package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/metrics"
	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/shape"
)

// TestTwoTripsOnePattern is end-to-end scenario 1: trips T1, T2 both
// visit [A,B,C] with arrival_times [0,300,600] and [600,900,1200].
func TestTwoTripsOnePattern(t *testing.T) {
	events := []model.GTFSStopEvent{
		{TripID: "t1", RouteID: "R1", DirectionID: 0, StopID: "A", StopSequence: 1, ArrivalTime: 0, DepartureTime: 0, TPBP: 1, Pattern: "R1-0-1"},
		{TripID: "t1", RouteID: "R1", DirectionID: 0, StopID: "B", StopSequence: 2, ArrivalTime: 300, DepartureTime: 300, Pattern: "R1-0-1"},
		{TripID: "t1", RouteID: "R1", DirectionID: 0, StopID: "C", StopSequence: 3, ArrivalTime: 600, DepartureTime: 600, TPBP: 1, Pattern: "R1-0-1"},
		{TripID: "t2", RouteID: "R1", DirectionID: 0, StopID: "A", StopSequence: 1, ArrivalTime: 600, DepartureTime: 600, TPBP: 1, Pattern: "R1-0-1"},
		{TripID: "t2", RouteID: "R1", DirectionID: 0, StopID: "B", StopSequence: 2, ArrivalTime: 900, DepartureTime: 900, Pattern: "R1-0-1"},
		{TripID: "t2", RouteID: "R1", DirectionID: 0, StopID: "C", StopSequence: 3, ArrivalTime: 1200, DepartureTime: 1200, TPBP: 1, Pattern: "R1-0-1"},
	}

	tables, err := metrics.Calculate(shape.DistanceTable{}, events, nil, metrics.CalcOptions{})
	require.NoError(t, err)

	var abT1, abT2 *metrics.StopMetric
	for i, r := range tables.StopMetrics {
		if r.StopPair == (model.StopPair{"A", "B"}) {
			if r.TripID == "t1" {
				abT1 = &tables.StopMetrics[i]
			} else {
				abT2 = &tables.StopMetrics[i]
			}
		}
	}
	require.NotNil(t, abT1)
	require.NotNil(t, abT2)

	require.NotNil(t, abT1.ScheduledRunningTime)
	assert.Equal(t, 5.0, *abT1.ScheduledRunningTime)

	// scheduled_headway has no predecessor for t1's (A,B), so it's nil;
	// t2's (A,B) follows t1's (A,B) by 600s = 10 minutes.
	assert.Nil(t, abT1.ScheduledHeadway)
	require.NotNil(t, abT2.ScheduledHeadway)
	assert.Equal(t, 10.0, *abT2.ScheduledHeadway)
}

// TestOTPBoundsRejected is end-to-end scenario 5.
func TestOTPBoundsRejected(t *testing.T) {
	events := []model.GTFSStopEvent{
		{TripID: "t1", RouteID: "R1", StopID: "A", StopSequence: 1, ArrivalTime: 0, DepartureTime: 0},
		{TripID: "t1", RouteID: "R1", StopID: "B", StopSequence: 2, ArrivalTime: 300, DepartureTime: 300},
	}
	avl := []model.AVLStopEvent{
		{SvcDate: "20260101", TripID: "t1", RouteID: "R1", StopID: "A", StopSequence: 1, StopTime: 0},
		{SvcDate: "20260101", TripID: "t1", RouteID: "R1", StopID: "B", StopSequence: 2, StopTime: 300},
	}

	_, err := metrics.Calculate(shape.DistanceTable{}, events, avl, metrics.CalcOptions{
		DataOptions:      []metrics.DataOption{metrics.DataOptionAVL},
		NoEarlierThanMin: 2,
		NoLaterThanMin:   5,
	})
	assert.ErrorIs(t, err, metrics.ErrInvalidOTPBounds)
}

func TestAVLRequiredButMissing(t *testing.T) {
	events := []model.GTFSStopEvent{
		{TripID: "t1", RouteID: "R1", StopID: "A", StopSequence: 1, ArrivalTime: 0, DepartureTime: 0},
		{TripID: "t1", RouteID: "R1", StopID: "B", StopSequence: 2, ArrivalTime: 300, DepartureTime: 300},
	}

	_, err := metrics.Calculate(shape.DistanceTable{}, events, nil, metrics.CalcOptions{
		DataOptions: []metrics.DataOption{metrics.DataOptionAVL},
	})
	assert.ErrorIs(t, err, metrics.ErrAVLRequiredButMissing)
}

func TestObservedRunningTimeClampedNonNegative(t *testing.T) {
	events := []model.GTFSStopEvent{
		{TripID: "t1", RouteID: "R1", StopID: "A", StopSequence: 1, ArrivalTime: 0, DepartureTime: 0},
		{TripID: "t1", RouteID: "R1", StopID: "B", StopSequence: 2, ArrivalTime: 300, DepartureTime: 300},
	}
	// dwell_time larger than the scheduled gap would otherwise go
	// negative; it must clamp to zero.
	avl := []model.AVLStopEvent{
		{SvcDate: "20260101", TripID: "t1", RouteID: "R1", StopID: "A", StopSequence: 1, StopTime: 0, DwellTime: 10000},
		{SvcDate: "20260101", TripID: "t1", RouteID: "R1", StopID: "B", StopSequence: 2, StopTime: 300},
	}

	tables, err := metrics.Calculate(shape.DistanceTable{}, events, avl, metrics.CalcOptions{
		DataOptions: []metrics.DataOption{metrics.DataOptionAVL},
	})
	require.NoError(t, err)
	require.Len(t, tables.StopMetrics, 1)
	require.NotNil(t, tables.StopMetrics[0].ObservedRunningTime)
	assert.GreaterOrEqual(t, *tables.StopMetrics[0].ObservedRunningTime, 0.0)
}
