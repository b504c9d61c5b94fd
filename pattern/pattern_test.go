package pattern_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/parse"
	"github.com/camsys-rove/rove/pattern"
	"github.com/camsys-rove/rove/testutil"
)

var serviceDates = []string{"20190107"}

// Two trips sharing the stop sequence [A,B,C] collapse to one pattern
// "r-0-1" whose StopIDs are [A,B,C].
func TestBuildAndHashOnePattern(t *testing.T) {
	files := map[string][]string{
		"routes.txt": {"route_id,route_type", "r,3"},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt": {
			"trip_id,route_id,service_id,direction_id",
			"t1,r,svc,0",
			"t2,r,svc,0",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,Stop A,1,1",
			"B,Stop B,1,2",
			"C,Stop C,1,3",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t1,A,1,00:00:00,00:00:00",
			"t1,B,2,00:05:00,00:05:00",
			"t1,C,3,00:10:00,00:10:00",
			"t2,A,1,00:10:00,00:10:00",
			"t2,B,2,00:15:00,00:15:00",
			"t2,C,3,00:20:00,00:20:00",
		},
	}

	tables := testutil.LoadTables(t, files, parse.LoadOptions{ServiceDates: serviceDates})

	events, err := pattern.BuildStopEvents(tables)
	require.NoError(t, err)

	pattern.AssignTimepoints(events, tables.HasTimepointColumn, nil)
	pattern.AssignBranchpoints(events)
	require.NoError(t, pattern.HashPatterns(events))

	for _, e := range events {
		assert.Equal(t, "r-0-1", e.Pattern)
	}

	patterns := pattern.Patterns(events)
	require.Len(t, patterns, 1)
	assert.Equal(t, []string{"A", "B", "C"}, patterns[0].StopIDs)
}

// R1 visits [A,B,C,D], R2 visits [A,B,E,D]: R(A)=R(B)=R(D)={R1,R2},
// R(C)={R1}. B is where the routes diverge (Δnext(B) = R(B)\R(C) =
// {R2} ≠ ∅) and D is where they reconverge (Δprev(D) = R(D)\R(C) =
// {R2} ≠ ∅); A and C are both pass-through, per spec.md scenario 2.
func TestBranchpointDetection(t *testing.T) {
	files := map[string][]string{
		"routes.txt": {
			"route_id,route_type",
			"R1,3",
			"R2,3",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt": {
			"trip_id,route_id,service_id,direction_id",
			"t1,R1,svc,0",
			"t2,R2,svc,0",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,A,1,1",
			"B,B,1,2",
			"C,C,1,3",
			"D,D,1,4",
			"E,E,1,5",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t1,A,1,00:00:00,00:00:00",
			"t1,B,2,00:05:00,00:05:00",
			"t1,C,3,00:10:00,00:10:00",
			"t1,D,4,00:15:00,00:15:00",
			"t2,A,1,00:00:00,00:00:00",
			"t2,B,2,00:05:00,00:05:00",
			"t2,E,3,00:10:00,00:10:00",
			"t2,D,4,00:15:00,00:15:00",
		},
	}

	tables := testutil.LoadTables(t, files, parse.LoadOptions{ServiceDates: serviceDates})

	events, err := pattern.BuildStopEvents(tables)
	require.NoError(t, err)
	pattern.AssignTimepoints(events, tables.HasTimepointColumn, nil)
	pattern.AssignBranchpoints(events)

	byTripStop := map[[2]string]int{}
	for _, e := range events {
		byTripStop[[2]string{e.TripID, e.StopID}] = e.Branchpoint
	}

	assert.Equal(t, 0, byTripStop[[2]string{"t1", "A"}])
	assert.Equal(t, 1, byTripStop[[2]string{"t1", "B"}])
	assert.Equal(t, 0, byTripStop[[2]string{"t1", "C"}])
	assert.Equal(t, 1, byTripStop[[2]string{"t1", "D"}])
}

// stop_times lacking any timepoint-like column forces every record's
// Timepoint to 1, per spec.md scenario 3.
func TestTimepointFallback(t *testing.T) {
	tables := testutil.LoadTables(t, map[string][]string{
		"routes.txt": {"route_id,route_type", "r,3"},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt":  {"trip_id,route_id,service_id,direction_id", "t,r,svc,0"},
		"stops.txt":  {"stop_id,stop_name,stop_lat,stop_lon", "A,A,1,1", "B,B,1,2"},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t,A,1,00:00:00,00:00:00",
			"t,B,2,00:05:00,00:05:00",
		},
	}, parse.LoadOptions{ServiceDates: serviceDates})

	require.False(t, tables.HasTimepointColumn)

	events, err := pattern.BuildStopEvents(tables)
	require.NoError(t, err)
	pattern.AssignTimepoints(events, tables.HasTimepointColumn, nil)

	for _, e := range events {
		assert.Equal(t, 1, e.Timepoint)
	}
}

// Every trip's first and last stop event has TPBP==1, regardless of
// timepoint/branchpoint classification.
func TestFirstLastAlwaysTPBP(t *testing.T) {
	tables := testutil.LoadTables(t, map[string][]string{
		"routes.txt": {"route_id,route_type", "r,3"},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt": {"trip_id,route_id,service_id,direction_id", "t,r,svc,0"},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,A,1,1", "B,B,1,2", "C,C,1,3",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time,timepoint",
			"t,A,1,00:00:00,00:00:00,0",
			"t,B,2,00:05:00,00:05:00,0",
			"t,C,3,00:10:00,00:10:00,0",
		},
	}, parse.LoadOptions{ServiceDates: serviceDates})

	events, err := pattern.BuildStopEvents(tables)
	require.NoError(t, err)
	pattern.AssignTimepoints(events, tables.HasTimepointColumn, nil)
	pattern.AssignBranchpoints(events)

	require.Len(t, events, 3)
	assert.Equal(t, 1, events[0].TPBP)
	assert.Equal(t, 1, events[2].TPBP)
}

func TestTimepointsOutputKeysBySegment(t *testing.T) {
	tables := testutil.LoadTables(t, map[string][]string{
		"routes.txt": {"route_id,route_type", "r,3"},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt": {"trip_id,route_id,service_id,direction_id", "t,r,svc,0"},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,A,1,1", "B,B,1,2", "C,C,1,3",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time,timepoint",
			"t,A,1,00:00:00,00:00:00,1",
			"t,B,2,00:05:00,00:05:00,0",
			"t,C,3,00:10:00,00:10:00,1",
		},
	}, parse.LoadOptions{ServiceDates: serviceDates})

	events, err := pattern.BuildStopEvents(tables)
	require.NoError(t, err)
	pattern.AssignTimepoints(events, tables.HasTimepointColumn, nil)
	pattern.AssignBranchpoints(events)

	out := pattern.TimepointsOutput(events)
	assert.Equal(t, [2]string{"A", "C"}, out["r-A-B"])
	assert.Equal(t, [2]string{"A", "C"}, out["r-B-C"])
}

func TestStopNameLookupOutput(t *testing.T) {
	tables := testutil.LoadTables(t, map[string][]string{
		"routes.txt": {"route_id,route_type", "r,3"},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt": {"trip_id,route_id,service_id,direction_id", "t,r,svc,0"},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon,municipality",
			"A,Stop A,1,1,Town",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t,A,1,00:00:00,00:00:00",
		},
	}, parse.LoadOptions{ServiceDates: serviceDates})

	out := pattern.StopNameLookupOutput(tables.Stops)
	assert.Equal(t, "Stop A", out["A"].StopName)
	assert.Equal(t, "Town", out["A"].Municipality)
}

// A 101-point shape spanning A->B->C enriches segment (A,B) with the
// shape prefix up to B's nearest index, and segment (B,C) resumes from
// that index without back-tracking, per spec.md scenario 4.
func TestSynthesizeSegmentsShapeEnrichment(t *testing.T) {
	tables := testutil.LoadTables(t, map[string][]string{
		"routes.txt": {"route_id,route_type", "r,3"},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt": {"trip_id,route_id,service_id,direction_id,shape_id", "t,r,svc,0,shp"},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"A,A,1,0",
			"B,B,1,5",
			"C,C,1,10",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t,A,1,00:00:00,00:00:00",
			"t,B,2,00:05:00,00:05:00",
			"t,C,3,00:10:00,00:10:00",
		},
		"shapes.txt": shapeRows(),
	}, parse.LoadOptions{ServiceDates: serviceDates})

	events, err := pattern.BuildStopEvents(tables)
	require.NoError(t, err)
	pattern.AssignTimepoints(events, tables.HasTimepointColumn, nil)
	pattern.AssignBranchpoints(events)
	require.NoError(t, pattern.HashPatterns(events))

	patterns := pattern.Patterns(events)
	require.Len(t, patterns, 1)

	tripShapeID := map[string]string{"t": "shp"}
	enriched := pattern.SynthesizeSegments(patterns, events, tables.Stops, tripShapeID, tables.Shapes)

	require.Len(t, enriched[0].Segments, 2)
	ab := enriched[0].Segments[0]
	bc := enriched[0].Segments[1]

	assert.InDelta(t, 0, ab.Coords[0][1], 1e-6)
	assert.InDelta(t, 5, ab.Coords[len(ab.Coords)-1][1], 1e-6)
	assert.InDelta(t, 5, bc.Coords[0][1], 1e-6)
	assert.InDelta(t, 10, bc.Coords[len(bc.Coords)-1][1], 1e-6)

	// no back-tracking: bc never revisits a shape point behind ab's end
	assert.GreaterOrEqual(t, bc.Coords[0][1], ab.Coords[len(ab.Coords)-1][1]-1e-6)
}

// shapeRows builds a 101-point shape (shape_id "shp") running along
// longitude 0.0 -> 10.0 at fixed latitude 1, so that stops A(1,0),
// B(1,5), C(1,10) each land exactly on a shape point.
func shapeRows() []string {
	rows := []string{"shape_id,shape_pt_lat,shape_pt_sequence,shape_pt_lon"}
	for i := 0; i <= 100; i++ {
		lon := float64(i) / 10.0
		rows = append(rows, fmt.Sprintf("shp,1,%d,%g", i, lon))
	}
	return rows
}
