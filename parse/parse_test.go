package parse_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/parse"
)

func buildZip(t *testing.T, files map[string][]string) []byte {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func fixtureSimple() map[string][]string {
	return map[string][]string{
		"agency.txt": {
			"agency_id,agency_timezone",
			"1,America/Los_Angeles",
		},
		"routes.txt": {
			"route_id,route_type",
			"r,3",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"mondays,1,0,0,0,0,0,0,20190101,20190301",
		},
		"trips.txt": {
			"trip_id,route_id,service_id,direction_id",
			"t,r,mondays,0",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"s,S,12,34",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t,s,1,12:00:00,12:00:00",
		},
	}
}

// 2019-01-07 is the first Monday in the calendar's active window.
var serviceDates = []string{"20190107"}

func TestLoadValidFeed(t *testing.T) {
	tables, err := parse.Load(buildZip(t, fixtureSimple()), parse.LoadOptions{ServiceDates: serviceDates})
	require.NoError(t, err)

	assert.Equal(t, "America/Los_Angeles", tables.Timezone)
	assert.Contains(t, tables.Routes, "r")
	assert.Contains(t, tables.Trips, "t")
	assert.Contains(t, tables.Stops, "s")
	require.Len(t, tables.StopTimes, 1)
	assert.Equal(t, 12*3600, tables.StopTimes[0].ArrivalTime)
	assert.False(t, tables.HasTimepointColumn)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	for _, file := range []string{"routes.txt", "trips.txt", "stops.txt", "stop_times.txt"} {
		files := fixtureSimple()
		delete(files, file)
		_, err := parse.Load(buildZip(t, files), parse.LoadOptions{ServiceDates: serviceDates})
		assert.ErrorIs(t, err, parse.ErrMissingRequiredTable, "missing "+file)
	}
}

func TestLoadMissingBothCalendarsFails(t *testing.T) {
	files := fixtureSimple()
	delete(files, "calendar.txt")
	_, err := parse.Load(buildZip(t, files), parse.LoadOptions{ServiceDates: serviceDates})
	assert.ErrorIs(t, err, parse.ErrMissingRequiredTable)
}

func TestLoadCalendarDatesAloneIsSufficient(t *testing.T) {
	files := fixtureSimple()
	delete(files, "calendar.txt")
	files["calendar_dates.txt"] = []string{
		"service_id,date,exception_type",
		"mondays,20190107,1",
	}
	tables, err := parse.Load(buildZip(t, files), parse.LoadOptions{ServiceDates: serviceDates})
	require.NoError(t, err)
	assert.True(t, tables.ActiveServiceIDs["mondays"])
}

func TestLoadEmptyServiceIntersectionFails(t *testing.T) {
	_, err := parse.Load(buildZip(t, fixtureSimple()), parse.LoadOptions{ServiceDates: []string{"20190108"}})
	assert.ErrorIs(t, err, parse.ErrMissingServiceDates)
}

func TestLoadFiltersByRouteType(t *testing.T) {
	tables, err := parse.Load(buildZip(t, fixtureSimple()), parse.LoadOptions{
		ServiceDates: serviceDates,
		RouteTypes:   map[model.RouteType]bool{model.RouteTypeSubway: true},
	})
	// Route r (type 3) is filtered out, and with it its only trip.
	// Calendar resolution does not depend on route filtering, so the
	// load still succeeds with empty Routes and Trips.
	require.NoError(t, err)
	assert.Empty(t, tables.Routes)
	assert.Empty(t, tables.Trips)
}

func TestLoadUnorthodoxArchiveStructure(t *testing.T) {
	goodFiles := fixtureSimple()
	badFiles := map[string][]string{}
	for name, contents := range goodFiles {
		badFiles["bad/agency/"+name] = contents
	}

	tables, err := parse.Load(buildZip(t, badFiles), parse.LoadOptions{ServiceDates: serviceDates})
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", tables.Timezone)
}

func TestLoadBrokenZip(t *testing.T) {
	_, err := parse.Load([]byte("not a zip"), parse.LoadOptions{ServiceDates: serviceDates})
	assert.Error(t, err)
}
