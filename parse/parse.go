package parse

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"github.com/camsys-rove/rove/model"
)

// Tables is the validated, filtered output of Load: every GTFS table
// ROVE needs, narrowed to the active service dates and configured route
// types, ready for PatternSynthesizer to join.
type Tables struct {
	Routes             map[string]model.Route
	Stops              map[string]model.Stop
	Trips              map[string]model.Trip
	Calendars          map[string]model.Calendar
	CalendarDates      []model.CalendarDate
	ActiveServiceIDs   map[string]bool
	StopTimes          []StopTimeRow
	HasTimepointColumn bool
	Shapes             map[string][]model.ShapePoint // nil if shapes.txt absent
	Timezone           string                        // "" if agency.txt absent
}

// LoadOptions configures a single GTFSLoader run.
type LoadOptions struct {
	// ServiceDates is the explicit list of YYYYMMDD dates this run
	// covers, as resolved by calendar.ServiceDates.
	ServiceDates []string

	// RouteTypes restricts routes.txt to the configured mode. Nil means
	// keep every legal route_type.
	RouteTypes map[model.RouteType]bool
}

var requiredFiles = []string{"routes.txt", "stops.txt", "trips.txt", "stop_times.txt"}

// Load unzips a GTFS archive and assembles Tables, applying the service-
// date and route-type filters described in spec.md §4.1. agency.txt and
// shapes.txt are optional; their absence is not an error.
func Load(zipBytes []byte, opts LoadOptions) (*Tables, error) {
	files := map[string]io.ReadCloser{
		"agency.txt":         nil,
		"routes.txt":         nil,
		"stops.txt":          nil,
		"trips.txt":          nil,
		"stop_times.txt":     nil,
		"calendar.txt":       nil,
		"calendar_dates.txt": nil,
		"shapes.txt":         nil,
	}
	defer func() {
		for _, rc := range files {
			if rc != nil {
				rc.Close()
			}
		}
	}()

	r, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, errors.Wrap(err, "parse: unzipping archive")
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		parts := strings.Split(f.Name, "/")
		name := parts[len(parts)-1]
		if _, tracked := files[name]; !tracked {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "parse: opening %s", f.Name)
		}
		files[name] = rc
	}

	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		return nil, errors.Wrap(ErrMissingRequiredTable, "calendar.txt and calendar_dates.txt")
	}
	for _, required := range requiredFiles {
		if files[required] == nil {
			return nil, errors.Wrapf(ErrMissingRequiredTable, "%s", required)
		}
	}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	tables := &Tables{}

	if files["agency.txt"] != nil {
		tz, err := ParseAgencyTimezone(files["agency.txt"])
		if err != nil {
			return nil, errors.Wrap(err, "parse: agency.txt")
		}
		tables.Timezone = tz
	}

	tables.Routes, err = ParseRoutes(files["routes.txt"], opts.RouteTypes)
	if err != nil {
		return nil, errors.Wrap(err, "parse: routes.txt")
	}

	if files["calendar.txt"] != nil {
		tables.Calendars, err = ParseCalendar(files["calendar.txt"])
		if err != nil {
			return nil, errors.Wrap(err, "parse: calendar.txt")
		}
	}
	if files["calendar_dates.txt"] != nil {
		tables.CalendarDates, err = ParseCalendarDates(files["calendar_dates.txt"])
		if err != nil {
			return nil, errors.Wrap(err, "parse: calendar_dates.txt")
		}
	}

	tables.ActiveServiceIDs, err = ActiveServiceIDs(tables.Calendars, tables.CalendarDates, opts.ServiceDates)
	if err != nil {
		return nil, err
	}

	tables.Trips, err = ParseTrips(files["trips.txt"], tables.Routes, tables.ActiveServiceIDs)
	if err != nil {
		return nil, errors.Wrap(err, "parse: trips.txt")
	}

	tables.Stops, err = ParseStops(files["stops.txt"])
	if err != nil {
		return nil, errors.Wrap(err, "parse: stops.txt")
	}

	activeTrips := make(map[string]bool, len(tables.Trips))
	for id := range tables.Trips {
		activeTrips[id] = true
	}
	activeStops := make(map[string]bool, len(tables.Stops))
	for id := range tables.Stops {
		activeStops[id] = true
	}

	tables.StopTimes, tables.HasTimepointColumn, err = ParseStopTimes(files["stop_times.txt"], activeTrips, activeStops)
	if err != nil {
		return nil, errors.Wrap(err, "parse: stop_times.txt")
	}

	if files["shapes.txt"] != nil {
		tables.Shapes, err = ParseShapes(files["shapes.txt"])
		if err != nil {
			return nil, errors.Wrap(err, "parse: shapes.txt")
		}
	}

	return tables, nil
}
