package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

type StopCSV struct {
	ID           string  `csv:"stop_id"`
	Name         string  `csv:"stop_name"`
	Lat          float64 `csv:"stop_lat"`
	Lon          float64 `csv:"stop_lon"`
	Municipality string  `csv:"municipality"`
}

// ParseStops reads stops.txt into a stop_id-keyed map. stop_name,
// stop_lat and stop_lon are required; municipality is optional.
func ParseStops(data io.Reader) (map[string]model.Stop, error) {
	rows := []*StopCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling stops csv")
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrEmptyRequiredTable, "stops")
	}

	stops := map[string]model.Stop{}
	for _, r := range rows {
		if r.ID == "" {
			return nil, errors.New("parse: empty stop_id")
		}
		if _, dup := stops[r.ID]; dup {
			return nil, errors.Errorf("parse: repeated stop_id '%s'", r.ID)
		}
		if r.Name == "" {
			return nil, errors.Errorf("parse: empty stop_name for stop_id '%s'", r.ID)
		}
		if r.Lat == 0 && r.Lon == 0 {
			return nil, errors.Errorf("parse: empty stop_lat/stop_lon for stop_id '%s'", r.ID)
		}

		stops[r.ID] = model.Stop{
			ID:           r.ID,
			Name:         r.Name,
			Lat:          r.Lat,
			Lon:          r.Lon,
			Municipality: r.Municipality,
		}
	}

	return stops, nil
}
