package parse

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

type TripCSV struct {
	ID          string `csv:"trip_id"`
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	DirectionID int8   `csv:"direction_id"`
	ShapeID     string `csv:"shape_id"`
}

// ParseTrips reads trips.txt, keeping only trips whose route_id survived
// ParseRoutes's route-type filter and whose service_id is in the active
// set resolved from the run's service dates.
func ParseTrips(data io.Reader, routes map[string]model.Route, activeServices map[string]bool) (map[string]model.Trip, error) {
	rows := []*TripCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling trips csv")
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrEmptyRequiredTable, "trips")
	}

	seen := map[string]bool{}
	trips := map[string]model.Trip{}
	for _, t := range rows {
		if t.ID == "" {
			return nil, errors.New("parse: empty trip_id")
		}
		if seen[t.ID] {
			return nil, errors.Errorf("parse: repeated trip_id '%s'", t.ID)
		}
		seen[t.ID] = true

		if t.RouteID == "" {
			return nil, errors.Errorf("parse: trip_id '%s' has no route_id", t.ID)
		}
		if t.DirectionID != 0 && t.DirectionID != 1 {
			return nil, errors.Errorf("parse: trip_id '%s' has invalid direction_id %d", t.ID, t.DirectionID)
		}

		if _, ok := routes[t.RouteID]; !ok {
			// route_id was filtered out by route_type, or is unknown.
			continue
		}
		if !activeServices[t.ServiceID] {
			continue
		}

		trips[t.ID] = model.Trip{
			ID:          t.ID,
			RouteID:     t.RouteID,
			ServiceID:   t.ServiceID,
			DirectionID: t.DirectionID,
			ShapeID:     t.ShapeID,
		}
	}

	return trips, nil
}
