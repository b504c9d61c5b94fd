package parse

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

type RouteCSV struct {
	ID   string `csv:"route_id"`
	Type string `csv:"route_type"`
}

func legalRouteType(t model.RouteType) bool {
	if t >= 0 && t <= 7 {
		return true
	}
	if t == 11 || t == 12 {
		return true
	}
	return false
}

// ParseRoutes reads routes.txt, keeping only rows whose route_type is in
// allowedTypes (the configured mode's route-type list). Pass a nil map
// to keep every legal route_type.
func ParseRoutes(data io.Reader, allowedTypes map[model.RouteType]bool) (map[string]model.Route, error) {
	rows := []*RouteCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling routes csv")
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrEmptyRequiredTable, "routes")
	}

	seen := map[string]bool{}
	routes := map[string]model.Route{}
	for _, r := range rows {
		if r.ID == "" {
			return nil, errors.New("parse: empty route_id")
		}
		if seen[r.ID] {
			return nil, errors.Errorf("parse: repeated route_id '%s'", r.ID)
		}
		seen[r.ID] = true

		if r.Type == "" {
			return nil, errors.Errorf("parse: route_id '%s' has no route_type", r.ID)
		}
		routeTypeInt, err := strconv.Atoi(r.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parse: route_id '%s' has invalid route_type", r.ID)
		}
		routeType := model.RouteType(routeTypeInt)
		if !legalRouteType(routeType) {
			return nil, errors.Errorf("parse: route_id '%s' has invalid route_type %d", r.ID, routeTypeInt)
		}

		if allowedTypes != nil && !allowedTypes[routeType] {
			continue
		}

		routes[r.ID] = model.Route{
			ID:   r.ID,
			Type: routeType,
		}
	}

	return routes, nil
}
