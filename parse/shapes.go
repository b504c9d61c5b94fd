package parse

import (
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

type ShapeCSV struct {
	ShapeID  string  `csv:"shape_id"`
	Lat      float64 `csv:"shape_pt_lat"`
	Lon      float64 `csv:"shape_pt_lon"`
	Sequence int     `csv:"shape_pt_sequence"`
}

// ParseShapes reads shapes.txt (optional in the GTFS input schema),
// returning ordered polylines keyed by shape_id.
func ParseShapes(data io.Reader) (map[string][]model.ShapePoint, error) {
	rows := []*ShapeCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling shapes csv")
	}

	byShape := map[string][]model.ShapePoint{}
	for _, r := range rows {
		if r.ShapeID == "" {
			continue
		}
		byShape[r.ShapeID] = append(byShape[r.ShapeID], model.ShapePoint{
			ShapeID:  r.ShapeID,
			Lat:      r.Lat,
			Lon:      r.Lon,
			Sequence: r.Sequence,
		})
	}

	for id := range byShape {
		pts := byShape[id]
		sort.Slice(pts, func(i, j int) bool { return pts[i].Sequence < pts[j].Sequence })
		byShape[id] = pts
	}

	return byShape, nil
}
