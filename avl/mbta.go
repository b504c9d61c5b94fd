package avl

import (
	"bytes"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

// mbtaRow is MBTA's AVL export shape: route_id is already named
// correctly, but dwell_time is reported in minutes.
type mbtaRow struct {
	SvcDate       string  `csv:"svc_date"`
	TripID        string  `csv:"trip_id"`
	RouteID       string  `csv:"route_id"`
	StopID        string  `csv:"stop_id"`
	StopSequence  int     `csv:"stop_sequence"`
	StopTime      int     `csv:"stop_time"`
	DwellTimeMin  float64 `csv:"dwell_time"`
	PassengerLoad int     `csv:"passenger_load"`
	PassengerOn   int     `csv:"passenger_on"`
	PassengerOff  int     `csv:"passenger_off"`
	SeatCapacity  int     `csv:"seat_capacity"`
}

// MBTANormalizer reads MBTA's AVL export, converting dwell_time from
// minutes to seconds.
type MBTANormalizer struct{}

func (MBTANormalizer) Normalize(raw []byte) ([]model.AVLStopEvent, error) {
	var rows []*mbtaRow
	if err := gocsv.Unmarshal(bytes.NewReader(raw), &rows); err != nil {
		return nil, errors.Wrap(err, "avl: unmarshaling MBTA csv")
	}

	out := make([]model.AVLStopEvent, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.SvcDate) == "" || strings.TrimSpace(r.TripID) == "" ||
			strings.TrimSpace(r.StopID) == "" {
			return nil, errors.Wrap(ErrMissingKeyField, "avl: MBTA row")
		}
		out = append(out, model.AVLStopEvent{
			SvcDate:       r.SvcDate,
			TripID:        r.TripID,
			RouteID:       r.RouteID,
			StopID:        r.StopID,
			StopSequence:  r.StopSequence,
			StopTime:      r.StopTime,
			DwellTime:     int(r.DwellTimeMin * 60),
			PassengerLoad: r.PassengerLoad,
			PassengerOn:   r.PassengerOn,
			PassengerOff:  r.PassengerOff,
			SeatCapacity:  r.SeatCapacity,
		})
	}
	return out, nil
}
