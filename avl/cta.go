package avl

import (
	"bytes"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

// ctaRow is CTA's AVL export shape: a "route" column (not route_id) and
// stop_time/dwell_time already expressed in seconds past midnight.
type ctaRow struct {
	SvcDate       string `csv:"svc_date"`
	TripID        string `csv:"trip_id"`
	Route         string `csv:"route"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	StopTime      int    `csv:"stop_time"`
	DwellTime     int    `csv:"dwell_time"`
	PassengerLoad int    `csv:"passenger_load"`
	PassengerOn   int    `csv:"passenger_on"`
	PassengerOff  int    `csv:"passenger_off"`
	SeatCapacity  int    `csv:"seat_capacity"`
}

// CTANormalizer reads CTA's AVL export, renaming route -> route_id.
type CTANormalizer struct{}

func (CTANormalizer) Normalize(raw []byte) ([]model.AVLStopEvent, error) {
	var rows []*ctaRow
	if err := gocsv.Unmarshal(bytes.NewReader(raw), &rows); err != nil {
		return nil, errors.Wrap(err, "avl: unmarshaling CTA csv")
	}

	out := make([]model.AVLStopEvent, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.SvcDate) == "" || strings.TrimSpace(r.TripID) == "" ||
			strings.TrimSpace(r.StopID) == "" {
			return nil, errors.Wrap(ErrMissingKeyField, "avl: CTA row")
		}
		out = append(out, model.AVLStopEvent{
			SvcDate:       r.SvcDate,
			TripID:        r.TripID,
			RouteID:       r.Route,
			StopID:        r.StopID,
			StopSequence:  r.StopSequence,
			StopTime:      r.StopTime,
			DwellTime:     r.DwellTime,
			PassengerLoad: r.PassengerLoad,
			PassengerOn:   r.PassengerOn,
			PassengerOff:  r.PassengerOff,
			SeatCapacity:  r.SeatCapacity,
		})
	}
	return out, nil
}
