package avl

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

// wmataRow is WMATA's AVL export shape: stop_time is a wall-clock
// "HH:MM:SS" string rather than seconds past midnight.
type wmataRow struct {
	SvcDate       string `csv:"svc_date"`
	TripID        string `csv:"trip_id"`
	RouteID       string `csv:"route_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	StopTime      string `csv:"stop_time"`
	DwellTime     int    `csv:"dwell_time"`
	PassengerLoad int    `csv:"passenger_load"`
	PassengerOn   int    `csv:"passenger_on"`
	PassengerOff  int    `csv:"passenger_off"`
	SeatCapacity  int    `csv:"seat_capacity"`
}

// WMATANormalizer reads WMATA's AVL export, parsing its wall-clock
// stop_time string into seconds past midnight.
type WMATANormalizer struct{}

func (WMATANormalizer) Normalize(raw []byte) ([]model.AVLStopEvent, error) {
	var rows []*wmataRow
	if err := gocsv.Unmarshal(bytes.NewReader(raw), &rows); err != nil {
		return nil, errors.Wrap(err, "avl: unmarshaling WMATA csv")
	}

	out := make([]model.AVLStopEvent, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.SvcDate) == "" || strings.TrimSpace(r.TripID) == "" ||
			strings.TrimSpace(r.StopID) == "" {
			return nil, errors.Wrap(ErrMissingKeyField, "avl: WMATA row")
		}
		secs, err := parseClockTime(r.StopTime)
		if err != nil {
			return nil, errors.Wrapf(err, "avl: WMATA row trip_id=%s stop_id=%s", r.TripID, r.StopID)
		}
		out = append(out, model.AVLStopEvent{
			SvcDate:       r.SvcDate,
			TripID:        r.TripID,
			RouteID:       r.RouteID,
			StopID:        r.StopID,
			StopSequence:  r.StopSequence,
			StopTime:      secs,
			DwellTime:     r.DwellTime,
			PassengerLoad: r.PassengerLoad,
			PassengerOn:   r.PassengerOn,
			PassengerOff:  r.PassengerOff,
			SeatCapacity:  r.SeatCapacity,
		})
	}
	return out, nil
}

// parseClockTime converts an "H:MM:SS"/"HH:MM:SS" wall-clock string,
// which may exceed 24:00:00 for trips continuing past midnight, to
// seconds past midnight.
func parseClockTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.Errorf("avl: malformed stop_time '%s'", s)
	}
	hms := [3]int{}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, errors.Errorf("avl: non-integer component in stop_time '%s'", s)
		}
		hms[i] = v
	}
	return hms[0]*3600 + hms[1]*60 + hms[2], nil
}
