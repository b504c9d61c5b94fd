package parse

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// StopTimeRow is one row of stop_times.txt, prior to the join against
// trips that PatternSynthesizer performs. Timepoint is -1 when the
// source table carries none of {timepoint, timepoints, checkpoint}.
type StopTimeRow struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   int
	DepartureTime int
	Timepoint     int
}

type stopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	Timepoint     string `csv:"timepoint"`
	Timepoints    string `csv:"timepoints"`
	Checkpoint    string `csv:"checkpoint"`
}

// parseGTFSTime converts a GTFS "H:MM:SS" (or "HH:MM:SS") timestamp,
// which may exceed 24:00:00 for service continuing past midnight, into
// seconds past service-day midnight.
func parseGTFSTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.Errorf("parse: malformed time '%s'", s)
	}

	hms := [3]int{}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, errors.Errorf("parse: non-integer component in time '%s'", s)
		}
		hms[i] = v
	}

	if hms[0] < 0 {
		return 0, errors.Errorf("parse: invalid hour in time '%s'", s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return 0, errors.Errorf("parse: invalid minute in time '%s'", s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return 0, errors.Errorf("parse: invalid second in time '%s'", s)
	}

	return hms[0]*3600 + hms[1]*60 + hms[2], nil
}

// ParseStopTimes reads stop_times.txt, restricted to the trips that
// survived trip-level filtering. Rows for trips outside the active set
// are dropped (referential narrowing). hasTimepointColumn reports
// whether any of {timepoint, timepoints, checkpoint} was present, for
// PatternSynthesizer's timepoint-assignment fallback.
func ParseStopTimes(data io.Reader, trips map[string]bool, stops map[string]bool) ([]StopTimeRow, bool, error) {
	rawRows := []*stopTimeCSV{}
	if err := gocsv.Unmarshal(data, &rawRows); err != nil {
		return nil, false, errors.Wrap(err, "unmarshaling stop_times csv")
	}
	if len(rawRows) == 0 {
		return nil, false, errors.Wrap(ErrEmptyRequiredTable, "stop_times")
	}

	hasTimepointColumn := false
	for _, r := range rawRows {
		if r.Timepoint != "" || r.Timepoints != "" || r.Checkpoint != "" {
			hasTimepointColumn = true
			break
		}
	}

	seqSeen := map[string]map[int]bool{}
	rows := make([]StopTimeRow, 0, len(rawRows))

	for i, r := range rawRows {
		if !trips[r.TripID] {
			continue
		}
		if r.StopID == "" {
			return nil, false, errors.Errorf("parse: empty stop_id (row %d)", i+1)
		}
		if !stops[r.StopID] {
			return nil, false, errors.Errorf("parse: unknown stop_id '%s' (row %d)", r.StopID, i+1)
		}

		arrival, err := parseGTFSTime(r.ArrivalTime)
		if err != nil {
			return nil, false, errors.Wrapf(err, "row %d", i+1)
		}
		departure, err := parseGTFSTime(r.DepartureTime)
		if err != nil {
			return nil, false, errors.Wrapf(err, "row %d", i+1)
		}

		if seqSeen[r.TripID] == nil {
			seqSeen[r.TripID] = map[int]bool{}
		}
		if seqSeen[r.TripID][r.StopSequence] {
			// Keep-first dedupe on (trip_id, stop_sequence), matching
			// §4.2's "deduplicate ... keeping the first" rule (trip_id
			// already implies route_id/direction_id, so this and
			// BuildStopEvents's (route_id, trip_id, direction_id,
			// stop_sequence) dedupe agree on which row survives).
			continue
		}
		seqSeen[r.TripID][r.StopSequence] = true

		timepoint := -1
		if hasTimepointColumn {
			raw := r.Timepoint
			if raw == "" {
				raw = r.Timepoints
			}
			if raw == "" {
				raw = r.Checkpoint
			}
			v, err := strconv.Atoi(raw)
			if err != nil || (v != 0 && v != 1) {
				return nil, false, errors.Errorf("parse: invalid timepoint value '%s' (row %d)", raw, i+1)
			}
			timepoint = v
		}

		rows = append(rows, StopTimeRow{
			TripID:        r.TripID,
			StopID:        r.StopID,
			StopSequence:  r.StopSequence,
			ArrivalTime:   arrival,
			DepartureTime: departure,
			Timepoint:     timepoint,
		})
	}

	return rows, hasTimepointColumn, nil
}
