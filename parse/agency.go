package parse

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type AgencyCSV struct {
	ID       string `csv:"agency_id"`
	Timezone string `csv:"agency_timezone"`
}

// ParseAgencyTimezone reads agency.txt, which is not part of ROVE's
// required GTFS schema but, when present, confirms the IANA timezone
// ParamsResolver otherwise falls back to a per-agency default for. "If
// multiple agencies are specified, each must have the same
// agency_timezone" per the GTFS spec.
func ParseAgencyTimezone(data io.Reader) (string, error) {
	rows := []*AgencyCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return "", errors.Wrap(err, "unmarshaling agency csv")
	}
	if len(rows) == 0 {
		return "", errors.New("parse: no agency record found")
	}

	seen := map[string]bool{}
	for _, a := range rows {
		seen[a.Timezone] = true
	}
	if len(seen) != 1 {
		return "", errors.New("parse: multiple distinct agency_timezone values")
	}

	tz := rows[0].Timezone
	if tz == "" {
		return "", errors.New("parse: missing agency_timezone")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", errors.Wrapf(err, "parse: invalid agency_timezone '%s'", tz)
	}

	return tz, nil
}
