// Package calendar resolves a (month, year, date_type) run configuration
// into the explicit list of service dates PatternSynthesizer and
// MetricCalculator operate on, expanding "Workday" into every weekday
// that isn't a US federal holiday.
package calendar

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// DateType selects which days of a month are in scope for a run.
type DateType int

const (
	Workday DateType = iota
	Saturday
	Sunday
)

func (dt DateType) String() string {
	switch dt {
	case Workday:
		return "Workday"
	case Saturday:
		return "Saturday"
	case Sunday:
		return "Sunday"
	default:
		return "unknown"
	}
}

var ErrInvalidDateType = errors.New("calendar: invalid date_type")

// ServiceDates expands (month, year, date_type) into the explicit list
// of YYYYMMDD dates for that month. Workday excludes federal holidays
// that fall on a weekday, matching how a real agency builds its
// representative-day schedule instead of averaging across a holiday.
func ServiceDates(month, year string, dt DateType, loc *time.Location) ([]string, error) {
	monthNum, err := strconv.Atoi(month)
	if err != nil || monthNum < 1 || monthNum > 12 {
		return nil, errors.Errorf("calendar: invalid month '%s'", month)
	}
	yearNum, err := strconv.Atoi(year)
	if err != nil || yearNum < 1970 {
		return nil, errors.Errorf("calendar: invalid year '%s'", year)
	}
	if loc == nil {
		loc = time.UTC
	}

	businessCal := cal.NewBusinessCalendar()
	businessCal.AddHoliday(us.Holidays...)

	first := time.Date(yearNum, time.Month(monthNum), 1, 0, 0, 0, 0, loc)
	var dates []string
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		switch dt {
		case Workday:
			if businessCal.IsWorkday(d) {
				dates = append(dates, d.Format("20060102"))
			}
		case Saturday:
			if d.Weekday() == time.Saturday {
				dates = append(dates, d.Format("20060102"))
			}
		case Sunday:
			if d.Weekday() == time.Sunday {
				dates = append(dates, d.Format("20060102"))
			}
		default:
			return nil, ErrInvalidDateType
		}
	}

	return dates, nil
}

// AgencyTimezone returns the default IANA timezone for the agencies ROVE
// supports, used when a GTFS feed's agency.txt is absent or silent.
func AgencyTimezone(agency string) (*time.Location, error) {
	zones := map[string]string{
		"CTA":   "America/Chicago",
		"MBTA":  "America/New_York",
		"WMATA": "America/New_York",
	}
	name, ok := zones[agency]
	if !ok {
		return nil, errors.Errorf("calendar: no default timezone for agency '%s'", agency)
	}
	return time.LoadLocation(name)
}
