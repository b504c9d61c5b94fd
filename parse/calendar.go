package parse

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

type CalendarCSV struct {
	ServiceID string `csv:"service_id"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
	Monday    int8   `csv:"monday"`
	Tuesday   int8   `csv:"tuesday"`
	Wednesday int8   `csv:"wednesday"`
	Thursday  int8   `csv:"thursday"`
	Friday    int8   `csv:"friday"`
	Saturday  int8   `csv:"saturday"`
	Sunday    int8   `csv:"sunday"`
}

func weekdayBit(name string, v int8, day time.Weekday) (int8, error) {
	switch v {
	case 0:
		return 0, nil
	case 1:
		return 1 << day, nil
	default:
		return 0, errors.Errorf("parse: invalid %s value '%d'", name, v)
	}
}

// ParseCalendar reads calendar.txt, returning the weekly service
// patterns keyed by service_id.
func ParseCalendar(data io.Reader) (map[string]model.Calendar, error) {
	rows := []*CalendarCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling calendar csv")
	}

	calendars := map[string]model.Calendar{}
	for _, c := range rows {
		if c.ServiceID == "" {
			return nil, errors.New("parse: empty service_id")
		}
		if _, dup := calendars[c.ServiceID]; dup {
			return nil, errors.Errorf("parse: repeated service_id '%s'", c.ServiceID)
		}

		var weekday int8
		for _, bit := range []struct {
			name string
			v    int8
			day  time.Weekday
		}{
			{"monday", c.Monday, time.Monday},
			{"tuesday", c.Tuesday, time.Tuesday},
			{"wednesday", c.Wednesday, time.Wednesday},
			{"thursday", c.Thursday, time.Thursday},
			{"friday", c.Friday, time.Friday},
			{"saturday", c.Saturday, time.Saturday},
			{"sunday", c.Sunday, time.Sunday},
		} {
			b, err := weekdayBit(bit.name, bit.v, bit.day)
			if err != nil {
				return nil, err
			}
			weekday |= b
		}

		if _, err := time.ParseInLocation("20060102", c.StartDate, time.UTC); err != nil {
			return nil, errors.Wrap(err, "parse: invalid start_date")
		}
		if _, err := time.ParseInLocation("20060102", c.EndDate, time.UTC); err != nil {
			return nil, errors.Wrap(err, "parse: invalid end_date")
		}

		calendars[c.ServiceID] = model.Calendar{
			ServiceID: c.ServiceID,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
			Weekday:   weekday,
		}
	}

	return calendars, nil
}

// ActiveServiceIDs returns the set of service_ids active on any of
// serviceDates (YYYYMMDD), combining calendar.txt's weekly pattern with
// calendar_dates.txt's per-date add/remove exceptions.
func ActiveServiceIDs(calendars map[string]model.Calendar, calendarDates []model.CalendarDate, serviceDates []string) (map[string]bool, error) {
	active := map[string]bool{}

	dateSet := map[string]bool{}
	for _, d := range serviceDates {
		dateSet[d] = true
	}

	for serviceID, cal := range calendars {
		for date := range dateSet {
			t, err := time.ParseInLocation("20060102", date, time.UTC)
			if err != nil {
				return nil, errors.Wrapf(err, "parse: invalid service date '%s'", date)
			}
			if date < cal.StartDate || date > cal.EndDate {
				continue
			}
			if cal.Weekday&(1<<t.Weekday()) != 0 {
				active[serviceID] = true
			}
		}
	}

	for _, cd := range calendarDates {
		if !dateSet[cd.Date] {
			continue
		}
		switch cd.ExceptionType {
		case model.ExceptionTypeAdded:
			active[cd.ServiceID] = true
		case model.ExceptionTypeRemoved:
			delete(active, cd.ServiceID)
		}
	}

	if len(active) == 0 {
		return nil, ErrMissingServiceDates
	}

	return active, nil
}
