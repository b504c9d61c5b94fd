package parse

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

type CalendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

// ParseCalendarDates reads calendar_dates.txt into per-date service
// exceptions.
func ParseCalendarDates(data io.Reader) ([]model.CalendarDate, error) {
	rows := []*CalendarDateCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling calendar_dates csv")
	}

	seen := map[string]bool{}
	dates := make([]model.CalendarDate, 0, len(rows))
	for _, cd := range rows {
		if cd.ExceptionType != int8(model.ExceptionTypeAdded) && cd.ExceptionType != int8(model.ExceptionTypeRemoved) {
			return nil, errors.Errorf("parse: invalid exception_type '%d'", cd.ExceptionType)
		}
		if _, err := time.ParseInLocation("20060102", cd.Date, time.UTC); err != nil {
			return nil, errors.Wrapf(err, "parse: invalid date '%s'", cd.Date)
		}

		key := cd.Date + "-" + cd.ServiceID
		if seen[key] {
			return nil, errors.Errorf("parse: duplicate service/date '%s'", key)
		}
		seen[key] = true

		dates = append(dates, model.CalendarDate{
			ServiceID:     cd.ServiceID,
			Date:          cd.Date,
			ExceptionType: model.ExceptionType(cd.ExceptionType),
		})
	}

	return dates, nil
}
