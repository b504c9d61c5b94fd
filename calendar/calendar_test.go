package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/calendar"
)

func TestServiceDatesSaturday(t *testing.T) {
	dates, err := calendar.ServiceDates("7", "2026", calendar.Saturday, time.UTC)
	require.NoError(t, err)
	for _, d := range dates {
		parsed, err := time.Parse("20060102", d)
		require.NoError(t, err)
		assert.Equal(t, time.Saturday, parsed.Weekday())
	}
	assert.NotEmpty(t, dates)
}

func TestServiceDatesWorkdayReturnsOnlyWeekdays(t *testing.T) {
	// July 4, 2026 falls on a Saturday, so this month checks only that
	// every returned Workday date is Monday through Friday.
	dates, err := calendar.ServiceDates("7", "2026", calendar.Workday, time.UTC)
	require.NoError(t, err)
	for _, d := range dates {
		parsed, err := time.Parse("20060102", d)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, parsed.Weekday())
		assert.NotEqual(t, time.Sunday, parsed.Weekday())
	}
}

func TestServiceDatesInvalidMonth(t *testing.T) {
	_, err := calendar.ServiceDates("13", "2026", calendar.Workday, time.UTC)
	assert.Error(t, err)
}

func TestAgencyTimezoneKnownAgency(t *testing.T) {
	loc, err := calendar.AgencyTimezone("CTA")
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())
}

func TestAgencyTimezoneUnknownAgency(t *testing.T) {
	_, err := calendar.AgencyTimezone("FOO")
	assert.Error(t, err)
}
