package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/parse"
)

func TestParseCalendar(t *testing.T) {
	csv := "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
		"WKDY,20260101,20261231,1,1,1,1,1,0,0\n"

	cals, err := parse.ParseCalendar(strings.NewReader(csv))
	require.NoError(t, err)
	require.Contains(t, cals, "WKDY")
	assert.Equal(t, "20260101", cals["WKDY"].StartDate)
}

func TestParseCalendarRejectsBadWeekdayFlag(t *testing.T) {
	csv := "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
		"WKDY,20260101,20261231,2,1,1,1,1,0,0\n"

	_, err := parse.ParseCalendar(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestActiveServiceIDsCombinesCalendarAndExceptions(t *testing.T) {
	csv := "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
		"WKDY,20260101,20261231,1,1,1,1,1,0,0\n"
	cals, err := parse.ParseCalendar(strings.NewReader(csv))
	require.NoError(t, err)

	// 2026-07-30 is a Thursday.
	active, err := parse.ActiveServiceIDs(cals, nil, []string{"20260730"})
	require.NoError(t, err)
	assert.True(t, active["WKDY"])
}

func TestActiveServiceIDsEmptyIntersectionFails(t *testing.T) {
	csv := "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
		"WKDY,20260101,20261231,1,1,1,1,1,0,0\n"
	cals, err := parse.ParseCalendar(strings.NewReader(csv))
	require.NoError(t, err)

	// 2026-08-01 is a Saturday, not in WKDY's weekday mask.
	_, err = parse.ActiveServiceIDs(cals, nil, []string{"20260801"})
	assert.ErrorIs(t, err, parse.ErrMissingServiceDates)
}
