package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("20170101")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "20170101", FormatDate(d))

	for _, bad := range []string{"", "2017-01-01", "20171301", "170101"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDaysBetween(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}

	a := time.Date(2017, 3, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 14, DaysBetween(a, a.AddDate(0, 0, 14)))
	assert.Equal(t, -1, DaysBetween(a, a.AddDate(0, 0, -1)))

	// Crossing a daylight saving change still counts calendar days.
	before := time.Date(2017, 3, 25, 23, 30, 0, 0, paris)
	after := time.Date(2017, 3, 27, 0, 30, 0, 0, paris)
	assert.Equal(t, 2, DaysBetween(before, after))
}

func TestDaysBetweenBeyondDurationRange(t *testing.T) {
	a := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2900, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 365243, DaysBetween(a, b))
	assert.Equal(t, -365243, DaysBetween(b, a))
}

func TestCalendarRunsOn(t *testing.T) {
	c := Calendar{
		Saturday:  true,
		StartDate: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2017, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, c.RunsOn(time.Saturday))
	assert.False(t, c.RunsOn(time.Sunday))

	assert.True(t, c.Covers(c.StartDate))
	assert.True(t, c.Covers(c.EndDate))
	assert.False(t, c.Covers(c.EndDate.AddDate(0, 0, 1)))
	assert.False(t, c.Covers(c.StartDate.AddDate(0, 0, -1)))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Châtelet", Stop{ID: "s", Name: "Châtelet"}.String())
	assert.Equal(t, "Ligne 1", Route{ShortName: "1", LongName: "Ligne 1"}.String())
	assert.Equal(t, "1", Route{ShortName: "1"}.String())
}
