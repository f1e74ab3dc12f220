package gtfs

import (
	"time"

	"github.com/transitfeed/pkg/gtfs/models"
)

// TripDays returns, in ascending order, the day offsets d >= 0 from ref on
// which serviceID runs. A day is selected when the weekly calendar covers it
// and no Removed exception exists for it, or when an Added exception exists
// for it. The scan stops at the latest of the calendar end date and the
// exception dates. Unknown services yield no days.
func (f *Feed) TripDays(serviceID string, ref time.Time) []int {
	ref = models.Day(ref)
	cal := f.Calendar[serviceID]
	exceptions := f.CalendarDates[serviceID]
	if cal == nil && len(exceptions) == 0 {
		return nil
	}

	last := -1
	if cal != nil {
		last = models.DaysBetween(ref, cal.EndDate)
	}
	added := make(map[int]bool)
	removed := make(map[int]bool)
	for _, e := range exceptions {
		offset := models.DaysBetween(ref, e.Date)
		if offset < 0 {
			continue
		}
		switch e.ExceptionType {
		case models.ExceptionAdded:
			added[offset] = true
		case models.ExceptionRemoved:
			removed[offset] = true
		}
		if offset > last {
			last = offset
		}
	}

	var days []int
	for d := 0; d <= last; d++ {
		if added[d] {
			days = append(days, d)
			continue
		}
		if removed[d] || cal == nil {
			continue
		}
		date := ref.AddDate(0, 0, d)
		if cal.Covers(date) && cal.RunsOn(date.Weekday()) {
			days = append(days, d)
		}
	}
	return days
}

// ServiceDates is TripDays expressed as calendar dates (midnight UTC).
func (f *Feed) ServiceDates(serviceID string, ref time.Time) []time.Time {
	ref = models.Day(ref)
	days := f.TripDays(serviceID, ref)
	if days == nil {
		return nil
	}
	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = ref.AddDate(0, 0, d)
	}
	return dates
}

// ActiveOn reports whether serviceID runs on the calendar date of date, using
// the same precedence as TripDays.
func (f *Feed) ActiveOn(serviceID string, date time.Time) bool {
	date = models.Day(date)
	removed := false
	for _, e := range f.CalendarDates[serviceID] {
		if !models.Day(e.Date).Equal(date) {
			continue
		}
		if e.ExceptionType == models.ExceptionAdded {
			return true
		}
		if e.ExceptionType == models.ExceptionRemoved {
			removed = true
		}
	}
	if removed {
		return false
	}
	cal := f.Calendar[serviceID]
	return cal != nil && cal.Covers(date) && cal.RunsOn(date.Weekday())
}
