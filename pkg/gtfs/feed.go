package gtfs

import (
	"github.com/transitfeed/pkg/gtfs/models"
)

// Feed is a fully linked GTFS static feed. All maps are keyed by the entity's
// own identifier; Calendar and CalendarDates are keyed by service id.
type Feed struct {
	// Agencies keep file order; agency_id is optional in single-agency feeds.
	Agencies       []models.Agency
	Stops          map[string]*models.Stop
	Routes         map[string]*models.Route
	Trips          map[string]*models.Trip
	Calendar       map[string]*models.Calendar
	CalendarDates  map[string][]models.CalendarDate
	Shapes         map[string][]models.ShapePoint
	FareAttributes map[string]*models.FareAttribute
	FeedInfo       []models.FeedInfo
}

// Counts summarises the number of entities per table.
type Counts struct {
	Agencies       int
	Stops          int
	Routes         int
	Trips          int
	StopTimes      int
	Calendars      int
	CalendarDates  int
	Shapes         int
	FareAttributes int
	FeedInfo       int
}

func (f *Feed) Counts() Counts {
	c := Counts{
		Agencies:       len(f.Agencies),
		Stops:          len(f.Stops),
		Routes:         len(f.Routes),
		Trips:          len(f.Trips),
		Calendars:      len(f.Calendar),
		CalendarDates:  len(f.CalendarDates),
		Shapes:         len(f.Shapes),
		FareAttributes: len(f.FareAttributes),
		FeedInfo:       len(f.FeedInfo),
	}
	for _, trip := range f.Trips {
		c.StopTimes += len(trip.StopTimes)
	}
	return c
}
