package models

import "time"

// Table is the file name of one logical table of a GTFS static feed.
type Table string

const (
	AgencyFile         Table = "agency.txt"
	StopsFile          Table = "stops.txt"
	RoutesFile         Table = "routes.txt"
	TripsFile          Table = "trips.txt"
	StopTimesFile      Table = "stop_times.txt"
	CalendarFile       Table = "calendar.txt"
	CalendarDatesFile  Table = "calendar_dates.txt"
	ShapesFile         Table = "shapes.txt"
	FareAttributesFile Table = "fare_attributes.txt"
	FeedInfoFile       Table = "feed_info.txt"
)

// Tables lists every table the loader reads, in load order.
var Tables = []Table{
	AgencyFile,
	StopsFile,
	RoutesFile,
	CalendarFile,
	CalendarDatesFile,
	ShapesFile,
	TripsFile,
	StopTimesFile,
	FareAttributesFile,
	FeedInfoFile,
}

type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
	Lang     string
	Phone    string
	FareURL  string
}

type Stop struct {
	ID            string
	Code          string
	Name          string
	Description   string
	Latitude      *float64
	Longitude     *float64
	ZoneID        string
	LocationType  LocationType
	ParentStation string // empty for top-level stops
	PlatformCode  string
}

// HasParent reports whether the stop references a parent station.
func (s Stop) HasParent() bool {
	return s.ParentStation != ""
}

func (s Stop) String() string {
	return s.Name
}

type Route struct {
	ID          string
	AgencyID    string
	ShortName   string
	LongName    string
	Description string
	Type        RouteType
	URL         string
	Color       string
	TextColor   string
}

// String prefers the long name and falls back to the short name.
func (r Route) String() string {
	if r.LongName != "" {
		return r.LongName
	}
	return r.ShortName
}

type Trip struct {
	ID          string
	RouteID     string
	ServiceID   string
	Headsign    string
	ShortName   string
	DirectionID *int
	BlockID     string
	ShapeID     string

	// StopTimes is filled while linking, ordered by StopSequence.
	StopTimes []StopTime
}

type StopTime struct {
	TripID            string
	StopID            string
	StopSequence      int
	ArrivalTime       string // HH:MM:SS, may exceed 24:00:00
	DepartureTime     string
	StopHeadsign      string
	PickupType        *PickupDropOffType // nil when the column is absent or empty
	DropOffType       *PickupDropOffType
	ShapeDistTraveled *float64
}

type Calendar struct {
	ServiceID string
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool
	StartDate time.Time
	EndDate   time.Time
}

// RunsOn reports the weekday flag for w.
func (c Calendar) RunsOn(w time.Weekday) bool {
	switch w {
	case time.Monday:
		return c.Monday
	case time.Tuesday:
		return c.Tuesday
	case time.Wednesday:
		return c.Wednesday
	case time.Thursday:
		return c.Thursday
	case time.Friday:
		return c.Friday
	case time.Saturday:
		return c.Saturday
	case time.Sunday:
		return c.Sunday
	}
	return false
}

// Covers reports whether date lies within [StartDate, EndDate].
func (c Calendar) Covers(date time.Time) bool {
	return !date.Before(c.StartDate) && !date.After(c.EndDate)
}

type CalendarDate struct {
	ServiceID     string
	Date          time.Time
	ExceptionType ExceptionType
}

type ShapePoint struct {
	ShapeID      string
	Latitude     float64
	Longitude    float64
	Sequence     int
	DistTraveled *float64
}

type FareAttribute struct {
	ID               string
	Price            string // kept verbatim to avoid rounding
	Currency         string
	PaymentMethod    PaymentMethod
	Transfers        Transfers
	AgencyID         string
	TransferDuration *int // seconds
}

type FeedInfo struct {
	PublisherName string
	PublisherURL  string
	Lang          string
	StartDate     *time.Time
	EndDate       *time.Time
	Version       string
}
