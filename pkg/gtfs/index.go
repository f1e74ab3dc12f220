package gtfs

import (
	"fmt"
	"sort"

	"github.com/transitfeed/internal/common/logger"
	"github.com/transitfeed/internal/gtfs-static/parser"
	"github.com/transitfeed/pkg/gtfs/models"
)

// link builds the keyed maps of a Feed out of decoded records. It checks key
// uniqueness and orders owned children, but leaves references unverified.
func link(rec *parser.Records, log logger.Logger) (*Feed, error) {
	applyAgencyDefault(rec)

	f := &Feed{
		Agencies:       rec.Agencies,
		Stops:          make(map[string]*models.Stop, len(rec.Stops)),
		Routes:         make(map[string]*models.Route, len(rec.Routes)),
		Trips:          make(map[string]*models.Trip, len(rec.Trips)),
		Calendar:       make(map[string]*models.Calendar, len(rec.Calendars)),
		CalendarDates:  make(map[string][]models.CalendarDate),
		Shapes:         make(map[string][]models.ShapePoint),
		FareAttributes: make(map[string]*models.FareAttribute, len(rec.FareAttributes)),
		FeedInfo:       rec.FeedInfo,
	}

	for i := range rec.Stops {
		stop := &rec.Stops[i]
		if _, ok := f.Stops[stop.ID]; ok {
			return nil, duplicate(rec, models.StopsFile, i, stop.ID)
		}
		f.Stops[stop.ID] = stop
	}

	for i := range rec.Routes {
		route := &rec.Routes[i]
		if _, ok := f.Routes[route.ID]; ok {
			return nil, duplicate(rec, models.RoutesFile, i, route.ID)
		}
		f.Routes[route.ID] = route
	}

	for i := range rec.Calendars {
		cal := &rec.Calendars[i]
		if _, ok := f.Calendar[cal.ServiceID]; ok {
			return nil, duplicate(rec, models.CalendarFile, i, cal.ServiceID)
		}
		f.Calendar[cal.ServiceID] = cal
	}

	for _, cd := range rec.CalendarDates {
		f.CalendarDates[cd.ServiceID] = append(f.CalendarDates[cd.ServiceID], cd)
	}

	for i := range rec.FareAttributes {
		fare := &rec.FareAttributes[i]
		if _, ok := f.FareAttributes[fare.ID]; ok {
			return nil, duplicate(rec, models.FareAttributesFile, i, fare.ID)
		}
		f.FareAttributes[fare.ID] = fare
	}

	for i := range rec.Trips {
		trip := &rec.Trips[i]
		if _, ok := f.Trips[trip.ID]; ok {
			return nil, duplicate(rec, models.TripsFile, i, trip.ID)
		}
		f.Trips[trip.ID] = trip
	}

	// Children are grouped as indices into the records so that a duplicate
	// sequence can still be traced back to its line.
	stopTimes := make(map[string][]int)
	for i, st := range rec.StopTimes {
		stopTimes[st.TripID] = append(stopTimes[st.TripID], i)
	}
	orphans := 0
	for tripID, idx := range stopTimes {
		seq := func(i int) int { return rec.StopTimes[idx[i]].StopSequence }
		sort.SliceStable(idx, func(i, j int) bool { return seq(i) < seq(j) })
		for i := 1; i < len(idx); i++ {
			if seq(i) == seq(i-1) {
				return nil, duplicate(rec, models.StopTimesFile, idx[i], fmt.Sprintf("%s#%d", tripID, seq(i)))
			}
		}
		trip, ok := f.Trips[tripID]
		if !ok {
			orphans += len(idx)
			continue
		}
		trip.StopTimes = make([]models.StopTime, len(idx))
		for i, j := range idx {
			trip.StopTimes[i] = rec.StopTimes[j]
		}
	}
	if orphans > 0 {
		log.Debug("Stop times without a matching trip were dropped", "count", orphans)
	}

	shapes := make(map[string][]int)
	for i, pt := range rec.ShapePoints {
		shapes[pt.ShapeID] = append(shapes[pt.ShapeID], i)
	}
	for shapeID, idx := range shapes {
		seq := func(i int) int { return rec.ShapePoints[idx[i]].Sequence }
		sort.SliceStable(idx, func(i, j int) bool { return seq(i) < seq(j) })
		for i := 1; i < len(idx); i++ {
			if seq(i) == seq(i-1) {
				return nil, duplicate(rec, models.ShapesFile, idx[i], fmt.Sprintf("%s#%d", shapeID, seq(i)))
			}
		}
		pts := make([]models.ShapePoint, len(idx))
		for i, j := range idx {
			pts[i] = rec.ShapePoints[j]
		}
		f.Shapes[shapeID] = pts
	}

	return f, nil
}

func duplicate(rec *parser.Records, table models.Table, i int, id string) error {
	return &DuplicateKeyError{Table: table, Line: rec.Line(table, i), ID: id}
}

// applyAgencyDefault fills the agency reference of routes and fares when the
// feed has a single agency, which the format allows them to omit.
func applyAgencyDefault(rec *parser.Records) {
	if len(rec.Agencies) != 1 || rec.Agencies[0].ID == "" {
		return
	}
	id := rec.Agencies[0].ID
	for i := range rec.Routes {
		if rec.Routes[i].AgencyID == "" {
			rec.Routes[i].AgencyID = id
		}
	}
	for i := range rec.FareAttributes {
		if rec.FareAttributes[i].AgencyID == "" {
			rec.FareAttributes[i].AgencyID = id
		}
	}
}
