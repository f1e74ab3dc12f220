package gtfs

import (
	"github.com/transitfeed/pkg/gtfs/models"
)

func (f *Feed) GetStop(id string) (*models.Stop, error) {
	if stop, ok := f.Stops[id]; ok {
		return stop, nil
	}
	return nil, &NotFoundError{Kind: "stop", ID: id}
}

func (f *Feed) GetRoute(id string) (*models.Route, error) {
	if route, ok := f.Routes[id]; ok {
		return route, nil
	}
	return nil, &NotFoundError{Kind: "route", ID: id}
}

func (f *Feed) GetTrip(id string) (*models.Trip, error) {
	if trip, ok := f.Trips[id]; ok {
		return trip, nil
	}
	return nil, &NotFoundError{Kind: "trip", ID: id}
}

// GetCalendar looks up the weekly calendar of a service.
func (f *Feed) GetCalendar(serviceID string) (*models.Calendar, error) {
	if cal, ok := f.Calendar[serviceID]; ok {
		return cal, nil
	}
	return nil, &NotFoundError{Kind: "calendar", ID: serviceID}
}

// GetCalendarDates returns the exceptions of a service in file order.
func (f *Feed) GetCalendarDates(serviceID string) ([]models.CalendarDate, error) {
	if dates, ok := f.CalendarDates[serviceID]; ok {
		return dates, nil
	}
	return nil, &NotFoundError{Kind: "calendar dates", ID: serviceID}
}

// GetShape returns the points of a shape ordered by sequence.
func (f *Feed) GetShape(id string) ([]models.ShapePoint, error) {
	if pts, ok := f.Shapes[id]; ok {
		return pts, nil
	}
	return nil, &NotFoundError{Kind: "shape", ID: id}
}

func (f *Feed) GetFareAttribute(id string) (*models.FareAttribute, error) {
	if fare, ok := f.FareAttributes[id]; ok {
		return fare, nil
	}
	return nil, &NotFoundError{Kind: "fare attribute", ID: id}
}

// GetAgency finds an agency by id. In a single-agency feed the empty id
// resolves to that agency.
func (f *Feed) GetAgency(id string) (*models.Agency, error) {
	if id == "" && len(f.Agencies) == 1 {
		return &f.Agencies[0], nil
	}
	for i := range f.Agencies {
		if f.Agencies[i].ID == id {
			return &f.Agencies[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "agency", ID: id}
}

// GetParentStation resolves a stop's parent station reference.
func (f *Feed) GetParentStation(stop *models.Stop) (*models.Stop, error) {
	if stop == nil {
		return nil, &NotFoundError{Kind: "parent station of stop", ID: ""}
	}
	if !stop.HasParent() {
		return nil, &NotFoundError{Kind: "parent station of stop", ID: stop.ID}
	}
	return f.GetStop(stop.ParentStation)
}
