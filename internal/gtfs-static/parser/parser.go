package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/transitfeed/internal/common/logger"
	"github.com/transitfeed/internal/gtfs-static/source"
	"github.com/transitfeed/pkg/gtfs/models"
)

type Parser struct {
	logger logger.Logger
}

func New(logger logger.Logger) *Parser {
	return &Parser{logger: logger}
}

// Records holds the decoded rows of every table, in file order.
type Records struct {
	Agencies       []models.Agency
	Stops          []models.Stop
	Routes         []models.Route
	Trips          []models.Trip
	StopTimes      []models.StopTime
	Calendars      []models.Calendar
	CalendarDates  []models.CalendarDate
	ShapePoints    []models.ShapePoint
	FareAttributes []models.FareAttribute
	FeedInfo       []models.FeedInfo

	lines map[models.Table][]int
}

// Line returns the 1-based source line of the i-th record of table, or 0 if
// it is not known.
func (r *Records) Line(table models.Table, i int) int {
	lines := r.lines[table]
	if i < 0 || i >= len(lines) {
		return 0
	}
	return lines[i]
}

func (r *Records) setLines(table models.Table, lines []int) {
	if r.lines == nil {
		r.lines = make(map[models.Table][]int, len(models.Tables))
	}
	r.lines[table] = lines
}

// ParseFeed decodes every known table from src. Absent tables decode to an
// empty slice; the first malformed row aborts the whole parse.
func (p *Parser) ParseFeed(src source.TableSource) (*Records, error) {
	rec := &Records{}
	var (
		lines []int
		err   error
	)

	for _, table := range models.Tables {
		switch table {
		case models.AgencyFile:
			rec.Agencies, lines, err = readTable(p, src, agencySchema)
		case models.StopsFile:
			rec.Stops, lines, err = readTable(p, src, stopsSchema)
		case models.RoutesFile:
			rec.Routes, lines, err = readTable(p, src, routesSchema)
		case models.TripsFile:
			rec.Trips, lines, err = readTable(p, src, tripsSchema)
		case models.StopTimesFile:
			rec.StopTimes, lines, err = readTable(p, src, stopTimesSchema)
		case models.CalendarFile:
			rec.Calendars, lines, err = readTable(p, src, calendarSchema)
		case models.CalendarDatesFile:
			rec.CalendarDates, lines, err = readTable(p, src, calendarDatesSchema)
		case models.ShapesFile:
			rec.ShapePoints, lines, err = readTable(p, src, shapesSchema)
		case models.FareAttributesFile:
			rec.FareAttributes, lines, err = readTable(p, src, fareAttributesSchema)
		case models.FeedInfoFile:
			rec.FeedInfo, lines, err = readTable(p, src, feedInfoSchema)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", table, err)
		}
		rec.setLines(table, lines)
	}

	p.logger.Debug("GTFS parsing completed successfully")
	return rec, nil
}

// schema declares how one table maps onto a record type.
type schema[T any] struct {
	table    models.Table
	required []string
	decode   func(r *row) T
}

// readTable decodes every row of one table. Alongside the records it returns
// the source line of each.
func readTable[T any](p *Parser, src source.TableSource, s schema[T]) ([]T, []int, error) {
	rc, err := src.Open(s.table)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Debug("File not found in feed", "file", s.table)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1 // Variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headerMap[strings.TrimSpace(h)] = i
	}
	for _, col := range s.required {
		if _, ok := headerMap[col]; !ok {
			return nil, nil, &DecodeError{Table: s.table, Line: 1, Column: col, Err: ErrMissingColumn}
		}
	}

	var (
		out   []T
		lines []int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading record: %w", err)
		}
		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		r := &row{table: s.table, line: line, record: record, headerMap: headerMap}
		v := s.decode(r)
		if r.err != nil {
			return nil, nil, r.err
		}
		out = append(out, v)
		lines = append(lines, line)
	}

	p.logger.Debug("File parsed", "name", s.table, "records", len(out))
	return out, lines, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

var (
	agencySchema = schema[models.Agency]{
		table:    models.AgencyFile,
		required: []string{"agency_name", "agency_url", "agency_timezone"},
		decode:   parseAgency,
	}
	stopsSchema = schema[models.Stop]{
		table:    models.StopsFile,
		required: []string{"stop_id"},
		decode:   parseStop,
	}
	routesSchema = schema[models.Route]{
		table:    models.RoutesFile,
		required: []string{"route_id", "route_type"},
		decode:   parseRoute,
	}
	tripsSchema = schema[models.Trip]{
		table:    models.TripsFile,
		required: []string{"route_id", "service_id", "trip_id"},
		decode:   parseTrip,
	}
	stopTimesSchema = schema[models.StopTime]{
		table:    models.StopTimesFile,
		required: []string{"trip_id", "stop_id", "stop_sequence"},
		decode:   parseStopTime,
	}
	calendarSchema = schema[models.Calendar]{
		table: models.CalendarFile,
		required: []string{
			"service_id", "monday", "tuesday", "wednesday", "thursday",
			"friday", "saturday", "sunday", "start_date", "end_date",
		},
		decode: parseCalendar,
	}
	calendarDatesSchema = schema[models.CalendarDate]{
		table:    models.CalendarDatesFile,
		required: []string{"service_id", "date", "exception_type"},
		decode:   parseCalendarDate,
	}
	shapesSchema = schema[models.ShapePoint]{
		table:    models.ShapesFile,
		required: []string{"shape_id", "shape_pt_lat", "shape_pt_lon", "shape_pt_sequence"},
		decode:   parseShapePoint,
	}
	fareAttributesSchema = schema[models.FareAttribute]{
		table:    models.FareAttributesFile,
		required: []string{"fare_id", "price", "currency_type", "payment_method"},
		decode:   parseFareAttribute,
	}
	feedInfoSchema = schema[models.FeedInfo]{
		table:    models.FeedInfoFile,
		required: []string{"feed_publisher_name", "feed_publisher_url", "feed_lang"},
		decode:   parseFeedInfo,
	}
)

func (p *Parser) Agencies(src source.TableSource) ([]models.Agency, error) {
	rows, _, err := readTable(p, src, agencySchema)
	return rows, err
}

func (p *Parser) Stops(src source.TableSource) ([]models.Stop, error) {
	rows, _, err := readTable(p, src, stopsSchema)
	return rows, err
}

func (p *Parser) Routes(src source.TableSource) ([]models.Route, error) {
	rows, _, err := readTable(p, src, routesSchema)
	return rows, err
}

func (p *Parser) Trips(src source.TableSource) ([]models.Trip, error) {
	rows, _, err := readTable(p, src, tripsSchema)
	return rows, err
}

func (p *Parser) StopTimes(src source.TableSource) ([]models.StopTime, error) {
	rows, _, err := readTable(p, src, stopTimesSchema)
	return rows, err
}

func (p *Parser) Calendars(src source.TableSource) ([]models.Calendar, error) {
	rows, _, err := readTable(p, src, calendarSchema)
	return rows, err
}

func (p *Parser) CalendarDates(src source.TableSource) ([]models.CalendarDate, error) {
	rows, _, err := readTable(p, src, calendarDatesSchema)
	return rows, err
}

func (p *Parser) ShapePoints(src source.TableSource) ([]models.ShapePoint, error) {
	rows, _, err := readTable(p, src, shapesSchema)
	return rows, err
}

func (p *Parser) FareAttributes(src source.TableSource) ([]models.FareAttribute, error) {
	rows, _, err := readTable(p, src, fareAttributesSchema)
	return rows, err
}

func (p *Parser) FeedInfo(src source.TableSource) ([]models.FeedInfo, error) {
	rows, _, err := readTable(p, src, feedInfoSchema)
	return rows, err
}

// Parse individual record types
func parseAgency(r *row) models.Agency {
	return models.Agency{
		ID:       r.getString("agency_id"),
		Name:     r.required("agency_name"),
		URL:      r.required("agency_url"),
		Timezone: r.required("agency_timezone"),
		Lang:     r.getString("agency_lang"),
		Phone:    r.getString("agency_phone"),
		FareURL:  r.getString("agency_fare_url"),
	}
}

func parseStop(r *row) models.Stop {
	return models.Stop{
		ID:            r.required("stop_id"),
		Code:          r.getString("stop_code"),
		Name:          r.getString("stop_name"),
		Description:   r.getString("stop_desc"),
		Latitude:      r.optionalFloat("stop_lat"),
		Longitude:     r.optionalFloat("stop_lon"),
		ZoneID:        r.getString("zone_id"),
		LocationType:  enum(r, "location_type", models.ParseLocationType),
		ParentStation: r.getString("parent_station"),
		PlatformCode:  r.getString("platform_code"),
	}
}

func parseRoute(r *row) models.Route {
	return models.Route{
		ID:          r.required("route_id"),
		AgencyID:    r.getString("agency_id"),
		ShortName:   r.getString("route_short_name"),
		LongName:    r.getString("route_long_name"),
		Description: r.getString("route_desc"),
		Type:        enum(r, "route_type", models.ParseRouteType),
		URL:         r.getString("route_url"),
		Color:       r.getString("route_color"),
		TextColor:   r.getString("route_text_color"),
	}
}

func parseTrip(r *row) models.Trip {
	return models.Trip{
		ID:          r.required("trip_id"),
		RouteID:     r.required("route_id"),
		ServiceID:   r.required("service_id"),
		Headsign:    r.getString("trip_headsign"),
		ShortName:   r.getString("trip_short_name"),
		DirectionID: r.optionalInt("direction_id"),
		BlockID:     r.getString("block_id"),
		ShapeID:     r.getString("shape_id"),
	}
}

func parseStopTime(r *row) models.StopTime {
	return models.StopTime{
		TripID:            r.required("trip_id"),
		StopID:            r.required("stop_id"),
		StopSequence:      r.requiredInt("stop_sequence"),
		ArrivalTime:       r.getString("arrival_time"),
		DepartureTime:     r.getString("departure_time"),
		StopHeadsign:      r.getString("stop_headsign"),
		PickupType:        enum(r, "pickup_type", models.ParsePickupDropOffType),
		DropOffType:       enum(r, "drop_off_type", models.ParsePickupDropOffType),
		ShapeDistTraveled: r.optionalFloat("shape_dist_traveled"),
	}
}

func parseCalendar(r *row) models.Calendar {
	c := models.Calendar{
		ServiceID: r.required("service_id"),
		Monday:    r.flag("monday"),
		Tuesday:   r.flag("tuesday"),
		Wednesday: r.flag("wednesday"),
		Thursday:  r.flag("thursday"),
		Friday:    r.flag("friday"),
		Saturday:  r.flag("saturday"),
		Sunday:    r.flag("sunday"),
		StartDate: r.requiredDate("start_date"),
		EndDate:   r.requiredDate("end_date"),
	}
	if r.err == nil && c.StartDate.After(c.EndDate) {
		r.fail("end_date", models.FormatDate(c.EndDate), ErrInvalidRange)
	}
	return c
}

func parseCalendarDate(r *row) models.CalendarDate {
	return models.CalendarDate{
		ServiceID:     r.required("service_id"),
		Date:          r.requiredDate("date"),
		ExceptionType: enum(r, "exception_type", models.ParseExceptionType),
	}
}

func parseShapePoint(r *row) models.ShapePoint {
	return models.ShapePoint{
		ShapeID:      r.required("shape_id"),
		Latitude:     r.requiredFloat("shape_pt_lat"),
		Longitude:    r.requiredFloat("shape_pt_lon"),
		Sequence:     r.requiredInt("shape_pt_sequence"),
		DistTraveled: r.optionalFloat("shape_dist_traveled"),
	}
}

func parseFareAttribute(r *row) models.FareAttribute {
	return models.FareAttribute{
		ID:               r.required("fare_id"),
		Price:            r.required("price"),
		Currency:         r.required("currency_type"),
		PaymentMethod:    enum(r, "payment_method", models.ParsePaymentMethod),
		Transfers:        enum(r, "transfers", models.ParseTransfers),
		AgencyID:         r.getString("agency_id"),
		TransferDuration: r.optionalInt("transfer_duration"),
	}
}

func parseFeedInfo(r *row) models.FeedInfo {
	return models.FeedInfo{
		PublisherName: r.required("feed_publisher_name"),
		PublisherURL:  r.required("feed_publisher_url"),
		Lang:          r.required("feed_lang"),
		StartDate:     r.optionalDate("feed_start_date"),
		EndDate:       r.optionalDate("feed_end_date"),
		Version:       r.getString("feed_version"),
	}
}
