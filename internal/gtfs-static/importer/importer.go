package importer

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/transitfeed/internal/common/db"
	"github.com/transitfeed/internal/common/logger"
	"github.com/transitfeed/pkg/gtfs"
	"github.com/transitfeed/pkg/gtfs/models"
)

// execer is the part of *sql.Tx the batch inserter needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type Importer struct {
	db        *db.DB
	versions  *db.VersionChecker
	logger    logger.Logger
	batchSize int
}

func NewImporter(database *db.DB) *Importer {
	return &Importer{
		db:        database,
		versions:  db.NewVersionChecker(database),
		logger:    database.Logger(),
		batchSize: 1000,
	}
}

// Import writes feed as a new version and activates it, all in one
// transaction. It returns the id of the new version.
func (i *Importer) Import(ctx context.Context, feed *gtfs.Feed, versionName, sourcePath string) (int, error) {
	previous, err := i.versions.GetActiveVersion(ctx)
	if err != nil {
		return 0, err
	}
	if previous != nil {
		i.logger.Info("Replacing active version",
			"version_id", previous.VersionID,
			"version_name", previous.VersionName,
			"source_path", previous.SourcePath)
	}

	tx, err := i.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	description := fmt.Sprintf("GTFS feed loaded from %s", sourcePath)
	versionID, err := i.versions.CreateVersion(ctx, tx, versionName, sourcePath, description)
	if err != nil {
		return 0, err
	}

	if err := i.writeFeed(ctx, tx, feed, versionID); err != nil {
		return 0, err
	}

	if err := i.versions.ActivateVersion(ctx, tx, versionID); err != nil {
		return 0, err
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	i.logger.Info("Import completed successfully",
		"version_id", versionID,
		"version_name", versionName)

	return versionID, nil
}

func (i *Importer) writeFeed(ctx context.Context, tx execer, feed *gtfs.Feed, versionID int) error {
	for _, table := range exportTables {
		batch := newBatchInserter(ctx, tx, table.name, i.batchSize)
		add := func(values ...interface{}) error {
			return batch.Add(append([]interface{}{versionID}, values...)...)
		}
		if err := table.rows(feed, add); err != nil {
			return fmt.Errorf("writing %s: %w", table.name, err)
		}
		if err := batch.Flush(); err != nil {
			return fmt.Errorf("flushing %s batch: %w", table.name, err)
		}
		i.logger.Debug("Table exported", "table", table.name, "rows", batch.total)
	}
	return nil
}

type exportTable struct {
	name string
	rows func(feed *gtfs.Feed, add func(values ...interface{}) error) error
}

// exportTables lists tables in foreign-key friendly order.
var exportTables = []exportTable{
	{name: "agency", rows: agencyRows},
	{name: "stops", rows: stopRows},
	{name: "routes", rows: routeRows},
	{name: "calendar", rows: calendarRows},
	{name: "calendar_dates", rows: calendarDateRows},
	{name: "shapes", rows: shapeRows},
	{name: "trips", rows: tripRows},
	{name: "stop_times", rows: stopTimeRows},
	{name: "fare_attributes", rows: fareRows},
	{name: "feed_info", rows: feedInfoRows},
}

func agencyRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, agency := range feed.Agencies {
		err := add(
			agency.ID,
			agency.Name,
			agency.URL,
			agency.Timezone,
			nullString(agency.Lang),
			nullString(agency.Phone),
			nullString(agency.FareURL),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func stopRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.Stops)) {
		stop := feed.Stops[id]
		err := add(
			stop.ID,
			nullString(stop.Code),
			nullString(stop.Name),
			nullFloat(stop.Latitude),
			nullFloat(stop.Longitude),
			int(stop.LocationType),
			nullString(stop.ParentStation),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func routeRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.Routes)) {
		route := feed.Routes[id]
		err := add(
			route.ID,
			nullString(route.AgencyID),
			nullString(route.ShortName),
			nullString(route.LongName),
			route.Type.Code(),
			nullString(route.Color),
			nullString(route.TextColor),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func calendarRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.Calendar)) {
		cal := feed.Calendar[id]
		err := add(
			cal.ServiceID,
			cal.Monday,
			cal.Tuesday,
			cal.Wednesday,
			cal.Thursday,
			cal.Friday,
			cal.Saturday,
			cal.Sunday,
			cal.StartDate,
			cal.EndDate,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func calendarDateRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.CalendarDates)) {
		for _, cd := range feed.CalendarDates[id] {
			if err := add(cd.ServiceID, cd.Date, int(cd.ExceptionType)); err != nil {
				return err
			}
		}
	}
	return nil
}

func shapeRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.Shapes)) {
		for _, pt := range feed.Shapes[id] {
			err := add(pt.ShapeID, pt.Latitude, pt.Longitude, pt.Sequence, nullFloat(pt.DistTraveled))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func tripRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.Trips)) {
		trip := feed.Trips[id]
		err := add(
			trip.ID,
			trip.RouteID,
			trip.ServiceID,
			nullString(trip.Headsign),
			nullInt(trip.DirectionID),
			nullString(trip.BlockID),
			nullString(trip.ShapeID),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func stopTimeRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.Trips)) {
		for _, st := range feed.Trips[id].StopTimes {
			err := add(
				st.TripID,
				st.StopID,
				st.StopSequence,
				nullString(st.ArrivalTime),
				nullString(st.DepartureTime),
				nullString(st.StopHeadsign),
				nullPickupDropOff(st.PickupType),
				nullPickupDropOff(st.DropOffType),
				nullFloat(st.ShapeDistTraveled),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func fareRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, id := range slices.Sorted(maps.Keys(feed.FareAttributes)) {
		fare := feed.FareAttributes[id]
		transfers := sql.NullInt64{Int64: int64(fare.Transfers), Valid: fare.Transfers != models.TransfersUnlimited}
		err := add(
			fare.ID,
			fare.Price,
			fare.Currency,
			int(fare.PaymentMethod),
			transfers,
			nullString(fare.AgencyID),
			nullInt(fare.TransferDuration),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func feedInfoRows(feed *gtfs.Feed, add func(values ...interface{}) error) error {
	for _, info := range feed.FeedInfo {
		err := add(
			info.PublisherName,
			info.PublisherURL,
			info.Lang,
			nullTime(info.StartDate),
			nullTime(info.EndDate),
			nullString(info.Version),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

type batchInserter struct {
	ctx        context.Context
	tx         execer
	tableName  string
	columns    []string
	values     []interface{}
	valueCount int
	batchSize  int
	total      int
}

func newBatchInserter(ctx context.Context, tx execer, tableName string, batchSize int) *batchInserter {
	columns := getColumnsForTable(tableName)
	return &batchInserter{
		ctx:       ctx,
		tx:        tx,
		tableName: tableName,
		columns:   columns,
		values:    make([]interface{}, 0, batchSize*len(columns)),
		batchSize: batchSize,
	}
}

func (b *batchInserter) Add(values ...interface{}) error {
	if len(values) != len(b.columns) {
		return fmt.Errorf("%s: got %d values for %d columns", b.tableName, len(values), len(b.columns))
	}
	b.values = append(b.values, values...)
	b.valueCount++
	b.total++

	if b.valueCount >= b.batchSize {
		return b.Flush()
	}

	return nil
}

func (b *batchInserter) Flush() error {
	if b.valueCount == 0 {
		return nil
	}

	query := b.buildInsertQuery()
	_, err := b.tx.ExecContext(b.ctx, query, b.values...)
	if err != nil {
		return fmt.Errorf("executing batch insert: %w", err)
	}

	// Reset
	b.values = b.values[:0]
	b.valueCount = 0

	return nil
}

func (b *batchInserter) buildInsertQuery() string {
	var sb strings.Builder
	fieldCount := len(b.columns)

	sb.WriteString(fmt.Sprintf("INSERT INTO gtfs.%s (%s) VALUES ",
		b.tableName,
		strings.Join(b.columns, ", ")))

	for i := 0; i < b.valueCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < fieldCount; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("$%d", i*fieldCount+j+1))
		}
		sb.WriteString(")")
	}

	return sb.String()
}

func getColumnsForTable(tableName string) []string {
	switch tableName {
	case "agency":
		return []string{"version_id", "agency_id", "agency_name", "agency_url", "agency_timezone", "agency_lang", "agency_phone", "agency_fare_url"}
	case "stops":
		return []string{"version_id", "stop_id", "stop_code", "stop_name", "stop_lat", "stop_lon", "location_type", "parent_station"}
	case "routes":
		return []string{"version_id", "route_id", "agency_id", "route_short_name", "route_long_name", "route_type", "route_color", "route_text_color"}
	case "calendar":
		return []string{"version_id", "service_id", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday", "start_date", "end_date"}
	case "calendar_dates":
		return []string{"version_id", "service_id", "date", "exception_type"}
	case "shapes":
		return []string{"version_id", "shape_id", "shape_pt_lat", "shape_pt_lon", "shape_pt_sequence", "shape_dist_traveled"}
	case "trips":
		return []string{"version_id", "trip_id", "route_id", "service_id", "trip_headsign", "direction_id", "block_id", "shape_id"}
	case "stop_times":
		return []string{"version_id", "trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time", "stop_headsign", "pickup_type", "drop_off_type", "shape_dist_traveled"}
	case "fare_attributes":
		return []string{"version_id", "fare_id", "price", "currency_type", "payment_method", "transfers", "agency_id", "transfer_duration"}
	case "feed_info":
		return []string{"version_id", "feed_publisher_name", "feed_publisher_url", "feed_lang", "feed_start_date", "feed_end_date", "feed_version"}
	default:
		return nil
	}
}
