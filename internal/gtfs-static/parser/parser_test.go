package parser

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitfeed/internal/common/logger"
	"github.com/transitfeed/internal/gtfs-static/source"
	"github.com/transitfeed/pkg/gtfs/models"
)

func feedOf(files map[string]string) source.TableSource {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return source.New(fsys)
}

func newParser() *Parser {
	return New(logger.Nop())
}

func TestStopTimesPickupDropOff(t *testing.T) {
	src := feedOf(map[string]string{
		"stop_times.txt": "trip_id,stop_id,stop_sequence,pickup_type,drop_off_type\n" +
			"t1,s1,1,,2\n" +
			"t1,s2,2,3,0\n",
	})

	sts, err := newParser().StopTimes(src)
	require.NoError(t, err)
	require.Len(t, sts, 2)

	assert.Nil(t, sts[0].PickupType)
	require.NotNil(t, sts[0].DropOffType)
	assert.Equal(t, models.PickupDropOffArrangeByPhone, *sts[0].DropOffType)

	require.NotNil(t, sts[1].PickupType)
	assert.Equal(t, models.PickupDropOffCoordinateWithDriver, *sts[1].PickupType)
	assert.Equal(t, models.PickupDropOffRegular, *sts[1].DropOffType)
}

func TestStopTimesWithoutPickupColumns(t *testing.T) {
	src := feedOf(map[string]string{
		"stop_times.txt": "trip_id,stop_id,stop_sequence\nt1,s1,1\n",
	})
	sts, err := newParser().StopTimes(src)
	require.NoError(t, err)
	require.Len(t, sts, 1)
	assert.Nil(t, sts[0].PickupType)
	assert.Nil(t, sts[0].DropOffType)
	assert.Nil(t, sts[0].ShapeDistTraveled)
}

func TestRoutesKeepUnknownType(t *testing.T) {
	src := feedOf(map[string]string{
		"routes.txt": "route_id,route_short_name,route_type\nr1,1,3\nr2,2,42\nr3,3,700\n",
	})
	routes, err := newParser().Routes(src)
	require.NoError(t, err)
	require.Len(t, routes, 3)

	assert.Equal(t, models.RouteBus, routes[0].Type)
	assert.Equal(t, 42, routes[1].Type.Code())
	assert.Equal(t, "Other(42)", routes[1].Type.String())
	assert.Equal(t, models.RouteType(700), routes[2].Type)
}

func TestStopsLocationType(t *testing.T) {
	src := feedOf(map[string]string{
		"stops.txt": "\ufeffstop_id,stop_name,location_type,parent_station\n" +
			"a,Area,1,\n" +
			"p,Point,,a\n" +
			"e,Entrance,2,a\n",
	})
	stops, err := newParser().Stops(src)
	require.NoError(t, err)
	require.Len(t, stops, 3)

	assert.Equal(t, "a", stops[0].ID, "byte order mark is stripped from the header")
	assert.Equal(t, models.LocationStopArea, stops[0].LocationType)
	assert.Equal(t, models.LocationStopPoint, stops[1].LocationType)
	assert.Equal(t, "a", stops[1].ParentStation)
	assert.Equal(t, models.LocationEntranceExit, stops[2].LocationType)
	assert.Nil(t, stops[0].Latitude)
}

func TestFareAttributes(t *testing.T) {
	src := feedOf(map[string]string{
		"fare_attributes.txt": "fare_id,price,currency_type,payment_method,transfers,transfer_duration\n" +
			"f1,1.50,EUR,0,,3600\n" +
			"f2,2.00,EUR,1,1,\n",
	})
	fares, err := newParser().FareAttributes(src)
	require.NoError(t, err)
	require.Len(t, fares, 2)

	assert.Equal(t, "1.50", fares[0].Price)
	assert.Equal(t, models.TransfersUnlimited, fares[0].Transfers)
	require.NotNil(t, fares[0].TransferDuration)
	assert.Equal(t, 3600, *fares[0].TransferDuration)

	assert.Equal(t, models.PaymentPaidBefore, fares[1].PaymentMethod)
	assert.Equal(t, models.TransfersOnce, fares[1].Transfers)
	assert.Nil(t, fares[1].TransferDuration)
}

func TestAbsentAndEmptyTables(t *testing.T) {
	p := newParser()

	shapes, err := p.ShapePoints(feedOf(nil))
	require.NoError(t, err)
	assert.Empty(t, shapes)

	shapes, err = p.ShapePoints(feedOf(map[string]string{"shapes.txt": ""}))
	require.NoError(t, err)
	assert.Empty(t, shapes)

	shapes, err = p.ShapePoints(feedOf(map[string]string{
		"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n\nA,1.0,2.0,1\n,,,\n",
	}))
	require.NoError(t, err)
	assert.Len(t, shapes, 1, "blank rows are skipped")
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		parse  func(p *Parser, src source.TableSource) error
		table  models.Table
		line   int
		column string
		target error
	}{
		{
			name: "missing required column",
			files: map[string]string{
				"trips.txt": "route_id,trip_id\nr1,t1\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.Trips(src); return err },
			table:  models.TripsFile,
			line:   1,
			column: "service_id",
			target: ErrMissingColumn,
		},
		{
			name: "missing required value",
			files: map[string]string{
				"trips.txt": "route_id,service_id,trip_id\nr1,s1,t1\nr1,,t2\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.Trips(src); return err },
			table:  models.TripsFile,
			line:   3,
			column: "service_id",
			target: ErrMissingValue,
		},
		{
			name: "malformed date",
			files: map[string]string{
				"calendar_dates.txt": "service_id,date,exception_type\ns1,2017-01-01,1\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.CalendarDates(src); return err },
			table:  models.CalendarDatesFile,
			line:   2,
			column: "date",
		},
		{
			name: "start after end",
			files: map[string]string{
				"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
					"s1,1,1,1,1,1,0,0,20170201,20170101\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.Calendars(src); return err },
			table:  models.CalendarFile,
			line:   2,
			column: "end_date",
			target: ErrInvalidRange,
		},
		{
			name: "weekday flag out of range",
			files: map[string]string{
				"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
					"s1,1,1,1,1,1,0,2,20170101,20170201\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.Calendars(src); return err },
			table:  models.CalendarFile,
			line:   2,
			column: "sunday",
			target: models.ErrUnknownCode,
		},
		{
			name: "unknown location type",
			files: map[string]string{
				"stops.txt": "stop_id,location_type\ns1,0\ns2,9\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.Stops(src); return err },
			table:  models.StopsFile,
			line:   3,
			column: "location_type",
			target: models.ErrUnknownCode,
		},
		{
			name: "non numeric sequence",
			files: map[string]string{
				"stop_times.txt": "trip_id,stop_id,stop_sequence\nt1,s1,first\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.StopTimes(src); return err },
			table:  models.StopTimesFile,
			line:   2,
			column: "stop_sequence",
		},
		{
			name: "non numeric route type",
			files: map[string]string{
				"routes.txt": "route_id,route_type\nr1,bus\n",
			},
			parse:  func(p *Parser, src source.TableSource) error { _, err := p.Routes(src); return err },
			table:  models.RoutesFile,
			line:   2,
			column: "route_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse(newParser(), feedOf(tt.files))
			require.Error(t, err)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "got %T: %v", err, err)
			assert.Equal(t, tt.table, decodeErr.Table)
			assert.Equal(t, tt.line, decodeErr.Line)
			assert.Equal(t, tt.column, decodeErr.Column)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestParseFeedWrapsTableName(t *testing.T) {
	src := feedOf(map[string]string{
		"agency.txt": "agency_name,agency_url,agency_timezone\nBIBUS,http://www.bibus.fr,Europe/Paris\n",
		"routes.txt": "route_id,route_type\n,3\n",
	})
	_, err := newParser().ParseFeed(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing routes.txt")
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestParseFeedRecordsLines(t *testing.T) {
	src := feedOf(map[string]string{
		"stops.txt": "stop_id,stop_name\ns1,A\n\ns2,B\n,\ns3,C\n",
	})
	rec, err := newParser().ParseFeed(src)
	require.NoError(t, err)
	require.Len(t, rec.Stops, 3)

	assert.Equal(t, 2, rec.Line(models.StopsFile, 0))
	assert.Equal(t, 4, rec.Line(models.StopsFile, 1), "blank rows still count")
	assert.Equal(t, 6, rec.Line(models.StopsFile, 2))
	assert.Zero(t, rec.Line(models.StopsFile, 3))
	assert.Zero(t, rec.Line(models.ShapesFile, 0))
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &DecodeError{Table: models.StopsFile, Line: 4, Column: "stop_lat", Value: "north", Err: errors.New("invalid syntax")}
	assert.Equal(t, `stops.txt:4: stop_lat "north": invalid syntax`, err.Error())

	err = &DecodeError{Table: models.TripsFile, Line: 1, Column: "trip_id", Err: ErrMissingColumn}
	assert.Equal(t, "trips.txt:1: trip_id: missing required column", err.Error())
}
