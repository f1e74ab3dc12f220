package gtfs

import (
	"archive/zip"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixtureFiles is a small feed exercising every table.
func fixtureFiles() map[string]string {
	return map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone,agency_lang\n" +
			"1,BIBUS,http://www.bibus.fr,Europe/Paris,fr\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
			"1,Gare,48.390,-4.486,1,\n" +
			"stop1,Sorano,48.396,-4.478,1,\n" +
			"stop2,Kerbriant,48.407,-4.499,0,\n" +
			"stop3,Jean Jaurès,48.391,-4.480,,1\n" +
			"stop4,Liberté,48.388,-4.486,,\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"1,,A,Porte de Gouesnou - Porte de Plouzané,3\n" +
			"invalid_type,1,X,,42\n",
		"trips.txt": "route_id,service_id,trip_id,shape_id,direction_id\n" +
			"1,service1,trip1,A_shp,0\n" +
			"1,service2,trip2,,\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence,pickup_type,drop_off_type\n" +
			"trip1,14:20:00,14:20:00,stop3,7,2,\n" +
			"trip1,14:00:00,14:00:00,stop2,3,0,1\n" +
			"trip2,25:10:00,25:10:00,stop4,1,,2\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"service1,0,0,0,0,0,1,1,20170101,20170115\n",
		"calendar_dates.txt": "service_id,date,exception_type\n" +
			"service1,20170101,2\n" +
			"service2,20170101,1\n" +
			"service1,20170102,2\n",
		"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
			"A_shp,37.64430,-122.41070,2\n" +
			"A_shp,37.61956,-122.48161,1\n" +
			"A_shp,37.65863,-122.30839,3\n",
		"fare_attributes.txt": "fare_id,price,currency_type,payment_method,transfers,agency_id,transfer_duration\n" +
			"50,1.50,EUR,0,,1,3600\n",
		"feed_info.txt": "feed_publisher_name,feed_publisher_url,feed_lang,feed_start_date,feed_end_date,feed_version\n" +
			"SNCF,http://www.sncf.com,fr,20180709,20180927,0.3\n",
	}
}

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// writeZip stores files under prefix inside a new archive ("" for the root).
func writeZip(t *testing.T, files map[string]string, prefix string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "gtfs.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	if prefix != "" {
		_, err := w.Create(prefix + "/")
		require.NoError(t, err)
	}
	for _, name := range slices.Sorted(maps.Keys(files)) {
		entry, err := w.Create(path.Join(prefix, name))
		require.NoError(t, err)
		_, err = entry.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func without(files map[string]string, names ...string) map[string]string {
	out := maps.Clone(files)
	for _, n := range names {
		delete(out, n)
	}
	return out
}

func with(files map[string]string, name, content string) map[string]string {
	out := maps.Clone(files)
	out[name] = content
	return out
}
