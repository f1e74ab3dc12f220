package db

// VersionedTables lists every table keyed by version_id, parents before
// children.
var VersionedTables = []string{
	"agency",
	"stops",
	"routes",
	"calendar",
	"calendar_dates",
	"shapes",
	"trips",
	"stop_times",
	"fare_attributes",
	"feed_info",
}
