/*
Package gtfs loads a GTFS static feed into an immutable, identifier-keyed
object graph.

A feed can be read from a directory of .txt tables or from a zip archive,
optionally nested one folder deep inside the archive. Both produce the same
Feed:

	feed, err := gtfs.LoadPath("google_transit.zip")
	if err != nil {
	    log.Fatal(err)
	}

	trip, err := feed.GetTrip("trip1")
	days := feed.TripDays(trip.ServiceID, time.Now())

# References

Cross references (trip to route, stop to parent station, fare to agency, ...)
are stored as identifiers and resolved with the Get methods. A dangling
reference surfaces as a *NotFoundError from the lookup, never at load time.

# Concurrency

Loading is a single synchronous pass. The returned Feed is never mutated
afterwards and may be shared between goroutines without locking.
*/
package gtfs
