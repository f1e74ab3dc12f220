package gtfs

import (
	"fmt"
	"time"

	"github.com/transitfeed/internal/common/logger"
	"github.com/transitfeed/internal/gtfs-static/parser"
	"github.com/transitfeed/internal/gtfs-static/source"
)

// Loader assembles feeds. The zero value is not usable; use NewLoader.
type Loader struct {
	parser *parser.Parser
	logger logger.Logger
}

func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{parser: parser.New(log), logger: log}
}

// LoadDirectory loads a feed stored as plain files in dir.
func (l *Loader) LoadDirectory(dir string) (*Feed, error) {
	src, err := source.OpenDirectory(dir)
	if err != nil {
		return nil, err
	}
	return l.loadAndClose(src, dir)
}

// LoadArchive loads a feed stored in a zip archive.
func (l *Loader) LoadArchive(zipPath string) (*Feed, error) {
	src, err := source.OpenArchive(zipPath)
	if err != nil {
		return nil, err
	}
	return l.loadAndClose(src, zipPath)
}

// LoadPath dispatches on whether p is a directory or an archive.
func (l *Loader) LoadPath(p string) (*Feed, error) {
	src, err := source.Open(p)
	if err != nil {
		return nil, err
	}
	return l.loadAndClose(src, p)
}

// Load reads every table from src and links the result. The caller keeps
// ownership of src.
func (l *Loader) Load(src source.TableSource) (*Feed, error) {
	start := time.Now()

	records, err := l.parser.ParseFeed(src)
	if err != nil {
		return nil, err
	}

	feed, err := link(records, l.logger)
	if err != nil {
		return nil, fmt.Errorf("linking feed: %w", err)
	}

	c := feed.Counts()
	l.logger.Info("GTFS feed loaded",
		"agencies", c.Agencies,
		"stops", c.Stops,
		"routes", c.Routes,
		"trips", c.Trips,
		"stop_times", c.StopTimes,
		"services", c.Calendars,
		"shapes", c.Shapes,
		"fares", c.FareAttributes,
		"duration", time.Since(start).String())

	return feed, nil
}

func (l *Loader) loadAndClose(src source.TableSource, p string) (feed *Feed, err error) {
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			feed, err = nil, fmt.Errorf("closing %s: %w", p, cerr)
		}
	}()

	l.logger.Debug("Loading GTFS feed", "path", p)
	feed, err = l.Load(src)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", p, err)
	}
	return feed, nil
}

// LoadDirectory loads a feed from a directory without logging.
func LoadDirectory(dir string) (*Feed, error) {
	return NewLoader(nil).LoadDirectory(dir)
}

// LoadArchive loads a feed from a zip archive without logging.
func LoadArchive(zipPath string) (*Feed, error) {
	return NewLoader(nil).LoadArchive(zipPath)
}

// LoadPath loads a feed from a directory or a zip archive without logging.
func LoadPath(p string) (*Feed, error) {
	return NewLoader(nil).LoadPath(p)
}
