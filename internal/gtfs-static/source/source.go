// Package source exposes GTFS tables as named byte streams, independent of
// whether the feed is a directory or a zip archive.
package source

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/transitfeed/pkg/gtfs/models"
)

// TableSource opens logical tables by name. Open returns an error satisfying
// errors.Is(err, fs.ErrNotExist) when the table is absent from the feed.
type TableSource interface {
	Open(table models.Table) (io.ReadCloser, error)
	Close() error
}

type fsSource struct {
	fsys   fs.FS
	root   string
	closer io.Closer
}

// New wraps an arbitrary fs.FS whose root holds the feed tables.
func New(fsys fs.FS) TableSource {
	return &fsSource{fsys: fsys, root: "."}
}

// OpenDirectory returns a source reading tables from the files in dir.
func OpenDirectory(dir string) (TableSource, error) {
	stat, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening feed directory: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("opening feed directory: %s is not a directory", dir)
	}
	return &fsSource{fsys: os.DirFS(dir), root: "."}, nil
}

// OpenArchive returns a source reading tables from a zip archive. When the
// archive keeps its tables inside a single top-level folder, that folder is
// used as the root.
func OpenArchive(zipPath string) (TableSource, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("opening zip file: %w", err)
	}

	root, err := FindRoot(reader)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("locating feed root in %s: %w", zipPath, err)
	}

	return &fsSource{fsys: reader, root: root, closer: reader}, nil
}

// Open picks OpenDirectory or OpenArchive depending on what p points at.
func Open(p string) (TableSource, error) {
	stat, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	if stat.IsDir() {
		return OpenDirectory(p)
	}
	return OpenArchive(p)
}

func (s *fsSource) Open(table models.Table) (io.ReadCloser, error) {
	f, err := s.fsys.Open(path.Join(s.root, string(table)))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", table, err)
	}
	return f, nil
}

func (s *fsSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// FindRoot returns "." if any known table sits at the top of fsys, otherwise
// the single top-level directory that holds the tables. Archives created by
// zipping a folder usually have that shape.
func FindRoot(fsys fs.FS) (string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			if isTable(entry.Name()) {
				return ".", nil
			}
			continue
		}
		if ignoredDir(entry.Name()) {
			continue
		}
		dirs = append(dirs, entry.Name())
	}

	if len(dirs) != 1 {
		return ".", nil
	}

	sub, err := fs.ReadDir(fsys, dirs[0])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ".", nil
		}
		return "", err
	}
	for _, entry := range sub {
		if !entry.IsDir() && isTable(entry.Name()) {
			return dirs[0], nil
		}
	}
	return ".", nil
}

func isTable(name string) bool {
	for _, t := range models.Tables {
		if string(t) == name {
			return true
		}
	}
	return false
}

// ignoredDir filters folders added by archiving tools, such as __MACOSX.
func ignoredDir(name string) bool {
	return strings.HasPrefix(name, "__") || strings.HasPrefix(name, ".")
}
