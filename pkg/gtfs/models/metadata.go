package models

import "time"

// VersionInfo describes one exported snapshot of a feed.
type VersionInfo struct {
	VersionID   int
	VersionName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsActive    bool
	SourcePath  string
	Description string
}
