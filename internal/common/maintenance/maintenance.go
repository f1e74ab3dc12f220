package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/transitfeed/internal/common/db"
	"github.com/transitfeed/internal/common/logger"
)

// VersionCleanupResult describes one pruned feed version.
type VersionCleanupResult struct {
	VersionID      int
	VersionName    string
	RecordsDeleted int64
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Maintenance handles database cleanup after imports
type Maintenance struct {
	db     *db.DB
	logger logger.Logger
}

func New(database *db.DB, logger logger.Logger) *Maintenance {
	return &Maintenance{
		db:     database,
		logger: logger,
	}
}

const staleVersionsQuery = `
	SELECT version_id, version_name
	FROM gtfs.versions
	WHERE is_active = false
	ORDER BY created_at DESC, version_id DESC
	OFFSET $1
`

// PruneVersions removes inactive feed versions, keeping the active one and
// the keepInactive most recent inactive ones.
func (m *Maintenance) PruneVersions(ctx context.Context, keepInactive int) ([]VersionCleanupResult, error) {
	if keepInactive < 0 {
		return nil, fmt.Errorf("keepInactive must be >= 0, got %d", keepInactive)
	}
	m.logger.Info("Starting cleanup of old GTFS versions", "keep_inactive_versions", keepInactive)

	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stale, err := staleVersions(ctx, tx, keepInactive)
	if err != nil {
		return nil, err
	}

	results := make([]VersionCleanupResult, 0, len(stale))
	for _, v := range stale {
		deleted, err := deleteVersion(ctx, tx, v.VersionID)
		if err != nil {
			return nil, err
		}
		v.RecordsDeleted = deleted
		results = append(results, v)
		m.logger.Info("Cleaned up GTFS version",
			"version_id", v.VersionID,
			"version_name", v.VersionName,
			"records_deleted", deleted)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	if len(results) > 0 {
		if err := m.VacuumTables(ctx); err != nil {
			m.logger.Warn("Failed to vacuum GTFS tables after cleanup", "error", err)
		}
	}
	return results, nil
}

func staleVersions(ctx context.Context, tx *sql.Tx, keepInactive int) ([]VersionCleanupResult, error) {
	rows, err := tx.QueryContext(ctx, staleVersionsQuery, keepInactive)
	if err != nil {
		return nil, fmt.Errorf("listing inactive versions: %w", err)
	}
	defer rows.Close()

	var out []VersionCleanupResult
	for rows.Next() {
		var v VersionCleanupResult
		if err := rows.Scan(&v.VersionID, &v.VersionName); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return out, nil
}

// deleteVersion removes every row of versionID, children first, then the
// version itself. It returns the number of feed rows removed.
func deleteVersion(ctx context.Context, tx execer, versionID int) (int64, error) {
	var total int64
	for _, table := range slices.Backward(db.VersionedTables) {
		res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM gtfs.%s WHERE version_id = $1", table), versionID)
		if err != nil {
			return 0, fmt.Errorf("deleting version %d from %s: %w", versionID, table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("getting rows affected: %w", err)
		}
		total += n
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM gtfs.versions WHERE version_id = $1", versionID); err != nil {
		return 0, fmt.Errorf("deleting version %d: %w", versionID, err)
	}
	return total, nil
}

// VacuumTables runs VACUUM ANALYZE on the feed tables. It must not run
// inside a transaction.
func (m *Maintenance) VacuumTables(ctx context.Context) error {
	m.logger.Info("Starting VACUUM ANALYZE of GTFS tables")

	failed := 0
	for _, table := range append(slices.Clone(db.VersionedTables), "versions") {
		if _, err := m.db.DB().ExecContext(ctx, "VACUUM ANALYZE gtfs."+table); err != nil {
			failed++
			m.logger.Error("Failed to vacuum table", "table", table, "error", err)
			continue
		}
		m.logger.Debug("Vacuumed table successfully", "table", table)
	}

	if failed > 0 {
		return fmt.Errorf("vacuum failed for %d out of %d tables", failed, len(db.VersionedTables)+1)
	}
	return nil
}
