package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/transitfeed/pkg/gtfs/models"
)

type VersionChecker struct {
	db *DB
}

func NewVersionChecker(db *DB) *VersionChecker {
	return &VersionChecker{db: db}
}

func (vc *VersionChecker) GetActiveVersion(ctx context.Context) (*models.VersionInfo, error) {
	query := `
		SELECT version_id, version_name, created_at, updated_at, is_active, source_path, COALESCE(description, '')
		FROM gtfs.versions
		WHERE is_active = true
		LIMIT 1
	`

	var version models.VersionInfo
	err := vc.db.conn.QueryRowContext(ctx, query).Scan(
		&version.VersionID,
		&version.VersionName,
		&version.CreatedAt,
		&version.UpdatedAt,
		&version.IsActive,
		&version.SourcePath,
		&version.Description,
	)

	if errors.Is(err, sql.ErrNoRows) {
		vc.db.logger.Info("No active version found in database")
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying active version: %w", err)
	}

	vc.db.logger.Debug("Found active version",
		"version_id", version.VersionID,
		"version_name", version.VersionName,
		"updated_at", version.UpdatedAt)

	return &version, nil
}

// CreateVersion registers an inactive version inside tx and returns its id.
func (vc *VersionChecker) CreateVersion(ctx context.Context, tx *sql.Tx, versionName, sourcePath, description string) (int, error) {
	var versionID int
	query := `
		INSERT INTO gtfs.versions (version_name, source_path, is_active, description)
		VALUES ($1, $2, false, $3)
		RETURNING version_id
	`
	err := tx.QueryRowContext(ctx, query, versionName, sourcePath, description).Scan(&versionID)
	if err != nil {
		return 0, fmt.Errorf("creating version: %w", err)
	}

	vc.db.logger.Info("Created new version",
		"version_id", versionID,
		"version_name", versionName)

	return versionID, nil
}

// ActivateVersion makes versionID the only active version inside tx.
func (vc *VersionChecker) ActivateVersion(ctx context.Context, tx *sql.Tx, versionID int) error {
	_, err := tx.ExecContext(ctx, "UPDATE gtfs.versions SET is_active = false, updated_at = now() WHERE is_active = true")
	if err != nil {
		return fmt.Errorf("deactivating versions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "UPDATE gtfs.versions SET is_active = true, updated_at = now() WHERE version_id = $1", versionID)
	if err != nil {
		return fmt.Errorf("activating version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("version %d not found", versionID)
	}

	vc.db.logger.Info("Activated version", "version_id", versionID)
	return nil
}
