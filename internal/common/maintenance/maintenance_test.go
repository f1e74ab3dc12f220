package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowsResult int64

func (r rowsResult) LastInsertId() (int64, error) { return 0, errors.New("not supported") }
func (r rowsResult) RowsAffected() (int64, error) { return int64(r), nil }

type recordingExecer struct {
	queries []string
	failOn  string
}

func (e *recordingExecer) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	if e.failOn != "" && query == e.failOn {
		return nil, errors.New("permission denied")
	}
	e.queries = append(e.queries, query)
	return rowsResult(3), nil
}

func TestDeleteVersionOrder(t *testing.T) {
	exec := &recordingExecer{}
	deleted, err := deleteVersion(context.Background(), exec, 4)
	require.NoError(t, err)

	require.Len(t, exec.queries, 11)
	assert.Equal(t, "DELETE FROM gtfs.feed_info WHERE version_id = $1", exec.queries[0])
	assert.Equal(t, "DELETE FROM gtfs.agency WHERE version_id = $1", exec.queries[9])
	assert.Equal(t, "DELETE FROM gtfs.versions WHERE version_id = $1", exec.queries[10])
	assert.Equal(t, int64(30), deleted)
}

func TestDeleteVersionStopsOnError(t *testing.T) {
	exec := &recordingExecer{failOn: "DELETE FROM gtfs.trips WHERE version_id = $1"}
	_, err := deleteVersion(context.Background(), exec, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trips")
	assert.NotContains(t, exec.queries, "DELETE FROM gtfs.versions WHERE version_id = $1")
}

func TestPruneVersionsRejectsNegativeKeep(t *testing.T) {
	m := &Maintenance{}
	_, err := m.PruneVersions(context.Background(), -1)
	assert.Error(t, err)
}
