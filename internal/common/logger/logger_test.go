package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Info("GTFS feed loaded", "stops", 5, "path", "/data/gtfs.zip")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GTFS feed loaded", entry["message"])
	assert.Equal(t, float64(5), entry["stops"])
	assert.Equal(t, "/data/gtfs.zip", entry["path"])
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Error("Export failed", "error", errors.New("connection refused"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "connection refused", entry[zerolog.ErrorFieldName])
}

func TestMapFields(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Warn("Orphans", map[string]interface{}{"count": 2})

	entry := decodeLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(2), entry["count"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewFromConfig(LoggerConfig{Level: zerolog.WarnLevel})
	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log = newWithLevel(zerolog.WarnLevel, &buf)
	log.Debug("dropped")
	log.Info("dropped")
	assert.Zero(t, buf.Len())
	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLogLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel("verbose"))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("nothing", "key", "value")
		Nop().Error("nothing", "error", errors.New("x"))
	})
}

type recordedAlert struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type fakeAlerter struct {
	alerts []recordedAlert
	err    error
}

func (f *fakeAlerter) SendLogMessage(level, message string, fields map[string]interface{}) error {
	f.alerts = append(f.alerts, recordedAlert{level: level, msg: message, fields: fields})
	return f.err
}

func TestAlerterReceivesErrors(t *testing.T) {
	alerter := &fakeAlerter{}
	log := NewFromConfig(LoggerConfig{Level: zerolog.InfoLevel, Alerter: alerter})

	log.Info("not forwarded")
	log.Warn("not forwarded either")
	log.Error("Export failed", "error", errors.New("connection refused"), "version", "0.3")

	require.Len(t, alerter.alerts, 1)
	got := alerter.alerts[0]
	assert.Equal(t, "ERROR", got.level)
	assert.Equal(t, "Export failed", got.msg)
	assert.Equal(t, map[string]interface{}{"error": "connection refused", "version": "0.3"}, got.fields)
}

func TestAlerterFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	l := newWithLevel(zerolog.InfoLevel, &buf)
	l.alerter = &fakeAlerter{err: errors.New("webhook down")}

	l.alert("ERROR", "boom", nil)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "Failed to send alert", entry["message"])
	assert.Equal(t, "webhook down", entry[zerolog.ErrorFieldName])
}
