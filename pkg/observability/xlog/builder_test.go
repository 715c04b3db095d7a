package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	logger, cleanup, err := New().Build()
	require.NoError(t, err)
	defer cleanup() //nolint:errcheck // 测试清理

	assert.Equal(t, LevelInfo, logger.GetLevel())
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
}

func TestBuilder_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New().SetOutput(&buf).SetFormat("JSON").Build()
	require.NoError(t, err)

	logger.Warn(context.Background(), "exporter failed",
		Component("xexport"), Operation("Checkout"), Err(errors.New("boom")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "exporter failed", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "xexport", rec[KeyComponent])
	assert.Equal(t, "Checkout", rec[KeyOperation])
	assert.Equal(t, "boom", rec[KeyError])
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, _, err := New().SetFormat("xml").SetLevelString("nope").Build()
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, _, err = New().SetLevelString("nope").Build()
	assert.ErrorIs(t, err, ErrUnknownLevel)

	_, _, err = New().SetOutput(nil).Build()
	assert.ErrorIs(t, err, ErrNilOutput)

	_, _, err = New().SetRotation(" ", RotationOptions{}).Build()
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestBuilder_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf.log")
	logger, cleanup, err := New().SetRotation(path, RotationOptions{MaxSizeMB: 1}).Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "snapshot")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "snapshot")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLogger_OnError(t *testing.T) {
	var got error
	logger, _, err := New().
		SetOutput(failingWriter{}).
		SetOnError(func(err error) { got = err }).
		Build()
	require.NoError(t, err)

	logger.Error(context.Background(), "x")
	require.Error(t, got)
	assert.Equal(t, uint64(1), logger.(*xlogger).ErrorCount())
}

func TestLogger_OnErrorPanicIsolated(t *testing.T) {
	logger, _, err := New().
		SetOutput(failingWriter{}).
		SetOnError(func(error) { panic("callback") }).
		Build()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		logger.Error(context.Background(), "x")
	})
	assert.Equal(t, uint64(2), logger.(*xlogger).ErrorCount())
}
