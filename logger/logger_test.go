package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFieldsEmitsStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := UseCore(core)
	defer restore()

	WithFields(map[string]interface{}{
		"license_id": "ABC-1",
		"count":      2,
	}).Warn("quota drift: %d", 1)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "quota drift: 1", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "ABC-1", fields["license_id"])
	assert.EqualValues(t, 2, fields["count"])
}

func TestPackageHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := UseCore(core)
	defer restore()

	Debug("hidden")
	Info("server started on %s", ":8080")
	Error("boom")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "server started on :8080", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, WARN, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, "error", ERROR.String())
}

func TestInitializeWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Config{Level: DEBUG, LogDir: dir, MaxAge: 7}))
	t.Cleanup(func() { replace(newConsoleLogger()) })

	Info("hello file")
	require.NoError(t, current().sink.Sync())

	name := filepath.Join(dir, "server-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")

	SetLevel(ERROR)
	assert.Equal(t, ERROR, GetLevel())
}

func TestFileSinkRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	sink, err := openFileSink(dir, 16, 0)
	require.NoError(t, err)
	defer sink.Close()

	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return day }
	// force the sink onto the fixed day
	sink.mu.Lock()
	require.NoError(t, sink.rotate())
	sink.mu.Unlock()

	_, err = sink.Write([]byte("0123456789\n"))
	require.NoError(t, err)
	day = day.Add(time.Second)
	_, err = sink.Write([]byte("abcdefghij\n"))
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "server-2026-03-01*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	active, err := os.ReadFile(filepath.Join(dir, "server-2026-03-01.log"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(active), "abcdefghij"))
}

func TestFileSinkPrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "server-2020-01-01.log")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0644))
	past := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	sink, err := openFileSink(dir, 0, 3)
	require.NoError(t, err)
	defer sink.Close()

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}
