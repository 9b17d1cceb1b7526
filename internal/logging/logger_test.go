package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputCapturesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	t.Cleanup(Discard)

	Warn("unrecognized filter shape", "field", "tags")
	Debug("hint fetch", "field", "contact")

	out := buf.String()
	assert.Contains(t, out, "unrecognized filter shape")
	assert.Contains(t, out, "field=tags")
	assert.Contains(t, out, "hint fetch")
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	t.Cleanup(Discard)

	Info("hidden")
	Error("shown", "err", "boom")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNilLoggerIsNoop(t *testing.T) {
	Logger = nil
	t.Cleanup(Discard)

	assert.NotPanics(t, func() {
		Info("x")
		Debug("x")
		Warn("x")
		Error("x")
	})
	assert.NotNil(t, WithPrefix("resolve"))
}

func TestInitWritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, "info"))
	Info("hello")
	Close()
	t.Cleanup(Discard)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
