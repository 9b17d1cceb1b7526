package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisitor20/myreports/internal/otel"
)

const sampleLog = `{"t":"2026-03-01T10:00:00Z","level":"info","kind":"app.startup","comp":"ui"}
not json
{"t":"2026-03-01T10:00:01Z","level":"debug","kind":"hints.fetch","comp":"resolve","field":"contact","count":2,"dur_ms":12.5}

{"t":"2026-03-01T10:00:02Z","level":"error","kind":"hints.error","comp":"resolve","field":"partner","err":"boom"}
{"t":"2026-03-01T10:00:03Z","level":"warn","kind":"search.stale","comp":"search","field":"contact"}
`

func all(otel.Event) bool { return true }

func TestReadTailKeepsLastN(t *testing.T) {
	lines, err := readTail(strings.NewReader(sampleLog), 2, all)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, otel.EventKind("hints.error"), lines[0].ev.Kind)
	assert.Equal(t, otel.EventKind("search.stale"), lines[1].ev.Kind)
	assert.Contains(t, string(lines[1].raw), `"search.stale"`)
}

func TestReadTailUnlimited(t *testing.T) {
	lines, err := readTail(strings.NewReader(sampleLog), 0, all)
	require.NoError(t, err)
	assert.Len(t, lines, 4)
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name string
		f    eventFilter
		want int
	}{
		{"none", eventFilter{}, 4},
		{"kind prefix", eventFilter{kind: "hints"}, 2},
		{"min level", eventFilter{level: "warn"}, 2},
		{"comp", eventFilter{comp: "resolve"}, 2},
		{"field", eventFilter{field: "contact"}, 2},
		{"combined", eventFilter{kind: "hints", level: "error"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := readTail(strings.NewReader(sampleLog), 0, tt.f.match)
			require.NoError(t, err)
			assert.Len(t, lines, tt.want)
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ev := otel.Event{
		Time:  time.Date(2026, 3, 1, 10, 0, 1, 500_000_000, time.UTC),
		Level: otel.LevelWarn,
		Kind:  "hints.fetch",
		Comp:  "resolve",
		Field: "contact",
		Msg:   "slow",
		DurMs: 12.5,
		Count: 3,
		Err:   "timeout",
	}
	got := formatEvent(ev)
	assert.True(t, strings.HasPrefix(got, "10:00:01.500 WARN  [resolve]"), got)
	for _, want := range []string{"field=contact", "slow", "(12.5ms)", "n=3", "err=timeout"} {
		assert.Contains(t, got, want)
	}

	bare := formatEvent(otel.Event{Kind: "x"})
	assert.Contains(t, bare, " ? ")
	assert.NotContains(t, bare, "n=")
}

func TestDurPrecision(t *testing.T) {
	assert.Equal(t, 0, durPrecision(250))
	assert.Equal(t, 1, durPrecision(12.5))
	assert.Equal(t, 2, durPrecision(0.25))
}
