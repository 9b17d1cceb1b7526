package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/supervisitor20/myreports/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	assert.Empty(t, debugOverlay(nil, 80, 24))
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	now := time.Now()
	ring.Push(otel.Event{Kind: otel.KindHintsComplete, Time: now})
	ring.Push(otel.Event{Kind: otel.KindHintsComplete, Time: now})
	ring.Push(otel.Event{Kind: otel.KindHintsError, Time: now})
	ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: now})
	ring.Push(otel.Event{Kind: otel.KindSearchStale, Time: now})

	result := debugOverlay(ring, 80, 40)

	assert.Contains(t, result, "Activity")
	assert.Contains(t, result, "2 complete, 1 errors")
	assert.Contains(t, result, "1 started, 1 stale")
	assert.Contains(t, result, "5 / 64 events")
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindHintsStart, Time: time.Now(), Field: "contact", Msg: "hello world"})
	ring.Push(otel.Event{Kind: otel.KindHintsError, Time: time.Now(), Err: "timeout"})
	ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: time.Now(), LoadingID: "abcdef1234567890"})

	result := debugOverlay(ring, 80, 40)

	assert.Contains(t, result, "Recent Events")
	assert.Contains(t, result, "contact")
	assert.Contains(t, result, "hello world")
	assert.Contains(t, result, "ERR:timeout")
	assert.Contains(t, result, "lid:abcdef12")
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindHintsStart, Time: time.Now()})
	}

	result := debugOverlay(ring, 80, 10)
	assert.NotEmpty(t, result)
	// 6 content lines, 2 border lines, 2 padding lines.
	assert.LessOrEqual(t, strings.Count(result, "\n")+1, 10)
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "0ms", formatAge(-time.Second))
	assert.Equal(t, "250ms", formatAge(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatAge(1500*time.Millisecond))
	assert.Equal(t, "3m", formatAge(3*time.Minute))
}
