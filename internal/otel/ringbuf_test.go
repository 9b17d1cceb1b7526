package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func push(r *RingBuffer, kinds ...EventKind) {
	for i, k := range kinds {
		r.Push(Event{Kind: k, Count: i})
	}
}

func TestRingBufferEmpty(t *testing.T) {
	r := NewRingBuffer(4)
	assert.Nil(t, r.Snapshot())
	assert.Nil(t, r.Last(3))
	assert.Zero(t, r.Len())
	assert.Equal(t, 4, r.Cap())
	assert.Equal(t, DefaultRingSize, NewRingBuffer(0).Cap())
}

func TestRingBufferWraps(t *testing.T) {
	r := NewRingBuffer(3)
	push(r, KindHintsStart, KindHintsComplete, KindResolveStart, KindResolvePrune, KindResolveComplete)

	got := r.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{got[0].Count, got[1].Count, got[2].Count})
	assert.Equal(t, 3, r.Len())

	last := r.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, KindResolvePrune, last[0].Kind)
	assert.Equal(t, KindResolveComplete, last[1].Kind)
	assert.Len(t, r.Last(10), 3)
	assert.Nil(t, r.Last(0))
}

func TestRingBufferWhereAndStats(t *testing.T) {
	r := NewRingBuffer(8)
	push(r, KindHintsStart, KindHintsComplete, KindHintsStart, KindSearchStale)

	starts := r.Where(func(e Event) bool { return e.Kind == KindHintsStart })
	assert.Len(t, starts, 2)
	assert.Equal(t, map[EventKind]int{KindHintsStart: 2, KindHintsComplete: 1, KindSearchStale: 1}, r.Stats())
}

func TestRingBufferCopiesExtra(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"n": 1}
	r.Push(Event{Kind: KindResolvePrune, Extra: extra})
	extra["n"] = 2

	assert.Equal(t, 1, r.Snapshot()[0].Extra["n"])
}
