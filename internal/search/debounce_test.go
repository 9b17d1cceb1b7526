package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisitor20/myreports/internal/model"
)

// manualClock records scheduled callbacks and fires them on demand.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every timer that has not been stopped.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.f()
		}
	}
}

func TestDebouncerKeepsLastTrigger(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(300*time.Millisecond, clock.AfterFunc)

	var got []string
	d.Trigger("partner", func() { got = append(got, "a") })
	d.Trigger("partner", func() { got = append(got, "ab") })
	d.Trigger("partner", func() { got = append(got, "abc") })
	assert.True(t, d.Pending("partner"))

	clock.fireAll()

	assert.Equal(t, []string{"abc"}, got)
	assert.False(t, d.Pending("partner"))
	assert.Len(t, clock.timers, 3)
}

func TestDebouncerSlotsPerInstance(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)

	fired := map[string]int{}
	d.Trigger("partner", func() { fired["partner"]++ })
	d.Trigger("contact", func() { fired["contact"]++ })

	assert.True(t, d.Cancel("contact"))
	assert.False(t, d.Cancel("contact"))
	clock.fireAll()

	assert.Equal(t, map[string]int{"partner": 1}, fired)
}

func TestDebouncerReplacedTimerThatFiresLate(t *testing.T) {
	// A timer whose Stop loses the race still must not run its callback.
	var late func()
	calls := 0
	after := func(_ time.Duration, f func()) Timer {
		if late == nil {
			late = f
		}
		return &manualTimer{f: f}
	}
	d := NewDebouncer(time.Second, after)
	d.Trigger("p", func() { calls++ })
	d.Trigger("p", func() { calls += 10 })

	late()
	assert.Equal(t, 0, calls)
	assert.True(t, d.Pending("p"))
}

func TestDebouncerStop(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)
	calls := 0
	d.Trigger("a", func() { calls++ })
	d.Trigger("b", func() { calls++ })

	d.Stop()
	clock.fireAll()

	assert.Equal(t, 0, calls)
	assert.False(t, d.Pending("a"))
}

// immediateTimer fires as soon as it is scheduled.
type immediateTimer struct{}

func (immediateTimer) Stop() bool { return false }

func TestDebouncerSynchronousAfterFunc(t *testing.T) {
	immediate := func(_ time.Duration, f func()) Timer {
		f()
		return immediateTimer{}
	}
	d := NewDebouncer(time.Second, immediate)

	calls := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Trigger("p", func() { calls++ })
		d.Trigger("p", func() { calls++ })
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Trigger blocked on a synchronous AfterFunc")
	}

	assert.Equal(t, 2, calls)
	assert.False(t, d.Pending("p"))
	assert.False(t, d.Cancel("p"))
}

func TestDebouncerRealClock(t *testing.T) {
	d := NewDebouncer(5*time.Millisecond, nil)
	done := make(chan struct{})
	d.Trigger("p", func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback never fired")
	}
}

func TestFetch(t *testing.T) {
	ok := SearchFunc(func(_ context.Context, q string) ([]model.Item, error) {
		return []model.Item{{Value: q, Display: q}}, nil
	})
	r := Fetch(context.Background(), "p", "7", "acme", ok)
	require.NoError(t, r.Err)
	assert.Equal(t, "p", r.ID)
	assert.Equal(t, "7", r.LoadingID)
	assert.Equal(t, []model.Item{{Value: "acme", Display: "acme"}}, r.Results)

	empty := Fetch(context.Background(), "p", "8", "", SearchFunc(func(context.Context, string) ([]model.Item, error) {
		return nil, nil
	}))
	assert.NotNil(t, empty.Results)

	boom := errors.New("boom")
	failed := Fetch(context.Background(), "p", "9", "x", SearchFunc(func(context.Context, string) ([]model.Item, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, failed.Err, boom)
	assert.Equal(t, "9", failed.LoadingID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cancelled := Fetch(ctx, "p", "10", "x", ok)
	assert.ErrorIs(t, cancelled.Err, context.Canceled)
}
