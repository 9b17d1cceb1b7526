package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisitor20/myreports/internal/ids"
	"github.com/supervisitor20/myreports/internal/model"
)

var threeResults = []model.Item{
	{Value: 1, Display: "Acme"},
	{Value: 2, Display: "Globex"},
	{Value: 3, Display: "Initech"},
}

func TestLifecycle(t *testing.T) {
	gen := ids.NewSequence("load-")
	in := Instances{}

	in = Reduce(in, Preload{ID: "partner", SearchString: "ac"})
	assert.Equal(t, PhasePreloading, in.Get("partner").Phase)
	assert.Equal(t, "ac", in.Get("partner").SearchString)

	start := NewStart("partner", gen)
	in = Reduce(in, start)
	assert.Equal(t, PhaseLoading, in.Get("partner").Phase)
	assert.Equal(t, "load-1", in.Get("partner").LoadingID)

	in = Reduce(in, ResultsReceived{ID: "partner", LoadingID: "load-1", Results: threeResults})
	got := in.Get("partner")
	assert.Equal(t, PhaseReceived, got.Phase)
	assert.Equal(t, threeResults, got.Results)
	assert.Equal(t, NoActive, got.ActiveIndex)

	in = Reduce(in, Select{ID: "partner", Item: threeResults[1]})
	got = in.Get("partner")
	assert.Equal(t, PhaseSelected, got.Phase)
	require.NotNil(t, got.Selected)
	assert.Equal(t, threeResults[1], *got.Selected)
	assert.Equal(t, "Globex", got.SearchString)

	in = Reduce(in, Reset{ID: "partner"})
	_, kept := in["partner"]
	assert.True(t, kept, "reset keeps the instance")
	assert.Equal(t, NewInstance(), in.Get("partner"))
}

func TestStaleResultsAreIgnored(t *testing.T) {
	in := Reduce(Instances{}, Start{ID: "contact", LoadingID: "a"})
	in = Reduce(in, Start{ID: "contact", LoadingID: "b"})

	stale := ResultsReceived{ID: "contact", LoadingID: "a", Results: threeResults}
	assert.True(t, in.IsStale(stale))

	after := Reduce(in, stale)
	assert.Equal(t, in, after)
	assert.Equal(t, PhaseLoading, after.Get("contact").Phase)

	fresh := Reduce(after, ResultsReceived{ID: "contact", LoadingID: "b", Results: threeResults[:1]})
	assert.Equal(t, PhaseReceived, fresh.Get("contact").Phase)
	assert.Len(t, fresh.Get("contact").Results, 1)
}

func TestResultsAfterResetAreIgnored(t *testing.T) {
	in := Reduce(Instances{}, Start{ID: "tags", LoadingID: "a"})
	in = Reduce(in, Reset{ID: "tags"})

	after := Reduce(in, ResultsReceived{ID: "tags", LoadingID: "a", Results: threeResults})
	assert.Equal(t, PhaseReset, after.Get("tags").Phase)
	assert.Empty(t, after.Get("tags").Results)

	// Never-started instances accept nothing either.
	none := Reduce(Instances{}, ResultsReceived{ID: "other", LoadingID: ""})
	assert.Empty(t, none)
}

func TestInstancesAreIndependent(t *testing.T) {
	in := Reduce(Instances{}, Start{ID: "partner", LoadingID: "1"})
	in = Reduce(in, Preload{ID: "contact", SearchString: "bo"})
	in = Reduce(in, ResultsReceived{ID: "partner", LoadingID: "1", Results: threeResults})

	assert.Equal(t, PhaseReceived, in.Get("partner").Phase)
	assert.Equal(t, PhasePreloading, in.Get("contact").Phase)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	in := Instances{}
	out := Reduce(in, Preload{ID: "x", SearchString: "q"})
	assert.Empty(t, in)
	assert.Len(t, out, 1)
}

func TestErrorIsCarried(t *testing.T) {
	in := Reduce(Instances{}, Start{ID: "p", LoadingID: "1"})
	in = Reduce(in, ResultsReceived{ID: "p", LoadingID: "1", Err: assert.AnError})
	assert.Equal(t, PhaseReceived, in.Get("p").Phase)
	assert.ErrorIs(t, in.Get("p").Err, assert.AnError)

	in = Reduce(in, Start{ID: "p", LoadingID: "2"})
	assert.NoError(t, in.Get("p").Err)
}

func TestActiveIndexClamping(t *testing.T) {
	in := Reduce(Instances{}, Start{ID: "p", LoadingID: "1"})
	in = Reduce(in, ResultsReceived{ID: "p", LoadingID: "1", Results: threeResults})

	tests := []struct {
		name   string
		action Action
		want   int
	}{
		{"first move down", MoveActive{ID: "p", Delta: 1}, 0},
		{"first move up", MoveActive{ID: "p", Delta: -1}, 2},
		{"set in range", SetActive{ID: "p", Index: 1}, 1},
		{"set past end", SetActive{ID: "p", Index: 10}, 2},
		{"set negative", SetActive{ID: "p", Index: -4}, 0},
		{"big jump", MoveActive{ID: "p", Delta: 50}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(in, tt.action).Get("p").ActiveIndex
			assert.Equal(t, tt.want, got)
		})
	}

	moved := Reduce(in, SetActive{ID: "p", Index: 2})
	moved = Reduce(moved, MoveActive{ID: "p", Delta: -1})
	assert.Equal(t, 1, moved.Get("p").ActiveIndex)
	active, ok := moved.Get("p").Active()
	require.True(t, ok)
	assert.Equal(t, "Globex", active.Display)
}

func TestActiveIndexWithNoResults(t *testing.T) {
	in := Reduce(Instances{}, Start{ID: "p", LoadingID: "1"})
	in = Reduce(in, ResultsReceived{ID: "p", LoadingID: "1", Results: []model.Item{}})

	for _, a := range []Action{MoveActive{ID: "p", Delta: 1}, MoveActive{ID: "p", Delta: -3}, SetActive{ID: "p", Index: 0}} {
		assert.Equal(t, NoActive, Reduce(in, a).Get("p").ActiveIndex)
	}
	_, ok := in.Get("p").Active()
	assert.False(t, ok)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "loading", PhaseLoading.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
