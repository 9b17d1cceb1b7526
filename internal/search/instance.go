// Package search implements the keyed "type, load candidates, pick one"
// state machine shared by hint pickers, tag pickers and typeahead controls.
//
// Every lookup is tagged with a caller-minted loading id. Results are only
// accepted when their id matches the one the instance recorded when the
// lookup started, so a slow response to an older query can never overwrite
// a newer one.
package search

import (
	"github.com/supervisitor20/myreports/internal/ids"
	"github.com/supervisitor20/myreports/internal/model"
)

// Phase is the lifecycle position of an Instance.
type Phase int

const (
	PhaseReset Phase = iota
	PhasePreloading
	PhaseLoading
	PhaseReceived
	PhaseSelected
)

func (p Phase) String() string {
	switch p {
	case PhaseReset:
		return "reset"
	case PhasePreloading:
		return "preloading"
	case PhaseLoading:
		return "loading"
	case PhaseReceived:
		return "received"
	case PhaseSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// NoActive means no result is highlighted.
const NoActive = -1

// Instance is the state of one search control.
type Instance struct {
	Phase        Phase
	SearchString string
	Results      []model.Item
	Selected     *model.Item
	ActiveIndex  int
	LoadingID    string
	Err          error
}

// NewInstance returns an instance in the reset phase.
func NewInstance() Instance {
	return Instance{Phase: PhaseReset, ActiveIndex: NoActive}
}

// Active returns the highlighted result, if any.
func (i Instance) Active() (model.Item, bool) {
	if i.ActiveIndex < 0 || i.ActiveIndex >= len(i.Results) {
		return model.Item{}, false
	}
	return i.Results[i.ActiveIndex], true
}

// Instances holds independent instances keyed by id.
type Instances map[string]Instance

// Get returns the instance for id, or a fresh one if it was never used.
func (in Instances) Get(id string) Instance {
	if inst, ok := in[id]; ok {
		return inst
	}
	return NewInstance()
}

// IsStale reports whether r would be discarded by Reduce.
func (in Instances) IsStale(r ResultsReceived) bool {
	inst := in.Get(r.ID)
	return inst.LoadingID == "" || inst.LoadingID != r.LoadingID
}

func (in Instances) with(id string, inst Instance) Instances {
	out := make(Instances, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	out[id] = inst
	return out
}

// Action is a dispatchable instance transition.
type Action interface {
	apply(Instances) Instances
}

// Reduce applies a to in and returns the new map. in is not modified.
func Reduce(in Instances, a Action) Instances {
	if in == nil {
		in = Instances{}
	}
	if a == nil {
		return in
	}
	return a.apply(in)
}

// Reset returns the instance to its initial state from any phase.
type Reset struct{ ID string }

// Preload buffers typed text without starting a lookup.
type Preload struct {
	ID           string
	SearchString string
}

// Start records the loading id of a lookup that is about to be issued.
type Start struct {
	ID        string
	LoadingID string
}

// NewStart mints a loading id for instance id.
func NewStart(id string, gen ids.Generator) Start {
	return Start{ID: id, LoadingID: gen.Next()}
}

// ResultsReceived delivers the outcome of a lookup tagged with its loading id.
type ResultsReceived struct {
	ID        string
	LoadingID string
	Results   []model.Item
	Err       error
}

// Select records the user's pick.
type Select struct {
	ID   string
	Item model.Item
}

// MoveActive shifts the highlight by Delta.
type MoveActive struct {
	ID    string
	Delta int
}

// SetActive highlights the result at Index.
type SetActive struct {
	ID    string
	Index int
}

func (a Reset) apply(in Instances) Instances {
	return in.with(a.ID, NewInstance())
}

func (a Preload) apply(in Instances) Instances {
	inst := in.Get(a.ID)
	inst.Phase = PhasePreloading
	inst.SearchString = a.SearchString
	return in.with(a.ID, inst)
}

func (a Start) apply(in Instances) Instances {
	inst := in.Get(a.ID)
	inst.Phase = PhaseLoading
	inst.LoadingID = a.LoadingID
	inst.Err = nil
	return in.with(a.ID, inst)
}

func (a ResultsReceived) apply(in Instances) Instances {
	if in.IsStale(a) {
		return in
	}
	inst := in.Get(a.ID)
	inst.Phase = PhaseReceived
	inst.Results = a.Results
	inst.Err = a.Err
	inst.ActiveIndex = NoActive
	return in.with(a.ID, inst)
}

func (a Select) apply(in Instances) Instances {
	inst := in.Get(a.ID)
	picked := a.Item
	inst.Phase = PhaseSelected
	inst.Selected = &picked
	inst.SearchString = picked.Display
	return in.with(a.ID, inst)
}

func (a MoveActive) apply(in Instances) Instances {
	inst := in.Get(a.ID)
	base := inst.ActiveIndex
	if base == NoActive {
		if a.Delta < 0 {
			base = len(inst.Results)
		} else {
			base = -1
		}
	}
	inst.ActiveIndex = clampActive(base+a.Delta, len(inst.Results))
	return in.with(a.ID, inst)
}

func (a SetActive) apply(in Instances) Instances {
	inst := in.Get(a.ID)
	inst.ActiveIndex = clampActive(a.Index, len(inst.Results))
	return in.with(a.ID, inst)
}

func clampActive(index, n int) int {
	if n == 0 {
		return NoActive
	}
	if index < 0 {
		return 0
	}
	if index > n-1 {
		return n - 1
	}
	return index
}
