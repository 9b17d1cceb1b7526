// Package app owns the single filter state and search instance map shared by
// the resolver, the prefetcher and the UI.
package app

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/logging"
	"github.com/supervisitor20/myreports/internal/otel"
	"github.com/supervisitor20/myreports/internal/search"
)

// Store serialises every dispatch. Reducers never mutate their input, so the
// snapshots returned by Filter and Search may be read without locking.
type Store struct {
	mu        sync.Mutex
	state     filter.State
	instances search.Instances

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int

	events *otel.Logger
	log    *log.Logger
}

// NewStore returns a store with no report started. events may be nil.
func NewStore(events *otel.Logger) *Store {
	return &Store{
		state:     filter.NewState(),
		instances: search.Instances{},
		subs:      make(map[int]func()),
		events:    events,
		log:       logging.WithPrefix("store"),
	}
}

// Filter returns the current filter state.
func (s *Store) Filter() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a filter action and notifies subscribers.
func (s *Store) Dispatch(a filter.Action) {
	s.mu.Lock()
	s.state = filter.Reduce(s.state, a)
	s.mu.Unlock()
	s.notify()
}

// Search returns the current search instances.
func (s *Store) Search() search.Instances {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instances
}

// Instance returns one search instance.
func (s *Store) Instance(id string) search.Instance {
	return s.Search().Get(id)
}

// DispatchSearch applies a search action. Stale results are dropped and
// reported at debug level.
func (s *Store) DispatchSearch(a search.Action) {
	s.mu.Lock()
	if r, ok := a.(search.ResultsReceived); ok && s.instances.IsStale(r) {
		current := s.instances.Get(r.ID).LoadingID
		s.mu.Unlock()
		s.log.Debug("discarding stale results", "instance", r.ID, "loading_id", r.LoadingID, "current", current)
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStale, Comp: "store",
			Instance: r.ID, LoadingID: r.LoadingID})
		return
	}
	s.instances = search.Reduce(s.instances, a)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to run after every applied dispatch. fn runs on the
// dispatching goroutine and must not block. The returned func unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
