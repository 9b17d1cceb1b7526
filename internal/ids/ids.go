// Package ids mints the request tokens used to fence async responses.
//
// Callers take a Generator rather than reaching for package state so tests
// can control the sequence deterministically.
package ids

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator returns a new unique id on every call.
type Generator interface {
	Next() string
}

// Sequence yields prefix1, prefix2, ... in order. Safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      uint64
}

// NewSequence creates a Sequence whose ids start with prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next id in the sequence.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.prefix + strconv.FormatUint(s.n, 10)
}

// UUID mints random v4 UUIDs.
type UUID struct{}

// Next returns a new random UUID string.
func (UUID) Next() string {
	return uuid.NewString()
}

// Func adapts a plain function to a Generator.
type Func func() string

// Next calls f.
func (f Func) Next() string {
	return f()
}
