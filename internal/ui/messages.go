// Package ui provides the Bubble Tea TUI for building a report filter.
package ui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/supervisitor20/myreports/internal/api"
	"github.com/supervisitor20/myreports/internal/coord"
)

// reportStarted is sent when the filter interface for the report loaded.
type reportStarted struct {
	Iface api.FilterInterface
	Err   error
}

// storeChanged is sent after a dispatch made outside Update.
type storeChanged struct{}

// searchDue is sent when the debounce delay for an instance elapsed.
type searchDue struct {
	ID    string
	Query string
}

// resolveDone is sent when a dependency pass finished.
type resolveDone struct{}

// reportRan is sent when a run request returned.
type reportRan struct {
	Handle api.ReportHandle
	Err    error
}

// programSender forwards to a *tea.Program once one is attached. Messages
// sent before that are dropped.
type programSender struct {
	mu sync.Mutex
	p  coord.Sender
}

func (s *programSender) set(p coord.Sender) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *programSender) Send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// notifier turns store notifications into at most one queued storeChanged.
// Sending happens on its own goroutine because the store notifies from
// whichever goroutine dispatched, including the program's own.
type notifier struct {
	pending atomic.Bool
	sender  coord.Sender
}

func (n *notifier) changed() {
	if n.pending.CompareAndSwap(false, true) {
		go n.sender.Send(storeChanged{})
	}
}

func (n *notifier) handled() {
	n.pending.Store(false)
}
