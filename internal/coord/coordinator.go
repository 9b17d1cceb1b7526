// Package coord loads hints for every helpable field when a report starts.
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/logging"
	"github.com/supervisitor20/myreports/internal/otel"
	"github.com/supervisitor20/myreports/internal/resolve"
)

// DefaultConcurrency limits parallel hint requests.
const DefaultConcurrency = 4

// fetchTimeout bounds each hint request.
const fetchTimeout = 30 * time.Second

// hintFetcher is satisfied by *resolve.Resolver.
type hintFetcher interface {
	FetchHints(ctx context.Context, st resolve.Store, reportDataID, field, partial string)
}

// Sender delivers messages to the running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// PrefetchComplete is sent when every hint request of a prefetch finished.
type PrefetchComplete struct {
	ReportDataID string
	Fields       []string
	Dur          time.Duration
}

// Coordinator runs hint prefetches in the background. Cancelling the
// context passed to Start is the only way to stop one.
type Coordinator struct {
	fetcher hintFetcher
	limit   int
	events  *otel.Logger
	wg      sync.WaitGroup
}

// NewCoordinator creates a Coordinator backed by the resolver.
func NewCoordinator(r *resolve.Resolver, concurrency int, events *otel.Logger) *Coordinator {
	return NewCoordinatorWithFetcher(r, concurrency, events)
}

// NewCoordinatorWithFetcher allows injecting a custom fetcher (for testing).
func NewCoordinatorWithFetcher(f hintFetcher, concurrency int, events *otel.Logger) *Coordinator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Coordinator{fetcher: f, limit: concurrency, events: events}
}

// HelpFields lists the fields of iface that offer hints, in order.
func HelpFields(iface filter.Interface) []string {
	var fields []string
	for _, f := range iface {
		if f.Help {
			fields = append(fields, f.Name)
		}
	}
	return fields
}

// Prefetch loads hints for every helpable field and blocks until all
// requests finished. It returns the fields it requested.
func (c *Coordinator) Prefetch(ctx context.Context, st resolve.Store, reportDataID string, iface filter.Interface) []string {
	fields := HelpFields(iface)
	if len(fields) == 0 {
		return nil
	}
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPrefetchStart, Comp: "coord",
		ReportDataID: reportDataID, Count: len(fields)})
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(c.limit)
	for _, field := range fields {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()
			c.fetcher.FetchHints(fctx, st, reportDataID, field, "")
			return nil // failures are dispatched to the store per field
		})
	}
	_ = g.Wait()

	dur := time.Since(start)
	logging.Debug("hint prefetch finished", "report_data_id", reportDataID, "fields", len(fields), "dur", dur)
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPrefetchComplete, Comp: "coord",
		ReportDataID: reportDataID, Count: len(fields), Dur: dur})
	return fields
}

// Start runs Prefetch in the background and sends PrefetchComplete to
// sender when done. A nil sender is allowed.
func (c *Coordinator) Start(ctx context.Context, st resolve.Store, reportDataID string, iface filter.Interface, sender Sender) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		fields := c.Prefetch(ctx, st, reportDataID, iface)
		if sender != nil && ctx.Err() == nil {
			sender.Send(PrefetchComplete{ReportDataID: reportDataID, Fields: fields, Dur: time.Since(start)})
		}
	}()
}

// Wait blocks until background prefetches exit.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
