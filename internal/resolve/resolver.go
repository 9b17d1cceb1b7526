// Package resolve keeps hint lists and selections consistent with the
// current filter by calling the reporting backend.
//
// Every entry point takes the store it reads and dispatches to as an
// argument. The resolver holds no filter state of its own.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/supervisitor20/myreports/internal/api"
	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/ids"
	"github.com/supervisitor20/myreports/internal/logging"
	"github.com/supervisitor20/myreports/internal/model"
	"github.com/supervisitor20/myreports/internal/otel"
)

// Fields with a dependency on other selections.
const (
	FieldState   = "state"
	FieldPartner = "partner"
	FieldContact = "contact"
)

// Store is the capability the resolver needs from the owning store.
type Store interface {
	Filter() filter.State
	Dispatch(filter.Action)
}

// Resolver runs the backend-facing filter operations.
type Resolver struct {
	client api.Client
	ids    ids.Generator
	events *otel.Logger
	log    *log.Logger
	warn   filter.WarnFunc
}

// New creates a Resolver. events may be nil.
func New(client api.Client, gen ids.Generator, events *otel.Logger) *Resolver {
	if gen == nil {
		gen = ids.UUID{}
	}
	l := logging.WithPrefix("resolve")
	return &Resolver{
		client: client,
		ids:    gen,
		events: events,
		log:    l,
		warn:   func(msg string, kv ...any) { l.Warn(msg, kv...) },
	}
}

// FetchHints replaces the hints for field with a fresh lookup. Failures are
// dispatched as a notice; nothing is returned.
func (r *Resolver) FetchHints(ctx context.Context, st Store, reportDataID, field, partial string) {
	st.Dispatch(filter.ClearHints{Field: field})
	wire := filter.ToWireFormat(st.Filter().CurrentFilter, r.warn)

	reqID := r.ids.Next()
	r.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindHintsStart, Comp: "resolve",
		ReportDataID: reportDataID, Field: field, LoadingID: reqID})
	start := time.Now()

	hints, err := r.client.GetHelp(ctx, reportDataID, wire, field, partial)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.log.Debug("hint fetch cancelled", "field", field)
			return
		}
		r.log.Error("hint fetch failed", "field", field, "err", err)
		r.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindHintsError, Comp: "resolve",
			ReportDataID: reportDataID, Field: field, LoadingID: reqID, Err: err.Error()})
		st.Dispatch(filter.ReportError{Message: fmt.Sprintf("Could not load choices for %s.", field)})
		return
	}

	st.Dispatch(filter.ReceiveHints{Field: field, Hints: hints})
	r.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindHintsComplete, Comp: "resolve",
		ReportDataID: reportDataID, Field: field, LoadingID: reqID, Count: len(hints), Dur: time.Since(start)})
}

// ResolveDependencies refreshes dependent hints after the filter changed and
// drops contact selections that the fresh contact hints no longer offer.
// It does nothing unless the filter is dirty. Steps run one after another;
// a cancelled ctx stops the pass and leaves the filter dirty.
func (r *Resolver) ResolveDependencies(ctx context.Context, st Store, iface filter.Interface, reportDataID string) {
	if !st.Filter().CurrentFilterDirty {
		return
	}
	r.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindResolveStart, Comp: "resolve", ReportDataID: reportDataID})
	start := time.Now()

	if iface.HasType(filter.TypeCityState) || iface.Has("locations") {
		r.FetchHints(ctx, st, reportDataID, FieldState, "")
	}
	if ctx.Err() != nil {
		return
	}
	if iface.Has(FieldPartner) {
		r.FetchHints(ctx, st, reportDataID, FieldPartner, "")
	}
	if ctx.Err() != nil {
		return
	}
	if iface.Has(FieldContact) {
		r.FetchHints(ctx, st, reportDataID, FieldContact, "")
		if ctx.Err() != nil {
			return
		}
		r.pruneContacts(st, reportDataID)
	}

	st.Dispatch(filter.ResetDirty{})
	r.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindResolveComplete, Comp: "resolve",
		ReportDataID: reportDataID, Dur: time.Since(start)})
}

// pruneContacts removes selected contacts missing from the contact hints.
// Without hints (the fetch failed) selections are kept.
func (r *Resolver) pruneContacts(st Store, reportDataID string) {
	s := st.Filter()
	hints, ok := s.Hints[FieldContact]
	if !ok {
		return
	}
	stale := StaleSelections(s.CurrentFilter.OrSet(FieldContact), hints)
	if len(stale) == 0 {
		return
	}
	r.log.Debug("pruning contacts", "count", len(stale))
	r.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindResolvePrune, Comp: "resolve",
		ReportDataID: reportDataID, Field: FieldContact, Count: len(stale)})
	st.Dispatch(filter.RemoveFromOrFilter{Field: FieldContact, Items: stale})
}

// StaleSelections returns the selected items whose value is not offered.
func StaleSelections(selected, offered []model.Item) []model.Item {
	valid := model.KeySet(offered)
	var stale []model.Item
	for _, item := range selected {
		if _, ok := valid[item.Key()]; !ok {
			stale = append(stale, item)
		}
	}
	return stale
}

// RunReport submits the current filter. A field-level rejection is
// dispatched as field errors, any other failure as a notice. The error is
// also returned.
func (r *Resolver) RunReport(ctx context.Context, st Store, reportDataID string) (api.ReportHandle, error) {
	st.Dispatch(filter.ClearErrors{})
	s := st.Filter()
	wire := filter.ToWireFormat(s.CurrentFilter, r.warn)

	start := time.Now()
	h, err := r.client.RunReport(ctx, reportDataID, s.ReportName, wire)
	if err != nil {
		var fe *api.FieldErrors
		if errors.As(err, &fe) {
			r.log.Info("report rejected", "fields", len(fe.Fields))
			r.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindReportInvalid, Comp: "resolve",
				ReportDataID: reportDataID, Count: len(fe.Fields), Err: err.Error()})
			st.Dispatch(filter.ReceiveErrors{Errors: fe.Fields})
			return api.ReportHandle{}, err
		}
		r.log.Error("report run failed", "err", err)
		r.events.Error(otel.KindReportError, "resolve", err)
		st.Dispatch(filter.ReportError{Message: "The report could not be run. Try again later."})
		return api.ReportHandle{}, err
	}

	st.Dispatch(filter.UpdateRecordCount{Count: h.Records})
	r.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindReportRun, Comp: "resolve",
		ReportDataID: reportDataID, Msg: h.ID, Count: h.Records, Dur: time.Since(start)})
	return h, nil
}

// StartNewReport loads the filter interface and default filter for a
// report type and starts a fresh report with them. A missing default name
// is not fatal.
func (r *Resolver) StartNewReport(ctx context.Context, st Store, reportDataID string) (api.FilterInterface, error) {
	fi, err := r.client.GetFilters(ctx, reportDataID)
	if err != nil {
		r.log.Error("loading filters failed", "report_data_id", reportDataID, "err", err)
		r.events.Error(otel.KindReportError, "resolve", err)
		st.Dispatch(filter.ReportError{Message: "Could not load the filters for this report."})
		return api.FilterInterface{}, err
	}
	name, err := r.client.GetDefaultReportName(ctx, reportDataID)
	if err != nil {
		r.log.Warn("default report name unavailable", "err", err)
		name = ""
	}

	st.Dispatch(filter.StartNewReport{
		DefaultFilter: filter.DecodeTree(fi.DefaultFilter),
		Interface:     fi.Fields,
		Name:          name,
	})
	r.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindReportStart, Comp: "resolve",
		ReportDataID: reportDataID, Count: len(fi.Fields)})
	return fi, nil
}

// LoadMenu fetches the report-type menu for the given selections.
func (r *Resolver) LoadMenu(ctx context.Context, st Store, intention, category, dataSet string) error {
	choices, err := r.client.GetSetUpMenuChoices(ctx, intention, category, dataSet)
	if err != nil {
		r.log.Error("loading menu failed", "err", err)
		st.Dispatch(filter.ReportError{Message: "Could not load report types."})
		return err
	}
	st.Dispatch(filter.ReceiveMenuChoices{Choices: choices})
	return nil
}
