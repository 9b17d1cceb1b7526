package ui

import (
	"context"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/model"
	"github.com/supervisitor20/myreports/internal/otel"
	"github.com/supervisitor20/myreports/internal/search"
)

// The picker for a field uses the search instance named after the field.
// Opening it seeds the instance with the field's hints, or looks them up
// when none were prefetched. Typing debounces a lookup for the new text.
//
// Tags are kept as AND-of-OR groups. Picks go into the current group; tab
// moves through the existing groups and then to a new one.

func (a App) openPicker(f filter.Field) (tea.Model, tea.Cmd) {
	a.mode = modePick
	a.input.Placeholder = "Search " + f.Display
	a.input.SetValue("")
	a.input.Focus()
	a.group = len(a.tagGroups())

	st := a.deps.Store
	st.DispatchSearch(search.Reset{ID: f.Name})
	if hints, ok := a.state.Hints[f.Name]; ok {
		start := search.NewStart(f.Name, a.deps.IDs)
		st.DispatchSearch(start)
		st.DispatchSearch(search.ResultsReceived{ID: f.Name, LoadingID: start.LoadingID, Results: hints})
		a.refresh()
		return a, nil
	}
	return a.startSearch(f.Name, "")
}

func (a App) handlePickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := a.field.Name
	st := a.deps.Store
	switch {
	case key.Matches(msg, a.pick.Back):
		a.closeInput()
		return a, nil
	case key.Matches(msg, a.pick.Prev):
		st.DispatchSearch(search.MoveActive{ID: id, Delta: -1})
		a.refresh()
		return a, nil
	case key.Matches(msg, a.pick.Next):
		st.DispatchSearch(search.MoveActive{ID: id, Delta: 1})
		a.refresh()
		return a, nil
	case key.Matches(msg, a.pick.Accept):
		return a.selectActive()
	case key.Matches(msg, a.pick.Remove):
		return a.removeLast()
	case key.Matches(msg, a.pick.Group):
		a.group = (a.group + 1) % (len(a.tagGroups()) + 1)
		return a, nil
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if q := a.input.Value(); q != before {
		a.queryChanged(q)
	}
	return a, cmd
}

// queryChanged buffers q and schedules a lookup once typing pauses. Text
// shorter than MinChars cancels any pending lookup.
func (a *App) queryChanged(q string) {
	id := a.field.Name
	a.deps.Store.DispatchSearch(search.Preload{ID: id, SearchString: q})
	a.refresh()
	if q != "" && utf8.RuneCountInString(q) < a.deps.MinChars {
		a.deps.Debouncer.Cancel(id)
		return
	}
	sender := a.sender
	a.deps.Debouncer.Trigger(id, func() {
		sender.Send(searchDue{ID: id, Query: q})
	})
}

// startSearch issues a lookup tagged with a fresh loading id. Results for an
// older loading id are discarded by the store.
func (a App) startSearch(id, query string) (tea.Model, tea.Cmd) {
	if a.mode != modePick || a.field.Name != id {
		return a, nil
	}
	start := search.NewStart(id, a.deps.IDs)
	a.deps.Store.DispatchSearch(start)
	a.deps.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStart, Comp: "ui",
		ReportDataID: a.deps.ReportDataID, Instance: id, LoadingID: start.LoadingID})
	a.refresh()

	ctx, searcher := a.ctx, a.searcher(id)
	fetch := func() tea.Msg {
		return search.Fetch(ctx, id, start.LoadingID, query, searcher)
	}
	tick := a.tick()
	return a, tea.Batch(fetch, tick)
}

// searcher looks up hints for field scoped by the filter at lookup time.
func (a App) searcher(field string) search.Searcher {
	client, st, reportDataID := a.deps.Client, a.deps.Store, a.deps.ReportDataID
	return search.SearchFunc(func(ctx context.Context, partial string) ([]model.Item, error) {
		wire := filter.ToWireFormat(st.Filter().CurrentFilter, nil)
		return client.GetHelp(ctx, reportDataID, wire, field, partial)
	})
}

func (a App) selectActive() (tea.Model, tea.Cmd) {
	id := a.field.Name
	inst := a.instances.Get(id)
	item, ok := inst.Active()
	if !ok && len(inst.Results) == 1 {
		item, ok = inst.Results[0], true
	}
	if !ok {
		return a, nil
	}

	st := a.deps.Store
	st.DispatchSearch(search.Select{ID: id, Item: item})
	switch a.field.InterfaceType {
	case filter.TypeSearchSelect:
		st.Dispatch(filter.SetSimpleFilter{Field: id, Value: filter.Scalar{V: item}})
		a.closeInput()
	case filter.TypeTags:
		groups := a.tagGroups()
		if _, flat := a.state.CurrentFilter[id].(filter.OrSet); flat && len(groups) > 0 {
			st.Dispatch(filter.SetSimpleFilter{Field: id, Value: groups})
		}
		index := min(a.group, len(groups))
		st.Dispatch(filter.AddToAndOrFilter{Field: id, Index: index, Items: []model.Item{item}})
		a.group = index
		a.input.SetValue("")
	default:
		st.Dispatch(filter.AddToOrFilter{Field: id, Items: []model.Item{item}})
		a.input.SetValue("")
	}
	a.refresh()
	cmd := a.resolve()
	return a, cmd
}

func (a App) removeLast() (tea.Model, tea.Cmd) {
	id := a.field.Name
	if _, flat := a.state.CurrentFilter[id].(filter.OrSet); a.field.InterfaceType == filter.TypeTags && !flat {
		return a.removeLastTag()
	}
	selected := a.state.CurrentFilter.OrSet(id)
	if len(selected) == 0 {
		return a, nil
	}
	last := selected[len(selected)-1]
	a.deps.Store.Dispatch(filter.RemoveFromOrFilter{Field: id, Items: []model.Item{last}})
	a.refresh()
	cmd := a.resolve()
	return a, cmd
}

// removeLastTag drops the newest tag of the current group. A group left
// empty is removed and later groups move down.
func (a App) removeLastTag() (tea.Model, tea.Cmd) {
	groups := a.state.CurrentFilter.Groups(a.field.Name)
	if a.group >= len(groups) || len(groups[a.group]) == 0 {
		return a, nil
	}
	g := groups[a.group]
	a.deps.Store.Dispatch(filter.RemoveFromAndOrFilter{Field: a.field.Name, Index: a.group, Items: []model.Item{g[len(g)-1]}})
	a.refresh()
	a.group = min(a.group, len(a.tagGroups()))
	cmd := a.resolve()
	return a, cmd
}

// tagGroups returns the open field's groups. A flat set counts as one group.
func (a App) tagGroups() filter.AndOrGroups {
	tree := a.state.CurrentFilter
	if groups := tree.Groups(a.field.Name); groups != nil {
		return groups
	}
	if set := tree.OrSet(a.field.Name); len(set) > 0 {
		return filter.AndOrGroups{set}
	}
	return nil
}
