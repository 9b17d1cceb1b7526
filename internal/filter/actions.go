package filter

import "github.com/supervisitor20/myreports/internal/model"

// Action is a dispatchable State transition.
type Action interface {
	applyTo(State) State
}

// Reduce applies a to s. A nil action returns s unchanged.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.applyTo(s)
}

type StartNewReport struct {
	DefaultFilter Tree
	Interface     Interface
	Name          string
}

type SetSimpleFilter struct {
	Field string
	Value Value
}

type AddToOrFilter struct {
	Field string
	Items []model.Item
}

type RemoveFromOrFilter struct {
	Field string
	Items []model.Item
}

type AddToAndOrFilter struct {
	Field string
	Index int
	Items []model.Item
}

type RemoveFromAndOrFilter struct {
	Field string
	Index int
	Items []model.Item
}

type EmptyFilter struct{ Field string }

type DeleteFilter struct{ Field string }

type UnlinkFilter struct{ Field string }

type SetReportName struct{ Name string }

type ReceiveHints struct {
	Field string
	Hints []model.Item
}

type ClearHints struct{ Field string }

type ResetDirty struct{}

type SetValid struct{ Valid bool }

type UpdateRecordCount struct{ Count int }

// ReceiveErrors carries per-field messages from a rejected run.
type ReceiveErrors struct{ Errors map[string][]string }

// ReportError carries a generic user-visible message.
type ReportError struct{ Message string }

type ClearErrors struct{}

type ReceiveMenuChoices struct{ Choices model.MenuChoices }

func (a StartNewReport) applyTo(s State) State {
	return s.StartNewReport(a.DefaultFilter, a.Interface, a.Name)
}
func (a SetSimpleFilter) applyTo(s State) State    { return s.SetSimpleFilter(a.Field, a.Value) }
func (a AddToOrFilter) applyTo(s State) State      { return s.AddToOrFilter(a.Field, a.Items) }
func (a RemoveFromOrFilter) applyTo(s State) State { return s.RemoveFromOrFilter(a.Field, a.Items) }
func (a AddToAndOrFilter) applyTo(s State) State {
	return s.AddToAndOrFilter(a.Field, a.Index, a.Items)
}
func (a RemoveFromAndOrFilter) applyTo(s State) State {
	return s.RemoveFromAndOrFilter(a.Field, a.Index, a.Items)
}
func (a EmptyFilter) applyTo(s State) State        { return s.EmptyFilter(a.Field) }
func (a DeleteFilter) applyTo(s State) State       { return s.DeleteFilter(a.Field) }
func (a UnlinkFilter) applyTo(s State) State       { return s.UnlinkFilter(a.Field) }
func (a SetReportName) applyTo(s State) State      { return s.SetReportName(a.Name) }
func (a ReceiveHints) applyTo(s State) State       { return s.ReceiveHints(a.Field, a.Hints) }
func (a ClearHints) applyTo(s State) State         { return s.ClearHints(a.Field) }
func (ResetDirty) applyTo(s State) State           { return s.ResetDirty() }
func (a SetValid) applyTo(s State) State           { return s.SetValid(a.Valid) }
func (a UpdateRecordCount) applyTo(s State) State  { return s.UpdateRecordCount(a.Count) }
func (a ReceiveErrors) applyTo(s State) State      { return s.ReceiveErrors(a.Errors) }
func (a ReportError) applyTo(s State) State        { return s.ReportError(a.Message) }
func (ClearErrors) applyTo(s State) State          { return s.ClearErrors() }
func (a ReceiveMenuChoices) applyTo(s State) State { return s.ReceiveMenuChoices(a.Choices) }
