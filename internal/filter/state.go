package filter

import (
	"github.com/supervisitor20/myreports/internal/model"
)

// MaxReportNameLength is the longest report name the backend accepts.
const MaxReportNameLength = 24

// Interface types the backend declares for filter fields.
const (
	TypeSearchSelect      = "search_select"
	TypeSearchMultiselect = "search_multiselect"
	TypeDateRange         = "date_range"
	TypeCityState         = "city_state"
	TypeTags              = "tags"
	TypeText              = "text"
)

// Field describes one filterable field of the current report type.
type Field struct {
	Name          string `json:"filter"`
	InterfaceType string `json:"interface_type"`
	Display       string `json:"display"`
	// Help is true when the backend can offer hints for the field.
	Help bool `json:"-"`
}

// Interface is the backend-provided list of fields for a report type.
type Interface []Field

// Has reports whether a field with the given name is declared.
func (i Interface) Has(name string) bool {
	for _, f := range i {
		if f.Name == name {
			return true
		}
	}
	return false
}

// HasType reports whether any field uses the given interface type.
func (i Interface) HasType(interfaceType string) bool {
	for _, f := range i {
		if f.InterfaceType == interfaceType {
			return true
		}
	}
	return false
}

// Hints maps a field to its last received candidates. An absent key means
// never loaded or explicitly cleared.
type Hints map[string][]model.Item

func (h Hints) with(field string, items []model.Item) Hints {
	out := make(Hints, len(h)+1)
	for k, v := range h {
		out[k] = v
	}
	out[field] = items
	return out
}

func (h Hints) without(field string) Hints {
	out := make(Hints, len(h))
	for k, v := range h {
		if k != field {
			out[k] = v
		}
	}
	return out
}

// State is everything the presentation layer reads about the report being
// configured.
type State struct {
	ReportName         string
	CurrentFilter      Tree
	CurrentFilterDirty bool
	FilterInterface    Interface
	Hints              Hints
	IsValid            bool
	RecordCount        int
	// Errors holds per-field messages from a rejected run.
	Errors map[string][]string
	// Notice is a generic user-visible error message.
	Notice      string
	MenuChoices model.MenuChoices
}

// NewState returns an empty state with no report started.
func NewState() State {
	return State{
		CurrentFilter: Tree{},
		Hints:         Hints{},
		Errors:        map[string][]string{},
	}
}

// WithFilterDirtied marks next dirty when its filter differs from old's.
// When the filters are equal next is returned untouched.
func WithFilterDirtied(old, next State) State {
	if old.CurrentFilter.Equal(next.CurrentFilter) {
		return next
	}
	next.CurrentFilterDirty = true
	return next
}

// StartNewReport replaces the whole filter and clears hints and errors.
func (s State) StartNewReport(defaultFilter Tree, iface Interface, name string) State {
	if defaultFilter == nil {
		defaultFilter = Tree{}
	}
	return State{
		ReportName:      truncateName(name),
		CurrentFilter:   defaultFilter.Clone(),
		FilterInterface: iface,
		Hints:           Hints{},
		IsValid:         true,
		Errors:          map[string][]string{},
		MenuChoices:     s.MenuChoices,
	}
}

// SetSimpleFilter assigns a scalar-like value, or removes the field when v
// is nil or a Scalar holding nil.
func (s State) SetSimpleFilter(field string, v Value) State {
	next := s
	if isUnset(v) {
		if _, ok := s.CurrentFilter[field]; !ok {
			return s
		}
		next.CurrentFilter = s.CurrentFilter.without(field)
	} else {
		next.CurrentFilter = s.CurrentFilter.with(field, v)
	}
	return WithFilterDirtied(s, next)
}

func isUnset(v Value) bool {
	if v == nil {
		return true
	}
	sc, ok := v.(Scalar)
	return ok && sc.V == nil
}

// AddToOrFilter merges items into the field's OrSet.
func (s State) AddToOrFilter(field string, items []model.Item) State {
	next := s
	next.CurrentFilter = s.CurrentFilter.with(field, AddOrReplaceByValues(s.CurrentFilter.OrSet(field), items))
	return WithFilterDirtied(s, next)
}

// RemoveFromOrFilter drops items from the field's OrSet. A missing field or
// item is not an error and does not create the field.
func (s State) RemoveFromOrFilter(field string, items []model.Item) State {
	set, ok := s.CurrentFilter[field].(OrSet)
	if !ok {
		return s
	}
	next := s
	next.CurrentFilter = s.CurrentFilter.with(field, RemoveByValues(set, items))
	return WithFilterDirtied(s, next)
}

// AddToAndOrFilter merges items into the group at index, appending a new
// group when index is unknown.
func (s State) AddToAndOrFilter(field string, index int, items []model.Item) State {
	groups := ReplaceItemAtIndex(s.CurrentFilter.Groups(field), index, func(g OrSet) OrSet {
		return AddOrReplaceByValues(g, items)
	})
	next := s
	next.CurrentFilter = s.CurrentFilter.with(field, groups)
	return WithFilterDirtied(s, next)
}

// RemoveFromAndOrFilter drops items from the group at index. An emptied
// group is removed; removing the last group leaves an empty list.
func (s State) RemoveFromAndOrFilter(field string, index int, items []model.Item) State {
	groups, ok := s.CurrentFilter[field].(AndOrGroups)
	if !ok {
		return s
	}
	next := s
	next.CurrentFilter = s.CurrentFilter.with(field, RemoveFromGroup(groups, index, items))
	return WithFilterDirtied(s, next)
}

// EmptyFilter makes the field active with zero selections.
func (s State) EmptyFilter(field string) State {
	next := s
	next.CurrentFilter = s.CurrentFilter.with(field, OrSet{})
	next.CurrentFilterDirty = true
	return next
}

// DeleteFilter removes the field entirely.
func (s State) DeleteFilter(field string) State {
	next := s
	next.CurrentFilter = s.CurrentFilter.without(field)
	next.CurrentFilterDirty = true
	return next
}

// UnlinkFilter records that the user cleared the field's implied link.
func (s State) UnlinkFilter(field string) State {
	next := s
	next.CurrentFilter = s.CurrentFilter.with(field, NoLink{})
	next.CurrentFilterDirty = true
	return next
}

// SetReportName stores name truncated to MaxReportNameLength characters.
func (s State) SetReportName(name string) State {
	s.ReportName = truncateName(name)
	return s
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) <= MaxReportNameLength {
		return name
	}
	return string(r[:MaxReportNameLength])
}

// ReceiveHints stores the candidates for field.
func (s State) ReceiveHints(field string, hints []model.Item) State {
	if hints == nil {
		hints = []model.Item{}
	}
	s.Hints = s.Hints.with(field, hints)
	return s
}

// ClearHints forgets the candidates for field.
func (s State) ClearHints(field string) State {
	s.Hints = s.Hints.without(field)
	return s
}

// ResetDirty clears the dirty flag after a resolution pass.
func (s State) ResetDirty() State {
	s.CurrentFilterDirty = false
	return s
}

// SetValid records the presentation layer's validation verdict.
func (s State) SetValid(valid bool) State {
	s.IsValid = valid
	return s
}

// UpdateRecordCount records the backend's matching record count.
func (s State) UpdateRecordCount(n int) State {
	s.RecordCount = n
	return s
}

// ReceiveErrors replaces the per-field error messages.
func (s State) ReceiveErrors(errs map[string][]string) State {
	out := make(map[string][]string, len(errs))
	for k, v := range errs {
		out[k] = append([]string(nil), v...)
	}
	s.Errors = out
	return s
}

// ReportError sets the generic notice.
func (s State) ReportError(message string) State {
	s.Notice = message
	return s
}

// ClearErrors drops both field errors and the notice.
func (s State) ClearErrors() State {
	s.Errors = map[string][]string{}
	s.Notice = ""
	return s
}

// ReceiveMenuChoices stores the set-up menu for the report wizard.
func (s State) ReceiveMenuChoices(choices model.MenuChoices) State {
	s.MenuChoices = choices
	return s
}
