package ui

import "github.com/supervisitor20/myreports/internal/filter"

// missingSelections lists the fields that were emptied and still have
// nothing selected. Such a filter matches no records, so it cannot run.
func missingSelections(iface filter.Interface, tree filter.Tree) []string {
	var missing []string
	for _, f := range iface {
		switch v := tree[f.Name].(type) {
		case filter.OrSet:
			if len(v) == 0 {
				missing = append(missing, f.Display)
			}
		case filter.AndOrGroups:
			if len(v) == 0 {
				missing = append(missing, f.Display)
			}
		}
	}
	return missing
}

// validate reports the verdict for the current filter to the store when it
// changed.
func (a *App) validate() {
	if len(a.iface) == 0 {
		return
	}
	valid := len(missingSelections(a.iface, a.state.CurrentFilter)) == 0
	if valid == a.state.IsValid {
		return
	}
	a.deps.Store.Dispatch(filter.SetValid{Valid: valid})
	a.state = a.deps.Store.Filter()
}
