package model

// MenuChoices is the set-up menu for choosing a report type. Each list is
// narrowed by the selections made in the lists before it.
type MenuChoices struct {
	Intentions   []Item `json:"intentions" yaml:"intentions"`
	Categories   []Item `json:"categories" yaml:"categories"`
	DataSets     []Item `json:"data_types" yaml:"data_types"`
	ReportDataID string `json:"report_data_id" yaml:"report_data_id"`
}

// Empty reports whether no choices have been loaded.
func (m MenuChoices) Empty() bool {
	return len(m.Intentions) == 0 && len(m.Categories) == 0 && len(m.DataSets) == 0 && m.ReportDataID == ""
}
