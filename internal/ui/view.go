package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/model"
	"github.com/supervisitor20/myreports/internal/search"
)

const (
	labelWidth    = 16
	maxCandidates = 8
)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return lipgloss.JoinVertical(lipgloss.Left,
			debugOverlay(a.deps.Ring, a.width, a.height-1),
			debugStatusBar(a.width))
	}

	sections := []string{a.renderHeader()}
	if a.starting {
		sections = append(sections, NormalField.Render(a.spinner.View()+" Loading filters..."))
	} else {
		sections = append(sections, a.renderFields())
	}

	switch a.mode {
	case modePick:
		sections = append(sections, a.renderPicker())
	case modeEdit, modeName:
		sections = append(sections, a.renderEditor())
	}

	if notice := a.renderNotice(); notice != "" {
		sections = append(sections, notice)
	}
	if a.lastReport != "" {
		sections = append(sections, SuccessStyle.Render(a.reportSummary()))
	}
	sections = append(sections, a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) reportSummary() string {
	msg := "Report " + a.lastReport + " queued."
	if n := a.state.RecordCount; n > 0 {
		msg += fmt.Sprintf(" %d matching records.", n)
	}
	return msg
}

func (a App) renderHeader() string {
	name := a.state.ReportName
	if name == "" {
		name = "(unnamed report)"
	}
	header := TitleStyle.Render("myreports") + ReportNameStyle.Render(name)
	if a.state.CurrentFilterDirty {
		header += StatusBarText.Render(" *")
	}
	if a.busy() && !a.starting {
		header += " " + a.spinner.View()
	}
	lines := []string{header}
	for _, msg := range a.state.Errors["name"] {
		lines = append(lines, FieldErrorStyle.Render(msg))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderFields() string {
	if len(a.iface) == 0 {
		return NormalField.Render(UnsetValue.Render("No filters for this report."))
	}
	valueWidth := max(a.width-labelWidth-6, 10)
	var lines []string
	for i, f := range a.iface {
		label := runewidth.FillRight(runewidth.Truncate(f.Display, labelWidth-1, "…"), labelWidth)
		text, ok := summarize(a.state.CurrentFilter[f.Name])
		text = runewidth.Truncate(text, valueWidth, "…")
		if !ok {
			text = UnsetValue.Render(text)
		}
		style := NormalField
		if i == a.cursor {
			style = SelectedField
		}
		lines = append(lines, style.Render(label+text))
		for _, msg := range a.state.Errors[f.Name] {
			lines = append(lines, FieldErrorStyle.Render(msg))
		}
	}
	return strings.Join(lines, "\n")
}

func (a App) renderPicker() string {
	inst := a.instances.Get(a.field.Name)
	lines := []string{PanelTitle.Render(a.field.Display), a.input.View()}

	if a.field.InterfaceType == filter.TypeTags {
		lines = append(lines, a.renderGroups()...)
	} else if selected := a.state.CurrentFilter.OrSet(a.field.Name); len(selected) > 0 {
		lines = append(lines, renderChips(selected))
	}

	switch {
	case inst.Err != nil:
		lines = append(lines, ErrorStyle.Render("Search failed: "+inst.Err.Error()))
	case inst.Phase == search.PhaseLoading:
		lines = append(lines, a.spinner.View()+" Searching...")
	case inst.Phase == search.PhaseReceived && len(inst.Results) == 0:
		lines = append(lines, UnsetValue.Render("No matches."))
	default:
		lines = append(lines, a.renderCandidates(inst)...)
	}
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

// renderGroups shows one line per tags group and marks the one picks go
// into.
func (a App) renderGroups() []string {
	groups := a.tagGroups()
	lines := make([]string, 0, len(groups)+1)
	for i, g := range groups {
		label := fmt.Sprintf("  %d ", i+1)
		if i == a.group {
			label = StatusBarKey.Render(fmt.Sprintf("> %d ", i+1))
		}
		lines = append(lines, label+renderChips(g))
	}
	if a.group >= len(groups) {
		lines = append(lines, StatusBarKey.Render("> new group"))
	}
	return lines
}

func renderChips(items []model.Item) string {
	chips := make([]string, 0, len(items))
	for _, it := range items {
		chips = append(chips, Chip.Render(it.Display))
	}
	return strings.Join(chips, "")
}

// renderCandidates lists a window of results that keeps the active one
// visible.
func (a App) renderCandidates(inst search.Instance) []string {
	first := 0
	if inst.ActiveIndex >= maxCandidates {
		first = inst.ActiveIndex - maxCandidates + 1
	}
	last := min(first+maxCandidates, len(inst.Results))
	width := max(a.width-8, 10)

	var lines []string
	for i := first; i < last; i++ {
		text := runewidth.Truncate(inst.Results[i].Display, width, "…")
		if i == inst.ActiveIndex {
			lines = append(lines, ActiveCandidate.Render(text))
		} else {
			lines = append(lines, Candidate.Render(text))
		}
	}
	if more := len(inst.Results) - last; more > 0 {
		lines = append(lines, UnsetValue.Render("…"))
	}
	return lines
}

func (a App) renderEditor() string {
	title := a.field.Display
	if a.mode == modeName {
		title = "Report name"
	}
	lines := []string{PanelTitle.Render(title), a.input.View()}
	if a.inputErr != "" {
		lines = append(lines, ErrorStyle.Render(a.inputErr))
	}
	return PanelStyle.Render(strings.Join(lines, "\n"))
}

// renderNotice shows the generic notice and errors for fields that are not
// on screen.
func (a App) renderNotice() string {
	var lines []string
	if a.state.Notice != "" {
		lines = append(lines, ErrorStyle.Render(a.state.Notice))
	} else if a.err != nil {
		lines = append(lines, ErrorStyle.Render("Error: "+a.err.Error()))
	}

	if len(a.iface) > 0 && !a.state.IsValid {
		missing := missingSelections(a.iface, a.state.CurrentFilter)
		lines = append(lines, ErrorStyle.Render("Choose at least one value for "+strings.Join(missing, ", ")+" before running."))
	}

	var orphans []string
	for field := range a.state.Errors {
		if field != "name" && !a.iface.Has(field) {
			orphans = append(orphans, field)
		}
	}
	sort.Strings(orphans)
	for _, field := range orphans {
		for _, msg := range a.state.Errors[field] {
			lines = append(lines, ErrorStyle.Render(field+": "+msg))
		}
	}
	return strings.Join(lines, "\n")
}

func (a App) renderStatusBar() string {
	var keys string
	if a.mode == modeList {
		keys = a.help.View(a.keys)
	} else {
		keys = a.help.View(a.pick)
	}
	return StatusBar.Width(a.width).Render(keys)
}
