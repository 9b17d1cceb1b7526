package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196")
)

// TitleStyle for the report header.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// ReportNameStyle for the report name next to the title.
var ReportNameStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// SelectedField style for the highlighted field row.
var SelectedField = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalField style for other field rows.
var NormalField = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// UnsetValue style for fields without a filter.
var UnsetValue = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)

// PanelStyle frames the picker and editors.
var PanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// PanelTitle for the field being edited.
var PanelTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// ActiveCandidate style for the highlighted search result.
var ActiveCandidate = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// Candidate style for other search results.
var Candidate = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Chip style for a selected item.
var Chip = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// SuccessStyle for the last queued report.
var SuccessStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Padding(0, 1)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// FieldErrorStyle for messages under a rejected field.
var FieldErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	PaddingLeft(4)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for debug overlay section headers.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
