package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/supervisitor20/myreports/internal/api"
	"github.com/supervisitor20/myreports/internal/app"
	"github.com/supervisitor20/myreports/internal/coord"
	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/ids"
	"github.com/supervisitor20/myreports/internal/logging"
	"github.com/supervisitor20/myreports/internal/otel"
	"github.com/supervisitor20/myreports/internal/resolve"
	"github.com/supervisitor20/myreports/internal/search"
)

// Deps are the collaborators the TUI drives. Coord, Events and Ring may be
// nil.
type Deps struct {
	Store        *app.Store
	Resolver     *resolve.Resolver
	Coord        *coord.Coordinator
	Client       api.Client
	Debouncer    *search.Debouncer
	IDs          ids.Generator
	Events       *otel.Logger
	Ring         *otel.RingBuffer
	ReportDataID string
	MinChars     int
}

const defaultDebounce = 300 * time.Millisecond

type mode int

const (
	modeList mode = iota
	modePick
	modeEdit
	modeName
)

// App is the root Bubble Tea model.
// App reads filter and search state only through snapshots taken from the
// store after each message.
type App struct {
	deps   Deps
	ctx    context.Context
	sender *programSender
	notify *notifier

	keys     listKeys
	pick     pickKeys
	help     help.Model
	spinner  spinner.Model
	input    textinput.Model
	ticking  bool
	showHelp bool

	iface     filter.Interface
	state     filter.State
	instances search.Instances

	cursor   int
	mode     mode
	field    filter.Field
	inputErr string
	// group is the tags group picks go into; len(groups) means a new one.
	group    int

	starting    bool
	prefetching bool
	resolving   int
	running     bool
	lastReport  string
	err         error

	showDebug bool
	width     int
	height    int
	ready     bool
}

// NewApp creates an App. ctx bounds every request the App issues.
func NewApp(ctx context.Context, deps Deps) App {
	if deps.IDs == nil {
		deps.IDs = ids.UUID{}
	}
	if deps.Debouncer == nil {
		deps.Debouncer = search.NewDebouncer(defaultDebounce, nil)
	}
	sender := &programSender{}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusBarKey

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = StatusBarKey
	ti.CharLimit = 128

	return App{
		deps:     deps,
		ctx:      ctx,
		sender:   sender,
		notify:   &notifier{sender: sender},
		keys:     defaultListKeys(),
		pick:     defaultPickKeys(),
		help:     help.New(),
		spinner:  sp,
		input:    ti,
		starting: true,
		state:    deps.Store.Filter(),
	}
}

// Run starts the program and blocks until it exits.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := NewApp(ctx, deps)
	p := tea.NewProgram(a, opts...)
	a.sender.set(p)
	unsubscribe := deps.Store.Subscribe(a.notify.changed)
	defer unsubscribe()

	deps.Events.Info(otel.KindStartup, "ui", "tui started")
	_, err := p.Run()
	cancel()
	a.deps.Debouncer.Stop()
	if deps.Coord != nil {
		deps.Coord.Wait()
	}
	deps.Events.Info(otel.KindShutdown, "ui", "tui stopped")
	return err
}

// Init loads the report's filters.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.startReport(), a.spinner.Tick)
}

func (a App) startReport() tea.Cmd {
	r, st, id, ctx := a.deps.Resolver, a.deps.Store, a.deps.ReportDataID, a.ctx
	return func() tea.Msg {
		fi, err := r.StartNewReport(ctx, st, id)
		return reportStarted{Iface: fi, Err: err}
	}
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, tick := msg.(spinner.TickMsg); !tick && otel.TraceEnabled() {
		a.deps.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui",
			Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.input.Width = max(msg.Width-10, 10)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.busy() {
			a.ticking = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.ticking = true
		return a, cmd

	case reportStarted:
		a.starting = false
		if msg.Err != nil {
			a.err = msg.Err
			a.refresh()
			return a, nil
		}
		a.iface = msg.Iface.Fields
		a.cursor = 0
		a.refresh()
		if a.deps.Coord != nil && len(coord.HelpFields(a.iface)) > 0 {
			a.prefetching = true
			a.deps.Coord.Start(a.ctx, a.deps.Store, a.deps.ReportDataID, a.iface, a.sender)
		}
		cmd := a.tick()
		return a, cmd

	case coord.PrefetchComplete:
		a.prefetching = false
		a.refresh()
		return a, nil

	case storeChanged:
		a.notify.handled()
		a.refresh()
		return a, nil

	case searchDue:
		return a.startSearch(msg.ID, msg.Query)

	case search.ResultsReceived:
		a.deps.Store.DispatchSearch(msg)
		a.refresh()
		return a, nil

	case resolveDone:
		a.resolving = max(a.resolving-1, 0)
		a.refresh()
		return a, nil

	case reportRan:
		a.running = false
		if msg.Err == nil {
			a.lastReport = msg.Handle.ID
		}
		a.refresh()
		return a, nil
	}

	return a, nil
}

func (a *App) refresh() {
	a.state = a.deps.Store.Filter()
	a.instances = a.deps.Store.Search()
	a.validate()
	if a.cursor >= len(a.iface) {
		a.cursor = max(len(a.iface)-1, 0)
	}
}

func (a App) busy() bool {
	if a.starting || a.prefetching || a.resolving > 0 || a.running {
		return true
	}
	return a.mode == modePick && a.instances.Get(a.field.Name).Phase == search.PhaseLoading
}

// tick restarts the spinner when it went idle.
func (a *App) tick() tea.Cmd {
	if a.ticking || !a.busy() {
		return nil
	}
	a.ticking = true
	return a.spinner.Tick
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	switch a.mode {
	case modePick:
		return a.handlePickKey(msg)
	case modeEdit, modeName:
		return a.handleEditKey(msg)
	}

	if a.showDebug {
		if key.Matches(msg, a.keys.Debug, a.keys.Clear) {
			a.showDebug = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.iface)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Edit):
		if f, ok := a.current(); ok {
			return a.openField(f)
		}
	case key.Matches(msg, a.keys.Delete):
		return a.dispatchFiltered(func(f filter.Field) filter.Action { return filter.DeleteFilter{Field: f.Name} })
	case key.Matches(msg, a.keys.Empty):
		return a.dispatchFiltered(func(f filter.Field) filter.Action { return filter.EmptyFilter{Field: f.Name} })
	case key.Matches(msg, a.keys.Unlink):
		return a.dispatchFiltered(func(f filter.Field) filter.Action { return filter.UnlinkFilter{Field: f.Name} })
	case key.Matches(msg, a.keys.Name):
		a.mode = modeName
		a.inputErr = ""
		a.input.Placeholder = "Report name"
		a.input.CharLimit = filter.MaxReportNameLength
		a.input.SetValue(a.state.ReportName)
		a.input.CursorEnd()
		a.input.Focus()
	case key.Matches(msg, a.keys.Run):
		return a.runReport()
	case key.Matches(msg, a.keys.Clear):
		a.deps.Store.Dispatch(filter.ClearErrors{})
		a.err = nil
		a.refresh()
	case key.Matches(msg, a.keys.Debug):
		a.showDebug = a.deps.Ring != nil
	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
	}
	return a, nil
}

func (a App) current() (filter.Field, bool) {
	if a.cursor < 0 || a.cursor >= len(a.iface) {
		return filter.Field{}, false
	}
	return a.iface[a.cursor], true
}

// dispatchFiltered applies a field action to the highlighted field and
// re-resolves dependencies.
func (a App) dispatchFiltered(action func(filter.Field) filter.Action) (tea.Model, tea.Cmd) {
	f, ok := a.current()
	if !ok {
		return a, nil
	}
	a.deps.Store.Dispatch(action(f))
	a.refresh()
	cmd := a.resolve()
	return a, cmd
}

func (a App) openField(f filter.Field) (tea.Model, tea.Cmd) {
	a.field = f
	a.inputErr = ""
	a.input.CharLimit = 128
	a.pick.Group.SetEnabled(f.InterfaceType == filter.TypeTags)
	switch f.InterfaceType {
	case filter.TypeSearchSelect, filter.TypeSearchMultiselect, filter.TypeTags:
		return a.openPicker(f)
	case filter.TypeDateRange:
		a.input.Placeholder = "MM/DD/YYYY - MM/DD/YYYY"
	case filter.TypeCityState:
		a.input.Placeholder = "City, ST"
	default:
		a.input.Placeholder = f.Display
	}
	a.mode = modeEdit
	a.input.SetValue(editText(a.state.CurrentFilter[f.Name]))
	a.input.CursorEnd()
	a.input.Focus()
	return a, nil
}

func (a App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.pick.Back):
		a.closeInput()
		return a, nil
	case key.Matches(msg, a.pick.Accept):
		return a.commitEdit()
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.inputErr = ""
	return a, cmd
}

func (a App) commitEdit() (tea.Model, tea.Cmd) {
	text := a.input.Value()
	if a.mode == modeName {
		a.deps.Store.Dispatch(filter.SetReportName{Name: text})
		a.closeInput()
		a.refresh()
		return a, nil
	}

	var v filter.Value
	switch a.field.InterfaceType {
	case filter.TypeDateRange:
		d, err := parseDateRange(text)
		if err != nil {
			a.inputErr = err.Error()
			return a, nil
		}
		v = d
	case filter.TypeCityState:
		c, err := parseCityState(text)
		if err != nil {
			a.inputErr = err.Error()
			return a, nil
		}
		v = c
	default:
		if text != "" {
			v = filter.Text(text)
		}
	}
	if v == nil {
		a.deps.Store.Dispatch(filter.DeleteFilter{Field: a.field.Name})
	} else {
		a.deps.Store.Dispatch(filter.SetSimpleFilter{Field: a.field.Name, Value: v})
	}
	a.closeInput()
	a.refresh()
	cmd := a.resolve()
	return a, cmd
}

func (a *App) closeInput() {
	if a.mode == modePick {
		a.deps.Debouncer.Cancel(a.field.Name)
	}
	a.mode = modeList
	a.inputErr = ""
	a.input.Blur()
	a.input.SetValue("")
}

// resolve runs a dependency pass in the background.
func (a *App) resolve() tea.Cmd {
	if len(a.iface) == 0 {
		return nil
	}
	a.resolving++
	r, st, iface, id, ctx := a.deps.Resolver, a.deps.Store, a.iface, a.deps.ReportDataID, a.ctx
	run := func() tea.Msg {
		r.ResolveDependencies(ctx, st, iface, id)
		return resolveDone{}
	}
	return tea.Batch(run, a.tick())
}

func (a App) runReport() (tea.Model, tea.Cmd) {
	if a.running || len(a.iface) == 0 || !a.state.IsValid {
		return a, nil
	}
	a.running = true
	a.lastReport = ""
	r, st, id, ctx := a.deps.Resolver, a.deps.Store, a.deps.ReportDataID, a.ctx
	run := func() tea.Msg {
		h, err := r.RunReport(ctx, st, id)
		if err != nil {
			logging.Debug("report run returned error", "err", err)
		}
		return reportRan{Handle: h, Err: err}
	}
	tick := a.tick()
	return a, tea.Batch(run, tick)
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// State returns the last filter snapshot (for testing).
func (a App) State() filter.State {
	return a.state
}
