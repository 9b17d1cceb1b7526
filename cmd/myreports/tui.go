package main

import (
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/supervisitor20/myreports/internal/app"
	"github.com/supervisitor20/myreports/internal/coord"
	"github.com/supervisitor20/myreports/internal/ids"
	"github.com/supervisitor20/myreports/internal/resolve"
	"github.com/supervisitor20/myreports/internal/search"
	"github.com/supervisitor20/myreports/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive filter builder",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	gen := ids.UUID{}
	store := app.NewStore(e.events)
	resolver := resolve.New(e.client, gen, e.events)

	deps := ui.Deps{
		Store:        store,
		Resolver:     resolver,
		Client:       e.client,
		Debouncer:    search.NewDebouncer(e.cfg.Search.Debounce, search.TimeAfterFunc),
		IDs:          gen,
		Events:       e.events,
		Ring:         e.ring,
		ReportDataID: e.cfg.UI.DefaultReport,
		MinChars:     e.cfg.Search.MinChars,
	}
	if e.cfg.Prefetch.Enabled {
		deps.Coord = coord.NewCoordinator(resolver, e.cfg.Prefetch.Concurrency, e.events)
	}

	var opts []tea.ProgramOption
	if e.cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if e.cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	opts = append(opts, tea.WithContext(ctx))

	return ui.Run(ctx, deps, opts...)
}
