// Command myreports builds report filters interactively against a reporting
// backend, or against a local SQLite copy seeded from a fixture.
//
// Usage:
//
//	myreports                     Start the TUI (same as "myreports tui")
//	myreports hints <field> [q]   Print the hints offered for a field
//	myreports wire                Print the default filter in wire format
//	myreports seed                Load the fixture into the local database
//	myreports menu [i [c [d]]]    Browse report types
//	myreports events              Show the JSONL event log
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/supervisitor20/myreports/internal/api"
	"github.com/supervisitor20/myreports/internal/config"
	"github.com/supervisitor20/myreports/internal/localapi"
	"github.com/supervisitor20/myreports/internal/logging"
	"github.com/supervisitor20/myreports/internal/otel"
)

var (
	configFile   string
	reportDataID string
)

var rootCmd = &cobra.Command{
	Use:   "myreports",
	Short: "Build report filters from the terminal",
	Long: `myreports loads a report type's filters, offers hints for each field and
keeps dependent selections consistent while you edit, then runs the report.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: search user config dir, ., ./config)")
	rootCmd.PersistentFlags().StringVar(&reportDataID, "report", "", "report data id (default: ui.default_report)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(hintsCmd)
	rootCmd.AddCommand(wireCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(eventsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env holds what every subcommand sets up from configuration.
type env struct {
	cfg     *config.Config
	client  api.Client
	local   *localapi.Backend
	events  *otel.Logger
	ring    *otel.RingBuffer
	closers []io.Closer
}

// setup loads config, starts logging and the event log, and opens the
// configured backend. Callers must call close.
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if reportDataID != "" {
		cfg.UI.DefaultReport = reportDataID
	}
	if err := logging.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	if cfg.Log.Events {
		events, f, err := otel.OpenFile(cfg.EventLogPath())
		if err != nil {
			logging.Warn("event log disabled", "err", err)
		} else {
			e.ring = otel.NewRingBuffer(otel.DefaultRingSize)
			events.SetRingBuffer(e.ring)
			e.events = events
			e.closers = append(e.closers, f)
		}
	}

	switch cfg.API.Backend {
	case config.BackendHTTP:
		e.client = api.NewHTTPClient(api.Options{
			BaseURL:    cfg.API.BaseURL,
			Timeout:    cfg.API.Timeout,
			RateLimit:  cfg.API.RateLimit,
			MaxRetries: cfg.API.MaxRetries,
			CSRFToken:  cfg.API.CSRFToken,
		})
	default:
		b, err := openLocal(ctx, cfg)
		if err != nil {
			e.close()
			return nil, err
		}
		e.local = b
		e.client = b
		e.closers = append(e.closers, b)
	}
	logging.Info("backend ready", "backend", cfg.API.Backend, "report", cfg.UI.DefaultReport)
	return e, nil
}

func (e *env) close() {
	e.events.Close()
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			logging.Warn("close failed", "err", err)
		}
	}
	logging.Close()
}

// openLocal opens the local database and seeds it from the fixture.
func openLocal(ctx context.Context, cfg *config.Config) (*localapi.Backend, error) {
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	b, err := localapi.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	f, err := loadFixture(cfg.Data.Fixture)
	if err != nil {
		b.Close()
		return nil, err
	}
	if err := b.Seed(ctx, f); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// loadFixture reads path, or the built-in fixture when path is empty.
func loadFixture(path string) (localapi.Fixture, error) {
	if path == "" {
		return localapi.DefaultFixture()
	}
	r, err := os.Open(path)
	if err != nil {
		return localapi.Fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer r.Close()
	return localapi.LoadFixture(r)
}
