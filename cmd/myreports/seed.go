package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supervisitor20/myreports/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the fixture into the local database",
	Long: `seed writes the configured fixture (data.fixture, or the built-in one) into the
local SQLite database. Existing rows with the same ids are replaced.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringP("fixture", "f", "", "fixture file (overrides data.fixture)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cfg.API.Backend != config.BackendLocal {
		return errors.New("seed only applies to the local backend (api.backend: local)")
	}
	if path, _ := cmd.Flags().GetString("fixture"); path != "" {
		cfg.Data.Fixture = path
	}

	b, err := openLocal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	f, err := loadFixture(cfg.Data.Fixture)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d report types, %d partners, %d contacts\n",
		cfg.DBPath(), len(f.ReportTypes), len(f.Partners), len(f.Contacts))
	return nil
}
