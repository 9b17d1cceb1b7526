package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/supervisitor20/myreports/internal/app"
	"github.com/supervisitor20/myreports/internal/model"
	"github.com/supervisitor20/myreports/internal/resolve"
)

var menuCmd = &cobra.Command{
	Use:   "menu [intention [category [data-set]]]",
	Short: "Browse report types by intention, category and data set",
	Long: `menu lists the intentions, then the categories of the chosen intention, then
the data sets of the chosen category. Once all three are chosen it prints the
report data id to pass to --report.`,
	Args: cobra.MaximumNArgs(3),
	RunE: runMenu,
}

func runMenu(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	var sel [3]string
	copy(sel[:], args)

	st := app.NewStore(e.events)
	r := resolve.New(e.client, nil, e.events)
	if err := r.LoadMenu(cmd.Context(), st, sel[0], sel[1], sel[2]); err != nil {
		return err
	}
	return printMenu(cmd.OutOrStdout(), st.Filter().MenuChoices)
}

func printMenu(w io.Writer, m model.MenuChoices) error {
	if m.ReportDataID != "" {
		_, err := fmt.Fprintf(w, "report data id: %s\n", m.ReportDataID)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	section := func(title string, items []model.Item) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintln(tw, title)
		for _, it := range items {
			fmt.Fprintf(tw, "  %v\t%s\n", it.Value, it.Display)
		}
	}
	section("intentions", m.Intentions)
	section("categories", m.Categories)
	section("data sets", m.DataSets)
	return tw.Flush()
}
