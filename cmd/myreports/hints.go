package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/supervisitor20/myreports/internal/app"
	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/model"
	"github.com/supervisitor20/myreports/internal/resolve"
)

var (
	hintsJSON bool
	wireWith  []string
)

var hintsCmd = &cobra.Command{
	Use:   "hints <field> [partial]",
	Short: "Print the hints offered for a field of the report",
	Long: `hints starts the report with its default filter and prints what the backend
offers for field, narrowed by partial. Selections given with --select are
applied first, so their effect on dependent fields can be checked.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runHints,
}

var wireCmd = &cobra.Command{
	Use:   "wire",
	Short: "Print the report's filter in the backend's wire format",
	Args:  cobra.NoArgs,
	RunE:  runWire,
}

func init() {
	hintsCmd.Flags().BoolVar(&hintsJSON, "json", false, "print hints as JSON")
	for _, c := range []*cobra.Command{hintsCmd, wireCmd} {
		c.Flags().StringArrayVar(&wireWith, "select", nil, `add a selection as field=value:display (repeatable)`)
	}
}

// session is a started report for one-shot commands.
type session struct {
	store    *app.Store
	resolver *resolve.Resolver
	id       string
}

func startSession(cmd *cobra.Command, e *env) (*session, error) {
	s := &session{
		store:    app.NewStore(e.events),
		resolver: resolve.New(e.client, nil, e.events),
		id:       e.cfg.UI.DefaultReport,
	}
	fi, err := s.resolver.StartNewReport(cmd.Context(), s.store, s.id)
	if err != nil {
		return nil, fmt.Errorf("start report %s: %w", s.id, err)
	}
	for _, sel := range wireWith {
		field, item, err := parseSelection(sel)
		if err != nil {
			return nil, err
		}
		s.store.Dispatch(filter.AddToOrFilter{Field: field, Items: []model.Item{item}})
	}
	s.resolver.ResolveDependencies(cmd.Context(), s.store, fi.Fields, s.id)
	return s, nil
}

// parseSelection reads "field=value:display". Integer values become numbers.
func parseSelection(s string) (string, model.Item, error) {
	field, rest, ok := strings.Cut(s, "=")
	if !ok || field == "" || rest == "" {
		return "", model.Item{}, fmt.Errorf("bad selection %q: want field=value[:display]", s)
	}
	raw, display, _ := strings.Cut(rest, ":")
	var value any = raw
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = i
	}
	if display == "" {
		display = raw
	}
	return field, model.Item{Value: value, Display: display}, nil
}

func runHints(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	s, err := startSession(cmd, e)
	if err != nil {
		return err
	}
	field, partial := args[0], ""
	if len(args) > 1 {
		partial = args[1]
	}

	s.resolver.FetchHints(cmd.Context(), s.store, s.id, field, partial)
	st := s.store.Filter()
	if st.Notice != "" {
		return errors.New(st.Notice)
	}
	return printHints(cmd.OutOrStdout(), st.Hints[field], hintsJSON)
}

func printHints(w io.Writer, hints []model.Item, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if hints == nil {
			hints = []model.Item{}
		}
		return enc.Encode(hints)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, h := range hints {
		fmt.Fprintf(tw, "%v\t%s\n", h.Value, h.Display)
	}
	return tw.Flush()
}

func runWire(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	s, err := startSession(cmd, e)
	if err != nil {
		return err
	}
	wire := filter.ToWireFormat(s.store.Filter().CurrentFilter, nil)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(wire)
}
