package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/supervisitor20/myreports/internal/config"
	"github.com/supervisitor20/myreports/internal/otel"
)

type eventFilter struct {
	kind   string
	level  string
	comp   string
	field  string
	report string
}

var (
	eventsTail   int
	eventsFollow bool
	eventsJSON   bool
	eventsMatch  eventFilter
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the JSONL event log",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.IntVarP(&eventsTail, "tail", "n", 50, "number of recent events to show")
	f.BoolVarP(&eventsFollow, "follow", "f", false, "keep printing new events")
	f.BoolVar(&eventsJSON, "json", false, "print raw JSON lines")
	f.StringVar(&eventsMatch.kind, "kind", "", "event kind prefix (e.g. 'hints')")
	f.StringVar(&eventsMatch.level, "level", "", "minimum level: debug, info, warn, error")
	f.StringVar(&eventsMatch.comp, "comp", "", "component name")
	f.StringVar(&eventsMatch.field, "field", "", "filter field name")
	f.StringVar(&eventsMatch.report, "report-id", "", "report data id")
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level otel.Level) int {
	switch level {
	case otel.LevelInfo:
		return 1
	case otel.LevelWarn:
		return 2
	case otel.LevelError:
		return 3
	default:
		return 0
	}
}

func (m eventFilter) match(ev otel.Event) bool {
	if m.kind != "" && !strings.HasPrefix(string(ev.Kind), m.kind) {
		return false
	}
	if m.level != "" && levelRank(ev.Level) < levelRank(otel.Level(m.level)) {
		return false
	}
	if m.comp != "" && ev.Comp != m.comp {
		return false
	}
	if m.field != "" && ev.Field != m.field {
		return false
	}
	if m.report != "" && ev.ReportDataID != m.report {
		return false
	}
	return true
}

func formatEvent(ev otel.Event) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-18s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}
	if ev.Field != "" {
		parts = append(parts, "field="+ev.Field)
	}
	if ev.Instance != "" {
		parts = append(parts, "inst="+ev.Instance)
	}
	if ev.Msg != "" {
		parts = append(parts, ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}

type parsedLine struct {
	ev  otel.Event
	raw []byte
}

// readTail returns the last n matching events of r. Lines that do not
// decode are skipped.
func readTail(r io.Reader, n int, match func(otel.Event) bool) ([]parsedLine, error) {
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var tail []parsedLine
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev otel.Event
		if json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		tail = append(tail, parsedLine{ev: ev, raw: bytes.Clone(raw)})
		if n > 0 && len(tail) > n {
			tail = tail[1:]
		}
	}
	return tail, scanner.Err()
}

func runEvents(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	path := cfg.EventLogPath()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no event log at %s; run the TUI first", path)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	emit := func(l parsedLine) {
		if eventsJSON {
			fmt.Fprintln(out, string(l.raw))
			return
		}
		fmt.Fprintln(out, formatEvent(l.ev))
	}

	lines, err := readTail(f, eventsTail, eventsMatch.match)
	if err != nil {
		return err
	}
	for _, l := range lines {
		emit(l)
	}
	if !eventsFollow {
		return nil
	}

	ctx := cmd.Context()
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if err != nil {
			return err
		}
		line = bytes.TrimRight(line, "\r\n")
		var ev otel.Event
		if len(line) == 0 || json.Unmarshal(line, &ev) != nil || !eventsMatch.match(ev) {
			continue
		}
		emit(parsedLine{ev: ev, raw: line})
	}
}
