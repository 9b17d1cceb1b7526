// Package otel records structured events about backend traffic and filter
// resolution as JSONL, with an optional in-memory ring for live inspection.
package otel

import (
	"encoding/json"
	"time"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	KindHintsStart    EventKind = "hints.start"
	KindHintsComplete EventKind = "hints.complete"
	KindHintsError    EventKind = "hints.error"

	KindResolveStart    EventKind = "resolve.start"
	KindResolvePrune    EventKind = "resolve.prune"
	KindResolveComplete EventKind = "resolve.complete"

	KindPrefetchStart    EventKind = "prefetch.start"
	KindPrefetchComplete EventKind = "prefetch.complete"

	KindSearchStart EventKind = "search.start"
	KindSearchStale EventKind = "search.stale"

	KindReportStart   EventKind = "report.start"
	KindReportRun     EventKind = "report.run"
	KindReportInvalid EventKind = "report.invalid"
	KindReportError   EventKind = "report.error"

	KindStoreError EventKind = "store.error"

	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"

	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is one JSONL record. Only Kind and Time are always present.
type Event struct {
	Time         time.Time      `json:"t"`
	Level        Level          `json:"level,omitempty"`
	Kind         EventKind      `json:"kind"`
	Comp         string         `json:"comp,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	ReportDataID string         `json:"report_data_id,omitempty"`
	Field        string         `json:"field,omitempty"`
	Instance     string         `json:"instance,omitempty"`
	LoadingID    string         `json:"loading_id,omitempty"`
	Dur          time.Duration  `json:"-"`
	DurMs        float64        `json:"dur_ms,omitempty"`
	Count        int            `json:"count,omitempty"`
	Err          string         `json:"err,omitempty"`
	Msg          string         `json:"msg,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// MarshalJSON fills dur_ms from Dur.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}
