package otel

import (
	"os"
	"sync/atomic"
)

var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("MYREPORTS_TRACE") != "")
}

// TraceEnabled reports whether MYREPORTS_TRACE is set. When it is, the UI
// records every message it handles.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
