package filter

import (
	"fmt"

	"github.com/supervisitor20/myreports/internal/logging"
	"github.com/supervisitor20/myreports/internal/model"
)

// WarnFunc receives developer warnings about values that cannot be sent.
type WarnFunc func(msg string, keyvals ...any)

// ToWireFormat reduces a display-rich tree to the primitive values the
// backend expects. Display labels are dropped from OrSets and groups; other
// supported shapes pass through. Unsupported values are reported to warn and
// omitted. A nil warn logs through the package logger.
func ToWireFormat(tree Tree, warn WarnFunc) map[string]any {
	if warn == nil {
		warn = logging.Warn
	}
	out := make(map[string]any, len(tree))
	for field, v := range tree {
		wire, ok := toWire(v)
		if !ok {
			warn("unsupported filter value", "field", field, "type", fmt.Sprintf("%T", v))
			continue
		}
		out[field] = wire
	}
	return out
}

func toWire(v Value) (any, bool) {
	switch x := v.(type) {
	case Scalar:
		switch x.V.(type) {
		case string, model.Item, map[string]any:
			return x.V, true
		}
		return nil, false
	case DateRange:
		return []string{x.Begin, x.End}, true
	case CityState:
		return x, true
	case NoLink:
		return x, true
	case OrSet:
		return model.Values(x), true
	case AndOrGroups:
		groups := make([][]any, len(x))
		for i, g := range x {
			groups[i] = model.Values(g)
		}
		return groups, true
	}
	return nil, false
}
