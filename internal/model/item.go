// Package model holds the display items shared by filters, hints and search results.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is a {value, display} pair. Value is the identity sent to the backend;
// Display is what the user sees and may change for the same value.
type Item struct {
	Value   any    `json:"value" yaml:"value"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

// Key returns a comparable identity for the item's value.
func (i Item) Key() string {
	return ValueKey(i.Value)
}

// ValueKey normalises a value so numbers compare by magnitude regardless of
// their Go type (3, int64(3) and 3.0 all match) while "3" stays distinct.
func ValueKey(v any) string {
	switch n := v.(type) {
	case nil:
		return "nil"
	case string:
		return "s:" + n
	case bool:
		return "b:" + strconv.FormatBool(n)
	case int:
		return numKey(float64(n))
	case int32:
		return numKey(float64(n))
	case int64:
		return numKey(float64(n))
	case uint:
		return numKey(float64(n))
	case uint32:
		return numKey(float64(n))
	case uint64:
		return numKey(float64(n))
	case float32:
		return numKey(float64(n))
	case float64:
		return numKey(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return numKey(f)
		}
		return "s:" + n.String()
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

func numKey(f float64) string {
	return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
}

// Values extracts the raw values of items, preserving order.
func Values(items []Item) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.Value
	}
	return out
}

// KeySet returns the set of value keys present in items.
func KeySet(items []Item) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item.Key()] = struct{}{}
	}
	return set
}
