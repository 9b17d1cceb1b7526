// Package filter models the report filter tree and its pure transitions.
//
// # Shapes
//
// A Tree maps field names to one of a closed set of Value shapes:
//
//   - Scalar: a single primitive or plain record
//   - OrSet: display items unique by value, "any of these"
//   - AndOrGroups: OrSets that must all be satisfied
//   - DateRange, CityState: small fixed records
//   - NoLink: the user explicitly cleared a field's implied link
//   - Raw: a backend value this package does not recognise
//
// Every transition returns a new State; nothing in this package mutates its
// inputs, so a State snapshot can be shared with the presentation layer.
package filter

import (
	"encoding/json"
	"reflect"

	"github.com/supervisitor20/myreports/internal/model"
)

// Value is one filter shape. The set of implementations is closed.
type Value interface {
	isValue()
}

// Scalar holds a primitive or a plain record (model.Item, map[string]any).
type Scalar struct {
	V any
}

// OrSet is an ordered list of items unique by value.
type OrSet []model.Item

// AndOrGroups is an ordered list of OrSets.
type AndOrGroups []OrSet

// DateRange is a begin/end pair of date strings.
type DateRange struct {
	Begin string
	End   string
}

// CityState is a location record; either half may be empty.
type CityState struct {
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// NoLink marks a field whose usual source link was cleared by the user.
type NoLink struct{}

// Raw carries a decoded value whose shape is not recognised.
type Raw struct {
	V any
}

func (Scalar) isValue()      {}
func (OrSet) isValue()       {}
func (AndOrGroups) isValue() {}
func (DateRange) isValue()   {}
func (CityState) isValue()   {}
func (NoLink) isValue()      {}
func (Raw) isValue()         {}

// MarshalJSON renders the sentinel record.
func (NoLink) MarshalJSON() ([]byte, error) {
	return []byte(`{"nolink":true}`), nil
}

// MarshalJSON renders the two-string shape the backend expects.
func (d DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{d.Begin, d.End})
}

// Text is shorthand for a string Scalar.
func Text(s string) Scalar {
	return Scalar{V: s}
}

// Equal reports whether two values are the same filter. Items compare by
// value key and display text.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Scalar:
		y, ok := b.(Scalar)
		return ok && scalarEqual(x.V, y.V)
	case OrSet:
		y, ok := b.(OrSet)
		return ok && itemsEqual(x, y)
	case AndOrGroups:
		y, ok := b.(AndOrGroups)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !itemsEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case DateRange:
		y, ok := b.(DateRange)
		return ok && x == y
	case CityState:
		y, ok := b.(CityState)
		return ok && x == y
	case NoLink:
		_, ok := b.(NoLink)
		return ok
	case Raw:
		y, ok := b.(Raw)
		return ok && reflect.DeepEqual(x.V, y.V)
	}
	return false
}

func scalarEqual(a, b any) bool {
	ai, aok := a.(model.Item)
	bi, bok := b.(model.Item)
	if aok || bok {
		return aok && bok && ai.Key() == bi.Key() && ai.Display == bi.Display
	}
	switch a.(type) {
	case map[string]any, []any:
		return reflect.DeepEqual(a, b)
	}
	return model.ValueKey(a) == model.ValueKey(b)
}

func itemsEqual(a, b []model.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key() != b[i].Key() || a[i].Display != b[i].Display {
			return false
		}
	}
	return true
}
