package filter

import (
	"github.com/supervisitor20/myreports/internal/model"
)

// Tree maps field names to filter values. An absent key means the field
// does not filter at all; an empty OrSet means it requires zero matches.
type Tree map[string]Value

// Clone returns a shallow copy. Values are never mutated in place, so
// sharing them between trees is safe.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Equal reports whether two trees hold the same fields and values.
func (t Tree) Equal(o Tree) bool {
	if len(t) != len(o) {
		return false
	}
	for k, v := range t {
		w, ok := o[k]
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}

// OrSet returns the field as an OrSet, or nil when absent or another shape.
func (t Tree) OrSet(field string) OrSet {
	if set, ok := t[field].(OrSet); ok {
		return set
	}
	return nil
}

// Groups returns the field as AndOrGroups, or nil when absent or another shape.
func (t Tree) Groups(field string) AndOrGroups {
	if g, ok := t[field].(AndOrGroups); ok {
		return g
	}
	return nil
}

func (t Tree) with(field string, v Value) Tree {
	out := t.Clone()
	out[field] = v
	return out
}

func (t Tree) without(field string) Tree {
	out := t.Clone()
	delete(out, field)
	return out
}

// AddOrReplaceByValues merges items into existing. Existing items whose
// value matches a new item are dropped and the new items are appended in
// argument order, so a changed display label for the same value surfaces
// at the end. Duplicates within items collapse to the last occurrence.
func AddOrReplaceByValues(existing, items []model.Item) OrSet {
	last := make(map[string]int, len(items))
	for i, item := range items {
		last[item.Key()] = i
	}

	out := make(OrSet, 0, len(existing)+len(items))
	for _, item := range existing {
		if _, replaced := last[item.Key()]; !replaced {
			out = append(out, item)
		}
	}
	for i, item := range items {
		if last[item.Key()] == i {
			out = append(out, item)
		}
	}
	return out
}

// RemoveByValues drops every item whose value appears in items.
func RemoveByValues(existing, items []model.Item) OrSet {
	drop := model.KeySet(items)
	out := make(OrSet, 0, len(existing))
	for _, item := range existing {
		if _, ok := drop[item.Key()]; !ok {
			out = append(out, item)
		}
	}
	return out
}

// ReplaceItemAtIndex applies fn to the group at index. An index outside the
// list appends fn(nil) as a new group at the end.
func ReplaceItemAtIndex(groups AndOrGroups, index int, fn func(OrSet) OrSet) AndOrGroups {
	if index < 0 || index >= len(groups) {
		out := make(AndOrGroups, len(groups), len(groups)+1)
		copy(out, groups)
		return append(out, fn(nil))
	}
	out := make(AndOrGroups, len(groups))
	copy(out, groups)
	out[index] = fn(groups[index])
	return out
}

// RemoveFromGroup removes items from the group at index and splices the
// group out when it becomes empty; later groups shift down. An index
// outside the list leaves groups untouched. The result is never nil.
func RemoveFromGroup(groups AndOrGroups, index int, items []model.Item) AndOrGroups {
	out := make(AndOrGroups, 0, len(groups))
	for i, g := range groups {
		if i != index {
			out = append(out, g)
			continue
		}
		if remaining := RemoveByValues(g, items); len(remaining) > 0 {
			out = append(out, remaining)
		}
	}
	return out
}
