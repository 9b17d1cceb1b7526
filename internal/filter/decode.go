package filter

import "github.com/supervisitor20/myreports/internal/model"

// DecodeTree classifies every field of a JSON-decoded filter.
func DecodeTree(raw map[string]any) Tree {
	t := make(Tree, len(raw))
	for field, v := range raw {
		t[field] = Decode(v)
	}
	return t
}

// Decode classifies a JSON-decoded backend value into one of the filter
// shapes. Values that match none come back as Raw.
func Decode(v any) Value {
	switch x := v.(type) {
	case string:
		return Scalar{V: x}
	case map[string]any:
		return decodeRecord(x)
	case []any:
		return decodeList(x)
	}
	return Raw{V: v}
}

func decodeRecord(m map[string]any) Value {
	if nl, ok := m["nolink"].(bool); ok && nl && len(m) == 1 {
		return NoLink{}
	}
	if cs, ok := decodeCityState(m); ok {
		return cs
	}
	return Scalar{V: m}
}

func decodeCityState(m map[string]any) (CityState, bool) {
	if len(m) == 0 {
		return CityState{}, false
	}
	var cs CityState
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return CityState{}, false
		}
		switch k {
		case "city":
			cs.City = s
		case "state":
			cs.State = s
		default:
			return CityState{}, false
		}
	}
	return cs, true
}

func decodeList(list []any) Value {
	if len(list) == 0 {
		return OrSet{}
	}
	if len(list) == 2 {
		b, bok := list[0].(string)
		e, eok := list[1].(string)
		if bok && eok {
			return DateRange{Begin: b, End: e}
		}
	}
	if _, nested := list[0].([]any); nested {
		groups := make(AndOrGroups, 0, len(list))
		for _, g := range list {
			inner, ok := g.([]any)
			if !ok {
				return Raw{V: list}
			}
			set, ok := decodeItems(inner)
			if !ok {
				return Raw{V: list}
			}
			groups = append(groups, set)
		}
		return groups
	}
	if set, ok := decodeItems(list); ok {
		return set
	}
	return Raw{V: list}
}

func decodeItems(list []any) (OrSet, bool) {
	set := make(OrSet, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok := m["value"]
		if !ok {
			return nil, false
		}
		display, _ := m["display"].(string)
		set = append(set, model.Item{Value: value, Display: display})
	}
	return set, true
}
