package filter

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warnings []string

func (w *warnings) warn(msg string, keyvals ...any) {
	*w = append(*w, fmt.Sprint(append([]any{msg}, keyvals...)...))
}

func TestToWireFormat(t *testing.T) {
	tree := Tree{
		"name":      Text("Q3"),
		"date":      DateRange{Begin: "01/01/2020", End: "02/01/2020"},
		"locations": CityState{City: "Indianapolis", State: "IN"},
		"contact":   NoLink{},
		"partner":   OrSet{item(1, "Acme"), item(2, "Globex")},
		"empty":     OrSet{},
		"tags":      AndOrGroups{{item("red", "Red"), item("blue", "Blue")}, {item("new", "New")}},
		"record":    Scalar{V: map[string]any{"value": 1}},
	}

	var w warnings
	got := ToWireFormat(tree, w.warn)

	assert.Empty(t, w)
	assert.Equal(t, "Q3", got["name"])
	assert.Equal(t, []string{"01/01/2020", "02/01/2020"}, got["date"])
	assert.Equal(t, CityState{City: "Indianapolis", State: "IN"}, got["locations"])
	assert.Equal(t, NoLink{}, got["contact"])
	assert.Equal(t, []any{1, 2}, got["partner"])
	assert.Equal(t, []any{}, got["empty"])
	assert.Equal(t, [][]any{{"red", "blue"}, {"new"}}, got["tags"])
	assert.Equal(t, map[string]any{"value": 1}, got["record"])
}

func TestToWireFormatOmitsUnsupported(t *testing.T) {
	tree := Tree{
		"ok":     Text("x"),
		"raw":    Raw{V: []any{1, "two", 3}},
		"number": Scalar{V: 5},
	}

	var w warnings
	got := ToWireFormat(tree, w.warn)

	assert.Equal(t, map[string]any{"ok": "x"}, got)
	assert.Len(t, w, 2)
}

func TestToWireFormatJSON(t *testing.T) {
	tree := Tree{
		"date":    DateRange{Begin: "a", End: "b"},
		"contact": NoLink{},
		"partner": OrSet{item(4, "Ann")},
	}
	b, err := json.Marshal(ToWireFormat(tree, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":["a","b"],"contact":{"nolink":true},"partner":[4]}`, string(b))
}

func TestDecodeTree(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Q3",
		"date": ["01/01/2020", "02/01/2020"],
		"partner": [{"value": 1, "display": "Acme"}],
		"empty": [],
		"tags": [[{"value": "red", "display": "Red"}], [{"value": "new"}]],
		"locations": {"city": "Indianapolis", "state": "IN"},
		"contact": {"nolink": true},
		"record": {"value": 3, "display": "Three"},
		"count": 5,
		"mixed": [1, "a", 2]
	}`), &raw))

	tree := DecodeTree(raw)

	assert.Equal(t, Text("Q3"), tree["name"])
	assert.Equal(t, DateRange{Begin: "01/01/2020", End: "02/01/2020"}, tree["date"])
	assert.True(t, Equal(OrSet{item(1, "Acme")}, tree["partner"]))
	assert.Equal(t, OrSet{}, tree["empty"])
	assert.True(t, Equal(AndOrGroups{{item("red", "Red")}, {item("new", "")}}, tree["tags"]))
	assert.Equal(t, CityState{City: "Indianapolis", State: "IN"}, tree["locations"])
	assert.Equal(t, NoLink{}, tree["contact"])
	assert.IsType(t, Scalar{}, tree["record"])
	assert.Equal(t, Raw{V: float64(5)}, tree["count"])
	assert.IsType(t, Raw{}, tree["mixed"])
}

func TestDecodeRoundTripsThroughWire(t *testing.T) {
	tree := Tree{
		"date":      DateRange{Begin: "a", End: "b"},
		"locations": CityState{City: "Carmel"},
		"contact":   NoLink{},
	}
	b, err := json.Marshal(ToWireFormat(tree, nil))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.True(t, tree.Equal(DecodeTree(raw)))
}
