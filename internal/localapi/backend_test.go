package localapi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisitor20/myreports/internal/api"
	"github.com/supervisitor20/myreports/internal/app"
	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/ids"
	"github.com/supervisitor20/myreports/internal/model"
	"github.com/supervisitor20/myreports/internal/resolve"
)

func openSeeded(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	f, err := DefaultFixture()
	require.NoError(t, err)
	require.NoError(t, b.Seed(context.Background(), f))
	return b
}

func displays(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Display
	}
	return out
}

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(strings.NewReader(`
partners:
  - {id: 1, name: Acme}
contacts:
  - {id: 2, name: Ann, partner: 1, state: IN, tags: [veteran]}
`))
	require.NoError(t, err)
	assert.Len(t, f.Partners, 1)
	assert.Equal(t, []string{"veteran"}, f.Contacts[0].Tags)

	_, err = LoadFixture(strings.NewReader("partners:\n  - {id: 1, nmae: typo}\n"))
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	b := openSeeded(t)
	f, err := DefaultFixture()
	require.NoError(t, err)
	require.NoError(t, b.Seed(context.Background(), f))

	partners, err := b.GetHelp(context.Background(), "3", nil, "partner", "")
	require.NoError(t, err)
	assert.Len(t, partners, 3)
}

func TestGetFilters(t *testing.T) {
	b := openSeeded(t)

	fi, err := b.GetFilters(context.Background(), "3")
	require.NoError(t, err)
	assert.True(t, fi.Fields.Has("contact"))
	assert.True(t, fi.Fields.HasType(filter.TypeCityState))

	tree := filter.DecodeTree(fi.DefaultFilter)
	assert.Equal(t, filter.DateRange{Begin: "01/01/2025", End: "12/31/2025"}, tree["date"])

	_, err = b.GetFilters(context.Background(), "99")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestContactsScopedToPartners(t *testing.T) {
	b := openSeeded(t)
	ctx := context.Background()

	all, err := b.GetHelp(ctx, "3", map[string]any{}, "contact", "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	scoped, err := b.GetHelp(ctx, "3", map[string]any{"partner": []any{float64(2)}}, "contact", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cara Chen", "Dev Desai"}, displays(scoped))

	located, err := b.GetHelp(ctx, "3", map[string]any{"locations": filter.CityState{State: "IN"}}, "contact", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Baker"}, displays(located))
}

func TestOtherHints(t *testing.T) {
	b := openSeeded(t)
	ctx := context.Background()

	states, err := b.GetHelp(ctx, "3", nil, "state", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"IL", "IN", "OH"}, displays(states))

	cities, err := b.GetHelp(ctx, "3", map[string]any{"locations": map[string]any{"state": "IL"}}, "city", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chicago", "Springfield"}, displays(cities))

	tags, err := b.GetHelp(ctx, "3", nil, "tags", "vet")
	require.NoError(t, err)
	assert.Equal(t, []string{"veteran"}, displays(tags))

	unknown, err := b.GetHelp(ctx, "3", nil, "date", "")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestMenuChoices(t *testing.T) {
	b := openSeeded(t)
	ctx := context.Background()

	top, err := b.GetSetUpMenuChoices(ctx, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"PRM"}, displays(top.Intentions))
	assert.Empty(t, top.Categories)

	cats, err := b.GetSetUpMenuChoices(ctx, "1", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Contacts", "Partners"}, displays(cats.Categories))

	full, err := b.GetSetUpMenuChoices(ctx, "1", "4", "3")
	require.NoError(t, err)
	assert.Equal(t, "4", full.ReportDataID)
	assert.Equal(t, []string{"Unaggregated"}, displays(full.DataSets))
}

func TestRunReport(t *testing.T) {
	b := openSeeded(t)
	b.SetIDGenerator(ids.NewSequence("report-"))
	b.SetClock(func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) })
	ctx := context.Background()

	name, err := b.GetDefaultReportName(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Contacts Report 2025-03-01", name)

	_, err = b.RunReport(ctx, "3", " ", map[string]any{})
	var fe *api.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Fields, "name")

	h, err := b.RunReport(ctx, "3", name, map[string]any{"partner": []any{1}})
	require.NoError(t, err)
	assert.Equal(t, "report-1", h.ID)
	assert.Equal(t, 2, h.Records, "Acme has two contacts")

	saved, err := b.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, name, saved[0].Name)
	assert.Equal(t, []any{float64(1)}, saved[0].Filter["partner"])

	h, err = b.RunReport(ctx, "3", name, map[string]any{
		"partner":   []any{1, 2},
		"contact":   []any{10, 12, 14},
		"locations": map[string]any{"state": "IL"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.Records, "only Cara Chen is a chosen IL contact of a chosen partner")

	_, err = b.RunReport(ctx, "99", "x", nil)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

// The resolver prunes a contact whose partner is deselected.
func TestResolverAgainstLocalBackend(t *testing.T) {
	b := openSeeded(t)
	ctx := context.Background()
	st := app.NewStore(nil)
	r := resolve.New(b, ids.NewSequence("h"), nil)

	fi, err := r.StartNewReport(ctx, st, "3")
	require.NoError(t, err)

	st.Dispatch(filter.AddToOrFilter{Field: "partner", Items: []model.Item{{Value: 1, Display: "Acme Staffing"}, {Value: 2, Display: "Globex Veterans Network"}}})
	st.Dispatch(filter.AddToOrFilter{Field: "contact", Items: []model.Item{{Value: 10, Display: "Ann Alvarez"}, {Value: 12, Display: "Cara Chen"}}})
	r.ResolveDependencies(ctx, st, fi.Fields, "3")
	assert.Len(t, st.Filter().CurrentFilter.OrSet("contact"), 2)

	st.Dispatch(filter.RemoveFromOrFilter{Field: "partner", Items: []model.Item{{Value: 2}}})
	r.ResolveDependencies(ctx, st, fi.Fields, "3")

	assert.Equal(t, filter.OrSet{{Value: 10, Display: "Ann Alvarez"}}, st.Filter().CurrentFilter["contact"])
	assert.False(t, st.Filter().CurrentFilterDirty)
}
