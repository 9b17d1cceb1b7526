package localapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/supervisitor20/myreports/internal/api"
	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/model"
)

var _ api.Client = (*Backend)(nil)

// GetFilters returns the filter interface of a report type.
func (b *Backend) GetFilters(ctx context.Context, reportDataID string) (api.FilterInterface, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var filtersJSON, defaultJSON string
	err := b.db.QueryRowContext(ctx,
		`SELECT filters_json, default_filter_json FROM report_types WHERE id = ?`, reportDataID,
	).Scan(&filtersJSON, &defaultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return api.FilterInterface{}, api.ErrNotFound
	}
	if err != nil {
		return api.FilterInterface{}, fmt.Errorf("query report type: %w", err)
	}

	var declared []FixtureField
	if err := json.Unmarshal([]byte(filtersJSON), &declared); err != nil {
		return api.FilterInterface{}, fmt.Errorf("decode filters: %w", err)
	}
	fields := make(filter.Interface, len(declared))
	for i, f := range declared {
		fields[i] = filter.Field{Name: f.Name, InterfaceType: f.InterfaceType, Display: f.Display, Help: f.Help}
	}
	defaults := map[string]any{}
	if err := json.Unmarshal([]byte(defaultJSON), &defaults); err != nil {
		return api.FilterInterface{}, fmt.Errorf("decode default filter: %w", err)
	}
	return api.FilterInterface{Fields: fields, DefaultFilter: defaults}, nil
}

// GetDefaultReportName suggests "<default name> <date>".
func (b *Backend) GetDefaultReportName(ctx context.Context, reportDataID string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var name string
	err := b.db.QueryRowContext(ctx, `SELECT default_name FROM report_types WHERE id = ?`, reportDataID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", api.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query default name: %w", err)
	}
	return strings.TrimSpace(name + " " + b.now().Format("2006-01-02")), nil
}

// GetHelp returns candidates for field narrowed by partial and by the
// selections already in wire. Contacts are limited to the selected
// partners and location.
func (b *Backend) GetHelp(ctx context.Context, reportDataID string, wire map[string]any, field, partial string) ([]model.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	like := "%" + partial + "%"
	var (
		query string
		args  []any
	)
	switch field {
	case "partner":
		query = `SELECT id, name FROM partners WHERE name LIKE ? ORDER BY name`
		args = []any{like}
	case "contact":
		where, scope := contactScope(wire)
		where = append([]string{"c.name LIKE ?"}, where...)
		args = append([]any{like}, scope...)
		query = `SELECT c.id, c.name FROM contacts c WHERE ` + strings.Join(where, " AND ") + ` ORDER BY c.name`
	case "state":
		query = `SELECT DISTINCT state, state FROM contacts WHERE state != '' AND state LIKE ? ORDER BY state`
		args = []any{like}
	case "city":
		_, state := location(wire["locations"])
		query = `SELECT DISTINCT city, city FROM contacts WHERE city != '' AND city LIKE ? AND (? = '' OR state = ?) ORDER BY city`
		args = []any{like, state, state}
	case "tags":
		query = `SELECT DISTINCT tag, tag FROM contact_tags WHERE tag LIKE ? ORDER BY tag`
		args = []any{like}
	default:
		return []model.Item{}, nil
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s hints: %w", field, err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var value any
		var display string
		if err := rows.Scan(&value, &display); err != nil {
			return nil, fmt.Errorf("scan %s hint: %w", field, err)
		}
		items = append(items, model.Item{Value: value, Display: display})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s hints: %w", field, err)
	}
	return items, nil
}

// contactScope narrows contacts to the selected partners and location.
func contactScope(wire map[string]any) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if partners := int64s(wire["partner"]); len(partners) > 0 {
		where = append(where, "c.partner_id IN ("+placeholders(len(partners))+")")
		for _, p := range partners {
			args = append(args, p)
		}
	}
	city, state := location(wire["locations"])
	if city != "" {
		where = append(where, "c.city = ?")
		args = append(args, city)
	}
	if state != "" {
		where = append(where, "c.state = ?")
		args = append(args, state)
	}
	return where, args
}

// countContacts counts the contacts a filter selects: the chosen contacts
// when there are any, otherwise every contact in scope.
func (b *Backend) countContacts(ctx context.Context, wire map[string]any) (int, error) {
	where, args := contactScope(wire)
	if contacts := int64s(wire["contact"]); len(contacts) > 0 {
		where = append(where, "c.id IN ("+placeholders(len(contacts))+")")
		for _, c := range contacts {
			args = append(args, c)
		}
	}
	query := `SELECT COUNT(*) FROM contacts c`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	var n int
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

// GetSetUpMenuChoices lists intentions, the categories of the chosen
// intention and the data sets of the chosen category. The report id is set
// once all three levels are chosen.
func (b *Backend) GetSetUpMenuChoices(ctx context.Context, intention, category, dataSet string) (model.MenuChoices, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows, err := b.db.QueryContext(ctx, `
		SELECT id, intention_value, intention_display, category_value, category_display,
			data_set_value, data_set_display
		FROM report_types ORDER BY id`)
	if err != nil {
		return model.MenuChoices{}, fmt.Errorf("query report types: %w", err)
	}
	defer rows.Close()

	var menu model.MenuChoices
	seen := map[string]bool{}
	add := func(list *[]model.Item, level, valueJSON, display string) {
		key := level + "/" + valueJSON
		if seen[key] {
			return
		}
		seen[key] = true
		*list = append(*list, model.Item{Value: fromJSONText(valueJSON), Display: display})
	}
	for rows.Next() {
		var id, iv, idisp, cv, cd, dv, dd string
		if err := rows.Scan(&id, &iv, &idisp, &cv, &cd, &dv, &dd); err != nil {
			return model.MenuChoices{}, fmt.Errorf("scan report type: %w", err)
		}
		add(&menu.Intentions, "i", iv, idisp)
		if !sameValue(iv, intention) {
			continue
		}
		add(&menu.Categories, "c", cv, cd)
		if !sameValue(cv, category) {
			continue
		}
		add(&menu.DataSets, "d", dv, dd)
		if sameValue(dv, dataSet) {
			menu.ReportDataID = id
		}
	}
	if err := rows.Err(); err != nil {
		return model.MenuChoices{}, fmt.Errorf("read report types: %w", err)
	}
	return menu, nil
}

// RunReport records a report run and counts the contacts it selects. An
// empty name is rejected per field.
func (b *Backend) RunReport(ctx context.Context, reportDataID, name string, wire map[string]any) (api.ReportHandle, error) {
	if strings.TrimSpace(name) == "" {
		return api.ReportHandle{}, &api.FieldErrors{Fields: map[string][]string{"name": {"Report name is required."}}}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var exists int
	err := b.db.QueryRowContext(ctx, `SELECT 1 FROM report_types WHERE id = ?`, reportDataID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return api.ReportHandle{}, api.ErrNotFound
	}
	if err != nil {
		return api.ReportHandle{}, fmt.Errorf("query report type: %w", err)
	}

	encoded, err := json.Marshal(wire)
	if err != nil {
		return api.ReportHandle{}, fmt.Errorf("encode filter: %w", err)
	}
	records, err := b.countContacts(ctx, wire)
	if err != nil {
		return api.ReportHandle{}, err
	}
	id := b.ids.Next()
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO reports (id, report_data_id, name, filter_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, reportDataID, name, string(encoded), b.now())
	if err != nil {
		return api.ReportHandle{}, fmt.Errorf("insert report: %w", err)
	}
	return api.ReportHandle{ID: id, Records: records}, nil
}

// SavedReport is a recorded run.
type SavedReport struct {
	ID           string
	ReportDataID string
	Name         string
	Filter       map[string]any
}

// Reports lists recorded runs, newest first.
func (b *Backend) Reports(ctx context.Context) ([]SavedReport, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows, err := b.db.QueryContext(ctx,
		`SELECT id, report_data_id, name, filter_json FROM reports ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []SavedReport
	for rows.Next() {
		var r SavedReport
		var filterJSON string
		if err := rows.Scan(&r.ID, &r.ReportDataID, &r.Name, &filterJSON); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal([]byte(filterJSON), &r.Filter); err != nil {
			return nil, fmt.Errorf("decode report filter: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// sameValue compares a stored JSON menu value with a selection passed as
// plain text, so "1" selects the value 1.
func sameValue(valueJSON, selected string) bool {
	if selected == "" {
		return false
	}
	return model.ValueKey(fromJSONText(valueJSON)) == model.ValueKey(fromJSONText(selected))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// int64s reads a list of numeric ids from a wire value. Entries that are
// not whole numbers are skipped.
func int64s(v any) []int64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []int64
	for _, el := range list {
		switch n := el.(type) {
		case int:
			out = append(out, int64(n))
		case int64:
			out = append(out, n)
		case float64:
			if n == float64(int64(n)) {
				out = append(out, int64(n))
			}
		case json.Number:
			if i, err := n.Int64(); err == nil {
				out = append(out, i)
			}
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				out = append(out, i)
			}
		}
	}
	return out
}

// location reads a city/state record from a wire value.
func location(v any) (city, state string) {
	switch l := v.(type) {
	case filter.CityState:
		return l.City, l.State
	case map[string]any:
		city, _ = l["city"].(string)
		state, _ = l["state"].(string)
	}
	return city, state
}
