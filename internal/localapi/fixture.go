package localapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/supervisitor20/myreports/internal/model"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Fixture is the seed data for an offline backend.
type Fixture struct {
	ReportTypes []ReportType `yaml:"report_types"`
	Partners    []Partner    `yaml:"partners"`
	Contacts    []Contact    `yaml:"contacts"`
}

// ReportType is one selectable report with its filter interface.
type ReportType struct {
	ID            string         `yaml:"id"`
	Intention     model.Item     `yaml:"intention"`
	Category      model.Item     `yaml:"category"`
	DataSet       model.Item     `yaml:"data_set"`
	DefaultName   string         `yaml:"default_name"`
	Filters       []FixtureField `yaml:"filters"`
	DefaultFilter map[string]any `yaml:"default_filter"`
}

// FixtureField declares a filter field.
type FixtureField struct {
	Name          string `yaml:"filter" json:"filter"`
	InterfaceType string `yaml:"interface_type" json:"interface_type"`
	Display       string `yaml:"display" json:"display"`
	Help          bool   `yaml:"help" json:"help"`
}

type Partner struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type Contact struct {
	ID      int64    `yaml:"id"`
	Name    string   `yaml:"name"`
	Partner int64    `yaml:"partner"`
	City    string   `yaml:"city"`
	State   string   `yaml:"state"`
	Tags    []string `yaml:"tags"`
}

// LoadFixture decodes a YAML fixture.
func LoadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}

// DefaultFixture returns the built-in demo data.
func DefaultFixture() (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(defaultFixture, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode built-in fixture: %w", err)
	}
	return f, nil
}

// Seed writes f into the database in one transaction. Rows with existing ids
// are replaced, so seeding twice is harmless.
func (b *Backend) Seed(ctx context.Context, f Fixture) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, rt := range f.ReportTypes {
		filtersJSON, err := json.Marshal(rt.Filters)
		if err != nil {
			return fmt.Errorf("encode filters for %s: %w", rt.ID, err)
		}
		if rt.DefaultFilter == nil {
			rt.DefaultFilter = map[string]any{}
		}
		defaultJSON, err := json.Marshal(rt.DefaultFilter)
		if err != nil {
			return fmt.Errorf("encode default filter for %s: %w", rt.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO report_types (
				id, intention_value, intention_display, category_value, category_display,
				data_set_value, data_set_display, default_name, filters_json, default_filter_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rt.ID,
			jsonText(rt.Intention.Value), rt.Intention.Display,
			jsonText(rt.Category.Value), rt.Category.Display,
			jsonText(rt.DataSet.Value), rt.DataSet.Display,
			rt.DefaultName, string(filtersJSON), string(defaultJSON),
		)
		if err != nil {
			return fmt.Errorf("insert report type %s: %w", rt.ID, err)
		}
	}

	for _, p := range f.Partners {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO partners (id, name) VALUES (?, ?)`, p.ID, p.Name); err != nil {
			return fmt.Errorf("insert partner %d: %w", p.ID, err)
		}
	}

	for _, c := range f.Contacts {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO contacts (id, name, partner_id, city, state) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Partner, c.City, c.State)
		if err != nil {
			return fmt.Errorf("insert contact %d: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM contact_tags WHERE contact_id = ?`, c.ID); err != nil {
			return fmt.Errorf("clear tags for contact %d: %w", c.ID, err)
		}
		for _, tag := range c.Tags {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO contact_tags (contact_id, tag) VALUES (?, ?)`, c.ID, tag); err != nil {
				return fmt.Errorf("insert tag for contact %d: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// jsonText stores a menu value so its type survives the round trip.
func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func fromJSONText(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
