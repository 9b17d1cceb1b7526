// Package api defines the reporting backend the filter builder talks to and
// provides an HTTP implementation of it.
package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/model"
)

// Client is the reporting backend.
type Client interface {
	// GetFilters returns the filter fields and default filter for a report type.
	GetFilters(ctx context.Context, reportDataID string) (FilterInterface, error)
	GetDefaultReportName(ctx context.Context, reportDataID string) (string, error)
	// GetHelp returns candidate values for field given the rest of the
	// serialised filter and the user's partial input.
	GetHelp(ctx context.Context, reportDataID string, wire map[string]any, field, partial string) ([]model.Item, error)
	GetSetUpMenuChoices(ctx context.Context, intention, category, dataSet string) (model.MenuChoices, error)
	// RunReport starts a report. A *FieldErrors is returned when the backend
	// rejects specific fields.
	RunReport(ctx context.Context, reportDataID, name string, wire map[string]any) (ReportHandle, error)
}

// FilterInterface is a report type's filter description.
type FilterInterface struct {
	Fields filter.Interface
	// DefaultFilter is the JSON-decoded starting filter; see filter.DecodeTree.
	DefaultFilter map[string]any
}

// ReportHandle identifies a started report.
type ReportHandle struct {
	ID string `json:"id"`
	// Records is the number of matching records, when the backend reports it.
	Records int `json:"records,omitempty"`
}

// ErrNotFound is returned when the report type does not exist.
var ErrNotFound = errors.New("not found")

// StatusError is an unexpected HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Code, e.Body)
}

// FieldErrors is a rejected run with messages keyed by field.
type FieldErrors struct {
	Fields map[string][]string
}

func (e *FieldErrors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}
