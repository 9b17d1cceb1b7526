package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/supervisitor20/myreports/internal/filter"
	"github.com/supervisitor20/myreports/internal/model"
)

const dateLayout = "01/02/2006"

// summarize renders a filter value on one line. ok is false when the field
// has no filter.
func summarize(v filter.Value) (text string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "any", false
	case filter.Scalar:
		return scalarText(x.V), true
	case filter.OrSet:
		if len(x) == 0 {
			return "(none)", true
		}
		return strings.Join(displays(x), ", "), true
	case filter.AndOrGroups:
		parts := make([]string, 0, len(x))
		for _, g := range x {
			if len(g) == 0 {
				continue
			}
			parts = append(parts, "("+strings.Join(displays(g), " or ")+")")
		}
		if len(parts) == 0 {
			return "(none)", true
		}
		return strings.Join(parts, " and "), true
	case filter.DateRange:
		return formatDateRange(x), true
	case filter.CityState:
		return formatCityState(x), true
	case filter.NoLink:
		return "(unlinked)", true
	case filter.Raw:
		return fmt.Sprint(x.V), true
	}
	return fmt.Sprint(v), true
}

func scalarText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case model.Item:
		return s.Display
	}
	return fmt.Sprint(v)
}

func displays(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Display
	}
	return out
}

func formatDateRange(d filter.DateRange) string {
	return d.Begin + " - " + d.End
}

// parseDateRange reads "MM/DD/YYYY - MM/DD/YYYY".
func parseDateRange(s string) (filter.DateRange, error) {
	begin, end, found := strings.Cut(s, " - ")
	if !found {
		return filter.DateRange{}, errors.New("use MM/DD/YYYY - MM/DD/YYYY")
	}
	begin, end = strings.TrimSpace(begin), strings.TrimSpace(end)
	b, err := time.Parse(dateLayout, begin)
	if err != nil {
		return filter.DateRange{}, fmt.Errorf("bad start date %q", begin)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return filter.DateRange{}, fmt.Errorf("bad end date %q", end)
	}
	if e.Before(b) {
		return filter.DateRange{}, errors.New("end date is before start date")
	}
	return filter.DateRange{Begin: begin, End: end}, nil
}

func formatCityState(c filter.CityState) string {
	switch {
	case c.City != "" && c.State != "":
		return c.City + ", " + c.State
	case c.City != "":
		return c.City
	}
	return c.State
}

// parseCityState reads "City, ST", "City" or a two-letter state.
func parseCityState(s string) (filter.CityState, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return filter.CityState{}, errors.New("enter a city, a state or both")
	}
	if i := strings.LastIndex(s, ","); i >= 0 {
		city := strings.TrimSpace(s[:i])
		state := strings.ToUpper(strings.TrimSpace(s[i+1:]))
		return filter.CityState{City: city, State: state}, nil
	}
	if len(s) == 2 {
		return filter.CityState{State: strings.ToUpper(s)}, nil
	}
	return filter.CityState{City: s}, nil
}

// editText is the input prefill for a field's current value.
func editText(v filter.Value) string {
	switch x := v.(type) {
	case filter.DateRange:
		return formatDateRange(x)
	case filter.CityState:
		return formatCityState(x)
	case filter.Scalar:
		return scalarText(x.V)
	}
	return ""
}
