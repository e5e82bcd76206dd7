// Package viz chooses a chart category for a query result from the wording of
// the user's request and the model's rephrasing. This is substring matching,
// not NLP: negated phrasing like "not a trend" still selects a line chart.
package viz

import "strings"

type Category string

const (
	Line    Category = "line"
	Pie     Category = "pie"
	Hist    Category = "hist"
	Scatter Category = "scatter"
	Bar     Category = "bar"
	Table   Category = "table"
)

type rule struct {
	keywords []string
	category Category
}

// Rules are evaluated in order, first match wins. Pie keywords are checked
// before distribution keywords so "percentage distribution" resolves to
// proportion intent rather than a histogram.
var rules = []rule{
	{keywords: []string{"trend", "over time", "line", "time-series"}, category: Line},
	{keywords: []string{"pie", "proportion", "share", "percentage"}, category: Pie},
	{keywords: []string{"distribution", "histogram", "frequency"}, category: Hist},
	{keywords: []string{"scatter", "against", "x-axis", "y-axis", "relationship"}, category: Scatter},
	{keywords: []string{"bar", "compare", "count", "group by"}, category: Bar},
}

// Select returns exactly one category for the given prompt pair. It never
// fails; when no keyword matches it returns Table.
func Select(userPrompt, modelHint string) Category {
	text := strings.ToLower(userPrompt) + " " + strings.ToLower(modelHint)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(text, keyword) {
				return r.category
			}
		}
	}
	return Table
}

// Resolve applies the rendering preconditions to a selected category. A
// category whose column-count precondition is unmet falls back to Table
// rather than failing.
func Resolve(c Category, columnCount int) Category {
	switch c {
	case Bar, Line, Scatter:
		if columnCount >= 2 {
			return c
		}
	case Pie:
		if columnCount == 2 {
			return c
		}
	case Hist:
		if columnCount >= 1 {
			return c
		}
	case Table:
		return Table
	}
	return Table
}
