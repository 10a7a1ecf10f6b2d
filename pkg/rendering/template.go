// Package rendering provides template rendering for source queries
package rendering

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// TimeLayout is how time bounds are rendered into queries
const TimeLayout = "2006-01-02 15:04:05"

// TemplateEngine provides template rendering with Sprig functions
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a new template engine with Sprig functions
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: sprig.TxtFuncMap(),
	}
}

// Render renders a template with the given variables
func (t *TemplateEngine) Render(content string, variables map[string]interface{}) (string, error) {
	tmpl, err := template.New("query").Funcs(t.funcMap).Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// QueryWindow bounds and filters a query log read
type QueryWindow struct {
	Table     string
	From      time.Time
	To        time.Time
	Databases []string
	Limit     int
}

// BuildVariables builds template variables for a query log read. Zero bounds
// render as empty strings so templates can test them with `if`. Bounds are
// rendered in UTC.
func (t *TemplateEngine) BuildVariables(w QueryWindow) map[string]interface{} {
	variables := map[string]interface{}{
		"table":     w.Table,
		"from":      "",
		"to":        "",
		"databases": w.Databases,
		"limit":     w.Limit,
	}

	if !w.From.IsZero() {
		variables["from"] = w.From.UTC().Format(TimeLayout)
	}

	if !w.To.IsZero() {
		variables["to"] = w.To.UTC().Format(TimeLayout)
	}

	return variables
}
