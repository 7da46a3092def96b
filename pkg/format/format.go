// Package format renders TMDL fragments: element definitions for
// insertion into existing files, property values, and description
// comment blocks.
//
// Output uses tab indentation relative to the element keyword line;
// callers re-indent the whole fragment to the insertion depth.
package format

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MeasureSpec describes a measure definition to render.
type MeasureSpec struct {
	Name         string
	Expression   string
	Description  string
	FormatString string
	LineageTag   string
}

// ColumnSpec describes a column definition to render.
type ColumnSpec struct {
	Name         string
	DataType     string
	Expression   string
	FormatString string
	SummarizeBy  string
	IsHidden     bool
	LineageTag   string
}

// Measure renders a complete measure definition. A missing lineage tag
// gets a freshly generated UUID.
func Measure(spec MeasureSpec) string {
	tag := spec.LineageTag
	if tag == "" {
		tag = uuid.New().String()
	}

	var lines []string
	for _, dl := range DescriptionLines(spec.Description) {
		lines = append(lines, "/// "+dl)
	}
	lines = append(lines, fmt.Sprintf("measure %s = %s", QuoteName(spec.Name), spec.Expression))
	lines = append(lines, "\tlineageTag: "+tag)
	if spec.FormatString != "" {
		lines = append(lines, fmt.Sprintf("\tformatString: %q", spec.FormatString))
	}
	return strings.Join(lines, "\n")
}

// Column renders a complete column definition. A non-empty Expression
// produces a calculated column.
func Column(spec ColumnSpec) string {
	tag := spec.LineageTag
	if tag == "" {
		tag = uuid.New().String()
	}

	var lines []string
	if spec.Expression != "" {
		lines = append(lines, fmt.Sprintf("column %s = %s", QuoteName(spec.Name), spec.Expression))
	} else {
		lines = append(lines, "column "+QuoteName(spec.Name))
	}
	lines = append(lines, "\tdataType: "+spec.DataType)
	lines = append(lines, "\tlineageTag: "+tag)
	if spec.FormatString != "" {
		lines = append(lines, fmt.Sprintf("\tformatString: %q", spec.FormatString))
	}
	if spec.SummarizeBy != "" {
		lines = append(lines, "\tsummarizeBy: "+spec.SummarizeBy)
	}
	if spec.IsHidden {
		lines = append(lines, "\tisHidden")
	}
	return strings.Join(lines, "\n")
}

// Characters outside identifier-safe TMDL that force single quoting.
const specialChars = ".-+*/()[]{}@#$%^&"

// Keywords that shadow construct names when used bare.
var reservedWords = map[string]struct{}{
	"table":        {},
	"column":       {},
	"measure":      {},
	"partition":    {},
	"relationship": {},
}

// QuoteName wraps a name in single quotes when TMDL requires it:
// spaces, punctuation, or a reserved keyword. Already-quoted names
// pass through unchanged.
func QuoteName(name string) string {
	if len(name) >= 2 {
		if (name[0] == '\'' && name[len(name)-1] == '\'') ||
			(name[0] == '"' && name[len(name)-1] == '"') {
			return name
		}
	}
	if _, reserved := reservedWords[strings.ToLower(name)]; reserved ||
		strings.Contains(name, " ") || strings.ContainsAny(name, specialChars) {
		return "'" + name + "'"
	}
	return name
}

// Value renders a property value in TMDL spelling: strings are quoted
// unless already quoted, booleans lowercase, numbers bare.
func Value(v any) string {
	switch val := v.(type) {
	case string:
		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') ||
				(val[0] == '\'' && val[len(val)-1] == '\'') {
				return val
			}
		}
		return `"` + val + `"`
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Property names accepted on the wire in snake_case, mapped to their
// TMDL camelCase spelling. Unknown names pass through unchanged.
var propertyNames = map[string]string{
	"format_string": "formatString",
	"data_type":     "dataType",
	"summarize_by":  "summarizeBy",
	"is_hidden":     "isHidden",
	"lineage_tag":   "lineageTag",
	"source_column": "sourceColumn",
}

// PropertyName translates a property key to its TMDL spelling.
func PropertyName(name string) string {
	if tmdl, ok := propertyNames[name]; ok {
		return tmdl
	}
	return name
}

// DescriptionLines splits a description into comment-ready lines:
// sentence boundaries first, then greedy wrapping at 80 columns
// without breaking words.
func DescriptionLines(description string) []string {
	if description == "" {
		return nil
	}

	var lines []string
	for _, sentence := range strings.Split(strings.ReplaceAll(description, ". ", ".\n"), "\n") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lines = append(lines, wrap(sentence, 80)...)
	}
	return lines
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
