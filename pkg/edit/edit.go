// Package edit rewrites TMDL files at the line level. Every mutation
// touches only the lines of the targeted element; the rest of the file
// text survives byte for byte, including formatting the parser would
// not reproduce.
package edit

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapbi/pkg/format"
)

// ErrElementNotFound reports that no element of the requested type and
// name exists in the content.
var ErrElementNotFound = errors.New("edit: element not found")

var (
	reMeasureDef = regexp.MustCompile(`^measure\s+(.+?)\s*=`)
	reColumnDef  = regexp.MustCompile(`^column\s+(.+?)(\s*=|$)`)
	reTableDef   = regexp.MustCompile(`^table\s+(.+?)$`)
)

// Add inserts a rendered element definition into content. The element
// lands after the last existing block of the same type; with none
// present, measures go before the first column or partition, columns
// before the first partition, and anything else near the end of the
// file. The definition is indented indentLevel tabs, one tab by
// default in table files.
func Add(content, elementType, elementDef string, indentLevel int) string {
	lines := strings.Split(content, "\n")
	pos := insertionPoint(lines, elementType)

	if indentLevel < 1 {
		indentLevel = 1
	}
	indent := strings.Repeat("\t", indentLevel)

	defLines := strings.Split(strings.TrimSpace(elementDef), "\n")
	inserted := make([]string, len(defLines))
	for i, dl := range defLines {
		inserted[i] = indent + dl
	}

	lines = append(lines[:pos], append(inserted, lines[pos:]...)...)

	// Keep a blank line between the new element and whatever follows.
	after := pos + len(inserted)
	if after < len(lines) && strings.TrimSpace(lines[after]) != "" {
		lines = append(lines[:after], append([]string{""}, lines[after:]...)...)
	}

	return strings.Join(lines, "\n")
}

// Update patches the named element in place. Keys of updates are wire
// property names (snake_case); "expression" rewrites the definition
// line's right-hand side, other keys overwrite the matching property
// line or are appended before the block ends when absent.
func Update(content, elementType, elementName string, updates map[string]any) (string, error) {
	lines := strings.Split(content, "\n")
	var out []string

	inElement := false
	found := false
	elementIndent := 0
	patched := map[string]bool{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if isElementDefinition(line, elementType, elementName) {
			inElement = true
			found = true
			elementIndent = indentation(line)

			expr, hasExpr := updates["expression"]
			if hasExpr && (elementType == "measure" || elementType == "column") {
				out = append(out, rewriteExpression(line, toString(expr)))
				patched["expression"] = true
			} else {
				out = append(out, line)
			}
			continue
		}

		if !inElement {
			out = append(out, line)
			continue
		}

		if strings.TrimSpace(line) != "" && indentation(line) <= elementIndent {
			inElement = false
			out = appendMissing(out, elementIndent+1, updates, patched)
			out = append(out, line)
			continue
		}

		replaced := false
		for prop, value := range updates {
			if prop == "expression" {
				continue
			}
			name := format.PropertyName(prop)
			if strings.HasPrefix(strings.TrimSpace(line), name+":") {
				indent := strings.Repeat("\t", elementIndent+1)
				out = append(out, indent+name+": "+format.Value(value))
				patched[prop] = true
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, line)
		}
	}

	if !found {
		return content, ErrElementNotFound
	}
	if inElement {
		out = appendMissing(out, elementIndent+1, updates, patched)
	}

	return strings.Join(out, "\n"), nil
}

// Delete removes the named element's block, any /// description run
// directly above it, and one blank line left behind.
func Delete(content, elementType, elementName string) (string, error) {
	lines := strings.Split(content, "\n")
	var out []string

	inElement := false
	found := false
	elementIndent := 0
	skipBlankAfter := false

	for _, line := range lines {
		if isElementDefinition(line, elementType, elementName) {
			inElement = true
			found = true
			elementIndent = indentation(line)
			skipBlankAfter = true

			// The element's whole description run goes with it.
			for len(out) > 0 {
				prev := out[len(out)-1]
				if !strings.HasPrefix(strings.TrimSpace(prev), "///") || indentation(prev) != elementIndent {
					break
				}
				out = out[:len(out)-1]
			}
			continue
		}

		if inElement {
			if strings.TrimSpace(line) != "" && indentation(line) <= elementIndent {
				inElement = false
			} else {
				continue
			}
		}

		if skipBlankAfter && strings.TrimSpace(line) == "" {
			skipBlankAfter = false
			continue
		}
		skipBlankAfter = false

		out = append(out, line)
	}

	if !found {
		return content, ErrElementNotFound
	}

	return strings.Join(out, "\n"), nil
}

// SetDescription replaces the /// comment run directly above the named
// element with a freshly wrapped description.
func SetDescription(content, elementType, elementName, description string) (string, error) {
	lines := strings.Split(content, "\n")
	var out []string
	found := false

	descLines := format.DescriptionLines(description)

	for _, line := range lines {
		if !isElementDefinition(line, elementType, elementName) {
			out = append(out, line)
			continue
		}
		found = true

		indent := strings.Repeat("\t", indentation(line))
		for len(out) > 0 && strings.HasPrefix(strings.TrimSpace(out[len(out)-1]), "///") {
			out = out[:len(out)-1]
		}
		for _, dl := range descLines {
			out = append(out, indent+"/// "+dl)
		}
		out = append(out, line)
	}

	if !found {
		return content, ErrElementNotFound
	}

	return strings.Join(out, "\n"), nil
}

// insertionPoint picks the line index where a new element goes.
func insertionPoint(lines []string, elementType string) int {
	last := -1

	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), elementType+" ") {
			continue
		}
		elementIndent := indentation(line)
		j := i + 1
		for j < len(lines) {
			if strings.TrimSpace(lines[j]) != "" && indentation(lines[j]) <= elementIndent {
				break
			}
			j++
		}
		last = j - 1
	}

	if last >= 0 {
		return last + 1
	}

	switch elementType {
	case "measure":
		for i, line := range lines {
			t := strings.TrimSpace(line)
			if strings.HasPrefix(t, "column ") || strings.HasPrefix(t, "partition ") {
				return i
			}
		}
	case "column":
		for i, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "partition ") {
				return i
			}
		}
	}

	if len(lines) < 3 {
		return 0
	}
	return len(lines) - 3
}

// isElementDefinition reports whether line defines the named element.
// Names match with one layer of quoting ignored on both sides.
func isElementDefinition(line, elementType, elementName string) bool {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, elementType+" ") {
		return false
	}

	var re *regexp.Regexp
	switch elementType {
	case "measure":
		re = reMeasureDef
	case "column":
		re = reColumnDef
	case "table":
		re = reTableDef
	default:
		return false
	}

	m := re.FindStringSubmatch(t)
	if m == nil {
		return false
	}
	found := strings.Trim(strings.TrimSpace(m[1]), `'"`)
	return found == strings.Trim(elementName, `'"`)
}

// indentation counts leading tabs.
func indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, "\t"))
}

// rewriteExpression swaps the right-hand side of a `name = expr` line.
func rewriteExpression(line, expression string) string {
	if prefix, _, ok := strings.Cut(line, " = "); ok {
		return prefix + " = " + expression
	}
	return line
}

// appendMissing emits property lines for updates that never matched an
// existing line inside the block, in stable key order.
func appendMissing(out []string, indentLevel int, updates map[string]any, patched map[string]bool) []string {
	indent := strings.Repeat("\t", indentLevel)

	props := make([]string, 0, len(updates))
	for prop := range updates {
		props = append(props, prop)
	}
	sort.Strings(props)

	for _, prop := range props {
		value := updates[prop]
		if patched[prop] || prop == "expression" || prop == "name" {
			continue
		}
		name := format.PropertyName(prop)
		if b, ok := value.(bool); ok && b && (name == "isHidden" || name == "isPrivate") {
			out = append(out, indent+name)
			continue
		}
		out = append(out, indent+name+": "+format.Value(value))
	}
	return out
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return format.Value(v)
}
