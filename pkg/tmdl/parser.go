// Package tmdl parses TMDL (Tabular Model Definition Language), the
// indentation-sensitive DSL describing Power BI semantic models.
//
// # Usage
//
//	doc, err := tmdl.Parse(content)
//	if err != nil {
//	    var perr *tmdl.ParseError
//	    if errors.As(err, &perr) {
//	        // perr.Line is 1-based
//	    }
//	}
//
// # Grammar overview
//
// A construct is a keyword line plus the contiguous run of more-indented
// lines below it. The first body line observed sets the indentation level
// for all of the construct's siblings; the block ends at the first
// non-blank line at or below the construct's own level. Blank lines never
// terminate a block. A run of /// comment lines immediately above a
// construct is its description.
//
// Top level recognizes: model, table, relationship, cultureInfo, database,
// annotation, ref table, ref cultureInfo. Anything else is a ParseError —
// with one deliberate exception: a malformed measure line inside a table
// is skipped together with its property block (see parseMeasure).
package tmdl

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapbi/pkg/model"
)

var (
	reModel           = regexp.MustCompile(`^model\s+(.+)$`)
	reTable           = regexp.MustCompile(`^table\s+(.+)$`)
	reRelationship    = regexp.MustCompile(`^relationship\s+(.+)$`)
	reCultureInfo     = regexp.MustCompile(`^cultureInfo\s+(.+)$`)
	reAnnotation      = regexp.MustCompile(`^annotation\s+(.+?)\s*=\s*(.+)$`)
	reColumnExpr      = regexp.MustCompile(`^column\s+(.+?)\s*=\s*(.+)$`)
	reColumn          = regexp.MustCompile(`^column\s+(.+)$`)
	reMeasure         = regexp.MustCompile(`^measure\s+(.+?)\s*=\s*(.+)$`)
	reHierarchy       = regexp.MustCompile(`^hierarchy\s+(.+)$`)
	reLevel           = regexp.MustCompile(`^level\s+(.+)$`)
	rePartitionExpr   = regexp.MustCompile(`^partition\s+(.+?)\s*=\s*(.+)$`)
	rePartition       = regexp.MustCompile(`^partition\s+(.+)$`)
	reVariation       = regexp.MustCompile(`^variation\s+(.+)$`)
	reCalculationItem = regexp.MustCompile(`^calculationItem\s+(.+)$`)
)

// Parser holds the read position and the pending description buffer for
// one Parse call. Parsers are single-use.
type Parser struct {
	cur  *cursor
	desc []string
}

// Parse parses TMDL file content into a Document. It fails with a
// *ParseError when a non-blank, non-comment top-level line matches no
// recognized construct.
func Parse(content string) (*Document, error) {
	p := &Parser{cur: newCursor(content)}
	return p.parseDocument()
}

func (p *Parser) parseDocument() (*Document, error) {
	doc := &Document{}

	for !p.cur.eof() {
		line := strings.TrimSpace(p.cur.line())

		if line == "" {
			p.cur.advance()
			continue
		}

		// Triple-slash runs become the next construct's description.
		// Plain comments clear any pending description.
		if strings.HasPrefix(line, "///") {
			p.desc = append(p.desc, strings.TrimSpace(line[3:]))
			p.cur.advance()
			continue
		}
		if strings.HasPrefix(line, "//") {
			p.desc = nil
			p.cur.advance()
			continue
		}

		switch {
		case strings.HasPrefix(line, "model "):
			header, err := p.parseModel()
			if err != nil {
				return nil, err
			}
			doc.Model = header
		case strings.HasPrefix(line, "table "):
			desc := p.takeDescription()
			table, err := p.parseTable()
			if err != nil {
				return nil, err
			}
			table.Description = desc
			doc.Tables = append(doc.Tables, *table)
		case strings.HasPrefix(line, "relationship "):
			rel, err := p.parseRelationship()
			if err != nil {
				return nil, err
			}
			doc.Relationships = append(doc.Relationships, *rel)
		case strings.HasPrefix(line, "cultureInfo "):
			culture, err := p.parseCultureInfo()
			if err != nil {
				return nil, err
			}
			doc.CultureInfos = append(doc.CultureInfos, *culture)
		case strings.HasPrefix(line, "database"):
			doc.Database = p.parseDatabase()
		case strings.HasPrefix(line, "annotation "):
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			doc.Annotations = append(doc.Annotations, *ann)
		case strings.HasPrefix(line, "ref table "):
			doc.TableRefs = append(doc.TableRefs, strings.TrimSpace(strings.TrimPrefix(line, "ref table ")))
			p.cur.advance()
		case strings.HasPrefix(line, "ref cultureInfo "):
			doc.CultureRefs = append(doc.CultureRefs, strings.TrimSpace(strings.TrimPrefix(line, "ref cultureInfo ")))
			p.cur.advance()
		default:
			p.desc = nil
			return nil, p.errorf("unrecognized TMDL syntax: %s", line)
		}
	}

	return doc, nil
}

// takeDescription consumes the pending /// buffer as one joined string.
func (p *Parser) takeDescription() string {
	if len(p.desc) == 0 {
		return ""
	}
	desc := strings.Join(p.desc, " ")
	p.desc = nil
	return desc
}

// parseAnnotation consumes one `annotation name = value` line.
func (p *Parser) parseAnnotation() (*model.Annotation, error) {
	line := strings.TrimSpace(p.cur.line())
	m := reAnnotation.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf("invalid annotation definition")
	}
	p.cur.advance()
	return &model.Annotation{Name: m[1], Value: parseAnnotationValue(m[2])}, nil
}

// parseAnnotationValue infers a value's shape from its text. Order of
// attempts, first match wins: quoted string, JSON document, boolean,
// float (only when a decimal point is present), integer, raw string.
func parseAnnotationValue(s string) model.Value {
	s = strings.TrimSpace(s)

	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return model.StringValue(s[1 : len(s)-1])
		}
	}

	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		var doc any
		if err := json.Unmarshal([]byte(s), &doc); err == nil {
			return model.JSONValue(doc)
		}
		return model.StringValue(s)
	}

	switch strings.ToLower(s) {
	case "true":
		return model.BoolValue(true)
	case "false":
		return model.BoolValue(false)
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return model.FloatValue(f)
		}
	} else if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.IntValue(i)
	}

	return model.StringValue(s)
}

// parseProperty extracts the value of a `key: value` line, stripping one
// layer of matching quotes. Lines without a colon yield "".
func parseProperty(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return model.Unquote(strings.TrimSpace(line[idx+1:]))
}

// parseMultilineExpression captures an indented expression body. The
// first content line's indentation is stripped from every captured line;
// the block ends when indentation drops below it.
func (p *Parser) parseMultilineExpression() string {
	var lines []string
	baseIndent := -1

	for !p.cur.eof() {
		line := p.cur.line()

		if isBlank(line) {
			p.cur.advance()
			continue
		}

		indent := indentOf(line)
		if baseIndent < 0 {
			baseIndent = indent
		} else if indent < baseIndent {
			break
		}

		if len(line) > baseIndent {
			lines = append(lines, line[baseIndent:])
		} else {
			lines = append(lines, strings.TrimSpace(line))
		}
		p.cur.advance()
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// parseJSONBlock captures an indented block and decodes it as JSON. A
// decode failure degrades to an empty object rather than an error.
func (p *Parser) parseJSONBlock() map[string]any {
	var lines []string
	baseIndent := -1

	for !p.cur.eof() {
		line := p.cur.line()

		if isBlank(line) {
			p.cur.advance()
			continue
		}

		indent := indentOf(line)
		if baseIndent < 0 {
			baseIndent = indent
		} else if indent < baseIndent {
			break
		}

		lines = append(lines, strings.TrimSpace(line))
		p.cur.advance()
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.Join(lines, "\n")), &doc); err != nil {
		return map[string]any{}
	}
	return doc
}
