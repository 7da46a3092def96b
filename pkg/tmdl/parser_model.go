package tmdl

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapbi/pkg/model"
)

// parseModel consumes a `model <name>` block. The block runs until a
// non-blank line returns to the top level (column 0).
func (p *Parser) parseModel() (*ModelHeader, error) {
	line := strings.TrimSpace(p.cur.line())
	m := reModel.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf("invalid model definition")
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil, p.errorf("model name cannot be empty")
	}
	p.cur.advance()

	header := &ModelHeader{Name: name}

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}
		if indentOf(line) <= 0 {
			break
		}

		content := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(content, "culture:"):
			header.Culture = parseProperty(content)
		case strings.HasPrefix(content, "defaultPowerBIDataSourceVersion:"):
			header.DefaultPowerBIDataSourceVersion = parseProperty(content)
		case strings.HasPrefix(content, "discourageImplicitMeasures"):
			header.DiscourageImplicitMeasures = true
		case strings.HasPrefix(content, "sourceQueryCulture:"):
			header.SourceQueryCulture = parseProperty(content)
		case strings.HasPrefix(content, "annotation "):
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			header.Annotations = append(header.Annotations, *ann)
			continue
		case strings.HasPrefix(content, "ref table "):
			header.TableRefs = append(header.TableRefs, strings.TrimSpace(strings.TrimPrefix(content, "ref table ")))
		case strings.HasPrefix(content, "ref cultureInfo "):
			header.CultureRefs = append(header.CultureRefs, strings.TrimSpace(strings.TrimPrefix(content, "ref cultureInfo ")))
		case strings.HasPrefix(content, "dataAccessOptions"):
			header.DataAccessOptions = p.parseDataAccessOptions()
			continue
		}

		p.cur.advance()
	}

	return header, nil
}

// parseDataAccessOptions consumes the dataAccessOptions block: two
// presence-only flags at a shared indentation level.
func (p *Parser) parseDataAccessOptions() *model.DataAccessOptions {
	p.cur.advance()

	opts := &model.DataAccessOptions{}
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

		switch strings.TrimSpace(line) {
		case "legacyRedirects":
			opts.LegacyRedirects = true
		case "returnErrorValuesAsNull":
			opts.ReturnErrorValuesAsNull = true
		}

		p.cur.advance()
	}

	return opts
}

// parseRelationship consumes a `relationship <name>` block. Column
// endpoints are written as `Table.Column` references.
func (p *Parser) parseRelationship() (*model.Relationship, error) {
	line := strings.TrimSpace(p.cur.line())
	m := reRelationship.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf("invalid relationship definition")
	}
	p.cur.advance()

	rel := &model.Relationship{Name: m[1], IsActive: true}

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}
		if indentOf(line) <= 0 {
			break
		}

		content := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(content, "fromColumn:"):
			rel.FromTable, rel.FromColumn = splitColumnRef(parseProperty(content))
		case strings.HasPrefix(content, "toColumn:"):
			rel.ToTable, rel.ToColumn = splitColumnRef(parseProperty(content))
		case strings.HasPrefix(content, "joinOnDateBehavior:"):
			rel.JoinOnDateBehavior = parseProperty(content)
		case strings.HasPrefix(content, "cardinality:"):
			rel.Cardinality = model.Cardinality(parseProperty(content))
		case strings.HasPrefix(content, "crossFilteringBehavior:"):
			rel.CrossFilteringBehavior = model.CrossFilteringBehavior(parseProperty(content))
		case strings.HasPrefix(content, "isActive:"):
			rel.IsActive = strings.EqualFold(parseProperty(content), "true")
		}

		p.cur.advance()
	}

	return rel, nil
}

// splitColumnRef splits a `Table.Column` reference on the first dot.
// References without a dot are left unassigned, matching observed files
// where the table part is always present.
func splitColumnRef(ref string) (table, column string) {
	idx := strings.Index(ref, ".")
	if idx < 0 {
		return "", ""
	}
	return ref[:idx], ref[idx+1:]
}

// parseCultureInfo consumes a `cultureInfo <name>` block, including its
// embedded linguisticMetadata JSON document.
func (p *Parser) parseCultureInfo() (*model.CultureInfo, error) {
	line := strings.TrimSpace(p.cur.line())
	m := reCultureInfo.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf("invalid cultureInfo definition")
	}
	p.cur.advance()

	culture := &model.CultureInfo{Name: m[1]}

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}
		if indentOf(line) <= 0 {
			break
		}

		content := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(content, "linguisticMetadata"):
			p.cur.advance()
			culture.LinguisticMetadata = p.parseJSONBlock()
			continue
		case strings.HasPrefix(content, "contentType:"):
			culture.ContentType = parseProperty(content)
		}

		p.cur.advance()
	}

	return culture, nil
}

// parseDatabase consumes the `database` block.
func (p *Parser) parseDatabase() *model.Database {
	p.cur.advance()

	db := &model.Database{}

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}
		if indentOf(line) <= 0 {
			break
		}

		content := strings.TrimSpace(line)
		if strings.HasPrefix(content, "compatibilityLevel:") {
			if level, err := strconv.Atoi(parseProperty(content)); err == nil {
				db.CompatibilityLevel = level
			}
		}

		p.cur.advance()
	}

	return db
}
