package tmdl

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapbi/pkg/model"
)

// parseTable consumes a `table <name>` block and every nested construct.
// The block runs until a non-blank line returns to the top level.
func (p *Parser) parseTable() (*model.Table, error) {
	line := strings.TrimSpace(p.cur.line())
	m := reTable.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf("invalid table definition")
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil, p.errorf("table name cannot be empty")
	}
	p.cur.advance()

	table := &model.Table{Name: name}

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

		// Descriptions may sit inside the table body, directly above the
		// column or measure they document.
		if strings.HasPrefix(content, "///") {
			p.desc = append(p.desc, strings.TrimSpace(content[3:]))
			p.cur.advance()
			continue
		}
		if strings.HasPrefix(content, "//") {
			p.desc = nil
			p.cur.advance()
			continue
		}

		switch {
		case strings.HasPrefix(content, "lineageTag:"):
			table.LineageTag = parseProperty(content)
		case strings.HasPrefix(content, "isHidden"):
			table.IsHidden = true
		case strings.HasPrefix(content, "isPrivate"):
			table.IsPrivate = true
		case strings.HasPrefix(content, "showAsVariationsOnly"):
			table.ShowAsVariationsOnly = true
		case strings.HasPrefix(content, "column "):
			desc := p.takeDescription()
			column, err := p.parseColumn()
			if err != nil {
				return nil, err
			}
			column.Description = desc
			table.Columns = append(table.Columns, *column)
			continue
		case strings.HasPrefix(content, "measure "):
			desc := p.takeDescription()
			measure := p.parseMeasure()
			if measure != nil {
				measure.Description = desc
				table.Measures = append(table.Measures, *measure)
			}
			continue
		case strings.HasPrefix(content, "hierarchy "):
			hierarchy, err := p.parseHierarchy()
			if err != nil {
				return nil, err
			}
			table.Hierarchies = append(table.Hierarchies, *hierarchy)
			continue
		case strings.HasPrefix(content, "partition "):
			partition, err := p.parsePartition()
			if err != nil {
				return nil, err
			}
			table.Partitions = append(table.Partitions, *partition)
			continue
		case strings.HasPrefix(content, "calculationGroup"):
			table.CalculationGroup = p.parseCalculationGroup()
			continue
		case strings.HasPrefix(content, "annotation "):
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			table.Annotations = append(table.Annotations, *ann)
			continue
		default:
			p.desc = nil
		}

		p.cur.advance()
	}

	return table, nil
}

// parseColumn consumes a `column Name` or `column Name = Expr` block.
// Inside the block, annotation and variation lines are tolerated even at
// the block-exit indentation, matching files that indent them unusually.
func (p *Parser) parseColumn() (*model.Column, error) {
	line := strings.TrimSpace(p.cur.line())

	var name, expression string
	if strings.Contains(line, " = ") {
		m := reColumnExpr.FindStringSubmatch(line)
		if m == nil {
			return nil, p.errorf("invalid calculated column definition")
		}
		name, expression = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	} else {
		m := reColumn.FindStringSubmatch(line)
		if m == nil {
			return nil, p.errorf("invalid column definition")
		}
		name = strings.TrimSpace(m[1])
	}
	p.cur.advance()

	column := &model.Column{
		Name:        model.Unquote(name),
		DataType:    model.DataTypeString,
		SummarizeBy: model.SummarizeNone,
		Expression:  expression,
	}

	baseIndent := -1

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}

		indent := indentOf(line)
		content := strings.TrimSpace(line)

		if baseIndent < 0 {
			baseIndent = indent
		} else if indent <= baseIndent &&
			!strings.HasPrefix(content, "annotation") && !strings.HasPrefix(content, "variation") {
			break
		}

		switch {
		case strings.HasPrefix(content, "dataType:"):
			column.DataType = model.DataType(parseProperty(content))
		case strings.HasPrefix(content, "lineageTag:"):
			column.LineageTag = parseProperty(content)
		case strings.HasPrefix(content, "summarizeBy:"):
			column.SummarizeBy = model.SummarizeBy(parseProperty(content))
		case strings.HasPrefix(content, "formatString:"):
			column.FormatString = parseProperty(content)
		case strings.HasPrefix(content, "sourceColumn:"):
			column.SourceColumn = parseProperty(content)
		case strings.HasPrefix(content, "dataCategory:"):
			column.DataCategory = parseProperty(content)
		case strings.HasPrefix(content, "sortByColumn:"):
			column.SortByColumn = parseProperty(content)
		case strings.HasPrefix(content, "isHidden"):
			column.IsHidden = true
		case strings.HasPrefix(content, "isNameInferred"):
			column.IsNameInferred = true
		case strings.HasPrefix(content, "annotation "):
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			column.Annotations = append(column.Annotations, *ann)
			continue
		case strings.HasPrefix(content, "variation "):
			column.Variation = p.parseVariation()
			continue
		}

		p.cur.advance()
	}

	return column, nil
}

// parseMeasure consumes a `measure Name = Expr` block.
//
// Unlike every other construct, a measure line that does not match the
// expected shape — or whose name contains a space without quoting — is
// not a hard error: the line and its property block are skipped and nil
// is returned. This leniency is deliberate tolerance for hand-edited
// files and is not extended to any other construct.
func (p *Parser) parseMeasure() *model.Measure {
	line := strings.TrimSpace(p.cur.line())
	m := reMeasure.FindStringSubmatch(line)
	if m == nil {
		p.cur.advance()
		p.skipMeasureProperties()
		return nil
	}

	name := strings.TrimSpace(m[1])
	expression := strings.TrimSpace(m[2])

	if strings.Contains(name, " ") && model.Unquote(name) == name {
		p.cur.advance()
		p.skipMeasureProperties()
		return nil
	}
	p.cur.advance()

	measure := &model.Measure{Name: model.Unquote(name), Expression: expression}

	baseIndent := -1

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}

		indent := indentOf(line)
		content := strings.TrimSpace(line)

		if baseIndent < 0 {
			baseIndent = indent
		} else if indent <= baseIndent && !strings.HasPrefix(content, "annotation") {
			break
		}

		switch {
		case strings.HasPrefix(content, "lineageTag:"):
			measure.LineageTag = parseProperty(content)
		case strings.HasPrefix(content, "formatString:"):
			measure.FormatString = parseProperty(content)
		case strings.HasPrefix(content, "isHidden"):
			measure.IsHidden = true
		case strings.HasPrefix(content, "displayFolder:"):
			measure.DisplayFolder = parseProperty(content)
		case strings.HasPrefix(content, "changedProperty"):
			// Editor bookkeeping, not model state.
		case strings.HasPrefix(content, "annotation "):
			ann, err := p.parseAnnotation()
			if err != nil {
				p.cur.advance()
				continue
			}
			// Description annotations are legacy; descriptions live in
			// /// comments now.
			if ann.Name != "Description" {
				measure.Annotations = append(measure.Annotations, *ann)
			}
			continue
		}

		p.cur.advance()
	}

	return measure
}

// skipMeasureProperties discards the property block of a malformed
// measure using the same indentation-based exit rule.
func (p *Parser) skipMeasureProperties() {
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
		} else if indent <= baseIndent {
			break
		}

		p.cur.advance()
	}
}

// parseHierarchy consumes a `hierarchy <name>` block with its levels.
func (p *Parser) parseHierarchy() (*model.Hierarchy, error) {
	line := strings.TrimSpace(p.cur.line())
	m := reHierarchy.FindStringSubmatch(line)
	if m == nil {
		return nil, p.errorf("invalid hierarchy definition")
	}
	p.cur.advance()

	hierarchy := &model.Hierarchy{Name: model.Unquote(strings.TrimSpace(m[1]))}

	baseIndent := -1

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}

		indent := indentOf(line)
		content := strings.TrimSpace(line)

		if baseIndent < 0 {
			baseIndent = indent
		} else if indent <= baseIndent &&
			!strings.HasPrefix(content, "level") && !strings.HasPrefix(content, "annotation") {
			break
		}

		switch {
		case strings.HasPrefix(content, "lineageTag:"):
			hierarchy.LineageTag = parseProperty(content)
		case strings.HasPrefix(content, "level "):
			hierarchy.Levels = append(hierarchy.Levels, p.parseHierarchyLevel())
			continue
		case strings.HasPrefix(content, "annotation "):
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			hierarchy.Annotations = append(hierarchy.Annotations, *ann)
			continue
		}

		p.cur.advance()
	}

	return hierarchy, nil
}

func (p *Parser) parseHierarchyLevel() model.HierarchyLevel {
	line := strings.TrimSpace(p.cur.line())
	level := model.HierarchyLevel{}
	if m := reLevel.FindStringSubmatch(line); m != nil {
		level.Name = m[1]
	}
	p.cur.advance()

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
		} else if indent <= baseIndent {
			break
		}

		content := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(content, "lineageTag:"):
			level.LineageTag = parseProperty(content)
		case strings.HasPrefix(content, "column:"):
			level.Column = parseProperty(content)
		}

		p.cur.advance()
	}

	return level
}

// parsePartition consumes a `partition Name = mode` (or bare
// `partition Name`) block and its source text, verbatim.
func (p *Parser) parsePartition() (*model.Partition, error) {
	line := strings.TrimSpace(p.cur.line())

	var name, mode string
	if strings.Contains(line, " = ") {
		m := rePartitionExpr.FindStringSubmatch(line)
		if m == nil {
			return nil, p.errorf("invalid partition definition")
		}
		name, mode = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	} else {
		m := rePartition.FindStringSubmatch(line)
		if m == nil {
			return nil, p.errorf("invalid partition definition")
		}
		name, mode = strings.TrimSpace(m[1]), string(model.PartitionImport)
	}
	p.cur.advance()

	partition := &model.Partition{Name: name, Mode: model.PartitionMode(mode)}

	baseIndent := -1

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}

		indent := indentOf(line)
		content := strings.TrimSpace(line)

		if baseIndent < 0 {
			baseIndent = indent
		} else if indent <= baseIndent && !strings.HasPrefix(content, "source") {
			break
		}

		switch {
		case strings.HasPrefix(content, "mode:"):
			partition.Mode = model.PartitionMode(parseProperty(content))
		case strings.HasPrefix(content, "source"):
			partition.Source = p.parseSource()
			return partition, nil
		}

		p.cur.advance()
	}

	return partition, nil
}

// parseSource reads a partition source: either inline after `source =`
// or an indented block under a bare `source` line.
func (p *Parser) parseSource() string {
	line := strings.TrimSpace(p.cur.line())

	if strings.HasPrefix(line, "source =") {
		return strings.TrimSpace(strings.TrimPrefix(line, "source ="))
	}
	if strings.HasPrefix(line, "source") {
		p.cur.advance()
		return p.parseMultilineExpression()
	}
	return ""
}

// parseCalculationGroup consumes the calculationGroup block.
func (p *Parser) parseCalculationGroup() *model.CalculationGroup {
	p.cur.advance()

	group := &model.CalculationGroup{}

	baseIndent := -1

	for !p.cur.eof() {
		line := p.cur.line()
		if isBlank(line) {
			p.cur.advance()
			continue
		}

		indent := indentOf(line)
		content := strings.TrimSpace(line)

		if baseIndent < 0 {
			baseIndent = indent
		} else if indent <= baseIndent && !strings.HasPrefix(content, "calculationItem") {
			break
		}

		switch {
		case strings.HasPrefix(content, "precedence:"):
			if prec, err := strconv.Atoi(parseProperty(content)); err == nil {
				group.Precedence = &prec
			}
		case strings.HasPrefix(content, "calculationItem "):
			group.Items = append(group.Items, p.parseCalculationItem())
			continue
		}

		p.cur.advance()
	}

	return group
}

// parseCalculationItem consumes one `calculationItem Name = Expr` entry.
// An empty right-hand side means the expression continues as an indented
// block on the following lines.
func (p *Parser) parseCalculationItem() model.CalculationItem {
	line := strings.TrimSpace(p.cur.line())

	if strings.Contains(line, " = ") {
		remainder := strings.TrimSpace(strings.TrimPrefix(line, "calculationItem"))
		namePart, exprPart, _ := strings.Cut(remainder, " = ")
		name := model.Unquote(strings.TrimSpace(namePart))
		expression := strings.TrimSpace(exprPart)
		p.cur.advance()

		if expression == "" {
			expression = p.parseMultilineExpression()
		}
		return model.CalculationItem{Name: name, Expression: expression}
	}

	var name string
	if m := reCalculationItem.FindStringSubmatch(line); m != nil {
		name = model.Unquote(strings.TrimSpace(m[1]))
	}
	p.cur.advance()

	return model.CalculationItem{Name: name, Expression: p.parseMultilineExpression()}
}

// parseVariation consumes a column's variation block.
func (p *Parser) parseVariation() *model.Variation {
	line := strings.TrimSpace(p.cur.line())
	variation := &model.Variation{}
	if m := reVariation.FindStringSubmatch(line); m != nil {
		variation.Name = m[1]
	}
	p.cur.advance()

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
		} else if indent <= baseIndent {
			break
		}

		content := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(content, "isDefault"):
			variation.IsDefault = true
		case strings.HasPrefix(content, "relationship:"):
			variation.Relationship = parseProperty(content)
		case strings.HasPrefix(content, "defaultHierarchy:"):
			variation.DefaultHierarchy = parseProperty(content)
		}

		p.cur.advance()
	}

	return variation
}
