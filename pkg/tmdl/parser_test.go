package tmdl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbi/pkg/edit"
	"github.com/leapstack-labs/leapbi/pkg/format"
	"github.com/leapstack-labs/leapbi/pkg/model"
)

func TestParse_TableFile(t *testing.T) {
	content := "table Sales\n" +
		"\tlineageTag: 11111111-2222-3333-4444-555555555555\n" +
		"\n" +
		"\t/// Total revenue across all orders.\n" +
		"\tmeasure 'Total Sales' = SUM(Sales[Amount])\n" +
		"\t\tformatString: \"$#,0.00\"\n" +
		"\n" +
		"\tcolumn Amount\n" +
		"\t\tdataType: double\n" +
		"\n" +
		"\t\tannotation SummarizationSetBy = Automatic\n" +
		"\n" +
		"\tcolumn Margin = [Revenue] - [Cost]\n" +
		"\t\tdataType: double\n" +
		"\n" +
		"\tpartition Sales = m\n" +
		"\t\tmode: import\n" +
		"\t\tsource = NativeQuery(Source, \"SELECT * FROM sales\")\n" +
		"\n" +
		"\tannotation PBI_ResultType = Table\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)

	table := doc.Tables[0]
	assert.Equal(t, "Sales", table.Name)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", table.LineageTag)

	require.Len(t, table.Measures, 1)
	measure := table.Measures[0]
	assert.Equal(t, "Total Sales", measure.Name)
	assert.Equal(t, "SUM(Sales[Amount])", measure.Expression)
	assert.Equal(t, "Total revenue across all orders.", measure.Description)
	assert.Equal(t, "$#,0.00", measure.FormatString)

	require.Len(t, table.Columns, 2)
	amount := table.Columns[0]
	assert.Equal(t, "Amount", amount.Name)
	assert.Equal(t, model.DataTypeDouble, amount.DataType)
	assert.False(t, amount.Calculated())
	require.Len(t, amount.Annotations, 1)
	assert.Equal(t, "SummarizationSetBy", amount.Annotations[0].Name)

	margin := table.Columns[1]
	assert.Equal(t, "Margin", margin.Name)
	assert.Equal(t, "[Revenue] - [Cost]", margin.Expression)
	assert.True(t, margin.Calculated())

	require.Len(t, table.Partitions, 1)
	partition := table.Partitions[0]
	assert.Equal(t, "Sales", partition.Name)
	assert.Equal(t, model.PartitionImport, partition.Mode)
	assert.Equal(t, `NativeQuery(Source, "SELECT * FROM sales")`, partition.Source)

	require.Len(t, table.Annotations, 1)
	assert.Equal(t, "PBI_ResultType", table.Annotations[0].Name)
}

func TestParse_TableDescription(t *testing.T) {
	content := "/// Fact table holding one row per order line.\n" +
		"/// Grain: order line.\n" +
		"table Sales\n" +
		"\tlineageTag: tag-1\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, "Fact table holding one row per order line. Grain: order line.", doc.Tables[0].Description)
}

func TestParse_PlainCommentClearsDescription(t *testing.T) {
	content := "/// Stale description.\n" +
		"// regenerated by tooling\n" +
		"table Sales\n" +
		"\tlineageTag: tag-1\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Empty(t, doc.Tables[0].Description)
}

func TestParse_BlankLinesDoNotTerminateBlocks(t *testing.T) {
	content := "table Sales\n" +
		"\tlineageTag: tag-1\n" +
		"\n" +
		"\n" +
		"\tcolumn Amount\n" +
		"\t\tdataType: double\n" +
		"\n" +
		"\t\tannotation SummarizationSetBy = Automatic\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	table := doc.Tables[0]
	assert.Equal(t, "tag-1", table.LineageTag)
	require.Len(t, table.Columns, 1)
	assert.Equal(t, model.DataTypeDouble, table.Columns[0].DataType)
	require.Len(t, table.Columns[0].Annotations, 1)
}

func TestParse_ColumnDefaults(t *testing.T) {
	content := "table T\n\tcolumn C\n\t\tlineageTag: tag-1\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	col := doc.Tables[0].Columns[0]
	assert.Equal(t, "tag-1", col.LineageTag)
	assert.Equal(t, model.DataTypeString, col.DataType)
	assert.Equal(t, model.SummarizeNone, col.SummarizeBy)
}

func TestParse_ColumnVariation(t *testing.T) {
	content := "table Orders\n" +
		"\tcolumn 'Order Date'\n" +
		"\t\tdataType: dateTime\n" +
		"\t\tvariation Variation\n" +
		"\t\t\tisDefault\n" +
		"\t\tannotation SummarizationSetBy = Automatic\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	col := doc.Tables[0].Columns[0]
	assert.Equal(t, "Order Date", col.Name)
	assert.Equal(t, model.DataTypeDateTime, col.DataType)
	require.NotNil(t, col.Variation)
	assert.Equal(t, "Variation", col.Variation.Name)
	assert.True(t, col.Variation.IsDefault)
	require.Len(t, col.Annotations, 1)
}

func TestParse_RenderedColumnRoundTrip(t *testing.T) {
	content := "table Sales\n" +
		"\tcolumn Amount\n" +
		"\t\tdataType: double\n" +
		"\n" +
		"\tpartition Sales = m\n" +
		"\t\tsource = Query1\n"

	def := format.Column(format.ColumnSpec{
		Name:         "Notes",
		DataType:     "string",
		LineageTag:   "tag-notes",
		FormatString: "0.00",
		IsHidden:     true,
	})
	updated := edit.Add(content, "column", def, 1)

	doc, err := Parse(updated)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	table := doc.Tables[0]

	require.Len(t, table.Columns, 2)
	notes := table.Columns[1]
	assert.Equal(t, "Notes", notes.Name)
	assert.Equal(t, model.DataTypeString, notes.DataType)

	// Only the first property line stays with the column. The rest
	// yield to the enclosing table block: lineageTag and isHidden land
	// on the table, formatString is dropped.
	assert.Empty(t, notes.LineageTag)
	assert.Empty(t, notes.FormatString)
	assert.False(t, notes.IsHidden)
	assert.Equal(t, "tag-notes", table.LineageTag)
	assert.True(t, table.IsHidden)
}

func TestParse_MalformedMeasureSkipped(t *testing.T) {
	// An unquoted multi-word measure name is skipped with its property
	// block; the next sibling still parses.
	content := "table Sales\n" +
		"\tmeasure Total Sales = SUM(Sales[Amount])\n" +
		"\t\tlineageTag: skipped\n" +
		"\tmeasure Revenue = SUM(Sales[Amount])\n" +
		"\t\tlineageTag: kept\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	require.Len(t, doc.Tables[0].Measures, 1)
	assert.Equal(t, "Revenue", doc.Tables[0].Measures[0].Name)
	assert.Equal(t, "kept", doc.Tables[0].Measures[0].LineageTag)
}

func TestParse_MeasureWithoutExpressionSkipped(t *testing.T) {
	content := "table Sales\n" +
		"\tmeasure Broken\n" +
		"\t\tlineageTag: skipped\n" +
		"\tcolumn Amount\n" +
		"\t\tdataType: double\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	assert.Empty(t, doc.Tables[0].Measures)
	require.Len(t, doc.Tables[0].Columns, 1)
}

func TestParse_MeasureDescriptionAnnotationDropped(t *testing.T) {
	content := "table Sales\n" +
		"\tmeasure Revenue = SUM(Sales[Amount])\n" +
		"\t\tlineageTag: tag-1\n" +
		"\t\tannotation Description = legacy text\n" +
		"\t\tannotation PBI_FormatHint = {\"isGeneralNumber\":true}\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	measure := doc.Tables[0].Measures[0]
	assert.Equal(t, "tag-1", measure.LineageTag)
	require.Len(t, measure.Annotations, 1)
	assert.Equal(t, "PBI_FormatHint", measure.Annotations[0].Name)
}

func TestParse_QuotedMeasureName(t *testing.T) {
	content := "table Sales\n" +
		"\tmeasure 'Avg Order Value' = DIVIDE([Revenue], [Orders])\n" +
		"\t\tlineageTag: tag-1\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables[0].Measures, 1)
	assert.Equal(t, "Avg Order Value", doc.Tables[0].Measures[0].Name)
}

func TestParse_Hierarchy(t *testing.T) {
	content := "table 'Date'\n" +
		"\thierarchy 'Date Hierarchy'\n" +
		"\t\tlineageTag: tag-h\n" +
		"\t\tlevel Year\n" +
		"\t\t\tcolumn: Year\n" +
		"\t\tlevel Month\n" +
		"\t\t\tcolumn: Month\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables[0].Hierarchies, 1)
	h := doc.Tables[0].Hierarchies[0]
	assert.Equal(t, "Date Hierarchy", h.Name)
	assert.Equal(t, "tag-h", h.LineageTag)
	require.Len(t, h.Levels, 2)
	assert.Equal(t, "Year", h.Levels[0].Name)
	assert.Equal(t, "Year", h.Levels[0].Column)
	assert.Equal(t, "Month", h.Levels[1].Name)
	assert.Equal(t, "Month", h.Levels[1].Column)
}

func TestParse_PartitionMultilineSource(t *testing.T) {
	content := "table Sales\n" +
		"\tpartition Sales = m\n" +
		"\t\tmode: import\n" +
		"\t\tsource\n" +
		"\t\t\tlet\n" +
		"\t\t\t\tSource = Csv.Document(File.Contents(\"sales.csv\"))\n" +
		"\t\t\tin\n" +
		"\t\t\t\tSource\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables[0].Partitions, 1)
	partition := doc.Tables[0].Partitions[0]
	assert.Equal(t, model.PartitionImport, partition.Mode)
	assert.Contains(t, partition.Source, "let")
	assert.Contains(t, partition.Source, `Source = Csv.Document(File.Contents("sales.csv"))`)
	assert.Contains(t, partition.Source, "in")
}

func TestParse_BarePartitionDefaultsToImport(t *testing.T) {
	content := "table T\n\tpartition P\n\t\tmode: directQuery\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, model.PartitionDirectQuery, doc.Tables[0].Partitions[0].Mode)

	doc, err = Parse("table T\n\tpartition P\n\t\tsource = Query1\n")
	require.NoError(t, err)
	assert.Equal(t, model.PartitionImport, doc.Tables[0].Partitions[0].Mode)
}

func TestParse_CalculationGroup(t *testing.T) {
	content := "table 'Time Intelligence'\n" +
		"\tcalculationGroup\n" +
		"\t\tprecedence: 1\n" +
		"\t\tcalculationItem Current = SELECTEDMEASURE()\n" +
		"\t\tcalculationItem PY\n" +
		"\t\t\tCALCULATE(SELECTEDMEASURE(), PREVIOUSYEAR('Date'[Date]))\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	group := doc.Tables[0].CalculationGroup
	require.NotNil(t, group)
	require.NotNil(t, group.Precedence)
	assert.Equal(t, 1, *group.Precedence)
	require.Len(t, group.Items, 2)
	assert.Equal(t, "Current", group.Items[0].Name)
	assert.Equal(t, "SELECTEDMEASURE()", group.Items[0].Expression)
	assert.Equal(t, "PY", group.Items[1].Name)
	assert.Equal(t, "CALCULATE(SELECTEDMEASURE(), PREVIOUSYEAR('Date'[Date]))", group.Items[1].Expression)
}

func TestParse_ModelHeader(t *testing.T) {
	content := "model Model\n" +
		"\tculture: en-US\n" +
		"\tdefaultPowerBIDataSourceVersion: powerBI_V3\n" +
		"\tdiscourageImplicitMeasures\n" +
		"\tsourceQueryCulture: en-US\n" +
		"\tdataAccessOptions\n" +
		"\t\tlegacyRedirects\n" +
		"\t\treturnErrorValuesAsNull\n" +
		"\n" +
		"\tannotation PBI_QueryOrder = [\"Sales\",\"Date\"]\n" +
		"\n" +
		"ref table Sales\n" +
		"ref table 'Date'\n" +
		"\n" +
		"ref cultureInfo en-US\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.NotNil(t, doc.Model)

	header := doc.Model
	assert.Equal(t, "Model", header.Name)
	assert.Equal(t, "en-US", header.Culture)
	assert.Equal(t, "powerBI_V3", header.DefaultPowerBIDataSourceVersion)
	assert.True(t, header.DiscourageImplicitMeasures)
	assert.Equal(t, "en-US", header.SourceQueryCulture)
	require.NotNil(t, header.DataAccessOptions)
	assert.True(t, header.DataAccessOptions.LegacyRedirects)
	assert.True(t, header.DataAccessOptions.ReturnErrorValuesAsNull)
	require.Len(t, header.Annotations, 1)

	assert.Equal(t, []string{"Sales", "'Date'"}, doc.TableRefs)
	assert.Equal(t, []string{"en-US"}, doc.CultureRefs)
}

func TestParse_Relationships(t *testing.T) {
	content := "relationship rel-1\n" +
		"\tfromColumn: Sales.CustomerID\n" +
		"\ttoColumn: Customers.ID\n" +
		"\n" +
		"relationship rel-2\n" +
		"\tisActive: false\n" +
		"\tcrossFilteringBehavior: bothDirections\n" +
		"\tcardinality: ManyToMany\n" +
		"\tfromColumn: Sales.ProductID\n" +
		"\ttoColumn: Products.ID\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Relationships, 2)

	first := doc.Relationships[0]
	assert.Equal(t, "rel-1", first.Name)
	assert.Equal(t, "Sales", first.FromTable)
	assert.Equal(t, "CustomerID", first.FromColumn)
	assert.Equal(t, "Customers", first.ToTable)
	assert.Equal(t, "ID", first.ToColumn)
	assert.True(t, first.IsActive)

	second := doc.Relationships[1]
	assert.False(t, second.IsActive)
	assert.Equal(t, model.ManyToMany, second.Cardinality)
	assert.Equal(t, model.CrossFilteringBehavior("bothDirections"), second.CrossFilteringBehavior)
}

func TestParse_CultureInfo(t *testing.T) {
	content := "cultureInfo en-US\n" +
		"\tlinguisticMetadata\n" +
		"\t\t{\"Version\": \"1.0.0\", \"Language\": \"en-US\"}\n" +
		"\tcontentType: json\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.CultureInfos, 1)
	culture := doc.CultureInfos[0]
	assert.Equal(t, "en-US", culture.Name)
	assert.Equal(t, "json", culture.ContentType)
	assert.Equal(t, "1.0.0", culture.LinguisticMetadata["Version"])
}

func TestParse_Database(t *testing.T) {
	content := "database\n\tcompatibilityLevel: 1567\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.NotNil(t, doc.Database)
	assert.Equal(t, 1567, doc.Database.CompatibilityLevel)
}

func TestParse_UnrecognizedSyntax(t *testing.T) {
	content := "table Sales\n" +
		"\tlineageTag: tag-1\n" +
		"\n" +
		"bogus construct here\n"

	_, err := Parse(content)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 4, perr.Line)
	assert.Contains(t, perr.Message, "unrecognized TMDL syntax")
}

func TestParse_EmptyContent(t *testing.T) {
	doc, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, doc.Tables)
	assert.Nil(t, doc.Model)
}

func TestParseAnnotationValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, v model.Value)
	}{
		{
			name:  "quoted string",
			input: `"hello world"`,
			check: func(t *testing.T, v model.Value) {
				assert.Equal(t, model.ValueString, v.Kind())
				assert.Equal(t, "hello world", v.String())
			},
		},
		{
			name:  "boolean",
			input: "True",
			check: func(t *testing.T, v model.Value) {
				b, ok := v.Bool()
				assert.True(t, ok)
				assert.True(t, b)
			},
		},
		{
			name:  "integer",
			input: "1567",
			check: func(t *testing.T, v model.Value) {
				i, ok := v.Int()
				assert.True(t, ok)
				assert.Equal(t, int64(1567), i)
			},
		},
		{
			name:  "float",
			input: "2.5",
			check: func(t *testing.T, v model.Value) {
				f, ok := v.Float()
				assert.True(t, ok)
				assert.Equal(t, 2.5, f)
			},
		},
		{
			name:  "json object",
			input: `{"isGeneralNumber":true}`,
			check: func(t *testing.T, v model.Value) {
				doc, ok := v.JSON()
				assert.True(t, ok)
				assert.Equal(t, map[string]any{"isGeneralNumber": true}, doc)
			},
		},
		{
			name:  "json array",
			input: `["Sales","Date"]`,
			check: func(t *testing.T, v model.Value) {
				doc, ok := v.JSON()
				assert.True(t, ok)
				assert.Equal(t, []any{"Sales", "Date"}, doc)
			},
		},
		{
			name:  "malformed json degrades to string",
			input: `{not json}`,
			check: func(t *testing.T, v model.Value) {
				assert.Equal(t, model.ValueString, v.Kind())
				assert.Equal(t, "{not json}", v.String())
			},
		},
		{
			name:  "bare word",
			input: "Automatic",
			check: func(t *testing.T, v model.Value) {
				assert.Equal(t, model.ValueString, v.Kind())
				assert.Equal(t, "Automatic", v.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parseAnnotationValue(tt.input))
		})
	}
}

func TestParseProperty(t *testing.T) {
	assert.Equal(t, "en-US", parseProperty("culture: en-US"))
	assert.Equal(t, "$#,0.00", parseProperty(`formatString: "$#,0.00"`))
	assert.Equal(t, "", parseProperty("no colon here"))
}

func TestParse_MultipleTablesInOneFile(t *testing.T) {
	content := "table Sales\n" +
		"\tlineageTag: tag-1\n" +
		"\n" +
		"table 'Date'\n" +
		"\tlineageTag: tag-2\n"

	doc, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, "Sales", doc.Tables[0].Name)
	assert.Equal(t, "'Date'", doc.Tables[1].Name)
}
