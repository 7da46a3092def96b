package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Sales", expected: "sales"},
		{name: "single quoted", input: "'Sales Table'", expected: "sales table"},
		{name: "double quoted", input: `"Date"`, expected: "date"},
		{name: "surrounding whitespace", input: "  Customers ", expected: "customers"},
		{name: "mismatched quotes untouched", input: `'Sales"`, expected: `'sales"`},
		{name: "only one layer stripped", input: `''Sales''`, expected: "'sales'"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "Sales Table", Unquote("'Sales Table'"))
	assert.Equal(t, "Sales", Unquote(`"Sales"`))
	assert.Equal(t, "Sales", Unquote("Sales"))
	assert.Equal(t, "'Sales", Unquote("'Sales"))
	assert.Equal(t, "'", Unquote("'"))
	assert.Equal(t, "", Unquote(""))
}

func TestSemanticModelLookups(t *testing.T) {
	m := &SemanticModel{
		Tables: []Table{
			{
				Name: "Sales Data",
				Columns: []Column{
					{Name: "Amount", DataType: DataTypeDouble},
					{Name: "Order Date", DataType: DataTypeDateTime},
				},
				Measures: []Measure{
					{Name: "Total Sales", Expression: "SUM('Sales Data'[Amount])"},
				},
			},
			{Name: "Date"},
		},
	}

	table := m.TableByName("'sales data'")
	require.NotNil(t, table)
	assert.Equal(t, "Sales Data", table.Name)

	assert.Nil(t, m.TableByName("Orders"))

	col := table.ColumnByName("ORDER DATE")
	require.NotNil(t, col)
	assert.Equal(t, DataTypeDateTime, col.DataType)
	assert.Nil(t, table.ColumnByName("Missing"))

	measure := table.MeasureByName("total sales")
	require.NotNil(t, measure)
	assert.Equal(t, "SUM('Sales Data'[Amount])", measure.Expression)
}

func TestColumnCalculated(t *testing.T) {
	regular := Column{Name: "Amount", SourceColumn: "Amount"}
	calculated := Column{Name: "Margin", Expression: "[Revenue] - [Cost]"}

	assert.False(t, regular.Calculated())
	assert.True(t, calculated.Calculated())
}

func TestValueKinds(t *testing.T) {
	v := IntValue(42)
	assert.Equal(t, ValueInt, v.Kind())
	i, ok := v.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)
	assert.Equal(t, "42", v.String())

	_, ok = v.Bool()
	assert.False(t, ok)

	b := BoolValue(true)
	assert.Equal(t, "true", b.String())

	f := FloatValue(1.5)
	assert.Equal(t, "1.5", f.String())

	doc := JSONValue(map[string]any{"version": "1.0"})
	got, ok := doc.JSON()
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"version": "1.0"}, got)
}

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{name: "string", value: StringValue("hello"), expected: `"hello"`},
		{name: "int", value: IntValue(7), expected: "7"},
		{name: "bool", value: BoolValue(false), expected: "false"},
		{name: "json", value: JSONValue([]any{"a", "b"}), expected: `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}
