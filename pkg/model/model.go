// Package model defines the typed entities of a tabular semantic model as
// described by TMDL files in a PBIP project.
//
// Entities are immutable value snapshots: every parse produces fresh values,
// and edits are realized by rewriting file text and re-parsing, never by
// mutating a live object graph.
package model

// DataType is a column data type as spelled in TMDL.
type DataType string

// Column data types.
const (
	DataTypeString   DataType = "string"
	DataTypeInt64    DataType = "int64"
	DataTypeDouble   DataType = "double"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDateTime DataType = "dateTime"
	DataTypeBinary   DataType = "binary"
)

// SummarizeBy is a column summarization kind.
type SummarizeBy string

// Summarization kinds.
const (
	SummarizeNone    SummarizeBy = "none"
	SummarizeSum     SummarizeBy = "sum"
	SummarizeCount   SummarizeBy = "count"
	SummarizeMin     SummarizeBy = "min"
	SummarizeMax     SummarizeBy = "max"
	SummarizeAverage SummarizeBy = "average"
)

// PartitionMode is a partition refresh mode.
type PartitionMode string

// Partition modes.
const (
	PartitionImport      PartitionMode = "import"
	PartitionDirectQuery PartitionMode = "directQuery"
	PartitionDual        PartitionMode = "dual"
	PartitionCalculated  PartitionMode = "calculated"
)

// Cardinality is a relationship cardinality.
type Cardinality string

// Relationship cardinalities.
const (
	OneToMany  Cardinality = "OneToMany"
	ManyToOne  Cardinality = "ManyToOne"
	OneToOne   Cardinality = "OneToOne"
	ManyToMany Cardinality = "ManyToMany"
)

// CrossFilteringBehavior controls filter propagation across a relationship.
type CrossFilteringBehavior string

// Cross-filtering behaviors.
const (
	FilterAutomatic      CrossFilteringBehavior = "Automatic"
	FilterOneDirection   CrossFilteringBehavior = "OneDirection"
	FilterBothDirections CrossFilteringBehavior = "BothDirections"
)

// Column is a table column. A non-empty Expression marks it as calculated;
// the classification is one-way: a regular column never gains an expression
// in place and a calculated column never loses one.
type Column struct {
	Name           string       `json:"name"`
	DataType       DataType     `json:"data_type"`
	LineageTag     string       `json:"lineage_tag"`
	SummarizeBy    SummarizeBy  `json:"summarize_by"`
	SourceColumn   string       `json:"source_column,omitempty"`
	FormatString   string       `json:"format_string,omitempty"`
	DataCategory   string       `json:"data_category,omitempty"`
	SortByColumn   string       `json:"sort_by_column,omitempty"`
	Expression     string       `json:"expression,omitempty"`
	Description    string       `json:"description,omitempty"`
	IsHidden       bool         `json:"is_hidden"`
	IsNameInferred bool         `json:"is_name_inferred"`
	Variation      *Variation   `json:"variation,omitempty"`
	Annotations    []Annotation `json:"annotations,omitempty"`
}

// Calculated reports whether the column is defined by a DAX expression.
func (c Column) Calculated() bool { return c.Expression != "" }

// Measure is a DAX measure. Measure names are unique across the whole
// model, not just within one table.
type Measure struct {
	Name          string       `json:"name"`
	Expression    string       `json:"expression"`
	LineageTag    string       `json:"lineage_tag"`
	FormatString  string       `json:"format_string,omitempty"`
	DisplayFolder string       `json:"display_folder,omitempty"`
	Description   string       `json:"description,omitempty"`
	IsHidden      bool         `json:"is_hidden"`
	Annotations   []Annotation `json:"annotations,omitempty"`
}

// HierarchyLevel is one level of a hierarchy.
type HierarchyLevel struct {
	Name       string `json:"name"`
	LineageTag string `json:"lineage_tag"`
	Column     string `json:"column"`
}

// Hierarchy is an ordered drill path over columns of one table.
type Hierarchy struct {
	Name        string           `json:"name"`
	LineageTag  string           `json:"lineage_tag"`
	Levels      []HierarchyLevel `json:"levels,omitempty"`
	Annotations []Annotation     `json:"annotations,omitempty"`
}

// Variation is a column variation pointing at a default hierarchy through
// a relationship.
type Variation struct {
	Name             string `json:"name"`
	IsDefault        bool   `json:"is_default"`
	Relationship     string `json:"relationship,omitempty"`
	DefaultHierarchy string `json:"default_hierarchy,omitempty"`
}

// Partition holds a table partition's source, verbatim M or DAX text.
type Partition struct {
	Name   string        `json:"name"`
	Mode   PartitionMode `json:"mode"`
	Source string        `json:"source"`
}

// CalculationItem is one named expression of a calculation group.
type CalculationItem struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// CalculationGroup is a table's calculation group, when present.
type CalculationGroup struct {
	Precedence *int              `json:"precedence,omitempty"`
	Items      []CalculationItem `json:"calculation_items,omitempty"`
}

// Table is a single table definition, usually one per TMDL file.
type Table struct {
	Name                 string            `json:"name"`
	LineageTag           string            `json:"lineage_tag"`
	Columns              []Column          `json:"columns,omitempty"`
	Measures             []Measure         `json:"measures,omitempty"`
	Hierarchies          []Hierarchy       `json:"hierarchies,omitempty"`
	Partitions           []Partition       `json:"partitions,omitempty"`
	CalculationGroup     *CalculationGroup `json:"calculation_group,omitempty"`
	IsHidden             bool              `json:"is_hidden"`
	IsPrivate            bool              `json:"is_private"`
	ShowAsVariationsOnly bool              `json:"show_as_variations_only"`
	Description          string            `json:"description,omitempty"`
	Annotations          []Annotation      `json:"annotations,omitempty"`
}

// Relationship joins a column of one table to a column of another.
type Relationship struct {
	Name                   string                 `json:"name"`
	FromTable              string                 `json:"from_table"`
	FromColumn             string                 `json:"from_column"`
	ToTable                string                 `json:"to_table"`
	ToColumn               string                 `json:"to_column"`
	Cardinality            Cardinality            `json:"cardinality,omitempty"`
	CrossFilteringBehavior CrossFilteringBehavior `json:"cross_filtering_behavior,omitempty"`
	IsActive               bool                   `json:"is_active"`
	JoinOnDateBehavior     string                 `json:"join_on_date_behavior,omitempty"`
}

// CultureInfo carries localized metadata for one culture.
type CultureInfo struct {
	Name               string         `json:"name"`
	ContentType        string         `json:"content_type,omitempty"`
	LinguisticMetadata map[string]any `json:"linguistic_metadata,omitempty"`
}

// DataAccessOptions are the model-level data access flags.
type DataAccessOptions struct {
	LegacyRedirects         bool `json:"legacy_redirects"`
	ReturnErrorValuesAsNull bool `json:"return_error_values_as_null"`
}

// Database is the database.tmdl payload.
type Database struct {
	CompatibilityLevel int `json:"compatibility_level"`
}

// SemanticModel is the assembled model: the model.tmdl header plus every
// table, relationship and culture loaded from the definition directory.
type SemanticModel struct {
	Name                            string             `json:"name"`
	Culture                         string             `json:"culture"`
	DefaultPowerBIDataSourceVersion string             `json:"default_power_bi_data_source_version,omitempty"`
	SourceQueryCulture              string             `json:"source_query_culture,omitempty"`
	DiscourageImplicitMeasures      bool               `json:"discourage_implicit_measures"`
	DataAccessOptions               *DataAccessOptions `json:"data_access_options,omitempty"`
	CompatibilityLevel              int                `json:"compatibility_level,omitempty"`
	Tables                          []Table            `json:"tables,omitempty"`
	Relationships                   []Relationship     `json:"relationships,omitempty"`
	CultureInfos                    []CultureInfo      `json:"culture_infos,omitempty"`
	Annotations                     []Annotation       `json:"annotations,omitempty"`
}

// TableByName returns the table whose normalized name matches, or nil.
func (m *SemanticModel) TableByName(name string) *Table {
	want := NormalizeName(name)
	for i := range m.Tables {
		if NormalizeName(m.Tables[i].Name) == want {
			return &m.Tables[i]
		}
	}
	return nil
}

// ColumnByName returns the column whose normalized name matches, or nil.
func (t *Table) ColumnByName(name string) *Column {
	want := NormalizeName(name)
	for i := range t.Columns {
		if NormalizeName(t.Columns[i].Name) == want {
			return &t.Columns[i]
		}
	}
	return nil
}

// MeasureByName returns the measure whose normalized name matches, or nil.
func (t *Table) MeasureByName(name string) *Measure {
	want := NormalizeName(name)
	for i := range t.Measures {
		if NormalizeName(t.Measures[i].Name) == want {
			return &t.Measures[i]
		}
	}
	return nil
}
