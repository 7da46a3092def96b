package tmdl

import "github.com/leapstack-labs/leapbi/pkg/model"

// Document is the structured result of parsing one TMDL file. A file
// normally holds a single kind of construct (the model header, one table,
// the relationship list, one culture), but the parser accepts any mix.
type Document struct {
	Model         *ModelHeader
	Tables        []model.Table
	Relationships []model.Relationship
	CultureInfos  []model.CultureInfo
	Database      *model.Database
	Annotations   []model.Annotation
	TableRefs     []string
	CultureRefs   []string
}

// ModelHeader is the model.tmdl root construct: model-level properties,
// annotations and the ref lines pointing at table and culture files.
type ModelHeader struct {
	Name                            string
	Culture                         string
	DefaultPowerBIDataSourceVersion string
	SourceQueryCulture              string
	DiscourageImplicitMeasures      bool
	DataAccessOptions               *model.DataAccessOptions
	Annotations                     []model.Annotation
	TableRefs                       []string
	CultureRefs                     []string
}
