package pinot

// FieldKind tells which field spec list a column was declared in.
type FieldKind string

const (
	FieldKindDimension FieldKind = "DIMENSION"
	FieldKindMetric    FieldKind = "METRIC"
	FieldKindDateTime  FieldKind = "DATE_TIME"
	FieldKindTime      FieldKind = "TIME"
)

// FieldSpec is one column of a Pinot table schema.
type FieldSpec struct {
	Name             string `json:"name"`
	DataType         string `json:"dataType"`
	SingleValueField *bool  `json:"singleValueField,omitempty"`
	Format           string `json:"format,omitempty"`
	Granularity      string `json:"granularity,omitempty"`
}

type timeFieldSpec struct {
	IncomingGranularitySpec *FieldSpec `json:"incomingGranularitySpec,omitempty"`
	OutgoingGranularitySpec *FieldSpec `json:"outgoingGranularitySpec,omitempty"`
}

// Schema is the body of the controller /tables/{table}/schema endpoint.
type Schema struct {
	SchemaName          string         `json:"schemaName"`
	DimensionFieldSpecs []FieldSpec    `json:"dimensionFieldSpecs,omitempty"`
	MetricFieldSpecs    []FieldSpec    `json:"metricFieldSpecs,omitempty"`
	DateTimeFieldSpecs  []FieldSpec    `json:"dateTimeFieldSpecs,omitempty"`
	TimeFieldSpec       *timeFieldSpec `json:"timeFieldSpec,omitempty"`
}

// Column is a flattened schema field.
type Column struct {
	Name        string    `json:"name"`
	DataType    string    `json:"dataType"`
	Kind        FieldKind `json:"kind"`
	MultiValued bool      `json:"multiValued,omitempty"`
}

// Columns lists every field in declaration order: dimensions, metrics, date-time fields and
// finally the legacy time field.
func (s *Schema) Columns() []Column {
	columns := []Column{}
	appendSpecs := func(specs []FieldSpec, kind FieldKind) {
		for _, spec := range specs {
			columns = append(columns, Column{
				Name:        spec.Name,
				DataType:    spec.DataType,
				Kind:        kind,
				MultiValued: spec.SingleValueField != nil && !*spec.SingleValueField,
			})
		}
	}
	appendSpecs(s.DimensionFieldSpecs, FieldKindDimension)
	appendSpecs(s.MetricFieldSpecs, FieldKindMetric)
	appendSpecs(s.DateTimeFieldSpecs, FieldKindDateTime)
	if spec := s.legacyTimeField(); spec != nil {
		appendSpecs([]FieldSpec{*spec}, FieldKindTime)
	}
	return columns
}

// TimeColumns returns the names of the columns usable as a time-series time column.
func (s *Schema) TimeColumns() []string {
	names := []string{}
	for _, column := range s.Columns() {
		if column.Kind == FieldKindDateTime || column.Kind == FieldKindTime || column.DataType == "TIMESTAMP" {
			names = append(names, column.Name)
		}
	}
	return names
}

func (s *Schema) legacyTimeField() *FieldSpec {
	if s.TimeFieldSpec == nil {
		return nil
	}
	if s.TimeFieldSpec.OutgoingGranularitySpec != nil {
		return s.TimeFieldSpec.OutgoingGranularitySpec
	}
	return s.TimeFieldSpec.IncomingGranularitySpec
}
