package schemafile

// Document is the declarative form of a table schema, as written in YAML or
// JSON files. The mapstructure tags let document stores such as Loam decode
// frontmatter straight into it.
type Document struct {
	Name        string      `yaml:"name" json:"name" mapstructure:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	Strict      bool        `yaml:"strict,omitempty" json:"strict,omitempty" mapstructure:"strict"`
	Columns     []ColumnDoc `yaml:"columns" json:"columns" mapstructure:"columns"`
	Checks      []CheckDoc  `yaml:"checks,omitempty" json:"checks,omitempty" mapstructure:"checks"`
}

// ColumnDoc declares one column.
type ColumnDoc struct {
	Name     string     `yaml:"name" json:"name" mapstructure:"name"`
	Type     string     `yaml:"type" json:"type" mapstructure:"type"`
	Nullable bool       `yaml:"nullable,omitempty" json:"nullable,omitempty" mapstructure:"nullable"`
	Required *bool      `yaml:"required,omitempty" json:"required,omitempty" mapstructure:"required"`
	Coerce   bool       `yaml:"coerce,omitempty" json:"coerce,omitempty" mapstructure:"coerce"`
	Checks   []CheckDoc `yaml:"checks,omitempty" json:"checks,omitempty" mapstructure:"checks"`
}

// CheckDoc is a check declaration: a "kind" key plus the parameters of that
// kind, e.g. {kind: range, min: 0, max: 120}.
type CheckDoc map[string]any

// Kind returns the declared check kind.
func (c CheckDoc) Kind() string {
	k, _ := c["kind"].(string)
	return k
}

// common parameters accepted by every check kind.
type commonParams struct {
	Kind     string `mapstructure:"kind"`
	Severity string `mapstructure:"severity"`
	Message  string `mapstructure:"message"`
}

type rangeParams struct {
	commonParams `mapstructure:",squash"`
	Min          any  `mapstructure:"min"`
	Max          any  `mapstructure:"max"`
	ExclusiveMin bool `mapstructure:"exclusive_min"`
	ExclusiveMax bool `mapstructure:"exclusive_max"`
}

type setParams struct {
	commonParams `mapstructure:",squash"`
	Values       []any `mapstructure:"values"`
}

type patternParams struct {
	commonParams `mapstructure:",squash"`
	Pattern      string `mapstructure:"pattern"`
}

type lengthParams struct {
	commonParams `mapstructure:",squash"`
	Min          int  `mapstructure:"min"`
	Max          *int `mapstructure:"max"`
}

type namedParams struct {
	commonParams `mapstructure:",squash"`
	Name         string   `mapstructure:"name"`
	Columns      []string `mapstructure:"columns"`
}

type columnsParams struct {
	commonParams `mapstructure:",squash"`
	Columns      []string `mapstructure:"columns"`
}
