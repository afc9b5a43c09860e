package schemafile

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/registry"
	"github.com/aretw0/tabula/pkg/schema"
)

// Parse reads a YAML or JSON schema document without building it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	return &doc, nil
}

// Decode parses a YAML or JSON schema document and builds the schema.
// Custom checks and types are resolved through reg, which may be nil when
// the document references none.
func Decode(data []byte, reg *registry.Registry) (*schema.Table, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Build(doc, reg)
}

// LoadFile decodes the schema document at path.
func LoadFile(path string, reg *registry.Registry) (*schema.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Decode(data, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Build turns a parsed document into a schema. Every problem in the
// document is reported, joined into one error.
func Build(doc *Document, reg *registry.Registry) (*schema.Table, error) {
	var errs []error
	tb := schema.NewTable(doc.Name)
	if doc.Strict {
		tb.Strict()
	}

	for i, cd := range doc.Columns {
		label := cd.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		dt, err := reg.Type(cd.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("column %s: %w", label, err))
			continue
		}

		cb := schema.NewColumn(cd.Name, dt)
		if cd.Nullable {
			cb.Nullable()
		}
		if cd.Required != nil && !*cd.Required {
			cb.Optional()
		}
		if cd.Coerce {
			cb.Coerce()
		}
		for _, raw := range cd.Checks {
			chk, err := columnCheck(raw, reg)
			if err != nil {
				errs = append(errs, fmt.Errorf("column %s: check %q: %w", label, raw.Kind(), err))
				continue
			}
			cb.Check(chk)
		}
		tb.Column(cb)
	}

	for _, raw := range doc.Checks {
		chk, err := tableCheck(raw, reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("table check %q: %w", raw.Kind(), err))
			continue
		}
		tb.Check(chk)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return tb.Build()
}

func columnCheck(raw CheckDoc, reg *registry.Registry) (schema.Check, error) {
	switch raw.Kind() {
	case "range":
		var p rangeParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		lo, hi := normalize(p.Min), normalize(p.Max)
		switch {
		case lo != nil && hi != nil:
			return schema.Between(lo, hi, !p.ExclusiveMin, !p.ExclusiveMax, opts...), nil
		case lo != nil && p.ExclusiveMin:
			return schema.GreaterThan(lo, opts...), nil
		case lo != nil:
			return schema.GreaterOrEqual(lo, opts...), nil
		case hi != nil && p.ExclusiveMax:
			return schema.LessThan(hi, opts...), nil
		case hi != nil:
			return schema.LessOrEqual(hi, opts...), nil
		}
		return nil, fmt.Errorf("range needs min or max")

	case "in_set", "isin", "not_in_set", "notin":
		var p setParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		values := make([]any, len(p.Values))
		for i, v := range p.Values {
			values[i] = normalize(v)
		}
		if p.Kind == "in_set" || p.Kind == "isin" {
			return schema.IsIn(values, opts...), nil
		}
		return schema.NotIn(values, opts...), nil

	case "matches", "regex", "contains":
		var p patternParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		if p.Kind == "contains" {
			return schema.Contains(p.Pattern, opts...), nil
		}
		return schema.Matches(p.Pattern, opts...), nil

	case "str_length":
		var p lengthParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		return schema.StrLength(p.Min, p.max(), opts...), nil

	case "unique":
		var p commonParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		return schema.Unique(opts...), nil

	case "custom":
		var p namedParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		if reg == nil {
			return nil, fmt.Errorf("custom check %q needs a registry", p.Name)
		}
		return reg.Value(p.Name, opts...)

	case "":
		return nil, fmt.Errorf("missing kind")
	}
	return nil, fmt.Errorf("unknown column check kind")
}

func tableCheck(raw CheckDoc, reg *registry.Registry) (schema.TableCheck, error) {
	switch raw.Kind() {
	case "row_count", "table_row_count":
		var p lengthParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		return schema.RowCount(p.Min, p.max(), opts...), nil

	case "unique_together":
		var p columnsParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		return schema.UniqueTogether(p.Columns, opts...), nil

	case "row_predicate", "table_custom":
		var p namedParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		opts, err := p.options()
		if err != nil {
			return nil, err
		}
		if reg == nil {
			return nil, fmt.Errorf("row check %q needs a registry", p.Name)
		}
		return reg.Row(p.Name, p.Columns, opts...)

	case "":
		return nil, fmt.Errorf("missing kind")
	}
	return nil, fmt.Errorf("unknown table check kind")
}

func decodeParams(raw CheckDoc, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(raw)); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (p commonParams) options() ([]schema.CheckOption, error) {
	var opts []schema.CheckOption
	switch p.Severity {
	case "", "error":
	case "warning":
		opts = append(opts, schema.AsWarning())
	default:
		return nil, fmt.Errorf("unknown severity %q", p.Severity)
	}
	if p.Message != "" {
		opts = append(opts, schema.WithMessage(p.Message))
	}
	return opts, nil
}

func (p lengthParams) max() int {
	if p.Max == nil {
		return schema.Unbounded
	}
	return *p.Max
}

// normalize turns document numbers (json.Number from strict stores) into
// Go numbers so bounds compare by value.
func normalize(v any) any {
	return frame.NormalizeNumber(v)
}
