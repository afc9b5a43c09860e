package schemafile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tabula/pkg/schema"
)

// FromTable converts a schema back into its declarative form.
// Custom checks are written by name; decoding them again requires a
// registry holding the same names.
func FromTable(s *schema.Table) (*Document, error) {
	doc := &Document{
		Name:   s.Name(),
		Strict: s.Strict(),
	}

	for _, col := range s.Columns() {
		cd := ColumnDoc{
			Name:     col.Name(),
			Type:     col.Type().Name(),
			Nullable: col.Nullable(),
			Coerce:   col.Coerces(),
		}
		if !col.Required() {
			required := false
			cd.Required = &required
		}
		for _, chk := range col.Checks() {
			raw, err := checkDoc(chk)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name(), err)
			}
			cd.Checks = append(cd.Checks, raw)
		}
		doc.Columns = append(doc.Columns, cd)
	}

	for _, chk := range s.Checks() {
		raw, err := checkDoc(chk)
		if err != nil {
			return nil, err
		}
		doc.Checks = append(doc.Checks, raw)
	}
	return doc, nil
}

// Encode writes a schema as a YAML document.
func Encode(s *schema.Table) ([]byte, error) {
	doc, err := FromTable(s)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return data, nil
}

func checkDoc(chk schema.Check) (CheckDoc, error) {
	p, ok := chk.(schema.Params)
	if !ok {
		return nil, fmt.Errorf("check %s cannot be serialized", chk)
	}
	return CheckDoc(p.Params()), nil
}
