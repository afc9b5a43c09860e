package loam

import "github.com/aretw0/tabula/pkg/schemafile"

// SchemaMetadata is the frontmatter (or JSON body) of a schema document.
// It shares the declarative format of schemafile, whose mapstructure tags
// match the Frontmatter/YAML keys.
type SchemaMetadata = schemafile.Document
