package ports

import (
	"context"

	"github.com/aretw0/tabula/pkg/schema"
)

// SchemaLoader defines how the engine resolves table schemas by name.
// This allows the schema catalog (Loam, Memory) to be decoupled.
type SchemaLoader interface {
	// GetSchema returns the built schema registered under name.
	// Returns ErrSchemaNotFound if no such schema exists.
	GetSchema(ctx context.Context, name string) (*schema.Table, error)

	// ListSchemas returns the names of all available schemas, sorted.
	ListSchemas(ctx context.Context) ([]string, error)
}
