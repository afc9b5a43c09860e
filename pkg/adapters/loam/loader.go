package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/registry"
	"github.com/aretw0/tabula/pkg/schema"
	"github.com/aretw0/tabula/pkg/schemafile"
)

// Loader adapts the Loam library to the SchemaLoader interface.
// Each document of the repository (Markdown frontmatter, JSON or YAML)
// declares one table schema.
type Loader struct {
	Repo     *loam.TypedRepository[SchemaMetadata]
	Registry *registry.Registry
}

// New creates a new Loam adapter. reg resolves custom checks and may be nil.
func New(repo *loam.TypedRepository[SchemaMetadata], reg *registry.Registry) *Loader {
	return &Loader{
		Repo:     repo,
		Registry: reg,
	}
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string, reg *registry.Registry) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode makes every adapter (JSON, Markdown/YAML) return json.Number,
	// and ReadOnly keeps Loam from creating its dev sandbox. The catalog never
	// writes.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[SchemaMetadata](repo), reg), nil
}

// GetSchema builds the schema whose normalized ID is name.
func (l *Loader) GetSchema(ctx context.Context, name string) (*schema.Table, error) {
	docs, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	meta, ok := docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrSchemaNotFound, name)
	}

	s, err := schemafile.Build(&meta, l.Registry)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return s, nil
}

// ListSchemas lists all schemas in the repository.
func (l *Loader) ListSchemas(ctx context.Context) ([]string, error) {
	docs, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// index maps normalized schema IDs to their metadata.
func (l *Loader) index(ctx context.Context) (map[string]SchemaMetadata, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	out := make(map[string]SchemaMetadata, len(docs))

	for _, doc := range docs {
		// Use the name from metadata if available, otherwise filename ID
		rawID := doc.Data.Name
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: schema '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		meta := doc.Data
		meta.Name = id
		out[id] = meta
	}
	return out, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
