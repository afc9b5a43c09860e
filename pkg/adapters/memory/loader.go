package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/schema"
)

// Loader implements ports.SchemaLoader over an in-process catalog.
// Schemas built in Go, including ones with custom predicates, can be served by name.
type Loader struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Table
}

// NewLoader creates a catalog holding the given schemas.
// Schemas must have distinct, non-empty names.
func NewLoader(schemas ...*schema.Table) (*Loader, error) {
	l := &Loader{schemas: make(map[string]*schema.Table, len(schemas))}
	for _, s := range schemas {
		if err := l.Add(s); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers a schema under its name.
func (l *Loader) Add(s *schema.Table) error {
	if s == nil || s.Name() == "" {
		return fmt.Errorf("schema missing name")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.schemas[s.Name()]; dup {
		return fmt.Errorf("schema %q already registered", s.Name())
	}
	l.schemas[s.Name()] = s
	return nil
}

// GetSchema retrieves a schema by name.
func (l *Loader) GetSchema(ctx context.Context, name string) (*schema.Table, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrSchemaNotFound, name)
	}
	return s, nil
}

// ListSchemas returns all available schema names.
func (l *Loader) ListSchemas(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.schemas))
	for name := range l.schemas {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}
