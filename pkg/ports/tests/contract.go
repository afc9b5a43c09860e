package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/tabula/pkg/ports"
)

// SchemaLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.SchemaLoader.
// want maps every schema name the loader must serve to its expected column names.
func SchemaLoaderContractTest(t *testing.T, loader ports.SchemaLoader, want map[string][]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test GetSchema (Success)
	t.Run("GetSchema_Success", func(t *testing.T) {
		for name, columns := range want {
			s, err := loader.GetSchema(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error getting schema %s: %v", name, err)
			}
			if s.Name() != name {
				t.Errorf("schema name mismatch: got %q, want %q", s.Name(), name)
			}
			got := s.Columns()
			if len(got) != len(columns) {
				t.Fatalf("schema %s: got %d columns, want %d", name, len(got), len(columns))
			}
			for i, col := range got {
				if col.Name() != columns[i] {
					t.Errorf("schema %s column %d: got %q, want %q", name, i, col.Name(), columns[i])
				}
			}
		}
	})

	// 2. Test GetSchema (NotFound)
	t.Run("GetSchema_NotFound", func(t *testing.T) {
		_, err := loader.GetSchema(ctx, "non-existent-schema")
		if !errors.Is(err, ports.ErrSchemaNotFound) {
			t.Errorf("expected ErrSchemaNotFound, got %v", err)
		}
	})

	// 3. Test ListSchemas
	t.Run("ListSchemas", func(t *testing.T) {
		names, err := loader.ListSchemas(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing schemas: %v", err)
		}

		if len(names) != len(want) {
			t.Errorf("expected %d schemas, got %d", len(want), len(names))
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range want {
			if !lookup[name] {
				t.Errorf("schema %s missing from list", name)
			}
		}
		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("list is not sorted: %v", names)
				break
			}
		}
	})
}
