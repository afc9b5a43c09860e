package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tabula/pkg/schema"
)

// ValueFunc is a named custom check over a single value.
type ValueFunc func(value any) bool

// RowFunc is a named custom check over the cells of one row.
type RowFunc func(row map[string]any) bool

// Registry holds the named custom checks and types that declarative schema
// documents may reference. It is passed explicitly; there is no global
// instance.
type Registry struct {
	mu     sync.RWMutex
	values map[string]ValueFunc
	rows   map[string]RowFunc
	types  map[string]schema.DataType
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		values: make(map[string]ValueFunc),
		rows:   make(map[string]RowFunc),
		types:  make(map[string]schema.DataType),
	}
}

// RegisterValue adds a value check to the registry.
// If a check with the same name exists, it is overwritten.
func (r *Registry) RegisterValue(name string, fn ValueFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = fn
}

// RegisterRow adds a row check to the registry.
// If a check with the same name exists, it is overwritten.
func (r *Registry) RegisterRow(name string, fn RowFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[name] = fn
}

// RegisterType makes a custom data type available under its Name.
func (r *Registry) RegisterType(dt schema.DataType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[dt.Name()] = dt
}

// Value builds a custom value check from the function registered under name.
func (r *Registry) Value(name string, opts ...schema.CheckOption) (*schema.PredicateCheck, error) {
	r.mu.RLock()
	fn, ok := r.values[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("value check not found: %s", name)
	}
	return schema.Predicate(name, fn, opts...), nil
}

// Row builds a cross-column check from the function registered under name.
func (r *Registry) Row(name string, columns []string, opts ...schema.CheckOption) (*schema.RowPredicateCheck, error) {
	r.mu.RLock()
	fn, ok := r.rows[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("row check not found: %s", name)
	}
	return schema.RowPredicate(name, columns, fn, opts...), nil
}

// Type resolves a type name: registered custom types first, then the
// built-in names understood by schema.ParseType.
func (r *Registry) Type(name string) (schema.DataType, error) {
	if r != nil {
		r.mu.RLock()
		dt, ok := r.types[name]
		r.mu.RUnlock()
		if ok {
			return dt, nil
		}
	}
	return schema.ParseType(name)
}

// Names lists every registered check name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.values)+len(r.rows))
	for name := range r.values {
		names = append(names, name)
	}
	for name := range r.rows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
