package schema

import (
	"errors"
	"fmt"
)

// DefinitionError reports an invalid schema: a programmer error detected
// when the schema is built, never while validating data.
type DefinitionError struct {
	Column string // Column name, empty for table-level problems
	Check  string // Description of the offending check, if any
	Reason string // Human-readable reason for failure
}

func (e *DefinitionError) Error() string {
	msg := "schema definition"
	if e.Column != "" {
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	if e.Check != "" {
		msg += fmt.Sprintf(": check %s", e.Check)
	}
	return msg + ": " + e.Reason
}

// DefinitionErrors returns every DefinitionError joined into err.
func DefinitionErrors(err error) []*DefinitionError {
	var out []*DefinitionError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if de, ok := e.(*DefinitionError); ok {
			out = append(out, de)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

func checkDefinition(column string, c Check) error {
	if c == nil {
		return &DefinitionError{Column: column, Reason: "check is nil"}
	}
	if d, ok := c.(definer); ok {
		if err := d.definitionError(); err != nil {
			return &DefinitionError{Column: column, Check: string(c.Kind()), Reason: err.Error()}
		}
	}
	return nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
