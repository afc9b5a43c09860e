package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataType defines the contract for column element types.
// Implementations determine how values are checked and, when the column asks
// for it, converted to the type.
type DataType interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Coerce converts a value to this type, or returns an error if it cannot.
	Coerce(value any) (any, error)
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to string", value)
	}
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return fmt.Errorf("expected int, got number %s", v)
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

func (t *IntType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q to int", v)
		}
		return i, nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case float32:
		return t.Coerce(float64(v))
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("cannot coerce %v to int without truncation", v)
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %s to int", v)
		}
		return i, nil
	default:
		if i, ok := toInt64(value); ok {
			return i, nil
		}
		return nil, fmt.Errorf("cannot coerce %T to int", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

func (t *FloatType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q to float", s)
		}
		return f, nil
	}
	if f, ok := toFloat(value); ok {
		return f, nil
	}
	return nil, fmt.Errorf("cannot coerce %T to float", value)
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q to bool", v)
		}
		return b, nil
	}
	if i, ok := toInt64(value); ok && (i == 0 || i == 1) {
		return i == 1, nil
	}
	return nil, fmt.Errorf("cannot coerce %v to bool", value)
}

// DefaultTimeLayouts are tried in order when coercing strings to time.
var DefaultTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimeType validates time.Time values.
type TimeType struct {
	layouts []string
}

func (t *TimeType) Name() string { return "time" }

func (t *TimeType) Validate(value any) error {
	_, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("expected time, got %T", value)
	}
	return nil
}

func (t *TimeType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range t.layouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("cannot coerce %q to time", v)
	default:
		return nil, fmt.Errorf("cannot coerce %T to time", value)
	}
}

// AnyType accepts every present value.
type AnyType struct{}

func (t *AnyType) Name() string                  { return "any" }
func (t *AnyType) Validate(any) error            { return nil }
func (t *AnyType) Coerce(value any) (any, error) { return value, nil }

// CustomType applies a user-defined validation function.
// Coercion is the identity.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	if t.validate == nil {
		return fmt.Errorf("custom type %q has no validate function", t.name)
	}
	return t.validate(value)
}

func (t *CustomType) Coerce(value any) (any, error) { return value, nil }

// --- Factory Functions ---

// String creates a string type.
func String() DataType { return &StringType{} }

// Int creates an integer type.
func Int() DataType { return &IntType{} }

// Float creates a float type.
func Float() DataType { return &FloatType{} }

// Bool creates a boolean type.
func Bool() DataType { return &BoolType{} }

// Time creates a time type. Layouts are used when coercing strings;
// DefaultTimeLayouts apply when none are given.
func Time(layouts ...string) DataType {
	if len(layouts) == 0 {
		layouts = DefaultTimeLayouts
	}
	return &TimeType{layouts: layouts}
}

// Any creates a type that accepts every value.
func Any() DataType { return &AnyType{} }

// Custom creates a custom type with a user-defined function.
func Custom(name string, validate func(any) error) DataType {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a type name to a DataType.
// Supports the built-in types: "string", "int", "float", "bool", "time", "any".
func ParseType(typeStr string) (DataType, error) {
	switch typeStr {
	case "string", "str":
		return String(), nil
	case "int", "integer":
		return Int(), nil
	case "float", "number":
		return Float(), nil
	case "bool", "boolean":
		return Bool(), nil
	case "time", "datetime", "date":
		return Time(), nil
	case "any":
		return Any(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
