package schema

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/aretw0/tabula/pkg/report"
)

// RangeCheck bounds a value from below, above or both.
// Numbers, strings and times can be bounded.
type RangeCheck struct {
	base
	min, max       any
	hasMin, hasMax bool
	incMin, incMax bool
}

// InRange requires min <= value <= max.
func InRange(min, max any, opts ...CheckOption) *RangeCheck {
	return Between(min, max, true, true, opts...)
}

// Between bounds a value on both sides, each bound inclusive or exclusive.
func Between(min, max any, inclusiveMin, inclusiveMax bool, opts ...CheckOption) *RangeCheck {
	return newRange(min, max, true, true, inclusiveMin, inclusiveMax, opts)
}

// GreaterThan requires value > min.
func GreaterThan(min any, opts ...CheckOption) *RangeCheck {
	return newRange(min, nil, true, false, false, false, opts)
}

// GreaterOrEqual requires value >= min.
func GreaterOrEqual(min any, opts ...CheckOption) *RangeCheck {
	return newRange(min, nil, true, false, true, false, opts)
}

// LessThan requires value < max.
func LessThan(max any, opts ...CheckOption) *RangeCheck {
	return newRange(nil, max, false, true, false, false, opts)
}

// LessOrEqual requires value <= max.
func LessOrEqual(max any, opts ...CheckOption) *RangeCheck {
	return newRange(nil, max, false, true, false, true, opts)
}

func newRange(min, max any, hasMin, hasMax, incMin, incMax bool, opts []CheckOption) *RangeCheck {
	c := &RangeCheck{
		base:   newBase(report.KindRange, opts),
		min:    min,
		max:    max,
		hasMin: hasMin,
		hasMax: hasMax,
		incMin: incMin,
		incMax: incMax,
	}

	if hasMin {
		if _, ok := compare(min, min); !ok {
			c.fail("lower bound %v (%T) is not orderable", min, min)
		}
	}
	if hasMax {
		if _, ok := compare(max, max); !ok {
			c.fail("upper bound %v (%T) is not orderable", max, max)
		}
	}
	if hasMin && hasMax && c.err == nil {
		cmp, ok := compare(min, max)
		switch {
		case !ok:
			c.fail("bounds %v and %v are not comparable", min, max)
		case cmp > 0:
			c.fail("lower bound %v is greater than upper bound %v", min, max)
		case cmp == 0 && (!incMin || !incMax):
			c.fail("range with equal bounds %v must be inclusive on both sides", min)
		}
	}
	return c
}

// CheckValue implements ValueCheck.
func (c *RangeCheck) CheckValue(value any) bool {
	if c.hasMin {
		cmp, ok := compare(value, c.min)
		if !ok || cmp < 0 || (cmp == 0 && !c.incMin) {
			return false
		}
	}
	if c.hasMax {
		cmp, ok := compare(value, c.max)
		if !ok || cmp > 0 || (cmp == 0 && !c.incMax) {
			return false
		}
	}
	return true
}

func (c *RangeCheck) String() string {
	lo, hi := "(-inf", "+inf)"
	if c.hasMin {
		lo = fmt.Sprintf("(%v", c.min)
		if c.incMin {
			lo = fmt.Sprintf("[%v", c.min)
		}
	}
	if c.hasMax {
		hi = fmt.Sprintf("%v)", c.max)
		if c.incMax {
			hi = fmt.Sprintf("%v]", c.max)
		}
	}
	return fmt.Sprintf("range %s, %s", lo, hi)
}

func (c *RangeCheck) describe(value any) string {
	return fmt.Sprintf("value %v not in %s", value, c)
}

// Params implements Params.
func (c *RangeCheck) Params() map[string]any {
	p := c.params("range")
	if c.hasMin {
		p["min"] = c.min
		if !c.incMin {
			p["exclusive_min"] = true
		}
	}
	if c.hasMax {
		p["max"] = c.max
		if !c.incMax {
			p["exclusive_max"] = true
		}
	}
	return p
}

// SetCheck tests membership in a fixed set of values.
type SetCheck struct {
	base
	values []any
	lookup map[any]struct{}
	negate bool
}

// IsIn requires the value to be one of values.
func IsIn(values []any, opts ...CheckOption) *SetCheck {
	return newSet(report.KindInSet, values, false, opts)
}

// NotIn requires the value to be none of values.
func NotIn(values []any, opts ...CheckOption) *SetCheck {
	return newSet(report.KindNotInSet, values, true, opts)
}

func newSet(kind report.Kind, values []any, negate bool, opts []CheckOption) *SetCheck {
	c := &SetCheck{
		base:   newBase(kind, opts),
		values: append([]any(nil), values...),
		lookup: make(map[any]struct{}, len(values)),
		negate: negate,
	}
	if len(values) == 0 {
		c.fail("value set is empty")
	}
	for _, v := range values {
		c.lookup[key(v)] = struct{}{}
	}
	return c
}

// CheckValue implements ValueCheck.
func (c *SetCheck) CheckValue(value any) bool {
	_, found := c.lookup[key(value)]
	return found != c.negate
}

// Values returns a copy of the set members in declaration order.
func (c *SetCheck) Values() []any {
	return append([]any(nil), c.values...)
}

func (c *SetCheck) String() string {
	if c.negate {
		return fmt.Sprintf("not in %v", c.values)
	}
	return fmt.Sprintf("in %v", c.values)
}

func (c *SetCheck) describe(value any) string {
	if c.negate {
		return fmt.Sprintf("value %v is in forbidden set %v", value, c.values)
	}
	return fmt.Sprintf("value %v not in allowed set %v", value, c.values)
}

// Params implements Params.
func (c *SetCheck) Params() map[string]any {
	p := c.params(string(c.kind))
	p["values"] = c.Values()
	return p
}

// RegexCheck matches string values against a regular expression.
type RegexCheck struct {
	base
	pattern string
	search  bool
	re      *regexp.Regexp
}

// Matches requires the whole string to match pattern.
func Matches(pattern string, opts ...CheckOption) *RegexCheck {
	return newRegex(pattern, false, opts)
}

// Contains requires pattern to match somewhere in the string.
func Contains(pattern string, opts ...CheckOption) *RegexCheck {
	return newRegex(pattern, true, opts)
}

func newRegex(pattern string, search bool, opts []CheckOption) *RegexCheck {
	c := &RegexCheck{
		base:    newBase(report.KindRegex, opts),
		pattern: pattern,
		search:  search,
	}
	expr := pattern
	if !search {
		expr = `^(?:` + pattern + `)$`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		c.fail("invalid pattern %q: %v", pattern, err)
		return c
	}
	c.re = re
	return c
}

// CheckValue implements ValueCheck. Non-string values never match.
func (c *RegexCheck) CheckValue(value any) bool {
	if c.re == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return c.re.MatchString(v)
	case []byte:
		return c.re.Match(v)
	}
	return false
}

func (c *RegexCheck) String() string {
	if c.search {
		return fmt.Sprintf("contains /%s/", c.pattern)
	}
	return fmt.Sprintf("matches /%s/", c.pattern)
}

func (c *RegexCheck) describe(value any) string {
	if c.search {
		return fmt.Sprintf("value %q does not contain /%s/", fmt.Sprint(value), c.pattern)
	}
	return fmt.Sprintf("value %q does not match /%s/", fmt.Sprint(value), c.pattern)
}

// Params implements Params.
func (c *RegexCheck) Params() map[string]any {
	kind := "matches"
	if c.search {
		kind = "contains"
	}
	p := c.params(kind)
	p["pattern"] = c.pattern
	return p
}

// Unbounded disables the upper limit of StrLength.
const Unbounded = -1

// LengthCheck bounds the length of strings, counted in runes.
type LengthCheck struct {
	base
	min, max int
}

// StrLength requires min <= len(value) <= max. Use Unbounded for no maximum.
func StrLength(min, max int, opts ...CheckOption) *LengthCheck {
	c := &LengthCheck{
		base: newBase(report.KindStrLength, opts),
		min:  min,
		max:  max,
	}
	switch {
	case min < 0:
		c.fail("minimum length %d is negative", min)
	case max != Unbounded && max < 0:
		c.fail("maximum length %d is negative", max)
	case max != Unbounded && max < min:
		c.fail("minimum length %d is greater than maximum %d", min, max)
	}
	return c
}

// CheckValue implements ValueCheck. Non-string values fail.
func (c *LengthCheck) CheckValue(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	n := utf8.RuneCountInString(s)
	return n >= c.min && (c.max == Unbounded || n <= c.max)
}

func (c *LengthCheck) String() string {
	if c.max == Unbounded {
		return fmt.Sprintf("length >= %d", c.min)
	}
	return fmt.Sprintf("length in [%d, %d]", c.min, c.max)
}

func (c *LengthCheck) describe(value any) string {
	return fmt.Sprintf("value %q has %s, want %s", fmt.Sprint(value), lengthOf(value), c)
}

func lengthOf(value any) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("type %T", value)
	}
	return fmt.Sprintf("length %d", utf8.RuneCountInString(s))
}

// Params implements Params.
func (c *LengthCheck) Params() map[string]any {
	p := c.params("str_length")
	p["min"] = c.min
	if c.max != Unbounded {
		p["max"] = c.max
	}
	return p
}

// PredicateCheck wraps a user-supplied pure function over a single value.
type PredicateCheck struct {
	base
	name string
	fn   func(any) bool
}

// Predicate creates a custom value check. fn must be pure; a panic counts as
// a failure.
func Predicate(name string, fn func(value any) bool, opts ...CheckOption) *PredicateCheck {
	c := &PredicateCheck{
		base: newBase(report.KindCustom, opts),
		name: name,
		fn:   fn,
	}
	if name == "" {
		c.fail("custom check name is empty")
	}
	if fn == nil {
		c.fail("custom check %q has no function", name)
	}
	return c
}

// Name returns the name the check was registered under.
func (c *PredicateCheck) Name() string { return c.name }

// CheckValue implements ValueCheck.
func (c *PredicateCheck) CheckValue(value any) bool {
	if c.fn == nil {
		return false
	}
	return c.fn(value)
}

func (c *PredicateCheck) String() string { return "custom " + c.name }

func (c *PredicateCheck) describe(value any) string {
	return fmt.Sprintf("value %v failed custom check %s", value, c.name)
}

// Params implements Params.
func (c *PredicateCheck) Params() map[string]any {
	p := c.params("custom")
	p["name"] = c.name
	return p
}
