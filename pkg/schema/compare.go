package schema

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

type numKind int

const (
	numInt   numKind = iota // fits in int64
	numUint                 // above math.MaxInt64
	numFloat                // not integral, not finite or out of integer range
)

// number is a numeric value kept exact for integers.
type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
}

// twoTo63 and twoTo64 are exactly representable as float64.
const (
	twoTo63 = float64(1 << 63)
	twoTo64 = twoTo63 * 2
)

func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case uint:
		return fromUint(uint64(x)), true
	case uint64:
		return fromUint(x), true
	case float32:
		return fromFloat(float64(x)), true
	case float64:
		return fromFloat(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return number{kind: numInt, i: i}, true
		}
		if u, err := strconv.ParseUint(string(x), 10, 64); err == nil {
			return fromUint(u), true
		}
		f, err := x.Float64()
		if err != nil {
			return number{}, false
		}
		return fromFloat(f), true
	}
	if i, ok := toInt64(v); ok {
		return number{kind: numInt, i: i}, true
	}
	return number{}, false
}

func fromUint(u uint64) number {
	if u <= math.MaxInt64 {
		return number{kind: numInt, i: int64(u)}
	}
	return number{kind: numUint, u: u}
}

// fromFloat turns integral floats into integers so that 4.0 and 4 are equal.
func fromFloat(f float64) number {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		switch {
		case f >= -twoTo63 && f < twoTo63:
			return number{kind: numInt, i: int64(f)}
		case f >= twoTo63 && f < twoTo64:
			return number{kind: numUint, u: uint64(f)}
		}
	}
	return number{kind: numFloat, f: f}
}

func (n number) float() float64 {
	switch n.kind {
	case numInt:
		return float64(n.i)
	case numUint:
		return float64(n.u)
	}
	return n.f
}

func (n number) key() any {
	switch n.kind {
	case numInt:
		return n.i
	case numUint:
		return n.u
	}
	return n.f
}

// compareNumbers is exact between integers. A float only meets an integer
// when it is fractional or out of integer range, where float ordering is
// sound.
func compareNumbers(a, b number) (int, bool) {
	if a.kind != numFloat && b.kind != numFloat {
		switch {
		case a.kind == numInt && b.kind == numInt:
			return cmp.Compare(a.i, b.i), true
		case a.kind == numUint && b.kind == numUint:
			return cmp.Compare(a.u, b.u), true
		case a.kind == numUint:
			return 1, true
		default:
			return -1, true
		}
	}
	fa, fb := a.float(), b.float()
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, false
	}
	return cmp.Compare(fa, fb), true
}

// compare orders two values of compatible kinds: numbers, strings or times.
// The boolean is false when the values cannot be ordered.
func compare(a, b any) (int, bool) {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		if !ok {
			return 0, false
		}
		return compareNumbers(na, nb)
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	return 0, false
}

// key normalises v for equality lookups: numbers compare by value
// regardless of their Go type, times by instant.
func key(v any) any {
	if n, ok := toNumber(v); ok {
		return n.key()
	}
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []byte:
		return string(x)
	}
	if v != nil && !reflect.TypeOf(v).Comparable() {
		return fmt.Sprintf("%#v", v)
	}
	return v
}
