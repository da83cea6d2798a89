package conditional

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/goliatone/go-formcond/pkg/schema"
)

// Matches reports whether data satisfies the `if` subschema cond.
//
// Only the keywords that drive conditional rendering are evaluated: `const`,
// `enum`, `required`, nested `properties` and `allOf`. Every other keyword is
// ignored rather than treated as a failure.
func Matches(cond schema.Schema, data map[string]any) bool {
	for _, key := range cond.Required {
		value, ok := data[key]
		if !ok || value == nil {
			return false
		}
	}
	for key, constraint := range cond.Properties {
		value, present := data[key]
		if !satisfies(constraint, value, present) {
			return false
		}
	}
	for _, entry := range cond.AllOf {
		if !Matches(entry, data) {
			return false
		}
	}
	return true
}

func satisfies(constraint schema.Schema, value any, present bool) bool {
	if constraint.HasConst {
		if !present || !Equal(value, constraint.Const) {
			return false
		}
	}
	if constraint.Enum != nil {
		if !present || !member(value, constraint.Enum) {
			return false
		}
	}
	if len(constraint.Properties) > 0 || len(constraint.Required) > 0 || len(constraint.AllOf) > 0 {
		var nested map[string]any
		if present {
			obj, ok := value.(map[string]any)
			if !ok {
				return false
			}
			nested = obj
		}
		if !Matches(constraint, nested) {
			return false
		}
	}
	return true
}

func member(value any, options []any) bool {
	for _, option := range options {
		if Equal(value, option) {
			return true
		}
	}
	return false
}

// Equal compares two JSON values. Numbers compare by value regardless of their
// Go representation, exactly when both sides are integers; every other kind must match exactly, so "1" and 1 differ
// and "" never equals a non-empty string.
func Equal(a, b any) bool {
	if an, ok := integer(a); ok {
		if bn, ok := integer(b); ok {
			return an == bn
		}
	}
	if af, ok := number(a); ok {
		bf, ok := number(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, value := range av {
			other, ok := bv[key]
			if !ok || !Equal(value, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// exactInt is an integer split into sign and magnitude so every int64 and
// uint64 compares without rounding.
type exactInt struct {
	negative  bool
	magnitude uint64
}

func signed(v int64) exactInt {
	if v < 0 {
		return exactInt{negative: true, magnitude: uint64(-(v + 1)) + 1}
	}
	return exactInt{magnitude: uint64(v)}
}

func integer(value any) (exactInt, bool) {
	switch v := value.(type) {
	case int:
		return signed(int64(v)), true
	case int8:
		return signed(int64(v)), true
	case int16:
		return signed(int64(v)), true
	case int32:
		return signed(int64(v)), true
	case int64:
		return signed(v), true
	case uint:
		return exactInt{magnitude: uint64(v)}, true
	case uint8:
		return exactInt{magnitude: uint64(v)}, true
	case uint16:
		return exactInt{magnitude: uint64(v)}, true
	case uint32:
		return exactInt{magnitude: uint64(v)}, true
	case uint64:
		return exactInt{magnitude: v}, true
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return signed(n), true
		}
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return exactInt{magnitude: n}, true
		}
	}
	return exactInt{}, false
}
