// Package risk holds the derived values of the assessment model.
package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var ErrInvalidValue = errors.New("value is not an integer")

// Total returns severity * chance. Absent or non-finite operands give 0.
func Total(severity, chance *float64) float64 {
	if severity == nil || chance == nil {
		return 0
	}
	if !finite(*severity) || !finite(*chance) {
		return 0
	}
	product := *severity * *chance
	if !finite(product) {
		return 0
	}
	return product
}

// TotalOf is Total for loosely typed operands (form input, JSON, nil).
func TotalOf(severity, chance any) float64 {
	s, ok := Operand(severity)
	if !ok {
		return 0
	}
	c, ok := Operand(chance)
	if !ok {
		return 0
	}
	return Total(&s, &c)
}

// Operand converts v to a finite float. ok is false for nil, booleans and
// anything that is not a Go number or a base 10 numeric string.
func Operand(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case *float64:
		if x == nil {
			return 0, false
		}
		return finiteOperand(*x)
	case string:
		return parseOperand(x)
	case json.Number:
		return parseOperand(string(x))
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return finiteOperand(f)
}

// parseOperand accepts decimal notation only, no hex floats, Inf or NaN.
func parseOperand(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finiteOperand(f)
}

func finiteOperand(f float64) (float64, bool) {
	if !finite(f) {
		return 0, false
	}
	return f, true
}

// OperandPtr is Operand returning nil for absent or non-numeric input.
func OperandPtr(v any) *float64 {
	f, ok := Operand(v)
	if !ok {
		return nil
	}
	return &f
}

// NormalizeValue coerces an asset value to an integer. Floats and JSON
// numbers truncate toward zero, strings must hold a base 10 integer.
func NormalizeValue(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: <nil>", ErrInvalidValue)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidValue, x)
		}
		return n, nil
	case float32:
		return truncate(float64(x))
	case float64:
		return truncate(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d out of range", ErrInvalidValue, x)
		}
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d out of range", ErrInvalidValue, x)
		}
		return int64(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidValue, x)
		}
		return truncate(f)
	}

	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, v)
	}
	return n, nil
}

func truncate(f float64) (int64, error) {
	if !finite(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, f)
	}
	return int64(f), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
