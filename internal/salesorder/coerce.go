package salesorder

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Untrusted values arrive as json.Number, float64, string, bool or nil. These helpers
// map them onto column types; a nil or blank value is always "absent".

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

func normalizeNumeric(v any) any {
	switch n := v.(type) {
	case json.Number:
		return n.String()
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "$")
		return strings.ReplaceAll(s, ",", "")
	default:
		return v
	}
}

// int64Bound is 2^63; float64 represents it exactly, unlike math.MaxInt64.
const int64Bound = float64(1 << 63)

func toFloat(v any) (float64, error) {
	if _, ok := v.(bool); ok {
		return 0, fmt.Errorf("not a number: %v", v)
	}
	f, err := cast.ToFloat64E(normalizeNumeric(v))
	if err != nil {
		return 0, fmt.Errorf("not a number: %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return f, nil
}

func toInt(v any) (int64, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %v", v)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", v)
	}
	if f < -int64Bound || f >= int64Bound {
		return 0, fmt.Errorf("integer out of range: %v", v)
	}
	return int64(f), nil
}

func optFloat(v any) (*float64, error) {
	if isAbsent(v) {
		return nil, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optInt(v any) (*int64, error) {
	if isAbsent(v) {
		return nil, nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optString(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(normalizeString(v))
	if err != nil {
		return nil, fmt.Errorf("not a string: %v", v)
	}
	s = strings.TrimSpace(s)
	return &s, nil
}

func normalizeString(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}

func optBool(v any) (*bool, error) {
	if isAbsent(v) {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		v = strings.ToLower(strings.TrimSpace(s))
	}
	b, err := cast.ToBoolE(normalizeNumeric(v))
	if err != nil {
		return nil, fmt.Errorf("not a boolean: %v", v)
	}
	return &b, nil
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}
