package utils

import (
	"strconv"
	"strings"
)

// Helpers for reading the backend's loosely-typed JSON payloads, where
// the same field may arrive under several names and ids may be numbers
// or strings.

// Stringify renders a decoded JSON scalar as the id string the stores
// key on. Numeric ids lose no precision for the backend's integer pks.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}

// FieldString returns the first non-empty stringified value among keys.
func FieldString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := Stringify(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// FieldNumber returns the first numeric value among keys. String
// numbers count too: the backend serializes decimals as strings.
func FieldNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch t := m[k].(type) {
		case float64:
			return t, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// FieldBool returns key's value only when it is a JSON boolean.
func FieldBool(m map[string]any, key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// FieldMap returns key's value when it is a JSON object.
func FieldMap(m map[string]any, key string) map[string]any {
	child, _ := m[key].(map[string]any)
	return child
}

// FieldSlice returns key's value when it is a JSON array.
func FieldSlice(m map[string]any, key string) []any {
	items, _ := m[key].([]any)
	return items
}

// StringList coerces an image field into a list: arrays keep their
// string elements, a bare string wraps into a single-element list.
func StringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	default:
		return nil
	}
}

func StrPtr(s string) *string {
	return &s
}

func IntPtr(n int) *int {
	return &n
}

func Float64Ptr(f float64) *float64 {
	return &f
}
