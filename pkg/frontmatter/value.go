package frontmatter

import (
	"fmt"
	"sort"
	"time"
)

// Value is a single front-matter value. It is one of String, List, Map, Time
// or Scalar.
type Value interface {
	value()
}

// String is a YAML string.
type String string

// List is a YAML sequence.
type List []Value

// Map is a nested YAML mapping.
type Map map[string]Value

// Time is a YAML timestamp.
type Time struct {
	time.Time
}

// Scalar holds numbers, booleans and null.
type Scalar struct {
	V any
}

func (String) value() {}
func (List) value()   {}
func (Map) value()    {}
func (Time) value()   {}
func (Scalar) value() {}

// Strings builds a List of String values.
func Strings(ss ...string) List {
	l := make(List, 0, len(ss))
	for _, s := range ss {
		l = append(l, String(s))
	}
	return l
}

// FromAny converts a decoded YAML value into a Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return String(t)
	case []string:
		return Strings(t...)
	case []any:
		l := make(List, 0, len(t))
		for _, item := range t {
			l = append(l, FromAny(item))
		}
		return l
	case map[string]any:
		m := make(Map, len(t))
		for k, item := range t {
			m[k] = FromAny(item)
		}
		return m
	case map[any]any:
		m := make(Map, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = FromAny(item)
		}
		return m
	case time.Time:
		return Time{t}
	default:
		return Scalar{V: t}
	}
}

// ToAny converts a Value back into plain Go values suitable for YAML encoding.
func ToAny(v Value) any {
	switch t := v.(type) {
	case String:
		return string(t)
	case List:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, ToAny(item))
		}
		return out
	case Map:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = ToAny(item)
		}
		return out
	case Time:
		return t.Time
	case Scalar:
		return t.V
	default:
		return nil
	}
}

// FrontMatter is the metadata block of a document keyed by field name.
type FrontMatter map[string]Value

// FromMap converts a decoded YAML mapping into FrontMatter.
func FromMap(m map[string]any) FrontMatter {
	fm := make(FrontMatter, len(m))
	for k, v := range m {
		fm[k] = FromAny(v)
	}
	return fm
}

// Map returns the front matter as plain Go values.
func (fm FrontMatter) Map() map[string]any {
	out := make(map[string]any, len(fm))
	for k, v := range fm {
		out[k] = ToAny(v)
	}
	return out
}

// Keys returns the field names in sorted order.
func (fm FrontMatter) Keys() []string {
	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Text returns the field as a string when it holds the String variant.
func (fm FrontMatter) Text(key string) (string, bool) {
	s, ok := fm[key].(String)
	return string(s), ok
}
