package stash

import (
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindNull
	KindList
	KindMap
)

// Value is a tagged union over the types a configuration entry can
// hold: a string, an integer, a float, a boolean, null, a list, or a
// nested mapping.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bln  bool
	list []Value
	m    *Map
}

// StringValue returns a Value holding a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue returns a Value holding an integer.
func IntValue(i int64) Value { return Value{kind: KindInt, num: i} }

// FloatValue returns a Value holding a float.
func FloatValue(f float64) Value { return Value{kind: KindFloat, flt: f} }

// BoolValue returns a Value holding a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, bln: b} }

// NullValue returns a Value holding null.
func NullValue() Value { return Value{kind: KindNull} }

// ListValue returns a Value holding a list of values.
func ListValue(list []Value) Value { return Value{kind: KindList, list: list} }

// MapValue returns a Value holding a nested mapping.
func MapValue(m *Map) Value { return Value{kind: KindMap, m: m} }

// Kind reports which variant the Value holds.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string variant, or "" when the Value is not a string.
func (v Value) Str() string { return v.str }

// Int returns the integer variant, or 0 when the Value is not an integer.
func (v Value) Int() int64 { return v.num }

// Float returns the float variant, or 0 when the Value is not a float.
func (v Value) Float() float64 { return v.flt }

// Bool returns the boolean variant, or false when the Value is not a boolean.
func (v Value) Bool() bool { return v.bln }

// List returns the list variant, or nil when the Value is not a list.
func (v Value) List() []Value { return v.list }

// Map returns the nested mapping variant, or nil when the Value is not a mapping.
func (v Value) Map() *Map { return v.m }

// String renders the textual form used by the environment mirror.
// Null renders as the empty string, lists as bracketed space-separated
// elements, and nested mappings as "map[k:v ...]" in insertion order.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.bln)
	case KindNull:
		return ""
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case KindMap:
		parts := make([]string, 0, v.m.Len())
		for _, key := range v.m.Keys() {
			item, _ := v.m.Get(key)
			parts = append(parts, key+":"+item.String())
		}
		return "map[" + strings.Join(parts, " ") + "]"
	}
	return ""
}

// Map is a string-keyed mapping that remembers insertion order.
// Overwriting an existing key keeps its original position.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty ordered mapping.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores value under key, inserting or overwriting.
func (m *Map) Set(key string, value Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetIfAbsent stores value under key only when the key is not already
// present, reporting whether the write happened.
func (m *Map) SetIfAbsent(key string, value Value) bool {
	if _, ok := m.values[key]; ok {
		return false
	}
	m.keys = append(m.keys, key)
	m.values[key] = value
	return true
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.values) }
