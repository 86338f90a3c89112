// Package mapping describes how the fields of an index are typed.
package mapping

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Type is the mapped type of a field.
type Type string

// Field type constants.
const (
	Long    Type = "long"
	Integer Type = "integer"
	Short   Type = "short"
	Byte    Type = "byte"
	Double  Type = "double"
	Float   Type = "float"
	Keyword Type = "keyword"
	Text    Type = "text"
)

var validTypes = map[Type]bool{
	Long: true, Integer: true, Short: true, Byte: true,
	Double: true, Float: true, Keyword: true, Text: true,
}

// IsValid reports whether t is a known field type.
func (t Type) IsValid() bool { return validTypes[t] }

// IsInteger reports whether t indexes single-valued integer terms.
func (t Type) IsInteger() bool {
	switch t {
	case Long, Integer, Short, Byte:
		return true
	default:
		return false
	}
}

// IsFloating reports whether t indexes floating-point terms.
func (t Type) IsFloating() bool { return t == Double || t == Float }

// Bounds returns the inclusive value range representable by an integer type.
func (t Type) Bounds() (lo, hi int64) {
	switch t {
	case Integer:
		return math.MinInt32, math.MaxInt32
	case Short:
		return math.MinInt16, math.MaxInt16
	case Byte:
		return math.MinInt8, math.MaxInt8
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// IntegerOf converts v to an int64 when it is an integral number or a base-10
// integer string. Integral floating-point numbers such as 5.0 are accepted
// whether they arrive decoded (float64) or as literal text (json.Number);
// strings must be plain integers.
func IntegerOf(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		return floatToInt(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true
		}
		if f, err := x.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		if i, err := strconv.ParseInt(x, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Field is an immutable value object describing a mapped field.
type Field struct {
	name      string
	fieldType Type
}

// NewField validates and creates a Field.
func NewField(name string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 256 {
		return Field{}, fmt.Errorf("field name %q too long (max 256)", name)
	}
	if !ft.IsValid() {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft}, nil
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the mapped type.
func (f Field) FieldType() Type { return f.fieldType }

// Mappings is the set of typed fields of one index.
type Mappings struct {
	fields map[string]Field
}

// New validates a name->type table and builds Mappings.
func New(types map[string]string) (Mappings, error) {
	fields := make(map[string]Field, len(types))
	for name, t := range types {
		f, err := NewField(name, Type(t))
		if err != nil {
			return Mappings{}, err
		}
		fields[name] = f
	}
	return Mappings{fields: fields}, nil
}

// Lookup returns the mapped field, if any.
func (m Mappings) Lookup(name string) (Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// IntegerFields returns the names of all integer-typed fields, sorted.
func (m Mappings) IntegerFields() []string {
	var out []string
	for name, f := range m.fields {
		if f.fieldType.IsInteger() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of mapped fields.
func (m Mappings) Len() int { return len(m.fields) }
