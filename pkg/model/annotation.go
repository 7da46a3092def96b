package model

import (
	"encoding/json"
	"strconv"
)

// ValueKind discriminates the closed set of annotation value shapes.
type ValueKind int

// Annotation value kinds.
const (
	ValueString ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueJSON
)

// Value is an annotation value: a string, integer, float, boolean, or an
// arbitrary JSON document. The kind is fixed at construction.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
	b    bool
	doc  any
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: ValueString, str: s} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: ValueInt, i: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: ValueFloat, f: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: ValueBool, b: b} }

// JSONValue wraps a decoded JSON document (map or slice).
func JSONValue(doc any) Value { return Value{kind: ValueJSON, doc: doc} }

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// String returns the string payload; for non-string kinds it returns the
// TMDL spelling of the value.
func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueJSON:
		data, err := json.Marshal(v.doc)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// Int returns the integer payload and whether the kind is ValueInt.
func (v Value) Int() (int64, bool) { return v.i, v.kind == ValueInt }

// Float returns the float payload and whether the kind is ValueFloat.
func (v Value) Float() (float64, bool) { return v.f, v.kind == ValueFloat }

// Bool returns the boolean payload and whether the kind is ValueBool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == ValueBool }

// JSON returns the decoded document and whether the kind is ValueJSON.
func (v Value) JSON() (any, bool) { return v.doc, v.kind == ValueJSON }

// MarshalJSON encodes the payload directly, without the kind wrapper.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.str)
	case ValueInt:
		return json.Marshal(v.i)
	case ValueFloat:
		return json.Marshal(v.f)
	case ValueBool:
		return json.Marshal(v.b)
	case ValueJSON:
		return json.Marshal(v.doc)
	default:
		return json.Marshal(nil)
	}
}

// Annotation is a TMDL annotation: a name and a shape-inferred value.
type Annotation struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}
