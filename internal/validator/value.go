package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind tags the JSON shape of a submitted value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one raw field value, decoded just far enough to know its shape.
// The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	raw  json.RawMessage
	obj  Data
	n    int
}

// Data is the field data of one request, keyed by field name.
type Data map[string]Value

// ParseData decodes a JSON object body. An empty body yields empty Data.
func ParseData(body []byte) (Data, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Data{}, nil
	}
	if body[0] != '{' {
		return nil, errors.New("request body must be a JSON object")
	}
	var d Data
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("decoding request body: %w", err)
	}
	if d == nil {
		d = Data{}
	}
	return d, nil
}

// Get returns the value submitted for name, or an absent value.
func (d Data) Get(name string) Value {
	if d == nil {
		return Value{}
	}
	return d[name]
}

// String builds a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Object builds an object value.
func Object(d Data) Value {
	if d == nil {
		d = Data{}
	}
	return Value{kind: KindObject, obj: d}
}

// Null builds an explicit JSON null.
func Null() Value {
	return Value{kind: KindNull}
}

// Kind returns the shape of v.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload when v is a JSON string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsObject returns the nested data when v is a JSON object.
func (v Value) AsObject() (Data, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// IsNone reports whether v is absent or null.
func (v Value) IsNone() bool {
	return v.kind == KindAbsent || v.kind == KindNull
}

// IsEmpty reports whether v counts as "not provided": none, "", [] or {}.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindAbsent, KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindObject:
		return len(v.obj) == 0
	case KindArray:
		return v.n == 0
	default:
		return false
	}
}

// Text renders v for messages: the string itself, or its JSON text.
func (v Value) Text() string {
	switch v.kind {
	case KindAbsent, KindNull:
		return ""
	case KindString:
		return v.str
	case KindObject:
		b, _ := json.Marshal(v.obj)
		return string(b)
	default:
		return string(v.raw)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("validator: empty JSON value")
	}
	switch b[0] {
	case 'n':
		*v = Value{kind: KindNull}
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value{kind: KindString, str: s}
	case 't', 'f':
		var bv bool
		if err := json.Unmarshal(b, &bv); err != nil {
			return err
		}
		*v = Value{kind: KindBool, raw: append(json.RawMessage(nil), b...)}
	case '{':
		var d Data
		if err := json.Unmarshal(b, &d); err != nil {
			return err
		}
		*v = Object(d)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*v = Value{kind: KindArray, raw: append(json.RawMessage(nil), b...), n: len(items)}
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return err
		}
		*v = Value{kind: KindNumber, raw: append(json.RawMessage(nil), b...)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAbsent, KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return v.raw, nil
	}
}
