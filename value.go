package rowhook

import (
	"database/sql/driver"
	"fmt"
)

// Type identifies the storage class of a column value.
type Type int

const (
	TypeNull Type = iota
	TypeInteger
	TypeFloat
	TypeText
	TypeBlob
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Value is a typed column value decoded from the engine's raw storage
// representation.
type Value struct {
	t Type
	n int64
	f float64
	s string
	b []byte
}

// DecodeValue converts a raw engine value into a Value. Engines report
// column storage as driver.Value; any Go type outside that set is a
// contract violation and reported as an error.
func DecodeValue(raw driver.Value) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{t: TypeNull}, nil
	case int64:
		return Value{t: TypeInteger, n: v}, nil
	case float64:
		return Value{t: TypeFloat, f: v}, nil
	case string:
		return Value{t: TypeText, s: v}, nil
	case []byte:
		return Value{t: TypeBlob, b: v}, nil
	default:
		return Value{}, fmt.Errorf("rowhook: unsupported raw value type %T", raw)
	}
}

// Type returns the storage class of the value.
func (v Value) Type() Type { return v.t }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.t == TypeNull }

// Int64 returns the integer value; zero unless Type is TypeInteger.
func (v Value) Int64() int64 { return v.n }

// Float64 returns the float value; zero unless Type is TypeFloat.
func (v Value) Float64() float64 { return v.f }

// Text returns the text value; empty unless Type is TypeText.
func (v Value) Text() string { return v.s }

// Blob returns the blob value; nil unless Type is TypeBlob.
func (v Value) Blob() []byte { return v.b }

// Any returns the value in its raw driver.Value form.
func (v Value) Any() driver.Value {
	switch v.t {
	case TypeInteger:
		return v.n
	case TypeFloat:
		return v.f
	case TypeText:
		return v.s
	case TypeBlob:
		return v.b
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.t {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return fmt.Sprintf("%d", v.n)
	case TypeFloat:
		return fmt.Sprintf("%g", v.f)
	case TypeText:
		return v.s
	case TypeBlob:
		return fmt.Sprintf("x'%x'", v.b)
	default:
		return "UNKNOWN"
	}
}
