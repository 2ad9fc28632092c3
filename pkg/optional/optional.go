// Package optional models PATCH payload fields that distinguish "not sent",
// "sent as null" and "sent with a value".
package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var null = []byte("null")

// Value is a JSON field wrapper. Set is true whenever the key was present in
// the payload; Null is true when the key was present with a null value.
type Value[T any] struct {
	Set  bool
	Null bool
	V    T
}

// Of returns a set, non-null value.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, V: v}
}

// Clear returns a set, null value.
func Clear[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), null) {
		o.Null = true
		var zero T
		o.V = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.V)
}

// HasValue reports whether a non-null value was supplied.
func (o Value[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Ptr returns nil for a null value and a pointer to the value otherwise.
// Callers must check Set first.
func (o Value[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.V
	return &v
}

// Bool accepts JSON booleans as well as 0/1 and their string forms, which
// older admin clients send for checkbox fields. null leaves the value as is.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	switch strings.ToLower(raw) {
	case "true", "1":
		*b = true
	case "false", "0", "":
		*b = false
	default:
		return fmt.Errorf("optional: cannot parse %s as bool", string(data))
	}
	return nil
}
