// Package nullable holds a three-state optional value used by partial updates:
// a field can be absent (leave unchanged), null (clear) or carry a value (set).
package nullable

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	value T
	set   bool
	null  bool
}

func Value[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// FromPtr maps nil to null and anything else to a value.
func FromPtr[T any](v *T) Field[T] {
	if v == nil {
		return Null[T]()
	}
	return Value(*v)
}

func (f Field[T]) IsSet() bool { return f.set }

func (f Field[T]) IsNull() bool { return f.set && f.null }

// HasValue reports whether the field was given a non-null value.
func (f Field[T]) HasValue() bool { return f.set && !f.null }

func (f Field[T]) Get() (T, bool) {
	return f.value, f.HasValue()
}

// Ptr returns nil for absent and null fields.
func (f Field[T]) Ptr() *T {
	if !f.HasValue() {
		return nil
	}
	v := f.value
	return &v
}

// IsZero lets `omitzero` drop absent fields when encoding.
func (f Field[T]) IsZero() bool { return !f.set }

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON only runs for keys present in the payload, which is what
// separates an absent field from an explicit null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}
