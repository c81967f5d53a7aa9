package changerequest

// Nullable represents a tri-state value (unset, set to NULL, set to value).
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// NewNullableValue creates a Nullable that holds a non-null value.
func NewNullableValue[T any](value T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: value}
}

// NewNullableNull creates a Nullable that explicitly sets NULL.
func NewNullableNull[T any]() Nullable[T] {
	var zero T
	return Nullable[T]{Set: true, Valid: false, Value: zero}
}

// NullableFromPointer maps nil to NULL.
func NullableFromPointer[T any](v *T) Nullable[T] {
	if v == nil {
		return NewNullableNull[T]()
	}
	return NewNullableValue(*v)
}

// IsUnset reports whether the nullable value should be ignored.
func (n Nullable[T]) IsUnset() bool {
	return !n.Set
}

// Ptr returns nil for NULL or unset values.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
