package utils

// Value dereferences v, yielding the zero value for nil. The API marks most
// optional fields as nullable, so templates and forms read them through this.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Ptr returns a pointer to a copy of v
func Ptr[T any](v T) *T {
	return &v
}

// PtrOrNil is Ptr, except the zero value maps to nil
func PtrOrNil[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
