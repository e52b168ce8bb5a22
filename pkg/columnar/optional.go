package columnar

// Optional is a possibly absent element of a batch.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present element.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// Null returns an absent element.
func Null[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// ArrayLike is the input of a batch encoder: either a bare scalar or an
// ordered sequence of optional elements. A scalar behaves exactly like a
// one-element sequence.
type ArrayLike[T any] struct {
	elems []Optional[T]
}

// Scalar wraps a single bare value.
func Scalar[T any](v T) ArrayLike[T] {
	return ArrayLike[T]{elems: []Optional[T]{Some(v)}}
}

// Sequence wraps an ordered sequence of optional elements. The slice is
// not copied and must not be modified while the ArrayLike is in use.
func Sequence[T any](elems ...Optional[T]) ArrayLike[T] {
	return ArrayLike[T]{elems: elems}
}

// Values wraps a sequence without nulls.
func Values[T any](vs ...T) ArrayLike[T] {
	elems := make([]Optional[T], len(vs))
	for i, v := range vs {
		elems[i] = Some(v)
	}
	return ArrayLike[T]{elems: elems}
}

// Len returns the number of elements after scalar normalization.
func (a ArrayLike[T]) Len() int {
	return len(a.elems)
}

// Elements returns the normalized element sequence.
func (a ArrayLike[T]) Elements() []Optional[T] {
	return a.elems
}
