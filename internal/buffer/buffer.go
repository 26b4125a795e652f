package buffer

// Tail keeps the last size elements pushed into it, in the order they were added.
type Tail[T any] struct {
	size   int
	values []T
}

// NewTail creates a new tail buffer of the given size.
func NewTail[T any](size int) *Tail[T] {
	if size < 0 {
		size = 0
	}
	return &Tail[T]{
		size:   size,
		values: make([]T, 0, size),
	}
}

// Push adds an element to the buffer and returns the evicted one, if any.
func (b *Tail[T]) Push(x T) (T, bool) {
	var evicted T
	if b.size == 0 {
		return x, true
	}
	b.values = append(b.values, x)
	if len(b.values) > b.size {
		evicted = b.values[0]
		b.values = b.values[1:]
		return evicted, true
	}
	return evicted, false
}

// PushAll adds all elements in order.
func (b *Tail[T]) PushAll(xx []T) *Tail[T] {
	for _, x := range xx {
		b.Push(x)
	}
	return b
}

// Get returns the buffer elements in the order they were added.
func (b *Tail[T]) Get() []T {
	vv := make([]T, len(b.values))
	copy(vv, b.values)
	return vv
}

// Len returns the current length of the buffer.
func (b *Tail[T]) Len() int {
	return len(b.values)
}

// Last returns the last element in the buffer.
func (b *Tail[T]) Last() (T, bool) {
	var last T
	size := len(b.values)
	if size > 0 {
		return b.values[size-1], true
	}
	return last, false
}

// TailOf returns the last n elements of the given slice as a new slice.
func TailOf[T any](xx []T, n int) []T {
	return NewTail[T](n).PushAll(xx).Get()
}
