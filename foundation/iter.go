package foundation

import (
	objc "github.com/martial-plains/objc-go"
)

// Iterator walks an array front to back. The element count is captured when
// the iterator is made; mutating the array while iterating is the caller's
// problem, as it is in the foreign runtime.
type Iterator[T Ref] struct {
	arr   objc.ID
	wrap  func(objc.ID) T
	index uint
	count uint
}

// Iter returns an iterator positioned before the first element.
func (a Array[T]) Iter() *Iterator[T] {
	return &Iterator[T]{
		arr:   a.Raw(),
		wrap:  a.wrap,
		count: a.Count(),
	}
}

// Next returns a borrowed view of the next element, or false when the walk
// is done.
func (it *Iterator[T]) Next() (T, bool) {
	if it.index >= it.count {
		var zero T
		return zero, false
	}
	elem := it.wrap(opObjectAtIndex.InvokeObj(it.arr, uintptr(it.index)))
	it.index++
	return elem, true
}
