package objc

// Object is an owning handle over a foreign object pointer. Clone performs a
// retain, Release performs a release; while any handle referencing an object
// is alive its foreign reference count stays at least one. The handle adds
// no locking of its own: concurrent Clone/Release of the same object is
// exactly as safe as the runtime's retain/release primitives.
//
// Like the foreign runtime itself, the bridge cannot detect use after the
// owner's final Release; callers release a handle exactly once and do not
// touch it afterwards.
type Object struct {
	id ID
}

// Acquire wraps ptr in an owning handle, retaining it. Use for pointers the
// foreign runtime returned as borrowed references.
func Acquire(ptr ID) (Object, error) {
	if ptr == Nil {
		return Object{}, ErrNullHandle
	}
	Runtime().Retain(ptr)
	return Object{id: ptr}, nil
}

// Adopt wraps ptr in an owning handle without an extra retain. Use for
// pointers returned already retained (alloc, new, copy).
func Adopt(ptr ID) (Object, error) {
	if ptr == Nil {
		return Object{}, ErrNullHandle
	}
	return Object{id: ptr}, nil
}

// MustAcquire is Acquire for pointers known non-null.
func MustAcquire(ptr ID) Object {
	o, err := Acquire(ptr)
	if err != nil {
		panic(err)
	}
	return o
}

// Raw exposes the underlying pointer for dispatch. The pointer borrows the
// handle's reference; it must not outlive the handle.
func (o Object) Raw() ID {
	return o.id
}

// IsNil reports whether the handle wraps the null object.
func (o Object) IsNil() bool {
	return o.id == Nil
}

// Clone returns a second owning handle, retaining the object.
func (o Object) Clone() Object {
	if o.id == Nil {
		return Object{}
	}
	Runtime().Retain(o.id)
	return Object{id: o.id}
}

// Release gives up the handle's reference. The handle must not be used
// afterwards.
func (o Object) Release() {
	if o.id == Nil {
		return
	}
	Runtime().Release(o.id)
}

// Deprecated: Use Clone instead. Retained for symmetry with the foreign
// runtime's own method name.
func (o Object) Retain() Object {
	return o.Clone()
}
