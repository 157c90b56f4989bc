// Package foundation bridges the foreign collection and string classes into
// typed Go wrappers. Wrappers own their handle: constructors return retained
// objects and Release gives the reference back. Element accessors return
// borrowed views unless documented otherwise.
package foundation

import (
	objc "github.com/martial-plains/objc-go"
)

// Ref is anything exposing a raw foreign pointer. Wrapper types and
// objc.Object both satisfy it.
type Ref interface {
	Raw() objc.ID
}

// Range is a contiguous index span, passed to the foreign runtime as two
// machine words.
type Range struct {
	Location uint
	Length   uint
}

func (r Range) words() (uintptr, uintptr) {
	return uintptr(r.Location), uintptr(r.Length)
}

var (
	opCount                 = objc.GetterOp("count")
	opObjectAtIndex         = objc.MethodOp("objectAtIndex:")
	opContainsObject        = objc.MethodOp("containsObject:")
	opIndexOfObject         = objc.MethodOp("indexOfObject:")
	opIndexOfObjectInRange  = objc.MethodOp("indexOfObject:inRange:")
	opIndexOfIdentical      = objc.MethodOp("indexOfObjectIdenticalTo:")
	opIndexOfIdenticalRange = objc.MethodOp("indexOfObjectIdenticalTo:inRange:")
	opFirstObject           = objc.GetterOp("firstObject")
	opLastObject            = objc.GetterOp("lastObject")
	opFirstCommon           = objc.MethodOp("firstObjectCommonWithArray:")
	opIsEqualToArray        = objc.MethodOp("isEqualToArray:")
	opSubarrayWithRange     = objc.MethodOp("subarrayWithRange:")
	opDescriptionWithLocale = objc.MethodOp("descriptionWithLocale:")

	opInitWithCapacity  = objc.MethodOp("initWithCapacity:")
	opAddObject         = objc.MethodOp("addObject:")
	opAddFromArray      = objc.MethodOp("addObjectsFromArray:")
	opInsertAtIndex     = objc.MethodOp("insertObject:atIndex:")
	opRemoveAtIndex     = objc.MethodOp("removeObjectAtIndex:")
	opRemoveObject      = objc.MethodOp("removeObject:")
	opRemoveInRange     = objc.MethodOp("removeObject:inRange:")
	opRemoveIdentical   = objc.MethodOp("removeObjectIdenticalTo:")
	opRemoveIdentRange  = objc.MethodOp("removeObjectIdenticalTo:inRange:")
	opRemoveObjectsIn   = objc.MethodOp("removeObjectsInRange:")
	opRemoveAllObjects  = objc.MethodOp("removeAllObjects")
	opRemoveLastObject  = objc.MethodOp("removeLastObject")
	opReplaceAtIndex    = objc.MethodOp("replaceObjectAtIndex:withObject:")
	opSetArray          = objc.MethodOp("setArray:")
)

// Array is an owning wrapper over an immutable foreign array of T. The wrap
// function turns a borrowed element pointer into the caller's element type;
// the returned views borrow the array's references and must not outlive it.
type Array[T Ref] struct {
	objc.ObjectCore
	wrap func(objc.ID) T
}

// ArrayFrom builds a new array holding items, in order. The array retains
// each element; the caller keeps its own references.
func ArrayFrom[T Ref](wrap func(objc.ID) T, items ...T) Array[T] {
	cls := objc.GetClass("NSMutableArray")
	raw := objc.SendObj(objc.SendObj(cls, objc.SelectorFor("alloc")), objc.SelectorFor("init"))
	arr, err := objc.Adopt(raw)
	if err != nil {
		panic(err)
	}
	for _, it := range items {
		opAddObject.InvokeVoid(raw, uintptr(it.Raw()))
	}
	return Array[T]{ObjectCore: objc.Core(arr), wrap: wrap}
}

// ArrayWithHandle wraps an already-owned array handle.
func ArrayWithHandle[T Ref](wrap func(objc.ID) T, obj objc.Object) Array[T] {
	return Array[T]{ObjectCore: objc.Core(obj), wrap: wrap}
}

// Count returns the number of elements.
func (a Array[T]) Count() uint {
	return opCount.InvokeUint(a.Raw())
}

// Deprecated: Use Count instead.
func (a Array[T]) Len() uint {
	return a.Count()
}

// At returns a borrowed view of the element at index i. The foreign runtime
// raises on an out-of-bounds index.
func (a Array[T]) At(i uint) T {
	return a.wrap(opObjectAtIndex.InvokeObj(a.Raw(), uintptr(i)))
}

// Contains reports whether some element is equal to obj.
func (a Array[T]) Contains(obj T) bool {
	return opContainsObject.InvokeBool(a.Raw(), uintptr(obj.Raw()))
}

// IndexOf returns the lowest index of an element equal to obj, or
// objc.NotFound.
func (a Array[T]) IndexOf(obj T) uint {
	return opIndexOfObject.InvokeUint(a.Raw(), uintptr(obj.Raw()))
}

// IndexOfInRange is IndexOf restricted to r.
func (a Array[T]) IndexOfInRange(obj T, r Range) uint {
	loc, n := r.words()
	return opIndexOfObjectInRange.InvokeUint(a.Raw(), uintptr(obj.Raw()), loc, n)
}

// IndexOfIdenticalTo returns the lowest index of the exact pointer obj, or
// objc.NotFound. No equality method is consulted.
func (a Array[T]) IndexOfIdenticalTo(obj T) uint {
	return opIndexOfIdentical.InvokeUint(a.Raw(), uintptr(obj.Raw()))
}

// IndexOfIdenticalToInRange is IndexOfIdenticalTo restricted to r.
func (a Array[T]) IndexOfIdenticalToInRange(obj T, r Range) uint {
	loc, n := r.words()
	return opIndexOfIdenticalRange.InvokeUint(a.Raw(), uintptr(obj.Raw()), loc, n)
}

// First returns a borrowed view of the first element, or false when empty.
func (a Array[T]) First() (T, bool) {
	return a.wrapNullable(opFirstObject.InvokeObj(a.Raw()))
}

// Last returns a borrowed view of the last element, or false when empty.
func (a Array[T]) Last() (T, bool) {
	return a.wrapNullable(opLastObject.InvokeObj(a.Raw()))
}

// FirstObjectCommonWith returns a borrowed view of the first element of the
// receiver that other also contains, or false if the arrays share none.
func (a Array[T]) FirstObjectCommonWith(other Array[T]) (T, bool) {
	return a.wrapNullable(opFirstCommon.InvokeObj(a.Raw(), uintptr(other.Raw())))
}

func (a Array[T]) wrapNullable(ptr objc.ID) (T, bool) {
	if ptr == objc.Nil {
		var zero T
		return zero, false
	}
	return a.wrap(ptr), true
}

// IsEqualTo reports element-wise equality with other.
func (a Array[T]) IsEqualTo(other Array[T]) bool {
	return opIsEqualToArray.InvokeBool(a.Raw(), uintptr(other.Raw()))
}

// Subarray returns a new owned array of the elements in r. The foreign
// runtime raises when r exceeds the bounds.
func (a Array[T]) Subarray(r Range) Array[T] {
	loc, n := r.words()
	sub := objc.MustAcquire(opSubarrayWithRange.InvokeObj(a.Raw(), loc, n))
	return Array[T]{ObjectCore: objc.Core(sub), wrap: a.wrap}
}

// DescriptionWithLocale formats the array's contents under locale. Pass
// objc.Nil for the canonical form.
func (a Array[T]) DescriptionWithLocale(locale objc.ID) string {
	return opDescriptionWithLocale.InvokeString(a.Raw(), uintptr(locale))
}

// MutableArray is an owning wrapper over a foreign mutable array. Inserted
// elements are retained by the array and released when removed.
type MutableArray[T Ref] struct {
	Array[T]
}

// NewMutableArray builds an empty mutable array.
func NewMutableArray[T Ref](wrap func(objc.ID) T) MutableArray[T] {
	return MutableArrayWithCapacity(wrap, 0)
}

// MutableArrayWithCapacity builds an empty mutable array sized for capacity
// elements. The capacity is a hint; the array grows past it.
func MutableArrayWithCapacity[T Ref](wrap func(objc.ID) T, capacity uint) MutableArray[T] {
	cls := objc.GetClass("NSMutableArray")
	raw := objc.SendObj(cls, objc.SelectorFor("alloc"))
	raw = opInitWithCapacity.InvokeObj(raw, uintptr(capacity))
	arr, err := objc.Adopt(raw)
	if err != nil {
		panic(err)
	}
	return MutableArray[T]{Array[T]{ObjectCore: objc.Core(arr), wrap: wrap}}
}

// MutableArrayFrom builds a mutable array holding items, in order.
func MutableArrayFrom[T Ref](wrap func(objc.ID) T, items ...T) MutableArray[T] {
	m := MutableArrayWithCapacity(wrap, uint(len(items)))
	for _, it := range items {
		m.Add(it)
	}
	return m
}

// Add appends obj, retaining it.
func (m MutableArray[T]) Add(obj T) {
	opAddObject.InvokeVoid(m.Raw(), uintptr(obj.Raw()))
}

// AddFrom appends every element of other, retaining each.
func (m MutableArray[T]) AddFrom(other Array[T]) {
	opAddFromArray.InvokeVoid(m.Raw(), uintptr(other.Raw()))
}

// Insert places obj at index i, shifting later elements up. i may equal
// Count to append; beyond that the foreign runtime raises.
func (m MutableArray[T]) Insert(obj T, i uint) {
	opInsertAtIndex.InvokeVoid(m.Raw(), uintptr(obj.Raw()), uintptr(i))
}

// RemoveAt removes the element at index i, releasing it.
func (m MutableArray[T]) RemoveAt(i uint) {
	opRemoveAtIndex.InvokeVoid(m.Raw(), uintptr(i))
}

// Remove removes every element equal to obj.
func (m MutableArray[T]) Remove(obj T) {
	opRemoveObject.InvokeVoid(m.Raw(), uintptr(obj.Raw()))
}

// RemoveInRange removes every element in r equal to obj.
func (m MutableArray[T]) RemoveInRange(obj T, r Range) {
	loc, n := r.words()
	opRemoveInRange.InvokeVoid(m.Raw(), uintptr(obj.Raw()), loc, n)
}

// RemoveIdenticalTo removes every occurrence of the exact pointer obj.
func (m MutableArray[T]) RemoveIdenticalTo(obj T) {
	opRemoveIdentical.InvokeVoid(m.Raw(), uintptr(obj.Raw()))
}

// RemoveIdenticalToInRange removes occurrences of the exact pointer obj
// within r.
func (m MutableArray[T]) RemoveIdenticalToInRange(obj T, r Range) {
	loc, n := r.words()
	opRemoveIdentRange.InvokeVoid(m.Raw(), uintptr(obj.Raw()), loc, n)
}

// RemoveRange removes the elements in r.
func (m MutableArray[T]) RemoveRange(r Range) {
	loc, n := r.words()
	opRemoveObjectsIn.InvokeVoid(m.Raw(), loc, n)
}

// RemoveAll empties the array, releasing every element.
func (m MutableArray[T]) RemoveAll() {
	opRemoveAllObjects.InvokeVoid(m.Raw())
}

// RemoveLast removes the final element. The foreign runtime raises on an
// empty array.
func (m MutableArray[T]) RemoveLast() {
	opRemoveLastObject.InvokeVoid(m.Raw())
}

// ReplaceAt swaps the element at index i for obj, retaining obj and
// releasing the displaced element.
func (m MutableArray[T]) ReplaceAt(i uint, obj T) {
	opReplaceAtIndex.InvokeVoid(m.Raw(), uintptr(i), uintptr(obj.Raw()))
}

// SetArray replaces the receiver's contents with other's elements.
func (m MutableArray[T]) SetArray(other Array[T]) {
	opSetArray.InvokeVoid(m.Raw(), uintptr(other.Raw()))
}
