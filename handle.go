package objc

import (
	"math"
	"sync"
	"sync/atomic"
)

// handleStore hands out integer handles for Go values referenced by the
// foreign runtime. Foreign instance variables cannot hold Go pointers, so a
// boxed value is addressed by its int32 handle instead; the handle fits the
// pointer-sized ivar slot on every supported platform.
type handleStore struct {
	handles sync.Map     // map[int32]any
	nextID  atomic.Int32 // atomic ID generation to avoid locks
}

// newHandleStore creates a new handle store.
func newHandleStore() *handleStore {
	return newHandleStoreWithStartID(0)
}

// newHandleStoreWithStartID creates a store whose first handle is start+1.
func newHandleStoreWithStartID(start int32) *handleStore {
	hs := &handleStore{}
	hs.nextID.Store(start)
	return hs
}

// Store stores a value and returns its handle. Handle 0 is reserved as
// invalid so an empty ivar slot is distinguishable.
func (hs *handleStore) Store(value any) int32 {
	id := hs.nextID.Add(1)

	// check int32 overflow before the handle can alias an earlier one
	if id <= 0 || id == math.MaxInt32 {
		panic("objc: handleStore ID overflow, too many live boxed values")
	}

	hs.handles.Store(id, value)
	return id
}

// Load returns the value boxed under id.
func (hs *handleStore) Load(id int32) (any, bool) {
	return hs.handles.Load(id)
}

// Take removes and returns the value boxed under id. The reclaim path uses
// it so a box can be freed exactly once.
func (hs *handleStore) Take(id int32) (any, bool) {
	return hs.handles.LoadAndDelete(id)
}

// Delete removes the value boxed under id.
func (hs *handleStore) Delete(id int32) bool {
	_, ok := hs.handles.LoadAndDelete(id)
	return ok
}

// Count returns the number of live boxes (for debugging).
func (hs *handleStore) Count() int {
	count := 0
	hs.handles.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cells boxes every Go value currently lent to the foreign runtime:
// callback closures and reflect-bound instance state.
var cells = newHandleStore()

// LiveCells reports how many Go values are currently boxed for the foreign
// runtime. Diagnostic: after every foreign owner has deallocated it returns
// to its previous value, otherwise a reclaim hook is not wired.
func LiveCells() int {
	return cells.Count()
}
