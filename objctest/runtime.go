// Package objctest provides an in-process, reference-count-instrumented
// stand-in for the foreign object runtime. It implements objc.RuntimeABI
// over plain Go data: objects with real retain counts, a class table with
// selector-keyed method lists, and built-in NSObject, NSString, NSArray,
// NSMutableArray and NSControl classes whose element storage follows the
// retain-on-insert, release-on-remove discipline. Objects handed back as
// conventionally-borrowed returns (subarrays, description strings) sit in a
// pool that Drain releases, mirroring the foreign runtime's pool teardown.
// Tests install the stand-in once per process with Use and observe counts
// through RetainCountOf and Live.
package objctest

import (
	"fmt"
	"sync"
	"sync/atomic"

	objc "github.com/martial-plains/objc-go"
)

type object struct {
	id    objc.ID
	cls   *class
	refs  atomic.Int64
	ivars map[string]uintptr

	// built-in payloads
	isStr bool
	str   string
	isArr bool
	elems []objc.ID

	// set when the count hit zero, while dealloc runs
	dying bool
}

type class struct {
	id           objc.ID
	name         string
	super        *class
	methods      map[objc.Sel]objc.IMP
	classMethods map[objc.Sel]objc.IMP
	ivars        map[string]struct{}
	protocols    map[objc.ID]struct{}
	registered   bool
}

// SendRecord is one traced message send.
type SendRecord struct {
	Sel  string
	Args []uintptr
}

// Runtime is the stand-in foreign runtime.
type Runtime struct {
	mu            sync.Mutex
	selsByName    map[string]objc.Sel
	selNames      map[objc.Sel]string
	nextSel       uintptr
	objects       map[objc.ID]*object
	classes       map[objc.ID]*class
	classesByName map[string]*class
	protoByName   map[string]objc.ID
	protoNames    map[objc.ID]string
	nextID        uintptr

	// pool owns the initial reference of every object handed back as a
	// conventionally-borrowed return; Drain gives those references up
	pool []objc.ID

	tracing bool
	trace   []SendRecord
}

var (
	useOnce sync.Once
	shared  *Runtime
)

// Use installs the shared stand-in into the bridge and returns it. The
// stand-in, like the runtime it mimics, lives until process exit; every test
// in a binary shares it.
func Use() *Runtime {
	useOnce.Do(func() {
		shared = New()
		objc.Install(shared)
	})
	return shared
}

// New creates a stand-in with the built-in classes defined. Most callers
// want Use; New exists for tests of the stand-in itself.
func New() *Runtime {
	r := &Runtime{
		selsByName:    make(map[string]objc.Sel),
		selNames:      make(map[objc.Sel]string),
		objects:       make(map[objc.ID]*object),
		classes:       make(map[objc.ID]*class),
		classesByName: make(map[string]*class),
		protoByName:   make(map[string]objc.ID),
		protoNames:    make(map[objc.ID]string),
		nextID:        0x1000,
	}
	r.defineBuiltins()
	return r
}

var _ objc.RuntimeABI = (*Runtime)(nil)

// RegisterName interns a selector.
func (r *Runtime) RegisterName(name string) objc.Sel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selLocked(name)
}

func (r *Runtime) selLocked(name string) objc.Sel {
	if s, ok := r.selsByName[name]; ok {
		return s
	}
	r.nextSel++
	s := objc.Sel(r.nextSel)
	r.selsByName[name] = s
	r.selNames[s] = name
	return s
}

// SelName returns the name a selector was interned under.
func (r *Runtime) SelName(sel objc.Sel) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selNames[sel]
}

// GetClass returns a registered class by name.
func (r *Runtime) GetClass(name string) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.classesByName[name]; ok && c.registered {
		return c.id
	}
	return objc.Nil
}

// ClassName returns the name of a class.
func (r *Runtime) ClassName(cls objc.ID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.classes[cls]; ok {
		return c.name
	}
	return ""
}

// GetProtocol returns a defined protocol by name.
func (r *Runtime) GetProtocol(name string) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.protoByName[name]
}

// DefineProtocol adds a protocol to the stand-in's table so classes can
// declare conformance to it.
func (r *Runtime) DefineProtocol(name string) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.protoByName[name]; ok {
		return id
	}
	r.nextID += 16
	id := objc.ID(r.nextID)
	r.protoByName[name] = id
	r.protoNames[id] = name
	return id
}

// AllocateClassPair reserves a class name and returns the class under
// construction, or Nil if the name is taken.
func (r *Runtime) AllocateClassPair(super objc.ID, name string) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classesByName[name]; ok {
		return objc.Nil
	}
	sup, ok := r.classes[super]
	if !ok {
		panic(fmt.Sprintf("objctest: no such superclass %#x", super))
	}
	c := r.newClassLocked(name, sup)
	c.registered = false
	return c.id
}

func (r *Runtime) newClassLocked(name string, super *class) *class {
	r.nextID += 16
	c := &class{
		id:           objc.ID(r.nextID),
		name:         name,
		super:        super,
		methods:      make(map[objc.Sel]objc.IMP),
		classMethods: make(map[objc.Sel]objc.IMP),
		ivars:        make(map[string]struct{}),
		protocols:    make(map[objc.ID]struct{}),
		registered:   true,
	}
	r.classes[c.id] = c
	r.classesByName[name] = c
	return c
}

// RegisterClassPair makes a class under construction dispatchable.
func (r *Runtime) RegisterClassPair(cls objc.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustClassLocked(cls).registered = true
}

// AddMethod installs an instance method.
func (r *Runtime) AddMethod(cls objc.ID, sel objc.Sel, imp objc.IMP) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.mustClassLocked(cls)
	if _, ok := c.methods[sel]; ok {
		return false
	}
	c.methods[sel] = imp
	return true
}

// AddClassMethod installs a class-level method.
func (r *Runtime) AddClassMethod(cls objc.ID, sel objc.Sel, imp objc.IMP) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.mustClassLocked(cls)
	if _, ok := c.classMethods[sel]; ok {
		return false
	}
	c.classMethods[sel] = imp
	return true
}

// AddIvar declares a pointer-sized instance variable slot.
func (r *Runtime) AddIvar(cls objc.ID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.mustClassLocked(cls)
	if _, ok := c.ivars[name]; ok {
		return false
	}
	c.ivars[name] = struct{}{}
	return true
}

// AddProtocol declares protocol conformance for a class.
func (r *Runtime) AddProtocol(cls objc.ID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.protoByName[name]
	if !ok {
		return false
	}
	r.mustClassLocked(cls).protocols[id] = struct{}{}
	return true
}

// GetIvar loads an instance variable slot. The slot must be declared
// somewhere in the object's class chain; a typo here is a bridge bug worth
// failing loudly for.
func (r *Runtime) GetIvar(obj objc.ID, name string) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.mustObjectLocked(obj)
	r.mustIvarLocked(o, name)
	return o.ivars[name]
}

// SetIvar stores into an instance variable slot.
func (r *Runtime) SetIvar(obj objc.ID, name string, val uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.mustObjectLocked(obj)
	r.mustIvarLocked(o, name)
	o.ivars[name] = val
}

func (r *Runtime) mustIvarLocked(o *object, name string) {
	for c := o.cls; c != nil; c = c.super {
		if _, ok := c.ivars[name]; ok {
			return
		}
	}
	panic(fmt.Sprintf("objctest: class %s has no ivar %q", o.cls.name, name))
}

// Send dispatches sel to recv. A null receiver absorbs the message and
// returns zero, as the foreign runtime does. An unknown selector is an
// unmodeled dispatch failure and panics.
func (r *Runtime) Send(recv objc.ID, sel objc.Sel, args ...uintptr) uintptr {
	if recv == objc.Nil {
		return 0
	}
	r.record(sel, args)
	imp := r.resolve(recv, sel, objc.Nil)
	return imp(recv, sel, args)
}

// SendSuper dispatches sel to recv, starting the search at start.
func (r *Runtime) SendSuper(recv objc.ID, start objc.ID, sel objc.Sel, args ...uintptr) uintptr {
	if recv == objc.Nil {
		return 0
	}
	r.record(sel, args)
	imp := r.resolve(recv, sel, start)
	return imp(recv, sel, args)
}

func (r *Runtime) record(sel objc.Sel, args []uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.tracing {
		return
	}
	r.trace = append(r.trace, SendRecord{Sel: r.selNames[sel], Args: append([]uintptr(nil), args...)})
}

func (r *Runtime) resolve(recv objc.ID, sel objc.Sel, start objc.ID) objc.IMP {
	r.mu.Lock()

	if cls, ok := r.classes[recv]; ok && start == objc.Nil {
		for c := cls; c != nil; c = c.super {
			if imp, ok := c.classMethods[sel]; ok {
				r.mu.Unlock()
				return imp
			}
		}
		r.mu.Unlock()
		panic(fmt.Sprintf("objctest: class %s does not respond to %s", cls.name, r.SelName(sel)))
	}

	o, ok := r.objects[recv]
	if !ok {
		r.mu.Unlock()
		panic(fmt.Sprintf("objctest: message %s to dead or unknown object %#x", r.SelName(sel), recv))
	}
	from := o.cls
	if start != objc.Nil {
		from, ok = r.classes[start]
		if !ok {
			r.mu.Unlock()
			panic(fmt.Sprintf("objctest: SendSuper from unknown class %#x", start))
		}
	}
	for c := from; c != nil; c = c.super {
		if imp, ok := c.methods[sel]; ok {
			r.mu.Unlock()
			return imp
		}
	}
	name := o.cls.name
	r.mu.Unlock()
	panic(fmt.Sprintf("objctest: %s instance does not respond to %s", name, r.SelName(sel)))
}

// Retain increments the object's reference count. Retaining an object whose
// dealloc is already running cannot bring it back; that is a bug in the
// caller and panics.
func (r *Runtime) Retain(obj objc.ID) objc.ID {
	r.mu.Lock()
	o := r.mustObjectLocked(obj)
	dying := o.dying
	r.mu.Unlock()
	if dying {
		panic(fmt.Sprintf("objctest: retain of deallocating object %#x", obj))
	}
	o.refs.Add(1)
	return obj
}

// Release decrements the reference count, deallocating at zero.
func (r *Runtime) Release(obj objc.ID) {
	o := r.mustObject(obj)
	n := o.refs.Add(-1)
	switch {
	case n < 0:
		panic(fmt.Sprintf("objctest: over-release of %#x", obj))
	case n == 0:
		r.mu.Lock()
		o.dying = true
		r.mu.Unlock()
		r.Send(obj, r.RegisterName("dealloc"))
	}
}

// RetainCount reports the current reference count.
func (r *Runtime) RetainCount(obj objc.ID) uintptr {
	return uintptr(r.mustObject(obj).refs.Load())
}

// NewString creates a string object owned by the caller.
func (r *Runtime) NewString(s string) objc.ID {
	return r.newStringObject(s)
}

// GoString copies the contents of a string object.
func (r *Runtime) GoString(str objc.ID) string {
	o := r.mustObject(str)
	if !o.isStr {
		panic(fmt.Sprintf("objctest: GoString of non-string %#x", str))
	}
	return o.str
}

// --- allocation and teardown ---

func (r *Runtime) newInstanceOf(cls *class) *object {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID += 16
	o := &object{
		id:    objc.ID(r.nextID),
		cls:   cls,
		ivars: make(map[string]uintptr),
	}
	for c := cls; c != nil; c = c.super {
		switch c.name {
		case "NSString":
			o.isStr = true
		case "NSArray":
			o.isArr = true
		}
	}
	o.refs.Store(1)
	r.objects[o.id] = o
	return o
}

func (r *Runtime) newStringObject(s string) objc.ID {
	o := r.newInstanceOf(r.classNamed("NSString"))
	o.str = s
	return o.id
}

// destroy is the root dealloc: the object disappears from the table.
func (r *Runtime) destroy(obj objc.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, obj)
}

// autoreleased parks the object's initial reference in the pool, so the
// runtime can hand the pointer back as a borrowed return. The caller
// acquires it if it must outlive the next Drain.
func (r *Runtime) autoreleased(obj objc.ID) objc.ID {
	r.mu.Lock()
	r.pool = append(r.pool, obj)
	r.mu.Unlock()
	return obj
}

func (r *Runtime) classNamed(name string) *class {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classesByName[name]
	if !ok {
		panic(fmt.Sprintf("objctest: no such class %q", name))
	}
	return c
}

func (r *Runtime) mustObject(obj objc.ID) *object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mustObjectLocked(obj)
}

func (r *Runtime) mustObjectLocked(obj objc.ID) *object {
	o, ok := r.objects[obj]
	if !ok {
		panic(fmt.Sprintf("objctest: use of dead or unknown object %#x", obj))
	}
	return o
}

func (r *Runtime) mustClassLocked(cls objc.ID) *class {
	c, ok := r.classes[cls]
	if !ok {
		panic(fmt.Sprintf("objctest: no such class %#x", cls))
	}
	return c
}

// --- instrumentation ---

// NewObject allocates a plain root-class instance owned by the caller.
func (r *Runtime) NewObject() objc.ID {
	return r.newInstanceOf(r.classNamed("NSObject")).id
}

// RetainCountOf reports an object's reference count, or 0 if it is gone.
func (r *Runtime) RetainCountOf(obj objc.ID) int {
	r.mu.Lock()
	o, ok := r.objects[obj]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	return int(o.refs.Load())
}

// Live reports whether the object has not been deallocated.
func (r *Runtime) Live(obj objc.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.objects[obj]
	return ok
}

// LiveObjects counts objects not yet deallocated.
func (r *Runtime) LiveObjects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// Drain releases every borrowed return handed out since the last drain,
// the way the foreign runtime tears down its pool at the end of an event
// cycle. Tests call it before asserting full teardown.
func (r *Runtime) Drain() {
	r.mu.Lock()
	pool := r.pool
	r.pool = nil
	r.mu.Unlock()
	for _, obj := range pool {
		r.Release(obj)
	}
}

// SetTrace toggles send recording.
func (r *Runtime) SetTrace(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracing = on
	if !on {
		r.trace = nil
	}
}

// Trace returns the sends recorded since tracing was enabled.
func (r *Runtime) Trace() []SendRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SendRecord, len(r.trace))
	copy(out, r.trace)
	return out
}

// ResetTrace clears recorded sends without toggling tracing.
func (r *Runtime) ResetTrace() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trace = nil
}
