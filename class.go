package objc

import (
	"fmt"
	"sync"
	"unicode"
)

// BridgeIvar is the single pointer-sized instance variable every bridge
// class carries. It holds the handle of the boxed Go state owned by the
// instance, or 0.
const BridgeIvar = "goBridgePtr"

// Finalizer is implemented by boxed Go state that needs cleanup when its
// foreign owner deallocates. The generated dealloc hook calls Finalize after
// unboxing, exactly once.
type Finalizer interface {
	Finalize()
}

// Class is a registered class descriptor.
type Class struct {
	id    ID
	name  string
	super ID
}

// Raw returns the class pointer for dispatch.
func (c Class) Raw() ID { return c.id }

// Name returns the registered class name.
func (c Class) Name() string { return c.name }

// New allocates and initializes an instance. The returned handle owns the
// allocation's reference.
func (c Class) New() Object {
	obj := SendObj(c.id, SelectorFor("alloc"))
	obj = SendObj(obj, SelectorFor("init"))
	o, err := Adopt(obj)
	if err != nil {
		panic(fmt.Sprintf("objc: class %q failed to allocate", c.name))
	}
	return o
}

type methodEntry struct {
	name   string
	imp    IMP
	static bool
}

// ClassBuilder assembles a Go-backed foreign class: superclass, protocol
// conformances, instance variable slots and the selector table. Register
// commits it to the foreign class table, exactly once per name, for the life
// of the process. There is no unregistration.
type ClassBuilder struct {
	name      string
	super     string
	protocols []string
	ivars     []string
	methods   []methodEntry
}

// NewClassBuilder creates a builder for the named class, inheriting from the
// runtime's root object class unless Super overrides it.
func NewClassBuilder(name string) *ClassBuilder {
	return &ClassBuilder{
		name:  name,
		super: "NSObject",
	}
}

// Super sets the superclass name.
func (cb *ClassBuilder) Super(name string) *ClassBuilder {
	cb.super = name
	return cb
}

// Protocol declares conformance to the named protocol.
func (cb *ClassBuilder) Protocol(name string) *ClassBuilder {
	cb.protocols = append(cb.protocols, name)
	return cb
}

// Ivar declares an extra pointer-sized instance variable slot. The bridge
// slot is always present and need not be declared.
func (cb *ClassBuilder) Ivar(name string) *ClassBuilder {
	cb.ivars = append(cb.ivars, name)
	return cb
}

// Method adds an instance method under the given selector.
func (cb *ClassBuilder) Method(name string, imp IMP) *ClassBuilder {
	cb.methods = append(cb.methods, methodEntry{name: name, imp: imp})
	return cb
}

// TypeMethod adds a class-level method under the given selector.
func (cb *ClassBuilder) TypeMethod(name string, imp IMP) *ClassBuilder {
	cb.methods = append(cb.methods, methodEntry{name: name, imp: imp, static: true})
	return cb
}

// Getter adds a property read accessor. The selector is the property name.
func (cb *ClassBuilder) Getter(property string, imp IMP) *ClassBuilder {
	return cb.Method(property, imp)
}

// Setter adds a property write accessor under the conventional setter
// selector: setFoo: for property foo.
func (cb *ClassBuilder) Setter(property string, imp IMP) *ClassBuilder {
	return cb.Method(setterSelector(property), imp)
}

func setterSelector(property string) string {
	runes := []rune(property)
	runes[0] = unicode.ToUpper(runes[0])
	return "set" + string(runes) + ":"
}

// classRecord guards one class name: Unregistered until the once runs,
// Registering inside it, Registered after. owner pins the builder that won
// the registration so a second builder reusing the name fails instead of
// silently receiving a descriptor its selector table did not produce.
// failure holds a panic from the registration attempt; the once is consumed
// either way, so later Register calls re-raise it instead of returning a
// zero descriptor.
type classRecord struct {
	once    sync.Once
	cls     Class
	owner   *ClassBuilder
	failure any
}

var classRegistry sync.Map // name -> *classRecord

// Register commits the class to the foreign runtime and returns its
// descriptor. Repeat calls from the same builder return the same
// descriptor. A name that collides with an existing foreign class, or with
// a class another builder already registered, is fatal: a half-registered
// duplicate would corrupt the shared class table, so this panics rather
// than returning an error.
func (cb *ClassBuilder) Register() Class {
	v, _ := classRegistry.LoadOrStore(cb.name, &classRecord{})
	rec := v.(*classRecord)
	rec.once.Do(func() {
		rec.owner = cb
		defer func() {
			if e := recover(); e != nil {
				rec.failure = e
				panic(e)
			}
		}()
		rec.cls = cb.register()
	})
	if rec.failure != nil {
		panic(rec.failure)
	}
	if rec.owner != cb {
		panic(fmt.Sprintf("objc: class name collision: %q is already registered", cb.name))
	}
	return rec.cls
}

func (cb *ClassBuilder) register() Class {
	rt := Runtime()
	if rt.GetClass(cb.name) != Nil {
		panic(fmt.Sprintf("objc: class name collision: %q exists in the foreign class table", cb.name))
	}
	super := rt.GetClass(cb.super)
	if super == Nil {
		panic(fmt.Sprintf("objc: unknown superclass %q for class %q", cb.super, cb.name))
	}

	cls := rt.AllocateClassPair(super, cb.name)
	if cls == Nil {
		panic(fmt.Sprintf("objc: class name collision: %q could not be allocated", cb.name))
	}

	rt.AddIvar(cls, BridgeIvar)
	for _, ivar := range cb.ivars {
		rt.AddIvar(cls, ivar)
	}

	for _, proto := range cb.protocols {
		if !rt.AddProtocol(cls, proto) {
			panic(fmt.Sprintf("objc: unknown protocol %q for class %q", proto, cb.name))
		}
	}

	for _, m := range cb.methods {
		if m.name == "dealloc" {
			panic(fmt.Sprintf("objc: class %q declares dealloc; the hook is generated", cb.name))
		}
		sel := rt.RegisterName(m.name)
		if m.static {
			rt.AddClassMethod(cls, sel, m.imp)
		} else {
			rt.AddMethod(cls, sel, m.imp)
		}
	}

	// The generated hook: reclaim the bridge box, then let the superclass
	// tear the instance down.
	rt.AddMethod(cls, rt.RegisterName("dealloc"), deallocIMP(super))

	rt.RegisterClassPair(cls)
	log.Debugf("registered class %s (super %s, %d selectors)", cb.name, cb.super, len(cb.methods))
	return Class{id: cls, name: cb.name, super: super}
}

// deallocIMP builds the generated deallocation hook. Every code path that
// boxes Go state into an instance relies on this firing: it is the single
// point where a box is taken back and dropped.
func deallocIMP(super ID) IMP {
	return func(recv ID, sel Sel, _ []uintptr) uintptr {
		reclaimBridgeBox(recv)
		Runtime().SendSuper(recv, super, sel)
		return 0
	}
}

func reclaimBridgeBox(recv ID) {
	rt := Runtime()
	h := rt.GetIvar(recv, BridgeIvar)
	if h == 0 {
		return
	}
	rt.SetIvar(recv, BridgeIvar, 0)
	v, ok := cells.Take(int32(h))
	if !ok {
		return
	}
	if f, ok := v.(Finalizer); ok {
		f.Finalize()
	}
	log.Debugf("reclaimed bridge box %d", h)
}

// BindState boxes state into obj's bridge ivar. The instance becomes the
// box's exclusive owner; the generated dealloc hook reclaims it.
func BindState(obj ID, state any) {
	id := cells.Store(state)
	Runtime().SetIvar(obj, BridgeIvar, uintptr(id))
}

// BoundState returns the Go state boxed into obj, if any. The box stays
// owned by the instance.
func BoundState(obj ID) (any, bool) {
	h := Runtime().GetIvar(obj, BridgeIvar)
	if h == 0 {
		return nil, false
	}
	return cells.Load(int32(h))
}
