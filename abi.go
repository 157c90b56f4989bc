package objc

import "fmt"

// ID is an opaque pointer to a foreign object. A zero ID is the null object.
type ID uintptr

// Nil is the null object pointer.
const Nil ID = 0

// Sel identifies an interned foreign selector.
type Sel uintptr

// NotFound is the index the foreign runtime reports when an ordered
// collection does not contain the requested element.
const NotFound = uint(^uint(0) >> 1)

// IMP is a native method implementation invoked by the foreign runtime.
// args holds the message arguments as raw machine words; object arguments
// arrive as IDs, selector arguments as Sels.
type IMP func(recv ID, sel Sel, args []uintptr) uintptr

// RuntimeABI is the primitive surface of the foreign runtime. Everything the
// bridge does decomposes into these operations. Exactly one ABI serves the
// process; see Install.
//
// Ownership convention for object-returning operations follows the foreign
// runtime's own: alloc/new/copy results and NewString are owned by the
// caller (adopt them), every other returned object is borrowed (acquire it
// if it must outlive the call).
type RuntimeABI interface {
	// RegisterName interns a selector.
	RegisterName(name string) Sel
	// SelName returns the name a selector was interned under.
	SelName(sel Sel) string

	// GetClass returns the named registered class, or Nil.
	GetClass(name string) ID
	// ClassName returns the name of a class.
	ClassName(cls ID) string
	// GetProtocol returns the named protocol, or Nil.
	GetProtocol(name string) ID

	// AllocateClassPair creates a new class under construction. It returns
	// Nil if the name is already taken.
	AllocateClassPair(super ID, name string) ID
	// RegisterClassPair makes a class under construction dispatchable.
	RegisterClassPair(cls ID)
	AddMethod(cls ID, sel Sel, imp IMP) bool
	AddClassMethod(cls ID, sel Sel, imp IMP) bool
	// AddIvar declares a pointer-sized instance variable slot.
	AddIvar(cls ID, name string) bool
	AddProtocol(cls ID, name string) bool

	GetIvar(obj ID, name string) uintptr
	SetIvar(obj ID, name string, val uintptr)

	// Send dispatches sel to recv. recv may be a class for type-level
	// operations. Dispatch failures are not intercepted; they surface as
	// whatever the runtime does natively.
	Send(recv ID, sel Sel, args ...uintptr) uintptr
	// SendSuper dispatches sel to recv, starting the method search at the
	// given class instead of recv's own.
	SendSuper(recv ID, start ID, sel Sel, args ...uintptr) uintptr

	Retain(obj ID) ID
	Release(obj ID)
	// RetainCount reports the foreign reference count. Diagnostic only;
	// bridge code never branches on it.
	RetainCount(obj ID) uintptr

	// NewString creates a foreign string object owned by the caller.
	NewString(s string) ID
	// GoString copies the contents of a foreign string object.
	GoString(str ID) string
}

var (
	installed RuntimeABI
	defaulted bool
)

// Install makes r the process-wide foreign runtime. The darwin backend
// registers itself as the default from its init; an explicit Install (for
// example of the objctest stand-in) replaces the default. Installing a
// second runtime after the first explicit one is a programmer error:
// registered classes and interned selectors would dangle.
func Install(r RuntimeABI) {
	if r == nil {
		panic("objc: Install(nil)")
	}
	if installed != nil && installed != r && !defaulted {
		panic("objc: a foreign runtime is already installed")
	}
	installed = r
	defaulted = false
}

// installDefault registers the platform backend without blocking a later
// explicit Install.
func installDefault(r RuntimeABI) {
	if installed == nil {
		installed = r
		defaulted = true
	}
}

// Runtime returns the installed foreign runtime.
func Runtime() RuntimeABI {
	if installed == nil {
		panic("objc: no foreign runtime installed")
	}
	return installed
}

// GetClass returns the named foreign class, panicking if it does not exist.
// Use Runtime().GetClass to probe without panicking.
func GetClass(name string) ID {
	cls := Runtime().GetClass(name)
	if cls == Nil {
		panic(fmt.Sprintf("objc: unknown class %q", name))
	}
	return cls
}
