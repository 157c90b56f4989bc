package objc

// The root capability: the operations every foreign object answers. A
// wrapper type gains the whole surface by embedding ObjectCore around its
// handle; no per-type re-implementation. Further capabilities follow the
// same pattern (an interface plus an embeddable core with default dispatch
// bodies), which is how the foreign single-inheritance-plus-protocols model
// maps onto composition: a wrapper can embed any number of capability cores
// where the foreign hierarchy would allow only one superclass.

// Root capability operations. Each descriptor backs both the ObjectCore
// default body and any concrete call-through a wrapper chooses to declare.
var (
	OpClass               = GetterOp("class")
	OpSuperclass          = GetterOp("superclass")
	OpHash                = GetterOp("hash")
	OpIsEqual             = MethodOp("isEqual:")
	OpIsKindOfClass       = MethodOp("isKindOfClass:")
	OpIsMemberOfClass     = MethodOp("isMemberOfClass:")
	OpRespondsToSelector  = MethodOp("respondsToSelector:")
	OpConformsToProtocol  = MethodOp("conformsToProtocol:")
	OpDescription         = GetterOp("description")
	OpDebugDescription    = GetterOp("debugDescription")
	OpPerformSelector     = MethodOp("performSelector:")
	OpPerformSelectorWith = MethodOp("performSelector:withObject:")
	OpIsProxy             = MethodOp("isProxy")
	OpRetainCount         = GetterOp("retainCount")
)

// ObjectProtocol is the root capability every wrapper satisfies.
type ObjectProtocol interface {
	Raw() ID
	Class() ID
	Superclass() ID
	Hash() uint
	IsEqual(other ID) bool
	IsKindOf(cls ID) bool
	IsMemberOf(cls ID) bool
	RespondsTo(sel Sel) bool
	ConformsTo(protocol ID) bool
	Description() string
	DebugDescription() string
	PerformSelector(sel Sel) ID
	PerformSelectorWith(sel Sel, with ID) ID
	IsProxy() bool
	RetainCount() uint
}

// ObjectCore wraps a handle and provides the root capability's default
// bodies. Embed it in wrapper types.
type ObjectCore struct {
	Object
}

// Core wraps an owning handle in the root capability.
func Core(o Object) ObjectCore {
	return ObjectCore{Object: o}
}

// Wrap is a borrowing view over a raw pointer: no retain is taken and the
// view must not outlive whoever owns the reference. Collection bridges use
// it to surface elements they do not own.
func Wrap(ptr ID) ObjectCore {
	return ObjectCore{Object: Object{id: ptr}}
}

var _ ObjectProtocol = ObjectCore{}

// Class returns the object's foreign class.
func (c ObjectCore) Class() ID {
	return OpClass.InvokeObj(c.Raw())
}

// Superclass returns the class the object's class inherits from.
func (c ObjectCore) Superclass() ID {
	return OpSuperclass.InvokeObj(c.Raw())
}

// Hash returns the object's foreign hash.
func (c ObjectCore) Hash() uint {
	return OpHash.InvokeUint(c.Raw())
}

// IsEqual reports foreign equality against other.
func (c ObjectCore) IsEqual(other ID) bool {
	return OpIsEqual.InvokeBool(c.Raw(), uintptr(other))
}

// IsKindOf reports whether the object is an instance of cls or of a class
// inheriting from it.
func (c ObjectCore) IsKindOf(cls ID) bool {
	return OpIsKindOfClass.InvokeBool(c.Raw(), uintptr(cls))
}

// IsMemberOf reports whether the object is an instance of exactly cls.
func (c ObjectCore) IsMemberOf(cls ID) bool {
	return OpIsMemberOfClass.InvokeBool(c.Raw(), uintptr(cls))
}

// RespondsTo reports whether the object answers sel.
func (c ObjectCore) RespondsTo(sel Sel) bool {
	return OpRespondsToSelector.InvokeBool(c.Raw(), uintptr(sel))
}

// ConformsTo reports whether the object's class declares the protocol.
func (c ObjectCore) ConformsTo(protocol ID) bool {
	return OpConformsToProtocol.InvokeBool(c.Raw(), uintptr(protocol))
}

// Description returns the foreign description string.
func (c ObjectCore) Description() string {
	return OpDescription.InvokeString(c.Raw())
}

// DebugDescription returns the foreign debugger description.
func (c ObjectCore) DebugDescription() string {
	return OpDebugDescription.InvokeString(c.Raw())
}

// PerformSelector sends sel to the object and returns the raw result.
func (c ObjectCore) PerformSelector(sel Sel) ID {
	return OpPerformSelector.InvokeObj(c.Raw(), uintptr(sel))
}

// PerformSelectorWith sends sel with a single object argument.
func (c ObjectCore) PerformSelectorWith(sel Sel, with ID) ID {
	return OpPerformSelectorWith.InvokeObj(c.Raw(), uintptr(sel), uintptr(with))
}

// IsProxy reports whether the object stands in for another.
func (c ObjectCore) IsProxy() bool {
	return OpIsProxy.InvokeBool(c.Raw())
}

// RetainCount reports the foreign reference count. Diagnostic only; the
// count reflects a moment that may already have passed.
func (c ObjectCore) RetainCount() uint {
	return OpRetainCount.InvokeUint(c.Raw())
}
