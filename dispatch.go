package objc

// Message-send facade. The typed Send helpers are the concrete dispatch
// surface; Op descriptors sit on top of them so that a declared operation
// drives both a wrapper type's concrete call-through and the matching
// capability default with identical behavior.

// Send dispatches sel to recv and returns the raw result word.
func Send(recv ID, sel Sel, args ...uintptr) uintptr {
	return Runtime().Send(recv, sel, args...)
}

// SendObj dispatches sel and returns the result as an object pointer. The
// pointer follows the foreign ownership convention: borrowed unless the
// selector implies ownership transfer.
func SendObj(recv ID, sel Sel, args ...uintptr) ID {
	return ID(Send(recv, sel, args...))
}

// SendBool dispatches sel and interprets the result as a boolean.
func SendBool(recv ID, sel Sel, args ...uintptr) bool {
	return Send(recv, sel, args...) != 0
}

// SendUint dispatches sel and interprets the result as an unsigned integer.
func SendUint(recv ID, sel Sel, args ...uintptr) uint {
	return uint(Send(recv, sel, args...))
}

// SendInt dispatches sel and interprets the result as a signed integer.
func SendInt(recv ID, sel Sel, args ...uintptr) int {
	return int(Send(recv, sel, args...))
}

// SendVoid dispatches sel, discarding the result.
func SendVoid(recv ID, sel Sel, args ...uintptr) {
	Send(recv, sel, args...)
}

// SendString dispatches sel and copies the returned foreign string object.
// Returns "" for a null result.
func SendString(recv ID, sel Sel, args ...uintptr) string {
	str := SendObj(recv, sel, args...)
	if str == Nil {
		return ""
	}
	return Runtime().GoString(str)
}

// OpKind distinguishes how a declared operation dispatches.
type OpKind uint8

const (
	// InstanceMethod dispatches to the receiver's handle.
	InstanceMethod OpKind = iota
	// TypeMethod dispatches to a class-level target.
	TypeMethod
	// PropertyGet reads an attribute of the receiver.
	PropertyGet
	// PropertySet writes an attribute of the receiver.
	PropertySet
)

// Op is a declared operation: a selector plus its dispatch kind. One
// descriptor backs every call site of the operation, concrete or
// capability-default, so the emitted dispatch is identical by construction.
// Receiver mutability is a Go-signature concern only; it never changes the
// underlying send.
type Op struct {
	Name string
	Kind OpKind
}

// MethodOp declares an instance method operation.
func MethodOp(name string) Op { return Op{Name: name, Kind: InstanceMethod} }

// TypeOp declares a type ("class") method operation. Invoke it with the
// class as the receiver.
func TypeOp(name string) Op { return Op{Name: name, Kind: TypeMethod} }

// GetterOp declares a property read operation.
func GetterOp(name string) Op { return Op{Name: name, Kind: PropertyGet} }

// SetterOp declares a property write operation.
func SetterOp(name string) Op { return Op{Name: name, Kind: PropertySet} }

// Sel returns the operation's interned selector.
func (op Op) Sel() Sel {
	return SelectorFor(op.Name)
}

// Invoke dispatches the operation. For TypeMethod operations recv is the
// class-level target; for all others it is the instance handle.
func (op Op) Invoke(recv ID, args ...uintptr) uintptr {
	return Send(recv, op.Sel(), args...)
}

// InvokeObj dispatches and returns an object pointer.
func (op Op) InvokeObj(recv ID, args ...uintptr) ID {
	return ID(op.Invoke(recv, args...))
}

// InvokeBool dispatches and returns a boolean.
func (op Op) InvokeBool(recv ID, args ...uintptr) bool {
	return op.Invoke(recv, args...) != 0
}

// InvokeUint dispatches and returns an unsigned integer.
func (op Op) InvokeUint(recv ID, args ...uintptr) uint {
	return uint(op.Invoke(recv, args...))
}

// InvokeVoid dispatches, discarding the result.
func (op Op) InvokeVoid(recv ID, args ...uintptr) {
	op.Invoke(recv, args...)
}

// InvokeString dispatches and copies the returned foreign string object.
func (op Op) InvokeString(recv ID, args ...uintptr) string {
	str := op.InvokeObj(recv, args...)
	if str == Nil {
		return ""
	}
	return Runtime().GoString(str)
}
