package foundation

import (
	objc "github.com/martial-plains/objc-go"
)

var (
	opLength          = objc.GetterOp("length")
	opIsEqualToString = objc.MethodOp("isEqualToString:")
)

// String is an owning wrapper over a foreign string object.
type String struct {
	objc.ObjectCore
}

// StringFrom copies s into a new foreign string owned by the caller.
func StringFrom(s string) String {
	obj, err := objc.Adopt(objc.Runtime().NewString(s))
	if err != nil {
		panic(err)
	}
	return String{ObjectCore: objc.Core(obj)}
}

// AsString is a borrowing view over a string pointer someone else owns.
func AsString(ptr objc.ID) String {
	return String{ObjectCore: objc.Wrap(ptr)}
}

// Length returns the string's length in the foreign runtime's units.
func (s String) Length() uint {
	return opLength.InvokeUint(s.Raw())
}

// String copies the contents into a Go string.
func (s String) String() string {
	return objc.Runtime().GoString(s.Raw())
}

// IsEqualTo reports content equality with other.
func (s String) IsEqualTo(other String) bool {
	return opIsEqualToString.InvokeBool(s.Raw(), uintptr(other.Raw()))
}
