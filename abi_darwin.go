//go:build darwin

package objc

import (
	"runtime"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"
)

// libobjc backend. All dispatch funnels through objc_msgSend; IMPs cross
// into the runtime as purego callbacks. Installed as the platform default
// so an explicit Install (the test stand-in) can still take over.

// maxIMPArgs is the number of raw argument words a bridge IMP can receive,
// bounded by the fixed callback arity below.
const maxIMPArgs = 6

type darwinRuntime struct{}

var _ RuntimeABI = darwinRuntime{}

var (
	objcGetClass      func(string) ID
	objcGetProtocol   func(string) ID
	objcAllocatePair  func(ID, string, uintptr) ID
	objcRegisterPair  func(ID)
	objectGetClass    func(ID) ID
	classGetName      func(ID) string
	classAddMethod    func(ID, Sel, uintptr, string) bool
	classAddIvar      func(ID, string, uintptr, uint8, string) bool
	classAddProtocol  func(ID, ID) bool
	objectGetVariable func(ID, string, *uintptr) uintptr
	objectSetVariable func(ID, string, uintptr) uintptr
	selRegisterName   func(string) Sel
	selGetName        func(Sel) string

	msgSendAddr      uintptr
	msgSendSuperAddr uintptr
)

func init() {
	lib, err := purego.Dlopen("/usr/lib/libobjc.A.dylib", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		log.Errorf("libobjc unavailable: %s", err.Error())
		return
	}
	purego.RegisterLibFunc(&objcGetClass, lib, "objc_getClass")
	purego.RegisterLibFunc(&objcGetProtocol, lib, "objc_getProtocol")
	purego.RegisterLibFunc(&objcAllocatePair, lib, "objc_allocateClassPair")
	purego.RegisterLibFunc(&objcRegisterPair, lib, "objc_registerClassPair")
	purego.RegisterLibFunc(&objectGetClass, lib, "object_getClass")
	purego.RegisterLibFunc(&classGetName, lib, "class_getName")
	purego.RegisterLibFunc(&classAddMethod, lib, "class_addMethod")
	purego.RegisterLibFunc(&classAddIvar, lib, "class_addIvar")
	purego.RegisterLibFunc(&classAddProtocol, lib, "class_addProtocol")
	purego.RegisterLibFunc(&objectGetVariable, lib, "object_getInstanceVariable")
	purego.RegisterLibFunc(&objectSetVariable, lib, "object_setInstanceVariable")
	purego.RegisterLibFunc(&selRegisterName, lib, "sel_registerName")
	purego.RegisterLibFunc(&selGetName, lib, "sel_getName")
	msgSendAddr = purego.Dlsym(lib, "objc_msgSend")
	msgSendSuperAddr = purego.Dlsym(lib, "objc_msgSendSuper")

	installDefault(darwinRuntime{})
}

func (darwinRuntime) RegisterName(name string) Sel { return selRegisterName(name) }
func (darwinRuntime) SelName(sel Sel) string       { return selGetName(sel) }
func (darwinRuntime) GetClass(name string) ID      { return objcGetClass(name) }
func (darwinRuntime) ClassName(cls ID) string      { return classGetName(cls) }
func (darwinRuntime) GetProtocol(name string) ID   { return objcGetProtocol(name) }

func (darwinRuntime) AllocateClassPair(super ID, name string) ID {
	return objcAllocatePair(super, name, 0)
}

func (darwinRuntime) RegisterClassPair(cls ID) {
	objcRegisterPair(cls)
}

func (darwinRuntime) AddMethod(cls ID, sel Sel, imp IMP) bool {
	return classAddMethod(cls, sel, wrapIMP(imp), impTypes())
}

func (darwinRuntime) AddClassMethod(cls ID, sel Sel, imp IMP) bool {
	return classAddMethod(objectGetClass(cls), sel, wrapIMP(imp), impTypes())
}

func (darwinRuntime) AddIvar(cls ID, name string) bool {
	ptrSize := uintptr(unsafe.Sizeof(uintptr(0)))
	return classAddIvar(cls, name, ptrSize, 3, "L")
}

func (d darwinRuntime) AddProtocol(cls ID, name string) bool {
	proto := objcGetProtocol(name)
	if proto == Nil {
		return false
	}
	return classAddProtocol(cls, proto)
}

func (darwinRuntime) GetIvar(obj ID, name string) uintptr {
	var out uintptr
	objectGetVariable(obj, name, &out)
	return out
}

func (darwinRuntime) SetIvar(obj ID, name string, val uintptr) {
	objectSetVariable(obj, name, val)
}

func (darwinRuntime) Send(recv ID, sel Sel, args ...uintptr) uintptr {
	call := make([]uintptr, 0, 2+len(args))
	call = append(call, uintptr(recv), uintptr(sel))
	call = append(call, args...)
	r1, _, _ := purego.SyscallN(msgSendAddr, call...)
	return r1
}

func (darwinRuntime) SendSuper(recv ID, start ID, sel Sel, args ...uintptr) uintptr {
	sup := struct {
		receiver   ID
		superClass ID
	}{recv, start}
	call := make([]uintptr, 0, 2+len(args))
	call = append(call, uintptr(unsafe.Pointer(&sup)), uintptr(sel))
	call = append(call, args...)
	r1, _, _ := purego.SyscallN(msgSendSuperAddr, call...)
	runtime.KeepAlive(&sup)
	return r1
}

func (d darwinRuntime) Retain(obj ID) ID {
	return ID(d.Send(obj, SelectorFor("retain")))
}

func (d darwinRuntime) Release(obj ID) {
	d.Send(obj, SelectorFor("release"))
}

func (d darwinRuntime) RetainCount(obj ID) uintptr {
	return d.Send(obj, SelectorFor("retainCount"))
}

func (d darwinRuntime) NewString(s string) ID {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	str := d.Send(GetClass("NSString"), SelectorFor("stringWithUTF8String:"),
		uintptr(unsafe.Pointer(&buf[0])))
	runtime.KeepAlive(buf)
	// stringWithUTF8String: returns a borrowed reference; the ABI contract
	// hands ownership to the caller.
	return d.Retain(ID(str))
}

func (d darwinRuntime) GoString(str ID) string {
	p := d.Send(str, SelectorFor("UTF8String"))
	if p == 0 {
		return ""
	}
	var b []byte
	for {
		c := *(*byte)(unsafe.Pointer(p))
		if c == 0 {
			break
		}
		b = append(b, c)
		p++
	}
	return string(b)
}

// wrapIMP turns a bridge IMP into a callback address the runtime can jump
// to. The callback arity is fixed; arguments beyond maxIMPArgs are not
// visible to bridge IMPs.
func wrapIMP(imp IMP) uintptr {
	return purego.NewCallback(func(recv, sel, a0, a1, a2, a3, a4, a5 uintptr) uintptr {
		return imp(ID(recv), Sel(sel), []uintptr{a0, a1, a2, a3, a4, a5})
	})
}

func impTypes() string {
	return "@@:" + strings.Repeat("@", maxIMPArgs)
}
