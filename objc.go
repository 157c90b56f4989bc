/*
Package objc bridges Go to an Objective-C style object runtime: a dynamically
typed, selector-dispatched environment whose objects are kept alive by manual
reference counting.

The bridge is built from four layers. Object is the owning handle over a raw
foreign pointer, mapping Clone/Release onto retain/release. The dispatch
facade (Send helpers and Op descriptors) performs selector-keyed message
sends and backs ObjectCore, the embeddable root capability. ClassBuilder
registers Go-backed foreign classes exactly once per name, with a generated
dealloc hook. AttachCallback hands owned Go closures to the foreign runtime
through a boxed-handle trampoline.

All foreign access goes through the installed RuntimeABI. On darwin the
libobjc backend installs itself; tests install the instrumented stand-in from
the objctest package.
*/
package objc

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("objc")
