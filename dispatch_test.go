package objc_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	objc "github.com/martial-plains/objc-go"
	"github.com/martial-plains/objc-go/objctest"
)

func TestSend_NilReceiverAbsorbs(t *testing.T) {
	objctest.Use()

	sel := objc.SelectorFor("description")
	assert.Equal(t, uintptr(0), objc.Send(objc.Nil, sel))
	assert.Equal(t, objc.Nil, objc.SendObj(objc.Nil, sel))
	assert.False(t, objc.SendBool(objc.Nil, sel))
	assert.Equal(t, "", objc.SendString(objc.Nil, sel))
}

func TestSend_UnknownSelectorPanics(t *testing.T) {
	rt := objctest.Use()

	id := rt.NewObject()
	defer rt.Release(id)

	assert.Panics(t, func() {
		objc.Send(id, objc.SelectorFor("definitelyNotAMethod"))
	})
}

func TestSend_TypedHelpers(t *testing.T) {
	rt := objctest.Use()

	str := rt.NewString("bridge")
	defer rt.Release(str)

	assert.Equal(t, uint(6), objc.SendUint(str, objc.SelectorFor("length")))
	assert.Equal(t, 6, objc.SendInt(str, objc.SelectorFor("length")))
	assert.True(t, objc.SendBool(str, objc.SelectorFor("isEqual:"), uintptr(str)))
	assert.Equal(t, "bridge", objc.SendString(str, objc.SelectorFor("description")))
}

func TestOp_Constructors(t *testing.T) {
	assert.Equal(t, objc.Op{Name: "count", Kind: objc.PropertyGet}, objc.GetterOp("count"))
	assert.Equal(t, objc.Op{Name: "setArray:", Kind: objc.PropertySet}, objc.SetterOp("setArray:"))
	assert.Equal(t, objc.Op{Name: "addObject:", Kind: objc.InstanceMethod}, objc.MethodOp("addObject:"))
	assert.Equal(t, objc.Op{Name: "alloc", Kind: objc.TypeMethod}, objc.TypeOp("alloc"))
}

func TestOp_TypeMethodDispatchesToClass(t *testing.T) {
	objctest.Use()

	nsObject := objc.GetClass("NSObject")
	assert.Equal(t, nsObject, objc.TypeOp("class").InvokeObj(nsObject))
}

// descriptor-driven wrapper with a concrete call-through
type describable struct {
	objc.ObjectCore
}

func (d describable) Description() string {
	return objc.OpDescription.InvokeString(d.Raw())
}

func TestOp_ConcreteAndDefaultDispatchIdentically(t *testing.T) {
	rt := objctest.Use()

	id := rt.NewObject()
	defer rt.Release(id)

	concrete := describable{ObjectCore: objc.Wrap(id)}
	var viaDefault objc.ObjectProtocol = objc.Wrap(id)

	rt.SetTrace(true)
	defer rt.SetTrace(false)

	got := concrete.Description()
	concreteTrace := rt.Trace()
	rt.ResetTrace()

	want := viaDefault.Description()
	defaultTrace := rt.Trace()

	require.Equal(t, want, got)
	if diff := cmp.Diff(defaultTrace, concreteTrace); diff != "" {
		t.Errorf("dispatch diverged (-default +concrete):\n%s", diff)
	}
}

func TestSelectorFor_Interned(t *testing.T) {
	objctest.Use()

	a := objc.SelectorFor("objectAtIndex:")
	b := objc.SelectorFor("objectAtIndex:")
	assert.Equal(t, a, b)
	assert.Equal(t, "objectAtIndex:", objc.SelectorName(a))

	assert.NotEqual(t, a, objc.SelectorFor("objectAtIndex"))
}
