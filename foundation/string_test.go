package foundation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	objc "github.com/martial-plains/objc-go"
	"github.com/martial-plains/objc-go/foundation"
	"github.com/martial-plains/objc-go/objctest"
)

func TestString_RoundTrip(t *testing.T) {
	rt := objctest.Use()

	s := foundation.StringFrom("hello bridge")
	defer s.Release()

	assert.Equal(t, "hello bridge", s.String())
	assert.Equal(t, uint(12), s.Length())
	assert.Equal(t, 1, rt.RetainCountOf(s.Raw()))
}

func TestString_Empty(t *testing.T) {
	objctest.Use()

	s := foundation.StringFrom("")
	defer s.Release()

	assert.Equal(t, "", s.String())
	assert.Equal(t, uint(0), s.Length())
}

func TestString_EqualityIsByContents(t *testing.T) {
	objctest.Use()

	a := foundation.StringFrom("same")
	b := foundation.StringFrom("same")
	c := foundation.StringFrom("other")
	defer a.Release()
	defer b.Release()
	defer c.Release()

	assert.NotEqual(t, a.Raw(), b.Raw())
	assert.True(t, a.IsEqualTo(b))
	assert.False(t, a.IsEqualTo(c))

	// the root capability agrees
	assert.True(t, a.IsEqual(b.Raw()))
	assert.False(t, a.IsEqual(c.Raw()))
}

func TestString_BorrowingView(t *testing.T) {
	rt := objctest.Use()

	owned := foundation.StringFrom("shared")
	defer owned.Release()

	view := foundation.AsString(owned.Raw())
	assert.Equal(t, "shared", view.String())
	assert.Equal(t, 1, rt.RetainCountOf(owned.Raw()))
}

func TestString_InArrayRetained(t *testing.T) {
	rt := objctest.Use()

	s := foundation.StringFrom("element")
	arr := foundation.ArrayFrom(foundation.AsString, s)

	s.Release()
	assert.True(t, rt.Live(arr.At(0).Raw()))
	assert.Equal(t, "element", arr.At(0).String())

	arr.Release()
	assert.False(t, rt.Live(objc.ID(s.Raw())))
}
