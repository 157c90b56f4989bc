package foundation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	objc "github.com/martial-plains/objc-go"
	"github.com/martial-plains/objc-go/foundation"
	"github.com/martial-plains/objc-go/objctest"
)

func wrapCore(id objc.ID) objc.ObjectCore {
	return objc.Wrap(id)
}

// three fresh objects, each owned solely by the caller
func threeObjects(t *testing.T, rt *objctest.Runtime) (a, b, c objc.ID) {
	t.Helper()
	a, b, c = rt.NewObject(), rt.NewObject(), rt.NewObject()
	require.Equal(t, 1, rt.RetainCountOf(a))
	require.Equal(t, 1, rt.RetainCountOf(b))
	require.Equal(t, 1, rt.RetainCountOf(c))
	return
}

func releaseAll(rt *objctest.Runtime, ids ...objc.ID) {
	for _, id := range ids {
		rt.Release(id)
	}
}

func TestArray_Basics(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)
	defer releaseAll(rt, a, b, c)

	arr := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b), objc.Wrap(c))
	defer arr.Release()

	assert.Equal(t, uint(3), arr.Count())
	assert.Equal(t, a, arr.At(0).Raw())
	assert.Equal(t, b, arr.At(1).Raw())
	assert.Equal(t, c, arr.At(2).Raw())

	assert.True(t, arr.Contains(objc.Wrap(b)))
	assert.Equal(t, uint(1), arr.IndexOf(objc.Wrap(b)))
	assert.Equal(t, uint(1), arr.IndexOfIdenticalTo(objc.Wrap(b)))
	assert.Equal(t, objc.NotFound, arr.IndexOf(objc.Wrap(rt.NewObject())))

	first, ok := arr.First()
	require.True(t, ok)
	assert.Equal(t, a, first.Raw())
	last, ok := arr.Last()
	require.True(t, ok)
	assert.Equal(t, c, last.Raw())
}

func TestArray_Empty(t *testing.T) {
	objctest.Use()

	arr := foundation.ArrayFrom(wrapCore)
	defer arr.Release()

	assert.Equal(t, uint(0), arr.Count())
	_, ok := arr.First()
	assert.False(t, ok)
	_, ok = arr.Last()
	assert.False(t, ok)
	assert.Panics(t, func() { arr.At(0) })
}

func TestArray_RetainsElements(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)

	arr := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b), objc.Wrap(c))
	assert.Equal(t, 2, rt.RetainCountOf(a))
	assert.Equal(t, 2, rt.RetainCountOf(b))
	assert.Equal(t, 2, rt.RetainCountOf(c))

	// the caller's references can go first
	releaseAll(rt, a, b, c)
	assert.Equal(t, 1, rt.RetainCountOf(a))
	assert.True(t, rt.Live(a))

	// the array's teardown releases the elements
	arr.Release()
	assert.False(t, rt.Live(a))
	assert.False(t, rt.Live(b))
	assert.False(t, rt.Live(c))
}

func TestArray_EqualityIsByContents(t *testing.T) {
	rt := objctest.Use()
	a, b, _ := threeObjects(t, rt)
	defer releaseAll(rt, a, b)

	one := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b))
	two := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b))
	three := foundation.ArrayFrom(wrapCore, objc.Wrap(b), objc.Wrap(a))
	defer one.Release()
	defer two.Release()
	defer three.Release()

	assert.True(t, one.IsEqualTo(two))
	assert.False(t, one.IsEqualTo(three))

	// and through the root capability
	assert.True(t, one.IsEqual(two.Raw()))
	assert.False(t, one.IsEqual(a))
}

func TestArray_RangedSearches(t *testing.T) {
	rt := objctest.Use()
	a, b, _ := threeObjects(t, rt)
	defer releaseAll(rt, a, b)

	arr := foundation.ArrayFrom(wrapCore,
		objc.Wrap(a), objc.Wrap(b), objc.Wrap(a), objc.Wrap(b))
	defer arr.Release()

	assert.Equal(t, uint(0), arr.IndexOf(objc.Wrap(a)))
	assert.Equal(t, uint(2),
		arr.IndexOfInRange(objc.Wrap(a), foundation.Range{Location: 1, Length: 3}))
	assert.Equal(t, uint(3),
		arr.IndexOfIdenticalToInRange(objc.Wrap(b), foundation.Range{Location: 2, Length: 2}))
	assert.Equal(t, objc.NotFound,
		arr.IndexOfInRange(objc.Wrap(a), foundation.Range{Location: 3, Length: 1}))
	assert.Panics(t, func() {
		arr.IndexOfInRange(objc.Wrap(a), foundation.Range{Location: 3, Length: 2})
	})
}

func TestArray_Subarray(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)
	defer releaseAll(rt, a, b, c)

	arr := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b), objc.Wrap(c))
	defer arr.Release()

	sub := arr.Subarray(foundation.Range{Location: 1, Length: 2})
	defer sub.Release()

	assert.Equal(t, uint(2), sub.Count())
	assert.Equal(t, b, sub.At(0).Raw())
	assert.Equal(t, c, sub.At(1).Raw())

	// the subarray holds its own element references
	assert.Equal(t, 3, rt.RetainCountOf(b))

	assert.Panics(t, func() { arr.Subarray(foundation.Range{Location: 2, Length: 2}) })
}

func TestArray_SubarrayFullTeardown(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)

	arr := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b), objc.Wrap(c))
	sub := arr.Subarray(foundation.Range{Location: 1, Length: 2})
	subRaw := sub.Raw()

	sub.Release()
	arr.Release()
	releaseAll(rt, a, b, c)

	// the pool still holds the subarray's borrowed return
	assert.True(t, rt.Live(subRaw))
	assert.True(t, rt.Live(b))
	assert.True(t, rt.Live(c))

	// once it drains, the subarray and its retained elements all die
	rt.Drain()
	assert.False(t, rt.Live(subRaw))
	assert.False(t, rt.Live(a))
	assert.False(t, rt.Live(b))
	assert.False(t, rt.Live(c))
}

func TestArray_FirstObjectCommonWith(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)
	defer releaseAll(rt, a, b, c)

	left := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b))
	right := foundation.ArrayFrom(wrapCore, objc.Wrap(b), objc.Wrap(c))
	disjoint := foundation.ArrayFrom(wrapCore, objc.Wrap(c))
	defer left.Release()
	defer right.Release()
	defer disjoint.Release()

	common, ok := left.FirstObjectCommonWith(right)
	require.True(t, ok)
	assert.Equal(t, b, common.Raw())

	_, ok = left.FirstObjectCommonWith(disjoint)
	assert.False(t, ok)
}

func TestArray_IterateTwiceSameSequence(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)
	defer releaseAll(rt, a, b, c)

	arr := foundation.ArrayFrom(wrapCore, objc.Wrap(a), objc.Wrap(b), objc.Wrap(c))
	defer arr.Release()

	collect := func() []objc.ID {
		var out []objc.ID
		for it := arr.Iter(); ; {
			elem, ok := it.Next()
			if !ok {
				break
			}
			out = append(out, elem.Raw())
		}
		return out
	}

	first := collect()
	second := collect()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("iteration order diverged (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]objc.ID{a, b, c}, first); diff != "" {
		t.Errorf("unexpected sequence (-want +got):\n%s", diff)
	}
}

func TestArray_DescriptionWithLocale(t *testing.T) {
	objctest.Use()

	alpha := foundation.StringFrom("alpha")
	beta := foundation.StringFrom("beta")
	defer alpha.Release()
	defer beta.Release()

	arr := foundation.ArrayFrom(foundation.AsString, alpha, beta)
	defer arr.Release()

	assert.Equal(t, "(alpha, beta)", arr.DescriptionWithLocale(objc.Nil))
	assert.Equal(t, "(alpha, beta)", arr.Description())
}

func TestArray_FindsEqualButDistinctStrings(t *testing.T) {
	objctest.Use()

	stored := foundation.StringFrom("needle")
	probe := foundation.StringFrom("needle")
	defer stored.Release()
	defer probe.Release()

	arr := foundation.ArrayFrom(foundation.AsString, stored)
	defer arr.Release()

	// equality search consults the element's own equality
	assert.True(t, arr.Contains(probe))
	assert.Equal(t, uint(0), arr.IndexOf(probe))

	// identity search does not
	assert.Equal(t, objc.NotFound, arr.IndexOfIdenticalTo(probe))
	assert.Equal(t, uint(0), arr.IndexOfIdenticalTo(stored))
}

func TestMutableArray_AddInsertRemove(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)
	defer releaseAll(rt, a, b, c)

	m := foundation.NewMutableArray(wrapCore)
	defer m.Release()

	m.Add(objc.Wrap(a))
	m.Add(objc.Wrap(c))
	m.Insert(objc.Wrap(b), 1)
	assert.Equal(t, uint(3), m.Count())
	assert.Equal(t, b, m.At(1).Raw())
	assert.Equal(t, 2, rt.RetainCountOf(b))

	m.RemoveAt(1)
	assert.Equal(t, uint(2), m.Count())
	assert.Equal(t, 1, rt.RetainCountOf(b))
	assert.Equal(t, c, m.At(1).Raw())

	m.RemoveLast()
	assert.Equal(t, uint(1), m.Count())
	assert.Equal(t, 1, rt.RetainCountOf(c))

	m.RemoveAll()
	assert.Equal(t, uint(0), m.Count())
	assert.Equal(t, 1, rt.RetainCountOf(a))

	assert.Panics(t, func() { m.RemoveLast() })
	assert.Panics(t, func() { m.RemoveAt(0) })
	assert.Panics(t, func() { m.Insert(objc.Wrap(a), 5) })
}

func TestMutableArray_RemoveMatches(t *testing.T) {
	rt := objctest.Use()

	x := foundation.StringFrom("x")
	y := foundation.StringFrom("y")
	x2 := foundation.StringFrom("x")
	defer x.Release()
	defer y.Release()
	defer x2.Release()

	m := foundation.MutableArrayFrom(foundation.AsString, x, y, x2, y)
	require.Equal(t, uint(4), m.Count())

	// Remove strips every element equal to the probe, not just the pointer
	m.Remove(x2)
	assert.Equal(t, uint(2), m.Count())
	assert.Equal(t, y.Raw(), m.At(0).Raw())
	assert.Equal(t, 1, rt.RetainCountOf(x.Raw()))
	assert.Equal(t, 1, rt.RetainCountOf(x2.Raw()))

	m.RemoveIdenticalTo(y)
	assert.Equal(t, uint(0), m.Count())
	m.Release()
}

func TestMutableArray_RemoveInRanges(t *testing.T) {
	rt := objctest.Use()
	a, b, _ := threeObjects(t, rt)
	defer releaseAll(rt, a, b)

	m := foundation.MutableArrayFrom(wrapCore,
		objc.Wrap(a), objc.Wrap(b), objc.Wrap(a), objc.Wrap(b))
	defer m.Release()

	// only occurrences inside the range go
	m.RemoveIdenticalToInRange(objc.Wrap(a), foundation.Range{Location: 1, Length: 3})
	assert.Equal(t, uint(3), m.Count())
	assert.Equal(t, a, m.At(0).Raw())

	m.RemoveRange(foundation.Range{Location: 1, Length: 2})
	assert.Equal(t, uint(1), m.Count())
	assert.Equal(t, 2, rt.RetainCountOf(a))
	assert.Equal(t, 1, rt.RetainCountOf(b))
}

func TestMutableArray_ReplaceAt(t *testing.T) {
	rt := objctest.Use()
	a, b, _ := threeObjects(t, rt)
	defer releaseAll(rt, a, b)

	m := foundation.MutableArrayFrom(wrapCore, objc.Wrap(a))
	defer m.Release()

	m.ReplaceAt(0, objc.Wrap(b))
	assert.Equal(t, b, m.At(0).Raw())
	assert.Equal(t, 1, rt.RetainCountOf(a))
	assert.Equal(t, 2, rt.RetainCountOf(b))

	assert.Panics(t, func() { m.ReplaceAt(3, objc.Wrap(a)) })
}

func TestMutableArray_AddFromAndSetArray(t *testing.T) {
	rt := objctest.Use()
	a, b, c := threeObjects(t, rt)
	defer releaseAll(rt, a, b, c)

	src := foundation.ArrayFrom(wrapCore, objc.Wrap(b), objc.Wrap(c))
	defer src.Release()

	m := foundation.MutableArrayFrom(wrapCore, objc.Wrap(a))
	defer m.Release()

	m.AddFrom(src)
	assert.Equal(t, uint(3), m.Count())
	assert.Equal(t, 3, rt.RetainCountOf(b)) // owner, src, m

	m.SetArray(src)
	assert.Equal(t, uint(2), m.Count())
	assert.Equal(t, b, m.At(0).Raw())
	assert.Equal(t, 1, rt.RetainCountOf(a)) // displaced contents were released
	assert.True(t, m.IsEqualTo(src))
}
