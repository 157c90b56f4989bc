package objctest

import (
	"fmt"
	"hash/fnv"
	"strings"

	objc "github.com/martial-plains/objc-go"
)

// Built-in classes. Method bodies follow the foreign runtime's documented
// behavior closely enough for bridge tests: equality defaults to identity,
// strings compare by contents, array storage retains on insert and releases
// on remove, and dealloc chains release element references before the root
// dealloc drops the object.

func (r *Runtime) defineBuiltins() {
	r.mu.Lock()
	nsObject := r.newClassLocked("NSObject", nil)
	nsString := r.newClassLocked("NSString", nsObject)
	nsArray := r.newClassLocked("NSArray", nsObject)
	nsMutable := r.newClassLocked("NSMutableArray", nsArray)
	nsControl := r.newClassLocked("NSControl", nsObject)
	nsControl.ivars["target"] = struct{}{}
	nsControl.ivars["action"] = struct{}{}
	r.mu.Unlock()

	r.defineNSObject(nsObject)
	r.defineNSString(nsString)
	r.defineNSArray(nsArray)
	r.defineNSMutableArray(nsMutable)
	r.defineNSControl(nsControl)
}

func (r *Runtime) method(c *class, name string, imp objc.IMP) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.methods[r.selLocked(name)] = imp
}

func (r *Runtime) classMethod(c *class, name string, imp objc.IMP) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.classMethods[r.selLocked(name)] = imp
}

func (r *Runtime) defineNSObject(c *class) {
	r.classMethod(c, "alloc", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		r.mu.Lock()
		cls := r.classes[recv]
		r.mu.Unlock()
		return uintptr(r.newInstanceOf(cls).id)
	})
	r.classMethod(c, "new", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		obj := r.Send(recv, r.RegisterName("alloc"))
		return r.Send(objc.ID(obj), r.RegisterName("init"))
	})
	r.classMethod(c, "class", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(recv)
	})

	r.method(c, "init", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(recv)
	})
	r.method(c, "self", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(recv)
	})
	r.method(c, "class", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(r.mustObject(recv).cls.id)
	})
	r.method(c, "superclass", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		if sup := r.mustObject(recv).cls.super; sup != nil {
			return uintptr(sup.id)
		}
		return 0
	})
	r.method(c, "hash", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(recv)
	})
	r.method(c, "isEqual:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return boolWord(uintptr(recv) == args[0])
	})
	r.method(c, "isKindOfClass:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		for cl := r.mustObject(recv).cls; cl != nil; cl = cl.super {
			if uintptr(cl.id) == args[0] {
				return 1
			}
		}
		return 0
	})
	r.method(c, "isMemberOfClass:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return boolWord(uintptr(r.mustObject(recv).cls.id) == args[0])
	})
	r.method(c, "respondsToSelector:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.mu.Lock()
		defer r.mu.Unlock()
		o := r.mustObjectLocked(recv)
		for cl := o.cls; cl != nil; cl = cl.super {
			if _, ok := cl.methods[objc.Sel(args[0])]; ok {
				return 1
			}
		}
		return 0
	})
	r.method(c, "conformsToProtocol:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.mu.Lock()
		defer r.mu.Unlock()
		o := r.mustObjectLocked(recv)
		for cl := o.cls; cl != nil; cl = cl.super {
			if _, ok := cl.protocols[objc.ID(args[0])]; ok {
				return 1
			}
		}
		return 0
	})
	r.method(c, "description", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		o := r.mustObject(recv)
		desc := r.newStringObject(fmt.Sprintf("<%s: %#x>", o.cls.name, uintptr(recv)))
		return uintptr(r.autoreleased(desc))
	})
	r.method(c, "debugDescription", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return r.Send(recv, r.RegisterName("description"))
	})
	r.method(c, "performSelector:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.Send(recv, objc.Sel(args[0]))
	})
	r.method(c, "performSelector:withObject:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.Send(recv, objc.Sel(args[0]), args[1])
	})
	r.method(c, "isProxy", func(objc.ID, objc.Sel, []uintptr) uintptr {
		return 0
	})
	r.method(c, "retain", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(r.Retain(recv))
	})
	r.method(c, "release", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		r.Release(recv)
		return 0
	})
	r.method(c, "retainCount", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return r.RetainCount(recv)
	})
	r.method(c, "dealloc", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		r.destroy(recv)
		return 0
	})
}

func (r *Runtime) defineNSString(c *class) {
	r.method(c, "length", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(len(r.GoString(recv)))
	})
	r.method(c, "hash", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		h := fnv.New32a()
		h.Write([]byte(r.GoString(recv)))
		return uintptr(h.Sum32())
	})
	r.method(c, "isEqual:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.stringEqual(recv, objc.ID(args[0]))
	})
	r.method(c, "isEqualToString:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.stringEqual(recv, objc.ID(args[0]))
	})
	r.method(c, "description", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(recv)
	})
}

func (r *Runtime) stringEqual(recv, other objc.ID) uintptr {
	if recv == other {
		return 1
	}
	r.mu.Lock()
	o, ok := r.objects[other]
	r.mu.Unlock()
	if !ok || !o.isStr {
		return 0
	}
	return boolWord(r.GoString(recv) == o.str)
}

func (r *Runtime) defineNSArray(c *class) {
	r.method(c, "count", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(len(r.elemsOf(recv)))
	})
	r.method(c, "objectAtIndex:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		elems := r.elemsOf(recv)
		i := args[0]
		if i >= uintptr(len(elems)) {
			panic(fmt.Sprintf("objctest: index %d beyond bounds [0 .. %d]", i, len(elems)-1))
		}
		return uintptr(elems[i])
	})
	r.method(c, "containsObject:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return boolWord(r.indexOf(recv, args[0], 0, uintptr(len(r.elemsOf(recv))), false) != notFound)
	})
	r.method(c, "indexOfObject:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.indexOf(recv, args[0], 0, uintptr(len(r.elemsOf(recv))), false)
	})
	r.method(c, "indexOfObject:inRange:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.indexOf(recv, args[0], args[1], args[2], false)
	})
	r.method(c, "indexOfObjectIdenticalTo:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.indexOf(recv, args[0], 0, uintptr(len(r.elemsOf(recv))), true)
	})
	r.method(c, "indexOfObjectIdenticalTo:inRange:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		return r.indexOf(recv, args[0], args[1], args[2], true)
	})
	r.method(c, "firstObject", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		elems := r.elemsOf(recv)
		if len(elems) == 0 {
			return 0
		}
		return uintptr(elems[0])
	})
	r.method(c, "lastObject", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		elems := r.elemsOf(recv)
		if len(elems) == 0 {
			return 0
		}
		return uintptr(elems[len(elems)-1])
	})
	r.method(c, "firstObjectCommonWithArray:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		other := objc.ID(args[0])
		for _, e := range r.elemsOf(recv) {
			if r.Send(other, r.RegisterName("containsObject:"), uintptr(e)) != 0 {
				return uintptr(e)
			}
		}
		return 0
	})
	r.method(c, "isEqualToArray:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		mine := r.elemsOf(recv)
		theirs := r.elemsOf(objc.ID(args[0]))
		if len(mine) != len(theirs) {
			return 0
		}
		for i := range mine {
			if r.Send(mine[i], r.RegisterName("isEqual:"), uintptr(theirs[i])) == 0 {
				return 0
			}
		}
		return 1
	})
	r.method(c, "isEqual:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.mu.Lock()
		o, ok := r.objects[objc.ID(args[0])]
		isArr := ok && o.isArr
		r.mu.Unlock()
		if !isArr {
			return 0
		}
		return r.Send(recv, r.RegisterName("isEqualToArray:"), args[0])
	})
	r.method(c, "subarrayWithRange:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		elems := r.elemsOf(recv)
		loc, n := args[0], args[1]
		if loc+n > uintptr(len(elems)) {
			panic(fmt.Sprintf("objctest: range [%d, %d] beyond bounds of %d", loc, n, len(elems)))
		}
		sub := r.newInstanceOf(r.classNamed("NSArray"))
		for _, e := range elems[loc : loc+n] {
			r.Retain(e)
			sub.elems = append(sub.elems, e)
		}
		return uintptr(r.autoreleased(sub.id))
	})
	r.method(c, "description", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(r.autoreleased(r.newStringObject(r.describeArray(recv))))
	})
	r.method(c, "descriptionWithLocale:", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		// the locale argument only affects number formatting, which the
		// stand-in's elements never need
		return uintptr(r.autoreleased(r.newStringObject(r.describeArray(recv))))
	})
	r.method(c, "dealloc", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		r.mu.Lock()
		o := r.mustObjectLocked(recv)
		elems := o.elems
		o.elems = nil
		sup := o.cls.superNamed("NSArray")
		r.mu.Unlock()
		for _, e := range elems {
			r.Release(e)
		}
		return r.SendSuper(recv, sup, r.RegisterName("dealloc"))
	})
}

// superNamed returns the superclass of the chain entry with the given name,
// so a shared dealloc body chains correctly for subclasses too.
func (c *class) superNamed(name string) objc.ID {
	for cl := c; cl != nil; cl = cl.super {
		if cl.name == name {
			return cl.super.id
		}
	}
	return objc.Nil
}

func (r *Runtime) defineNSMutableArray(c *class) {
	r.method(c, "initWithCapacity:", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return uintptr(recv)
	})
	r.method(c, "addObject:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		e := objc.ID(args[0])
		r.Retain(e)
		r.mu.Lock()
		o := r.mustObjectLocked(recv)
		o.elems = append(o.elems, e)
		r.mu.Unlock()
		return 0
	})
	r.method(c, "addObjectsFromArray:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		for _, e := range r.elemsOf(objc.ID(args[0])) {
			r.Send(recv, r.RegisterName("addObject:"), uintptr(e))
		}
		return 0
	})
	r.method(c, "insertObject:atIndex:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		e, i := objc.ID(args[0]), args[1]
		r.Retain(e)
		r.mu.Lock()
		o := r.mustObjectLocked(recv)
		if i > uintptr(len(o.elems)) {
			r.mu.Unlock()
			panic(fmt.Sprintf("objctest: insert index %d beyond bounds %d", i, len(o.elems)))
		}
		o.elems = append(o.elems[:i], append([]objc.ID{e}, o.elems[i:]...)...)
		r.mu.Unlock()
		return 0
	})
	r.method(c, "removeObjectAtIndex:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.removeAt(recv, func(elems []objc.ID) []uintptr {
			if args[0] >= uintptr(len(elems)) {
				panic(fmt.Sprintf("objctest: remove index %d beyond bounds %d", args[0], len(elems)))
			}
			return []uintptr{args[0]}
		})
		return 0
	})
	r.method(c, "removeObjectsInRange:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.removeAt(recv, func(elems []objc.ID) []uintptr {
			loc, n := args[0], args[1]
			if loc+n > uintptr(len(elems)) {
				panic(fmt.Sprintf("objctest: range [%d, %d] beyond bounds of %d", loc, n, len(elems)))
			}
			out := make([]uintptr, 0, n)
			for i := loc; i < loc+n; i++ {
				out = append(out, i)
			}
			return out
		})
		return 0
	})
	r.method(c, "removeObject:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.removeMatching(recv, args[0], 0, uintptr(len(r.elemsOf(recv))), false)
		return 0
	})
	r.method(c, "removeObject:inRange:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.removeMatching(recv, args[0], args[1], args[2], false)
		return 0
	})
	r.method(c, "removeObjectIdenticalTo:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.removeMatching(recv, args[0], 0, uintptr(len(r.elemsOf(recv))), true)
		return 0
	})
	r.method(c, "removeObjectIdenticalTo:inRange:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.removeMatching(recv, args[0], args[1], args[2], true)
		return 0
	})
	r.method(c, "removeAllObjects", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		r.removeAt(recv, func(elems []objc.ID) []uintptr {
			out := make([]uintptr, len(elems))
			for i := range elems {
				out[i] = uintptr(i)
			}
			return out
		})
		return 0
	})
	r.method(c, "removeLastObject", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		r.removeAt(recv, func(elems []objc.ID) []uintptr {
			if len(elems) == 0 {
				panic("objctest: removeLastObject from empty array")
			}
			return []uintptr{uintptr(len(elems) - 1)}
		})
		return 0
	})
	r.method(c, "replaceObjectAtIndex:withObject:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		i, e := args[0], objc.ID(args[1])
		r.Retain(e)
		r.mu.Lock()
		o := r.mustObjectLocked(recv)
		if i >= uintptr(len(o.elems)) {
			r.mu.Unlock()
			panic(fmt.Sprintf("objctest: replace index %d beyond bounds %d", i, len(o.elems)))
		}
		old := o.elems[i]
		o.elems[i] = e
		r.mu.Unlock()
		r.Release(old)
		return 0
	})
	r.method(c, "setArray:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		incoming := r.elemsOf(objc.ID(args[0]))
		for _, e := range incoming {
			r.Retain(e)
		}
		r.mu.Lock()
		o := r.mustObjectLocked(recv)
		old := o.elems
		o.elems = append([]objc.ID(nil), incoming...)
		r.mu.Unlock()
		for _, e := range old {
			r.Release(e)
		}
		return 0
	})
}

func (r *Runtime) defineNSControl(c *class) {
	r.method(c, "setTarget:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		// weak reference, per the target/action convention
		r.SetIvar(recv, "target", args[0])
		return 0
	})
	r.method(c, "setAction:", func(recv objc.ID, _ objc.Sel, args []uintptr) uintptr {
		r.SetIvar(recv, "action", args[0])
		return 0
	})
	r.method(c, "target", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return r.GetIvar(recv, "target")
	})
	r.method(c, "action", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		return r.GetIvar(recv, "action")
	})
	r.method(c, "performClick:", func(recv objc.ID, _ objc.Sel, _ []uintptr) uintptr {
		target := r.GetIvar(recv, "target")
		action := r.GetIvar(recv, "action")
		if target == 0 || action == 0 {
			return 0
		}
		return r.Send(objc.ID(target), objc.Sel(action), uintptr(recv))
	})
}

// --- shared helpers ---

const notFound = ^uintptr(0) >> 1

func boolWord(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func (r *Runtime) elemsOf(arr objc.ID) []objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.mustObjectLocked(arr)
	if !o.isArr {
		panic(fmt.Sprintf("objctest: %s is not an array", o.cls.name))
	}
	return append([]objc.ID(nil), o.elems...)
}

func (r *Runtime) indexOf(arr objc.ID, target, loc, n uintptr, identical bool) uintptr {
	elems := r.elemsOf(arr)
	if loc+n > uintptr(len(elems)) {
		panic(fmt.Sprintf("objctest: range [%d, %d] beyond bounds of %d", loc, n, len(elems)))
	}
	for i := loc; i < loc+n; i++ {
		if identical {
			if uintptr(elems[i]) == target {
				return i
			}
			continue
		}
		if r.Send(elems[i], r.RegisterName("isEqual:"), target) != 0 {
			return i
		}
	}
	return notFound
}

// removeAt removes the indices pick selects from the current element
// snapshot, releasing each removed element after the storage is updated.
// pick may panic on bad indices; the lock is released either way.
func (r *Runtime) removeAt(arr objc.ID, pick func([]objc.ID) []uintptr) {
	removed := func() []objc.ID {
		r.mu.Lock()
		defer r.mu.Unlock()
		o := r.mustObjectLocked(arr)
		idx := pick(o.elems)
		drop := make(map[uintptr]bool, len(idx))
		for _, i := range idx {
			drop[i] = true
		}
		var kept, gone []objc.ID
		for i, e := range o.elems {
			if drop[uintptr(i)] {
				gone = append(gone, e)
			} else {
				kept = append(kept, e)
			}
		}
		o.elems = kept
		return gone
	}()
	for _, e := range removed {
		r.Release(e)
	}
}

func (r *Runtime) removeMatching(arr objc.ID, target, loc, n uintptr, identical bool) {
	elems := r.elemsOf(arr)
	if loc+n > uintptr(len(elems)) {
		panic(fmt.Sprintf("objctest: range [%d, %d] beyond bounds of %d", loc, n, len(elems)))
	}
	var idx []uintptr
	for i := loc; i < loc+n; i++ {
		match := uintptr(elems[i]) == target
		if !identical && !match {
			match = r.Send(elems[i], r.RegisterName("isEqual:"), target) != 0
		}
		if match {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return
	}
	r.removeAt(arr, func(current []objc.ID) []uintptr {
		// indices were computed on an identical snapshot; the stand-in is
		// not defended against concurrent mutation, matching the foreign
		// runtime's own rules
		return idx
	})
}

func (r *Runtime) describeArray(arr objc.ID) string {
	var parts []string
	for _, e := range r.elemsOf(arr) {
		desc := r.Send(e, r.RegisterName("description"))
		parts = append(parts, r.GoString(objc.ID(desc)))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
