package objc

import (
	"reflect"
	"strings"
	"unicode"
)

// Declarative binding: instead of adding IMPs one by one, a Go struct type
// declares its foreign surface through its method set. Every exported method
// with the shape
//
//	func (s *S) Name(recv objc.ID, args []uintptr) uintptr
//
// is bound as an instance method. The selector derives from the method name
// (leading rune lowercased, underscores become colons), so
// WindowDidResize_ binds as windowDidResize:. A type can override the
// derivation by implementing SelectorNamer.
//
// At dispatch the bound instance's Go state is recovered from the bridge
// ivar, so each foreign instance carries its own struct value.

// SelectorNamer overrides derived selector names. Keys are Go method names,
// values the selectors to bind them under; methods absent from the map keep
// the derived name.
type SelectorNamer interface {
	Selectors() map[string]string
}

var (
	idType    = reflect.TypeOf(ID(0))
	wordsType = reflect.TypeOf([]uintptr(nil))
	wordType  = reflect.TypeOf(uintptr(0))
)

// BindStruct adds prototype's bindable methods to the builder. prototype is
// only inspected for its type; per-instance state is attached with NewBound.
func BindStruct(cb *ClassBuilder, prototype any) *ClassBuilder {
	t := reflect.TypeOf(prototype)
	var overrides map[string]string
	if n, ok := prototype.(SelectorNamer); ok {
		overrides = n.Selectors()
	}

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !bindable(m) {
			continue
		}
		name := selectorForMethod(m.Name)
		if o, ok := overrides[m.Name]; ok {
			name = o
		}
		index := m.Index
		cb.Method(name, func(recv ID, sel Sel, args []uintptr) uintptr {
			state, ok := BoundState(recv)
			if !ok {
				return 0
			}
			out := reflect.ValueOf(state).Method(index).Call([]reflect.Value{
				reflect.ValueOf(recv),
				reflect.ValueOf(args),
			})
			return out[0].Interface().(uintptr)
		})
	}
	return cb
}

// NewBound allocates an instance of cls and boxes state into it. If state
// implements Finalizer it is finalized when the instance deallocates.
func NewBound(cls Class, state any) Object {
	obj := cls.New()
	BindState(obj.Raw(), state)
	return obj
}

// bindable reports whether a method matches the bound shape: a Go receiver
// followed by the foreign receiver and the raw argument words.
func bindable(m reflect.Method) bool {
	mt := m.Type
	return mt.NumIn() == 3 && mt.NumOut() == 1 &&
		mt.In(1) == idType && mt.In(2) == wordsType && mt.Out(0) == wordType
}

// selectorForMethod derives a selector from a Go method name: the leading
// rune is lowercased and each underscore becomes a colon, so
// InsertObject_AtIndex_ derives insertObject:atIndex:.
func selectorForMethod(name string) string {
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return strings.ReplaceAll(string(runes), "_", ":")
}
