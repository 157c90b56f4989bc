package objc

import "sync"

// Selectors are interned once per process and never released, mirroring the
// foreign runtime's own selector table. The cache keeps hot dispatch paths
// from round-tripping through the ABI for every send.
var selectors sync.Map // string -> Sel

// SelectorFor interns name and returns its selector.
func SelectorFor(name string) Sel {
	if v, ok := selectors.Load(name); ok {
		return v.(Sel)
	}
	sel := Runtime().RegisterName(name)
	actual, _ := selectors.LoadOrStore(name, sel)
	return actual.(Sel)
}

// SelectorName returns the name sel was interned under.
func SelectorName(sel Sel) string {
	return Runtime().SelName(sel)
}
