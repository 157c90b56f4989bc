package objc

// Callback trampoline: lends an owned Go closure to the foreign runtime. The
// closure is boxed, its handle is stashed in the bridge ivar of a dedicated
// invoker instance, and the target control is pointed at the invoker's
// perform: selector. When the foreign runtime delivers the event, the
// trampoline unboxes the closure and calls it synchronously on whatever
// thread is delivering; keep trampoline bodies short. The box is freed
// exactly once, by the invoker's generated dealloc hook, so every path that
// creates one must end in that hook firing.

// callbackCell is the boxed closure plus its optional drop observer.
type callbackCell struct {
	call func()
	drop func()
}

// Finalize runs when the invoker deallocates. The reclaim hook fires once,
// so drop fires once.
func (c *callbackCell) Finalize() {
	if c.drop != nil {
		c.drop()
	}
}

// ActionHandler owns the invoker object that forwards a control's action to
// a Go closure. Releasing the handler releases the invoker; the foreign
// runtime's deallocation of the invoker reclaims the closure.
//
// The target keeps only a weak reference to the invoker, matching the
// foreign runtime's target/action convention, so the handler must stay alive
// for as long as the control may fire.
type ActionHandler struct {
	invoker Object
}

// AttachCallback wires action to the control's action/target slots and
// returns the owning handler.
func AttachCallback(target Object, action func()) *ActionHandler {
	return AttachCallbackWithDrop(target, action, nil)
}

// AttachCallbackWithDrop additionally registers drop, which runs exactly
// once when the invoker deallocates. Tests use it to verify the must-call
// reclaim invariant under release pressure.
func AttachCallbackWithDrop(target Object, action, drop func()) *ActionHandler {
	if action == nil {
		panic("objc: AttachCallback with nil action")
	}
	invoker := actionHandlerClass().New()
	BindState(invoker.Raw(), &callbackCell{call: action, drop: drop})

	SendVoid(target.Raw(), SelectorFor("setAction:"), uintptr(SelectorFor("perform:")))
	SendVoid(target.Raw(), SelectorFor("setTarget:"), uintptr(invoker.Raw()))
	log.Debugf("attached callback to %#x via invoker %#x", target.Raw(), invoker.Raw())

	return &ActionHandler{invoker: invoker}
}

// Invoker exposes the invoker object, borrowing the handler's reference.
func (h *ActionHandler) Invoker() Object {
	return h.invoker
}

// Release gives up the handler's reference to the invoker. Once the foreign
// runtime holds no further references the invoker deallocates and the boxed
// closure is dropped.
func (h *ActionHandler) Release() {
	h.invoker.Release()
}

var actionHandlerBuilder = NewClassBuilder("GoActionHandler").
	Method("perform:", performAction)

func actionHandlerClass() Class {
	return actionHandlerBuilder.Register()
}

// performAction is the trampoline the foreign runtime invokes.
func performAction(recv ID, _ Sel, _ []uintptr) uintptr {
	v, ok := BoundState(recv)
	if !ok {
		return 0
	}
	if cell, ok := v.(*callbackCell); ok {
		cell.call()
	}
	return 0
}
