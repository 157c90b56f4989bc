package objc

import "errors"

// ErrNullHandle is returned when acquiring or adopting a null pointer.
// It is the bridge's only recoverable error: class-name collisions and
// registry misuse are programmer errors and panic instead, and foreign
// dispatch failures pass through untouched.
var ErrNullHandle = errors.New("objc: null handle")
