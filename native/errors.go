package native

import (
	"fmt"
	"unsafe"

	"github.com/grailbio/base/errors"
)

// Error is the failure of a native call. Every native failure surfaces as an
// *Error; Kind is errors.Other unless the message can be classified.
type Error struct {
	// Symbol names the entry point.
	Symbol string
	// Status is the C return value.
	Status int32
	// Message is the text the library reported.
	Message string
	Kind    errors.Kind
}

// Error implements error. The text is the native message.
func (e *Error) Error() string { return e.Message }

// IsNative reports whether err is a native call failure.
func IsNative(err error) bool {
	_, ok := err.(*Error)
	return ok
}

func newError(symbol string, status int32, msg string) *Error {
	if msg == "" {
		msg = fmt.Sprintf("%s failed with status %d", symbol, status)
	}
	return &Error{Symbol: symbol, Status: status, Message: msg, Kind: errors.Other}
}

// check is the error channel shared by every Checked call. A message is
// reported even when the status is zero.
func (rt *Runtime) check(symbol string, status int32, msg unsafe.Pointer) error {
	if status == 0 && msg == nil {
		return nil
	}
	var text string
	if msg != nil {
		text = GoString(msg)
		rt.releaseRaw(msg)
	}
	if status == 0 && text == "" {
		return nil
	}
	return newError(symbol, status, text)
}

func (rt *Runtime) releaseRaw(p unsafe.Pointer) {
	// The status is not interesting: a failed release cannot be reported
	// through another error string.
	_, _ = rt.rawStringRelease.Raw(Ptr(p))
}
