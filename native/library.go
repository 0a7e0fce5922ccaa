package native

import "unsafe"

// Library is a loaded shared library.
type Library interface {
	// Path returns the file the library was loaded from.
	Path() string
	// Lookup resolves the named C function.
	Lookup(symbol string) (Proc, error)
}

// Proc invokes a C function that returns a C int. Every argument occupies one
// integer register.
type Proc func(args []Arg) int32

// Arg is one machine-word argument of a native call. Pointer arguments are
// kept as unsafe.Pointer so that the memory they refer to stays reachable
// until the call returns.
type Arg struct {
	word uintptr
	ptr  unsafe.Pointer
}

// Word returns the register value of the argument.
func (a Arg) Word() uintptr {
	if a.ptr != nil {
		return uintptr(a.ptr)
	}
	return a.word
}

// Addr returns the pointer held by the argument, or nil for by-value
// arguments.
func (a Arg) Addr() unsafe.Pointer { return a.ptr }

// Handle passes an opaque native object.
func Handle(h uintptr) Arg { return Arg{word: h} }

// Uint32 passes a C uint32_t.
func Uint32(v uint32) Arg { return Arg{word: uintptr(v)} }

// Uint64 passes a C uint64_t.
func Uint64(v uint64) Arg { return Arg{word: uintptr(v)} }

// Int32 passes a C int32_t.
func Int32(v int32) Arg { return Arg{word: uintptr(int64(v))} }

// Int64 passes a C int64_t.
func Int64(v int64) Arg { return Arg{word: uintptr(v)} }

// Bool passes a C int holding 0 or 1.
func Bool(v bool) Arg {
	if v {
		return Arg{word: 1}
	}
	return Arg{}
}

// Ptr passes a pointer, typically an output slot.
func Ptr(p unsafe.Pointer) Arg { return Arg{ptr: p} }

// CString passes s as a NUL-terminated C string. The copy lives as long as
// the Arg.
func CString(s string) Arg {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return Arg{ptr: unsafe.Pointer(&b[0])}
}

// GoString copies a NUL-terminated C string.
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// GoBytes copies n bytes starting at p.
func GoBytes(p unsafe.Pointer, n int) []byte {
	b := make([]byte, n)
	if n > 0 {
		copy(b, unsafe.Slice((*byte)(p), n))
	}
	return b
}
