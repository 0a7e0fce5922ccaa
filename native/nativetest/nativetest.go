// Package nativetest provides an in-process fake of the NGS libraries. It
// implements the calling convention of package native with Go functions, so
// that code built on a native.Runtime can be tested without libngs-sdk.
package nativetest

import (
	"fmt"
	"sort"
	"sync"
	"unsafe"

	"github.com/grailbio/base/log"
	"github.com/grailbio/ngs/native"
)

// Func implements one entry point. A non-nil error is reported through the
// error slot (or error buffer) with status 1, unless it is a *Status.
type Func func(c *Call) error

// Status is an error that controls the status code and message reported by a
// Func. Status{Code: 0, Message: "x"} reports success with a message.
type Status struct {
	Code    int32
	Message string
}

func (s *Status) Error() string { return s.Message }

type object struct {
	value interface{}
	refs  int
}

// Lib is a fake library. It serves as both the engine and the sdk.
type Lib struct {
	path string

	mu       sync.Mutex
	funcs    map[string]Func
	objects  map[uintptr]*object
	next     uintptr
	releases map[uintptr]int
	raw      map[unsafe.Pointer][]byte
	calls    map[string]int
	faults   []string
}

// New returns a fake that exports every entry point in native.Entries. The
// string and reference counting entry points are implemented; all the others
// fail until they are replaced with Def.
func New(path string) *Lib {
	l := &Lib{
		path:     path,
		funcs:    map[string]Func{},
		objects:  map[uintptr]*object{},
		next:     0x1000,
		releases: map[uintptr]int{},
		raw:      map[unsafe.Pointer][]byte{},
		calls:    map[string]int{},
	}
	for _, e := range native.Entries {
		symbol := e.Symbol
		l.funcs[symbol] = func(c *Call) error {
			return fmt.Errorf("%s: not implemented", symbol)
		}
	}
	l.funcs[native.SymStringGetData] = l.stringGetData
	l.funcs[native.SymStringGetSize] = l.stringGetSize
	l.funcs[native.SymRawStringRelease] = l.rawStringRelease
	l.funcs[native.SymRefcountRelease] = l.refcountRelease
	return l
}

// Path implements native.Library.
func (l *Lib) Path() string { return l.path }

// Def installs fn as the implementation of symbol.
func (l *Lib) Def(symbol string, fn Func) {
	if _, ok := native.Lookup(symbol); !ok {
		log.Panicf("nativetest: %s is not a known entry point", symbol)
	}
	l.mu.Lock()
	l.funcs[symbol] = fn
	l.mu.Unlock()
}

// Remove stops exporting symbol.
func (l *Lib) Remove(symbol string) {
	l.mu.Lock()
	delete(l.funcs, symbol)
	l.mu.Unlock()
}

// Lookup implements native.Library.
func (l *Lib) Lookup(symbol string) (native.Proc, error) {
	l.mu.Lock()
	_, ok := l.funcs[symbol]
	l.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: undefined symbol: %s", l.path, symbol)
	}
	e, ok := native.Lookup(symbol)
	if !ok {
		return nil, fmt.Errorf("%s: symbol %s has no table entry", l.path, symbol)
	}
	return func(args []native.Arg) int32 {
		l.mu.Lock()
		fn := l.funcs[symbol]
		l.calls[symbol]++
		l.mu.Unlock()
		return l.invoke(e, fn, args)
	}, nil
}

func (l *Lib) invoke(e *native.Entry, fn Func, args []native.Arg) int32 {
	want := e.NArgs()
	if e.Policy != native.Unchecked {
		want++
	}
	if len(args) != want {
		l.fault("%s: called with %d args, want %d", e.Symbol, len(args), want)
		return 1
	}
	c := &Call{lib: l, entry: e, args: args}
	err := fn(c)
	if err == nil {
		return 0
	}
	status, msg := int32(1), err.Error()
	if s, ok := err.(*Status); ok {
		status, msg = s.Code, s.Message
	}
	switch {
	case len(e.Tail) > 0 && e.Tail[0] == native.Buf:
		n := len(e.In) + 1
		buf := unsafe.Slice((*byte)(args[n].Addr()), int(args[n+1].Word()))
		m := copy(buf[:len(buf)-1], msg)
		buf[m] = 0
	case e.Policy != native.Unchecked && msg != "":
		*(*unsafe.Pointer)(args[len(args)-1].Addr()) = l.newRaw(msg)
	}
	return status
}

func (l *Lib) newRaw(msg string) unsafe.Pointer {
	b := make([]byte, len(msg)+1)
	copy(b, msg)
	p := unsafe.Pointer(&b[0])
	l.mu.Lock()
	l.raw[p] = b
	l.mu.Unlock()
	return p
}

func (l *Lib) fault(format string, args ...interface{}) {
	l.mu.Lock()
	l.faults = append(l.faults, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

// NewObject registers v as a native object with one reference and returns
// its handle.
func (l *Lib) NewObject(v interface{}) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next += 0x10
	l.objects[l.next] = &object{value: v, refs: 1}
	return l.next
}

// NewString registers an NGS_String holding s.
func (l *Lib) NewString(s string) uintptr { return l.NewObject([]byte(s)) }

// AddRef adds a reference to h, as the native side does when it hands out an
// object it keeps internally.
func (l *Lib) AddRef(h uintptr) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o, ok := l.objects[h]; ok {
		o.refs++
	}
	return h
}

// Value returns the object behind h.
func (l *Lib) Value(h uintptr) (interface{}, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.objects[h]
	if !ok {
		return nil, false
	}
	return o.value, true
}

// Releases returns the number of times h was released.
func (l *Lib) Releases(h uintptr) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releases[h]
}

// Calls returns the number of calls made to symbol.
func (l *Lib) Calls(symbol string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[symbol]
}

// Live returns the handles of objects that still have references, in
// allocation order.
func (l *Lib) Live() []uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	var hs []uintptr
	for h := range l.objects {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// PendingErrors returns the number of error strings not released yet.
func (l *Lib) PendingErrors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.raw)
}

// Faults lists calling convention violations: double frees, releases of
// unknown objects and calls with the wrong number of arguments.
func (l *Lib) Faults() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.faults...)
}

func (l *Lib) stringGetData(c *Call) error {
	v, err := c.Self()
	if err != nil {
		return err
	}
	b, ok := v.([]byte)
	if !ok {
		return fmt.Errorf("%T is not a string", v)
	}
	var p unsafe.Pointer
	if len(b) > 0 {
		p = unsafe.Pointer(&b[0])
	}
	*(*unsafe.Pointer)(c.out()) = p
	return nil
}

func (l *Lib) stringGetSize(c *Call) error {
	v, err := c.Self()
	if err != nil {
		return err
	}
	b, ok := v.([]byte)
	if !ok {
		return fmt.Errorf("%T is not a string", v)
	}
	*(*uintptr)(c.out()) = uintptr(len(b))
	return nil
}

func (l *Lib) rawStringRelease(c *Call) error {
	p := c.args[0].Addr()
	l.mu.Lock()
	_, ok := l.raw[p]
	delete(l.raw, p)
	l.mu.Unlock()
	if !ok {
		l.fault("RawStringRelease of unknown string %p", p)
		return fmt.Errorf("unknown string")
	}
	return nil
}

func (l *Lib) refcountRelease(c *Call) error {
	h := c.Handle(0)
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.objects[h]
	if !ok {
		l.faults = append(l.faults, fmt.Sprintf("RefcountRelease of dead object %#x", h))
		return fmt.Errorf("release of dead object %#x", h)
	}
	l.releases[h]++
	if o.refs--; o.refs == 0 {
		delete(l.objects, h)
	}
	return nil
}
