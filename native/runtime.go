package native

import (
	"bytes"
	"unsafe"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// errBufSize is the size of the message buffer passed to the engine's
// constructors.
const errBufSize = 4096

// Runtime is the bound entry point table of one engine/sdk library pair.
type Runtime struct {
	engine, sdk Library
	funcs       map[string]*Func

	stringGetData, stringGetSize *Func
	rawStringRelease             *Func
	refcountRelease              *Func
	readCollectionMake           *Func
	referenceSequenceMake        *Func
}

// NewRuntime binds every entry in Entries. It fails if a required symbol is
// missing from its library.
func NewRuntime(engine, sdk Library) (*Runtime, error) {
	rt := &Runtime{engine: engine, sdk: sdk, funcs: make(map[string]*Func, len(Entries))}
	for i := range Entries {
		e := &Entries[i]
		lib := sdk
		if e.Lib == Engine {
			lib = engine
		}
		f, err := rt.bind(lib, e)
		if err != nil {
			return nil, errors.E(err, "bind", lib.Path())
		}
		rt.funcs[e.Symbol] = f
	}
	rt.stringGetData = rt.funcs[SymStringGetData]
	rt.stringGetSize = rt.funcs[SymStringGetSize]
	rt.rawStringRelease = rt.funcs[SymRawStringRelease]
	rt.refcountRelease = rt.funcs[SymRefcountRelease]
	rt.readCollectionMake = rt.funcs[SymReadCollectionMake]
	rt.referenceSequenceMake = rt.funcs[SymReferenceSequenceMake]
	return rt, nil
}

// Engine returns the engine library.
func (rt *Runtime) Engine() Library { return rt.engine }

// SDK returns the sdk library.
func (rt *Runtime) SDK() Library { return rt.sdk }

// Func returns the bound entry point. It panics if symbol is not in Entries.
func (rt *Runtime) Func(symbol string) *Func {
	f, ok := rt.funcs[symbol]
	if !ok {
		log.Panicf("native: unknown entry point %s", symbol)
	}
	return f
}

// Has reports whether symbol is in the table and exported by its library.
func (rt *Runtime) Has(symbol string) bool {
	f, ok := rt.funcs[symbol]
	return ok && f.Bound()
}

func (rt *Runtime) release(h uintptr) error {
	return rt.refcountRelease.Call(Handle(h))
}

// Scalar is the set of value types returned through output slots.
type Scalar interface {
	~int8 | ~uint8 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float64 | ~uintptr
}

// Get calls a checked entry point whose output slot holds a T. The output is
// the zero value when the call fails.
func Get[T Scalar](rt *Runtime, symbol string, args ...Arg) (T, error) {
	var out T
	f := rt.Func(symbol)
	if f.Entry.Out.Size() != unsafe.Sizeof(out) {
		log.Panicf("native: %s: %v output read as %T", symbol, f.Entry.Out, out)
	}
	if err := f.Call(append(args, Ptr(unsafe.Pointer(&out)))...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// GetBool calls an entry point that returns a C int flag.
func (rt *Runtime) GetBool(symbol string, args ...Arg) (bool, error) {
	v, err := Get[int32](rt, symbol, args...)
	return v != 0, err
}

// GetHandle calls an entry point that returns a new object reference. The
// caller owns the result.
func (rt *Runtime) GetHandle(symbol string, args ...Arg) (uintptr, error) {
	return Get[uintptr](rt, symbol, args...)
}

// GetBytes calls an entry point that returns an NGS_String and copies its
// contents. The native string is released on every path.
func (rt *Runtime) GetBytes(symbol string, args ...Arg) (b []byte, err error) {
	s := rt.NewString()
	defer func() {
		if e := s.Release(); e != nil && err == nil {
			err = e
		}
	}()
	if err = rt.Func(symbol).Call(append(args, s.Slot())...); err != nil {
		return nil, err
	}
	return s.Bytes()
}

// GetString is GetBytes for text.
func (rt *Runtime) GetString(symbol string, args ...Arg) (string, error) {
	b, err := rt.GetBytes(symbol, args...)
	return string(b), err
}

// Next advances the iterator h. It returns false at the end of the sequence.
func (rt *Runtime) Next(symbol string, h uintptr) (bool, error) {
	return rt.GetBool(symbol, Handle(h))
}

// MakeReadCollection opens the read collection named by spec, an accession
// or a path. The caller owns the result.
func (rt *Runtime) MakeReadCollection(spec string) (uintptr, error) {
	return rt.make(rt.readCollectionMake, spec)
}

// MakeReferenceSequence opens a reference sequence by accession. It fails
// with errors.NotSupported on engines that do not export the constructor.
func (rt *Runtime) MakeReferenceSequence(spec string) (uintptr, error) {
	return rt.make(rt.referenceSequenceMake, spec)
}

func (rt *Runtime) make(f *Func, spec string) (uintptr, error) {
	var (
		h   uintptr
		buf = make([]byte, errBufSize)
	)
	status, err := f.Raw(CString(spec), Ptr(unsafe.Pointer(&h)), Ptr(unsafe.Pointer(&buf[0])), Uint64(uint64(len(buf))))
	if err != nil {
		return 0, err
	}
	if n := bytes.IndexByte(buf, 0); n != 0 || status != 0 {
		if n < 0 {
			n = len(buf)
		}
		if h != 0 {
			_ = rt.release(h)
		}
		return 0, newError(f.Entry.Symbol, status, string(buf[:n]))
	}
	return h, nil
}
