package ngs

import (
	"math"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/ngs/native"
)

// Remaining, passed as a length, selects everything up to the end of a
// sequence.
const Remaining uint64 = math.MaxUint64

// object is the part shared by every proxy: one native reference.
type object struct {
	rt  *native.Runtime
	ref *native.Ref
}

func newObject(rt *native.Runtime, h uintptr) object {
	ref := native.NewRef(rt, h)
	runtime.SetFinalizer(ref, finalizeRef)
	return object{rt: rt, ref: ref}
}

func finalizeRef(ref *native.Ref) {
	if !ref.Live() {
		return
	}
	h := ref.Handle()
	log.Debug.Printf("ngs: releasing unclosed object %#x", h)
	if err := ref.Release(); err != nil {
		log.Error.Printf("ngs: release %#x: %v", h, err)
	}
}

// Close releases the native object. Calling Close more than once is
// harmless.
func (o *object) Close() error { return o.ref.Release() }

// args prepends the object's handle. Callers must keep o.ref reachable
// until the native call returns, or the finalizer may release the handle
// while the library is still using it.
func (o *object) args(extra []native.Arg) []native.Arg {
	return append([]native.Arg{native.Handle(o.ref.Handle())}, extra...)
}

func (o *object) str(symbol string, args ...native.Arg) (string, error) {
	defer runtime.KeepAlive(o.ref)
	return o.rt.GetString(symbol, o.args(args)...)
}

func (o *object) flag(symbol string, args ...native.Arg) (bool, error) {
	defer runtime.KeepAlive(o.ref)
	return o.rt.GetBool(symbol, o.args(args)...)
}

func (o *object) next(symbol string) (bool, error) {
	defer runtime.KeepAlive(o.ref)
	return o.rt.Next(symbol, o.ref.Handle())
}

func get[T native.Scalar](o *object, symbol string, args ...native.Arg) (T, error) {
	defer runtime.KeepAlive(o.ref)
	return native.Get[T](o.rt, symbol, o.args(args)...)
}

// child calls an entry point that returns a new object and wraps it.
func child[P any](o *object, wrap func(object) P, symbol string, args ...native.Arg) (P, error) {
	h, err := o.rt.GetHandle(symbol, o.args(args)...)
	runtime.KeepAlive(o.ref)
	if err != nil {
		var zero P
		return zero, err
	}
	return wrap(newObject(o.rt, h)), nil
}
