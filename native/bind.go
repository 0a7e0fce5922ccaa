package native

import (
	"unsafe"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Func is an entry point bound to a loaded library.
type Func struct {
	Entry *Entry
	proc  Proc
	rt    *Runtime
}

// bind resolves e in lib. A missing symbol is an error unless e is optional,
// in which case the returned Func is unbound.
func (rt *Runtime) bind(lib Library, e *Entry) (*Func, error) {
	proc, err := lib.Lookup(e.Symbol)
	if err != nil {
		if e.Optional {
			log.Debug.Printf("%s: optional entry point %s not found: %v", lib.Path(), e.Symbol, err)
			return &Func{Entry: e, rt: rt}, nil
		}
		return nil, errors.E(errors.NotExist, "bind", e.Symbol, err)
	}
	return &Func{Entry: e, proc: proc, rt: rt}, nil
}

// Bound reports whether the entry point was found in the library.
func (f *Func) Bound() bool { return f.proc != nil }

func (f *Func) unbound() error {
	return errors.E(errors.NotSupported, f.Entry.Symbol, "is not exported by this version of", f.Entry.Lib.Name())
}

func (f *Func) checkArgs(policy Policy, args []Arg) {
	if f.Entry.Policy != policy {
		log.Panicf("native: %s: wrong call discipline for %v", f.Entry.Symbol, f.Entry)
	}
	if len(args) != f.Entry.NArgs() {
		log.Panicf("native: %s: got %d args, want %d (%v)", f.Entry.Symbol, len(args), f.Entry.NArgs(), f.Entry)
	}
}

// Call invokes a Checked entry point. The error slot is appended to args and
// routed through the error channel: a nonzero status or a message in the slot
// yield an *Error, and the caller must then ignore the output slot.
func (f *Func) Call(args ...Arg) error {
	f.checkArgs(Checked, args)
	if f.proc == nil {
		return f.unbound()
	}
	var msg unsafe.Pointer
	status := f.proc(append(args, Ptr(unsafe.Pointer(&msg))))
	return f.rt.check(f.Entry.Symbol, status, msg)
}

// Raw invokes an Unchecked or Discard entry point and returns its status.
func (f *Func) Raw(args ...Arg) (int32, error) {
	if f.Entry.Policy == Checked {
		log.Panicf("native: %s: checked entry point called raw", f.Entry.Symbol)
	}
	if len(args) != f.Entry.NArgs() {
		log.Panicf("native: %s: got %d args, want %d (%v)", f.Entry.Symbol, len(args), f.Entry.NArgs(), f.Entry)
	}
	if f.proc == nil {
		return 0, f.unbound()
	}
	if f.Entry.Policy == Unchecked {
		return f.proc(args), nil
	}
	var msg unsafe.Pointer
	status := f.proc(append(args, Ptr(unsafe.Pointer(&msg))))
	if msg != nil {
		// Releasing it would recurse into this entry point.
		log.Debug.Printf("native: %s: dropped error %q", f.Entry.Symbol, GoString(msg))
	}
	return status, nil
}
