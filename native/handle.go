package native

import "sync/atomic"

// Ref owns one reference to a native object. It is either empty or live;
// Release moves a live Ref back to empty and drops the native reference
// exactly once, no matter how many times Release is called or from where.
type Ref struct {
	rt *Runtime
	h  atomic.Uintptr
}

// NewRef returns a Ref owning h. A zero h yields an empty Ref.
func NewRef(rt *Runtime, h uintptr) *Ref {
	r := &Ref{rt: rt}
	r.h.Store(h)
	return r
}

// Runtime returns the runtime the reference belongs to.
func (r *Ref) Runtime() *Runtime { return r.rt }

// Handle returns the native object, or 0 if the Ref is empty.
func (r *Ref) Handle() uintptr { return r.h.Load() }

// Live reports whether the Ref holds an object.
func (r *Ref) Live() bool { return r.h.Load() != 0 }

// Acquire makes r own h, releasing the previously owned object if any.
func (r *Ref) Acquire(h uintptr) error {
	if old := r.h.Swap(h); old != 0 {
		return r.rt.release(old)
	}
	return nil
}

// Release drops the native reference. The Ref is empty afterwards even if
// the library reports an error. Releasing an empty Ref does nothing.
func (r *Ref) Release() error {
	old := r.h.Swap(0)
	if old == 0 {
		return nil
	}
	return r.rt.release(old)
}

// Close is Release, for use with defer and io.Closer.
func (r *Ref) Close() error { return r.Release() }
