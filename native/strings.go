package native

import "unsafe"

// String is an NGS_String output. The zero String holds nothing.
type String struct {
	rt  *Runtime
	ref uintptr
}

// NewString returns an empty String whose Slot can receive a native string.
func (rt *Runtime) NewString() *String { return &String{rt: rt} }

// Slot returns the output argument that receives the string.
func (s *String) Slot() Arg { return Ptr(unsafe.Pointer(&s.ref)) }

// Bytes copies the contents of the string.
func (s *String) Bytes() ([]byte, error) {
	if s.ref == 0 {
		return nil, nil
	}
	var (
		data unsafe.Pointer
		size uintptr
	)
	if status, err := s.rt.stringGetData.Raw(Handle(s.ref), Ptr(unsafe.Pointer(&data))); err != nil {
		return nil, err
	} else if status != 0 {
		return nil, newError(SymStringGetData, status, "")
	}
	if status, err := s.rt.stringGetSize.Raw(Handle(s.ref), Ptr(unsafe.Pointer(&size))); err != nil {
		return nil, err
	} else if status != 0 {
		return nil, newError(SymStringGetSize, status, "")
	}
	if data == nil {
		return []byte{}, nil
	}
	return GoBytes(data, int(size)), nil
}

// Release frees the native string. It is a no-op on an empty String.
func (s *String) Release() error {
	ref := s.ref
	if ref == 0 {
		return nil
	}
	s.ref = 0
	return s.rt.release(ref)
}
