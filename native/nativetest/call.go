package nativetest

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/grailbio/ngs/native"
)

// Call gives a Func access to the arguments of one native call. Argument
// indexes count the parameters in order, starting with the object handle.
type Call struct {
	lib   *Lib
	entry *native.Entry
	args  []native.Arg
}

// Symbol returns the entry point being called.
func (c *Call) Symbol() string { return c.entry.Symbol }

// Handle returns argument i as an object handle.
func (c *Call) Handle(i int) uintptr { return c.args[i].Word() }

// Object returns the object behind handle argument i. Like the real library
// it rejects null and dangling handles.
func (c *Call) Object(i int) (interface{}, error) {
	h := c.Handle(i)
	if h == 0 {
		return nil, fmt.Errorf("NULL pRef parameter")
	}
	v, ok := c.lib.Value(h)
	if !ok {
		return nil, fmt.Errorf("use of released object %#x", h)
	}
	return v, nil
}

// Self returns the object the call acts upon. For an *Iter this is the
// current item.
func (c *Call) Self() (interface{}, error) {
	v, err := c.Object(0)
	if err != nil {
		return nil, err
	}
	if it, ok := v.(*Iter); ok {
		return it.Current()
	}
	return v, nil
}

// Uint32 returns argument i.
func (c *Call) Uint32(i int) uint32 { return uint32(c.args[i].Word()) }

// Uint64 returns argument i.
func (c *Call) Uint64(i int) uint64 { return uint64(c.args[i].Word()) }

// Int32 returns argument i.
func (c *Call) Int32(i int) int32 { return int32(c.args[i].Word()) }

// Int64 returns argument i.
func (c *Call) Int64(i int) int64 { return int64(c.args[i].Word()) }

// Bool returns argument i.
func (c *Call) Bool(i int) bool { return int32(c.args[i].Word()) != 0 }

// CString returns argument i.
func (c *Call) CString(i int) string { return native.GoString(c.args[i].Addr()) }

func (c *Call) out() unsafe.Pointer { return c.args[len(c.entry.In)].Addr() }

// SetHandle stores h in the output slot. Ownership of the reference passes
// to the caller.
func (c *Call) SetHandle(h uintptr) { *(*uintptr)(c.out()) = h }

// SetObject registers v and stores its handle in the output slot.
func (c *Call) SetObject(v interface{}) { c.SetHandle(c.lib.NewObject(v)) }

// SetString stores a new NGS_String holding s in the output slot.
func (c *Call) SetString(s string) { c.SetHandle(c.lib.NewString(s)) }

// SetUint32 stores v in the output slot.
func (c *Call) SetUint32(v uint32) { *(*uint32)(c.out()) = v }

// SetUint64 stores v in the output slot.
func (c *Call) SetUint64(v uint64) { *(*uint64)(c.out()) = v }

// SetInt32 stores v in the output slot.
func (c *Call) SetInt32(v int32) { *(*int32)(c.out()) = v }

// SetInt64 stores v in the output slot.
func (c *Call) SetInt64(v int64) { *(*int64)(c.out()) = v }

// SetBool stores a C int flag in the output slot.
func (c *Call) SetBool(v bool) {
	var i int32
	if v {
		i = 1
	}
	*(*int32)(c.out()) = i
}

// SetChar stores v in the output slot.
func (c *Call) SetChar(v byte) { *(*byte)(c.out()) = v }

// SetFloat64 stores v in the output slot.
func (c *Call) SetFloat64(v float64) { *(*uint64)(c.out()) = math.Float64bits(v) }

// Iter is a native cursor. Its current item is valid only after Next
// returned true.
type Iter struct {
	Items []interface{}
	pos   int
}

// NewIter returns a cursor positioned before items[0].
func NewIter(items ...interface{}) *Iter { return &Iter{Items: items} }

// Next advances the cursor.
func (it *Iter) Next() bool {
	if it.pos <= len(it.Items) {
		it.pos++
	}
	return it.pos <= len(it.Items)
}

// Current returns the item under the cursor.
func (it *Iter) Current() (interface{}, error) {
	switch {
	case it.pos == 0:
		return nil, fmt.Errorf("iterator accessed before first invocation of nextObject()")
	case it.pos > len(it.Items):
		return nil, fmt.Errorf("no more items")
	}
	return it.Items[it.pos-1], nil
}

// IterNext implements an *IteratorNext entry point for *Iter objects.
func IterNext(c *Call) error {
	v, err := c.Object(0)
	if err != nil {
		return err
	}
	it, ok := v.(*Iter)
	if !ok {
		return fmt.Errorf("%T is not an iterator", v)
	}
	c.SetBool(it.Next())
	return nil
}
