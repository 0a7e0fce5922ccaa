package ngs

import "github.com/grailbio/ngs/native"

// Fragment is one sequenced piece of a read, e.g. one mate of a pair.
type Fragment struct {
	object
}

// FragmentID returns the unique ID of the fragment.
func (f *Fragment) FragmentID() (string, error) {
	return f.str("PY_NGS_FragmentGetFragmentId")
}

// FragmentBases returns length bases starting at offset. Use Remaining for
// the rest of the fragment.
func (f *Fragment) FragmentBases(offset, length uint64) (string, error) {
	return f.str("PY_NGS_FragmentGetFragmentBases", native.Uint64(offset), native.Uint64(length))
}

// FragmentQualities returns the phred+33 qualities of the bases selected as
// in FragmentBases.
func (f *Fragment) FragmentQualities(offset, length uint64) (string, error) {
	return f.str("PY_NGS_FragmentGetFragmentQualities", native.Uint64(offset), native.Uint64(length))
}

// Read is a sequenced read. It iterates over its own fragments: call
// NextFragment before using the Fragment methods.
type Read struct {
	Fragment
}

func wrapRead(o object) *Read { return &Read{Fragment{o}} }

// NextFragment advances to the next fragment of the read.
func (r *Read) NextFragment() (bool, error) {
	return r.next("PY_NGS_FragmentIteratorNext")
}

// ReadID returns the unique ID of the read.
func (r *Read) ReadID() (string, error) { return r.str("PY_NGS_ReadGetReadId") }

// NumFragments returns the number of biological fragments.
func (r *Read) NumFragments() (uint32, error) {
	return get[uint32](&r.object, "PY_NGS_ReadGetNumFragments")
}

// FragmentIsAligned reports whether the 0-based fragment is aligned.
func (r *Read) FragmentIsAligned(index uint32) (bool, error) {
	return r.flag("PY_NGS_ReadFragmentIsAligned", native.Uint32(index))
}

// Category returns how the read aligned.
func (r *Read) Category() (ReadCategory, error) {
	return get[ReadCategory](&r.object, "PY_NGS_ReadGetReadCategory")
}

// ReadGroup returns the name of the read's group.
func (r *Read) ReadGroup() (string, error) { return r.str("PY_NGS_ReadGetReadGroup") }

// ReadName returns the name assigned by the sequencer.
func (r *Read) ReadName() (string, error) { return r.str("PY_NGS_ReadGetReadName") }

// ReadBases returns length bases of the whole read starting at offset.
func (r *Read) ReadBases(offset, length uint64) (string, error) {
	return r.str("PY_NGS_ReadGetReadBases", native.Uint64(offset), native.Uint64(length))
}

// ReadQualities returns the phred+33 qualities selected as in ReadBases.
func (r *Read) ReadQualities(offset, length uint64) (string, error) {
	return r.str("PY_NGS_ReadGetReadQualities", native.Uint64(offset), native.Uint64(length))
}

// ReadIterator iterates over reads. The Read methods act on the current
// read.
type ReadIterator struct {
	Read
}

func wrapReadIterator(o object) *ReadIterator { return &ReadIterator{Read{Fragment{o}}} }

// Next advances to the next read.
func (it *ReadIterator) Next() (bool, error) { return it.next("PY_NGS_ReadIteratorNext") }
