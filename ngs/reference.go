package ngs

import "github.com/grailbio/ngs/native"

// Reference is a reference sequence together with the alignments of a read
// collection on it.
type Reference struct {
	object
}

func wrapReference(o object) *Reference { return &Reference{o} }

// CommonName returns the name used in the collection, e.g. "chr1".
func (r *Reference) CommonName() (string, error) { return r.str("PY_NGS_ReferenceGetCommonName") }

// CanonicalName returns the accession, e.g. "NC_000001.11".
func (r *Reference) CanonicalName() (string, error) {
	return r.str("PY_NGS_ReferenceGetCanonicalName")
}

// IsCircular reports whether the sequence is circular.
func (r *Reference) IsCircular() (bool, error) { return r.flag("PY_NGS_ReferenceGetIsCircular") }

// Length returns the length of the sequence.
func (r *Reference) Length() (uint64, error) {
	return get[uint64](&r.object, "PY_NGS_ReferenceGetLength")
}

// ReferenceBases returns length bases starting at the 0-based offset.
func (r *Reference) ReferenceBases(offset, length uint64) (string, error) {
	return r.str("PY_NGS_ReferenceGetReferenceBases", native.Uint64(offset), native.Uint64(length))
}

// ReferenceChunk is ReferenceBases limited to one storage chunk, which avoids
// copying.
func (r *Reference) ReferenceChunk(offset, length uint64) (string, error) {
	return r.str("PY_NGS_ReferenceGetReferenceChunk", native.Uint64(offset), native.Uint64(length))
}

// Alignment returns the alignment with the given ID.
func (r *Reference) Alignment(id string) (*Alignment, error) {
	return child(&r.object, wrapAlignment, "PY_NGS_ReferenceGetAlignment", native.CString(id))
}

// Alignments returns an iterator over the alignments on the reference.
func (r *Reference) Alignments(category AlignmentCategory) (*AlignmentIterator, error) {
	return child(&r.object, wrapAlignmentIterator, "PY_NGS_ReferenceGetAlignments", native.Uint32(uint32(category)))
}

// AlignmentSlice returns an iterator over the alignments that overlap
// [start, start+length).
func (r *Reference) AlignmentSlice(start int64, length uint64, category AlignmentCategory) (*AlignmentIterator, error) {
	return child(&r.object, wrapAlignmentIterator, "PY_NGS_ReferenceGetAlignmentSlice",
		native.Int64(start), native.Uint64(length), native.Uint32(uint32(category)))
}

// Pileups returns an iterator over every position of the reference.
func (r *Reference) Pileups(category AlignmentCategory) (*PileupIterator, error) {
	return child(&r.object, wrapPileupIterator, "PY_NGS_ReferenceGetPileups", native.Uint32(uint32(category)))
}

// FilteredPileups is Pileups over the alignments selected by filters and
// the mapping quality cutoff.
func (r *Reference) FilteredPileups(category AlignmentCategory, filters AlignmentFilter, mappingQuality int32) (*PileupIterator, error) {
	return child(&r.object, wrapPileupIterator, "PY_NGS_ReferenceGetFilteredPileups",
		native.Uint32(uint32(category)), native.Uint32(uint32(filters)), native.Int32(mappingQuality))
}

// PileupSlice returns an iterator over the positions [start, start+length).
func (r *Reference) PileupSlice(start int64, length uint64, category AlignmentCategory) (*PileupIterator, error) {
	return child(&r.object, wrapPileupIterator, "PY_NGS_ReferenceGetPileupSlice",
		native.Int64(start), native.Uint64(length), native.Uint32(uint32(category)))
}

// FilteredPileupSlice is PileupSlice with the filters of FilteredPileups.
func (r *Reference) FilteredPileupSlice(start int64, length uint64, category AlignmentCategory, filters AlignmentFilter, mappingQuality int32) (*PileupIterator, error) {
	return child(&r.object, wrapPileupIterator, "PY_NGS_ReferenceGetFilteredPileupSlice",
		native.Int64(start), native.Uint64(length), native.Uint32(uint32(category)),
		native.Uint32(uint32(filters)), native.Int32(mappingQuality))
}

// ReferenceIterator iterates over references.
type ReferenceIterator struct {
	Reference
}

func wrapReferenceIterator(o object) *ReferenceIterator { return &ReferenceIterator{Reference{o}} }

// Next advances to the next reference.
func (it *ReferenceIterator) Next() (bool, error) { return it.next("PY_NGS_ReferenceIteratorNext") }

// ReferenceSequence is a reference opened on its own, without a read
// collection.
type ReferenceSequence struct {
	object
}

// CanonicalName returns the accession.
func (s *ReferenceSequence) CanonicalName() (string, error) {
	return s.str("PY_NGS_ReferenceSequenceGetCanonicalName")
}

// IsCircular reports whether the sequence is circular.
func (s *ReferenceSequence) IsCircular() (bool, error) {
	return s.flag("PY_NGS_ReferenceSequenceGetIsCircular")
}

// Length returns the length of the sequence.
func (s *ReferenceSequence) Length() (uint64, error) {
	return get[uint64](&s.object, "PY_NGS_ReferenceSequenceGetLength")
}

// ReferenceBases returns length bases starting at the 0-based offset.
func (s *ReferenceSequence) ReferenceBases(offset, length uint64) (string, error) {
	return s.str("PY_NGS_ReferenceSequenceGetReferenceBases", native.Uint64(offset), native.Uint64(length))
}

// ReferenceChunk returns bases from one storage chunk.
func (s *ReferenceSequence) ReferenceChunk(offset, length uint64) (string, error) {
	return s.str("PY_NGS_ReferenceSequenceGetReferenceChunk", native.Uint64(offset), native.Uint64(length))
}
