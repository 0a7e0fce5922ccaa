package ngs

import "github.com/grailbio/ngs/native"

// ReadCollection is an opened dataset: its reads, read groups, references and
// alignments.
type ReadCollection struct {
	object
}

// Name returns the simple name of the collection, usually the accession.
func (rc *ReadCollection) Name() (string, error) {
	return rc.str("PY_NGS_ReadCollectionGetName")
}

// ReadGroups returns an iterator over every read group.
func (rc *ReadCollection) ReadGroups() (*ReadGroupIterator, error) {
	return child(&rc.object, wrapReadGroupIterator, "PY_NGS_ReadCollectionGetReadGroups")
}

// HasReadGroup reports whether the named read group exists.
func (rc *ReadCollection) HasReadGroup(name string) (bool, error) {
	return rc.flag("PY_NGS_ReadCollectionHasReadGroup", native.CString(name))
}

// ReadGroup returns the named read group. The default group has the empty
// name.
func (rc *ReadCollection) ReadGroup(name string) (*ReadGroup, error) {
	return child(&rc.object, wrapReadGroup, "PY_NGS_ReadCollectionGetReadGroup", native.CString(name))
}

// References returns an iterator over the references the collection is
// aligned to.
func (rc *ReadCollection) References() (*ReferenceIterator, error) {
	return child(&rc.object, wrapReferenceIterator, "PY_NGS_ReadCollectionGetReferences")
}

// HasReference reports whether spec names a reference of the collection.
func (rc *ReadCollection) HasReference(spec string) (bool, error) {
	return rc.flag("PY_NGS_ReadCollectionHasReference", native.CString(spec))
}

// Reference returns the reference named by spec, either its common or its
// canonical name.
func (rc *ReadCollection) Reference(spec string) (*Reference, error) {
	return child(&rc.object, wrapReference, "PY_NGS_ReadCollectionGetReference", native.CString(spec))
}

// Alignment returns the alignment with the given ID.
func (rc *ReadCollection) Alignment(id string) (*Alignment, error) {
	return child(&rc.object, wrapAlignment, "PY_NGS_ReadCollectionGetAlignment", native.CString(id))
}

// Alignments returns an iterator over all the alignments in category.
func (rc *ReadCollection) Alignments(category AlignmentCategory) (*AlignmentIterator, error) {
	return child(&rc.object, wrapAlignmentIterator, "PY_NGS_ReadCollectionGetAlignments", native.Uint32(uint32(category)))
}

// AlignmentCount returns the number of alignments in category.
func (rc *ReadCollection) AlignmentCount(category AlignmentCategory) (uint64, error) {
	return get[uint64](&rc.object, "PY_NGS_ReadCollectionGetAlignmentCount", native.Uint32(uint32(category)))
}

// AlignmentRange returns an iterator over count alignments starting at the
// 1-based row first.
func (rc *ReadCollection) AlignmentRange(first, count uint64, category AlignmentCategory) (*AlignmentIterator, error) {
	return child(&rc.object, wrapAlignmentIterator, "PY_NGS_ReadCollectionGetAlignmentRange",
		native.Uint64(first), native.Uint64(count), native.Uint32(uint32(category)))
}

// Read returns the read with the given ID.
func (rc *ReadCollection) Read(id string) (*Read, error) {
	return child(&rc.object, wrapRead, "PY_NGS_ReadCollectionGetRead", native.CString(id))
}

// Reads returns an iterator over all the reads in category.
func (rc *ReadCollection) Reads(category ReadCategory) (*ReadIterator, error) {
	return child(&rc.object, wrapReadIterator, "PY_NGS_ReadCollectionGetReads", native.Uint32(uint32(category)))
}

// ReadCount returns the number of reads in category.
func (rc *ReadCollection) ReadCount(category ReadCategory) (uint64, error) {
	return get[uint64](&rc.object, "PY_NGS_ReadCollectionGetReadCount", native.Uint32(uint32(category)))
}

// ReadRange returns an iterator over count reads starting at the 1-based row
// first.
func (rc *ReadCollection) ReadRange(first, count uint64, category ReadCategory) (*ReadIterator, error) {
	return child(&rc.object, wrapReadIterator, "PY_NGS_ReadCollectionGetReadRange",
		native.Uint64(first), native.Uint64(count), native.Uint32(uint32(category)))
}
