package ngs

import "github.com/grailbio/ngs/native"

// Alignment is the placement of one fragment on a reference.
type Alignment struct {
	Fragment
}

func wrapAlignment(o object) *Alignment { return &Alignment{Fragment{o}} }

// AlignmentID returns the unique ID of the alignment.
func (a *Alignment) AlignmentID() (string, error) { return a.str("PY_NGS_AlignmentGetAlignmentId") }

// ReferenceSpec returns the name of the reference.
func (a *Alignment) ReferenceSpec() (string, error) {
	return a.str("PY_NGS_AlignmentGetReferenceSpec")
}

// MappingQuality returns the mapping quality.
func (a *Alignment) MappingQuality() (int32, error) {
	return get[int32](&a.object, "PY_NGS_AlignmentGetMappingQuality")
}

// ReferenceBases returns the reference bases covered by the alignment.
func (a *Alignment) ReferenceBases() (string, error) {
	return a.str("PY_NGS_AlignmentGetReferenceBases")
}

// ReadGroup returns the name of the read group.
func (a *Alignment) ReadGroup() (string, error) { return a.str("PY_NGS_AlignmentGetReadGroup") }

// ReadID returns the ID of the aligned read.
func (a *Alignment) ReadID() (string, error) { return a.str("PY_NGS_AlignmentGetReadId") }

// ClippedFragmentBases returns the fragment bases without soft clips.
func (a *Alignment) ClippedFragmentBases() (string, error) {
	return a.str("PY_NGS_AlignmentGetClippedFragmentBases")
}

// ClippedFragmentQualities returns the phred+33 qualities of
// ClippedFragmentBases.
func (a *Alignment) ClippedFragmentQualities() (string, error) {
	return a.str("PY_NGS_AlignmentGetClippedFragmentQualities")
}

// AlignedFragmentBases returns the clipped bases in reference orientation.
func (a *Alignment) AlignedFragmentBases() (string, error) {
	return a.str("PY_NGS_AlignmentGetAlignedFragmentBases")
}

// Category returns whether the alignment is primary or secondary.
func (a *Alignment) Category() (AlignmentCategory, error) {
	return get[AlignmentCategory](&a.object, "PY_NGS_AlignmentGetAlignmentCategory")
}

// Position returns the 0-based start on the reference.
func (a *Alignment) Position() (int64, error) {
	return get[int64](&a.object, "PY_NGS_AlignmentGetAlignmentPosition")
}

// Length returns the length of the projection on the reference.
func (a *Alignment) Length() (uint64, error) {
	return get[uint64](&a.object, "PY_NGS_AlignmentGetAlignmentLength")
}

// IsReversedOrientation reports whether the fragment aligned to the minus
// strand.
func (a *Alignment) IsReversedOrientation() (bool, error) {
	return a.flag("PY_NGS_AlignmentGetIsReversedOrientation")
}

// SoftClip returns the number of soft clipped bases at edge.
func (a *Alignment) SoftClip(edge ClipEdge) (int32, error) {
	return get[int32](&a.object, "PY_NGS_AlignmentGetSoftClip", native.Uint32(uint32(edge)))
}

// TemplateLength returns the observed template length.
func (a *Alignment) TemplateLength() (uint64, error) {
	return get[uint64](&a.object, "PY_NGS_AlignmentGetTemplateLength")
}

// ShortCigar returns the cigar with M for both matches and mismatches.
func (a *Alignment) ShortCigar(clipped bool) (string, error) {
	return a.str("PY_NGS_AlignmentGetShortCigar", native.Bool(clipped))
}

// LongCigar returns the cigar with = and X.
func (a *Alignment) LongCigar(clipped bool) (string, error) {
	return a.str("PY_NGS_AlignmentGetLongCigar", native.Bool(clipped))
}

// RNAOrientation returns '+', '-' or '?' for unknown.
func (a *Alignment) RNAOrientation() (byte, error) {
	return get[byte](&a.object, "PY_NGS_AlignmentGetRNAOrientation")
}

// HasMate reports whether the alignment has a mate.
func (a *Alignment) HasMate() (bool, error) { return a.flag("PY_NGS_AlignmentHasMate") }

// MateAlignmentID returns the ID of the mate.
func (a *Alignment) MateAlignmentID() (string, error) {
	return a.str("PY_NGS_AlignmentGetMateAlignmentId")
}

// MateAlignment returns the mate.
func (a *Alignment) MateAlignment() (*Alignment, error) {
	return child(&a.object, wrapAlignment, "PY_NGS_AlignmentGetMateAlignment")
}

// MateReferenceSpec returns the reference the mate aligned to.
func (a *Alignment) MateReferenceSpec() (string, error) {
	return a.str("PY_NGS_AlignmentGetMateReferenceSpec")
}

// MateIsReversedOrientation reports the strand of the mate.
func (a *Alignment) MateIsReversedOrientation() (bool, error) {
	return a.flag("PY_NGS_AlignmentGetMateIsReversedOrientation")
}

// AlignmentIterator iterates over alignments. The Alignment methods act on
// the current alignment.
type AlignmentIterator struct {
	Alignment
}

func wrapAlignmentIterator(o object) *AlignmentIterator {
	return &AlignmentIterator{Alignment{Fragment{o}}}
}

// Next advances to the next alignment.
func (it *AlignmentIterator) Next() (bool, error) { return it.next("PY_NGS_AlignmentIteratorNext") }
