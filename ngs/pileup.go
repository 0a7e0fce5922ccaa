package ngs

// Pileup is the stack of alignments over one reference position.
type Pileup struct {
	object
}

// ReferenceSpec returns the name of the reference.
func (p *Pileup) ReferenceSpec() (string, error) { return p.str("PY_NGS_PileupGetReferenceSpec") }

// ReferencePosition returns the 0-based position.
func (p *Pileup) ReferencePosition() (int64, error) {
	return get[int64](&p.object, "PY_NGS_PileupGetReferencePosition")
}

// PileupEvents returns an iterator over the contribution of every alignment
// at the position.
func (p *Pileup) PileupEvents() (*PileupEventIterator, error) {
	return child(&p.object, wrapPileupEventIterator, "PY_NGS_PileupGetPileupEvents")
}

// Depth returns the number of alignments at the position.
func (p *Pileup) Depth() (uint32, error) {
	return get[uint32](&p.object, "PY_NGS_PileupGetPileupDepth")
}

// PileupIterator iterates over reference positions.
type PileupIterator struct {
	Pileup
}

func wrapPileupIterator(o object) *PileupIterator { return &PileupIterator{Pileup{o}} }

// Next advances to the next position.
func (it *PileupIterator) Next() (bool, error) { return it.next("PY_NGS_PileupIteratorNext") }

// PileupEvent is what one alignment shows at a pileup position.
type PileupEvent struct {
	object
}

// ReferenceSpec returns the name of the reference.
func (e *PileupEvent) ReferenceSpec() (string, error) {
	return e.str("PY_NGS_PileupEventGetReferenceSpec")
}

// ReferencePosition returns the 0-based position.
func (e *PileupEvent) ReferencePosition() (int64, error) {
	return get[int64](&e.object, "PY_NGS_PileupEventGetReferencePosition")
}

// MappingQuality returns the mapping quality of the alignment.
func (e *PileupEvent) MappingQuality() (int32, error) {
	return get[int32](&e.object, "PY_NGS_PileupEventGetMappingQuality")
}

// AlignmentID returns the ID of the alignment.
func (e *PileupEvent) AlignmentID() (string, error) {
	return e.str("PY_NGS_PileupEventGetAlignmentId")
}

// Alignment returns the alignment.
func (e *PileupEvent) Alignment() (*Alignment, error) {
	return child(&e.object, wrapAlignment, "PY_NGS_PileupEventGetAlignment")
}

// AlignmentPosition returns the 0-based offset of the event in the aligned
// fragment.
func (e *PileupEvent) AlignmentPosition() (int64, error) {
	return get[int64](&e.object, "PY_NGS_PileupEventGetAlignmentPosition")
}

// FirstAlignmentPosition returns the reference position of the first
// aligned base.
func (e *PileupEvent) FirstAlignmentPosition() (int64, error) {
	return get[int64](&e.object, "PY_NGS_PileupEventGetFirstAlignmentPosition")
}

// LastAlignmentPosition returns the reference position of the last aligned
// base.
func (e *PileupEvent) LastAlignmentPosition() (int64, error) {
	return get[int64](&e.object, "PY_NGS_PileupEventGetLastAlignmentPosition")
}

// EventType returns the event and its modifier bits.
func (e *PileupEvent) EventType() (PileupEventType, error) {
	return get[PileupEventType](&e.object, "PY_NGS_PileupEventGetEventType")
}

// AlignmentBase returns the base for match and mismatch events.
func (e *PileupEvent) AlignmentBase() (byte, error) {
	return get[byte](&e.object, "PY_NGS_PileupEventGetAlignmentBase")
}

// AlignmentQuality returns the phred+33 quality of AlignmentBase.
func (e *PileupEvent) AlignmentQuality() (byte, error) {
	return get[byte](&e.object, "PY_NGS_PileupEventGetAlignmentQuality")
}

// InsertionBases returns the inserted bases before the event.
func (e *PileupEvent) InsertionBases() (string, error) {
	return e.str("PY_NGS_PileupEventGetInsertionBases")
}

// InsertionQualities returns the qualities of InsertionBases.
func (e *PileupEvent) InsertionQualities() (string, error) {
	return e.str("PY_NGS_PileupEventGetInsertionQualities")
}

// DeletionCount returns the number of deleted reference bases, counted from
// the current position.
func (e *PileupEvent) DeletionCount() (uint32, error) {
	return get[uint32](&e.object, "PY_NGS_PileupEventGetDeletionCount")
}

// EventRepeatCount returns how many times the event repeats at the following
// positions.
func (e *PileupEvent) EventRepeatCount() (uint32, error) {
	return get[uint32](&e.object, "PY_NGS_PileupEventGetEventRepeatCount")
}

// EventIndelType classifies an insertion or deletion.
func (e *PileupEvent) EventIndelType() (IndelType, error) {
	return get[IndelType](&e.object, "PY_NGS_PileupEventGetEventIndelType")
}

// PileupEventIterator iterates over the events at one position.
type PileupEventIterator struct {
	PileupEvent
}

func wrapPileupEventIterator(o object) *PileupEventIterator {
	return &PileupEventIterator{PileupEvent{o}}
}

// Next advances to the next event.
func (it *PileupEventIterator) Next() (bool, error) {
	return it.next("PY_NGS_PileupEventIteratorNext")
}
