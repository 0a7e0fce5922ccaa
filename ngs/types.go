package ngs

import "fmt"

// AlignmentCategory selects primary and/or secondary alignments.
type AlignmentCategory uint32

const (
	PrimaryAlignment   AlignmentCategory = 1
	SecondaryAlignment AlignmentCategory = 2
	AllAlignments                        = PrimaryAlignment | SecondaryAlignment
)

func (c AlignmentCategory) String() string {
	switch c {
	case PrimaryAlignment:
		return "primary"
	case SecondaryAlignment:
		return "secondary"
	case AllAlignments:
		return "all"
	}
	return fmt.Sprintf("AlignmentCategory(%d)", uint32(c))
}

// AlignmentFilter bits modify the alignments that contribute to pileups.
type AlignmentFilter uint32

const (
	PassFailed       AlignmentFilter = 1
	PassDuplicates   AlignmentFilter = 2
	MinMapQuality    AlignmentFilter = 4
	MaxMapQuality    AlignmentFilter = 8
	NoWraparound     AlignmentFilter = 16
	StartWithinSlice AlignmentFilter = 32
)

// ClipEdge selects the side of an alignment for Alignment.SoftClip.
type ClipEdge uint32

const (
	ClipLeft  ClipEdge = 0
	ClipRight ClipEdge = 1
)

// ReadCategory classifies reads by how many of their fragments aligned.
type ReadCategory uint32

const (
	FullyAligned     ReadCategory = 1
	PartiallyAligned ReadCategory = 2
	Aligned                       = FullyAligned | PartiallyAligned
	Unaligned        ReadCategory = 4
	AllReads                      = Aligned | Unaligned
)

func (c ReadCategory) String() string {
	switch c {
	case FullyAligned:
		return "fullyAligned"
	case PartiallyAligned:
		return "partiallyAligned"
	case Aligned:
		return "aligned"
	case Unaligned:
		return "unaligned"
	case AllReads:
		return "all"
	}
	return fmt.Sprintf("ReadCategory(%d)", uint32(c))
}

// PileupEventType describes what an alignment shows at a pileup position.
// The low bits hold the event, the high bits are modifiers.
type PileupEventType uint32

const (
	EventMatch    PileupEventType = 0
	EventMismatch PileupEventType = 1
	EventDeletion PileupEventType = 2

	// EventInsertion is set when an insertion precedes a match or mismatch.
	EventInsertion                PileupEventType = 0x10
	EventInsertionBeforeMatch                     = EventInsertion | EventMatch
	EventInsertionBeforeMismatch                  = EventInsertion | EventMismatch
	EventAlignmentStart           PileupEventType = 0x80
	EventAlignmentStop            PileupEventType = 0x40
	EventAlignmentMinusStrand     PileupEventType = 0x20

	eventMask = 0x0f
)

// Base returns the event without the insertion and alignment modifiers.
func (t PileupEventType) Base() PileupEventType { return t & eventMask }

// Has reports whether every bit of m is set in t.
func (t PileupEventType) Has(m PileupEventType) bool { return t&m == m }

// IndelType classifies insertions and deletions.
type IndelType uint32

const (
	IndelNormal        IndelType = 0
	IndelIntronPlus    IndelType = 1
	IndelIntronMinus   IndelType = 2
	IndelIntronUnknown IndelType = 3
	IndelReadOverlap   IndelType = 4
	IndelReadGap       IndelType = 5
)

// ValueType is the type of a Statistics value.
type ValueType uint32

const (
	ValueUndefined ValueType = iota
	ValueString
	ValueInt64
	ValueUint64
	ValueReal
)

func (t ValueType) String() string {
	switch t {
	case ValueUndefined:
		return "undefined"
	case ValueString:
		return "string"
	case ValueInt64:
		return "int64"
	case ValueUint64:
		return "uint64"
	case ValueReal:
		return "real"
	}
	return fmt.Sprintf("ValueType(%d)", uint32(t))
}
