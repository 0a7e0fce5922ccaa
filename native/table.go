package native

import (
	"fmt"
	"strings"
	"unsafe"
)

// Which names one of the two NGS libraries.
type Which uint8

const (
	// Engine is libncbi-vdb, which implements the data access.
	Engine Which = iota
	// SDK is libngs-sdk, which exports the object model.
	SDK
)

// Name returns the library name used for file naming and downloads.
func (w Which) Name() string {
	if w == Engine {
		return "ncbi-vdb"
	}
	return "ngs-sdk"
}

func (w Which) String() string { return w.Name() }

// Type is the C type of one parameter or output slot.
type Type uint8

const (
	// Void means "no output slot".
	Void Type = iota
	// Obj is an opaque object pointer (void*).
	Obj
	// CStr is a NUL-terminated input string.
	CStr
	U32
	U64
	I32
	I64
	// Int is a C int, used for booleans.
	Int
	// Char is a single C char.
	Char
	F64
	// Size is a size_t.
	Size
	// Str is an NGS_String object output. It must be released.
	Str
	// Data is a char* output that points into an NGS_String.
	Data
	// Buf is a caller owned char buffer.
	Buf
)

var typeNames = [...]string{
	Void: "void", Obj: "void*", CStr: "const char*", U32: "uint32_t", U64: "uint64_t",
	I32: "int32_t", I64: "int64_t", Int: "int", Char: "char", F64: "double",
	Size: "size_t", Str: "NGS_String*", Data: "char*", Buf: "char[]",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Size returns the size in bytes of a value of type t, or 0 for Void and Buf.
func (t Type) Size() uintptr {
	switch t {
	case Char:
		return 1
	case U32, I32, Int:
		return 4
	case U64, I64, F64:
		return 8
	case Obj, CStr, Size, Str, Data:
		return unsafe.Sizeof(uintptr(0))
	}
	return 0
}

// Policy says how the trailing error slot of an entry point is handled.
type Policy uint8

const (
	// Checked entry points take a trailing char** error slot. Its contents
	// and the status code are turned into an *Error.
	Checked Policy = iota
	// Unchecked entry points have no error slot; the caller interprets the
	// status code.
	Unchecked
	// Discard entry points take an error slot whose contents are dropped.
	// Used for the release of error strings themselves.
	Discard
)

// Entry describes one native entry point. The full parameter list is
// In, then the output slot (unless Out is Void), then Tail, then the error
// slot (for Checked and Discard entries).
type Entry struct {
	Symbol string
	Lib    Which
	In     []Type
	Out    Type
	Tail   []Type
	Policy Policy
	// Optional entry points may be absent from older libraries. Calls to a
	// missing optional entry point fail with errors.NotSupported.
	Optional bool
}

// NArgs returns the number of arguments the caller passes, which excludes the
// error slot.
func (e *Entry) NArgs() int {
	n := len(e.In) + len(e.Tail)
	if e.Out != Void {
		n++
	}
	return n
}

// String returns the C prototype of the entry point.
func (e *Entry) String() string {
	var params []string
	for _, t := range e.In {
		params = append(params, t.String())
	}
	if e.Out != Void {
		params = append(params, e.Out.String()+"*")
	}
	for _, t := range e.Tail {
		params = append(params, t.String())
	}
	if e.Policy != Unchecked {
		params = append(params, "char**")
	}
	return fmt.Sprintf("int %s(%s)", e.Symbol, strings.Join(params, ", "))
}

const prefix = "PY_NGS_"

func sdk(name string, out Type, in ...Type) Entry {
	return Entry{Symbol: prefix + name, Lib: SDK, In: append([]Type{Obj}, in...), Out: out}
}

func optional(name string, out Type, in ...Type) Entry {
	e := sdk(name, out, in...)
	e.Optional = true
	return e
}

// Symbols of the entry points the Runtime uses itself.
const (
	SymStringGetData         = prefix + "StringGetData"
	SymStringGetSize         = prefix + "StringGetSize"
	SymRawStringRelease      = prefix + "RawStringRelease"
	SymRefcountRelease       = prefix + "RefcountRelease"
	SymReadCollectionMake    = prefix + "Engine_ReadCollectionMake"
	SymReferenceSequenceMake = prefix + "Engine_ReferenceSequenceMake"
)

// Entries lists every entry point of the NGS object model.
var Entries = []Entry{
	// Engine.
	{Symbol: SymReadCollectionMake, Lib: Engine, In: []Type{CStr}, Out: Obj, Tail: []Type{Buf, Size}, Policy: Unchecked},
	{Symbol: SymReferenceSequenceMake, Lib: Engine, In: []Type{CStr}, Out: Obj, Tail: []Type{Buf, Size}, Policy: Unchecked, Optional: true},

	// Strings and reference counts.
	{Symbol: SymStringGetData, Lib: SDK, In: []Type{Obj}, Out: Data, Policy: Unchecked},
	{Symbol: SymStringGetSize, Lib: SDK, In: []Type{Obj}, Out: Size, Policy: Unchecked},
	{Symbol: SymRawStringRelease, Lib: SDK, In: []Type{Data}, Policy: Discard},
	{Symbol: SymRefcountRelease, Lib: SDK, In: []Type{Obj}},

	// ReadCollection.
	sdk("ReadCollectionGetName", Str),
	sdk("ReadCollectionGetReadGroups", Obj),
	optional("ReadCollectionHasReadGroup", Int, CStr),
	sdk("ReadCollectionGetReadGroup", Obj, CStr),
	sdk("ReadCollectionGetReferences", Obj),
	optional("ReadCollectionHasReference", Int, CStr),
	sdk("ReadCollectionGetReference", Obj, CStr),
	sdk("ReadCollectionGetAlignment", Obj, CStr),
	sdk("ReadCollectionGetAlignments", Obj, U32),
	sdk("ReadCollectionGetAlignmentCount", U64, U32),
	sdk("ReadCollectionGetAlignmentRange", Obj, U64, U64, U32),
	sdk("ReadCollectionGetRead", Obj, CStr),
	sdk("ReadCollectionGetReads", Obj, U32),
	sdk("ReadCollectionGetReadCount", U64, U32),
	sdk("ReadCollectionGetReadRange", Obj, U64, U64, U32),

	// Fragment. Alignments and reads are fragments too.
	sdk("FragmentGetFragmentId", Str),
	sdk("FragmentGetFragmentBases", Str, U64, U64),
	sdk("FragmentGetFragmentQualities", Str, U64, U64),
	sdk("FragmentIteratorNext", Int),

	// Alignment.
	sdk("AlignmentGetAlignmentId", Str),
	sdk("AlignmentGetReferenceSpec", Str),
	sdk("AlignmentGetMappingQuality", I32),
	sdk("AlignmentGetReferenceBases", Str),
	sdk("AlignmentGetReadGroup", Str),
	sdk("AlignmentGetReadId", Str),
	sdk("AlignmentGetClippedFragmentBases", Str),
	sdk("AlignmentGetClippedFragmentQualities", Str),
	sdk("AlignmentGetAlignedFragmentBases", Str),
	sdk("AlignmentGetAlignmentCategory", U32),
	sdk("AlignmentGetAlignmentPosition", I64),
	sdk("AlignmentGetAlignmentLength", U64),
	sdk("AlignmentGetIsReversedOrientation", Int),
	sdk("AlignmentGetSoftClip", I32, U32),
	sdk("AlignmentGetTemplateLength", U64),
	sdk("AlignmentGetShortCigar", Str, Int),
	sdk("AlignmentGetLongCigar", Str, Int),
	optional("AlignmentGetRNAOrientation", Char),
	sdk("AlignmentHasMate", Int),
	sdk("AlignmentGetMateAlignmentId", Str),
	sdk("AlignmentGetMateAlignment", Obj),
	sdk("AlignmentGetMateReferenceSpec", Str),
	sdk("AlignmentGetMateIsReversedOrientation", Int),
	sdk("AlignmentIteratorNext", Int),

	// Read.
	sdk("ReadGetReadId", Str),
	sdk("ReadGetNumFragments", U32),
	optional("ReadFragmentIsAligned", Int, U32),
	sdk("ReadGetReadCategory", U32),
	sdk("ReadGetReadGroup", Str),
	sdk("ReadGetReadName", Str),
	sdk("ReadGetReadBases", Str, U64, U64),
	sdk("ReadGetReadQualities", Str, U64, U64),
	sdk("ReadIteratorNext", Int),

	// ReadGroup.
	sdk("ReadGroupGetName", Str),
	sdk("ReadGroupGetStatistics", Obj),
	sdk("ReadGroupIteratorNext", Int),

	// Reference.
	sdk("ReferenceGetCommonName", Str),
	sdk("ReferenceGetCanonicalName", Str),
	sdk("ReferenceGetIsCircular", Int),
	sdk("ReferenceGetLength", U64),
	sdk("ReferenceGetReferenceBases", Str, U64, U64),
	sdk("ReferenceGetReferenceChunk", Str, U64, U64),
	sdk("ReferenceGetAlignment", Obj, CStr),
	sdk("ReferenceGetAlignments", Obj, U32),
	sdk("ReferenceGetAlignmentSlice", Obj, I64, U64, U32),
	sdk("ReferenceGetPileups", Obj, U32),
	optional("ReferenceGetFilteredPileups", Obj, U32, U32, I32),
	sdk("ReferenceGetPileupSlice", Obj, I64, U64, U32),
	optional("ReferenceGetFilteredPileupSlice", Obj, I64, U64, U32, U32, I32),
	sdk("ReferenceIteratorNext", Int),

	// ReferenceSequence.
	optional("ReferenceSequenceGetCanonicalName", Str),
	optional("ReferenceSequenceGetIsCircular", Int),
	optional("ReferenceSequenceGetLength", U64),
	optional("ReferenceSequenceGetReferenceBases", Str, U64, U64),
	optional("ReferenceSequenceGetReferenceChunk", Str, U64, U64),

	// Pileup.
	sdk("PileupGetReferenceSpec", Str),
	sdk("PileupGetReferencePosition", I64),
	sdk("PileupGetPileupEvents", Obj),
	sdk("PileupGetPileupDepth", U32),
	sdk("PileupIteratorNext", Int),

	// PileupEvent.
	sdk("PileupEventGetReferenceSpec", Str),
	sdk("PileupEventGetReferencePosition", I64),
	sdk("PileupEventGetMappingQuality", I32),
	sdk("PileupEventGetAlignmentId", Str),
	sdk("PileupEventGetAlignment", Obj),
	sdk("PileupEventGetAlignmentPosition", I64),
	sdk("PileupEventGetFirstAlignmentPosition", I64),
	sdk("PileupEventGetLastAlignmentPosition", I64),
	sdk("PileupEventGetEventType", U32),
	sdk("PileupEventGetAlignmentBase", Char),
	sdk("PileupEventGetAlignmentQuality", Char),
	sdk("PileupEventGetInsertionBases", Str),
	sdk("PileupEventGetInsertionQualities", Str),
	sdk("PileupEventGetDeletionCount", U32),
	optional("PileupEventGetEventRepeatCount", U32),
	optional("PileupEventGetEventIndelType", U32),
	sdk("PileupEventIteratorNext", Int),

	// Statistics.
	sdk("StatisticsGetValueType", U32, CStr),
	sdk("StatisticsGetAsString", Str, CStr),
	sdk("StatisticsGetAsI64", I64, CStr),
	sdk("StatisticsGetAsU64", U64, CStr),
	sdk("StatisticsGetAsDouble", F64, CStr),
	sdk("StatisticsGetNextPath", Str, CStr),
}

// Lookup returns the table entry for symbol.
func Lookup(symbol string) (*Entry, bool) {
	for i := range Entries {
		if Entries[i].Symbol == symbol {
			return &Entries[i], true
		}
	}
	return nil, false
}
