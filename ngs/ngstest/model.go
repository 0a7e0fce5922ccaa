// Package ngstest serves in-memory read collections through the calling
// convention of the NGS libraries, for tests of code built on package ngs.
package ngstest

import (
	"fmt"
	"sort"
	"strconv"
)

// Collection is a fake dataset.
type Collection struct {
	Accession  string
	ReadGroups []*ReadGroup
	References []*Reference
	Reads      []*Read
}

// ReadGroup is a fake read group. Stats values must be string, int64, uint64
// or float64.
type ReadGroup struct {
	Name  string
	Stats map[string]interface{}
}

// Reference is a fake reference sequence.
type Reference struct {
	CommonName    string
	CanonicalName string
	Circular      bool
	Bases         string
	// Alignments must be sorted by position.
	Alignments []*Alignment
}

// Alignment is a fake alignment. Bases and Qualities hold the whole
// fragment, soft clips included, in reference orientation.
type Alignment struct {
	ID             string
	ReadID         string
	FragmentID     string
	ReadGroup      string
	Position       int64
	MapQ           int32
	Cigar          string
	Bases          string
	Qualities      string
	Reversed       bool
	Secondary      bool
	TemplateLength uint64
	Mate           *Alignment

	ref *Reference
}

// Fragment is a fake read fragment.
type Fragment struct {
	ID        string
	Bases     string
	Qualities string
	Aligned   bool
}

// Read is a fake read.
type Read struct {
	ID        string
	Name      string
	ReadGroup string
	Fragments []Fragment
}

type cigarOp struct {
	n  int
	op byte
}

func parseCigar(cigar string) ([]cigarOp, error) {
	var ops []cigarOp
	start := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			continue
		}
		n, err := strconv.Atoi(cigar[start:i])
		if err != nil {
			return nil, fmt.Errorf("bad cigar %q", cigar)
		}
		ops = append(ops, cigarOp{n, c})
		start = i + 1
	}
	if start != len(cigar) {
		return nil, fmt.Errorf("bad cigar %q", cigar)
	}
	return ops, nil
}

func formatCigar(ops []cigarOp) string {
	s := ""
	for _, op := range ops {
		s += strconv.Itoa(op.n) + string(op.op)
	}
	return s
}

func (a *Alignment) ops() []cigarOp {
	ops, err := parseCigar(a.Cigar)
	if err != nil {
		panic(err)
	}
	return ops
}

// refLength is the number of reference bases covered.
func (a *Alignment) refLength() uint64 {
	var n uint64
	for _, op := range a.ops() {
		switch op.op {
		case 'M', 'D', 'N', '=', 'X':
			n += uint64(op.n)
		}
	}
	return n
}

func (a *Alignment) softClip(right bool) int32 {
	ops := a.ops()
	if len(ops) == 0 {
		return 0
	}
	op := ops[0]
	if right {
		op = ops[len(ops)-1]
	}
	if op.op == 'S' {
		return int32(op.n)
	}
	return 0
}

func (a *Alignment) clipped(s string) string {
	left, right := int(a.softClip(false)), int(a.softClip(true))
	if left+right > len(s) {
		return ""
	}
	return s[left : len(s)-right]
}

func (a *Alignment) category() uint32 {
	if a.Secondary {
		return 2
	}
	return 1
}

// cigar returns the short (M) or long (=/X) cigar.
func (a *Alignment) cigar(clipped, long bool) string {
	var out []cigarOp
	push := func(op cigarOp) {
		if n := len(out); n > 0 && out[n-1].op == op.op {
			out[n-1].n += op.n
			return
		}
		out = append(out, op)
	}
	refPos, readPos := a.Position, 0
	for _, op := range a.ops() {
		switch op.op {
		case 'S':
			readPos += op.n
			if !clipped {
				push(op)
			}
		case 'M', '=', 'X':
			for i := 0; i < op.n; i++ {
				c := byte('M')
				if long {
					c = '='
					if a.ref == nil || int(refPos) >= len(a.ref.Bases) || a.ref.Bases[refPos] != a.Bases[readPos] {
						c = 'X'
					}
				}
				push(cigarOp{1, c})
				refPos++
				readPos++
			}
		case 'I':
			readPos += op.n
			push(op)
		case 'D', 'N':
			refPos += int64(op.n)
			push(op)
		}
	}
	return formatCigar(out)
}

func substr(s string, offset, length uint64) (string, error) {
	if offset > uint64(len(s)) {
		return "", fmt.Errorf("offset %d is beyond end of sequence (%d)", offset, len(s))
	}
	end := uint64(len(s))
	if length < end-offset {
		end = offset + length
	}
	return s[offset:end], nil
}

type readObj struct {
	read *Read
	frag int
}

func (r *readObj) fragment() (*Fragment, error) {
	if r.frag == 0 || r.frag > len(r.read.Fragments) {
		return nil, fmt.Errorf("invalid fragment access")
	}
	return &r.read.Fragments[r.frag-1], nil
}

func (r *Read) category() uint32 {
	n := 0
	for _, f := range r.Fragments {
		if f.Aligned {
			n++
		}
	}
	switch {
	case n == 0:
		return 4
	case n == len(r.Fragments):
		return 1
	}
	return 2
}

func (g *ReadGroup) paths() []string {
	var p []string
	for k := range g.Stats {
		p = append(p, k)
	}
	sort.Strings(p)
	return p
}

type pileupPos struct {
	ref    *Reference
	pos    int64
	events []*pileupEvent
}

type pileupEvent struct {
	a         *Alignment
	pos       int64
	typ       uint32
	base      byte
	qual      byte
	readPos   int64
	insBases  string
	insQuals  string
	deletions uint32
}

// event returns the contribution of a at reference position pos, or nil.
func (a *Alignment) event(pos int64) *pileupEvent {
	end := a.Position + int64(a.refLength())
	if pos < a.Position || pos >= end {
		return nil
	}
	e := &pileupEvent{a: a, pos: pos}
	if pos == a.Position {
		e.typ |= 0x80
	}
	if pos == end-1 {
		e.typ |= 0x40
	}
	if a.Reversed {
		e.typ |= 0x20
	}
	refPos, readPos := a.Position, 0
	var insBases, insQuals string
	for _, op := range a.ops() {
		switch op.op {
		case 'S':
			readPos += op.n
		case 'I':
			insBases = a.Bases[readPos : readPos+op.n]
			insQuals = a.Qualities[readPos : readPos+op.n]
			readPos += op.n
		case 'M', '=', 'X':
			if pos < refPos+int64(op.n) {
				i := readPos + int(pos-refPos)
				e.base, e.qual, e.readPos = a.Bases[i], a.Qualities[i], int64(i)
				if a.ref.Bases[pos] != e.base {
					e.typ |= 1
				}
				if pos == refPos && insBases != "" {
					e.typ |= 0x10
					e.insBases, e.insQuals = insBases, insQuals
				}
				return e
			}
			refPos += int64(op.n)
			readPos += op.n
			insBases, insQuals = "", ""
		case 'D', 'N':
			if pos < refPos+int64(op.n) {
				e.typ |= 2
				e.deletions = uint32(refPos + int64(op.n) - pos)
				e.readPos = int64(readPos)
				return e
			}
			refPos += int64(op.n)
			insBases, insQuals = "", ""
		}
	}
	return nil
}
