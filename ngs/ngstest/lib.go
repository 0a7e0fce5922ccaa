package ngstest

import (
	"fmt"

	"github.com/grailbio/ngs/native"
	"github.com/grailbio/ngs/native/nativetest"
)

// New returns a fake library that serves colls by accession.
func New(colls ...*Collection) *nativetest.Lib {
	lib := nativetest.New("ngstest")
	Install(lib, colls...)
	return lib
}

// NewRuntime binds a fake library serving colls.
func NewRuntime(colls ...*Collection) (*native.Runtime, *nativetest.Lib, error) {
	lib := New(colls...)
	rt, err := native.NewRuntime(lib, lib)
	return rt, lib, err
}

type call = nativetest.Call

func self[T any](c *call) (T, error) {
	var zero T
	v, err := c.Self()
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %T is the wrong kind of object", c.Symbol(), v)
	}
	return t, nil
}

// defs collects the implementations of a group of entry points for objects
// of type T.
type defs[T any] struct {
	lib *nativetest.Lib
}

func (d defs[T]) str(name string, fn func(c *call, v T) (string, error)) {
	d.lib.Def("PY_NGS_"+name, func(c *call) error {
		v, err := self[T](c)
		if err != nil {
			return err
		}
		s, err := fn(c, v)
		if err != nil {
			return err
		}
		c.SetString(s)
		return nil
	})
}

func (d defs[T]) obj(name string, fn func(c *call, v T) (interface{}, error)) {
	d.lib.Def("PY_NGS_"+name, func(c *call) error {
		v, err := self[T](c)
		if err != nil {
			return err
		}
		o, err := fn(c, v)
		if err != nil {
			return err
		}
		c.SetObject(o)
		return nil
	})
}

func (d defs[T]) set(name string, fn func(c *call, v T) error) {
	d.lib.Def("PY_NGS_"+name, func(c *call) error {
		v, err := self[T](c)
		if err != nil {
			return err
		}
		return fn(c, v)
	})
}

func (d defs[T]) next(name string) { d.lib.Def("PY_NGS_"+name, nativetest.IterNext) }

// Install implements the NGS object model of lib over colls.
func Install(lib *nativetest.Lib, colls ...*Collection) {
	byName := map[string]*Collection{}
	for _, coll := range colls {
		byName[coll.Accession] = coll
		for _, ref := range coll.References {
			for _, a := range ref.Alignments {
				a.ref = ref
			}
		}
	}
	lib.Def(native.SymReadCollectionMake, func(c *call) error {
		spec := c.CString(0)
		coll, ok := byName[spec]
		if !ok {
			return fmt.Errorf("object not found: '%s'", spec)
		}
		c.SetObject(coll)
		return nil
	})
	lib.Def(native.SymReferenceSequenceMake, func(c *call) error {
		spec := c.CString(0)
		for _, coll := range colls {
			for _, ref := range coll.References {
				if ref.CanonicalName == spec {
					c.SetObject(&sequence{ref})
					return nil
				}
			}
		}
		return fmt.Errorf("object not found: '%s'", spec)
	})
	installCollection(defs[*Collection]{lib})
	installAlignment(defs[*Alignment]{lib})
	installRead(defs[*readObj]{lib})
	installReadGroup(defs[*ReadGroup]{lib})
	installReference(defs[*Reference]{lib})
	installPileup(defs[*pileupPos]{lib}, defs[*pileupEvent]{lib})
	installSequence(defs[*sequence]{lib})
}

func (coll *Collection) alignments(category uint32) []*Alignment {
	var as []*Alignment
	for _, ref := range coll.References {
		for _, a := range ref.Alignments {
			if a.category()&category != 0 {
				as = append(as, a)
			}
		}
	}
	return as
}

func (coll *Collection) reads(category uint32) []*Read {
	var rs []*Read
	for _, r := range coll.Reads {
		if r.category()&category != 0 {
			rs = append(rs, r)
		}
	}
	return rs
}

func (coll *Collection) reference(spec string) *Reference {
	for _, ref := range coll.References {
		if ref.CommonName == spec || ref.CanonicalName == spec {
			return ref
		}
	}
	return nil
}

func (coll *Collection) readGroup(name string) *ReadGroup {
	for _, g := range coll.ReadGroups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func alignmentIter(as []*Alignment) *nativetest.Iter {
	items := make([]interface{}, len(as))
	for i, a := range as {
		items[i] = a
	}
	return nativetest.NewIter(items...)
}

func readIter(rs []*Read) *nativetest.Iter {
	items := make([]interface{}, len(rs))
	for i, r := range rs {
		items[i] = &readObj{read: r}
	}
	return nativetest.NewIter(items...)
}

// rows returns the 1-based rows [first, first+count) of n.
func rows(first, count uint64, n int) (uint64, uint64, error) {
	if first == 0 || first > uint64(n)+1 {
		return 0, 0, fmt.Errorf("row %d out of range", first)
	}
	end := uint64(n) + 1
	if count < end-first {
		end = first + count
	}
	return first - 1, end - 1, nil
}

func installCollection(d defs[*Collection]) {
	d.str("ReadCollectionGetName", func(c *call, coll *Collection) (string, error) { return coll.Accession, nil })
	d.obj("ReadCollectionGetReadGroups", func(c *call, coll *Collection) (interface{}, error) {
		items := make([]interface{}, len(coll.ReadGroups))
		for i, g := range coll.ReadGroups {
			items[i] = g
		}
		return nativetest.NewIter(items...), nil
	})
	d.set("ReadCollectionHasReadGroup", func(c *call, coll *Collection) error {
		c.SetBool(coll.readGroup(c.CString(1)) != nil)
		return nil
	})
	d.obj("ReadCollectionGetReadGroup", func(c *call, coll *Collection) (interface{}, error) {
		if g := coll.readGroup(c.CString(1)); g != nil {
			return g, nil
		}
		return nil, fmt.Errorf("read group not found: '%s'", c.CString(1))
	})
	d.obj("ReadCollectionGetReferences", func(c *call, coll *Collection) (interface{}, error) {
		items := make([]interface{}, len(coll.References))
		for i, ref := range coll.References {
			items[i] = ref
		}
		return nativetest.NewIter(items...), nil
	})
	d.set("ReadCollectionHasReference", func(c *call, coll *Collection) error {
		c.SetBool(coll.reference(c.CString(1)) != nil)
		return nil
	})
	d.obj("ReadCollectionGetReference", func(c *call, coll *Collection) (interface{}, error) {
		if ref := coll.reference(c.CString(1)); ref != nil {
			return ref, nil
		}
		return nil, fmt.Errorf("reference not found: '%s'", c.CString(1))
	})
	d.obj("ReadCollectionGetAlignment", func(c *call, coll *Collection) (interface{}, error) {
		id := c.CString(1)
		for _, a := range coll.alignments(3) {
			if a.ID == id {
				return a, nil
			}
		}
		return nil, fmt.Errorf("alignment not found: '%s'", id)
	})
	d.obj("ReadCollectionGetAlignments", func(c *call, coll *Collection) (interface{}, error) {
		return alignmentIter(coll.alignments(c.Uint32(1))), nil
	})
	d.set("ReadCollectionGetAlignmentCount", func(c *call, coll *Collection) error {
		c.SetUint64(uint64(len(coll.alignments(c.Uint32(1)))))
		return nil
	})
	d.obj("ReadCollectionGetAlignmentRange", func(c *call, coll *Collection) (interface{}, error) {
		as := coll.alignments(c.Uint32(3))
		begin, end, err := rows(c.Uint64(1), c.Uint64(2), len(as))
		if err != nil {
			return nil, err
		}
		return alignmentIter(as[begin:end]), nil
	})
	d.obj("ReadCollectionGetRead", func(c *call, coll *Collection) (interface{}, error) {
		id := c.CString(1)
		for _, r := range coll.Reads {
			if r.ID == id {
				return &readObj{read: r}, nil
			}
		}
		return nil, fmt.Errorf("read not found: '%s'", id)
	})
	d.obj("ReadCollectionGetReads", func(c *call, coll *Collection) (interface{}, error) {
		return readIter(coll.reads(c.Uint32(1))), nil
	})
	d.set("ReadCollectionGetReadCount", func(c *call, coll *Collection) error {
		c.SetUint64(uint64(len(coll.reads(c.Uint32(1)))))
		return nil
	})
	d.obj("ReadCollectionGetReadRange", func(c *call, coll *Collection) (interface{}, error) {
		rs := coll.reads(c.Uint32(3))
		begin, end, err := rows(c.Uint64(1), c.Uint64(2), len(rs))
		if err != nil {
			return nil, err
		}
		return readIter(rs[begin:end]), nil
	})
}

func installAlignment(d defs[*Alignment]) {
	d.str("AlignmentGetAlignmentId", func(c *call, a *Alignment) (string, error) { return a.ID, nil })
	d.str("AlignmentGetReferenceSpec", func(c *call, a *Alignment) (string, error) { return a.ref.CommonName, nil })
	d.set("AlignmentGetMappingQuality", func(c *call, a *Alignment) error {
		c.SetInt32(a.MapQ)
		return nil
	})
	d.str("AlignmentGetReferenceBases", func(c *call, a *Alignment) (string, error) {
		return substr(a.ref.Bases, uint64(a.Position), a.refLength())
	})
	d.str("AlignmentGetReadGroup", func(c *call, a *Alignment) (string, error) { return a.ReadGroup, nil })
	d.str("AlignmentGetReadId", func(c *call, a *Alignment) (string, error) { return a.ReadID, nil })
	d.str("AlignmentGetClippedFragmentBases", func(c *call, a *Alignment) (string, error) { return a.clipped(a.Bases), nil })
	d.str("AlignmentGetClippedFragmentQualities", func(c *call, a *Alignment) (string, error) { return a.clipped(a.Qualities), nil })
	d.str("AlignmentGetAlignedFragmentBases", func(c *call, a *Alignment) (string, error) { return a.clipped(a.Bases), nil })
	d.set("AlignmentGetAlignmentCategory", func(c *call, a *Alignment) error {
		c.SetUint32(a.category())
		return nil
	})
	d.set("AlignmentGetAlignmentPosition", func(c *call, a *Alignment) error {
		c.SetInt64(a.Position)
		return nil
	})
	d.set("AlignmentGetAlignmentLength", func(c *call, a *Alignment) error {
		c.SetUint64(a.refLength())
		return nil
	})
	d.set("AlignmentGetIsReversedOrientation", func(c *call, a *Alignment) error {
		c.SetBool(a.Reversed)
		return nil
	})
	d.set("AlignmentGetSoftClip", func(c *call, a *Alignment) error {
		c.SetInt32(a.softClip(c.Uint32(1) == 1))
		return nil
	})
	d.set("AlignmentGetTemplateLength", func(c *call, a *Alignment) error {
		c.SetUint64(a.TemplateLength)
		return nil
	})
	d.str("AlignmentGetShortCigar", func(c *call, a *Alignment) (string, error) { return a.cigar(c.Bool(1), false), nil })
	d.str("AlignmentGetLongCigar", func(c *call, a *Alignment) (string, error) { return a.cigar(c.Bool(1), true), nil })
	d.set("AlignmentGetRNAOrientation", func(c *call, a *Alignment) error {
		c.SetChar('?')
		return nil
	})
	d.set("AlignmentHasMate", func(c *call, a *Alignment) error {
		c.SetBool(a.Mate != nil)
		return nil
	})
	mate := func(a *Alignment) (*Alignment, error) {
		if a.Mate == nil {
			return nil, fmt.Errorf("alignment %s has no mate", a.ID)
		}
		return a.Mate, nil
	}
	d.str("AlignmentGetMateAlignmentId", func(c *call, a *Alignment) (string, error) {
		m, err := mate(a)
		if err != nil {
			return "", err
		}
		return m.ID, nil
	})
	d.obj("AlignmentGetMateAlignment", func(c *call, a *Alignment) (interface{}, error) { return mate(a) })
	d.str("AlignmentGetMateReferenceSpec", func(c *call, a *Alignment) (string, error) {
		m, err := mate(a)
		if err != nil {
			return "", err
		}
		return m.ref.CommonName, nil
	})
	d.set("AlignmentGetMateIsReversedOrientation", func(c *call, a *Alignment) error {
		m, err := mate(a)
		if err != nil {
			return err
		}
		c.SetBool(m.Reversed)
		return nil
	})
	d.next("AlignmentIteratorNext")
}

// A fragment is either an alignment or the current fragment of a read.
func fragment(c *call) (id, bases, quals string, err error) {
	v, err := c.Self()
	if err != nil {
		return "", "", "", err
	}
	switch v := v.(type) {
	case *Alignment:
		return v.FragmentID, v.Bases, v.Qualities, nil
	case *readObj:
		f, err := v.fragment()
		if err != nil {
			return "", "", "", err
		}
		return f.ID, f.Bases, f.Qualities, nil
	}
	return "", "", "", fmt.Errorf("%s: %T is not a fragment", c.Symbol(), v)
}

func installRead(d defs[*readObj]) {
	d.lib.Def("PY_NGS_FragmentGetFragmentId", func(c *call) error {
		id, _, _, err := fragment(c)
		if err == nil {
			c.SetString(id)
		}
		return err
	})
	d.lib.Def("PY_NGS_FragmentGetFragmentBases", func(c *call) error {
		_, bases, _, err := fragment(c)
		if err != nil {
			return err
		}
		s, err := substr(bases, c.Uint64(1), c.Uint64(2))
		if err == nil {
			c.SetString(s)
		}
		return err
	})
	d.lib.Def("PY_NGS_FragmentGetFragmentQualities", func(c *call) error {
		_, _, quals, err := fragment(c)
		if err != nil {
			return err
		}
		s, err := substr(quals, c.Uint64(1), c.Uint64(2))
		if err == nil {
			c.SetString(s)
		}
		return err
	})
	d.set("FragmentIteratorNext", func(c *call, r *readObj) error {
		if r.frag <= len(r.read.Fragments) {
			r.frag++
		}
		c.SetBool(r.frag <= len(r.read.Fragments))
		return nil
	})

	d.str("ReadGetReadId", func(c *call, r *readObj) (string, error) { return r.read.ID, nil })
	d.set("ReadGetNumFragments", func(c *call, r *readObj) error {
		c.SetUint32(uint32(len(r.read.Fragments)))
		return nil
	})
	d.set("ReadFragmentIsAligned", func(c *call, r *readObj) error {
		i := int(c.Uint32(1))
		if i >= len(r.read.Fragments) {
			return fmt.Errorf("fragment index %d out of range", i)
		}
		c.SetBool(r.read.Fragments[i].Aligned)
		return nil
	})
	d.set("ReadGetReadCategory", func(c *call, r *readObj) error {
		c.SetUint32(r.read.category())
		return nil
	})
	d.str("ReadGetReadGroup", func(c *call, r *readObj) (string, error) { return r.read.ReadGroup, nil })
	d.str("ReadGetReadName", func(c *call, r *readObj) (string, error) { return r.read.Name, nil })
	whole := func(r *readObj, quals bool) string {
		s := ""
		for _, f := range r.read.Fragments {
			if quals {
				s += f.Qualities
			} else {
				s += f.Bases
			}
		}
		return s
	}
	d.str("ReadGetReadBases", func(c *call, r *readObj) (string, error) {
		return substr(whole(r, false), c.Uint64(1), c.Uint64(2))
	})
	d.str("ReadGetReadQualities", func(c *call, r *readObj) (string, error) {
		return substr(whole(r, true), c.Uint64(1), c.Uint64(2))
	})
	d.next("ReadIteratorNext")
}

func installReadGroup(d defs[*ReadGroup]) {
	d.str("ReadGroupGetName", func(c *call, g *ReadGroup) (string, error) { return g.Name, nil })
	d.obj("ReadGroupGetStatistics", func(c *call, g *ReadGroup) (interface{}, error) { return &stats{g}, nil })
	d.next("ReadGroupIteratorNext")

	s := defs[*stats]{d.lib}
	value := func(c *call, st *stats) (interface{}, error) {
		v, ok := st.g.Stats[c.CString(1)]
		if !ok {
			return nil, fmt.Errorf("statistic not found: '%s'", c.CString(1))
		}
		return v, nil
	}
	s.set("StatisticsGetValueType", func(c *call, st *stats) error {
		var t uint32
		switch st.g.Stats[c.CString(1)].(type) {
		case string:
			t = 1
		case int64:
			t = 2
		case uint64:
			t = 3
		case float64:
			t = 4
		}
		c.SetUint32(t)
		return nil
	})
	s.str("StatisticsGetAsString", func(c *call, st *stats) (string, error) {
		v, err := value(c, st)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(v), nil
	})
	s.set("StatisticsGetAsI64", func(c *call, st *stats) error {
		v, err := value(c, st)
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case int64:
			c.SetInt64(v)
		case uint64:
			c.SetInt64(int64(v))
		case float64:
			c.SetInt64(int64(v))
		default:
			return fmt.Errorf("cannot convert %q to int64", v)
		}
		return nil
	})
	s.set("StatisticsGetAsU64", func(c *call, st *stats) error {
		v, err := value(c, st)
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case int64:
			c.SetUint64(uint64(v))
		case uint64:
			c.SetUint64(v)
		case float64:
			c.SetUint64(uint64(v))
		default:
			return fmt.Errorf("cannot convert %q to uint64", v)
		}
		return nil
	})
	s.set("StatisticsGetAsDouble", func(c *call, st *stats) error {
		v, err := value(c, st)
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case int64:
			c.SetFloat64(float64(v))
		case uint64:
			c.SetFloat64(float64(v))
		case float64:
			c.SetFloat64(v)
		default:
			return fmt.Errorf("cannot convert %q to double", v)
		}
		return nil
	})
	s.str("StatisticsGetNextPath", func(c *call, st *stats) (string, error) {
		path := c.CString(1)
		for _, p := range st.g.paths() {
			if p > path {
				return p, nil
			}
		}
		return "", nil
	})
}

type stats struct{ g *ReadGroup }

func installReference(d defs[*Reference]) {
	d.str("ReferenceGetCommonName", func(c *call, r *Reference) (string, error) { return r.CommonName, nil })
	d.str("ReferenceGetCanonicalName", func(c *call, r *Reference) (string, error) { return r.CanonicalName, nil })
	d.set("ReferenceGetIsCircular", func(c *call, r *Reference) error {
		c.SetBool(r.Circular)
		return nil
	})
	d.set("ReferenceGetLength", func(c *call, r *Reference) error {
		c.SetUint64(uint64(len(r.Bases)))
		return nil
	})
	d.str("ReferenceGetReferenceBases", func(c *call, r *Reference) (string, error) {
		return substr(r.Bases, c.Uint64(1), c.Uint64(2))
	})
	d.str("ReferenceGetReferenceChunk", func(c *call, r *Reference) (string, error) {
		return substr(r.Bases, c.Uint64(1), c.Uint64(2))
	})
	d.obj("ReferenceGetAlignment", func(c *call, r *Reference) (interface{}, error) {
		id := c.CString(1)
		for _, a := range r.Alignments {
			if a.ID == id {
				return a, nil
			}
		}
		return nil, fmt.Errorf("alignment not found: '%s'", id)
	})
	d.obj("ReferenceGetAlignments", func(c *call, r *Reference) (interface{}, error) {
		return alignmentIter(r.slice(0, uint64(len(r.Bases)), c.Uint32(1))), nil
	})
	d.obj("ReferenceGetAlignmentSlice", func(c *call, r *Reference) (interface{}, error) {
		return alignmentIter(r.slice(c.Int64(1), c.Uint64(2), c.Uint32(3))), nil
	})
	d.obj("ReferenceGetPileups", func(c *call, r *Reference) (interface{}, error) {
		return r.pileups(0, uint64(len(r.Bases)), c.Uint32(1), 0, 0), nil
	})
	d.obj("ReferenceGetFilteredPileups", func(c *call, r *Reference) (interface{}, error) {
		return r.pileups(0, uint64(len(r.Bases)), c.Uint32(1), c.Uint32(2), c.Int32(3)), nil
	})
	d.obj("ReferenceGetPileupSlice", func(c *call, r *Reference) (interface{}, error) {
		return r.pileups(c.Int64(1), c.Uint64(2), c.Uint32(3), 0, 0), nil
	})
	d.obj("ReferenceGetFilteredPileupSlice", func(c *call, r *Reference) (interface{}, error) {
		return r.pileups(c.Int64(1), c.Uint64(2), c.Uint32(3), c.Uint32(4), c.Int32(5)), nil
	})
	d.next("ReferenceIteratorNext")
}

// slice returns the alignments in category that overlap [start, start+length).
func (r *Reference) slice(start int64, length uint64, category uint32) []*Alignment {
	end := start + int64(length)
	if length > uint64(len(r.Bases)) {
		end = int64(len(r.Bases))
	}
	var as []*Alignment
	for _, a := range r.Alignments {
		if a.category()&category != 0 && a.Position < end && a.Position+int64(a.refLength()) > start {
			as = append(as, a)
		}
	}
	return as
}

func (r *Reference) pileups(start int64, length uint64, category, filters uint32, mapq int32) *nativetest.Iter {
	end := start + int64(length)
	if length > uint64(len(r.Bases)) || end > int64(len(r.Bases)) {
		end = int64(len(r.Bases))
	}
	var items []interface{}
	for pos := start; pos < end; pos++ {
		p := &pileupPos{ref: r, pos: pos}
		for _, a := range r.slice(pos, 1, category) {
			if filters&4 != 0 && a.MapQ < mapq {
				continue
			}
			if filters&8 != 0 && a.MapQ > mapq {
				continue
			}
			if e := a.event(pos); e != nil {
				p.events = append(p.events, e)
			}
		}
		items = append(items, p)
	}
	return nativetest.NewIter(items...)
}

func installPileup(d defs[*pileupPos], e defs[*pileupEvent]) {
	d.str("PileupGetReferenceSpec", func(c *call, p *pileupPos) (string, error) { return p.ref.CommonName, nil })
	d.set("PileupGetReferencePosition", func(c *call, p *pileupPos) error {
		c.SetInt64(p.pos)
		return nil
	})
	d.obj("PileupGetPileupEvents", func(c *call, p *pileupPos) (interface{}, error) {
		items := make([]interface{}, len(p.events))
		for i, ev := range p.events {
			items[i] = ev
		}
		return nativetest.NewIter(items...), nil
	})
	d.set("PileupGetPileupDepth", func(c *call, p *pileupPos) error {
		c.SetUint32(uint32(len(p.events)))
		return nil
	})
	d.next("PileupIteratorNext")

	e.str("PileupEventGetReferenceSpec", func(c *call, ev *pileupEvent) (string, error) { return ev.a.ref.CommonName, nil })
	e.set("PileupEventGetReferencePosition", func(c *call, ev *pileupEvent) error {
		c.SetInt64(ev.pos)
		return nil
	})
	e.set("PileupEventGetMappingQuality", func(c *call, ev *pileupEvent) error {
		c.SetInt32(ev.a.MapQ)
		return nil
	})
	e.str("PileupEventGetAlignmentId", func(c *call, ev *pileupEvent) (string, error) { return ev.a.ID, nil })
	e.obj("PileupEventGetAlignment", func(c *call, ev *pileupEvent) (interface{}, error) { return ev.a, nil })
	e.set("PileupEventGetAlignmentPosition", func(c *call, ev *pileupEvent) error {
		c.SetInt64(ev.readPos)
		return nil
	})
	e.set("PileupEventGetFirstAlignmentPosition", func(c *call, ev *pileupEvent) error {
		c.SetInt64(ev.a.Position)
		return nil
	})
	e.set("PileupEventGetLastAlignmentPosition", func(c *call, ev *pileupEvent) error {
		c.SetInt64(ev.a.Position + int64(ev.a.refLength()) - 1)
		return nil
	})
	e.set("PileupEventGetEventType", func(c *call, ev *pileupEvent) error {
		c.SetUint32(ev.typ)
		return nil
	})
	e.set("PileupEventGetAlignmentBase", func(c *call, ev *pileupEvent) error {
		if ev.typ&0xf == 2 {
			c.SetChar('-')
		} else {
			c.SetChar(ev.base)
		}
		return nil
	})
	e.set("PileupEventGetAlignmentQuality", func(c *call, ev *pileupEvent) error {
		if ev.typ&0xf == 2 {
			c.SetChar('!')
		} else {
			c.SetChar(ev.qual)
		}
		return nil
	})
	e.str("PileupEventGetInsertionBases", func(c *call, ev *pileupEvent) (string, error) { return ev.insBases, nil })
	e.str("PileupEventGetInsertionQualities", func(c *call, ev *pileupEvent) (string, error) { return ev.insQuals, nil })
	e.set("PileupEventGetDeletionCount", func(c *call, ev *pileupEvent) error {
		c.SetUint32(ev.deletions)
		return nil
	})
	e.set("PileupEventGetEventRepeatCount", func(c *call, ev *pileupEvent) error {
		c.SetUint32(1)
		return nil
	})
	e.set("PileupEventGetEventIndelType", func(c *call, ev *pileupEvent) error {
		c.SetUint32(0)
		return nil
	})
	e.next("PileupEventIteratorNext")
}

// sequence is a reference opened on its own, without a collection.
type sequence struct{ ref *Reference }

func installSequence(d defs[*sequence]) {
	d.str("ReferenceSequenceGetCanonicalName", func(c *call, s *sequence) (string, error) { return s.ref.CanonicalName, nil })
	d.set("ReferenceSequenceGetIsCircular", func(c *call, s *sequence) error {
		c.SetBool(s.ref.Circular)
		return nil
	})
	d.set("ReferenceSequenceGetLength", func(c *call, s *sequence) error {
		c.SetUint64(uint64(len(s.ref.Bases)))
		return nil
	})
	d.str("ReferenceSequenceGetReferenceBases", func(c *call, s *sequence) (string, error) {
		return substr(s.ref.Bases, c.Uint64(1), c.Uint64(2))
	})
	d.str("ReferenceSequenceGetReferenceChunk", func(c *call, s *sequence) (string, error) {
		return substr(s.ref.Bases, c.Uint64(1), c.Uint64(2))
	})
}
