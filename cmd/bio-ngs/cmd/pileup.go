package cmd

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/ngs/ngs"
)

type pileupOpts struct {
	secondary bool
	minMapQ   int
}

// baseCounts is the pileup of one position.
type baseCounts struct {
	depth         uint32
	a, c, g, t, n uint32
	del, ins      uint32
}

func (b *baseCounts) add(e *ngs.PileupEvent) error {
	typ, err := e.EventType()
	if err != nil {
		return err
	}
	b.depth++
	if typ.Has(ngs.EventInsertion) {
		b.ins++
	}
	if typ.Base() == ngs.EventDeletion {
		b.del++
		return nil
	}
	base, err := e.AlignmentBase()
	if err != nil {
		return err
	}
	switch base {
	case 'A', 'a':
		b.a++
	case 'C', 'c':
		b.c++
	case 'G', 'g':
		b.g++
	case 'T', 't':
		b.t++
	default:
		b.n++
	}
	return nil
}

// pileups opens the pileups of r. Mapping quality filtering is done by the
// library when it supports it, and by the caller otherwise.
func pileups(ref *ngs.Reference, r region, opts pileupOpts) (it *ngs.PileupIterator, filtered bool, err error) {
	cat := ngs.PrimaryAlignment
	if opts.secondary {
		cat = ngs.AllAlignments
	}
	length := uint64(r.end - r.start)
	if opts.minMapQ > 0 {
		it, err = ref.FilteredPileupSlice(int64(r.start), length, cat, ngs.MinMapQuality, int32(opts.minMapQ))
		if err == nil {
			return it, true, nil
		}
		if !errors.Is(errors.NotSupported, err) {
			return nil, false, err
		}
		log.Debug.Printf("filtered pileups not supported; filtering events: %v", err)
	}
	it, err = ref.PileupSlice(int64(r.start), length, cat)
	return it, opts.minMapQ == 0, err
}

func pileup(ctx context.Context, out io.Writer, m *ngs.Manager, spec string, r region, opts pileupOpts) (err error) {
	rc, err := m.OpenReadCollection(ctx, spec)
	if err != nil {
		return err
	}
	defer func() {
		if e := rc.Close(); e != nil && err == nil {
			err = e
		}
	}()
	ref, err := rc.Reference(r.ref)
	if err != nil {
		return err
	}
	defer ref.Close() // nolint: errcheck
	it, filtered, err := pileups(ref, r, opts)
	if err != nil {
		return err
	}
	defer it.Close() // nolint: errcheck

	w := tsv.NewWriter(out)
	w.WriteString("#CHROM\tPOS\tDEPTH\tA\tC\tG\tT\tN\tDEL\tINS")
	if err := w.EndLine(); err != nil {
		return err
	}
	for {
		ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		pos, err := it.ReferencePosition()
		if err != nil {
			return err
		}
		counts, err := countEvents(&it.Pileup, filtered, int32(opts.minMapQ))
		if err != nil {
			return err
		}
		w.WriteString(r.ref)
		w.WriteInt64(pos + 1)
		w.WriteUint32(counts.depth)
		w.WriteUint32(counts.a)
		w.WriteUint32(counts.c)
		w.WriteUint32(counts.g)
		w.WriteUint32(counts.t)
		w.WriteUint32(counts.n)
		w.WriteUint32(counts.del)
		w.WriteUint32(counts.ins)
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

func countEvents(p *ngs.Pileup, filtered bool, minMapQ int32) (baseCounts, error) {
	var counts baseCounts
	events, err := p.PileupEvents()
	if err != nil {
		return counts, err
	}
	defer events.Close() // nolint: errcheck
	for {
		ok, err := events.Next()
		if err != nil || !ok {
			return counts, err
		}
		if !filtered {
			mapq, err := events.MappingQuality()
			if err != nil {
				return counts, err
			}
			if mapq < minMapQ {
				continue
			}
		}
		if err := counts.add(&events.PileupEvent); err != nil {
			return counts, err
		}
	}
}
