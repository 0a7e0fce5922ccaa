package ngsprovider

import (
	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/ngs/ngs"
	"github.com/pkg/errors"
)

// unmappedIterator yields one unmapped record per fragment of the unaligned
// reads, in read order.
type unmappedIterator struct {
	provider *NGSProvider
	shard    Shard
	reads    *ngs.ReadIterator

	pending []*sam.Record
	rec     *sam.Record
	err     error
	done    bool
}

// Scan implements the Iterator interface.
func (i *unmappedIterator) Scan() bool {
	for len(i.pending) == 0 && !i.done && i.err == nil {
		ok, err := i.reads.Next()
		if err != nil {
			i.err = errors.Wrapf(err, "%v", i.shard)
			break
		}
		if !ok {
			i.done = true
			break
		}
		if i.pending, err = unmappedRecords(&i.reads.Read, i.pending[:0]); err != nil {
			i.err = errors.Wrapf(err, "%v", i.shard)
		}
	}
	if len(i.pending) == 0 || i.err != nil {
		i.rec = nil
		return false
	}
	i.rec, i.pending = i.pending[0], i.pending[1:]
	return true
}

// unmappedRecords appends the fragments of r to recs.
func unmappedRecords(r *ngs.Read, recs []*sam.Record) ([]*sam.Record, error) {
	id, err := r.ReadID()
	if err != nil {
		return nil, err
	}
	wrap := func(err error) error { return errors.Wrapf(err, "read %s", id) }
	n, err := r.NumFragments()
	if err != nil {
		return nil, wrap(err)
	}
	var aux []sam.Aux
	rg, err := r.ReadGroup()
	if err != nil {
		return nil, wrap(err)
	}
	if rg != "" {
		tag, err := sam.NewAux(rgTag, rg)
		if err != nil {
			return nil, wrap(err)
		}
		aux = append(aux, tag)
	}
	for frag := 0; ; frag++ {
		ok, err := r.NextFragment()
		if err != nil {
			return nil, wrap(err)
		}
		if !ok {
			return recs, nil
		}
		bases, err := r.FragmentBases(0, ngs.Remaining)
		if err != nil {
			return nil, wrap(err)
		}
		quals, err := r.FragmentQualities(0, ngs.Remaining)
		if err != nil {
			return nil, wrap(err)
		}
		qual := []byte(quals)
		for j := range qual {
			qual[j] -= 33
		}
		rec, err := sam.NewRecord(id, nil, nil, -1, -1, 0, 0, nil, []byte(bases), qual, aux)
		if err != nil {
			return nil, wrap(err)
		}
		rec.Flags = sam.Unmapped
		if n > 1 {
			rec.Flags |= sam.Paired | sam.MateUnmapped
			switch frag {
			case 0:
				rec.Flags |= sam.Read1
			case 1:
				rec.Flags |= sam.Read2
			}
		}
		recs = append(recs, rec)
	}
}

// Record implements the Iterator interface.
func (i *unmappedIterator) Record() *sam.Record { return i.rec }

// Err implements the Iterator interface.
func (i *unmappedIterator) Err() error { return i.err }

// Close implements the Iterator interface.
func (i *unmappedIterator) Close() error {
	if i.reads == nil {
		return i.err
	}
	var err errorreporter.T
	err.Set(i.reads.Close())
	i.reads = nil
	if i.err == nil {
		i.err = err.Err()
	}
	i.provider.mu.Lock()
	i.provider.nActive--
	i.provider.mu.Unlock()
	i.provider.err.Set(i.err)
	return i.err
}
