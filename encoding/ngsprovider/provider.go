package ngsprovider

import (
	"context"
	"sync"

	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/ngs/ngs"
	"github.com/pkg/errors"
)

// DefaultBasesPerShard is the default value of GenerateShardsOpts.BasesPerShard.
const DefaultBasesPerShard = 1 << 22

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Category selects the alignments to read. Defaults to
	// ngs.AllAlignments.
	Category ngs.AlignmentCategory
}

// GenerateShardsOpts defines behavior of Provider.GenerateShards.
type GenerateShardsOpts struct {
	// BasesPerShard is the target shard width. Defaults to
	// DefaultBasesPerShard.
	BasesPerShard int
	// NumShards, if set, overrides BasesPerShard so that the references are
	// split into about NumShards shards.
	NumShards int
	// Padding widens every shard on both sides. Alignments that start in the
	// padding of a shard belong to it too.
	Padding int
	// IncludeUnmapped adds a last shard that yields the reads with no
	// aligned fragment, one unmapped record per fragment. Without it the
	// shards cover alignments only.
	IncludeUnmapped bool
}

// Provider reads an NGS read collection in parallel. Thread safe.
type Provider interface {
	// GetHeader returns a SAM header with one reference per reference of
	// the collection. The caller must not modify it.
	GetHeader() (*sam.Header, error)

	// GenerateShards splits the references into contiguous, non-overlapping
	// ranges. Use NewIterator to read the alignments of a shard. Unaligned
	// reads are not part of any range; set opts.IncludeUnmapped to get them
	// in an extra shard.
	GenerateShards(opts GenerateShardsOpts) ([]Shard, error)

	// NewIterator returns an iterator over the alignments that start within
	// the shard.
	NewIterator(shard Shard) Iterator

	// Close must be called exactly once, after every iterator has been
	// closed. It returns any error encountered by the provider or its
	// iterators.
	Close() error
}

// Iterator iterates over sam.Records of one shard in position order. Thread
// compatible.
type Iterator interface {
	// Scan advances to the next record. It returns false at the end of the
	// shard or on error.
	Scan() bool
	// Record returns the current record. Valid only after Scan returned
	// true.
	Record() *sam.Record
	// Err returns the error encountered during iteration, if any.
	Err() error
	// Close releases the iterator and returns Err.
	Close() error
}

// NGSProvider implements Provider for a read collection opened by a
// ngs.Manager.
type NGSProvider struct {
	// Spec is the accession, path or URL of the collection.
	Spec string

	manager *ngs.Manager
	opts    ProviderOpts
	err     errorreporter.T

	mu      sync.Mutex
	rc      *ngs.ReadCollection
	header  *sam.Header
	refs    map[string]*sam.Reference
	nActive int
}

// NewProvider creates a provider for spec. The collection is opened on first
// use.
func NewProvider(m *ngs.Manager, spec string, optList ...ProviderOpts) *NGSProvider {
	opts := ProviderOpts{Category: ngs.AllAlignments}
	for _, o := range optList {
		if o.Category != 0 {
			opts.Category = o.Category
		}
	}
	return &NGSProvider{Spec: spec, manager: m, opts: opts}
}

// collection returns the opened collection and its header.
//
// REQUIRES: p.mu is locked.
func (p *NGSProvider) collection() (*ngs.ReadCollection, error) {
	if p.rc != nil {
		return p.rc, nil
	}
	rc, err := p.manager.OpenReadCollection(context.Background(), p.Spec)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p.Spec)
	}
	header, refs, err := readHeader(rc)
	if err != nil {
		rc.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "%s: read references", p.Spec)
	}
	p.rc, p.header, p.refs = rc, header, refs
	return rc, nil
}

func readHeader(rc *ngs.ReadCollection) (*sam.Header, map[string]*sam.Reference, error) {
	it, err := rc.References()
	if err != nil {
		return nil, nil, err
	}
	defer it.Close() // nolint: errcheck
	var (
		list []*sam.Reference
		refs = map[string]*sam.Reference{}
	)
	for {
		ok, err := it.Next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		name, err := it.CommonName()
		if err != nil {
			return nil, nil, err
		}
		length, err := it.Length()
		if err != nil {
			return nil, nil, err
		}
		ref, err := sam.NewReference(name, "", "", int(length), nil, nil)
		if err != nil {
			return nil, nil, err
		}
		list = append(list, ref)
		refs[name] = ref
	}
	header, err := sam.NewHeader(nil, list)
	if err != nil {
		return nil, nil, err
	}
	header.SortOrder = sam.Coordinate
	return header, refs, nil
}

// GetHeader implements the Provider interface.
func (p *NGSProvider) GetHeader() (*sam.Header, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.collection(); err != nil {
		p.err.Set(err)
		return nil, err
	}
	return p.header, nil
}

// GenerateShards implements the Provider interface.
func (p *NGSProvider) GenerateShards(opts GenerateShardsOpts) ([]Shard, error) {
	header, err := p.GetHeader()
	if err != nil {
		return nil, err
	}
	width := opts.BasesPerShard
	if opts.NumShards > 0 {
		total := 0
		for _, ref := range header.Refs() {
			total += ref.Len()
		}
		width = (total + opts.NumShards - 1) / opts.NumShards
	}
	if width <= 0 {
		width = DefaultBasesPerShard
	}
	shards := splitReferences(header.Refs(), width, opts.Padding, opts.IncludeUnmapped)
	log.Debug.Printf("%s: %d shards of %d bases", p.Spec, len(shards), width)
	return shards, nil
}

// NewIterator implements the Provider interface.
func (p *NGSProvider) NewIterator(shard Shard) Iterator {
	p.mu.Lock()
	defer p.mu.Unlock()
	rc, err := p.collection()
	if err != nil {
		p.err.Set(err)
		return NewErrorIterator(err)
	}
	if shard.Unmapped() {
		reads, err := rc.Reads(ngs.Unaligned)
		if err != nil {
			err = errors.Wrapf(err, "%v", shard)
			p.err.Set(err)
			return NewErrorIterator(err)
		}
		p.nActive++
		return &unmappedIterator{provider: p, shard: shard, reads: reads}
	}
	ref, err := rc.Reference(shard.Ref.Name())
	if err != nil {
		err = errors.Wrapf(err, "%v", shard)
		p.err.Set(err)
		return NewErrorIterator(err)
	}
	start, end := shard.PaddedStart(), shard.PaddedEnd()
	alignments, err := ref.AlignmentSlice(int64(start), uint64(end-start), p.opts.Category)
	if err != nil {
		ref.Close() // nolint: errcheck
		err = errors.Wrapf(err, "%v", shard)
		p.err.Set(err)
		return NewErrorIterator(err)
	}
	p.nActive++
	return &ngsIterator{provider: p, shard: shard, ref: ref, alignments: alignments, refs: p.refs}
}

// Close implements the Provider interface.
func (p *NGSProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nActive > 0 {
		log.Panicf("%s: %d iterators still active", p.Spec, p.nActive)
	}
	if p.rc != nil {
		p.err.Set(p.rc.Close())
		p.rc = nil
	}
	return p.err.Err()
}

type ngsIterator struct {
	provider   *NGSProvider
	shard      Shard
	ref        *ngs.Reference
	alignments *ngs.AlignmentIterator
	refs       map[string]*sam.Reference

	rec  *sam.Record
	err  error
	done bool
}

// Scan implements the Iterator interface.
func (i *ngsIterator) Scan() bool {
	for !i.done && i.err == nil {
		ok, err := i.alignments.Next()
		if err != nil {
			i.err = errors.Wrapf(err, "%v", i.shard)
			break
		}
		if !ok {
			i.done = true
			break
		}
		pos, err := i.alignments.Position()
		if err != nil {
			i.err = errors.Wrapf(err, "%v", i.shard)
			break
		}
		if pos < int64(i.shard.PaddedStart()) {
			continue
		}
		if !i.shard.Contains(int(pos)) {
			i.done = true
			break
		}
		if i.rec, err = NewRecord(&i.alignments.Alignment, i.refs); err != nil {
			i.err = errors.Wrapf(err, "%v", i.shard)
			break
		}
		return true
	}
	i.rec = nil
	return false
}

// Record implements the Iterator interface.
func (i *ngsIterator) Record() *sam.Record { return i.rec }

// Err implements the Iterator interface.
func (i *ngsIterator) Err() error { return i.err }

// Close implements the Iterator interface.
func (i *ngsIterator) Close() error {
	if i.alignments == nil {
		return i.err
	}
	var err errorreporter.T
	err.Set(i.alignments.Close())
	err.Set(i.ref.Close())
	i.alignments, i.ref = nil, nil
	if i.err == nil {
		i.err = err.Err()
	}
	i.provider.mu.Lock()
	i.provider.nActive--
	i.provider.mu.Unlock()
	i.provider.err.Set(i.err)
	return i.err
}

type errorIterator struct {
	err error
}

func (i *errorIterator) Scan() bool          { return false }
func (i *errorIterator) Record() *sam.Record { panic("shall not be called") }
func (i *errorIterator) Err() error          { return i.err }
func (i *errorIterator) Close() error        { return i.err }

// NewErrorIterator creates an Iterator that yields no record and returns err
// in Err and Close.
func NewErrorIterator(err error) Iterator {
	return &errorIterator{err: err}
}
