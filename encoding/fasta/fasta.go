// Package fasta reads the reference sequences of an NGS read collection, and
// writes them in (optionally indexed) FASTA format.
// See http://www.htslib.org/doc/faidx.html.  Briefly, FASTA files consist of a
// number of named sequences that may be interrupted by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
package fasta

import (
	"sync"

	"github.com/grailbio/ngs/ngs"
	"github.com/pkg/errors"
)

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end). Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the read collection.
	SeqNames() []string
}

// Collection is a Fasta over the references of a read collection. Sequences
// are named by their common names.
type Collection struct {
	mu       sync.Mutex
	refs     map[string]*ngs.Reference
	lens     map[string]uint64
	seqNames []string
}

// New opens every reference of rc. The caller must Close the result before
// closing rc.
func New(rc *ngs.ReadCollection) (*Collection, error) {
	it, err := rc.References()
	if err != nil {
		return nil, err
	}
	defer it.Close() // nolint: errcheck
	f := &Collection{refs: map[string]*ngs.Reference{}, lens: map[string]uint64{}}
	for {
		ok, err := it.Next()
		if err != nil {
			f.Close() // nolint: errcheck
			return nil, err
		}
		if !ok {
			break
		}
		name, err := it.CommonName()
		if err == nil {
			f.lens[name], err = it.Length()
		}
		if err == nil {
			f.refs[name], err = rc.Reference(name)
		}
		if err != nil {
			f.Close() // nolint: errcheck
			return nil, err
		}
		f.seqNames = append(f.seqNames, name)
	}
	return f, nil
}

// Get implements Fasta.Get.
func (f *Collection) Get(seqName string, start, end uint64) (string, error) {
	length, err := f.Len(seqName)
	if err != nil {
		return "", err
	}
	if start >= end {
		return "", errors.Errorf("start must be less than end")
	}
	if end > length {
		return "", errors.Errorf("end is past end of sequence %s: %d", seqName, length)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.refs[seqName].ReferenceBases(start, end-start)
	if err != nil {
		return "", errors.Wrapf(err, "%s:%d-%d", seqName, start, end)
	}
	if uint64(len(s)) != end-start {
		return "", errors.Errorf("%s:%d-%d: got %d bases", seqName, start, end, len(s))
	}
	return s, nil
}

// Len implements Fasta.Len.
func (f *Collection) Len(seqName string) (uint64, error) {
	length, ok := f.lens[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return length, nil
}

// SeqNames implements Fasta.SeqNames.
func (f *Collection) SeqNames() []string {
	return f.seqNames
}

// Close releases the references.
func (f *Collection) Close() error {
	var err error
	for _, ref := range f.refs {
		if ref == nil {
			continue
		}
		if e := ref.Close(); e != nil && err == nil {
			err = e
		}
	}
	f.refs = nil
	return err
}
