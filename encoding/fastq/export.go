package fastq

import (
	"fmt"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/ngs/ngs"
)

// ExportOpts controls Export.
type ExportOpts struct {
	// Category selects the reads to export. The zero value selects
	// ngs.AllReads.
	Category ngs.ReadCategory
	// Prefix, if nonempty, is prepended to each read ID with a '.', as in
	// "SRR0000001.1".
	Prefix string
}

// ExportStats counts what Export wrote.
type ExportStats struct {
	Reads, Fragments int
	// Skipped is the number of reads that were not written because they do
	// not have exactly two fragments.
	Skipped int
}

// Export writes the fragments of the reads of rc. If r2 is nil, every
// fragment is written to r1. Otherwise only reads with two fragments are
// written, the first fragment to r1 and the second to r2. Fragment n of a
// read is named "<read>/<n>", with n counting from 1.
func Export(rc *ngs.ReadCollection, r1, r2 *Writer, opts ExportOpts) (stats ExportStats, err error) {
	if opts.Category == 0 {
		opts.Category = ngs.AllReads
	}
	it, err := rc.Reads(opts.Category)
	if err != nil {
		return stats, err
	}
	defer func() {
		if e := it.Close(); e != nil && err == nil {
			err = e
		}
	}()
	var frags []Read
	for {
		ok, err := it.Next()
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}
		if frags, err = readFragments(&it.Read, opts.Prefix, frags[:0]); err != nil {
			return stats, err
		}
		switch {
		case r2 == nil:
			for i := range frags {
				if err := r1.Write(&frags[i]); err != nil {
					return stats, err
				}
			}
		case len(frags) == 2:
			if err := r1.Write(&frags[0]); err != nil {
				return stats, err
			}
			if err := r2.Write(&frags[1]); err != nil {
				return stats, err
			}
		default:
			log.Debug.Printf("%s: skipping read with %d fragments", frags[0].ID, len(frags))
			stats.Skipped++
			continue
		}
		stats.Reads++
		stats.Fragments += len(frags)
	}
	if err := r1.Flush(); err != nil {
		return stats, err
	}
	if r2 != nil {
		if err := r2.Flush(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// readFragments appends the fragments of the current read to frags.
func readFragments(r *ngs.Read, prefix string, frags []Read) ([]Read, error) {
	id, err := r.ReadID()
	if err != nil {
		return frags, err
	}
	if prefix != "" {
		id = prefix + "." + id
	}
	for n := 1; ; n++ {
		ok, err := r.NextFragment()
		if err != nil {
			return frags, errors.E(err, "read", id)
		}
		if !ok {
			break
		}
		seq, err := r.FragmentBases(0, ngs.Remaining)
		if err != nil {
			return frags, errors.E(err, "read", id)
		}
		qual, err := r.FragmentQualities(0, ngs.Remaining)
		if err != nil {
			return frags, errors.E(err, "read", id)
		}
		if len(seq) != len(qual) {
			return frags, errors.E(errors.Invalid, "read", id, fmt.Sprintf("has %d bases but %d qualities", len(seq), len(qual)))
		}
		frags = append(frags, Read{ID: id + "/" + strconv.Itoa(n), Seq: seq, Qual: qual})
	}
	if len(frags) == 0 {
		return frags, errors.E(errors.Invalid, "read", id, "has no fragments")
	}
	return frags, nil
}
