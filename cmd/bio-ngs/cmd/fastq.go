package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/ngs/encoding/fastq"
	"github.com/grailbio/ngs/ngs"
)

type fastqOpts struct {
	category string
	r1, r2   string
	noPrefix bool
}

var readCategories = map[string]ngs.ReadCategory{}

func init() {
	for _, c := range []ngs.ReadCategory{ngs.FullyAligned, ngs.PartiallyAligned, ngs.Aligned, ngs.Unaligned, ngs.AllReads} {
		readCategories[c.String()] = c
	}
}

// exportFASTQ writes the reads of spec to opts.r1, and the second fragments
// of pairs to opts.r2 if it is set.
func exportFASTQ(ctx context.Context, stdout io.Writer, m *ngs.Manager, spec string, opts fastqOpts) (err error) {
	cat, ok := readCategories[opts.category]
	if !ok {
		return fmt.Errorf("unknown read category %q", opts.category)
	}
	if opts.r2 != "" && opts.r1 == "" {
		return fmt.Errorf("-r2 requires -r1")
	}
	rc, err := m.OpenReadCollection(ctx, spec)
	if err != nil {
		return err
	}
	var e errors.Once
	defer func() {
		e.Set(rc.Close())
		err = e.Err()
	}()
	out1, err := createOutput(ctx, opts.r1, stdout)
	if err != nil {
		e.Set(err)
		return err
	}
	defer func() { e.Set(out1.Close(ctx)) }()
	var w2 *fastq.Writer
	if opts.r2 != "" {
		out2, err := createOutput(ctx, opts.r2, stdout)
		if err != nil {
			e.Set(err)
			return err
		}
		defer func() { e.Set(out2.Close(ctx)) }()
		w2 = fastq.NewWriter(out2)
	}
	exportOpts := fastq.ExportOpts{Category: cat}
	if !opts.noPrefix {
		exportOpts.Prefix = spec
	}
	stats, err := fastq.Export(rc, fastq.NewWriter(out1), w2, exportOpts)
	e.Set(err)
	log.Printf("%s: wrote %d reads, %d fragments; skipped %d reads", spec, stats.Reads, stats.Fragments, stats.Skipped)
	return nil
}
