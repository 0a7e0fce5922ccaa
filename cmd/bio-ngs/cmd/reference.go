package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/ngs/encoding/fasta"
	"github.com/grailbio/ngs/ngs"
)

type referenceOpts struct {
	out       string
	index     bool
	lineWidth int
}

// writeReference writes the references of spec named by names, or all of
// them, in FASTA format. With opts.index, the index is written to
// opts.out+".fai".
func writeReference(ctx context.Context, stdout io.Writer, m *ngs.Manager, spec string, names []string, opts referenceOpts) (err error) {
	if opts.index && (opts.out == "" || opts.out == "-") {
		return fmt.Errorf("-index requires -out")
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
	f, err := fasta.New(rc)
	if err != nil {
		e.Set(err)
		return err
	}
	defer func() { e.Set(f.Close()) }()
	out, err := createOutput(ctx, opts.out, stdout)
	if err != nil {
		e.Set(err)
		return err
	}
	defer func() { e.Set(out.Close(ctx)) }()
	wopts := fasta.WriteOpts{LineWidth: opts.lineWidth, SeqNames: names}
	if opts.index {
		index, err := createOutput(ctx, opts.out+".fai", stdout)
		if err != nil {
			e.Set(err)
			return err
		}
		defer func() { e.Set(index.Close(ctx)) }()
		wopts.Index = index
	}
	e.Set(fasta.Write(out, f, wopts))
	return nil
}
