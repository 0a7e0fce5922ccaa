package cmd

import (
	"context"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/ngs/encoding/ngsprovider"
)

// convertToBAM writes every alignment of the provider to bamPath, followed by
// the unaligned reads. Shards are read one at a time so that the output stays
// sorted.
func convertToBAM(ctx context.Context, bamPath string, provider ngsprovider.Provider, parallelism int) error {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	header, err := provider.GetHeader()
	if err != nil {
		return err
	}
	shards, err := provider.GenerateShards(ngsprovider.GenerateShardsOpts{IncludeUnmapped: true})
	if err != nil {
		return err
	}
	out, err := file.Create(ctx, bamPath)
	if err != nil {
		return err
	}
	w, err := bam.NewWriter(out.Writer(ctx), header, parallelism)
	if err != nil {
		return errors.E(err, "create", bamPath)
	}
	var (
		e    errors.Once
		nrec int
	)
	for _, shard := range shards {
		iter := provider.NewIterator(shard)
		for iter.Scan() {
			if err := w.Write(iter.Record()); err != nil {
				e.Set(err)
				break
			}
			nrec++
		}
		e.Set(iter.Close())
		if e.Err() != nil {
			break
		}
	}
	e.Set(w.Close())
	e.Set(out.Close(ctx))
	log.Printf("%s: wrote %d records in %d shards", bamPath, nrec, len(shards))
	return e.Err()
}
