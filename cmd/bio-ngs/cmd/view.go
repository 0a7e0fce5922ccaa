package cmd

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/ngs/encoding/ngsprovider"
)

type viewOpts struct {
	headerOnly    bool
	withHeader    bool
	regions       string
	filter        string
	out           string
	basesPerShard int
	unmapped      bool
}

// region is a 0-based half-open range of alignment start positions.
type region struct {
	ref        string
	start, end int
}

var regionRE = regexp.MustCompile(`^([^:]+):(\d+)-(\d+)$`)

// parseRegion parses "ref:begin-end", where [begin,end] is 1-based and
// closed.
func parseRegion(text string) (region, error) {
	m := regionRE.FindStringSubmatch(text)
	if m == nil {
		return region{}, fmt.Errorf("%s: region must be of form 'ref:begin-end'", text)
	}
	begin, err := strconv.Atoi(m[2])
	if err != nil {
		return region{}, err
	}
	end, err := strconv.Atoi(m[3])
	if err != nil {
		return region{}, err
	}
	if begin < 1 || end < begin {
		return region{}, fmt.Errorf("%s: invalid range", text)
	}
	return region{ref: m[1], start: begin - 1, end: end}, nil
}

func parseRegions(text string) ([]region, error) {
	var regions []region
	for _, val := range strings.Split(text, ",") {
		r, err := parseRegion(val)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// regionShards returns one shard per region.
func regionShards(header *sam.Header, regions []region) ([]ngsprovider.Shard, error) {
	var shards []ngsprovider.Shard
	for _, r := range regions {
		var ref *sam.Reference
		for _, h := range header.Refs() {
			if h.Name() == r.ref {
				ref = h
			}
		}
		if ref == nil {
			return nil, fmt.Errorf("reference %v not found in header", r.ref)
		}
		shards = append(shards, ngsprovider.Shard{Ref: ref, Start: r.start, End: r.end, ShardIdx: len(shards)})
	}
	return shards, nil
}

// viewShards scans shards in parallel, and writes the records matching the
// filter in shard order.
//
// REQUIRES: ShardIdx field of shards[] must have values 0, 1, 2, ...
func viewShards(out io.Writer, provider ngsprovider.Provider, filter filterFunc, shards []ngsprovider.Shard) error {
	shardCh := make(chan ngsprovider.Shard, len(shards))
	for _, shard := range shards {
		shardCh <- shard
	}
	close(shardCh)

	var (
		wgW, wgR sync.WaitGroup
		e        errors.Once
		oq       = syncqueue.NewOrderedQueue(len(shards))
	)
	// done is closed when the writer stops reading. Scanners must not block
	// on their channels after that.
	done := make(chan struct{})
	for i := 0; i < runtime.NumCPU(); i++ {
		wgW.Add(1)
		go func() {
			defer wgW.Done()
			for shard := range shardCh {
				recCh := make(chan *sam.Record, 1024)
				if err := oq.Insert(shard.ShardIdx, recCh); err != nil {
					e.Set(err)
					close(recCh)
					continue
				}
				iter := provider.NewIterator(shard)
			scan:
				for iter.Scan() {
					rec := iter.Record()
					if !filter(rec) {
						continue
					}
					select {
					case recCh <- rec:
					case <-done:
						break scan
					}
				}
				e.Set(iter.Close())
				close(recCh)
			}
		}()
	}

	wgR.Add(1)
	go func() {
		defer wgR.Done()
		defer close(done)
		for {
			val, ok, err := oq.Next()
			if err != nil {
				e.Set(err)
				return
			}
			if !ok {
				return
			}
			for rec := range val.(chan *sam.Record) {
				s, err := rec.MarshalText()
				if err == nil {
					_, err = fmt.Fprintf(out, "%s\n", s)
				}
				if err != nil {
					e.Set(err)
					return
				}
			}
		}
	}()
	wgW.Wait()
	e.Set(oq.Close(nil))
	wgR.Wait()
	return e.Err()
}

func view(ctx context.Context, stdout io.Writer, provider ngsprovider.Provider, opts viewOpts) (err error) {
	filter, err := parseFilter(opts.filter)
	if err != nil {
		return err
	}
	var regions []region
	if opts.regions != "" {
		if regions, err = parseRegions(opts.regions); err != nil {
			return err
		}
	}
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = e
		}
	}()
	out, err := createOutput(ctx, opts.out, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()

	header, err := provider.GetHeader()
	if err != nil {
		return err
	}
	if opts.headerOnly || opts.withHeader {
		h, err := header.MarshalText()
		if err != nil {
			return err
		}
		if _, err := out.Write(h); err != nil {
			return err
		}
		if opts.headerOnly {
			return nil
		}
	}
	var shards []ngsprovider.Shard
	if len(regions) > 0 {
		shards, err = regionShards(header, regions)
	} else {
		shards, err = provider.GenerateShards(ngsprovider.GenerateShardsOpts{
			BasesPerShard:   opts.basesPerShard,
			IncludeUnmapped: opts.unmapped,
		})
	}
	if err != nil {
		return err
	}
	return viewShards(out, provider, filter, shards)
}
