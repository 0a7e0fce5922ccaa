package cmd

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/ngs/encoding/ngsprovider"
)

type flagCounts struct {
	total           int
	mapped          int
	duplicate       int
	secondary       int
	supplementary   int
	paired          int
	properPair      int
	r1              int
	r2              int
	singleton       int
	bothMapped      int
	diffChr         int
	diffChrHighMapQ int
}

func (c *flagCounts) add(o flagCounts) {
	c.total += o.total
	c.mapped += o.mapped
	c.duplicate += o.duplicate
	c.secondary += o.secondary
	c.supplementary += o.supplementary
	c.paired += o.paired
	c.properPair += o.properPair
	c.r1 += o.r1
	c.r2 += o.r2
	c.singleton += o.singleton
	c.bothMapped += o.bothMapped
	c.diffChr += o.diffChr
	c.diffChrHighMapQ += o.diffChrHighMapQ
}

func (c *flagCounts) record(r *sam.Record) {
	f := r.Flags
	c.total++
	if f&sam.Unmapped == 0 {
		c.mapped++
	}
	if f&sam.Duplicate != 0 {
		c.duplicate++
	}
	switch {
	case f&sam.Secondary != 0:
		c.secondary++
		return
	case f&sam.Supplementary != 0:
		c.supplementary++
		return
	case f&sam.Paired == 0:
		return
	}
	c.paired++
	if f&sam.ProperPair != 0 && f&sam.Unmapped == 0 {
		c.properPair++
	}
	if f&sam.Read1 != 0 {
		c.r1++
	}
	if f&sam.Read2 != 0 {
		c.r2++
	}
	if f&sam.Unmapped != 0 {
		return
	}
	if f&sam.MateUnmapped != 0 {
		c.singleton++
		return
	}
	c.bothMapped++
	if r.Ref.ID() != r.MateRef.ID() {
		c.diffChr++
		if r.MapQ >= 5 {
			c.diffChrHighMapQ++
		}
	}
}

// flagStats holds the counts of QC-passed and QC-failed records.
type flagStats struct {
	pass, fail flagCounts
}

func (s *flagStats) record(r *sam.Record) {
	if r.Flags&sam.QCFail != 0 {
		s.fail.record(r)
	} else {
		s.pass.record(r)
	}
}

func percent(a int, b int) string {
	if b == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", float64(a)*100/float64(b))
}

func (s *flagStats) write(out io.Writer) {
	p, f := &s.pass, &s.fail
	fmt.Fprintf(out, "%d + %d in total (QC-passed reads + QC-failed reads)\n", p.total, f.total)
	fmt.Fprintf(out, "%d + %d secondary\n", p.secondary, f.secondary)
	fmt.Fprintf(out, "%d + %d supplementary\n", p.supplementary, f.supplementary)
	fmt.Fprintf(out, "%d + %d duplicates\n", p.duplicate, f.duplicate)
	fmt.Fprintf(out, "%d + %d mapped (%s:%s)\n", p.mapped, f.mapped,
		percent(p.mapped, p.total), percent(f.mapped, f.total))
	fmt.Fprintf(out, "%d + %d paired in sequencing\n", p.paired, f.paired)
	fmt.Fprintf(out, "%d + %d read1\n", p.r1, f.r1)
	fmt.Fprintf(out, "%d + %d read2\n", p.r2, f.r2)
	fmt.Fprintf(out, "%d + %d properly paired (%s:%s)\n", p.properPair, f.properPair,
		percent(p.properPair, p.paired), percent(f.properPair, f.paired))
	fmt.Fprintf(out, "%d + %d with itself and mate mapped\n", p.bothMapped, f.bothMapped)
	fmt.Fprintf(out, "%d + %d singletons (%s:%s)\n", p.singleton, f.singleton,
		percent(p.singleton, p.total), percent(f.singleton, f.total))
	fmt.Fprintf(out, "%d + %d with mate mapped to a different chr\n", p.diffChr, f.diffChr)
	fmt.Fprintf(out, "%d + %d with mate mapped to a different chr (mapQ>=5)\n", p.diffChrHighMapQ, f.diffChrHighMapQ)
}

func flagstat(out io.Writer, provider ngsprovider.Provider) error {
	shards, err := provider.GenerateShards(ngsprovider.GenerateShardsOpts{IncludeUnmapped: true})
	if err != nil {
		provider.Close() // nolint: errcheck
		return err
	}
	shardCh := make(chan ngsprovider.Shard, len(shards))
	for _, shard := range shards {
		shardCh <- shard
	}
	close(shardCh)

	var (
		mu    sync.Mutex
		total flagStats
		rep   errorreporter.T
	)
	rep.Set(traverse.Each(runtime.NumCPU(), func(int) error {
		var s flagStats
		for shard := range shardCh {
			iter := provider.NewIterator(shard)
			for iter.Scan() {
				s.record(iter.Record())
			}
			rep.Set(iter.Close())
		}
		mu.Lock()
		total.pass.add(s.pass)
		total.fail.add(s.fail)
		mu.Unlock()
		return nil
	}))
	rep.Set(provider.Close())
	if err := rep.Err(); err != nil {
		return err
	}
	total.write(out)
	return nil
}
