package cmd

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"runtime"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/unsafe"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/ngs/encoding/ngsprovider"
)

type checksumOpts struct {
	// all treats all the following bool fields to be true.
	all bool

	name    bool
	mapQ    bool
	cigar   bool
	matePos bool
	tempLen bool
	seq     bool
	qual    bool
	aux     bool
}

// refChecksum is the checksum of the alignments on one reference. Every sum
// is commutative, so the result does not depend on sharding.
type refChecksum struct {
	Name       string
	NRecs      int64
	SumPos     uint64
	SumFlags   uint64
	SumTempLen uint64
	SumMapQ    uint64
	SumMatePos uint64
	SumName    uint64
	SumSeq     uint64
	SumCigar   uint64
	SumQual    uint64
	SumAux     uint64
}

func hashField(h hash.Hash64, pos [8]byte, value []byte) uint64 {
	h.Reset()
	h.Write(pos[:]) // nolint: errcheck
	h.Write(value)  // nolint: errcheck
	return h.Sum64()
}

func (c *refChecksum) add(r *sam.Record, h hash.Hash64, opts checksumOpts) {
	c.NRecs++
	c.SumPos += uint64(r.Pos)

	var pos [8]byte
	binary.LittleEndian.PutUint32(pos[:], uint32(r.Ref.ID()))
	binary.LittleEndian.PutUint32(pos[4:], uint32(r.Pos))

	var value [8]byte
	binary.LittleEndian.PutUint32(value[:4], uint32(r.Flags))
	c.SumFlags += hashField(h, pos, value[:4])

	if opts.all || opts.tempLen {
		binary.LittleEndian.PutUint32(value[:4], uint32(r.TempLen))
		c.SumTempLen += hashField(h, pos, value[:4])
	}
	if opts.all || opts.mapQ {
		binary.LittleEndian.PutUint32(value[:4], uint32(r.MapQ))
		c.SumMapQ += hashField(h, pos, value[:4])
	}
	if opts.all || opts.matePos {
		binary.LittleEndian.PutUint32(value[:4], uint32(r.MateRef.ID()))
		binary.LittleEndian.PutUint32(value[4:], uint32(r.MatePos))
		c.SumMatePos += hashField(h, pos, value[:8])
	}
	if opts.all || opts.name {
		c.SumName += hashField(h, pos, unsafe.StringToBytes(r.Name))
	}
	if opts.all || opts.seq {
		c.SumSeq += hashField(h, pos, r.Seq.Expand())
	}
	if opts.all || opts.qual {
		c.SumQual += hashField(h, pos, r.Qual)
	}
	if opts.all || opts.cigar {
		c.SumCigar += hashField(h, pos, unsafe.StringToBytes(r.Cigar.String()))
	}
	if opts.all || opts.aux {
		h.Reset()
		h.Write(pos[:]) // nolint: errcheck
		for _, aux := range r.AuxFields {
			h.Write(aux) // nolint: errcheck
		}
		c.SumAux += h.Sum64()
	}
}

func (c *refChecksum) merge(o refChecksum) {
	c.NRecs += o.NRecs
	c.SumPos += o.SumPos
	c.SumFlags += o.SumFlags
	c.SumTempLen += o.SumTempLen
	c.SumMapQ += o.SumMapQ
	c.SumMatePos += o.SumMatePos
	c.SumName += o.SumName
	c.SumSeq += o.SumSeq
	c.SumCigar += o.SumCigar
	c.SumQual += o.SumQual
	c.SumAux += o.SumAux
}

// collectionChecksum is the checksum of a read collection, one entry per
// reference in header order.
type collectionChecksum struct {
	Refs []refChecksum
}

func checksumShards(opts checksumOpts, nrefs int, ch chan ngsprovider.Shard, provider ngsprovider.Provider, rep *errorreporter.T) []refChecksum {
	refs := make([]refChecksum, nrefs)
	h := seahash.New()
	for shard := range ch {
		iter := provider.NewIterator(shard)
		for iter.Scan() {
			r := iter.Record()
			refs[r.Ref.ID()].add(r, h, opts)
		}
		rep.Set(iter.Close())
	}
	return refs
}

func checksum(out io.Writer, provider ngsprovider.Provider, opts checksumOpts) error {
	var rep errorreporter.T
	csum, err := checksumCollection(provider, opts, &rep)
	rep.Set(err)
	rep.Set(provider.Close())
	if err := rep.Err(); err != nil {
		return err
	}
	js, err := json.MarshalIndent(csum, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(js))
	return err
}

func checksumCollection(provider ngsprovider.Provider, opts checksumOpts, rep *errorreporter.T) (collectionChecksum, error) {
	var csum collectionChecksum
	header, err := provider.GetHeader()
	if err != nil {
		return csum, err
	}
	shards, err := provider.GenerateShards(ngsprovider.GenerateShardsOpts{})
	if err != nil {
		return csum, err
	}
	shardCh := make(chan ngsprovider.Shard, len(shards))
	for _, shard := range shards {
		shardCh <- shard
	}
	close(shardCh)

	nrefs := len(header.Refs())
	parallelism := runtime.NumCPU()
	resultCh := make(chan []refChecksum, parallelism)
	for i := 0; i < parallelism; i++ {
		go func() {
			resultCh <- checksumShards(opts, nrefs, shardCh, provider, rep)
		}()
	}
	csum.Refs = make([]refChecksum, nrefs)
	for i, ref := range header.Refs() {
		csum.Refs[i].Name = ref.Name()
	}
	for i := 0; i < parallelism; i++ {
		for j, r := range <-resultCh {
			csum.Refs[j].merge(r)
		}
	}
	return csum, nil
}
