// Package ngsprovider reads the alignments of an NGS read collection as
// sam.Records, shard by shard, so that BAM tools can scan SRA data in parallel.
//
// Example:
//
//	p := ngsprovider.NewProvider(ngs.Default, "SRR1063272")
//	shards, err := p.GenerateShards(ngsprovider.GenerateShardsOpts{})
//	...
//	for _, shard := range shards {
//	  iter := p.NewIterator(shard)
//	  for iter.Scan() {
//	    rec := iter.Record()
//	    ...
//	  }
//	  if err := iter.Close(); err != nil { ... }
//	}
//	if err := p.Close(); err != nil { ... }
package ngsprovider
