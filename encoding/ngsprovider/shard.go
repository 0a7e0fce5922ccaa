package ngsprovider

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// Shard is a half-open range [Start, End) of one reference. An alignment
// belongs to the shard if its start position is in [Start-Padding,
// End+Padding). A shard with a nil Ref holds the unaligned reads.
type Shard struct {
	Ref        *sam.Reference
	Start, End int
	Padding    int
	// ShardIdx is the index of the shard in the list GenerateShards
	// returned.
	ShardIdx int
}

// Unmapped reports whether s is the shard of unaligned reads.
func (s Shard) Unmapped() bool { return s.Ref == nil }

// PaddedStart returns the start of the shard, padding included.
func (s Shard) PaddedStart() int {
	if s.Start-s.Padding < 0 {
		return 0
	}
	return s.Start - s.Padding
}

// PaddedEnd returns the end of the shard, padding included.
func (s Shard) PaddedEnd() int {
	end := s.End + s.Padding
	if s.Ref != nil && end > s.Ref.Len() {
		return s.Ref.Len()
	}
	return end
}

// Contains reports whether an alignment that starts at pos belongs to s.
func (s Shard) Contains(pos int) bool {
	return pos >= s.PaddedStart() && pos < s.PaddedEnd()
}

func (s Shard) String() string {
	name := "*"
	if s.Ref != nil {
		name = s.Ref.Name()
	}
	return fmt.Sprintf("%d:%s:%d-%d(+%d)", s.ShardIdx, name, s.Start, s.End, s.Padding)
}

// splitReferences cuts every reference into shards of basesPerShard bases.
// If unmapped is set, a shard for the unaligned reads comes last.
func splitReferences(refs []*sam.Reference, basesPerShard, padding int, unmapped bool) []Shard {
	var shards []Shard
	for _, ref := range refs {
		for start := 0; start < ref.Len(); start += basesPerShard {
			end := start + basesPerShard
			if end > ref.Len() {
				end = ref.Len()
			}
			shards = append(shards, Shard{
				Ref:      ref,
				Start:    start,
				End:      end,
				Padding:  padding,
				ShardIdx: len(shards),
			})
		}
	}
	if unmapped {
		shards = append(shards, Shard{ShardIdx: len(shards)})
	}
	return shards
}
