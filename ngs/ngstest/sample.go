package ngstest

// SampleAccession is the accession of the collection returned by Sample.
const SampleAccession = "SRR0000001"

// Sample returns a small collection with two references, four alignments
// (one secondary, one mate pair) and four reads of every category. Each call
// returns a new copy.
//
//	chr1  ACGTACGTACGTACGTACGT
//	1       GTAC                  4M, mate of 2
//	2            ACG^TTC          1S3M1I2M, reversed, mismatch at 12
//	3              GT--GT         2M2D2M, secondary
//	chr2  GGGGCCCCAAAATTTT
//	4     GGGG                    4M
func Sample() *Collection {
	a1 := &Alignment{
		ID: "1", ReadID: "1", FragmentID: "1.FR0", ReadGroup: "A",
		Position: 2, MapQ: 60, Cigar: "4M", Bases: "GTAC", Qualities: "IIII",
		TemplateLength: 11,
	}
	a2 := &Alignment{
		ID: "2", ReadID: "1", FragmentID: "1.FR1", ReadGroup: "A",
		Position: 8, MapQ: 50, Cigar: "1S3M1I2M", Bases: "NACGTTC", Qualities: "#IIIII5",
		Reversed: true, TemplateLength: 11,
	}
	a1.Mate, a2.Mate = a2, a1
	a3 := &Alignment{
		ID: "3", ReadID: "2", FragmentID: "2.FR0", ReadGroup: "A",
		Position: 10, MapQ: 10, Cigar: "2M2D2M", Bases: "GTGT", Qualities: "5555",
		Secondary: true,
	}
	a4 := &Alignment{
		ID: "4", ReadID: "3", FragmentID: "3.FR0", ReadGroup: "B",
		Position: 0, MapQ: 30, Cigar: "4M", Bases: "GGGG", Qualities: "IIII",
	}
	return &Collection{
		Accession: SampleAccession,
		ReadGroups: []*ReadGroup{
			{Name: "A", Stats: map[string]interface{}{
				"BASE_COUNT": uint64(19),
				"SPOT_COUNT": uint64(2),
				"AVG_LEN":    9.5,
				"PLATFORM":   "ILLUMINA",
			}},
			{Name: "B", Stats: map[string]interface{}{
				"BASE_COUNT": uint64(8),
				"SPOT_COUNT": uint64(2),
			}},
		},
		References: []*Reference{
			{
				CommonName: "chr1", CanonicalName: "NC_000001.11",
				Bases:      "ACGTACGTACGTACGTACGT",
				Alignments: []*Alignment{a1, a2, a3},
			},
			{
				CommonName: "chr2", CanonicalName: "NC_000002.12", Circular: true,
				Bases:      "GGGGCCCCAAAATTTT",
				Alignments: []*Alignment{a4},
			},
		},
		Reads: []*Read{
			{ID: "1", Name: "r1", ReadGroup: "A", Fragments: []Fragment{
				{ID: "1.FR0", Bases: "GTAC", Qualities: "IIII", Aligned: true},
				{ID: "1.FR1", Bases: "NACGTTC", Qualities: "#IIIII5", Aligned: true},
			}},
			{ID: "2", Name: "r2", ReadGroup: "A", Fragments: []Fragment{
				{ID: "2.FR0", Bases: "GTGT", Qualities: "5555", Aligned: true},
				{ID: "2.FR1", Bases: "AAAA", Qualities: "IIII"},
			}},
			{ID: "3", Name: "r3", ReadGroup: "B", Fragments: []Fragment{
				{ID: "3.FR0", Bases: "GGGG", Qualities: "IIII", Aligned: true},
			}},
			{ID: "4", Name: "r4", ReadGroup: "B", Fragments: []Fragment{
				{ID: "4.FR0", Bases: "TTTT", Qualities: "IIII"},
			}},
		},
	}
}
