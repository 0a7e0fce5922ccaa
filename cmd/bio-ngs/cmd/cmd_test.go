package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/ngs/encoding/ngsprovider"
	"github.com/grailbio/ngs/native"
	"github.com/grailbio/ngs/native/nativetest"
	"github.com/grailbio/ngs/ngs"
	"github.com/grailbio/ngs/ngs/ngstest"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*ngs.Manager, *nativetest.Lib) {
	rt, lib, err := ngstest.NewRuntime(ngstest.Sample())
	require.NoError(t, err)
	return ngs.NewManagerForRuntime(rt), lib
}

func newProvider(t *testing.T) (ngsprovider.Provider, *nativetest.Lib) {
	m, lib := newManager(t)
	return ngsprovider.NewProvider(m, ngstest.SampleAccession), lib
}

func TestLibs(t *testing.T) {
	m, lib := newManager(t)
	var out bytes.Buffer
	require.NoError(t, libs(context.Background(), &out, m))
	expect.EQ(t, out.String(), "ncbi-vdb\tngstest\nngs-sdk\tngstest\n")

	lib.Remove("PY_NGS_PileupEventGetEventIndelType")
	m, _ = newManagerForLib(t, lib)
	out.Reset()
	require.NoError(t, libs(context.Background(), &out, m))
	assert.Contains(t, out.String(), "unsupported\tPY_NGS_PileupEventGetEventIndelType\n")
}

func newManagerForLib(t *testing.T, lib *nativetest.Lib) (*ngs.Manager, *nativetest.Lib) {
	rt, err := native.NewRuntime(lib, lib)
	require.NoError(t, err)
	return ngs.NewManagerForRuntime(rt), lib
}

func TestView(t *testing.T) {
	p, lib := newProvider(t)
	var out bytes.Buffer
	require.NoError(t, view(context.Background(), &out, p, viewOpts{
		filter:        "mapping_quality >= 30",
		basesPerShard: 8,
	}))
	var got []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		f := strings.Split(line, "\t")
		got = append(got, strings.Join(f[:4], " "))
	}
	expect.EQ(t, got, []string{
		"1 33 chr1 3",
		"1 17 chr1 9",
		"3 0 chr2 1",
	})
	assert.Empty(t, lib.Live())
}

func TestViewUnmapped(t *testing.T) {
	p, lib := newProvider(t)
	var out bytes.Buffer
	require.NoError(t, view(context.Background(), &out, p, viewOpts{
		basesPerShard: 8,
		unmapped:      true,
	}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	f := strings.Split(lines[4], "\t")
	expect.EQ(t, strings.Join(f[:4], " "), "4 4 * 0")
	assert.Empty(t, lib.Live())
}

func TestViewRegionsAndHeader(t *testing.T) {
	p, _ := newProvider(t)
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(dir, "out.sam")
	require.NoError(t, view(context.Background(), io.Discard, p, viewOpts{
		withHeader: true,
		regions:    "chr1:9-11",
		out:        path,
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var headers, recs []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.HasPrefix(line, "@") {
			headers = append(headers, line)
		} else {
			recs = append(recs, line)
		}
	}
	assert.Contains(t, headers, "@SQ\tSN:chr1\tLN:20")
	require.Len(t, recs, 2)
	assert.True(t, strings.HasPrefix(recs[0], "1\t17\tchr1\t9\t50\t3M1I2M\t"), recs[0])
	assert.True(t, strings.HasPrefix(recs[1], "2\t256\tchr1\t11\t10\t2M2D2M\t"), recs[1])
}

type failWriter struct{ n int }

func (w *failWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, io.ErrClosedPipe
}

func TestViewShardsWriteError(t *testing.T) {
	chr1, err := sam.NewReference("chr1", "", "", 10000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1})
	require.NoError(t, err)
	// More records than a shard channel buffers.
	var recs []*sam.Record
	for pos := 0; pos < 5000; pos++ {
		recs = append(recs, &sam.Record{Name: "r", Ref: chr1, Pos: pos, MatePos: -1, MapQ: 60})
	}
	p := ngsprovider.NewFakeProvider(header, recs)
	shards, err := p.GenerateShards(ngsprovider.GenerateShardsOpts{BasesPerShard: 2500})
	require.NoError(t, err)

	w := &failWriter{}
	errc := make(chan error, 1)
	go func() { errc <- viewShards(w, p, func(*sam.Record) bool { return true }, shards) }()
	select {
	case err := <-errc:
		require.Error(t, err)
		expect.EQ(t, err, io.ErrClosedPipe)
	case <-time.After(10 * time.Second):
		t.Fatal("viewShards did not return after a write error")
	}
	expect.EQ(t, w.n, 1)
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("chr1:100-200")
	require.NoError(t, err)
	expect.EQ(t, r, region{ref: "chr1", start: 99, end: 200})
	_, err = parseRegion("chr1:0-10")
	require.Error(t, err)
	_, err = parseRegion("chr1")
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 1000, nil, nil)
	require.NoError(t, err)
	_, err = sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	rg, err := sam.NewAux(sam.NewTag("RG"), "A")
	require.NoError(t, err)
	rec := &sam.Record{
		Name: "r1", Ref: chr1, Pos: 100, MapQ: 40, MateRef: chr2, MatePos: 7,
		Flags:     sam.Paired | sam.Reverse,
		AuxFields: []sam.Aux{rg},
	}
	for _, c := range []struct {
		expr string
		want bool
	}{
		{"mapping_quality >= 30", true},
		{"mapping_quality >= 30 && !is_reverse_strand", false},
		{"paired && chimeric", true},
		{`read_group == "A"`, true},
		{`re(ref_name, "^chr[0-9]$") && position < 0x100`, true},
		{`rec_name != "r1" || secondary_alignment`, false},
		{"(mate_ref_id == 1) == paired", true},
	} {
		f, err := parseFilter(c.expr)
		require.NoError(t, err, c.expr)
		expect.EQ(t, f(rec), c.want, c.expr)
	}
	for _, bad := range []string{
		"position",
		"position > \"x\"",
		"foo == 1",
		"!position",
		"re(ref_name, rec_name)",
		"paired < unmapped",
		"len(rec_name) > 0",
	} {
		_, err := parseFilter(bad)
		assert.Error(t, err, bad)
	}
}

func TestFlagstat(t *testing.T) {
	p, lib := newProvider(t)
	var out bytes.Buffer
	require.NoError(t, flagstat(&out, p))
	expect.EQ(t, out.String(), `5 + 0 in total (QC-passed reads + QC-failed reads)
1 + 0 secondary
0 + 0 supplementary
0 + 0 duplicates
4 + 0 mapped (80.00%:N/A)
2 + 0 paired in sequencing
0 + 0 read1
0 + 0 read2
0 + 0 properly paired (0.00%:N/A)
2 + 0 with itself and mate mapped
0 + 0 singletons (0.00%:N/A)
0 + 0 with mate mapped to a different chr
0 + 0 with mate mapped to a different chr (mapQ>=5)
`)
	assert.Empty(t, lib.Live())
}

func TestChecksum(t *testing.T) {
	run := func(opts checksumOpts) collectionChecksum {
		p, _ := newProvider(t)
		var out bytes.Buffer
		require.NoError(t, checksum(&out, p, opts))
		var csum collectionChecksum
		require.NoError(t, json.Unmarshal(out.Bytes(), &csum))
		return csum
	}
	csum := run(checksumOpts{})
	require.Len(t, csum.Refs, 2)
	expect.EQ(t, csum.Refs[0].Name, "chr1")
	expect.EQ(t, csum.Refs[0].NRecs, int64(3))
	expect.EQ(t, csum.Refs[0].SumPos, uint64(2+8+10))
	expect.EQ(t, csum.Refs[1].NRecs, int64(1))
	expect.EQ(t, csum.Refs[0].SumSeq, uint64(0))

	all := run(checksumOpts{all: true})
	expect.EQ(t, all.Refs[0].SumFlags, csum.Refs[0].SumFlags)
	assert.NotEqual(t, uint64(0), all.Refs[0].SumSeq)
	assert.Equal(t, all, run(checksumOpts{all: true}))
}

func TestStats(t *testing.T) {
	m, lib := newManager(t)
	var out bytes.Buffer
	require.NoError(t, stats(context.Background(), &out, m, ngstest.SampleAccession))
	expect.EQ(t, out.String(), `#READ_GROUP	PATH	TYPE	VALUE
A	AVG_LEN	real	9.5
A	BASE_COUNT	uint64	19
A	PLATFORM	string	ILLUMINA
A	SPOT_COUNT	uint64	2
B	BASE_COUNT	uint64	8
B	SPOT_COUNT	uint64	2
`)
	assert.Empty(t, lib.Live())
}

func TestPileup(t *testing.T) {
	m, lib := newManager(t)
	r, err := parseRegion("chr1:11-13")
	require.NoError(t, err)
	const header = "#CHROM\tPOS\tDEPTH\tA\tC\tG\tT\tN\tDEL\tINS\n"

	var out bytes.Buffer
	require.NoError(t, pileup(context.Background(), &out, m, ngstest.SampleAccession, r, pileupOpts{secondary: true}))
	expect.EQ(t, out.String(), header+
		"chr1\t11\t2\t0\t0\t2\t0\t0\t0\t0\n"+
		"chr1\t12\t2\t0\t0\t0\t2\t0\t0\t1\n"+
		"chr1\t13\t2\t0\t1\t0\t0\t0\t1\t0\n")

	filtered := header +
		"chr1\t11\t1\t0\t0\t1\t0\t0\t0\t0\n" +
		"chr1\t12\t1\t0\t0\t0\t1\t0\t0\t1\n" +
		"chr1\t13\t1\t0\t1\t0\t0\t0\t0\t0\n"
	out.Reset()
	require.NoError(t, pileup(context.Background(), &out, m, ngstest.SampleAccession, r, pileupOpts{secondary: true, minMapQ: 20}))
	expect.EQ(t, out.String(), filtered)

	// Without the filtered entry point the events are filtered here.
	lib.Remove("PY_NGS_ReferenceGetFilteredPileupSlice")
	m, _ = newManagerForLib(t, lib)
	out.Reset()
	require.NoError(t, pileup(context.Background(), &out, m, ngstest.SampleAccession, r, pileupOpts{secondary: true, minMapQ: 20}))
	expect.EQ(t, out.String(), filtered)
	assert.Empty(t, lib.Live())
}

func TestConvert(t *testing.T) {
	p, lib := newProvider(t)
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(dir, "out.bam")
	require.NoError(t, convertToBAM(context.Background(), path, p, 1))
	require.NoError(t, p.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() // nolint: errcheck
	r, err := bam.NewReader(f, 1)
	require.NoError(t, err)
	expect.EQ(t, len(r.Header().Refs()), 2)
	var names []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, rec.Name+"@"+rec.Ref.Name())
	}
	expect.EQ(t, names, []string{"1@chr1", "1@chr1", "2@chr1", "3@chr2", "4@*"})
	assert.Empty(t, lib.Live())
}

func TestFlagstatFlags(t *testing.T) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 1000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	rec := func(name string, ref *sam.Reference, pos int, mateRef *sam.Reference, matePos int, mapq byte, flags sam.Flags) *sam.Record {
		return &sam.Record{Name: name, Ref: ref, Pos: pos, MateRef: mateRef, MatePos: matePos, MapQ: mapq, Flags: flags}
	}
	recs := []*sam.Record{
		rec("r1", chr1, 10, chr1, 100, 60, sam.Paired|sam.Read1|sam.ProperPair|sam.MateReverse),
		rec("r1", chr1, 100, chr1, 10, 60, sam.Paired|sam.Read2|sam.ProperPair|sam.Reverse),
		rec("r2", chr1, 200, nil, -1, 30, sam.Paired|sam.Read1|sam.MateUnmapped),
		rec("r3", chr1, 300, chr2, 50, 3, sam.Paired|sam.Read1),
		rec("r3", chr2, 50, chr1, 300, 40, sam.Paired|sam.Read2),
		rec("r4", chr2, 60, nil, -1, 60, sam.Duplicate),
		rec("r5", chr2, 70, chr2, 80, 60, sam.Paired|sam.Read1|sam.QCFail),
	}
	var out bytes.Buffer
	require.NoError(t, flagstat(&out, ngsprovider.NewFakeProvider(header, recs)))
	expect.EQ(t, out.String(), `6 + 1 in total (QC-passed reads + QC-failed reads)
0 + 0 secondary
0 + 0 supplementary
1 + 0 duplicates
6 + 1 mapped (100.00%:100.00%)
5 + 1 paired in sequencing
3 + 1 read1
2 + 0 read2
2 + 0 properly paired (40.00%:0.00%)
4 + 1 with itself and mate mapped
1 + 0 singletons (16.67%:0.00%)
2 + 0 with mate mapped to a different chr
1 + 0 with mate mapped to a different chr (mapQ>=5)
`)
}

func TestFASTQ(t *testing.T) {
	m, lib := newManager(t)
	ctx := context.Background()
	var out bytes.Buffer
	require.NoError(t, exportFASTQ(ctx, &out, m, ngstest.SampleAccession, fastqOpts{category: "unaligned"}))
	expect.EQ(t, out.String(), "@SRR0000001.4/1\nTTTT\n+\nIIII\n")

	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	r1, r2 := filepath.Join(dir, "r1.fq.gz"), filepath.Join(dir, "r2.fq")
	require.NoError(t, exportFASTQ(ctx, io.Discard, m, ngstest.SampleAccession, fastqOpts{
		category: "all", r1: r1, r2: r2, noPrefix: true}))
	f, err := os.Open(r1)
	require.NoError(t, err)
	defer f.Close() // nolint: errcheck
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	expect.EQ(t, string(data), "@1/1\nGTAC\n+\nIIII\n@2/1\nGTGT\n+\n5555\n")
	data, err = os.ReadFile(r2)
	require.NoError(t, err)
	expect.EQ(t, string(data), "@1/2\nNACGTTC\n+\n#IIIII5\n@2/2\nAAAA\n+\nIIII\n")

	require.Error(t, exportFASTQ(ctx, &out, m, ngstest.SampleAccession, fastqOpts{category: "bogus"}))
	assert.Empty(t, lib.Live())
}

func TestReference(t *testing.T) {
	m, lib := newManager(t)
	ctx := context.Background()
	var out bytes.Buffer
	require.NoError(t, writeReference(ctx, &out, m, ngstest.SampleAccession, []string{"chr2"}, referenceOpts{lineWidth: 10}))
	expect.EQ(t, out.String(), ">chr2\nGGGGCCCCAA\nAATTTT\n")

	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(dir, "ref.fa")
	require.NoError(t, writeReference(ctx, io.Discard, m, ngstest.SampleAccession, nil, referenceOpts{out: path, index: true, lineWidth: 8}))
	data, err := os.ReadFile(path + ".fai")
	require.NoError(t, err)
	expect.EQ(t, string(data), "chr1\t20\t6\t8\t9\nchr2\t16\t35\t8\t9\n")

	require.Error(t, writeReference(ctx, &out, m, ngstest.SampleAccession, nil, referenceOpts{index: true}))
	assert.Empty(t, lib.Live())
}
