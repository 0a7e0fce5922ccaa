package fasta_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/grailbio/ngs/encoding/fasta"
	"github.com/grailbio/ngs/native/nativetest"
	"github.com/grailbio/ngs/ngs"
	"github.com/grailbio/ngs/ngs/ngstest"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func open(t *testing.T) (*ngs.ReadCollection, *fasta.Collection, *nativetest.Lib) {
	rt, lib, err := ngstest.NewRuntime(ngstest.Sample())
	assert.NoError(t, err)
	rc, err := ngs.NewManagerForRuntime(rt).OpenReadCollection(context.Background(), ngstest.SampleAccession)
	assert.NoError(t, err)
	f, err := fasta.New(rc)
	assert.NoError(t, err)
	return rc, f, lib
}

func closeAll(t *testing.T, rc *ngs.ReadCollection, f *fasta.Collection, lib *nativetest.Lib) {
	assert.NoError(t, f.Close())
	assert.NoError(t, rc.Close())
	expect.EQ(t, len(lib.Live()), 0)
}

func TestGet(t *testing.T) {
	rc, f, lib := open(t)
	defer closeAll(t, rc, f, lib)
	tests := []struct {
		seq   string
		start uint64
		end   uint64
		want  string
		err   bool
	}{
		{"chr1", 1, 2, "C", false},
		{"chr1", 1, 6, "CGTAC", false},
		{"chr1", 0, 20, "ACGTACGTACGTACGTACGT", false},
		{"chr2", 10, 16, "AATTTT", false},
		{"chr0", 0, 1, "", true},
		{"chr1", 10, 21, "", true},
		{"chr1", 4, 3, "", true},
	}
	for _, tt := range tests {
		got, err := f.Get(tt.seq, tt.start, tt.end)
		if (err != nil) != tt.err {
			t.Errorf("%s:%d-%d: unexpected error: %v", tt.seq, tt.start, tt.end, err)
		}
		if got != tt.want {
			t.Errorf("unexpected sequence: want %s, got %s", tt.want, got)
		}
	}
	expect.EQ(t, f.SeqNames(), []string{"chr1", "chr2"})
	n, err := f.Len("chr2")
	assert.NoError(t, err)
	expect.EQ(t, n, uint64(16))
}

func TestWrite(t *testing.T) {
	rc, f, lib := open(t)
	defer closeAll(t, rc, f, lib)
	var out, index bytes.Buffer
	assert.NoError(t, fasta.Write(&out, f, fasta.WriteOpts{LineWidth: 8, Index: &index}))
	expect.EQ(t, out.String(), ">chr1\nACGTACGT\nACGTACGT\nACGT\n>chr2\nGGGGCCCC\nAAAATTTT\n")
	expect.EQ(t, index.String(), "chr1\t20\t6\t8\t9\nchr2\t16\t35\t8\t9\n")

	out.Reset()
	assert.NoError(t, fasta.Write(&out, f, fasta.WriteOpts{SeqNames: []string{"chr2"}}))
	expect.EQ(t, out.String(), ">chr2\nGGGGCCCCAAAATTTT\n")

	expect.NotNil(t, fasta.Write(&out, f, fasta.WriteOpts{SeqNames: []string{"chrX"}}))
}
