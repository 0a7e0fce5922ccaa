package fastq_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/ngs/encoding/fastq"
	"github.com/grailbio/ngs/native/nativetest"
	"github.com/grailbio/ngs/ngs"
	"github.com/grailbio/ngs/ngs/ngstest"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) (*ngs.ReadCollection, *nativetest.Lib) {
	rt, lib, err := ngstest.NewRuntime(ngstest.Sample())
	require.NoError(t, err)
	rc, err := ngs.NewManagerForRuntime(rt).OpenReadCollection(context.Background(), ngstest.SampleAccession)
	require.NoError(t, err)
	return rc, lib
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := fastq.NewWriter(&buf)
	require.NoError(t, w.Write(&fastq.Read{ID: "r1/1", Seq: "ACGT", Qual: "II#I"}))
	expect.EQ(t, buf.Len(), 0)
	require.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), "@r1/1\nACGT\n+\nII#I\n")
}

func TestExport(t *testing.T) {
	rc, lib := open(t)
	var buf bytes.Buffer
	stats, err := fastq.Export(rc, fastq.NewWriter(&buf), nil, fastq.ExportOpts{Prefix: ngstest.SampleAccession})
	require.NoError(t, err)
	expect.EQ(t, stats, fastq.ExportStats{Reads: 4, Fragments: 6})
	expect.EQ(t, buf.String(), `@SRR0000001.1/1
GTAC
+
IIII
@SRR0000001.1/2
NACGTTC
+
#IIIII5
@SRR0000001.2/1
GTGT
+
5555
@SRR0000001.2/2
AAAA
+
IIII
@SRR0000001.3/1
GGGG
+
IIII
@SRR0000001.4/1
TTTT
+
IIII
`)
	require.NoError(t, rc.Close())
	assert.Empty(t, lib.Live())
}

func TestExportPairs(t *testing.T) {
	rc, lib := open(t)
	var b1, b2 bytes.Buffer
	stats, err := fastq.Export(rc, fastq.NewWriter(&b1), fastq.NewWriter(&b2), fastq.ExportOpts{})
	require.NoError(t, err)
	expect.EQ(t, stats, fastq.ExportStats{Reads: 2, Fragments: 4, Skipped: 2})
	expect.EQ(t, b1.String(), "@1/1\nGTAC\n+\nIIII\n@2/1\nGTGT\n+\n5555\n")
	expect.EQ(t, b2.String(), "@1/2\nNACGTTC\n+\n#IIIII5\n@2/2\nAAAA\n+\nIIII\n")
	require.NoError(t, rc.Close())
	assert.Empty(t, lib.Live())
}

func TestExportCategory(t *testing.T) {
	rc, lib := open(t)
	var buf bytes.Buffer
	stats, err := fastq.Export(rc, fastq.NewWriter(&buf), nil, fastq.ExportOpts{Category: ngs.Unaligned})
	require.NoError(t, err)
	expect.EQ(t, stats.Reads, 1)
	expect.EQ(t, buf.String(), "@4/1\nTTTT\n+\nIIII\n")

	lib.Def("PY_NGS_FragmentGetFragmentQualities", func(c *nativetest.Call) error {
		c.SetString("I")
		return nil
	})
	_, err = fastq.Export(rc, fastq.NewWriter(&buf), nil, fastq.ExportOpts{})
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
	require.NoError(t, rc.Close())
	assert.Empty(t, lib.Live())
}
