package native_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/ngs/native"
	"github.com/grailbio/ngs/native/nativetest"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T) (*native.Runtime, *nativetest.Lib) {
	lib := nativetest.New("fake")
	rt, err := native.NewRuntime(lib, lib)
	require.NoError(t, err)
	return rt, lib
}

func checkClean(t *testing.T, lib *nativetest.Lib) {
	t.Helper()
	assert.Empty(t, lib.Faults())
	assert.Equal(t, 0, lib.PendingErrors(), "error strings leaked")
}

func TestEntries(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range native.Entries {
		assert.True(t, strings.HasPrefix(e.Symbol, "PY_NGS_"), e.Symbol)
		assert.False(t, seen[e.Symbol], "duplicate %s", e.Symbol)
		seen[e.Symbol] = true
		if e.Policy == native.Checked {
			assert.Equal(t, native.Obj, e.In[0], e.Symbol)
		}
	}
	e, ok := native.Lookup("PY_NGS_ReferenceGetAlignmentSlice")
	require.True(t, ok)
	expect.EQ(t, e.String(), "int PY_NGS_ReferenceGetAlignmentSlice(void*, int64_t, uint64_t, uint32_t, void**, char**)")
	e, ok = native.Lookup(native.SymReadCollectionMake)
	require.True(t, ok)
	expect.EQ(t, e.String(), "int PY_NGS_Engine_ReadCollectionMake(const char*, void**, char[], size_t)")
	_, ok = native.Lookup("PY_NGS_NoSuchThing")
	expect.False(t, ok)
}

func TestBindMissingSymbol(t *testing.T) {
	lib := nativetest.New("fake")
	lib.Remove("PY_NGS_ReadGetReadId")
	_, err := native.NewRuntime(lib, lib)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PY_NGS_ReadGetReadId")
	assert.True(t, errors.Is(errors.NotExist, err))
}

func TestBindMissingOptionalSymbol(t *testing.T) {
	lib := nativetest.New("fake")
	lib.Remove("PY_NGS_ReadCollectionHasReference")
	lib.Remove(native.SymReferenceSequenceMake)
	rt, err := native.NewRuntime(lib, lib)
	require.NoError(t, err)
	expect.False(t, rt.Has("PY_NGS_ReadCollectionHasReference"))
	expect.True(t, rt.Has("PY_NGS_ReadCollectionHasReadGroup"))

	h := lib.NewObject("collection")
	_, err = rt.GetBool("PY_NGS_ReadCollectionHasReference", native.Handle(h), native.CString("chr1"))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotSupported, err))

	_, err = rt.MakeReferenceSequence("NC_011752.1")
	assert.True(t, errors.Is(errors.NotSupported, err))
}

func TestCheckedSuccess(t *testing.T) {
	rt, lib := newRuntime(t)
	lib.Def("PY_NGS_ReferenceGetLength", func(c *nativetest.Call) error {
		if _, err := c.Self(); err != nil {
			return err
		}
		c.SetUint64(4411532)
		return nil
	})
	h := lib.NewObject("ref")
	n, err := native.Get[uint64](rt, "PY_NGS_ReferenceGetLength", native.Handle(h))
	require.NoError(t, err)
	expect.EQ(t, n, uint64(4411532))
	checkClean(t, lib)
}

func TestCheckedFailure(t *testing.T) {
	rt, lib := newRuntime(t)
	lib.Def("PY_NGS_AlignmentGetMappingQuality", func(c *nativetest.Call) error {
		c.SetInt32(60)
		return fmt.Errorf("alignment row out of range")
	})
	h := lib.NewObject("alignment")
	q, err := native.Get[int32](rt, "PY_NGS_AlignmentGetMappingQuality", native.Handle(h))
	require.Error(t, err)
	expect.EQ(t, q, int32(0))
	expect.EQ(t, err.Error(), "alignment row out of range")
	require.True(t, native.IsNative(err))
	nerr := err.(*native.Error)
	expect.EQ(t, nerr.Symbol, "PY_NGS_AlignmentGetMappingQuality")
	expect.EQ(t, nerr.Status, int32(1))
	expect.EQ(t, nerr.Kind, errors.Other)
	checkClean(t, lib)
}

func TestErrorChannel(t *testing.T) {
	for _, test := range []struct {
		status  *nativetest.Status
		wantErr string
	}{
		{nil, ""},
		{&nativetest.Status{Code: 0, Message: "success with a message"}, "success with a message"},
		{&nativetest.Status{Code: 3}, "PY_NGS_PileupGetPileupDepth failed with status 3"},
		{&nativetest.Status{Code: 1, Message: "bad pileup"}, "bad pileup"},
	} {
		rt, lib := newRuntime(t)
		s := test.status
		lib.Def("PY_NGS_PileupGetPileupDepth", func(c *nativetest.Call) error {
			c.SetUint32(17)
			if s == nil {
				return nil
			}
			return s
		})
		depth, err := native.Get[uint32](rt, "PY_NGS_PileupGetPileupDepth", native.Handle(lib.NewObject("pileup")))
		if test.wantErr == "" {
			require.NoError(t, err)
			expect.EQ(t, depth, uint32(17))
		} else {
			require.EqualError(t, err, test.wantErr)
			expect.EQ(t, depth, uint32(0))
		}
		checkClean(t, lib)
	}
}

func TestNullHandle(t *testing.T) {
	rt, lib := newRuntime(t)
	lib.Def("PY_NGS_ReadGetReadId", func(c *nativetest.Call) error {
		v, err := c.Self()
		if err != nil {
			return err
		}
		c.SetString(v.(string))
		return nil
	})
	_, err := rt.GetString("PY_NGS_ReadGetReadId", native.Handle(0))
	require.EqualError(t, err, "NULL pRef parameter")
	id, err := rt.GetString("PY_NGS_ReadGetReadId", native.Handle(lib.NewObject("SRR000001.R.1")))
	require.NoError(t, err)
	expect.EQ(t, id, "SRR000001.R.1")
}

func TestGetStringReleasesString(t *testing.T) {
	rt, lib := newRuntime(t)
	h := lib.NewObject("read")
	lib.Def("PY_NGS_ReadGetReadBases", func(c *nativetest.Call) error {
		bases := "ACGTACGTNN"
		off, n := c.Uint64(1), c.Uint64(2)
		if off > uint64(len(bases)) {
			return fmt.Errorf("offset %d beyond end of read", off)
		}
		end := uint64(len(bases))
		if n < end-off {
			end = off + n
		}
		c.SetString(bases[off:end])
		return nil
	})
	b, err := rt.GetString("PY_NGS_ReadGetReadBases", native.Handle(h), native.Uint64(2), native.Uint64(4))
	require.NoError(t, err)
	expect.EQ(t, b, "GTAC")
	b, err = rt.GetString("PY_NGS_ReadGetReadBases", native.Handle(h), native.Uint64(10), native.Uint64(4))
	require.NoError(t, err)
	expect.EQ(t, b, "")
	_, err = rt.GetString("PY_NGS_ReadGetReadBases", native.Handle(h), native.Uint64(11), native.Uint64(4))
	require.EqualError(t, err, "offset 11 beyond end of read")
	// Only the read itself is alive; every NGS_String was released.
	expect.EQ(t, lib.Live(), []uintptr{h})
	checkClean(t, lib)
}

func TestGetStringReleasesOutputOnError(t *testing.T) {
	rt, lib := newRuntime(t)
	lib.Def("PY_NGS_AlignmentGetShortCigar", func(c *nativetest.Call) error {
		c.SetString("10M")
		return fmt.Errorf("cigar failed")
	})
	_, err := rt.GetString("PY_NGS_AlignmentGetShortCigar", native.Handle(lib.NewObject("a")), native.Bool(true))
	require.EqualError(t, err, "cigar failed")
	expect.EQ(t, len(lib.Live()), 1)
	checkClean(t, lib)
}

func TestStatisticsDouble(t *testing.T) {
	rt, lib := newRuntime(t)
	lib.Def("PY_NGS_StatisticsGetAsDouble", func(c *nativetest.Call) error {
		if c.CString(1) != "BASE_COUNT" {
			return fmt.Errorf("no such path %q", c.CString(1))
		}
		c.SetFloat64(1.5e9)
		return nil
	})
	h := lib.NewObject("stats")
	v, err := native.Get[float64](rt, "PY_NGS_StatisticsGetAsDouble", native.Handle(h), native.CString("BASE_COUNT"))
	require.NoError(t, err)
	expect.EQ(t, v, 1.5e9)
	_, err = native.Get[float64](rt, "PY_NGS_StatisticsGetAsDouble", native.Handle(h), native.CString("X"))
	require.EqualError(t, err, `no such path "X"`)
}

func TestCallingConventionMisuse(t *testing.T) {
	rt, lib := newRuntime(t)
	h := native.Handle(lib.NewObject("alignment"))
	// Wrong number of arguments.
	assert.Panics(t, func() { _ = rt.Func("PY_NGS_AlignmentGetSoftClip").Call(h) })
	// Output read with the wrong width.
	assert.Panics(t, func() { _, _ = native.Get[uint64](rt, "PY_NGS_AlignmentGetSoftClip", h, native.Uint32(0)) })
	// Unknown entry point.
	assert.Panics(t, func() { rt.Func("PY_NGS_AlignmentGetNothing") })
	// Checked entry points may not be called raw.
	assert.Panics(t, func() { _, _ = rt.Func("PY_NGS_AlignmentGetSoftClip").Raw(h, native.Uint32(0), h) })
}

func TestMakeReadCollection(t *testing.T) {
	rt, lib := newRuntime(t)
	lib.Def(native.SymReadCollectionMake, func(c *nativetest.Call) error {
		spec := c.CString(0)
		if spec != "SRR000001" {
			return fmt.Errorf("object not found: '%s'", spec)
		}
		c.SetObject(spec)
		return nil
	})
	h, err := rt.MakeReadCollection("SRR000001")
	require.NoError(t, err)
	v, ok := lib.Value(h)
	require.True(t, ok)
	expect.EQ(t, v, "SRR000001")

	_, err = rt.MakeReadCollection("SRR999999")
	require.EqualError(t, err, "object not found: 'SRR999999'")

	long := strings.Repeat("x", 10000)
	_, err = rt.MakeReadCollection(long)
	require.Error(t, err)
	expect.EQ(t, len(err.Error()), 4095)
	checkClean(t, lib)
}

func TestMakeFailureReleasesHandle(t *testing.T) {
	rt, lib := newRuntime(t)
	lib.Def(native.SymReadCollectionMake, func(c *nativetest.Call) error {
		c.SetObject("partial")
		return &nativetest.Status{Code: 2}
	})
	_, err := rt.MakeReadCollection("SRR000001")
	require.EqualError(t, err, "PY_NGS_Engine_ReadCollectionMake failed with status 2")
	expect.EQ(t, len(lib.Live()), 0)
}
