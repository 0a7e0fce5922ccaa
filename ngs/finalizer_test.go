package ngs_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/grailbio/ngs/native"
	"github.com/grailbio/ngs/native/nativetest"
	"github.com/grailbio/ngs/ngs"
	"github.com/grailbio/ngs/ngs/ngstest"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openDropped opens a collection and returns its handle. The collection
// itself becomes garbage when the function returns.
//
//go:noinline
func openDropped(t *testing.T, rt *native.Runtime, lib *nativetest.Lib, closeFirst bool) uintptr {
	before := len(lib.Live())
	rc, err := ngs.NewManagerForRuntime(rt).OpenReadCollection(context.Background(), ngstest.SampleAccession)
	require.NoError(t, err)
	live := lib.Live()
	require.Len(t, live, before+1)
	h := live[len(live)-1]
	if closeFirst {
		require.NoError(t, rc.Close())
	}
	return h
}

// collect runs the collector until done reports true or a deadline passes.
func collect(done func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		if done() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return done()
}

func TestFinalizerReleasesUnclosed(t *testing.T) {
	rt, lib, err := ngstest.NewRuntime(ngstest.Sample())
	require.NoError(t, err)
	h := openDropped(t, rt, lib, false)
	require.True(t, collect(func() bool { return lib.Releases(h) > 0 }), "finalizer did not run")
	expect.EQ(t, lib.Releases(h), 1)
	checkClean(t, lib)
}

func TestFinalizerAfterClose(t *testing.T) {
	rt, lib, err := ngstest.NewRuntime(ngstest.Sample())
	require.NoError(t, err)
	h := openDropped(t, rt, lib, true)
	expect.EQ(t, lib.Releases(h), 1)

	// The sentinel becomes garbage after the collection. Once it has been
	// finalized the collector has queued the collection's finalizer too.
	finalized := make(chan struct{})
	func() {
		sentinel := new([64]byte)
		runtime.SetFinalizer(sentinel, func(*[64]byte) { close(finalized) })
	}()
	require.True(t, collect(func() bool {
		select {
		case <-finalized:
			return true
		default:
			return false
		}
	}), "sentinel not finalized")
	for i := 0; i < 3; i++ {
		runtime.GC()
		time.Sleep(time.Millisecond)
	}
	expect.EQ(t, lib.Releases(h), 1)
	checkClean(t, lib)
}

//go:noinline
func collectionName(rc *ngs.ReadCollection) (string, error) { return rc.Name() }

//go:noinline
func openCollection(t *testing.T, rt *native.Runtime) *ngs.ReadCollection {
	rc, err := ngs.NewManagerForRuntime(rt).OpenReadCollection(context.Background(), ngstest.SampleAccession)
	require.NoError(t, err)
	return rc
}

// The call below is the last use of the collection. The object must stay
// alive until the native function returns even when the collector runs
// in the middle of it.
func TestCollectDuringCall(t *testing.T) {
	rt, lib, err := ngstest.NewRuntime(ngstest.Sample())
	require.NoError(t, err)
	var h uintptr
	lib.Def("PY_NGS_ReadCollectionGetName", func(c *nativetest.Call) error {
		h = c.Handle(0)
		for i := 0; i < 5; i++ {
			runtime.GC()
			time.Sleep(time.Millisecond)
		}
		v, err := c.Self()
		if err != nil {
			return err
		}
		c.SetString(v.(*ngstest.Collection).Accession)
		return nil
	})
	name, err := collectionName(openCollection(t, rt))
	require.NoError(t, err)
	expect.EQ(t, name, ngstest.SampleAccession)

	require.True(t, collect(func() bool { return lib.Releases(h) > 0 }), "finalizer did not run")
	expect.EQ(t, lib.Releases(h), 1)
	assert.Empty(t, lib.Faults())
	checkClean(t, lib)
}
