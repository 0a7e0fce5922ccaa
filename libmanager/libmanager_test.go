package libmanager

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/ngs/native"
	"github.com/grailbio/ngs/native/nativetest"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader loads any path for which accept returns true.
type fakeLoader struct {
	accept   func(path string) bool
	attempts []string
}

func (l *fakeLoader) Load(path string) (native.Library, error) {
	l.attempts = append(l.attempts, path)
	if l.accept != nil && l.accept(path) {
		return nativetest.New(path), nil
	}
	return nil, fmt.Errorf("%s: cannot open shared object file", path)
}

// libraryBytes accepts files that hold exactly want.
func libraryBytes(want []byte) func(string) bool {
	return func(path string) bool {
		got, err := ioutil.ReadFile(path)
		return err == nil && bytes.Equal(got, want)
	}
}

func TestPlatform(t *testing.T) {
	for _, test := range []struct{ goos, ext, name string }{
		{"windows", ".dll", "Windows"},
		{"darwin", "", "Mac"},
		{"linux", ".so", "Linux"},
		{"freebsd", ".so", "FreeBSD"},
		{"plan9", ".so", "plan9"},
	} {
		expect.EQ(t, extension(test.goos), test.ext)
		expect.EQ(t, osName(test.goos), test.name)
	}
	for machine, bits := range map[string]string{
		"AMD64": "64", "x86_64": "64", "amd64": "64",
		"i386": "32", "x86": "32", "386": "32",
		"arm64": "unknown", "ppc64le": "unknown",
	} {
		expect.EQ(t, Bits(machine), bits, machine)
	}
	expect.EQ(t, Filename("ngs-sdk"), "libngs-sdk"+Extension())
}

func TestCandidateDirs(t *testing.T) {
	dirs := CandidateDirs()
	require.Len(t, dirs, 4)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	bits := Bits(runtime.GOARCH)
	if bits == "unknown" {
		bits = "64"
	}
	expect.EQ(t, dirs[0], filepath.Join(home, ".ncbi", "lib"+bits))
	expect.EQ(t, dirs[1:], []string{"", ".", os.TempDir()})
	expect.EQ(t, candidatePath("", "libx.so"), "libx.so")
	expect.EQ(t, candidatePath(".", "libx.so"), "."+string(filepath.Separator)+"libx.so")
}

func TestLoadSavedFirstMatch(t *testing.T) {
	file := Filename("ngs-sdk")
	loader := &fakeLoader{accept: func(path string) bool { return path == candidatePath("/c", file) }}
	r := New(Opts{Dirs: []string{"/a", "", "/c", "/d"}, Loader: loader})
	lib, err := r.Load(context.Background(), "ngs-sdk")
	require.NoError(t, err)
	expect.EQ(t, lib.Path(), candidatePath("/c", file))
	expect.EQ(t, loader.attempts, []string{candidatePath("/a", file), file, candidatePath("/c", file)})
}

type server struct {
	*httptest.Server
	hits int32
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *server {
	s := &server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		handler(w, r)
	}))
	return s
}

func TestDownload(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	payload := []byte("\x7fELF\x00\x01\x02 not really a library \x00\xff")
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "lib", r.PostForm.Get("cmd"))
		assert.Equal(t, "ncbi-vdb", r.PostForm.Get("name"))
		assert.Equal(t, OSName(), r.PostForm.Get("os_name"))
		assert.Equal(t, Bits(runtime.GOARCH), r.PostForm.Get("bits"))
		_, _ = w.Write(payload)
	})
	defer srv.Close()

	dir := filepath.Join(tmp, "home", ".ncbi", "lib64")
	loader := &fakeLoader{accept: libraryBytes(payload)}
	r := New(Opts{Dirs: []string{"", dir, tmp}, URL: srv.URL, Loader: loader})
	lib, err := r.Load(context.Background(), "ncbi-vdb")
	require.NoError(t, err)

	path := candidatePath(dir, Filename("ncbi-vdb"))
	expect.EQ(t, lib.Path(), path)
	got, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	expect.EQ(t, got, payload)
	expect.EQ(t, atomic.LoadInt32(&srv.hits), int32(1))
	_, err = os.Stat(candidatePath(tmp, Filename("ncbi-vdb")))
	expect.True(t, os.IsNotExist(err))

	// The saved copy is found next time without a download.
	lib, err = r.Load(context.Background(), "ncbi-vdb")
	require.NoError(t, err)
	expect.EQ(t, lib.Path(), path)
	expect.EQ(t, atomic.LoadInt32(&srv.hits), int32(1))
}

func TestDownloadHTTPErrorIsFinal(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	})
	defer srv.Close()

	a, b := filepath.Join(tmp, "a"), filepath.Join(tmp, "b")
	r := New(Opts{Dirs: []string{a, b}, URL: srv.URL, Loader: &fakeLoader{}})
	_, err := r.Load(context.Background(), "ngs-sdk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), srv.URL)
	assert.Contains(t, err.Error(), "name=ngs-sdk")
	assert.True(t, errors.Is(errors.Unavailable, err))
	derr, ok := errors.Recover(err).Err.(*DownloadError)
	require.True(t, ok)
	expect.EQ(t, derr.StatusCode, http.StatusServiceUnavailable)
	expect.EQ(t, derr.Params.Get("cmd"), "lib")

	// One request, and no other directory was tried.
	expect.EQ(t, atomic.LoadInt32(&srv.hits), int32(1))
	_, err = os.Stat(b)
	expect.True(t, os.IsNotExist(err))
	_, err = os.Stat(candidatePath(a, Filename("ngs-sdk")))
	expect.True(t, os.IsNotExist(err))
}

func TestDownloadUnsupportedPlatform(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	})
	defer srv.Close()
	r := New(Opts{Dirs: []string{tmp}, URL: srv.URL, Loader: &fakeLoader{}})
	_, err := r.Load(context.Background(), "ngs-sdk")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotSupported, err))
	assert.Contains(t, err.Error(), "412")
}

func TestDownloadDisabled(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()
	r := New(Opts{Dirs: []string{"/nonexistent"}, URL: srv.URL, DisableDownload: true, Loader: &fakeLoader{}})
	_, err := r.Load(context.Background(), "ngs-sdk")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotSupported, err))
	assert.Contains(t, err.Error(), "auto-download is disabled")
	expect.EQ(t, atomic.LoadInt32(&srv.hits), int32(0))
}

func TestDownloadPreparationErrors(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("lib"))
	})
	defer srv.Close()
	file := Filename("ngs-sdk")

	// A regular file where a directory is needed.
	regular := filepath.Join(tmp, "regular")
	require.NoError(t, ioutil.WriteFile(regular, nil, 0644))
	r := New(Opts{Dirs: []string{"", filepath.Join(regular, "lib64")}, URL: srv.URL, Loader: &fakeLoader{}})
	_, err := r.Download(context.Background(), "ngs-sdk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory '"+filepath.Join(regular, "lib64")+"' for "+file)
	assert.True(t, errors.Is(errors.NotAllowed, err))

	// A directory where the library file should go.
	blocked := filepath.Join(tmp, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, file), 0755))
	r = New(Opts{Dirs: []string{blocked}, URL: srv.URL, Loader: &fakeLoader{}})
	_, err = r.Download(context.Background(), "ngs-sdk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create file "+candidatePath(blocked, file))

	// No usable directory at all.
	r = New(Opts{Dirs: []string{""}, URL: srv.URL, Loader: &fakeLoader{}})
	_, err = r.Download(context.Background(), "ngs-sdk")
	require.Error(t, err)
	expect.EQ(t, atomic.LoadInt32(&srv.hits), int32(0))

	// The first directory fails, the second one is used.
	good := filepath.Join(tmp, "good")
	r = New(Opts{Dirs: []string{blocked, good}, URL: srv.URL, Loader: &fakeLoader{accept: libraryBytes([]byte("lib"))}})
	lib, err := r.Download(context.Background(), "ngs-sdk")
	require.NoError(t, err)
	expect.EQ(t, lib.Path(), candidatePath(good, file))
}

func TestDownloadTruncatedBody(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("short"))
	})
	defer srv.Close()
	r := New(Opts{Dirs: []string{tmp}, URL: srv.URL, Loader: &fakeLoader{}})
	_, err := r.Download(context.Background(), "ngs-sdk")
	require.Error(t, err)
	path := candidatePath(tmp, Filename("ngs-sdk"))
	assert.Contains(t, err.Error(), "failed to save file "+path)
	_, err = os.Stat(path)
	expect.True(t, os.IsNotExist(err))
}

func TestDownloadInvalidLibrary(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})
	defer srv.Close()
	r := New(Opts{Dirs: []string{tmp}, URL: srv.URL, Loader: &fakeLoader{}})
	_, err := r.Download(context.Background(), "ngs-sdk")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Invalid, err))
}
