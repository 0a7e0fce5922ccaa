// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package libmanager finds the NGS shared libraries and, when they are not
// installed, downloads them from NCBI.
package libmanager

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/ngs/native"
)

// DefaultURL is the NCBI service that distributes the libraries.
const DefaultURL = "http://trace.ncbi.nlm.nih.gov/Traces/sratoolkit/sratoolkit.cgi"

// Loader loads a shared library.
type Loader interface {
	Load(path string) (native.Library, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (native.Library, error)

// Load implements Loader.
func (f LoaderFunc) Load(path string) (native.Library, error) { return f(path) }

// Opts configures a Resolver.
type Opts struct {
	// Dirs lists the directories to search, in order. Defaults to
	// CandidateDirs(). The empty string stands for the system loader path;
	// it is searched but never downloaded into.
	Dirs []string
	// URL is the download service. Defaults to DefaultURL.
	URL string
	// DisableDownload turns the download fallback off.
	DisableDownload bool
	// Client issues the download request. Defaults to http.DefaultClient.
	Client *http.Client
	// Loader opens library files. Defaults to native.Open.
	Loader Loader
}

// DefaultOpts is the configuration used by the ngs package.
var DefaultOpts = Opts{URL: DefaultURL}

// Resolver finds and loads NGS libraries. Thread compatible.
type Resolver struct {
	opts Opts
}

// New returns a resolver. Zero fields of opts take their defaults.
func New(opts Opts) *Resolver {
	if opts.Dirs == nil {
		opts.Dirs = CandidateDirs()
	}
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Loader == nil {
		opts.Loader = LoaderFunc(native.Open)
	}
	return &Resolver{opts: opts}
}

// Load returns the named library ("ncbi-vdb" or "ngs-sdk"). Installed copies
// are preferred; otherwise the library is downloaded.
func (r *Resolver) Load(ctx context.Context, name string) (native.Library, error) {
	lib, err := r.LoadSaved(name)
	if err == nil {
		return lib, nil
	}
	if r.opts.DisableDownload {
		return nil, errors.E(errors.NotSupported, err,
			fmt.Sprintf("%s is not installed and auto-download is disabled", Filename(name)))
	}
	log.Printf("%s is not installed, downloading it from %s", Filename(name), r.opts.URL)
	return r.Download(ctx, name)
}

// LoadSaved tries every candidate directory in order and returns the first
// library that loads. Failures are expected and only logged at debug level.
func (r *Resolver) LoadSaved(name string) (native.Library, error) {
	file := Filename(name)
	var lastErr error
	for _, dir := range r.opts.Dirs {
		path := candidatePath(dir, file)
		lib, err := r.opts.Loader.Load(path)
		if err == nil {
			log.Debug.Printf("loaded %s", path)
			return lib, nil
		}
		log.Debug.Printf("cannot load %s: %v", path, err)
		lastErr = err
	}
	msg := fmt.Sprintf("%s not found in [%s]", file, strings.Join(r.opts.Dirs, ", "))
	if lastErr == nil {
		return nil, errors.E(errors.NotExist, msg)
	}
	return nil, errors.E(errors.NotExist, lastErr, msg)
}

// DownloadError is a download request that did not return the library.
type DownloadError struct {
	URL        string
	Params     url.Values
	StatusCode int
	Status     string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s?%s: %s", e.URL, e.Params.Encode(), e.Status)
}

// Download fetches the named library into the first candidate directory
// where the target file can be created, and loads it. The fetch itself is
// attempted once: an HTTP or transport error is final. Failures to create
// or write the file move on to the next directory.
func (r *Resolver) Download(ctx context.Context, name string) (native.Library, error) {
	file := Filename(name)
	var prepErr error
	for _, dir := range r.opts.Dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			prepErr = errors.E(errors.NotAllowed, err, fmt.Sprintf("failed to create directory '%s' for %s", dir, file))
			log.Debug.Print(prepErr)
			continue
		}
		path := candidatePath(dir, file)
		f, err := os.Create(path)
		if err != nil {
			prepErr = errors.E(errors.NotAllowed, err, "failed to create file", path)
			log.Debug.Print(prepErr)
			continue
		}
		body, err := r.fetch(ctx, name)
		if err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return nil, err
		}
		_, err = io.Copy(f, body)
		_ = body.Close()
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
		if err != nil {
			_ = os.Remove(path)
			prepErr = errors.E(errors.NotAllowed, err, "failed to save file", path)
			log.Debug.Print(prepErr)
			continue
		}
		log.Printf("downloaded %s", path)
		lib, err := r.opts.Loader.Load(path)
		if err != nil {
			return nil, errors.E(errors.Invalid, err, "downloaded library", path, "cannot be loaded")
		}
		return lib, nil
	}
	if prepErr == nil {
		prepErr = errors.E(errors.NotAllowed, fmt.Sprintf("no directory to save %s into", file))
	}
	return nil, prepErr
}

func (r *Resolver) fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	params := url.Values{
		"cmd":     {"lib"},
		"name":    {name},
		"os_name": {OSName()},
		"bits":    {Bits(runtime.GOARCH)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.opts.URL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, errors.E(errors.Invalid, err, "download", r.opts.URL)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := r.opts.Client.Do(req)
	if err != nil {
		return nil, errors.E(errors.Net, err, "download", r.opts.URL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		derr := &DownloadError{URL: r.opts.URL, Params: params, StatusCode: resp.StatusCode, Status: resp.Status}
		if resp.StatusCode == http.StatusPreconditionFailed {
			// The service answers 412 for platforms it has no build for.
			return nil, errors.E(errors.NotSupported, derr, fmt.Sprintf("%s is not available for %s/%s", name, OSName(), params.Get("bits")))
		}
		return nil, errors.E(errors.Unavailable, derr)
	}
	return resp.Body, nil
}
