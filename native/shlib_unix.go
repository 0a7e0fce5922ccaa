//go:build darwin || freebsd || linux || netbsd

package native

import (
	"runtime"

	"github.com/ebitengine/purego"
	"github.com/grailbio/base/errors"
)

type sharedLibrary struct {
	path   string
	handle uintptr
}

// Open loads the shared library at path. Symbols are resolved eagerly and
// made visible to libraries loaded later, since libngs-sdk finds its engine
// through the global namespace.
func Open(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.E(errors.NotExist, "dlopen", path, err)
	}
	return &sharedLibrary{path: path, handle: h}, nil
}

func (so *sharedLibrary) Path() string { return so.path }

func (so *sharedLibrary) Lookup(symbol string) (Proc, error) {
	addr, err := purego.Dlsym(so.handle, symbol)
	if err != nil {
		return nil, errors.E(errors.NotExist, "dlsym", symbol, so.path, err)
	}
	return func(args []Arg) int32 {
		words := make([]uintptr, len(args))
		for i, a := range args {
			words[i] = a.Word()
		}
		r1, _, _ := purego.SyscallN(addr, words...)
		runtime.KeepAlive(args)
		return int32(r1)
	}, nil
}
