//go:build windows

package native

import (
	"runtime"

	"github.com/grailbio/base/errors"
	"golang.org/x/sys/windows"
)

type sharedLibrary struct {
	path string
	dll  *windows.DLL
}

// Open loads the DLL at path.
func Open(path string) (Library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, errors.E(errors.NotExist, "LoadLibrary", path, err)
	}
	return &sharedLibrary{path: path, dll: dll}, nil
}

func (so *sharedLibrary) Path() string { return so.path }

func (so *sharedLibrary) Lookup(symbol string) (Proc, error) {
	p, err := so.dll.FindProc(symbol)
	if err != nil {
		return nil, errors.E(errors.NotExist, "GetProcAddress", symbol, so.path, err)
	}
	return func(args []Arg) int32 {
		words := make([]uintptr, len(args))
		for i, a := range args {
			words[i] = a.Word()
		}
		r1, _, _ := p.Call(words...)
		runtime.KeepAlive(args)
		return int32(r1)
	}, nil
}
