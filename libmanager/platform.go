package libmanager

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Extension returns the shared library suffix of this platform.
func Extension() string { return extension(runtime.GOOS) }

func extension(goos string) string {
	switch goos {
	case "windows":
		return ".dll"
	case "darwin":
		return ""
	default:
		return ".so"
	}
}

// Filename returns the file name of the named NGS library, e.g.
// "libngs-sdk.so".
func Filename(name string) string { return "lib" + name + Extension() }

// Bits maps a machine architecture to the word size the NCBI service expects:
// "64", "32" or "unknown".
func Bits(machine string) string {
	switch strings.ToLower(machine) {
	case "amd64", "x86_64":
		return "64"
	case "i386", "i686", "x86", "386":
		return "32"
	}
	return "unknown"
}

// OSName returns the platform name the NCBI service expects.
func OSName() string { return osName(runtime.GOOS) }

func osName(goos string) string {
	switch goos {
	case "windows":
		return "Windows"
	case "darwin":
		return "Mac"
	case "linux":
		return "Linux"
	case "freebsd":
		return "FreeBSD"
	case "netbsd":
		return "NetBSD"
	case "openbsd":
		return "OpenBSD"
	case "solaris":
		return "SunOS"
	}
	return goos
}

// CandidateDirs returns the directories searched for the libraries, in
// order: ~/.ncbi/lib<bits>, the loader search path (""), the current
// directory and the temp directory.
func CandidateDirs() []string {
	bits := Bits(runtime.GOARCH)
	if bits == "unknown" {
		bits = strconv.Itoa(strconv.IntSize)
	}
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".ncbi", "lib"+bits))
	}
	return append(dirs, "", ".", os.TempDir())
}

// candidatePath joins dir and file. The empty dir yields the bare file name,
// which makes the system loader search its default path; "." is kept so that
// the loader does not.
func candidatePath(dir, file string) string {
	if dir == "" {
		return file
	}
	return strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator) + file
}
