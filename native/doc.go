// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package native binds the C entry points exported by the NCBI NGS
// libraries (libncbi-vdb and libngs-sdk).
//
// Every entry point follows one calling convention:
//
//	int PY_NGS_<Name>(void* self, <args>..., <T>* out, char** err)
//
// A zero return value means success. The native side stores a heap allocated,
// NUL-terminated message in *err when something goes wrong; the message must
// be freed with PY_NGS_RawStringRelease. String results are NGS_String objects
// that are read with PY_NGS_StringGetData/PY_NGS_StringGetSize and freed with
// PY_NGS_RefcountRelease, like any other object.
//
// A Runtime resolves the whole entry point table (Entries) against a pair of
// loaded libraries once. The Runtime is immutable after NewRuntime returns and
// may be shared by goroutines. The objects it hands out (handles, Strings) are
// not: each must be used by one goroutine at a time.
package native
