// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
Package ngs reads sequencing data through the NCBI NGS libraries.

A ReadCollection is opened by accession (e.g. "SRR1063272"), file path or
URL:

	rc, err := ngs.OpenReadCollection("SRR1063272")
	if err != nil {
		...
	}
	defer rc.Close()
	it, err := rc.Alignments(ngs.PrimaryAlignment)
	...
	defer it.Close()
	for {
		ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		id, err := it.AlignmentID()
		...
	}

The first open loads libncbi-vdb and libngs-sdk (see package libmanager),
downloading them if needed. Use a Manager to control where the libraries come
from.

Every object wraps one native reference. Close releases it; objects that are
garbage collected without being closed are released by a finalizer. Methods
of a closed object fail. Iterators are positioned before their first item:
the item accessors are valid only after Next returned true. Objects are not
safe for concurrent use, but distinct objects may be used from different
goroutines.
*/
package ngs
