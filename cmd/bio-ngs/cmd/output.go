package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// output is where a command writes its results: stdout, a file, or a
// gzip-compressed file.
type output struct {
	io.Writer
	f  file.File
	gz *gzip.Writer
}

// createOutput opens path for writing. An empty path selects stdout.
func createOutput(ctx context.Context, path string, stdout io.Writer) (*output, error) {
	if path == "" || path == "-" {
		return &output{Writer: stdout}, nil
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	o := &output{Writer: f.Writer(ctx), f: f}
	if strings.HasSuffix(path, ".gz") {
		o.gz = gzip.NewWriter(o.Writer)
		o.Writer = o.gz
	}
	return o, nil
}

func (o *output) Close(ctx context.Context) error {
	var err error
	if o.gz != nil {
		err = o.gz.Close()
	}
	if o.f != nil {
		if e := o.f.Close(ctx); e != nil && err == nil {
			err = e
		}
	}
	return err
}
