package fasta

import (
	"bufio"
	"io"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// DefaultLineWidth is the number of bases per line written by Write.
const DefaultLineWidth = 70

// chunkBases is the number of bases fetched by one Get call.
const chunkBases = 1 << 20

// WriteOpts controls Write.
type WriteOpts struct {
	// LineWidth is the number of bases per line. Zero means
	// DefaultLineWidth.
	LineWidth int
	// SeqNames selects the sequences to write, in order. Nil means every
	// sequence of the Fasta.
	SeqNames []string
	// Index, if not nil, receives the index (*.fai) of the written FASTA.
	// The format is "<sequence name>\t<length>\t<byte offset>\t<bases per
	// line>\t<bytes per line>", as defined by "samtools faidx".
	Index io.Writer
}

// Write writes the sequences of f to out.
func Write(out io.Writer, f Fasta, opts WriteOpts) error {
	width := opts.LineWidth
	if width <= 0 {
		width = DefaultLineWidth
	}
	names := opts.SeqNames
	if names == nil {
		names = f.SeqNames()
	}
	var (
		w       = bufio.NewWriter(out)
		index   *tsv.Writer
		cumByte int64
	)
	if opts.Index != nil {
		index = tsv.NewWriter(opts.Index)
	}
	chunk := uint64(chunkBases / width * width)
	for _, name := range names {
		length, err := f.Len(name)
		if err != nil {
			return err
		}
		n, _ := w.WriteString(">" + name + "\n")
		cumByte += int64(n)
		if index != nil {
			index.WriteString(name)
			index.WriteInt64(int64(length))
			index.WriteInt64(cumByte)
			index.WriteInt64(int64(width))
			index.WriteInt64(int64(width + 1))
			if err := index.EndLine(); err != nil {
				return err
			}
		}
		for start := uint64(0); start < length; start += chunk {
			end := start + chunk
			if end > length {
				end = length
			}
			seq, err := f.Get(name, start, end)
			if err != nil {
				return err
			}
			for len(seq) > 0 {
				line := seq
				if len(line) > width {
					line = line[:width]
				}
				seq = seq[len(line):]
				w.WriteString(line) // nolint: errcheck
				if err := w.WriteByte('\n'); err != nil {
					return errors.Wrap(err, "write fasta")
				}
				cumByte += int64(len(line) + 1)
			}
		}
	}
	if index != nil {
		if err := index.Flush(); err != nil {
			return err
		}
	}
	return w.Flush()
}
