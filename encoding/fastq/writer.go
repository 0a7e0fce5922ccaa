// Package fastq writes the reads of an NGS read collection in FASTQ format.
package fastq

import (
	"bufio"
	"io"
)

// A Read is one FASTQ record. ID excludes the leading '@'.
type Read struct {
	ID, Seq, Qual string
}

// Writer is a FASTQ file writer.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes the read r in FASTQ format. The third line is a bare "+".
// An error is returned if the write failed.
func (w *Writer) Write(r *Read) error {
	w.writeln("@", r.ID)
	w.writeln("", r.Seq)
	w.writeln("+", "")
	w.writeln("", r.Qual)
	return w.err
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) writeln(prefix, line string) {
	if w.err != nil {
		return
	}
	if _, w.err = w.w.WriteString(prefix); w.err != nil {
		return
	}
	if _, w.err = w.w.WriteString(line); w.err != nil {
		return
	}
	w.err = w.w.WriteByte('\n')
}
