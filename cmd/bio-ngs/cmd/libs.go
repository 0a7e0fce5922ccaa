package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/ngs/native"
	"github.com/grailbio/ngs/ngs"
)

func libs(ctx context.Context, out io.Writer, m *ngs.Manager) error {
	rt, err := m.Runtime(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\t%s\n", native.Engine, rt.Engine().Path())
	fmt.Fprintf(out, "%s\t%s\n", native.SDK, rt.SDK().Path())
	for _, e := range native.Entries {
		if e.Optional && !rt.Has(e.Symbol) {
			fmt.Fprintf(out, "unsupported\t%s\n", e.Symbol)
		}
	}
	return nil
}
