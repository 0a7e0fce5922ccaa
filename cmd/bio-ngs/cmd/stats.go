package cmd

import (
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/ngs/ngs"
	"github.com/pkg/errors"
)

// stats writes one row per read group and statistics path.
func stats(ctx context.Context, out io.Writer, m *ngs.Manager, spec string) (err error) {
	rc, err := m.OpenReadCollection(ctx, spec)
	if err != nil {
		return err
	}
	defer func() {
		if e := rc.Close(); e != nil && err == nil {
			err = e
		}
	}()
	groups, err := rc.ReadGroups()
	if err != nil {
		return err
	}
	defer groups.Close() // nolint: errcheck

	w := tsv.NewWriter(out)
	w.WriteString("#READ_GROUP\tPATH\tTYPE\tVALUE")
	if err := w.EndLine(); err != nil {
		return err
	}
	for {
		ok, err := groups.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		name, err := groups.Name()
		if err != nil {
			return err
		}
		if err := writeStatistics(w, name, &groups.ReadGroup); err != nil {
			return errors.Wrapf(err, "read group %q", name)
		}
	}
	return w.Flush()
}

func writeStatistics(w *tsv.Writer, group string, g *ngs.ReadGroup) error {
	st, err := g.Statistics()
	if err != nil {
		return err
	}
	defer st.Close() // nolint: errcheck
	paths, err := st.Paths()
	if err != nil {
		return err
	}
	for _, path := range paths {
		typ, err := st.ValueType(path)
		if err != nil {
			return err
		}
		var value string
		switch typ {
		case ngs.ValueInt64:
			var v int64
			v, err = st.AsInt64(path)
			value = strconv.FormatInt(v, 10)
		case ngs.ValueUint64:
			var v uint64
			v, err = st.AsUint64(path)
			value = strconv.FormatUint(v, 10)
		case ngs.ValueReal:
			var v float64
			v, err = st.AsFloat64(path)
			value = strconv.FormatFloat(v, 'g', -1, 64)
		default:
			value, err = st.AsString(path)
		}
		if err != nil {
			return errors.Wrap(err, path)
		}
		if group == "" {
			group = "*"
		}
		w.WriteString(group)
		w.WriteString(path)
		w.WriteString(typ.String())
		w.WriteString(value)
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}
