package ngsprovider

import (
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/ngs/ngs"
	"github.com/pkg/errors"
)

var rgTag = sam.NewTag("RG")

// NewRecord converts a to a SAM record. refs maps common reference names to
// the references of the header. The record holds the clipped fragment, so
// its cigar has no soft clips.
func NewRecord(a *ngs.Alignment, refs map[string]*sam.Reference) (*sam.Record, error) {
	id, err := a.AlignmentID()
	if err != nil {
		return nil, err
	}
	wrap := func(err error) error { return errors.Wrapf(err, "alignment %s", id) }

	name, err := a.ReadID()
	if err != nil {
		return nil, wrap(err)
	}
	spec, err := a.ReferenceSpec()
	if err != nil {
		return nil, wrap(err)
	}
	ref, ok := refs[spec]
	if !ok {
		return nil, errors.Errorf("alignment %s: unknown reference %q", id, spec)
	}
	pos, err := a.Position()
	if err != nil {
		return nil, wrap(err)
	}
	mapq, err := a.MappingQuality()
	if err != nil {
		return nil, wrap(err)
	}
	cigarText, err := a.ShortCigar(true)
	if err != nil {
		return nil, wrap(err)
	}
	cigar, err := sam.ParseCigar([]byte(cigarText))
	if err != nil {
		return nil, wrap(err)
	}
	bases, err := a.ClippedFragmentBases()
	if err != nil {
		return nil, wrap(err)
	}
	quals, err := a.ClippedFragmentQualities()
	if err != nil {
		return nil, wrap(err)
	}
	qual := []byte(quals)
	for i := range qual {
		qual[i] -= 33
	}
	var aux []sam.Aux
	rg, err := a.ReadGroup()
	if err != nil {
		return nil, wrap(err)
	}
	if rg != "" {
		tag, err := sam.NewAux(rgTag, rg)
		if err != nil {
			return nil, wrap(err)
		}
		aux = append(aux, tag)
	}

	var flags sam.Flags
	rev, err := a.IsReversedOrientation()
	if err != nil {
		return nil, wrap(err)
	}
	if rev {
		flags |= sam.Reverse
	}
	cat, err := a.Category()
	if err != nil {
		return nil, wrap(err)
	}
	if cat == ngs.SecondaryAlignment {
		flags |= sam.Secondary
	}

	var (
		mateRef       *sam.Reference
		matePos, tlen = -1, 0
	)
	hasMate, err := a.HasMate()
	if err != nil {
		return nil, wrap(err)
	}
	if hasMate {
		flags |= sam.Paired
		if mateRef, matePos, err = mate(a, refs); err != nil {
			return nil, wrap(err)
		}
		mateRev, err := a.MateIsReversedOrientation()
		if err != nil {
			return nil, wrap(err)
		}
		if mateRev {
			flags |= sam.MateReverse
		}
		n, err := a.TemplateLength()
		if err != nil {
			return nil, wrap(err)
		}
		tlen = int(n)
		if mateRef == ref && int64(matePos) < pos {
			tlen = -tlen
		}
	}

	if mapq > 255 {
		mapq = 255
	}
	rec, err := sam.NewRecord(name, ref, mateRef, int(pos), matePos, tlen, byte(mapq), cigar, []byte(bases), qual, aux)
	if err != nil {
		return nil, wrap(err)
	}
	rec.Flags |= flags
	return rec, nil
}

func mate(a *ngs.Alignment, refs map[string]*sam.Reference) (*sam.Reference, int, error) {
	m, err := a.MateAlignment()
	if err != nil {
		return nil, -1, err
	}
	defer m.Close() // nolint: errcheck
	spec, err := m.ReferenceSpec()
	if err != nil {
		return nil, -1, err
	}
	pos, err := m.Position()
	if err != nil {
		return nil, -1, err
	}
	ref, ok := refs[spec]
	if !ok {
		return nil, -1, errors.Errorf("unknown mate reference %q", spec)
	}
	return ref, int(pos), nil
}
