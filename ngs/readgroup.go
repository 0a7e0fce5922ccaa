package ngs

import "github.com/grailbio/ngs/native"

// ReadGroup is a set of reads that share sequencing metadata.
type ReadGroup struct {
	object
}

func wrapReadGroup(o object) *ReadGroup { return &ReadGroup{o} }

// Name returns the name of the group. The default group is unnamed.
func (g *ReadGroup) Name() (string, error) { return g.str("PY_NGS_ReadGroupGetName") }

// Statistics returns the statistics of the group.
func (g *ReadGroup) Statistics() (*Statistics, error) {
	return child(&g.object, wrapStatistics, "PY_NGS_ReadGroupGetStatistics")
}

// ReadGroupIterator iterates over read groups.
type ReadGroupIterator struct {
	ReadGroup
}

func wrapReadGroupIterator(o object) *ReadGroupIterator { return &ReadGroupIterator{ReadGroup{o}} }

// Next advances to the next read group.
func (it *ReadGroupIterator) Next() (bool, error) { return it.next("PY_NGS_ReadGroupIteratorNext") }

// Statistics is a tree of named values. Paths look like "BASE_COUNT" or
// "ALIGNMENT/SEGMENT/COUNT".
type Statistics struct {
	object
}

func wrapStatistics(o object) *Statistics { return &Statistics{o} }

// ValueType returns the type of the value at path, ValueUndefined if there
// is none.
func (s *Statistics) ValueType(path string) (ValueType, error) {
	return get[ValueType](&s.object, "PY_NGS_StatisticsGetValueType", native.CString(path))
}

// AsString returns the value at path as text. Every type converts.
func (s *Statistics) AsString(path string) (string, error) {
	return s.str("PY_NGS_StatisticsGetAsString", native.CString(path))
}

// AsInt64 returns the value at path.
func (s *Statistics) AsInt64(path string) (int64, error) {
	return get[int64](&s.object, "PY_NGS_StatisticsGetAsI64", native.CString(path))
}

// AsUint64 returns the value at path.
func (s *Statistics) AsUint64(path string) (uint64, error) {
	return get[uint64](&s.object, "PY_NGS_StatisticsGetAsU64", native.CString(path))
}

// AsFloat64 returns the value at path.
func (s *Statistics) AsFloat64(path string) (float64, error) {
	return get[float64](&s.object, "PY_NGS_StatisticsGetAsDouble", native.CString(path))
}

// NextPath returns the path that follows path in depth-first order, or ""
// after the last one. NextPath("") returns the first path.
func (s *Statistics) NextPath(path string) (string, error) {
	return s.str("PY_NGS_StatisticsGetNextPath", native.CString(path))
}

// Paths returns every path, in order.
func (s *Statistics) Paths() ([]string, error) {
	var paths []string
	path := ""
	for {
		next, err := s.NextPath(path)
		if err != nil {
			return paths, err
		}
		if next == "" {
			return paths, nil
		}
		paths = append(paths, next)
		path = next
	}
}
