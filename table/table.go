// Package table provides the immutable sparse feature-by-sample abundance
// matrix. Counts are stored as per-feature posting lists so a group sum
// touches only the cells a selected feature actually occupies.
package table

import (
	"fmt"
	"strings"

	"github.com/cameronmartino/qurro/model"
)

// Entry is one nonzero cell of the abundance matrix as delivered by the
// loader. Absent cells are zero.
type Entry struct {
	Feature model.FeatureID
	Sample  model.SampleID
	Count   float64
}

// cell is one posting: a sample ordinal and its count.
type cell struct {
	sample model.Ordinal
	count  float64
}

// Table is the immutable sparse abundance matrix. It is read-only after New
// and safe for concurrent use.
type Table struct {
	features   []model.FeatureID
	featureOrd map[model.FeatureID]model.Ordinal
	samples    []model.SampleID
	sampleOrd  map[model.SampleID]model.Ordinal
	postings   [][]cell // by feature ordinal
}

// New constructs a Table from the loader's snapshot. Feature ids are
// sanitized with model.SanitizeID so they line up with the metadata index.
//
// New fails on empty or duplicate ids, on entries naming unknown features or
// samples, and on negative counts. Zero-count entries are dropped.
func New(features []model.FeatureID, samples []model.SampleID, entries []Entry) (*Table, error) {
	t := &Table{
		features:   make([]model.FeatureID, 0, len(features)),
		featureOrd: make(map[model.FeatureID]model.Ordinal, len(features)),
		samples:    make([]model.SampleID, 0, len(samples)),
		sampleOrd:  make(map[model.SampleID]model.Ordinal, len(samples)),
	}

	for _, f := range features {
		id := model.FeatureID(model.SanitizeID(string(f)))
		if strings.TrimSpace(string(id)) == "" {
			return nil, fmt.Errorf("table: empty feature id")
		}
		if _, ok := t.featureOrd[id]; ok {
			return nil, fmt.Errorf("table: duplicate feature id %q", id)
		}
		t.featureOrd[id] = model.Ordinal(len(t.features))
		t.features = append(t.features, id)
	}
	for _, s := range samples {
		if strings.TrimSpace(string(s)) == "" {
			return nil, fmt.Errorf("table: empty sample id")
		}
		if _, ok := t.sampleOrd[s]; ok {
			return nil, fmt.Errorf("table: duplicate sample id %q", s)
		}
		t.sampleOrd[s] = model.Ordinal(len(t.samples))
		t.samples = append(t.samples, s)
	}

	t.postings = make([][]cell, len(t.features))
	for _, e := range entries {
		fid := model.FeatureID(model.SanitizeID(string(e.Feature)))
		ford, ok := t.featureOrd[fid]
		if !ok {
			return nil, fmt.Errorf("table: entry references unknown feature %q", e.Feature)
		}
		sord, ok := t.sampleOrd[e.Sample]
		if !ok {
			return nil, fmt.Errorf("table: entry references unknown sample %q", e.Sample)
		}
		if e.Count < 0 {
			return nil, fmt.Errorf("table: negative count %v for feature %q sample %q", e.Count, e.Feature, e.Sample)
		}
		if e.Count == 0 {
			continue
		}
		t.postings[ford] = append(t.postings[ford], cell{sample: sord, count: e.Count})
	}
	return t, nil
}

// NumFeatures returns the number of feature rows.
func (t *Table) NumFeatures() int { return len(t.features) }

// NumSamples returns the number of sample columns.
func (t *Table) NumSamples() int { return len(t.samples) }

// Features returns the feature ids in ordinal order. The returned slice is
// shared and must be treated as read-only.
func (t *Table) Features() []model.FeatureID { return t.features }

// Samples returns the sample ids in ordinal order. The returned slice is
// shared and must be treated as read-only.
func (t *Table) Samples() []model.SampleID { return t.samples }

// FeatureOrdinal returns the dense ordinal of a feature id.
func (t *Table) FeatureOrdinal(id model.FeatureID) (model.Ordinal, bool) {
	ord, ok := t.featureOrd[id]
	return ord, ok
}

// Count returns the abundance of one cell; absent cells are zero.
func (t *Table) Count(f model.FeatureID, s model.SampleID) float64 {
	ford, ok := t.featureOrd[f]
	if !ok {
		return 0
	}
	sord, ok := t.sampleOrd[s]
	if !ok {
		return 0
	}
	for _, c := range t.postings[ford] {
		if c.sample == sord {
			return c.count
		}
	}
	return 0
}

// SumInto adds one feature's postings into dst, which must be indexed by
// sample ordinal and have length NumSamples.
func (t *Table) SumInto(dst []float64, ord model.Ordinal) {
	if int(ord) >= len(t.postings) {
		return
	}
	for _, c := range t.postings[ord] {
		dst[c.sample] += c.count
	}
}
