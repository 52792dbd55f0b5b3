package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronmartino/qurro/model"
)

func TestNew(t *testing.T) {
	tbl, err := New(
		[]model.FeatureID{"F1", "F2"},
		[]model.SampleID{"S1", "S2", "S3"},
		[]Entry{
			{Feature: "F1", Sample: "S1", Count: 100},
			{Feature: "F1", Sample: "S2", Count: 3},
			{Feature: "F2", Sample: "S1", Count: 10},
			{Feature: "F2", Sample: "S3", Count: 0}, // dropped
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.NumFeatures())
	assert.Equal(t, 3, tbl.NumSamples())
	assert.Equal(t, []model.SampleID{"S1", "S2", "S3"}, tbl.Samples())

	assert.Equal(t, 100.0, tbl.Count("F1", "S1"))
	assert.Equal(t, 3.0, tbl.Count("F1", "S2"))
	assert.Equal(t, 0.0, tbl.Count("F1", "S3"), "absent cell is zero")
	assert.Equal(t, 0.0, tbl.Count("F2", "S3"), "zero-count entry is dropped")
	assert.Equal(t, 0.0, tbl.Count("F9", "S1"), "unknown feature is zero")
}

func TestNewRejectsBadInput(t *testing.T) {
	features := []model.FeatureID{"F1"}
	samples := []model.SampleID{"S1"}

	tests := []struct {
		name     string
		features []model.FeatureID
		samples  []model.SampleID
		entries  []Entry
		contains string
	}{
		{"DuplicateFeature", []model.FeatureID{"F1", "F1"}, samples, nil, "duplicate feature"},
		{"DuplicateSample", features, []model.SampleID{"S1", "S1"}, nil, "duplicate sample"},
		{"EmptyFeature", []model.FeatureID{" "}, samples, nil, "empty feature"},
		{"EmptySample", features, []model.SampleID{""}, nil, "empty sample"},
		{"UnknownFeature", features, samples, []Entry{{Feature: "F9", Sample: "S1", Count: 1}}, "unknown feature"},
		{"UnknownSample", features, samples, []Entry{{Feature: "F1", Sample: "S9", Count: 1}}, "unknown sample"},
		{"NegativeCount", features, samples, []Entry{{Feature: "F1", Sample: "S1", Count: -1}}, "negative count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.features, tt.samples, tt.entries)
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestNewSanitizesFeatureIDs(t *testing.T) {
	tbl, err := New(
		[]model.FeatureID{"tax.on[1]"},
		[]model.SampleID{"S1"},
		[]Entry{{Feature: "tax.on[1]", Sample: "S1", Count: 5}},
	)
	require.NoError(t, err)

	_, ok := tbl.FeatureOrdinal("tax:on(1)")
	assert.True(t, ok)
	assert.Equal(t, 5.0, tbl.Count("tax:on(1)", "S1"))
}

func TestSumInto(t *testing.T) {
	tbl, err := New(
		[]model.FeatureID{"F1", "F2"},
		[]model.SampleID{"S1", "S2"},
		[]Entry{
			{Feature: "F1", Sample: "S1", Count: 1},
			{Feature: "F2", Sample: "S1", Count: 2},
			{Feature: "F2", Sample: "S2", Count: 4},
		},
	)
	require.NoError(t, err)

	sums := make([]float64, tbl.NumSamples())
	for _, id := range []model.FeatureID{"F1", "F2"} {
		ord, ok := tbl.FeatureOrdinal(id)
		require.True(t, ok)
		tbl.SumInto(sums, ord)
	}
	assert.Equal(t, []float64{3, 4}, sums)

	// Out-of-range ordinal is a no-op.
	tbl.SumInto(sums, model.Ordinal(99))
	assert.Equal(t, []float64{3, 4}, sums)
}
