// Package testutil provides testing fixtures for qurro.
//
// This package is intended for use in tests and benchmarks only. It builds
// a small canonical dataset shared across packages: three ranked features
// (two Firmicutes, one Bacteroidetes) over two samples, with counts chosen
// so that sample SA yields ln(100) - ln(10) for the F1/F2 ratio and sample
// SB excludes any selection touching F2.
package testutil

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cameronmartino/qurro/metadata"
	"github.com/cameronmartino/qurro/model"
	"github.com/cameronmartino/qurro/table"
)

// RankedIndex builds the canonical three-feature metadata index.
func RankedIndex(tb testing.TB) *metadata.Index {
	tb.Helper()
	ix, err := metadata.Build(
		[]string{"rank", "taxonomy"},
		[]metadata.Row{
			{ID: "F1", Values: map[string]metadata.Value{"rank": metadata.Number(0.6), "taxonomy": metadata.Text("Firmicutes_X")}},
			{ID: "F2", Values: map[string]metadata.Value{"rank": metadata.Number(0.2), "taxonomy": metadata.Text("Firmicutes_Y")}},
			{ID: "F3", Values: map[string]metadata.Value{"rank": metadata.Number(-0.4), "taxonomy": metadata.Text("Bacteroidetes_Z")}},
		},
	)
	if err != nil {
		tb.Fatalf("build index: %v", err)
	}
	return ix
}

// AbundanceTable builds the canonical sparse abundance matrix matching
// RankedIndex.
func AbundanceTable(tb testing.TB) *table.Table {
	tb.Helper()
	tbl, err := table.New(
		[]model.FeatureID{"F1", "F2", "F3"},
		[]model.SampleID{"SA", "SB"},
		[]table.Entry{
			{Feature: "F1", Sample: "SA", Count: 100},
			{Feature: "F2", Sample: "SA", Count: 10},
			{Feature: "F1", Sample: "SB", Count: 7},
			{Feature: "F3", Sample: "SB", Count: 2},
		},
	)
	if err != nil {
		tb.Fatalf("build table: %v", err)
	}
	return tbl
}

// Group resolves feature ids to a bitmap of index ordinals.
func Group(tb testing.TB, ix *metadata.Index, ids ...model.FeatureID) *roaring.Bitmap {
	tb.Helper()
	bm := roaring.New()
	for _, id := range ids {
		ord, ok := ix.Ordinal(id)
		if !ok {
			tb.Fatalf("feature %q not in index", id)
		}
		bm.Add(uint32(ord))
	}
	return bm
}
