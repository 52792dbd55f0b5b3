package engine

import (
	"context"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cameronmartino/qurro/metadata"
	"github.com/cameronmartino/qurro/model"
	"github.com/cameronmartino/qurro/table"
)

// Compute derives the per-sample log ratio of two feature groups.
//
// numerator and denominator hold feature ordinals of the metadata index;
// selected features absent from the table contribute zero. For each sample,
// if either group's abundance sum is zero the sample is marked Excluded,
// otherwise its value is ln(numeratorSum) - ln(denominatorSum).
//
// Compute is pure: it retains nothing between calls, and identical inputs
// produce identical results. An empty group yields a GroupEmptyError.
func Compute(ctx context.Context, numerator, denominator *roaring.Bitmap, idx *metadata.Index, tbl *table.Table) (*model.Result, error) {
	if numerator == nil || numerator.IsEmpty() {
		return nil, &GroupEmptyError{Slot: model.SlotNumerator}
	}
	if denominator == nil || denominator.IsEmpty() {
		return nil, &GroupEmptyError{Slot: model.SlotDenominator}
	}

	numSums := make([]float64, tbl.NumSamples())
	denSums := make([]float64, tbl.NumSamples())

	// The two group sums are independent; fan them out.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return groupSums(ctx, numerator, idx, tbl, numSums) })
	g.Go(func() error { return groupSums(ctx, denominator, idx, tbl, denSums) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &model.Result{Samples: make(map[model.SampleID]model.Ratio, tbl.NumSamples())}
	for sord, sid := range tbl.Samples() {
		n, d := numSums[sord], denSums[sord]
		if n == 0 || d == 0 {
			res.Samples[sid] = model.Ratio{Excluded: true}
			res.ExcludedCount++
			continue
		}
		res.Samples[sid] = model.Ratio{Value: math.Log(n) - math.Log(d)}
	}
	return res, nil
}

// groupSums accumulates one group's counts per sample ordinal into dst.
func groupSums(ctx context.Context, group *roaring.Bitmap, idx *metadata.Index, tbl *table.Table, dst []float64) error {
	it := group.Iterator()
	for it.HasNext() {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, ok := idx.ID(model.Ordinal(it.Next()))
		if !ok {
			continue
		}
		ord, ok := tbl.FeatureOrdinal(id)
		if !ok {
			// Feature has metadata but no abundance row; counts as zero.
			continue
		}
		tbl.SumInto(dst, ord)
	}
	return nil
}
