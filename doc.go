// Package qurro computes and interactively updates log-ratios of grouped
// feature abundances across samples, linked to a feature-rank display.
//
// A session is built once from two immutable inputs supplied by an external
// loader: the sparse abundance matrix (table.Table) and the per-feature
// metadata index (metadata.Index). User events then drive a single
// authoritative selection:
//
//	q, _ := qurro.New(tbl, idx)
//	defer q.Close()
//
//	_ = q.ClickFeature(ctx, "F1")                    // numerator = {F1}
//	_ = q.SubmitQuery(ctx, "rank > 0.5", qurro.Denominator)
//
//	for pkt := range q.Packets() {
//	    render(pkt) // pkt.PerSampleLogRatio, pkt.ExcludedSampleCount, ...
//	}
//
// # Selection Model
//
// Two slots, numerator and denominator, each holding an explicit feature-id
// set (from clicks) or a query-derived set. A click fills the first empty
// slot; once both are set, further clicks replace the denominator. Queries
// are boolean predicates over feature metadata (see package metadata for the
// grammar). Slots may overlap.
//
// Whenever both slots are non-empty the engine computes, per sample,
// ln(numerator sum) - ln(denominator sum); samples where either sum is zero
// are excluded rather than rendered. Every mutation gets a strictly
// increasing generation; with background computation enabled
// (WithWorkers), only the newest generation's result reaches the output,
// regardless of completion order.
//
// # Output
//
// On every transition into Ready or Error (and on Clear) the session emits
// an immutable model.Packet. Subscribers are read-only: the packet stream is
// the only coupling between the rank display and the log-ratio plot.
//
// # Scope
//
// The package performs no statistical inference, normalization, file
// parsing, or rendering; loaders and renderers are external collaborators.
package qurro
