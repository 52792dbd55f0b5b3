// Package engine provides the log-ratio computation and the selection link
// controller.
//
// Compute is a pure function from (numerator set, denominator set, table) to
// a per-sample result; it retains no state between calls.
//
// The Controller is the single writer of the selection state. It consumes
// user events (feature click, query submit, clear), keeps a strictly
// increasing generation counter, invokes Compute inline or on a WorkerPool,
// and emits immutable output packets to the rendering layer. Correctness
// under concurrent computations rests on the generation rule: every
// computation is tagged with the generation current at launch, and only
// results newer than the last applied generation reach the output.
// Superseded computations run to completion and are discarded on arrival.
package engine
