// Package model defines core types shared across qurro packages.
//
// # Identity Types
//
//   - FeatureID: User-facing identifier of a feature (taxon, metabolite, ...)
//   - SampleID: Identifier of a sample column in the abundance table
//   - Ordinal: Dense internal index for a feature or sample (uint32)
//   - Generation: Monotonic sequence number tagging selection mutations
//
// # Data Types
//
//   - Ratio: One sample's log-ratio value, or an exclusion marker
//   - Result: Per-sample log ratios from one engine computation
//   - Packet: Immutable output emitted to the rendering layer
package model
