// Package metadata provides the immutable per-feature attribute index and
// the textual query evaluator used to select feature groups.
//
// # Value Types
//
// Metadata values are typed at load time:
//
//   - Numeric: metadata.Number(0.6)
//   - Text: metadata.Text("Firmicutes_X")
//   - Missing: metadata.Missing()
//
// Each field's type (numeric or text) is recorded once when the index is
// built and consulted during query evaluation; a field is numeric only if
// every non-missing value parses as a number.
//
// # Query Grammar
//
// Queries are boolean predicates over fields, with OR binding loosest and
// NOT tightest:
//
//	rank > 0.5 AND taxonomy contains 'Firmicutes'
//	NOT (phylum == Bacteroidetes OR rank <= 0)
//
// Comparison operators are ==, !=, <, <=, >, >= and the keyword "contains"
// (substring match, text fields only). Ordered comparisons require numeric
// fields. Values may be single- or double-quoted to permit whitespace.
// Field names resolve case-insensitively; AND/OR/NOT/contains are
// case-insensitive keywords.
//
// # Evaluation
//
// Each distinct query string is parsed and bound to the index once and
// cached by exact string. Evaluation is a single linear scan over the
// feature index, producing a roaring bitmap of feature ordinals: set
// semantics, deterministic, independent of metadata row order.
package metadata
