package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronmartino/qurro/model"
)

func rankIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Build(
		[]string{"rank", "taxonomy", "phylum"},
		[]Row{
			{ID: "F1", Values: map[string]Value{"rank": Number(0.6), "taxonomy": Text("Firmicutes_X"), "phylum": Text("Firmicutes")}},
			{ID: "F2", Values: map[string]Value{"rank": Number(0.2), "taxonomy": Text("Firmicutes_Y"), "phylum": Text("Firmicutes")}},
			{ID: "F3", Values: map[string]Value{"rank": Number(-0.8), "taxonomy": Text("Bacteroides sp."), "phylum": Text("Bacteroidetes")}},
			{ID: "F4", Values: map[string]Value{"rank": Number(0.9)}},
		},
	)
	require.NoError(t, err)
	return ix
}

func evalIDs(t *testing.T, ix *Index, query string) []model.FeatureID {
	t.Helper()
	bm, err := ix.Evaluate(query)
	require.NoError(t, err, query)
	ids := make([]model.FeatureID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		id, ok := ix.ID(model.Ordinal(it.Next()))
		require.True(t, ok)
		ids = append(ids, id)
	}
	return ids
}

func TestEvaluate(t *testing.T) {
	ix := rankIndex(t)

	tests := []struct {
		name     string
		query    string
		expected []model.FeatureID
	}{
		{
			"RankAndContains",
			"rank > 0.5 AND taxonomy contains 'Firmicutes'",
			[]model.FeatureID{"F1"},
		},
		{
			"Equality",
			"phylum == Firmicutes",
			[]model.FeatureID{"F1", "F2"},
		},
		{
			"QuotedValueWithWhitespace",
			`taxonomy == "Bacteroides sp."`,
			[]model.FeatureID{"F3"},
		},
		{
			"NumericRange",
			"rank >= 0.2 AND rank <= 0.6",
			[]model.FeatureID{"F1", "F2"},
		},
		{
			"NotEqual",
			"phylum != Firmicutes",
			// F4 has no phylum value; missing matches nothing, even !=.
			[]model.FeatureID{"F3"},
		},
		{
			"OrGrouping",
			"(rank > 0.5 OR rank < -0.5) AND NOT taxonomy contains Bacteroides",
			[]model.FeatureID{"F1", "F4"},
		},
		{
			"NotEliminatesAll",
			"NOT rank <= 1",
			[]model.FeatureID{},
		},
		{
			"KeywordsCaseInsensitive",
			"rank > 0.5 and taxonomy CONTAINS Firmicutes",
			[]model.FeatureID{"F1"},
		},
		{
			"FieldsCaseInsensitive",
			"RANK > 0.5 AND Taxonomy contains Firmicutes",
			[]model.FeatureID{"F1"},
		},
		{
			"SingleQuotes",
			"taxonomy contains 'Firmicutes_'",
			[]model.FeatureID{"F1", "F2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalIDs(t, ix, tt.query))
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	ix := rankIndex(t)

	first := evalIDs(t, ix, "rank > 0 AND taxonomy contains Firmicutes")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, evalIDs(t, ix, "rank > 0 AND taxonomy contains Firmicutes"))
	}
}

func TestEvaluateSyntaxErrors(t *testing.T) {
	ix := rankIndex(t)

	tests := []struct {
		name  string
		query string
	}{
		{"Empty", ""},
		{"MissingValue", "rank >"},
		{"MissingOperator", "rank 0.5"},
		{"UnbalancedParen", "(rank > 0.5"},
		{"TrailingInput", "rank > 0.5 taxonomy"},
		{"UnterminatedQuote", "taxonomy contains 'Firmi"},
		{"DanglingAnd", "rank > 0.5 AND"},
		{"BareNot", "NOT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ix.Evaluate(tt.query)
			var se *SyntaxError
			require.ErrorAs(t, err, &se, tt.query)
		})
	}
}

func TestEvaluateSyntaxErrorPosition(t *testing.T) {
	ix := rankIndex(t)

	_, err := ix.Evaluate("rank > 0.5 oops > 1 extra")
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "oops", se.Token)
	assert.Equal(t, 11, se.Pos)
}

func TestEvaluateFieldErrors(t *testing.T) {
	ix := rankIndex(t)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"UnknownField", "loading > 0.5", "loading"},
		{"ContainsOnNumeric", "rank contains 5", "rank"},
		{"OrderedOnText", "taxonomy > abc", "taxonomy"},
		{"NonNumericValue", "rank == abc", "rank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ix.Evaluate(tt.query)
			var fe *FieldError
			require.ErrorAs(t, err, &fe, tt.query)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestQueryCacheReuse(t *testing.T) {
	ix := rankIndex(t)

	const q = "rank > 0.5"
	_, err := ix.Evaluate(q)
	require.NoError(t, err)

	ix.cache.mu.RLock()
	cached, ok := ix.cache.entries[q]
	ix.cache.mu.RUnlock()
	require.True(t, ok)

	_, err = ix.Evaluate(q)
	require.NoError(t, err)

	ix.cache.mu.RLock()
	again := ix.cache.entries[q]
	ix.cache.mu.RUnlock()
	assert.Same(t, cached.(*boundCmp), again.(*boundCmp), "bound expression should be parsed once per exact string")
}

func TestQueryCacheDoesNotCacheFailures(t *testing.T) {
	ix := rankIndex(t)

	_, err := ix.Evaluate("rank >")
	require.Error(t, err)

	ix.cache.mu.RLock()
	_, ok := ix.cache.entries["rank >"]
	ix.cache.mu.RUnlock()
	assert.False(t, ok)
}
