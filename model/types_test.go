package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatioJSON(t *testing.T) {
	data, err := json.Marshal(Ratio{Value: 2.302585})
	require.NoError(t, err)
	assert.Equal(t, "2.302585", string(data))

	data, err = json.Marshal(Ratio{Excluded: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var r Ratio
	require.NoError(t, json.Unmarshal([]byte("null"), &r))
	assert.True(t, r.Excluded)

	require.NoError(t, json.Unmarshal([]byte("-1.5"), &r))
	assert.Equal(t, Ratio{Value: -1.5}, r)
}

func TestStateJSON(t *testing.T) {
	for _, s := range []State{StateIdle, StateReady, StateError} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var decoded State
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, s, decoded)
	}

	var s State
	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &s))
}

func TestSlotString(t *testing.T) {
	assert.Equal(t, "numerator", SlotNumerator.String())
	assert.Equal(t, "denominator", SlotDenominator.String())
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"Clean", "F1", "F1"},
		{"Dots", "g__Bacteroides.s__x", "g__Bacteroides:s__x"},
		{"Brackets", "f[1]", "f(1)"},
		{"Quotes", `a'b"c`, "a|b|c"},
		{"Backslash", `a\b`, "a|b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeID(tt.in))
		})
	}
}
