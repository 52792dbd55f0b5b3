package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FeatureID is the user-facing, stable identifier of a feature.
type FeatureID string

// SampleID identifies a sample column of the abundance table.
type SampleID string

// Ordinal is a dense, internal identifier for a feature or sample within one
// index or table. It is strictly 32-bit so selections fit roaring bitmaps.
type Ordinal uint32

// Generation is a monotonically increasing sequence number assigned to every
// selection mutation. Results from a superseded generation are discarded.
type Generation uint64

// Slot names one side of the log-ratio selection.
type Slot uint8

const (
	// SlotNumerator is the numerator side of the selection.
	SlotNumerator Slot = iota
	// SlotDenominator is the denominator side of the selection.
	SlotDenominator
)

// String returns the string representation of the Slot.
func (s Slot) String() string {
	switch s {
	case SlotNumerator:
		return "numerator"
	case SlotDenominator:
		return "denominator"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

// State is the link controller's externally visible state.
type State uint8

const (
	// StateIdle means at least one selection slot is empty.
	StateIdle State = iota
	// StateReady means both slots are filled and the last computation succeeded.
	StateReady
	// StateError means the last update failed validation; the previous Ready
	// result is retained for display.
	StateError
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// MarshalJSON encodes the state as its string name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state from its string name.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "idle":
		*s = StateIdle
	case "ready":
		*s = StateReady
	case "error":
		*s = StateError
	default:
		return fmt.Errorf("unknown state %q", name)
	}
	return nil
}

// Ratio is one sample's log-ratio value. When Excluded is true the value is
// undefined (one side's abundance sum was zero) and the sample is omitted
// from rendering.
type Ratio struct {
	Value    float64
	Excluded bool
}

// MarshalJSON encodes an excluded ratio as null, otherwise as a number.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.Excluded {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, r.Value, 'g', -1, 64), nil
}

// UnmarshalJSON decodes null as an exclusion marker.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Ratio{Excluded: true}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*r = Ratio{Value: v}
	return nil
}

// Result holds the per-sample log ratios of one engine computation.
type Result struct {
	// Samples maps each sample to its log ratio or exclusion marker.
	// Every sample of the table appears exactly once.
	Samples map[SampleID]Ratio
	// ExcludedCount is the number of excluded entries in Samples.
	ExcludedCount int
}

// Packet is the immutable output handed to the rendering layer on every
// transition. Subscribers must treat it as read-only.
type Packet struct {
	Generation            Generation         `json:"generation"`
	State                 State              `json:"state"`
	PerSampleLogRatio     map[SampleID]Ratio `json:"perSampleLogRatio,omitempty"`
	ExcludedSampleCount   int                `json:"excludedSampleCount"`
	NumeratorFeatureIDs   []FeatureID        `json:"numeratorFeatureIds"`
	DenominatorFeatureIDs []FeatureID        `json:"denominatorFeatureIds"`
	ErrorDetail           string             `json:"errorDetail,omitempty"`
}

// SanitizeID escapes characters in an identifier that are unsafe for
// downstream rendering field names: '.' becomes ':', brackets become
// parentheses, and quote characters become '|'.
func SanitizeID(id string) string {
	if !strings.ContainsAny(id, ".[]'\"\\") {
		return id
	}
	var b strings.Builder
	b.Grow(len(id))
	for _, c := range id {
		switch c {
		case '.':
			b.WriteRune(':')
		case '[':
			b.WriteRune('(')
		case ']':
			b.WriteRune(')')
		case '\'', '"', '\\':
			b.WriteRune('|')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
