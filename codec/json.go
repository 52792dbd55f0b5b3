package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Packets are plain maps and scalars, so JSON is stable and portable; use it
// when the receiving side is not Go or lowest-dependency output matters.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
