// Package codec centralizes output-packet encoding for the renderer
// boundary.
//
// The core hands immutable packets to subscribers in-process; hosts that
// ship packets over a pipe or socket to an external renderer pick a codec
// here. Codec selection is a compatibility boundary: a receiver must decode
// with the codec the sender encoded with.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "gzip+json":
		return Gzip{Inner: JSON{}}, true
	case "gzip+go-json":
		return Gzip{Inner: GoJSON{}}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the default codec used by the library.
var Default Codec = GoJSON{}
