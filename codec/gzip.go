package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip wraps another codec and gzip-compresses its output. Useful when
// packets for dense sample sets are shipped to an out-of-process renderer.
type Gzip struct {
	Inner Codec
}

func (c Gzip) inner() Codec {
	if c.Inner == nil {
		return Default
	}
	return c.Inner
}

// Marshal encodes the value with the inner codec and compresses the bytes.
func (c Gzip) Marshal(v any) ([]byte, error) {
	raw, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses the data and decodes it with the inner codec.
func (c Gzip) Unmarshal(data []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	if err := zr.Close(); err != nil {
		return err
	}
	return c.inner().Unmarshal(raw, v)
}

// Name returns the compound codec name, e.g. "gzip+go-json".
func (c Gzip) Name() string { return "gzip+" + c.inner().Name() }
