package lossless

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// flateCodec wraps klauspost/compress/flate, the fast general-purpose
// backend, suited to mid-order bit-planes where runs of zero bits are
// common but not dominant enough to justify the xz backend's cost.
type flateCodec struct{}

func (flateCodec) name() string { return "flate" }

func (flateCodec) compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (flateCodec) decompress(compressed []byte, rawSize int) ([]byte, error) {
	zr := flate.NewReader(bytes.NewReader(compressed))
	defer zr.Close()
	out := make([]byte, rawSize)
	if _, err := io.ReadFull(zr, out); err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return out, nil
}
