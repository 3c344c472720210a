package lossless

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"
)

// xzCodec wraps github.com/ulikunitz/xz (LZMA2), the high-ratio backend
// intended for coarse levels' low-order bit-planes, which tend to be the
// most compressible and the most worth spending extra CPU on.
type xzCodec struct{}

func (xzCodec) name() string { return "xz" }

func (xzCodec) compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := xz.NewWriter(&buf)
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

func (xzCodec) decompress(compressed []byte, rawSize int) ([]byte, error) {
	zr, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	out := make([]byte, rawSize)
	if _, err := io.ReadFull(zr, out); err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return out, nil
}
