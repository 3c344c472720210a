package lossless

// storeCodec is the identity codec, used when BackendStore is selected. Its
// output is never smaller than its input, so CompressLevel stops at plane 0
// with it. (Planes CompressLevel stops at under other backends are simply
// left as they are; this codec is not invoked for them.)
type storeCodec struct{}

func (storeCodec) name() string { return "store" }

func (storeCodec) compress(raw []byte) ([]byte, error) {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (storeCodec) decompress(compressed []byte, rawSize int) ([]byte, error) {
	out := make([]byte, rawSize)
	copy(out, compressed)
	return out, nil
}
