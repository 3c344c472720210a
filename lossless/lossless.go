// Package lossless implements the LevelCompressor contract: lossless
// compression of a level's bit-plane streams up to an adaptive stopping
// plane, where compression stops being applied once it no longer helps.
package lossless

import (
	"github.com/go-mdr/mdr"
)

// Backend selects which lossless codec a Compressor uses.
type Backend int

const (
	// BackendStore applies no compression (stopping_index == 0 always).
	BackendStore Backend = iota
	// BackendFlate compresses with DEFLATE (klauspost/compress).
	BackendFlate
	// BackendXZ compresses with LZMA2 (ulikunitz/xz) for higher ratio at
	// higher cost, intended for coarse, highly-compressible low-plane
	// streams.
	BackendXZ
)

func (b Backend) String() string {
	switch b {
	case BackendStore:
		return "store"
	case BackendFlate:
		return "flate"
	case BackendXZ:
		return "xz"
	default:
		return "unknown"
	}
}

// codec is the minimal interface every backend implements.
type codec interface {
	name() string
	compress(raw []byte) ([]byte, error)
	decompress(compressed []byte, rawSize int) ([]byte, error)
}

// Compressor implements LevelCompressor for a fixed backend.
type Compressor struct {
	Backend Backend
}

// NewCompressor constructs a Compressor using the named backend.
func NewCompressor(backend Backend) *Compressor {
	return &Compressor{Backend: backend}
}

// CompressLevel mutates streams[j]/sizes[j] in place for every plane up to
// the point compression stops being beneficial, and returns that stopping
// index. Planes at or beyond the stopping index are left untouched (stored
// raw).
func (c *Compressor) CompressLevel(streams [][]byte, sizes []uint32) (uint8, error) {
	if len(streams) != len(sizes) {
		return 0, mdr.NewError(mdr.KindInvalidArgument, "lossless.CompressLevel", mdr.Error("streams/sizes length mismatch"))
	}
	cd, err := resolve(c.Backend)
	if err != nil {
		return 0, err
	}
	for j := range streams {
		compressed, err := cd.compress(streams[j])
		if err != nil {
			return 0, mdr.NewError(mdr.KindBackendIO, "lossless.CompressLevel", err)
		}
		if uint32(len(compressed)) >= sizes[j] {
			return uint8(j), nil
		}
		streams[j] = compressed
		sizes[j] = uint32(len(compressed))
	}
	return uint8(len(streams)), nil
}

// DecompressLevel inverts CompressLevel: every plane below stoppingIndex is
// decompressed back to rawPlaneSize bytes; planes at or beyond it are
// assumed already raw and are left untouched.
func (c *Compressor) DecompressLevel(streams [][]byte, stoppingIndex uint8, rawPlaneSize int) error {
	cd, err := resolve(c.Backend)
	if err != nil {
		return err
	}
	for j := 0; j < int(stoppingIndex) && j < len(streams); j++ {
		raw, err := cd.decompress(streams[j], rawPlaneSize)
		if err != nil {
			return mdr.NewError(mdr.KindBackendIO, "lossless.DecompressLevel", err)
		}
		streams[j] = raw
	}
	return nil
}
