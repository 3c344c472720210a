package refactor

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-mdr/mdr"
)

// Metadata is the self-describing header the driver emits alongside the
// packed stream: everything a consumer needs to progressively parse and
// reconstruct the stream, per the byte-exact layout in this module's
// metadata format.
type Metadata struct {
	Dims             mdr.Dims
	LevelErrorBounds []float64 // stored at full precision, serialized at the elemBytes width passed to MarshalBinary
	LevelSizes       [][]uint32
	StoppingIndices  []uint8
	Negabinary       bool
	ChunkOrder       []uint8
	ErrorPerStep     []float64
}

// MarshalBinary serializes m per the byte-exact little-endian layout.
// elemBytes (4 or 8) is supplied by the caller out of band: the wire format
// itself carries no precision tag, since the caller is always the one who
// chose the array's element type and can supply it again on the
// reconstruction side.
func (m Metadata) MarshalBinary(elemBytes int) ([]byte, error) {
	if elemBytes != 4 && elemBytes != 8 {
		return nil, mdr.NewError(mdr.KindInvalidArgument, "Metadata.MarshalBinary", mdr.Error("elemBytes must be 4 or 8"))
	}
	if len(m.Dims) > 255 {
		return nil, mdr.NewError(mdr.KindInvalidArgument, "Metadata.MarshalBinary", mdr.Error("too many dimensions"))
	}
	if len(m.LevelErrorBounds) > 255 {
		return nil, mdr.NewError(mdr.KindInvalidArgument, "Metadata.MarshalBinary", mdr.Error("too many level error bounds"))
	}

	var buf bytes.Buffer

	buf.WriteByte(byte(len(m.Dims)))
	for _, d := range m.Dims {
		writeU32(&buf, d)
	}

	buf.WriteByte(byte(len(m.LevelErrorBounds)))
	for _, v := range m.LevelErrorBounds {
		if elemBytes == 4 {
			writeU32(&buf, math.Float32bits(float32(v)))
		} else {
			writeU64(&buf, math.Float64bits(v))
		}
	}

	writeU32(&buf, uint32(len(m.LevelSizes)))
	for _, sizes := range m.LevelSizes {
		writeU32(&buf, uint32(len(sizes)))
		for _, s := range sizes {
			writeU32(&buf, s)
		}
	}

	writeU32(&buf, uint32(len(m.StoppingIndices)))
	for _, s := range m.StoppingIndices {
		buf.WriteByte(s)
	}

	if m.Negabinary {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	writeU16(&buf, uint16(len(m.ChunkOrder)))
	for _, c := range m.ChunkOrder {
		buf.WriteByte(c)
	}

	writeU32(&buf, uint32(len(m.ErrorPerStep)))
	for _, e := range m.ErrorPerStep {
		writeU64(&buf, math.Float64bits(e))
	}

	return buf.Bytes(), nil
}

// UnmarshalMetadata parses b per MarshalBinary's layout, returning the
// decoded Metadata and the number of bytes consumed.
func UnmarshalMetadata(b []byte, elemBytes int) (Metadata, int, error) {
	if elemBytes != 4 && elemBytes != 8 {
		return Metadata{}, 0, mdr.NewError(mdr.KindInvalidArgument, "UnmarshalMetadata", mdr.Error("elemBytes must be 4 or 8"))
	}
	r := &reader{buf: b}

	nDims, err := r.u8()
	if err != nil {
		return Metadata{}, 0, err
	}
	dims := make(mdr.Dims, nDims)
	for i := range dims {
		v, err := r.u32()
		if err != nil {
			return Metadata{}, 0, err
		}
		dims[i] = v
	}

	nBounds, err := r.u8()
	if err != nil {
		return Metadata{}, 0, err
	}
	bounds := make([]float64, nBounds)
	for i := range bounds {
		if elemBytes == 4 {
			v, err := r.u32()
			if err != nil {
				return Metadata{}, 0, err
			}
			bounds[i] = float64(math.Float32frombits(v))
		} else {
			v, err := r.u64()
			if err != nil {
				return Metadata{}, 0, err
			}
			bounds[i] = math.Float64frombits(v)
		}
	}

	nLevels, err := r.u32()
	if err != nil {
		return Metadata{}, 0, err
	}
	levelSizes := make([][]uint32, nLevels)
	for l := range levelSizes {
		cnt, err := r.u32()
		if err != nil {
			return Metadata{}, 0, err
		}
		sizes := make([]uint32, cnt)
		for i := range sizes {
			v, err := r.u32()
			if err != nil {
				return Metadata{}, 0, err
			}
			sizes[i] = v
		}
		levelSizes[l] = sizes
	}

	nStop, err := r.u32()
	if err != nil {
		return Metadata{}, 0, err
	}
	stop := make([]uint8, nStop)
	for i := range stop {
		v, err := r.u8()
		if err != nil {
			return Metadata{}, 0, err
		}
		stop[i] = v
	}

	negFlag, err := r.u8()
	if err != nil {
		return Metadata{}, 0, err
	}

	chunkNum, err := r.u16()
	if err != nil {
		return Metadata{}, 0, err
	}
	chunkOrder := make([]uint8, chunkNum)
	for i := range chunkOrder {
		v, err := r.u8()
		if err != nil {
			return Metadata{}, 0, err
		}
		chunkOrder[i] = v
	}

	nSteps, err := r.u32()
	if err != nil {
		return Metadata{}, 0, err
	}
	errorPerStep := make([]float64, nSteps)
	for i := range errorPerStep {
		v, err := r.u64()
		if err != nil {
			return Metadata{}, 0, err
		}
		errorPerStep[i] = math.Float64frombits(v)
	}

	m := Metadata{
		Dims:             dims,
		LevelErrorBounds: bounds,
		LevelSizes:       levelSizes,
		StoppingIndices:  stop,
		Negabinary:       negFlag != 0,
		ChunkOrder:       chunkOrder,
		ErrorPerStep:     errorPerStep,
	}
	return m, r.pos, nil
}

func writeU16(buf *bytes.Buffer, v uint16) { binary.Write(buf, binary.LittleEndian, v) }
func writeU32(buf *bytes.Buffer, v uint32) { binary.Write(buf, binary.LittleEndian, v) }
func writeU64(buf *bytes.Buffer, v uint64) { binary.Write(buf, binary.LittleEndian, v) }

// reader is a minimal little-endian byte-slice cursor used only by
// UnmarshalMetadata.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return mdr.NewError(mdr.KindBackendIO, "reader", mdr.Error("metadata buffer truncated"))
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}
