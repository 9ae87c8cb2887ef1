package wire

import "github.com/Aurora-Community/BitMagic/endian"

// Decoder reads fixed-width integers from a byte slice in a configured
// byte order, plus the fused AND/OR forms the deserializer's hot path
// uses to merge a streamed block directly into a destination bit-block.
type Decoder struct {
	data   []byte
	pos    int
	engine endian.EndianEngine
}

// NewDecoder creates a decoder over data using the given byte order.
func NewDecoder(data []byte, engine endian.EndianEngine) *Decoder {
	return &Decoder{data: data, engine: engine}
}

// GetU8 reads a single byte.
func (d *Decoder) GetU8() (uint8, bool) {
	if d.pos >= len(d.data) {
		return 0, false
	}

	v := d.data[d.pos]
	d.pos++

	return v, true
}

// GetU16 reads a 16-bit integer.
func (d *Decoder) GetU16() (uint16, bool) {
	if d.pos+2 > len(d.data) {
		return 0, false
	}

	v := d.engine.Uint16(d.data[d.pos : d.pos+2])
	d.pos += 2

	return v, true
}

// GetU16Array reads len(dst) 16-bit integers into dst.
func (d *Decoder) GetU16Array(dst []uint16) bool {
	n := len(dst) * 2
	if d.pos+n > len(d.data) {
		return false
	}

	for i := range dst {
		off := d.pos + i*2
		dst[i] = d.engine.Uint16(d.data[off : off+2])
	}
	d.pos += n

	return true
}

// GetU32 reads a 32-bit integer. Satisfies bitio.WordReader.
func (d *Decoder) GetU32() (uint32, bool) {
	if d.pos+4 > len(d.data) {
		return 0, false
	}

	v := d.engine.Uint32(d.data[d.pos : d.pos+4])
	d.pos += 4

	return v, true
}

// GetU32Array reads len(dst) 32-bit integers into dst.
func (d *Decoder) GetU32Array(dst []uint32) bool {
	n := len(dst) * 4
	if d.pos+n > len(d.data) {
		return false
	}

	for i := range dst {
		off := d.pos + i*4
		dst[i] = d.engine.Uint32(d.data[off : off+4])
	}
	d.pos += n

	return true
}

// GetU64 reads a 64-bit integer.
func (d *Decoder) GetU64() (uint64, bool) {
	if d.pos+8 > len(d.data) {
		return 0, false
	}

	v := d.engine.Uint64(d.data[d.pos : d.pos+8])
	d.pos += 8

	return v, true
}

// GetU32AND reads count 32-bit words and ANDs each into dst in place.
// If dst is nil the words are skipped (a dry read) with no effect.
func (d *Decoder) GetU32AND(dst []uint32, count int) bool {
	n := count * 4
	if d.pos+n > len(d.data) {
		return false
	}

	if dst == nil {
		d.pos += n
		return true
	}

	for i := range count {
		off := d.pos + i*4
		dst[i] &= d.engine.Uint32(d.data[off : off+4])
	}
	d.pos += n

	return true
}

// GetU32OR reads count 32-bit words and ORs each into dst in place,
// reporting whether the merged words are all-ones (used to early-detect
// a fully-set block). If dst is nil the words are skipped and allOnes
// is always false, since there is no destination to inspect.
func (d *Decoder) GetU32OR(dst []uint32, count int) (allOnes bool, ok bool) {
	n := count * 4
	if d.pos+n > len(d.data) {
		return false, false
	}

	if dst == nil {
		d.pos += n
		return false, true
	}

	allOnes = true
	for i := range count {
		off := d.pos + i*4
		dst[i] |= d.engine.Uint32(d.data[off : off+4])
		if dst[i] != 0xFFFFFFFF {
			allOnes = false
		}
	}
	d.pos += n

	return allOnes, true
}

// Pos returns the current read offset.
func (d *Decoder) Pos() int {
	return d.pos
}

// SetPos seeks to an absolute offset.
func (d *Decoder) SetPos(pos int) {
	d.pos = pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Bytes returns the unread tail of the underlying data.
func (d *Decoder) Bytes() []byte {
	return d.data[d.pos:]
}
