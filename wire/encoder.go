// Package wire implements the byte-level encoder and decoder the block
// codec and set-algebra engine build on: fixed-width integer puts/gets,
// length-prefixed arrays, and the fused AND/OR decode primitives used on
// the deserialization hot path.
package wire

import (
	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/internal/pool"
)

// Encoder appends fixed-width little- or big-endian integers to a pooled
// growable buffer and supports position rewinding for speculative
// encodes that turn out not to pay for themselves.
type Encoder struct {
	buf     *pool.ByteBuffer
	engine  endian.EndianEngine
	release func(*pool.ByteBuffer)
}

// NewEncoder creates an encoder backed by a fresh buffer drawn from the
// blob pool, released by Finish.
func NewEncoder(engine endian.EndianEngine) *Encoder {
	return &Encoder{
		buf:     pool.GetBlobBuffer(),
		engine:  engine,
		release: pool.PutBlobBuffer,
	}
}

// NewScratchEncoder creates an encoder backed by a fresh buffer drawn
// from the scratch pool, sized for a single block's speculative encode.
func NewScratchEncoder(engine endian.EndianEngine) *Encoder {
	return &Encoder{
		buf:     pool.GetScratchBuffer(),
		engine:  engine,
		release: pool.PutScratchBuffer,
	}
}

// NewEncoderBuffer creates an encoder over a caller-supplied buffer.
// Finish does not return a buffer not owned by the encoder.
func NewEncoderBuffer(buf *pool.ByteBuffer, engine endian.EndianEngine) *Encoder {
	return &Encoder{buf: buf, engine: engine}
}

// PutU8 appends a single byte.
func (e *Encoder) PutU8(v uint8) {
	e.buf.MustWrite([]byte{v})
}

// PutU16 appends a 16-bit integer in the encoder's byte order.
func (e *Encoder) PutU16(v uint16) {
	start := e.buf.Len()
	e.buf.ExtendOrGrow(2)
	e.engine.PutUint16(e.buf.Slice(start, start+2), v)
}

// PutU16Array appends a run of 16-bit integers with no length prefix.
func (e *Encoder) PutU16Array(vs []uint16) {
	if len(vs) == 0 {
		return
	}

	n := len(vs) * 2
	start := e.buf.Len()
	e.buf.ExtendOrGrow(n)

	for i, v := range vs {
		off := start + i*2
		e.engine.PutUint16(e.buf.Slice(off, off+2), v)
	}
}

// PutU32 appends a 32-bit integer in the encoder's byte order.
func (e *Encoder) PutU32(v uint32) {
	start := e.buf.Len()
	e.buf.ExtendOrGrow(4)
	e.engine.PutUint32(e.buf.Slice(start, start+4), v)
}

// PutU32Array appends a run of 32-bit integers with no length prefix.
func (e *Encoder) PutU32Array(vs []uint32) {
	if len(vs) == 0 {
		return
	}

	n := len(vs) * 4
	start := e.buf.Len()
	e.buf.ExtendOrGrow(n)

	for i, v := range vs {
		off := start + i*4
		e.engine.PutUint32(e.buf.Slice(off, off+4), v)
	}
}

// PutU64 appends a 64-bit integer in the encoder's byte order.
func (e *Encoder) PutU64(v uint64) {
	start := e.buf.Len()
	e.buf.ExtendOrGrow(8)
	e.engine.PutUint64(e.buf.Slice(start, start+8), v)
}

// PutPrefixedU16Array writes tag, optionally a u16 element count, then
// the 16-bit values. With emitCountPrefix false no count is written and
// the reader must know it from context; the block encoder always
// passes true.
func (e *Encoder) PutPrefixedU16Array(tag byte, shorts []uint16, emitCountPrefix bool) {
	e.PutU8(tag)
	if emitCountPrefix {
		e.PutU16(uint16(len(shorts)))
	}
	e.PutU16Array(shorts)
}

// Memcpy appends raw bytes verbatim.
func (e *Encoder) Memcpy(p []byte) {
	e.buf.MustWrite(p)
}

// Pos returns the current write offset, usable with SetPos to roll back
// a speculative encode that grew larger than its plain fallback.
func (e *Encoder) Pos() int {
	return e.buf.Len()
}

// SetPos truncates the buffer back to pos. pos must not exceed the
// current length.
func (e *Encoder) SetPos(pos int) {
	e.buf.SetLength(pos)
}

// Size returns the number of bytes written so far.
func (e *Encoder) Size() int {
	return e.buf.Len()
}

// Bytes returns the encoded byte slice. The returned slice is valid
// until the next mutating call or Finish/Reset.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Reset clears the buffer for reuse without releasing it.
func (e *Encoder) Reset() {
	e.buf.Reset()
}

// Finish releases the underlying buffer back to its pool if the encoder
// owns it. Safe to call multiple times.
func (e *Encoder) Finish() {
	if e.release == nil || e.buf == nil {
		return
	}

	e.release(e.buf)
	e.buf = nil
}
