package serial

import (
	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/codec"
	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/errs"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/wire"
)

// Deserializer reads a serial stream's header and block-token body,
// OR-merging the decoded bits into a caller-supplied bitset.BitVector.
// Always additive: a stream never clears bits the target already has,
// which lets a vector be rebuilt by folding in several blobs in turn.
type Deserializer struct{}

// NewDeserializer creates a Deserializer. It carries no configuration
// of its own: every framing choice (byte order, gap_levels, address
// width) is read back out of the stream's own header.
func NewDeserializer() *Deserializer { return &Deserializer{} }

// Deserialize reads buf's header then its block-token body, merging
// every decoded bit into bv. Returns the number of bytes consumed.
func (ds *Deserializer) Deserialize(bv *bitset.BitVector, buf []byte) (int, error) {
	d := wire.NewDecoder(buf, endian.GetLittleEndianEngine())

	h, err := format.DecodeHeader(d)
	if err != nil {
		return 0, err
	}

	if h.ByteOrder == format.ByteOrderBig {
		d = wire.NewDecoder(buf, endian.GetBigEndianEngine())
		if _, err := format.DecodeHeader(d); err != nil {
			return 0, err
		}
	}

	if h.Flags.Has(format.FlagIDList) {
		return ds.deserializeIDList(bv, d)
	}

	dec := codec.NewBlockDecoder()
	defer dec.Close()
	if err := dec.DecodeAll(d, bv); err != nil {
		return 0, err
	}

	return d.Pos(), nil
}

// deserializeIDList reads the legacy ID_LIST framing: a flat u32 count
// followed by count sorted u32 global bit positions, no block tags.
// Kept for streams produced before the block-tag format existed.
func (ds *Deserializer) deserializeIDList(bv *bitset.BitVector, d *wire.Decoder) (int, error) {
	count, ok := d.GetU32()
	if !ok {
		return 0, errs.ErrTruncatedStream
	}

	for i := uint32(0); i < count; i++ {
		pos, ok := d.GetU32()
		if !ok {
			return 0, errs.ErrTruncatedStream
		}
		bv.SetBit(uint64(pos))
	}

	return d.Pos(), nil
}
